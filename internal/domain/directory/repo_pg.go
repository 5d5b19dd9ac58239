package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type userRepoPG struct{ pool *pgxpool.Pool }

func NewUserRepoPG(pool *pgxpool.Pool) UserRepository {
	return &userRepoPG{pool: pool}
}

const userCols = `id, name, email, role, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.IsActive,
		&u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &u, err
}

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, name, email, role, is_active)
		VALUES ($1,$2,$3,$4,$5)`,
		u.ID, u.Name, u.Email, u.Role, u.IsActive)
	return err
}

func (r *userRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (r *userRepoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE email = $1`, email))
}

func (r *userRepoPG) ListByRole(ctx context.Context, role string, limit, offset int) ([]*User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role = $1 AND is_active`, role).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+userCols+` FROM users
		WHERE role = $1 AND is_active
		ORDER BY name LIMIT $2 OFFSET $3`, role, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, u)
	}
	return items, total, nil
}

func (r *userRepoPG) Update(ctx context.Context, u *User) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET name=$2, email=$3, is_active=$4, updated_at=NOW()
		WHERE id = $1`,
		u.ID, u.Name, u.Email, u.IsActive)
	return err
}

type doctorProfileRepoPG struct{ pool *pgxpool.Pool }

func NewDoctorProfileRepoPG(pool *pgxpool.Pool) DoctorProfileRepository {
	return &doctorProfileRepoPG{pool: pool}
}

const profileCols = `user_id, speciality, registration_number, degree,
	experience_years, phone, status, bio, consultation_fee, consultation_modes,
	is_auto_ai_reply_enabled, ai_instructions, created_at, updated_at`

func (r *doctorProfileRepoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*DoctorProfile, error) {
	var p DoctorProfile
	err := r.pool.QueryRow(ctx, `SELECT `+profileCols+` FROM doctor_profiles WHERE user_id = $1`, userID).
		Scan(&p.UserID, &p.Speciality, &p.RegistrationNumber, &p.Degree,
			&p.ExperienceYears, &p.Phone, &p.Status, &p.Bio,
			&p.ConsultationFee, &p.ConsultationModes,
			&p.IsAutoAIReplyEnabled, &p.AIInstructions,
			&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *doctorProfileRepoPG) Upsert(ctx context.Context, p *DoctorProfile) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO doctor_profiles (user_id, speciality, registration_number, degree,
			experience_years, phone, status, bio, consultation_fee, consultation_modes,
			is_auto_ai_reply_enabled, ai_instructions)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (user_id) DO UPDATE SET
			speciality=EXCLUDED.speciality,
			registration_number=EXCLUDED.registration_number,
			degree=EXCLUDED.degree,
			experience_years=EXCLUDED.experience_years,
			phone=EXCLUDED.phone,
			status=EXCLUDED.status,
			bio=EXCLUDED.bio,
			consultation_fee=EXCLUDED.consultation_fee,
			consultation_modes=EXCLUDED.consultation_modes,
			is_auto_ai_reply_enabled=EXCLUDED.is_auto_ai_reply_enabled,
			ai_instructions=EXCLUDED.ai_instructions,
			updated_at=NOW()`,
		p.UserID, p.Speciality, p.RegistrationNumber, p.Degree,
		p.ExperienceYears, p.Phone, p.Status, p.Bio,
		p.ConsultationFee, p.ConsultationModes,
		p.IsAutoAIReplyEnabled, p.AIInstructions)
	return err
}
