package aireply

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type settingsRepoPG struct{ pool *pgxpool.Pool }

func NewSettingsRepoPG(pool *pgxpool.Pool) SettingsRepository {
	return &settingsRepoPG{pool: pool}
}

func (r *settingsRepoPG) GetByDoctor(ctx context.Context, doctorID uuid.UUID) (*AISettings, error) {
	var s AISettings
	err := r.pool.QueryRow(ctx, `
		SELECT doctor_id, is_ai_enabled, instructions, updated_at
		FROM ai_settings WHERE doctor_id = $1`, doctorID).
		Scan(&s.DoctorID, &s.IsAIEnabled, &s.Instructions, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *settingsRepoPG) Upsert(ctx context.Context, s *AISettings) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO ai_settings (doctor_id, is_ai_enabled, instructions)
		VALUES ($1,$2,$3)
		ON CONFLICT (doctor_id) DO UPDATE SET
			is_ai_enabled=EXCLUDED.is_ai_enabled,
			instructions=EXCLUDED.instructions,
			updated_at=NOW()`,
		s.DoctorID, s.IsAIEnabled, s.Instructions)
	return err
}
