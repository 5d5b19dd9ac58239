package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	users    UserRepository
	profiles DoctorProfileRepository
}

func NewService(users UserRepository, profiles DoctorProfileRepository) *Service {
	return &Service{users: users, profiles: profiles}
}

func (s *Service) CreateUser(ctx context.Context, u *User) error {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.TrimSpace(strings.ToLower(u.Email))
	if u.Name == "" {
		return fmt.Errorf("name is required")
	}
	if u.Email == "" {
		return fmt.Errorf("email is required")
	}
	if !ValidRole(u.Role) {
		return fmt.Errorf("invalid role: %s", u.Role)
	}
	u.IsActive = true
	return s.users.Create(ctx, u)
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
}

func (s *Service) ListDoctors(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.users.ListByRole(ctx, RoleDoctor, limit, offset)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*User, int, error) {
	return s.users.ListByRole(ctx, RolePatient, limit, offset)
}

func (s *Service) UpdateUser(ctx context.Context, u *User) error {
	if u.ID == uuid.Nil {
		return fmt.Errorf("user id is required")
	}
	u.Name = strings.TrimSpace(u.Name)
	if u.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.users.Update(ctx, u)
}

// GetDoctorProfile returns the doctor's profile, or ErrNotFound when the
// doctor has not filled one in yet.
func (s *Service) GetDoctorProfile(ctx context.Context, doctorID uuid.UUID) (*DoctorProfile, error) {
	return s.profiles.GetByUserID(ctx, doctorID)
}

// SaveDoctorProfile creates or replaces the profile for a doctor account.
// Non-doctor accounts are rejected.
func (s *Service) SaveDoctorProfile(ctx context.Context, p *DoctorProfile) error {
	if p.UserID == uuid.Nil {
		return fmt.Errorf("user id is required")
	}
	u, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("looking up user: %w", err)
	}
	if u.Role != RoleDoctor {
		return fmt.Errorf("user %s is not a doctor", p.UserID)
	}
	p.AIInstructions = strings.TrimSpace(p.AIInstructions)
	return s.profiles.Upsert(ctx, p)
}
