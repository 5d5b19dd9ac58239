package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a user or profile does not exist.
var ErrNotFound = errors.New("directory: not found")

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ListByRole(ctx context.Context, role string, limit, offset int) ([]*User, int, error)
	Update(ctx context.Context, u *User) error
}

type DoctorProfileRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*DoctorProfile, error)
	Upsert(ctx context.Context, p *DoctorProfile) error
}
