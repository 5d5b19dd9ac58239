package notes

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("notes: not found")

type Repository interface {
	Create(ctx context.Context, n *Note) error
	GetByID(ctx context.Context, id uuid.UUID) (*Note, error)
	// ListRecent returns up to limit notes for the doctor/patient pair,
	// newest first.
	ListRecent(ctx context.Context, doctorID, patientID uuid.UUID, limit int) ([]*Note, error)
	ListByPair(ctx context.Context, doctorID, patientID uuid.UUID, limit, offset int) ([]*Note, int, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
