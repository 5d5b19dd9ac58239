package aireply

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a doctor has no AI settings record yet.
var ErrNotFound = errors.New("aireply: not found")

type SettingsRepository interface {
	GetByDoctor(ctx context.Context, doctorID uuid.UUID) (*AISettings, error)
	Upsert(ctx context.Context, s *AISettings) error
}
