package aireply

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Service owns the doctor-level AI settings record.
type Service struct {
	settings SettingsRepository
}

func NewService(settings SettingsRepository) *Service {
	return &Service{settings: settings}
}

func (s *Service) Status(ctx context.Context, doctorID uuid.UUID) (*AISettings, error) {
	return s.settings.GetByDoctor(ctx, doctorID)
}

// Toggle upserts the doctor's enablement flag, creating the settings record
// on first use.
func (s *Service) Toggle(ctx context.Context, doctorID uuid.UUID, enabled bool) (*AISettings, error) {
	if doctorID == uuid.Nil {
		return nil, fmt.Errorf("doctor id is required")
	}
	current, err := s.settings.GetByDoctor(ctx, doctorID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	next := &AISettings{DoctorID: doctorID, IsAIEnabled: enabled}
	if current != nil {
		next.Instructions = current.Instructions
	}
	if err := s.settings.Upsert(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// SetInstructions replaces the doctor's account-level persona instructions.
func (s *Service) SetInstructions(ctx context.Context, doctorID uuid.UUID, instructions string) (*AISettings, error) {
	if doctorID == uuid.Nil {
		return nil, fmt.Errorf("doctor id is required")
	}
	current, err := s.settings.GetByDoctor(ctx, doctorID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	next := &AISettings{DoctorID: doctorID, Instructions: strings.TrimSpace(instructions)}
	if current != nil {
		next.IsAIEnabled = current.IsAIEnabled
	}
	if err := s.settings.Upsert(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}
