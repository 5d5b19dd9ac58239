package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrNotOwner is returned when a doctor tries to delete another doctor's
// note.
var ErrNotOwner = errors.New("notes: not the note owner")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and stores a note authored by the doctor.
func (s *Service) Create(ctx context.Context, doctorID, patientID uuid.UUID, content string) (*Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("note content is required")
	}
	if len(content) > MaxContentLength {
		return nil, fmt.Errorf("note exceeds %d characters", MaxContentLength)
	}
	if doctorID == uuid.Nil || patientID == uuid.Nil {
		return nil, fmt.Errorf("doctor and patient ids are required")
	}

	n := &Note{DoctorID: doctorID, PatientID: patientID, Content: content}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// RecentNotes returns the newest note texts for a doctor/patient pair, for
// use as auto-reply prompt context.
func (s *Service) RecentNotes(ctx context.Context, doctorID, patientID uuid.UUID, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 5
	}
	items, err := s.repo.ListRecent(ctx, doctorID, patientID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for _, n := range items {
		out = append(out, n.Content)
	}
	return out, nil
}

func (s *Service) List(ctx context.Context, doctorID, patientID uuid.UUID, limit, offset int) ([]*Note, int, error) {
	return s.repo.ListByPair(ctx, doctorID, patientID, limit, offset)
}

// Delete removes a note; only its author may delete it.
func (s *Service) Delete(ctx context.Context, id, doctorID uuid.UUID) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.DoctorID != doctorID {
		return ErrNotOwner
	}
	return s.repo.Delete(ctx, id)
}
