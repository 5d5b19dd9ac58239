package aireply

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/telecare/telecare/internal/domain/directory"
)

type mockSettingsRepo struct {
	byDoctor map[uuid.UUID]*AISettings
	err      error
}

func newMockSettingsRepo() *mockSettingsRepo {
	return &mockSettingsRepo{byDoctor: make(map[uuid.UUID]*AISettings)}
}

func (m *mockSettingsRepo) GetByDoctor(_ context.Context, doctorID uuid.UUID) (*AISettings, error) {
	if m.err != nil {
		return nil, m.err
	}
	if s, ok := m.byDoctor[doctorID]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

func (m *mockSettingsRepo) Upsert(_ context.Context, s *AISettings) error {
	m.byDoctor[s.DoctorID] = s
	return nil
}

type mockOverrides struct {
	value *bool
	err   error
}

func (m *mockOverrides) AIOverride(context.Context, uuid.UUID) (*bool, error) {
	return m.value, m.err
}

type mockProfiles struct {
	byDoctor map[uuid.UUID]*directory.DoctorProfile
	err      error
}

func newMockProfiles() *mockProfiles {
	return &mockProfiles{byDoctor: make(map[uuid.UUID]*directory.DoctorProfile)}
}

func (m *mockProfiles) GetDoctorProfile(_ context.Context, doctorID uuid.UUID) (*directory.DoctorProfile, error) {
	if m.err != nil {
		return nil, m.err
	}
	if p, ok := m.byDoctor[doctorID]; ok {
		return p, nil
	}
	return nil, directory.ErrNotFound
}

func boolPtr(v bool) *bool { return &v }

func TestEffective_OverrideIsAuthoritative(t *testing.T) {
	doctorID := uuid.New()
	settings := newMockSettingsRepo()
	settings.byDoctor[doctorID] = &AISettings{DoctorID: doctorID, IsAIEnabled: true}
	profiles := newMockProfiles()
	profiles.byDoctor[doctorID] = &directory.DoctorProfile{UserID: doctorID, IsAutoAIReplyEnabled: true}

	// Override false beats both account-level flags being true.
	r := NewResolver(settings, &mockOverrides{value: boolPtr(false)}, profiles)
	d, err := r.Effective(context.Background(), uuid.New(), doctorID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Enabled {
		t.Fatal("expected override false to win over enabled account settings")
	}

	// Override true beats both being false.
	settings.byDoctor[doctorID].IsAIEnabled = false
	profiles.byDoctor[doctorID].IsAutoAIReplyEnabled = false
	r = NewResolver(settings, &mockOverrides{value: boolPtr(true)}, profiles)
	d, err = r.Effective(context.Background(), uuid.New(), doctorID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Enabled {
		t.Fatal("expected override true to win over disabled account settings")
	}
}

func TestEffective_GlobalFlagsAreORed(t *testing.T) {
	doctorID := uuid.New()
	cases := []struct {
		name     string
		settings bool
		profile  bool
		want     bool
	}{
		{"both off", false, false, false},
		{"settings only", true, false, true},
		{"profile only", false, true, true},
		{"both on", true, true, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			settings := newMockSettingsRepo()
			settings.byDoctor[doctorID] = &AISettings{DoctorID: doctorID, IsAIEnabled: tc.settings}
			profiles := newMockProfiles()
			profiles.byDoctor[doctorID] = &directory.DoctorProfile{UserID: doctorID, IsAutoAIReplyEnabled: tc.profile}

			r := NewResolver(settings, &mockOverrides{}, profiles)
			d, err := r.Effective(context.Background(), uuid.New(), doctorID)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.Enabled != tc.want {
				t.Fatalf("expected enabled=%v, got %v", tc.want, d.Enabled)
			}
		})
	}
}

func TestEffective_MissingRecordsDisable(t *testing.T) {
	r := NewResolver(newMockSettingsRepo(), &mockOverrides{}, newMockProfiles())
	d, err := r.Effective(context.Background(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("missing records must not error: %v", err)
	}
	if d.Enabled {
		t.Fatal("expected disabled with no settings and no profile")
	}
	if d.Instructions != DefaultInstructions {
		t.Fatalf("expected default instructions, got %q", d.Instructions)
	}
}

func TestEffective_InstructionsPrecedence(t *testing.T) {
	doctorID := uuid.New()
	settings := newMockSettingsRepo()
	settings.byDoctor[doctorID] = &AISettings{DoctorID: doctorID, Instructions: "settings text"}
	profiles := newMockProfiles()
	profiles.byDoctor[doctorID] = &directory.DoctorProfile{UserID: doctorID, AIInstructions: "profile text"}

	r := NewResolver(settings, &mockOverrides{}, profiles)
	d, err := r.Effective(context.Background(), uuid.New(), doctorID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Instructions != "profile text" {
		t.Fatalf("expected profile instructions to win, got %q", d.Instructions)
	}

	// Blank profile instructions fall through to settings.
	profiles.byDoctor[doctorID].AIInstructions = "   "
	d, err = r.Effective(context.Background(), uuid.New(), doctorID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Instructions != "settings text" {
		t.Fatalf("expected settings instructions, got %q", d.Instructions)
	}
}

func TestEffective_StoreErrorBubbles(t *testing.T) {
	r := NewResolver(newMockSettingsRepo(), &mockOverrides{err: fmt.Errorf("db down")}, newMockProfiles())
	if _, err := r.Effective(context.Background(), uuid.New(), uuid.New()); err == nil {
		t.Fatal("expected override store error to bubble")
	}

	settings := newMockSettingsRepo()
	settings.err = fmt.Errorf("db down")
	r = NewResolver(settings, &mockOverrides{}, newMockProfiles())
	if _, err := r.Effective(context.Background(), uuid.New(), uuid.New()); err == nil {
		t.Fatal("expected settings store error to bubble")
	}
}

func TestServiceToggle_PreservesInstructions(t *testing.T) {
	repo := newMockSettingsRepo()
	svc := NewService(repo)
	doctorID := uuid.New()

	if _, err := svc.SetInstructions(context.Background(), doctorID, "Short answers only."); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, err := svc.Toggle(context.Background(), doctorID, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.IsAIEnabled {
		t.Fatal("expected enabled after toggle")
	}
	if s.Instructions != "Short answers only." {
		t.Fatalf("toggle must preserve instructions, got %q", s.Instructions)
	}
}

func TestServiceToggle_WrappedNotFoundCreatesRecord(t *testing.T) {
	repo := newMockSettingsRepo()
	repo.err = fmt.Errorf("query ai settings: %w", ErrNotFound)
	svc := NewService(repo)
	doctorID := uuid.New()

	// Repos surface missing rows wrapped; a first toggle must still create
	// the settings record instead of bubbling the lookup error.
	s, err := svc.Toggle(context.Background(), doctorID, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.IsAIEnabled {
		t.Fatal("expected enabled after first toggle")
	}

	repo.err = nil
	if _, err := svc.SetInstructions(context.Background(), doctorID, "Short answers only."); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestServiceSetInstructions_WrappedNotFoundCreatesRecord(t *testing.T) {
	repo := newMockSettingsRepo()
	repo.err = fmt.Errorf("query ai settings: %w", ErrNotFound)
	svc := NewService(repo)
	doctorID := uuid.New()

	s, err := svc.SetInstructions(context.Background(), doctorID, "Be brief.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Instructions != "Be brief." {
		t.Fatalf("expected instructions stored, got %q", s.Instructions)
	}
}
