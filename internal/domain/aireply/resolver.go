package aireply

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/telecare/telecare/internal/domain/directory"
)

// OverrideSource reads the conversation-level tri-state auto-reply override.
// nil means inherit the doctor's account-level settings.
type OverrideSource interface {
	AIOverride(ctx context.Context, conversationID uuid.UUID) (*bool, error)
}

// DoctorProfileSource reads the doctor profile, the legacy second home of
// the enablement flag and instructions.
type DoctorProfileSource interface {
	GetDoctorProfile(ctx context.Context, doctorID uuid.UUID) (*directory.DoctorProfile, error)
}

// Decision is the effective auto-reply configuration for one message.
type Decision struct {
	Enabled      bool
	Instructions string
}

// Resolver merges the conversation override, the AI settings record and the
// doctor profile into one decision. The two account-level stores can drift
// out of sync; either one being true enables AI.
type Resolver struct {
	settings  SettingsRepository
	overrides OverrideSource
	profiles  DoctorProfileSource
}

func NewResolver(settings SettingsRepository, overrides OverrideSource, profiles DoctorProfileSource) *Resolver {
	return &Resolver{settings: settings, overrides: overrides, profiles: profiles}
}

// Effective computes the auto-reply decision for one inbound message. It is
// called fresh per message; settings may change between messages in the same
// conversation. A conversation override, when set, is authoritative and
// bypasses the account-level flags entirely.
func (r *Resolver) Effective(ctx context.Context, conversationID, doctorID uuid.UUID) (Decision, error) {
	override, err := r.overrides.AIOverride(ctx, conversationID)
	if err != nil {
		return Decision{}, fmt.Errorf("reading conversation override: %w", err)
	}

	var settings *AISettings
	settings, err = r.settings.GetByDoctor(ctx, doctorID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Decision{}, fmt.Errorf("reading ai settings: %w", err)
	}

	var profile *directory.DoctorProfile
	profile, err = r.profiles.GetDoctorProfile(ctx, doctorID)
	if err != nil && !errors.Is(err, directory.ErrNotFound) {
		return Decision{}, fmt.Errorf("reading doctor profile: %w", err)
	}

	d := Decision{Instructions: effectiveInstructions(settings, profile)}

	if override != nil {
		d.Enabled = *override
		return d, nil
	}
	if settings != nil && settings.IsAIEnabled {
		d.Enabled = true
	}
	if profile != nil && profile.IsAutoAIReplyEnabled {
		d.Enabled = true
	}
	return d, nil
}

func effectiveInstructions(settings *AISettings, profile *directory.DoctorProfile) string {
	if profile != nil {
		if ins := strings.TrimSpace(profile.AIInstructions); ins != "" {
			return ins
		}
	}
	if settings != nil {
		if ins := strings.TrimSpace(settings.Instructions); ins != "" {
			return ins
		}
	}
	return DefaultInstructions
}
