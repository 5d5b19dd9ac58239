// Package aireply resolves whether a doctor's AI auto-reply is active for a
// conversation and generates the reply text through a provider chain that
// always terminates in a deterministic fallback.
package aireply

import (
	"time"

	"github.com/google/uuid"
)

// AISettings is the doctor's account-level auto-reply record. One row per
// doctor, upserted on toggle.
type AISettings struct {
	DoctorID     uuid.UUID `json:"doctorId"`
	IsAIEnabled  bool      `json:"isAIEnabled"`
	Instructions string    `json:"instructions"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DefaultInstructions is used when neither the doctor profile nor the AI
// settings carry instructions.
const DefaultInstructions = "Be polite and helpful with patients."
