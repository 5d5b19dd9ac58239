// Package notes stores doctor-authored private annotations about patients.
// Notes are internal context only: they feed the auto-reply prompt but are
// never shown to patients.
package notes

import (
	"time"

	"github.com/google/uuid"
)

// MaxContentLength bounds a single note.
const MaxContentLength = 5000

type Note struct {
	ID        uuid.UUID `json:"id"`
	DoctorID  uuid.UUID `json:"doctorId"`
	PatientID uuid.UUID `json:"patientId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
