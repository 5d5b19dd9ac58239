// Package directory holds the platform's user roster: patient and doctor
// accounts plus the public doctor profiles that carry per-doctor AI reply
// preferences.
package directory

import (
	"time"

	"github.com/google/uuid"
)

const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"
)

// User is a platform account. The Role field drives authorization and the
// AI auto-reply trigger (only messages sent to a doctor are answered).
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DoctorProfile extends a doctor account with practice details and the
// per-doctor AI reply preference. IsAutoAIReplyEnabled and AIInstructions
// participate in auto-reply resolution alongside the account-level settings.
type DoctorProfile struct {
	UserID               uuid.UUID `json:"userId"`
	Speciality           string    `json:"speciality"`
	RegistrationNumber   string    `json:"registrationNumber"`
	Degree               string    `json:"degree"`
	ExperienceYears      int       `json:"experienceYears"`
	Phone                string    `json:"phone"`
	Status               string    `json:"status"`
	Bio                  string    `json:"bio"`
	ConsultationFee      int       `json:"consultationFee"`
	ConsultationModes    []string  `json:"consultationModes"`
	IsAutoAIReplyEnabled bool      `json:"isAutoAIReplyEnabled"`
	AIInstructions       string    `json:"aiInstructions"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// ValidRole reports whether role is one of the known account roles.
func ValidRole(role string) bool {
	switch role {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}
