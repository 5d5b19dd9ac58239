// Package notification maintains the per-user notification feed and pushes
// new entries to the user's live sessions.
package notification

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeMessage     = "message"
	TypeAppointment = "appointment"
	TypeSystem      = "system"
)

type Notification struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"userId"`
	FromUserID     *uuid.UUID `json:"fromUserId"`
	ConversationID *uuid.UUID `json:"conversationId"`
	Type           string     `json:"type"`
	Title          string     `json:"title"`
	Message        string     `json:"message"`
	Link           string     `json:"link"`
	IsRead         bool       `json:"isRead"`
	CreatedAt      time.Time  `json:"createdAt"`
}
