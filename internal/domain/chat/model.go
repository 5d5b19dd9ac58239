// Package chat implements conversations, message persistence and the
// real-time relay pipeline that fans messages out to connected sessions and
// triggers doctor auto-replies.
package chat

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is a two-party thread. Participants are stored in normalized
// order so each pair maps to at most one row. AIAutoReply is a tri-state
// override: nil inherits the doctor's account-level AI settings, a non-nil
// value is authoritative for this conversation.
type Conversation struct {
	ID           uuid.UUID  `json:"id"`
	ParticipantA uuid.UUID  `json:"participantA"`
	ParticipantB uuid.UUID  `json:"participantB"`
	LastMessage  string     `json:"lastMessage"`
	LastSenderID *uuid.UUID `json:"lastSenderId"`
	AIAutoReply  *bool      `json:"aiAutoReply"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// HasParticipant reports whether userID is one of the two parties.
func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	return c.ParticipantA == userID || c.ParticipantB == userID
}

// OtherParticipant returns the counterpart of userID, or uuid.Nil when
// userID is not a party.
func (c *Conversation) OtherParticipant(userID uuid.UUID) uuid.UUID {
	switch userID {
	case c.ParticipantA:
		return c.ParticipantB
	case c.ParticipantB:
		return c.ParticipantA
	}
	return uuid.Nil
}

// NormalizePair orders two participant ids so (a,b) and (b,a) address the
// same conversation.
func NormalizePair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if b.String() < a.String() {
		return b, a
	}
	return a, b
}

// Message is a single chat message. IsAI marks messages generated on a
// doctor's behalf; their SenderID is the doctor's id.
type Message struct {
	ID             uuid.UUID `json:"id"`
	ConversationID uuid.UUID `json:"conversationId"`
	SenderID       uuid.UUID `json:"senderId"`
	ReceiverID     uuid.UUID `json:"receiverId"`
	Body           string    `json:"message"`
	IsAI           bool      `json:"isAI"`
	CreatedAt      time.Time `json:"createdAt"`
}
