package chat

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a conversation or message does not exist.
var ErrNotFound = errors.New("chat: not found")

// ErrUnauthorized is returned when the caller is not allowed to act on a
// conversation.
var ErrUnauthorized = errors.New("chat: unauthorized")

type ConversationRepository interface {
	Create(ctx context.Context, c *Conversation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Conversation, error)
	// GetByParticipants looks up the conversation for a normalized pair.
	GetByParticipants(ctx context.Context, a, b uuid.UUID) (*Conversation, error)
	ListByParticipant(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Conversation, int, error)
	// SetAIAutoReply writes the tri-state override; nil clears it back to
	// inherit.
	SetAIAutoReply(ctx context.Context, id uuid.UUID, enabled *bool) error
	// UpdateSummary refreshes the last-message preview shown in listings.
	UpdateSummary(ctx context.Context, id uuid.UUID, lastMessage string, lastSenderID uuid.UUID) error
}

type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	// ListRecent returns up to limit of the newest messages in chronological
	// order (oldest first).
	ListRecent(ctx context.Context, conversationID uuid.UUID, limit int) ([]*Message, error)
	ListByConversation(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]*Message, int, error)
}
