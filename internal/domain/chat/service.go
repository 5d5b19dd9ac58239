package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	conversations ConversationRepository
	messages      MessageRepository
}

func NewService(conversations ConversationRepository, messages MessageRepository) *Service {
	return &Service{conversations: conversations, messages: messages}
}

// FindOrCreateConversation returns the thread for a participant pair,
// creating it on first contact. Concurrent first messages may race on the
// insert; the loser re-reads and both callers converge on one row.
func (s *Service) FindOrCreateConversation(ctx context.Context, a, b uuid.UUID) (*Conversation, error) {
	if a == uuid.Nil || b == uuid.Nil {
		return nil, fmt.Errorf("both participants are required")
	}
	if a == b {
		return nil, fmt.Errorf("cannot open a conversation with yourself")
	}

	conv, err := s.conversations.GetByParticipants(ctx, a, b)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	conv = &Conversation{ParticipantA: a, ParticipantB: b}
	if createErr := s.conversations.Create(ctx, conv); createErr != nil {
		if existing, getErr := s.conversations.GetByParticipants(ctx, a, b); getErr == nil {
			return existing, nil
		}
		return nil, createErr
	}
	return conv, nil
}

func (s *Service) GetConversation(ctx context.Context, id uuid.UUID) (*Conversation, error) {
	return s.conversations.GetByID(ctx, id)
}

func (s *Service) ListConversations(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Conversation, int, error) {
	return s.conversations.ListByParticipant(ctx, userID, limit, offset)
}

// SetAIOverride writes the conversation-level auto-reply override. Only the
// doctor party may set it, and only for conversations they belong to.
func (s *Service) SetAIOverride(ctx context.Context, conversationID, callerID uuid.UUID, callerRole string, enabled *bool) (*Conversation, error) {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if callerRole != "doctor" || !conv.HasParticipant(callerID) {
		return nil, ErrUnauthorized
	}
	if err := s.conversations.SetAIAutoReply(ctx, conversationID, enabled); err != nil {
		return nil, err
	}
	conv.AIAutoReply = enabled
	return conv, nil
}

// AIOverride returns the conversation's tri-state auto-reply override. Used
// by the auto-reply resolver; the value is read fresh for every message.
func (s *Service) AIOverride(ctx context.Context, conversationID uuid.UUID) (*bool, error) {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return conv.AIAutoReply, nil
}

// RecentMessages returns up to limit of the newest messages, oldest first.
func (s *Service) RecentMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]*Message, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.messages.ListRecent(ctx, conversationID, limit)
}

// MessageHistory returns a page of a conversation's messages. The caller
// must be a participant.
func (s *Service) MessageHistory(ctx context.Context, conversationID, callerID uuid.UUID, limit, offset int) ([]*Message, int, error) {
	conv, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, 0, err
	}
	if !conv.HasParticipant(callerID) {
		return nil, 0, ErrUnauthorized
	}
	return s.messages.ListByConversation(ctx, conversationID, limit, offset)
}

// AppendMessage persists a message. The conversation summary is refreshed
// separately via UpdateSummary; a message is durable once this returns nil.
func (s *Service) AppendMessage(ctx context.Context, m *Message) error {
	return s.messages.Create(ctx, m)
}

// UpdateSummary refreshes the conversation's last-message preview. The
// summary is display-only and not atomic with message persistence; callers
// may treat a failure here as non-fatal.
func (s *Service) UpdateSummary(ctx context.Context, conversationID uuid.UUID, lastMessage string, lastSenderID uuid.UUID) error {
	return s.conversations.UpdateSummary(ctx, conversationID, lastMessage, lastSenderID)
}
