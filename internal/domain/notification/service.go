package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	ws "github.com/telecare/telecare/internal/platform/websocket"
)

// Pusher delivers an event to every live session of a user. Satisfied by the
// websocket hub; delivery to zero sessions is not an error.
type Pusher interface {
	PushToUser(userID uuid.UUID, event string, payload interface{}) int
}

type Service struct {
	repo   Repository
	pusher Pusher
	logger zerolog.Logger
}

func NewService(repo Repository, pusher Pusher, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		pusher: pusher,
		logger: logger.With().Str("component", "notification").Logger(),
	}
}

// Create persists a notification and pushes it to the user's sessions. The
// push is best-effort; an offline user sees the entry on next feed load.
func (s *Service) Create(ctx context.Context, n *Notification) error {
	if n.UserID == uuid.Nil {
		return fmt.Errorf("user id is required")
	}
	if n.Title == "" {
		return fmt.Errorf("title is required")
	}
	if n.Type == "" {
		n.Type = TypeSystem
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	s.pusher.PushToUser(n.UserID, ws.EventNotificationNew, n)
	return nil
}

// MessageReceived records a chat-message notification. The preview is
// already truncated by the caller.
func (s *Service) MessageReceived(ctx context.Context, userID, fromUserID, conversationID uuid.UUID, fromName, preview string) error {
	title := "New message"
	if fromName != "" {
		title = fmt.Sprintf("New message from %s", fromName)
	}
	return s.Create(ctx, &Notification{
		UserID:         userID,
		FromUserID:     &fromUserID,
		ConversationID: &conversationID,
		Type:           TypeMessage,
		Title:          title,
		Message:        preview,
		Link:           fmt.Sprintf("/chat/%s", conversationID),
	})
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*Notification, int, int, error) {
	items, total, err := s.repo.List(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, 0, 0, err
	}
	unread, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return nil, 0, 0, err
	}
	return items, total, unread, nil
}

// MarkRead marks one notification read; only its owner may do so.
func (s *Service) MarkRead(ctx context.Context, id, userID uuid.UUID) (*Notification, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, ErrNotFound
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return nil, err
	}
	n.IsRead = true
	return n, nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllRead(ctx, userID)
}

// Delete removes a notification; only its owner may do so.
func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}
