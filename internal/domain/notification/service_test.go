package notification

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	ws "github.com/telecare/telecare/internal/platform/websocket"
)

type mockRepo struct {
	notifications map[uuid.UUID]*Notification
	order         []uuid.UUID
}

func newMockRepo() *mockRepo {
	return &mockRepo{notifications: make(map[uuid.UUID]*Notification)}
}

func (m *mockRepo) Create(_ context.Context, n *Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.CreatedAt = time.Now()
	m.notifications[n.ID] = n
	m.order = append(m.order, n.ID)
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Notification, error) {
	if n, ok := m.notifications[id]; ok {
		return n, nil
	}
	return nil, ErrNotFound
}

func (m *mockRepo) List(_ context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]*Notification, int, error) {
	var out []*Notification
	for i := len(m.order) - 1; i >= 0; i-- {
		n := m.notifications[m.order[i]]
		if n == nil || n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	total := len(out)
	if offset >= len(out) {
		return nil, total, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (m *mockRepo) UnreadCount(_ context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *mockRepo) MarkRead(_ context.Context, id uuid.UUID) error {
	n, ok := m.notifications[id]
	if !ok {
		return ErrNotFound
	}
	n.IsRead = true
	return nil
}

func (m *mockRepo) MarkAllRead(_ context.Context, userID uuid.UUID) error {
	for _, n := range m.notifications {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.notifications[id]; !ok {
		return ErrNotFound
	}
	delete(m.notifications, id)
	return nil
}

type mockPusher struct {
	events []string
	users  []uuid.UUID
}

func (m *mockPusher) PushToUser(userID uuid.UUID, event string, payload interface{}) int {
	m.events = append(m.events, event)
	m.users = append(m.users, userID)
	return 1
}

func TestCreate_PersistsAndPushes(t *testing.T) {
	repo := newMockRepo()
	pusher := &mockPusher{}
	svc := NewService(repo, pusher, zerolog.Nop())
	userID := uuid.New()

	err := svc.Create(context.Background(), &Notification{
		UserID: userID,
		Title:  "New message",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.notifications) != 1 {
		t.Fatalf("expected 1 stored notification, got %d", len(repo.notifications))
	}
	if len(pusher.events) != 1 || pusher.events[0] != ws.EventNotificationNew {
		t.Fatalf("expected %s push, got %v", ws.EventNotificationNew, pusher.events)
	}
	if pusher.users[0] != userID {
		t.Fatal("expected push to the notification owner")
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newMockRepo(), &mockPusher{}, zerolog.Nop())

	if err := svc.Create(context.Background(), &Notification{Title: "x"}); err == nil {
		t.Error("expected error for missing user id")
	}
	if err := svc.Create(context.Background(), &Notification{UserID: uuid.New()}); err == nil {
		t.Error("expected error for missing title")
	}
}

func TestMessageReceived_BuildsMessageNotification(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &mockPusher{}, zerolog.Nop())
	userID, fromID, convID := uuid.New(), uuid.New(), uuid.New()

	err := svc.MessageReceived(context.Background(), userID, fromID, convID, "Asha", "I have a headache")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items, _, unread, err := svc.List(context.Background(), userID, false, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(items))
	}
	n := items[0]
	if n.Type != TypeMessage {
		t.Errorf("expected type %s, got %s", TypeMessage, n.Type)
	}
	if n.Title != "New message from Asha" {
		t.Errorf("unexpected title %q", n.Title)
	}
	if n.FromUserID == nil || *n.FromUserID != fromID {
		t.Error("expected sender recorded")
	}
	if unread != 1 {
		t.Errorf("expected unread count 1, got %d", unread)
	}
}

func TestMarkRead_OwnerOnly(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &mockPusher{}, zerolog.Nop())
	userID := uuid.New()

	n := &Notification{UserID: userID, Title: "hello"}
	if err := svc.Create(context.Background(), n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.MarkRead(context.Background(), n.ID, uuid.New()); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for non-owner, got %v", err)
	}

	got, err := svc.MarkRead(context.Background(), n.ID, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsRead {
		t.Fatal("expected notification marked read")
	}

	count, _ := repo.UnreadCount(context.Background(), userID)
	if count != 0 {
		t.Fatalf("expected 0 unread, got %d", count)
	}
}

func TestList_UnreadOnlyFilter(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &mockPusher{}, zerolog.Nop())
	userID := uuid.New()

	a := &Notification{UserID: userID, Title: "a"}
	b := &Notification{UserID: userID, Title: "b"}
	for _, n := range []*Notification{a, b} {
		if err := svc.Create(context.Background(), n); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if _, err := svc.MarkRead(context.Background(), a.ID, userID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	items, _, _, err := svc.List(context.Background(), userID, true, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].ID != b.ID {
		t.Fatal("expected only the unread notification")
	}
}

func TestDelete_OwnerOnly(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, &mockPusher{}, zerolog.Nop())
	userID := uuid.New()

	n := &Notification{UserID: userID, Title: "x"}
	if err := svc.Create(context.Background(), n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Delete(context.Background(), n.ID, uuid.New()); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for non-owner, got %v", err)
	}
	if err := svc.Delete(context.Background(), n.ID, userID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
