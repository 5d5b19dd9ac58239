package chat

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/telecare/telecare/internal/domain/directory"
	ws "github.com/telecare/telecare/internal/platform/websocket"
)

type pushRecord struct {
	userID  uuid.UUID
	event   string
	payload interface{}
}

type mockDeliverer struct {
	pushes []pushRecord
	online map[uuid.UUID]int
}

func (m *mockDeliverer) PushToUser(userID uuid.UUID, event string, payload interface{}) int {
	m.pushes = append(m.pushes, pushRecord{userID: userID, event: event, payload: payload})
	if m.online == nil {
		return 1
	}
	return m.online[userID]
}

func (m *mockDeliverer) pushesFor(userID uuid.UUID, event string) int {
	n := 0
	for _, p := range m.pushes {
		if p.userID == userID && p.event == event {
			n++
		}
	}
	return n
}

type notifyRecord struct {
	userID uuid.UUID
	from   uuid.UUID
}

type mockNotifier struct {
	records []notifyRecord
	err     error
}

func (m *mockNotifier) MessageReceived(_ context.Context, userID, fromUserID, conversationID uuid.UUID, fromName, preview string) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, notifyRecord{userID: userID, from: fromUserID})
	return nil
}

type mockReplies struct {
	reply string
	err   error
	calls int
}

func (m *mockReplies) AutoReply(_ context.Context, conversationID, doctorID, patientID uuid.UUID, message string) (string, error) {
	m.calls++
	return m.reply, m.err
}

type mockDirectory struct {
	users map[uuid.UUID]*directory.User
}

func (m *mockDirectory) GetUser(_ context.Context, id uuid.UUID) (*directory.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, directory.ErrNotFound
}

type relayFixture struct {
	relay     *Relay
	convs     *mockConversationRepo
	msgs      *mockMessageRepo
	deliverer *mockDeliverer
	notifier  *mockNotifier
	replies   *mockReplies
	doctor    *directory.User
	patient   *directory.User
	conv      *Conversation
}

func newRelayFixture(t *testing.T) *relayFixture {
	t.Helper()
	doctor := &directory.User{ID: uuid.New(), Name: "Dr. Rao", Role: directory.RoleDoctor}
	patient := &directory.User{ID: uuid.New(), Name: "Asha", Role: directory.RolePatient}

	convs := newMockConversationRepo()
	msgs := &mockMessageRepo{}
	deliverer := &mockDeliverer{}
	notifier := &mockNotifier{}
	replies := &mockReplies{}
	dir := &mockDirectory{users: map[uuid.UUID]*directory.User{
		doctor.ID:  doctor,
		patient.ID: patient,
	}}

	svc := NewService(convs, msgs)
	relay := NewRelay(svc, deliverer, notifier, replies, dir, zerolog.Nop())

	conv, err := svc.FindOrCreateConversation(context.Background(), doctor.ID, patient.ID)
	if err != nil {
		t.Fatalf("creating fixture conversation: %v", err)
	}

	return &relayFixture{
		relay:     relay,
		convs:     convs,
		msgs:      msgs,
		deliverer: deliverer,
		notifier:  notifier,
		replies:   replies,
		doctor:    doctor,
		patient:   patient,
		conv:      conv,
	}
}

func TestRelayMessage_Validation(t *testing.T) {
	f := newRelayFixture(t)
	ctx := context.Background()

	if err := f.relay.RelayMessage(ctx, f.conv.ID, f.patient.ID, f.doctor.ID, "   "); err == nil {
		t.Error("expected error for empty body")
	}
	if err := f.relay.RelayMessage(ctx, uuid.Nil, f.patient.ID, f.doctor.ID, "hi"); err == nil {
		t.Error("expected error for missing conversation id")
	}
	if err := f.relay.RelayMessage(ctx, f.conv.ID, f.patient.ID, f.patient.ID, "hi"); err == nil {
		t.Error("expected error for self message")
	}
	if err := f.relay.RelayMessage(ctx, f.conv.ID, uuid.Nil, f.doctor.ID, "hi"); err == nil {
		t.Error("expected error for missing sender")
	}
	if len(f.msgs.messages) != 0 {
		t.Fatalf("expected no messages persisted, got %d", len(f.msgs.messages))
	}
}

func TestRelayMessage_UnknownConversation(t *testing.T) {
	f := newRelayFixture(t)

	err := f.relay.RelayMessage(context.Background(), uuid.New(), f.patient.ID, f.doctor.ID, "hi")
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRelayMessage_PersistsAndFansOutToBothParties(t *testing.T) {
	f := newRelayFixture(t)
	f.replies.reply = "" // auto-reply disabled

	err := f.relay.RelayMessage(context.Background(), f.conv.ID, f.patient.ID, f.doctor.ID, "I have a headache")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.msgs.messages) != 1 {
		t.Fatalf("expected 1 persisted message, got %d", len(f.msgs.messages))
	}
	if f.msgs.messages[0].IsAI {
		t.Error("human message must not be flagged as AI")
	}
	if f.deliverer.pushesFor(f.doctor.ID, ws.EventMessageReceive) != 1 {
		t.Error("expected delivery to the receiver")
	}
	if f.deliverer.pushesFor(f.patient.ID, ws.EventMessageReceive) != 1 {
		t.Error("expected echo delivery to the sender's sessions")
	}
	if len(f.notifier.records) != 1 || f.notifier.records[0].userID != f.doctor.ID {
		t.Error("expected one notification for the receiver")
	}
}

func TestRelayMessage_UpdatesConversationSummary(t *testing.T) {
	f := newRelayFixture(t)

	err := f.relay.RelayMessage(context.Background(), f.conv.ID, f.patient.ID, f.doctor.ID, "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	conv := f.convs.byID[f.conv.ID]
	if conv.LastMessage != "hello" {
		t.Errorf("expected summary updated, got %q", conv.LastMessage)
	}
	if conv.LastSenderID == nil || *conv.LastSenderID != f.patient.ID {
		t.Error("expected last sender recorded")
	}
}

func TestRelayMessage_AutoReplyProducesExactlyTwoMessages(t *testing.T) {
	f := newRelayFixture(t)
	f.replies.reply = "Please rest and stay hydrated."

	err := f.relay.RelayMessage(context.Background(), f.conv.ID, f.patient.ID, f.doctor.ID, "I have a fever")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.msgs.messages) != 2 {
		t.Fatalf("expected exactly 2 messages (human + AI), got %d", len(f.msgs.messages))
	}
	ai := f.msgs.messages[1]
	if !ai.IsAI {
		t.Error("expected second message flagged as AI")
	}
	if ai.SenderID != f.doctor.ID || ai.ReceiverID != f.patient.ID {
		t.Error("expected AI reply sent from doctor to patient")
	}
	if f.deliverer.pushesFor(f.patient.ID, ws.EventMessageReceive) != 2 {
		t.Error("expected patient to receive echo plus AI reply")
	}
	if f.replies.calls != 1 {
		t.Fatalf("expected one auto-reply resolution, got %d", f.replies.calls)
	}
}

func TestRelayMessage_NoAutoReplyForDoctorSender(t *testing.T) {
	f := newRelayFixture(t)
	f.replies.reply = "should never be used"

	err := f.relay.RelayMessage(context.Background(), f.conv.ID, f.doctor.ID, f.patient.ID, "Please book a follow-up")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.replies.calls != 0 {
		t.Fatal("auto-reply must not trigger for messages sent to a patient")
	}
	if len(f.msgs.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(f.msgs.messages))
	}
}

func TestRelayMessage_AutoReplyFailureDoesNotFailDelivery(t *testing.T) {
	f := newRelayFixture(t)
	f.replies.err = fmt.Errorf("all providers unavailable")

	err := f.relay.RelayMessage(context.Background(), f.conv.ID, f.patient.ID, f.doctor.ID, "hello doctor")
	if err != nil {
		t.Fatalf("human message must survive auto-reply failure, got %v", err)
	}
	if len(f.msgs.messages) != 1 {
		t.Fatalf("expected only the human message, got %d", len(f.msgs.messages))
	}
}

func TestRelayMessage_NotificationFailureDoesNotFailDelivery(t *testing.T) {
	f := newRelayFixture(t)
	f.notifier.err = fmt.Errorf("notification store down")

	err := f.relay.RelayMessage(context.Background(), f.conv.ID, f.patient.ID, f.doctor.ID, "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.msgs.messages) != 1 {
		t.Fatalf("expected message persisted, got %d", len(f.msgs.messages))
	}
}

func TestRelayMessage_RejectsNonParticipantConversation(t *testing.T) {
	f := newRelayFixture(t)

	stranger := uuid.New()
	conv, err := f.relay.svc.FindOrCreateConversation(context.Background(), f.doctor.ID, stranger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = f.relay.RelayMessage(context.Background(), conv.ID, f.patient.ID, f.doctor.ID, "hi")
	if err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestRelayMessage_OfflineReceiverStillPersists(t *testing.T) {
	f := newRelayFixture(t)
	f.deliverer.online = map[uuid.UUID]int{f.patient.ID: 1} // doctor offline

	err := f.relay.RelayMessage(context.Background(), f.conv.ID, f.patient.ID, f.doctor.ID, "are you there?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.msgs.messages) != 1 {
		t.Fatalf("expected message persisted for offline receiver, got %d", len(f.msgs.messages))
	}
	if len(f.notifier.records) != 1 {
		t.Fatal("expected notification recorded for offline receiver")
	}
}

func TestRelayMessage_SummaryFailureStillDelivers(t *testing.T) {
	f := newRelayFixture(t)
	f.convs.summaryErr = fmt.Errorf("summary table locked")

	err := f.relay.RelayMessage(context.Background(), f.conv.ID, f.patient.ID, f.doctor.ID, "hello")
	if err != nil {
		t.Fatalf("a persisted message must be delivered despite a summary failure: %v", err)
	}
	if len(f.msgs.messages) != 1 {
		t.Fatalf("expected 1 persisted message, got %d", len(f.msgs.messages))
	}
	if got := f.deliverer.pushesFor(f.doctor.ID, ws.EventMessageReceive); got != 1 {
		t.Errorf("expected 1 delivery to receiver, got %d", got)
	}
	if got := f.deliverer.pushesFor(f.patient.ID, ws.EventMessageReceive); got != 1 {
		t.Errorf("expected 1 echo to sender, got %d", got)
	}
	if len(f.notifier.records) != 1 {
		t.Errorf("expected receiver notified, got %d records", len(f.notifier.records))
	}
}
