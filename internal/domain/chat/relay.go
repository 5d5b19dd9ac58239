package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/telecare/telecare/internal/domain/directory"
	ws "github.com/telecare/telecare/internal/platform/websocket"
)

// MaxMessageLength bounds a single chat message body.
const MaxMessageLength = 10000

// Deliverer pushes an event to every live session of a user. Satisfied by
// the websocket hub.
type Deliverer interface {
	PushToUser(userID uuid.UUID, event string, payload interface{}) int
}

// Notifier records a message notification for a user who should see it in
// their notification feed.
type Notifier interface {
	MessageReceived(ctx context.Context, userID, fromUserID, conversationID uuid.UUID, fromName, preview string) error
}

// ReplyGenerator produces a doctor's auto-reply for an incoming patient
// message. An empty reply with nil error means auto-reply is disabled for
// this conversation.
type ReplyGenerator interface {
	AutoReply(ctx context.Context, conversationID, doctorID, patientID uuid.UUID, message string) (string, error)
}

// UserDirectory resolves accounts for role checks and display names.
type UserDirectory interface {
	GetUser(ctx context.Context, id uuid.UUID) (*directory.User, error)
}

// Relay is the message pipeline: validate, persist, fan out to both parties,
// notify the receiver, then (when resolution allows) generate and deliver a
// doctor auto-reply. It implements the websocket gateway's MessageRelay.
type Relay struct {
	svc       *Service
	deliverer Deliverer
	notifier  Notifier
	replies   ReplyGenerator
	directory UserDirectory
	logger    zerolog.Logger
}

func NewRelay(svc *Service, deliverer Deliverer, notifier Notifier, replies ReplyGenerator, dir UserDirectory, logger zerolog.Logger) *Relay {
	return &Relay{
		svc:       svc,
		deliverer: deliverer,
		notifier:  notifier,
		replies:   replies,
		directory: dir,
		logger:    logger.With().Str("component", "relay").Logger(),
	}
}

// RelayMessage runs the pipeline for one inbound message. Persistence and
// fan-out errors fail the call; notification and auto-reply failures are
// logged and never block the human message.
func (r *Relay) RelayMessage(ctx context.Context, conversationID, from, to uuid.UUID, body string) error {
	body = strings.TrimSpace(body)
	if body == "" {
		return fmt.Errorf("message body is required")
	}
	if len(body) > MaxMessageLength {
		return fmt.Errorf("message exceeds %d characters", MaxMessageLength)
	}
	if conversationID == uuid.Nil {
		return fmt.Errorf("conversation id is required")
	}
	if from == uuid.Nil || to == uuid.Nil {
		return fmt.Errorf("sender and receiver are required")
	}
	if from == to {
		return fmt.Errorf("cannot message yourself")
	}

	conv, err := r.svc.GetConversation(ctx, conversationID)
	if err != nil {
		return err
	}
	if !conv.HasParticipant(from) || !conv.HasParticipant(to) {
		return ErrUnauthorized
	}

	msg := &Message{
		ConversationID: conv.ID,
		SenderID:       from,
		ReceiverID:     to,
		Body:           body,
	}
	if err := r.svc.AppendMessage(ctx, msg); err != nil {
		return fmt.Errorf("persisting message: %w", err)
	}
	r.updateSummary(ctx, msg)

	r.fanOut(msg)
	r.notify(ctx, msg)
	r.maybeAutoReply(ctx, conv, msg)
	return nil
}

// updateSummary refreshes the conversation preview. The message is already
// durable at this point, so a stale summary is logged rather than surfaced
// to the sender.
func (r *Relay) updateSummary(ctx context.Context, msg *Message) {
	if err := r.svc.UpdateSummary(ctx, msg.ConversationID, msg.Body, msg.SenderID); err != nil {
		r.logger.Warn().Err(err).
			Str("conversation", msg.ConversationID.String()).
			Msg("conversation summary update failed")
	}
}

// fanOut delivers the message to every live session of both parties. Sender
// sessions receive it too so all of a user's devices stay in sync.
func (r *Relay) fanOut(msg *Message) {
	delivered := r.deliverer.PushToUser(msg.ReceiverID, ws.EventMessageReceive, msg)
	r.deliverer.PushToUser(msg.SenderID, ws.EventMessageReceive, msg)
	if delivered == 0 {
		r.logger.Debug().
			Str("receiver", msg.ReceiverID.String()).
			Msg("receiver offline, message stored only")
	}
}

func (r *Relay) notify(ctx context.Context, msg *Message) {
	fromName := ""
	if sender, err := r.directory.GetUser(ctx, msg.SenderID); err == nil {
		fromName = sender.Name
	}
	if err := r.notifier.MessageReceived(ctx, msg.ReceiverID, msg.SenderID, msg.ConversationID, fromName, preview(msg.Body)); err != nil {
		r.logger.Warn().Err(err).
			Str("receiver", msg.ReceiverID.String()).
			Msg("recording message notification failed")
	}
}

// maybeAutoReply triggers the AI pipeline when the receiver is a doctor and
// the sender is not. Resolution happens inside the generator, freshly per
// message; any failure is logged and swallowed.
func (r *Relay) maybeAutoReply(ctx context.Context, conv *Conversation, msg *Message) {
	receiver, err := r.directory.GetUser(ctx, msg.ReceiverID)
	if err != nil {
		r.logger.Warn().Err(err).Str("receiver", msg.ReceiverID.String()).Msg("auto-reply receiver lookup failed")
		return
	}
	if receiver.Role != directory.RoleDoctor {
		return
	}
	sender, err := r.directory.GetUser(ctx, msg.SenderID)
	if err != nil {
		r.logger.Warn().Err(err).Str("sender", msg.SenderID.String()).Msg("auto-reply sender lookup failed")
		return
	}
	if sender.Role == directory.RoleDoctor {
		return
	}

	reply, err := r.replies.AutoReply(ctx, conv.ID, msg.ReceiverID, msg.SenderID, msg.Body)
	if err != nil {
		r.logger.Warn().Err(err).
			Str("conversation", conv.ID.String()).
			Msg("auto-reply generation failed")
		return
	}
	if reply == "" {
		return
	}

	aiMsg := &Message{
		ConversationID: conv.ID,
		SenderID:       msg.ReceiverID,
		ReceiverID:     msg.SenderID,
		Body:           reply,
		IsAI:           true,
	}
	if err := r.svc.AppendMessage(ctx, aiMsg); err != nil {
		r.logger.Error().Err(err).
			Str("conversation", conv.ID.String()).
			Msg("persisting auto-reply failed")
		return
	}
	r.updateSummary(ctx, aiMsg)

	r.fanOut(aiMsg)
	r.notify(ctx, aiMsg)
	r.logger.Info().
		Str("conversation", conv.ID.String()).
		Str("doctor", msg.ReceiverID.String()).
		Msg("auto-reply delivered")
}

func preview(body string) string {
	const max = 120
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	return string(runes[:max]) + "…"
}
