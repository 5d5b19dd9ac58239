package aireply

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/telecare/telecare/internal/domain/directory"
	"github.com/telecare/telecare/internal/platform/llm"
)

const (
	maxHistoryTurns = 12
	maxContextNotes = 5
)

// HistorySource supplies recent conversation turns in chronological order.
type HistorySource interface {
	RecentTurns(ctx context.Context, conversationID, doctorID uuid.UUID, limit int) ([]Turn, error)
}

// NoteSource supplies the doctor's most recent private notes for a patient,
// newest first.
type NoteSource interface {
	RecentNotes(ctx context.Context, doctorID, patientID uuid.UUID, limit int) ([]string, error)
}

// UserSource resolves display names for the prompt and fallback reply.
type UserSource interface {
	GetUser(ctx context.Context, id uuid.UUID) (*directory.User, error)
}

// Generator runs the auto-reply pipeline: resolve enablement, gather
// context, try each provider in order with a bounded timeout, and fall back
// to the deterministic reply when all of them fail. Once resolution says
// enabled, AutoReply always returns a non-empty reply.
type Generator struct {
	resolver  *Resolver
	history   HistorySource
	notes     NoteSource
	users     UserSource
	providers []llm.ReplyProvider
	timeout   time.Duration
	logger    zerolog.Logger
}

func NewGenerator(resolver *Resolver, history HistorySource, notes NoteSource, users UserSource, providers []llm.ReplyProvider, timeout time.Duration, logger zerolog.Logger) *Generator {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Generator{
		resolver:  resolver,
		history:   history,
		notes:     notes,
		users:     users,
		providers: providers,
		timeout:   timeout,
		logger:    logger.With().Str("component", "aireply").Logger(),
	}
}

// AutoReply produces the doctor's auto-reply for an inbound patient message,
// or "" when auto-reply is not enabled for this conversation. Context
// gathering is fail-open: a broken history or note store degrades the prompt
// but never suppresses the reply.
func (g *Generator) AutoReply(ctx context.Context, conversationID, doctorID, patientID uuid.UUID, message string) (string, error) {
	decision, err := g.resolver.Effective(ctx, conversationID, doctorID)
	if err != nil {
		return "", err
	}
	if !decision.Enabled {
		return "", nil
	}

	doctorName := g.displayName(ctx, doctorID, "your doctor")
	patientName := g.displayName(ctx, patientID, "")

	turns, err := g.history.RecentTurns(ctx, conversationID, doctorID, maxHistoryTurns)
	if err != nil {
		g.logger.Warn().Err(err).Str("conversation", conversationID.String()).Msg("history unavailable for prompt")
		turns = nil
	}
	notes, err := g.notes.RecentNotes(ctx, doctorID, patientID, maxContextNotes)
	if err != nil {
		g.logger.Warn().Err(err).Str("doctor", doctorID.String()).Msg("notes unavailable for prompt")
		notes = nil
	}

	prompt := BuildPrompt(PromptInput{
		DoctorName:   doctorName,
		PatientName:  patientName,
		Instructions: decision.Instructions,
		Notes:        notes,
		History:      turns,
		Message:      message,
	})

	for _, p := range g.providers {
		if reply := g.tryProvider(ctx, p, prompt); reply != "" {
			return reply, nil
		}
	}

	latestNote := ""
	if len(notes) > 0 {
		latestNote = notes[0]
	}
	return FallbackReply(FallbackInput{
		PatientName: patientName,
		DoctorName:  doctorName,
		Message:     message,
		Note:        latestNote,
	}), nil
}

// tryProvider runs one provider attempt under the configured timeout. Errors
// and empty results are equivalent: move on to the next link in the chain.
func (g *Generator) tryProvider(ctx context.Context, p llm.ReplyProvider, prompt string) string {
	attemptCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	reply, err := p.GenerateReply(attemptCtx, prompt)
	if err != nil {
		g.logger.Warn().Err(err).Str("provider", p.Name()).Msg("reply provider failed")
		return ""
	}
	return reply
}

func (g *Generator) displayName(ctx context.Context, id uuid.UUID, fallback string) string {
	u, err := g.users.GetUser(ctx, id)
	if err != nil {
		return fallback
	}
	return u.Name
}
