package chat

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type conversationRepoPG struct{ pool *pgxpool.Pool }

func NewConversationRepoPG(pool *pgxpool.Pool) ConversationRepository {
	return &conversationRepoPG{pool: pool}
}

const convCols = `id, participant_a, participant_b, last_message, last_sender_id,
	ai_auto_reply, created_at, updated_at`

func scanConversation(row pgx.Row) (*Conversation, error) {
	var c Conversation
	err := row.Scan(&c.ID, &c.ParticipantA, &c.ParticipantB,
		&c.LastMessage, &c.LastSenderID, &c.AIAutoReply,
		&c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &c, err
}

func (r *conversationRepoPG) Create(ctx context.Context, c *Conversation) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.ParticipantA, c.ParticipantB = NormalizePair(c.ParticipantA, c.ParticipantB)
	_, err := r.pool.Exec(ctx, `
		INSERT INTO conversations (id, participant_a, participant_b, ai_auto_reply)
		VALUES ($1,$2,$3,$4)`,
		c.ID, c.ParticipantA, c.ParticipantB, c.AIAutoReply)
	return err
}

func (r *conversationRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Conversation, error) {
	return scanConversation(r.pool.QueryRow(ctx,
		`SELECT `+convCols+` FROM conversations WHERE id = $1`, id))
}

func (r *conversationRepoPG) GetByParticipants(ctx context.Context, a, b uuid.UUID) (*Conversation, error) {
	a, b = NormalizePair(a, b)
	return scanConversation(r.pool.QueryRow(ctx,
		`SELECT `+convCols+` FROM conversations WHERE participant_a = $1 AND participant_b = $2`, a, b))
}

func (r *conversationRepoPG) ListByParticipant(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Conversation, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM conversations WHERE participant_a = $1 OR participant_b = $1`,
		userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+convCols+` FROM conversations
		WHERE participant_a = $1 OR participant_b = $1
		ORDER BY updated_at DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, nil
}

func (r *conversationRepoPG) SetAIAutoReply(ctx context.Context, id uuid.UUID, enabled *bool) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE conversations SET ai_auto_reply=$2, updated_at=NOW() WHERE id = $1`,
		id, enabled)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *conversationRepoPG) UpdateSummary(ctx context.Context, id uuid.UUID, lastMessage string, lastSenderID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE conversations SET last_message=$2, last_sender_id=$3, updated_at=NOW()
		WHERE id = $1`,
		id, lastMessage, lastSenderID)
	return err
}

type messageRepoPG struct{ pool *pgxpool.Pool }

func NewMessageRepoPG(pool *pgxpool.Pool) MessageRepository {
	return &messageRepoPG{pool: pool}
}

const msgCols = `id, conversation_id, sender_id, receiver_id, body, is_ai, created_at`

func scanMessage(row pgx.Row) (*Message, error) {
	var m Message
	err := row.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.ReceiverID,
		&m.Body, &m.IsAI, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &m, err
}

func (r *messageRepoPG) Create(ctx context.Context, m *Message) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, receiver_id, body, is_ai)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at`,
		m.ID, m.ConversationID, m.SenderID, m.ReceiverID, m.Body, m.IsAI).
		Scan(&m.CreatedAt)
}

func (r *messageRepoPG) ListRecent(ctx context.Context, conversationID uuid.UUID, limit int) ([]*Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+msgCols+` FROM (
			SELECT `+msgCols+` FROM messages
			WHERE conversation_id = $1
			ORDER BY created_at DESC LIMIT $2
		) recent ORDER BY created_at ASC`, conversationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, nil
}

func (r *messageRepoPG) ListByConversation(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]*Message, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE conversation_id = $1`,
		conversationID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+msgCols+` FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC LIMIT $2 OFFSET $3`, conversationID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, nil
}
