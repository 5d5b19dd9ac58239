// Package websocket provides the real-time layer of the telehealth backend:
// a presence registry tracking which users are connected through which
// sessions, and a gateway that multiplexes chat, typing, call-signaling and
// notification events over a single WebSocket connection per session.
package websocket

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Conn abstracts a WebSocket connection for testability.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client represents a single live session. A user with several devices or
// tabs open holds several clients at once.
type Client struct {
	ID   string
	Send chan []byte
	conn Conn

	// userID is set by Hub.Bind once the session announces itself via
	// user:online; uuid.Nil until then. Guarded by the hub mutex.
	userID uuid.UUID
}

// Hub is the presence registry: it tracks connected sessions and which user
// each belongs to, and fans events out to all sessions of a user. All
// operations are thread-safe via sync.RWMutex. State is purely in-memory;
// clients re-announce themselves on reconnect after a restart.
type Hub struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]map[*Client]struct{} // user -> set of sessions
	all      map[*Client]struct{}               // all connected sessions
	logger   zerolog.Logger
}

// NewHub creates a Hub ready to track sessions.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		sessions: make(map[uuid.UUID]map[*Client]struct{}),
		all:      make(map[*Client]struct{}),
		logger:   logger,
	}
}

// Register adds a freshly upgraded session to the hub. The session does not
// count toward any user's presence until Bind is called.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.all[client] = struct{}{}
}

// Bind associates a session with a user, marking the user online. Idempotent
// per session; rebinding to a different user moves the session. Every bind
// triggers a presence broadcast.
func (h *Hub) Bind(client *Client, userID uuid.UUID) {
	h.mu.Lock()
	if _, ok := h.all[client]; !ok {
		h.mu.Unlock()
		return
	}
	if client.userID == userID {
		h.mu.Unlock()
		h.BroadcastPresence()
		return
	}
	h.detachLocked(client)
	client.userID = userID
	if h.sessions[userID] == nil {
		h.sessions[userID] = make(map[*Client]struct{})
	}
	h.sessions[userID][client] = struct{}{}
	h.mu.Unlock()

	h.BroadcastPresence()
}

// detachLocked removes the client from its user's session set. Caller holds
// the write lock. Returns true if the user went fully offline.
func (h *Hub) detachLocked(client *Client) bool {
	if client.userID == uuid.Nil {
		return false
	}
	set, ok := h.sessions[client.userID]
	if !ok {
		return false
	}
	delete(set, client)
	if len(set) == 0 {
		delete(h.sessions, client.userID)
		return true
	}
	return false
}

// Unregister removes a session from the hub and closes its send channel. If
// it was the user's last session the user transitions to offline and a
// presence broadcast is emitted.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.all[client]; !ok {
		h.mu.Unlock()
		return
	}
	wentOffline := h.detachLocked(client)
	delete(h.all, client)
	close(client.Send)
	h.mu.Unlock()

	if wentOffline {
		h.BroadcastPresence()
	}
}

// SessionsFor returns all live sessions of a user. An empty result means the
// user is offline; callers deliver nothing and treat that as success.
func (h *Hub) SessionsFor(userID uuid.UUID) []*Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	set := h.sessions[userID]
	clients := make([]*Client, 0, len(set))
	for c := range set {
		clients = append(clients, c)
	}
	return clients
}

// OnlineUsers returns the ids of all users with at least one bound session,
// sorted for stable presence payloads.
func (h *Hub) OnlineUsers() []uuid.UUID {
	h.mu.RLock()
	ids := make([]uuid.UUID, 0, len(h.sessions))
	for id := range h.sessions {
		ids = append(ids, id)
	}
	h.mu.RUnlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// PushToUser delivers an event to every session of the given user. Sessions
// with a full buffer are skipped rather than blocked on. Returns the number
// of sessions the event was queued for; zero sessions is not an error.
func (h *Hub) PushToUser(userID uuid.UUID, event string, payload interface{}) int {
	env, err := NewEnvelope(event, payload)
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("marshal event payload")
		return 0
	}
	data, err := json.Marshal(env)
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("marshal event envelope")
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for client := range h.sessions[userID] {
		select {
		case client.Send <- data:
			n++
		default:
			// Session buffer full; skip to avoid blocking.
		}
	}
	return n
}

// PushToClient delivers an event to a single session only, used for errors
// that must reach the originating session and nobody else. A session that
// already disconnected is skipped; its Send channel is closed.
func (h *Hub) PushToClient(client *Client, event string, payload interface{}) {
	env, err := NewEnvelope(event, payload)
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("marshal event payload")
		return
	}
	data, err := json.Marshal(env)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.all[client]; !ok {
		return
	}
	select {
	case client.Send <- data:
	default:
	}
}

// BroadcastAll sends an event to every connected session, bound or not.
func (h *Hub) BroadcastAll(event string, payload interface{}) {
	env, err := NewEnvelope(event, payload)
	if err != nil {
		h.logger.Error().Err(err).Str("event", event).Msg("marshal event payload")
		return
	}
	data, err := json.Marshal(env)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.all {
		select {
		case client.Send <- data:
		default:
			// Session buffer full; skip to avoid blocking.
		}
	}
}

// BroadcastPresence emits the current online-user list to every session.
func (h *Hub) BroadcastPresence() {
	h.BroadcastAll(EventPresenceUpdate, h.OnlineUsers())
}

// ClientCount returns the total number of connected sessions.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.all)
}

// SessionCount returns the number of live sessions bound to a user.
func (h *Hub) SessionCount(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[userID])
}
