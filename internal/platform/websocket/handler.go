package websocket

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// MessageRelay runs the message pipeline for an inbound message:send event:
// validate, persist, fan out, auto-reply, notify.
type MessageRelay interface {
	RelayMessage(ctx context.Context, conversationID, from, to uuid.UUID, body string) error
}

// directedPayload is the common shape of typing and call-signaling events: a
// destination user plus an opaque remainder forwarded verbatim.
type directedPayload struct {
	To   uuid.UUID `json:"to"`
	From uuid.UUID `json:"from"`
}

// onlinePayload accepts both the bare-string form ("<user id>") and the
// object form ({"userId": "..."}) of the user:online event.
type onlinePayload struct {
	UserID uuid.UUID `json:"userId"`
}

// sendPayload is the message:send event body.
type sendPayload struct {
	ConversationID uuid.UUID `json:"conversationId"`
	From           uuid.UUID `json:"from"`
	To             uuid.UUID `json:"to"`
	Message        string    `json:"message"`
}

type errorPayload struct {
	Error string `json:"error"`
}

var upgrader = gorillawebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced by the HTTP layer.
	},
}

// Gateway handles HTTP-to-WebSocket upgrades and dispatches inbound events
// to their handlers. Each inbound event runs as an independent goroutine so
// one slow or failing handler never stalls the session's read loop or any
// other session.
type Gateway struct {
	hub    *Hub
	relay  MessageRelay
	logger zerolog.Logger

	handlers map[string]func(*Client, json.RawMessage)
}

// NewGateway creates a Gateway bound to the given Hub and relay.
func NewGateway(hub *Hub, relay MessageRelay, logger zerolog.Logger) *Gateway {
	g := &Gateway{hub: hub, relay: relay, logger: logger}
	g.handlers = map[string]func(*Client, json.RawMessage){
		EventUserOnline:  g.handleOnline,
		EventTypingStart: g.handleTyping(EventTypingStart),
		EventTypingStop:  g.handleTyping(EventTypingStop),
		EventMessageSend: g.handleSend,
		EventCallOffer:   g.handleSignal(EventCallOffer),
		EventCallAnswer:  g.handleSignal(EventCallAnswer),
		EventCallICE:     g.handleSignal(EventCallICE),
		EventCallEnd:     g.handleSignal(EventCallEnd),
	}
	return g
}

// RegisterRoutes registers the WebSocket endpoint on the provided Echo group.
func (g *Gateway) RegisterRoutes(grp *echo.Group) {
	grp.GET("/ws", g.HandleConnect)
}

// HandleConnect upgrades an HTTP connection to WebSocket, registers the
// session with the hub, and starts read/write pumps.
func (g *Gateway) HandleConnect(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{
		ID:   uuid.New().String(),
		Send: make(chan []byte, 256),
		conn: &gorillaConnAdapter{ws},
	}

	g.hub.Register(client)

	go g.writePump(client)
	go g.readPump(client)

	return nil
}

// readPump reads envelopes from the session and dispatches them.
func (g *Gateway) readPump(client *Client) {
	defer func() {
		g.hub.Unregister(client)
		client.conn.Close()
	}()

	for {
		_, message, err := client.conn.ReadMessage()
		if err != nil {
			break
		}

		var env Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			continue // Ignore malformed envelopes.
		}

		handler, ok := g.handlers[env.Event]
		if !ok {
			continue
		}
		go g.dispatch(env.Event, handler, client, env.Data)
	}
}

// dispatch runs one inbound event handler, containing any panic so a single
// bad event cannot take down the session's pumps or the process.
func (g *Gateway) dispatch(event string, handler func(*Client, json.RawMessage), client *Client, data json.RawMessage) {
	defer func() {
		if rec := recover(); rec != nil {
			g.logger.Error().
				Str("event", event).
				Str("client", client.ID).
				Interface("panic", rec).
				Msg("event handler panicked")
		}
	}()
	handler(client, data)
}

// writePump writes queued events to the session until its Send channel is
// closed by the hub.
func (g *Gateway) writePump(client *Client) {
	defer client.conn.Close()

	for message := range client.Send {
		if err := client.conn.WriteMessage(gorillawebsocket.TextMessage, message); err != nil {
			break
		}
	}
}

func (g *Gateway) handleOnline(client *Client, data json.RawMessage) {
	var userID uuid.UUID

	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		userID, _ = uuid.Parse(raw)
	} else {
		var p onlinePayload
		if err := json.Unmarshal(data, &p); err != nil {
			return
		}
		userID = p.UserID
	}

	if userID == uuid.Nil {
		return
	}
	g.hub.Bind(client, userID)
}

// handleTyping forwards a typing indicator to every session of the target
// user; no state is kept and an offline target is a silent no-op.
func (g *Gateway) handleTyping(event string) func(*Client, json.RawMessage) {
	return func(client *Client, data json.RawMessage) {
		var p directedPayload
		if err := json.Unmarshal(data, &p); err != nil || p.To == uuid.Nil {
			return
		}
		g.hub.PushToUser(p.To, event, map[string]uuid.UUID{"from": p.From})
	}
}

// handleSignal forwards a WebRTC signaling payload verbatim to the target
// user's sessions. No persistence, no queuing, no retry: real-time only.
func (g *Gateway) handleSignal(event string) func(*Client, json.RawMessage) {
	return func(client *Client, data json.RawMessage) {
		var p directedPayload
		if err := json.Unmarshal(data, &p); err != nil || p.To == uuid.Nil {
			return
		}
		g.hub.PushToUser(p.To, event, json.RawMessage(data))
	}
}

func (g *Gateway) handleSend(client *Client, data json.RawMessage) {
	var p sendPayload
	if err := json.Unmarshal(data, &p); err != nil {
		g.hub.PushToClient(client, EventMessageError, errorPayload{Error: "malformed message payload"})
		return
	}

	err := g.relay.RelayMessage(context.Background(), p.ConversationID, p.From, p.To, p.Message)
	if err != nil {
		g.logger.Warn().Err(err).
			Str("conversation_id", p.ConversationID.String()).
			Str("from", p.From.String()).
			Msg("message relay failed")
		g.hub.PushToClient(client, EventMessageError, errorPayload{Error: err.Error()})
	}
}

// gorillaConnAdapter wraps a gorilla/websocket.Conn to satisfy the Conn interface.
type gorillaConnAdapter struct {
	conn *gorillawebsocket.Conn
}

func (a *gorillaConnAdapter) ReadMessage() (int, []byte, error) {
	return a.conn.ReadMessage()
}

func (a *gorillaConnAdapter) WriteMessage(messageType int, data []byte) error {
	return a.conn.WriteMessage(messageType, data)
}

func (a *gorillaConnAdapter) Close() error {
	return a.conn.Close()
}
