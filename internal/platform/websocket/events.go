package websocket

import "encoding/json"

// Event names exchanged over the real-time connection. Inbound events are
// sent by clients; outbound events are pushed by the server.
const (
	// inbound
	EventUserOnline   = "user:online"
	EventTypingStart  = "typing:start"
	EventTypingStop   = "typing:stop"
	EventMessageSend  = "message:send"
	EventCallOffer    = "call:offer"
	EventCallAnswer   = "call:answer"
	EventCallICE      = "call:ice-candidate"
	EventCallEnd      = "call:end"

	// outbound
	EventMessageReceive  = "message:receive"
	EventMessageError    = "message:error"
	EventPresenceUpdate  = "presence:update"
	EventNotificationNew = "notification:new"
)

// Envelope is the wire format for every event in both directions: an event
// name plus an event-specific JSON payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope marshals payload into an Envelope for the given event.
func NewEnvelope(event string, payload interface{}) (Envelope, error) {
	if payload == nil {
		return Envelope{Event: event}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Event: event, Data: data}, nil
}
