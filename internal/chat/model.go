package chat

import (
	"encoding/json"
	"time"
)

// ---------------------------------------------
// Database & API Models
// ---------------------------------------------

// Message is the sole persisted entity of the messaging core. Immutable once
// written: id and timestamp are assigned server-side at persistence.
type Message struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Contact is a derived projection of a message counterparty, resolved
// through the user directory. It is never stored.
type Contact struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	ImageURL string `json:"imageUrl"`
}

// ---------------------------------------------
// Wire events
// ---------------------------------------------

type EventType string

const (
	EventJoinRoom       EventType = "joinRoom"
	EventLeaveRoom      EventType = "leaveRoom"
	EventSendMessage    EventType = "sendMessage"
	EventReceiveMessage EventType = "receiveMessage"
	EventError          EventType = "error"
)

// Envelope is the frame every websocket event travels in, both directions.
type Envelope struct {
	Event EventType       `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// SendMessagePayload is what the client sends for a sendMessage event.
// No id or timestamp: the server assigns those.
type SendMessagePayload struct {
	Sender   string `json:"sender"`
	Receiver string `json:"receiver"`
	Content  string `json:"content"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func newEnvelope(event EventType, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
