package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types - Client → Server
const (
	EventTypeJoin     = "join"
	EventTypeSend     = "sendMessage"
	EventTypeMarkRead = "markMessagesRead"
	EventTypePing     = "ping"
)

// Event types - Server → Client
const (
	EventTypeOnlineUsers = "onlineUsers"
	EventTypeReceive     = "receiveMessage"
	EventTypeRead        = "messagesRead"
	EventTypeReadLocal   = "messagesMarkedLocal"
	EventTypePong        = "pong"
	EventTypeError       = "error"
)

// Event is the base envelope for all WebSocket messages.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

type JoinPayload struct {
	UserID uuid.UUID `json:"userId"`
}

// RelayPayload is the fire-and-forget relay path; it bypasses the store.
type RelayPayload struct {
	SenderID   uuid.UUID `json:"senderId"`
	ReceiverID uuid.UUID `json:"receiverId"`
	Message    string    `json:"message"`
}

// MarkReadPayload names only the contact; the reader is the session's
// joined identity.
type MarkReadPayload struct {
	ContactID uuid.UUID `json:"contactId"`
}

// --- Server → Client payloads ---

type MessagesReadPayload struct {
	ReaderID          uuid.UUID   `json:"readerId"`
	UpdatedMessageIDs []uuid.UUID `json:"updatedMessageIds"`
}

type MarkedLocalPayload struct {
	UpdatedMessageIDs []uuid.UUID `json:"updatedMessageIds"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
