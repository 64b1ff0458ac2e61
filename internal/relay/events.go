package relay

import (
	"encoding/json"
	"time"

	"quickchat/internal/models"
)

// Event names are the wire contract shared with the web client.
// Changing any of these breaks deployed clients.
const (
	// client -> server
	EventJoin        = "join"
	EventSendMessage = "send-message"
	EventTyping      = "typing"
	EventStopTyping  = "stop-typing"

	// server -> client
	EventUserOnline     = "user-online"
	EventUserOffline    = "user-offline"
	EventReceiveMessage = "receive-message"
	EventMessageSent    = "message-sent"
)

// Envelope is the frame exchanged over the socket: an event name plus an
// event-specific payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// SendMessagePayload is the client's send-message event. The durable copy is
// written over HTTP before this event is emitted; the relay only fans out.
type SendMessagePayload struct {
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Message    string    `json:"message,omitempty"`
	Image      string    `json:"image,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
}

// Valid reports whether the payload names both participants and carries
// content. Invalid payloads are dropped without a reply; the authoritative
// result of the send already happened on the HTTP call.
func (p SendMessagePayload) Valid() bool {
	if p.SenderID == "" || p.ReceiverID == "" {
		return false
	}
	return p.Message != "" || p.Image != ""
}

// TypingPayload is the client's typing / stop-typing event.
type TypingPayload struct {
	ReceiverID string `json:"receiverId"`
}

// TypingSignal is the server's typing / stop-typing event. From carries the
// transport session id, which the original wire format used as the sender
// marker; FromUserID carries the account id and is what new clients should
// match against.
type TypingSignal struct {
	From       string `json:"from"`
	FromUserID string `json:"fromUserId,omitempty"`
}

// ReceiverRef identifies the receiving side of a relayed message by id only.
type ReceiverRef struct {
	ID string `json:"id"`
}

// RelayedMessage is the live, non-durable copy of an already-persisted
// message, pushed to both participants for immediate UI update. It is built
// fresh per send event and not retained.
type RelayedMessage struct {
	Sender    models.SenderCard `json:"sender"`
	Receiver  ReceiverRef       `json:"receiver"`
	Message   string            `json:"message"`
	Image     string            `json:"image,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}
