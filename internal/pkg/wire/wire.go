/*
Package wire defines the relay's event envelope and payloads, shared by the
relay hub and the socket client.

Every frame is a JSON object {"event": <name>, "data": <payload>}.
*/
package wire

import (
	"encoding/json"
	"fmt"
)

// Client → relay events.
const (
	EventJoin        = "join"
	EventLeave       = "leave"
	EventSendMessage = "sendMessage"
	EventTyping      = "typing"
)

// Relay → client events. EventTyping is used in both directions.
const (
	EventMessage = "message"
	EventError   = "error"
)

// Envelope is one frame on the relay connection.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Encode builds the frame bytes for event with payload data.
func Encode(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event, err)
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

// JoinPayload is the data of join and leave events.
type JoinPayload struct {
	ConversationID string `json:"conversationId"`
}

// SendMessagePayload is the data of a sendMessage event.
type SendMessagePayload struct {
	ConversationID string `json:"conversationId"`
	Text           string `json:"text"`
	SenderID       string `json:"senderId"`
	SenderName     string `json:"senderName"`
}

// TypingPayload is the data of a typing event.
type TypingPayload struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
	IsTyping       bool   `json:"isTyping"`
}

// MessagePayload is a message fanned out by the relay.
type MessagePayload struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversationId"`
	SenderID       string `json:"senderId"`
	SenderName     string `json:"senderName"`
	Text           string `json:"text"`

	// Timestamp is Unix milliseconds assigned by the relay.
	Timestamp int64 `json:"timestamp"`
}

// ErrorPayload reports a rejected client event.
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
