package socket

import "mentorlink/internal/pkg/wire"

// ConnectionState is the observable state of the Manager.
type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"

	// StateErrored follows a failed dial. It is not terminal: the
	// connect cycle keeps retrying until attempts run out.
	StateErrored ConnectionState = "errored"
)

// EventType names an event fanned out to subscribers.
type EventType string

const (
	EventConnect         EventType = "connect"
	EventDisconnect      EventType = "disconnect"
	EventConnectError    EventType = "connect_error"
	EventReconnectFailed EventType = "reconnect_failed"
	EventState           EventType = "state"
	EventMessage         EventType = "message"
	EventTyping          EventType = "typing"
	EventError           EventType = "error"
)

type (
	// Message is a message delivered by the relay.
	Message = wire.MessagePayload

	// OutgoingMessage is a message handed to the relay.
	OutgoingMessage = wire.SendMessagePayload

	// TypingIndicator is sent and received as is.
	TypingIndicator = wire.TypingPayload
)

// Event is delivered to every Listener. Only the fields relevant to Type
// are set.
type Event struct {
	Type EventType

	// State is set for EventState.
	State ConnectionState

	// Reason is set for EventDisconnect and EventError.
	Reason string

	// Err is set for EventConnectError.
	Err error

	Message *Message
	Typing  *TypingIndicator
}

// Listener receives events. It runs on the Manager's goroutines and must
// not block.
type Listener func(Event)
