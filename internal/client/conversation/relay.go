package conversation

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"mentorlink/internal/app/user"
	"mentorlink/internal/client/socket"
)

// Transport is the part of the socket manager a Relay uses.
type Transport interface {
	JoinConversation(conversationID string) bool
	LeaveConversation(conversationID string) bool
	SendMessage(msg socket.OutgoingMessage) bool
	SendTyping(indicator socket.TypingIndicator) bool
	Subscribe(l socket.Listener) func()
}

// Relay connects a Registry to the transport on behalf of the local user.
type Relay struct {
	registry    *Registry
	transport   Transport
	self        user.User
	unsubscribe func()
	now         func() time.Time
}

// NewRelay subscribes to transport events. Call Stop to unsubscribe.
func NewRelay(registry *Registry, transport Transport, self user.User) *Relay {
	r := &Relay{
		registry:  registry,
		transport: transport,
		self:      self,
		now:       time.Now,
	}
	r.unsubscribe = transport.Subscribe(r.handle)
	return r
}

// Stop detaches the relay from the transport.
func (r *Relay) Stop() {
	r.unsubscribe()
}

// Open creates the room locally and joins it on the transport. It reports
// whether the join was emitted.
func (r *Relay) Open(conversationID string) bool {
	r.registry.Room(conversationID).AddParticipant(r.self.ID, r.self.Name)
	return r.transport.JoinConversation(conversationID)
}

// Close leaves the room on the transport. Local history is kept.
func (r *Relay) Close(conversationID string) bool {
	return r.transport.LeaveConversation(conversationID)
}

// Send appends text optimistically to the room and emits it. The returned
// message carries StatusFailed when the transport was not connected.
func (r *Relay) Send(conversationID, text string) Message {
	msg := Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		SenderID:       r.self.ID,
		SenderName:     r.self.Name,
		Text:           text,
		Timestamp:      r.now(),
		Status:         StatusFailed,
		Local:          true,
	}

	if strings.TrimSpace(text) != "" && r.transport.SendMessage(socket.OutgoingMessage{
		ConversationID: conversationID,
		Text:           text,
		SenderID:       r.self.ID,
		SenderName:     r.self.Name,
	}) {
		msg.Status = StatusSent
	}

	r.registry.Room(conversationID).Append(msg)
	return msg
}

// Typing emits the local user's typing state.
func (r *Relay) Typing(conversationID string, isTyping bool) bool {
	return r.transport.SendTyping(socket.TypingIndicator{
		ConversationID: conversationID,
		UserID:         r.self.ID,
		IsTyping:       isTyping,
	})
}

// Messages returns a copy of the room's history.
func (r *Relay) Messages(conversationID string) []Message {
	if room, ok := r.registry.Lookup(conversationID); ok {
		return room.Messages()
	}
	return nil
}

// Participants returns the room's participant ids.
func (r *Relay) Participants(conversationID string) []string {
	if room, ok := r.registry.Lookup(conversationID); ok {
		return room.Participants()
	}
	return nil
}

// TypingUsers returns who is typing in the room, excluding the local user.
func (r *Relay) TypingUsers(conversationID string) []string {
	room, ok := r.registry.Lookup(conversationID)
	if !ok {
		return nil
	}

	var out []string
	for _, id := range room.Typing() {
		if id != r.self.ID {
			out = append(out, id)
		}
	}
	return out
}

func (r *Relay) handle(ev socket.Event) {
	switch ev.Type {
	case socket.EventMessage:
		if ev.Message == nil || ev.Message.ConversationID == "" {
			return
		}
		in := ev.Message

		room := r.registry.Room(in.ConversationID)
		room.AddParticipant(in.SenderID, in.SenderName)

		ts := r.now()
		if in.Timestamp > 0 {
			ts = time.UnixMilli(in.Timestamp)
		}

		room.Append(Message{
			ID:             in.ID,
			ConversationID: in.ConversationID,
			SenderID:       in.SenderID,
			SenderName:     in.SenderName,
			Text:           in.Text,
			Timestamp:      ts,
			Status:         StatusSent,
		})

	case socket.EventTyping:
		if ev.Typing == nil || ev.Typing.ConversationID == "" || ev.Typing.UserID == "" {
			return
		}

		room := r.registry.Room(ev.Typing.ConversationID)
		room.AddParticipant(ev.Typing.UserID, "")
		room.SetTyping(ev.Typing.UserID, ev.Typing.IsTyping)
	}
}
