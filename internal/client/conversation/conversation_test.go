package conversation

import (
	"reflect"
	"sync"
	"testing"

	"mentorlink/internal/app/user"
	"mentorlink/internal/client/socket"
)

// fakeTransport records emits and lets tests push events.
type fakeTransport struct {
	mu        sync.Mutex
	connected bool
	joined    []string
	sent      []socket.OutgoingMessage
	listener  socket.Listener
}

func (f *fakeTransport) JoinConversation(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.connected {
		return false
	}
	f.joined = append(f.joined, id)
	return true
}

func (f *fakeTransport) LeaveConversation(id string) bool { return f.connected }

func (f *fakeTransport) SendMessage(msg socket.OutgoingMessage) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.connected {
		return false
	}
	f.sent = append(f.sent, msg)
	return true
}

func (f *fakeTransport) SendTyping(socket.TypingIndicator) bool { return f.connected }

func (f *fakeTransport) Subscribe(l socket.Listener) func() {
	f.listener = l
	return func() { f.listener = nil }
}

func (f *fakeTransport) push(ev socket.Event) {
	if f.listener != nil {
		f.listener(ev)
	}
}

var self = user.User{ID: "me", Name: "Me"}

func TestSend_StatusFollowsEmit(t *testing.T) {
	transport := &fakeTransport{connected: true}
	relay := NewRelay(NewRegistry(), transport, self)

	if !relay.Open("c1") {
		t.Fatal("Open should join while connected")
	}

	sent := relay.Send("c1", "first")
	transport.connected = false
	failed := relay.Send("c1", "second")

	if sent.Status != StatusSent || failed.Status != StatusFailed {
		t.Errorf("Unexpected statuses %s / %s", sent.Status, failed.Status)
	}
	if sent.ID == "" || sent.ID == failed.ID {
		t.Error("Local messages need distinct temporary ids")
	}

	history := relay.Messages("c1")
	if len(history) != 2 || history[0].Text != "first" || history[1].Text != "second" {
		t.Fatalf("Unexpected history %+v", history)
	}

	// a later disconnect does not rewrite an already reported status
	if history[0].Status != StatusSent {
		t.Error("Status of a sent message changed")
	}
	if len(transport.sent) != 1 || transport.sent[0].SenderID != "me" {
		t.Errorf("Unexpected emits %+v", transport.sent)
	}
}

func TestInbound_ArrivalOrderAndImplicitRooms(t *testing.T) {
	transport := &fakeTransport{connected: true}
	relay := NewRelay(NewRegistry(), transport, self)

	transport.push(socket.Event{Type: socket.EventMessage, Message: &socket.Message{ID: "2", ConversationID: "c9", SenderID: "u2", SenderName: "Lin", Text: "b", Timestamp: 2000}})
	transport.push(socket.Event{Type: socket.EventMessage, Message: &socket.Message{ID: "1", ConversationID: "c9", SenderID: "u3", Text: "a", Timestamp: 1000}})

	history := relay.Messages("c9")
	if len(history) != 2 || history[0].ID != "2" || history[1].ID != "1" {
		t.Fatalf("Messages must keep arrival order, got %+v", history)
	}
	if history[0].Timestamp.UnixMilli() != 2000 || history[0].Status != StatusSent {
		t.Errorf("Unexpected inbound message %+v", history[0])
	}

	if got := relay.Participants("c9"); !reflect.DeepEqual(got, []string{"u2", "u3"}) {
		t.Errorf("Unexpected participants %v", got)
	}
}

func TestInbound_TypingLatestPerUser(t *testing.T) {
	transport := &fakeTransport{connected: true}
	relay := NewRelay(NewRegistry(), transport, self)
	relay.Open("c1")

	typing := func(userID string, on bool) {
		transport.push(socket.Event{Type: socket.EventTyping, Typing: &socket.TypingIndicator{ConversationID: "c1", UserID: userID, IsTyping: on}})
	}

	typing("u2", true)
	typing("u3", true)
	typing("u2", true)
	typing("u3", false)
	typing("me", true)

	if got := relay.TypingUsers("c1"); !reflect.DeepEqual(got, []string{"u2"}) {
		t.Errorf("Expected only u2 typing, got %v", got)
	}

	transport.push(socket.Event{Type: socket.EventMessage, Message: &socket.Message{ConversationID: "c1", SenderID: "u2", Text: "done"}})
	if got := relay.TypingUsers("c1"); len(got) != 0 {
		t.Errorf("A message must clear its sender's typing state, got %v", got)
	}
}

func TestOpen_Disconnected(t *testing.T) {
	transport := &fakeTransport{}
	registry := NewRegistry()
	relay := NewRelay(registry, transport, self)

	if relay.Open("c1") {
		t.Error("Open must report false while disconnected")
	}
	if _, ok := registry.Lookup("c1"); !ok {
		t.Error("The room is still created locally")
	}
}

func TestStop_Unsubscribes(t *testing.T) {
	transport := &fakeTransport{connected: true}
	relay := NewRelay(NewRegistry(), transport, self)
	relay.Stop()

	transport.push(socket.Event{Type: socket.EventMessage, Message: &socket.Message{ConversationID: "c1", Text: "x"}})
	if relay.Messages("c1") != nil {
		t.Error("Stopped relay must ignore events")
	}
}
