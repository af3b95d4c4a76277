package socket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"mentorlink/internal/app/relay"
	"mentorlink/internal/app/user"
	"mentorlink/internal/pkg/wire"
)

// fakeConn is an in-memory handle. drop simulates the peer going away.
type fakeConn struct {
	mu      sync.Mutex
	writes  []wire.Envelope
	inbound chan []byte
	closed  chan struct{}
	once    sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{inbound: make(chan []byte, 16), closed: make(chan struct{})}
}

func (c *fakeConn) ReadFrame() ([]byte, error) {
	select {
	case frame, ok := <-c.inbound:
		if !ok {
			return nil, errors.New("connection reset by peer")
		}
		return frame, nil
	case <-c.closed:
		return nil, errors.New("use of closed connection")
	}
}

func (c *fakeConn) WriteFrame(frame []byte) error {
	select {
	case <-c.closed:
		return errors.New("use of closed connection")
	default:
	}

	var env wire.Envelope
	json.Unmarshal(frame, &env)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, env)
	return nil
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) drop() { close(c.inbound) }

func (c *fakeConn) Writes() []wire.Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]wire.Envelope(nil), c.writes...)
}

// fakeDialer hands out queued handles and fails once the queue is empty.
type fakeDialer struct {
	mu    sync.Mutex
	dials int
	conns []*fakeConn
	block chan struct{}
}

func (d *fakeDialer) Dial(ctx context.Context, url string, header http.Header) (Conn, error) {
	if d.block != nil {
		select {
		case <-d.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.dials++
	if len(d.conns) == 0 {
		return nil, errors.New("connection refused")
	}
	conn := d.conns[0]
	d.conns = d.conns[1:]
	return conn, nil
}

func (d *fakeDialer) Dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

// recorder collects events on a channel.
type recorder struct {
	events chan Event
}

func record(m *Manager) *recorder {
	r := &recorder{events: make(chan Event, 64)}
	m.Subscribe(func(ev Event) { r.events <- ev })
	return r
}

func (r *recorder) waitFor(t *testing.T, typ EventType) Event {
	t.Helper()

	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev := <-r.events:
			if ev.Type == typ {
				return ev
			}
		case <-timeout:
			t.Fatalf("Timed out waiting for %s", typ)
		}
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

func newFakeManager(dialer *fakeDialer, attempts int) *Manager {
	return NewManager(Options{
		URL:                  "ws://relay.test/ws",
		ReconnectionAttempts: attempts,
		ReconnectionDelay:    time.Millisecond,
		Dialer:               dialer,
	})
}

func TestGuardedOperations_NotConnected(t *testing.T) {
	m := newFakeManager(&fakeDialer{}, 0)

	if m.State() != StateDisconnected {
		t.Fatalf("Expected disconnected, got %s", m.State())
	}
	if m.JoinConversation("c1") {
		t.Error("JoinConversation must return false when disconnected")
	}
	if m.SendMessage(OutgoingMessage{ConversationID: "c1", Text: "hi"}) {
		t.Error("SendMessage must return false when disconnected")
	}
	if m.SendTyping(TypingIndicator{ConversationID: "c1", IsTyping: true}) {
		t.Error("SendTyping must return false when disconnected")
	}
	if len(m.Joined()) != 0 {
		t.Error("A skipped join must not be remembered")
	}
}

func TestGuardedOperations_WhileConnecting(t *testing.T) {
	dialer := &fakeDialer{block: make(chan struct{}), conns: []*fakeConn{newFakeConn()}}
	m := newFakeManager(dialer, 0)
	defer m.Disconnect()

	m.Connect()
	m.Connect()

	if m.State() != StateConnecting {
		t.Fatalf("Expected connecting, got %s", m.State())
	}
	if m.SendMessage(OutgoingMessage{ConversationID: "c1", Text: "hi"}) {
		t.Error("SendMessage must return false while connecting")
	}

	close(dialer.block)
	waitFor(t, "connected", func() bool { return m.State() == StateConnected })

	if dialer.Dials() != 1 {
		t.Errorf("Connect while connecting must not dial again, got %d dials", dialer.Dials())
	}
}

func TestReconnect_BoundedAttempts(t *testing.T) {
	tests := []struct {
		name     string
		attempts int
	}{
		{name: "no retries", attempts: 0},
		{name: "three retries", attempts: 3},
		{name: "default retries", attempts: 5},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			dialer := &fakeDialer{}
			m := newFakeManager(dialer, test.attempts)
			rec := record(m)

			m.Connect()
			rec.waitFor(t, EventReconnectFailed)

			if got := dialer.Dials(); got != test.attempts+1 {
				t.Errorf("Expected %d dials, got %d", test.attempts+1, got)
			}
			if m.State() != StateDisconnected {
				t.Errorf("Expected disconnected after giving up, got %s", m.State())
			}

			time.Sleep(20 * time.Millisecond)
			if got := dialer.Dials(); got != test.attempts+1 {
				t.Errorf("Manager kept dialing after giving up: %d dials", got)
			}
		})
	}
}

// statesUntil collects EventState values until an event of type stop.
func (r *recorder) statesUntil(t *testing.T, stop EventType) []ConnectionState {
	t.Helper()

	var states []ConnectionState
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev := <-r.events:
			if ev.Type == EventState {
				states = append(states, ev.State)
			}
			if ev.Type == stop {
				return states
			}
		case <-timeout:
			t.Fatalf("Timed out waiting for %s, states so far %v", stop, states)
		}
	}
}

func TestStateTransitions(t *testing.T) {
	tests := []struct {
		name     string
		conns    int
		attempts int
		want     []ConnectionState
	}{
		{
			name:     "dials always fail",
			attempts: 2,
			want: []ConnectionState{
				StateConnecting, StateErrored,
				StateConnecting, StateErrored,
				StateConnecting, StateErrored,
				StateDisconnected,
			},
		},
		{
			name:     "drop then unreachable",
			conns:    1,
			attempts: 0,
			want: []ConnectionState{
				StateConnecting, StateConnected,
				StateDisconnected,
				StateConnecting, StateErrored,
				StateDisconnected,
			},
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			dialer := &fakeDialer{}
			for i := 0; i < test.conns; i++ {
				dialer.conns = append(dialer.conns, newFakeConn())
			}
			conns := append([]*fakeConn(nil), dialer.conns...)

			m := newFakeManager(dialer, test.attempts)
			rec := record(m)

			m.Connect()
			if len(conns) > 0 {
				waitFor(t, "connected", func() bool { return m.State() == StateConnected })
				conns[0].drop()
			}

			got := rec.statesUntil(t, EventReconnectFailed)
			if len(got) != len(test.want) {
				t.Fatalf("Expected states %v, got %v", test.want, got)
			}
			for i := range got {
				if got[i] != test.want[i] {
					t.Fatalf("Expected states %v, got %v", test.want, got)
				}
			}
		})
	}
}

func TestConnect_NoOpWhileErrored(t *testing.T) {
	dialer := &fakeDialer{}
	m := NewManager(Options{
		URL:                  "ws://relay.test/ws",
		ReconnectionAttempts: 1,
		ReconnectionDelay:    50 * time.Millisecond,
		Dialer:               dialer,
	})
	defer m.Disconnect()
	rec := record(m)

	m.Connect()
	rec.waitFor(t, EventConnectError)
	if m.State() != StateErrored {
		t.Fatalf("Expected errored after a failed dial, got %s", m.State())
	}

	m.Connect()
	rec.waitFor(t, EventReconnectFailed)

	if got := dialer.Dials(); got != 2 {
		t.Errorf("Connect while errored must not start a second cycle, got %d dials", got)
	}
	if m.State() != StateDisconnected {
		t.Errorf("Expected disconnected after giving up, got %s", m.State())
	}
}

func TestReconnect_ConnectErrorSurfaced(t *testing.T) {
	m := newFakeManager(&fakeDialer{}, 0)
	rec := record(m)

	m.Connect()
	ev := rec.waitFor(t, EventConnectError)
	if ev.Err == nil || !strings.Contains(ev.Err.Error(), "refused") {
		t.Errorf("Expected dial error, got %v", ev.Err)
	}
}

func TestReconnect_RejoinsRoomsAfterDrop(t *testing.T) {
	first, second := newFakeConn(), newFakeConn()
	dialer := &fakeDialer{conns: []*fakeConn{first, second}}
	m := newFakeManager(dialer, 2)
	defer m.Disconnect()
	rec := record(m)

	m.Connect()
	rec.waitFor(t, EventConnect)

	if !m.JoinConversation("c1") || !m.JoinConversation("c2") {
		t.Fatal("Joins should succeed while connected")
	}
	m.LeaveConversation("c2")

	first.drop()
	ev := rec.waitFor(t, EventDisconnect)
	if !strings.Contains(ev.Reason, "reset") {
		t.Errorf("Expected drop reason, got %q", ev.Reason)
	}

	rec.waitFor(t, EventConnect)

	writes := second.Writes()
	if len(writes) != 1 || writes[0].Event != wire.EventJoin || !strings.Contains(string(writes[0].Data), `"c1"`) {
		t.Errorf("Expected exactly a re-join of c1, got %+v", writes)
	}
}

func TestReconnect_SendAfterDropReturnsFalse(t *testing.T) {
	conn := newFakeConn()
	m := newFakeManager(&fakeDialer{conns: []*fakeConn{conn}}, 0)
	rec := record(m)

	m.Connect()
	rec.waitFor(t, EventConnect)

	if !m.SendMessage(OutgoingMessage{ConversationID: "c1", Text: "before"}) {
		t.Fatal("Send while connected should succeed")
	}

	conn.drop()
	rec.waitFor(t, EventReconnectFailed)

	if m.SendMessage(OutgoingMessage{ConversationID: "c1", Text: "after"}) {
		t.Error("Send after drop must return false")
	}
	if n := len(conn.Writes()); n != 1 {
		t.Errorf("Expected one frame on the dropped handle, got %d", n)
	}
}

func TestDisconnect(t *testing.T) {
	conn := newFakeConn()
	dialer := &fakeDialer{conns: []*fakeConn{conn}}
	m := newFakeManager(dialer, 3)
	rec := record(m)

	m.Connect()
	rec.waitFor(t, EventConnect)
	m.JoinConversation("c1")

	m.Disconnect()
	m.Disconnect()

	if m.State() != StateDisconnected {
		t.Fatalf("Expected disconnected, got %s", m.State())
	}
	if ev := rec.waitFor(t, EventDisconnect); ev.Reason != "client disconnect" {
		t.Errorf("Unexpected reason %q", ev.Reason)
	}

	time.Sleep(20 * time.Millisecond)
	if dialer.Dials() != 1 {
		t.Errorf("Disconnect must not trigger reconnection, got %d dials", dialer.Dials())
	}
	if m.JoinConversation("c2") {
		t.Error("Join after Disconnect must return false")
	}
	if len(m.Joined()) != 0 {
		t.Error("Disconnect must forget joined rooms")
	}
}

func TestSubscribe_CancelAndPanickingListener(t *testing.T) {
	conn := newFakeConn()
	m := newFakeManager(&fakeDialer{conns: []*fakeConn{conn}}, 0)
	defer m.Disconnect()

	var mu sync.Mutex
	cancelled := 0
	cancel := m.Subscribe(func(Event) {
		mu.Lock()
		cancelled++
		mu.Unlock()
	})
	cancel()
	cancel()

	m.Subscribe(func(Event) { panic("listener bug") })
	rec := record(m)

	m.Connect()
	rec.waitFor(t, EventConnect)

	mu.Lock()
	defer mu.Unlock()
	if cancelled != 0 {
		t.Errorf("Cancelled listener received %d events", cancelled)
	}
}

// hookConn runs onWrite once, before the first frame is written.
type hookConn struct {
	*fakeConn
	once    sync.Once
	onWrite func()
}

func (c *hookConn) WriteFrame(frame []byte) error {
	c.once.Do(c.onWrite)
	return c.fakeConn.WriteFrame(frame)
}

func TestAttach_DisconnectDuringRejoin(t *testing.T) {
	m := newFakeManager(&fakeDialer{}, 0)

	m.mu.Lock()
	m.gen = 1
	m.cancel = func() {}
	m.state = StateConnecting
	m.rooms["c1"] = struct{}{}
	m.mu.Unlock()

	rec := record(m)
	conn := &hookConn{fakeConn: newFakeConn()}
	conn.onWrite = m.Disconnect

	if m.attach(1, conn) {
		t.Fatal("attach must report false once Disconnect has won")
	}

	close(rec.events)
	for ev := range rec.events {
		if ev.Type == EventConnect {
			t.Error("EventConnect published after Disconnect")
		}
	}
	if m.State() != StateDisconnected {
		t.Errorf("Expected disconnected, got %s", m.State())
	}
}

func TestInboundEvents_InvalidErrorPayload(t *testing.T) {
	conn := newFakeConn()
	m := newFakeManager(&fakeDialer{conns: []*fakeConn{conn}}, 0)
	defer m.Disconnect()
	rec := record(m)

	m.Connect()
	rec.waitFor(t, EventConnect)

	valid, _ := wire.Encode(wire.EventError, wire.ErrorPayload{Code: 2102, Message: "Join first"})
	conn.inbound <- []byte(`{"event":"error","data":"oops"}`)
	conn.inbound <- valid

	if ev := rec.waitFor(t, EventError); ev.Reason != "Join first" {
		t.Errorf("Malformed error payload must be skipped, got reason %q", ev.Reason)
	}
}

func TestInboundEvents(t *testing.T) {
	conn := newFakeConn()
	m := newFakeManager(&fakeDialer{conns: []*fakeConn{conn}}, 0)
	defer m.Disconnect()
	rec := record(m)

	m.Connect()
	rec.waitFor(t, EventConnect)

	msgFrame, _ := wire.Encode(wire.EventMessage, Message{ID: "m1", ConversationID: "c1", SenderID: "u2", Text: "hi"})
	typingFrame, _ := wire.Encode(wire.EventTyping, TypingIndicator{ConversationID: "c1", UserID: "u2", IsTyping: true})
	errFrame, _ := wire.Encode(wire.EventError, wire.ErrorPayload{Code: 2102, Message: "Join first"})
	conn.inbound <- []byte("not json")
	conn.inbound <- msgFrame
	conn.inbound <- typingFrame
	conn.inbound <- errFrame

	if ev := rec.waitFor(t, EventMessage); ev.Message.Text != "hi" {
		t.Errorf("Unexpected message %+v", ev.Message)
	}
	if ev := rec.waitFor(t, EventTyping); ev.Typing.UserID != "u2" || !ev.Typing.IsTyping {
		t.Errorf("Unexpected typing %+v", ev.Typing)
	}
	if ev := rec.waitFor(t, EventError); ev.Reason != "Join first" {
		t.Errorf("Unexpected error reason %q", ev.Reason)
	}
}

func TestManager_AgainstRelay(t *testing.T) {
	hub := relay.NewManager()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(conn, user.User{ID: r.URL.Query().Get("uid")})
	}))
	defer srv.Close()
	defer hub.Shutdown()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	alice := NewManager(Options{URL: url + "?uid=alice", ReconnectionDelay: 10 * time.Millisecond})
	bob := NewManager(Options{URL: url + "?uid=bob", ReconnectionDelay: 10 * time.Millisecond})
	defer alice.Disconnect()
	defer bob.Disconnect()

	aliceEvents, bobEvents := record(alice), record(bob)
	alice.Connect()
	bob.Connect()
	aliceEvents.waitFor(t, EventConnect)
	bobEvents.waitFor(t, EventConnect)

	if !alice.JoinConversation("c1") || !bob.JoinConversation("c1") {
		t.Fatal("Joins should succeed")
	}
	waitFor(t, "both members", func() bool {
		room := hub.Room("c1")
		return room != nil && room.Size() == 2
	})

	if !alice.SendMessage(OutgoingMessage{ConversationID: "c1", Text: "hello bob", SenderName: "Alice"}) {
		t.Fatal("SendMessage should succeed")
	}

	ev := bobEvents.waitFor(t, EventMessage)
	if ev.Message.SenderID != "alice" || ev.Message.Text != "hello bob" {
		t.Errorf("Unexpected message %+v", ev.Message)
	}
}
