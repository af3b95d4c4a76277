/*
Package socket manages the client's single relay connection.

Connect starts a connect cycle: a first dial plus up to ReconnectionAttempts
retries. A connection that drops unexpectedly starts a new bounded cycle and
re-joins every conversation joined before the drop. When a cycle runs out of
attempts the Manager stays disconnected until Connect is called again.

Every cycle owns its own context, handle and generation number. Goroutines
of an older generation cannot change the Manager's state, so a stale dial or
read loop finishing late is harmless.
*/
package socket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"mentorlink/internal/configs"
	"mentorlink/internal/pkg/logx"
	"mentorlink/internal/pkg/wire"
)

// ErrNotConnected describes a guarded operation skipped while not connected.
var ErrNotConnected = errors.New("socket is not connected")

// Options configures a Manager.
type Options struct {
	URL string

	// Token is sent as "Authorization: Bearer <token>" when set.
	Token string

	// ReconnectionAttempts is the number of retries after the first dial of
	// a cycle. Negative values mean none.
	ReconnectionAttempts int

	// ReconnectionDelay spaces the attempts. Non-positive values use
	// configs.DefaultReconnectDelay.
	ReconnectionDelay time.Duration

	// Dialer defaults to WebsocketDialer.
	Dialer Dialer
}

// DefaultOptions returns Options for url with the default retry policy.
func DefaultOptions(url string) Options {
	return Options{
		URL:                  url,
		ReconnectionAttempts: configs.DefaultReconnectAttempts,
		ReconnectionDelay:    configs.DefaultReconnectDelay,
	}
}

// Manager owns one relay connection at a time.
type Manager struct {
	opts Options

	// mu protects state, gen, conn, cancel and rooms.
	mu     sync.Mutex
	state  ConnectionState
	gen    uint64
	conn   Conn
	cancel context.CancelFunc

	// rooms are the conversations to re-join after a reconnect.
	rooms map[string]struct{}

	lmu       sync.RWMutex
	listeners map[int]Listener
	nextID    int

	logger zerolog.Logger
}

// NewManager builds a disconnected Manager.
func NewManager(opts Options) *Manager {
	if opts.ReconnectionAttempts < 0 {
		opts.ReconnectionAttempts = 0
	}
	if opts.ReconnectionDelay <= 0 {
		opts.ReconnectionDelay = configs.DefaultReconnectDelay
	}
	if opts.Dialer == nil {
		opts.Dialer = WebsocketDialer{}
	}

	return &Manager{
		opts:      opts,
		state:     StateDisconnected,
		rooms:     make(map[string]struct{}),
		listeners: make(map[int]Listener),
		logger:    logx.Component("socket").With().Str("url", opts.URL).Logger(),
	}
}

// State returns the current connection state.
func (m *Manager) State() ConnectionState {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

// Joined returns the conversations that will be re-joined after a reconnect.
func (m *Manager) Joined() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.rooms))
	for id := range m.rooms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Subscribe registers l and returns a function that removes it.
func (m *Manager) Subscribe(l Listener) func() {
	m.lmu.Lock()
	defer m.lmu.Unlock()

	id := m.nextID
	m.nextID++
	m.listeners[id] = l

	var once sync.Once
	return func() {
		once.Do(func() {
			m.lmu.Lock()
			defer m.lmu.Unlock()
			delete(m.listeners, id)
		})
	}
}

// Connect starts a connect cycle. It is a no-op while a cycle is running,
// including the errored and disconnected states between retries.
func (m *Manager) Connect() {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return
	}

	m.gen++
	gen := m.gen
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.state = StateConnecting
	m.mu.Unlock()

	m.emit(Event{Type: EventState, State: StateConnecting})

	go m.run(ctx, gen)
}

// Disconnect closes the connection, stops any connect cycle and forgets
// joined conversations. Safe to call in any state and more than once.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	prev := m.state
	m.gen++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	conn := m.conn
	m.conn = nil
	m.state = StateDisconnected
	m.rooms = make(map[string]struct{})
	m.mu.Unlock()

	if conn != nil {
		conn.Close()
	}

	if prev == StateDisconnected {
		return
	}

	if prev == StateConnected {
		m.emit(Event{Type: EventDisconnect, Reason: "client disconnect"})
	}
	m.emit(Event{Type: EventState, State: StateDisconnected})
}

// JoinConversation joins a room. It returns false without emitting when not
// connected.
func (m *Manager) JoinConversation(conversationID string) bool {
	if conversationID == "" {
		return false
	}

	if !m.emitFrame(wire.EventJoin, wire.JoinPayload{ConversationID: conversationID}) {
		return false
	}

	m.mu.Lock()
	m.rooms[conversationID] = struct{}{}
	m.mu.Unlock()
	return true
}

// LeaveConversation leaves a room. The room is never re-joined afterwards,
// even when the leave itself could not be emitted.
func (m *Manager) LeaveConversation(conversationID string) bool {
	m.mu.Lock()
	delete(m.rooms, conversationID)
	m.mu.Unlock()

	return m.emitFrame(wire.EventLeave, wire.JoinPayload{ConversationID: conversationID})
}

// SendMessage emits msg and reports whether the emit was attempted on a
// connected transport.
func (m *Manager) SendMessage(msg OutgoingMessage) bool {
	return m.emitFrame(wire.EventSendMessage, msg)
}

// SendTyping emits a typing indicator under the same guard as SendMessage.
func (m *Manager) SendTyping(indicator TypingIndicator) bool {
	return m.emitFrame(wire.EventTyping, indicator)
}

func (m *Manager) emitFrame(event string, data any) bool {
	m.mu.Lock()
	conn := m.conn
	connected := m.state == StateConnected && conn != nil
	m.mu.Unlock()

	if !connected {
		m.logger.Debug().Str("event", event).Err(ErrNotConnected).Msg("Emit skipped")
		return false
	}

	frame, err := wire.Encode(event, data)
	if err != nil {
		m.logger.Error().Err(err).Str("event", event).Msg("Failed to encode frame")
		return false
	}

	if err := conn.WriteFrame(frame); err != nil {
		m.logger.Warn().Err(err).Str("event", event).Msg("Emit failed")
		return false
	}
	return true
}

// run is one connect cycle followed by reconnect cycles after drops.
func (m *Manager) run(ctx context.Context, gen uint64) {
	header := http.Header{}
	if m.opts.Token != "" {
		header.Set("Authorization", "Bearer "+m.opts.Token)
	}

	for {
		conn, ok := m.dialWithRetry(ctx, gen, header)
		if !ok {
			return
		}

		if !m.attach(gen, conn) {
			conn.Close()
			return
		}

		reason := m.readLoop(gen, conn)

		if !m.detach(gen, conn, reason) {
			return
		}

		if !sleep(ctx, m.opts.ReconnectionDelay) {
			return
		}

		if !m.transition(gen, StateConnecting) {
			return
		}
	}
}

// dialWithRetry makes the first dial plus up to ReconnectionAttempts
// retries. It reports false when the cycle was cancelled or gave up.
func (m *Manager) dialWithRetry(ctx context.Context, gen uint64, header http.Header) (Conn, bool) {
	for attempt := 0; ; attempt++ {
		conn, err := m.opts.Dialer.Dial(ctx, m.opts.URL, header)
		if ctx.Err() != nil {
			if conn != nil {
				conn.Close()
			}
			return nil, false
		}

		if err == nil {
			return conn, true
		}

		m.logger.Warn().Err(err).Int("attempt", attempt).Msg("Relay dial failed")
		if !m.fail(gen, err) {
			return nil, false
		}

		if attempt >= m.opts.ReconnectionAttempts {
			m.giveUp(gen)
			return nil, false
		}

		if !sleep(ctx, m.opts.ReconnectionDelay) {
			return nil, false
		}

		if !m.transition(gen, StateConnecting) {
			return nil, false
		}
	}
}

// transition moves a current cycle to state and publishes it.
func (m *Manager) transition(gen uint64, state ConnectionState) bool {
	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return false
	}
	m.state = state
	m.mu.Unlock()

	m.emit(Event{Type: EventState, State: state})
	return true
}

// fail records a dial error: connect_error, then the errored state.
func (m *Manager) fail(gen uint64, err error) bool {
	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return false
	}
	m.state = StateErrored
	m.mu.Unlock()

	m.emit(Event{Type: EventConnectError, Err: err})
	m.emit(Event{Type: EventState, State: StateErrored})
	return true
}

func (m *Manager) attach(gen uint64, conn Conn) bool {
	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return false
	}
	m.conn = conn
	m.state = StateConnected
	rooms := make([]string, 0, len(m.rooms))
	for id := range m.rooms {
		rooms = append(rooms, id)
	}
	m.mu.Unlock()

	sort.Strings(rooms)
	for _, id := range rooms {
		frame, err := wire.Encode(wire.EventJoin, wire.JoinPayload{ConversationID: id})
		if err == nil {
			err = conn.WriteFrame(frame)
		}
		if err != nil {
			m.logger.Warn().Err(err).Str("conversation_id", id).Msg("Re-join failed")
		}
	}

	if !m.current(gen) {
		return false
	}

	m.logger.Info().Int("rejoined", len(rooms)).Msg("Relay connected")
	m.emit(Event{Type: EventState, State: StateConnected})
	m.emit(Event{Type: EventConnect})
	return true
}

// detach reports whether the drop was unexpected and a new cycle should run.
func (m *Manager) detach(gen uint64, conn Conn, reason string) bool {
	conn.Close()

	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return false
	}
	m.conn = nil
	m.state = StateDisconnected
	m.mu.Unlock()

	m.logger.Warn().Str("reason", reason).Msg("Relay connection dropped, reconnecting")
	m.emit(Event{Type: EventDisconnect, Reason: reason})
	m.emit(Event{Type: EventState, State: StateDisconnected})
	return true
}

func (m *Manager) giveUp(gen uint64) {
	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return
	}
	m.state = StateDisconnected
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.mu.Unlock()

	m.logger.Error().Int("attempts", m.opts.ReconnectionAttempts+1).Msg("Relay unreachable, giving up")
	m.emit(Event{Type: EventState, State: StateDisconnected})
	m.emit(Event{Type: EventReconnectFailed})
}

func (m *Manager) current(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return gen == m.gen
}

// readLoop dispatches inbound frames until the handle fails.
func (m *Manager) readLoop(gen uint64, conn Conn) string {
	for {
		frame, err := conn.ReadFrame()
		if err != nil {
			return err.Error()
		}

		if !m.current(gen) {
			continue
		}

		var env wire.Envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			m.logger.Warn().Err(err).Msg("Relay sent invalid JSON")
			continue
		}

		m.dispatch(env)
	}
}

func (m *Manager) dispatch(env wire.Envelope) {
	switch env.Event {
	case wire.EventMessage:
		var msg Message
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			m.logger.Warn().Err(err).Msg("Invalid message payload")
			return
		}
		m.emit(Event{Type: EventMessage, Message: &msg})

	case wire.EventTyping:
		var typing TypingIndicator
		if err := json.Unmarshal(env.Data, &typing); err != nil {
			m.logger.Warn().Err(err).Msg("Invalid typing payload")
			return
		}
		m.emit(Event{Type: EventTyping, Typing: &typing})

	case wire.EventError:
		var payload wire.ErrorPayload
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			m.logger.Warn().Err(err).Msg("Invalid error payload")
			return
		}
		m.emit(Event{Type: EventError, Reason: payload.Message})

	default:
		m.logger.Debug().Str("event", env.Event).Msg("Ignoring unknown relay event")
	}
}

// emit delivers ev to every listener. A panicking listener is logged and
// does not stop delivery to the others.
func (m *Manager) emit(ev Event) {
	m.lmu.RLock()
	listeners := make([]Listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		listeners = append(listeners, l)
	}
	m.lmu.RUnlock()

	for _, l := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					m.logger.Error().Interface("panic", r).Str("event", string(ev.Type)).Msg("Listener panicked")
				}
			}()
			l(ev)
		}()
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
