/*
Package relay is the realtime hub behind conversation rooms.

This file defines Manager, which owns all rooms and connected clients.
Rooms are created by the first join and removed when the last member leaves.
*/
package relay

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"mentorlink/internal/app/user"
	"mentorlink/internal/pkg/logx"
)

// ErrShuttingDown is returned by Serve once Shutdown has started.
var ErrShuttingDown = errors.New("relay is shutting down")

// Manager coordinates every room and client of the hub.
type Manager struct {
	// rooms keyed by conversation id.
	rooms map[string]*Room

	clients map[*Client]struct{}

	closed bool

	// mu protects rooms, clients and closed. Room membership changes happen
	// under it so an emptied room is never handed to a new joiner.
	mu sync.Mutex

	logger zerolog.Logger
}

// NewManager constructs an empty hub.
func NewManager() *Manager {
	return &Manager{
		rooms:   make(map[string]*Room),
		clients: make(map[*Client]struct{}),
		logger:  logx.Component("relay"),
	}
}

// Serve runs the pumps for an upgraded connection and blocks until the
// connection is gone.
func (m *Manager) Serve(conn *websocket.Conn, u user.User) error {
	c := newClient(m, conn, u)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		c.close("server shutting down")
		return ErrShuttingDown
	}
	m.clients[c] = struct{}{}
	m.mu.Unlock()

	c.logger.Info().Str("user_name", u.Name).Msg("Client connected")

	go c.WritePump()
	c.ReadPump()

	return nil
}

func (m *Manager) join(conversationID string, c *Client) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[conversationID]
	if !ok {
		room = newRoom(conversationID, m.logger)
		m.rooms[conversationID] = room
		m.logger.Info().Str("conversation_id", conversationID).Msg("Room created")
	}

	room.add(c)
	return room
}

func (m *Manager) leave(conversationID string, c *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.leaveLocked(conversationID, c)
}

func (m *Manager) leaveLocked(conversationID string, c *Client) {
	room, ok := m.rooms[conversationID]
	if !ok {
		return
	}

	if room.remove(c) == 0 {
		delete(m.rooms, conversationID)
		m.logger.Info().Str("conversation_id", conversationID).Msg("Room removed")
	}
}

// unregister drops the client from every room it joined.
func (m *Manager) unregister(c *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id := range c.rooms {
		m.leaveLocked(id, c)
	}
	delete(m.clients, c)

	c.logger.Info().Int("rooms", len(c.rooms)).Msg("Client disconnected")
}

// Room returns the live room for a conversation, or nil.
func (m *Manager) Room(conversationID string) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.rooms[conversationID]
}

// RoomCount returns the number of live rooms.
func (m *Manager) RoomCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.rooms)
}

// Shutdown closes every client connection and refuses new ones.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	m.closed = true
	clients := make([]*Client, 0, len(m.clients))
	for c := range m.clients {
		clients = append(clients, c)
	}
	m.mu.Unlock()

	m.logger.Info().Int("clients", len(clients)).Msg("Shutting down relay")

	for _, c := range clients {
		c.close("server shutting down")
	}
}
