/*
Package conversation holds the client's view of conversation rooms: who
takes part, the messages in arrival order and who is typing.

Rooms are created implicitly the first time they are opened or receive an
event, and never destroyed. Message history lives in the backend; a Room is
only what this client has seen.
*/
package conversation

import (
	"sort"
	"sync"
	"time"
)

// Status is the local delivery status of a message.
type Status string

const (
	// StatusSent means the message was handed to a connected transport.
	StatusSent Status = "sent"

	// StatusFailed means the emit was skipped because the transport was down.
	StatusFailed Status = "failed"
)

// Message is one entry of a room's history.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	SenderName     string    `json:"senderName"`
	Text           string    `json:"text"`
	Timestamp      time.Time `json:"timestamp"`
	Status         Status    `json:"status"`

	// Local marks messages sent by this client.
	Local bool `json:"local"`
}

// Room is one conversation.
type Room struct {
	ID string

	mu           sync.RWMutex
	participants map[string]string
	messages     []Message
	typing       map[string]struct{}
}

func newRoom(id string) *Room {
	return &Room{
		ID:           id,
		participants: make(map[string]string),
		typing:       make(map[string]struct{}),
	}
}

// AddParticipant records a participant. A known name is never replaced by
// an empty one.
func (r *Room) AddParticipant(userID, name string) {
	if userID == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.participants[userID]; ok && name == "" {
		name = existing
	}
	r.participants[userID] = name
}

// Append adds msg at the end of the history.
func (r *Room) Append(msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages = append(r.messages, msg)
	delete(r.typing, msg.SenderID)
}

// SetTyping stores the latest typing state of a user.
func (r *Room) SetTyping(userID string, isTyping bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if isTyping {
		r.typing[userID] = struct{}{}
	} else {
		delete(r.typing, userID)
	}
}

// Messages returns a copy of the history in arrival order.
func (r *Room) Messages() []Message {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]Message(nil), r.messages...)
}

// Participants returns the participant ids in sorted order.
func (r *Room) Participants() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedKeys(r.participants)
}

// ParticipantName returns the display name recorded for userID.
func (r *Room) ParticipantName(userID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.participants[userID]
}

// Typing returns the ids of users currently typing, sorted.
func (r *Room) Typing() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedKeys(r.typing)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Registry owns every room seen by the client.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

// Room returns the room for id, creating it on first use.
func (g *Registry) Room(id string) *Room {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.rooms[id]
	if !ok {
		room = newRoom(id)
		g.rooms[id] = room
	}
	return room
}

// Lookup returns the room for id without creating it.
func (g *Registry) Lookup(id string) (*Room, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.rooms[id]
	return room, ok
}

// IDs returns every known room id, sorted.
func (g *Registry) IDs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return sortedKeys(g.rooms)
}
