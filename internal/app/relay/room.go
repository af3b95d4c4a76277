/*
Package relay is the realtime hub behind conversation rooms.

This file defines Room, the set of clients joined to one conversation.
*/
package relay

import (
	"sync"

	"github.com/rs/zerolog"
)

// Room fans frames out to every member of one conversation.
type Room struct {
	// ConversationID identifies the room.
	ConversationID string

	// mu protects members. Broadcast holds it for reading while queueing.
	mu sync.RWMutex

	members map[*Client]struct{}

	logger zerolog.Logger
}

func newRoom(conversationID string, parent zerolog.Logger) *Room {
	return &Room{
		ConversationID: conversationID,
		members:        make(map[*Client]struct{}),
		logger:         parent.With().Str("conversation_id", conversationID).Logger(),
	}
}

func (r *Room) add(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.members[c] = struct{}{}
	r.logger.Debug().Str("user_id", c.user.ID).Int("members", len(r.members)).Msg("Client joined room")
}

// remove reports the number of members left.
func (r *Room) remove(c *Client) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.members, c)
	r.logger.Debug().Str("user_id", c.user.ID).Int("members", len(r.members)).Msg("Client left room")
	return len(r.members)
}

// Size returns the current member count.
func (r *Room) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.members)
}

// Broadcast queues frame for every member except sender and returns how
// many members it was queued for.
func (r *Room) Broadcast(frame []byte, sender *Client) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	for member := range r.members {
		if member == sender {
			continue
		}
		if member.enqueue(frame) {
			delivered++
		}
	}
	return delivered
}
