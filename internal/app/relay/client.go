/*
Package relay is the realtime hub behind conversation rooms.

This file defines Client, one upgraded WebSocket connection. A client may be
joined to any number of conversation rooms at once; its ReadPump dispatches
inbound events and its WritePump drains the send queue and keeps the
heartbeat.
*/
package relay

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"mentorlink/internal/app/user"
	"mentorlink/internal/pkg/errs"
	"mentorlink/internal/pkg/logx"
	"mentorlink/internal/pkg/wire"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed to wait for a Pong from the client.
	pongWait = 60 * time.Second

	// frequency at which the hub sends a Ping.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxMessageSize = 8192

	// capacity of each client's outbound queue.
	sendBufferSize = 256

	// MaxContentBytes is the maximum allowed size of a message text.
	MaxContentBytes = 5000
)

// Client represents an active relay connection and its user.
type Client struct {
	manager *Manager

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// identity resolved at upgrade time.
	user user.User

	// a buffered channel used to queue frames waiting to be written.
	send chan []byte

	// rooms joined by this client. Only the ReadPump goroutine touches it.
	rooms map[string]*Room

	closeOnce sync.Once

	logger zerolog.Logger
}

func newClient(m *Manager, conn *websocket.Conn, u user.User) *Client {
	return &Client{
		manager: m,
		conn:    conn,
		user:    u,
		send:    make(chan []byte, sendBufferSize),
		rooms:   make(map[string]*Room),
		logger: m.logger.With().
			Str("user_id", u.ID).
			Logger(),
	}
}

// User returns the identity the client connected with.
func (c *Client) User() user.User {
	return c.user
}

// ReadPump reads frames until the connection fails, then leaves every room.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading frame (client close/going away)")
			}
			break
		}

		c.processInbound(frame)
	}
}

func (c *Client) cleanupOnDisconnect() {
	c.manager.unregister(c)

	c.closeOnce.Do(func() {
		close(c.send)
	})

	c.logger.Debug().Msg("Client connection cleaned up")
}

func (c *Client) processInbound(frame []byte) {
	var env wire.Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		c.logger.Warn().Err(err).Int("frame_len", len(frame)).Msg("Client sent invalid JSON")
		c.SendError(errs.NewError(errs.ErrInvalidJSONFormat))
		return
	}

	switch env.Event {
	case wire.EventJoin:
		c.handleJoin(env.Data)

	case wire.EventLeave:
		c.handleLeave(env.Data)

	case wire.EventSendMessage:
		c.handleSendMessage(env.Data)

	case wire.EventTyping:
		c.handleTyping(env.Data)

	default:
		c.logger.Warn().Str("event", env.Event).Msg("Client sent unsupported event")
		c.SendError(errs.NewError(errs.ErrUnsupportedEvent))
	}
}

func (c *Client) handleJoin(data json.RawMessage) {
	var p wire.JoinPayload
	if err := json.Unmarshal(data, &p); err != nil || p.ConversationID == "" {
		c.SendError(errs.NewError(errs.ErrConversationRequired))
		return
	}

	if _, ok := c.rooms[p.ConversationID]; ok {
		return
	}

	c.rooms[p.ConversationID] = c.manager.join(p.ConversationID, c)
}

func (c *Client) handleLeave(data json.RawMessage) {
	var p wire.JoinPayload
	if err := json.Unmarshal(data, &p); err != nil || p.ConversationID == "" {
		c.SendError(errs.NewError(errs.ErrConversationRequired))
		return
	}

	if _, ok := c.rooms[p.ConversationID]; !ok {
		return
	}

	delete(c.rooms, p.ConversationID)
	c.manager.leave(p.ConversationID, c)
}

func (c *Client) handleSendMessage(data json.RawMessage) {
	var p wire.SendMessagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		c.SendError(errs.NewError(errs.ErrInvalidParams))
		return
	}

	if p.ConversationID == "" {
		c.SendError(errs.NewError(errs.ErrConversationRequired))
		return
	}

	room, ok := c.rooms[p.ConversationID]
	if !ok {
		c.SendError(errs.NewError(errs.ErrNotInConversation))
		return
	}

	if strings.TrimSpace(p.Text) == "" {
		c.SendError(errs.NewError(errs.ErrInvalidParams))
		return
	}

	if len(p.Text) > MaxContentBytes {
		c.SendError(errs.NewError(errs.ErrMessageContentTooLong))
		return
	}

	senderName := c.user.Name
	if senderName == "" {
		senderName = p.SenderName
	}

	frame, err := wire.Encode(wire.EventMessage, wire.MessagePayload{
		ID:             uuid.NewString(),
		ConversationID: p.ConversationID,
		SenderID:       c.user.ID,
		SenderName:     senderName,
		Text:           p.Text,
		Timestamp:      time.Now().UnixMilli(),
	})
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to build message frame")
		return
	}

	room.Broadcast(frame, c)
}

func (c *Client) handleTyping(data json.RawMessage) {
	var p wire.TypingPayload
	if err := json.Unmarshal(data, &p); err != nil || p.ConversationID == "" {
		c.SendError(errs.NewError(errs.ErrConversationRequired))
		return
	}

	// typing is ephemeral: outside a joined room it is dropped silently
	room, ok := c.rooms[p.ConversationID]
	if !ok {
		return
	}

	frame, err := wire.Encode(wire.EventTyping, wire.TypingPayload{
		ConversationID: p.ConversationID,
		UserID:         c.user.ID,
		IsTyping:       p.IsTyping,
	})
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to build typing frame")
		return
	}

	room.Broadcast(frame, c)
}

// WritePump writes queued frames to the connection and sends periodic pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !c.writeQueued(frame, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePing() {
				return
			}
		}
	}
}

// writeQueued returns false when the WritePump loop should terminate.
func (c *Client) writeQueued(frame []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.logger.Error().Err(err).Msg("Error writing frame")
		return false
	}

	return true
}

func (c *Client) writePing() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}

// enqueue queues a frame without blocking. A client whose queue is full is
// too slow to keep up and gets disconnected.
func (c *Client) enqueue(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Msg("Client send queue full, disconnecting")
		c.conn.Close()
		return false
	}
}

// SendError queues an error event for the client.
func (c *Client) SendError(err error) {
	payload := wire.ErrorPayload{Code: errs.ErrUnknown, Message: "Internal server error"}

	var customErr *errs.CustomError
	if errors.As(err, &customErr) {
		payload.Code = customErr.Code
		payload.Message = customErr.Message
	}

	frame, encErr := wire.Encode(wire.EventError, payload)
	if encErr != nil {
		logx.Error(encErr, "Failed to build error frame")
		return
	}

	c.enqueue(frame)
}

// close sends a going-away close frame and drops the connection. Safe to
// call from any goroutine.
func (c *Client) close(reason string) {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, reason)
	if err := c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); err != nil {
		c.logger.Debug().Err(err).Msg("Failed to send close frame")
	}
	c.conn.Close()
}
