package websocket

import (
	"context"
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/SachyamKarki/Karki-Scrapper/internal/domain"
	"github.com/SachyamKarki/Karki-Scrapper/internal/port"
	"github.com/SachyamKarki/Karki-Scrapper/pkg/logger"
)

// Connection represents a single authenticated WebSocket client.
type Connection struct {
	ws   *websocket.Conn
	Send chan domain.Event
	hub  *Hub
	user *domain.User

	sendMu sync.Mutex
	closed bool

	chat     port.ChatService
	presence port.Presence
	logger   logger.Logger
}

func NewConnection(ws *websocket.Conn, hub *Hub, user *domain.User, chat port.ChatService, presence port.Presence, log logger.Logger) *Connection {
	return &Connection{
		ws:       ws,
		Send:     make(chan domain.Event, 256),
		hub:      hub,
		user:     user,
		chat:     chat,
		presence: presence,
		logger:   log.WithModule("connection").WithFields(map[string]interface{}{"user": user.Email}),
	}
}

// trySend queues an event for this client without blocking. It reports
// false when the buffer is full or the send channel is already closed.
func (c *Connection) trySend(ev domain.Event) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.Send <- ev:
		return true
	default:
		return false
	}
}

// closeSend closes the send channel exactly once, ending WritePump. The hub
// may remove a connection whose readPump is still running, so every send
// goes through trySend.
func (c *Connection) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

// ownsSender reports whether the relayed event originated from this
// connection's user, across any of their open tabs.
func (c *Connection) ownsSender(ev *domain.Event) bool {
	key := ev.SenderKey()
	return key != "" && (key == c.user.HexID() || key == c.user.Email)
}

// ReadPump consumes client events until the socket closes, then tears the
// connection down: rooms left, presence dropped, departure announced.
func (c *Connection) ReadPump() {
	ctx := context.Background()

	defer func() {
		wasInTeam := c.hub.InRoom(domain.TeamRoomKey, c)
		c.hub.Unregister <- c
		c.ws.Close()
		if err := c.presence.Disconnected(ctx, c.user.Email); err != nil {
			c.logger.Warnf("failed to update presence: %v", err)
		}
		if wasInTeam {
			if err := c.chat.AnnounceLeave(c.user); err != nil {
				c.logger.Warnf("failed to announce leave: %v", err)
			}
		}
	}()

	for {
		var ev domain.Event
		if err := c.ws.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warnf("read error: %v", err)
			}
			return
		}
		c.handleEvent(ctx, ev)
	}
}

// WritePump drains the send channel onto the socket.
func (c *Connection) WritePump() {
	defer c.ws.Close()

	for ev := range c.Send {
		if err := c.ws.WriteJSON(ev); err != nil {
			c.logger.Warnf("write error: %v", err)
			return
		}
	}
}

func (c *Connection) handleEvent(ctx context.Context, ev domain.Event) {
	var err error

	switch ev.Type {
	case domain.EventJoinChat:
		err = c.joinTeam()
	case domain.EventJoinDM:
		err = c.joinDirect(ctx, ev.RecipientID)
	case domain.EventLeaveDM:
		err = c.leaveDirect(ctx, ev.RecipientID)
	case domain.EventSendMessage:
		_, err = c.chat.SendTeamMessage(ctx, c.user, ev.Message)
	case domain.EventSendDM:
		_, err = c.chat.SendDirectMessage(ctx, c.user, ev.RecipientID, ev.Message)
	case domain.EventTyping:
		err = c.chat.NotifyTeamTyping(c.user, ev.Typing())
	case domain.EventDMTyping:
		err = c.chat.NotifyDirectTyping(ctx, c.user, ev.RecipientID, ev.Typing())
	default:
		c.logger.Debugf("ignoring unknown event type %q", ev.Type)
		return
	}

	if err != nil {
		c.logger.Debugf("event %s rejected: %v", ev.Type, err)
		c.sendError(err)
	}
}

func (c *Connection) joinTeam() error {
	room, err := c.chat.JoinTeamRoom(c.user)
	if err != nil {
		return err
	}
	if err := c.hub.Join(room, c); err != nil {
		return err
	}
	return c.chat.AnnounceJoin(c.user)
}

func (c *Connection) joinDirect(ctx context.Context, otherID string) error {
	room, err := c.chat.ResolveDirectRoom(ctx, c.user, otherID)
	if err != nil {
		return err
	}
	return c.hub.Join(room, c)
}

func (c *Connection) leaveDirect(ctx context.Context, otherID string) error {
	room, err := c.chat.ResolveDirectRoom(ctx, c.user, otherID)
	if err != nil {
		return err
	}
	c.hub.Leave(room, c)
	return nil
}

// sendError reports a failure back to this client only.
func (c *Connection) sendError(err error) {
	msg := "something went wrong"
	switch {
	case errors.Is(err, domain.ErrForbidden):
		msg = "not allowed"
	case errors.Is(err, domain.ErrInvalidTarget):
		msg = "unknown recipient"
	case errors.Is(err, domain.ErrEmptyMessage):
		msg = "message is empty"
	}
	c.trySend(domain.Event{Type: domain.EventError, Message: msg})
}
