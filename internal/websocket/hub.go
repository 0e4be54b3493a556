package websocket

import (
	"sync"

	"github.com/SachyamKarki/Karki-Scrapper/internal/domain"
	"github.com/SachyamKarki/Karki-Scrapper/internal/port"
	"github.com/SachyamKarki/Karki-Scrapper/pkg/logger"
)

// Hub tracks local connections and their room memberships. Room
// subscriptions on the relay are refcounted: the first local member of a
// room subscribes the process, the last one out unsubscribes it.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Connection]bool
	rooms      map[string]map[*Connection]bool
	Register   chan *Connection
	Unregister chan *Connection

	subscriber port.RoomSubscriber
	logger     logger.Logger
}

func NewHub(subscriber port.RoomSubscriber, log logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Connection]bool),
		rooms:      make(map[string]map[*Connection]bool),
		Register:   make(chan *Connection),
		Unregister: make(chan *Connection),
		subscriber: subscriber,
		logger:     log.WithModule("hub"),
	}
}

// Run starts the Hub's main loop for connection lifecycle events.
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.Register:
			h.addClient(conn)
		case conn := <-h.Unregister:
			h.removeClient(conn)
		}
	}
}

// Close shuts down the Hub, closing all connections.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		conn.closeSend()
		conn.ws.Close()
		delete(h.clients, conn)
	}
	for key := range h.rooms {
		if err := h.subscriber.UnsubscribeRoom(key); err != nil {
			h.logger.Warnf("failed to unsubscribe room %s: %v", key, err)
		}
		delete(h.rooms, key)
	}
}

// Join adds the connection to a room, subscribing the process to the room
// subject when it gains its first local member. Joining twice is a no-op.
func (h *Hub) Join(roomKey string, conn *Connection) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[roomKey]
	if !ok {
		members = make(map[*Connection]bool)
		h.rooms[roomKey] = members
	}
	if members[conn] {
		return nil
	}

	if len(members) == 0 {
		key := roomKey
		if err := h.subscriber.SubscribeRoom(key, func(ev domain.Event) {
			h.deliver(key, ev)
		}); err != nil {
			delete(h.rooms, roomKey)
			return err
		}
	}
	members[conn] = true
	return nil
}

// Leave removes the connection from a room, dropping the relay
// subscription when the last local member is gone.
func (h *Hub) Leave(roomKey string, conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(roomKey, conn)
}

// LeaveAll removes the connection from every room it joined and returns the
// room keys it was a member of.
func (h *Hub) LeaveAll(conn *Connection) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	var left []string
	for key, members := range h.rooms {
		if members[conn] {
			left = append(left, key)
			h.leaveLocked(key, conn)
		}
	}
	return left
}

// InRoom reports whether the connection currently belongs to the room.
func (h *Hub) InRoom(roomKey string, conn *Connection) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[roomKey][conn]
}

func (h *Hub) leaveLocked(roomKey string, conn *Connection) {
	members, ok := h.rooms[roomKey]
	if !ok || !members[conn] {
		return
	}
	delete(members, conn)
	if len(members) == 0 {
		delete(h.rooms, roomKey)
		if err := h.subscriber.UnsubscribeRoom(roomKey); err != nil {
			h.logger.Warnf("failed to unsubscribe room %s: %v", roomKey, err)
		}
	}
}

// deliver fans a relayed event out to the room's local members. Typing and
// join/leave notifications skip connections owned by the originating user;
// chat messages echo back so every tab of the sender renders them.
func (h *Hub) deliver(roomKey string, ev domain.Event) {
	skipSender := ev.Type == domain.EventUserTyping ||
		ev.Type == domain.EventDMUserTyping ||
		ev.Type == domain.EventUserJoined ||
		ev.Type == domain.EventUserLeft

	h.mu.RLock()
	var stale []*Connection
	for conn := range h.rooms[roomKey] {
		if skipSender && conn.ownsSender(&ev) {
			continue
		}
		if !conn.trySend(ev) {
			stale = append(stale, conn)
		}
	}
	h.mu.RUnlock()

	for _, conn := range stale {
		h.removeClient(conn)
	}
}

func (h *Hub) addClient(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
}

func (h *Hub) removeClient(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.clients[conn]; !exists {
		return
	}
	delete(h.clients, conn)
	for key, members := range h.rooms {
		if members[conn] {
			h.leaveLocked(key, conn)
		}
	}
	conn.closeSend()
}
