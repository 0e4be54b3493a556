package unit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/SachyamKarki/Karki-Scrapper/internal/domain"
	"github.com/SachyamKarki/Karki-Scrapper/internal/websocket"
	"github.com/SachyamKarki/Karki-Scrapper/pkg/logger"
)

// fakeSubscriber records room subscriptions and lets tests inject relayed
// events through the captured handlers.
type fakeSubscriber struct {
	mu       sync.Mutex
	handlers map[string]func(domain.Event)
	subs     []string
	unsubs   []string
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{handlers: map[string]func(domain.Event){}}
}

func (f *fakeSubscriber) SubscribeRoom(roomKey string, handle func(domain.Event)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[roomKey] = handle
	f.subs = append(f.subs, roomKey)
	return nil
}

func (f *fakeSubscriber) UnsubscribeRoom(roomKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.handlers, roomKey)
	f.unsubs = append(f.unsubs, roomKey)
	return nil
}

func (f *fakeSubscriber) relay(roomKey string, ev domain.Event) {
	f.mu.Lock()
	handle := f.handlers[roomKey]
	f.mu.Unlock()
	if handle != nil {
		handle(ev)
	}
}

func newTestConn(hub *websocket.Hub, role string) (*websocket.Connection, *domain.User) {
	user := &domain.User{ID: primitive.NewObjectID(), Email: role + "@crm.test", Role: role}
	return websocket.NewConnection(nil, hub, user, nil, nil, logger.NewLogger("error", "")), user
}

func recvEvent(t *testing.T, conn *websocket.Connection) domain.Event {
	t.Helper()
	select {
	case ev := <-conn.Send:
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
		return domain.Event{}
	}
}

func assertNoEvent(t *testing.T, conn *websocket.Connection) {
	t.Helper()
	select {
	case ev := <-conn.Send:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubRefcountedSubscription(t *testing.T) {
	sub := newFakeSubscriber()
	hub := websocket.NewHub(sub, logger.NewLogger("error", ""))

	c1, _ := newTestConn(hub, domain.RoleAdmin)
	c2, _ := newTestConn(hub, domain.RoleSuperadmin)

	require.NoError(t, hub.Join(domain.TeamRoomKey, c1))
	require.NoError(t, hub.Join(domain.TeamRoomKey, c1)) // idempotent
	require.NoError(t, hub.Join(domain.TeamRoomKey, c2))
	assert.Equal(t, []string{domain.TeamRoomKey}, sub.subs)

	hub.Leave(domain.TeamRoomKey, c1)
	assert.Empty(t, sub.unsubs)
	assert.False(t, hub.InRoom(domain.TeamRoomKey, c1))
	assert.True(t, hub.InRoom(domain.TeamRoomKey, c2))

	hub.Leave(domain.TeamRoomKey, c2)
	assert.Equal(t, []string{domain.TeamRoomKey}, sub.unsubs)
}

func TestHubDeliversMessagesToAllMembers(t *testing.T) {
	sub := newFakeSubscriber()
	hub := websocket.NewHub(sub, logger.NewLogger("error", ""))

	c1, u1 := newTestConn(hub, domain.RoleAdmin)
	c2, _ := newTestConn(hub, domain.RoleSuperadmin)
	require.NoError(t, hub.Join(domain.TeamRoomKey, c1))
	require.NoError(t, hub.Join(domain.TeamRoomKey, c2))

	sub.relay(domain.TeamRoomKey, domain.Event{
		Type:     domain.EventNewMessage,
		SenderID: u1.HexID(),
		Message:  "hello",
	})

	// Chat messages echo back to the sender's own connection too.
	assert.Equal(t, "hello", recvEvent(t, c1).Message)
	assert.Equal(t, "hello", recvEvent(t, c2).Message)
}

func TestHubSkipsSenderForTyping(t *testing.T) {
	sub := newFakeSubscriber()
	hub := websocket.NewHub(sub, logger.NewLogger("error", ""))

	c1, u1 := newTestConn(hub, domain.RoleAdmin)
	c2, _ := newTestConn(hub, domain.RoleSuperadmin)
	require.NoError(t, hub.Join(domain.TeamRoomKey, c1))
	require.NoError(t, hub.Join(domain.TeamRoomKey, c2))

	yes := true
	sub.relay(domain.TeamRoomKey, domain.Event{
		Type:     domain.EventUserTyping,
		UserID:   u1.HexID(),
		Email:    u1.Email,
		IsTyping: &yes,
	})

	assert.Equal(t, domain.EventUserTyping, recvEvent(t, c2).Type)
	assertNoEvent(t, c1)
}

func TestHubSkipsAllConnectionsOfSender(t *testing.T) {
	sub := newFakeSubscriber()
	hub := websocket.NewHub(sub, logger.NewLogger("error", ""))

	c1, u1 := newTestConn(hub, domain.RoleAdmin)
	// A second tab of the same account.
	c1b := websocket.NewConnection(nil, hub, u1, nil, nil, logger.NewLogger("error", ""))
	c2, _ := newTestConn(hub, domain.RoleSuperadmin)

	require.NoError(t, hub.Join(domain.TeamRoomKey, c1))
	require.NoError(t, hub.Join(domain.TeamRoomKey, c1b))
	require.NoError(t, hub.Join(domain.TeamRoomKey, c2))

	sub.relay(domain.TeamRoomKey, domain.Event{
		Type:   domain.EventUserJoined,
		UserID: u1.HexID(),
		Email:  u1.Email,
	})

	assert.Equal(t, domain.EventUserJoined, recvEvent(t, c2).Type)
	assertNoEvent(t, c1)
	assertNoEvent(t, c1b)
}

func TestHubRoomIsolation(t *testing.T) {
	sub := newFakeSubscriber()
	hub := websocket.NewHub(sub, logger.NewLogger("error", ""))

	c1, _ := newTestConn(hub, domain.RoleAdmin)
	c2, _ := newTestConn(hub, domain.RoleSuperadmin)
	require.NoError(t, hub.Join("dm_a_b", c1))
	require.NoError(t, hub.Join("dm_a_c", c2))

	sub.relay("dm_a_b", domain.Event{Type: domain.EventNewDM, Message: "private"})

	assert.Equal(t, "private", recvEvent(t, c1).Message)
	assertNoEvent(t, c2)
}

func TestHubLeaveAll(t *testing.T) {
	sub := newFakeSubscriber()
	hub := websocket.NewHub(sub, logger.NewLogger("error", ""))

	c1, _ := newTestConn(hub, domain.RoleAdmin)
	require.NoError(t, hub.Join(domain.TeamRoomKey, c1))
	require.NoError(t, hub.Join("dm_a_b", c1))

	left := hub.LeaveAll(c1)
	assert.ElementsMatch(t, []string{domain.TeamRoomKey, "dm_a_b"}, left)
	assert.ElementsMatch(t, []string{domain.TeamRoomKey, "dm_a_b"}, sub.unsubs)
}
