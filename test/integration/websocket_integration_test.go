package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/SachyamKarki/Karki-Scrapper/api/ws"
	"github.com/SachyamKarki/Karki-Scrapper/config"
	"github.com/SachyamKarki/Karki-Scrapper/internal/auth"
	"github.com/SachyamKarki/Karki-Scrapper/internal/domain"
	"github.com/SachyamKarki/Karki-Scrapper/internal/mongo"
	"github.com/SachyamKarki/Karki-Scrapper/internal/nats"
	"github.com/SachyamKarki/Karki-Scrapper/internal/redis"
	"github.com/SachyamKarki/Karki-Scrapper/internal/websocket"
	"github.com/SachyamKarki/Karki-Scrapper/pkg/logger"
	"github.com/SachyamKarki/Karki-Scrapper/service"
)

type stack struct {
	server   *httptest.Server
	sessions *auth.SessionManager
	mongo    *mongo.Client
	chat     *testUsers
}

type testUsers struct {
	admin1 *domain.User
	admin2 *domain.User
	member *domain.User
}

// setupStack wires the real relay against live NATS, Redis and MongoDB.
// Tests skip when the backing services are not running.
func setupStack(t *testing.T) *stack {
	cfg := config.MustReadConfig("../../config_test.json")
	log := logger.NewLogger(cfg.LogLevel, cfg.LogFile)
	ctx := context.Background()

	natsClient, err := nats.NewNATSClient(cfg.NATSURL)
	if err != nil {
		t.Skipf("NATS unavailable: %v", err)
	}

	redisClient, err := redis.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		natsClient.Close()
		t.Skipf("Redis unavailable: %v", err)
	}
	require.NoError(t, redisClient.FlushAll(ctx))

	mongoClient, err := mongo.NewClient(ctx, cfg.MongoURL, cfg.MongoDatabase)
	if err != nil {
		natsClient.Close()
		redisClient.Close()
		t.Skipf("MongoDB unavailable: %v", err)
	}
	require.NoError(t, mongoClient.Drop(ctx))

	users := &testUsers{}
	users.admin1, err = mongoClient.Users().Create(ctx, "admin1@crm.test", "x", domain.RoleAdmin)
	require.NoError(t, err)
	users.admin2, err = mongoClient.Users().Create(ctx, "admin2@crm.test", "x", domain.RoleAdmin)
	require.NoError(t, err)
	users.member, err = mongoClient.Users().Create(ctx, "member@crm.test", "x", domain.RoleUser)
	require.NoError(t, err)

	chatService := service.NewChatService(mongoClient.Messages(), mongoClient.Users(), natsClient, redisClient, log)
	hub := websocket.NewHub(natsClient, log)
	go hub.Run()

	sessions := auth.NewSessionManager(cfg.Session)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", ws.HandleWebSocket(hub, sessions, mongoClient.Users(), chatService, redisClient, log))
	server := httptest.NewServer(mux)

	t.Cleanup(func() {
		server.Close()
		hub.Close()
		_ = mongoClient.Drop(context.Background())
		_ = mongoClient.Close(context.Background())
		_ = redisClient.Close()
		natsClient.Close()
	})

	return &stack{server: server, sessions: sessions, mongo: mongoClient, chat: users}
}

type testClient struct {
	conn *gws.Conn
	t    *testing.T
}

func (s *stack) connect(t *testing.T, user *domain.User) *testClient {
	token, err := s.sessions.Issue(user.HexID(), user.Email, user.Role)
	require.NoError(t, err)

	header := http.Header{}
	header.Add("Cookie", auth.SessionCookieName+"="+token)

	wsURL := "ws" + s.server.URL[4:] + "/ws"
	conn, _, err := gws.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)

	t.Cleanup(func() { conn.Close() })
	return &testClient{conn: conn, t: t}
}

func (c *testClient) send(ev domain.Event) {
	require.NoError(c.t, c.conn.WriteJSON(ev))
}

func (c *testClient) receive() domain.Event {
	var ev domain.Event
	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	require.NoError(c.t, c.conn.ReadJSON(&ev))
	return ev
}

func (c *testClient) expectNothing() {
	c.conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	var ev domain.Event
	err := c.conn.ReadJSON(&ev)
	require.Error(c.t, err, "expected no frame, got %+v", ev)
}

func TestHandshakeRequiresSession(t *testing.T) {
	s := setupStack(t)

	wsURL := "ws" + s.server.URL[4:] + "/ws"
	_, resp, err := gws.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTeamChatFlow(t *testing.T) {
	s := setupStack(t)

	c1 := s.connect(t, s.chat.admin1)
	c1.send(domain.Event{Type: domain.EventJoinChat})
	time.Sleep(200 * time.Millisecond)

	c2 := s.connect(t, s.chat.admin2)
	c2.send(domain.Event{Type: domain.EventJoinChat})

	// The first admin sees the second one arrive; the joiner gets no echo.
	joined := c1.receive()
	require.Equal(t, domain.EventUserJoined, joined.Type)
	require.Equal(t, s.chat.admin2.Email, joined.Email)

	c1.send(domain.Event{Type: domain.EventSendMessage, Message: "hello team"})

	// Both members receive the broadcast, the sender included.
	msg1 := c1.receive()
	require.Equal(t, domain.EventNewMessage, msg1.Type)
	require.Equal(t, "hello team", msg1.Message)
	require.Equal(t, s.chat.admin1.Email, msg1.SenderEmail)
	require.NotEmpty(t, msg1.ID)

	msg2 := c2.receive()
	require.Equal(t, "hello team", msg2.Message)

	// The message was persisted.
	history, err := s.mongo.Messages().TeamHistory(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, "hello team", history[0].Message)
}

func TestTypingSkipsSender(t *testing.T) {
	s := setupStack(t)

	c1 := s.connect(t, s.chat.admin1)
	c1.send(domain.Event{Type: domain.EventJoinChat})
	c2 := s.connect(t, s.chat.admin2)
	c2.send(domain.Event{Type: domain.EventJoinChat})
	_ = c1.receive() // admin2 join notification
	time.Sleep(200 * time.Millisecond)

	yes := true
	c1.send(domain.Event{Type: domain.EventTyping, IsTyping: &yes})

	typing := c2.receive()
	require.Equal(t, domain.EventUserTyping, typing.Type)
	require.Equal(t, s.chat.admin1.Email, typing.Email)
	require.NotNil(t, typing.IsTyping)
	require.True(t, *typing.IsTyping)

	c1.expectNothing()
}

func TestNonStaffRejectedFromTeamRoom(t *testing.T) {
	s := setupStack(t)

	c := s.connect(t, s.chat.member)
	c.send(domain.Event{Type: domain.EventJoinChat})

	ev := c.receive()
	require.Equal(t, domain.EventError, ev.Type)
	require.NotEmpty(t, ev.Message)
}

func TestDirectMessageFlow(t *testing.T) {
	s := setupStack(t)

	member := s.connect(t, s.chat.member)
	admin := s.connect(t, s.chat.admin1)

	member.send(domain.Event{Type: domain.EventJoinDM, RecipientID: s.chat.admin1.HexID()})
	admin.send(domain.Event{Type: domain.EventJoinDM, RecipientID: s.chat.member.HexID()})
	time.Sleep(200 * time.Millisecond)

	member.send(domain.Event{Type: domain.EventSendDM, RecipientID: s.chat.admin1.HexID(), Message: "hi there"})

	got := admin.receive()
	require.Equal(t, domain.EventNewDM, got.Type)
	require.Equal(t, "hi there", got.Message)
	require.Equal(t, s.chat.member.Email, got.SenderEmail)

	echo := member.receive()
	require.Equal(t, domain.EventNewDM, echo.Type)
}

func TestDMToUnknownUserFails(t *testing.T) {
	s := setupStack(t)

	c := s.connect(t, s.chat.member)
	c.send(domain.Event{Type: domain.EventSendDM, RecipientID: "000000000000000000000000", Message: "void"})

	ev := c.receive()
	require.Equal(t, domain.EventError, ev.Type)
}
