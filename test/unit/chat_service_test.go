package unit

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/SachyamKarki/Karki-Scrapper/internal/domain"
	"github.com/SachyamKarki/Karki-Scrapper/internal/port"
	"github.com/SachyamKarki/Karki-Scrapper/pkg/logger"
	"github.com/SachyamKarki/Karki-Scrapper/service"
)

type chatFixture struct {
	chat       port.ChatService
	messages   *fakeMessageStore
	users      *fakeUserStore
	publisher  *fakePublisher
	presence   *fakePresence
	admin      *domain.User
	superadmin *domain.User
	member     *domain.User
}

func setupChat(t *testing.T) *chatFixture {
	t.Helper()

	admin := &domain.User{ID: primitive.NewObjectID(), Email: "admin@crm.test", Role: domain.RoleAdmin}
	superadmin := &domain.User{ID: primitive.NewObjectID(), Email: "boss@crm.test", Role: domain.RoleSuperadmin}
	member := &domain.User{ID: primitive.NewObjectID(), Email: "user@crm.test", Role: domain.RoleUser}

	messages := &fakeMessageStore{}
	users := newFakeUserStore(admin, superadmin, member)
	publisher := &fakePublisher{}
	presence := &fakePresence{online: map[string]bool{admin.Email: true}}

	chat := service.NewChatService(messages, users, publisher, presence, logger.NewLogger("error", ""))
	return &chatFixture{
		chat:       chat,
		messages:   messages,
		users:      users,
		publisher:  publisher,
		presence:   presence,
		admin:      admin,
		superadmin: superadmin,
		member:     member,
	}
}

func TestJoinTeamRoomStaffOnly(t *testing.T) {
	f := setupChat(t)

	room, err := f.chat.JoinTeamRoom(f.admin)
	require.NoError(t, err)
	assert.Equal(t, domain.TeamRoomKey, room)

	_, err = f.chat.JoinTeamRoom(f.member)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestResolveDirectRoom(t *testing.T) {
	f := setupChat(t)
	ctx := context.Background()

	fromAdmin, err := f.chat.ResolveDirectRoom(ctx, f.admin, f.member.HexID())
	require.NoError(t, err)
	fromMember, err := f.chat.ResolveDirectRoom(ctx, f.member, f.admin.HexID())
	require.NoError(t, err)
	assert.Equal(t, fromAdmin, fromMember)

	_, err = f.chat.ResolveDirectRoom(ctx, f.admin, f.admin.HexID())
	assert.ErrorIs(t, err, domain.ErrInvalidTarget)

	_, err = f.chat.ResolveDirectRoom(ctx, f.admin, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, domain.ErrInvalidTarget)

	_, err = f.chat.ResolveDirectRoom(ctx, f.admin, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTarget)
}

func TestSendTeamMessage(t *testing.T) {
	f := setupChat(t)
	ctx := context.Background()

	msg, err := f.chat.SendTeamMessage(ctx, f.admin, "  hello team  ")
	require.NoError(t, err)
	assert.Equal(t, "hello team", msg.Message)
	assert.False(t, msg.ID.IsZero())
	assert.Equal(t, f.admin.HexID(), msg.SenderID)

	events := f.publisher.published()
	require.Len(t, events, 1)
	assert.Equal(t, domain.TeamRoomKey, events[0].Room)
	assert.Equal(t, domain.EventNewMessage, events[0].Event.Type)
	assert.Equal(t, msg.ID.Hex(), events[0].Event.ID)
}

func TestSendTeamMessageRejections(t *testing.T) {
	f := setupChat(t)
	ctx := context.Background()

	_, err := f.chat.SendTeamMessage(ctx, f.member, "hi")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.chat.SendTeamMessage(ctx, f.admin, "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyMessage)

	assert.Empty(t, f.publisher.published())
	assert.Empty(t, f.messages.msgs)
}

func TestSendDirectMessage(t *testing.T) {
	f := setupChat(t)
	ctx := context.Background()

	msg, err := f.chat.SendDirectMessage(ctx, f.member, f.admin.HexID(), "hey")
	require.NoError(t, err)

	lo, hi := domain.SortedPair(f.member.HexID(), f.admin.HexID())
	assert.Equal(t, []string{lo, hi}, msg.Participants)
	assert.False(t, msg.Read)

	events := f.publisher.published()
	require.Len(t, events, 1)
	assert.Equal(t, domain.DirectRoomKey(f.member.HexID(), f.admin.HexID()), events[0].Room)
	assert.Equal(t, domain.EventNewDM, events[0].Event.Type)
}

func TestSendDirectMessageInvalidTargets(t *testing.T) {
	f := setupChat(t)
	ctx := context.Background()

	_, err := f.chat.SendDirectMessage(ctx, f.member, f.member.HexID(), "hi me")
	assert.ErrorIs(t, err, domain.ErrInvalidTarget)

	_, err = f.chat.SendDirectMessage(ctx, f.member, primitive.NewObjectID().Hex(), "hi ghost")
	assert.ErrorIs(t, err, domain.ErrInvalidTarget)
}

func TestNotifyTeamTyping(t *testing.T) {
	f := setupChat(t)

	require.NoError(t, f.chat.NotifyTeamTyping(f.admin, true))
	assert.ErrorIs(t, f.chat.NotifyTeamTyping(f.member, true), domain.ErrForbidden)

	events := f.publisher.published()
	require.Len(t, events, 1)
	ev := events[0].Event
	assert.Equal(t, domain.EventUserTyping, ev.Type)
	assert.Equal(t, f.admin.Email, ev.Email)
	require.NotNil(t, ev.IsTyping)
	assert.True(t, *ev.IsTyping)
	assert.Equal(t, f.admin.HexID(), ev.SenderKey())
}

func TestNotifyDirectTyping(t *testing.T) {
	f := setupChat(t)

	require.NoError(t, f.chat.NotifyDirectTyping(context.Background(), f.admin, f.member.HexID(), true))

	events := f.publisher.published()
	require.Len(t, events, 1)
	ev := events[0].Event
	assert.Equal(t, domain.EventDMUserTyping, ev.Type)
	assert.Equal(t, f.admin.HexID(), ev.UserID)
	assert.Equal(t, f.admin.Email, ev.Email)
	require.NotNil(t, ev.IsTyping)
	assert.True(t, *ev.IsTyping)
	assert.Equal(t, f.admin.HexID(), ev.SenderKey())

	// Clients key the typing indicator on user_id and email.
	raw, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"user_id"`)
	assert.Contains(t, string(raw), `"email"`)
	assert.NotContains(t, string(raw), `"sender_id"`)
}

func TestDirectHistoryMarksRead(t *testing.T) {
	f := setupChat(t)
	ctx := context.Background()

	_, err := f.chat.SendDirectMessage(ctx, f.admin, f.member.HexID(), "one")
	require.NoError(t, err)
	_, err = f.chat.SendDirectMessage(ctx, f.admin, f.member.HexID(), "two")
	require.NoError(t, err)

	msgs, other, err := f.chat.DirectHistory(ctx, f.member, f.admin.HexID())
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
	assert.Equal(t, f.admin.Email, other.Email)

	// Opening the thread cleared the unread counter.
	convs, err := f.chat.Conversations(ctx, f.member)
	require.NoError(t, err)
	require.NotEmpty(t, convs)
	assert.Equal(t, f.admin.HexID(), convs[0].UserID)
	assert.Equal(t, 0, convs[0].UnreadCount)
}

func TestConversationsOrderingAndUnread(t *testing.T) {
	f := setupChat(t)
	ctx := context.Background()

	_, err := f.chat.SendDirectMessage(ctx, f.admin, f.member.HexID(), "ping")
	require.NoError(t, err)
	_, err = f.chat.SendDirectMessage(ctx, f.admin, f.member.HexID(), "ping again")
	require.NoError(t, err)

	convs, err := f.chat.Conversations(ctx, f.member)
	require.NoError(t, err)
	require.NotEmpty(t, convs)

	// The active thread comes before roster placeholders.
	assert.Equal(t, f.admin.HexID(), convs[0].UserID)
	assert.Equal(t, 2, convs[0].UnreadCount)
	assert.True(t, convs[0].IsStaff)
	assert.True(t, convs[0].Online)
	require.NotNil(t, convs[0].LastMessage)
	assert.Equal(t, "ping again", convs[0].LastMessage.Message)

	for _, conv := range convs[1:] {
		assert.Nil(t, conv.LastMessage)
		assert.NotEqual(t, f.member.HexID(), conv.UserID)
	}
}

func TestConversationsRosterForMember(t *testing.T) {
	f := setupChat(t)

	convs, err := f.chat.Conversations(context.Background(), f.member)
	require.NoError(t, err)

	// A plain user sees staff only.
	assert.Len(t, convs, 2)
	for _, conv := range convs {
		assert.True(t, conv.IsStaff)
	}
}

func TestStaffRoster(t *testing.T) {
	f := setupChat(t)

	roster, err := f.chat.StaffRoster(context.Background(), f.admin)
	require.NoError(t, err)
	require.Len(t, roster, 2)

	var selfSeen bool
	for _, r := range roster {
		if r.ID == f.admin.HexID() {
			assert.True(t, r.IsYou)
			selfSeen = true
		} else {
			assert.False(t, r.IsYou)
		}
	}
	assert.True(t, selfSeen)

	_, err = f.chat.StaffRoster(context.Background(), f.member)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestDeleteConversation(t *testing.T) {
	f := setupChat(t)
	ctx := context.Background()

	_, err := f.chat.SendDirectMessage(ctx, f.admin, f.member.HexID(), "bye")
	require.NoError(t, err)

	deleted, err := f.chat.DeleteConversation(ctx, f.member, f.admin.HexID())
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	msgs, _, err := f.chat.DirectHistory(ctx, f.member, f.admin.HexID())
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
