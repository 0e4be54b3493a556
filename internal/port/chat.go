package port

import (
	"context"

	"github.com/SachyamKarki/Karki-Scrapper/internal/domain"
)

// ChatService is the relay core: it authorizes room access, persists
// messages and hands broadcast events to the room publisher.
type ChatService interface {
	// JoinTeamRoom authorizes the user for the shared staff room and
	// returns its key. Fails with domain.ErrForbidden for non-staff.
	JoinTeamRoom(user *domain.User) (string, error)
	// ResolveDirectRoom validates the target and returns the canonical
	// pair room key. Fails with domain.ErrInvalidTarget when otherID does
	// not resolve to a known user or equals the caller.
	ResolveDirectRoom(ctx context.Context, user *domain.User, otherID string) (string, error)

	SendTeamMessage(ctx context.Context, sender *domain.User, body string) (*domain.ChatMessage, error)
	SendDirectMessage(ctx context.Context, sender *domain.User, recipientID, body string) (*domain.ChatMessage, error)

	NotifyTeamTyping(sender *domain.User, isTyping bool) error
	NotifyDirectTyping(ctx context.Context, sender *domain.User, recipientID string, isTyping bool) error

	AnnounceJoin(user *domain.User) error
	AnnounceLeave(user *domain.User) error

	TeamHistory(ctx context.Context, requester *domain.User) ([]domain.ChatMessage, error)
	DirectHistory(ctx context.Context, requester *domain.User, otherID string) ([]domain.ChatMessage, *domain.User, error)
	Conversations(ctx context.Context, requester *domain.User) ([]domain.Conversation, error)
	StaffRoster(ctx context.Context, requester *domain.User) ([]domain.Recipient, error)
	DeleteConversation(ctx context.Context, requester *domain.User, otherID string) (int64, error)
}

// MessageStore persists and queries chat messages.
type MessageStore interface {
	Insert(ctx context.Context, msg *domain.ChatMessage) error
	TeamHistory(ctx context.Context, limit int) ([]domain.ChatMessage, error)
	DirectHistory(ctx context.Context, a, b string, limit int) ([]domain.ChatMessage, error)
	// MarkRead flags unread messages from senderID in the (a, b)
	// conversation as read.
	MarkRead(ctx context.Context, a, b, senderID string) error
	// DirectPartners returns, newest conversation first, the latest message
	// and unread count per conversation the user participates in.
	DirectPartners(ctx context.Context, userID string) ([]domain.Conversation, error)
	DeleteConversation(ctx context.Context, a, b string) (int64, error)
}

// UserStore persists and queries accounts.
type UserStore interface {
	Create(ctx context.Context, email, passwordHash, role string) (*domain.User, error)
	ByEmail(ctx context.Context, email string) (*domain.User, error)
	ByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Staff(ctx context.Context) ([]domain.User, error)
	UpdateRole(ctx context.Context, id, role string) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// RoomPublisher fans a broadcast event out to every process holding members
// of the room.
type RoomPublisher interface {
	PublishRoom(roomKey string, ev domain.Event) error
}

// RoomSubscriber delivers room events to a local handler. Subscriptions are
// refcounted per room key: the hub subscribes when the first local
// connection joins a room and unsubscribes after the last one leaves.
type RoomSubscriber interface {
	SubscribeRoom(roomKey string, handle func(domain.Event)) error
	UnsubscribeRoom(roomKey string) error
}

// Presence tracks which users currently hold at least one live connection.
type Presence interface {
	Connected(ctx context.Context, email string) error
	Disconnected(ctx context.Context, email string) error
	IsOnline(ctx context.Context, email string) (bool, error)
	OnlineEmails(ctx context.Context) ([]string, error)
}
