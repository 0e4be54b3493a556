package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ConversationTeam   = "team"
	ConversationDirect = "dm"
)

// ChatMessage is one relayed message as stored in the messages collection.
// Messages are immutable once inserted.
type ChatMessage struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	ConversationType string             `bson:"conversation_type" json:"conversation_type"`
	Participants     []string           `bson:"participants,omitempty" json:"participants,omitempty"`
	SenderID         string             `bson:"sender_id" json:"sender_id"`
	SenderEmail      string             `bson:"sender_email" json:"sender_email"`
	RecipientID      string             `bson:"recipient_id,omitempty" json:"recipient_id,omitempty"`
	Message          string             `bson:"message" json:"message"`
	Room             string             `bson:"room,omitempty" json:"room,omitempty"`
	Read             bool               `bson:"read" json:"read"`
	Timestamp        time.Time          `bson:"timestamp" json:"timestamp"`
}

// RoomKey returns the room this message belongs to.
func (m *ChatMessage) RoomKey() string {
	if m.ConversationType == ConversationDirect {
		return DirectRoomKey(m.SenderID, m.RecipientID)
	}
	return TeamRoomKey
}

// Conversation is one entry in a user's direct-message sidebar: the partner,
// the latest message (nil when no message has been exchanged yet) and the
// number of unread incoming messages.
type Conversation struct {
	UserID      string       `json:"user_id"`
	UserEmail   string       `json:"user_email"`
	UserRole    string       `json:"user_role"`
	LastMessage *ChatMessage `json:"last_message,omitempty"`
	UnreadCount int          `json:"unread_count"`
	IsStaff     bool         `json:"is_admin"`
	Online      bool         `json:"online"`
}

// Recipient is one entry in the staff roster returned by /messages/admins.
type Recipient struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	IsYou bool   `json:"is_you"`
}
