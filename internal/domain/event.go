package domain

type EventType string

// Client -> server events.
const (
	EventJoinChat    EventType = "join_chat"
	EventJoinDM      EventType = "join_dm"
	EventLeaveDM     EventType = "leave_dm"
	EventSendMessage EventType = "send_message"
	EventSendDM      EventType = "send_dm"
	EventTyping      EventType = "typing"
	EventDMTyping    EventType = "dm_typing"
)

// Server -> client events.
const (
	EventNewMessage   EventType = "new_message"
	EventNewDM        EventType = "new_dm"
	EventUserTyping   EventType = "user_typing"
	EventDMUserTyping EventType = "dm_user_typing"
	EventUserJoined   EventType = "user_joined"
	EventUserLeft     EventType = "user_left"
	EventError        EventType = "error"
)

// Event is the flat JSON envelope exchanged on the websocket and relayed
// through the room subjects. Unused fields stay empty per event type.
type Event struct {
	Type        EventType `json:"type"`
	ID          string    `json:"_id,omitempty"`
	UserID      string    `json:"user_id,omitempty"`
	SenderID    string    `json:"sender_id,omitempty"`
	RecipientID string    `json:"recipient_id,omitempty"`
	Email       string    `json:"email,omitempty"`
	SenderEmail string    `json:"sender_email,omitempty"`
	Message     string    `json:"message,omitempty"`
	IsTyping    *bool     `json:"is_typing,omitempty"`
	Timestamp   string    `json:"timestamp,omitempty"`
}

// Typing reports the is_typing flag, defaulting to false when absent.
func (e *Event) Typing() bool {
	return e.IsTyping != nil && *e.IsTyping
}

// SenderKey identifies the originating user of a relayed event, used to
// suppress self-echo on typing and join/leave notifications.
func (e *Event) SenderKey() string {
	if e.UserID != "" {
		return e.UserID
	}
	if e.SenderID != "" {
		return e.SenderID
	}
	if e.Email != "" {
		return e.Email
	}
	return e.SenderEmail
}

// NewMessageEvent converts a persisted message into its broadcast form.
func NewMessageEvent(m *ChatMessage) Event {
	typ := EventNewMessage
	if m.ConversationType == ConversationDirect {
		typ = EventNewDM
	}
	return Event{
		Type:        typ,
		ID:          m.ID.Hex(),
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		SenderEmail: m.SenderEmail,
		Message:     m.Message,
		Timestamp:   m.Timestamp.UTC().Format("2006-01-02T15:04:05.000000"),
	}
}
