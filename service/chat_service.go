package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SachyamKarki/Karki-Scrapper/internal/domain"
	"github.com/SachyamKarki/Karki-Scrapper/internal/port"
	"github.com/SachyamKarki/Karki-Scrapper/pkg/logger"
)

const historyLimit = 100

type chatService struct {
	messages  port.MessageStore
	users     port.UserStore
	publisher port.RoomPublisher
	presence  port.Presence
	logger    logger.Logger
}

func NewChatService(messages port.MessageStore, users port.UserStore, publisher port.RoomPublisher, presence port.Presence, log logger.Logger) port.ChatService {
	return &chatService{
		messages:  messages,
		users:     users,
		publisher: publisher,
		presence:  presence,
		logger:    log.WithModule("chat"),
	}
}

func (s *chatService) JoinTeamRoom(user *domain.User) (string, error) {
	if !user.IsStaff() {
		return "", domain.ErrForbidden
	}
	return domain.TeamRoomKey, nil
}

func (s *chatService) ResolveDirectRoom(ctx context.Context, user *domain.User, otherID string) (string, error) {
	other, err := s.resolveTarget(ctx, user, otherID)
	if err != nil {
		return "", err
	}
	return domain.DirectRoomKey(user.HexID(), other.HexID()), nil
}

func (s *chatService) SendTeamMessage(ctx context.Context, sender *domain.User, body string) (*domain.ChatMessage, error) {
	if !sender.IsStaff() {
		return nil, domain.ErrForbidden
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domain.ErrEmptyMessage
	}

	msg := &domain.ChatMessage{
		ConversationType: domain.ConversationTeam,
		SenderID:         sender.HexID(),
		SenderEmail:      sender.Email,
		Message:          body,
		Room:             domain.TeamRoomKey,
		Timestamp:        time.Now().UTC(),
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	s.publish(domain.TeamRoomKey, domain.NewMessageEvent(msg))
	return msg, nil
}

func (s *chatService) SendDirectMessage(ctx context.Context, sender *domain.User, recipientID, body string) (*domain.ChatMessage, error) {
	recipient, err := s.resolveTarget(ctx, sender, recipientID)
	if err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domain.ErrEmptyMessage
	}

	a, b := domain.SortedPair(sender.HexID(), recipient.HexID())
	msg := &domain.ChatMessage{
		ConversationType: domain.ConversationDirect,
		Participants:     []string{a, b},
		SenderID:         sender.HexID(),
		SenderEmail:      sender.Email,
		RecipientID:      recipient.HexID(),
		Message:          body,
		Read:             false,
		Timestamp:        time.Now().UTC(),
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	s.publish(msg.RoomKey(), domain.NewMessageEvent(msg))
	return msg, nil
}

func (s *chatService) NotifyTeamTyping(sender *domain.User, isTyping bool) error {
	if !sender.IsStaff() {
		return domain.ErrForbidden
	}
	s.publish(domain.TeamRoomKey, domain.Event{
		Type:     domain.EventUserTyping,
		UserID:   sender.HexID(),
		Email:    sender.Email,
		IsTyping: &isTyping,
	})
	return nil
}

func (s *chatService) NotifyDirectTyping(ctx context.Context, sender *domain.User, recipientID string, isTyping bool) error {
	room, err := s.ResolveDirectRoom(ctx, sender, recipientID)
	if err != nil {
		return err
	}
	s.publish(room, domain.Event{
		Type:     domain.EventDMUserTyping,
		UserID:   sender.HexID(),
		Email:    sender.Email,
		IsTyping: &isTyping,
	})
	return nil
}

func (s *chatService) AnnounceJoin(user *domain.User) error {
	if !user.IsStaff() {
		return domain.ErrForbidden
	}
	s.publish(domain.TeamRoomKey, domain.Event{
		Type:   domain.EventUserJoined,
		UserID: user.HexID(),
		Email:  user.Email,
	})
	return nil
}

func (s *chatService) AnnounceLeave(user *domain.User) error {
	if !user.IsStaff() {
		return domain.ErrForbidden
	}
	s.publish(domain.TeamRoomKey, domain.Event{
		Type:   domain.EventUserLeft,
		UserID: user.HexID(),
		Email:  user.Email,
	})
	return nil
}

func (s *chatService) TeamHistory(ctx context.Context, requester *domain.User) ([]domain.ChatMessage, error) {
	if !requester.IsStaff() {
		return nil, domain.ErrForbidden
	}
	return s.messages.TeamHistory(ctx, historyLimit)
}

func (s *chatService) DirectHistory(ctx context.Context, requester *domain.User, otherID string) ([]domain.ChatMessage, *domain.User, error) {
	other, err := s.resolveTarget(ctx, requester, otherID)
	if err != nil {
		return nil, nil, err
	}

	msgs, err := s.messages.DirectHistory(ctx, requester.HexID(), other.HexID(), historyLimit)
	if err != nil {
		return nil, nil, err
	}

	// Opening the thread marks the partner's messages as read.
	if err := s.messages.MarkRead(ctx, requester.HexID(), other.HexID(), other.HexID()); err != nil {
		s.logger.Warnf("failed to mark conversation read: %v", err)
	}
	return msgs, other, nil
}

// Conversations returns the requester's sidebar: threads with history first,
// newest activity on top, then staff they have not messaged yet, then (for
// staff requesters) everyone else.
func (s *chatService) Conversations(ctx context.Context, requester *domain.User) ([]domain.Conversation, error) {
	partners, err := s.messages.DirectPartners(ctx, requester.HexID())
	if err != nil {
		return nil, err
	}

	out := make([]domain.Conversation, 0, len(partners))
	seen := map[string]bool{requester.HexID(): true}
	for _, conv := range partners {
		other, err := s.users.ByID(ctx, conv.UserID)
		if err != nil {
			// Partner account deleted since the exchange.
			continue
		}
		conv.UserEmail = other.Email
		conv.UserRole = other.Role
		conv.IsStaff = other.IsStaff()
		conv.Online = s.online(ctx, other.Email)
		seen[conv.UserID] = true
		out = append(out, conv)
	}

	roster, err := s.users.Staff(ctx)
	if err != nil {
		return nil, err
	}
	if requester.IsStaff() {
		all, err := s.users.List(ctx)
		if err != nil {
			return nil, err
		}
		roster = append(roster, all...)
	}
	for i := range roster {
		u := &roster[i]
		if seen[u.HexID()] {
			continue
		}
		seen[u.HexID()] = true
		out = append(out, domain.Conversation{
			UserID:    u.HexID(),
			UserEmail: u.Email,
			UserRole:  u.Role,
			IsStaff:   u.IsStaff(),
			Online:    s.online(ctx, u.Email),
		})
	}
	return out, nil
}

func (s *chatService) StaffRoster(ctx context.Context, requester *domain.User) ([]domain.Recipient, error) {
	if !requester.IsStaff() {
		return nil, domain.ErrForbidden
	}
	staff, err := s.users.Staff(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Recipient, 0, len(staff))
	for i := range staff {
		u := &staff[i]
		out = append(out, domain.Recipient{
			ID:    u.HexID(),
			Email: u.Email,
			Role:  u.Role,
			IsYou: u.HexID() == requester.HexID(),
		})
	}
	return out, nil
}

func (s *chatService) DeleteConversation(ctx context.Context, requester *domain.User, otherID string) (int64, error) {
	other, err := s.resolveTarget(ctx, requester, otherID)
	if err != nil {
		return 0, err
	}
	return s.messages.DeleteConversation(ctx, requester.HexID(), other.HexID())
}

// resolveTarget loads the counterpart account and rejects self-targets and
// unknown ids with ErrInvalidTarget.
func (s *chatService) resolveTarget(ctx context.Context, user *domain.User, otherID string) (*domain.User, error) {
	if otherID == "" || otherID == user.HexID() {
		return nil, domain.ErrInvalidTarget
	}
	other, err := s.users.ByID(ctx, otherID)
	if err != nil {
		return nil, domain.ErrInvalidTarget
	}
	return other, nil
}

func (s *chatService) publish(roomKey string, ev domain.Event) {
	if err := s.publisher.PublishRoom(roomKey, ev); err != nil {
		s.logger.Errorf("failed to publish to %s: %v", roomKey, err)
	}
}

func (s *chatService) online(ctx context.Context, email string) bool {
	online, err := s.presence.IsOnline(ctx, email)
	if err != nil {
		s.logger.Warnf("failed to check presence for %s: %v", email, err)
		return false
	}
	return online
}
