package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SachyamKarki/Karki-Scrapper/internal/domain"
)

// MessageStore implements port.MessageStore on the messages collection.
type MessageStore struct {
	coll *mongo.Collection
}

func (s *MessageStore) Insert(ctx context.Context, msg *domain.ChatMessage) error {
	res, err := s.coll.InsertOne(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	msg.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// TeamHistory returns the most recent team messages in ascending timestamp
// order.
func (s *MessageStore) TeamHistory(ctx context.Context, limit int) ([]domain.ChatMessage, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := s.coll.Find(ctx, bson.M{"conversation_type": domain.ConversationTeam}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query team history: %w", err)
	}
	var messages []domain.ChatMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode team history: %w", err)
	}
	reverse(messages)
	return messages, nil
}

func (s *MessageStore) DirectHistory(ctx context.Context, a, b string, limit int) ([]domain.ChatMessage, error) {
	lo, hi := domain.SortedPair(a, b)
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: 1}}).
		SetLimit(int64(limit))
	cursor, err := s.coll.Find(ctx, pairFilter(lo, hi), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query dm history: %w", err)
	}
	var messages []domain.ChatMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode dm history: %w", err)
	}
	return messages, nil
}

func (s *MessageStore) MarkRead(ctx context.Context, a, b, senderID string) error {
	lo, hi := domain.SortedPair(a, b)
	filter := pairFilter(lo, hi)
	filter["sender_id"] = senderID
	filter["read"] = false
	if _, err := s.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"read": true}}); err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}
	return nil
}

// DirectPartners walks the user's direct messages newest first and folds them
// into one entry per conversation partner, carrying the latest message and
// the count of unread incoming messages.
func (s *MessageStore) DirectPartners(ctx context.Context, userID string) ([]domain.Conversation, error) {
	filter := bson.M{
		"conversation_type": domain.ConversationDirect,
		"participants":      userID,
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversations: %w", err)
	}

	var conversations []domain.Conversation
	index := make(map[string]int)

	for cursor.Next(ctx) {
		var msg domain.ChatMessage
		if err := cursor.Decode(&msg); err != nil {
			return nil, fmt.Errorf("failed to decode message: %w", err)
		}
		other := otherParticipant(msg.Participants, userID)
		if other == "" {
			continue
		}
		i, seen := index[other]
		if !seen {
			m := msg
			conversations = append(conversations, domain.Conversation{
				UserID:      other,
				LastMessage: &m,
			})
			i = len(conversations) - 1
			index[other] = i
		}
		if msg.SenderID != userID && !msg.Read {
			conversations[i].UnreadCount++
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversations: %w", err)
	}
	return conversations, nil
}

func (s *MessageStore) DeleteConversation(ctx context.Context, a, b string) (int64, error) {
	lo, hi := domain.SortedPair(a, b)
	res, err := s.coll.DeleteMany(ctx, pairFilter(lo, hi))
	if err != nil {
		return 0, fmt.Errorf("failed to delete conversation: %w", err)
	}
	return res.DeletedCount, nil
}

func pairFilter(lo, hi string) bson.M {
	return bson.M{
		"conversation_type": domain.ConversationDirect,
		"participants":      bson.M{"$all": bson.A{lo, hi}},
	}
}

func otherParticipant(participants []string, userID string) string {
	for _, p := range participants {
		if p != userID {
			return p
		}
	}
	return ""
}

func reverse(messages []domain.ChatMessage) {
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
}
