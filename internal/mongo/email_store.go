package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SachyamKarki/Karki-Scrapper/internal/domain"
)

// SentEmailStore implements port.SentEmailStore on the sent_emails
// collection.
type SentEmailStore struct {
	coll *mongo.Collection
}

func (s *SentEmailStore) Insert(ctx context.Context, email *domain.SentEmail) error {
	if email.SentAt.IsZero() {
		email.SentAt = time.Now().UTC()
	}
	res, err := s.coll.InsertOne(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to insert sent email: %w", err)
	}
	email.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *SentEmailStore) ListByUser(ctx context.Context, userID string, page, perPage int) ([]domain.SentEmail, domain.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 50
	}

	filter := bson.M{"user_id": userID}
	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("failed to count sent emails: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "sent_at", Value: -1}}).
		SetSkip(int64((page - 1) * perPage)).
		SetLimit(int64(perPage))
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("failed to query sent emails: %w", err)
	}
	var emails []domain.SentEmail
	if err := cursor.All(ctx, &emails); err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("failed to decode sent emails: %w", err)
	}

	pagination := domain.Pagination{
		CurrentPage: page,
		PerPage:     perPage,
		TotalPages:  int((total + int64(perPage) - 1) / int64(perPage)),
		TotalItems:  total,
	}
	return emails, pagination, nil
}
