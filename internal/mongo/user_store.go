package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SachyamKarki/Karki-Scrapper/internal/domain"
)

var staffRoles = bson.M{"$in": bson.A{domain.RoleAdmin, domain.RoleSuperadmin}}

// UserStore implements port.UserStore on the users collection.
type UserStore struct {
	coll *mongo.Collection
}

func (s *UserStore) Create(ctx context.Context, email, passwordHash, role string) (*domain.User, error) {
	if existing, err := s.ByEmail(ctx, email); err == nil && existing != nil {
		return nil, domain.ErrEmailTaken
	}

	user := &domain.User{Email: email, PasswordHash: passwordHash, Role: role}
	res, err := s.coll.InsertOne(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return user, nil
}

func (s *UserStore) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}
	return &user, nil
}

func (s *UserStore) ByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	var user domain.User
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user by id: %w", err)
	}
	return &user, nil
}

func (s *UserStore) List(ctx context.Context) ([]domain.User, error) {
	return s.find(ctx, bson.M{})
}

// Staff returns admin and superadmin accounts sorted by email.
func (s *UserStore) Staff(ctx context.Context) ([]domain.User, error) {
	return s.find(ctx, bson.M{"role": staffRoles})
}

func (s *UserStore) find(ctx context.Context, filter bson.M) ([]domain.User, error) {
	cursor, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "email", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	var users []domain.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (s *UserStore) UpdateRole(ctx context.Context, id, role string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"role": role}})
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (s *UserStore) Count(ctx context.Context) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.M{})
}
