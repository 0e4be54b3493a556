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

// pendingClause matches leads that are explicitly pending or carry no status
// at all (freshly scraped documents have none).
var pendingClause = bson.M{"$or": bson.A{
	bson.M{"status": nil},
	bson.M{"status": bson.M{"$exists": false}},
	bson.M{"status": domain.StatusPending},
}}

// LeadStore implements port.LeadStore on the places collection.
type LeadStore struct {
	coll *mongo.Collection
}

func buildFilter(f domain.LeadFilter) bson.M {
	var clauses bson.A

	if f.Status != "" && f.Status != "all" {
		if f.Status == domain.StatusPending {
			clauses = append(clauses, pendingClause)
		} else {
			clauses = append(clauses, bson.M{"status": f.Status})
		}
	}

	if f.Search != "" {
		regex := primitive.Regex{Pattern: f.Search, Options: "i"}
		fields := []string{"name", "address", "phone", "website", "email", "social_links"}
		or := make(bson.A, 0, len(fields))
		for _, field := range fields {
			or = append(or, bson.M{field: regex})
		}
		clauses = append(clauses, bson.M{"$or": or})
	}

	switch len(clauses) {
	case 0:
		return bson.M{}
	case 1:
		return clauses[0].(bson.M)
	default:
		return bson.M{"$and": clauses}
	}
}

// List returns one newest-first page of leads matching the filter.
func (s *LeadStore) List(ctx context.Context, f domain.LeadFilter) ([]domain.Lead, domain.Pagination, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = 50
	}

	filter := buildFilter(f)
	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("failed to count leads: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetSkip(int64((f.Page - 1) * f.PerPage)).
		SetLimit(int64(f.PerPage))
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("failed to query leads: %w", err)
	}
	var leads []domain.Lead
	if err := cursor.All(ctx, &leads); err != nil {
		return nil, domain.Pagination{}, fmt.Errorf("failed to decode leads: %w", err)
	}

	pagination := domain.Pagination{
		CurrentPage: f.Page,
		PerPage:     f.PerPage,
		TotalPages:  int((total + int64(f.PerPage) - 1) / int64(f.PerPage)),
		TotalItems:  total,
	}
	return leads, pagination, nil
}

// Since returns leads inserted after lastID in insertion order. An empty or
// unparseable lastID returns everything.
func (s *LeadStore) Since(ctx context.Context, lastID string) ([]domain.Lead, error) {
	filter := bson.M{}
	if oid, err := primitive.ObjectIDFromHex(lastID); err == nil {
		filter["_id"] = bson.M{"$gt": oid}
	}
	cursor, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query lead updates: %w", err)
	}
	var leads []domain.Lead
	if err := cursor.All(ctx, &leads); err != nil {
		return nil, fmt.Errorf("failed to decode lead updates: %w", err)
	}
	return leads, nil
}

func (s *LeadStore) ByID(ctx context.Context, id string) (*domain.Lead, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	var lead domain.Lead
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&lead)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up lead: %w", err)
	}
	return &lead, nil
}

func (s *LeadStore) UpdateStatus(ctx context.Context, id, status string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, domain.ErrNotFound
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return false, fmt.Errorf("failed to update status: %w", err)
	}
	return res.ModifiedCount > 0, nil
}

func (s *LeadStore) DeletePending(ctx context.Context, ids []string) (int64, error) {
	oids := make(bson.A, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return 0, nil
	}
	filter := bson.M{
		"_id": bson.M{"$in": oids},
		"$or": pendingClause["$or"],
	}
	res, err := s.coll.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete leads: %w", err)
	}
	return res.DeletedCount, nil
}

func (s *LeadStore) SetNote(ctx context.Context, id string, note domain.Note) error {
	return s.setField(ctx, id, "note", note)
}

func (s *LeadStore) SetAnalysis(ctx context.Context, id string, analysis map[string]interface{}) error {
	return s.setField(ctx, id, "analysis", analysis)
}

func (s *LeadStore) setField(ctx context.Context, id, field string, value interface{}) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{field: value}})
	if err != nil {
		return fmt.Errorf("failed to set %s: %w", field, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Replace deletes any previous copy of the listing and inserts it fresh with
// a new id, so re-scraped leads sort to the top of the newest-first
// dashboard.
func (s *LeadStore) Replace(ctx context.Context, lead *domain.Lead) error {
	filter := bson.M{"name": lead.Name}
	if lead.Address != "" {
		filter["address"] = lead.Address
	}
	if _, err := s.coll.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete stale lead: %w", err)
	}
	lead.ID = primitive.NilObjectID
	res, err := s.coll.InsertOne(ctx, lead)
	if err != nil {
		return fmt.Errorf("failed to insert lead: %w", err)
	}
	lead.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *LeadStore) Count(ctx context.Context) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.M{})
}

func (s *LeadStore) CountByStatus(ctx context.Context, status string) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.M{"status": status})
}

// Recent returns the newest leads for the moderation view.
func (s *LeadStore) Recent(ctx context.Context, limit int) ([]domain.Lead, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}}).SetLimit(int64(limit))
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent leads: %w", err)
	}
	var leads []domain.Lead
	if err := cursor.All(ctx, &leads); err != nil {
		return nil, fmt.Errorf("failed to decode recent leads: %w", err)
	}
	return leads, nil
}
