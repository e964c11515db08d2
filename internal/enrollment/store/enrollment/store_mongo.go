// Package enrollment persists enrollment records keyed by (token, term).
package enrollment

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"enrolld/internal/enrollment/models"
	"enrolld/pkg/platform/sentinel"
	"enrolld/pkg/requestcontext"
)

// MongoStore persists enrollments in MongoDB.
type MongoStore struct {
	col *mongo.Collection
}

// NewMongo constructs a MongoDB-backed enrollment store.
func NewMongo(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection("enrollments")}
}

// EnsureIndexes creates the unique (token, term) index backing the upsert
// identity. Called once at startup.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "token", Value: 1}, {Key: "term", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create enrollment index: %w", err)
	}
	return nil
}

// FindByTokenAndTerm does an exact lookup on the composite key.
func (s *MongoStore) FindByTokenAndTerm(ctx context.Context, token, term string) (*models.EnrollmentRecord, error) {
	var rec models.EnrollmentRecord
	err := s.col.FindOne(ctx, bson.M{"token": token, "term": term}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return &rec, nil
}

// Upsert is the atomic create-or-update keyed by (token, term). Choice fields
// always update; everything else is set-on-insert so the first submission's
// values, including the derived score, are never overwritten. A single
// FindOneAndUpdate keeps the invariant under concurrent submissions and
// guarantees the returned record reflects this caller's write, not a racing
// one.
func (s *MongoStore) Upsert(ctx context.Context, rec models.EnrollmentRecord) (*models.EnrollmentRecord, bool, error) {
	now := requestcontext.Now(ctx).UTC()

	filter := bson.M{"token": rec.Token, "term": rec.Term}
	update := bson.M{
		"$set": bson.M{
			"chosen_section": rec.ChosenSection,
			"chosen_option":  rec.ChosenOption,
			"updated_at":     now,
		},
		"$setOnInsert": bson.M{
			"student":    rec.Student,
			"token":      rec.Token,
			"term":       rec.Term,
			"scores":     rec.Scores,
			"created_at": now,
		},
	}

	// ReturnDocument(Before) distinguishes insert from update: no prior
	// document means this call created the record, and the created record
	// is exactly what the update wrote.
	var prev models.EnrollmentRecord
	err := s.col.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.Before),
	).Decode(&prev)
	if errors.Is(err, mongo.ErrNoDocuments) {
		rec.CreatedAt = now
		rec.UpdatedAt = now
		return &rec, true, nil
	}
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Should not happen with a correct conditional upsert; report,
			// never silently retry.
			return nil, false, fmt.Errorf("enrollment upsert: %w", sentinel.ErrConflict)
		}
		return nil, false, fmt.Errorf("enrollment upsert: %w", err)
	}

	prev.ChosenSection = rec.ChosenSection
	prev.ChosenOption = rec.ChosenOption
	prev.UpdatedAt = now
	return &prev, false, nil
}
