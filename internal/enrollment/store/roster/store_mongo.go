// Package roster looks students up in the per-course roster collection.
package roster

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"enrolld/internal/enrollment/models"
	"enrolld/pkg/platform/sentinel"
)

// MongoStore reads the roster collection: one document per course, each with
// a nested list of active members.
type MongoStore struct {
	col *mongo.Collection
}

// NewMongo constructs a MongoDB-backed roster store.
func NewMongo(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection("courses")}
}

// FindByRegistrationNumber flattens the nested member lists and matches on
// the member's registration number, projecting name/registration/course.
func (s *MongoStore) FindByRegistrationNumber(ctx context.Context, number string) (*models.StudentIdentity, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$active_members"}},
		{{Key: "$match", Value: bson.M{"active_members.registration_number": number}}},
		{{Key: "$project", Value: bson.M{
			"_id":                 0,
			"full_name":           "$active_members.full_name",
			"registration_number": "$active_members.registration_number",
			"course_name":         "$name",
		}}},
	}

	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("roster lookup: %w", err)
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return nil, fmt.Errorf("roster lookup: %w", err)
		}
		return nil, sentinel.ErrNotFound
	}

	var student models.StudentIdentity
	if err := cursor.Decode(&student); err != nil {
		return nil, fmt.Errorf("decode roster member: %w", err)
	}
	return &student, nil
}
