// Package settings loads the single global configuration document.
package settings

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"enrolld/internal/enrollment/models"
)

// ErrMissing is the fatal startup condition: the settings document is absent
// or incomplete. The whole flow halts; this is never a per-request error.
var ErrMissing = errors.New("system configuration missing")

// MongoStore reads the settings collection, which holds exactly one document.
type MongoStore struct {
	col *mongo.Collection
}

// NewMongo constructs a MongoDB-backed settings store.
func NewMongo(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection("settings")}
}

// Load fetches and validates the settings document.
func (s *MongoStore) Load(ctx context.Context) (models.Settings, error) {
	var settings models.Settings
	err := s.col.FindOne(ctx, bson.M{}).Decode(&settings)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Settings{}, fmt.Errorf("%w: no settings document", ErrMissing)
	}
	if err != nil {
		return models.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return models.Settings{}, fmt.Errorf("%w: %v", ErrMissing, err)
	}
	return settings, nil
}
