// Package section lists the class sections open for a term.
package section

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore reads the sections collection.
type MongoStore struct {
	col *mongo.Collection
}

// NewMongo constructs a MongoDB-backed section store.
func NewMongo(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection("sections")}
}

// ListAvailable returns the active section names for the term, sorted by
// name. An empty slice is a valid answer; the caller presents the sentinel
// "no sections available" instead of failing.
func (s *MongoStore) ListAvailable(ctx context.Context, term string) ([]string, error) {
	cursor, err := s.col.Find(ctx,
		bson.M{"term": term, "is_active": true},
		options.Find().SetProjection(bson.M{"_id": 0, "name": 1}).SetSort(bson.D{{Key: "name", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	defer cursor.Close(ctx)

	var names []string
	for cursor.Next(ctx) {
		var doc struct {
			Name string `bson:"name"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode section: %w", err)
		}
		names = append(names, doc.Name)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return names, nil
}
