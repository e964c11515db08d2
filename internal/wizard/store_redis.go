package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"enrolld/pkg/platform/sentinel"
)

const sessionKeyPrefix = "wizard:session:"

// RedisStore is the production session store. Sessions expire via TTL so
// abandoned wizards clean themselves up; every save resets the expiry.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore constructs a Redis-backed session store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(id uuid.UUID) string {
	return sessionKeyPrefix + id.String()
}

// Save serializes the session as JSON under its key with the store TTL.
func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return r.client.Set(ctx, sessionKey(s.ID), data, r.ttl).Err()
}

// Find loads a session by ID, mapping redis.Nil to sentinel.ErrNotFound.
func (r *RedisStore) Find(ctx context.Context, id uuid.UUID) (*Session, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &s, nil
}

// Delete removes a session. Deleting an absent session is not an error.
func (r *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	return r.client.Del(ctx, sessionKey(id)).Err()
}
