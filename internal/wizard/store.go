package wizard

import (
	"context"

	"github.com/google/uuid"
)

// Store persists wizard sessions between HTTP requests. Implementations
// return sentinel.ErrNotFound when the session does not exist or expired.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Find(ctx context.Context, id uuid.UUID) (*Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
