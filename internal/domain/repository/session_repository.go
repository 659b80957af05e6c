package repository

import (
	"context"
	"time"

	"github.com/oksasatya/cohesia-portal/internal/domain/entity"
)

// SessionStore maps an opaque session id to a session record with a TTL.
// Get returns (nil, nil) for unknown or expired ids.
type SessionStore interface {
	Save(ctx context.Context, id string, s entity.Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*entity.Session, error)
	Delete(ctx context.Context, id string) error
}
