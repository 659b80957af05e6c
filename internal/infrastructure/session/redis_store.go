package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/cohesia-portal/internal/domain/entity"
	"github.com/oksasatya/cohesia-portal/internal/domain/repository"
)

// RedisStore keeps each session as a hash with a key TTL.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: "portal:session:"}
}

func (s *RedisStore) key(id string) string { return s.prefix + id }

func (s *RedisStore) Save(ctx context.Context, id string, sess entity.Session, ttl time.Duration) error {
	key := s.key(id)
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, map[string]any{
		"user_id":    sess.UserID,
		"role":       sess.Role.String(),
		"name":       sess.Name,
		"issued_at":  sess.IssuedAt.UTC().Format(time.RFC3339Nano),
		"expires_at": sess.ExpiresAt.UTC().Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*entity.Session, error) {
	data, err := s.rdb.HGetAll(ctx, s.key(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if len(data) == 0 || data["user_id"] == "" {
		return nil, nil
	}
	sess := &entity.Session{
		UserID: data["user_id"],
		Role:   entity.Role(data["role"]),
		Name:   data["name"],
	}
	sess.IssuedAt, _ = time.Parse(time.RFC3339Nano, data["issued_at"])
	sess.ExpiresAt, _ = time.Parse(time.RFC3339Nano, data["expires_at"])
	return sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

var _ repository.SessionStore = (*RedisStore)(nil)
