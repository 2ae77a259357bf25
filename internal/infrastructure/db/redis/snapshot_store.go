package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/musha-views/session-store/internal/core/domain"
)

const snapshotKey = "session:snapshot"

// SnapshotStore persists the session projection under one fixed key. The
// snapshot has no TTL: it must survive until the next explicit write.
type SnapshotStore struct {
	client *redis.Client
	key    string
}

// NewSnapshotStore creates a SnapshotStore wrapping the given Redis client.
// An empty key selects the default.
func NewSnapshotStore(client *redis.Client, key string) *SnapshotStore {
	if key == "" {
		key = snapshotKey
	}
	return &SnapshotStore{client: client, key: key}
}

func (s *SnapshotStore) Load(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("snapshot load: %w", err)
	}
	return data, nil
}

func (s *SnapshotStore) Save(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("snapshot save: %w", err)
	}
	return nil
}
