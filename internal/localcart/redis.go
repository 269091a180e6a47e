package localcart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisclient "github.com/avaldez-dev/storefront-core/pkg/redis"
)

type snapshotKV interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type snapshotKeyer interface {
	CartSnapshotKey(sessionID string) string
}

// RedisStore keeps snapshots in Redis under per-session slots with a TTL, so
// abandoned anonymous carts expire on their own.
type RedisStore struct {
	kv    snapshotKV
	keyer snapshotKeyer
	ttl   time.Duration
}

// NewRedisStore builds a Redis-backed snapshot store.
func NewRedisStore(client *redisclient.Client, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("snapshot ttl must be positive")
	}
	return &RedisStore{kv: client, keyer: client, ttl: ttl}, nil
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (*Snapshot, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}

	raw, err := s.kv.Get(ctx, s.keyer.CartSnapshotKey(sessionID))
	if err != nil {
		if errors.Is(err, redisclient.Nil) {
			return &Snapshot{}, nil
		}
		return nil, fmt.Errorf("loading cart snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		// A corrupt slot behaves like an empty one; the next save overwrites it.
		return &Snapshot{}, nil
	}
	return &snap, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, snap *Snapshot) error {
	if err := validateSessionID(sessionID); err != nil {
		return err
	}
	if snap == nil {
		snap = &Snapshot{}
	}
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding cart snapshot: %w", err)
	}
	if err := s.kv.Set(ctx, s.keyer.CartSnapshotKey(sessionID), payload, s.ttl); err != nil {
		return fmt.Errorf("saving cart snapshot: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := validateSessionID(sessionID); err != nil {
		return err
	}
	if err := s.kv.Del(ctx, s.keyer.CartSnapshotKey(sessionID)); err != nil {
		return fmt.Errorf("clearing cart snapshot: %w", err)
	}
	return nil
}
