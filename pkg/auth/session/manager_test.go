package session

import (
	"context"
	"testing"
	"time"

	redisclient "github.com/avaldez-dev/storefront-core/pkg/redis"
)

type memoryStore struct {
	values map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}}
}

func (m *memoryStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.values[key] = "1"
	return nil
}

func (m *memoryStore) Get(ctx context.Context, key string) (string, error) {
	if v, ok := m.values[key]; ok {
		return v, nil
	}
	return "", redisclient.Nil
}

func (m *memoryStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

type passthroughKeyer struct{}

func (passthroughKeyer) AccessSessionKey(accessID string) string { return "session:" + accessID }

func testManager() *Manager {
	return &Manager{store: newMemoryStore(), keyer: passthroughKeyer{}, ttl: time.Hour}
}

func TestCreateAndCheckSession(t *testing.T) {
	t.Parallel()

	mgr := testManager()
	ctx := context.Background()

	if err := mgr.Create(ctx, "jti-1"); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	ok, err := mgr.HasSession(ctx, "jti-1")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !ok {
		t.Fatal("expected live session")
	}

	ok, err = mgr.HasSession(ctx, "jti-other")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if ok {
		t.Fatal("expected unknown session to be rejected")
	}
}

func TestRevokeSession(t *testing.T) {
	t.Parallel()

	mgr := testManager()
	ctx := context.Background()

	if err := mgr.Create(ctx, "jti-1"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := mgr.Revoke(ctx, "jti-1"); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}

	ok, err := mgr.HasSession(ctx, "jti-1")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if ok {
		t.Fatal("expected revoked session to be gone")
	}
}

func TestCreateRequiresAccessID(t *testing.T) {
	t.Parallel()

	if err := testManager().Create(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank access id")
	}
}
