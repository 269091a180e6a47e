package localcart

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	redisclient "github.com/avaldez-dev/storefront-core/pkg/redis"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func sampleSnapshot() *Snapshot {
	return &Snapshot{
		Lines: []Line{
			{
				ProductID: uuid.New(),
				Quantity:  2,
				Title:     "Walnut Desk Organizer",
				Price:     decimal.NewFromFloat(34.99),
				ImageURL:  "https://cdn.example.com/desk.jpg",
			},
			{
				ProductID: uuid.New(),
				Quantity:  1,
				Title:     "Brass Bookends",
				Price:     decimal.NewFromFloat(48.00),
			},
		},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	ctx := context.Background()
	sessionID := uuid.NewString()

	snap := sampleSnapshot()
	if err := store.Save(ctx, sessionID, snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Load(ctx, sessionID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(loaded.Lines))
	}
	if loaded.Lines[0].Title != "Walnut Desk Organizer" {
		t.Fatalf("unexpected title %q", loaded.Lines[0].Title)
	}
	if !loaded.Lines[0].Price.Equal(decimal.NewFromFloat(34.99)) {
		t.Fatalf("unexpected price %s", loaded.Lines[0].Price)
	}
	if loaded.UpdatedAt.IsZero() {
		t.Fatal("expected updated_at to be stamped on save")
	}
}

func TestFileStoreLoadMissingSlotIsEmpty(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}

	snap, err := store.Load(context.Background(), uuid.NewString())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !snap.Empty() {
		t.Fatalf("expected empty snapshot, got %d lines", len(snap.Lines))
	}
}

func TestFileStoreCorruptSlotBehavesEmpty(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	sessionID := uuid.NewString()
	if err := os.WriteFile(filepath.Join(dir, sessionID+".json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt slot: %v", err)
	}

	snap, err := store.Load(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !snap.Empty() {
		t.Fatal("expected corrupt slot to read as empty")
	}
}

func TestFileStoreClearRemovesSlot(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	ctx := context.Background()
	sessionID := uuid.NewString()

	if err := store.Save(ctx, sessionID, sampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Clear(ctx, sessionID); err != nil {
		t.Fatalf("clear: %v", err)
	}
	// Clearing an already-empty slot is not an error.
	if err := store.Clear(ctx, sessionID); err != nil {
		t.Fatalf("clear empty: %v", err)
	}

	snap, err := store.Load(ctx, sessionID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !snap.Empty() {
		t.Fatal("expected cleared slot to be empty")
	}
}

func TestFileStoreRejectsNonUUIDSessionID(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}

	if _, err := store.Load(context.Background(), "../etc/passwd"); err == nil {
		t.Fatal("expected invalid session id to be rejected")
	}
	if err := store.Save(context.Background(), "", sampleSnapshot()); err == nil {
		t.Fatal("expected empty session id to be rejected")
	}
}

func TestMemoryStoreIsolatesCallers(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()
	sessionID := uuid.NewString()

	snap := sampleSnapshot()
	if err := store.Save(ctx, sessionID, snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Load(ctx, sessionID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	loaded.Lines[0].Quantity = 99

	again, err := store.Load(ctx, sessionID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.Lines[0].Quantity != 2 {
		t.Fatalf("stored snapshot mutated through a returned copy: got qty %d", again.Lines[0].Quantity)
	}
}

type fakeKV struct {
	values  map[string]string
	ttls    map[string]time.Duration
	getErr  error
	missing bool
}

func newFakeKV() *fakeKV {
	return &fakeKV{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeKV) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	case string:
		f.values[key] = v
	default:
		return errors.New("unexpected value type")
	}
	f.ttls[key] = ttl
	return nil
}

func (f *fakeKV) Get(_ context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.values[key]
	if !ok || f.missing {
		return "", redisclient.Nil
	}
	return v, nil
}

func (f *fakeKV) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.values, k)
	}
	return nil
}

type prefixKeyer struct{}

func (prefixKeyer) CartSnapshotKey(sessionID string) string { return "slot:" + sessionID }

func TestRedisStoreRoundTripWithTTL(t *testing.T) {
	t.Parallel()

	kv := newFakeKV()
	store := &RedisStore{kv: kv, keyer: prefixKeyer{}, ttl: 30 * time.Minute}
	ctx := context.Background()
	sessionID := uuid.NewString()

	if err := store.Save(ctx, sessionID, sampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if ttl := kv.ttls["slot:"+sessionID]; ttl != 30*time.Minute {
		t.Fatalf("expected 30m ttl, got %s", ttl)
	}

	loaded, err := store.Load(ctx, sessionID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(loaded.Lines))
	}

	if err := store.Clear(ctx, sessionID); err != nil {
		t.Fatalf("clear: %v", err)
	}
	empty, err := store.Load(ctx, sessionID)
	if err != nil {
		t.Fatalf("load after clear: %v", err)
	}
	if !empty.Empty() {
		t.Fatal("expected empty snapshot after clear")
	}
}
