package localcart

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileStore keeps snapshots as JSON files under a data directory, one file
// per session slot. Intended for dev setups running without Redis.
type FileStore struct {
	dir string
}

// NewFileStore builds a file-backed snapshot store rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("snapshot dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot dir %q: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Load(_ context.Context, sessionID string) (*Snapshot, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.slotPath(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return &Snapshot{}, nil
		}
		return nil, fmt.Errorf("reading cart snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return &Snapshot{}, nil
	}
	return &snap, nil
}

func (s *FileStore) Save(_ context.Context, sessionID string, snap *Snapshot) error {
	if err := validateSessionID(sessionID); err != nil {
		return err
	}
	if snap == nil {
		snap = &Snapshot{}
	}
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = time.Now().UTC()
	}

	payload, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cart snapshot: %w", err)
	}

	// Write-then-rename keeps a crash from leaving a half-written slot.
	tmp, err := os.CreateTemp(s.dir, "slot-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing temp snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.slotPath(sessionID)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing cart snapshot: %w", err)
	}
	return nil
}

func (s *FileStore) Clear(_ context.Context, sessionID string) error {
	if err := validateSessionID(sessionID); err != nil {
		return err
	}
	if err := os.Remove(s.slotPath(sessionID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clearing cart snapshot: %w", err)
	}
	return nil
}

func (s *FileStore) slotPath(sessionID string) string {
	return filepath.Join(s.dir, sessionID+".json")
}
