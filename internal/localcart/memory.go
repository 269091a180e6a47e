package localcart

import (
	"context"
	"sync"
)

// MemoryStore is an in-process snapshot store for tests.
type MemoryStore struct {
	mu    sync.Mutex
	slots map[string]Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: map[string]Snapshot{}}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (*Snapshot, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.slots[sessionID]
	if !ok {
		return &Snapshot{}, nil
	}
	copied := snap
	copied.Lines = append([]Line(nil), snap.Lines...)
	return &copied, nil
}

func (s *MemoryStore) Save(_ context.Context, sessionID string, snap *Snapshot) error {
	if err := validateSessionID(sessionID); err != nil {
		return err
	}
	if snap == nil {
		snap = &Snapshot{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *snap
	copied.Lines = append([]Line(nil), snap.Lines...)
	s.slots[sessionID] = copied
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	if err := validateSessionID(sessionID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, sessionID)
	return nil
}
