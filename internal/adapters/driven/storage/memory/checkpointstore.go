package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// Ensure CheckpointStore implements the interface.
var _ driven.CheckpointStore = (*CheckpointStore)(nil)

// CheckpointStore is an in-memory implementation of driven.CheckpointStore.
type CheckpointStore struct {
	mu          sync.RWMutex
	checkpoints map[string]domain.Checkpoint
}

// NewCheckpointStore creates a new in-memory checkpoint store.
func NewCheckpointStore() *CheckpointStore {
	return &CheckpointStore{checkpoints: make(map[string]domain.Checkpoint)}
}

// Save stores or replaces the checkpoint for a pairing.
func (s *CheckpointStore) Save(_ context.Context, pairingID string, cp domain.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoints[pairingID] = cp
	return nil
}

// Get retrieves the checkpoint for a pairing.
func (s *CheckpointStore) Get(_ context.Context, pairingID string) (*domain.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp, ok := s.checkpoints[pairingID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &cp, nil
}

// Delete removes the checkpoint for a pairing.
func (s *CheckpointStore) Delete(_ context.Context, pairingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.checkpoints, pairingID)
	return nil
}
