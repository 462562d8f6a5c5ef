package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// Ensure PairingStore implements the interface.
var _ driven.PairingStore = (*PairingStore)(nil)

// PairingStore is an in-memory implementation of driven.PairingStore.
type PairingStore struct {
	mu       sync.RWMutex
	pairings map[string]domain.Pairing
}

// NewPairingStore creates a new in-memory pairing store.
func NewPairingStore() *PairingStore {
	return &PairingStore{pairings: make(map[string]domain.Pairing)}
}

// Save stores or updates a pairing.
func (s *PairingStore) Save(_ context.Context, pairing domain.Pairing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	if pairing.CreatedAt.IsZero() {
		pairing.CreatedAt = now
	}
	pairing.UpdatedAt = now
	s.pairings[pairing.ID] = pairing
	return nil
}

// Get retrieves a pairing by ID.
func (s *PairingStore) Get(_ context.Context, id string) (*domain.Pairing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pairing, ok := s.pairings[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &pairing, nil
}

// List returns all pairings.
func (s *PairingStore) List(_ context.Context) ([]domain.Pairing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Pairing, 0, len(s.pairings))
	for _, pairing := range s.pairings {
		result = append(result, pairing)
	}
	return result, nil
}

// SetStatus transitions a pairing's lifecycle status.
func (s *PairingStore) SetStatus(_ context.Context, id string, status domain.PairingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pairing, ok := s.pairings[id]
	if !ok {
		return domain.ErrNotFound
	}
	pairing.Status = status
	pairing.UpdatedAt = time.Now().UTC()
	s.pairings[id] = pairing
	return nil
}
