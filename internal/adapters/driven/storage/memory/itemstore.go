// Package memory provides in-memory implementations of the storage
// ports, used by tests and as a lightweight backend for development.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/keyset"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// Ensure ItemStore implements the interface.
var _ driven.ItemStore = (*ItemStore)(nil)

// failureRecord is a recorded crawl failure.
type failureRecord struct {
	ID        string
	PairingID string
	Failure   domain.ConnectorFailure
	At        time.Time
}

// ItemStore is an in-memory implementation of driven.ItemStore.
type ItemStore struct {
	mu       sync.RWMutex
	items    map[string]domain.ContentItem
	nodes    map[string]domain.ContainerNode // keyed pairingID + "\x00" + rawID
	failures []failureRecord
}

// NewItemStore creates a new in-memory item store.
func NewItemStore() *ItemStore {
	return &ItemStore{
		items: make(map[string]domain.ContentItem),
		nodes: make(map[string]domain.ContainerNode),
	}
}

// UpsertContentItem stores or updates an item, keyed by item ID.
func (s *ItemStore) UpsertContentItem(_ context.Context, item *domain.ContentItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.ID] = *item
	return nil
}

// UpsertContainerNode stores or updates a node, keyed by (pairing, raw ID).
func (s *ItemStore) UpsertContainerNode(_ context.Context, node *domain.ContainerNode) error {
	if err := node.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[node.PairingID+"\x00"+node.RawID] = *node
	return nil
}

// RecordFailure persists a crawl failure.
func (s *ItemStore) RecordFailure(_ context.Context, pairingID string, failure domain.ConnectorFailure) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failureRecord{
		ID:        uuid.NewString(),
		PairingID: pairingID,
		Failure:   failure,
		At:        time.Now().UTC(),
	})
	return nil
}

// GetContentItem retrieves an item by ID.
func (s *ItemStore) GetContentItem(_ context.Context, id string) (*domain.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &item, nil
}

// ListNodes returns the container nodes of a pairing.
func (s *ItemStore) ListNodes(_ context.Context, pairingID string) ([]domain.ContainerNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.ContainerNode
	for _, node := range s.nodes {
		if pairingID == "" || node.PairingID == pairingID {
			result = append(result, node)
		}
	}
	return result, nil
}

// QueryItemsUnderNode returns up to limit items under the node, in keyset
// order, strictly after the cursor position.
func (s *ItemStore) QueryItemsUnderNode(
	_ context.Context,
	nodeID string,
	cursor *keyset.Cursor,
	opts keyset.Options,
	limit int,
) ([]domain.ContentItem, error) {
	s.mu.RLock()
	var matched []domain.ContentItem
	for _, item := range s.items {
		if item.ParentContainerID == nil || *item.ParentContainerID != nodeID {
			continue
		}
		if !keyset.After(&item, cursor, opts) {
			continue
		}
		matched = append(matched, item)
	}
	s.mu.RUnlock()

	keyset.SortItems(matched, opts)
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// FailureCount returns the number of recorded failures. Test helper.
func (s *ItemStore) FailureCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.failures)
}

// ItemCount returns the number of stored items. Test helper.
func (s *ItemStore) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
