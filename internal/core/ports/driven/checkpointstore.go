package driven

import (
	"context"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// CheckpointStore persists the checkpoint of an in-flight crawl.
// A checkpoint is owned by one crawl at a time; it is read and rewritten
// only by the ingestion driver, after the batch it follows is durable.
type CheckpointStore interface {
	// Save stores or replaces the checkpoint for a pairing.
	Save(ctx context.Context, pairingID string, cp domain.Checkpoint) error

	// Get retrieves the checkpoint for a pairing.
	// Returns domain.ErrNotFound when no crawl is in flight.
	Get(ctx context.Context, pairingID string) (*domain.Checkpoint, error)

	// Delete removes the checkpoint for a pairing.
	Delete(ctx context.Context, pairingID string) error
}
