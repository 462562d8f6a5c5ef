package driven

import (
	"context"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/keyset"
)

// ItemStore persists the content produced by crawls.
// All writes are idempotent by natural key, so a retried crawl batch
// converges instead of duplicating rows.
type ItemStore interface {
	// UpsertContentItem stores or updates an item, keyed by item ID.
	UpsertContentItem(ctx context.Context, item *domain.ContentItem) error

	// UpsertContainerNode stores or updates a node, keyed by
	// (pairing ID, raw ID).
	UpsertContainerNode(ctx context.Context, node *domain.ContainerNode) error

	// RecordFailure persists a crawl failure for later inspection.
	RecordFailure(ctx context.Context, pairingID string, failure domain.ConnectorFailure) error

	// GetContentItem retrieves an item by ID.
	GetContentItem(ctx context.Context, id string) (*domain.ContentItem, error)

	// ListNodes returns the container nodes of a pairing.
	// An empty pairing ID returns nodes of every pairing.
	ListNodes(ctx context.Context, pairingID string) ([]domain.ContainerNode, error)

	// QueryItemsUnderNode returns up to limit items whose parent
	// container equals nodeID, in the order given by opts, strictly
	// after the cursor position. A nil cursor starts from the beginning.
	QueryItemsUnderNode(ctx context.Context, nodeID string, cursor *keyset.Cursor, opts keyset.Options, limit int) ([]domain.ContentItem, error)
}
