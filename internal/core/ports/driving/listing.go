package driving

import (
	"context"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/keyset"
)

// ListingService serves access-controlled, paginated views of stored
// content. It composes the access filter with keyset pagination; callers
// never see rows the requester is not allowed to see.
type ListingService interface {
	// ListAccessibleNodes returns the container nodes of a pairing that
	// are visible to the identity. An empty pairing ID spans all pairings.
	ListAccessibleNodes(ctx context.Context, pairingID string, identity domain.Identity) ([]ContainerNodeSummary, error)

	// ListAccessibleItemsUnderNode returns one page of visible items
	// under a container node plus the cursor for the next page. An empty
	// cursor starts the listing; an empty next cursor ends it.
	ListAccessibleItemsUnderNode(ctx context.Context, nodeID, cursor string, opts ListOptions, identity domain.Identity) (*ItemPage, error)
}

// ListOptions configures one listing request.
type ListOptions struct {
	// Sort is the listing order. Defaults to keyset.SortLastUpdated.
	Sort keyset.Sort

	// FoldersFirst sorts folder rows before file rows.
	FoldersFirst bool

	// PageSize is the number of items per page. Zero uses the service
	// default.
	PageSize int
}

// ItemPage is one page of a listing.
type ItemPage struct {
	// Items are the visible items of this page, in sort order.
	Items []domain.ContentItem

	// NextCursor resumes the listing after the last item of this page.
	// Empty when the listing is exhausted.
	NextCursor string
}

// ContainerNodeSummary is the read-path view of a container node.
type ContainerNodeSummary struct {
	// RawID is the source-native node identifier.
	RawID string

	// RawParentID references the parent node, nil at the source root.
	RawParentID *string

	// DisplayName is the human-readable name.
	DisplayName string

	// NodeType is the source-specific kind.
	NodeType string

	// Link is a deep link to the grouping at the source.
	Link string
}
