package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/corpus-cli/internal/core/access"
	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/keyset"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// Ensure ListingService implements the interface.
var _ driving.ListingService = (*ListingService)(nil)

// DefaultPageSize is used when a listing request does not set one.
const DefaultPageSize = 25

// ListingService serves access-controlled, keyset-paginated views of the
// stored content. Reads are lock-free and arbitrarily concurrent with
// crawls; correctness relies on the keyset comparison being monotonic
// under the declared sort, not on isolation from writers.
type ListingService struct {
	itemStore    driven.ItemStore
	pairingStore driven.PairingStore
	groups       driven.GroupResolver
	checker      access.Checker
	pageSize     int
}

// NewListingService creates a new listing service.
// The groups resolver may be nil; group-based visibility clauses then
// depend entirely on the groups the caller supplies with the identity.
func NewListingService(
	itemStore driven.ItemStore,
	pairingStore driven.PairingStore,
	groups driven.GroupResolver,
	checker access.Checker,
	pageSize int,
) *ListingService {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &ListingService{
		itemStore:    itemStore,
		pairingStore: pairingStore,
		groups:       groups,
		checker:      checker,
		pageSize:     pageSize,
	}
}

// ListAccessibleNodes returns the container nodes of a pairing visible to
// the identity, deduplicated by raw ID.
func (s *ListingService) ListAccessibleNodes(
	ctx context.Context,
	pairingID string,
	identity domain.Identity,
) ([]driving.ContainerNodeSummary, error) {
	identity, err := s.resolveGroups(ctx, identity)
	if err != nil {
		return nil, err
	}

	nodes, err := s.itemStore.ListNodes(ctx, pairingID)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}

	pairings := make(map[string]*domain.Pairing)
	seen := make(map[string]bool, len(nodes))
	summaries := make([]driving.ContainerNodeSummary, 0, len(nodes))

	for i := range nodes {
		node := &nodes[i]
		if seen[node.RawID] {
			continue
		}
		pairing, err := s.lookupPairing(ctx, pairings, node.PairingID)
		if err != nil {
			return nil, err
		}
		if pairing == nil || !s.checker.Visible(pairing, access.NodeACL(node), identity) {
			continue
		}
		seen[node.RawID] = true
		summaries = append(summaries, driving.ContainerNodeSummary{
			RawID:       node.RawID,
			RawParentID: node.RawParentID,
			DisplayName: node.DisplayName,
			NodeType:    node.NodeType,
			Link:        node.Link,
		})
	}
	return summaries, nil
}

// ListAccessibleItemsUnderNode returns one page of visible items under a
// node. The store is scanned keyset page by keyset page until enough
// visible rows are gathered, so a page is full whenever more visible
// content exists.
func (s *ListingService) ListAccessibleItemsUnderNode(
	ctx context.Context,
	nodeID, cursor string,
	opts driving.ListOptions,
	identity domain.Identity,
) (*driving.ItemPage, error) {
	identity, err := s.resolveGroups(ctx, identity)
	if err != nil {
		return nil, err
	}

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = s.pageSize
	}
	ksOpts := keyset.Options{Sort: opts.Sort, FoldersFirst: opts.FoldersFirst}

	pos, err := keyset.Decode(cursor)
	if err != nil {
		return nil, err
	}

	pairings := make(map[string]*domain.Pairing)
	seen := make(map[string]bool)
	visible := make([]domain.ContentItem, 0, pageSize+1)

	// Over-fetch by one: the extra visible row only proves a next page
	// exists, it is never returned.
	for len(visible) <= pageSize {
		rows, err := s.itemStore.QueryItemsUnderNode(ctx, nodeID, pos, ksOpts, pageSize+1)
		if err != nil {
			return nil, fmt.Errorf("query items: %w", err)
		}
		if len(rows) == 0 {
			break
		}

		for i := range rows {
			item := &rows[i]
			if seen[item.ID] {
				continue
			}
			seen[item.ID] = true

			pairing, err := s.lookupPairing(ctx, pairings, item.PairingID)
			if err != nil {
				return nil, err
			}
			if pairing == nil || !s.checker.Visible(pairing, access.ItemACL(item), identity) {
				continue
			}
			visible = append(visible, *item)
			if len(visible) > pageSize {
				break
			}
		}

		if len(rows) <= pageSize {
			// The store is exhausted past this point.
			break
		}
		pos = keyset.FromItem(&rows[len(rows)-1], ksOpts)
	}

	page := &driving.ItemPage{}
	if len(visible) > pageSize {
		// Next cursor derives from the last row actually returned, not
		// from the extra row.
		visible = visible[:pageSize]
		page.NextCursor = keyset.FromItem(&visible[pageSize-1], ksOpts).Encode()
	}
	page.Items = visible
	logger.Debug("Listing page under node %s: %d visible of %d scanned, more=%t",
		nodeID, len(visible), len(seen), page.NextCursor != "")
	return page, nil
}

// resolveGroups merges externally resolved group IDs into the identity.
func (s *ListingService) resolveGroups(ctx context.Context, identity domain.Identity) (domain.Identity, error) {
	if s.groups == nil || identity.Email == "" {
		return identity, nil
	}
	resolved, err := s.groups.ResolveExternalGroupIDs(ctx, identity.Email)
	if err != nil {
		return identity, fmt.Errorf("resolve groups: %w", err)
	}

	seen := make(map[string]bool, len(identity.GroupIDs)+len(resolved))
	merged := make([]string, 0, len(identity.GroupIDs)+len(resolved))
	for _, g := range append(identity.GroupIDs, resolved...) {
		if !seen[g] {
			seen[g] = true
			merged = append(merged, g)
		}
	}
	identity.GroupIDs = merged
	return identity, nil
}

// lookupPairing fetches a pairing through a per-request cache.
// A missing pairing hides its rows instead of failing the listing.
func (s *ListingService) lookupPairing(
	ctx context.Context,
	cache map[string]*domain.Pairing,
	pairingID string,
) (*domain.Pairing, error) {
	if pairing, ok := cache[pairingID]; ok {
		return pairing, nil
	}
	pairing, err := s.pairingStore.Get(ctx, pairingID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			cache[pairingID] = nil
			return nil, nil
		}
		return nil, fmt.Errorf("get pairing %s: %w", pairingID, err)
	}
	cache[pairingID] = pairing
	return pairing, nil
}
