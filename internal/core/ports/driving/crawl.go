package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// CrawlRunner drives connectors to completion and persists their output.
type CrawlRunner interface {
	// RunIncrementalCrawl drives the pairing's connector over the given
	// modified-since window until the connector reports exhaustion.
	// The returned result is non-nil whenever any progress was persisted,
	// including alongside ErrCrawlFailed.
	RunIncrementalCrawl(ctx context.Context, pairingID string, windowStart, windowEnd time.Time) (*CrawlResult, error)

	// Status returns crawl progress for a pairing.
	Status(ctx context.Context, pairingID string) (*CrawlStatus, error)
}

// CrawlResult summarises one completed (or aborted) crawl.
type CrawlResult struct {
	// PairingID identifies the crawled pairing.
	PairingID string

	// ItemCount is the number of content items persisted.
	ItemCount int

	// NodeCount is the number of container nodes persisted.
	NodeCount int

	// Failures are the non-fatal failures accumulated during the crawl.
	Failures []domain.ConnectorFailure
}

// CrawlStatus represents the current state of a crawl.
type CrawlStatus struct {
	// PairingID identifies the pairing.
	PairingID string

	// Running indicates if a crawl is currently in progress.
	Running bool

	// Invocations is the number of connector invocations completed.
	Invocations int

	// ItemsProcessed is the count of content items processed.
	ItemsProcessed int

	// NodesProcessed is the count of container nodes processed.
	NodesProcessed int

	// FailureCount is the number of failures recorded.
	FailureCount int
}
