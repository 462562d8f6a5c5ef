package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// Ensure CrawlRunner implements the interface.
var _ driving.CrawlRunner = (*CrawlRunner)(nil)

// CrawlConfig bounds and paces the ingestion loop.
type CrawlConfig struct {
	// MaxInvocations caps connector invocations per crawl. The primary
	// defence against a connector that never reports exhaustion.
	MaxInvocations int

	// InvocationTimeout bounds one connector invocation. An invocation
	// exceeding it fails as a whole; the crawl is retryable from the
	// last committed checkpoint.
	InvocationTimeout time.Duration

	// InvocationsPerSecond throttles how fast the loop re-invokes the
	// connector. Zero disables throttling.
	InvocationsPerSecond float64

	// Strict makes a completed crawl with accumulated failures report
	// ErrCrawlFailed after all successful items were persisted. When
	// false, partial results plus the failure list are returned without
	// error.
	Strict bool
}

// DefaultCrawlConfig returns the standard crawl bounds.
func DefaultCrawlConfig() CrawlConfig {
	return CrawlConfig{
		MaxInvocations:    1000,
		InvocationTimeout: 30 * time.Minute,
		Strict:            true,
	}
}

// CrawlRunner drives one connector to completion per crawl, persisting
// content items, container nodes and failures batch by batch.
//
// Crawling is sequential within one pairing: each invocation depends on
// the checkpoint emitted by the previous one. Different pairings may
// crawl concurrently; idempotent upserts keyed by natural id make
// concurrent writers of a shared item converge.
type CrawlRunner struct {
	pairingStore    driven.PairingStore
	itemStore       driven.ItemStore
	checkpointStore driven.CheckpointStore
	factory         driven.ConnectorFactory
	cfg             CrawlConfig
	limiter         *rate.Limiter

	// Status tracking
	mu           sync.RWMutex
	activeCrawls map[string]*driving.CrawlStatus
}

// NewCrawlRunner creates a new crawl runner.
func NewCrawlRunner(
	pairingStore driven.PairingStore,
	itemStore driven.ItemStore,
	checkpointStore driven.CheckpointStore,
	factory driven.ConnectorFactory,
	cfg CrawlConfig,
) *CrawlRunner {
	var limiter *rate.Limiter
	if cfg.InvocationsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.InvocationsPerSecond), 1)
	}
	return &CrawlRunner{
		pairingStore:    pairingStore,
		itemStore:       itemStore,
		checkpointStore: checkpointStore,
		factory:         factory,
		cfg:             cfg,
		limiter:         limiter,
		activeCrawls:    make(map[string]*driving.CrawlStatus),
	}
}

// loadFunc is one resolved connector invocation variant.
type loadFunc func(ctx context.Context, windowStart, windowEnd time.Time, cp domain.Checkpoint) (<-chan driven.CrawlEvent, <-chan error)

// RunIncrementalCrawl drives the pairing's connector over the window
// until it reports exhaustion.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (r *CrawlRunner) RunIncrementalCrawl(
	ctx context.Context,
	pairingID string,
	windowStart, windowEnd time.Time,
) (*driving.CrawlResult, error) {
	// 1. Load and check the pairing
	pairing, err := r.pairingStore.Get(ctx, pairingID)
	if err != nil {
		return nil, fmt.Errorf("get pairing: %w", err)
	}
	if !pairing.CanCrawl() {
		return nil, fmt.Errorf("%w: pairing %s is %s", domain.ErrConfiguration, pairingID, pairing.Status)
	}

	// 2. One crawl per pairing at a time
	status := &driving.CrawlStatus{PairingID: pairingID, Running: true}
	if !r.tryAcquire(pairingID, status) {
		return nil, fmt.Errorf("%w: pairing %s", domain.ErrCrawlInProgress, pairingID)
	}
	defer r.release(pairingID)

	// 3. Create and validate the connector
	if r.factory == nil {
		return nil, fmt.Errorf("create connector: %w: connector factory not configured", domain.ErrConfiguration)
	}
	connector, err := r.factory.Create(ctx, *pairing)
	if err != nil {
		return nil, fmt.Errorf("create connector: %w", err)
	}
	defer connector.Close()

	caps := connector.Capabilities()
	if caps.SupportsValidation {
		if err := connector.Validate(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrConnectorValidation, err)
		}
	}

	// 4. Resolve the invocation variant once. SYNC pairings need the
	// permission-mirroring variant; a connector without it is a
	// configuration error, surfaced before the crawl starts.
	load, err := resolveLoad(connector, pairing.AccessType)
	if err != nil {
		return nil, err
	}

	// 5. Resume a checkpoint left by an interrupted crawl, else start fresh
	checkpoint := domain.NewDummyCheckpoint()
	if stored, err := r.checkpointStore.Get(ctx, pairingID); err == nil {
		checkpoint = *stored
		logger.Info("Resuming crawl for pairing %s from stored checkpoint", pairingID)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get checkpoint: %w", err)
	}

	logger.Info("Starting crawl for pairing %s (window %s .. %s)",
		pairingID, windowStart.Format(time.RFC3339), windowEnd.Format(time.RFC3339))

	result := &driving.CrawlResult{PairingID: pairingID}

	// 6. Invocation loop. Exhaustion is decided solely by the connector;
	// an empty batch with HasMore still set means "call me again".
	for checkpoint.HasMore {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if status.Invocations >= r.cfg.MaxInvocations {
			return result, fmt.Errorf("%w: pairing %s after %d invocations",
				domain.ErrIterationLimit, pairingID, status.Invocations)
		}
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				return result, err
			}
		}

		batch, err := r.runInvocation(ctx, load, windowStart, windowEnd, checkpoint)
		if err != nil {
			return result, err
		}
		status.Invocations++

		if err := r.flushBatch(ctx, pairingID, batch, result, status); err != nil {
			return result, err
		}

		// The batch is durable; only now may the checkpoint advance.
		// A crash between flush and commit redoes work, never skips it.
		if err := r.checkpointStore.Save(ctx, pairingID, *batch.checkpoint); err != nil {
			return result, fmt.Errorf("save checkpoint: %w", err)
		}
		checkpoint = *batch.checkpoint

		logger.Debug("Invocation %d for pairing %s: %d items, %d nodes, %d failures, has_more=%t",
			status.Invocations, pairingID, len(batch.items), len(batch.nodes), len(batch.failures), checkpoint.HasMore)
	}

	// 7. The crawl is exhausted; the next one starts from scratch.
	if err := r.checkpointStore.Delete(ctx, pairingID); err != nil {
		return result, fmt.Errorf("delete checkpoint: %w", err)
	}

	logger.Info("Crawl complete for pairing %s: %d items, %d nodes, %d failures",
		pairingID, result.ItemCount, result.NodeCount, len(result.Failures))
	status.Running = false

	if r.cfg.Strict && len(result.Failures) > 0 {
		return result, fmt.Errorf("%w: %d failures", domain.ErrCrawlFailed, len(result.Failures))
	}
	return result, nil
}

// Status returns crawl progress for a pairing.
func (r *CrawlRunner) Status(_ context.Context, pairingID string) (*driving.CrawlStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if status, ok := r.activeCrawls[pairingID]; ok {
		// Return a copy to avoid race conditions
		copied := *status
		return &copied, nil
	}
	return &driving.CrawlStatus{PairingID: pairingID, Running: false}, nil
}

// resolveLoad picks the invocation variant matching the pairing's access
// classification. The capability is an interface membership resolved here
// once, not probed per call.
func resolveLoad(connector driven.Connector, accessType domain.AccessType) (loadFunc, error) {
	if accessType != domain.AccessTypeSync {
		return connector.LoadFromCheckpoint, nil
	}

	permSync, ok := connector.(driven.PermSyncConnector)
	if !ok || !connector.Capabilities().SupportsPermissionSync {
		return nil, fmt.Errorf("%w: %w: connector %s",
			domain.ErrConfiguration, domain.ErrPermSyncUnsupported, connector.Type())
	}
	return permSync.LoadFromCheckpointWithPermSync, nil
}

// crawlBatch accumulates the reconciled output of one invocation.
type crawlBatch struct {
	items      []domain.ContentItem
	nodes      []domain.ContainerNode
	failures   []domain.ConnectorFailure
	checkpoint *domain.Checkpoint
}

// runInvocation performs one connector invocation and drains its stream,
// routing each event kind to the matching accumulator.
//
//nolint:gocognit // Orchestration function coordinating multiple async operations
func (r *CrawlRunner) runInvocation(
	ctx context.Context,
	load loadFunc,
	windowStart, windowEnd time.Time,
	checkpoint domain.Checkpoint,
) (*crawlBatch, error) {
	invCtx := ctx
	if r.cfg.InvocationTimeout > 0 {
		var cancel context.CancelFunc
		invCtx, cancel = context.WithTimeout(ctx, r.cfg.InvocationTimeout)
		defer cancel()
	}

	events, errs := load(invCtx, windowStart, windowEnd, checkpoint)
	batch := &crawlBatch{}

	for {
		select {
		case <-invCtx.Done():
			return nil, fmt.Errorf("connector invocation: %w", invCtx.Err())

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err == nil {
				continue
			}
			if isFatalConnectorError(err) {
				return nil, fmt.Errorf("connector error: %w", err)
			}
			// Recoverable: record and keep draining the stream.
			batch.failures = append(batch.failures, domain.NewCrawlFailure("connector error", err))

		case event, ok := <-events:
			if !ok {
				// Connectors close errs no later than events; drain the
				// remainder so a queued fatal error wins over the missing
				// checkpoint diagnosis.
				if errs != nil {
					for err := range errs {
						if err == nil {
							continue
						}
						if isFatalConnectorError(err) {
							return nil, fmt.Errorf("connector error: %w", err)
						}
						batch.failures = append(batch.failures, domain.NewCrawlFailure("connector error", err))
					}
				}
				if batch.checkpoint == nil {
					return nil, domain.ErrCheckpointMissing
				}
				return batch, nil
			}

			switch event.Kind {
			case driven.EventContentItem:
				if err := event.Item.Validate(); err != nil {
					batch.failures = append(batch.failures,
						domain.NewItemFailure(event.Item.ID, "invalid item", err))
					continue
				}
				batch.items = append(batch.items, *event.Item)
			case driven.EventContainerNode:
				if err := event.Node.Validate(); err != nil {
					batch.failures = append(batch.failures,
						domain.NewCrawlFailure(fmt.Sprintf("invalid node %s", event.Node.RawID), err))
					continue
				}
				batch.nodes = append(batch.nodes, *event.Node)
			case driven.EventFailure:
				batch.failures = append(batch.failures, *event.Failure)
			case driven.EventCheckpoint:
				// The final update supersedes the previous checkpoint
				// wholesale; a well-behaved connector emits exactly one.
				batch.checkpoint = event.Checkpoint
			}
		}
	}
}

// flushBatch persists one invocation's output with idempotent upserts.
// Nodes go first so items never reference a missing parent; cyclic nodes
// are dropped from the flush and recorded as failures.
func (r *CrawlRunner) flushBatch(
	ctx context.Context,
	pairingID string,
	batch *crawlBatch,
	result *driving.CrawlResult,
	status *driving.CrawlStatus,
) error {
	nodes := batch.nodes
	if cyclic := domain.ValidateNodeForest(nodes); len(cyclic) > 0 {
		logger.Warn("Dropping %d container nodes with cyclic parents for pairing %s", len(cyclic), pairingID)
		inCycle := make(map[string]bool, len(cyclic))
		for _, id := range cyclic {
			inCycle[id] = true
			batch.failures = append(batch.failures,
				domain.NewCrawlFailure(fmt.Sprintf("node %s participates in a parent cycle", id), nil))
		}
		kept := nodes[:0]
		for _, n := range nodes {
			if !inCycle[n.RawID] {
				kept = append(kept, n)
			}
		}
		nodes = kept
	}

	for i := range nodes {
		nodes[i].PairingID = pairingID
		if err := r.itemStore.UpsertContainerNode(ctx, &nodes[i]); err != nil {
			return fmt.Errorf("upsert node %s: %w", nodes[i].RawID, err)
		}
		result.NodeCount++
		status.NodesProcessed++
	}

	now := time.Now().UTC()
	for i := range batch.items {
		item := &batch.items[i]
		item.PairingID = pairingID
		if item.SyncedAt.IsZero() {
			item.SyncedAt = now
		}
		meta, err := domain.NormalizeMetadata(item.Metadata)
		if err != nil {
			batch.failures = append(batch.failures, domain.NewItemFailure(item.ID, "invalid metadata", err))
			continue
		}
		item.Metadata = meta
		if err := r.itemStore.UpsertContentItem(ctx, item); err != nil {
			return fmt.Errorf("upsert item %s: %w", item.ID, err)
		}
		result.ItemCount++
		status.ItemsProcessed++
	}

	for _, failure := range batch.failures {
		if err := r.itemStore.RecordFailure(ctx, pairingID, failure); err != nil {
			return fmt.Errorf("record failure: %w", err)
		}
		result.Failures = append(result.Failures, failure)
		status.FailureCount++
	}
	return nil
}

// isFatalConnectorError reports whether a connector-level error aborts
// the crawl instead of being recorded as a failure. Connectors classify
// their own errors; the driver only recognises the shared sentinels.
func isFatalConnectorError(err error) bool {
	return errors.Is(err, domain.ErrConfiguration) ||
		errors.Is(err, domain.ErrAuthInvalid) ||
		errors.Is(err, domain.ErrConnectorValidation)
}

// tryAcquire marks a crawl active for the pairing.
func (r *CrawlRunner) tryAcquire(pairingID string, status *driving.CrawlStatus) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, running := r.activeCrawls[pairingID]; running {
		return false
	}
	r.activeCrawls[pairingID] = status
	return true
}

// release removes the active crawl marker for the pairing.
func (r *CrawlRunner) release(pairingID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.activeCrawls, pairingID)
}
