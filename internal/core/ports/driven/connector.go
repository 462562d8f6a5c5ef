package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// EventKind discriminates the variants of a CrawlEvent.
type EventKind int

const (
	// EventContentItem carries a content item.
	EventContentItem EventKind = iota

	// EventContainerNode carries a container node.
	EventContainerNode

	// EventFailure carries a non-fatal connector failure.
	EventFailure

	// EventCheckpoint carries the checkpoint update that terminates an
	// invocation's stream.
	EventCheckpoint
)

// CrawlEvent is the tagged union a connector emits during one invocation.
// Exactly one field matching Kind is set; consumers switch on Kind
// exhaustively instead of inspecting types per element.
type CrawlEvent struct {
	// Kind selects the populated variant.
	Kind EventKind

	// Item is set when Kind is EventContentItem.
	Item *domain.ContentItem

	// Node is set when Kind is EventContainerNode.
	Node *domain.ContainerNode

	// Failure is set when Kind is EventFailure.
	Failure *domain.ConnectorFailure

	// Checkpoint is set when Kind is EventCheckpoint.
	Checkpoint *domain.Checkpoint
}

// ItemEvent wraps a content item as a crawl event.
func ItemEvent(item *domain.ContentItem) CrawlEvent {
	return CrawlEvent{Kind: EventContentItem, Item: item}
}

// NodeEvent wraps a container node as a crawl event.
func NodeEvent(node *domain.ContainerNode) CrawlEvent {
	return CrawlEvent{Kind: EventContainerNode, Node: node}
}

// FailureEvent wraps a connector failure as a crawl event.
func FailureEvent(failure domain.ConnectorFailure) CrawlEvent {
	return CrawlEvent{Kind: EventFailure, Failure: &failure}
}

// CheckpointEvent wraps a checkpoint update as a crawl event.
func CheckpointEvent(cp domain.Checkpoint) CrawlEvent {
	return CrawlEvent{Kind: EventCheckpoint, Checkpoint: &cp}
}

// ConnectorCapabilities describes what a connector supports.
type ConnectorCapabilities struct {
	// SupportsTimeWindow indicates the connector honours the
	// modified-since window passed to LoadFromCheckpoint. Connectors
	// without an incremental filter may ignore the window and return
	// their entire corpus, but must still reach exhaustion in bounded
	// invocations.
	SupportsTimeWindow bool

	// SupportsPermissionSync indicates the connector can populate
	// per-item permission metadata. Connectors setting this must also
	// implement PermSyncConnector.
	SupportsPermissionSync bool

	// SupportsHierarchy indicates the source has nested structure and
	// the connector emits container nodes.
	SupportsHierarchy bool

	// SupportsValidation indicates Validate() performs a real check
	// (API call, path check) rather than returning nil.
	SupportsValidation bool

	// SupportsRateLimiting indicates the connector throttles its own
	// API usage internally. Informational.
	SupportsRateLimiting bool
}

// Connector produces content from one external source for a time window,
// one checkpointed invocation at a time.
//
// Contract: implementations must be safely resumable. If invocation N
// fails partway, the checkpoint emitted by invocation N-1 remains valid
// for a retry; no invocation may assume in-memory state beyond the
// checkpoint value. Each invocation consumes fresh network/API state and
// its stream is not restartable.
type Connector interface {
	// Type returns the connector type identifier.
	Type() string

	// PairingID returns the configured pairing ID.
	PairingID() string

	// Capabilities returns what this connector supports.
	Capabilities() ConnectorCapabilities

	// Validate checks if the connector is properly configured and
	// authenticated. Returns nil if ready to crawl, an error describing
	// the problem otherwise.
	Validate(ctx context.Context) error

	// LoadFromCheckpoint produces the items modified within
	// [windowStart, windowEnd] reachable from the given checkpoint.
	// The event stream is finite and terminated by exactly one
	// EventCheckpoint, which supersedes the previous checkpoint
	// wholesale. Fatal conditions are sent on the error channel; both
	// channels are closed when the invocation ends, the error channel no
	// later than the event channel.
	LoadFromCheckpoint(ctx context.Context, windowStart, windowEnd time.Time, cp domain.Checkpoint) (<-chan CrawlEvent, <-chan error)

	// Close releases resources.
	Close() error
}

// PermSyncConnector is implemented by connectors that can mirror per-item
// permissions from the source. Callers resolve the capability once per
// connector instance via interface assertion and fail fast with a
// configuration error when a SYNC pairing meets a connector without it.
type PermSyncConnector interface {
	Connector

	// LoadFromCheckpointWithPermSync has the same contract as
	// LoadFromCheckpoint with permission metadata (is_public, email and
	// group sets) populated on emitted items and nodes.
	LoadFromCheckpointWithPermSync(ctx context.Context, windowStart, windowEnd time.Time, cp domain.Checkpoint) (<-chan CrawlEvent, <-chan error)
}

// ConnectorBuilder creates a Connector from a pairing.
type ConnectorBuilder func(pairing domain.Pairing) (Connector, error)

// ConnectorFactory creates connectors from pairing configuration.
// It maintains a registry of connector types and their builders.
type ConnectorFactory interface {
	// Create returns a Connector for the given pairing.
	// Returns ErrUnsupportedType if the connector type is unknown.
	Create(ctx context.Context, pairing domain.Pairing) (Connector, error)

	// Register adds a connector builder for the given type.
	Register(connectorType string, builder ConnectorBuilder)

	// SupportedTypes returns all registered connector types.
	SupportedTypes() []string
}
