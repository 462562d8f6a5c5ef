// Package domain defines the core business entities for Corpus.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ContentItem: A piece of content ingested from an external source
//   - ContainerNode: A structural grouping native to a source (channel, folder, space)
//   - Pairing: A connector-credential pairing with lifecycle and access classification
//   - Checkpoint: An opaque crawl resumption token plus a continuation flag
//   - ConnectorFailure: A non-fatal per-item failure recorded during a crawl
//   - Identity: A requester identity used by access filtering
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
