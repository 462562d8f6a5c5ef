// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Connector: Produces content from an external source, one checkpointed
//     invocation at a time
//   - ConnectorFactory: Creates connectors from pairing configuration
//   - ItemStore: Content item, container node and failure persistence
//   - PairingStore: Connector-credential pairing persistence
//   - CheckpointStore: In-flight crawl checkpoint persistence
//
// # Optional Interfaces
//
//   - GroupResolver: Maps a requester identity to external group IDs.
//     Without it, group-based visibility clauses never match.
//
// # Import Rules
//
//   - Can Import: domain and keyset packages only
//   - Cannot Import: Any adapter or connector package
package driven
