// Package connectors contains the source connector implementations.
//
// Each connector lives in its own sub-package and implements the
// driven.Connector interface: a checkpointed, batched producer of
// content items and container nodes for one external source. Connectors
// that can mirror per-item permissions additionally implement
// driven.PermSyncConnector.
package connectors
