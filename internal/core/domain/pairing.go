package domain

import "time"

// AccessType classifies the org-wide visibility of everything a pairing ingests.
type AccessType string

const (
	// AccessTypePublic makes all ingested content org-wide visible.
	AccessTypePublic AccessType = "public"

	// AccessTypeSync mirrors per-item/per-user permissions from the source.
	AccessTypeSync AccessType = "sync"
)

// PairingStatus is the lifecycle state of a connector-credential pairing.
type PairingStatus string

const (
	// StatusActive allows crawls and read-path visibility.
	StatusActive PairingStatus = "active"

	// StatusPaused suspends crawling; already-ingested content stays visible.
	StatusPaused PairingStatus = "paused"

	// StatusDeleting excludes all of the pairing's content from the read
	// path immediately, ahead of asynchronous physical deletion.
	StatusDeleting PairingStatus = "deleting"
)

// Pairing links one connector configuration and credential to a lifecycle
// status and an access classification. Everything a crawl ingests is owned
// by the pairing that produced it.
type Pairing struct {
	// ID is the unique identifier for the pairing.
	ID string

	// ConnectorType identifies the connector (e.g., "localdir", "slack").
	ConnectorType string

	// Name is the human-readable name for this pairing.
	Name string

	// Config contains connector-specific configuration.
	Config map[string]string

	// CredentialID references the credential used by this pairing.
	// Empty for no-auth connectors.
	CredentialID string

	// AccessType governs org-wide visibility of ingested content.
	AccessType AccessType

	// Status is the lifecycle state.
	Status PairingStatus

	// CreatedAt is when the pairing was created.
	CreatedAt time.Time

	// UpdatedAt is when the pairing was last updated.
	UpdatedAt time.Time
}

// CanCrawl reports whether the pairing may start a crawl.
func (p *Pairing) CanCrawl() bool {
	return p.Status == StatusActive
}
