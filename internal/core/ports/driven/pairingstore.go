package driven

import (
	"context"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// PairingStore persists connector-credential pairings.
type PairingStore interface {
	// Save stores or updates a pairing.
	Save(ctx context.Context, pairing domain.Pairing) error

	// Get retrieves a pairing by ID.
	Get(ctx context.Context, id string) (*domain.Pairing, error)

	// List returns all pairings.
	List(ctx context.Context) ([]domain.Pairing, error)

	// SetStatus transitions a pairing's lifecycle status.
	SetStatus(ctx context.Context, id string, status domain.PairingStatus) error
}
