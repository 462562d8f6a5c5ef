// Package access implements the row-level visibility predicate applied
// at read time. The predicate is a pure function of its inputs - ids,
// flags and sets - with no hidden state and no I/O, so it is callable
// from any layer without creating a back-reference.
package access

import (
	"fmt"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// Editions selectable at process startup.
const (
	// EditionFull evaluates the complete predicate, including per-user
	// email and group clauses mirrored from the source.
	EditionFull = "full"

	// EditionBasic evaluates public visibility only; per-user clauses
	// never match. Used when no identity provider is wired.
	EditionBasic = "basic"
)

// ACL is the minimal permission view of a content item or container node.
type ACL struct {
	// IsPublic marks the row visible to everyone.
	IsPublic bool

	// Emails lists user emails allowed to see the row.
	Emails []string

	// GroupIDs lists external group IDs allowed to see the row.
	GroupIDs []string
}

// ItemACL extracts the permission view of a content item.
func ItemACL(item *domain.ContentItem) ACL {
	return ACL{
		IsPublic: item.IsPublic,
		Emails:   item.ExternalUserEmails,
		GroupIDs: item.ExternalGroupIDs,
	}
}

// NodeACL extracts the permission view of a container node.
func NodeACL(node *domain.ContainerNode) ACL {
	return ACL{
		IsPublic: node.IsPublic,
		Emails:   node.ExternalUserEmails,
		GroupIDs: node.ExternalGroupIDs,
	}
}

// Checker decides row visibility for a requester identity.
// Implementations must be pure: same inputs, same answer, no I/O.
type Checker interface {
	// Visible reports whether a row owned by the pairing is visible to
	// the identity.
	Visible(pairing *domain.Pairing, acl ACL, identity domain.Identity) bool
}

// NewChecker resolves the edition-specific checker once at startup.
// Returns domain.ErrConfiguration for an unknown edition.
func NewChecker(edition string) (Checker, error) {
	switch edition {
	case "", EditionFull:
		return fullChecker{}, nil
	case EditionBasic:
		return basicChecker{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown edition %q", domain.ErrConfiguration, edition)
	}
}

// fullChecker evaluates the complete visibility predicate.
type fullChecker struct{}

// Visible is true when the owning pairing is PUBLIC, the row itself is
// public, the identity's email is listed on the row, or the identity's
// groups intersect the row's groups. Rows owned by a DELETING pairing
// are never visible, regardless of the clauses above.
func (fullChecker) Visible(pairing *domain.Pairing, acl ACL, identity domain.Identity) bool {
	if pairing.Status == domain.StatusDeleting {
		return false
	}
	if pairing.AccessType == domain.AccessTypePublic {
		return true
	}
	if acl.IsPublic {
		return true
	}
	if identity.Email != "" && containsString(acl.Emails, identity.Email) {
		return true
	}
	return intersects(acl.GroupIDs, identity.GroupIDs)
}

// basicChecker evaluates public visibility only.
type basicChecker struct{}

func (basicChecker) Visible(pairing *domain.Pairing, acl ACL, _ domain.Identity) bool {
	if pairing.Status == domain.StatusDeleting {
		return false
	}
	return pairing.AccessType == domain.AccessTypePublic || acl.IsPublic
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// intersects reports whether the two sets share an element.
// Empty sets never match.
func intersects(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	for _, s := range b {
		if _, ok := set[s]; ok {
			return true
		}
	}
	return false
}
