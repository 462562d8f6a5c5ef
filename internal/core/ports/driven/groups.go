package driven

import "context"

// GroupResolver maps a requester email to the external group IDs the
// requester belongs to. The result feeds the group-intersection clause
// of the access predicate.
type GroupResolver interface {
	// ResolveExternalGroupIDs returns the group IDs for an email.
	// An empty email (anonymous requester) resolves to no groups.
	ResolveExternalGroupIDs(ctx context.Context, email string) ([]string, error)
}
