// Package groups provides resolvers for external group membership.
package groups

import (
	"context"

	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// Ensure StaticResolver implements the interface.
var _ driven.GroupResolver = (*StaticResolver)(nil)

// StaticResolver resolves group membership from a fixed email-to-groups
// table, typically sourced from configuration. Unknown emails resolve to
// no groups, never to an error.
type StaticResolver struct {
	byEmail map[string][]string
}

// NewStaticResolver creates a resolver over the given membership table.
func NewStaticResolver(byEmail map[string][]string) *StaticResolver {
	if byEmail == nil {
		byEmail = make(map[string][]string)
	}
	return &StaticResolver{byEmail: byEmail}
}

// ResolveExternalGroupIDs returns the configured group IDs for an email.
func (r *StaticResolver) ResolveExternalGroupIDs(_ context.Context, email string) ([]string, error) {
	ids := r.byEmail[email]
	out := make([]string, len(ids))
	copy(out, ids)
	return out, nil
}
