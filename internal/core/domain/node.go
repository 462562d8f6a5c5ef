package domain

import "fmt"

// ContainerNode is a structural grouping native to a source, such as a
// chat channel, a drive folder or a wiki space. Nodes of one source form
// a forest rooted at a virtual per-source root.
type ContainerNode struct {
	// RawID is the source-native identifier, unique per source.
	RawID string

	// RawParentID references the parent node. Nil means the node is a
	// direct child of the source root.
	RawParentID *string

	// PairingID is the connector-credential pairing that produced the node.
	PairingID string

	// DisplayName is the human-readable name.
	DisplayName string

	// NodeType is the source-specific kind (channel, folder, space, ...).
	NodeType string

	// IsPublic marks the node visible to everyone regardless of ACLs.
	IsPublic bool

	// ExternalUserEmails lists user emails allowed to see this node.
	ExternalUserEmails []string

	// ExternalGroupIDs lists external group IDs allowed to see this node.
	ExternalGroupIDs []string

	// Link is a deep link to the grouping at the source.
	Link string
}

// Validate checks the structural invariants of a node.
func (n *ContainerNode) Validate() error {
	if n.RawID == "" {
		return fmt.Errorf("%w: node raw id is empty", ErrInvalidInput)
	}
	if n.RawParentID != nil && *n.RawParentID == n.RawID {
		return fmt.Errorf("%w: node %s is its own parent", ErrInvalidInput, n.RawID)
	}
	return nil
}

// ValidateNodeForest checks that the parent relation over the given nodes
// is acyclic. Parents referenced outside the batch are treated as roots;
// only cycles formed within the batch can be detected here.
// Returns the raw IDs of nodes participating in a cycle, in no particular
// order, or nil when the batch forms a forest.
func ValidateNodeForest(nodes []ContainerNode) []string {
	parent := make(map[string]string, len(nodes))
	for _, n := range nodes {
		if n.RawParentID != nil {
			parent[n.RawID] = *n.RawParentID
		}
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(parent))
	var cyclic []string

	for id := range parent {
		if state[id] != unvisited {
			continue
		}
		// Walk up the parent chain, marking the path as in-progress.
		var path []string
		cur := id
		for {
			state[cur] = visiting
			path = append(path, cur)
			next, ok := parent[cur]
			if !ok || state[next] == done {
				break
			}
			if state[next] == visiting {
				// Everything from next onwards in the chain is cyclic.
				inCycle := false
				for _, p := range path {
					if p == next {
						inCycle = true
					}
					if inCycle {
						cyclic = append(cyclic, p)
					}
				}
				break
			}
			cur = next
		}
		for _, p := range path {
			state[p] = done
		}
	}
	return cyclic
}
