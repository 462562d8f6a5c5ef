package domain

// Identity is the requester identity evaluated by access filtering.
// The zero value is the anonymous identity: no email, no groups.
type Identity struct {
	// Email is the requester's email. Empty for anonymous requests.
	Email string

	// GroupIDs is the set of external group IDs the requester belongs to.
	GroupIDs []string
}

// Anonymous returns the identity of an unauthenticated requester.
func Anonymous() Identity {
	return Identity{}
}

// IsAnonymous reports whether the identity carries no email.
func (id Identity) IsAnonymous() bool {
	return id.Email == ""
}
