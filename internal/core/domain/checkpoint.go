package domain

// Checkpoint is an opaque, connector-owned resumption token plus a
// continuation flag. The ingestion driver treats Cursor as a black box;
// only the owning connector interprets it.
type Checkpoint struct {
	// Cursor is the connector-defined opaque state.
	Cursor string

	// HasMore reports whether another connector invocation is required.
	// Exhaustion is decided solely by the connector, never inferred from
	// empty output.
	HasMore bool
}

// NewDummyCheckpoint returns the initial checkpoint used to start or
// restart a crawl from scratch: an empty cursor with HasMore set.
func NewDummyCheckpoint() Checkpoint {
	return Checkpoint{Cursor: "", HasMore: true}
}
