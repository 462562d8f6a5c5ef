package domain

// ConnectorFailure records a non-fatal per-item or per-batch failure
// produced during a crawl. Failures accumulate without blocking the
// persistence of successfully produced items in the same batch.
type ConnectorFailure struct {
	// ItemID identifies the affected content item, when known.
	ItemID *string

	// Message is a human-readable description of the failure.
	Message string

	// Err is the underlying error text, when one exists.
	Err string
}

// NewItemFailure builds a failure tied to a specific content item.
func NewItemFailure(itemID, message string, err error) ConnectorFailure {
	f := ConnectorFailure{ItemID: &itemID, Message: message}
	if err != nil {
		f.Err = err.Error()
	}
	return f
}

// NewCrawlFailure builds a failure not tied to any one item.
func NewCrawlFailure(message string, err error) ConnectorFailure {
	f := ConnectorFailure{Message: message}
	if err != nil {
		f.Err = err.Error()
	}
	return f
}
