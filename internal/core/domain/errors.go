package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown connector type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Crawl Errors.

	// ErrConfiguration indicates invalid connector credentials or settings.
	// Fatal and pre-crawl: the crawl never starts.
	ErrConfiguration = errors.New("configuration error")

	// ErrConnectorValidation indicates connector validation failed.
	// The pairing is misconfigured or credentials are invalid.
	ErrConnectorValidation = errors.New("connector validation failed")

	// ErrAuthInvalid indicates the authentication credentials are invalid.
	// Treated as fatal during a crawl, never recorded as a per-item failure.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrPermSyncUnsupported indicates a SYNC pairing was given to a
	// connector that cannot mirror per-item permissions.
	ErrPermSyncUnsupported = errors.New("permission sync not supported")

	// ErrIterationLimit indicates the crawl invocation-count guard tripped.
	// Signals a connector that never reports exhaustion. Fatal; partial
	// progress already persisted is kept.
	ErrIterationLimit = errors.New("crawl invocation limit exceeded")

	// ErrCheckpointMissing indicates a connector stream ended without
	// emitting a checkpoint update. Fatal protocol violation.
	ErrCheckpointMissing = errors.New("connector stream ended without checkpoint update")

	// ErrCrawlFailed indicates a completed crawl accumulated failures while
	// strict mode was active. Persisted partial results are retained.
	ErrCrawlFailed = errors.New("crawl completed with failures")

	// ErrCrawlInProgress indicates a crawl is already running for the pairing.
	ErrCrawlInProgress = errors.New("crawl in progress")

	// Listing Errors.

	// ErrInvalidCursor indicates a pagination cursor could not be decoded.
	ErrInvalidCursor = errors.New("invalid cursor")
)
