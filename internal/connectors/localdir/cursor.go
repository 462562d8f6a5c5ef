package localdir

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// CursorVersion is the current cursor schema version.
const CursorVersion = 1

// Cursor tracks crawl progress through a directory tree. The walk is
// deterministic (relative paths in lexical order), so resuming strictly
// after LastPath never re-emits a finished batch and never skips a file.
type Cursor struct {
	// Version is the schema version for future migrations.
	Version int `json:"v"`

	// NodesDone records that the directory nodes were already emitted.
	NodesDone bool `json:"nodes_done,omitempty"`

	// LastPath is the last relative file path processed; the next
	// invocation resumes strictly after it.
	LastPath string `json:"last_path,omitempty"`
}

// NewCursor creates a new empty cursor.
func NewCursor() *Cursor {
	return &Cursor{Version: CursorVersion}
}

// Encode serializes the cursor to a base64-encoded JSON string.
func (c *Cursor) Encode() string {
	if c == nil {
		return ""
	}
	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeCursor deserializes a cursor from a base64-encoded JSON string.
// Returns a new empty cursor for empty input and a configuration error
// for malformed input, which aborts the crawl rather than looping.
func DecodeCursor(s string) (*Cursor, error) {
	if s == "" {
		return NewCursor(), nil
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed localdir cursor", domain.ErrConfiguration)
	}

	var cursor Cursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return nil, fmt.Errorf("%w: malformed localdir cursor", domain.ErrConfiguration)
	}

	return &cursor, nil
}
