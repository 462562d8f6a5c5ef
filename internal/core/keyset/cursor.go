// Package keyset implements stable cursor-based pagination over content
// item listings. A cursor encodes the sort-key values of the last row on
// the previous page plus that row's ID; the next page selects rows
// strictly after the cursor tuple in sort order, never by offset, so
// results stay correct under concurrent writes.
package keyset

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// CursorVersion is the current cursor schema version.
const CursorVersion = 1

// Sort selects the listing sort order.
type Sort string

const (
	// SortLastUpdated orders by last-modified timestamp descending, then
	// last-synced timestamp descending, then item ID ascending. Default.
	SortLastUpdated Sort = "last_updated"

	// SortName orders by display name ascending, then item ID ascending.
	SortName Sort = "name"
)

// Options configures one listing pass.
type Options struct {
	// Sort is the primary ordering. Defaults to SortLastUpdated.
	Sort Sort

	// FoldersFirst sorts folder rows before file rows as a leading
	// ordering dimension applied ahead of the primary sort key.
	FoldersFirst bool
}

// Cursor marks a resume position within a sorted listing. It carries the
// sort-key values of the last returned row; which fields are populated
// depends on the sort order it was built for.
type Cursor struct {
	// Version is the schema version for future migrations.
	Version int `json:"v"`

	// UpdatedAt is the last row's source modification time (SortLastUpdated).
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	// SyncedAt is the last row's ingestion time (SortLastUpdated).
	SyncedAt *time.Time `json:"synced_at,omitempty"`

	// Name is the last row's display name (SortName).
	Name *string `json:"name,omitempty"`

	// Folder is the last row's folder flag, present when FoldersFirst
	// was active.
	Folder *bool `json:"folder,omitempty"`

	// ID is the last row's item ID, the final tie-break.
	ID string `json:"id"`
}

// FromItem builds the cursor marking the position just after the item
// under the given options.
func FromItem(item *domain.ContentItem, opts Options) *Cursor {
	c := &Cursor{Version: CursorVersion, ID: item.ID}
	switch opts.Sort {
	case SortName:
		name := item.DisplayName
		c.Name = &name
	default:
		updated := item.UpdatedAt
		synced := item.SyncedAt
		c.UpdatedAt = &updated
		c.SyncedAt = &synced
	}
	if opts.FoldersFirst {
		folder := item.Kind == domain.KindFolder
		c.Folder = &folder
	}
	return c
}

// Encode serialises the cursor to a base64-encoded JSON string.
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

// Decode deserialises a cursor from a base64-encoded JSON string.
// Returns nil for an empty string (start of listing) and
// domain.ErrInvalidCursor for malformed input.
func Decode(s string) (*Cursor, error) {
	if s == "" {
		return nil, nil
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, domain.ErrInvalidCursor
	}

	var cursor Cursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return nil, domain.ErrInvalidCursor
	}
	if cursor.ID == "" {
		return nil, domain.ErrInvalidCursor
	}
	return &cursor, nil
}
