package domain

import (
	"fmt"
	"time"
)

// ItemKind distinguishes file-like rows from folder-like rows.
// Folder rows can optionally sort ahead of file rows during listing.
type ItemKind string

const (
	// KindFile is a regular content row.
	KindFile ItemKind = "file"

	// KindFolder is a folder placeholder row emitted by hierarchical sources.
	KindFolder ItemKind = "folder"
)

// Section is one ordered unit of content within a ContentItem.
// A section carries either text or a binary payload, never both.
type Section struct {
	// Text is the textual content. Empty for binary sections.
	Text string

	// Blob is the binary payload (e.g., an image). Nil for text sections.
	Blob []byte

	// MIMEType describes the payload for binary sections.
	MIMEType string

	// Link is an optional deep link back to the source for this section.
	Link string
}

// ContentItem is a piece of content ingested from an external source.
// Items are created and updated only by the ingestion path, via idempotent
// upsert keyed by ID.
type ContentItem struct {
	// ID is the natural identifier, globally unique within a source.
	ID string

	// PairingID is the connector-credential pairing that owns this item.
	// An item is owned by exactly one pairing at ingestion time; last
	// writer wins when the item is reachable through several pairings.
	PairingID string

	// DisplayName is the semantic, human-readable name.
	DisplayName string

	// Kind distinguishes file rows from folder placeholder rows.
	Kind ItemKind

	// Sections is the non-empty ordered content of the item.
	Sections []Section

	// Metadata holds arbitrary string-keyed values. Values must be
	// coerced to strings or string lists via NormalizeMetadata before
	// the item is stored.
	Metadata map[string]any

	// IsPublic marks the item visible to everyone regardless of ACLs.
	IsPublic bool

	// ExternalUserEmails lists user emails allowed to see this item.
	ExternalUserEmails []string

	// ExternalGroupIDs lists external group IDs allowed to see this item.
	ExternalGroupIDs []string

	// ParentContainerID references the ContainerNode this item sits under.
	// Nil for items directly under the source root.
	ParentContainerID *string

	// UpdatedAt is the last-modified timestamp at the source.
	UpdatedAt time.Time

	// SyncedAt is when the item was last ingested.
	SyncedAt time.Time
}

// Validate checks the structural invariants of an item.
func (it *ContentItem) Validate() error {
	if it.ID == "" {
		return fmt.Errorf("%w: item id is empty", ErrInvalidInput)
	}
	if len(it.Sections) == 0 {
		return fmt.Errorf("%w: item %s has no sections", ErrInvalidInput, it.ID)
	}
	return nil
}

// NormalizeMetadata coerces arbitrary metadata values into strings or
// string lists, the only shapes the store accepts. Scalars become their
// string form; homogeneous scalar lists become string lists. Nil values
// are dropped. Nested structures are rejected.
func NormalizeMetadata(meta map[string]any) (map[string]any, error) {
	if len(meta) == 0 {
		return map[string]any{}, nil
	}

	out := make(map[string]any, len(meta))
	for key, val := range meta {
		if val == nil {
			continue
		}
		switch v := val.(type) {
		case string:
			out[key] = v
		case []string:
			out[key] = append([]string(nil), v...)
		case []any:
			list := make([]string, 0, len(v))
			for _, elem := range v {
				s, err := coerceScalar(elem)
				if err != nil {
					return nil, fmt.Errorf("metadata key %q: %w", key, err)
				}
				list = append(list, s)
			}
			out[key] = list
		default:
			s, err := coerceScalar(v)
			if err != nil {
				return nil, fmt.Errorf("metadata key %q: %w", key, err)
			}
			out[key] = s
		}
	}
	return out, nil
}

// coerceScalar converts a scalar value to its string form.
func coerceScalar(val any) (string, error) {
	switch v := val.(type) {
	case string:
		return v, nil
	case bool:
		return fmt.Sprintf("%t", v), nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v), nil
	case float32, float64:
		return fmt.Sprintf("%v", v), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fmt.Errorf("%w: unsupported metadata value type %T", ErrInvalidInput, val)
	}
}
