package keyset

import (
	"sort"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// Less reports whether item a sorts strictly before item b under the
// given options. It is a strict weak ordering: the keyset comparison
// stays monotonic across pages because every tie is broken by the
// item ID, which is unique.
func Less(a, b *domain.ContentItem, opts Options) bool {
	if opts.FoldersFirst {
		af, bf := a.Kind == domain.KindFolder, b.Kind == domain.KindFolder
		if af != bf {
			return af
		}
	}

	switch opts.Sort {
	case SortName:
		if a.DisplayName != b.DisplayName {
			return a.DisplayName < b.DisplayName
		}
	default:
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		if !a.SyncedAt.Equal(b.SyncedAt) {
			return a.SyncedAt.After(b.SyncedAt)
		}
	}
	return a.ID < b.ID
}

// After reports whether the item sorts strictly after the position marked
// by the cursor. Rows at or before the cursor position are excluded from
// the next page.
func After(item *domain.ContentItem, c *Cursor, opts Options) bool {
	if c == nil {
		return true
	}

	if opts.FoldersFirst && c.Folder != nil {
		cf, itf := *c.Folder, item.Kind == domain.KindFolder
		if cf != itf {
			// Folders lead: a file row is after a folder-positioned cursor.
			return cf
		}
	}

	switch opts.Sort {
	case SortName:
		if c.Name != nil && item.DisplayName != *c.Name {
			return item.DisplayName > *c.Name
		}
	default:
		if c.UpdatedAt != nil && !item.UpdatedAt.Equal(*c.UpdatedAt) {
			return item.UpdatedAt.Before(*c.UpdatedAt)
		}
		if c.SyncedAt != nil && !item.SyncedAt.Equal(*c.SyncedAt) {
			return item.SyncedAt.Before(*c.SyncedAt)
		}
	}
	return item.ID > c.ID
}

// SortItems orders items in place under the given options.
func SortItems(items []domain.ContentItem, opts Options) {
	sort.SliceStable(items, func(i, j int) bool {
		return Less(&items[i], &items[j], opts)
	})
}
