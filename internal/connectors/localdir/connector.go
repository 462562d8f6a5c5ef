package localdir

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// Ensure Connector implements both interfaces.
var (
	_ driven.Connector         = (*Connector)(nil)
	_ driven.PermSyncConnector = (*Connector)(nil)
)

// maxFileSize caps how large a file the connector will ingest.
const maxFileSize = 4 << 20

// Connector ingests content from a local directory tree. It doubles as
// the reference implementation of the crawl protocol: deterministic
// ordering, bounded batches and an honest resume cursor.
type Connector struct {
	pairingID string
	config    *Config
	mu        sync.Mutex
	closed    bool
}

// New creates a new local directory connector.
func New(pairingID string, cfg *Config) *Connector {
	return &Connector{
		pairingID: pairingID,
		config:    cfg,
	}
}

// Builder adapts New to the factory registration signature.
func Builder(pairing domain.Pairing) (driven.Connector, error) {
	cfg, err := ParseConfig(pairing)
	if err != nil {
		return nil, err
	}
	return New(pairing.ID, cfg), nil
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return "localdir"
}

// PairingID returns the configured pairing ID.
func (c *Connector) PairingID() string {
	return c.pairingID
}

// Capabilities returns the connector's capabilities.
func (c *Connector) Capabilities() driven.ConnectorCapabilities {
	return driven.ConnectorCapabilities{
		SupportsTimeWindow:     true,
		SupportsPermissionSync: true,
		SupportsHierarchy:      true,
		SupportsValidation:     true,
		SupportsRateLimiting:   false,
	}
}

// Validate checks that the configured root exists and is a directory.
func (c *Connector) Validate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(c.config.Path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", c.config.Path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", c.config.Path)
	}
	return nil
}

// LoadFromCheckpoint produces one batch of items from the directory tree.
func (c *Connector) LoadFromCheckpoint(
	ctx context.Context,
	windowStart, windowEnd time.Time,
	cp domain.Checkpoint,
) (<-chan driven.CrawlEvent, <-chan error) {
	return c.load(ctx, windowStart, windowEnd, cp, false)
}

// LoadFromCheckpointWithPermSync is LoadFromCheckpoint with the
// world-readable file mode bit mirrored into IsPublic on items and nodes.
func (c *Connector) LoadFromCheckpointWithPermSync(
	ctx context.Context,
	windowStart, windowEnd time.Time,
	cp domain.Checkpoint,
) (<-chan driven.CrawlEvent, <-chan error) {
	return c.load(ctx, windowStart, windowEnd, cp, true)
}

// Close releases resources.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// dirEntry is one directory discovered during the tree scan.
type dirEntry struct {
	rel       string
	parentRel string
	mode      fs.FileMode
}

// fileEntry is one file discovered during the tree scan.
type fileEntry struct {
	rel     string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

//nolint:gocognit // Orchestration of the batched walk in one place
func (c *Connector) load(
	ctx context.Context,
	windowStart, windowEnd time.Time,
	cp domain.Checkpoint,
	permSync bool,
) (<-chan driven.CrawlEvent, <-chan error) {
	events := make(chan driven.CrawlEvent)
	errs := make(chan error, 1)

	go func() {
		// errs closes before events; the consumer relies on that order.
		defer close(events)
		defer close(errs)

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			errs <- fmt.Errorf("%w: connector closed", domain.ErrConfiguration)
			return
		}
		c.mu.Unlock()

		cursor, err := DecodeCursor(cp.Cursor)
		if err != nil {
			errs <- err
			return
		}

		dirs, files, err := c.scanTree()
		if err != nil {
			errs <- fmt.Errorf("scan %s: %w", c.config.Path, err)
			return
		}

		send := func(event driven.CrawlEvent) bool {
			select {
			case <-ctx.Done():
				return false
			case events <- event:
				return true
			}
		}

		// Directory nodes go out once, on the first invocation.
		if !cursor.NodesDone {
			for _, dir := range dirs {
				if !send(driven.NodeEvent(c.buildNode(dir, permSync))) {
					return
				}
			}
		}

		emitted := 0
		lastPath := cursor.LastPath
		hasMore := false

		for _, file := range files {
			if file.rel <= cursor.LastPath {
				continue
			}
			if emitted >= c.config.BatchSize {
				hasMore = true
				break
			}

			lastPath = file.rel

			// Files untouched within the window are skipped, not re-read.
			if !windowStart.IsZero() && file.modTime.Before(windowStart) {
				continue
			}
			if !windowEnd.IsZero() && file.modTime.After(windowEnd) {
				continue
			}

			if file.size > maxFileSize {
				failure := domain.NewItemFailure(c.itemID(file.rel),
					fmt.Sprintf("file exceeds %d bytes", int64(maxFileSize)), nil)
				if !send(driven.FailureEvent(failure)) {
					return
				}
				continue
			}

			item, err := c.buildItem(file, permSync)
			if err != nil {
				failure := domain.NewItemFailure(c.itemID(file.rel), "read file", err)
				if !send(driven.FailureEvent(failure)) {
					return
				}
				continue
			}

			if !send(driven.ItemEvent(item)) {
				return
			}
			emitted++
		}

		logger.Debug("localdir %s: emitted %d items up to %q, has_more=%t",
			c.config.Path, emitted, lastPath, hasMore)

		next := Cursor{
			Version:   CursorVersion,
			NodesDone: true,
			LastPath:  lastPath,
		}
		send(driven.CheckpointEvent(domain.Checkpoint{
			Cursor:  next.Encode(),
			HasMore: hasMore,
		}))
	}()

	return events, errs
}

// scanTree walks the root once, collecting directories and files in
// lexical order of their relative paths.
func (c *Connector) scanTree() ([]dirEntry, []fileEntry, error) {
	var dirs []dirEntry
	var files []fileEntry

	root := c.config.Path
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if !c.config.IncludeHidden && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		if d.IsDir() {
			dirs = append(dirs, dirEntry{
				rel:       rel,
				parentRel: filepath.Dir(rel),
				mode:      info.Mode(),
			})
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		files = append(files, fileEntry{
			rel:     rel,
			size:    info.Size(),
			mode:    info.Mode(),
			modTime: info.ModTime().UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	sort.Slice(dirs, func(i, j int) bool { return dirs[i].rel < dirs[j].rel })
	sort.Slice(files, func(i, j int) bool { return files[i].rel < files[j].rel })
	return dirs, files, nil
}

// buildNode converts a scanned directory into a container node.
func (c *Connector) buildNode(dir dirEntry, permSync bool) *domain.ContainerNode {
	node := &domain.ContainerNode{
		RawID:       dir.rel,
		PairingID:   c.pairingID,
		DisplayName: filepath.Base(dir.rel),
		NodeType:    "directory",
		Link:        "file://" + filepath.Join(c.config.Path, dir.rel),
	}
	if dir.parentRel != "." {
		parent := dir.parentRel
		node.RawParentID = &parent
	}
	if permSync {
		node.IsPublic = worldReadable(dir.mode)
	}
	return node
}

// buildItem reads a scanned file and converts it into a content item.
func (c *Connector) buildItem(file fileEntry, permSync bool) (*domain.ContentItem, error) {
	abs := filepath.Join(c.config.Path, file.rel)
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}

	section := domain.Section{Link: "file://" + abs}
	if utf8.Valid(data) {
		section.Text = string(data)
	} else {
		section.Blob = data
		section.MIMEType = mime.TypeByExtension(filepath.Ext(file.rel))
	}

	item := &domain.ContentItem{
		ID:          c.itemID(file.rel),
		PairingID:   c.pairingID,
		DisplayName: filepath.Base(file.rel),
		Kind:        domain.KindFile,
		Sections:    []domain.Section{section},
		Metadata: map[string]any{
			"relative_path": file.rel,
			"extension":     strings.TrimPrefix(filepath.Ext(file.rel), "."),
		},
		UpdatedAt: file.modTime,
	}

	if dir := filepath.Dir(file.rel); dir != "." {
		parent := dir
		item.ParentContainerID = &parent
	}
	if permSync {
		item.IsPublic = worldReadable(file.mode)
	}
	return item, nil
}

// itemID builds the natural item identifier for a relative path.
func (c *Connector) itemID(rel string) string {
	return "localdir://" + filepath.Join(c.config.Path, rel)
}

// worldReadable reports whether the mode grants read access to everyone.
func worldReadable(mode fs.FileMode) bool {
	return mode.Perm()&0004 != 0
}
