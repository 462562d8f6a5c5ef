package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/keyset"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "corpus-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

func testItem(id, parent string, updated time.Time) *domain.ContentItem {
	return &domain.ContentItem{
		ID:                id,
		PairingID:         "pairing-1",
		DisplayName:       id,
		Kind:              domain.KindFile,
		Sections:          []domain.Section{{Text: "content of " + id}},
		Metadata:          map[string]any{"origin": "test"},
		ParentContainerID: &parent,
		UpdatedAt:         updated,
		SyncedAt:          updated,
	}
}

func TestStoreCreationRunsMigrations(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	// Re-opening over the same directory must be a no-op for migrations.
	again, err := NewStore(filepath.Dir(store.Path()))
	require.NoError(t, err)
	assert.NoError(t, again.Close())
}

func TestPairingStoreSQLiteRoundTrip(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	pairings := store.PairingStore()

	pairing := domain.Pairing{
		ID:            "p1",
		ConnectorType: "localdir",
		Name:          "Docs",
		Config:        map[string]string{"path": "/srv/docs"},
		AccessType:    domain.AccessTypeSync,
		Status:        domain.StatusActive,
	}
	require.NoError(t, pairings.Save(ctx, pairing))

	got, err := pairings.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "localdir", got.ConnectorType)
	assert.Equal(t, "/srv/docs", got.Config["path"])
	assert.Equal(t, domain.AccessTypeSync, got.AccessType)
	assert.False(t, got.CreatedAt.IsZero())

	// Upsert keeps a single row.
	pairing.Name = "Docs v2"
	require.NoError(t, pairings.Save(ctx, pairing))
	all, err := pairings.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Docs v2", all[0].Name)

	require.NoError(t, pairings.SetStatus(ctx, "p1", domain.StatusDeleting))
	got, err = pairings.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDeleting, got.Status)

	assert.ErrorIs(t, pairings.SetStatus(ctx, "missing", domain.StatusPaused), domain.ErrNotFound)
	_, err = pairings.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCheckpointStoreSQLiteRoundTrip(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.PairingStore().Save(ctx, domain.Pairing{
		ID: "p1", ConnectorType: "localdir", Name: "Docs",
		AccessType: domain.AccessTypePublic, Status: domain.StatusActive,
	}))
	checkpoints := store.CheckpointStore()

	_, err := checkpoints.Get(ctx, "p1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, checkpoints.Save(ctx, "p1", domain.Checkpoint{Cursor: "page-2", HasMore: true}))
	require.NoError(t, checkpoints.Save(ctx, "p1", domain.Checkpoint{Cursor: "page-3", HasMore: true}))

	cp, err := checkpoints.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "page-3", cp.Cursor)
	assert.True(t, cp.HasMore)

	require.NoError(t, checkpoints.Delete(ctx, "p1"))
	_, err = checkpoints.Get(ctx, "p1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestItemStoreSQLiteRoundTrip(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	items := store.ItemStore()

	ts := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	item := testItem("doc-1", "node-1", ts)
	item.ExternalUserEmails = []string{"a@example.com"}
	item.ExternalGroupIDs = []string{"grp-1"}
	require.NoError(t, items.UpsertContentItem(ctx, item))

	got, err := items.GetContentItem(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "pairing-1", got.PairingID)
	require.Len(t, got.Sections, 1)
	assert.Equal(t, "content of doc-1", got.Sections[0].Text)
	assert.Equal(t, "test", got.Metadata["origin"])
	assert.Equal(t, []string{"a@example.com"}, got.ExternalUserEmails)
	assert.Equal(t, []string{"grp-1"}, got.ExternalGroupIDs)
	require.NotNil(t, got.ParentContainerID)
	assert.Equal(t, "node-1", *got.ParentContainerID)
	assert.True(t, got.UpdatedAt.Equal(ts))

	// Upsert replaces, never duplicates.
	item.DisplayName = "renamed"
	require.NoError(t, items.UpsertContentItem(ctx, item))
	got, err = items.GetContentItem(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.DisplayName)

	_, err = items.GetContentItem(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, items.UpsertContentItem(ctx, &domain.ContentItem{ID: "empty"}), domain.ErrInvalidInput)
}

func TestContainerNodeSQLiteRoundTrip(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	items := store.ItemStore()

	parent := "root"
	node := &domain.ContainerNode{
		RawID:              "chan-1",
		RawParentID:        &parent,
		PairingID:          "p1",
		DisplayName:        "general",
		NodeType:           "channel",
		ExternalUserEmails: []string{"a@example.com"},
		Link:               "https://example.com/chan-1",
	}
	require.NoError(t, items.UpsertContainerNode(ctx, node))
	node.DisplayName = "general-renamed"
	require.NoError(t, items.UpsertContainerNode(ctx, node))

	// Same raw ID under another pairing is a distinct row.
	other := &domain.ContainerNode{RawID: "chan-1", PairingID: "p2", DisplayName: "general"}
	require.NoError(t, items.UpsertContainerNode(ctx, other))

	nodes, err := items.ListNodes(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "general-renamed", nodes[0].DisplayName)
	require.NotNil(t, nodes[0].RawParentID)
	assert.Equal(t, "root", *nodes[0].RawParentID)
	assert.Equal(t, []string{"a@example.com"}, nodes[0].ExternalUserEmails)

	all, err := items.ListNodes(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestQueryItemsUnderNodeSQLiteKeyset(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	items := store.ItemStore()

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		item := testItem(fmt.Sprintf("doc-%d", i), "node-1", base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, items.UpsertContentItem(ctx, item))
	}
	require.NoError(t, items.UpsertContentItem(ctx, testItem("other", "node-2", base)))

	opts := keyset.Options{Sort: keyset.SortLastUpdated}

	rows, err := items.QueryItemsUnderNode(ctx, "node-1", nil, opts, 3)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "doc-4", rows[0].ID)
	assert.Equal(t, "doc-3", rows[1].ID)
	assert.Equal(t, "doc-2", rows[2].ID)

	cursor := keyset.FromItem(&rows[2], opts)
	rows, err = items.QueryItemsUnderNode(ctx, "node-1", cursor, opts, 3)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "doc-1", rows[0].ID)
	assert.Equal(t, "doc-0", rows[1].ID)
}

func TestQueryItemsUnderNodeSQLiteTieBreak(t *testing.T) {
	// Rows sharing both timestamps page deterministically by ID.
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	items := store.ItemStore()

	ts := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"b", "a", "c"} {
		require.NoError(t, items.UpsertContentItem(ctx, testItem(id, "node-1", ts)))
	}

	opts := keyset.Options{Sort: keyset.SortLastUpdated}
	rows, err := items.QueryItemsUnderNode(ctx, "node-1", nil, opts, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].ID)
	assert.Equal(t, "b", rows[1].ID)

	cursor := keyset.FromItem(&rows[1], opts)
	rows, err = items.QueryItemsUnderNode(ctx, "node-1", cursor, opts, 2)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "c", rows[0].ID)
}

func TestQueryItemsUnderNodeSQLiteNameSort(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	items := store.ItemStore()

	ts := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	names := map[string]string{"doc-1": "Gamma", "doc-2": "Alpha", "doc-3": "Beta"}
	for id, name := range names {
		item := testItem(id, "node-1", ts)
		item.DisplayName = name
		require.NoError(t, items.UpsertContentItem(ctx, item))
	}

	opts := keyset.Options{Sort: keyset.SortName}
	rows, err := items.QueryItemsUnderNode(ctx, "node-1", nil, opts, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Alpha", rows[0].DisplayName)
	assert.Equal(t, "Beta", rows[1].DisplayName)

	cursor := keyset.FromItem(&rows[1], opts)
	rows, err = items.QueryItemsUnderNode(ctx, "node-1", cursor, opts, 2)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Gamma", rows[0].DisplayName)
}

func TestQueryItemsUnderNodeSQLiteFoldersFirst(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	items := store.ItemStore()

	ts := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	file := testItem("file-1", "node-1", ts.Add(time.Hour))
	folder := testItem("folder-1", "node-1", ts)
	folder.Kind = domain.KindFolder
	require.NoError(t, items.UpsertContentItem(ctx, file))
	require.NoError(t, items.UpsertContentItem(ctx, folder))

	opts := keyset.Options{Sort: keyset.SortLastUpdated, FoldersFirst: true}
	rows, err := items.QueryItemsUnderNode(ctx, "node-1", nil, opts, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "folder-1", rows[0].ID)

	// Resuming after the folder crosses into the file rows.
	cursor := keyset.FromItem(&rows[0], opts)
	rows, err = items.QueryItemsUnderNode(ctx, "node-1", cursor, opts, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "file-1", rows[0].ID)
}

func TestRecordFailureSQLite(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()
	items := store.ItemStore()

	require.NoError(t, items.RecordFailure(ctx, "p1",
		domain.NewItemFailure("doc-1", "fetch failed", fmt.Errorf("timeout"))))
	require.NoError(t, items.RecordFailure(ctx, "p1",
		domain.NewCrawlFailure("batch aborted", nil)))

	var count int
	err := store.db.QueryRow("SELECT COUNT(*) FROM crawl_failures WHERE pairing_id = ?", "p1").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
