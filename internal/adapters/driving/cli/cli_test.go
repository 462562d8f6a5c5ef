package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	configfile "github.com/custodia-labs/corpus-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/corpus-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/corpus-cli/internal/connectors/localdir"
	"github.com/custodia-labs/corpus-cli/internal/core/access"
	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/services"
)

// setupCLITest wires the commands to in-memory services and returns a
// cleanup function restoring the previous wiring.
func setupCLITest(t *testing.T) (*memory.PairingStore, *memory.ItemStore, func()) {
	t.Helper()

	oldPairings := pairingStore
	oldRunner := crawlRunner
	oldListing := listingService

	pairings := memory.NewPairingStore()
	items := memory.NewItemStore()
	checkpoints := memory.NewCheckpointStore()

	factory := services.NewConnectorFactory()
	factory.Register("localdir", localdir.Builder)

	checker, err := access.NewChecker(access.EditionFull)
	require.NoError(t, err)

	pairingStore = pairings
	crawlRunner = services.NewCrawlRunner(pairings, items, checkpoints, factory, services.DefaultCrawlConfig())
	listingService = services.NewListingService(items, pairings, nil, checker, 0)

	// Listing flags persist across executions; start each test clean.
	flagListEmail = ""
	flagListGroups = nil
	flagListCursor = ""
	flagListPairing = ""

	return pairings, items, func() {
		pairingStore = oldPairings
		crawlRunner = oldRunner
		listingService = oldListing
	}
}

// runCLI executes the root command with the given arguments.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	out, err := runCLI(t, "version")
	assert.NoError(t, err)
	assert.Contains(t, out, "corpus version test-version-1.0.0")
}

func TestPairingsAddAndList(t *testing.T) {
	pairings, _, cleanup := setupCLITest(t)
	defer cleanup()

	out, err := runCLI(t, "pairings", "add",
		"--type", "localdir", "--name", "Docs",
		"--access", "sync", "--set", "path=/srv/docs")
	require.NoError(t, err)
	assert.Contains(t, out, "Added pairing")

	all, err := pairings.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "localdir", all[0].ConnectorType)
	assert.Equal(t, domain.AccessTypeSync, all[0].AccessType)
	assert.Equal(t, "/srv/docs", all[0].Config["path"])
	assert.Equal(t, domain.StatusActive, all[0].Status)

	out, err = runCLI(t, "pairings", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Docs")
}

func TestPairingsAddRejectsBadAccess(t *testing.T) {
	_, _, cleanup := setupCLITest(t)
	defer cleanup()

	_, err := runCLI(t, "pairings", "add", "--type", "localdir", "--name", "X", "--access", "open")
	assert.Error(t, err)
}

func TestPairingsLifecycleCommands(t *testing.T) {
	pairings, _, cleanup := setupCLITest(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, pairings.Save(ctx, domain.Pairing{
		ID: "p1", ConnectorType: "localdir", Name: "Docs",
		AccessType: domain.AccessTypePublic, Status: domain.StatusActive,
	}))

	_, err := runCLI(t, "pairings", "pause", "p1")
	require.NoError(t, err)
	got, err := pairings.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaused, got.Status)

	_, err = runCLI(t, "pairings", "resume", "p1")
	require.NoError(t, err)
	got, err = pairings.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, got.Status)

	_, err = runCLI(t, "pairings", "remove", "p1")
	require.NoError(t, err)
	got, err = pairings.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDeleting, got.Status)

	_, err = runCLI(t, "pairings", "pause", "missing")
	assert.Error(t, err)
}

func TestCrawlCmd_RunsLocaldir(t *testing.T) {
	pairings, items, cleanup := setupCLITest(t)
	defer cleanup()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "note.txt"), []byte("hello"), 0644))

	require.NoError(t, pairings.Save(context.Background(), domain.Pairing{
		ID: "p1", ConnectorType: "localdir", Name: "Docs",
		Config:     map[string]string{"path": root},
		AccessType: domain.AccessTypePublic, Status: domain.StatusActive,
	}))

	out, err := runCLI(t, "crawl", "p1")
	require.NoError(t, err)
	assert.Contains(t, out, "Ingested 1 items")
	assert.Equal(t, 1, items.ItemCount())
}

func TestCrawlCmd_UnknownPairing(t *testing.T) {
	_, _, cleanup := setupCLITest(t)
	defer cleanup()

	_, err := runCLI(t, "crawl", "missing")
	assert.Error(t, err)
}

func TestListItemsCmd_PrintsPageAndCursor(t *testing.T) {
	pairings, items, cleanup := setupCLITest(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, pairings.Save(ctx, domain.Pairing{
		ID: "p1", ConnectorType: "localdir", Name: "Docs",
		AccessType: domain.AccessTypePublic, Status: domain.StatusActive,
	}))

	parent := "node-1"
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"first", "second", "third"} {
		item := domain.ContentItem{
			ID:                "doc-" + name,
			PairingID:         "p1",
			DisplayName:       name,
			Kind:              domain.KindFile,
			Sections:          []domain.Section{{Text: name}},
			ParentContainerID: &parent,
			UpdatedAt:         base.Add(time.Duration(i) * time.Hour),
			SyncedAt:          base,
		}
		require.NoError(t, items.UpsertContentItem(ctx, &item))
	}

	out, err := runCLI(t, "list", "items", "node-1", "--page-size", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "third")
	assert.Contains(t, out, "second")
	assert.NotContains(t, out, "first")
	assert.Contains(t, out, "--cursor")
}

func TestListItemsCmd_FoldersFirstFromConfig(t *testing.T) {
	pairings, items, cleanup := setupCLITest(t)
	defer cleanup()

	oldConfig := configStore
	cfg, err := configfile.NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, cfg.Set(configfile.KeyFoldersFirst, true))
	configStore = cfg
	defer func() { configStore = oldConfig }()

	ctx := context.Background()
	require.NoError(t, pairings.Save(ctx, domain.Pairing{
		ID: "p1", ConnectorType: "localdir", Name: "Docs",
		AccessType: domain.AccessTypePublic, Status: domain.StatusActive,
	}))

	parent := "node-1"
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	folder := domain.ContentItem{
		ID: "sub-folder", PairingID: "p1", DisplayName: "Sub",
		Kind: domain.KindFolder, Sections: []domain.Section{{Text: "Sub"}},
		ParentContainerID: &parent,
		UpdatedAt:         base, SyncedAt: base,
	}
	file := domain.ContentItem{
		ID: "newer-file", PairingID: "p1", DisplayName: "Newer",
		Kind: domain.KindFile, Sections: []domain.Section{{Text: "x"}},
		ParentContainerID: &parent,
		UpdatedAt:         base.Add(time.Hour), SyncedAt: base,
	}
	require.NoError(t, items.UpsertContentItem(ctx, &folder))
	require.NoError(t, items.UpsertContentItem(ctx, &file))

	// No --folders-first flag: the config default applies, so the older
	// folder row sorts ahead of the newer file row.
	out, err := runCLI(t, "list", "items", "node-1")
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "sub-folder"), strings.Index(out, "newer-file"))
}

func TestCrawlConfigFromSettings(t *testing.T) {
	cfg, err := configfile.NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, cfg.Set(configfile.KeyMaxInvocations, 25))
	require.NoError(t, cfg.Set(configfile.KeyInvocationTimeout, "15m"))
	require.NoError(t, cfg.Set(configfile.KeyInvocationsPerSecond, 2.5))
	require.NoError(t, cfg.Set(configfile.KeyStrict, false))

	got, err := crawlConfigFrom(cfg)
	require.NoError(t, err)
	assert.Equal(t, 25, got.MaxInvocations)
	assert.Equal(t, 15*time.Minute, got.InvocationTimeout)
	assert.Equal(t, 2.5, got.InvocationsPerSecond)
	assert.False(t, got.Strict)
}

func TestCrawlConfigFromSettingsDefaults(t *testing.T) {
	cfg, err := configfile.NewConfigStore(t.TempDir())
	require.NoError(t, err)

	got, err := crawlConfigFrom(cfg)
	require.NoError(t, err)
	assert.Equal(t, services.DefaultCrawlConfig(), got)
}

func TestCrawlConfigFromSettingsBadTimeout(t *testing.T) {
	cfg, err := configfile.NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, cfg.Set(configfile.KeyInvocationTimeout, "soon"))

	_, err = crawlConfigFrom(cfg)
	assert.Error(t, err)
}

func TestListItemsCmd_RejectsBadCursor(t *testing.T) {
	_, _, cleanup := setupCLITest(t)
	defer cleanup()

	_, err := runCLI(t, "list", "items", "node-1", "--cursor", "garbage")
	assert.Error(t, err)
}

func TestListNodesCmd_Empty(t *testing.T) {
	_, _, cleanup := setupCLITest(t)
	defer cleanup()

	out, err := runCLI(t, "list", "nodes")
	require.NoError(t, err)
	assert.Contains(t, out, "No visible nodes")
}

func TestParseWindowStart(t *testing.T) {
	end := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	got, err := parseWindowStart("2026-02-01T00:00:00Z", end)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = parseWindowStart("24h", end)
	require.NoError(t, err)
	assert.Equal(t, end.Add(-24*time.Hour), got)

	_, err = parseWindowStart("yesterday", end)
	assert.Error(t, err)
}
