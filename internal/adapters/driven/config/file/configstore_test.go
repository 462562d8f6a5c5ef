package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupConfigStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestConfigStoreSetAndGet(t *testing.T) {
	store := setupConfigStore(t)

	require.NoError(t, store.Set(KeyEdition, "basic"))
	require.NoError(t, store.Set(KeyPageSize, 50))
	require.NoError(t, store.Set(KeyFoldersFirst, true))

	assert.Equal(t, "basic", store.GetString(KeyEdition))
	assert.Equal(t, 50, store.GetInt(KeyPageSize))
	assert.True(t, store.GetBool(KeyFoldersFirst))

	_, ok := store.Get("nope")
	assert.False(t, ok)
	assert.Equal(t, "", store.GetString("nope"))
	assert.Equal(t, 0, store.GetInt("nope"))
}

func TestConfigStoreGetFloat(t *testing.T) {
	dir := t.TempDir()
	content := `
[crawl]
invocations_per_second = 2.5
max_invocations = 10
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, 2.5, store.GetFloat(KeyInvocationsPerSecond))
	// TOML integers convert.
	assert.Equal(t, 10.0, store.GetFloat(KeyMaxInvocations))
	assert.Equal(t, 0.0, store.GetFloat("nope"))
}

func TestConfigStorePersistsAcrossLoads(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set(KeyDataDir, "/var/lib/corpus"))
	require.NoError(t, store.Set(KeyMaxInvocations, 250))

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/corpus", reopened.GetString(KeyDataDir))
	assert.Equal(t, 250, reopened.GetInt(KeyMaxInvocations))
}

func TestConfigStoreFlattensNestedTables(t *testing.T) {
	dir := t.TempDir()
	content := `
[listing]
page_size = 10
folders_first = true

[groups]
"dev@example.com" = ["grp-eng", "grp-all"]
"ops@example.com" = ["grp-ops"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, 10, store.GetInt(KeyPageSize))
	assert.True(t, store.GetBool(KeyFoldersFirst))
	assert.Equal(t, []string{"grp-eng", "grp-all"}, store.GetStringSlice(`groups.dev@example.com`))

	groups := store.StaticGroups()
	require.Len(t, groups, 2)
	assert.Equal(t, []string{"grp-ops"}, groups["ops@example.com"])
}

func TestConfigStoreEmptyDirStartsEmpty(t *testing.T) {
	store := setupConfigStore(t)
	assert.Empty(t, store.StaticGroups())
	assert.NotEmpty(t, store.Path())
}
