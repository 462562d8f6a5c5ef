package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentItemValidate(t *testing.T) {
	item := ContentItem{
		ID:          "item-1",
		PairingID:   "pairing-1",
		DisplayName: "Quarterly Report",
		Kind:        KindFile,
		Sections:    []Section{{Text: "hello"}},
		UpdatedAt:   time.Now(),
	}
	assert.NoError(t, item.Validate())
}

func TestContentItemValidateEmptyID(t *testing.T) {
	item := ContentItem{Sections: []Section{{Text: "hello"}}}
	err := item.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestContentItemValidateNoSections(t *testing.T) {
	item := ContentItem{ID: "item-1"}
	err := item.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNormalizeMetadataScalars(t *testing.T) {
	out, err := NormalizeMetadata(map[string]any{
		"author":  "alice",
		"stars":   42,
		"ratio":   1.5,
		"pinned":  true,
		"dropped": nil,
	})
	require.NoError(t, err)

	assert.Equal(t, "alice", out["author"])
	assert.Equal(t, "42", out["stars"])
	assert.Equal(t, "1.5", out["ratio"])
	assert.Equal(t, "true", out["pinned"])
	assert.NotContains(t, out, "dropped")
}

func TestNormalizeMetadataLists(t *testing.T) {
	out, err := NormalizeMetadata(map[string]any{
		"tags":   []string{"a", "b"},
		"counts": []any{1, 2, 3},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, out["tags"])
	assert.Equal(t, []string{"1", "2", "3"}, out["counts"])
}

func TestNormalizeMetadataRejectsNested(t *testing.T) {
	_, err := NormalizeMetadata(map[string]any{
		"nested": map[string]any{"a": 1},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNormalizeMetadataEmpty(t *testing.T) {
	out, err := NormalizeMetadata(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}
