package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestContainerNodeValidate(t *testing.T) {
	node := ContainerNode{
		RawID:       "folder-1",
		PairingID:   "pairing-1",
		DisplayName: "Engineering",
		NodeType:    "folder",
	}
	assert.NoError(t, node.Validate())
}

func TestContainerNodeValidateSelfParent(t *testing.T) {
	node := ContainerNode{RawID: "folder-1", RawParentID: strPtr("folder-1")}
	err := node.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestValidateNodeForestAcyclic(t *testing.T) {
	nodes := []ContainerNode{
		{RawID: "root-a"},
		{RawID: "child-a", RawParentID: strPtr("root-a")},
		{RawID: "grandchild-a", RawParentID: strPtr("child-a")},
		{RawID: "root-b"},
	}
	assert.Nil(t, ValidateNodeForest(nodes))
}

func TestValidateNodeForestDetectsCycle(t *testing.T) {
	nodes := []ContainerNode{
		{RawID: "a", RawParentID: strPtr("b")},
		{RawID: "b", RawParentID: strPtr("c")},
		{RawID: "c", RawParentID: strPtr("a")},
		{RawID: "ok", RawParentID: strPtr("a")},
	}
	cyclic := ValidateNodeForest(nodes)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, cyclic)
}

func TestValidateNodeForestExternalParentIsRoot(t *testing.T) {
	// A parent outside the batch cannot form a detectable cycle.
	nodes := []ContainerNode{
		{RawID: "child", RawParentID: strPtr("not-in-batch")},
	}
	assert.Nil(t, ValidateNodeForest(nodes))
}

func TestNewDummyCheckpoint(t *testing.T) {
	cp := NewDummyCheckpoint()
	assert.True(t, cp.HasMore)
	assert.Empty(t, cp.Cursor)
}

func TestPairingCanCrawl(t *testing.T) {
	p := Pairing{Status: StatusActive}
	assert.True(t, p.CanCrawl())

	p.Status = StatusPaused
	assert.False(t, p.CanCrawl())

	p.Status = StatusDeleting
	assert.False(t, p.CanCrawl())
}
