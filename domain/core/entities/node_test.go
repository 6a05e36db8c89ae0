package entities

import (
	"encoding/json"
	"testing"

	"medatlas-backend/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNodeID(t *testing.T, id string) valueobjects.NodeID {
	t.Helper()
	out, err := valueobjects.NewNodeIDFromString(id)
	require.NoError(t, err)
	return out
}

func TestNewNode_RejectsUnknownType(t *testing.T) {
	_, err := NewNode("n1", "bogus", "label")
	assert.Error(t, err)
}

func TestNewNode_GeneratesIDWhenEmpty(t *testing.T) {
	node, err := NewNode("", NodeTypeFinding, "finding")
	require.NoError(t, err)
	assert.False(t, node.ID.IsZero())
	assert.False(t, node.CreatedAt.IsZero())
}

func TestNormalize_DecodedNode(t *testing.T) {
	// A node decoded straight from a request body skips NewNode, so
	// Normalize must fill the collections and the record-creation time.
	var node Node
	require.NoError(t, json.Unmarshal([]byte(`{"id":"lab-1","type":"lab","label":"CRP"}`), &node))
	require.True(t, node.CreatedAt.IsZero())

	node.Normalize()

	assert.NotNil(t, node.Properties)
	assert.NotNil(t, node.Evidence)
	assert.False(t, node.CreatedAt.IsZero())
}

func TestNormalize_KeepsExistingCreatedAt(t *testing.T) {
	node, err := NewNode("n1", NodeTypeLab, "CRP")
	require.NoError(t, err)
	created := node.CreatedAt

	node.Normalize()
	assert.Equal(t, created, node.CreatedAt)
}
