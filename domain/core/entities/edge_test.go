package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEdge_RequiresEndpointsAndType(t *testing.T) {
	_, err := NewEdge("e1", mustNodeID(t, "a"), mustNodeID(t, "b"), "")
	assert.Error(t, err)
}

func TestEdgeNormalize_DecodedEdge(t *testing.T) {
	var edge Edge
	require.NoError(t, json.Unmarshal([]byte(`{"id":"e1","source":"a","target":"b","type":"has-evidence"}`), &edge))
	require.True(t, edge.CreatedAt.IsZero())

	edge.Normalize()

	assert.NotNil(t, edge.Evidence)
	assert.False(t, edge.CreatedAt.IsZero())
}
