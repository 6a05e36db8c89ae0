package aggregates

import (
	"testing"

	"medatlas-backend/domain/core/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chainGraph builds a -> b -> c -> d with an extra back edge d -> a,
// forming a cycle.
func chainGraph(t *testing.T) *Graph {
	t.Helper()
	graph := NewGraph("g1")
	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, graph.AddNode(mustNode(t, id, entities.NodeTypeObservation, id)))
	}
	require.NoError(t, graph.AddEdge(mustEdge(t, "ab", "a", "b", entities.EdgeTypePrecedes)))
	require.NoError(t, graph.AddEdge(mustEdge(t, "bc", "b", "c", entities.EdgeTypePrecedes)))
	require.NoError(t, graph.AddEdge(mustEdge(t, "cd", "c", "d", entities.EdgeTypePrecedes)))
	require.NoError(t, graph.AddEdge(mustEdge(t, "da", "d", "a", entities.EdgeTypePrecedes)))
	return graph
}

func depthsByID(result []TraversalNode) map[string]int {
	out := make(map[string]int, len(result))
	for _, tn := range result {
		out[tn.Node.ID.String()] = tn.Depth
	}
	return out
}

func TestTraverse_CycleTerminatesAndVisitsOnce(t *testing.T) {
	graph := chainGraph(t)

	result := graph.Traverse(nodeID(t, "a"), DirectionOut, 10)

	require.Len(t, result, 4)
	depths := depthsByID(result)
	assert.Equal(t, 0, depths["a"])
	assert.Equal(t, 1, depths["b"])
	assert.Equal(t, 2, depths["c"])
	assert.Equal(t, 3, depths["d"])
}

func TestTraverse_MaxDepthFrontierEmittedNotExpanded(t *testing.T) {
	graph := chainGraph(t)

	result := graph.Traverse(nodeID(t, "a"), DirectionOut, 2)

	depths := depthsByID(result)
	require.Len(t, result, 3)
	assert.Equal(t, 2, depths["c"])
	_, reachedD := depths["d"]
	assert.False(t, reachedD)
}

func TestTraverse_MaxDepthZeroReturnsOnlyStart(t *testing.T) {
	graph := chainGraph(t)

	result := graph.Traverse(nodeID(t, "a"), DirectionBoth, 0)

	require.Len(t, result, 1)
	assert.Equal(t, "a", result[0].Node.ID.String())
	assert.Equal(t, 0, result[0].Depth)
}

func TestTraverse_AbsentStartYieldsEmpty(t *testing.T) {
	graph := chainGraph(t)

	result := graph.Traverse(nodeID(t, "ghost"), DirectionBoth, 3)

	assert.Empty(t, result)
}

func TestTraverse_BothDirectionFollowsReverseEdges(t *testing.T) {
	graph := chainGraph(t)

	// Following "in" edges from a walks the cycle backwards: d at depth 1.
	result := graph.Traverse(nodeID(t, "a"), DirectionIn, 1)

	depths := depthsByID(result)
	require.Len(t, result, 2)
	assert.Equal(t, 1, depths["d"])
}
