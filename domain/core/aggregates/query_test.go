package aggregates

import (
	"testing"
	"time"

	"medatlas-backend/domain/core/entities"
	"medatlas-backend/domain/core/valueobjects"
	pkgerrors "medatlas-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(t *testing.T, value string) *time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return &parsed
}

func patientGraph(t *testing.T) *Graph {
	t.Helper()
	graph := NewGraph("g1")

	lab := mustNode(t, "lab-1", entities.NodeTypeLab, "CRP")
	lab.Properties[entities.PropPatientID] = "p1"
	lab.Properties["isAbnormal"] = true
	lab.Timestamp = ts(t, "2024-03-02T08:00:00Z")
	require.NoError(t, graph.AddNode(lab))

	enc := mustNode(t, "enc-1", entities.NodeTypeEncounter, "ED visit")
	enc.Properties[entities.PropPatientID] = "p1"
	enc.Timestamp = ts(t, "2024-03-01T18:00:00Z")
	require.NoError(t, graph.AddNode(enc))

	cond := mustNode(t, "cond-1", entities.NodeTypeCondition, "Pneumonia")
	cond.Properties[entities.PropPatientID] = "p1"
	require.NoError(t, graph.AddNode(cond))

	other := mustNode(t, "lab-9", entities.NodeTypeLab, "WBC")
	other.Properties[entities.PropPatientID] = "p2"
	other.Timestamp = ts(t, "2024-03-02T09:00:00Z")
	require.NoError(t, graph.AddNode(other))

	return graph
}

func TestQueryNodes_EmptyFilterSelectsAll(t *testing.T) {
	graph := patientGraph(t)

	nodes, err := graph.QueryNodes(NodeFilter{})
	require.NoError(t, err)
	assert.Len(t, nodes, 4)
}

func TestQueryNodes_TypeListIsOrMatched(t *testing.T) {
	graph := patientGraph(t)

	nodes, err := graph.QueryNodes(NodeFilter{
		Types: []entities.NodeType{entities.NodeTypeLab, entities.NodeTypeEncounter},
	})
	require.NoError(t, err)
	assert.Len(t, nodes, 3)
}

func TestQueryNodes_PatientAndType(t *testing.T) {
	graph := patientGraph(t)

	nodes, err := graph.QueryNodes(NodeFilter{
		Types:     []entities.NodeType{entities.NodeTypeLab},
		PatientID: "p1",
	})
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "lab-1", nodes[0].ID.String())
}

func TestQueryNodes_DateRangeExcludesTimestampless(t *testing.T) {
	graph := patientGraph(t)

	nodes, err := graph.QueryNodes(NodeFilter{
		PatientID: "p1",
		DateRange: &valueobjects.DateRange{
			From: ts(t, "2024-03-01T00:00:00Z"),
			To:   ts(t, "2024-03-03T00:00:00Z"),
		},
	})
	require.NoError(t, err)
	// cond-1 has no timestamp and must not appear.
	assert.Len(t, nodes, 2)
	for _, node := range nodes {
		assert.True(t, node.HasTimestamp())
	}
}

func TestQueryNodes_DateRangeBoundsAreInclusive(t *testing.T) {
	graph := patientGraph(t)

	nodes, err := graph.QueryNodes(NodeFilter{
		PatientID: "p1",
		DateRange: &valueobjects.DateRange{
			From: ts(t, "2024-03-02T08:00:00Z"),
			To:   ts(t, "2024-03-02T08:00:00Z"),
		},
	})
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "lab-1", nodes[0].ID.String())
}

func TestQueryNodes_PropertyEqualityAcrossNumericSkew(t *testing.T) {
	graph := NewGraph("g1")
	node := mustNode(t, "v1", entities.NodeTypeVital, "HR")
	node.Properties["bpm"] = 92 // programmatic int
	require.NoError(t, graph.AddNode(node))

	// Filter value as decoded from JSON: float64.
	nodes, err := graph.QueryNodes(NodeFilter{Properties: map[string]any{"bpm": 92.0}})
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
}

func TestQueryNodes_StructuredPropertyEquality(t *testing.T) {
	graph := NewGraph("g1")
	node := mustNode(t, "n1", entities.NodeTypeFinding, "opacity")
	node.Properties["tags"] = []any{"a", "b"}
	node.Properties["coding"] = map[string]any{"system": "snomed", "code": "233604007"}
	require.NoError(t, graph.AddNode(node))

	// Slice- and map-valued properties come straight out of JSON decoding;
	// they must match structurally, not crash the scan.
	nodes, err := graph.QueryNodes(NodeFilter{Properties: map[string]any{"tags": []any{"a", "b"}}})
	require.NoError(t, err)
	assert.Len(t, nodes, 1)

	nodes, err = graph.QueryNodes(NodeFilter{
		Properties: map[string]any{"coding": map[string]any{"system": "snomed", "code": "233604007"}},
	})
	require.NoError(t, err)
	assert.Len(t, nodes, 1)

	nodes, err = graph.QueryNodes(NodeFilter{Properties: map[string]any{"tags": []any{"a"}}})
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestQueryEdges_StructuredPropertyEquality(t *testing.T) {
	graph := NewGraph("g1")
	require.NoError(t, graph.AddNode(mustNode(t, "a", entities.NodeTypeFinding, "finding")))
	require.NoError(t, graph.AddNode(mustNode(t, "b", entities.NodeTypeLab, "lab")))

	edge := mustEdge(t, "e1", "a", "b", entities.EdgeTypeHasEvidence)
	edge.Properties["sources"] = []any{"lis", "fhir"}
	require.NoError(t, graph.AddEdge(edge))

	edges, err := graph.QueryEdges(EdgeFilter{Properties: map[string]any{"sources": []any{"lis", "fhir"}}})
	require.NoError(t, err)
	assert.Len(t, edges, 1)

	edges, err = graph.QueryEdges(EdgeFilter{Properties: map[string]any{"sources": []any{"fhir"}}})
	require.NoError(t, err)
	assert.Empty(t, edges)
}

func TestQueryNodes_BooleanProperty(t *testing.T) {
	graph := patientGraph(t)

	nodes, err := graph.QueryNodes(NodeFilter{Properties: map[string]any{"isAbnormal": true}})
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "lab-1", nodes[0].ID.String())
}

func TestQueryNodes_InvalidFilterRejected(t *testing.T) {
	graph := patientGraph(t)

	_, err := graph.QueryNodes(NodeFilter{Types: []entities.NodeType{"bogus"}})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsInvalidFilter(err))

	_, err = graph.QueryNodes(NodeFilter{
		DateRange: &valueobjects.DateRange{
			From: ts(t, "2024-03-03T00:00:00Z"),
			To:   ts(t, "2024-03-01T00:00:00Z"),
		},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsInvalidFilter(err))
}

func TestQueryEdges_ByTypeAndEndpoint(t *testing.T) {
	graph := patientGraph(t)
	require.NoError(t, graph.AddEdge(mustEdge(t, "e1", "cond-1", "lab-1", entities.EdgeTypeHasEvidence)))
	require.NoError(t, graph.AddEdge(mustEdge(t, "e2", "cond-1", "enc-1", entities.EdgeTypeObservedIn)))

	edges, err := graph.QueryEdges(EdgeFilter{Types: []entities.EdgeType{entities.EdgeTypeHasEvidence}})
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "e1", edges[0].ID)

	edges, err = graph.QueryEdges(EdgeFilter{Source: "cond-1"})
	require.NoError(t, err)
	assert.Len(t, edges, 2)
}
