package services

import (
	"testing"
	"time"

	"medatlas-backend/domain/core/aggregates"
	"medatlas-backend/domain/core/entities"
	"medatlas-backend/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func buildNode(t *testing.T, id string, nodeType entities.NodeType, label string) *entities.Node {
	t.Helper()
	node, err := entities.NewNode(id, nodeType, label)
	require.NoError(t, err)
	return node
}

func buildEdge(t *testing.T, id, source, target string, edgeType entities.EdgeType) *entities.Edge {
	t.Helper()
	sourceID, err := valueobjects.NewNodeIDFromString(source)
	require.NoError(t, err)
	targetID, err := valueobjects.NewNodeIDFromString(target)
	require.NoError(t, err)
	edge, err := entities.NewEdge(id, sourceID, targetID, edgeType)
	require.NoError(t, err)
	return edge
}

func at(t *testing.T, value string) *time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return &parsed
}

func historyGraph(t *testing.T) *aggregates.Graph {
	t.Helper()
	graph := aggregates.NewGraph("g1")

	enc := buildNode(t, "enc-1", entities.NodeTypeEncounter, "ED visit")
	enc.Properties[entities.PropPatientID] = "p1"
	enc.Timestamp = at(t, "2024-03-01T18:00:00Z")
	require.NoError(t, graph.AddNode(enc))

	lab := buildNode(t, "lab-1", entities.NodeTypeLab, "CRP")
	lab.Properties[entities.PropPatientID] = "p1"
	lab.Properties["summary"] = "elevated at 94 mg/L"
	lab.Timestamp = at(t, "2024-03-02T08:00:00Z")
	lab.Evidence = []valueobjects.EvidenceRef{{Source: valueobjects.SourceLab, ID: "lis-123"}}
	require.NoError(t, graph.AddNode(lab))

	cond := buildNode(t, "cond-1", entities.NodeTypeCondition, "Pneumonia")
	cond.Properties[entities.PropPatientID] = "p1"
	require.NoError(t, graph.AddNode(cond))

	foreign := buildNode(t, "lab-9", entities.NodeTypeLab, "WBC")
	foreign.Properties[entities.PropPatientID] = "p2"
	foreign.Timestamp = at(t, "2024-03-02T07:00:00Z")
	require.NoError(t, graph.AddNode(foreign))

	require.NoError(t, graph.AddEdge(buildEdge(t, "e1", "lab-1", "enc-1", entities.EdgeTypeObservedIn)))
	require.NoError(t, graph.AddEdge(buildEdge(t, "e2", "cond-1", "lab-1", entities.EdgeTypeHasEvidence)))

	return graph
}

func TestGetTimeline_ChronologicalOrder(t *testing.T) {
	svc := NewTimelineService(zap.NewNop())
	graph := historyGraph(t)

	timeline, err := svc.GetTimeline(graph, "p1", nil)
	require.NoError(t, err)

	// cond-1 has no timestamp and is excluded; the rest sort ascending.
	require.Len(t, timeline, 2)
	assert.Equal(t, "enc-1", timeline[0].ID)
	assert.Equal(t, "lab-1", timeline[1].ID)
}

func TestGetTimeline_EventFields(t *testing.T) {
	svc := NewTimelineService(zap.NewNop())
	graph := historyGraph(t)

	timeline, err := svc.GetTimeline(graph, "p1", nil)
	require.NoError(t, err)
	require.Len(t, timeline, 2)

	lab := timeline[1]
	assert.Equal(t, entities.NodeTypeLab, lab.Type)
	assert.Equal(t, "CRP", lab.Title)
	assert.Equal(t, "elevated at 94 mg/L", lab.Summary)
	require.Len(t, lab.Evidence, 1)
	assert.Equal(t, "lis-123", lab.Evidence[0].ID)
	// Related ids come from both edge directions, sorted.
	assert.Equal(t, []string{"cond-1", "enc-1"}, lab.RelatedNodeIDs)
}

func TestGetTimeline_DateRangeBounds(t *testing.T) {
	svc := NewTimelineService(zap.NewNop())
	graph := historyGraph(t)

	timeline, err := svc.GetTimeline(graph, "p1", &valueobjects.DateRange{
		From: at(t, "2024-03-02T00:00:00Z"),
	})
	require.NoError(t, err)
	require.Len(t, timeline, 1)
	assert.Equal(t, "lab-1", timeline[0].ID)
}

func TestGetTimeline_ScopedToPatient(t *testing.T) {
	svc := NewTimelineService(zap.NewNop())
	graph := historyGraph(t)

	timeline, err := svc.GetTimeline(graph, "p2", nil)
	require.NoError(t, err)
	require.Len(t, timeline, 1)
	assert.Equal(t, "lab-9", timeline[0].ID)
}

func TestGetTimeline_UnknownPatientEmpty(t *testing.T) {
	svc := NewTimelineService(zap.NewNop())
	graph := historyGraph(t)

	timeline, err := svc.GetTimeline(graph, "nobody", nil)
	require.NoError(t, err)
	assert.Empty(t, timeline)
}

func TestGetTimeline_StableOrderForEqualTimestamps(t *testing.T) {
	svc := NewTimelineService(zap.NewNop())
	graph := aggregates.NewGraph("g2")

	same := at(t, "2024-03-02T08:00:00Z")
	for _, id := range []string{"v1", "v2", "v3"} {
		node := buildNode(t, id, entities.NodeTypeVital, id)
		node.Properties[entities.PropPatientID] = "p1"
		ts := *same
		node.Timestamp = &ts
		require.NoError(t, graph.AddNode(node))
	}

	first, err := svc.GetTimeline(graph, "p1", nil)
	require.NoError(t, err)
	second, err := svc.GetTimeline(graph, "p1", nil)
	require.NoError(t, err)

	require.Len(t, first, 3)
	// Equal timestamps keep their pre-sort order; the sort itself must not
	// reshuffle between runs over identical input order.
	for i := range first {
		assert.Equal(t, first[i].Timestamp, second[i].Timestamp)
	}
}
