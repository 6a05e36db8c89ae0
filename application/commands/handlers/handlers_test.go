package handlers

import (
	"context"
	"testing"

	"medatlas-backend/application/commands"
	"medatlas-backend/domain/core/aggregates"
	"medatlas-backend/domain/core/entities"
	"medatlas-backend/domain/core/valueobjects"
	"medatlas-backend/domain/events"
	"medatlas-backend/infrastructure/messaging/eventbridge"
	"medatlas-backend/infrastructure/persistence/memory"
	pkgerrors "medatlas-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHandlers(t *testing.T) (*GraphCommandHandler, *NodeCommandHandler, *memory.GraphRepository) {
	t.Helper()
	repo := memory.NewGraphRepository(zap.NewNop())
	bus := eventbridge.NewNoopPublisher()
	logger := zap.NewNop()
	return NewGraphCommandHandler(repo, bus, logger), NewNodeCommandHandler(repo, bus, logger), repo
}

func testNode(t *testing.T, id string, nodeType entities.NodeType, label string) *entities.Node {
	t.Helper()
	node, err := entities.NewNode(id, nodeType, label)
	require.NoError(t, err)
	return node
}

func testEdge(t *testing.T, id, source, target string, edgeType entities.EdgeType) *entities.Edge {
	t.Helper()
	sourceID, err := valueobjects.NewNodeIDFromString(source)
	require.NoError(t, err)
	targetID, err := valueobjects.NewNodeIDFromString(target)
	require.NoError(t, err)
	edge, err := entities.NewEdge(id, sourceID, targetID, edgeType)
	require.NoError(t, err)
	return edge
}

func TestCreateGraph_GeneratesIDAndPersists(t *testing.T) {
	ctx := context.Background()
	graphHandler, _, repo := newTestHandlers(t)

	var created string
	require.NoError(t, graphHandler.Handle(ctx, commands.CreateGraphCommand{CreatedID: &created}))
	require.NotEmpty(t, created)

	exists, err := repo.Exists(ctx, created)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCreateGraph_DuplicateIDConflicts(t *testing.T) {
	ctx := context.Background()
	graphHandler, _, _ := newTestHandlers(t)

	require.NoError(t, graphHandler.Handle(ctx, commands.CreateGraphCommand{GraphID: "g1"}))
	err := graphHandler.Handle(ctx, commands.CreateGraphCommand{GraphID: "g1"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))
}

func TestUpsertNode_CreatesGraphOnFirstWrite(t *testing.T) {
	ctx := context.Background()
	_, nodeHandler, repo := newTestHandlers(t)

	cmd := commands.UpsertNodeCommand{
		GraphID: "g1",
		Node:    testNode(t, "n1", entities.NodeTypeFinding, "finding"),
	}
	require.NoError(t, nodeHandler.Handle(ctx, cmd))

	graph, err := repo.FindByID(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 1, graph.NodeCount())
}

func TestCreateEdge_DanglingReferenceRejected(t *testing.T) {
	ctx := context.Background()
	_, nodeHandler, repo := newTestHandlers(t)

	require.NoError(t, nodeHandler.Handle(ctx, commands.UpsertNodeCommand{
		GraphID: "g1",
		Node:    testNode(t, "n1", entities.NodeTypeFinding, "finding"),
	}))

	err := nodeHandler.Handle(ctx, commands.CreateEdgeCommand{
		GraphID: "g1",
		Edge:    testEdge(t, "e1", "n1", "missing", entities.EdgeTypeHasEvidence),
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsDanglingReference(err))

	// The rejected edge must not be persisted.
	graph, err := repo.FindByID(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 0, graph.EdgeCount())
}

func TestDeleteNode_CascadePersisted(t *testing.T) {
	ctx := context.Background()
	_, nodeHandler, repo := newTestHandlers(t)

	require.NoError(t, nodeHandler.Handle(ctx, commands.UpsertNodeCommand{
		GraphID: "g1",
		Node:    testNode(t, "n1", entities.NodeTypeFinding, "finding"),
	}))
	require.NoError(t, nodeHandler.Handle(ctx, commands.UpsertNodeCommand{
		GraphID: "g1",
		Node:    testNode(t, "n2", entities.NodeTypeLab, "lab"),
	}))
	require.NoError(t, nodeHandler.Handle(ctx, commands.CreateEdgeCommand{
		GraphID: "g1",
		Edge:    testEdge(t, "e1", "n1", "n2", entities.EdgeTypeHasEvidence),
	}))

	require.NoError(t, nodeHandler.Handle(ctx, commands.DeleteNodeCommand{GraphID: "g1", NodeID: "n1"}))

	graph, err := repo.FindByID(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 1, graph.NodeCount())
	assert.Equal(t, 0, graph.EdgeCount())
}

func TestDeleteNode_MissingIsNotFound(t *testing.T) {
	ctx := context.Background()
	graphHandler, nodeHandler, _ := newTestHandlers(t)
	require.NoError(t, graphHandler.Handle(ctx, commands.CreateGraphCommand{GraphID: "g1"}))

	err := nodeHandler.Handle(ctx, commands.DeleteNodeCommand{GraphID: "g1", NodeID: "ghost"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestImportGraph_ReplaceSwapsState(t *testing.T) {
	ctx := context.Background()
	graphHandler, nodeHandler, repo := newTestHandlers(t)

	require.NoError(t, nodeHandler.Handle(ctx, commands.UpsertNodeCommand{
		GraphID: "g1",
		Node:    testNode(t, "old", entities.NodeTypeNote, "old note"),
	}))

	snapshot := aggregates.NewGraph("g1")
	require.NoError(t, snapshot.AddNode(testNode(t, "new", entities.NodeTypeLab, "new lab")))

	require.NoError(t, graphHandler.Handle(ctx, commands.ImportGraphCommand{
		GraphID: "g1",
		Data:    snapshot.Serialize(),
		Replace: true,
	}))

	graph, err := repo.FindByID(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 1, graph.NodeCount())
	_, ok := graph.GetNode(mustID(t, "new"))
	assert.True(t, ok)
}

type recordingEventBus struct {
	published []events.DomainEvent
}

func (b *recordingEventBus) Publish(ctx context.Context, event events.DomainEvent) error {
	b.published = append(b.published, event)
	return nil
}

func (b *recordingEventBus) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	b.published = append(b.published, batch...)
	return nil
}

func TestImportGraph_PublishesImportEvent(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewGraphRepository(zap.NewNop())
	eventBus := &recordingEventBus{}
	graphHandler := NewGraphCommandHandler(repo, eventBus, zap.NewNop())

	data := &aggregates.GraphData{
		Nodes: []*entities.Node{
			testNode(t, "a", entities.NodeTypeFinding, "finding"),
			testNode(t, "b", entities.NodeTypeLab, "lab"),
		},
		Edges: []*entities.Edge{
			testEdge(t, "e1", "a", "b", entities.EdgeTypeHasEvidence),
		},
	}
	require.NoError(t, graphHandler.Handle(ctx, commands.ImportGraphCommand{GraphID: "g1", Data: data}))

	var imported *events.GraphImported
	for _, event := range eventBus.published {
		if e, ok := event.(events.GraphImported); ok {
			imported = &e
		}
	}
	require.NotNil(t, imported)
	assert.Equal(t, "graph.imported", imported.GetEventType())
	assert.Equal(t, 2, imported.NodeCount)
	assert.Equal(t, 1, imported.EdgeCount)
}

func TestImportGraph_MergeAddsNodesThenEdges(t *testing.T) {
	ctx := context.Background()
	graphHandler, _, repo := newTestHandlers(t)

	data := &aggregates.GraphData{
		Nodes: []*entities.Node{
			testNode(t, "a", entities.NodeTypeFinding, "finding"),
			testNode(t, "b", entities.NodeTypeLab, "lab"),
		},
		Edges: []*entities.Edge{
			testEdge(t, "e1", "a", "b", entities.EdgeTypeHasEvidence),
		},
	}
	require.NoError(t, graphHandler.Handle(ctx, commands.ImportGraphCommand{GraphID: "g1", Data: data}))

	graph, err := repo.FindByID(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 2, graph.NodeCount())
	assert.Equal(t, 1, graph.EdgeCount())
}

func mustID(t *testing.T, id string) valueobjects.NodeID {
	t.Helper()
	out, err := valueobjects.NewNodeIDFromString(id)
	require.NoError(t, err)
	return out
}
