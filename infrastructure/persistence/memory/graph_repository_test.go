package memory

import (
	"context"
	"testing"

	"medatlas-backend/domain/core/aggregates"
	"medatlas-backend/domain/core/entities"
	pkgerrors "medatlas-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedGraph(t *testing.T, id string) *aggregates.Graph {
	t.Helper()
	graph := aggregates.NewGraph(id)
	node, err := entities.NewNode("n1", entities.NodeTypeFinding, "finding")
	require.NoError(t, err)
	require.NoError(t, graph.AddNode(node))
	return graph
}

func TestGraphRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewGraphRepository(zap.NewNop())

	require.NoError(t, repo.Save(ctx, seedGraph(t, "g1")))

	got, err := repo.FindByID(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "g1", got.ID())
	assert.Equal(t, 1, got.NodeCount())
}

func TestGraphRepository_FindMissingIsNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewGraphRepository(zap.NewNop())

	_, err := repo.FindByID(ctx, "ghost")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestGraphRepository_LoadedGraphIsIsolated(t *testing.T) {
	ctx := context.Background()
	repo := NewGraphRepository(zap.NewNop())
	require.NoError(t, repo.Save(ctx, seedGraph(t, "g1")))

	first, err := repo.FindByID(ctx, "g1")
	require.NoError(t, err)

	// Mutating a loaded copy must not affect what the store returns next.
	extra, err := entities.NewNode("n2", entities.NodeTypeLab, "lab")
	require.NoError(t, err)
	require.NoError(t, first.AddNode(extra))

	second, err := repo.FindByID(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 1, second.NodeCount())
}

func TestGraphRepository_DeleteAndExists(t *testing.T) {
	ctx := context.Background()
	repo := NewGraphRepository(zap.NewNop())
	require.NoError(t, repo.Save(ctx, seedGraph(t, "g1")))

	exists, err := repo.Exists(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, exists)

	removed, err := repo.Delete(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(ctx, "g1")
	require.NoError(t, err)
	assert.False(t, removed)

	exists, err = repo.Exists(ctx, "g1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGraphRepository_ListSorted(t *testing.T) {
	ctx := context.Background()
	repo := NewGraphRepository(zap.NewNop())
	for _, id := range []string{"g3", "g1", "g2"} {
		require.NoError(t, repo.Save(ctx, seedGraph(t, id)))
	}

	ids, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"g1", "g2", "g3"}, ids)
}
