package memory

import (
	"context"
	"sort"
	"sync"

	"medatlas-backend/application/ports"
	"medatlas-backend/domain/core/aggregates"
	pkgerrors "medatlas-backend/pkg/errors"

	"go.uber.org/zap"
)

// GraphRepository is the in-memory reference implementation of the graph
// store. Graphs are held as serialized snapshots so callers never share
// mutable state with the store: Save serializes, FindByID rehydrates.
type GraphRepository struct {
	mu     sync.RWMutex
	graphs map[string]*aggregates.GraphData
	logger *zap.Logger
}

// NewGraphRepository creates an empty in-memory repository.
func NewGraphRepository(logger *zap.Logger) *GraphRepository {
	return &GraphRepository{
		graphs: make(map[string]*aggregates.GraphData),
		logger: logger,
	}
}

var _ ports.GraphRepository = (*GraphRepository)(nil)

// Save stores a snapshot of the graph under its id.
func (r *GraphRepository) Save(ctx context.Context, graph *aggregates.Graph) error {
	data := graph.Serialize()

	r.mu.Lock()
	r.graphs[graph.ID()] = data
	r.mu.Unlock()

	r.logger.Debug("graph snapshot stored",
		zap.String("graphId", graph.ID()),
		zap.Int("nodeCount", data.Metadata.NodeCount),
		zap.Int("edgeCount", data.Metadata.EdgeCount),
	)
	return nil
}

// FindByID rehydrates a graph from its stored snapshot.
func (r *GraphRepository) FindByID(ctx context.Context, graphID string) (*aggregates.Graph, error) {
	r.mu.RLock()
	data, ok := r.graphs[graphID]
	r.mu.RUnlock()

	if !ok {
		return nil, pkgerrors.NewNotFoundError("graph")
	}
	return aggregates.FromData(data)
}

// Delete removes a stored graph and reports whether one existed.
func (r *GraphRepository) Delete(ctx context.Context, graphID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.graphs[graphID]; !ok {
		return false, nil
	}
	delete(r.graphs, graphID)
	return true, nil
}

// List returns the ids of all stored graphs in sorted order.
func (r *GraphRepository) List(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.graphs))
	for id := range r.graphs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Exists reports whether a graph is stored under the id.
func (r *GraphRepository) Exists(ctx context.Context, graphID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.graphs[graphID]
	return ok, nil
}
