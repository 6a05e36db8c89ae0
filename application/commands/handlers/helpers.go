package handlers

import (
	"context"

	"medatlas-backend/application/ports"
	"medatlas-backend/domain/core/aggregates"
	pkgerrors "medatlas-backend/pkg/errors"

	"go.uber.org/zap"
)

// loadOrCreateGraph fetches the target graph, creating an empty one when
// the id has never been seen. Upserts against a fresh graph id are valid:
// ingestion decides graph identity, not the store.
func loadOrCreateGraph(ctx context.Context, repo ports.GraphRepository, graphID string) (*aggregates.Graph, error) {
	graph, err := repo.FindByID(ctx, graphID)
	if err == nil {
		return graph, nil
	}
	if pkgerrors.IsNotFound(err) {
		return aggregates.NewGraph(graphID), nil
	}
	return nil, err
}

// publishEvents drains the aggregate's uncommitted events onto the event
// bus. Publishing is best-effort: the mutation is already durable, so a
// publish failure is logged, not propagated.
func publishEvents(ctx context.Context, eventBus ports.EventBus, graph *aggregates.Graph, logger *zap.Logger) {
	batch := graph.GetUncommittedEvents()
	if len(batch) == 0 {
		return
	}
	if err := eventBus.PublishBatch(ctx, batch); err != nil {
		logger.Warn("failed to publish domain events",
			zap.String("graphId", graph.ID()),
			zap.Int("events", len(batch)),
			zap.Error(err),
		)
		return
	}
	graph.MarkEventsAsCommitted()
}
