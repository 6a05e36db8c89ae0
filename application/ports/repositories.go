package ports

import (
	"context"

	"medatlas-backend/domain/core/aggregates"
	"medatlas-backend/domain/events"
)

// GraphRepository is the storage boundary for graph aggregates. The
// reference implementation is volatile (in-memory); durability across
// restarts is a property of the chosen backend, never of the core.
type GraphRepository interface {
	// Save persists the current state of the graph as a whole snapshot.
	Save(ctx context.Context, graph *aggregates.Graph) error

	// FindByID loads a graph. A missing graph is a NotFound AppError.
	FindByID(ctx context.Context, graphID string) (*aggregates.Graph, error)

	// Delete removes a graph and reports whether one existed.
	Delete(ctx context.Context, graphID string) (bool, error)

	// List returns the ids of all stored graphs.
	List(ctx context.Context) ([]string, error)

	// Exists reports whether a graph is stored under the id.
	Exists(ctx context.Context, graphID string) (bool, error)
}

// EventBus publishes domain events after successful mutations.
type EventBus interface {
	Publish(ctx context.Context, event events.DomainEvent) error
	PublishBatch(ctx context.Context, batch []events.DomainEvent) error
}

// Cache is a read-side cache used by the query bus middleware.
type Cache interface {
	Get(ctx context.Context, key string) (any, bool)
	Set(ctx context.Context, key string, value any, ttlSeconds int) error
}
