package handlers

import (
	"context"
	"fmt"

	"medatlas-backend/application/commands"
	"medatlas-backend/application/commands/bus"
	"medatlas-backend/application/ports"
	"medatlas-backend/domain/core/aggregates"
	pkgerrors "medatlas-backend/pkg/errors"

	"go.uber.org/zap"
)

// GraphCommandHandler executes graph lifecycle commands: create, delete,
// batch import. The repository is the single writer boundary; every
// successful mutation is saved as a whole snapshot and its domain events
// published afterwards.
type GraphCommandHandler struct {
	graphRepo ports.GraphRepository
	eventBus  ports.EventBus
	logger    *zap.Logger
}

// NewGraphCommandHandler creates a graph command handler.
func NewGraphCommandHandler(graphRepo ports.GraphRepository, eventBus ports.EventBus, logger *zap.Logger) *GraphCommandHandler {
	return &GraphCommandHandler{
		graphRepo: graphRepo,
		eventBus:  eventBus,
		logger:    logger,
	}
}

// Handle implements bus.CommandHandler.
func (h *GraphCommandHandler) Handle(ctx context.Context, cmd bus.Command) error {
	switch c := cmd.(type) {
	case commands.CreateGraphCommand:
		return h.createGraph(ctx, c)
	case commands.DeleteGraphCommand:
		return h.deleteGraph(ctx, c)
	case commands.ImportGraphCommand:
		return h.importGraph(ctx, c)
	}
	return fmt.Errorf("unexpected command type %T", cmd)
}

func (h *GraphCommandHandler) createGraph(ctx context.Context, cmd commands.CreateGraphCommand) error {
	if cmd.GraphID != "" {
		exists, err := h.graphRepo.Exists(ctx, cmd.GraphID)
		if err != nil {
			return err
		}
		if exists {
			return pkgerrors.NewConflictError("graph already exists: " + cmd.GraphID)
		}
	}

	graph := aggregates.NewGraph(cmd.GraphID)
	if err := h.graphRepo.Save(ctx, graph); err != nil {
		return err
	}
	if cmd.CreatedID != nil {
		*cmd.CreatedID = graph.ID()
	}

	h.publish(ctx, graph)
	h.logger.Info("graph created", zap.String("graphId", graph.ID()))
	return nil
}

func (h *GraphCommandHandler) deleteGraph(ctx context.Context, cmd commands.DeleteGraphCommand) error {
	removed, err := h.graphRepo.Delete(ctx, cmd.GraphID)
	if err != nil {
		return err
	}
	if !removed {
		return pkgerrors.NewNotFoundError("graph")
	}
	h.logger.Info("graph deleted", zap.String("graphId", cmd.GraphID))
	return nil
}

func (h *GraphCommandHandler) importGraph(ctx context.Context, cmd commands.ImportGraphCommand) error {
	graph, err := loadOrCreateGraph(ctx, h.graphRepo, cmd.GraphID)
	if err != nil {
		return err
	}

	if cmd.Replace {
		if err := graph.Deserialize(cmd.Data); err != nil {
			return err
		}
	} else {
		// Nodes before edges, so edge endpoints are present by insertion
		// time even when the batch arrived unordered.
		for _, node := range cmd.Data.Nodes {
			if err := graph.AddNode(node); err != nil {
				return err
			}
		}
		for _, edge := range cmd.Data.Edges {
			if err := graph.AddEdge(edge); err != nil {
				return err
			}
		}
	}

	graph.RecordImport(len(cmd.Data.Nodes), len(cmd.Data.Edges))

	if err := h.graphRepo.Save(ctx, graph); err != nil {
		return err
	}

	h.publish(ctx, graph)
	h.logger.Info("graph imported",
		zap.String("graphId", cmd.GraphID),
		zap.Int("nodes", len(cmd.Data.Nodes)),
		zap.Int("edges", len(cmd.Data.Edges)),
		zap.Bool("replace", cmd.Replace),
	)
	return nil
}

func (h *GraphCommandHandler) publish(ctx context.Context, graph *aggregates.Graph) {
	publishEvents(ctx, h.eventBus, graph, h.logger)
}
