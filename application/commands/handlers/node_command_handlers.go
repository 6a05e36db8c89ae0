package handlers

import (
	"context"
	"fmt"

	"medatlas-backend/application/commands"
	"medatlas-backend/application/commands/bus"
	"medatlas-backend/application/ports"
	"medatlas-backend/domain/core/valueobjects"
	pkgerrors "medatlas-backend/pkg/errors"

	"go.uber.org/zap"
)

// NodeCommandHandler executes node and edge mutations against one graph.
type NodeCommandHandler struct {
	graphRepo ports.GraphRepository
	eventBus  ports.EventBus
	logger    *zap.Logger
}

// NewNodeCommandHandler creates a node command handler.
func NewNodeCommandHandler(graphRepo ports.GraphRepository, eventBus ports.EventBus, logger *zap.Logger) *NodeCommandHandler {
	return &NodeCommandHandler{
		graphRepo: graphRepo,
		eventBus:  eventBus,
		logger:    logger,
	}
}

// Handle implements bus.CommandHandler.
func (h *NodeCommandHandler) Handle(ctx context.Context, cmd bus.Command) error {
	switch c := cmd.(type) {
	case commands.UpsertNodeCommand:
		return h.upsertNode(ctx, c)
	case commands.CreateEdgeCommand:
		return h.createEdge(ctx, c)
	case commands.DeleteNodeCommand:
		return h.deleteNode(ctx, c)
	case commands.DeleteEdgeCommand:
		return h.deleteEdge(ctx, c)
	}
	return fmt.Errorf("unexpected command type %T", cmd)
}

func (h *NodeCommandHandler) upsertNode(ctx context.Context, cmd commands.UpsertNodeCommand) error {
	graph, err := loadOrCreateGraph(ctx, h.graphRepo, cmd.GraphID)
	if err != nil {
		return err
	}

	if err := graph.AddNode(cmd.Node); err != nil {
		return err
	}
	if err := h.graphRepo.Save(ctx, graph); err != nil {
		return err
	}

	publishEvents(ctx, h.eventBus, graph, h.logger)
	h.logger.Info("node upserted",
		zap.String("graphId", cmd.GraphID),
		zap.String("nodeId", cmd.Node.ID.String()),
		zap.String("type", string(cmd.Node.Type)),
	)
	return nil
}

func (h *NodeCommandHandler) createEdge(ctx context.Context, cmd commands.CreateEdgeCommand) error {
	graph, err := h.graphRepo.FindByID(ctx, cmd.GraphID)
	if err != nil {
		return err
	}

	if err := graph.AddEdge(cmd.Edge); err != nil {
		return err
	}
	if err := h.graphRepo.Save(ctx, graph); err != nil {
		return err
	}

	publishEvents(ctx, h.eventBus, graph, h.logger)
	h.logger.Info("edge created",
		zap.String("graphId", cmd.GraphID),
		zap.String("edgeId", cmd.Edge.ID),
		zap.String("type", string(cmd.Edge.Type)),
	)
	return nil
}

func (h *NodeCommandHandler) deleteNode(ctx context.Context, cmd commands.DeleteNodeCommand) error {
	graph, err := h.graphRepo.FindByID(ctx, cmd.GraphID)
	if err != nil {
		return err
	}

	nodeID, err := valueobjects.NewNodeIDFromString(cmd.NodeID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	if !graph.RemoveNode(nodeID) {
		return pkgerrors.NewNotFoundError("node")
	}
	if err := h.graphRepo.Save(ctx, graph); err != nil {
		return err
	}

	publishEvents(ctx, h.eventBus, graph, h.logger)
	h.logger.Info("node removed",
		zap.String("graphId", cmd.GraphID),
		zap.String("nodeId", cmd.NodeID),
	)
	return nil
}

func (h *NodeCommandHandler) deleteEdge(ctx context.Context, cmd commands.DeleteEdgeCommand) error {
	graph, err := h.graphRepo.FindByID(ctx, cmd.GraphID)
	if err != nil {
		return err
	}

	if !graph.RemoveEdge(cmd.EdgeID) {
		return pkgerrors.NewNotFoundError("edge")
	}
	if err := h.graphRepo.Save(ctx, graph); err != nil {
		return err
	}

	publishEvents(ctx, h.eventBus, graph, h.logger)
	h.logger.Info("edge removed",
		zap.String("graphId", cmd.GraphID),
		zap.String("edgeId", cmd.EdgeID),
	)
	return nil
}
