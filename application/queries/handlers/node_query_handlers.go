package handlers

import (
	"context"
	"fmt"

	"medatlas-backend/application/ports"
	"medatlas-backend/application/queries"
	"medatlas-backend/application/queries/bus"
	"medatlas-backend/domain/core/aggregates"
	"medatlas-backend/domain/core/valueobjects"
	pkgerrors "medatlas-backend/pkg/errors"

	"go.uber.org/zap"
)

// DefaultTraversalDepth bounds breadth-first walks when the caller does
// not ask for a specific depth.
const DefaultTraversalDepth = 5

// NodeQueryHandler serves node and edge reads, filtered queries, and
// breadth-first traversal.
type NodeQueryHandler struct {
	graphRepo ports.GraphRepository
	logger    *zap.Logger
}

// NewNodeQueryHandler creates a node query handler.
func NewNodeQueryHandler(graphRepo ports.GraphRepository, logger *zap.Logger) *NodeQueryHandler {
	return &NodeQueryHandler{graphRepo: graphRepo, logger: logger}
}

// Handle implements bus.QueryHandler.
func (h *NodeQueryHandler) Handle(ctx context.Context, query bus.Query) (any, error) {
	switch q := query.(type) {
	case queries.GetNodeQuery:
		return h.getNode(ctx, q)
	case queries.QueryNodesQuery:
		return h.queryNodes(ctx, q)
	case queries.QueryEdgesQuery:
		return h.queryEdges(ctx, q)
	case queries.GetNodeEdgesQuery:
		return h.getNodeEdges(ctx, q)
	case queries.TraverseQuery:
		return h.traverse(ctx, q)
	}
	return nil, fmt.Errorf("unexpected query type %T", query)
}

func (h *NodeQueryHandler) getNode(ctx context.Context, q queries.GetNodeQuery) (any, error) {
	graph, err := h.graphRepo.FindByID(ctx, q.GraphID)
	if err != nil {
		return nil, err
	}

	nodeID, err := valueobjects.NewNodeIDFromString(q.NodeID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	node, ok := graph.GetNode(nodeID)
	if !ok {
		return nil, pkgerrors.NewNotFoundError("node")
	}
	return node, nil
}

func (h *NodeQueryHandler) queryNodes(ctx context.Context, q queries.QueryNodesQuery) (any, error) {
	graph, err := h.graphRepo.FindByID(ctx, q.GraphID)
	if err != nil {
		return nil, err
	}
	return graph.QueryNodes(q.Filter)
}

func (h *NodeQueryHandler) queryEdges(ctx context.Context, q queries.QueryEdgesQuery) (any, error) {
	graph, err := h.graphRepo.FindByID(ctx, q.GraphID)
	if err != nil {
		return nil, err
	}
	return graph.QueryEdges(q.Filter)
}

func (h *NodeQueryHandler) getNodeEdges(ctx context.Context, q queries.GetNodeEdgesQuery) (any, error) {
	graph, err := h.graphRepo.FindByID(ctx, q.GraphID)
	if err != nil {
		return nil, err
	}

	dir, err := parseDirection(q.Direction)
	if err != nil {
		return nil, err
	}
	nodeID, err := valueobjects.NewNodeIDFromString(q.NodeID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}
	return graph.GetEdges(nodeID, dir), nil
}

func (h *NodeQueryHandler) traverse(ctx context.Context, q queries.TraverseQuery) (any, error) {
	graph, err := h.graphRepo.FindByID(ctx, q.GraphID)
	if err != nil {
		return nil, err
	}

	dir, err := parseDirection(q.Direction)
	if err != nil {
		return nil, err
	}
	startID, err := valueobjects.NewNodeIDFromString(q.StartID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	maxDepth := q.MaxDepth
	if maxDepth == 0 {
		maxDepth = DefaultTraversalDepth
	}
	return graph.Traverse(startID, dir, maxDepth), nil
}

func parseDirection(s string) (aggregates.Direction, error) {
	if s == "" {
		return aggregates.DirectionBoth, nil
	}
	return aggregates.ParseDirection(s)
}
