package handlers

import (
	"context"
	"fmt"

	"medatlas-backend/application/ports"
	"medatlas-backend/application/queries"
	"medatlas-backend/application/queries/bus"

	"go.uber.org/zap"
)

// GraphStats is the read model for GetGraphStatsQuery.
type GraphStats struct {
	GraphID     string         `json:"graphId"`
	NodeCount   int            `json:"nodeCount"`
	EdgeCount   int            `json:"edgeCount"`
	NodesByType map[string]int `json:"nodesByType"`
	EdgesByType map[string]int `json:"edgesByType"`
}

// GraphQueryHandler serves graph-level reads: snapshots, listings, stats.
type GraphQueryHandler struct {
	graphRepo ports.GraphRepository
	logger    *zap.Logger
}

// NewGraphQueryHandler creates a graph query handler.
func NewGraphQueryHandler(graphRepo ports.GraphRepository, logger *zap.Logger) *GraphQueryHandler {
	return &GraphQueryHandler{graphRepo: graphRepo, logger: logger}
}

// Handle implements bus.QueryHandler.
func (h *GraphQueryHandler) Handle(ctx context.Context, query bus.Query) (any, error) {
	switch q := query.(type) {
	case queries.GetGraphDataQuery:
		return h.getGraphData(ctx, q)
	case queries.ListGraphsQuery:
		return h.graphRepo.List(ctx)
	case queries.GetGraphStatsQuery:
		return h.getGraphStats(ctx, q)
	}
	return nil, fmt.Errorf("unexpected query type %T", query)
}

func (h *GraphQueryHandler) getGraphData(ctx context.Context, q queries.GetGraphDataQuery) (any, error) {
	graph, err := h.graphRepo.FindByID(ctx, q.GraphID)
	if err != nil {
		return nil, err
	}
	return graph.Serialize(), nil
}

func (h *GraphQueryHandler) getGraphStats(ctx context.Context, q queries.GetGraphStatsQuery) (any, error) {
	graph, err := h.graphRepo.FindByID(ctx, q.GraphID)
	if err != nil {
		return nil, err
	}

	stats := GraphStats{
		GraphID:     graph.ID(),
		NodeCount:   graph.NodeCount(),
		EdgeCount:   graph.EdgeCount(),
		NodesByType: make(map[string]int),
		EdgesByType: make(map[string]int),
	}
	for _, node := range graph.Nodes() {
		stats.NodesByType[string(node.Type)]++
	}
	for _, edge := range graph.Edges() {
		stats.EdgesByType[string(edge.Type)]++
	}
	return stats, nil
}
