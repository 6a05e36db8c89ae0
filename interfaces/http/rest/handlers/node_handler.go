package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"medatlas-backend/application/commands"
	"medatlas-backend/application/commands/bus"
	"medatlas-backend/application/queries"
	querybus "medatlas-backend/application/queries/bus"
	"medatlas-backend/domain/core/aggregates"
	"medatlas-backend/domain/core/entities"
	"medatlas-backend/pkg/common"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// NodeHandler handles node-related HTTP requests
type NodeHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, logger *zap.Logger) *NodeHandler {
	return &NodeHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		logger:     logger,
	}
}

// UpsertNode handles PUT /graphs/{graphID}/nodes
func (h *NodeHandler) UpsertNode(w http.ResponseWriter, r *http.Request) {
	var node entities.Node
	if err := json.NewDecoder(r.Body).Decode(&node); err != nil {
		respondBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	cmd := commands.UpsertNodeCommand{
		GraphID: chi.URLParam(r, "graphID"),
		Node:    &node,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"id": node.ID.String()})
}

// GetNode handles GET /graphs/{graphID}/nodes/{nodeID}
func (h *NodeHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	query := queries.GetNodeQuery{
		GraphID: chi.URLParam(r, "graphID"),
		NodeID:  chi.URLParam(r, "nodeID"),
	}
	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// DeleteNode handles DELETE /graphs/{graphID}/nodes/{nodeID}
func (h *NodeHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	cmd := commands.DeleteNodeCommand{
		GraphID: chi.URLParam(r, "graphID"),
		NodeID:  chi.URLParam(r, "nodeID"),
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "node deleted"})
}

// QueryNodes handles POST /graphs/{graphID}/nodes/query
func (h *NodeHandler) QueryNodes(w http.ResponseWriter, r *http.Request) {
	var filter aggregates.NodeFilter
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&filter); err != nil {
			respondBadRequest(w, "invalid request body: "+err.Error())
			return
		}
	}

	query := queries.QueryNodesQuery{
		GraphID: chi.URLParam(r, "graphID"),
		Filter:  filter,
	}
	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// GetNodeEdges handles GET /graphs/{graphID}/nodes/{nodeID}/edges
func (h *NodeHandler) GetNodeEdges(w http.ResponseWriter, r *http.Request) {
	query := queries.GetNodeEdgesQuery{
		GraphID:   chi.URLParam(r, "graphID"),
		NodeID:    chi.URLParam(r, "nodeID"),
		Direction: r.URL.Query().Get("direction"),
	}
	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// Traverse handles GET /graphs/{graphID}/traverse
func (h *NodeHandler) Traverse(w http.ResponseWriter, r *http.Request) {
	maxDepth := 0
	if raw := r.URL.Query().Get("maxDepth"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondBadRequest(w, "maxDepth must be an integer")
			return
		}
		maxDepth = parsed
	}

	query := queries.TraverseQuery{
		GraphID:   chi.URLParam(r, "graphID"),
		StartID:   r.URL.Query().Get("start"),
		Direction: r.URL.Query().Get("direction"),
		MaxDepth:  maxDepth,
	}
	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}
