package handlers

import (
	"encoding/json"
	"net/http"

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

// EdgeHandler handles edge-related HTTP requests
type EdgeHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewEdgeHandler creates a new edge handler
func NewEdgeHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, logger *zap.Logger) *EdgeHandler {
	return &EdgeHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		logger:     logger,
	}
}

// CreateEdge handles POST /graphs/{graphID}/edges
func (h *EdgeHandler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	var edge entities.Edge
	if err := json.NewDecoder(r.Body).Decode(&edge); err != nil {
		respondBadRequest(w, "invalid request body: "+err.Error())
		return
	}

	cmd := commands.CreateEdgeCommand{
		GraphID: chi.URLParam(r, "graphID"),
		Edge:    &edge,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, map[string]string{"id": edge.ID})
}

// DeleteEdge handles DELETE /graphs/{graphID}/edges/{edgeID}
func (h *EdgeHandler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	cmd := commands.DeleteEdgeCommand{
		GraphID: chi.URLParam(r, "graphID"),
		EdgeID:  chi.URLParam(r, "edgeID"),
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "edge deleted"})
}

// QueryEdges handles POST /graphs/{graphID}/edges/query
func (h *EdgeHandler) QueryEdges(w http.ResponseWriter, r *http.Request) {
	var filter aggregates.EdgeFilter
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&filter); err != nil {
			respondBadRequest(w, "invalid request body: "+err.Error())
			return
		}
	}

	query := queries.QueryEdgesQuery{
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
