package handlers

import (
	"encoding/json"
	"net/http"

	"medatlas-backend/application/commands"
	"medatlas-backend/application/commands/bus"
	"medatlas-backend/application/queries"
	querybus "medatlas-backend/application/queries/bus"
	"medatlas-backend/domain/core/aggregates"
	"medatlas-backend/pkg/common"
	"medatlas-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// GraphHandler handles graph-level HTTP requests
type GraphHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, logger *zap.Logger) *GraphHandler {
	return &GraphHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		logger:     logger,
	}
}

// CreateGraphRequest represents the request body for creating a graph
type CreateGraphRequest struct {
	ID string `json:"id,omitempty" validate:"omitempty,max=128"`
}

// CreateGraphResponse represents the response for creating a graph
type CreateGraphResponse struct {
	ID string `json:"id"`
}

// ImportGraphRequest represents the request body for a batch import
type ImportGraphRequest struct {
	Data    *aggregates.GraphData `json:"data" validate:"required"`
	Replace bool                  `json:"replace,omitempty"`
}

// CreateGraph handles POST /graphs
func (h *GraphHandler) CreateGraph(w http.ResponseWriter, r *http.Request) {
	var req CreateGraphRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondBadRequest(w, "invalid request body: "+err.Error())
			return
		}
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	var createdID string
	cmd := commands.CreateGraphCommand{GraphID: req.ID, CreatedID: &createdID}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		respondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, CreateGraphResponse{ID: createdID})
}

// ListGraphs handles GET /graphs
func (h *GraphHandler) ListGraphs(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListGraphsQuery{})
	if err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// GetGraph handles GET /graphs/{graphID}
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	query := queries.GetGraphDataQuery{GraphID: chi.URLParam(r, "graphID")}
	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// DeleteGraph handles DELETE /graphs/{graphID}
func (h *GraphHandler) DeleteGraph(w http.ResponseWriter, r *http.Request) {
	cmd := commands.DeleteGraphCommand{GraphID: chi.URLParam(r, "graphID")}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "graph deleted"})
}

// GetGraphStats handles GET /graphs/{graphID}/stats
func (h *GraphHandler) GetGraphStats(w http.ResponseWriter, r *http.Request) {
	query := queries.GetGraphStatsQuery{GraphID: chi.URLParam(r, "graphID")}
	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// ImportGraph handles POST /graphs/{graphID}/import
func (h *GraphHandler) ImportGraph(w http.ResponseWriter, r *http.Request) {
	var req ImportGraphRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	cmd := commands.ImportGraphCommand{
		GraphID: chi.URLParam(r, "graphID"),
		Data:    req.Data,
		Replace: req.Replace,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]any{
		"message": "graph imported",
		"nodes":   len(req.Data.Nodes),
		"edges":   len(req.Data.Edges),
	})
}
