package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"medatlas-backend/application/queries"
	querybus "medatlas-backend/application/queries/bus"
	"medatlas-backend/domain/core/valueobjects"
	"medatlas-backend/pkg/common"
	"medatlas-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProjectionHandler handles the derived-view HTTP requests: timelines,
// evidence chains, and cross-modal alignments.
type ProjectionHandler struct {
	queryBus *querybus.QueryBus
	logger   *zap.Logger
}

// NewProjectionHandler creates a new projection handler
func NewProjectionHandler(queryBus *querybus.QueryBus, logger *zap.Logger) *ProjectionHandler {
	return &ProjectionHandler{queryBus: queryBus, logger: logger}
}

// GetTimeline handles GET /graphs/{graphID}/timeline
func (h *ProjectionHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	dateRange, err := parseDateRange(r)
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	query := queries.GetTimelineQuery{
		GraphID:   chi.URLParam(r, "graphID"),
		PatientID: r.URL.Query().Get("patientId"),
		DateRange: dateRange,
	}
	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// GetEvidenceChain handles GET /graphs/{graphID}/evidence-chain
func (h *ProjectionHandler) GetEvidenceChain(w http.ResponseWriter, r *http.Request) {
	maxDepth, err := parseMaxDepth(r)
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	query := queries.GetEvidenceChainQuery{
		GraphID:  chi.URLParam(r, "graphID"),
		RootID:   r.URL.Query().Get("root"),
		MaxDepth: maxDepth,
	}
	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// GetSourceArtifacts handles GET /graphs/{graphID}/evidence-chain/artifacts
func (h *ProjectionHandler) GetSourceArtifacts(w http.ResponseWriter, r *http.Request) {
	maxDepth, err := parseMaxDepth(r)
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	query := queries.GetSourceArtifactsQuery{
		GraphID:  chi.URLParam(r, "graphID"),
		RootID:   r.URL.Query().Get("root"),
		MaxDepth: maxDepth,
	}
	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// MergeEvidenceChainsRequest is the body for POST .../evidence-chain/merge.
type MergeEvidenceChainsRequest struct {
	RootIDs  []string `json:"rootIds" validate:"required,min=1"`
	MaxDepth int      `json:"maxDepth" validate:"min=0"`
}

// MergeEvidenceChains handles POST /graphs/{graphID}/evidence-chain/merge
func (h *ProjectionHandler) MergeEvidenceChains(w http.ResponseWriter, r *http.Request) {
	var req MergeEvidenceChainsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	query := queries.GetMergedEvidenceChainQuery{
		GraphID:  chi.URLParam(r, "graphID"),
		RootIDs:  req.RootIDs,
		MaxDepth: req.MaxDepth,
	}
	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// GetAlignments handles GET /graphs/{graphID}/alignments
func (h *ProjectionHandler) GetAlignments(w http.ResponseWriter, r *http.Request) {
	query := queries.GetAlignmentsQuery{
		GraphID:   chi.URLParam(r, "graphID"),
		FindingID: r.URL.Query().Get("findingId"),
	}
	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

func parseDateRange(r *http.Request) (*valueobjects.DateRange, error) {
	fromRaw := r.URL.Query().Get("from")
	toRaw := r.URL.Query().Get("to")
	if fromRaw == "" && toRaw == "" {
		return nil, nil
	}

	var dateRange valueobjects.DateRange
	if fromRaw != "" {
		from, err := time.Parse(time.RFC3339, fromRaw)
		if err != nil {
			return nil, err
		}
		dateRange.From = &from
	}
	if toRaw != "" {
		to, err := time.Parse(time.RFC3339, toRaw)
		if err != nil {
			return nil, err
		}
		dateRange.To = &to
	}
	return &dateRange, nil
}

func parseMaxDepth(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("maxDepth")
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
