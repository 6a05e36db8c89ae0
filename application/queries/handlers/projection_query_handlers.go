package handlers

import (
	"context"
	"fmt"

	"medatlas-backend/application/ports"
	"medatlas-backend/application/queries"
	"medatlas-backend/application/queries/bus"
	"medatlas-backend/application/services"

	"go.uber.org/zap"
)

// ProjectionQueryHandler serves the derived views computed from graph
// snapshots: patient timelines, evidence chains with their source
// artifacts, and cross-modal alignments.
type ProjectionQueryHandler struct {
	graphRepo ports.GraphRepository
	timeline  *services.TimelineService
	evidence  *services.EvidenceService
	alignment *services.AlignmentService
	logger    *zap.Logger
}

// NewProjectionQueryHandler creates a projection query handler.
func NewProjectionQueryHandler(
	graphRepo ports.GraphRepository,
	timeline *services.TimelineService,
	evidence *services.EvidenceService,
	alignment *services.AlignmentService,
	logger *zap.Logger,
) *ProjectionQueryHandler {
	return &ProjectionQueryHandler{
		graphRepo: graphRepo,
		timeline:  timeline,
		evidence:  evidence,
		alignment: alignment,
		logger:    logger,
	}
}

// Handle implements bus.QueryHandler.
func (h *ProjectionQueryHandler) Handle(ctx context.Context, query bus.Query) (any, error) {
	switch q := query.(type) {
	case queries.GetTimelineQuery:
		return h.getTimeline(ctx, q)
	case queries.GetEvidenceChainQuery:
		return h.getEvidenceChain(ctx, q)
	case queries.GetSourceArtifactsQuery:
		return h.getSourceArtifacts(ctx, q)
	case queries.GetMergedEvidenceChainQuery:
		return h.getMergedEvidenceChain(ctx, q)
	case queries.GetAlignmentsQuery:
		return h.getAlignments(ctx, q)
	}
	return nil, fmt.Errorf("unexpected query type %T", query)
}

func (h *ProjectionQueryHandler) getTimeline(ctx context.Context, q queries.GetTimelineQuery) (any, error) {
	graph, err := h.graphRepo.FindByID(ctx, q.GraphID)
	if err != nil {
		return nil, err
	}
	return h.timeline.GetTimeline(graph, q.PatientID, q.DateRange)
}

func (h *ProjectionQueryHandler) getEvidenceChain(ctx context.Context, q queries.GetEvidenceChainQuery) (any, error) {
	graph, err := h.graphRepo.FindByID(ctx, q.GraphID)
	if err != nil {
		return nil, err
	}
	return h.evidence.BuildChain(graph, q.RootID, chainDepth(q.MaxDepth)), nil
}

func (h *ProjectionQueryHandler) getSourceArtifacts(ctx context.Context, q queries.GetSourceArtifactsQuery) (any, error) {
	graph, err := h.graphRepo.FindByID(ctx, q.GraphID)
	if err != nil {
		return nil, err
	}
	chain := h.evidence.BuildChain(graph, q.RootID, chainDepth(q.MaxDepth))
	return h.evidence.SourceArtifacts(chain), nil
}

func (h *ProjectionQueryHandler) getMergedEvidenceChain(ctx context.Context, q queries.GetMergedEvidenceChainQuery) (any, error) {
	graph, err := h.graphRepo.FindByID(ctx, q.GraphID)
	if err != nil {
		return nil, err
	}
	chains := make([]*services.EvidenceChain, 0, len(q.RootIDs))
	for _, rootID := range q.RootIDs {
		chains = append(chains, h.evidence.BuildChain(graph, rootID, chainDepth(q.MaxDepth)))
	}
	return h.evidence.MergeChains(chains), nil
}

func (h *ProjectionQueryHandler) getAlignments(ctx context.Context, q queries.GetAlignmentsQuery) (any, error) {
	graph, err := h.graphRepo.FindByID(ctx, q.GraphID)
	if err != nil {
		return nil, err
	}

	data := graph.Serialize()
	if q.FindingID != "" {
		return h.alignment.FindAlignments(data, q.FindingID), nil
	}
	return h.alignment.AlignAllFindings(data), nil
}

func chainDepth(maxDepth int) int {
	if maxDepth == 0 {
		return DefaultTraversalDepth
	}
	return maxDepth
}
