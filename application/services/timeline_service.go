package services

import (
	"sort"
	"time"

	"medatlas-backend/domain/core/aggregates"
	"medatlas-backend/domain/core/entities"
	"medatlas-backend/domain/core/valueobjects"

	"go.uber.org/zap"
)

// TimelineEvent is the derived, non-persisted projection of one
// timestamped node in a patient's history.
type TimelineEvent struct {
	ID             string                     `json:"id"`
	Type           entities.NodeType          `json:"type"`
	Timestamp      time.Time                  `json:"timestamp"`
	Title          string                     `json:"title"`
	Summary        string                     `json:"summary,omitempty"`
	Evidence       []valueobjects.EvidenceRef `json:"evidence"`
	RelatedNodeIDs []string                   `json:"relatedNodeIds"`
}

// TimelineService projects per-patient chronological timelines out of
// graph query results.
type TimelineService struct {
	logger *zap.Logger
}

// NewTimelineService creates a timeline service.
func NewTimelineService(logger *zap.Logger) *TimelineService {
	return &TimelineService{logger: logger}
}

// GetTimeline selects every node whose patientId property matches and whose
// timestamp is set, optionally bounded by dateRange, and returns the events
// sorted ascending by timestamp. Equal timestamps keep their relative order
// (stable sort, no secondary key).
func (s *TimelineService) GetTimeline(graph *aggregates.Graph, patientID string, dateRange *valueobjects.DateRange) ([]TimelineEvent, error) {
	nodes, err := graph.QueryNodes(aggregates.NodeFilter{
		PatientID: patientID,
		DateRange: dateRange,
	})
	if err != nil {
		return nil, err
	}

	timeline := []TimelineEvent{}
	for _, node := range nodes {
		if !node.HasTimestamp() {
			continue
		}

		related := []string{}
		for _, id := range graph.Neighbors(node.ID, aggregates.DirectionBoth) {
			related = append(related, id.String())
		}
		sort.Strings(related)

		timeline = append(timeline, TimelineEvent{
			ID:             node.ID.String(),
			Type:           node.Type,
			Timestamp:      *node.Timestamp,
			Title:          node.Label,
			Summary:        node.StringProp("summary"),
			Evidence:       append([]valueobjects.EvidenceRef{}, node.Evidence...),
			RelatedNodeIDs: related,
		})
	}

	sort.SliceStable(timeline, func(i, j int) bool {
		return timeline[i].Timestamp.Before(timeline[j].Timestamp)
	})

	s.logger.Debug("projected timeline",
		zap.String("patientId", patientID),
		zap.Int("events", len(timeline)),
	)
	return timeline, nil
}
