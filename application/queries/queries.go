package queries

import (
	"errors"

	"medatlas-backend/domain/core/aggregates"
	"medatlas-backend/domain/core/valueobjects"
)

// GetGraphDataQuery returns a full serialized snapshot of one graph.
type GetGraphDataQuery struct {
	GraphID string `json:"graphId"`
}

// Validate validates the query
func (q GetGraphDataQuery) Validate() error {
	if q.GraphID == "" {
		return errors.New("graphId is required")
	}
	return nil
}

// ListGraphsQuery lists the ids of every stored graph.
type ListGraphsQuery struct{}

// Validate validates the query
func (q ListGraphsQuery) Validate() error {
	return nil
}

// GetGraphStatsQuery returns node and edge counts plus per-type breakdowns.
type GetGraphStatsQuery struct {
	GraphID string `json:"graphId"`
}

// Validate validates the query
func (q GetGraphStatsQuery) Validate() error {
	if q.GraphID == "" {
		return errors.New("graphId is required")
	}
	return nil
}

// GetNodeQuery fetches a single node by id.
type GetNodeQuery struct {
	GraphID string `json:"graphId"`
	NodeID  string `json:"nodeId"`
}

// Validate validates the query
func (q GetNodeQuery) Validate() error {
	if q.GraphID == "" {
		return errors.New("graphId is required")
	}
	if q.NodeID == "" {
		return errors.New("nodeId is required")
	}
	return nil
}

// QueryNodesQuery returns the nodes matching a filter. An empty filter
// matches every node.
type QueryNodesQuery struct {
	GraphID string                `json:"graphId"`
	Filter  aggregates.NodeFilter `json:"filter"`
}

// Validate validates the query
func (q QueryNodesQuery) Validate() error {
	if q.GraphID == "" {
		return errors.New("graphId is required")
	}
	return nil
}

// QueryEdgesQuery returns the edges matching a filter.
type QueryEdgesQuery struct {
	GraphID string                `json:"graphId"`
	Filter  aggregates.EdgeFilter `json:"filter"`
}

// Validate validates the query
func (q QueryEdgesQuery) Validate() error {
	if q.GraphID == "" {
		return errors.New("graphId is required")
	}
	return nil
}

// GetNodeEdgesQuery returns the edges incident to a node, optionally
// restricted to one direction.
type GetNodeEdgesQuery struct {
	GraphID   string `json:"graphId"`
	NodeID    string `json:"nodeId"`
	Direction string `json:"direction,omitempty"`
}

// Validate validates the query
func (q GetNodeEdgesQuery) Validate() error {
	if q.GraphID == "" {
		return errors.New("graphId is required")
	}
	if q.NodeID == "" {
		return errors.New("nodeId is required")
	}
	return nil
}

// TraverseQuery walks the graph breadth-first from a start node.
// MaxDepth zero requests the default depth.
type TraverseQuery struct {
	GraphID   string `json:"graphId"`
	StartID   string `json:"startId"`
	Direction string `json:"direction,omitempty"`
	MaxDepth  int    `json:"maxDepth,omitempty"`
}

// Validate validates the query
func (q TraverseQuery) Validate() error {
	if q.GraphID == "" {
		return errors.New("graphId is required")
	}
	if q.StartID == "" {
		return errors.New("startId is required")
	}
	if q.MaxDepth < 0 {
		return errors.New("maxDepth must not be negative")
	}
	return nil
}

// GetTimelineQuery projects a patient's timestamped nodes onto a
// chronological timeline.
type GetTimelineQuery struct {
	GraphID   string                  `json:"graphId"`
	PatientID string                  `json:"patientId"`
	DateRange *valueobjects.DateRange `json:"dateRange,omitempty"`
}

// Validate validates the query
func (q GetTimelineQuery) Validate() error {
	if q.GraphID == "" {
		return errors.New("graphId is required")
	}
	if q.PatientID == "" {
		return errors.New("patientId is required")
	}
	return nil
}

// GetEvidenceChainQuery builds the evidence chain rooted at a node.
type GetEvidenceChainQuery struct {
	GraphID  string `json:"graphId"`
	RootID   string `json:"rootId"`
	MaxDepth int    `json:"maxDepth,omitempty"`
}

// Validate validates the query
func (q GetEvidenceChainQuery) Validate() error {
	if q.GraphID == "" {
		return errors.New("graphId is required")
	}
	if q.RootID == "" {
		return errors.New("rootId is required")
	}
	if q.MaxDepth < 0 {
		return errors.New("maxDepth must not be negative")
	}
	return nil
}

// GetSourceArtifactsQuery lists the deduplicated source artifacts behind
// a node's evidence chain.
type GetSourceArtifactsQuery struct {
	GraphID  string `json:"graphId"`
	RootID   string `json:"rootId"`
	MaxDepth int    `json:"maxDepth,omitempty"`
}

// Validate validates the query
func (q GetSourceArtifactsQuery) Validate() error {
	if q.GraphID == "" {
		return errors.New("graphId is required")
	}
	if q.RootID == "" {
		return errors.New("rootId is required")
	}
	if q.MaxDepth < 0 {
		return errors.New("maxDepth must not be negative")
	}
	return nil
}

// GetMergedEvidenceChainQuery builds the chains rooted at several nodes
// and merges them into one combined chain.
type GetMergedEvidenceChainQuery struct {
	GraphID  string   `json:"graphId"`
	RootIDs  []string `json:"rootIds"`
	MaxDepth int      `json:"maxDepth,omitempty"`
}

// Validate validates the query
func (q GetMergedEvidenceChainQuery) Validate() error {
	if q.GraphID == "" {
		return errors.New("graphId is required")
	}
	if len(q.RootIDs) == 0 {
		return errors.New("at least one rootId is required")
	}
	if q.MaxDepth < 0 {
		return errors.New("maxDepth must not be negative")
	}
	return nil
}

// GetAlignmentsQuery computes cross-modal alignments, either for one
// finding or for every finding in the graph when FindingID is empty.
type GetAlignmentsQuery struct {
	GraphID   string `json:"graphId"`
	FindingID string `json:"findingId,omitempty"`
}

// Validate validates the query
func (q GetAlignmentsQuery) Validate() error {
	if q.GraphID == "" {
		return errors.New("graphId is required")
	}
	return nil
}
