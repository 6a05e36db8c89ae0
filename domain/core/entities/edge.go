package entities

import (
	"time"

	"medatlas-backend/domain/core/valueobjects"
	pkgerrors "medatlas-backend/pkg/errors"

	"github.com/google/uuid"
)

// EdgeType defines the kind of relationship between two clinical facts.
type EdgeType string

const (
	EdgeTypeObservedIn   EdgeType = "observed-in"
	EdgeTypeDerivedFrom  EdgeType = "derived-from"
	EdgeTypeMatches      EdgeType = "matches"
	EdgeTypeContradicts  EdgeType = "contradicts"
	EdgeTypeTemporalNear EdgeType = "temporal-near"
	EdgeTypeSameAs       EdgeType = "same-as"
	EdgeTypeHasFinding   EdgeType = "has-finding"
	EdgeTypeHasEvidence  EdgeType = "has-evidence"
	EdgeTypeBelongsTo    EdgeType = "belongs-to"
	EdgeTypePartOf       EdgeType = "part-of"
	EdgeTypePrecedes     EdgeType = "precedes"
	EdgeTypeTreats       EdgeType = "treats"
	EdgeTypeReferences   EdgeType = "references"
)

// Edge is a typed, provenance-carrying relationship between two nodes.
// Both endpoints must exist in the owning graph when the edge is inserted.
type Edge struct {
	ID         string                     `json:"id"`
	Source     valueobjects.NodeID        `json:"source"`
	Target     valueobjects.NodeID        `json:"target"`
	Type       EdgeType                   `json:"type"`
	Label      string                     `json:"label,omitempty"`
	Properties map[string]any             `json:"properties,omitempty"`
	Evidence   []valueobjects.EvidenceRef `json:"evidence"`
	CreatedAt  time.Time                  `json:"createdAt"`
}

// NewEdge creates an edge. An empty id is replaced with a generated one.
func NewEdge(id string, source, target valueobjects.NodeID, edgeType EdgeType) (*Edge, error) {
	if source.IsZero() || target.IsZero() {
		return nil, pkgerrors.NewValidationError("edge requires both source and target node ids")
	}
	if edgeType == "" {
		return nil, pkgerrors.NewValidationError("edge type is required")
	}
	if id == "" {
		id = uuid.New().String()
	}

	return &Edge{
		ID:        id,
		Source:    source,
		Target:    target,
		Type:      edgeType,
		Evidence:  []valueobjects.EvidenceRef{},
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Normalize fills nil collections so serialized output always carries
// explicit empty lists rather than null, and stamps the record-creation
// time on edges decoded from payloads that omit it.
func (e *Edge) Normalize() {
	if e.Evidence == nil {
		e.Evidence = []valueobjects.EvidenceRef{}
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
}

// Touches reports whether the edge is incident to the given node.
func (e *Edge) Touches(nodeID valueobjects.NodeID) bool {
	return e.Source.Equals(nodeID) || e.Target.Equals(nodeID)
}

// Other returns the opposite endpoint of the edge relative to nodeID.
func (e *Edge) Other(nodeID valueobjects.NodeID) valueobjects.NodeID {
	if e.Source.Equals(nodeID) {
		return e.Target
	}
	return e.Source
}

// Clone returns a copy safe to hand out of the aggregate.
func (e *Edge) Clone() *Edge {
	cp := *e
	if e.Properties != nil {
		cp.Properties = make(map[string]any, len(e.Properties))
		for k, v := range e.Properties {
			cp.Properties[k] = v
		}
	}
	cp.Evidence = make([]valueobjects.EvidenceRef, len(e.Evidence))
	copy(cp.Evidence, e.Evidence)
	return &cp
}
