package entities

import (
	"time"

	"medatlas-backend/domain/core/valueobjects"
	pkgerrors "medatlas-backend/pkg/errors"
)

// NodeType classifies the clinical entity a node represents.
type NodeType string

const (
	NodeTypePatient     NodeType = "patient"
	NodeTypeEncounter   NodeType = "encounter"
	NodeTypeObservation NodeType = "observation"
	NodeTypeStudy       NodeType = "study"
	NodeTypeImage       NodeType = "image"
	NodeTypeNote        NodeType = "note"
	NodeTypeLab         NodeType = "lab"
	NodeTypeMedication  NodeType = "medication"
	NodeTypeCondition   NodeType = "condition"
	NodeTypeFinding     NodeType = "finding"
	NodeTypeVital       NodeType = "vital"
	NodeTypeProcedure   NodeType = "procedure"
)

// IsValid reports whether the node type is one of the known kinds.
func (t NodeType) IsValid() bool {
	switch t {
	case NodeTypePatient, NodeTypeEncounter, NodeTypeObservation, NodeTypeStudy,
		NodeTypeImage, NodeTypeNote, NodeTypeLab, NodeTypeMedication,
		NodeTypeCondition, NodeTypeFinding, NodeTypeVital, NodeTypeProcedure:
		return true
	}
	return false
}

// Reserved property keys. PropPatientID links any node to the patient it
// belongs to and is what patient-scoped queries match against.
const (
	PropPatientID = "patientId"
)

// Node is a typed entity in the clinical graph. Fields are exported with
// fixed JSON names because the wire format is part of the contract with
// ingestion adapters and downstream consumers.
//
// Timestamp is the clinical occurrence time and is distinct from CreatedAt,
// the record-creation time. Nodes are replaced whole on upsert, never
// partially patched.
type Node struct {
	ID         valueobjects.NodeID        `json:"id"`
	Type       NodeType                   `json:"type"`
	Label      string                     `json:"label"`
	Properties map[string]any             `json:"properties"`
	Evidence   []valueobjects.EvidenceRef `json:"evidence"`
	Timestamp  *time.Time                 `json:"timestamp,omitempty"`
	CreatedAt  time.Time                  `json:"createdAt"`
}

// NewNode creates a node. An empty id is replaced with a generated one;
// external ids from source systems are kept as-is.
func NewNode(id string, nodeType NodeType, label string) (*Node, error) {
	if !nodeType.IsValid() {
		return nil, pkgerrors.NewValidationError("unknown node type: " + string(nodeType))
	}

	var nodeID valueobjects.NodeID
	if id == "" {
		nodeID = valueobjects.NewNodeID()
	} else {
		var err error
		nodeID, err = valueobjects.NewNodeIDFromString(id)
		if err != nil {
			return nil, pkgerrors.NewValidationError(err.Error())
		}
	}

	return &Node{
		ID:         nodeID,
		Type:       nodeType,
		Label:      label,
		Properties: map[string]any{},
		Evidence:   []valueobjects.EvidenceRef{},
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// Normalize fills nil collections so serialized output always carries
// explicit empty lists rather than null, and stamps the record-creation
// time on nodes decoded from payloads that omit it.
func (n *Node) Normalize() {
	if n.Properties == nil {
		n.Properties = map[string]any{}
	}
	if n.Evidence == nil {
		n.Evidence = []valueobjects.EvidenceRef{}
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
}

// PatientID returns the reserved patientId property, if present.
func (n *Node) PatientID() string {
	return n.StringProp(PropPatientID)
}

// HasTimestamp reports whether the node carries an occurrence time.
func (n *Node) HasTimestamp() bool {
	return n.Timestamp != nil
}

// StringProp returns a property as a string, or "" when absent or not a
// string.
func (n *Node) StringProp(key string) string {
	if v, ok := n.Properties[key].(string); ok {
		return v
	}
	return ""
}

// BoolProp returns a property as a bool, or false when absent.
func (n *Node) BoolProp(key string) bool {
	if v, ok := n.Properties[key].(bool); ok {
		return v
	}
	return false
}

// FloatProp returns a numeric property. JSON decoding produces float64, but
// programmatic callers may set int values, so both are accepted.
func (n *Node) FloatProp(key string) (float64, bool) {
	switch v := n.Properties[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// Clone returns a deep-enough copy for snapshot isolation: the property map
// and evidence list are copied, property values are treated as immutable.
func (n *Node) Clone() *Node {
	cp := *n
	cp.Properties = make(map[string]any, len(n.Properties))
	for k, v := range n.Properties {
		cp.Properties[k] = v
	}
	cp.Evidence = make([]valueobjects.EvidenceRef, len(n.Evidence))
	copy(cp.Evidence, n.Evidence)
	if n.Timestamp != nil {
		ts := *n.Timestamp
		cp.Timestamp = &ts
	}
	return &cp
}
