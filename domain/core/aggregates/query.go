package aggregates

import (
	"reflect"

	"medatlas-backend/domain/core/entities"
	"medatlas-backend/domain/core/valueobjects"
	pkgerrors "medatlas-backend/pkg/errors"
)

// NodeFilter selects nodes by type, patient, occurrence time and property
// equality. All given criteria are AND-matched; the type list is OR-matched
// within itself. Every field is optional; an empty filter selects all nodes.
type NodeFilter struct {
	Types      []entities.NodeType      `json:"types,omitempty"`
	PatientID  string                   `json:"patientId,omitempty"`
	DateRange  *valueobjects.DateRange  `json:"dateRange,omitempty"`
	Properties map[string]any           `json:"properties,omitempty"`
}

// Validate rejects malformed filters before any scanning happens, so a bad
// filter never returns partial results.
func (f NodeFilter) Validate() error {
	for _, t := range f.Types {
		if !t.IsValid() {
			return pkgerrors.NewInvalidFilterError("unknown node type: " + string(t))
		}
	}
	if f.DateRange != nil {
		if err := f.DateRange.Validate(); err != nil {
			return pkgerrors.NewInvalidFilterError(err.Error())
		}
	}
	return nil
}

// Matches reports whether a node satisfies the filter. Nodes without a
// timestamp are excluded whenever a date range is present.
func (f NodeFilter) Matches(node *entities.Node) bool {
	if len(f.Types) > 0 {
		found := false
		for _, t := range f.Types {
			if node.Type == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.PatientID != "" && node.PatientID() != f.PatientID {
		return false
	}
	if f.DateRange != nil && !f.DateRange.IsZero() {
		if !node.HasTimestamp() || !f.DateRange.Contains(*node.Timestamp) {
			return false
		}
	}
	for key, want := range f.Properties {
		got, ok := node.Properties[key]
		if !ok || !propertyEquals(got, want) {
			return false
		}
	}
	return true
}

// EdgeFilter selects edges by type, endpoint and property equality.
type EdgeFilter struct {
	Types      []entities.EdgeType `json:"types,omitempty"`
	Source     string              `json:"source,omitempty"`
	Target     string              `json:"target,omitempty"`
	Properties map[string]any      `json:"properties,omitempty"`
}

// Validate rejects malformed edge filters.
func (f EdgeFilter) Validate() error {
	for _, t := range f.Types {
		if t == "" {
			return pkgerrors.NewInvalidFilterError("edge type filter entry cannot be empty")
		}
	}
	return nil
}

// Matches reports whether an edge satisfies the filter.
func (f EdgeFilter) Matches(edge *entities.Edge) bool {
	if len(f.Types) > 0 {
		found := false
		for _, t := range f.Types {
			if edge.Type == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Source != "" && edge.Source.String() != f.Source {
		return false
	}
	if f.Target != "" && edge.Target.String() != f.Target {
		return false
	}
	for key, want := range f.Properties {
		got, ok := edge.Properties[key]
		if !ok || !propertyEquals(got, want) {
			return false
		}
	}
	return true
}

// QueryNodes returns every node matching the filter via linear scan.
func (g *Graph) QueryNodes(filter NodeFilter) ([]*entities.Node, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	matched := []*entities.Node{}
	for _, node := range g.nodes {
		if filter.Matches(node) {
			matched = append(matched, node)
		}
	}
	return matched, nil
}

// QueryEdges returns every edge matching the filter via linear scan.
func (g *Graph) QueryEdges(filter EdgeFilter) ([]*entities.Edge, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	matched := []*entities.Edge{}
	for _, edge := range g.edges {
		if filter.Matches(edge) {
			matched = append(matched, edge)
		}
	}
	return matched, nil
}

// propertyEquals compares property values across the numeric type skew that
// JSON decoding introduces (programmatic ints vs decoded float64s).
// Non-numeric values are compared structurally: properties are an open bag,
// so both sides may hold decoded []any or map[string]any values, which the
// == operator cannot compare.
func propertyEquals(a, b any) bool {
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			return af == bf
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
