package aggregates

import (
	"sort"
	"time"

	"medatlas-backend/domain/core/entities"
	"medatlas-backend/domain/core/valueobjects"
	pkgerrors "medatlas-backend/pkg/errors"
)

// GraphMetadata is the metadata block carried by a serialized graph.
type GraphMetadata struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	NodeCount int       `json:"nodeCount"`
	EdgeCount int       `json:"edgeCount"`
}

// GraphData is the full serialized form of a graph: the shape exchanged
// with ingestion adapters, the storage backend and the API layer.
type GraphData struct {
	ID       string           `json:"id"`
	Nodes    []*entities.Node `json:"nodes"`
	Edges    []*entities.Edge `json:"edges"`
	Metadata GraphMetadata    `json:"metadata"`
}

// Serialize produces a complete snapshot of the graph. Nodes and edges are
// deep-copied so the snapshot stays stable if the graph mutates afterwards;
// they are sorted by id purely for deterministic output, edge order carries
// no meaning.
func (g *Graph) Serialize() *GraphData {
	nodes := make([]*entities.Node, 0, len(g.nodes))
	for _, node := range g.nodes {
		nodes = append(nodes, node.Clone())
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID.String() < nodes[j].ID.String() })

	edges := make([]*entities.Edge, 0, len(g.edges))
	for _, edge := range g.edges {
		edges = append(edges, edge.Clone())
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].ID < edges[j].ID })

	return &GraphData{
		ID:    g.id,
		Nodes: nodes,
		Edges: edges,
		Metadata: GraphMetadata{
			CreatedAt: g.createdAt,
			UpdatedAt: g.updatedAt,
			NodeCount: len(g.nodes),
			EdgeCount: len(g.edges),
		},
	}
}

// Deserialize replaces the entire in-memory state of the graph with the
// snapshot; this is a full replacement, not a merge. The snapshot is
// validated first, so a bad snapshot leaves the graph untouched.
func (g *Graph) Deserialize(data *GraphData) error {
	if data == nil {
		return pkgerrors.NewValidationError("graph data cannot be nil")
	}

	nodes := make(map[valueobjects.NodeID]*entities.Node, len(data.Nodes))
	for _, node := range data.Nodes {
		if node == nil || node.ID.IsZero() {
			return pkgerrors.NewValidationError("snapshot contains a node without an id")
		}
		cp := node.Clone()
		cp.Normalize()
		nodes[cp.ID] = cp
	}

	edges := make(map[string]*entities.Edge, len(data.Edges))
	for _, edge := range data.Edges {
		if edge == nil || edge.ID == "" {
			return pkgerrors.NewValidationError("snapshot contains an edge without an id")
		}
		if _, ok := nodes[edge.Source]; !ok {
			return pkgerrors.NewDanglingReferenceError(edge.ID, edge.Source.String())
		}
		if _, ok := nodes[edge.Target]; !ok {
			return pkgerrors.NewDanglingReferenceError(edge.ID, edge.Target.String())
		}
		cp := edge.Clone()
		cp.Normalize()
		edges[cp.ID] = cp
	}

	if data.ID != "" {
		g.id = data.ID
	}
	g.nodes = nodes
	g.edges = edges
	if !data.Metadata.CreatedAt.IsZero() {
		g.createdAt = data.Metadata.CreatedAt
	}
	if !data.Metadata.UpdatedAt.IsZero() {
		g.updatedAt = data.Metadata.UpdatedAt
	} else {
		g.touch()
	}
	return nil
}

// FromData reconstructs a graph aggregate from a snapshot.
func FromData(data *GraphData) (*Graph, error) {
	id := ""
	if data != nil {
		id = data.ID
	}
	g := NewGraph(id)
	g.MarkEventsAsCommitted()
	if err := g.Deserialize(data); err != nil {
		return nil, err
	}
	return g, nil
}
