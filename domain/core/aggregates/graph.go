package aggregates

import (
	"time"

	"medatlas-backend/domain/core/entities"
	"medatlas-backend/domain/core/valueobjects"
	"medatlas-backend/domain/events"
	pkgerrors "medatlas-backend/pkg/errors"

	"github.com/google/uuid"
)

// Direction selects which incident edges of a node to consider.
type Direction string

const (
	DirectionIn   Direction = "in"
	DirectionOut  Direction = "out"
	DirectionBoth Direction = "both"
)

// ParseDirection maps a string to a Direction, defaulting to both.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "", string(DirectionBoth):
		return DirectionBoth, nil
	case string(DirectionIn):
		return DirectionIn, nil
	case string(DirectionOut):
		return DirectionOut, nil
	}
	return "", pkgerrors.NewInvalidFilterError("direction must be one of in, out, both")
}

// Graph is the aggregate root for one patient-history graph.
// It exclusively owns its nodes and edges; nothing is shared across graph
// instances. The aggregate is not internally thread-safe: callers serialize
// mutations per instance, while read-only operations may run concurrently
// with each other.
type Graph struct {
	id        string
	nodes     map[valueobjects.NodeID]*entities.Node
	edges     map[string]*entities.Edge
	createdAt time.Time
	updatedAt time.Time
	events    []events.DomainEvent
}

// NewGraph creates a new empty graph aggregate.
func NewGraph(id string) *Graph {
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now().UTC()
	g := &Graph{
		id:        id,
		nodes:     make(map[valueobjects.NodeID]*entities.Node),
		edges:     make(map[string]*entities.Edge),
		createdAt: now,
		updatedAt: now,
	}
	g.addEvent(events.NewGraphCreated(id, now))
	return g
}

// ID returns the graph's unique identifier.
func (g *Graph) ID() string {
	return g.id
}

// CreatedAt returns when the graph was created.
func (g *Graph) CreatedAt() time.Time {
	return g.createdAt
}

// UpdatedAt returns when the graph last changed.
func (g *Graph) UpdatedAt() time.Time {
	return g.updatedAt
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// AddNode inserts a node or replaces the existing node with the same id.
// Replacement is whole-record: the previous value is discarded entirely.
func (g *Graph) AddNode(node *entities.Node) error {
	if node == nil {
		return pkgerrors.NewValidationError("node cannot be nil")
	}
	if node.ID.IsZero() {
		return pkgerrors.NewValidationError("node id is required")
	}
	if !node.Type.IsValid() {
		return pkgerrors.NewValidationError("unknown node type: " + string(node.Type))
	}
	node.Normalize()

	_, replace := g.nodes[node.ID]
	g.nodes[node.ID] = node
	g.touch()

	g.addEvent(events.NewNodeUpserted(g.id, node.ID, replace, g.updatedAt))
	return nil
}

// AddEdge inserts an edge or replaces the existing edge with the same id.
// Both endpoints must already be present; otherwise the mutation is
// rejected and the graph is unchanged.
func (g *Graph) AddEdge(edge *entities.Edge) error {
	if edge == nil {
		return pkgerrors.NewValidationError("edge cannot be nil")
	}
	if edge.ID == "" {
		return pkgerrors.NewValidationError("edge id is required")
	}
	if _, ok := g.nodes[edge.Source]; !ok {
		return pkgerrors.NewDanglingReferenceError(edge.ID, edge.Source.String())
	}
	if _, ok := g.nodes[edge.Target]; !ok {
		return pkgerrors.NewDanglingReferenceError(edge.ID, edge.Target.String())
	}
	edge.Normalize()

	g.edges[edge.ID] = edge
	g.touch()

	g.addEvent(events.NewEdgeCreated(g.id, edge.ID, edge.Source, edge.Target, string(edge.Type), g.updatedAt))
	return nil
}

// GetNode retrieves a node by id. A miss is an absent result, not an error.
func (g *Graph) GetNode(id valueobjects.NodeID) (*entities.Node, bool) {
	node, ok := g.nodes[id]
	return node, ok
}

// GetEdge retrieves an edge by id.
func (g *Graph) GetEdge(id string) (*entities.Edge, bool) {
	edge, ok := g.edges[id]
	return edge, ok
}

// GetEdges returns the edges incident to a node in the given direction.
// Adjacency is derived by linear scan; the graph keeps no edge index.
func (g *Graph) GetEdges(nodeID valueobjects.NodeID, dir Direction) []*entities.Edge {
	out := []*entities.Edge{}
	for _, edge := range g.edges {
		switch dir {
		case DirectionOut:
			if edge.Source.Equals(nodeID) {
				out = append(out, edge)
			}
		case DirectionIn:
			if edge.Target.Equals(nodeID) {
				out = append(out, edge)
			}
		default:
			if edge.Touches(nodeID) {
				out = append(out, edge)
			}
		}
	}
	return out
}

// Neighbors returns the de-duplicated ids of nodes connected to nodeID in
// the given direction.
func (g *Graph) Neighbors(nodeID valueobjects.NodeID, dir Direction) []valueobjects.NodeID {
	seen := make(map[valueobjects.NodeID]bool)
	ids := []valueobjects.NodeID{}
	for _, edge := range g.GetEdges(nodeID, dir) {
		var next valueobjects.NodeID
		switch dir {
		case DirectionOut:
			next = edge.Target
		case DirectionIn:
			next = edge.Source
		default:
			next = edge.Other(nodeID)
		}
		if next.Equals(nodeID) || seen[next] {
			continue
		}
		seen[next] = true
		ids = append(ids, next)
	}
	return ids
}

// RemoveNode deletes the node and cascades deletion of every edge where the
// node is source or target. It reports whether anything was removed.
func (g *Graph) RemoveNode(id valueobjects.NodeID) bool {
	if _, ok := g.nodes[id]; !ok {
		return false
	}

	cascaded := 0
	for key, edge := range g.edges {
		if edge.Touches(id) {
			delete(g.edges, key)
			cascaded++
		}
	}
	delete(g.nodes, id)
	g.touch()

	g.addEvent(events.NewNodeRemoved(g.id, id, cascaded, g.updatedAt))
	return true
}

// RemoveEdge deletes an edge by id only; endpoints are untouched.
func (g *Graph) RemoveEdge(id string) bool {
	if _, ok := g.edges[id]; !ok {
		return false
	}
	delete(g.edges, id)
	g.touch()

	g.addEvent(events.NewEdgeRemoved(g.id, id, g.updatedAt))
	return true
}

// Nodes returns all nodes in the graph.
func (g *Graph) Nodes() []*entities.Node {
	nodes := make([]*entities.Node, 0, len(g.nodes))
	for _, node := range g.nodes {
		nodes = append(nodes, node)
	}
	return nodes
}

// Edges returns all edges in the graph.
func (g *Graph) Edges() []*entities.Edge {
	edges := make([]*entities.Edge, 0, len(g.edges))
	for _, edge := range g.edges {
		edges = append(edges, edge)
	}
	return edges
}

// Validate ensures graph invariants: no edge may reference a missing node.
func (g *Graph) Validate() error {
	for _, edge := range g.edges {
		if _, ok := g.nodes[edge.Source]; !ok {
			return pkgerrors.NewDanglingReferenceError(edge.ID, edge.Source.String())
		}
		if _, ok := g.nodes[edge.Target]; !ok {
			return pkgerrors.NewDanglingReferenceError(edge.ID, edge.Target.String())
		}
	}
	return nil
}

// RecordImport raises the batch-import event once a bulk load has landed.
// The per-element upsert events describe each mutation; this one marks the
// import operation itself.
func (g *Graph) RecordImport(nodeCount, edgeCount int) {
	g.addEvent(events.NewGraphImported(g.id, nodeCount, edgeCount, time.Now().UTC()))
}

// GetUncommittedEvents returns all uncommitted domain events.
func (g *Graph) GetUncommittedEvents() []events.DomainEvent {
	out := make([]events.DomainEvent, len(g.events))
	copy(out, g.events)
	return out
}

// MarkEventsAsCommitted clears all uncommitted events.
func (g *Graph) MarkEventsAsCommitted() {
	g.events = nil
}

func (g *Graph) addEvent(event events.DomainEvent) {
	g.events = append(g.events, event)
}

func (g *Graph) touch() {
	g.updatedAt = time.Now().UTC()
}
