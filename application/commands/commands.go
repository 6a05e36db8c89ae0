package commands

import (
	"errors"

	"medatlas-backend/domain/core/aggregates"
	"medatlas-backend/domain/core/entities"
)

// CreateGraphCommand creates a new, empty graph. An empty GraphID requests
// a generated one; the generated id is written back to the command so the
// caller can report it.
type CreateGraphCommand struct {
	GraphID string `json:"graphId,omitempty"`

	// CreatedID receives the id of the created graph.
	CreatedID *string `json:"-"`
}

// Validate validates the command
func (c CreateGraphCommand) Validate() error {
	return nil
}

// DeleteGraphCommand removes a stored graph.
type DeleteGraphCommand struct {
	GraphID string `json:"graphId"`
}

// Validate validates the command
func (c DeleteGraphCommand) Validate() error {
	if c.GraphID == "" {
		return errors.New("graphId is required")
	}
	return nil
}

// UpsertNodeCommand inserts a node or replaces the node with the same id.
type UpsertNodeCommand struct {
	GraphID string         `json:"graphId"`
	Node    *entities.Node `json:"node"`
}

// Validate validates the command
func (c UpsertNodeCommand) Validate() error {
	if c.GraphID == "" {
		return errors.New("graphId is required")
	}
	if c.Node == nil {
		return errors.New("node is required")
	}
	if c.Node.ID.IsZero() {
		return errors.New("node id is required")
	}
	return nil
}

// CreateEdgeCommand inserts an edge between two existing nodes.
type CreateEdgeCommand struct {
	GraphID string         `json:"graphId"`
	Edge    *entities.Edge `json:"edge"`
}

// Validate validates the command
func (c CreateEdgeCommand) Validate() error {
	if c.GraphID == "" {
		return errors.New("graphId is required")
	}
	if c.Edge == nil {
		return errors.New("edge is required")
	}
	if c.Edge.Source.IsZero() || c.Edge.Target.IsZero() {
		return errors.New("edge source and target are required")
	}
	return nil
}

// DeleteNodeCommand removes a node and cascades to its incident edges.
type DeleteNodeCommand struct {
	GraphID string `json:"graphId"`
	NodeID  string `json:"nodeId"`
}

// Validate validates the command
func (c DeleteNodeCommand) Validate() error {
	if c.GraphID == "" {
		return errors.New("graphId is required")
	}
	if c.NodeID == "" {
		return errors.New("nodeId is required")
	}
	return nil
}

// DeleteEdgeCommand removes an edge by id; endpoints are untouched.
type DeleteEdgeCommand struct {
	GraphID string `json:"graphId"`
	EdgeID  string `json:"edgeId"`
}

// Validate validates the command
func (c DeleteEdgeCommand) Validate() error {
	if c.GraphID == "" {
		return errors.New("graphId is required")
	}
	if c.EdgeID == "" {
		return errors.New("edgeId is required")
	}
	return nil
}

// ImportGraphCommand loads a GraphData batch into a graph. Replace swaps
// the entire graph state for the snapshot; otherwise nodes are upserted
// first and edges after them, so every edge's endpoints exist by the time
// it is added.
type ImportGraphCommand struct {
	GraphID string                `json:"graphId"`
	Data    *aggregates.GraphData `json:"data"`
	Replace bool                  `json:"replace"`
}

// Validate validates the command
func (c ImportGraphCommand) Validate() error {
	if c.GraphID == "" {
		return errors.New("graphId is required")
	}
	if c.Data == nil {
		return errors.New("data is required")
	}
	return nil
}
