package events

import (
	"time"

	"medatlas-backend/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Graph Events

// GraphCreated is raised when a new graph is created
type GraphCreated struct {
	BaseEvent
	GraphID string `json:"graph_id"`
}

// NewGraphCreated creates a GraphCreated event
func NewGraphCreated(graphID string, timestamp time.Time) GraphCreated {
	return GraphCreated{
		BaseEvent: BaseEvent{
			AggregateID: graphID,
			EventType:   "graph.created",
			Timestamp:   timestamp,
			Version:     1,
		},
		GraphID: graphID,
	}
}

// GraphImported is raised when a batch of nodes and edges is loaded into a
// graph in one operation
type GraphImported struct {
	BaseEvent
	GraphID   string `json:"graph_id"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

// NewGraphImported creates a GraphImported event
func NewGraphImported(graphID string, nodeCount, edgeCount int, timestamp time.Time) GraphImported {
	return GraphImported{
		BaseEvent: BaseEvent{
			AggregateID: graphID,
			EventType:   "graph.imported",
			Timestamp:   timestamp,
			Version:     1,
		},
		GraphID:   graphID,
		NodeCount: nodeCount,
		EdgeCount: edgeCount,
	}
}

// Node Events

// NodeUpserted is raised when a node is inserted or replaced
type NodeUpserted struct {
	BaseEvent
	GraphID string              `json:"graph_id"`
	NodeID  valueobjects.NodeID `json:"node_id"`
	Replace bool                `json:"replace"`
}

// NewNodeUpserted creates a NodeUpserted event
func NewNodeUpserted(graphID string, nodeID valueobjects.NodeID, replace bool, timestamp time.Time) NodeUpserted {
	return NodeUpserted{
		BaseEvent: BaseEvent{
			AggregateID: graphID,
			EventType:   "graph.node_upserted",
			Timestamp:   timestamp,
			Version:     1,
		},
		GraphID: graphID,
		NodeID:  nodeID,
		Replace: replace,
	}
}

// NodeRemoved is raised when a node is deleted along with its incident edges
type NodeRemoved struct {
	BaseEvent
	GraphID       string              `json:"graph_id"`
	NodeID        valueobjects.NodeID `json:"node_id"`
	CascadedEdges int                 `json:"cascaded_edges"`
}

// NewNodeRemoved creates a NodeRemoved event
func NewNodeRemoved(graphID string, nodeID valueobjects.NodeID, cascadedEdges int, timestamp time.Time) NodeRemoved {
	return NodeRemoved{
		BaseEvent: BaseEvent{
			AggregateID: graphID,
			EventType:   "graph.node_removed",
			Timestamp:   timestamp,
			Version:     1,
		},
		GraphID:       graphID,
		NodeID:        nodeID,
		CascadedEdges: cascadedEdges,
	}
}

// Edge Events

// EdgeCreated is raised when an edge is inserted or replaced
type EdgeCreated struct {
	BaseEvent
	GraphID  string              `json:"graph_id"`
	EdgeID   string              `json:"edge_id"`
	SourceID valueobjects.NodeID `json:"source_id"`
	TargetID valueobjects.NodeID `json:"target_id"`
	EdgeType string              `json:"edge_type"`
}

// NewEdgeCreated creates an EdgeCreated event
func NewEdgeCreated(graphID, edgeID string, sourceID, targetID valueobjects.NodeID, edgeType string, timestamp time.Time) EdgeCreated {
	return EdgeCreated{
		BaseEvent: BaseEvent{
			AggregateID: graphID,
			EventType:   "graph.edge_created",
			Timestamp:   timestamp,
			Version:     1,
		},
		GraphID:  graphID,
		EdgeID:   edgeID,
		SourceID: sourceID,
		TargetID: targetID,
		EdgeType: edgeType,
	}
}

// EdgeRemoved is raised when an edge is deleted by id
type EdgeRemoved struct {
	BaseEvent
	GraphID string `json:"graph_id"`
	EdgeID  string `json:"edge_id"`
}

// NewEdgeRemoved creates an EdgeRemoved event
func NewEdgeRemoved(graphID, edgeID string, timestamp time.Time) EdgeRemoved {
	return EdgeRemoved{
		BaseEvent: BaseEvent{
			AggregateID: graphID,
			EventType:   "graph.edge_removed",
			Timestamp:   timestamp,
			Version:     1,
		},
		GraphID: graphID,
		EdgeID:  edgeID,
	}
}
