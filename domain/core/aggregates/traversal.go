package aggregates

import (
	"medatlas-backend/domain/core/entities"
	"medatlas-backend/domain/core/valueobjects"
)

// TraversalNode is a node emitted by a breadth-first walk together with the
// depth at which it was first reached.
type TraversalNode struct {
	Node  *entities.Node `json:"node"`
	Depth int            `json:"depth"`
}

// Traverse walks the graph breadth-first from startID. Each reachable node
// is emitted at most once even in the presence of cycles. Nodes are
// expanded only while their depth is below maxDepth, so nodes at exactly
// maxDepth are emitted but not expanded further. An absent start node
// yields an empty result, not an error.
func (g *Graph) Traverse(startID valueobjects.NodeID, dir Direction, maxDepth int) []TraversalNode {
	start, ok := g.nodes[startID]
	if !ok {
		return []TraversalNode{}
	}

	type frame struct {
		id    valueobjects.NodeID
		depth int
	}

	visited := map[valueobjects.NodeID]bool{startID: true}
	queue := []frame{{id: startID, depth: 0}}
	result := []TraversalNode{{Node: start, Depth: 0}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current.depth >= maxDepth {
			continue
		}

		for _, next := range g.Neighbors(current.id, dir) {
			if visited[next] {
				continue
			}
			visited[next] = true
			node := g.nodes[next]
			result = append(result, TraversalNode{Node: node, Depth: current.depth + 1})
			queue = append(queue, frame{id: next, depth: current.depth + 1})
		}
	}

	return result
}
