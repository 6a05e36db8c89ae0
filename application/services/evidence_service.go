package services

import (
	"fmt"

	"medatlas-backend/domain/core/aggregates"
	"medatlas-backend/domain/core/entities"
	"medatlas-backend/domain/core/valueobjects"

	"go.uber.org/zap"
)

// RelationshipRoot is the relationship label of the seed step of a chain.
const RelationshipRoot = "root"

// EvidenceChainStep records one node on the provenance trail together with
// the edge type that led to it.
type EvidenceChainStep struct {
	NodeID       string                     `json:"nodeId"`
	Relationship string                     `json:"relationship"`
	Label        string                     `json:"label"`
	NodeType     entities.NodeType          `json:"nodeType"`
	Evidence     []valueobjects.EvidenceRef `json:"evidence"`
}

// EvidenceChain is the breadth-first provenance trail from a root node back
// through its supporting relationships. Depth is the maximum BFS depth
// actually reached, which exceeds len(Chain)-1 whenever any node has more
// than one unvisited neighbor.
type EvidenceChain struct {
	RootNodeID string              `json:"rootNodeId"`
	RootLabel  string              `json:"rootLabel,omitempty"`
	Chain      []EvidenceChainStep `json:"chain"`
	Depth      int                 `json:"depth"`
}

// SourceArtifact is one de-duplicated originating record referenced by a
// chain.
type SourceArtifact struct {
	Source valueobjects.Source `json:"source"`
	ID     string              `json:"id"`
	URI    string              `json:"uri,omitempty"`
	Title  string              `json:"title"`
}

// EvidenceService builds and manipulates provenance chains.
type EvidenceService struct {
	logger *zap.Logger
}

// NewEvidenceService creates an evidence service.
func NewEvidenceService(logger *zap.Logger) *EvidenceService {
	return &EvidenceService{logger: logger}
}

// BuildChain walks breadth-first from rootID, collecting one step per
// visited node with the edge type that reached it ("root" for the seed).
// Neighbors are followed in either direction. An absent root yields an
// empty zero-depth chain: no evidence available is a valid clinical
// answer, not an error.
func (s *EvidenceService) BuildChain(graph *aggregates.Graph, rootID string, maxDepth int) *EvidenceChain {
	chain := &EvidenceChain{
		RootNodeID: rootID,
		Chain:      []EvidenceChainStep{},
	}

	id, err := valueobjects.NewNodeIDFromString(rootID)
	if err != nil {
		return chain
	}
	root, ok := graph.GetNode(id)
	if !ok {
		return chain
	}
	chain.RootLabel = root.Label

	type frame struct {
		id           valueobjects.NodeID
		relationship string
		depth        int
	}

	visited := map[valueobjects.NodeID]bool{id: true}
	queue := []frame{{id: id, relationship: RelationshipRoot, depth: 0}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		node, ok := graph.GetNode(current.id)
		if !ok {
			continue
		}

		chain.Chain = append(chain.Chain, EvidenceChainStep{
			NodeID:       current.id.String(),
			Relationship: current.relationship,
			Label:        node.Label,
			NodeType:     node.Type,
			Evidence:     append([]valueobjects.EvidenceRef{}, node.Evidence...),
		})
		if current.depth > chain.Depth {
			chain.Depth = current.depth
		}

		if current.depth >= maxDepth {
			continue
		}

		for _, edge := range graph.GetEdges(current.id, aggregates.DirectionBoth) {
			next := edge.Other(current.id)
			if visited[next] {
				continue
			}
			visited[next] = true
			queue = append(queue, frame{
				id:           next,
				relationship: string(edge.Type),
				depth:        current.depth + 1,
			})
		}
	}

	s.logger.Debug("built evidence chain",
		zap.String("rootId", rootID),
		zap.Int("steps", len(chain.Chain)),
		zap.Int("depth", chain.Depth),
	)
	return chain
}

// ValidateChain reports whether every step's node exists in the graph, the
// first step is the root seed, and no node id repeats.
func (s *EvidenceService) ValidateChain(chain *EvidenceChain, graph *aggregates.Graph) bool {
	if chain == nil {
		return false
	}
	if len(chain.Chain) == 0 {
		return true
	}

	first := chain.Chain[0]
	if first.Relationship != RelationshipRoot || first.NodeID != chain.RootNodeID {
		return false
	}

	seen := make(map[string]bool, len(chain.Chain))
	for _, step := range chain.Chain {
		if seen[step.NodeID] {
			return false
		}
		seen[step.NodeID] = true

		id, err := valueobjects.NewNodeIDFromString(step.NodeID)
		if err != nil {
			return false
		}
		if _, ok := graph.GetNode(id); !ok {
			return false
		}
	}
	return true
}

// SourceArtifacts flattens the union of every step's evidence into a
// de-duplicated (by source+id) artifact list, titled from the source kind
// and the step the reference first appeared on.
func (s *EvidenceService) SourceArtifacts(chain *EvidenceChain) []SourceArtifact {
	artifacts := []SourceArtifact{}
	if chain == nil {
		return artifacts
	}

	seen := make(map[string]bool)
	for _, step := range chain.Chain {
		for _, ref := range step.Evidence {
			if seen[ref.Key()] {
				continue
			}
			seen[ref.Key()] = true
			artifacts = append(artifacts, SourceArtifact{
				Source: ref.Source,
				ID:     ref.ID,
				URI:    ref.URI,
				Title:  fmt.Sprintf("%s: %s", ref.Source, step.Label),
			})
		}
	}
	return artifacts
}

// MergeChains unions multiple chains' steps by node id, concatenating and
// de-duplicating evidence per node. The merged chain keeps the first
// chain's root and the maximum depth across inputs.
func (s *EvidenceService) MergeChains(chains []*EvidenceChain) *EvidenceChain {
	merged := &EvidenceChain{Chain: []EvidenceChainStep{}}
	if len(chains) == 0 {
		return merged
	}

	merged.RootNodeID = chains[0].RootNodeID
	merged.RootLabel = chains[0].RootLabel

	index := make(map[string]int)
	for _, chain := range chains {
		if chain == nil {
			continue
		}
		if chain.Depth > merged.Depth {
			merged.Depth = chain.Depth
		}
		for _, step := range chain.Chain {
			if at, ok := index[step.NodeID]; ok {
				combined := append(merged.Chain[at].Evidence, step.Evidence...)
				merged.Chain[at].Evidence = valueobjects.DedupeEvidence(combined)
				continue
			}
			cp := step
			cp.Evidence = valueobjects.DedupeEvidence(step.Evidence)
			index[step.NodeID] = len(merged.Chain)
			merged.Chain = append(merged.Chain, cp)
		}
	}
	return merged
}
