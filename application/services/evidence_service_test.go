package services

import (
	"testing"

	"medatlas-backend/domain/core/aggregates"
	"medatlas-backend/domain/core/entities"
	"medatlas-backend/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// evidenceGraph builds a finding with an imaging branch and a lab branch:
//
//	finding-1 -> study-1 -> image-1
//	finding-1 -> lab-1
func evidenceGraph(t *testing.T) *aggregates.Graph {
	t.Helper()
	graph := aggregates.NewGraph("g1")

	finding := buildNode(t, "finding-1", entities.NodeTypeFinding, "Right lower lobe opacity")
	require.NoError(t, graph.AddNode(finding))

	study := buildNode(t, "study-1", entities.NodeTypeStudy, "Chest CT")
	study.Evidence = []valueobjects.EvidenceRef{{Source: valueobjects.SourceDICOM, ID: "study-uid-1"}}
	require.NoError(t, graph.AddNode(study))

	image := buildNode(t, "image-1", entities.NodeTypeImage, "Axial slice 42")
	image.Evidence = []valueobjects.EvidenceRef{{Source: valueobjects.SourceDICOM, ID: "study-uid-1"}}
	require.NoError(t, graph.AddNode(image))

	lab := buildNode(t, "lab-1", entities.NodeTypeLab, "CRP")
	lab.Evidence = []valueobjects.EvidenceRef{{Source: valueobjects.SourceLab, ID: "lis-123", URI: "lis://123"}}
	require.NoError(t, graph.AddNode(lab))

	require.NoError(t, graph.AddEdge(buildEdge(t, "e1", "finding-1", "study-1", entities.EdgeTypeDerivedFrom)))
	require.NoError(t, graph.AddEdge(buildEdge(t, "e2", "study-1", "image-1", entities.EdgeTypePartOf)))
	require.NoError(t, graph.AddEdge(buildEdge(t, "e3", "finding-1", "lab-1", entities.EdgeTypeHasEvidence)))

	return graph
}

func TestBuildChain_CollectsStepsWithRelationships(t *testing.T) {
	svc := NewEvidenceService(zap.NewNop())
	graph := evidenceGraph(t)

	chain := svc.BuildChain(graph, "finding-1", 5)

	require.Len(t, chain.Chain, 4)
	assert.Equal(t, "finding-1", chain.RootNodeID)
	assert.Equal(t, "Right lower lobe opacity", chain.RootLabel)

	first := chain.Chain[0]
	assert.Equal(t, "finding-1", first.NodeID)
	assert.Equal(t, RelationshipRoot, first.Relationship)

	byID := map[string]EvidenceChainStep{}
	for _, step := range chain.Chain {
		byID[step.NodeID] = step
	}
	assert.Equal(t, string(entities.EdgeTypeDerivedFrom), byID["study-1"].Relationship)
	assert.Equal(t, string(entities.EdgeTypePartOf), byID["image-1"].Relationship)
	assert.Equal(t, string(entities.EdgeTypeHasEvidence), byID["lab-1"].Relationship)
}

func TestBuildChain_DepthIsMaxBFSDepth(t *testing.T) {
	svc := NewEvidenceService(zap.NewNop())
	graph := evidenceGraph(t)

	chain := svc.BuildChain(graph, "finding-1", 5)

	// image-1 sits two hops out; the branch to lab-1 is only one.
	assert.Equal(t, 2, chain.Depth)
}

func TestBuildChain_MaxDepthStopsExpansion(t *testing.T) {
	svc := NewEvidenceService(zap.NewNop())
	graph := evidenceGraph(t)

	chain := svc.BuildChain(graph, "finding-1", 1)

	require.Len(t, chain.Chain, 3)
	assert.Equal(t, 1, chain.Depth)
	for _, step := range chain.Chain {
		assert.NotEqual(t, "image-1", step.NodeID)
	}
}

func TestBuildChain_AbsentRootYieldsEmptyChain(t *testing.T) {
	svc := NewEvidenceService(zap.NewNop())
	graph := evidenceGraph(t)

	chain := svc.BuildChain(graph, "ghost", 5)

	assert.Equal(t, "ghost", chain.RootNodeID)
	assert.Empty(t, chain.Chain)
	assert.Equal(t, 0, chain.Depth)
}

func TestValidateChain(t *testing.T) {
	svc := NewEvidenceService(zap.NewNop())
	graph := evidenceGraph(t)

	chain := svc.BuildChain(graph, "finding-1", 5)
	assert.True(t, svc.ValidateChain(chain, graph))

	assert.False(t, svc.ValidateChain(nil, graph))
	assert.True(t, svc.ValidateChain(&EvidenceChain{RootNodeID: "x"}, graph))

	// First step must be the root seed.
	broken := svc.BuildChain(graph, "finding-1", 5)
	broken.Chain[0].Relationship = "derived-from"
	assert.False(t, svc.ValidateChain(broken, graph))

	// A step referencing a removed node invalidates the chain.
	stale := svc.BuildChain(graph, "finding-1", 5)
	id, err := valueobjects.NewNodeIDFromString("lab-1")
	require.NoError(t, err)
	graph.RemoveNode(id)
	assert.False(t, svc.ValidateChain(stale, graph))
}

func TestSourceArtifacts_DedupedBySourceAndID(t *testing.T) {
	svc := NewEvidenceService(zap.NewNop())
	graph := evidenceGraph(t)

	chain := svc.BuildChain(graph, "finding-1", 5)
	artifacts := svc.SourceArtifacts(chain)

	// study-1 and image-1 share the same dicom reference.
	require.Len(t, artifacts, 2)
	keys := map[string]bool{}
	for _, artifact := range artifacts {
		keys[string(artifact.Source)+"/"+artifact.ID] = true
		assert.NotEmpty(t, artifact.Title)
	}
	assert.True(t, keys["dicom/study-uid-1"])
	assert.True(t, keys["lab/lis-123"])
}

func TestMergeChains_UnionsByNodeID(t *testing.T) {
	svc := NewEvidenceService(zap.NewNop())
	graph := evidenceGraph(t)

	full := svc.BuildChain(graph, "finding-1", 5)
	shallow := svc.BuildChain(graph, "finding-1", 1)

	merged := svc.MergeChains([]*EvidenceChain{shallow, full})

	assert.Equal(t, "finding-1", merged.RootNodeID)
	assert.Equal(t, 2, merged.Depth)
	assert.Len(t, merged.Chain, 4)

	// No node id may repeat after the union.
	seen := map[string]bool{}
	for _, step := range merged.Chain {
		assert.False(t, seen[step.NodeID])
		seen[step.NodeID] = true
	}
}

func TestMergeChains_EmptyInput(t *testing.T) {
	svc := NewEvidenceService(zap.NewNop())
	merged := svc.MergeChains(nil)
	assert.Empty(t, merged.Chain)
	assert.Equal(t, 0, merged.Depth)
}
