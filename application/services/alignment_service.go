package services

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"medatlas-backend/domain/core/aggregates"
	"medatlas-backend/domain/core/entities"
	"medatlas-backend/domain/core/valueobjects"

	"go.uber.org/zap"
)

// Match types produced by the alignment matcher.
const (
	MatchTypeLocation = "location"
	MatchTypeValue    = "value"
	MatchTypeTemporal = "temporal"
	MatchTypeSemantic = "semantic"
)

// Temporal windows: comparisons on the same node use the tight window,
// cross-node searches the wide one.
const (
	DefaultSameNodeWindow  = time.Hour
	DefaultCrossNodeWindow = 24 * time.Hour
)

// Fixed per-match-type confidences and weights. Semantic confidence is
// derived from the overlap ratio instead.
const (
	locationEqualConfidence  = 0.9
	locationSubstrConfidence = 0.75
	valueMatchConfidence     = 0.8
	temporalMatchConfidence  = 0.7
	semanticMatchThreshold   = 0.4
)

// matchTypeWeights drive the weighted-average alignment confidence.
var matchTypeWeights = map[string]float64{
	MatchTypeLocation: 0.35,
	MatchTypeValue:    0.30,
	MatchTypeTemporal: 0.20,
	MatchTypeSemantic: 0.15,
}

const defaultMatchWeight = 0.10

// labCorrelations maps finding label fragments to the lab tests that
// corroborate them. Matching is substring containment on both sides.
var labCorrelations = map[string][]string{
	"inflammation": {"crp", "esr", "procalcitonin"},
	"cardiac":      {"troponin", "bnp", "ck-mb"},
	"infection":    {"wbc", "procalcitonin", "lactate"},
}

// ImagingData is the imaging modality bag of an alignment.
type ImagingData struct {
	NodeID      string `json:"nodeId"`
	Anatomy     string `json:"anatomy,omitempty"`
	Description string `json:"description,omitempty"`
}

// TextData is the free-text modality bag of an alignment.
type TextData struct {
	NodeID       string `json:"nodeId"`
	Excerpt      string `json:"excerpt,omitempty"`
	DocumentType string `json:"documentType,omitempty"`
}

// LabData is the lab-value modality bag of an alignment.
type LabData struct {
	NodeID         string   `json:"nodeId"`
	Value          *float64 `json:"value,omitempty"`
	Unit           string   `json:"unit,omitempty"`
	ReferenceRange string   `json:"referenceRange,omitempty"`
	IsAbnormal     bool     `json:"isAbnormal"`
}

// AlignmentMatch is one typed pairwise match inside an alignment.
type AlignmentMatch struct {
	MatchType  string  `json:"matchType"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
	SourceID   string  `json:"sourceId,omitempty"`
	TargetID   string  `json:"targetId,omitempty"`
}

// CrossModalAlignment clusters facts from different modalities that are
// believed to describe the same clinical finding.
type CrossModalAlignment struct {
	FindingID    string                     `json:"findingId"`
	FindingLabel string                     `json:"findingLabel"`
	Imaging      *ImagingData               `json:"imaging,omitempty"`
	Text         *TextData                  `json:"text,omitempty"`
	Lab          *LabData                   `json:"lab,omitempty"`
	Confidence   float64                    `json:"confidence"`
	Coverage     float64                    `json:"coverage"`
	Evidence     []valueobjects.EvidenceRef `json:"evidence"`
	Matches      []AlignmentMatch           `json:"matches"`
}

// ModalityBuckets groups connected nodes by data modality.
type ModalityBuckets struct {
	Imaging []*entities.Node
	Text    []*entities.Node
	Lab     []*entities.Node
}

// AlignmentService links findings expressed in different data modalities
// into single evidentiary clusters. It reads a serialized graph snapshot
// only and never mutates anything.
type AlignmentService struct {
	logger *zap.Logger
}

// NewAlignmentService creates an alignment service.
func NewAlignmentService(logger *zap.Logger) *AlignmentService {
	return &AlignmentService{logger: logger}
}

// snapshotIndex gives the stateless matcher O(1) node lookup and adjacency
// over a GraphData snapshot.
type snapshotIndex struct {
	nodes    map[string]*entities.Node
	incident map[string][]*entities.Edge
}

func indexSnapshot(data *aggregates.GraphData) *snapshotIndex {
	idx := &snapshotIndex{
		nodes:    make(map[string]*entities.Node),
		incident: make(map[string][]*entities.Edge),
	}
	if data == nil {
		return idx
	}
	for _, node := range data.Nodes {
		if node != nil {
			idx.nodes[node.ID.String()] = node
		}
	}
	for _, edge := range data.Edges {
		if edge == nil {
			continue
		}
		idx.incident[edge.Source.String()] = append(idx.incident[edge.Source.String()], edge)
		if edge.Target != edge.Source {
			idx.incident[edge.Target.String()] = append(idx.incident[edge.Target.String()], edge)
		}
	}
	return idx
}

func (idx *snapshotIndex) neighbors(id string) []*entities.Node {
	seen := map[string]bool{id: true}
	out := []*entities.Node{}
	for _, edge := range idx.incident[id] {
		otherID := edge.Target.String()
		if otherID == id {
			otherID = edge.Source.String()
		}
		if seen[otherID] {
			continue
		}
		seen[otherID] = true
		if node, ok := idx.nodes[otherID]; ok {
			out = append(out, node)
		}
	}
	return out
}

// ClassifyModalities buckets nodes into imaging (study/image), free text
// (note/observation) and lab modalities. Other node types carry no
// modality and are ignored.
func (s *AlignmentService) ClassifyModalities(nodes []*entities.Node) ModalityBuckets {
	buckets := ModalityBuckets{}
	for _, node := range nodes {
		switch node.Type {
		case entities.NodeTypeStudy, entities.NodeTypeImage:
			buckets.Imaging = append(buckets.Imaging, node)
		case entities.NodeTypeNote, entities.NodeTypeObservation:
			buckets.Text = append(buckets.Text, node)
		case entities.NodeTypeLab:
			buckets.Lab = append(buckets.Lab, node)
		}
	}
	return buckets
}

// imagingData extracts the imaging bag from a study/image node.
func imagingData(node *entities.Node) *ImagingData {
	description := node.StringProp("description")
	if description == "" {
		description = node.Label
	}
	return &ImagingData{
		NodeID:      node.ID.String(),
		Anatomy:     node.StringProp("anatomy"),
		Description: description,
	}
}

// textData extracts the free-text bag from a note/observation node.
func textData(node *entities.Node) *TextData {
	excerpt := node.StringProp("text")
	if excerpt == "" {
		excerpt = node.Label
	}
	return &TextData{
		NodeID:       node.ID.String(),
		Excerpt:      excerpt,
		DocumentType: node.StringProp("documentType"),
	}
}

// labData extracts the lab bag from a lab node.
func labData(node *entities.Node) *LabData {
	data := &LabData{
		NodeID:         node.ID.String(),
		Unit:           node.StringProp("unit"),
		ReferenceRange: node.StringProp("referenceRange"),
		IsAbnormal:     node.BoolProp("isAbnormal"),
	}
	if v, ok := node.FloatProp("value"); ok {
		data.Value = &v
	}
	return data
}

// freeText returns the text a node contributes to substring matching: its
// text property, description and label.
func freeText(node *entities.Node) string {
	parts := []string{node.Label, node.StringProp("text"), node.StringProp("description")}
	return strings.ToLower(strings.Join(parts, " "))
}

// MatchByLocation matches when both nodes carry the same anatomy term
// (case-insensitive), or when one node's anatomy term appears inside the
// other's free text.
func (s *AlignmentService) MatchByLocation(a, b *entities.Node) (AlignmentMatch, bool) {
	anatomyA := strings.ToLower(strings.TrimSpace(a.StringProp("anatomy")))
	anatomyB := strings.ToLower(strings.TrimSpace(b.StringProp("anatomy")))

	if anatomyA != "" && anatomyA == anatomyB {
		return AlignmentMatch{
			MatchType:  MatchTypeLocation,
			Confidence: locationEqualConfidence,
			Reason:     fmt.Sprintf("both reference anatomy %q", anatomyA),
			SourceID:   a.ID.String(),
			TargetID:   b.ID.String(),
		}, true
	}

	if anatomyA != "" && strings.Contains(freeText(b), anatomyA) {
		return AlignmentMatch{
			MatchType:  MatchTypeLocation,
			Confidence: locationSubstrConfidence,
			Reason:     fmt.Sprintf("anatomy %q appears in linked text", anatomyA),
			SourceID:   a.ID.String(),
			TargetID:   b.ID.String(),
		}, true
	}
	if anatomyB != "" && strings.Contains(freeText(a), anatomyB) {
		return AlignmentMatch{
			MatchType:  MatchTypeLocation,
			Confidence: locationSubstrConfidence,
			Reason:     fmt.Sprintf("anatomy %q appears in linked text", anatomyB),
			SourceID:   b.ID.String(),
			TargetID:   a.ID.String(),
		}, true
	}

	return AlignmentMatch{}, false
}

// MatchByValue matches a finding against a lab result: the lab must be
// abnormal and the finding's label must correlate with the lab test per
// the clinical correlation table, substring containment on both sides.
func (s *AlignmentService) MatchByValue(finding, lab *entities.Node) (AlignmentMatch, bool) {
	if lab.Type != entities.NodeTypeLab || !lab.BoolProp("isAbnormal") {
		return AlignmentMatch{}, false
	}

	findingLabel := strings.ToLower(finding.Label)
	labName := strings.ToLower(lab.Label)

	for fragment, tests := range labCorrelations {
		if !strings.Contains(findingLabel, fragment) && !strings.Contains(fragment, findingLabel) {
			continue
		}
		for _, test := range tests {
			if strings.Contains(labName, test) || strings.Contains(test, labName) {
				return AlignmentMatch{
					MatchType:  MatchTypeValue,
					Confidence: valueMatchConfidence,
					Reason:     fmt.Sprintf("abnormal %s corroborates %s", lab.Label, finding.Label),
					SourceID:   finding.ID.String(),
					TargetID:   lab.ID.String(),
				}, true
			}
		}
	}
	return AlignmentMatch{}, false
}

// MatchByTemporalProximity matches when both nodes carry an occurrence
// time and the absolute difference is within the window. Missing
// timestamps never match.
func (s *AlignmentService) MatchByTemporalProximity(a, b *entities.Node, window time.Duration) (AlignmentMatch, bool) {
	if !a.HasTimestamp() || !b.HasTimestamp() {
		return AlignmentMatch{}, false
	}
	diff := a.Timestamp.Sub(*b.Timestamp)
	if diff < 0 {
		diff = -diff
	}
	if diff > window {
		return AlignmentMatch{}, false
	}
	return AlignmentMatch{
		MatchType:  MatchTypeTemporal,
		Confidence: temporalMatchConfidence,
		Reason:     fmt.Sprintf("recorded %s apart", diff),
		SourceID:   a.ID.String(),
		TargetID:   b.ID.String(),
	}, true
}

var tokenSplit = regexp.MustCompile(`\W+`)

// MatchBySemanticOverlap tokenizes both labels on non-word boundaries and
// compares the intersection against the larger token set. A match is
// declared at ratio >= 0.4 with confidence min(0.9, 0.5 + ratio/2).
func (s *AlignmentService) MatchBySemanticOverlap(labelA, labelB string) (AlignmentMatch, bool) {
	tokensA := tokenize(labelA)
	tokensB := tokenize(labelB)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return AlignmentMatch{}, false
	}

	intersection := 0
	for token := range tokensA {
		if tokensB[token] {
			intersection++
		}
	}

	ratio := float64(intersection) / math.Max(float64(len(tokensA)), float64(len(tokensB)))
	if ratio < semanticMatchThreshold {
		return AlignmentMatch{}, false
	}

	return AlignmentMatch{
		MatchType:  MatchTypeSemantic,
		Confidence: math.Min(0.9, 0.5+ratio/2),
		Reason:     fmt.Sprintf("labels share %d of %d terms", intersection, int(math.Max(float64(len(tokensA)), float64(len(tokensB))))),
	}, true
}

func tokenize(label string) map[string]bool {
	tokens := make(map[string]bool)
	for _, token := range tokenSplit.Split(strings.ToLower(label), -1) {
		if token != "" {
			tokens[token] = true
		}
	}
	return tokens
}

// FindAlignments aligns one finding against its 1-hop neighbors. Zero
// populated modalities yield no alignment at all rather than an empty
// cluster.
func (s *AlignmentService) FindAlignments(data *aggregates.GraphData, findingID string) []CrossModalAlignment {
	idx := indexSnapshot(data)
	finding, ok := idx.nodes[findingID]
	if !ok {
		return []CrossModalAlignment{}
	}
	alignment, ok := s.alignFinding(idx, finding)
	if !ok {
		return []CrossModalAlignment{}
	}
	return []CrossModalAlignment{alignment}
}

// AlignAllFindings aligns every finding node in the snapshot.
func (s *AlignmentService) AlignAllFindings(data *aggregates.GraphData) []CrossModalAlignment {
	idx := indexSnapshot(data)
	alignments := []CrossModalAlignment{}
	if data == nil {
		return alignments
	}
	for _, node := range data.Nodes {
		if node == nil || node.Type != entities.NodeTypeFinding {
			continue
		}
		if alignment, ok := s.alignFinding(idx, node); ok {
			alignments = append(alignments, alignment)
		}
	}
	return alignments
}

func (s *AlignmentService) alignFinding(idx *snapshotIndex, finding *entities.Node) (CrossModalAlignment, bool) {
	neighbors := idx.neighbors(finding.ID.String())
	buckets := s.ClassifyModalities(neighbors)

	alignment := CrossModalAlignment{
		FindingID:    finding.ID.String(),
		FindingLabel: finding.Label,
		Evidence:     append([]valueobjects.EvidenceRef{}, finding.Evidence...),
		Matches:      []AlignmentMatch{},
	}

	modalityNodes := []*entities.Node{}
	populated := 0

	if len(buckets.Imaging) > 0 {
		node := buckets.Imaging[0]
		alignment.Imaging = imagingData(node)
		modalityNodes = append(modalityNodes, node)
		populated++
	}
	if len(buckets.Text) > 0 {
		node := buckets.Text[0]
		alignment.Text = textData(node)
		modalityNodes = append(modalityNodes, node)
		populated++
	}
	if len(buckets.Lab) > 0 {
		node := buckets.Lab[0]
		alignment.Lab = labData(node)
		modalityNodes = append(modalityNodes, node)
		populated++
	}

	if populated == 0 {
		return CrossModalAlignment{}, false
	}

	alignment.Coverage = math.Min(1, float64(populated)/3)

	for _, node := range modalityNodes {
		alignment.Evidence = append(alignment.Evidence, node.Evidence...)

		if match, ok := s.MatchByLocation(finding, node); ok {
			alignment.Matches = append(alignment.Matches, match)
		}
		if node.Type == entities.NodeTypeLab {
			if match, ok := s.MatchByValue(finding, node); ok {
				alignment.Matches = append(alignment.Matches, match)
			}
		}
		if match, ok := s.MatchByTemporalProximity(finding, node, DefaultCrossNodeWindow); ok {
			alignment.Matches = append(alignment.Matches, match)
		}
		if match, ok := s.MatchBySemanticOverlap(finding.Label, node.Label); ok {
			match.SourceID = finding.ID.String()
			match.TargetID = node.ID.String()
			alignment.Matches = append(alignment.Matches, match)
		}
	}

	// Cross-modality location matches (imaging anatomy vs note text).
	if len(buckets.Imaging) > 0 && len(buckets.Text) > 0 {
		if match, ok := s.MatchByLocation(buckets.Imaging[0], buckets.Text[0]); ok {
			alignment.Matches = append(alignment.Matches, match)
		}
	}

	alignment.Evidence = valueobjects.DedupeEvidence(alignment.Evidence)
	alignment.Confidence = s.CalculateAlignmentConfidence(alignment.Matches)

	s.logger.Debug("aligned finding",
		zap.String("findingId", alignment.FindingID),
		zap.Int("modalities", populated),
		zap.Int("matches", len(alignment.Matches)),
		zap.Float64("confidence", alignment.Confidence),
	)
	return alignment, true
}

// CalculateAlignmentConfidence computes a weighted average over the match
// types present, normalized by the sum of the weights actually present.
// An empty match list scores zero.
func (s *AlignmentService) CalculateAlignmentConfidence(matches []AlignmentMatch) float64 {
	if len(matches) == 0 {
		return 0
	}

	var weighted, total float64
	for _, match := range matches {
		weight, ok := matchTypeWeights[match.MatchType]
		if !ok {
			weight = defaultMatchWeight
		}
		weighted += weight * match.Confidence
		total += weight
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}
