package valueobjects

import (
	"time"
)

// Source identifies the kind of system a clinical fact was captured from.
type Source string

const (
	SourceFHIR      Source = "fhir"
	SourceDICOM     Source = "dicom"
	SourceNote      Source = "note"
	SourceLab       Source = "lab"
	SourceDevice    Source = "device"
	SourceClaims    Source = "claims"
	SourceSynthetic Source = "synthetic"
)

// IsValid reports whether the source is one of the known kinds.
func (s Source) IsValid() bool {
	switch s {
	case SourceFHIR, SourceDICOM, SourceNote, SourceLab, SourceDevice, SourceClaims, SourceSynthetic:
		return true
	}
	return false
}

// EvidenceRef is an immutable provenance pointer from a graph fact back to
// the originating source record. It is never synthesized without an
// originating fact; absence of evidence is an empty list, not a fabricated
// reference.
type EvidenceRef struct {
	Source     Source     `json:"source"`
	ID         string     `json:"id"`
	URI        string     `json:"uri,omitempty"`
	CapturedAt *time.Time `json:"capturedAt,omitempty"`
}

// Key returns the de-duplication key for an evidence reference.
// Two references to the same record in the same source system are the same
// piece of evidence regardless of which node or edge carries them.
func (e EvidenceRef) Key() string {
	return string(e.Source) + "/" + e.ID
}

// DedupeEvidence removes duplicate references while preserving the order of
// first appearance.
func DedupeEvidence(refs []EvidenceRef) []EvidenceRef {
	seen := make(map[string]bool, len(refs))
	out := make([]EvidenceRef, 0, len(refs))
	for _, ref := range refs {
		if seen[ref.Key()] {
			continue
		}
		seen[ref.Key()] = true
		out = append(out, ref)
	}
	return out
}
