package model

import (
	"time"

	"github.com/google/uuid"
)

// HypothesisKind distinguishes the two discovery modes.
type HypothesisKind string

const (
	HypothesisKindOpen   HypothesisKind = "open"
	HypothesisKindClosed HypothesisKind = "closed"
)

// ValidationState is the review state of a hypothesis.
type ValidationState string

const (
	ValidationStateUnreviewed ValidationState = "unreviewed"
	ValidationStateValidated  ValidationState = "validated"
	ValidationStateRejected   ValidationState = "rejected"
)

// Hypothesis is a persisted candidate A–C connection produced by a discovery
// query. For closed hypotheses BridgeIDs is the ordered intermediate node
// sequence of one specific path; for open hypotheses it is the unordered set
// of all distinct bridge nodes found for that C.
//
// Hypotheses are upserted, never deleted: re-running a discovery query for
// the same identity key updates score and metadata on the existing row.
// The identity key is (kind, a_id, c_id) for open hypotheses and
// (kind, a_id, c_id, bridge_ids) for closed ones.
type Hypothesis struct {
	ID                  uuid.UUID       `json:"id"`
	Kind                HypothesisKind  `json:"kind"`
	AID                 uuid.UUID       `json:"a_id"`
	CID                 uuid.UUID       `json:"c_id"`
	BridgeIDs           []uuid.UUID     `json:"bridge_ids"`
	PlausibilityScore   float64         `json:"plausibility_score"`
	PathStrength        float64         `json:"path_strength"`
	HopCount            int             `json:"hop_count"`
	CommonNeighborCount int             `json:"common_neighbor_count"`
	DiscoveredAt        time.Time       `json:"discovered_at"`
	ValidationState     ValidationState `json:"validation_state"`
	ValidationNote      *string         `json:"validation_note,omitempty"`
}

// IsDirect reports whether the hypothesis describes a direct A–C edge
// (a length-1 path found by closed discovery).
func (h *Hypothesis) IsDirect() bool {
	return h.Kind == HypothesisKindClosed && h.HopCount == 1
}

// FullPath reconstructs [a, b1, ..., bn, c] in stored bridge order.
// For open hypotheses the bridge set is unordered, so the result is one
// possible linearization, not necessarily a literal stored path.
func (h *Hypothesis) FullPath() []uuid.UUID {
	path := make([]uuid.UUID, 0, len(h.BridgeIDs)+2)
	path = append(path, h.AID)
	path = append(path, h.BridgeIDs...)
	path = append(path, h.CID)
	return path
}
