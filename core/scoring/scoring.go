// Package scoring converts raw traversal output into plausibility and
// ranking scores. All functions are pure; every tunable constant comes in
// through model.ScoringConfig.
package scoring

import (
	"math"

	"github.com/siherrmann/bridger/model"
)

// PathStrength returns the product of edge weights along a path.
// For a length-1 direct path this equals the edge weight itself.
func PathStrength(edges []*model.GraphEdge) float64 {
	strength := 1.0
	for _, edge := range edges {
		strength *= edge.Weight
	}
	if len(edges) == 0 {
		return 0
	}
	return strength
}

// PenalizedStrength discounts a path strength per hop beyond the first, so
// that for equal mean edge weight longer chains score strictly lower than
// shorter ones.
func PenalizedStrength(strength float64, hopCount int, config *model.ScoringConfig) float64 {
	if hopCount <= 1 {
		return strength
	}
	return strength * math.Pow(config.HopPenalty, float64(hopCount-1))
}

// NormalizeBridgeCount maps a corroborating bridge count into [0,1],
// saturating at config.BridgeSaturation bridges.
func NormalizeBridgeCount(count int, config *model.ScoringConfig) float64 {
	if config.BridgeSaturation <= 0 {
		return 0
	}
	return math.Min(1, float64(count)/float64(config.BridgeSaturation))
}

// Plausibility combines path strength, corroborating bridge count and
// external similarity into a single [0,1] confidence score.
func Plausibility(strength float64, bridgeCount int, similarity float64, config *model.ScoringConfig) float64 {
	score := config.StrengthWeight*strength +
		config.BridgeWeight*NormalizeBridgeCount(bridgeCount, config) +
		config.SimilarityWeight*similarity
	return Clamp01(score)
}

// NeighborScore ranks a neighbor candidate by path strength, candidate
// quality and novelty. Candidates found at hop 2 are additionally
// discounted by the neighbor hop penalty.
func NeighborScore(pathStrength float64, quality float64, novelty float64, hops int, config *model.ScoringConfig) float64 {
	score := config.NeighborPathWeight*pathStrength +
		config.NeighborQualityWeight*quality +
		config.NeighborNoveltyWeight*novelty
	if hops > 1 {
		score *= config.NeighborHopPenalty
	}
	return score
}

// Clamp01 clamps a score into [0,1]
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
