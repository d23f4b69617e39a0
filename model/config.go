package model

// QueryConfig represents configuration for a single discovery or
// neighbor query.
type QueryConfig struct {
	// Traversal filters
	EdgeTypes []EdgeType `json:"edge_types,omitempty"` // Filter by edge types, nil means all
	MinWeight float64    `json:"min_weight,omitempty"` // Minimum edge weight to follow

	// Result shaping
	Limit           int     `json:"limit"`                      // Maximum number of ranked results
	MinPlausibility float64 `json:"min_plausibility,omitempty"` // Open discovery cutoff
	MaxHops         int     `json:"max_hops,omitempty"`         // Closed discovery path length bound

	// Similarity provider handling. When true, a provider failure surfaces
	// as a dependency error instead of defaulting the similarity term to 0.
	RequireSimilarity bool `json:"require_similarity"`
}

// DefaultQueryConfig returns a sensible default configuration
func DefaultQueryConfig() QueryConfig {
	return QueryConfig{
		EdgeTypes:         nil, // All types
		MinWeight:         0,
		Limit:             10,
		MinPlausibility:   0,
		MaxHops:           3,
		RequireSimilarity: false,
	}
}

// ScoringConfig names every tunable scoring constant. The values encode a
// ranking policy, not a law; callers may adjust them per deployment.
type ScoringConfig struct {
	// Plausibility weights (strength, corroborating bridges, similarity)
	StrengthWeight   float64 `json:"strength_weight"`
	BridgeWeight     float64 `json:"bridge_weight"`
	SimilarityWeight float64 `json:"similarity_weight"`

	// BridgeSaturation is the bridge count at which the corroboration term
	// saturates to 1.
	BridgeSaturation int `json:"bridge_saturation"`

	// HopPenalty discounts closed-discovery paths per hop beyond the first.
	HopPenalty float64 `json:"hop_penalty"`

	// Neighbor ranking weights (path strength, quality, novelty) and the
	// flat penalty applied to hop-2 candidates.
	NeighborPathWeight    float64 `json:"neighbor_path_weight"`
	NeighborQualityWeight float64 `json:"neighbor_quality_weight"`
	NeighborNoveltyWeight float64 `json:"neighbor_novelty_weight"`
	NeighborHopPenalty    float64 `json:"neighbor_hop_penalty"`

	// ReinforcementFactor is applied to every edge weight along a validated
	// hypothesis path, saturating at 1.
	ReinforcementFactor float64 `json:"reinforcement_factor"`
}

// DefaultScoringConfig returns the default scoring policy
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		StrengthWeight:        0.4,
		BridgeWeight:          0.3,
		SimilarityWeight:      0.3,
		BridgeSaturation:      5,
		HopPenalty:            0.85,
		NeighborPathWeight:    0.5,
		NeighborQualityWeight: 0.3,
		NeighborNoveltyWeight: 0.2,
		NeighborHopPenalty:    0.8,
		ReinforcementFactor:   1.1,
	}
}
