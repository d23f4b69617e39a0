package model

import "github.com/google/uuid"

// NeighborResult represents a candidate node returned by a neighbor query
type NeighborResult struct {
	ResourceID   uuid.UUID   `json:"resource_id"`
	Score        float64     `json:"score"`         // Combined ranking score
	PathStrength float64     `json:"path_strength"` // Best weight product over discovered paths
	Quality      float64     `json:"quality"`       // Candidate quality score (0.5 default)
	Novelty      float64     `json:"novelty"`       // 1 - overlap with source's direct neighborhood
	Hops         int         `json:"hops"`          // Distance at which the candidate was found
	Path         []uuid.UUID `json:"path"`          // Strongest path from source to candidate
}

// Path represents one simple path between two resources
type Path struct {
	Nodes    []uuid.UUID  `json:"nodes"`    // Full node sequence including both endpoints
	Edges    []*GraphEdge `json:"edges"`    // Edges traversed, len(Nodes)-1 entries
	Strength float64      `json:"strength"` // Product of edge weights along the path
}

// HopCount returns the number of edges in the path.
func (p *Path) HopCount() int {
	return len(p.Edges)
}

// Intermediates returns the node sequence between the two endpoints.
func (p *Path) Intermediates() []uuid.UUID {
	if len(p.Nodes) <= 2 {
		return nil
	}
	return p.Nodes[1 : len(p.Nodes)-1]
}
