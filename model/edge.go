package model

import (
	"time"

	"github.com/google/uuid"
)

// EdgeType represents the type of relationship between resources.
// It is an open tag: new relation kinds can be stored without any change
// to the traversal engine.
type EdgeType string

const (
	EdgeTypeCitation     EdgeType = "citation"
	EdgeTypeCoAuthorship EdgeType = "co_authorship"
	EdgeTypeSemantic     EdgeType = "semantic"
	EdgeTypeReference    EdgeType = "reference"
	EdgeTypeTemporal     EdgeType = "temporal"
	EdgeTypeCausal       EdgeType = "causal"
	EdgeTypeCustom       EdgeType = "custom"
)

// GraphEdge represents a weighted relationship between two resources.
// The pair (NodeA, NodeB) is stored ordered but the relation is undirected:
// every lookup and traversal treats {NodeA, NodeB} as an unordered pair.
// Weight is connection confidence in [0,1], clamped on every write.
type GraphEdge struct {
	ID        uuid.UUID `json:"id"`
	NodeA     uuid.UUID `json:"node_a"`
	NodeB     uuid.UUID `json:"node_b"`
	EdgeType  EdgeType  `json:"edge_type"`
	Weight    float64   `json:"weight"`
	Metadata  Metadata  `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Other returns the endpoint of the edge that is not nodeID.
// Returns uuid.Nil if nodeID is not an endpoint of the edge.
func (e *GraphEdge) Other(nodeID uuid.UUID) uuid.UUID {
	switch nodeID {
	case e.NodeA:
		return e.NodeB
	case e.NodeB:
		return e.NodeA
	}
	return uuid.Nil
}

// Touches reports whether nodeID is one of the edge's endpoints.
func (e *GraphEdge) Touches(nodeID uuid.UUID) bool {
	return e.NodeA == nodeID || e.NodeB == nodeID
}
