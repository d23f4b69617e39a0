package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestGraphEdge_Other(t *testing.T) {
	nodeA := uuid.New()
	nodeB := uuid.New()
	edge := &GraphEdge{NodeA: nodeA, NodeB: nodeB, EdgeType: EdgeTypeCitation, Weight: 0.5}

	t.Run("Returns the opposite endpoint", func(t *testing.T) {
		assert.Equal(t, nodeB, edge.Other(nodeA))
		assert.Equal(t, nodeA, edge.Other(nodeB))
	})

	t.Run("Returns nil uuid for non-endpoint", func(t *testing.T) {
		assert.Equal(t, uuid.Nil, edge.Other(uuid.New()))
	})
}

func TestGraphEdge_Touches(t *testing.T) {
	nodeA := uuid.New()
	nodeB := uuid.New()
	edge := &GraphEdge{NodeA: nodeA, NodeB: nodeB}

	assert.True(t, edge.Touches(nodeA))
	assert.True(t, edge.Touches(nodeB))
	assert.False(t, edge.Touches(uuid.New()))
}
