package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestHypothesis_IsDirect(t *testing.T) {
	t.Run("Closed hypothesis over one hop is direct", func(t *testing.T) {
		hypothesis := &Hypothesis{Kind: HypothesisKindClosed, HopCount: 1}
		assert.True(t, hypothesis.IsDirect())
	})

	t.Run("Closed hypothesis over two hops is not direct", func(t *testing.T) {
		hypothesis := &Hypothesis{Kind: HypothesisKindClosed, HopCount: 2}
		assert.False(t, hypothesis.IsDirect())
	})

	t.Run("Open hypothesis is never direct", func(t *testing.T) {
		hypothesis := &Hypothesis{Kind: HypothesisKindOpen, HopCount: 1}
		assert.False(t, hypothesis.IsDirect())
	})
}

func TestHypothesis_FullPath(t *testing.T) {
	aID := uuid.New()
	cID := uuid.New()
	b1 := uuid.New()
	b2 := uuid.New()

	t.Run("Path with bridges", func(t *testing.T) {
		hypothesis := &Hypothesis{AID: aID, CID: cID, BridgeIDs: []uuid.UUID{b1, b2}}
		assert.Equal(t, []uuid.UUID{aID, b1, b2, cID}, hypothesis.FullPath())
	})

	t.Run("Direct path without bridges", func(t *testing.T) {
		hypothesis := &Hypothesis{AID: aID, CID: cID}
		assert.Equal(t, []uuid.UUID{aID, cID}, hypothesis.FullPath())
	})
}
