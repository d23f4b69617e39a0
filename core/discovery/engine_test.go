package discovery

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/siherrmann/bridger/helper"
	"github.com/siherrmann/bridger/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingProvider simulates an unreachable similarity dependency
type failingProvider struct{}

func (p *failingProvider) Similarity(ctx context.Context, aID uuid.UUID, cID uuid.UUID) (float64, error) {
	return 0, helper.NewErrorKind("similarity lookup", helper.ErrDependencyUnavailable, fmt.Errorf("connection refused"))
}

func TestOpenDiscoveryUnknownNode(t *testing.T) {
	engine, _, _, _ := initEngine(t)

	_, err := engine.OpenDiscovery(context.Background(), uuid.New(), nil)
	assert.ErrorIs(t, err, helper.ErrNotFound)
}

func TestOpenDiscoveryNoEdges(t *testing.T) {
	engine, resources, _, _ := initEngine(t)
	isolated := createResource(t, resources)

	hypotheses, err := engine.OpenDiscovery(context.Background(), isolated.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, hypotheses)
}

func TestOpenDiscoverySingleBridge(t *testing.T) {
	engine, resources, edges, _ := initEngine(t)
	a := createResource(t, resources)
	b := createResource(t, resources)
	c := createResource(t, resources)
	createEdge(t, edges, a, b, 0.8)
	createEdge(t, edges, b, c, 0.6)

	hypotheses, err := engine.OpenDiscovery(context.Background(), a.ID, nil)
	require.NoError(t, err)
	require.Len(t, hypotheses, 1)

	hypothesis := hypotheses[0]
	assert.Equal(t, model.HypothesisKindOpen, hypothesis.Kind)
	assert.Equal(t, a.ID, hypothesis.AID)
	assert.Equal(t, c.ID, hypothesis.CID)
	assert.Equal(t, []uuid.UUID{b.ID}, hypothesis.BridgeIDs)
	assert.InDelta(t, 0.48, hypothesis.PathStrength, 0.0001)
	assert.Equal(t, 2, hypothesis.HopCount)
	assert.Equal(t, 1, hypothesis.CommonNeighborCount)
	// 0.4*0.48 + 0.3*(1/5) with similarity 0
	assert.InDelta(t, 0.252, hypothesis.PlausibilityScore, 0.0001)
	assert.Equal(t, model.ValidationStateUnreviewed, hypothesis.ValidationState)
	assert.NotEmpty(t, hypothesis.ID)
	assert.False(t, hypothesis.DiscoveredAt.IsZero())
}

func TestOpenDiscoverySkipsKnownConnections(t *testing.T) {
	engine, resources, edges, _ := initEngine(t)
	a := createResource(t, resources)
	b := createResource(t, resources)
	c := createResource(t, resources)
	createEdge(t, edges, a, b, 0.8)
	createEdge(t, edges, b, c, 0.6)
	// The direct edge makes C a known connection, not a discovery
	createEdge(t, edges, a, c, 0.1)

	hypotheses, err := engine.OpenDiscovery(context.Background(), a.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, hypotheses)
}

func TestOpenDiscoveryMultipleBridges(t *testing.T) {
	engine, resources, edges, _ := initEngine(t)
	a := createResource(t, resources)
	b1 := createResource(t, resources)
	b2 := createResource(t, resources)
	c := createResource(t, resources)
	createEdge(t, edges, a, b1, 0.8)
	createEdge(t, edges, b1, c, 0.6)
	createEdge(t, edges, a, b2, 0.5)
	createEdge(t, edges, b2, c, 0.5)

	hypotheses, err := engine.OpenDiscovery(context.Background(), a.ID, nil)
	require.NoError(t, err)
	require.Len(t, hypotheses, 1)

	hypothesis := hypotheses[0]
	assert.Equal(t, 2, hypothesis.CommonNeighborCount)
	assert.Len(t, hypothesis.BridgeIDs, 2)
	assert.Contains(t, hypothesis.BridgeIDs, b1.ID)
	assert.Contains(t, hypothesis.BridgeIDs, b2.ID)
	// Average of 0.48 and 0.25
	assert.InDelta(t, 0.365, hypothesis.PathStrength, 0.0001)
	// 0.4*0.365 + 0.3*(2/5)
	assert.InDelta(t, 0.266, hypothesis.PlausibilityScore, 0.0001)
}

func TestOpenDiscoveryMinPlausibilityAndLimit(t *testing.T) {
	engine, resources, edges, _ := initEngine(t)
	a := createResource(t, resources)
	b := createResource(t, resources)
	strong := createResource(t, resources)
	weak := createResource(t, resources)
	createEdge(t, edges, a, b, 0.9)
	createEdge(t, edges, b, strong, 0.9)
	createEdge(t, edges, b, weak, 0.1)

	t.Run("Cutoff filters weak candidates", func(t *testing.T) {
		query := model.DefaultQueryConfig()
		query.MinPlausibility = 0.3

		hypotheses, err := engine.OpenDiscovery(context.Background(), a.ID, &query)
		require.NoError(t, err)
		require.Len(t, hypotheses, 1)
		assert.Equal(t, strong.ID, hypotheses[0].CID)
	})

	t.Run("Limit truncates after ranking", func(t *testing.T) {
		query := model.DefaultQueryConfig()
		query.Limit = 1

		hypotheses, err := engine.OpenDiscovery(context.Background(), a.ID, &query)
		require.NoError(t, err)
		require.Len(t, hypotheses, 1)
		assert.Equal(t, strong.ID, hypotheses[0].CID)
	})
}

func TestOpenDiscoveryRerunUpdatesExistingRow(t *testing.T) {
	engine, resources, edges, _ := initEngine(t)
	a := createResource(t, resources)
	b := createResource(t, resources)
	c := createResource(t, resources)
	createEdge(t, edges, a, b, 0.8)
	edgeBC := createEdge(t, edges, b, c, 0.6)

	first, err := engine.OpenDiscovery(context.Background(), a.ID, nil)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Change the graph, rerun; the same row is refreshed, not duplicated
	err = edges.UpdateEdgeWeight(edgeBC.ID, 0.9)
	require.NoError(t, err)

	second, err := engine.OpenDiscovery(context.Background(), a.ID, nil)
	require.NoError(t, err)
	require.Len(t, second, 1)

	assert.Equal(t, first[0].ID, second[0].ID)
	assert.True(t, first[0].DiscoveredAt.Equal(second[0].DiscoveredAt))
	assert.InDelta(t, 0.8*0.9, second[0].PathStrength, 0.0001)

	stored, err := engine.HypothesesForPair(a.ID, c.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestOpenDiscoverySimilarityTerm(t *testing.T) {
	engine, resources, edges, provider := initEngine(t)
	a := createResource(t, resources)
	b := createResource(t, resources)
	c := createResource(t, resources)
	createEdge(t, edges, a, b, 0.8)
	createEdge(t, edges, b, c, 0.6)

	provider.Set(a.ID, c.ID, 0.9)

	hypotheses, err := engine.OpenDiscovery(context.Background(), a.ID, nil)
	require.NoError(t, err)
	require.Len(t, hypotheses, 1)
	// 0.4*0.48 + 0.3*(1/5) + 0.3*0.9
	assert.InDelta(t, 0.522, hypotheses[0].PlausibilityScore, 0.0001)
}

func TestOpenDiscoveryRequiredSimilarityUnavailable(t *testing.T) {
	engine, resources, edges, _ := initEngine(t)
	engine.similarity = &failingProvider{}

	a := createResource(t, resources)
	b := createResource(t, resources)
	c := createResource(t, resources)
	createEdge(t, edges, a, b, 0.8)
	createEdge(t, edges, b, c, 0.6)

	t.Run("Optional similarity defaults to 0", func(t *testing.T) {
		hypotheses, err := engine.OpenDiscovery(context.Background(), a.ID, nil)
		require.NoError(t, err)
		require.Len(t, hypotheses, 1)
		assert.InDelta(t, 0.252, hypotheses[0].PlausibilityScore, 0.0001)
	})

	t.Run("Required similarity surfaces the dependency error", func(t *testing.T) {
		query := model.DefaultQueryConfig()
		query.RequireSimilarity = true

		_, err := engine.OpenDiscovery(context.Background(), a.ID, &query)
		assert.ErrorIs(t, err, helper.ErrDependencyUnavailable)
	})
}

func TestClosedDiscoveryUnknownEndpoints(t *testing.T) {
	engine, resources, _, _ := initEngine(t)
	known := createResource(t, resources)

	_, err := engine.ClosedDiscovery(context.Background(), uuid.New(), known.ID, nil)
	assert.ErrorIs(t, err, helper.ErrNotFound)

	_, err = engine.ClosedDiscovery(context.Background(), known.ID, uuid.New(), nil)
	assert.ErrorIs(t, err, helper.ErrNotFound)
}

func TestClosedDiscoveryInvalidMaxHops(t *testing.T) {
	engine, resources, _, _ := initEngine(t)
	a := createResource(t, resources)
	c := createResource(t, resources)

	query := model.DefaultQueryConfig()
	query.MaxHops = 0

	_, err := engine.ClosedDiscovery(context.Background(), a.ID, c.ID, &query)
	assert.ErrorIs(t, err, helper.ErrInvalidParameter)
}

func TestClosedDiscoveryDirectEdge(t *testing.T) {
	engine, resources, edges, _ := initEngine(t)
	a := createResource(t, resources)
	c := createResource(t, resources)
	createEdge(t, edges, a, c, 0.7)

	hypotheses, err := engine.ClosedDiscovery(context.Background(), a.ID, c.ID, nil)
	require.NoError(t, err)
	require.Len(t, hypotheses, 1)

	hypothesis := hypotheses[0]
	assert.Equal(t, model.HypothesisKindClosed, hypothesis.Kind)
	assert.True(t, hypothesis.IsDirect())
	assert.Equal(t, 1, hypothesis.HopCount)
	assert.Empty(t, hypothesis.BridgeIDs)
	// A direct connection's confidence is the edge weight itself
	assert.InDelta(t, 0.7, hypothesis.PlausibilityScore, 0.0001)
	assert.InDelta(t, 0.7, hypothesis.PathStrength, 0.0001)
}

func TestClosedDiscoveryTwoHopPath(t *testing.T) {
	engine, resources, edges, _ := initEngine(t)
	a := createResource(t, resources)
	b := createResource(t, resources)
	c := createResource(t, resources)
	createEdge(t, edges, a, b, 0.8)
	createEdge(t, edges, b, c, 0.6)

	hypotheses, err := engine.ClosedDiscovery(context.Background(), a.ID, c.ID, nil)
	require.NoError(t, err)
	require.Len(t, hypotheses, 1)

	hypothesis := hypotheses[0]
	assert.Equal(t, []uuid.UUID{b.ID}, hypothesis.BridgeIDs)
	assert.Equal(t, 2, hypothesis.HopCount)
	assert.Equal(t, 1, hypothesis.CommonNeighborCount)
	// 0.48 discounted by one extra hop
	assert.InDelta(t, 0.48*0.85, hypothesis.PathStrength, 0.0001)
	// 0.4*0.408 + 0.3*(1/5) with similarity 0
	assert.InDelta(t, 0.2232, hypothesis.PlausibilityScore, 0.0001)
}

func TestClosedDiscoverySharedNeighborCount(t *testing.T) {
	engine, resources, edges, _ := initEngine(t)
	a := createResource(t, resources)
	b1 := createResource(t, resources)
	b2 := createResource(t, resources)
	c := createResource(t, resources)
	createEdge(t, edges, a, b1, 0.8)
	createEdge(t, edges, b1, c, 0.6)
	createEdge(t, edges, a, b2, 0.5)
	createEdge(t, edges, b2, c, 0.5)

	hypotheses, err := engine.ClosedDiscovery(context.Background(), a.ID, c.ID, nil)
	require.NoError(t, err)
	require.Len(t, hypotheses, 2)

	// The union of intermediates is shared across every path's record
	for _, hypothesis := range hypotheses {
		assert.Equal(t, 2, hypothesis.CommonNeighborCount)
		assert.Len(t, hypothesis.BridgeIDs, 1)
	}
	assert.GreaterOrEqual(t, hypotheses[0].PlausibilityScore, hypotheses[1].PlausibilityScore)
}

func TestClosedDiscoveryMaxHopsMonotonic(t *testing.T) {
	engine, resources, edges, _ := initEngine(t)
	a := createResource(t, resources)
	b1 := createResource(t, resources)
	b2 := createResource(t, resources)
	c := createResource(t, resources)
	createEdge(t, edges, a, c, 0.3)
	createEdge(t, edges, a, b1, 0.9)
	createEdge(t, edges, b1, b2, 0.9)
	createEdge(t, edges, b2, c, 0.9)

	counts := []int{}
	for _, maxHops := range []int{1, 2, 3} {
		query := model.DefaultQueryConfig()
		query.MaxHops = maxHops

		hypotheses, err := engine.ClosedDiscovery(context.Background(), a.ID, c.ID, &query)
		require.NoError(t, err)
		counts = append(counts, len(hypotheses))
	}

	// Raising maxHops never shrinks the result set
	assert.Equal(t, []int{1, 1, 2}, counts)
}

func TestClosedDiscoveryDisconnected(t *testing.T) {
	engine, resources, _, _ := initEngine(t)
	a := createResource(t, resources)
	c := createResource(t, resources)

	hypotheses, err := engine.ClosedDiscovery(context.Background(), a.ID, c.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, hypotheses)
}

func TestValidateUnknownHypothesis(t *testing.T) {
	engine, resources, edges, _ := initEngine(t)
	a := createResource(t, resources)
	c := createResource(t, resources)
	edge := createEdge(t, edges, a, c, 0.5)

	_, err := engine.Validate(context.Background(), uuid.New(), true, nil)
	assert.ErrorIs(t, err, helper.ErrNotFound)

	// No edge was touched
	stored, err := edges.SelectEdge(edge.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.5, stored.Weight)
}

func TestValidateRejectLeavesEdgesUntouched(t *testing.T) {
	engine, resources, edges, _ := initEngine(t)
	a := createResource(t, resources)
	b := createResource(t, resources)
	c := createResource(t, resources)
	edgeAB := createEdge(t, edges, a, b, 0.8)
	edgeBC := createEdge(t, edges, b, c, 0.6)

	hypotheses, err := engine.ClosedDiscovery(context.Background(), a.ID, c.ID, nil)
	require.NoError(t, err)
	require.Len(t, hypotheses, 1)

	note := "no supporting evidence found"
	validated, err := engine.Validate(context.Background(), hypotheses[0].ID, false, &note)
	require.NoError(t, err)
	assert.Equal(t, model.ValidationStateRejected, validated.ValidationState)
	require.NotNil(t, validated.ValidationNote)
	assert.Equal(t, note, *validated.ValidationNote)

	for _, edge := range []*model.GraphEdge{edgeAB, edgeBC} {
		stored, err := edges.SelectEdge(edge.ID)
		require.NoError(t, err)
		assert.Equal(t, edge.Weight, stored.Weight)
	}
}

func TestValidateReinforcesPath(t *testing.T) {
	engine, resources, edges, _ := initEngine(t)
	a := createResource(t, resources)
	b := createResource(t, resources)
	c := createResource(t, resources)
	edgeAB := createEdge(t, edges, a, b, 0.95)
	edgeBC := createEdge(t, edges, b, c, 0.6)

	hypotheses, err := engine.ClosedDiscovery(context.Background(), a.ID, c.ID, nil)
	require.NoError(t, err)
	require.Len(t, hypotheses, 1)

	validated, err := engine.Validate(context.Background(), hypotheses[0].ID, true, nil)
	require.NoError(t, err)
	assert.Equal(t, model.ValidationStateValidated, validated.ValidationState)

	// 0.95*1.1 saturates at 1, 0.6*1.1 does not
	storedAB, err := edges.SelectEdge(edgeAB.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, storedAB.Weight, 0.0001)

	storedBC, err := edges.SelectEdge(edgeBC.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.66, storedBC.Weight, 0.0001)

	t.Run("Re-validating re-applies the reinforcement", func(t *testing.T) {
		_, err := engine.Validate(context.Background(), hypotheses[0].ID, true, nil)
		require.NoError(t, err)

		storedAB, err := edges.SelectEdge(edgeAB.ID)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, storedAB.Weight, 0.0001)

		storedBC, err := edges.SelectEdge(edgeBC.ID)
		require.NoError(t, err)
		assert.InDelta(t, 0.726, storedBC.Weight, 0.0001)
	})
}

func TestValidateOpenHypothesisSkipsMissingEdges(t *testing.T) {
	engine, resources, edges, _ := initEngine(t)
	a := createResource(t, resources)
	b1 := createResource(t, resources)
	b2 := createResource(t, resources)
	c := createResource(t, resources)
	createEdge(t, edges, a, b1, 0.5)
	createEdge(t, edges, b1, c, 0.5)
	createEdge(t, edges, a, b2, 0.5)
	edgeB2C := createEdge(t, edges, b2, c, 0.5)

	hypotheses, err := engine.OpenDiscovery(context.Background(), a.ID, nil)
	require.NoError(t, err)
	require.Len(t, hypotheses, 1)
	require.Len(t, hypotheses[0].BridgeIDs, 2)

	// The open bridge set is not a literal path: the pair (b1, b2) or
	// (b2, b1) has no edge. Validation must skip it, not fail.
	validated, err := engine.Validate(context.Background(), hypotheses[0].ID, true, nil)
	require.NoError(t, err)
	assert.Equal(t, model.ValidationStateValidated, validated.ValidationState)

	// The edge adjacent to c on the linearized path was reinforced
	stored, err := edges.SelectEdge(edgeB2C.ID)
	require.NoError(t, err)
	lastBridge := hypotheses[0].BridgeIDs[len(hypotheses[0].BridgeIDs)-1]
	if lastBridge == b2.ID {
		assert.InDelta(t, 0.55, stored.Weight, 0.0001)
	} else {
		assert.InDelta(t, 0.5, stored.Weight, 0.0001)
	}
}

func TestNeighborsDelegation(t *testing.T) {
	engine, resources, edges, _ := initEngine(t)
	a := createResource(t, resources)
	b := createResource(t, resources)
	c := createResource(t, resources)
	createEdge(t, edges, a, b, 0.8)
	createEdge(t, edges, b, c, 0.6)

	t.Run("Invalid hops", func(t *testing.T) {
		_, err := engine.Neighbors(context.Background(), a.ID, 3, nil)
		assert.ErrorIs(t, err, helper.ErrInvalidParameter)
	})

	t.Run("Two hop neighborhood", func(t *testing.T) {
		results, err := engine.Neighbors(context.Background(), a.ID, 2, nil)
		require.NoError(t, err)
		require.Len(t, results, 2)

		ids := map[uuid.UUID]bool{}
		for _, result := range results {
			ids[result.ResourceID] = true
		}
		assert.True(t, ids[b.ID])
		assert.True(t, ids[c.ID])
	})
}

func TestHypothesesByState(t *testing.T) {
	engine, resources, edges, _ := initEngine(t)
	a := createResource(t, resources)
	b := createResource(t, resources)
	c := createResource(t, resources)
	createEdge(t, edges, a, b, 0.8)
	createEdge(t, edges, b, c, 0.6)

	hypotheses, err := engine.OpenDiscovery(context.Background(), a.ID, nil)
	require.NoError(t, err)
	require.Len(t, hypotheses, 1)

	_, err = engine.Validate(context.Background(), hypotheses[0].ID, true, nil)
	require.NoError(t, err)

	validated, err := engine.HypothesesByState(model.ValidationStateValidated)
	require.NoError(t, err)

	found := false
	for _, hypothesis := range validated {
		if hypothesis.ID == hypotheses[0].ID {
			found = true
		}
	}
	assert.True(t, found)
}
