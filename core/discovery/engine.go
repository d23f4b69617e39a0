// Package discovery implements the literature-based discovery engine on top
// of the graph traversal and scoring packages: open discovery (which C could
// relate to A), closed discovery (how plausibly A relates to a given C) and
// the validation feedback loop that reinforces edges along confirmed paths.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/siherrmann/bridger/core/graph"
	"github.com/siherrmann/bridger/core/scoring"
	"github.com/siherrmann/bridger/database"
	"github.com/siherrmann/bridger/helper"
	"github.com/siherrmann/bridger/model"
	"github.com/siherrmann/bridger/similarity"
)

// Engine runs discovery queries over the persisted graph. All discovery
// queries are pure reads and safe to run concurrently; Validate is the only
// mutating operation and runs inside a single transaction.
type Engine struct {
	db         *helper.Database
	resources  *database.ResourcesDBHandler
	edges      *database.EdgesDBHandler
	hypotheses *database.HypothesesDBHandler
	similarity similarity.Provider
	scoring    model.ScoringConfig
	logger     *slog.Logger
}

// NewEngine creates a discovery engine over the given handlers.
// A nil provider disables the similarity term (treated as 0).
func NewEngine(
	db *helper.Database,
	resources *database.ResourcesDBHandler,
	edges *database.EdgesDBHandler,
	hypotheses *database.HypothesesDBHandler,
	provider similarity.Provider,
	scoringConfig model.ScoringConfig,
	logger *slog.Logger,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		db:         db,
		resources:  resources,
		edges:      edges,
		hypotheses: hypotheses,
		similarity: provider,
		scoring:    scoringConfig,
		logger:     logger,
	}
}

// openCandidate accumulates the contributing bridges for one C candidate
type openCandidate struct {
	cID     uuid.UUID
	bridges map[uuid.UUID]float64 // best A-B-C weight product per bridge
}

func (c *openCandidate) strength() float64 {
	if len(c.bridges) == 0 {
		return 0
	}
	sum := 0.0
	for _, product := range c.bridges {
		sum += product
	}
	return sum / float64(len(c.bridges))
}

func (c *openCandidate) bridgeIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.bridges))
	for id := range c.bridges {
		ids = append(ids, id)
	}
	// The bridge set is unordered; sort for a stable stored identity
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// OpenDiscovery finds candidate resources C that share intermediate bridge
// nodes with A but have no direct edge to it, ranks them by plausibility and
// upserts each surviving candidate as an open hypothesis.
func (e *Engine) OpenDiscovery(ctx context.Context, aID uuid.UUID, query *model.QueryConfig) ([]*model.Hypothesis, error) {
	query = withDefaults(query)

	_, err := e.resources.SelectResource(aID)
	if err != nil {
		return nil, err
	}

	bridgeEdges, err := e.edges.SelectEdgesTouching(aID, query.EdgeTypes, query.MinWeight)
	if err != nil {
		return nil, err
	}
	if len(bridgeEdges) == 0 {
		return []*model.Hypothesis{}, nil
	}

	// Best direct weight per bridge
	bridgeWeights := map[uuid.UUID]float64{}
	for _, edge := range bridgeEdges {
		bridgeID := edge.Other(aID)
		if bridgeID == uuid.Nil || bridgeID == aID {
			continue
		}
		if edge.Weight > bridgeWeights[bridgeID] {
			bridgeWeights[bridgeID] = edge.Weight
		}
	}

	candidates := map[uuid.UUID]*openCandidate{}
	for bridgeID, bridgeWeight := range bridgeWeights {
		outerEdges, err := e.edges.SelectEdgesTouching(bridgeID, query.EdgeTypes, query.MinWeight)
		if err != nil {
			return nil, err
		}

		for _, edge := range outerEdges {
			cID := edge.Other(bridgeID)
			if cID == uuid.Nil || cID == aID {
				continue
			}
			if _, isBridge := bridgeWeights[cID]; isBridge {
				continue
			}

			candidate, ok := candidates[cID]
			if !ok {
				candidate = &openCandidate{cID: cID, bridges: map[uuid.UUID]float64{}}
				candidates[cID] = candidate
			}

			product := bridgeWeight * edge.Weight
			if product > candidate.bridges[bridgeID] {
				candidate.bridges[bridgeID] = product
			}
		}
	}

	hypotheses := []*model.Hypothesis{}
	for cID, candidate := range candidates {
		// An already-known direct connection is not a discovery. The bridge
		// set only covers edges passing the caller's filters, so check the
		// store unfiltered.
		direct, err := e.edges.SelectEdgeBetween(aID, cID)
		if err != nil {
			return nil, err
		}
		if direct != nil {
			continue
		}

		sim, err := e.pairSimilarity(ctx, aID, cID, query)
		if err != nil {
			return nil, err
		}

		strength := candidate.strength()
		bridgeCount := len(candidate.bridges)
		plausibility := scoring.Plausibility(strength, bridgeCount, sim, &e.scoring)
		if plausibility < query.MinPlausibility {
			continue
		}

		hypotheses = append(hypotheses, &model.Hypothesis{
			Kind:                model.HypothesisKindOpen,
			AID:                 aID,
			CID:                 cID,
			BridgeIDs:           candidate.bridgeIDs(),
			PlausibilityScore:   plausibility,
			PathStrength:        strength,
			HopCount:            2,
			CommonNeighborCount: bridgeCount,
			ValidationState:     model.ValidationStateUnreviewed,
		})
	}

	sort.Slice(hypotheses, func(i, j int) bool {
		if hypotheses[i].PlausibilityScore != hypotheses[j].PlausibilityScore {
			return hypotheses[i].PlausibilityScore > hypotheses[j].PlausibilityScore
		}
		return hypotheses[i].CommonNeighborCount > hypotheses[j].CommonNeighborCount
	})
	if query.Limit > 0 && len(hypotheses) > query.Limit {
		hypotheses = hypotheses[:query.Limit]
	}

	for _, hypothesis := range hypotheses {
		err := e.hypotheses.UpsertHypothesis(hypothesis)
		if err != nil {
			return nil, err
		}
	}

	e.logger.Info("Open discovery finished", "a", aID, "candidates", len(candidates), "hypotheses", len(hypotheses))

	return hypotheses, nil
}

// ClosedDiscovery enumerates all simple paths between A and C up to
// query.MaxHops edges, scores each path and upserts each as a closed
// hypothesis. A direct A-C edge yields a length-1 path whose plausibility
// equals the edge weight.
func (e *Engine) ClosedDiscovery(ctx context.Context, aID uuid.UUID, cID uuid.UUID, query *model.QueryConfig) ([]*model.Hypothesis, error) {
	query = withDefaults(query)

	_, err := e.resources.SelectResource(aID)
	if err != nil {
		return nil, err
	}
	_, err = e.resources.SelectResource(cID)
	if err != nil {
		return nil, err
	}

	paths, err := graph.PathsBetween(ctx, e.edges, aID, cID, query.MaxHops, query)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return []*model.Hypothesis{}, nil
	}

	// The neighbor count is the union of intermediates over all found
	// paths, shared across every path's record
	intermediateUnion := map[uuid.UUID]bool{}
	for _, path := range paths {
		for _, nodeID := range path.Intermediates() {
			intermediateUnion[nodeID] = true
		}
	}
	commonNeighborCount := len(intermediateUnion)

	sim, err := e.pairSimilarity(ctx, aID, cID, query)
	if err != nil {
		return nil, err
	}

	hypotheses := make([]*model.Hypothesis, 0, len(paths))
	for _, path := range paths {
		hopCount := path.HopCount()
		strength := scoring.PenalizedStrength(path.Strength, hopCount, &e.scoring)

		var plausibility float64
		if hopCount == 1 {
			// A confirmed direct connection needs no corroboration, its
			// confidence is the edge weight itself
			plausibility = scoring.Clamp01(strength)
		} else {
			plausibility = scoring.Plausibility(strength, commonNeighborCount, sim, &e.scoring)
		}

		hypotheses = append(hypotheses, &model.Hypothesis{
			Kind:                model.HypothesisKindClosed,
			AID:                 aID,
			CID:                 cID,
			BridgeIDs:           path.Intermediates(),
			PlausibilityScore:   plausibility,
			PathStrength:        strength,
			HopCount:            hopCount,
			CommonNeighborCount: commonNeighborCount,
			ValidationState:     model.ValidationStateUnreviewed,
		})
	}

	sort.Slice(hypotheses, func(i, j int) bool {
		if hypotheses[i].PlausibilityScore != hypotheses[j].PlausibilityScore {
			return hypotheses[i].PlausibilityScore > hypotheses[j].PlausibilityScore
		}
		return hypotheses[i].HopCount < hypotheses[j].HopCount
	})

	for _, hypothesis := range hypotheses {
		err := e.hypotheses.UpsertHypothesis(hypothesis)
		if err != nil {
			return nil, err
		}
	}

	e.logger.Info("Closed discovery finished", "a", aID, "c", cID, "paths", len(paths))

	return hypotheses, nil
}

// Neighbors returns the ranked 1- or 2-hop neighborhood of nodeID.
func (e *Engine) Neighbors(ctx context.Context, nodeID uuid.UUID, hops int, query *model.QueryConfig) ([]*model.NeighborResult, error) {
	query = withDefaults(query)
	return graph.Neighbors(ctx, e.edges, e.resources, nodeID, hops, query, &e.scoring)
}

// Validate records a review verdict on a hypothesis. A positive verdict
// reinforces every edge along the hypothesis path by the configured factor,
// saturating at weight 1. The state change and all edge reinforcements
// commit as one transaction; on any failure nothing is applied.
//
// A missing edge along the path is logged and skipped. This legitimately
// happens for open hypotheses, whose bridge set is not a literal path.
func (e *Engine) Validate(ctx context.Context, hypothesisID uuid.UUID, isValid bool, note *string) (*model.Hypothesis, error) {
	hypothesis, err := e.hypotheses.SelectHypothesis(hypothesisID)
	if err != nil {
		return nil, err
	}

	state := model.ValidationStateRejected
	if isValid {
		state = model.ValidationStateValidated
	}

	tx, err := e.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return nil, helper.NewErrorKind("begin validation transaction", helper.ErrStorage, err)
	}
	defer tx.Rollback()

	err = e.hypotheses.UpdateValidationTx(tx, hypothesisID, state, note)
	if err != nil {
		return nil, helper.NewErrorKind(fmt.Sprintf("update validation of hypothesis %s", hypothesisID), helper.ErrStorage, err)
	}

	if isValid {
		fullPath := hypothesis.FullPath()
		for i := 0; i < len(fullPath)-1; i++ {
			found, err := e.edges.ReinforceEdgeTx(tx, fullPath[i], fullPath[i+1], e.scoring.ReinforcementFactor)
			if err != nil {
				return nil, helper.NewErrorKind(fmt.Sprintf("reinforce edge %s-%s", fullPath[i], fullPath[i+1]), helper.ErrStorage, err)
			}
			if !found {
				e.logger.Info("No edge to reinforce, skipping", "u", fullPath[i], "v", fullPath[i+1], "hypothesis", hypothesisID)
			}
		}
	}

	err = tx.Commit()
	if err != nil {
		return nil, helper.NewErrorKind("commit validation transaction", helper.ErrStorage, err)
	}

	return e.hypotheses.SelectHypothesis(hypothesisID)
}

// HypothesesForPair lists stored hypotheses for an (A, C) pair.
func (e *Engine) HypothesesForPair(aID uuid.UUID, cID uuid.UUID) ([]*model.Hypothesis, error) {
	return e.hypotheses.SelectHypothesesForPair(aID, cID)
}

// HypothesesByState lists stored hypotheses in a given validation state.
func (e *Engine) HypothesesByState(state model.ValidationState) ([]*model.Hypothesis, error) {
	return e.hypotheses.SelectHypothesesByState(state)
}

// pairSimilarity resolves the similarity term for one (A, C) pair. Without
// a provider the term is 0. A provider failure defaults to 0 with a warning
// unless the caller required similarity, in which case it surfaces.
func (e *Engine) pairSimilarity(ctx context.Context, aID uuid.UUID, cID uuid.UUID, query *model.QueryConfig) (float64, error) {
	if e.similarity == nil {
		if query.RequireSimilarity {
			return 0, helper.NewErrorKind("similarity required but no provider configured", helper.ErrDependencyUnavailable, nil)
		}
		return 0, nil
	}

	sim, err := e.similarity.Similarity(ctx, aID, cID)
	if err != nil {
		if query.RequireSimilarity {
			return 0, err
		}
		e.logger.Warn("Similarity provider unavailable, defaulting to 0", "a", aID, "c", cID, "error", err)
		return 0, nil
	}

	return scoring.Clamp01(sim), nil
}

func withDefaults(query *model.QueryConfig) *model.QueryConfig {
	if query == nil {
		defaultQuery := model.DefaultQueryConfig()
		return &defaultQuery
	}
	return query
}
