// Package graph implements bounded-depth traversal over the edge store:
// ranked multi-hop neighbor expansion and simple-path enumeration. It is
// pure computation; all state lives behind the store interfaces.
package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/siherrmann/bridger/core/scoring"
	"github.com/siherrmann/bridger/helper"
	"github.com/siherrmann/bridger/model"
)

// EdgeStore defines the edge read operations the traversal engine needs
type EdgeStore interface {
	SelectEdgesTouching(nodeID uuid.UUID, edgeTypes []model.EdgeType, minWeight float64) ([]*model.GraphEdge, error)
}

// ResourceStore defines the resource read operations the traversal engine needs
type ResourceStore interface {
	SelectResource(id uuid.UUID) (*model.ResourceRef, error)
}

// candidate tracks the strongest discovered path to a neighbor candidate
type candidate struct {
	id       uuid.UUID
	strength float64
	hops     int
	path     []uuid.UUID
}

// Neighbors expands the 1- or 2-hop neighborhood of nodeID and returns the
// candidates ranked by combined score (path strength, quality, novelty).
// Hop-2 candidates exclude the source and its direct neighborhood; for each
// candidate the strongest (maximum weight product) path is kept. Results are
// sorted by descending score with ties broken by higher raw path strength,
// then truncated to query.Limit.
func Neighbors(
	ctx context.Context,
	edges EdgeStore,
	resources ResourceStore,
	nodeID uuid.UUID,
	hops int,
	query *model.QueryConfig,
	config *model.ScoringConfig,
) ([]*model.NeighborResult, error) {
	if hops != 1 && hops != 2 {
		return nil, helper.NewErrorKind(fmt.Sprintf("hops %d not in {1,2}", hops), helper.ErrInvalidParameter, nil)
	}

	// Unknown source fails with not found
	_, err := resources.SelectResource(nodeID)
	if err != nil {
		return nil, err
	}

	hopOneEdges, err := edges.SelectEdgesTouching(nodeID, query.EdgeTypes, query.MinWeight)
	if err != nil {
		return nil, err
	}

	candidates := make(map[uuid.UUID]*candidate)
	hopOneSet := make(map[uuid.UUID]bool)

	for _, edge := range hopOneEdges {
		targetID := edge.Other(nodeID)
		if targetID == uuid.Nil || targetID == nodeID {
			continue
		}

		hopOneSet[targetID] = true
		recordCandidate(candidates, targetID, edge.Weight, 1, []uuid.UUID{nodeID, targetID})
	}

	if hops == 2 {
		for bridgeID := range hopOneSet {
			bridgeStrength := candidates[bridgeID].strength

			bridgeEdges, err := edges.SelectEdgesTouching(bridgeID, query.EdgeTypes, query.MinWeight)
			if err != nil {
				return nil, err
			}

			for _, edge := range bridgeEdges {
				targetID := edge.Other(bridgeID)
				if targetID == uuid.Nil || targetID == nodeID || hopOneSet[targetID] {
					continue
				}

				recordCandidate(candidates, targetID, bridgeStrength*edge.Weight, 2, []uuid.UUID{nodeID, bridgeID, targetID})
			}
		}
	}

	results := make([]*model.NeighborResult, 0, len(candidates))
	for _, cand := range candidates {
		quality := 0.5
		if resource, err := resources.SelectResource(cand.id); err == nil {
			quality = resource.Quality()
		}

		novelty, err := candidateNovelty(edges, cand.id, hopOneSet, query)
		if err != nil {
			return nil, err
		}

		results = append(results, &model.NeighborResult{
			ResourceID:   cand.id,
			Score:        scoring.NeighborScore(cand.strength, quality, novelty, cand.hops, config),
			PathStrength: cand.strength,
			Quality:      quality,
			Novelty:      novelty,
			Hops:         cand.hops,
			Path:         cand.path,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].PathStrength > results[j].PathStrength
	})

	if query.Limit > 0 && len(results) > query.Limit {
		results = results[:query.Limit]
	}

	return results, nil
}

// recordCandidate keeps the strongest discovered path per candidate
func recordCandidate(candidates map[uuid.UUID]*candidate, id uuid.UUID, strength float64, hops int, path []uuid.UUID) {
	existing, ok := candidates[id]
	if !ok {
		candidates[id] = &candidate{id: id, strength: strength, hops: hops, path: path}
		return
	}
	if strength > existing.strength {
		existing.strength = strength
		existing.hops = hops
		existing.path = path
	}
}

// candidateNovelty computes 1 - overlapRatio, where overlapRatio is the
// fraction of the candidate's own direct neighbors that are already direct
// neighbors of the source. Redundant, already-reachable connections are
// penalized.
func candidateNovelty(edges EdgeStore, candidateID uuid.UUID, sourceNeighbors map[uuid.UUID]bool, query *model.QueryConfig) (float64, error) {
	candidateEdges, err := edges.SelectEdgesTouching(candidateID, query.EdgeTypes, query.MinWeight)
	if err != nil {
		return 0, err
	}

	neighborSet := make(map[uuid.UUID]bool)
	for _, edge := range candidateEdges {
		neighborID := edge.Other(candidateID)
		if neighborID != uuid.Nil && neighborID != candidateID {
			neighborSet[neighborID] = true
		}
	}

	if len(neighborSet) == 0 {
		return 1, nil
	}

	overlap := 0
	for neighborID := range neighborSet {
		if sourceNeighbors[neighborID] {
			overlap++
		}
	}

	return 1 - float64(overlap)/float64(len(neighborSet)), nil
}

// PathsBetween enumerates all simple (no repeated node) paths from a to c of
// length 1..maxHops edges via bounded depth-first search. The direct edge is
// returned as a length-1 path when present. Paths are deduplicated by exact
// node sequence, keeping the strongest edge combination.
func PathsBetween(
	ctx context.Context,
	edges EdgeStore,
	a uuid.UUID,
	c uuid.UUID,
	maxHops int,
	query *model.QueryConfig,
) ([]*model.Path, error) {
	if maxHops < 1 {
		return nil, helper.NewErrorKind(fmt.Sprintf("maxHops %d < 1", maxHops), helper.ErrInvalidParameter, nil)
	}

	found := make(map[string]*model.Path)
	visited := map[uuid.UUID]bool{a: true}

	err := enumeratePaths(edges, a, c, maxHops, query, []uuid.UUID{a}, nil, visited, found)
	if err != nil {
		return nil, err
	}

	paths := make([]*model.Path, 0, len(found))
	for _, path := range found {
		paths = append(paths, path)
	}

	// Strongest first, shorter paths break ties
	sort.Slice(paths, func(i, j int) bool {
		if paths[i].Strength != paths[j].Strength {
			return paths[i].Strength > paths[j].Strength
		}
		return paths[i].HopCount() < paths[j].HopCount()
	})

	return paths, nil
}

// enumeratePaths is the recursive helper for PathsBetween
func enumeratePaths(
	edges EdgeStore,
	current uuid.UUID,
	target uuid.UUID,
	remainingHops int,
	query *model.QueryConfig,
	nodePath []uuid.UUID,
	edgePath []*model.GraphEdge,
	visited map[uuid.UUID]bool,
	found map[string]*model.Path,
) error {
	if remainingHops <= 0 {
		return nil
	}

	touching, err := edges.SelectEdgesTouching(current, query.EdgeTypes, query.MinWeight)
	if err != nil {
		return err
	}

	for _, edge := range touching {
		nextID := edge.Other(current)
		if nextID == uuid.Nil {
			continue
		}

		if nextID == target {
			nodes := append(append([]uuid.UUID{}, nodePath...), nextID)
			pathEdges := append(append([]*model.GraphEdge{}, edgePath...), edge)
			recordPath(found, nodes, pathEdges)
			continue
		}

		if visited[nextID] {
			continue
		}

		visited[nextID] = true
		err := enumeratePaths(
			edges,
			nextID,
			target,
			remainingHops-1,
			query,
			append(nodePath, nextID),
			append(edgePath, edge),
			visited,
			found,
		)
		delete(visited, nextID)
		if err != nil {
			return err
		}
	}

	return nil
}

// recordPath deduplicates by exact node sequence, keeping the strongest
// edge combination when parallel edges produce the same sequence
func recordPath(found map[string]*model.Path, nodes []uuid.UUID, pathEdges []*model.GraphEdge) {
	strength := scoring.PathStrength(pathEdges)

	key := ""
	for _, node := range nodes {
		key += node.String() + "/"
	}

	existing, ok := found[key]
	if ok && existing.Strength >= strength {
		return
	}

	found[key] = &model.Path{
		Nodes:    nodes,
		Edges:    pathEdges,
		Strength: strength,
	}
}
