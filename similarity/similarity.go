// Package similarity defines the boundary interface to the embedding
// subsystem. The discovery engine consumes similarity as a black box:
// a provider returns a score in [0,1] for a pair of resource ids and must
// return the sentinel 0 for pairs whose embeddings have not been computed
// yet. Errors are reserved for genuine unavailability.
package similarity

import (
	"context"

	"github.com/google/uuid"
	"github.com/siherrmann/bridger/helper"
)

// Provider supplies similarity scores between two resources
type Provider interface {
	Similarity(ctx context.Context, aID uuid.UUID, cID uuid.UUID) (float64, error)
}

// SimilarityStore is the database read surface the pgvector provider needs
type SimilarityStore interface {
	SelectSimilarity(a uuid.UUID, c uuid.UUID) (float64, error)
}

// PgvectorProvider computes cosine similarity over the resource embedding
// column in PostgreSQL
type PgvectorProvider struct {
	store SimilarityStore
}

// NewPgvectorProvider creates a provider backed by the resources table
func NewPgvectorProvider(store SimilarityStore) *PgvectorProvider {
	return &PgvectorProvider{store: store}
}

// Similarity returns the cosine similarity between the two resources in
// [0,1], or 0 when either embedding is missing. A query failure surfaces
// as a dependency error.
func (p *PgvectorProvider) Similarity(ctx context.Context, aID uuid.UUID, cID uuid.UUID) (float64, error) {
	score, err := p.store.SelectSimilarity(aID, cID)
	if err != nil {
		return 0, helper.NewErrorKind("similarity lookup", helper.ErrDependencyUnavailable, err)
	}
	return score, nil
}

// StaticProvider returns fixed similarity scores from a map, keyed by the
// unordered id pair. Used in tests as a deterministic stub.
type StaticProvider struct {
	Scores map[[2]uuid.UUID]float64
}

// NewStaticProvider creates an empty static provider
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{Scores: map[[2]uuid.UUID]float64{}}
}

// Set stores a score for the pair regardless of id order
func (p *StaticProvider) Set(aID uuid.UUID, cID uuid.UUID, score float64) {
	p.Scores[pairKey(aID, cID)] = score
}

// Similarity returns the stored score, or the sentinel 0 for unknown pairs
func (p *StaticProvider) Similarity(ctx context.Context, aID uuid.UUID, cID uuid.UUID) (float64, error) {
	return p.Scores[pairKey(aID, cID)], nil
}

func pairKey(aID uuid.UUID, cID uuid.UUID) [2]uuid.UUID {
	if aID.String() > cID.String() {
		return [2]uuid.UUID{cID, aID}
	}
	return [2]uuid.UUID{aID, cID}
}
