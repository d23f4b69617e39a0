package bridger

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/siherrmann/bridger/core/discovery"
	"github.com/siherrmann/bridger/core/pipeline"
	"github.com/siherrmann/bridger/database"
	"github.com/siherrmann/bridger/helper"
	"github.com/siherrmann/bridger/model"
	"github.com/siherrmann/bridger/similarity"
	loadSql "github.com/siherrmann/bridger/sql"
)

// Bridger provides a unified interface to the resource catalog, the edge
// store, the hypothesis store and the discovery engine
type Bridger struct {
	DB         *helper.Database
	Resources  *database.ResourcesDBHandler
	Edges      *database.EdgesDBHandler
	Hypotheses *database.HypothesesDBHandler
	Engine     *discovery.Engine
	Embedder   pipeline.EmbedFunc // Optional embedding function
	// Logging
	log *slog.Logger
}

// NewBridger creates a new Bridger instance with all handlers initialized
func NewBridger(config *helper.DatabaseConfiguration, embeddingDim int) (*Bridger, error) {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	// Initialize database
	db := helper.NewDatabase("bridger", config, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// Create all handlers in the correct order (resources first, edges and
	// hypotheses reference them). force=false to not reload if functions
	// already exist.
	resources, err := database.NewResourcesDBHandler(db, embeddingDim, false)
	if err != nil {
		return nil, helper.NewError("create resources handler", err)
	}

	edges, err := database.NewEdgesDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create edges handler", err)
	}

	hypotheses, err := database.NewHypothesesDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create hypotheses handler", err)
	}

	// Create the discovery engine with the pgvector-backed similarity
	// provider and the default scoring policy
	provider := similarity.NewPgvectorProvider(resources)
	engine := discovery.NewEngine(db, resources, edges, hypotheses, provider, model.DefaultScoringConfig(), logger)

	return &Bridger{
		DB:         db,
		Resources:  resources,
		Edges:      edges,
		Hypotheses: hypotheses,
		Engine:     engine,
		log:        logger,
	}, nil
}

// Close closes the database connection
func (b *Bridger) Close() error {
	if b.DB != nil && b.DB.Instance != nil {
		return b.DB.Instance.Close()
	}
	return nil
}

// SetEmbedder sets the embedding function used by EmbedResource
func (b *Bridger) SetEmbedder(embedder pipeline.EmbedFunc) {
	b.Embedder = embedder
}

// UseDefaultEmbedder sets up the default embedding function with the
// all-MiniLM-L6-v2 model (384 dimensions)
func (b *Bridger) UseDefaultEmbedder() error {
	embedder, err := pipeline.DefaultEmbedder()
	if err != nil {
		return helper.NewError("create default embedder", err)
	}

	b.Embedder = embedder
	return nil
}

// EmbedResource generates an embedding for the given text and stores it on
// the resource. The embedding feeds the similarity term of discovery scoring.
func (b *Bridger) EmbedResource(resourceID uuid.UUID, text string) error {
	if b.Embedder == nil {
		return helper.NewError("embed resource", fmt.Errorf("embedder not set, use SetEmbedder() or UseDefaultEmbedder() first"))
	}

	embedding, err := b.Embedder(text)
	if err != nil {
		return helper.NewError("generate embedding", err)
	}

	err = b.Resources.UpdateResourceEmbedding(resourceID, embedding)
	if err != nil {
		return helper.NewError("store embedding", err)
	}

	b.log.Info("Embedded resource", slog.String("resource_id", resourceID.String()))

	return nil
}

// OpenDiscovery finds candidate resources C that share bridge nodes with A
// but have no direct edge to it, ranked by plausibility. Each surviving
// candidate is persisted as an open hypothesis.
func (b *Bridger) OpenDiscovery(ctx context.Context, aID uuid.UUID, query *model.QueryConfig) ([]*model.Hypothesis, error) {
	return b.Engine.OpenDiscovery(ctx, aID, query)
}

// ClosedDiscovery enumerates and scores all simple paths between A and C up
// to query.MaxHops edges. Each path is persisted as a closed hypothesis.
func (b *Bridger) ClosedDiscovery(ctx context.Context, aID uuid.UUID, cID uuid.UUID, query *model.QueryConfig) ([]*model.Hypothesis, error) {
	return b.Engine.ClosedDiscovery(ctx, aID, cID, query)
}

// Neighbors returns the ranked 1- or 2-hop neighborhood of a resource.
func (b *Bridger) Neighbors(ctx context.Context, nodeID uuid.UUID, hops int, query *model.QueryConfig) ([]*model.NeighborResult, error) {
	return b.Engine.Neighbors(ctx, nodeID, hops, query)
}

// Validate records a review verdict on a hypothesis. A positive verdict
// reinforces every edge along the hypothesis path.
func (b *Bridger) Validate(ctx context.Context, hypothesisID uuid.UUID, isValid bool, note *string) (*model.Hypothesis, error) {
	return b.Engine.Validate(ctx, hypothesisID, isValid, note)
}

// HypothesesForPair lists stored hypotheses for an (A, C) pair, ordered by
// descending plausibility.
func (b *Bridger) HypothesesForPair(aID uuid.UUID, cID uuid.UUID) ([]*model.Hypothesis, error) {
	return b.Engine.HypothesesForPair(aID, cID)
}

// HypothesesByState lists stored hypotheses in a given validation state.
func (b *Bridger) HypothesesByState(state model.ValidationState) ([]*model.Hypothesis, error) {
	return b.Engine.HypothesesByState(state)
}
