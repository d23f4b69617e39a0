package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/siherrmann/bridger/helper"
	"github.com/siherrmann/bridger/model"
	loadSql "github.com/siherrmann/bridger/sql"
)

// ResourcesDBHandlerFunctions defines the interface for Resources database operations.
type ResourcesDBHandlerFunctions interface {
	InsertResource(resource *model.ResourceRef) error
	SelectResource(id uuid.UUID) (*model.ResourceRef, error)
	UpdateResourceEmbedding(id uuid.UUID, embedding []float32) error
	SelectSimilarity(a uuid.UUID, c uuid.UUID) (float64, error)
	DeleteResource(id uuid.UUID) error
}

// ResourcesDBHandler handles resource-related database operations
type ResourcesDBHandler struct {
	db *helper.Database
}

// NewResourcesDBHandler creates a new resources database handler.
// It initializes the database connection and loads resource-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewResourcesDBHandler(db *helper.Database, embeddingDim int, force bool) (*ResourcesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	resourcesDbHandler := &ResourcesDBHandler{
		db: db,
	}

	err := loadSql.LoadResourcesSql(resourcesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load resources sql", err)
	}

	err = resourcesDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ResourcesDBHandler")

	return resourcesDbHandler, nil
}

// CreateTable creates the 'resources' table in the database.
// If the table already exists, it does not create it again.
func (h *ResourcesDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_resources($1);`, embeddingDim)
	if err != nil {
		log.Panicf("error initializing resources table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table resources")

	return nil
}

// InsertResource inserts a new resource reference
func (h *ResourcesDBHandler) InsertResource(resource *model.ResourceRef) error {
	var embeddingParam interface{}
	if len(resource.Embedding) > 0 {
		embeddingParam = pgvector.NewVector(resource.Embedding)
	}

	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_resource($1, $2, $3, $4)`,
		resource.ResourceType,
		resource.QualityScore,
		resource.Metadata,
		embeddingParam,
	)

	err := row.Scan(
		&resource.ID,
		&resource.ResourceType,
		&resource.QualityScore,
		&resource.Metadata,
		pq.Array(&resource.Embedding),
		&resource.CreatedAt,
	)
	if err != nil {
		return helper.NewErrorKind("scan", helper.ErrStorage, err)
	}

	return nil
}

// SelectResource retrieves a resource reference by ID
func (h *ResourcesDBHandler) SelectResource(id uuid.UUID) (*model.ResourceRef, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_resource($1)`,
		id,
	)

	resource := &model.ResourceRef{}

	err := row.Scan(
		&resource.ID,
		&resource.ResourceType,
		&resource.QualityScore,
		&resource.Metadata,
		pq.Array(&resource.Embedding),
		&resource.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, helper.NewErrorKind(fmt.Sprintf("resource %s", id), helper.ErrNotFound, nil)
	}
	if err != nil {
		return nil, helper.NewErrorKind("scan", helper.ErrStorage, err)
	}

	return resource, nil
}

// UpdateResourceEmbedding sets the embedding vector of a resource
func (h *ResourcesDBHandler) UpdateResourceEmbedding(id uuid.UUID, embedding []float32) error {
	var found bool
	err := h.db.Instance.QueryRow(
		`SELECT * FROM update_resource_embedding($1, $2)`,
		id,
		pgvector.NewVector(embedding),
	).Scan(&found)
	if err != nil {
		return helper.NewErrorKind("exec", helper.ErrStorage, err)
	}
	if !found {
		return helper.NewErrorKind(fmt.Sprintf("resource %s", id), helper.ErrNotFound, nil)
	}
	return nil
}

// SelectSimilarity returns the cosine similarity between two resource
// embeddings in [0,1]. Returns 0 when either embedding has not been
// computed yet; this is not an error.
func (h *ResourcesDBHandler) SelectSimilarity(a uuid.UUID, c uuid.UUID) (float64, error) {
	var similarity float64
	err := h.db.Instance.QueryRow(
		`SELECT * FROM resource_similarity($1, $2)`,
		a,
		c,
	).Scan(&similarity)
	if err != nil {
		return 0, helper.NewErrorKind("query", helper.ErrStorage, err)
	}
	return similarity, nil
}

// DeleteResource deletes a resource by ID
func (h *ResourcesDBHandler) DeleteResource(id uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_resource($1)`,
		id,
	)
	if err != nil {
		return helper.NewErrorKind("exec", helper.ErrStorage, err)
	}
	return nil
}
