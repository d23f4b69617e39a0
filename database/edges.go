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
	"github.com/siherrmann/bridger/helper"
	"github.com/siherrmann/bridger/model"
	loadSql "github.com/siherrmann/bridger/sql"
)

// EdgesDBHandlerFunctions defines the interface for Edges database operations.
type EdgesDBHandlerFunctions interface {
	InsertEdge(edge *model.GraphEdge) error
	SelectEdge(id uuid.UUID) (*model.GraphEdge, error)
	SelectEdgesTouching(nodeID uuid.UUID, edgeTypes []model.EdgeType, minWeight float64) ([]*model.GraphEdge, error)
	SelectEdgeBetween(u uuid.UUID, v uuid.UUID) (*model.GraphEdge, error)
	UpdateEdgeWeight(id uuid.UUID, weight float64) error
	ReinforceEdge(u uuid.UUID, v uuid.UUID, factor float64) (bool, error)
	DeleteEdge(id uuid.UUID) error
}

// EdgesDBHandler handles edge-related database operations
type EdgesDBHandler struct {
	db *helper.Database
}

// NewEdgesDBHandler creates a new edges database handler.
// It initializes the database connection and loads edge-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewEdgesDBHandler(db *helper.Database, force bool) (*EdgesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	edgesDbHandler := &EdgesDBHandler{
		db: db,
	}

	err := loadSql.LoadEdgesSql(edgesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load edges sql", err)
	}

	err = edgesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized EdgesDBHandler")

	return edgesDbHandler, nil
}

// CreateTable creates the 'graph_edges' table in the database.
// If the table already exists, it does not create it again.
func (h *EdgesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_edges();`)
	if err != nil {
		log.Panicf("error initializing edges table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table graph_edges")

	return nil
}

// InsertEdge inserts a new edge. The weight is clamped to [0,1] on write.
func (h *EdgesDBHandler) InsertEdge(edge *model.GraphEdge) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_edge($1, $2, $3, $4, $5)`,
		edge.NodeA,
		edge.NodeB,
		edge.EdgeType,
		edge.Weight,
		edge.Metadata,
	)

	err := scanEdge(row, edge)
	if err != nil {
		return helper.NewErrorKind("scan", helper.ErrStorage, err)
	}

	return nil
}

// SelectEdge retrieves an edge by ID
func (h *EdgesDBHandler) SelectEdge(id uuid.UUID) (*model.GraphEdge, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_edge($1)`,
		id,
	)

	edge := &model.GraphEdge{}

	err := scanEdge(row, edge)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, helper.NewErrorKind(fmt.Sprintf("edge %s", id), helper.ErrNotFound, nil)
	}
	if err != nil {
		return nil, helper.NewErrorKind("scan", helper.ErrStorage, err)
	}

	return edge, nil
}

// SelectEdgesTouching retrieves all edges with nodeID as either endpoint,
// optionally filtered by edge types and minimum weight. A nil edgeTypes
// slice means all types.
func (h *EdgesDBHandler) SelectEdgesTouching(nodeID uuid.UUID, edgeTypes []model.EdgeType, minWeight float64) ([]*model.GraphEdge, error) {
	var edgeTypesParam interface{}
	if len(edgeTypes) > 0 {
		types := make([]string, len(edgeTypes))
		for i, edgeType := range edgeTypes {
			types[i] = string(edgeType)
		}
		edgeTypesParam = pq.Array(types)
	}

	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_edges_touching($1, $2, $3)`,
		nodeID,
		edgeTypesParam,
		minWeight,
	)
	if err != nil {
		return nil, helper.NewErrorKind("query", helper.ErrStorage, err)
	}
	defer rows.Close()

	var edges []*model.GraphEdge
	for rows.Next() {
		edge := &model.GraphEdge{}

		err := scanEdge(rows, edge)
		if err != nil {
			return nil, helper.NewErrorKind("scan", helper.ErrStorage, err)
		}

		edges = append(edges, edge)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewErrorKind("rows error", helper.ErrStorage, err)
	}

	return edges, nil
}

// SelectEdgeBetween retrieves the edge between u and v regardless of the
// stored endpoint order. Returns nil without error when no edge exists.
func (h *EdgesDBHandler) SelectEdgeBetween(u uuid.UUID, v uuid.UUID) (*model.GraphEdge, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_edge_between($1, $2)`,
		u,
		v,
	)

	edge := &model.GraphEdge{}

	err := scanEdge(row, edge)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, helper.NewErrorKind("scan", helper.ErrStorage, err)
	}

	return edge, nil
}

// UpdateEdgeWeight updates the weight of an edge, clamped to [0,1]
func (h *EdgesDBHandler) UpdateEdgeWeight(id uuid.UUID, weight float64) error {
	var found bool
	err := h.db.Instance.QueryRow(
		`SELECT * FROM update_edge_weight($1, $2)`,
		id,
		weight,
	).Scan(&found)
	if err != nil {
		return helper.NewErrorKind("exec", helper.ErrStorage, err)
	}
	if !found {
		return helper.NewErrorKind(fmt.Sprintf("edge %s", id), helper.ErrNotFound, nil)
	}
	return nil
}

// ReinforceEdge atomically multiplies the weight of the edge between u and v
// by factor, saturating at 1.0. Returns false (no-op) when no such edge
// exists.
func (h *EdgesDBHandler) ReinforceEdge(u uuid.UUID, v uuid.UUID, factor float64) (bool, error) {
	return reinforceEdge(h.db.Instance, u, v, factor)
}

// ReinforceEdgeTx is ReinforceEdge executed inside an existing transaction.
// Used by the validation feedback loop so that all path reinforcements plus
// the hypothesis state change commit as one atomic unit.
func (h *EdgesDBHandler) ReinforceEdgeTx(tx *sql.Tx, u uuid.UUID, v uuid.UUID, factor float64) (bool, error) {
	return reinforceEdge(tx, u, v, factor)
}

type rowQuerier interface {
	QueryRow(query string, args ...interface{}) *sql.Row
}

func reinforceEdge(q rowQuerier, u uuid.UUID, v uuid.UUID, factor float64) (bool, error) {
	var found bool
	err := q.QueryRow(
		`SELECT * FROM reinforce_edge($1, $2, $3)`,
		u,
		v,
		factor,
	).Scan(&found)
	if err != nil {
		return false, helper.NewErrorKind("exec", helper.ErrStorage, err)
	}
	return found, nil
}

// DeleteEdge deletes an edge by ID
func (h *EdgesDBHandler) DeleteEdge(id uuid.UUID) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_edge($1)`,
		id,
	)
	if err != nil {
		return helper.NewErrorKind("exec", helper.ErrStorage, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEdge(row rowScanner, edge *model.GraphEdge) error {
	return row.Scan(
		&edge.ID,
		&edge.NodeA,
		&edge.NodeB,
		&edge.EdgeType,
		&edge.Weight,
		&edge.Metadata,
		&edge.CreatedAt,
		&edge.UpdatedAt,
	)
}
