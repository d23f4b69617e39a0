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

// HypothesesDBHandlerFunctions defines the interface for Hypotheses database operations.
type HypothesesDBHandlerFunctions interface {
	UpsertHypothesis(hypothesis *model.Hypothesis) error
	SelectHypothesis(id uuid.UUID) (*model.Hypothesis, error)
	SelectHypothesesForPair(aID uuid.UUID, cID uuid.UUID) ([]*model.Hypothesis, error)
	SelectHypothesesByState(state model.ValidationState) ([]*model.Hypothesis, error)
	UpdateValidation(id uuid.UUID, state model.ValidationState, note *string) error
}

// HypothesesDBHandler handles hypothesis-related database operations
type HypothesesDBHandler struct {
	db *helper.Database
}

// NewHypothesesDBHandler creates a new hypotheses database handler.
// It initializes the database connection and loads hypothesis-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewHypothesesDBHandler(db *helper.Database, force bool) (*HypothesesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	hypothesesDbHandler := &HypothesesDBHandler{
		db: db,
	}

	err := loadSql.LoadHypothesesSql(hypothesesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load hypotheses sql", err)
	}

	err = hypothesesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized HypothesesDBHandler")

	return hypothesesDbHandler, nil
}

// CreateTable creates the 'hypotheses' table in the database.
// If the table already exists, it does not create it again.
func (h *HypothesesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_hypotheses();`)
	if err != nil {
		log.Panicf("error initializing hypotheses table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table hypotheses")

	return nil
}

// UpsertHypothesis inserts a hypothesis or, when one with the same identity
// key already exists, refreshes its score and bridge metadata. The identity
// key is (kind, a_id, c_id) for open hypotheses and (kind, a_id, c_id,
// bridge_ids) for closed ones. DiscoveredAt and the validation fields are
// never touched by an upsert.
func (h *HypothesesDBHandler) UpsertHypothesis(hypothesis *model.Hypothesis) error {
	var sqlFunction string
	switch hypothesis.Kind {
	case model.HypothesisKindOpen:
		sqlFunction = `SELECT * FROM upsert_open_hypothesis($1, $2, $3, $4, $5, $6, $7)`
	case model.HypothesisKindClosed:
		sqlFunction = `SELECT * FROM upsert_closed_hypothesis($1, $2, $3, $4, $5, $6, $7)`
	default:
		return helper.NewErrorKind(fmt.Sprintf("hypothesis kind %q", hypothesis.Kind), helper.ErrInvalidParameter, nil)
	}

	row := h.db.Instance.QueryRow(
		sqlFunction,
		hypothesis.AID,
		hypothesis.CID,
		pq.Array(hypothesis.BridgeIDs),
		hypothesis.PlausibilityScore,
		hypothesis.PathStrength,
		hypothesis.HopCount,
		hypothesis.CommonNeighborCount,
	)

	err := scanHypothesis(row, hypothesis)
	if err != nil {
		return helper.NewErrorKind("scan", helper.ErrStorage, err)
	}

	return nil
}

// SelectHypothesis retrieves a hypothesis by ID
func (h *HypothesesDBHandler) SelectHypothesis(id uuid.UUID) (*model.Hypothesis, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_hypothesis($1)`,
		id,
	)

	hypothesis := &model.Hypothesis{}

	err := scanHypothesis(row, hypothesis)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, helper.NewErrorKind(fmt.Sprintf("hypothesis %s", id), helper.ErrNotFound, nil)
	}
	if err != nil {
		return nil, helper.NewErrorKind("scan", helper.ErrStorage, err)
	}

	return hypothesis, nil
}

// SelectHypothesesForPair retrieves all hypotheses for an (A, C) pair,
// ordered by descending plausibility
func (h *HypothesesDBHandler) SelectHypothesesForPair(aID uuid.UUID, cID uuid.UUID) ([]*model.Hypothesis, error) {
	return h.selectHypotheses(`SELECT * FROM select_hypotheses_for_pair($1, $2)`, aID, cID)
}

// SelectHypothesesByState retrieves all hypotheses in a validation state,
// ordered by descending plausibility
func (h *HypothesesDBHandler) SelectHypothesesByState(state model.ValidationState) ([]*model.Hypothesis, error) {
	return h.selectHypotheses(`SELECT * FROM select_hypotheses_by_state($1)`, string(state))
}

func (h *HypothesesDBHandler) selectHypotheses(query string, args ...interface{}) ([]*model.Hypothesis, error) {
	rows, err := h.db.Instance.Query(query, args...)
	if err != nil {
		return nil, helper.NewErrorKind("query", helper.ErrStorage, err)
	}
	defer rows.Close()

	var hypotheses []*model.Hypothesis
	for rows.Next() {
		hypothesis := &model.Hypothesis{}

		err := scanHypothesis(rows, hypothesis)
		if err != nil {
			return nil, helper.NewErrorKind("scan", helper.ErrStorage, err)
		}

		hypotheses = append(hypotheses, hypothesis)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewErrorKind("rows error", helper.ErrStorage, err)
	}

	return hypotheses, nil
}

// UpdateValidation sets the validation state and note of a hypothesis
func (h *HypothesesDBHandler) UpdateValidation(id uuid.UUID, state model.ValidationState, note *string) error {
	return updateValidation(h.db.Instance, id, state, note)
}

// UpdateValidationTx is UpdateValidation executed inside an existing
// transaction, used by the validation feedback loop.
func (h *HypothesesDBHandler) UpdateValidationTx(tx *sql.Tx, id uuid.UUID, state model.ValidationState, note *string) error {
	return updateValidation(tx, id, state, note)
}

func updateValidation(q rowQuerier, id uuid.UUID, state model.ValidationState, note *string) error {
	var found bool
	err := q.QueryRow(
		`SELECT * FROM update_hypothesis_validation($1, $2, $3)`,
		id,
		string(state),
		note,
	).Scan(&found)
	if err != nil {
		return helper.NewErrorKind("exec", helper.ErrStorage, err)
	}
	if !found {
		return helper.NewErrorKind(fmt.Sprintf("hypothesis %s", id), helper.ErrNotFound, nil)
	}
	return nil
}

func scanHypothesis(row rowScanner, hypothesis *model.Hypothesis) error {
	var bridgeIDs pq.StringArray
	err := row.Scan(
		&hypothesis.ID,
		&hypothesis.Kind,
		&hypothesis.AID,
		&hypothesis.CID,
		&bridgeIDs,
		&hypothesis.PlausibilityScore,
		&hypothesis.PathStrength,
		&hypothesis.HopCount,
		&hypothesis.CommonNeighborCount,
		&hypothesis.DiscoveredAt,
		&hypothesis.ValidationState,
		&hypothesis.ValidationNote,
	)
	if err != nil {
		return err
	}

	hypothesis.BridgeIDs = make([]uuid.UUID, 0, len(bridgeIDs))
	for _, raw := range bridgeIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("parsing bridge id %s: %w", raw, err)
		}
		hypothesis.BridgeIDs = append(hypothesis.BridgeIDs, id)
	}

	return nil
}
