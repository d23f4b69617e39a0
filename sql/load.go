package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed init.sql
var initSQL string

//go:embed resources.sql
var resourcesSQL string

//go:embed edges.sql
var edgesSQL string

//go:embed hypotheses.sql
var hypothesesSQL string

// Function lists for verification
var ResourcesFunctions = []string{
	"init_resources",
	"insert_resource",
	"select_resource",
	"update_resource_embedding",
	"resource_similarity",
	"delete_resource",
}

var EdgesFunctions = []string{
	"init_edges",
	"insert_edge",
	"select_edge",
	"select_edges_touching",
	"select_edge_between",
	"update_edge_weight",
	"reinforce_edge",
	"delete_edge",
}

var HypothesesFunctions = []string{
	"init_hypotheses",
	"upsert_open_hypothesis",
	"upsert_closed_hypothesis",
	"select_hypothesis",
	"select_hypotheses_for_pair",
	"select_hypotheses_by_state",
	"update_hypothesis_validation",
}

// Init intializes db extensions
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	log.Println("Database extensions initialized successfully")
	return nil
}

// LoadResourcesSql loads resource-related SQL functions
func LoadResourcesSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, ResourcesFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing resources functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(resourcesSQL)
	if err != nil {
		return fmt.Errorf("error executing resources SQL: %w", err)
	}

	exist, err := checkFunctions(db, ResourcesFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL resources functions loaded successfully")
	return nil
}

// LoadEdgesSql loads edge-related SQL functions
func LoadEdgesSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, EdgesFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing edges functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(edgesSQL)
	if err != nil {
		return fmt.Errorf("error executing edges SQL: %w", err)
	}

	exist, err := checkFunctions(db, EdgesFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL edges functions loaded successfully")
	return nil
}

// LoadHypothesesSql loads hypothesis-related SQL functions
func LoadHypothesesSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, HypothesesFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing hypotheses functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(hypothesesSQL)
	if err != nil {
		return fmt.Errorf("error executing hypotheses SQL: %w", err)
	}

	exist, err := checkFunctions(db, HypothesesFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL hypotheses functions loaded successfully")
	return nil
}

// LoadAllSql loads all SQL functions
func LoadAllSql(db *sql.DB, force bool) error {
	if err := LoadResourcesSql(db, force); err != nil {
		return err
	}

	if err := LoadEdgesSql(db, force); err != nil {
		return err
	}

	if err := LoadHypothesesSql(db, force); err != nil {
		return err
	}

	return nil
}

// checkFunctions verifies that all required functions exist in the database
func checkFunctions(db *sql.DB, sqlFunctions []string) (bool, error) {
	var allExist bool
	for _, f := range sqlFunctions {
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`,
			f,
		).Scan(&allExist)
		if err != nil {
			return false, fmt.Errorf("error checking existence of function %s: %w", f, err)
		}
		if !allExist {
			log.Printf("Function %s does not exist", f)
			break
		}
	}
	return allExist, nil
}
