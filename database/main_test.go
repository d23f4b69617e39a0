package database

import (
	"context"
	"log"
	"testing"

	"github.com/siherrmann/bridger/helper"
	loadSql "github.com/siherrmann/bridger/sql"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

var dbPort string

func TestMain(m *testing.M) {
	var teardown func(ctx context.Context, opts ...testcontainers.TerminateOption) error
	var err error
	teardown, dbPort, err = helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("error starting postgres container: %v", err)
	}

	m.Run()

	if teardown != nil && teardown(context.Background()) != nil {
		log.Fatalf("error tearing down postgres container: %v", err)
	}
}

func initDB(t *testing.T) *helper.Database {
	helper.SetTestDatabaseConfigEnvs(t, dbPort)
	dbConfig, err := helper.NewDatabaseConfiguration()
	require.NoError(t, err, "failed to create database configuration")
	database := helper.NewTestDatabase(dbConfig)

	err = loadSql.Init(database.Instance)
	require.NoError(t, err)

	return database
}

// initHandlers creates all three handlers on a fresh connection.
func initHandlers(t *testing.T) (*helper.Database, *ResourcesDBHandler, *EdgesDBHandler, *HypothesesDBHandler) {
	database := initDB(t)

	resources, err := NewResourcesDBHandler(database, 384, true)
	require.NoError(t, err)

	edges, err := NewEdgesDBHandler(database, true)
	require.NoError(t, err)

	hypotheses, err := NewHypothesesDBHandler(database, true)
	require.NoError(t, err)

	return database, resources, edges, hypotheses
}
