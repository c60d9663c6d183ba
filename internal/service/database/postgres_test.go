package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS demo_runs").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_demo_runs_feature_created").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	ps := NewPostgresServiceWithDB(db, zap.NewNop())
	require.NoError(t, ps.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateRollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	err = NewPostgresServiceWithDB(db, zap.NewNop()).Migrate(context.Background())
	assert.ErrorContains(t, err, "migration step 1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDSN(t *testing.T) {
	cfg := PostgresConfig{Host: "db", Port: 5433, User: "demo", Password: "pw", Database: "hub"}
	assert.Equal(t, "host=db port=5433 user=demo password=pw dbname=hub sslmode=disable", cfg.DSN())
}
