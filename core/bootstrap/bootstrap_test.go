package bootstrap

import (
	"errors"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/leadquiz/core/config"
	coredatabase "github.com/m3rciful/leadquiz/core/database"
)

func noopLogger(*coreconfig.Config) error { return nil }

func TestRunRequiresConfig(t *testing.T) {
	_, err := Run(Options{})
	assert.Error(t, err)
}

func TestRunPipelineOrder(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(mockDB, "sqlmock")

	var steps []string
	res, err := Run(Options{
		Config:     &coreconfig.Config{},
		Migrations: fstest.MapFS{},
		LoggerInit: func(*coreconfig.Config) error { steps = append(steps, "logger"); return nil },
		Connect: func(coredatabase.Config) (*sqlx.DB, error) {
			steps = append(steps, "connect")
			return db, nil
		},
		Migrate: func(coredatabase.Config, fs.FS) error { steps = append(steps, "migrate"); return nil },
	})
	require.NoError(t, err)
	assert.Same(t, db, res.DB)
	assert.Equal(t, []string{"logger", "connect", "migrate"}, steps)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunClosesDBWhenMigrationsFail(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()
	db := sqlx.NewDb(mockDB, "sqlmock")

	_, err = Run(Options{
		Config:     &coreconfig.Config{},
		Migrations: fstest.MapFS{},
		LoggerInit: noopLogger,
		Connect:    func(coredatabase.Config) (*sqlx.DB, error) { return db, nil },
		Migrate:    func(coredatabase.Config, fs.FS) error { return errors.New("dirty") },
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrations failed")
	assert.NoError(t, mock.ExpectationsWereMet())
}
