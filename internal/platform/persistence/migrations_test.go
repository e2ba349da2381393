package persistence

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunMigrations_InputValidation(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("EmptyMigrationsPath", func(t *testing.T) {
		err := RunMigrations(logger, "postgres://test", "")
		assert.EqualError(t, err, "migrations path cannot be empty")
	})

	t.Run("EmptyDatabaseURL", func(t *testing.T) {
		err := RunMigrations(logger, "", "migrations/postgres")
		assert.EqualError(t, err, "database URL cannot be empty")
	})

	t.Run("MissingDirectory", func(t *testing.T) {
		err := RunMigrations(logger, "postgres://localhost:1/none?sslmode=disable", "does/not/exist")
		assert.ErrorContains(t, err, "failed to create migrate instance")
	})
}

func TestMigrationSource(t *testing.T) {
	assert.Equal(t, "file://migrations/postgres", migrationSource("migrations/postgres"))
	assert.Equal(t, "file:///srv/migrations", migrationSource("file:///srv/migrations"))
}
