package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/recipe-api/config"
	"github.com/pageza/recipe-api/internal/database"
	"github.com/pageza/recipe-api/internal/models"
)

func sqliteEnv(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manage.db")
	t.Setenv("ENV", "test")
	t.Setenv("CI", "")
	t.Setenv("SECRETS_DIR", t.TempDir())
	t.Setenv("RECIPE_API_CONFIG", "")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", path)
	t.Setenv("LOG_LEVEL", "error")
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestManageCommands(t *testing.T) {
	path := sqliteEnv(t)

	out, err := execute(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")

	out, err = execute(t, "createsuperuser", "--email", "admin@example.com", "--password", "adminpass")
	require.NoError(t, err)
	assert.Contains(t, out, "superuser admin@example.com created")

	_, err = execute(t, "createsuperuser", "--email", "admin@example.com", "--password", "adminpass")
	assert.Error(t, err)

	out, err = execute(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "seeded alice@example.com with 2 recipes")

	out, err = execute(t, "seed")
	require.NoError(t, err)
	assert.NotContains(t, out, "seeded", "existing demo users are skipped")

	db, err := database.New(&config.Config{
		Environment: config.Test,
		DBDriver:    config.DriverSQLite,
		DBPath:      path,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	var admin models.User
	require.NoError(t, db.First(&admin, "email = ?", "admin@example.com").Error)
	assert.True(t, admin.IsStaff)

	var recipes int64
	db.Model(&models.Recipe{}).Count(&recipes)
	assert.Equal(t, int64(4), recipes)
}

func TestMigrateRollbackRequiresPostgres(t *testing.T) {
	sqliteEnv(t)

	_, err := execute(t, "migrate", "--rollback")
	assert.ErrorContains(t, err, "only supported for postgres")
}

func TestCreateSuperuserRequiresFlags(t *testing.T) {
	sqliteEnv(t)

	_, err := execute(t, "createsuperuser", "--email", "admin@example.com")
	assert.Error(t, err)
}
