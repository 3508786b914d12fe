package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipe-api/internal/models"
	"github.com/pageza/recipe-api/migrations"
)

const rollbackSuffix = "_rollback.sql"

// ErrNoMigrations is returned when a rollback finds nothing applied.
var ErrNoMigrations = errors.New("no migrations to rollback")

const createMigrationsTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	name VARCHAR(255) PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// RunMigrations brings the schema up to date. SQLite databases are
// auto-migrated from the models; postgres gets the embedded SQL files.
func RunMigrations(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	if db.Dialector.Name() == "sqlite" {
		log.Info("using GORM auto-migration for SQLite")
		if err := db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
			return fmt.Errorf("failed to auto-migrate: %w", err)
		}
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("error getting sql handle: %w", err)
	}
	_, err = ApplyMigrations(ctx, sqlDB, migrations.FS, log)
	return err
}

// ApplyMigrations executes every pending migration file in name order, each in
// its own transaction, and returns the names it applied.
func ApplyMigrations(ctx context.Context, db *sql.DB, files fs.FS, log *zap.Logger) ([]string, error) {
	if _, err := db.ExecContext(ctx, createMigrationsTable); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	names, err := migrationFiles(files)
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, name := range names {
		var done bool
		if err := db.QueryRowContext(ctx,
			"SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)", name).Scan(&done); err != nil {
			return applied, fmt.Errorf("failed to check migration status: %w", err)
		}
		if done {
			log.Debug("skipping migration (already applied)", zap.String("name", name))
			continue
		}

		content, err := fs.ReadFile(files, name)
		if err != nil {
			return applied, fmt.Errorf("failed to read migration file %s: %w", name, err)
		}

		err = inTx(ctx, db, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, string(content)); err != nil {
				return fmt.Errorf("failed to execute migration %s: %w", name, err)
			}
			if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (name) VALUES ($1)", name); err != nil {
				return fmt.Errorf("failed to record migration %s: %w", name, err)
			}
			return nil
		})
		if err != nil {
			return applied, err
		}

		log.Info("applied migration", zap.String("name", name))
		applied = append(applied, name)
	}

	return applied, nil
}

// RollbackMigration reverts the most recently applied migration using its
// _rollback.sql companion and returns the reverted name.
func RollbackMigration(ctx context.Context, db *sql.DB, files fs.FS, log *zap.Logger) (string, error) {
	if _, err := db.ExecContext(ctx, createMigrationsTable); err != nil {
		return "", fmt.Errorf("failed to create migrations table: %w", err)
	}

	var name string
	err := db.QueryRowContext(ctx,
		"SELECT name FROM schema_migrations ORDER BY name DESC LIMIT 1").Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoMigrations
	}
	if err != nil {
		return "", fmt.Errorf("failed to get last migration: %w", err)
	}

	rollbackFile := strings.TrimSuffix(name, ".sql") + rollbackSuffix
	content, err := fs.ReadFile(files, rollbackFile)
	if err != nil {
		return "", fmt.Errorf("rollback file not found: %s: %w", rollbackFile, err)
	}

	err = inTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("failed to execute rollback: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM schema_migrations WHERE name = $1", name); err != nil {
			return fmt.Errorf("failed to remove migration record: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	log.Info("rolled back migration", zap.String("name", name))
	return name, nil
}

func migrationFiles(files fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") || strings.HasSuffix(name, rollbackSuffix) {
			continue
		}
		names = append(names, name)
	}
	// Sort files by name to ensure correct order
	sort.Strings(names)
	return names, nil
}

func inTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
