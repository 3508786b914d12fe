package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/pageza/recipe-api/config"
	"github.com/pageza/recipe-api/internal/database"
	"github.com/pageza/recipe-api/migrations"
)

func newMigrateCmd() *cobra.Command {
	var rollback bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long: `Apply the embedded SQL migrations to the postgres database named by
DATABASE_URL, or by the db_* settings when DATABASE_URL is unset.
SQLite databases are migrated from the models instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if cfg.DBDriver == config.DriverSQLite {
				if rollback {
					return errors.New("rollback is only supported for postgres")
				}
				db, closeDB, err := openDatabase(cfg, log)
				if err != nil {
					return err
				}
				defer closeDB()
				if err := database.RunMigrations(ctx, db, log); err != nil {
					return err
				}
				fmt.Fprintln(out, "sqlite schema is up to date")
				return nil
			}

			dsn := os.Getenv("DATABASE_URL")
			if dsn == "" {
				dsn = cfg.PostgresURL()
			}
			db, err := sql.Open("postgres", dsn)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()
			if err := db.PingContext(ctx); err != nil {
				return fmt.Errorf("failed to ping database: %w", err)
			}

			if rollback {
				name, err := database.RollbackMigration(ctx, db, migrations.FS, log)
				if errors.Is(err, database.ErrNoMigrations) {
					fmt.Fprintln(out, "no migrations to roll back")
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "rolled back %s\n", name)
				return nil
			}

			applied, err := database.ApplyMigrations(ctx, db, migrations.FS, log)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(out, "no pending migrations")
			}
			for _, name := range applied {
				fmt.Fprintf(out, "applied %s\n", name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&rollback, "rollback", false, "Roll back the most recently applied migration")
	return cmd
}
