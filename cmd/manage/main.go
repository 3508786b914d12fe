// Command manage runs administrative tasks against the recipe database.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipe-api/config"
	"github.com/pageza/recipe-api/internal/database"
	"github.com/pageza/recipe-api/internal/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "manage",
		Short:         "Administrative commands for the recipe API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newCreateSuperuserCmd())
	rootCmd.AddCommand(newSeedCmd())
	return rootCmd
}

// bootstrap loads configuration and a logger the way the API server does.
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, log, nil
}

func openDatabase(cfg *config.Config, log *zap.Logger) (*gorm.DB, func(), error) {
	db, err := database.New(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, closeFn, nil
}
