package main

import (
	"fmt"

	"github.com/creatorstats/internal/config"
	"github.com/creatorstats/internal/db"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newMigrateCommand(cfg config.AppConfig, logger zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(_ *cobra.Command, _ []string) error {
			gdb, err := db.Open(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			if sqlDB, err := gdb.DB(); err == nil {
				defer sqlDB.Close()
			}

			if err := db.Migrate(gdb); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Info().Str("path", cfg.DatabasePath).Msg("database migrated")
			return nil
		},
	}
}
