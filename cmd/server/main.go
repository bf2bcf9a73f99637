package main

import (
	"fmt"
	"os"

	"github.com/creatorstats/internal/config"
	"github.com/creatorstats/internal/logging"
	"github.com/spf13/cobra"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	root := cobra.Command{
		Use:          "creatorstats",
		Short:        "Creator analytics dashboard for YouTube channel stats.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cfg, logger)
		},
	}

	root.AddCommand(newServeCommand(cfg, logger), newMigrateCommand(cfg, logger))

	if err := root.Execute(); err != nil {
		logger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
