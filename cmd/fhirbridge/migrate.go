package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/fhirbridge/internal/exitcode"
	"github.com/gyeh/fhirbridge/internal/history"
	"github.com/gyeh/fhirbridge/internal/logging"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database schema migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	pool := historyPool(ctx, log)
	defer pool.Close()

	if err := history.ApplyMigrations(ctx, pool, log); err != nil {
		log.Error().Err(err).Msg("migration failed")
		os.Exit(exitcode.DBConnError)
	}

	log.Info().Msg("all migrations applied successfully")
	return nil
}
