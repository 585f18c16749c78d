package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gyeh/fhirbridge/internal/exitcode"
	"github.com/gyeh/fhirbridge/internal/history"
	"github.com/gyeh/fhirbridge/internal/logging"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect stored conversion history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent conversions",
	RunE:  runHistoryList,
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize stored conversions",
	RunE:  runHistoryStats,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all stored conversions",
	RunE:  runHistoryClear,
}

func init() {
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "Max rows to list")
	historyCmd.AddCommand(historyListCmd, historyStatsCmd, historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

// historyPool connects using the configured DSN or exits.
func historyPool(ctx context.Context, log zerolog.Logger) *pgxpool.Pool {
	if cfg.DSN == "" {
		log.Error().Msg("--dsn or DATABASE_URL is required")
		os.Exit(exitcode.UsageError)
	}
	pool, err := history.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	return pool
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	pool := historyPool(ctx, log)
	defer pool.Close()

	recs, err := history.NewStore(pool).List(ctx, historyLimit)
	if err != nil {
		log.Error().Err(err).Msg("history list failed")
		os.Exit(exitcode.DBConnError)
	}

	if len(recs) == 0 {
		fmt.Println("no conversions recorded")
		return nil
	}
	for _, r := range recs {
		status := "invalid"
		if r.Valid {
			status = "valid"
		}
		fmt.Printf("%s  %-19s %-18s %-7s score=%-3d errors=%-2d %s\n",
			r.CreatedAt.Format("2006-01-02 15:04"), r.FileName, orDash(r.HIType),
			status, r.Score, r.ErrorCount, r.ID)
	}
	return nil
}

func runHistoryStats(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	pool := historyPool(ctx, log)
	defer pool.Close()

	stats, err := history.NewStore(pool).Stats(ctx)
	if err != nil {
		log.Error().Err(err).Msg("history stats failed")
		os.Exit(exitcode.DBConnError)
	}

	fmt.Printf("Total conversions: %d\n", stats.Total)
	fmt.Printf("Valid:             %d\n", stats.ValidCount)
	fmt.Printf("Average score:     %.1f\n", stats.AverageScore)
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	pool := historyPool(ctx, log)
	defer pool.Close()

	n, err := history.NewStore(pool).Clear(ctx)
	if err != nil {
		log.Error().Err(err).Msg("history clear failed")
		os.Exit(exitcode.DBConnError)
	}
	fmt.Printf("deleted %d conversions\n", n)
	return nil
}
