package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmillar/jobpulse/internal/pipeline"
	"github.com/dmillar/jobpulse/internal/source"
	"github.com/dmillar/jobpulse/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one ingest batch and exit",
	Long:  "Fetches every enabled source once, runs the pipeline, notifies on fresh matches, then exits.",
	RunE:  runOnce,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"sources", cfg.EnabledSourceCount(),
		"keywords", len(cfg.Keywords),
		"max_age_hours", cfg.MaxAgeHours,
	)

	st, err := store.New(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	pipe, err := pipeline.New(st, pipeline.Options{
		MaxAgeHours: cfg.MaxAgeHours,
		Keywords:    cfg.Keywords,
	}, logger)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	fetchers := buildFetchers(cfg, httpClient, logger)
	if len(fetchers) == 0 {
		logger.Error("no sources to fetch")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	entries := source.FetchAll(ctx, fetchers, logger)
	result, err := pipe.Run(ctx, entries)
	if err != nil {
		logger.Error("ingest failed", "error", err)
		os.Exit(1)
	}

	n := setupNotifier(cfg, httpClient, logger)
	if len(result.Fresh) > 0 {
		if err := n.Notify(result.Fresh); err != nil {
			logger.Error("notification failed", "error", err)
		}
	}

	logger.Info("batch complete",
		"received", result.Received,
		"normalized", result.Normalized,
		"duplicates", result.Duplicates,
		"inserted", result.Inserted,
		"updated", result.Updated,
		"fresh", len(result.Fresh),
	)
	return nil
}
