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
	"github.com/dmillar/jobpulse/internal/scheduler"
	"github.com/dmillar/jobpulse/internal/store"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the ingest daemon",
	Long:  "Runs an ingest cycle on the configured interval; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"interval", cfg.PollingInterval.String(),
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

	n := setupNotifier(cfg, httpClient, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.New(fetchers, pipe, n, cfg.PollingInterval, logger)
	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
