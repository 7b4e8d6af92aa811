package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dmillar/jobpulse/internal/browse"
	"github.com/dmillar/jobpulse/internal/rank"
	"github.com/dmillar/jobpulse/internal/store"
)

var browseSinceHours int

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse stored jobs interactively (TUI)",
	Long:  "Opens a split-pane view over recently fetched jobs and the keyword-matched subset.",
	RunE:  runBrowse,
}

func init() {
	browseCmd.Flags().IntVar(&browseSinceHours, "since", 72, "fetch window in hours")
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	jobs, err := st.LoadRecent(browseSinceHours)
	if err != nil {
		logger.Error("failed to load jobs", "error", err)
		os.Exit(1)
	}

	return browse.Run(rank.Sort(jobs))
}
