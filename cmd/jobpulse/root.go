package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmillar/jobpulse/internal/config"
	"github.com/dmillar/jobpulse/internal/model"
	"github.com/dmillar/jobpulse/internal/notifier"
	"github.com/dmillar/jobpulse/internal/ratelimit"
	"github.com/dmillar/jobpulse/internal/retry"
	"github.com/dmillar/jobpulse/internal/source"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "jobpulse",
	Short: "Job board ingestion and ranking",
	Long:  "Jobpulse pulls postings from boards and feeds, deduplicates them, and ranks the fresh ones against your keywords.",
	// Default to `run` so that `jobpulse` with no args does one batch.
	RunE: runOnce,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: JOBPULSE_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > JOBPULSE_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("JOBPULSE_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// buildFetchers constructs one fetcher per enabled source, wrapped with
// provider-level rate limiting and transient-failure retries.
func buildFetchers(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) []model.SourceFetcher {
	limiter := ratelimit.NewProviderLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	wrap := func(f model.SourceFetcher, provider string) model.SourceFetcher {
		limited := ratelimit.Wrap(f, limiter, provider)
		return retry.Wrap(limited, cfg.Retry.MaxRetries, cfg.Retry.BaseDelay, logger)
	}

	var fetchers []model.SourceFetcher
	for _, b := range cfg.Sources.Greenhouse {
		if !b.Enabled {
			continue
		}
		fetchers = append(fetchers, wrap(source.NewGreenhouseFetcher(b.Token, b.Company, httpClient), "greenhouse"))
		logger.Info("registered source", "provider", "greenhouse", "board", b.Token)
	}
	for _, b := range cfg.Sources.Lever {
		if !b.Enabled {
			continue
		}
		fetchers = append(fetchers, wrap(source.NewLeverFetcher(b.Token, b.Company, httpClient), "lever"))
		logger.Info("registered source", "provider", "lever", "company", b.Token)
	}
	for _, f := range cfg.Sources.Feeds {
		if !f.Enabled {
			continue
		}
		fetchers = append(fetchers, wrap(source.NewRSSFetcher(f.Tag, f.URL, httpClient), f.Tag))
		logger.Info("registered source", "provider", "rss", "tag", f.Tag)
	}
	return fetchers
}
