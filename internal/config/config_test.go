package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validConfig = `
polling_interval: 30m
max_age_hours: 24
keywords:
  - go
  - backend
db_path: /tmp/jobs.db
sources:
  greenhouse:
    - token: acme
      company: Acme Corp
      enabled: true
  lever:
    - token: initech
      company: Initech
      enabled: false
  feeds:
    - tag: linkedin_rss
      url: https://example.com/feed.xml
      enabled: true
notification:
  type: log
`

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.PollingInterval != 30*time.Minute {
		t.Errorf("PollingInterval = %v", cfg.PollingInterval)
	}
	if cfg.MaxAgeHours != 24 {
		t.Errorf("MaxAgeHours = %d", cfg.MaxAgeHours)
	}
	if len(cfg.Keywords) != 2 || cfg.Keywords[0] != "go" {
		t.Errorf("Keywords = %v", cfg.Keywords)
	}
	if cfg.DBPath != "/tmp/jobs.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if len(cfg.Sources.Greenhouse) != 1 || !cfg.Sources.Greenhouse[0].Enabled {
		t.Errorf("Greenhouse = %+v", cfg.Sources.Greenhouse)
	}
	if cfg.EnabledSourceCount() != 2 {
		t.Errorf("EnabledSourceCount = %d, want 2", cfg.EnabledSourceCount())
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
sources:
  greenhouse:
    - token: acme
      enabled: true
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PollingInterval != time.Hour {
		t.Errorf("default interval = %v", cfg.PollingInterval)
	}
	if cfg.MaxAgeHours != 24 {
		t.Errorf("default max_age_hours = %d", cfg.MaxAgeHours)
	}
	if cfg.DBPath != "jobpulse.db" {
		t.Errorf("default db_path = %q", cfg.DBPath)
	}
	if cfg.RateLimit.RequestsPerSecond != 1 || cfg.RateLimit.Burst != 2 {
		t.Errorf("rate limit defaults = %+v", cfg.RateLimit)
	}
	if cfg.Retry.MaxRetries != 2 || cfg.Retry.BaseDelay != 5*time.Second {
		t.Errorf("retry defaults = %+v", cfg.Retry)
	}
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("JOBPULSE_TEST_WEBHOOK", "https://hooks.slack.com/services/T/B/X")

	cfg, err := Load(writeConfig(t, `
sources:
  greenhouse:
    - token: acme
      enabled: true
notification:
  type: slack
  webhook_url: ${JOBPULSE_TEST_WEBHOOK}
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Notification.WebhookURL != "https://hooks.slack.com/services/T/B/X" {
		t.Errorf("WebhookURL = %q", cfg.Notification.WebhookURL)
	}
}

func TestLoadValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "no enabled sources",
			content: "sources:\n  greenhouse:\n    - token: acme\n      enabled: false\n",
			wantErr: "at least one source",
		},
		{
			name:    "negative interval",
			content: "polling_interval: -5m\nsources:\n  greenhouse:\n    - token: acme\n      enabled: true\n",
			wantErr: "polling_interval",
		},
		{
			name:    "bad interval syntax",
			content: "polling_interval: soon\nsources:\n  greenhouse:\n    - token: acme\n      enabled: true\n",
			wantErr: "parse polling_interval",
		},
		{
			name:    "negative max age",
			content: "max_age_hours: -1\nsources:\n  greenhouse:\n    - token: acme\n      enabled: true\n",
			wantErr: "max_age_hours",
		},
		{
			name:    "enabled board missing token",
			content: "sources:\n  greenhouse:\n    - company: Acme\n      enabled: true\n",
			wantErr: "missing token",
		},
		{
			name:    "feed missing url",
			content: "sources:\n  feeds:\n    - tag: rss\n      enabled: true\n",
			wantErr: "requires tag and url",
		},
		{
			name:    "slack without webhook",
			content: "sources:\n  greenhouse:\n    - token: acme\n      enabled: true\nnotification:\n  type: slack\n",
			wantErr: "webhook_url is required",
		},
		{
			name:    "slack with non-slack url",
			content: "sources:\n  greenhouse:\n    - token: acme\n      enabled: true\nnotification:\n  type: slack\n  webhook_url: https://evil.example.com/hook\n",
			wantErr: "must start with",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
