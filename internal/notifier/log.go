package notifier

import (
	"log/slog"
	"strings"

	"github.com/dmillar/jobpulse/internal/model"
)

var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes fresh jobs to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each job via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each job with its identity and ranking fields. Returns nil;
// logging does not fail.
func (n *LogNotifier) Notify(jobs []model.Job) error {
	for _, j := range jobs {
		args := []any{
			"company", j.Company,
			"title", j.Title,
			"location", j.Location,
			"url", j.URL,
			"score", j.Score,
		}
		if len(j.Tags) > 0 {
			args = append(args, "tags", strings.Join(j.Tags, ","))
		}
		if j.PostedAt != nil {
			args = append(args, "posted_at", *j.PostedAt)
		}
		n.logger.Info("fresh job", args...)
	}
	return nil
}
