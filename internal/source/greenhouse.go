package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmillar/jobpulse/internal/model"
)

const greenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"

// greenhouseJob is the subset of a Greenhouse board job we read directly;
// the full record still travels on the entry as the audit payload.
type greenhouseJob struct {
	ID          int64              `json:"id"`
	Title       string             `json:"title"`
	Location    greenhouseLocation `json:"location"`
	AbsoluteURL string             `json:"absolute_url"`
	UpdatedAt   string             `json:"updated_at"`
	CreatedAt   string             `json:"created_at"`
	Content     string             `json:"content"`
}

type greenhouseLocation struct {
	Name string `json:"name"`
}

type greenhouseResponse struct {
	Jobs []json.RawMessage `json:"jobs"`
}

// GreenhouseFetcher pulls raw entries from the Greenhouse public boards API.
type GreenhouseFetcher struct {
	boardToken  string
	companyName string
	client      *http.Client
}

func NewGreenhouseFetcher(boardToken, companyName string, client *http.Client) *GreenhouseFetcher {
	return &GreenhouseFetcher{
		boardToken:  boardToken,
		companyName: companyName,
		client:      client,
	}
}

func (f *GreenhouseFetcher) Name() string { return "greenhouse" }

// Fetch retrieves all jobs from the board as source-tagged raw entries.
func (f *GreenhouseFetcher) Fetch(ctx context.Context) ([]model.RawEntry, error) {
	url := fmt.Sprintf("%s/%s/jobs", greenhouseBaseURL, f.boardToken)

	body, err := get(ctx, f.client, url, f.Name(), f.boardToken)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var resp greenhouseResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", f.boardToken, err)
	}

	entries := make([]model.RawEntry, 0, len(resp.Jobs))
	for _, rawJob := range resp.Jobs {
		var gj greenhouseJob
		if err := json.Unmarshal(rawJob, &gj); err != nil {
			continue
		}

		var payload map[string]any
		_ = json.Unmarshal(rawJob, &payload)

		entries = append(entries, model.RawEntry{
			Source:      f.Name(),
			Title:       gj.Title,
			URL:         gj.AbsoluteURL,
			Company:     f.companyName,
			Location:    gj.Location.Name,
			Description: gj.Content,
			Board: &model.BoardFields{
				UpdatedAt: gj.UpdatedAt,
				CreatedAt: gj.CreatedAt,
			},
			Payload: payload,
		})
	}

	return entries, nil
}
