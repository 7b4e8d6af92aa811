package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmillar/jobpulse/internal/model"
)

const leverBaseURL = "https://api.lever.co/v0/postings"

type leverCategories struct {
	Location     string   `json:"location"`
	AllLocations []string `json:"allLocations"`
}

type leverJob struct {
	ID               string          `json:"id"`
	Text             string          `json:"text"`
	DescriptionPlain string          `json:"descriptionPlain"`
	Description      string          `json:"description"`
	Categories       leverCategories `json:"categories"`
	CreatedAt        int64           `json:"createdAt"`
	HostedURL        string          `json:"hostedUrl"`
}

// LeverFetcher pulls raw entries from the Lever public postings API.
type LeverFetcher struct {
	companySlug string
	companyName string
	client      *http.Client
}

func NewLeverFetcher(companySlug, companyName string, client *http.Client) *LeverFetcher {
	return &LeverFetcher{
		companySlug: companySlug,
		companyName: companyName,
		client:      client,
	}
}

func (f *LeverFetcher) Name() string { return "lever" }

// Fetch retrieves all postings for the company as source-tagged raw
// entries. The only date signal Lever exposes is createdAt in epoch
// milliseconds, which travels on the Posting variant.
func (f *LeverFetcher) Fetch(ctx context.Context) ([]model.RawEntry, error) {
	url := fmt.Sprintf("%s/%s?mode=json", leverBaseURL, f.companySlug)

	body, err := get(ctx, f.client, url, f.Name(), f.companySlug)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var rawJobs []json.RawMessage
	if err := json.NewDecoder(body).Decode(&rawJobs); err != nil {
		return nil, fmt.Errorf("lever fetch for %s: %w", f.companySlug, err)
	}

	entries := make([]model.RawEntry, 0, len(rawJobs))
	for _, rawJob := range rawJobs {
		var lj leverJob
		if err := json.Unmarshal(rawJob, &lj); err != nil {
			continue
		}

		location := lj.Categories.Location
		if len(lj.Categories.AllLocations) > 0 {
			location = strings.Join(lj.Categories.AllLocations, ", ")
		}

		description := lj.DescriptionPlain
		if description == "" {
			description = lj.Description
		}

		var payload map[string]any
		_ = json.Unmarshal(rawJob, &payload)

		entries = append(entries, model.RawEntry{
			Source:      f.Name(),
			Title:       lj.Text,
			URL:         lj.HostedURL,
			Company:     f.companyName,
			Location:    location,
			Description: description,
			Posting: &model.PostingFields{
				CreatedAtMillis: lj.CreatedAt,
			},
			Payload: payload,
		})
	}

	return entries, nil
}
