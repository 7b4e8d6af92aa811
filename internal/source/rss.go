package source

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"

	"github.com/dmillar/jobpulse/internal/model"
)

type rssDocument struct {
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title string    `xml:"title"`
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	Author      string `xml:"author"`
	GUID        string `xml:"guid"`
}

// RSSFetcher pulls raw entries from one RSS 2.0 job feed. The tag names the
// feed (e.g. "linkedin_rss") and doubles as the normalizer dispatch key, so
// any tag outside the vendor families takes the feed date rules.
type RSSFetcher struct {
	tag     string
	feedURL string
	client  *http.Client
}

func NewRSSFetcher(tag, feedURL string, client *http.Client) *RSSFetcher {
	return &RSSFetcher{tag: tag, feedURL: feedURL, client: client}
}

func (f *RSSFetcher) Name() string { return f.tag }

// Fetch downloads and parses the feed. Feeds rarely carry a structured
// company or location, so those stay empty and the normalizer infers them
// from the title where it conservatively can.
func (f *RSSFetcher) Fetch(ctx context.Context) ([]model.RawEntry, error) {
	body, err := get(ctx, f.client, f.feedURL, f.tag, f.feedURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var doc rssDocument
	if err := xml.NewDecoder(body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%s fetch: parsing feed: %w", f.tag, err)
	}

	entries := make([]model.RawEntry, 0, len(doc.Channel.Items))
	for _, item := range doc.Channel.Items {
		payload := map[string]any{
			"title":       item.Title,
			"link":        item.Link,
			"description": item.Description,
			"pubDate":     item.PubDate,
		}
		if item.GUID != "" {
			payload["guid"] = item.GUID
		}
		if item.Author != "" {
			payload["author"] = item.Author
		}

		entries = append(entries, model.RawEntry{
			Source:      f.tag,
			Title:       item.Title,
			URL:         item.Link,
			Description: item.Description,
			Feed: &model.FeedFields{
				Published: item.PubDate,
			},
			Payload: payload,
		})
	}

	return entries, nil
}
