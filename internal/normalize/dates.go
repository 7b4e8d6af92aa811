package normalize

import (
	"strings"
	"time"
)

// Layouts tried against free-text dates, roughly most common first.
// Feeds mostly emit RFC 1123 / RFC 822 variants; vendor APIs emit ISO 8601.
var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
}

// Layouts with no zone designator; these parse as UTC.
var nakedLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"Mon, 2 Jan 2006 15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"2 Jan 2006",
}

// parseLenient parses a free-text date against the known layout lists.
// hadZone reports whether the input carried its own zone; zone-less input
// is treated as already UTC. The result is always in UTC.
func parseLenient(s string) (t time.Time, hadZone bool, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, false
	}

	for _, layout := range zonedLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed.UTC(), true, true
		}
	}
	for _, layout := range nakedLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return parsed, false, true
		}
	}
	return time.Time{}, false, false
}
