package model

import "time"

// RawEntry is what a connector hands to the normalizer: a small common
// envelope plus exactly one family-specific variant. Which variant is
// honored is decided by the Source tag, so each connector family keeps an
// exhaustive, statically checkable branch in the normalizer.
type RawEntry struct {
	Source      string // connector tag, mandatory
	Title       string // mandatory
	URL         string // mandatory
	Company     string
	Location    string
	Description string

	Feed    *FeedFields    // RSS-style feeds
	Board   *BoardFields   // Greenhouse-like board APIs
	Posting *PostingFields // Lever-like posting APIs

	// Payload is the untouched source record, attached to the Job for audit.
	Payload map[string]any
}

// FeedFields carries the date signals an RSS-style feed provides.
type FeedFields struct {
	Published       string     // free-text date, parsed leniently
	PublishedParsed *time.Time // pre-parsed publish time, preferred when set
}

// BoardFields carries the two timestamps a board API exposes. UpdatedAt is
// usually the posting time, but a CreatedAt more than a day older is taken
// as the true posting time instead (an updated_at touch is often just a
// metadata edit).
type BoardFields struct {
	UpdatedAt string // ISO 8601
	CreatedAt string // ISO 8601
}

// PostingFields carries the single date signal a posting API exposes.
type PostingFields struct {
	CreatedAtMillis int64 // epoch milliseconds, 0 means absent
}
