package contracts

import (
	"context"
	"time"
)

// FeedEntry is one normalized feed item. Content is resolved once from the
// raw entry's candidate fields (first-present-wins), not re-resolved
// downstream.
type FeedEntry struct {
	Title     string
	Link      string
	Published time.Time
	Content   string

	// EndDate is the article end date embedded in the entry text, zero when
	// no known template matched. Mode filtering sorts on this, not on the
	// feed's native order.
	EndDate time.Time
}

// HasContent reports whether the entry carries extractable content
func (e *FeedEntry) HasContent() bool {
	return e.Content != ""
}

// FeedSource yields the entries of one feed fetch, sorted by descending
// EndDate with zero-date entries last. Collection mode "last" takes the
// first entry, so implementations must keep this ordering.
type FeedSource interface {
	Fetch(ctx context.Context) ([]FeedEntry, error)
}

// Extractor turns one entry's content into zero or more content records.
// Per-entry failures are returned, never panicked, and must not abort a
// batch.
type Extractor interface {
	Extract(ctx context.Context, entry FeedEntry) ([]ContentRecord, error)
}

// PricePoint is one trading day in a close-price series
type PricePoint struct {
	Date  time.Time
	Close float64
}

// PriceHistoryProvider returns a chronological close-price series for a
// symbol within a calendar window.
type PriceHistoryProvider interface {
	History(ctx context.Context, symbol string, from, to time.Time) ([]PricePoint, error)
}
