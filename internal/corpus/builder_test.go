package corpus

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/wonny/newslens/internal/contracts"
	"github.com/wonny/newslens/pkg/config"
	"github.com/wonny/newslens/pkg/logger"
)

func day(s string) time.Time {
	ts, _ := time.Parse("2006-01-02", s)
	return ts
}

// fakeSource serves fixed entries
type fakeSource struct {
	entries []contracts.FeedEntry
}

func (f *fakeSource) Fetch(ctx context.Context) ([]contracts.FeedEntry, error) {
	return f.entries, nil
}

// fakeExtractor yields one individual record per entry; links listed in fail
// error out.
type fakeExtractor struct {
	fail map[string]bool
}

func (f *fakeExtractor) Extract(ctx context.Context, entry contracts.FeedEntry) ([]contracts.ContentRecord, error) {
	if f.fail[entry.Link] {
		return nil, fmt.Errorf("extraction failed for %s", entry.Link)
	}
	return []contracts.ContentRecord{
		{
			Kind:    contracts.KindIndividual,
			Ticker:  "NVDA",
			EndDate: entry.EndDate,
			Link:    entry.Link,
			Text:    entry.Content,
		},
	}, nil
}

func builderConfig() *config.Config {
	return &config.Config{
		Pipeline: config.PipelineConfig{ExtractWorkers: 2},
	}
}

// Entries sorted newest-first, as the feed client delivers them
func testEntries() []contracts.FeedEntry {
	return []contracts.FeedEntry{
		{Link: "https://x/new", Content: "newest", EndDate: day("2024-03-15")},
		{Link: "https://x/mid", Content: "middle", EndDate: day("2024-03-08")},
		{Link: "https://x/old", Content: "oldest", EndDate: day("2024-03-01")},
		{Link: "https://x/empty", EndDate: day("2024-02-23")},
	}
}

func TestBuildModeAll(t *testing.T) {
	b := NewBuilder(&fakeSource{entries: testEntries()}, &fakeExtractor{}, builderConfig(), logger.Nop())

	result, err := b.Build(context.Background(), ModeAll, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if result.Processed != 3 {
		t.Errorf("Processed = %d, want 3", result.Processed)
	}
	if result.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1 (content-less entry)", result.Skipped)
	}
	if result.Failed != 0 {
		t.Errorf("Failed = %d, want 0", result.Failed)
	}
	if len(result.Records) != 3 {
		t.Errorf("got %d records, want 3", len(result.Records))
	}
}

func TestBuildModeLast(t *testing.T) {
	b := NewBuilder(&fakeSource{entries: testEntries()}, &fakeExtractor{}, builderConfig(), logger.Nop())

	result, err := b.Build(context.Background(), ModeLast, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if result.Processed != 1 {
		t.Fatalf("Processed = %d, want 1", result.Processed)
	}
	if len(result.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(result.Records))
	}
	if result.Records[0].Link != "https://x/new" {
		t.Errorf("processed link = %q, want the entry with the maximal end date", result.Records[0].Link)
	}
}

func TestBuildModeNew(t *testing.T) {
	prior := []contracts.ContentRecord{
		{Kind: contracts.KindIndividual, Ticker: "NVDA", EndDate: day("2024-03-08"), Link: "https://x/mid"},
	}

	b := NewBuilder(&fakeSource{entries: testEntries()}, &fakeExtractor{}, builderConfig(), logger.Nop())

	result, err := b.Build(context.Background(), ModeNew, prior)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	// Only rows strictly newer than the prior maximum survive
	if len(result.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(result.Records))
	}
	if result.Records[0].Link != "https://x/new" {
		t.Errorf("kept link = %q, want only rows past the prior max end date", result.Records[0].Link)
	}
}

func TestBuildModeNewEmptyPrior(t *testing.T) {
	b := NewBuilder(&fakeSource{entries: testEntries()}, &fakeExtractor{}, builderConfig(), logger.Nop())

	result, err := b.Build(context.Background(), ModeNew, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(result.Records) != 3 {
		t.Errorf("with no prior corpus every record is new, got %d want 3", len(result.Records))
	}
}

func TestBuildEntryFailureDoesNotAbort(t *testing.T) {
	extractor := &fakeExtractor{fail: map[string]bool{"https://x/mid": true}}
	b := NewBuilder(&fakeSource{entries: testEntries()}, extractor, builderConfig(), logger.Nop())

	result, err := b.Build(context.Background(), ModeAll, nil)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if result.Failed != 1 {
		t.Errorf("Failed = %d, want 1", result.Failed)
	}
	if len(result.Records) != 2 {
		t.Errorf("got %d records, want 2 (siblings survive one entry's failure)", len(result.Records))
	}
}

func TestParseMode(t *testing.T) {
	for _, valid := range []string{"all", "last", "new"} {
		if _, err := ParseMode(valid); err != nil {
			t.Errorf("ParseMode(%q) error = %v", valid, err)
		}
	}
	if _, err := ParseMode("latest"); err == nil {
		t.Error("ParseMode should reject unknown modes")
	}
}

func TestFilterNewRecordsFlagsDuplicateLinks(t *testing.T) {
	prior := []contracts.ContentRecord{
		{EndDate: day("2024-03-08"), Link: "https://x/mid"},
	}
	records := []contracts.ContentRecord{
		{EndDate: day("2024-03-15"), Link: "https://x/mid"}, // same link, newer date
		{EndDate: day("2024-03-01"), Link: "https://x/old"},
	}

	kept := filterNewRecords(records, prior, logger.Nop())

	// Duplicate links are kept, older rows dropped
	if len(kept) != 1 {
		t.Fatalf("got %d records, want 1", len(kept))
	}
	if kept[0].Link != "https://x/mid" {
		t.Errorf("kept link = %q, want the reprocessed link kept as a duplicate", kept[0].Link)
	}
}
