package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/newslens/internal/contracts"
	"github.com/wonny/newslens/internal/corpus"
	"github.com/wonny/newslens/internal/market"
	"github.com/wonny/newslens/internal/merge"
	"github.com/wonny/newslens/pkg/config"
	"github.com/wonny/newslens/pkg/logger"
)

func day(s string) time.Time {
	ts, _ := time.Parse("2006-01-02", s)
	return ts
}

type fakeSource struct {
	entries []contracts.FeedEntry
}

func (f *fakeSource) Fetch(ctx context.Context) ([]contracts.FeedEntry, error) {
	return f.entries, nil
}

type fakeExtractor struct{}

func (f *fakeExtractor) Extract(ctx context.Context, entry contracts.FeedEntry) ([]contracts.ContentRecord, error) {
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

type fakeProvider struct{}

func (f *fakeProvider) History(ctx context.Context, symbol string, from, to time.Time) ([]contracts.PricePoint, error) {
	// Ten consecutive weekdays ending Friday 2024-03-15
	dates := []string{
		"2024-03-04", "2024-03-05", "2024-03-06", "2024-03-07", "2024-03-08",
		"2024-03-11", "2024-03-12", "2024-03-13", "2024-03-14", "2024-03-15",
	}
	points := make([]contracts.PricePoint, len(dates))
	for i, d := range dates {
		points[i] = contracts.PricePoint{Date: day(d), Close: 100 + float64(i)}
	}
	return points, nil
}

func testPipeline(t *testing.T) (*Pipeline, *corpus.Store) {
	t.Helper()

	cfg := &config.Config{
		Market: config.MarketConfig{
			BenchmarkSymbol: "^GSPC",
			Workers:         2,
		},
		Pipeline: config.PipelineConfig{
			DataDir:        t.TempDir(),
			CorpusFile:     "corpus.parquet",
			EnrichedFile:   "enriched.parquet",
			ExtractWorkers: 2,
		},
	}

	log := logger.Nop()
	source := &fakeSource{entries: []contracts.FeedEntry{
		{Link: "https://x/a", Content: "digest", EndDate: day("2024-03-15")},
	}}

	builder := corpus.NewBuilder(source, &fakeExtractor{}, cfg, log)
	store := corpus.NewStore(cfg, log)
	engine := market.NewEngine(&fakeProvider{}, cfg, log)
	merger := merge.NewMerger(log)

	return New(builder, store, engine, merger, nil, log), store
}

func TestRunFullPipeline(t *testing.T) {
	p, store := testPipeline(t)

	require.NoError(t, p.Run(context.Background(), corpus.ModeAll), "pipeline run failed")

	records, err := store.ReadCorpus()
	require.NoError(t, err)
	require.Len(t, records, 1)

	enriched, err := store.ReadEnriched()
	require.NoError(t, err)
	require.Len(t, enriched, 1)

	row := enriched[0]
	require.NotNil(t, row.WeeklyReturn, "weekly return should be computed")
	assert.Equal(t, (109.0-104.0)/104.0, *row.WeeklyReturn)
	// Same fake series for ticker and benchmark, so the excess return is zero
	require.NotNil(t, row.GrowthAboveMarket)
	assert.Equal(t, 0.0, *row.GrowthAboveMarket)
}

func TestCollectModeNewAppends(t *testing.T) {
	p, store := testPipeline(t)

	_, err := p.Collect(context.Background(), corpus.ModeAll)
	require.NoError(t, err, "initial collect failed")

	// The feed has nothing newer than the prior corpus maximum
	result, err := p.Collect(context.Background(), corpus.ModeNew)
	require.NoError(t, err, "incremental collect failed")
	assert.Empty(t, result.Records)

	records, err := store.ReadCorpus()
	require.NoError(t, err)
	assert.Len(t, records, 1, "corpus should be unchanged after empty incremental run")
}

func TestEnrichWithoutCorpus(t *testing.T) {
	p, _ := testPipeline(t)

	_, err := p.Enrich(context.Background())
	assert.Error(t, err, "Enrich without a corpus artifact should fail")
}
