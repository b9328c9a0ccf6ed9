package market

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/wonny/newslens/internal/contracts"
	"github.com/wonny/newslens/pkg/config"
	"github.com/wonny/newslens/pkg/logger"
)

// fakeProvider serves canned price points per symbol
type fakeProvider struct {
	histories map[string][]contracts.PricePoint
	failing   map[string]bool
}

func (f *fakeProvider) History(ctx context.Context, symbol string, from, to time.Time) ([]contracts.PricePoint, error) {
	if f.failing[symbol] {
		return nil, fmt.Errorf("fetch failed for %s", symbol)
	}
	return f.histories[symbol], nil
}

func engineConfig() *config.Config {
	return &config.Config{
		Market: config.MarketConfig{
			BenchmarkSymbol: "^GSPC",
			Workers:         2,
		},
	}
}

// weekdays generates n consecutive weekday closes ending at endDate with a
// constant daily growth factor.
func weekdays(endDate string, n int, start, step float64) []contracts.PricePoint {
	end := day(endDate)
	var points []contracts.PricePoint
	d := end
	for len(points) < n {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			points = append(points, contracts.PricePoint{Date: d})
		}
		d = d.AddDate(0, 0, -1)
	}
	// Reverse into ascending order and assign closes
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	for i := range points {
		points[i].Close = start + step*float64(i)
	}
	return points
}

func TestComputeIndividualAndMarketRows(t *testing.T) {
	// NVDA: 100..109 over 10 weekdays ending 2024-03-15
	// ^GSPC: 200..209 over the same days
	provider := &fakeProvider{
		histories: map[string][]contracts.PricePoint{
			"NVDA":  weekdays("2024-03-15", 10, 100, 1),
			"^GSPC": weekdays("2024-03-15", 10, 200, 1),
		},
	}

	records := []contracts.ContentRecord{
		{Kind: contracts.KindIndividual, Ticker: "NVDA", EndDate: day("2024-03-15")},
		{Kind: contracts.KindIndividual, Ticker: "NVDA", EndDate: day("2024-03-15")}, // duplicate pair
		{Kind: contracts.KindMarketWeekly, Ticker: contracts.TickerMultiple, EndDate: day("2024-03-15")},
	}

	e := NewEngine(provider, engineConfig(), logger.Nop())
	metrics, err := e.Compute(context.Background(), records)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	// One row per unique (date, ticker) pair
	if len(metrics) != 2 {
		t.Fatalf("got %d metric rows, want 2", len(metrics))
	}

	nvda, ok := metrics[contracts.MetricsKey{Date: "2024-03-15", Ticker: "NVDA"}]
	if !ok {
		t.Fatal("missing NVDA row")
	}

	wantWeekly := (109.0 - 104.0) / 104.0
	wantMarketDaily := (209.0 - 208.0) / 208.0
	wantMarketWeekly := (209.0 - 204.0) / 204.0

	if nvda.WeeklyReturn == nil || !closeTo(*nvda.WeeklyReturn, wantWeekly) {
		t.Errorf("NVDA weekly = %v, want %v", nvda.WeeklyReturn, wantWeekly)
	}
	if nvda.MarketDailyReturn == nil || !closeTo(*nvda.MarketDailyReturn, wantMarketDaily) {
		t.Errorf("NVDA market daily = %v, want %v", nvda.MarketDailyReturn, wantMarketDaily)
	}
	if nvda.GrowthAboveMarket == nil || !closeTo(*nvda.GrowthAboveMarket, wantWeekly-wantMarketWeekly) {
		t.Errorf("NVDA growth above market = %v, want %v", nvda.GrowthAboveMarket, wantWeekly-wantMarketWeekly)
	}

	market, ok := metrics[contracts.MetricsKey{Date: "2024-03-15", Ticker: contracts.TickerMultiple}]
	if !ok {
		t.Fatal("missing market-wide row")
	}
	if market.WeeklyReturn == nil || !closeTo(*market.WeeklyReturn, wantMarketWeekly) {
		t.Errorf("market row weekly = %v, want benchmark weekly %v", market.WeeklyReturn, wantMarketWeekly)
	}
	if market.GrowthAboveMarket != nil {
		t.Error("market-wide row must keep growth above market nil")
	}
}

func TestComputeFailedTickerKeepsRow(t *testing.T) {
	provider := &fakeProvider{
		histories: map[string][]contracts.PricePoint{
			"^GSPC": weekdays("2024-03-15", 10, 200, 1),
		},
		failing: map[string]bool{"AAPL": true},
	}

	records := []contracts.ContentRecord{
		{Kind: contracts.KindIndividual, Ticker: "AAPL", EndDate: day("2024-03-15")},
	}

	e := NewEngine(provider, engineConfig(), logger.Nop())
	metrics, err := e.Compute(context.Background(), records)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	row, ok := metrics[contracts.MetricsKey{Date: "2024-03-15", Ticker: "AAPL"}]
	if !ok {
		t.Fatal("row for the failed ticker must still exist")
	}
	if row.WeeklyReturn != nil {
		t.Error("failed ticker's own return must be nil")
	}
	if row.MarketWeeklyReturn == nil {
		t.Error("benchmark columns should still be filled")
	}
	if row.GrowthAboveMarket != nil {
		t.Error("growth above market requires both returns")
	}
}

func TestComputeInsufficientHistory(t *testing.T) {
	// Only 3 trading days: weekly return impossible, daily possible
	provider := &fakeProvider{
		histories: map[string][]contracts.PricePoint{
			"NVDA":  weekdays("2024-03-15", 3, 100, 1),
			"^GSPC": weekdays("2024-03-15", 3, 200, 1),
		},
	}

	records := []contracts.ContentRecord{
		{Kind: contracts.KindIndividual, Ticker: "NVDA", EndDate: day("2024-03-15")},
	}

	e := NewEngine(provider, engineConfig(), logger.Nop())
	metrics, err := e.Compute(context.Background(), records)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	row := metrics[contracts.MetricsKey{Date: "2024-03-15", Ticker: "NVDA"}]
	if row.WeeklyReturn != nil {
		t.Error("weekly return with 3 days of history must be nil")
	}
	if row.MarketDailyReturn == nil {
		t.Error("daily return with 3 days of history should exist")
	}
}

func TestComputeEmptyCorpus(t *testing.T) {
	e := NewEngine(&fakeProvider{}, engineConfig(), logger.Nop())
	metrics, err := e.Compute(context.Background(), nil)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if len(metrics) != 0 {
		t.Errorf("empty corpus should yield no rows, got %d", len(metrics))
	}
}

func closeTo(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-12
}
