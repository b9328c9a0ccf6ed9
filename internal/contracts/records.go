package contracts

import (
	"fmt"
	"time"
)

// RecordKind classifies an extracted content record
type RecordKind string

const (
	KindIndividual   RecordKind = "individual"
	KindMarketDaily  RecordKind = "market_daily"
	KindMarketWeekly RecordKind = "market_weekly"
)

// TickerMultiple is the sentinel ticker for market-wide summary records
const TickerMultiple = "multiple_tickers"

// DateLayout is the calendar-date format used across the pipeline
const DateLayout = "2006-01-02"

// MetricColumns are the four columns the enrichment run must produce on
// every row. Persistence is refused when any of them is absent.
// ⭐ SSOT: 메트릭 컬럼 이름은 여기서만 정의
var MetricColumns = []string{
	"weekly_return",
	"market_daily_return",
	"market_weekly_return",
	"growth_above_market",
}

// ContentRecord is one unit of extracted news/market text.
// RecordExtractor가 생성하면 불변. 중복 제거 없이 코퍼스에 수집된다.
type ContentRecord struct {
	Kind      RecordKind `json:"type"`
	StartDate time.Time  `json:"start_date"`
	EndDate   time.Time  `json:"end_date"`
	Ticker    string     `json:"ticker"`
	Count     int        `json:"count"`

	// GrowthLastDay is a fraction (0.0123 == 1.23%), already divided by 100
	// from the percentage the extractor returns. Individual records only.
	GrowthLastDay *float64 `json:"growth_last_day,omitempty"`

	// Model is the summarizing model name embedded in market-summary blocks.
	Model string `json:"model,omitempty"`

	Text string `json:"text"`
	Link string `json:"link"`
}

// IsIndividual reports whether the record concerns a single ticker
func (r *ContentRecord) IsIndividual() bool {
	return r.Kind == KindIndividual
}

// Validate checks the record invariants
func (r *ContentRecord) Validate() error {
	switch r.Kind {
	case KindIndividual:
		if r.Ticker == "" || r.Ticker == TickerMultiple {
			return fmt.Errorf("individual record requires a real ticker, got %q", r.Ticker)
		}
	case KindMarketDaily, KindMarketWeekly:
		if r.Ticker != TickerMultiple {
			return fmt.Errorf("market record requires ticker %q, got %q", TickerMultiple, r.Ticker)
		}
	default:
		return fmt.Errorf("unknown record kind %q", r.Kind)
	}

	if r.Count < 0 {
		return fmt.Errorf("mention count must be non-negative, got %d", r.Count)
	}

	if !r.StartDate.IsZero() && !r.EndDate.IsZero() && r.EndDate.Before(r.StartDate) {
		return fmt.Errorf("record period inverted: %s > %s",
			r.StartDate.Format(DateLayout), r.EndDate.Format(DateLayout))
	}

	return nil
}

// MetricsKey identifies a metrics row: one per unique (date, ticker) pair.
// Market-wide rows use the TickerMultiple sentinel.
type MetricsKey struct {
	Date   string // DateLayout formatted
	Ticker string
}

// KeyFor builds the metrics key for a record
func KeyFor(r *ContentRecord) MetricsKey {
	return MetricsKey{Date: r.EndDate.Format(DateLayout), Ticker: r.Ticker}
}

// MarketMetrics holds realized returns for one (date, ticker) pair.
// 값이 없으면(거래일 이력 부족, 시세 조회 실패) nil. 절대 짧은 윈도우로 대체하지 않음.
type MarketMetrics struct {
	Date   time.Time `json:"date"`
	Ticker string    `json:"ticker"`

	WeeklyReturn       *float64 `json:"weekly_return"`
	MarketDailyReturn  *float64 `json:"market_daily_return"`
	MarketWeeklyReturn *float64 `json:"market_weekly_return"`
	GrowthAboveMarket  *float64 `json:"growth_above_market"`
}

// EnrichedRecord is a ContentRecord joined with its MarketMetrics.
// Rows with no metrics match keep nil metrics, they are never dropped.
type EnrichedRecord struct {
	ContentRecord

	WeeklyReturn       *float64 `json:"weekly_return"`
	MarketDailyReturn  *float64 `json:"market_daily_return"`
	MarketWeeklyReturn *float64 `json:"market_weekly_return"`
	GrowthAboveMarket  *float64 `json:"growth_above_market"`
}
