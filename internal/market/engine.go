package market

import (
	"context"
	"sync"
	"time"

	"github.com/wonny/newslens/internal/contracts"
	"github.com/wonny/newslens/pkg/config"
	"github.com/wonny/newslens/pkg/logger"
)

// Trading-day offsets for the two return windows
const (
	dailyOffset  = 1
	weeklyOffset = 5
)

// lookbackCalendarDays pads the fetch window so at least 5 trading days of
// trailing history exist across weekends and holidays.
const lookbackCalendarDays = 15

// Engine computes realized market returns for every unique (date, ticker)
// pair referenced by the corpus.
// ⭐ SSOT: 수익률 계산은 이 엔진에서만
type Engine struct {
	provider  contracts.PriceHistoryProvider
	logger    *logger.Logger
	benchmark string
	workers   int
}

// NewEngine creates a new market return engine
func NewEngine(provider contracts.PriceHistoryProvider, cfg *config.Config, log *logger.Logger) *Engine {
	return &Engine{
		provider:  provider,
		logger:    log.WithField("module", "market"),
		benchmark: cfg.Market.BenchmarkSymbol,
		workers:   cfg.Market.Workers,
	}
}

// Compute derives one metrics row per unique (end_date, ticker) pair, not
// per record, since multiple records can share a pair.
//
// A ticker whose history fetch fails is dropped from the output (its rows
// keep nil own-returns); price-provider partial failure never aborts the
// run.
func (e *Engine) Compute(ctx context.Context, records []contracts.ContentRecord) (map[contracts.MetricsKey]contracts.MarketMetrics, error) {
	symbols, minDate, maxDate := e.collectSymbols(records)
	metrics := make(map[contracts.MetricsKey]contracts.MarketMetrics)
	if minDate.IsZero() {
		return metrics, nil
	}

	// One bulk window per ticker, not one fetch per date
	from := minDate.AddDate(0, 0, -lookbackCalendarDays)
	to := maxDate.AddDate(0, 0, 1)

	histories := e.fetchHistories(ctx, symbols, from, to)

	benchmarkSeries, haveBenchmark := histories[e.benchmark]
	if !haveBenchmark {
		e.logger.WithField("symbol", e.benchmark).Warn("Benchmark history unavailable, market columns will be empty")
	}

	for i := range records {
		record := &records[i]
		if record.EndDate.IsZero() {
			continue
		}

		key := contracts.KeyFor(record)
		if _, done := metrics[key]; done {
			continue
		}

		row := contracts.MarketMetrics{
			Date:   record.EndDate,
			Ticker: record.Ticker,
		}

		var marketDaily, marketWeekly *float64
		if haveBenchmark {
			marketDaily, marketWeekly = returnsAt(benchmarkSeries, record.EndDate)
		}
		row.MarketDailyReturn = marketDaily
		row.MarketWeeklyReturn = marketWeekly

		if record.IsIndividual() {
			if series, ok := histories[record.Ticker]; ok {
				_, row.WeeklyReturn = returnsAt(series, record.EndDate)
			}
			if row.WeeklyReturn != nil && marketWeekly != nil {
				excess := *row.WeeklyReturn - *marketWeekly
				row.GrowthAboveMarket = &excess
			}
		} else {
			// Market-wide rows: the record's own return is the benchmark's,
			// and growth above market stays nil. One policy for all rows.
			row.WeeklyReturn = marketWeekly
		}

		metrics[key] = row
	}

	e.logger.WithFields(map[string]interface{}{
		"pairs":   len(metrics),
		"tickers": len(histories),
	}).Info("Computed market metrics")

	return metrics, nil
}

// collectSymbols gathers distinct individual tickers plus the benchmark, and
// the corpus end-date range.
func (e *Engine) collectSymbols(records []contracts.ContentRecord) ([]string, time.Time, time.Time) {
	seen := make(map[string]struct{})
	var symbols []string
	var minDate, maxDate time.Time

	for i := range records {
		record := &records[i]

		if record.IsIndividual() {
			if _, ok := seen[record.Ticker]; !ok {
				seen[record.Ticker] = struct{}{}
				symbols = append(symbols, record.Ticker)
			}
		}

		if record.EndDate.IsZero() {
			continue
		}
		if minDate.IsZero() || record.EndDate.Before(minDate) {
			minDate = record.EndDate
		}
		if record.EndDate.After(maxDate) {
			maxDate = record.EndDate
		}
	}

	if _, ok := seen[e.benchmark]; !ok {
		symbols = append(symbols, e.benchmark)
	}

	return symbols, minDate, maxDate
}

// fetchHistories pulls one price series per symbol on a bounded worker pool.
// 실패한 티커는 결과에서 빠질 뿐, 런은 계속된다.
func (e *Engine) fetchHistories(ctx context.Context, symbols []string, from, to time.Time) map[string]Series {
	type fetchResult struct {
		symbol string
		series Series
		err    error
	}

	symbolCh := make(chan string, len(symbols))
	resultCh := make(chan fetchResult, len(symbols))

	workers := e.workers
	if workers > len(symbols) && len(symbols) > 0 {
		workers = len(symbols)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range symbolCh {
				points, err := e.provider.History(ctx, symbol, from, to)
				if err == nil && len(points) == 0 {
					err = &contracts.TransportError{Op: "price history", Target: symbol, Err: errEmptyHistory}
				}
				resultCh <- fetchResult{symbol: symbol, series: NewSeries(points), err: err}
			}
		}()
	}

	for _, symbol := range symbols {
		symbolCh <- symbol
	}
	close(symbolCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	histories := make(map[string]Series, len(symbols))
	for result := range resultCh {
		if result.err != nil {
			e.logger.WithError(result.err).WithField("symbol", result.symbol).Warn("Dropping ticker without history")
			continue
		}
		histories[result.symbol] = result.series
	}

	return histories
}

// returnsAt computes the daily and weekly return at the forward-fill
// position for date.
func returnsAt(series Series, date time.Time) (daily, weekly *float64) {
	idx := series.IndexAtOrBefore(date)
	if idx < 0 {
		return nil, nil
	}
	return series.ReturnFrom(idx, dailyOffset), series.ReturnFrom(idx, weeklyOffset)
}

type emptyHistoryError struct{}

func (emptyHistoryError) Error() string { return "no rows in fetched history" }

var errEmptyHistory = emptyHistoryError{}
