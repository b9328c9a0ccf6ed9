package merge

import (
	"github.com/wonny/newslens/internal/contracts"
	"github.com/wonny/newslens/pkg/logger"
)

// Merger joins market metrics back onto the corpus by (end_date, ticker)
// ⭐ SSOT: 코퍼스-메트릭 병합은 여기서만
//
// The join always rebuilds the metric columns from the engine output, so a
// re-run can never mix stale and fresh values and merging twice on the same
// inputs yields identical output.
type Merger struct {
	logger *logger.Logger
}

// NewMerger creates a new corpus merger
func NewMerger(log *logger.Logger) *Merger {
	return &Merger{logger: log.WithField("module", "merge")}
}

// Merge left-joins metrics onto the corpus. Rows with no metrics match keep
// nil metrics; they are never dropped.
func (m *Merger) Merge(records []contracts.ContentRecord, metrics map[contracts.MetricsKey]contracts.MarketMetrics) []contracts.EnrichedRecord {
	merged := make([]contracts.EnrichedRecord, 0, len(records))
	matched := 0

	for i := range records {
		record := records[i]
		enriched := contracts.EnrichedRecord{ContentRecord: record}

		if row, ok := metrics[contracts.KeyFor(&record)]; ok {
			enriched.WeeklyReturn = row.WeeklyReturn
			enriched.MarketDailyReturn = row.MarketDailyReturn
			enriched.MarketWeeklyReturn = row.MarketWeeklyReturn
			enriched.GrowthAboveMarket = row.GrowthAboveMarket
			matched++
		}

		merged = append(merged, enriched)
	}

	m.logger.WithFields(map[string]interface{}{
		"rows":      len(merged),
		"matched":   matched,
		"unmatched": len(merged) - matched,
	}).Info("Merged metrics onto corpus")

	return merged
}
