package qa

import (
	"fmt"
	"strings"
	"time"

	"github.com/wonny/newslens/internal/contracts"
)

// Document is one enriched record rendered for retrieval
type Document struct {
	Content string
	Record  contracts.EnrichedRecord
}

// buildDocuments renders every enriched row into retrievable text.
// ⭐ 수치는 전부 퍼센트 문자열로 포맷한다.
func buildDocuments(records []contracts.EnrichedRecord) []Document {
	docs := make([]Document, 0, len(records))
	for i := range records {
		docs = append(docs, Document{
			Content: renderRecord(&records[i]),
			Record:  records[i],
		})
	}
	return docs
}

func renderRecord(r *contracts.EnrichedRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Type: %s\n", r.Kind)
	fmt.Fprintf(&b, "Period: %s to %s\n", formatDate(r.StartDate), formatDate(r.EndDate))
	fmt.Fprintf(&b, "Ticker: %s\n", r.Ticker)
	fmt.Fprintf(&b, "Growth (last day): %s\n", FormatPercent(r.GrowthLastDay))
	fmt.Fprintf(&b, "Weekly Return: %s\n", FormatPercent(r.WeeklyReturn))
	fmt.Fprintf(&b, "Market Daily Return: %s\n", FormatPercent(r.MarketDailyReturn))
	fmt.Fprintf(&b, "Market Weekly Return: %s\n", FormatPercent(r.MarketWeeklyReturn))
	fmt.Fprintf(&b, "Growth Above Market: %s\n", FormatPercent(r.GrowthAboveMarket))
	fmt.Fprintf(&b, "Count: %d\n", r.Count)
	fmt.Fprintf(&b, "Content: %s", r.Text)

	return b.String()
}

// FormatPercent renders a fractional return as a percentage, "n/a" when the
// value is absent.
func FormatPercent(value *float64) string {
	if value == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", *value*100)
}

func formatDate(ts time.Time) string {
	if ts.IsZero() {
		return "unknown"
	}
	return ts.Format(contracts.DateLayout)
}
