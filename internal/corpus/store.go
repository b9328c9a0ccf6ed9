package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/wonny/newslens/internal/contracts"
	"github.com/wonny/newslens/pkg/config"
	"github.com/wonny/newslens/pkg/logger"
)

// Store persists the corpus artifacts as brotli-compressed parquet files
// ⭐ SSOT: 파케이 아티팩트 입출력은 여기서만
//
// Two artifacts: the flattened raw corpus and the enriched corpus. Dates are
// stored as ISO strings so the schema stays byte-for-byte append-stable
// across incremental runs.
type Store struct {
	logger       *logger.Logger
	corpusPath   string
	enrichedPath string
}

// NewStore creates a new parquet store
func NewStore(cfg *config.Config, log *logger.Logger) *Store {
	return &Store{
		logger:       log.WithField("module", "store"),
		corpusPath:   cfg.CorpusPath(),
		enrichedPath: cfg.EnrichedPath(),
	}
}

// corpusRow is the parquet schema of the flattened corpus
type corpusRow struct {
	Type      string   `parquet:"type"`
	StartDate string   `parquet:"start_date"`
	EndDate   string   `parquet:"end_date"`
	Ticker    string   `parquet:"ticker"`
	Count     int32    `parquet:"count"`
	Growth    *float64 `parquet:"growth_last_day,optional"`
	Model     *string  `parquet:"model,optional"`
	Text      string   `parquet:"text"`
	Link      string   `parquet:"link"`
}

// enrichedRow is corpusRow plus the four metric columns
type enrichedRow struct {
	Type      string   `parquet:"type"`
	StartDate string   `parquet:"start_date"`
	EndDate   string   `parquet:"end_date"`
	Ticker    string   `parquet:"ticker"`
	Count     int32    `parquet:"count"`
	Growth    *float64 `parquet:"growth_last_day,optional"`
	Model     *string  `parquet:"model,optional"`
	Text      string   `parquet:"text"`
	Link      string   `parquet:"link"`

	WeeklyReturn       *float64 `parquet:"weekly_return,optional"`
	MarketDailyReturn  *float64 `parquet:"market_daily_return,optional"`
	MarketWeeklyReturn *float64 `parquet:"market_weekly_return,optional"`
	GrowthAboveMarket  *float64 `parquet:"growth_above_market,optional"`
}

// CorpusExists reports whether a prior flattened corpus is on disk
func (s *Store) CorpusExists() bool {
	_, err := os.Stat(s.corpusPath)
	return err == nil
}

// WriteCorpus replaces the flattened corpus artifact
func (s *Store) WriteCorpus(records []contracts.ContentRecord) error {
	rows := make([]corpusRow, 0, len(records))
	for i := range records {
		rows = append(rows, toCorpusRow(&records[i]))
	}

	if err := writeParquet(s.corpusPath, rows); err != nil {
		return fmt.Errorf("write corpus: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"path": s.corpusPath,
		"rows": len(rows),
	}).Info("Wrote corpus artifact")
	return nil
}

// AppendCorpus appends records to the existing flattened corpus.
// 스키마가 고정이라 전체 재기록이 안전하다 (파케이는 append 불가).
func (s *Store) AppendCorpus(records []contracts.ContentRecord) error {
	existing, err := s.ReadCorpus()
	if err != nil {
		return err
	}
	return s.WriteCorpus(append(existing, records...))
}

// ReadCorpus loads the flattened corpus. Reads only the record columns;
// any stale metric columns a prior run may have left are never read back.
func (s *Store) ReadCorpus() ([]contracts.ContentRecord, error) {
	rows, err := readParquet[corpusRow](s.corpusPath)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}

	records := make([]contracts.ContentRecord, 0, len(rows))
	for i := range rows {
		records = append(records, fromCorpusRow(&rows[i]))
	}
	return records, nil
}

// WriteEnriched persists the enriched corpus. Refuses to write when the
// output schema is missing any metric column. This is the one fatal case.
func (s *Store) WriteEnriched(records []contracts.EnrichedRecord) error {
	if err := validateEnrichedSchema(); err != nil {
		return err
	}

	rows := make([]enrichedRow, 0, len(records))
	for i := range records {
		rows = append(rows, toEnrichedRow(&records[i]))
	}

	if err := writeParquet(s.enrichedPath, rows); err != nil {
		return fmt.Errorf("write enriched corpus: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"path": s.enrichedPath,
		"rows": len(rows),
	}).Info("Wrote enriched corpus artifact")
	return nil
}

// ReadEnriched loads the enriched corpus
func (s *Store) ReadEnriched() ([]contracts.EnrichedRecord, error) {
	rows, err := readParquet[enrichedRow](s.enrichedPath)
	if err != nil {
		return nil, fmt.Errorf("read enriched corpus: %w", err)
	}

	records := make([]contracts.EnrichedRecord, 0, len(rows))
	for i := range rows {
		records = append(records, fromEnrichedRow(&rows[i]))
	}
	return records, nil
}

// validateEnrichedSchema asserts every required metric column exists in the
// output schema before anything touches disk.
func validateEnrichedSchema() error {
	schema := parquet.SchemaOf(enrichedRow{})
	present := make(map[string]struct{})
	for _, field := range schema.Fields() {
		present[field.Name()] = struct{}{}
	}

	var missing []string
	for _, column := range contracts.MetricColumns {
		if _, ok := present[column]; !ok {
			missing = append(missing, column)
		}
	}

	if len(missing) > 0 {
		return &contracts.DataIntegrityError{Missing: missing}
	}
	return nil
}

func writeParquet[T any](path string, rows []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	writer := parquet.NewGenericWriter[T](f, parquet.Compression(&parquet.Brotli))
	if _, err := writer.Write(rows); err != nil {
		f.Close()
		return fmt.Errorf("write rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		f.Close()
		return fmt.Errorf("close writer: %w", err)
	}

	return f.Close()
}

func readParquet[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	return parquet.Read[T](f, info.Size())
}

// Row conversions. 날짜는 ISO 문자열, 제로 날짜는 빈 문자열.

func toCorpusRow(r *contracts.ContentRecord) corpusRow {
	row := corpusRow{
		Type:      string(r.Kind),
		StartDate: formatDate(r.StartDate),
		EndDate:   formatDate(r.EndDate),
		Ticker:    r.Ticker,
		Count:     int32(r.Count),
		Growth:    r.GrowthLastDay,
		Text:      r.Text,
		Link:      r.Link,
	}
	if r.Model != "" {
		model := r.Model
		row.Model = &model
	}
	return row
}

func fromCorpusRow(row *corpusRow) contracts.ContentRecord {
	record := contracts.ContentRecord{
		Kind:          contracts.RecordKind(row.Type),
		StartDate:     parseDate(row.StartDate),
		EndDate:       parseDate(row.EndDate),
		Ticker:        row.Ticker,
		Count:         int(row.Count),
		GrowthLastDay: row.Growth,
		Text:          row.Text,
		Link:          row.Link,
	}
	if row.Model != nil {
		record.Model = *row.Model
	}
	return record
}

func toEnrichedRow(r *contracts.EnrichedRecord) enrichedRow {
	base := toCorpusRow(&r.ContentRecord)
	return enrichedRow{
		Type:      base.Type,
		StartDate: base.StartDate,
		EndDate:   base.EndDate,
		Ticker:    base.Ticker,
		Count:     base.Count,
		Growth:    base.Growth,
		Model:     base.Model,
		Text:      base.Text,
		Link:      base.Link,

		WeeklyReturn:       r.WeeklyReturn,
		MarketDailyReturn:  r.MarketDailyReturn,
		MarketWeeklyReturn: r.MarketWeeklyReturn,
		GrowthAboveMarket:  r.GrowthAboveMarket,
	}
}

func fromEnrichedRow(row *enrichedRow) contracts.EnrichedRecord {
	return contracts.EnrichedRecord{
		ContentRecord: fromCorpusRow(&corpusRow{
			Type:      row.Type,
			StartDate: row.StartDate,
			EndDate:   row.EndDate,
			Ticker:    row.Ticker,
			Count:     row.Count,
			Growth:    row.Growth,
			Model:     row.Model,
			Text:      row.Text,
			Link:      row.Link,
		}),
		WeeklyReturn:       row.WeeklyReturn,
		MarketDailyReturn:  row.MarketDailyReturn,
		MarketWeeklyReturn: row.MarketWeeklyReturn,
		GrowthAboveMarket:  row.GrowthAboveMarket,
	}
}

func formatDate(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.Format(contracts.DateLayout)
}

func parseDate(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	ts, err := time.Parse(contracts.DateLayout, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}
