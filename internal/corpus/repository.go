package corpus

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/newslens/internal/contracts"
)

// Repository mirrors enriched records into Postgres so the API can serve
// status and corpus queries without scanning parquet files.
// ⭐ SSOT: 코퍼스 미러 저장소는 여기서만
//
// The mirror upserts by content hash; the parquet artifact itself stays
// non-deduplicated.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new corpus repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the mirror table when absent
func (r *Repository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS enriched_records (
			record_key           TEXT PRIMARY KEY,
			type                 TEXT NOT NULL,
			start_date           DATE,
			end_date             DATE,
			ticker               TEXT NOT NULL,
			count                INT NOT NULL,
			growth_last_day      DOUBLE PRECISION,
			model                TEXT,
			text                 TEXT NOT NULL,
			link                 TEXT NOT NULL,
			weekly_return        DOUBLE PRECISION,
			market_daily_return  DOUBLE PRECISION,
			market_weekly_return DOUBLE PRECISION,
			growth_above_market  DOUBLE PRECISION,
			updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`

	_, err := r.pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("ensure mirror schema: %w", err)
	}
	return nil
}

// UpsertAll mirrors the enriched corpus, keyed by content hash
func (r *Repository) UpsertAll(ctx context.Context, records []contracts.EnrichedRecord) error {
	query := `
		INSERT INTO enriched_records (
			record_key, type, start_date, end_date, ticker, count,
			growth_last_day, model, text, link,
			weekly_return, market_daily_return, market_weekly_return, growth_above_market,
			updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now())
		ON CONFLICT (record_key) DO UPDATE SET
			count                = EXCLUDED.count,
			growth_last_day      = EXCLUDED.growth_last_day,
			model                = EXCLUDED.model,
			text                 = EXCLUDED.text,
			weekly_return        = EXCLUDED.weekly_return,
			market_daily_return  = EXCLUDED.market_daily_return,
			market_weekly_return = EXCLUDED.market_weekly_return,
			growth_above_market  = EXCLUDED.growth_above_market,
			updated_at           = now()
	`

	for i := range records {
		rec := &records[i]
		_, err := r.pool.Exec(ctx, query,
			recordKey(&rec.ContentRecord),
			string(rec.Kind),
			nullableDate(rec.StartDate),
			nullableDate(rec.EndDate),
			rec.Ticker,
			rec.Count,
			rec.GrowthLastDay,
			nullableString(rec.Model),
			rec.Text,
			rec.Link,
			rec.WeeklyReturn,
			rec.MarketDailyReturn,
			rec.MarketWeeklyReturn,
			rec.GrowthAboveMarket,
		)
		if err != nil {
			return fmt.Errorf("upsert record %s: %w", rec.Link, err)
		}
	}

	return nil
}

// Status summarizes the mirrored corpus
type Status struct {
	Rows           int        `json:"rows"`
	MaxEndDate     *time.Time `json:"max_end_date"`
	MetricCoverage float64    `json:"metric_coverage"` // share of rows with weekly_return present
}

// GetStatus returns row counts and metric coverage
func (r *Repository) GetStatus(ctx context.Context) (*Status, error) {
	query := `
		SELECT
			COUNT(*),
			MAX(end_date),
			COALESCE(AVG(CASE WHEN weekly_return IS NULL THEN 0.0 ELSE 1.0 END), 0)
		FROM enriched_records
	`

	var status Status
	err := r.pool.QueryRow(ctx, query).Scan(&status.Rows, &status.MaxEndDate, &status.MetricCoverage)
	if err != nil {
		return nil, fmt.Errorf("query mirror status: %w", err)
	}
	return &status, nil
}

// recordKey hashes the fields that identify one extracted record.
// ⭐ 미러 전용: 파케이 아티팩트에는 중복 제거를 적용하지 않는다.
func recordKey(r *contracts.ContentRecord) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%s|%s|%s|%s",
		r.Link, r.Kind, r.Ticker,
		r.StartDate.Format(contracts.DateLayout),
		r.EndDate.Format(contracts.DateLayout),
	))
	return fmt.Sprintf("%x", sum[:16])
}

func nullableDate(ts time.Time) *time.Time {
	if ts.IsZero() {
		return nil
	}
	return &ts
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
