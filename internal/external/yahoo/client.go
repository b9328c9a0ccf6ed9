package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/newslens/internal/contracts"
	"github.com/wonny/newslens/pkg/config"
	"github.com/wonny/newslens/pkg/httputil"
	"github.com/wonny/newslens/pkg/logger"
	"github.com/wonny/newslens/pkg/redis"
)

// Client fetches daily close-price history from the Yahoo Finance chart API
// ⭐ SSOT: 시세 이력 조회는 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	cache      *redis.Cache
	limiter    *rate.Limiter
	baseURL    string
}

var _ contracts.PriceHistoryProvider = (*Client)(nil)

// NewClient creates a new Yahoo Finance client
func NewClient(httpClient *httputil.Client, cache *redis.Cache, cfg *config.Config, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("module", "yahoo"),
		cache:      cache,
		limiter:    rate.NewLimiter(rate.Limit(cfg.Market.RatePerSecond), 1),
		baseURL:    cfg.Market.YahooBaseURL,
	}
}

// History fetches the daily close series for symbol over [from, to].
// 하루치 일별 캐시. 같은 윈도우 재조회는 Redis에서.
func (c *Client) History(ctx context.Context, symbol string, from, to time.Time) ([]contracts.PricePoint, error) {
	cacheKey := redis.PriceHistoryKey(symbol,
		from.Format(contracts.DateLayout), to.Format(contracts.DateLayout))

	var cached []contracts.PricePoint
	if found, _ := c.cache.Get(ctx, cacheKey, &cached); found {
		return cached, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &contracts.TransportError{Op: "price history", Target: symbol, Err: err}
	}

	fullURL := fmt.Sprintf(
		"%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&events=history",
		c.baseURL, url.PathEscape(symbol), from.Unix(), to.Unix(),
	)

	resp, err := c.httpClient.GetWithHeaders(ctx, fullURL, map[string]string{
		"User-Agent": "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36",
	})
	if err != nil {
		return nil, &contracts.TransportError{Op: "price history", Target: symbol, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &contracts.TransportError{
			Op:     "price history",
			Target: symbol,
			Err:    fmt.Errorf("unexpected status code: %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &contracts.TransportError{Op: "price history", Target: symbol, Err: err}
	}

	points, err := parseChartResponse(body)
	if err != nil {
		return nil, &contracts.TransportError{Op: "price history", Target: symbol, Err: err}
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(points),
	}).Debug("Fetched price history")

	if len(points) > 0 {
		_ = c.cache.Set(ctx, cacheKey, points, redis.TTLDaily)
	}
	return points, nil
}

// chartResponse mirrors the chart API payload
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// parseChartResponse extracts the adjusted close series. Falls back to the
// raw close when no adjusted series is present (indices for example).
func parseChartResponse(body []byte) ([]contracts.PricePoint, error) {
	var payload chartResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode chart response: %w", err)
	}

	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error %s: %s",
			payload.Chart.Error.Code, payload.Chart.Error.Description)
	}

	if len(payload.Chart.Result) == 0 {
		return nil, nil
	}

	result := payload.Chart.Result[0]

	var closes []*float64
	if len(result.Indicators.AdjClose) > 0 && len(result.Indicators.AdjClose[0].AdjClose) == len(result.Timestamp) {
		closes = result.Indicators.AdjClose[0].AdjClose
	} else if len(result.Indicators.Quote) > 0 {
		closes = result.Indicators.Quote[0].Close
	}

	if len(closes) != len(result.Timestamp) {
		return nil, fmt.Errorf("timestamp/close length mismatch: %d vs %d",
			len(result.Timestamp), len(closes))
	}

	points := make([]contracts.PricePoint, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if closes[i] == nil {
			// Halted or missing trading day
			continue
		}
		day := time.Unix(ts, 0).UTC()
		points = append(points, contracts.PricePoint{
			Date:  time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
			Close: *closes[i],
		})
	}

	return points, nil
}
