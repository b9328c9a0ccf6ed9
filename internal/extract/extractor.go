package extract

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/newslens/internal/contracts"
	"github.com/wonny/newslens/pkg/config"
	"github.com/wonny/newslens/pkg/logger"
)

// completionClient is the slice of pkg/llm the extractor needs
type completionClient interface {
	Complete(ctx context.Context, model, prompt string) (string, error)
}

// Extractor turns one feed entry's content into content records via the LLM
// ⭐ SSOT: 레코드 추출은 이 컴포넌트에서만
//
// Per-entry failures return an error and an empty result; the batch run is
// never aborted from here.
type Extractor struct {
	llm        completionClient
	logger     *logger.Logger
	model      string
	maxRetries int
	retryDelay time.Duration
}

var _ contracts.Extractor = (*Extractor)(nil)

// New creates a new Extractor
func New(llm completionClient, cfg *config.Config, log *logger.Logger) *Extractor {
	return &Extractor{
		llm:        llm,
		logger:     log.WithField("module", "extract"),
		model:      cfg.OpenAI.ExtractModel,
		maxRetries: cfg.OpenAI.MaxRetries,
		retryDelay: cfg.OpenAI.RetryDelay,
	}
}

// Extract calls the model with the fixed extraction instruction and decodes
// the strict-JSON response. Each record is tagged with the entry link.
func (e *Extractor) Extract(ctx context.Context, entry contracts.FeedEntry) ([]contracts.ContentRecord, error) {
	prompt := buildPrompt(entry.Content)

	var raw string
	var err error
	for attempt := 0; attempt < e.maxRetries; attempt++ {
		raw, err = e.llm.Complete(ctx, e.model, prompt)
		if err == nil {
			break
		}

		if attempt == e.maxRetries-1 {
			break
		}

		e.logger.WithFields(map[string]interface{}{
			"link":    entry.Link,
			"attempt": attempt + 1,
			"delay":   e.retryDelay,
		}).Warn("Extraction call failed, retrying")

		select {
		case <-ctx.Done():
			return nil, &contracts.TransportError{Op: "extraction call", Target: entry.Link, Err: ctx.Err()}
		case <-time.After(e.retryDelay):
		}
	}
	if err != nil {
		return nil, &contracts.TransportError{Op: "extraction call", Target: entry.Link, Err: err}
	}

	items, err := decodeContent(raw)
	if err != nil {
		return nil, &contracts.ExtractionFormatError{Link: entry.Link, Err: err}
	}

	records := make([]contracts.ContentRecord, 0, len(items))
	for _, item := range items {
		record := item.toRecord(entry.Link)
		if err := record.Validate(); err != nil {
			// 레코드 하나가 깨져도 같은 엔트리의 나머지는 살린다
			e.logger.WithError(err).WithField("link", entry.Link).Warn("Dropping invalid extracted record")
			continue
		}
		records = append(records, record)
	}

	return records, nil
}

// contentPayload is the strict-JSON envelope the prompt requires
type contentPayload struct {
	Content []rawItem `json:"content"`
}

// rawItem tolerates the type looseness of model output: numbers may arrive
// quoted, dates may carry a time part, growth may be a placeholder.
type rawItem struct {
	Type      string    `json:"type"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Ticker    string    `json:"ticker"`
	Count     flexInt   `json:"count"`
	Growth    flexFloat `json:"growth"`
	Model     string    `json:"model"`
	Text      string    `json:"text"`
}

// toRecord converts a decoded item to the canonical record shape.
// ⭐ growth는 퍼센트로 오므로 여기서 100으로 나눈다 (하드 불변).
func (it rawItem) toRecord(link string) contracts.ContentRecord {
	record := contracts.ContentRecord{
		Kind:      contracts.RecordKind(strings.TrimSpace(it.Type)),
		StartDate: parseDate(it.StartDate),
		EndDate:   parseDate(it.EndDate),
		Ticker:    strings.TrimSpace(it.Ticker),
		Count:     it.Count.Value,
		Model:     strings.TrimSpace(it.Model),
		Text:      it.Text,
		Link:      link,
	}

	if it.Growth.Valid {
		fraction := it.Growth.Value / 100
		record.GrowthLastDay = &fraction
	}

	return record
}

// decodeContent strips fence markup and decodes the content array
func decodeContent(raw string) ([]rawItem, error) {
	cleaned := cleanJSONResponse(raw)

	var payload contentPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, err
	}

	return payload.Content, nil
}

// cleanJSONResponse removes code fences and surrounding prose the model may
// wrap its JSON output in.
func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	// Some model responses include extra prose around JSON.
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}

var recordDateLayouts = []string{
	contracts.DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
}

func parseDate(value string) time.Time {
	value = strings.TrimSpace(value)
	for _, layout := range recordDateLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
		}
	}
	return time.Time{}
}

// flexInt decodes from a JSON number or a numeric string
type flexInt struct {
	Value int
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		return nil
	}

	if v, err := strconv.Atoi(s); err == nil {
		f.Value = v
		return nil
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		f.Value = int(v)
	}
	return nil
}

// flexFloat decodes from a JSON number, a numeric string (with or without a
// trailing %), or stays absent for null/placeholder values. The extractor
// never substitutes a number for a placeholder.
type flexFloat struct {
	Value float64
	Valid bool
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	if s == "" || s == "null" || strings.EqualFold(s, "none") || s == "-" {
		return nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}

	f.Value = v
	f.Valid = true
	return nil
}
