package qa

import (
	"context"
	"strings"
	"testing"

	"github.com/wonny/newslens/internal/contracts"
	"github.com/wonny/newslens/pkg/config"
	"github.com/wonny/newslens/pkg/logger"
	"github.com/wonny/newslens/pkg/redis"
)

// fakeModel embeds texts by keyword match so ranking is deterministic
type fakeModel struct {
	keyword    string
	lastPrompt string
}

func (f *fakeModel) Complete(ctx context.Context, model, prompt string) (string, error) {
	f.lastPrompt = prompt
	return "the answer", nil
}

func (f *fakeModel) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		if strings.Contains(strings.ToLower(text), f.keyword) {
			vectors[i] = []float64{1, 0}
		} else {
			vectors[i] = []float64{0, 1}
		}
	}
	return vectors, nil
}

func (f *fakeModel) EmbeddingModel() string { return "fake-embedding" }

func testEngine(model *fakeModel) *Engine {
	client, _ := redis.New(&config.Config{}) // disabled, no-op cache
	cache := redis.NewCache(client, "test")
	cfg := &config.Config{OpenAI: config.OpenAIConfig{AnswerModel: "gpt-4o"}}
	return NewEngine(model, cache, cfg, logger.Nop())
}

func TestAskRetrievesRelevantChunks(t *testing.T) {
	model := &fakeModel{keyword: "nvda"}
	engine := testEngine(model)

	records := []contracts.EnrichedRecord{
		{ContentRecord: contracts.ContentRecord{
			Kind: contracts.KindIndividual, Ticker: "NVDA",
			StartDate: day("2024-03-01"), EndDate: day("2024-03-15"),
			Text: "NVDA rallied on earnings",
		}},
		{ContentRecord: contracts.ContentRecord{
			Kind: contracts.KindIndividual, Ticker: "AAPL",
			StartDate: day("2024-03-01"), EndDate: day("2024-03-15"),
			Text: "AAPL drifted sideways",
		}},
	}

	answer, err := engine.Ask(context.Background(), records, "what happened to NVDA")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	if answer.Text != "the answer" {
		t.Errorf("Text = %q, want the completion output", answer.Text)
	}
	if len(answer.Sources) == 0 {
		t.Fatal("expected at least one source")
	}
	if answer.Sources[0].Record.Ticker != "NVDA" {
		t.Errorf("top source ticker = %q, want NVDA", answer.Sources[0].Record.Ticker)
	}

	// Retrieved context flows into the prompt
	if !strings.Contains(model.lastPrompt, "NVDA rallied on earnings") {
		t.Error("answer prompt should contain the retrieved chunk")
	}
	if !strings.Contains(model.lastPrompt, "what happened to NVDA") {
		t.Error("answer prompt should contain the question")
	}
}

func TestAskEmptyCorpus(t *testing.T) {
	engine := testEngine(&fakeModel{})
	if _, err := engine.Ask(context.Background(), nil, "anything"); err == nil {
		t.Error("Ask() over an empty corpus should fail")
	}
}

func TestFillHeader(t *testing.T) {
	answer := &Answer{
		Sources: []Source{
			{Record: contracts.EnrichedRecord{ContentRecord: contracts.ContentRecord{
				Kind: contracts.KindIndividual, Ticker: "NVDA",
				StartDate: day("2024-02-02"), EndDate: day("2024-02-09"),
			}}},
			{Record: contracts.EnrichedRecord{ContentRecord: contracts.ContentRecord{
				Kind: contracts.KindIndividual, Ticker: "NVDA",
				StartDate: day("2024-03-08"), EndDate: day("2024-03-15"),
			}}},
			{Record: contracts.EnrichedRecord{ContentRecord: contracts.ContentRecord{
				Kind: contracts.KindIndividual, Ticker: "AAPL",
				StartDate: day("2024-03-01"), EndDate: day("2024-03-08"),
			}}},
			{Record: contracts.EnrichedRecord{ContentRecord: contracts.ContentRecord{
				Kind: contracts.KindMarketWeekly, Ticker: contracts.TickerMultiple,
				EndDate: day("2024-03-15"),
			}}},
		},
	}

	fillHeader(answer)

	if !answer.MinDate.Equal(day("2024-02-02")) {
		t.Errorf("MinDate = %v, want 2024-02-02", answer.MinDate)
	}
	if !answer.MaxDate.Equal(day("2024-03-15")) {
		t.Errorf("MaxDate = %v, want 2024-03-15", answer.MaxDate)
	}
	if answer.Weeks != 6 {
		t.Errorf("Weeks = %d, want 6 (42 days rounded)", answer.Weeks)
	}
	if answer.Ticker != "NVDA" {
		t.Errorf("Ticker = %q, want the most common individual ticker", answer.Ticker)
	}
}

func TestFillHeaderNoIndividualSources(t *testing.T) {
	answer := &Answer{
		Sources: []Source{
			{Record: contracts.EnrichedRecord{ContentRecord: contracts.ContentRecord{
				Kind: contracts.KindMarketDaily, Ticker: contracts.TickerMultiple,
				EndDate: day("2024-03-15"),
			}}},
		},
	}

	fillHeader(answer)

	if answer.Ticker != "" {
		t.Errorf("Ticker = %q, want empty when no individual sources", answer.Ticker)
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{name: "identical", a: []float64{1, 2, 3}, b: []float64{1, 2, 3}, want: 1},
		{name: "orthogonal", a: []float64{1, 0}, b: []float64{0, 1}, want: 0},
		{name: "opposite", a: []float64{1, 0}, b: []float64{-1, 0}, want: -1},
		{name: "length mismatch", a: []float64{1}, b: []float64{1, 2}, want: 0},
		{name: "zero vector", a: []float64{0, 0}, b: []float64{1, 1}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("cosineSimilarity() = %v, want %v", got, tt.want)
			}
		})
	}
}
