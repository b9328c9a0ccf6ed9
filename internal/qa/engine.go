package qa

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/wonny/newslens/internal/contracts"
	"github.com/wonny/newslens/pkg/config"
	"github.com/wonny/newslens/pkg/logger"
	"github.com/wonny/newslens/pkg/redis"
)

// topK is the number of retrieved chunks fed into the answer prompt
const topK = 7

// embedBatchSize bounds one embeddings request
const embedBatchSize = 128

// languageModel is the slice of pkg/llm the engine needs
type languageModel interface {
	Complete(ctx context.Context, model, prompt string) (string, error)
	Embed(ctx context.Context, texts []string) ([][]float64, error)
	EmbeddingModel() string
}

// Engine answers ad-hoc questions over the enriched corpus with
// retrieval-augmented generation.
// ⭐ SSOT: 질의응답은 이 엔진에서만
type Engine struct {
	llm         languageModel
	cache       *redis.Cache
	logger      *logger.Logger
	answerModel string
}

// Source is one retrieved chunk's provenance
type Source struct {
	Record     contracts.EnrichedRecord
	Chunk      string
	Similarity float64
}

// Answer is the engine's response to one question
type Answer struct {
	Text    string
	Sources []Source

	// Header metadata derived from the retrieved sources
	MinDate time.Time
	MaxDate time.Time
	Weeks   int
	Ticker  string // most common individual ticker among sources, "" when none
}

// NewEngine creates a new QA engine
func NewEngine(llm languageModel, cache *redis.Cache, cfg *config.Config, log *logger.Logger) *Engine {
	return &Engine{
		llm:         llm,
		cache:       cache,
		logger:      log.WithField("module", "qa"),
		answerModel: cfg.OpenAI.AnswerModel,
	}
}

// Ask retrieves the most relevant corpus chunks for the question and asks
// the answer model over them.
func (e *Engine) Ask(ctx context.Context, records []contracts.EnrichedRecord, question string) (*Answer, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("enriched corpus is empty")
	}

	docs := buildDocuments(records)

	type chunkRef struct {
		docIndex int
		text     string
	}
	var chunks []chunkRef
	for i := range docs {
		for _, text := range SplitText(docs[i].Content, chunkSize, chunkOverlap) {
			chunks = append(chunks, chunkRef{docIndex: i, text: text})
		}
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.text
	}

	vectors, err := e.embedAll(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed corpus: %w", err)
	}

	queryVectors, err := e.llm.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	queryVector := queryVectors[0]

	// Rank chunks by cosine similarity
	type scored struct {
		index      int
		similarity float64
	}
	ranked := make([]scored, 0, len(chunks))
	for i, vec := range vectors {
		ranked = append(ranked, scored{index: i, similarity: cosineSimilarity(queryVector, vec)})
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].similarity > ranked[j].similarity })

	limit := topK
	if limit > len(ranked) {
		limit = len(ranked)
	}

	sources := make([]Source, 0, limit)
	contextParts := make([]string, 0, limit)
	for _, item := range ranked[:limit] {
		chunk := chunks[item.index]
		sources = append(sources, Source{
			Record:     docs[chunk.docIndex].Record,
			Chunk:      chunk.text,
			Similarity: item.similarity,
		})
		contextParts = append(contextParts, chunk.text)
	}

	prompt := buildAnswerPrompt(question, strings.Join(contextParts, "\n\n---\n\n"))
	text, err := e.llm.Complete(ctx, e.answerModel, prompt)
	if err != nil {
		return nil, fmt.Errorf("answer completion: %w", err)
	}

	answer := &Answer{Text: text, Sources: sources}
	fillHeader(answer)

	e.logger.WithFields(map[string]interface{}{
		"chunks":  len(chunks),
		"sources": len(sources),
	}).Info("Answered question")

	return answer, nil
}

// embedAll embeds chunk texts in bounded batches, reusing cached vectors
// keyed by content hash.
func (e *Engine) embedAll(ctx context.Context, texts []string) ([][]float64, error) {
	model := e.llm.EmbeddingModel()
	vectors := make([][]float64, len(texts))

	var pendingIdx []int
	var pendingTexts []string
	for i, text := range texts {
		var cached []float64
		if found, _ := e.cache.Get(ctx, redis.EmbeddingKey(model, text), &cached); found {
			vectors[i] = cached
			continue
		}
		pendingIdx = append(pendingIdx, i)
		pendingTexts = append(pendingTexts, text)
	}

	for start := 0; start < len(pendingTexts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(pendingTexts) {
			end = len(pendingTexts)
		}

		batch, err := e.llm.Embed(ctx, pendingTexts[start:end])
		if err != nil {
			return nil, err
		}

		for j, vec := range batch {
			idx := pendingIdx[start+j]
			vectors[idx] = vec
			_ = e.cache.Set(ctx, redis.EmbeddingKey(model, texts[idx]), vec, redis.TTLEmbedding)
		}
	}

	return vectors, nil
}

// fillHeader derives the date-range and ticker summary from the sources
func fillHeader(answer *Answer) {
	tickerCounts := make(map[string]int)

	for _, src := range answer.Sources {
		r := src.Record

		if !r.StartDate.IsZero() && (answer.MinDate.IsZero() || r.StartDate.Before(answer.MinDate)) {
			answer.MinDate = r.StartDate
		}
		if r.EndDate.After(answer.MaxDate) {
			answer.MaxDate = r.EndDate
		}

		if r.IsIndividual() {
			tickerCounts[r.Ticker]++
		}
	}

	if !answer.MinDate.IsZero() && !answer.MaxDate.IsZero() {
		days := answer.MaxDate.Sub(answer.MinDate).Hours() / 24
		answer.Weeks = int(math.Round(days / 7))
	}

	best := 0
	for ticker, count := range tickerCounts {
		if count > best {
			best = count
			answer.Ticker = ticker
		}
	}
}

// cosineSimilarity computes the cosine of the angle between two vectors
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
