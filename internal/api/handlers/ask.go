package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/wonny/newslens/internal/contracts"
	"github.com/wonny/newslens/internal/corpus"
	"github.com/wonny/newslens/internal/qa"
	"github.com/wonny/newslens/pkg/logger"
)

// AskHandler handles question answering over the enriched corpus
// ⭐ SSOT: QA API 핸들러는 이 구조체에서만
type AskHandler struct {
	store  *corpus.Store
	engine *qa.Engine
	logger *logger.Logger
}

// NewAskHandler creates a new ask handler
func NewAskHandler(store *corpus.Store, engine *qa.Engine, log *logger.Logger) *AskHandler {
	return &AskHandler{
		store:  store,
		engine: engine,
		logger: log,
	}
}

// AskRequest represents a question request
type AskRequest struct {
	Question string `json:"question"`
}

// AskSource is one retrieved chunk in the response
type AskSource struct {
	Ticker     string  `json:"ticker"`
	EndDate    string  `json:"end_date"`
	Similarity float64 `json:"similarity"`
	Excerpt    string  `json:"excerpt"`
}

// AskResponse represents a question answer
type AskResponse struct {
	Answer  string      `json:"answer"`
	Ticker  string      `json:"ticker,omitempty"`
	MinDate string      `json:"min_date,omitempty"`
	MaxDate string      `json:"max_date,omitempty"`
	Weeks   int         `json:"weeks"`
	Sources []AskSource `json:"sources"`
}

// Ask answers a question against the enriched corpus
// POST /api/ask
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		respondError(w, http.StatusBadRequest, "Question is required")
		return
	}

	records, err := h.store.ReadEnriched()
	if err != nil {
		h.logger.WithError(err).Error("Failed to read enriched corpus")
		respondError(w, http.StatusInternalServerError, "Enriched corpus is not available")
		return
	}
	if len(records) == 0 {
		respondError(w, http.StatusConflict, "Enriched corpus is empty, run the pipeline first")
		return
	}

	answer, err := h.engine.Ask(ctx, records, req.Question)
	if err != nil {
		h.logger.WithError(err).Error("Failed to answer question")
		respondError(w, http.StatusBadGateway, "Failed to answer question")
		return
	}

	resp := AskResponse{
		Answer: answer.Text,
		Ticker: answer.Ticker,
		Weeks:  answer.Weeks,
	}
	if !answer.MinDate.IsZero() {
		resp.MinDate = answer.MinDate.Format(contracts.DateLayout)
		resp.MaxDate = answer.MaxDate.Format(contracts.DateLayout)
	}
	for _, src := range answer.Sources {
		resp.Sources = append(resp.Sources, AskSource{
			Ticker:     src.Record.Ticker,
			EndDate:    src.Record.EndDate.Format(contracts.DateLayout),
			Similarity: src.Similarity,
			Excerpt:    excerpt(src.Chunk, 200),
		})
	}

	respondJSON(w, http.StatusOK, resp)
}

// excerpt truncates a chunk for the response payload.
func excerpt(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
