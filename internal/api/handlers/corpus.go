package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/wonny/newslens/internal/contracts"
	"github.com/wonny/newslens/internal/corpus"
	"github.com/wonny/newslens/pkg/logger"
)

// CorpusHandler handles corpus status endpoints
// ⭐ SSOT: 코퍼스 API 핸들러는 이 구조체에서만
type CorpusHandler struct {
	store  *corpus.Store
	mirror *corpus.Repository // nil when the Postgres mirror is disabled
	logger *logger.Logger
}

// NewCorpusHandler creates a new corpus handler
func NewCorpusHandler(store *corpus.Store, mirror *corpus.Repository, log *logger.Logger) *CorpusHandler {
	return &CorpusHandler{
		store:  store,
		mirror: mirror,
		logger: log,
	}
}

// StatusResponse summarizes the local artifacts and optional mirror
type StatusResponse struct {
	CorpusExists   bool           `json:"corpus_exists"`
	CorpusRows     int            `json:"corpus_rows"`
	EnrichedRows   int            `json:"enriched_rows"`
	MinEndDate     string         `json:"min_end_date,omitempty"`
	MaxEndDate     string         `json:"max_end_date,omitempty"`
	MetricCoverage float64        `json:"metric_coverage"`
	Mirror         *corpus.Status `json:"mirror,omitempty"`
}

// GetStatus returns corpus artifact status
// GET /api/corpus/status
func (h *CorpusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	resp := StatusResponse{
		CorpusExists: h.store.CorpusExists(),
	}

	if resp.CorpusExists {
		records, err := h.store.ReadCorpus()
		if err != nil {
			h.logger.WithError(err).Error("Failed to read corpus")
			respondError(w, http.StatusInternalServerError, "Failed to read corpus")
			return
		}
		resp.CorpusRows = len(records)
	}

	enriched, err := h.store.ReadEnriched()
	if err == nil {
		resp.EnrichedRows = len(enriched)

		var minDate, maxDate time.Time
		withMetrics := 0
		for i := range enriched {
			rec := &enriched[i]
			if minDate.IsZero() || rec.EndDate.Before(minDate) {
				minDate = rec.EndDate
			}
			if rec.EndDate.After(maxDate) {
				maxDate = rec.EndDate
			}
			if rec.WeeklyReturn != nil {
				withMetrics++
			}
		}
		if !minDate.IsZero() {
			resp.MinEndDate = minDate.Format(contracts.DateLayout)
			resp.MaxEndDate = maxDate.Format(contracts.DateLayout)
		}
		if resp.EnrichedRows > 0 {
			resp.MetricCoverage = float64(withMetrics) / float64(resp.EnrichedRows)
		}
	}

	if h.mirror != nil {
		status, err := h.mirror.GetStatus(ctx)
		if err != nil {
			h.logger.WithError(err).Warn("Failed to query mirror status")
		} else {
			resp.Mirror = status
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
