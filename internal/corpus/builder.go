package corpus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wonny/newslens/internal/contracts"
	"github.com/wonny/newslens/pkg/config"
	"github.com/wonny/newslens/pkg/logger"
)

// Mode selects which feed entries a build run processes
type Mode string

const (
	// ModeAll processes every entry with extractable content
	ModeAll Mode = "all"
	// ModeLast processes only the entry with the maximal embedded end-date
	ModeLast Mode = "last"
	// ModeNew processes every entry, then keeps only rows newer than the
	// prior corpus; callers append the result instead of replacing.
	ModeNew Mode = "new"
)

// ParseMode validates a mode string
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAll, ModeLast, ModeNew:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown mode %q (valid: all, last, new)", s)
	}
}

// BuildResult is the outcome of one corpus build
type BuildResult struct {
	Records   []contracts.ContentRecord
	Processed int // entries sent to the extractor
	Skipped   int // entries without extractable content
	Failed    int // entries whose extraction failed
}

// Builder drives iteration over feed entries and accumulates the corpus
// ⭐ SSOT: 코퍼스 구축 오케스트레이션은 여기서만
type Builder struct {
	source    contracts.FeedSource
	extractor contracts.Extractor
	logger    *logger.Logger
	workers   int
}

// NewBuilder creates a new corpus builder
func NewBuilder(source contracts.FeedSource, extractor contracts.Extractor, cfg *config.Config, log *logger.Logger) *Builder {
	return &Builder{
		source:    source,
		extractor: extractor,
		logger:    log.WithField("module", "corpus"),
		workers:   cfg.Pipeline.ExtractWorkers,
	}
}

// Build fetches the feed and extracts records per the requested mode.
// prior is the already-persisted corpus; it is only consulted in ModeNew.
//
// Row order carries no meaning, so extraction runs on a bounded worker pool
// and one entry's failure never blocks its siblings.
func (b *Builder) Build(ctx context.Context, mode Mode, prior []contracts.ContentRecord) (*BuildResult, error) {
	entries, err := b.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	result := &BuildResult{}

	// Entries arrive sorted by descending embedded end-date; content-less
	// entries are counted and dropped before mode filtering.
	processable := make([]contracts.FeedEntry, 0, len(entries))
	for _, entry := range entries {
		if !entry.HasContent() {
			result.Skipped++
			continue
		}
		processable = append(processable, entry)
	}

	if mode == ModeLast {
		// 내림차순 정렬이므로 첫 번째 엔트리가 최대 end-date
		if len(processable) > 1 {
			processable = processable[:1]
		}
	}

	b.logger.WithFields(map[string]interface{}{
		"mode":    string(mode),
		"entries": len(processable),
		"skipped": result.Skipped,
		"workers": b.workers,
	}).Info("Starting extraction")

	records, failed := b.extractAll(ctx, processable)
	result.Processed = len(processable)
	result.Failed = failed
	result.Records = records

	if mode == ModeNew {
		result.Records = filterNewRecords(result.Records, prior, b.logger)
	}

	b.logger.WithFields(map[string]interface{}{
		"records": len(result.Records),
		"failed":  result.Failed,
	}).Info("Corpus build complete")

	return result, nil
}

// extractAll runs extraction on a bounded worker pool. Accumulation is a
// mutex-guarded append; each call's retry budget is independent.
func (b *Builder) extractAll(ctx context.Context, entries []contracts.FeedEntry) ([]contracts.ContentRecord, int) {
	var (
		mu      sync.Mutex
		records []contracts.ContentRecord
		failed  int
	)

	entryCh := make(chan contracts.FeedEntry, len(entries))
	var wg sync.WaitGroup

	workers := b.workers
	if workers > len(entries) && len(entries) > 0 {
		workers = len(entries)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range entryCh {
				extracted, err := b.extractor.Extract(ctx, entry)
				mu.Lock()
				if err != nil {
					failed++
					b.logger.WithError(err).WithField("link", entry.Link).Warn("Entry extraction failed")
				} else {
					records = append(records, extracted...)
				}
				mu.Unlock()
			}
		}()
	}

	for _, entry := range entries {
		entryCh <- entry
	}
	close(entryCh)
	wg.Wait()

	return records, failed
}

// filterNewRecords keeps rows whose end_date exceeds the prior corpus
// maximum. Reprocessed links are flagged, not deduplicated. The artifact
// stays faithful to what the feed yielded.
func filterNewRecords(records []contracts.ContentRecord, prior []contracts.ContentRecord, log *logger.Logger) []contracts.ContentRecord {
	var maxPrior time.Time
	priorLinks := make(map[string]struct{}, len(prior))
	for _, r := range prior {
		if r.EndDate.After(maxPrior) {
			maxPrior = r.EndDate
		}
		priorLinks[r.Link] = struct{}{}
	}

	if maxPrior.IsZero() {
		return records
	}

	kept := records[:0]
	for _, r := range records {
		if !r.EndDate.After(maxPrior) {
			continue
		}
		if _, seen := priorLinks[r.Link]; seen {
			log.WithField("link", r.Link).Warn("Link already present in prior corpus, keeping duplicate rows")
		}
		kept = append(kept, r)
	}
	return kept
}
