package pipeline

import (
	"context"
	"fmt"

	"github.com/wonny/newslens/internal/contracts"
	"github.com/wonny/newslens/internal/corpus"
	"github.com/wonny/newslens/internal/market"
	"github.com/wonny/newslens/internal/merge"
	"github.com/wonny/newslens/pkg/logger"
)

// Pipeline orchestrates the batch stages: corpus build, market enrichment,
// merge, persistence.
// ⭐ SSOT: 스테이지 순서와 에러 정책은 여기서만
type Pipeline struct {
	builder *corpus.Builder
	store   *corpus.Store
	engine  *market.Engine
	merger  *merge.Merger
	mirror  *corpus.Repository // nil when the Postgres mirror is disabled
	logger  *logger.Logger
}

// New creates a new pipeline
func New(
	builder *corpus.Builder,
	store *corpus.Store,
	engine *market.Engine,
	merger *merge.Merger,
	mirror *corpus.Repository,
	log *logger.Logger,
) *Pipeline {
	return &Pipeline{
		builder: builder,
		store:   store,
		engine:  engine,
		merger:  merger,
		mirror:  mirror,
		logger:  log.WithField("module", "pipeline"),
	}
}

// Collect builds the corpus per mode and persists the flattened artifact.
// ModeNew appends to the prior corpus; other modes replace it.
func (p *Pipeline) Collect(ctx context.Context, mode corpus.Mode) (*corpus.BuildResult, error) {
	havePrior := p.store.CorpusExists()

	var prior []contracts.ContentRecord
	if mode == corpus.ModeNew && havePrior {
		loaded, err := p.store.ReadCorpus()
		if err != nil {
			return nil, fmt.Errorf("load prior corpus: %w", err)
		}
		prior = loaded
	}

	result, err := p.builder.Build(ctx, mode, prior)
	if err != nil {
		return nil, err
	}

	if mode == corpus.ModeNew && havePrior {
		err = p.store.AppendCorpus(result.Records)
	} else {
		err = p.store.WriteCorpus(result.Records)
	}
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Enrich reads the flattened corpus, computes market metrics, merges, and
// persists the enriched artifact. The store's schema gate is the one fatal
// check; per-ticker provider failures only degrade individual rows.
func (p *Pipeline) Enrich(ctx context.Context) (int, error) {
	records, err := p.store.ReadCorpus()
	if err != nil {
		return 0, fmt.Errorf("load corpus: %w", err)
	}

	metrics, err := p.engine.Compute(ctx, records)
	if err != nil {
		return 0, err
	}

	merged := p.merger.Merge(records, metrics)

	if err := p.store.WriteEnriched(merged); err != nil {
		return 0, err
	}

	if p.mirror != nil {
		if err := p.mirror.EnsureSchema(ctx); err != nil {
			return 0, err
		}
		if err := p.mirror.UpsertAll(ctx, merged); err != nil {
			return 0, err
		}
		p.logger.WithField("rows", len(merged)).Info("Mirrored enriched corpus to Postgres")
	}

	return len(merged), nil
}

// Run executes collect followed by enrich
func (p *Pipeline) Run(ctx context.Context, mode corpus.Mode) error {
	result, err := p.Collect(ctx, mode)
	if err != nil {
		return err
	}

	p.logger.WithFields(map[string]interface{}{
		"records": len(result.Records),
		"skipped": result.Skipped,
		"failed":  result.Failed,
	}).Info("Collect stage complete")

	rows, err := p.Enrich(ctx)
	if err != nil {
		return err
	}

	p.logger.WithField("rows", rows).Info("Enrich stage complete")
	return nil
}
