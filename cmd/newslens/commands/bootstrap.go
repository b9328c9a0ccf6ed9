package commands

import (
	"fmt"

	"github.com/wonny/newslens/internal/corpus"
	"github.com/wonny/newslens/internal/extract"
	"github.com/wonny/newslens/internal/external/yahoo"
	"github.com/wonny/newslens/internal/feed"
	"github.com/wonny/newslens/internal/market"
	"github.com/wonny/newslens/internal/merge"
	"github.com/wonny/newslens/internal/pipeline"
	"github.com/wonny/newslens/internal/qa"
	"github.com/wonny/newslens/pkg/config"
	"github.com/wonny/newslens/pkg/database"
	"github.com/wonny/newslens/pkg/httputil"
	"github.com/wonny/newslens/pkg/llm"
	"github.com/wonny/newslens/pkg/logger"
	"github.com/wonny/newslens/pkg/redis"
)

// app holds the wired components shared by the CLI commands
// ⭐ SSOT: 컴포넌트 조립은 이 파일에서만
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	redis *redis.Client
	cache *redis.Cache
	db    *database.DB // nil when the Postgres mirror is disabled

	feedClient *feed.Client
	store      *corpus.Store
	mirror     *corpus.Repository // nil when the Postgres mirror is disabled
	pipeline   *pipeline.Pipeline
	qaEngine   *qa.Engine
}

// newApp loads config and wires the full component graph.
func newApp() (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Connect to Redis (optional, no-op when disabled)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	cache := redis.NewCache(redisClient, "newslens")
	limiter := redis.NewRateLimiter(redisClient, "newslens")

	// 4. Create HTTP clients
	feedHTTP := httputil.New(log, cfg.Feed.Timeout)
	marketHTTP := httputil.New(log, cfg.Market.Timeout).
		WithRateLimiter(limiter, redis.YahooRateLimit)

	// 5. Create LLM client
	llmClient := llm.NewClient(cfg)

	// 6. Create pipeline stages
	feedClient := feed.NewClient(feedHTTP, cfg, log)
	extractor := extract.New(llmClient, cfg, log)
	builder := corpus.NewBuilder(feedClient, extractor, cfg, log)
	store := corpus.NewStore(cfg, log)
	yahooClient := yahoo.NewClient(marketHTTP, cache, cfg, log)
	engine := market.NewEngine(yahooClient, cfg, log)
	merger := merge.NewMerger(log)

	// 7. Connect to Postgres mirror (optional)
	var db *database.DB
	var mirror *corpus.Repository
	if cfg.MirrorEnabled() {
		db, err = database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		mirror = corpus.NewRepository(db.Pool)
		log.Info("Postgres mirror enabled")
	}

	// 8. Assemble pipeline and QA engine
	p := pipeline.New(builder, store, engine, merger, mirror, log)
	qaEngine := qa.NewEngine(llmClient, cache, cfg, log)

	return &app{
		cfg:        cfg,
		log:        log,
		redis:      redisClient,
		cache:      cache,
		db:         db,
		feedClient: feedClient,
		store:      store,
		mirror:     mirror,
		pipeline:   p,
		qaEngine:   qaEngine,
	}, nil
}

// Close releases held connections.
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
