package bootstrap

import (
	"context"
	"errors"
	"net/http"

	"github.com/fvsutils/closings/internal/application"
	"github.com/fvsutils/closings/internal/config"
	"github.com/fvsutils/closings/internal/infrastructure/brapi"
	"github.com/fvsutils/closings/internal/infrastructure/logx"
	"github.com/fvsutils/closings/internal/infrastructure/pg"
	"github.com/fvsutils/closings/internal/infrastructure/ratelimit"
	redisstore "github.com/fvsutils/closings/internal/infrastructure/redis"
	"github.com/redis/go-redis/v9"
)

var ErrMissingDBURL = errors.New("DATABASE_URL is required")

// Cache mirrors httpserver.Cache; declared here so bootstrap does not
// depend on the HTTP package.
type Cache interface {
	Get(ctx context.Context, key string, out any) (bool, error)
	Set(ctx context.Context, key string, v any) error
}

// BuildDB connects, runs migrations, and returns the pool with its cleanup.
func BuildDB(ctx context.Context, cfg config.Config) (*pg.DB, func(), error) {
	log := logx.L()
	if cfg.DatabaseURL == "" {
		return nil, func() {}, ErrMissingDBURL
	}
	db, err := pg.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, func() {}, err
	}
	if err := pg.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, func() {}, err
	}
	cleanup := func() {
		log.Info("closing pg")
		db.Close()
	}
	return db, cleanup, nil
}

// BuildCache returns the latest-closings cache; CACHE_BACKEND=none selects
// the noop implementation.
func BuildCache(cfg config.Config) (Cache, func(), error) {
	if cfg.CacheBackend != "redis" {
		return redisstore.NoopCache{}, func() {}, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	cleanup := func() { _ = rdb.Close() }
	return redisstore.New(rdb, cfg.CacheTTL), cleanup, nil
}

// BuildQuoteFetcher assembles the brapi client with its rate limiter.
func BuildQuoteFetcher(cfg config.Config) application.QuoteFetcher {
	return &brapi.Client{
		BaseURL:        cfg.BrapiBaseURL,
		Token:          cfg.BrapiToken,
		HTTP:           &http.Client{Timeout: cfg.RequestTimeout},
		Limiter:        &ratelimit.MinInterval{Interval: cfg.MinRequestSpacing},
		Attempts:       cfg.RetryAttempts,
		RetryDelay:     cfg.RetryDelay,
		RateLimitDelay: cfg.RateLimitDelay,
		Log:            logx.L(),
	}
}

// BuildCollector wires the collection service against the store.
func BuildCollector(cfg config.Config, db *pg.DB) *application.CollectionService {
	repo := pg.NewClosingRepo(db, logx.L())
	return application.NewCollectionService(
		BuildQuoteFetcher(cfg),
		repo,
		application.Pacing{
			BatchSize:      cfg.BatchSize,
			InterCodeDelay: cfg.RateLimitDelay,
			BatchPause:     cfg.BatchPause,
		},
		application.WithLogger(logx.L()),
	)
}
