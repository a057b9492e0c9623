// Package app wires the configured row store, cache and engine for the binaries.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/MrJamesThe3rd/fundflow/internal/cache"
	"github.com/MrJamesThe3rd/fundflow/internal/config"
	"github.com/MrJamesThe3rd/fundflow/internal/database"
	"github.com/MrJamesThe3rd/fundflow/internal/rowstore"
	"github.com/MrJamesThe3rd/fundflow/internal/rowstore/memory"
	"github.com/MrJamesThe3rd/fundflow/internal/rowstore/postgres"
	"github.com/MrJamesThe3rd/fundflow/internal/rowstore/sheets"
	"github.com/MrJamesThe3rd/fundflow/internal/rowstore/xlsx"
	"github.com/MrJamesThe3rd/fundflow/internal/workflow"
)

// OpenStore connects the backend named by STORE_BACKEND and wraps it with the configured
// timeout and rate limit. The returned func releases the backend.
func OpenStore(ctx context.Context, cfg *config.Config) (rowstore.Store, func(), error) {
	var (
		store   rowstore.Store
		closeFn = func() {}
	)

	switch cfg.Store.Backend {
	case config.BackendMemory:
		store = memory.New()
	case config.BackendPostgres:
		db, err := database.New(ctx, cfg.ConnectionString(), cfg.DB.MaxConns)
		if err != nil {
			return nil, nil, err
		}

		pg := postgres.New(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}

		store = pg
		closeFn = func() { db.Close() }
	case config.BackendXLSX:
		s, err := xlsx.Open(cfg.XLSX.Path, cfg.XLSX.Sheet)
		if err != nil {
			return nil, nil, err
		}

		store = s
	case config.BackendSheets:
		s, err := sheets.New(ctx, cfg.Sheets.SpreadsheetID, cfg.Sheets.Sheet, cfg.Sheets.CredentialsFile)
		if err != nil {
			return nil, nil, err
		}

		if err := s.EnsureHeader(ctx); err != nil {
			return nil, nil, fmt.Errorf("preparing sheet: %w", err)
		}

		store = s
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	slog.Info("row store opened", "backend", cfg.Store.Backend)

	return rowstore.NewThrottled(store, cfg.Store.RateLimit, cfg.Store.RateBurst, cfg.Store.Timeout), closeFn, nil
}

// NewEngine builds the engine over store. When REDIS_ADDR is set the read cache is shared
// through Redis so every process sees the same invalidations.
func NewEngine(ctx context.Context, cfg *config.Config, store rowstore.Store) (*workflow.Engine, func(), error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}

	retry := rowstore.DefaultRetryPolicy
	retry.Attempts = cfg.Store.RetryAttempts

	opts := []workflow.Option{
		workflow.WithLocation(loc),
		workflow.WithRetryPolicy(retry),
		workflow.WithClaimSettle(cfg.Claim.Settle),
		workflow.WithClaimTTL(cfg.Claim.TTL),
		workflow.WithSequencerAttempts(cfg.Store.SequencerAttempts),
		workflow.WithCacheTTL(cache.List, cfg.Cache.ListTTL),
		workflow.WithCacheTTL(cache.Aggregate, cfg.Cache.AggregateTTL),
	}

	closeFn := func() {}

	if cfg.Cache.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("connecting to redis: %w", err)
		}

		opts = append(opts, workflow.WithCacheBackend(cache.NewRedis(rdb, cfg.Cache.RedisPrefix)))
		closeFn = func() { rdb.Close() }
	}

	return workflow.New(store, opts...), closeFn, nil
}
