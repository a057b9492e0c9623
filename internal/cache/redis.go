package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis shares the cached snapshot and the invalidation generation between processes, so an
// Invalidate in one API instance is honoured by all of them.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

func NewRedis(rdb *redis.Client, prefix string) *Redis {
	return &Redis{rdb: rdb, prefix: prefix}
}

func (r *Redis) entryKey() string { return r.prefix + ":snapshot" }

func (r *Redis) genKey() string { return r.prefix + ":generation" }

func (r *Redis) Get(ctx context.Context) (*Entry, error) {
	val, err := r.rdb.Get(ctx, r.entryKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("getting snapshot: %w", err)
	}

	var e Entry
	if err := json.Unmarshal(val, &e); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}

	return &e, nil
}

func (r *Redis) Set(ctx context.Context, e Entry, ttl time.Duration) error {
	val, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	if err := r.rdb.Set(ctx, r.entryKey(), val, ttl).Err(); err != nil {
		return fmt.Errorf("setting snapshot: %w", err)
	}

	return nil
}

func (r *Redis) Generation(ctx context.Context) (uint64, error) {
	gen, err := r.rdb.Get(ctx, r.genKey()).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("getting generation: %w", err)
	}

	return gen, nil
}

func (r *Redis) Bump(ctx context.Context) error {
	pipe := r.rdb.TxPipeline()
	pipe.Incr(ctx, r.genKey())
	pipe.Del(ctx, r.entryKey())

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("invalidating snapshot: %w", err)
	}

	return nil
}
