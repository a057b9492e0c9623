package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/fundflow/internal/cache"
	"github.com/MrJamesThe3rd/fundflow/internal/record"
	"github.com/MrJamesThe3rd/fundflow/internal/rowstore"
	"github.com/MrJamesThe3rd/fundflow/internal/schema"
	"github.com/MrJamesThe3rd/fundflow/internal/sequence"
)

const (
	DefaultClaimSettle = 250 * time.Millisecond
	DefaultClaimTTL    = 30 * time.Second
)

// Engine applies lifecycle transitions to records kept in a row store. It holds no lock: every
// guard runs against a fresh read and conflicting writers are detected through the claim cell.
type Engine struct {
	store    rowstore.Store
	seq      *sequence.Sequencer
	cache    *cache.Cache
	codec    schema.Codec
	retry    rowstore.RetryPolicy
	settle   time.Duration
	claimTTL time.Duration
	now      func() time.Time
	log      *slog.Logger

	seqAttempts  int
	cacheOptions []cache.Option
}

type Option func(*Engine)

func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.codec = schema.NewCodec(loc) }
}

func WithRetryPolicy(p rowstore.RetryPolicy) Option {
	return func(e *Engine) { e.retry = p }
}

func WithClaimSettle(d time.Duration) Option {
	return func(e *Engine) { e.settle = d }
}

func WithClaimTTL(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.claimTTL = d
		}
	}
}

func WithSequencerAttempts(n int) Option {
	return func(e *Engine) { e.seqAttempts = n }
}

func WithCacheBackend(b cache.Backend) Option {
	return func(e *Engine) { e.cacheOptions = append(e.cacheOptions, cache.WithBackend(b)) }
}

func WithCacheTTL(class cache.Class, ttl time.Duration) Option {
	return func(e *Engine) { e.cacheOptions = append(e.cacheOptions, cache.WithTTL(class, ttl)) }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func New(store rowstore.Store, opts ...Option) *Engine {
	e := &Engine{
		store:       store,
		codec:       schema.NewCodec(time.UTC),
		retry:       rowstore.DefaultRetryPolicy,
		settle:      DefaultClaimSettle,
		claimTTL:    DefaultClaimTTL,
		now:         time.Now,
		log:         slog.Default(),
		seqAttempts: sequence.DefaultAttempts,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.seq = sequence.New(store,
		sequence.WithAttempts(e.seqAttempts),
		sequence.WithRetryPolicy(e.retry),
		sequence.WithLogger(e.log),
	)

	cacheOptions := append([]cache.Option{cache.WithClock(e.now), cache.WithLogger(e.log)}, e.cacheOptions...)
	e.cache = cache.New(e.load, cacheOptions...)

	return e
}

// load reads and decodes every row. Rows without an id (voided by the sequencer) are skipped;
// rows that do not decode are logged and skipped. When an id appears more than once the row
// with the lowest position is kept.
func (e *Engine) load(ctx context.Context) ([]record.Record, error) {
	var rows []rowstore.RawRow

	err := rowstore.Retry(ctx, e.retry, "read all", func(ctx context.Context) error {
		var err error
		rows, err = e.store.ReadAll(ctx)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}

	records := make([]record.Record, 0, len(rows))
	seen := make(map[int]bool, len(rows))

	for _, row := range rows {
		if len(row.Cells) == 0 || strings.TrimSpace(row.Cells[schema.ColID-1]) == "" {
			continue
		}

		r, err := e.codec.Decode(row.Position, row.Cells)
		if err != nil {
			e.log.Warn("skipping undecodable row", "row", row.Position, "error", err)
			continue
		}

		n, ok := record.ParseID(r.ID)
		if !ok {
			e.log.Warn("skipping row with malformed id", "row", row.Position, "id", r.ID)
			continue
		}

		if seen[n] {
			continue
		}

		seen[n] = true
		r.ID = record.FormatID(n)
		records = append(records, r)
	}

	return records, nil
}

func (e *Engine) invalidate(ctx context.Context) {
	if err := e.cache.Invalidate(ctx); err != nil {
		e.log.Error("failed to invalidate read cache", "error", err)
	}
}

func (e *Engine) update(ctx context.Context, position int, cells map[schema.Column]string) error {
	return rowstore.Retry(ctx, e.retry, "update cells", func(ctx context.Context) error {
		return e.store.UpdateCells(ctx, position, cells)
	})
}

func find(records []record.Record, id string) (record.Record, bool) {
	n, ok := record.ParseID(id)
	if !ok {
		return record.Record{}, false
	}

	want := record.FormatID(n)

	for _, r := range records {
		if r.ID == want {
			return r, true
		}
	}

	return record.Record{}, false
}
