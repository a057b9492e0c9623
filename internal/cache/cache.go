package cache

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MrJamesThe3rd/fundflow/internal/record"
)

// Class selects the staleness bound a reader accepts.
type Class int

const (
	// List is for record listings and queues.
	List Class = iota
	// Aggregate is for dashboard totals, which tolerate older data.
	Aggregate
)

const (
	DefaultListTTL      = 60 * time.Second
	DefaultAggregateTTL = 300 * time.Second
)

// Snapshot is an immutable read of all records at one instant.
type Snapshot struct {
	Records []record.Record
	AsOf    time.Time
}

// Entry is what a backend keeps: the snapshot and the generation it was loaded under.
type Entry struct {
	Generation uint64          `json:"generation"`
	AsOf       time.Time       `json:"as_of"`
	Records    []record.Record `json:"records"`
}

// Backend stores the cached entry and the invalidation generation. Bump must increment the
// generation and drop the entry; entries loaded under an older generation are never served.
type Backend interface {
	Get(ctx context.Context) (*Entry, error)
	Set(ctx context.Context, e Entry, ttl time.Duration) error
	Generation(ctx context.Context) (uint64, error)
	Bump(ctx context.Context) error
}

// Loader reads every record from the store.
type Loader func(ctx context.Context) ([]record.Record, error)

// Cache serves snapshots lazily refreshed from a Loader. Concurrent refreshes of the same
// generation share one load.
type Cache struct {
	load    Loader
	backend Backend
	ttl     [2]time.Duration
	now     func() time.Time
	log     *slog.Logger
	group   singleflight.Group
}

type Option func(*Cache)

func WithBackend(b Backend) Option {
	return func(c *Cache) { c.backend = b }
}

func WithTTL(class Class, ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl[class] = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.log = l }
}

func New(load Loader, opts ...Option) *Cache {
	c := &Cache{
		load:    load,
		backend: NewMemory(),
		ttl:     [2]time.Duration{DefaultListTTL, DefaultAggregateTTL},
		now:     time.Now,
		log:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Snapshot returns the cached snapshot when it is younger than the TTL of class and no
// invalidation happened since it was loaded; otherwise it reloads.
func (c *Cache) Snapshot(ctx context.Context, class Class) (Snapshot, error) {
	gen, err := c.backend.Generation(ctx)
	if err != nil {
		c.log.Warn("cache backend unavailable, reading through", "error", err)
		return c.readThrough(ctx)
	}

	entry, err := c.backend.Get(ctx)
	if err != nil {
		c.log.Warn("cache backend unavailable, reading through", "error", err)
		return c.readThrough(ctx)
	}

	if entry != nil && entry.Generation == gen && c.now().Sub(entry.AsOf) < c.ttl[class] {
		return Snapshot{Records: slices.Clone(entry.Records), AsOf: entry.AsOf}, nil
	}

	v, err, _ := c.group.Do(strconv.FormatUint(gen, 10), func() (any, error) {
		snap, err := c.readThrough(ctx)
		if err != nil {
			return nil, err
		}

		e := Entry{Generation: gen, AsOf: snap.AsOf, Records: snap.Records}
		if err := c.backend.Set(ctx, e, c.maxTTL()); err != nil {
			c.log.Warn("failed to store snapshot in cache", "error", err)
		}

		return snap, nil
	})
	if err != nil {
		return Snapshot{}, err
	}

	snap := v.(Snapshot)

	return Snapshot{Records: slices.Clone(snap.Records), AsOf: snap.AsOf}, nil
}

// Invalidate forces the next Snapshot of every class to reload.
func (c *Cache) Invalidate(ctx context.Context) error {
	return c.backend.Bump(ctx)
}

// Fresh invalidates and returns a snapshot loaded after the invalidation. When the backend
// cannot be invalidated the store is read directly.
func (c *Cache) Fresh(ctx context.Context) (Snapshot, error) {
	if err := c.Invalidate(ctx); err != nil {
		c.log.Warn("failed to invalidate cache, reading through", "error", err)
		return c.readThrough(ctx)
	}

	return c.Snapshot(ctx, List)
}

func (c *Cache) readThrough(ctx context.Context) (Snapshot, error) {
	asOf := c.now()

	records, err := c.load(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{Records: records, AsOf: asOf}, nil
}

func (c *Cache) maxTTL() time.Duration {
	return max(c.ttl[List], c.ttl[Aggregate])
}

// Memory is an in-process Backend.
type Memory struct {
	mu    sync.Mutex
	gen   uint64
	entry *Entry
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Get(context.Context) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.entry == nil {
		return nil, nil
	}

	e := *m.entry

	return &e, nil
}

func (m *Memory) Set(_ context.Context, e Entry, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// A load that finished after an invalidation must not replace a newer entry.
	if e.Generation != m.gen {
		return nil
	}

	m.entry = &e

	return nil
}

func (m *Memory) Generation(context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.gen, nil
}

func (m *Memory) Bump(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gen++
	m.entry = nil

	return nil
}
