package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/fundflow/internal/aggregate"
	"github.com/MrJamesThe3rd/fundflow/internal/cache"
	"github.com/MrJamesThe3rd/fundflow/internal/record"
)

type ListFilter struct {
	Requester string
	Project   string
	Stage     *record.Stage
}

func (f ListFilter) match(r record.Record) bool {
	if f.Requester != "" && !strings.EqualFold(strings.TrimSpace(r.Requester), strings.TrimSpace(f.Requester)) {
		return false
	}

	if f.Project != "" && !strings.EqualFold(strings.TrimSpace(r.Project), strings.TrimSpace(f.Project)) {
		return false
	}

	if f.Stage != nil && r.Stage() != *f.Stage {
		return false
	}

	return true
}

// Snapshot returns every record, served from the list cache when it is fresh enough.
func (e *Engine) Snapshot(ctx context.Context) (cache.Snapshot, error) {
	return e.cache.Snapshot(ctx, cache.List)
}

func (e *Engine) Get(ctx context.Context, id string) (record.Record, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return record.Record{}, err
	}

	r, ok := find(snap.Records, id)
	if !ok {
		return record.Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return r, nil
}

// List returns the records matching filter in store order.
func (e *Engine) List(ctx context.Context, filter ListFilter) ([]record.Record, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]record.Record, 0, len(snap.Records))

	for _, r := range snap.Records {
		if filter.match(r) {
			out = append(out, r)
		}
	}

	return out, nil
}

// Summary is the dashboard view of one aggregate snapshot. Totals is nil when the caller may
// not see funds.
type Summary struct {
	Totals *aggregate.Totals      `json:"totals,omitempty"`
	Counts aggregate.StatusCounts `json:"counts"`
}

// Summarize totals and counts every record, or only the records of requester when it is set.
func (e *Engine) Summarize(ctx context.Context, requester string) (Summary, error) {
	snap, err := e.cache.Snapshot(ctx, cache.Aggregate)
	if err != nil {
		return Summary{}, err
	}

	records := snap.Records

	if requester != "" {
		filter := ListFilter{Requester: requester}
		records = records[:0:0]

		for _, r := range snap.Records {
			if filter.match(r) {
				records = append(records, r)
			}
		}
	}

	totals := aggregate.Summarize(records)

	return Summary{
		Totals: &totals,
		Counts: aggregate.CountStatuses(records),
	}, nil
}
