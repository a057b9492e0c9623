package workflow

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fundflow/internal/record"
	"github.com/MrJamesThe3rd/fundflow/internal/schema"
)

// claim is the content of the claim cell: "<token>|<unix-ms expiry>".
type claim struct {
	token   string
	expires time.Time
}

func (c claim) String() string {
	return c.token + "|" + strconv.FormatInt(c.expires.UnixMilli(), 10)
}

func parseClaim(s string) (claim, bool) {
	token, ms, ok := strings.Cut(s, "|")
	if !ok || token == "" {
		return claim{}, false
	}

	n, err := strconv.ParseInt(ms, 10, 64)
	if err != nil {
		return claim{}, false
	}

	return claim{token: token, expires: time.UnixMilli(n)}, true
}

func liveClaim(s string, now time.Time) bool {
	c, ok := parseClaim(s)
	return ok && now.Before(c.expires)
}

// transition describes one lifecycle step. guard reports ErrInvalidTransition when the step does
// not apply to r. writes returns the cell updates in the order they must reach the store; the
// field that establishes the new state comes last so a partial failure leaves a valid record.
type transition struct {
	name   string
	guard  func(r record.Record) error
	writes func(r record.Record, now time.Time) []map[schema.Column]string
}

// apply runs t against record id:
//  1. read fresh and check the guard
//  2. give up with ErrConflict if another actor holds a live claim
//  3. write our claim, wait for the settle window and read fresh again
//  4. continue only if the claim is still ours and the guard still holds
//  5. write the dependent cells, the status cells last, then release the claim
func (e *Engine) apply(ctx context.Context, id string, t transition) (record.Record, error) {
	r, err := e.fresh(ctx, id)
	if err != nil {
		return record.Record{}, err
	}

	if err := t.guard(r); err != nil {
		return record.Record{}, err
	}

	now := e.now()
	if liveClaim(r.Claim, now) {
		return record.Record{}, fmt.Errorf("%w: %s is being updated by another actor", ErrConflict, r.ID)
	}

	own := claim{token: uuid.NewString(), expires: now.Add(e.claimTTL)}.String()

	if err := e.update(ctx, r.Row, map[schema.Column]string{schema.ColClaim: own}); err != nil {
		return record.Record{}, fmt.Errorf("claiming %s: %w", r.ID, err)
	}

	if err := e.wait(ctx); err != nil {
		return record.Record{}, err
	}

	current, err := e.fresh(ctx, id)
	if err != nil {
		return record.Record{}, err
	}

	if current.Row != r.Row || current.Claim != own {
		return record.Record{}, fmt.Errorf("%w: %s was claimed concurrently", ErrConflict, r.ID)
	}

	if err := t.guard(current); err != nil {
		e.release(ctx, current)
		return record.Record{}, fmt.Errorf("%w: %s changed concurrently: %w", ErrConflict, r.ID, err)
	}

	cells := e.codec.Encode(current)

	for _, w := range t.writes(current, e.now()) {
		if err := e.update(ctx, current.Row, w); err != nil {
			e.release(ctx, current)
			e.invalidate(ctx)

			return record.Record{}, fmt.Errorf("%s %s: %w", t.name, r.ID, err)
		}

		for col, v := range w {
			cells[col-1] = v
		}
	}

	cells[schema.ColClaim-1] = ""
	e.release(ctx, current)
	e.invalidate(ctx)

	updated, err := e.codec.Decode(current.Row, cells)
	if err != nil {
		return record.Record{}, fmt.Errorf("%s %s: %w", t.name, r.ID, err)
	}

	updated.ID = current.ID

	e.log.Info("record transitioned", "transition", t.name, "id", updated.ID, "stage", updated.Stage())

	return updated, nil
}

// release clears the claim cell. A failure is only logged: the claim expires on its own.
func (e *Engine) release(ctx context.Context, r record.Record) {
	if err := e.update(ctx, r.Row, map[schema.Column]string{schema.ColClaim: ""}); err != nil {
		e.log.Warn("failed to release claim", "id", r.ID, "error", err)
	}
}

func (e *Engine) wait(ctx context.Context) error {
	if e.settle <= 0 {
		return nil
	}

	timer := time.NewTimer(e.settle)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// fresh returns record id from a snapshot read after invalidating the cache.
func (e *Engine) fresh(ctx context.Context, id string) (record.Record, error) {
	snap, err := e.cache.Fresh(ctx)
	if err != nil {
		return record.Record{}, err
	}

	r, ok := find(snap.Records, id)
	if !ok {
		return record.Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return r, nil
}
