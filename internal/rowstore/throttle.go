package rowstore

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/MrJamesThe3rd/fundflow/internal/schema"
)

// Throttled bounds every call to the wrapped store with a timeout and, when a limiter is set,
// waits for a token first. Hosted spreadsheets enforce per-minute request quotas.
type Throttled struct {
	next    Store
	limiter *rate.Limiter
	timeout time.Duration
}

// NewThrottled wraps next. A non-positive perSecond disables rate limiting; a non-positive
// timeout disables the per-call deadline.
func NewThrottled(next Store, perSecond float64, burst int, timeout time.Duration) *Throttled {
	t := &Throttled{next: next, timeout: timeout}

	if perSecond > 0 {
		if burst < 1 {
			burst = 1
		}

		t.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}

	return t
}

func (t *Throttled) ReadAll(ctx context.Context) ([]RawRow, error) {
	ctx, cancel, err := t.begin(ctx, "read all")
	if err != nil {
		return nil, err
	}
	defer cancel()

	return t.next.ReadAll(ctx)
}

func (t *Throttled) Append(ctx context.Context, cells []string) error {
	ctx, cancel, err := t.begin(ctx, "append")
	if err != nil {
		return err
	}
	defer cancel()

	return t.next.Append(ctx, cells)
}

func (t *Throttled) UpdateCells(ctx context.Context, position int, cells map[schema.Column]string) error {
	ctx, cancel, err := t.begin(ctx, "update cells")
	if err != nil {
		return err
	}
	defer cancel()

	return t.next.UpdateCells(ctx, position, cells)
}

func (t *Throttled) begin(ctx context.Context, op string) (context.Context, context.CancelFunc, error) {
	cancel := context.CancelFunc(func() {})
	if t.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
	}

	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			cancel()
			return nil, nil, Unavailable(op, err)
		}
	}

	return ctx, cancel, nil
}
