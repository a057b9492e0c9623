package rowstore

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy bounds retries of transient store failures.
type RetryPolicy struct {
	Attempts        int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy makes three attempts with exponential backoff starting at 200ms.
var DefaultRetryPolicy = RetryPolicy{
	Attempts:        3,
	InitialInterval: 200 * time.Millisecond,
	MaxInterval:     2 * time.Second,
}

// Retry runs op until it succeeds, fails with a non-transient error or the policy is exhausted.
// An exhausted transient failure is returned wrapping ErrUnavailable.
func Retry(ctx context.Context, p RetryPolicy, name string, op func(ctx context.Context) error) error {
	attempts := max(p.Attempts, 1)

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = p.InitialInterval
	expBackoff.MaxInterval = p.MaxInterval
	expBackoff.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(expBackoff, uint64(attempts-1)), ctx)

	attempt := 0

	err := backoff.Retry(func() error {
		attempt++

		err := op(ctx)
		if err == nil {
			return nil
		}

		if !IsTransient(err) {
			return backoff.Permanent(err)
		}

		slog.Debug("row store call failed", "op", name, "attempt", attempt, "error", err)

		return err
	}, policy)
	if err == nil {
		return nil
	}

	if IsTransient(err) && !errors.Is(err, ErrUnavailable) {
		return Unavailable(name, err)
	}

	return err
}
