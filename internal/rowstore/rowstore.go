package rowstore

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/MrJamesThe3rd/fundflow/internal/schema"
)

var (
	// ErrUnavailable marks a transient failure. Callers may retry.
	ErrUnavailable = errors.New("row store unavailable")
	// ErrPermanent marks a failure that will not go away on retry (bad range, missing sheet, auth).
	ErrPermanent = errors.New("row store permanent failure")
)

// RawRow is one data row of the store. Position is 1-based over data rows; header rows kept by
// a backend are never counted.
type RawRow struct {
	Position int
	Cells    []string
}

// Store is the backing store of records: read everything, append at the end, update cells in
// place. Updates are not atomic across cells and appends give no guarantee about the resulting
// position under concurrent writers.
//
//go:generate mockgen -source=rowstore.go -destination=store_mock.go -package=rowstore
type Store interface {
	ReadAll(ctx context.Context) ([]RawRow, error)
	Append(ctx context.Context, cells []string) error
	UpdateCells(ctx context.Context, position int, cells map[schema.Column]string) error
}

// Unavailable wraps err as a transient failure.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}

// Permanent wraps err as a non-retryable failure.
func Permanent(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPermanent, err)
}

// IsTransient reports whether err is worth retrying. Errors already classified as permanent
// never are; deadlines and network errors always are.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, ErrPermanent) || errors.Is(err, schema.ErrSchemaMismatch) {
		return false
	}

	if errors.Is(err, ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr)
}

// CheckPosition returns a permanent error when position does not address a data row of a
// store holding n rows.
func CheckPosition(position, n int) error {
	if position < 1 || position > n {
		return Permanent("update cells", fmt.Errorf("row %d out of range 1..%d", position, n))
	}

	return nil
}

// CheckColumns rejects column indexes outside the schema layout.
func CheckColumns(cells map[schema.Column]string) error {
	for col := range cells {
		if !col.Valid() {
			return Permanent("update cells", fmt.Errorf("column %d outside layout", col))
		}
	}

	return nil
}
