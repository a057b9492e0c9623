package rowstore

import (
	"context"
	"slices"

	"github.com/MrJamesThe3rd/fundflow/internal/schema"
)

// AppendIdempotent appends cells, retrying transient failures. Before every retry it looks for
// the row token of cells in the store, so a write that landed despite a failed response is not
// repeated.
func AppendIdempotent(ctx context.Context, s Store, p RetryPolicy, cells []string) error {
	token := ""
	if len(cells) >= int(schema.ColRowToken) {
		token = cells[schema.ColRowToken-1]
	}

	attempt := 0

	return Retry(ctx, p, "append", func(ctx context.Context) error {
		attempt++

		if attempt > 1 && token != "" {
			rows, err := s.ReadAll(ctx)
			if err != nil {
				return err
			}

			if PositionOf(rows, token) > 0 {
				return nil
			}
		}

		return s.Append(ctx, cells)
	})
}

// PositionOf returns the position of the row carrying token, or 0.
func PositionOf(rows []RawRow, token string) int {
	i := slices.IndexFunc(rows, func(r RawRow) bool {
		return len(r.Cells) >= int(schema.ColRowToken) && r.Cells[schema.ColRowToken-1] == token
	})
	if i < 0 {
		return 0
	}

	return rows[i].Position
}
