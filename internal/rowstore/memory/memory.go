package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/MrJamesThe3rd/fundflow/internal/rowstore"
	"github.com/MrJamesThe3rd/fundflow/internal/schema"
)

// Store keeps rows in process memory. It honours the same contract as the remote backends and
// is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	rows [][]string
}

// New returns a store seeded with rows, in order.
func New(rows ...[]string) *Store {
	s := &Store{}
	for _, r := range rows {
		s.rows = append(s.rows, slices.Clone(r))
	}

	return s
}

func (s *Store) ReadAll(ctx context.Context) ([]rowstore.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, rowstore.Unavailable("read all", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]rowstore.RawRow, len(s.rows))
	for i, r := range s.rows {
		out[i] = rowstore.RawRow{Position: i + 1, Cells: slices.Clone(r)}
	}

	return out, nil
}

func (s *Store) Append(ctx context.Context, cells []string) error {
	if err := ctx.Err(); err != nil {
		return rowstore.Unavailable("append", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows = append(s.rows, slices.Clone(cells))

	return nil
}

func (s *Store) UpdateCells(ctx context.Context, position int, cells map[schema.Column]string) error {
	if err := ctx.Err(); err != nil {
		return rowstore.Unavailable("update cells", err)
	}

	if err := rowstore.CheckColumns(cells); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := rowstore.CheckPosition(position, len(s.rows)); err != nil {
		return err
	}

	row := s.rows[position-1]
	for col, v := range cells {
		for len(row) < int(col) {
			row = append(row, "")
		}

		row[col-1] = v
	}

	s.rows[position-1] = row

	return nil
}

// Len returns the number of rows.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.rows)
}
