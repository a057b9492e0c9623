package sequence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fundflow/internal/record"
	"github.com/MrJamesThe3rd/fundflow/internal/rowstore"
	"github.com/MrJamesThe3rd/fundflow/internal/schema"
)

var ErrSequencerConflict = errors.New("id allocation kept colliding with concurrent writers")

// DefaultAttempts is how many ids are tried before giving up.
const DefaultAttempts = 5

// Sequencer appends rows under fresh TRX-NNNN identifiers. The store only offers read-all and
// append, so allocation is optimistic: compute max+1, append, then re-read and check that no
// other row with a lower position holds the same id. A row that loses has its id voided and the
// append is repeated with the next candidate.
type Sequencer struct {
	store    rowstore.Store
	attempts int
	retry    rowstore.RetryPolicy
	log      *slog.Logger
}

type Option func(*Sequencer)

func WithAttempts(n int) Option {
	return func(s *Sequencer) {
		if n > 0 {
			s.attempts = n
		}
	}
}

func WithRetryPolicy(p rowstore.RetryPolicy) Option {
	return func(s *Sequencer) { s.retry = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Sequencer) { s.log = l }
}

func New(store rowstore.Store, opts ...Option) *Sequencer {
	s := &Sequencer{
		store:    store,
		attempts: DefaultAttempts,
		retry:    rowstore.DefaultRetryPolicy,
		log:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Allocation describes a row appended by the sequencer.
type Allocation struct {
	ID       string
	Position int
	Token    string
}

// Next reports the id the next append would try first. It reserves nothing.
func (s *Sequencer) Next(ctx context.Context) (string, error) {
	rows, err := s.readAll(ctx)
	if err != nil {
		return "", err
	}

	return record.FormatID(maxID(rows) + 1), nil
}

// Append writes cells as a new row under a freshly allocated id. The id and row token cells of
// cells are overwritten.
func (s *Sequencer) Append(ctx context.Context, cells []string) (Allocation, error) {
	for attempt := 1; attempt <= s.attempts; attempt++ {
		row := make([]string, max(len(cells), schema.Width))
		copy(row, cells)

		token := uuid.NewString()
		row[schema.ColRowToken-1] = token

		rows, err := s.readAll(ctx)
		if err != nil {
			return Allocation{}, err
		}

		n := maxID(rows) + 1
		id := record.FormatID(n)
		row[schema.ColID-1] = id

		if err := rowstore.AppendIdempotent(ctx, s.store, s.retry, row); err != nil {
			return Allocation{}, err
		}

		if rows, err = s.readAll(ctx); err != nil {
			return Allocation{}, err
		}

		position := rowstore.PositionOf(rows, token)
		if position == 0 {
			return Allocation{}, rowstore.Unavailable("append", fmt.Errorf("row %s not visible after append", token))
		}

		if Winner(rows, n) == position {
			return Allocation{ID: id, Position: position, Token: token}, nil
		}

		s.log.Debug("id collision, retrying", "id", id, "row", position, "attempt", attempt)

		if err := s.Void(ctx, position); err != nil {
			s.log.Error("failed to void colliding row", "id", id, "row", position, "error", err)
			return Allocation{}, fmt.Errorf("voiding row %d: %w", position, err)
		}
	}

	return Allocation{}, fmt.Errorf("%w after %d attempts", ErrSequencerConflict, s.attempts)
}

// Void clears the id cell of the row at position, taking it out of every id lookup.
func (s *Sequencer) Void(ctx context.Context, position int) error {
	return rowstore.Retry(ctx, s.retry, "void id", func(ctx context.Context) error {
		return s.store.UpdateCells(ctx, position, map[schema.Column]string{schema.ColID: ""})
	})
}

func (s *Sequencer) readAll(ctx context.Context) ([]rowstore.RawRow, error) {
	var rows []rowstore.RawRow

	err := rowstore.Retry(ctx, s.retry, "read all", func(ctx context.Context) error {
		var err error
		rows, err = s.store.ReadAll(ctx)

		return err
	})

	return rows, err
}

func cell(r rowstore.RawRow, col schema.Column) string {
	if int(col) > len(r.Cells) {
		return ""
	}

	return r.Cells[col-1]
}

func maxID(rows []rowstore.RawRow) int {
	highest := 0

	for _, r := range rows {
		if n, ok := record.ParseID(cell(r, schema.ColID)); ok && n > highest {
			highest = n
		}
	}

	return highest
}

// Winner returns the lowest position holding id number n, or 0 when none does. That row owns
// the id; any later row carrying it lost a race.
func Winner(rows []rowstore.RawRow, n int) int {
	lowest := 0

	for _, r := range rows {
		if m, ok := record.ParseID(cell(r, schema.ColID)); ok && m == n {
			if lowest == 0 || r.Position < lowest {
				lowest = r.Position
			}
		}
	}

	return lowest
}
