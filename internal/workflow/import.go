package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fundflow/internal/record"
	"github.com/MrJamesThe3rd/fundflow/internal/rowstore"
	"github.com/MrJamesThe3rd/fundflow/internal/schema"
	"github.com/MrJamesThe3rd/fundflow/internal/sequence"
)

type ImportResult struct {
	Imported  []record.Record
	New       []record.Record
	Conflicts []Conflict
}

// Conflict pairs an incoming record with the stored record already holding its id.
type Conflict struct {
	Incoming record.Record
	Existing record.Record
}

// Import appends records exported from an existing sheet under their own ids. Every record must
// carry a valid id and satisfy the cross-axis invariants. When any id is already taken nothing is
// written and the clashes are returned as conflicts.
func (e *Engine) Import(ctx context.Context, records []record.Record) (*ImportResult, error) {
	if len(records) == 0 {
		return &ImportResult{}, nil
	}

	incoming := make([]record.Record, len(records))
	batch := make(map[string]int, len(records))

	for i, r := range records {
		if err := schema.ValidateStored(r); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}

		n, _ := record.ParseID(r.ID)
		r.ID = record.FormatID(n)

		if prev, dup := batch[r.ID]; dup {
			return nil, fmt.Errorf("record %d: %w", i+1, &schema.ValidationError{
				Field:  schema.ColID.Field(),
				Reason: fmt.Sprintf("%s repeats record %d", r.ID, prev+1),
			})
		}

		batch[r.ID] = i
		r.Row, r.Claim = 0, ""
		incoming[i] = r
	}

	snap, err := e.cache.Fresh(ctx)
	if err != nil {
		return nil, err
	}

	var conflicts []Conflict

	for _, r := range incoming {
		if existing, ok := find(snap.Records, r.ID); ok {
			conflicts = append(conflicts, Conflict{Incoming: r, Existing: existing})
		}
	}

	if len(conflicts) > 0 {
		var fresh []record.Record

		for _, r := range incoming {
			if _, ok := find(snap.Records, r.ID); !ok {
				fresh = append(fresh, r)
			}
		}

		return &ImportResult{New: fresh, Conflicts: conflicts}, nil
	}

	defer e.invalidate(ctx)

	for i := range incoming {
		incoming[i].Token = uuid.NewString()

		if err := rowstore.AppendIdempotent(ctx, e.store, e.retry, e.codec.Encode(incoming[i])); err != nil {
			return nil, fmt.Errorf("importing %s: %w", incoming[i].ID, err)
		}
	}

	lost, err := e.settleImport(ctx, incoming)
	if err != nil {
		return nil, err
	}

	if len(lost) > 0 {
		return nil, fmt.Errorf("%w: ids taken while importing: %s", ErrConflict, strings.Join(lost, ", "))
	}

	e.log.Info("records imported", "count", len(incoming))

	return &ImportResult{Imported: incoming}, nil
}

// settleImport re-reads the store and voids every imported row that lost its id to a row
// appended concurrently at a lower position. It returns the ids lost.
func (e *Engine) settleImport(ctx context.Context, imported []record.Record) ([]string, error) {
	var rows []rowstore.RawRow

	err := rowstore.Retry(ctx, e.retry, "read all", func(ctx context.Context) error {
		var err error
		rows, err = e.store.ReadAll(ctx)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("verifying import: %w", err)
	}

	var lost []string

	for i := range imported {
		r := &imported[i]
		r.Row = rowstore.PositionOf(rows, r.Token)

		n, _ := record.ParseID(r.ID)
		if r.Row != 0 && sequence.Winner(rows, n) == r.Row {
			continue
		}

		lost = append(lost, r.ID)

		if r.Row == 0 {
			continue
		}

		if err := e.seq.Void(ctx, r.Row); err != nil {
			return nil, fmt.Errorf("voiding imported %s: %w", r.ID, err)
		}
	}

	return lost, nil
}
