package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/fundflow/internal/rowstore"
	"github.com/MrJamesThe3rd/fundflow/internal/schema"
)

// Store keeps each sheet row as a jsonb array of cells. Row positions are the 1-based order of
// insertion, so gaps in the serial column never shift them.
type Store struct {
	db    *sql.DB
	table string
}

func New(db *sql.DB) *Store {
	return &Store{db: db, table: "sheet_rows"}
}

// EnsureSchema creates the backing table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS ` + s.table + ` (
			id         BIGSERIAL PRIMARY KEY,
			cells      JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return classify("ensure schema", err)
	}

	return nil
}

func (s *Store) ReadAll(ctx context.Context) ([]rowstore.RawRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT cells FROM `+s.table+` ORDER BY id`)
	if err != nil {
		return nil, classify("read all", err)
	}
	defer rows.Close()

	var out []rowstore.RawRow

	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, classify("read all", err)
		}

		var cells []string
		if err := json.Unmarshal(raw, &cells); err != nil {
			return nil, rowstore.Permanent("read all", fmt.Errorf("row %d: %w", len(out)+1, err))
		}

		out = append(out, rowstore.RawRow{Position: len(out) + 1, Cells: cells})
	}

	if err := rows.Err(); err != nil {
		return nil, classify("read all", err)
	}

	return out, nil
}

func (s *Store) Append(ctx context.Context, cells []string) error {
	raw, err := json.Marshal(cells)
	if err != nil {
		return rowstore.Permanent("append", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("append", err)
	}
	defer tx.Rollback()

	// Appends are serialized so serial order matches commit order and a reader never sees a
	// later position before an earlier one.
	if _, err := tx.ExecContext(ctx, `LOCK TABLE `+s.table+` IN EXCLUSIVE MODE`); err != nil {
		return classify("append", err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO `+s.table+` (cells) VALUES ($1)`, raw); err != nil {
		return classify("append", err)
	}

	if err := tx.Commit(); err != nil {
		return classify("append", err)
	}

	return nil
}

func (s *Store) UpdateCells(ctx context.Context, position int, cells map[schema.Column]string) error {
	if err := rowstore.CheckColumns(cells); err != nil {
		return err
	}

	if position < 1 {
		return rowstore.CheckPosition(position, 0)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("update cells", err)
	}
	defer tx.Rollback()

	var (
		id  int64
		raw []byte
	)

	err = tx.QueryRowContext(ctx,
		`SELECT id, cells FROM `+s.table+` ORDER BY id OFFSET $1 LIMIT 1 FOR UPDATE`,
		position-1,
	).Scan(&id, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return rowstore.Permanent("update cells", fmt.Errorf("row %d does not exist", position))
	}

	if err != nil {
		return classify("update cells", err)
	}

	var row []string
	if err := json.Unmarshal(raw, &row); err != nil {
		return rowstore.Permanent("update cells", err)
	}

	for col, v := range cells {
		for len(row) < int(col) {
			row = append(row, "")
		}

		row[col-1] = v
	}

	if raw, err = json.Marshal(row); err != nil {
		return rowstore.Permanent("update cells", err)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE `+s.table+` SET cells = $1 WHERE id = $2`, raw, id); err != nil {
		return classify("update cells", err)
	}

	if err := tx.Commit(); err != nil {
		return classify("update cells", err)
	}

	return nil
}

// classify maps driver errors onto the store error kinds. Connection, serialization and
// resource classes are transient; everything else the server rejects is permanent.
func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		for _, class := range []string{"08", "40", "53", "57"} {
			if strings.HasPrefix(pgErr.Code, class) {
				return rowstore.Unavailable(op, err)
			}
		}

		return rowstore.Permanent(op, err)
	}

	return rowstore.Unavailable(op, err)
}
