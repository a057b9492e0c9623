package xlsx

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/fundflow/internal/rowstore"
	"github.com/MrJamesThe3rd/fundflow/internal/schema"
)

// Store reads and writes a single worksheet of an .xlsx workbook. Row 1 holds the headers;
// data position p lives on sheet row p+1. The workbook is reopened on every call so edits made
// by other programs are picked up.
type Store struct {
	mu    sync.Mutex
	path  string
	sheet string
}

// Open returns a store over path, creating the workbook with a header row when it is missing.
func Open(path, sheet string) (*Store, error) {
	s := &Store{path: path, sheet: sheet}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := s.create(); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, rowstore.Permanent("open workbook", err)
	}

	return s, nil
}

func (s *Store) create() error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(s.sheet)
	if err != nil {
		return rowstore.Permanent("create workbook", err)
	}

	f.SetActiveSheet(index)

	if s.sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return rowstore.Permanent("create workbook", err)
		}
	}

	headers := schema.Headers()
	if err := f.SetSheetRow(s.sheet, "A1", &headers); err != nil {
		return rowstore.Permanent("create workbook", err)
	}

	if err := f.SaveAs(s.path); err != nil {
		return rowstore.Unavailable("create workbook", err)
	}

	return nil
}

func (s *Store) ReadAll(ctx context.Context) ([]rowstore.RawRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, rowstore.Unavailable("read all", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, rows, err := s.load()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := make([]rowstore.RawRow, 0, len(rows))
	for i, cells := range rows {
		out = append(out, rowstore.RawRow{Position: i + 1, Cells: cells})
	}

	return out, nil
}

func (s *Store) Append(ctx context.Context, cells []string) error {
	if err := ctx.Err(); err != nil {
		return rowstore.Unavailable("append", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, rows, err := s.load()
	if err != nil {
		return err
	}
	defer f.Close()

	cell, err := excelize.CoordinatesToCellName(1, len(rows)+2)
	if err != nil {
		return rowstore.Permanent("append", err)
	}

	if err := f.SetSheetRow(s.sheet, cell, &cells); err != nil {
		return rowstore.Permanent("append", err)
	}

	return s.save(f, "append")
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

	f, rows, err := s.load()
	if err != nil {
		return err
	}
	defer f.Close()

	if err := rowstore.CheckPosition(position, len(rows)); err != nil {
		return err
	}

	for col, v := range cells {
		name, err := excelize.CoordinatesToCellName(int(col), position+1)
		if err != nil {
			return rowstore.Permanent("update cells", err)
		}

		if err := f.SetCellStr(s.sheet, name, v); err != nil {
			return rowstore.Permanent("update cells", err)
		}
	}

	return s.save(f, "update cells")
}

// load opens the workbook and returns its data rows without the header.
func (s *Store) load() (*excelize.File, [][]string, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, nil, rowstore.Unavailable("open workbook", err)
	}

	rows, err := f.GetRows(s.sheet)
	if err != nil {
		f.Close()
		return nil, nil, rowstore.Permanent("read sheet", fmt.Errorf("%s: %w", s.sheet, err))
	}

	if len(rows) > 0 {
		rows = rows[1:]
	}

	return f, rows, nil
}

func (s *Store) save(f *excelize.File, op string) error {
	if err := f.Save(); err != nil {
		return rowstore.Unavailable(op, err)
	}

	return nil
}
