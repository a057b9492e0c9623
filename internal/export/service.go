package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/fundflow/internal/importer"
	"github.com/MrJamesThe3rd/fundflow/internal/record"
	"github.com/MrJamesThe3rd/fundflow/internal/schema"
	"github.com/MrJamesThe3rd/fundflow/internal/workflow"
)

const sheetName = "Transactions"

// Service writes records in the legacy sheet layout, so an export can be opened next to the
// original sheet or imported into another deployment.
type Service struct {
	engine *workflow.Engine
	codec  schema.Codec
}

func NewService(engine *workflow.Engine, codec schema.Codec) *Service {
	return &Service{engine: engine, codec: codec}
}

// Export writes the records matching filter to w and returns how many were written. The
// engine-owned row token and claim columns are left out.
func (s *Service) Export(ctx context.Context, filter workflow.ListFilter, format importer.Format, w io.Writer) (int, error) {
	records, err := s.engine.List(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("listing records: %w", err)
	}

	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, schema.Headers()[:schema.LegacyWidth])

	for _, r := range records {
		rows = append(rows, s.legacyRow(r))
	}

	switch format {
	case importer.FormatCSV:
		err = writeCSV(w, rows)
	case importer.FormatXLSX:
		err = writeXLSX(w, rows)
	default:
		return 0, fmt.Errorf("unknown format: %s", format)
	}

	if err != nil {
		return 0, err
	}

	return len(records), nil
}

func (s *Service) legacyRow(r record.Record) []string {
	return s.codec.Encode(r)[:schema.LegacyWidth]
}

func writeCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}

	return nil
}

func writeXLSX(w io.Writer, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	for i, row := range rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}

		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}

		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}

	return nil
}
