package legacy

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/fundflow/internal/record"
	"github.com/MrJamesThe3rd/fundflow/internal/schema"
)

// WorkbookParser reads .xlsx downloads of the transactions sheet.
type WorkbookParser struct {
	codec schema.Codec
	sheet string
}

// NewWorkbookParser reads the named sheet, or the first sheet of the workbook when sheet is empty.
func NewWorkbookParser(codec schema.Codec, sheet string) *WorkbookParser {
	return &WorkbookParser{codec: codec, sheet: sheet}
}

func (p *WorkbookParser) Parse(r io.Reader) ([]record.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := p.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}

		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	return Records(p.codec, rows)
}
