package legacy

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	enc "github.com/MrJamesThe3rd/fundflow/internal/encoding"
	"github.com/MrJamesThe3rd/fundflow/internal/record"
	"github.com/MrJamesThe3rd/fundflow/internal/schema"
)

// Parser reads CSV exports of the transactions sheet. The header row is located by matching
// column titles against the schema, so exports with extra leading rows, reordered columns or
// unknown columns are accepted.
type Parser struct {
	codec schema.Codec
}

func NewParser(codec schema.Codec) *Parser {
	return &Parser{codec: codec}
}

func (p *Parser) Parse(r io.Reader) ([]record.Record, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	br := bufio.NewReader(utf8r)

	reader := csv.NewReader(br)
	reader.Comma = sniffDelimiter(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	return Records(p.codec, rows)
}

// sniffDelimiter picks the most frequent of comma, semicolon and tab in the first line.
func sniffDelimiter(br *bufio.Reader) rune {
	buf, _ := br.Peek(br.Size())
	if i := bytes.IndexByte(buf, '\n'); i >= 0 {
		buf = buf[:i]
	}

	best, count := ',', bytes.Count(buf, []byte{','})

	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(buf, []byte(string(d))); n > count {
			best, count = d, n
		}
	}

	return best
}

// Records decodes the data rows that follow the header row. Rows without an id are skipped;
// the row token and claim columns are never taken from an export.
func Records(codec schema.Codec, rows [][]string) ([]record.Record, error) {
	headerIdx, cols := detectHeader(rows)
	if headerIdx < 0 {
		return nil, fmt.Errorf("no header row found: expected %q and %q columns",
			schema.Headers()[schema.ColID-1], schema.Headers()[schema.ColType-1])
	}

	var records []record.Record

	for i, row := range rows[headerIdx+1:] {
		rowNum := headerIdx + i + 2 // 1-based, skipping header

		cells := make([]string, schema.Width)

		for j, v := range row {
			if j < len(cols) && cols[j] != 0 {
				cells[cols[j]-1] = strings.TrimSpace(v)
			}
		}

		if cells[schema.ColID-1] == "" {
			continue
		}

		cells[schema.ColRowToken-1] = ""
		cells[schema.ColClaim-1] = ""

		r, err := codec.Decode(rowNum, cells)
		if err != nil {
			return nil, fmt.Errorf("parse export: %w", err)
		}

		r.Row = 0
		records = append(records, r)
	}

	return records, nil
}

// detectHeader returns the index of the first row naming both the id and type columns, and the
// schema column for each cell of that row (0 for unknown titles).
func detectHeader(rows [][]string) (int, []schema.Column) {
	for rowIdx, row := range rows {
		cols := make([]schema.Column, len(row))
		seen := make(map[schema.Column]bool, len(row))

		for i, cell := range row {
			col, ok := headerColumn(cell)
			if !ok || seen[col] {
				continue
			}

			cols[i] = col
			seen[col] = true
		}

		if seen[schema.ColID] && seen[schema.ColType] {
			return rowIdx, cols
		}
	}

	return -1, nil
}

// headerColumn accepts both sheet titles ("Approval Status") and field names ("approvalStatus").
func headerColumn(title string) (schema.Column, bool) {
	if col, ok := schema.ColumnForHeader(title); ok {
		return col, true
	}

	if i := schema.ColumnIndex(title); i > 0 {
		return schema.Column(i), true
	}

	return 0, false
}
