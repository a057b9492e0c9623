package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/xuri/excelize/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/MrJamesThe3rd/fundflow/internal/rowstore"
	"github.com/MrJamesThe3rd/fundflow/internal/schema"
)

const valueInput = "RAW"

// Store is a RowStore over one tab of a Google spreadsheet. Row 1 of the tab holds headers, so
// data position p is sheet row p+1.
type Store struct {
	svc           *gsheets.Service
	spreadsheetID string
	sheet         string
	lastColumn    string
}

// New connects with the service-account credentials in credentialsFile. Extra client options
// (endpoint, HTTP client) are appended after the credentials.
func New(ctx context.Context, spreadsheetID, sheet, credentialsFile string, opts ...option.ClientOption) (*Store, error) {
	if credentialsFile != "" {
		opts = append([]option.ClientOption{option.WithCredentialsFile(credentialsFile)}, opts...)
	}

	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	return NewWithService(svc, spreadsheetID, sheet), nil
}

func NewWithService(svc *gsheets.Service, spreadsheetID, sheet string) *Store {
	last, _ := excelize.ColumnNumberToName(schema.Width)

	return &Store{svc: svc, spreadsheetID: spreadsheetID, sheet: sheet, lastColumn: last}
}

// EnsureHeader writes the header titles to row 1 when the tab is empty, so appends land on
// row 2 and below. A header that stops short of the engine columns is completed; titles
// already present are left alone.
func (s *Store) EnsureHeader(ctx context.Context) error {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, fmt.Sprintf("'%s'!1:1", s.sheet)).
		Context(ctx).
		Do()
	if err != nil {
		return classify("read header", err)
	}

	present := 0
	if len(resp.Values) > 0 {
		present = len(resp.Values[0])
	}

	headers := schema.Headers()
	if present >= len(headers) {
		return nil
	}

	start, err := excelize.CoordinatesToCellName(present+1, 1)
	if err != nil {
		return rowstore.Permanent("write header", err)
	}

	values := make([]any, 0, len(headers)-present)
	for _, h := range headers[present:] {
		values = append(values, h)
	}

	_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, fmt.Sprintf("'%s'!%s", s.sheet, start), &gsheets.ValueRange{
		Values: [][]any{values},
	}).
		ValueInputOption(valueInput).
		Context(ctx).
		Do()
	if err != nil {
		return classify("write header", err)
	}

	return nil
}

func (s *Store) ReadAll(ctx context.Context) ([]rowstore.RawRow, error) {
	rng := fmt.Sprintf("'%s'!A2:%s", s.sheet, s.lastColumn)

	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify("read all", err)
	}

	out := make([]rowstore.RawRow, 0, len(resp.Values))
	for i, values := range resp.Values {
		cells := make([]string, len(values))
		for j, v := range values {
			cells[j] = fmt.Sprint(v)
		}

		out = append(out, rowstore.RawRow{Position: i + 1, Cells: cells})
	}

	return out, nil
}

func (s *Store) Append(ctx context.Context, cells []string) error {
	values := make([]any, len(cells))
	for i, c := range cells {
		values[i] = c
	}

	rng := fmt.Sprintf("'%s'!A1", s.sheet)

	_, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, rng, &gsheets.ValueRange{
		Values: [][]any{values},
	}).
		ValueInputOption(valueInput).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
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

	data := make([]*gsheets.ValueRange, 0, len(cells))

	for col, v := range cells {
		name, err := excelize.CoordinatesToCellName(int(col), position+1)
		if err != nil {
			return rowstore.Permanent("update cells", err)
		}

		data = append(data, &gsheets.ValueRange{
			Range:  fmt.Sprintf("'%s'!%s", s.sheet, name),
			Values: [][]any{{v}},
		})
	}

	_, err := s.svc.Spreadsheets.Values.BatchUpdate(s.spreadsheetID, &gsheets.BatchUpdateValuesRequest{
		ValueInputOption: valueInput,
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return classify("update cells", err)
	}

	return nil
}

// classify treats quota and server errors as transient and any other API rejection as
// permanent. Transport failures without an API response are transient.
func classify(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError {
			return rowstore.Unavailable(op, err)
		}

		return rowstore.Permanent(op, err)
	}

	return rowstore.Unavailable(op, err)
}
