package importer

import (
	"io"

	"github.com/MrJamesThe3rd/fundflow/internal/record"
)

// Format names the file layout of an uploaded legacy export.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

type Importer interface {
	Parse(r io.Reader) ([]record.Record, error)
}
