package importer

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/MrJamesThe3rd/fundflow/internal/importer/legacy"
	"github.com/MrJamesThe3rd/fundflow/internal/record"
	"github.com/MrJamesThe3rd/fundflow/internal/schema"
)

type Service struct {
	csvImporter  Importer
	xlsxImporter Importer
}

func NewService(codec schema.Codec) *Service {
	return &Service{
		csvImporter:  legacy.NewParser(codec),
		xlsxImporter: legacy.NewWorkbookParser(codec, ""),
	}
}

// FormatOf picks the format from an upload's file name, defaulting to CSV.
func FormatOf(filename string) Format {
	if strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return FormatXLSX
	}

	return FormatCSV
}

func (s *Service) Import(format Format, r io.Reader) ([]record.Record, error) {
	var importer Importer

	switch format {
	case FormatCSV:
		importer = s.csvImporter
	case FormatXLSX:
		importer = s.xlsxImporter
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}

	return importer.Parse(r)
}
