package view

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/fundflow/internal/importer"
)

func TestExportPath(t *testing.T) {
	type testCase struct {
		name   string
		path   string
		format importer.Format
		want   string
	}

	tests := []testCase{
		{name: "KeepsMatchingExtension", path: "out/records.csv", format: importer.FormatCSV, want: "out/records.csv"},
		{name: "CaseInsensitive", path: "records.XLSX", format: importer.FormatXLSX, want: "records.XLSX"},
		{name: "ReplacesExtension", path: "records.csv", format: importer.FormatXLSX, want: "records.xlsx"},
		{name: "AddsExtension", path: " records ", format: importer.FormatCSV, want: "records.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exportPath(tt.path, tt.format))
		})
	}
}
