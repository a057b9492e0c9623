package export_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fundflow/internal/export"
	"github.com/MrJamesThe3rd/fundflow/internal/importer"
	"github.com/MrJamesThe3rd/fundflow/internal/record"
	"github.com/MrJamesThe3rd/fundflow/internal/rowstore/memory"
	"github.com/MrJamesThe3rd/fundflow/internal/schema"
	"github.com/MrJamesThe3rd/fundflow/internal/workflow"
)

var codec = schema.NewCodec(time.UTC)

func seededEngine(t *testing.T) *workflow.Engine {
	t.Helper()

	ctx := context.Background()
	engine := workflow.New(memory.New(), workflow.WithClaimSettle(0))

	for _, d := range []workflow.Draft{
		{Type: record.TypeExpense, Requester: "amal", Project: "Water", Purpose: "Pipes", RequestedAmount: -500000},
		{Type: record.TypeIncome, Requester: "sara", Project: "Grants", Purpose: "Donation", RequestedAmount: 1000},
	} {
		_, err := engine.Submit(ctx, d)
		require.NoError(t, err)
	}

	_, err := engine.Approve(ctx, "TRX-0001")
	require.NoError(t, err)

	_, err = engine.IssuePayment(ctx, "TRX-0001", "Bank transfer")
	require.NoError(t, err)

	return engine
}

func TestService_ExportCSV(t *testing.T) {
	svc := export.NewService(seededEngine(t), codec)

	var buf bytes.Buffer

	n, err := svc.Export(context.Background(), workflow.ListFilter{}, importer.FormatCSV, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, schema.Headers()[:schema.LegacyWidth], rows[0])
	assert.Equal(t, "TRX-0001", rows[1][schema.ColID-1])
	assert.Equal(t, "Issued", rows[1][schema.ColPaymentStatus-1])
	assert.Len(t, rows[1], schema.LegacyWidth)
}

func TestService_ExportFiltered(t *testing.T) {
	svc := export.NewService(seededEngine(t), codec)

	var buf bytes.Buffer

	n, err := svc.Export(context.Background(), workflow.ListFilter{Requester: "SARA"}, importer.FormatCSV, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// An export must import cleanly into an empty deployment with the same lifecycle state.
func TestService_ExportImportsBack(t *testing.T) {
	ctx := context.Background()
	svc := export.NewService(seededEngine(t), codec)

	for _, format := range []importer.Format{importer.FormatCSV, importer.FormatXLSX} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer

			_, err := svc.Export(ctx, workflow.ListFilter{}, format, &buf)
			require.NoError(t, err)

			records, err := importer.NewService(codec).Import(format, &buf)
			require.NoError(t, err)

			target := workflow.New(memory.New(), workflow.WithClaimSettle(0))

			result, err := target.Import(ctx, records)
			require.NoError(t, err)
			require.Len(t, result.Imported, 2)

			r, err := target.Get(ctx, "TRX-0001")
			require.NoError(t, err)
			assert.Equal(t, record.StageAwaitingLiquidation, r.Stage())
			assert.Equal(t, "Bank transfer", r.Payment.Method)
		})
	}
}

func TestService_UnknownFormat(t *testing.T) {
	svc := export.NewService(seededEngine(t), codec)

	_, err := svc.Export(context.Background(), workflow.ListFilter{}, "ods", &bytes.Buffer{})
	assert.ErrorContains(t, err, "unknown format")
}
