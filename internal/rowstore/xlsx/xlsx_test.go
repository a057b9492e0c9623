package xlsx_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/fundflow/internal/rowstore"
	"github.com/MrJamesThe3rd/fundflow/internal/rowstore/xlsx"
	"github.com/MrJamesThe3rd/fundflow/internal/schema"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "transactions.xlsx")

	s, err := xlsx.Open(path, "Transactions")
	require.NoError(t, err)

	rows, err := s.ReadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)

	require.NoError(t, s.Append(ctx, []string{"TRX-0001", "Expense"}))
	require.NoError(t, s.Append(ctx, []string{"TRX-0002", "Income"}))
	require.NoError(t, s.UpdateCells(ctx, 2, map[schema.Column]string{
		schema.ColApprovalStatus: "Declined",
	}))

	rows, err = s.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[1].Position)
	assert.Equal(t, "TRX-0002", rows[1].Cells[0])
	assert.Equal(t, "Declined", rows[1].Cells[schema.ColApprovalStatus-1])

	// Header row stays in place for people editing the workbook by hand.
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Transactions", "A1")
	require.NoError(t, err)
	assert.Equal(t, "TRX ID", header)

	err = s.UpdateCells(ctx, 3, map[schema.Column]string{schema.ColRemarks: "x"})
	assert.True(t, errors.Is(err, rowstore.ErrPermanent))
}
