package schema_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/fundflow/internal/record"
	"github.com/MrJamesThe3rd/fundflow/internal/schema"
)

func int64p(n int64) *int64 { return &n }

func TestColumnIndex(t *testing.T) {
	assert.Equal(t, 1, schema.ColumnIndex("id"))
	assert.Equal(t, 10, schema.ColumnIndex("requestedAmount"))
	assert.Equal(t, 17, schema.ColumnIndex("LiquidationStatus"))
	assert.Equal(t, 25, schema.ColumnIndex("remarks"))
	assert.Equal(t, 0, schema.ColumnIndex("unknown"))

	col, ok := schema.ColumnForHeader("  Payment  Status ")
	require.True(t, ok)
	assert.Equal(t, schema.ColPaymentStatus, col)

	headers := schema.Headers()
	require.Len(t, headers, schema.Width)
	assert.Equal(t, "TRX ID", headers[0])
	assert.Equal(t, "Remarks", headers[schema.LegacyWidth-1])
}

func TestCodec_EncodeDecode(t *testing.T) {
	loc := time.FixedZone("AST", 3*60*60)
	codec := schema.NewCodec(loc)

	created := time.Date(2024, 3, 1, 9, 30, 0, 0, loc)
	paid := created.Add(48 * time.Hour)

	in := record.Record{
		ID:              "TRX-0007",
		Type:            record.TypeExpense,
		Category:        "Request based",
		Mode:            record.ModeRequest,
		Requester:       "amal@example.org",
		Project:         "Water",
		Purpose:         "Pipes",
		RequestedAmount: -500000,
		CreatedAt:       created,
		Approval:        record.Approval{Status: record.ApprovalApproved, Date: &created},
		Payment:         record.Payment{Status: record.PaymentIssued, Method: "Bank", Date: &paid},
		Liquidation: record.Liquidation{
			Status:         record.LiquidationLiquidated,
			Amount:         int64p(-480000),
			Date:           &paid,
			InvoiceRef:     "inv-1",
			ReturnedAmount: int64p(20000),
		},
		Token: "tok",
	}

	cells := codec.Encode(in)
	require.Len(t, cells, schema.Width)
	assert.Equal(t, "-500000", cells[schema.ColRequestedAmount-1])
	assert.Equal(t, "2024-03-01 09:30:00", cells[schema.ColSubmissionDate-1])
	assert.Equal(t, "Liquidated", cells[schema.ColLiquidationStatus-1])

	out, err := codec.Decode(4, cells)
	require.NoError(t, err)

	assert.Equal(t, 4, out.Row)
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, in.RequestedAmount, out.RequestedAmount)
	assert.True(t, in.CreatedAt.Equal(out.CreatedAt))
	assert.Equal(t, record.LiquidationLiquidated, out.Liquidation.Status)
	assert.Equal(t, int64(20000), *out.Liquidation.ReturnedAmount)
	assert.Equal(t, "tok", out.Token)
	assert.NoError(t, schema.CheckInvariants(out))
}

func TestCodec_DecodeLegacyRow(t *testing.T) {
	codec := schema.NewCodec(time.UTC)

	cells := make([]string, schema.LegacyWidth)
	cells[schema.ColID-1] = "TRX-0002"
	cells[schema.ColType-1] = "expense"
	cells[schema.ColRequestedAmount-1] = "-1,250,000.00"
	cells[schema.ColSubmissionDate-1] = "2024-01-05"
	cells[schema.ColApprovalStatus-1] = "APPROVED"
	cells[schema.ColPaymentStatus-1] = "pending"

	r, err := codec.Decode(3, cells)
	require.NoError(t, err)

	assert.Equal(t, record.TypeExpense, r.Type)
	assert.Equal(t, record.ModeRequest, r.Mode)
	assert.Equal(t, int64(-1250000), r.RequestedAmount)
	assert.Equal(t, record.ApprovalApproved, r.Approval.Status)
	assert.Equal(t, record.PaymentNotIssued, r.Payment.Status)
	assert.Equal(t, record.StageAwaitingPayment, r.Stage())
	assert.Empty(t, r.Token)
}

func TestCodec_DecodeDirectEntry(t *testing.T) {
	codec := schema.NewCodec(time.UTC)

	cells := make([]string, schema.LegacyWidth)
	cells[schema.ColID-1] = "TRX-0009"
	cells[schema.ColType-1] = "Income"
	cells[schema.ColRequestMode-1] = "Direct payment"
	cells[schema.ColPaymentStatus-1] = "Issued"
	cells[schema.ColLiquidationStatus-1] = "Liquidated"
	cells[schema.ColLiquidatedAmount-1] = "1000000"

	r, err := codec.Decode(2, cells)
	require.NoError(t, err)

	assert.Equal(t, record.ApprovalApproved, r.Approval.Status)
	assert.NoError(t, schema.CheckInvariants(r))
}

func TestCodec_DecodeMismatch(t *testing.T) {
	codec := schema.NewCodec(time.UTC)

	tests := []struct {
		name string
		col  schema.Column
		val  string
	}{
		{name: "UnknownType", col: schema.ColType, val: "Transfer"},
		{name: "BadAmount", col: schema.ColRequestedAmount, val: "lots"},
		{name: "BadApproval", col: schema.ColApprovalStatus, val: "Maybe"},
		{name: "BadDate", col: schema.ColApprovalDate, val: "yesterday"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cells := make([]string, schema.Width)
			cells[schema.ColType-1] = "Expense"
			cells[tt.col-1] = tt.val

			_, err := codec.Decode(2, cells)
			assert.True(t, errors.Is(err, schema.ErrSchemaMismatch))
		})
	}
}

func TestValidate(t *testing.T) {
	type testCase struct {
		name      string
		record    record.Record
		wantField string
	}

	request := func(mutate func(r *record.Record)) record.Record {
		r := record.Record{
			Type:            record.TypeExpense,
			Mode:            record.ModeRequest,
			Requester:       "amal@example.org",
			Project:         "Water",
			Purpose:         "Pipes",
			RequestedAmount: -500000,
			Approval:        record.Approval{Status: record.ApprovalPending},
		}
		if mutate != nil {
			mutate(&r)
		}

		return r
	}

	tests := []testCase{
		{name: "ValidRequest", record: request(nil)},
		{
			name:      "PositiveExpense",
			record:    request(func(r *record.Record) { r.RequestedAmount = 500000 }),
			wantField: "requestedAmount",
		},
		{
			name: "NegativeIncome",
			record: request(func(r *record.Record) {
				r.Type = record.TypeIncome
			}),
			wantField: "requestedAmount",
		},
		{
			name:      "MissingRequester",
			record:    request(func(r *record.Record) { r.Requester = " " }),
			wantField: "requester",
		},
		{
			name:      "BadID",
			record:    request(func(r *record.Record) { r.ID = "42" }),
			wantField: "id",
		},
		{
			name: "IssuedWithoutApproval",
			record: request(func(r *record.Record) {
				r.Payment.Status = record.PaymentIssued
			}),
			wantField: "paymentStatus",
		},
		{
			name: "LiquidatedWrongReturn",
			record: request(func(r *record.Record) {
				r.Approval.Status = record.ApprovalApproved
				r.Payment.Status = record.PaymentIssued
				r.Liquidation = record.Liquidation{
					Status:         record.LiquidationLiquidated,
					Amount:         int64p(-480000),
					ReturnedAmount: int64p(0),
				}
			}),
			wantField: "returnedAmount",
		},
		{
			name: "DirectWithoutMethod",
			record: record.Record{
				Type:        record.TypeIncome,
				Mode:        record.ModeDirect,
				Purpose:     "Grant",
				Liquidation: record.Liquidation{Amount: int64p(1000)},
			},
			wantField: "paymentMethod",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := schema.Validate(tt.record)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var verr *schema.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}
