package record_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/fundflow/internal/record"
)

func TestRecord_Stage(t *testing.T) {
	type testCase struct {
		name string
		rec  record.Record
		want record.Stage
	}

	tests := []testCase{
		{
			name: "Pending",
			rec:  record.Record{Approval: record.Approval{Status: record.ApprovalPending}},
			want: record.StagePendingApproval,
		},
		{
			name: "Declined",
			rec:  record.Record{Approval: record.Approval{Status: record.ApprovalDeclined}},
			want: record.StageDeclined,
		},
		{
			name: "AwaitingPayment",
			rec:  record.Record{Approval: record.Approval{Status: record.ApprovalApproved}},
			want: record.StageAwaitingPayment,
		},
		{
			name: "InterruptedPayment",
			rec: record.Record{
				Approval: record.Approval{Status: record.ApprovalApproved},
				Payment:  record.Payment{Status: record.PaymentIssued},
			},
			want: record.StageAwaitingPayment,
		},
		{
			name: "AwaitingLiquidation",
			rec: record.Record{
				Approval:    record.Approval{Status: record.ApprovalApproved},
				Payment:     record.Payment{Status: record.PaymentIssued},
				Liquidation: record.Liquidation{Status: record.LiquidationToBeLiquidated},
			},
			want: record.StageAwaitingLiquidation,
		},
		{
			name: "Liquidated",
			rec: record.Record{
				Approval:    record.Approval{Status: record.ApprovalApproved},
				Payment:     record.Payment{Status: record.PaymentIssued},
				Liquidation: record.Liquidation{Status: record.LiquidationLiquidated},
			},
			want: record.StageLiquidated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rec.Stage())
		})
	}
}

func TestParseStage(t *testing.T) {
	type testCase struct {
		input  string
		want   record.Stage
		wantOK bool
	}

	tests := []testCase{
		{input: "pending_approval", want: record.StagePendingApproval, wantOK: true},
		{input: "Awaiting-Payment", want: record.StageAwaitingPayment, wantOK: true},
		{input: " liquidated ", want: record.StageLiquidated, wantOK: true},
		{input: "paid", wantOK: false},
		{input: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := record.ParseStage(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseID(t *testing.T) {
	type testCase struct {
		input  string
		want   int
		wantOK bool
	}

	tests := []testCase{
		{input: "TRX-0042", want: 42, wantOK: true},
		{input: "trx-0007", want: 7, wantOK: true},
		{input: "TRX-12345", want: 12345, wantOK: true},
		{input: "TRX-0000", wantOK: false},
		{input: "TRX-", wantOK: false},
		{input: "TRX-abc", wantOK: false},
		{input: "INV-0001", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := record.ParseID(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "TRX-0042", record.FormatID(42))
}
