package aggregate_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/fundflow/internal/aggregate"
	"github.com/MrJamesThe3rd/fundflow/internal/record"
)

func amount(n int64) *int64 { return &n }

func liquidated(t record.Type, n int64) record.Record {
	return record.Record{
		Type:     t,
		Approval: record.Approval{Status: record.ApprovalApproved},
		Payment:  record.Payment{Status: record.PaymentIssued},
		Liquidation: record.Liquidation{
			Status: record.LiquidationLiquidated,
			Amount: amount(n),
		},
	}
}

func awaiting(t record.Type, requested int64) record.Record {
	return record.Record{
		Type:            t,
		RequestedAmount: requested,
		Approval:        record.Approval{Status: record.ApprovalApproved},
		Payment:         record.Payment{Status: record.PaymentIssued},
		Liquidation:     record.Liquidation{Status: record.LiquidationToBeLiquidated},
	}
}

func TestSummarize(t *testing.T) {
	type testCase struct {
		name    string
		records []record.Record
		want    aggregate.Totals
	}

	tests := []testCase{
		{
			name:    "Empty",
			records: nil,
			want:    aggregate.Totals{},
		},
		{
			name: "IncomeAndExpense",
			records: []record.Record{
				{Type: record.TypeIncome, Liquidation: record.Liquidation{Amount: amount(1000000)}},
				{Type: record.TypeExpense, Liquidation: record.Liquidation{Amount: amount(-400000)}},
			},
			want: aggregate.Totals{Income: 1000000, Expense: -400000, Available: 600000},
		},
		{
			name: "IssuedPendingReducesAvailable",
			records: []record.Record{
				liquidated(record.TypeIncome, 1000000),
				awaiting(record.TypeExpense, -250000),
			},
			want: aggregate.Totals{Income: 1000000, IssuedPending: 250000, Available: 750000},
		},
		{
			name: "InterruptedLiquidationCountedOnce",
			records: []record.Record{
				liquidated(record.TypeIncome, 1000000),
				func() record.Record {
					r := awaiting(record.TypeExpense, -300000)
					r.Liquidation.Amount = amount(-280000)

					return r
				}(),
			},
			want: aggregate.Totals{Income: 1000000, IssuedPending: 300000, Available: 700000},
		},
		{
			name: "IncomeAwaitingLiquidationNotPending",
			records: []record.Record{
				liquidated(record.TypeIncome, 1000000),
				awaiting(record.TypeIncome, 200000),
				awaiting(record.TypeExpense, -50000),
			},
			want: aggregate.Totals{Income: 1000000, IssuedPending: 50000, Available: 950000},
		},
		{
			name: "UnsettledRequestsIgnored",
			records: []record.Record{
				{Type: record.TypeExpense, RequestedAmount: -90000, Approval: record.Approval{Status: record.ApprovalPending}},
				{Type: record.TypeExpense, RequestedAmount: -10000, Approval: record.Approval{Status: record.ApprovalDeclined}},
			},
			want: aggregate.Totals{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, aggregate.Summarize(tt.records))
		})
	}
}

func randomSnapshot(rng *rand.Rand, n int) []record.Record {
	out := make([]record.Record, n)

	for i := range out {
		typ := record.TypeIncome
		sign := int64(1)

		if rng.Intn(2) == 0 {
			typ = record.TypeExpense
			sign = -1
		}

		v := sign * (rng.Int63n(1000000) + 1)

		switch rng.Intn(3) {
		case 0:
			out[i] = liquidated(typ, v)
		case 1:
			out[i] = awaiting(typ, v)
		default:
			out[i] = record.Record{Type: typ, RequestedAmount: v}
		}
	}

	return out
}

func TestSummarize_DeterministicAndAdditive(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for range 100 {
		a := randomSnapshot(rng, rng.Intn(20))
		b := randomSnapshot(rng, rng.Intn(20))

		assert.Equal(t, aggregate.Summarize(a), aggregate.Summarize(a))

		union := append(append([]record.Record{}, a...), b...)
		assert.Equal(t, aggregate.Summarize(a).Add(aggregate.Summarize(b)), aggregate.Summarize(union))
	}
}

func TestCountStatuses(t *testing.T) {
	records := []record.Record{
		{Approval: record.Approval{Status: record.ApprovalPending}},
		{Approval: record.Approval{Status: record.ApprovalPending}},
		{Approval: record.Approval{Status: record.ApprovalDeclined}},
		{Approval: record.Approval{Status: record.ApprovalApproved}},
		awaiting(record.TypeExpense, -100),
		liquidated(record.TypeExpense, -90),
	}

	got := aggregate.CountStatuses(records)

	assert.Equal(t, 6, got.Total)
	assert.Equal(t, 2, got.Pending)
	assert.Equal(t, 3, got.Approved)
	assert.Equal(t, 1, got.Declined)
	assert.Equal(t, 2, got.Issued)
	assert.Equal(t, 1, got.Liquidated)
	assert.Equal(t, 2, got.ByStage[record.StagePendingApproval])
	assert.Equal(t, 1, got.ByStage[record.StageAwaitingPayment])
	assert.Equal(t, 1, got.ByStage[record.StageAwaitingLiquidation])
	assert.Equal(t, 1, got.ByStage[record.StageLiquidated])
	assert.Equal(t, 1, got.ByStage[record.StageDeclined])
}
