package aggregate

import (
	"github.com/MrJamesThe3rd/fundflow/internal/record"
)

// Totals are the dashboard figures for one snapshot, in whole currency units.
type Totals struct {
	// Income is the settled income, positive.
	Income int64 `json:"income"`
	// Expense is the settled expense, negative.
	Expense int64 `json:"expense"`
	// IssuedPending is money paid out and not yet liquidated, as a positive amount. Only
	// expense requests count: an income awaiting liquidation has not paid anything out, and
	// summing signed requested amounts would let it cancel pending expenses.
	IssuedPending int64 `json:"issued_pending"`
	// Available is Income + Expense - IssuedPending.
	Available int64 `json:"available"`
}

// Add returns the pointwise sum of t and o.
func (t Totals) Add(o Totals) Totals {
	return Totals{
		Income:        t.Income + o.Income,
		Expense:       t.Expense + o.Expense,
		IssuedPending: t.IssuedPending + o.IssuedPending,
		Available:     t.Available + o.Available,
	}
}

// Summarize folds a snapshot into totals. It is pure: the same records always give the same
// totals, and the totals of two disjoint snapshots add up to the totals of their union.
//
// A liquidated amount on a record still awaiting liquidation belongs to an interrupted
// liquidation; the record is counted as pending instead so it is not counted twice.
func Summarize(records []record.Record) Totals {
	var t Totals

	for _, r := range records {
		if r.Liquidation.Status == record.LiquidationToBeLiquidated {
			if r.Type == record.TypeExpense {
				t.IssuedPending -= r.RequestedAmount
			}

			continue
		}

		if r.Liquidation.Amount == nil {
			continue
		}

		switch r.Type {
		case record.TypeIncome:
			t.Income += *r.Liquidation.Amount
		case record.TypeExpense:
			t.Expense += *r.Liquidation.Amount
		}
	}

	t.Available = t.Income + t.Expense - t.IssuedPending

	return t
}

// StatusCounts are the per-axis counters shown to requesters.
type StatusCounts struct {
	Total      int                  `json:"total"`
	Pending    int                  `json:"pending"`
	Approved   int                  `json:"approved"`
	Declined   int                  `json:"declined"`
	Issued     int                  `json:"issued"`
	Liquidated int                  `json:"liquidated"`
	ByStage    map[record.Stage]int `json:"by_stage"`
}

// CountStatuses counts records per approval status, issued payments, liquidations and stage.
func CountStatuses(records []record.Record) StatusCounts {
	c := StatusCounts{ByStage: make(map[record.Stage]int, len(record.Stages))}

	for _, s := range record.Stages {
		c.ByStage[s] = 0
	}

	for _, r := range records {
		c.Total++
		c.ByStage[r.Stage()]++

		switch r.Approval.Status {
		case record.ApprovalPending:
			c.Pending++
		case record.ApprovalApproved:
			c.Approved++
		case record.ApprovalDeclined:
			c.Declined++
		}

		if r.Payment.Status == record.PaymentIssued {
			c.Issued++
		}

		if r.Liquidation.Status == record.LiquidationLiquidated {
			c.Liquidated++
		}
	}

	return c
}
