package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/fundflow/internal/record"
	"github.com/MrJamesThe3rd/fundflow/internal/schema"
)

// Draft is a new payment request as entered by a requester.
type Draft struct {
	Type             record.Type
	Category         string
	Requester        string
	Project          string
	BudgetLine       string
	Purpose          string
	Detail           string
	RequestedAmount  int64
	RelatedRequestID string
	Supplier         string
	Contribution     string
	Remarks          string
}

// DirectDraft is an income or expense that was settled outside the request flow.
type DirectDraft struct {
	Type         record.Type
	Category     string
	Requester    string
	Project      string
	BudgetLine   string
	Purpose      string
	Detail       string
	Amount       int64
	Method       string
	InvoiceRef   string
	Supplier     string
	Contribution string
	Remarks      string
}

// Submit validates d and appends it under a new id as a pending request.
func (e *Engine) Submit(ctx context.Context, d Draft) (record.Record, error) {
	r := record.Record{
		Type:             d.Type,
		Category:         d.Category,
		Mode:             record.ModeRequest,
		Requester:        strings.TrimSpace(d.Requester),
		Project:          d.Project,
		BudgetLine:       d.BudgetLine,
		Purpose:          d.Purpose,
		Detail:           d.Detail,
		RequestedAmount:  d.RequestedAmount,
		CreatedAt:        e.now(),
		Approval:         record.Approval{Status: record.ApprovalPending},
		RelatedRequestID: d.RelatedRequestID,
		Supplier:         d.Supplier,
		Contribution:     d.Contribution,
		Remarks:          d.Remarks,
	}

	if err := schema.Validate(r); err != nil {
		return record.Record{}, err
	}

	return e.create(ctx, r)
}

// RecordDirect appends an already settled entry: approved, issued and liquidated at once. The
// amount sign follows the type regardless of the sign given.
func (e *Engine) RecordDirect(ctx context.Context, d DirectDraft) (record.Record, error) {
	now := e.now()

	amount := d.Amount
	if amount < 0 {
		amount = -amount
	}

	if d.Type == record.TypeExpense {
		amount = -amount
	}

	r := record.Record{
		Type:         d.Type,
		Category:     d.Category,
		Mode:         record.ModeDirect,
		Requester:    strings.TrimSpace(d.Requester),
		Project:      d.Project,
		BudgetLine:   d.BudgetLine,
		Purpose:      d.Purpose,
		Detail:       d.Detail,
		CreatedAt:    now,
		Approval:     record.Approval{Status: record.ApprovalApproved, Date: &now},
		Payment:      record.Payment{Status: record.PaymentIssued, Method: strings.TrimSpace(d.Method), Date: &now},
		Supplier:     d.Supplier,
		Contribution: d.Contribution,
		Remarks:      d.Remarks,
		Liquidation: record.Liquidation{
			Status:     record.LiquidationLiquidated,
			Amount:     &amount,
			Date:       &now,
			InvoiceRef: d.InvoiceRef,
		},
	}

	if err := schema.Validate(r); err != nil {
		return record.Record{}, err
	}

	return e.create(ctx, r)
}

func (e *Engine) create(ctx context.Context, r record.Record) (record.Record, error) {
	alloc, err := e.seq.Append(ctx, e.codec.Encode(r))
	if err != nil {
		return record.Record{}, fmt.Errorf("appending record: %w", err)
	}

	e.invalidate(ctx)

	r.ID = alloc.ID
	r.Row = alloc.Position
	r.Token = alloc.Token

	e.log.Info("record created", "id", r.ID, "mode", r.Mode, "type", r.Type)

	return r, nil
}

func pendingApproval(r record.Record) error {
	if r.Approval.Status != record.ApprovalPending {
		return fmt.Errorf("%w: %s is already %s", ErrInvalidTransition, r.ID, r.Approval.Status)
	}

	return nil
}

// Approve moves a pending request to approved.
func (e *Engine) Approve(ctx context.Context, id string) (record.Record, error) {
	return e.apply(ctx, id, transition{
		name:  "approve",
		guard: pendingApproval,
		writes: func(_ record.Record, now time.Time) []map[schema.Column]string {
			return []map[schema.Column]string{
				{schema.ColApprovalDate: e.codec.FormatDate(now)},
				{schema.ColApprovalStatus: string(record.ApprovalApproved)},
			}
		},
	})
}

// Decline moves a pending request to declined, which is terminal.
func (e *Engine) Decline(ctx context.Context, id string) (record.Record, error) {
	return e.apply(ctx, id, transition{
		name:  "decline",
		guard: pendingApproval,
		writes: func(_ record.Record, now time.Time) []map[schema.Column]string {
			return []map[schema.Column]string{
				{schema.ColApprovalDate: e.codec.FormatDate(now)},
				{schema.ColApprovalStatus: string(record.ApprovalDeclined)},
			}
		},
	})
}

// interruptedPayment reports a payment marked issued whose liquidation status was never set.
func interruptedPayment(r record.Record) bool {
	return r.Payment.Status == record.PaymentIssued && r.Liquidation.Status == record.LiquidationNotApplicable
}

// IssuePayment marks an approved request as paid with method and opens its liquidation. A payment
// left half-written by an earlier failure is completed.
func (e *Engine) IssuePayment(ctx context.Context, id, method string) (record.Record, error) {
	method = strings.TrimSpace(method)
	if method == "" {
		return record.Record{}, &schema.ValidationError{Field: schema.ColPaymentMethod.Field(), Reason: "is required"}
	}

	return e.apply(ctx, id, transition{
		name: "issue payment",
		guard: func(r record.Record) error {
			if r.Approval.Status != record.ApprovalApproved {
				return fmt.Errorf("%w: %s is %s, not approved", ErrInvalidTransition, r.ID, r.Approval.Status)
			}

			if r.Payment.Status == record.PaymentIssued && !interruptedPayment(r) {
				return fmt.Errorf("%w: %s is already paid", ErrInvalidTransition, r.ID)
			}

			return nil
		},
		writes: func(r record.Record, now time.Time) []map[schema.Column]string {
			opening := map[schema.Column]string{schema.ColLiquidationStatus: string(record.LiquidationToBeLiquidated)}

			if interruptedPayment(r) {
				fill := map[schema.Column]string{}
				if r.Payment.Method == "" {
					fill[schema.ColPaymentMethod] = method
				}

				if r.Payment.Date == nil {
					fill[schema.ColPaymentDate] = e.codec.FormatDate(now)
				}

				if len(fill) == 0 {
					return []map[schema.Column]string{opening}
				}

				return []map[schema.Column]string{fill, opening}
			}

			return []map[schema.Column]string{
				{schema.ColPaymentDate: e.codec.FormatDate(now), schema.ColPaymentMethod: method},
				{schema.ColPaymentStatus: string(record.PaymentIssued)},
				opening,
			}
		},
	})
}

// Liquidate records what was actually spent against an issued payment. The returned amount is
// amount - requestedAmount and may be negative.
func (e *Engine) Liquidate(ctx context.Context, id string, amount int64, invoiceRef string) (record.Record, error) {
	return e.apply(ctx, id, transition{
		name: "liquidate",
		guard: func(r record.Record) error {
			if r.Liquidation.Status != record.LiquidationToBeLiquidated {
				return fmt.Errorf("%w: %s is not awaiting liquidation", ErrInvalidTransition, r.ID)
			}

			if amount != 0 && !schema.SignMatches(r.Type, amount) {
				return &schema.ValidationError{
					Field:  schema.ColLiquidatedAmount.Field(),
					Reason: fmt.Sprintf("sign does not match %s", r.Type),
				}
			}

			return nil
		},
		writes: func(r record.Record, now time.Time) []map[schema.Column]string {
			return []map[schema.Column]string{
				{
					schema.ColLiquidatedAmount: schema.FormatAmount(amount),
					schema.ColLiquidationDate:  e.codec.FormatDate(now),
					schema.ColInvoiceRef:       strings.TrimSpace(invoiceRef),
					schema.ColReturnedAmount:   schema.FormatAmount(amount - r.RequestedAmount),
				},
				{schema.ColLiquidationStatus: string(record.LiquidationLiquidated)},
			}
		},
	})
}
