package record

import (
	"time"

	"github.com/MrJamesThe3rd/fundflow/internal/record"
)

type recordResponse struct {
	ID               string              `json:"id"`
	Row              int                 `json:"row"`
	Type             record.Type         `json:"type"`
	Category         string              `json:"category,omitempty"`
	Mode             record.RequestMode  `json:"request_mode"`
	Requester        string              `json:"requester,omitempty"`
	Project          string              `json:"project,omitempty"`
	BudgetLine       string              `json:"budget_line,omitempty"`
	Purpose          string              `json:"purpose"`
	Detail           string              `json:"detail,omitempty"`
	RequestedAmount  int64               `json:"requested_amount"`
	CreatedAt        *time.Time          `json:"created_at,omitempty"`
	Stage            record.Stage        `json:"stage"`
	Approval         approvalResponse    `json:"approval"`
	Payment          paymentResponse     `json:"payment"`
	Liquidation      liquidationResponse `json:"liquidation"`
	RelatedRequestID string              `json:"related_request_id,omitempty"`
	Supplier         string              `json:"supplier,omitempty"`
	Contribution     string              `json:"contribution,omitempty"`
	Remarks          string              `json:"remarks,omitempty"`
}

type approvalResponse struct {
	Status record.ApprovalStatus `json:"status"`
	Date   *time.Time            `json:"date,omitempty"`
}

type paymentResponse struct {
	Issued bool       `json:"issued"`
	Method string     `json:"method,omitempty"`
	Date   *time.Time `json:"date,omitempty"`
}

type liquidationResponse struct {
	Status         record.LiquidationStatus `json:"status,omitempty"`
	Amount         *int64                   `json:"amount,omitempty"`
	Date           *time.Time               `json:"date,omitempty"`
	InvoiceRef     string                   `json:"invoice_ref,omitempty"`
	ReturnedAmount *int64                   `json:"returned_amount,omitempty"`
}

func toResponse(r record.Record) recordResponse {
	resp := recordResponse{
		ID:               r.ID,
		Row:              r.Row,
		Type:             r.Type,
		Category:         r.Category,
		Mode:             r.Mode,
		Requester:        r.Requester,
		Project:          r.Project,
		BudgetLine:       r.BudgetLine,
		Purpose:          r.Purpose,
		Detail:           r.Detail,
		RequestedAmount:  r.RequestedAmount,
		Stage:            r.Stage(),
		RelatedRequestID: r.RelatedRequestID,
		Supplier:         r.Supplier,
		Contribution:     r.Contribution,
		Remarks:          r.Remarks,
		Approval: approvalResponse{
			Status: r.Approval.Status,
			Date:   r.Approval.Date,
		},
		Payment: paymentResponse{
			Issued: r.Payment.Status == record.PaymentIssued,
			Method: r.Payment.Method,
			Date:   r.Payment.Date,
		},
		Liquidation: liquidationResponse{
			Status:         r.Liquidation.Status,
			Amount:         r.Liquidation.Amount,
			Date:           r.Liquidation.Date,
			InvoiceRef:     r.Liquidation.InvoiceRef,
			ReturnedAmount: r.Liquidation.ReturnedAmount,
		},
	}

	if !r.CreatedAt.IsZero() {
		resp.CreatedAt = &r.CreatedAt
	}

	return resp
}

func toResponseList(records []record.Record) []recordResponse {
	resp := make([]recordResponse, len(records))
	for i, r := range records {
		resp[i] = toResponse(r)
	}

	return resp
}
