package record

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Type represents the direction of a transaction (income or expense).
type Type string

const (
	TypeIncome  Type = "Income"
	TypeExpense Type = "Expense"
)

// RequestMode tells whether a record went through the request flow or was recorded directly.
type RequestMode string

const (
	ModeRequest RequestMode = "Request based"
	ModeDirect  RequestMode = "Direct payment"
)

// ApprovalStatus is the approval axis of a record.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "Pending"
	ApprovalApproved ApprovalStatus = "Approved"
	ApprovalDeclined ApprovalStatus = "Declined"
)

// PaymentStatus is the payment axis of a record. The empty value means not issued.
type PaymentStatus string

const (
	PaymentNotIssued PaymentStatus = ""
	PaymentIssued    PaymentStatus = "Issued"
)

// LiquidationStatus is the liquidation axis of a record. The empty value means not applicable.
type LiquidationStatus string

const (
	LiquidationNotApplicable  LiquidationStatus = ""
	LiquidationToBeLiquidated LiquidationStatus = "To be liquidated"
	LiquidationLiquidated     LiquidationStatus = "Liquidated"
)

type Approval struct {
	Status ApprovalStatus
	Date   *time.Time
}

type Payment struct {
	Status PaymentStatus
	Method string
	Date   *time.Time
}

type Liquidation struct {
	Status         LiquidationStatus
	Amount         *int64
	Date           *time.Time
	InvoiceRef     string
	ReturnedAmount *int64
}

// Record is one financial transaction row with its full lifecycle state.
// Amounts are whole currency units; expenses are negative and incomes positive.
type Record struct {
	ID               string
	Type             Type
	Category         string
	Mode             RequestMode
	Requester        string
	Project          string
	BudgetLine       string
	Purpose          string
	Detail           string
	RequestedAmount  int64
	CreatedAt        time.Time
	Approval         Approval
	Payment          Payment
	Liquidation      Liquidation
	RelatedRequestID string
	Supplier         string
	Contribution     string
	Remarks          string

	// Row is the 1-based position of the record in the store; zero until persisted.
	Row int
	// Token identifies the appended row independently of its id.
	Token string
	// Claim is the raw transition claim cell, empty when unclaimed.
	Claim string
}

// Stage is the lifecycle position derived from the three status axes.
type Stage string

const (
	StagePendingApproval     Stage = "pending_approval"
	StageDeclined            Stage = "declined"
	StageAwaitingPayment     Stage = "awaiting_payment"
	StageAwaitingLiquidation Stage = "awaiting_liquidation"
	StageLiquidated          Stage = "liquidated"
)

// Stages lists every stage in lifecycle order.
var Stages = []Stage{
	StagePendingApproval,
	StageAwaitingPayment,
	StageAwaitingLiquidation,
	StageLiquidated,
	StageDeclined,
}

// ParseStage accepts a stage name case-insensitively, with hyphens or underscores.
func ParseStage(s string) (Stage, bool) {
	s = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")

	for _, stage := range Stages {
		if string(stage) == s {
			return stage, true
		}
	}

	return "", false
}

func (r Record) Stage() Stage {
	switch {
	case r.Liquidation.Status == LiquidationLiquidated:
		return StageLiquidated
	case r.Liquidation.Status == LiquidationToBeLiquidated:
		return StageAwaitingLiquidation
	case r.Approval.Status == ApprovalDeclined:
		return StageDeclined
	case r.Approval.Status == ApprovalApproved:
		// Issued without a liquidation status is an interrupted payment and still awaits completion.
		return StageAwaitingPayment
	default:
		return StagePendingApproval
	}
}

const idPrefix = "TRX-"

// FormatID renders the n-th transaction identifier, e.g. TRX-0001.
func FormatID(n int) string {
	return fmt.Sprintf("%s%04d", idPrefix, n)
}

// ParseID extracts the sequence number from an identifier such as TRX-0042.
func ParseID(id string) (int, bool) {
	id = strings.TrimSpace(id)
	if len(id) <= len(idPrefix) || !strings.EqualFold(id[:len(idPrefix)], idPrefix) {
		return 0, false
	}

	n, err := strconv.Atoi(id[len(idPrefix):])
	if err != nil || n <= 0 {
		return 0, false
	}

	return n, true
}
