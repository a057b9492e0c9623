package schema

import (
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/fundflow/internal/record"
)

// ValidationError reports malformed input. It is never retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(col Column, reason string) error {
	return &ValidationError{Field: col.Field(), Reason: reason}
}

// Validate checks required fields, the amount sign convention and the cross-axis
// invariants of a record. Requests need a requester, project, purpose and a non-zero
// requested amount whose sign matches the type; direct entries need a purpose, a payment
// method and a liquidated amount.
func Validate(r record.Record) error {
	if r.ID != "" {
		if _, ok := record.ParseID(r.ID); !ok {
			return invalid(ColID, fmt.Sprintf("%q is not of the form TRX-NNNN", r.ID))
		}
	}

	if r.Type != record.TypeIncome && r.Type != record.TypeExpense {
		return invalid(ColType, fmt.Sprintf("must be %s or %s", record.TypeIncome, record.TypeExpense))
	}

	if strings.TrimSpace(r.Purpose) == "" {
		return invalid(ColPurpose, "is required")
	}

	switch r.Mode {
	case record.ModeRequest:
		if err := validateRequest(r); err != nil {
			return err
		}
	case record.ModeDirect:
		if err := validateDirect(r); err != nil {
			return err
		}
	default:
		return invalid(ColRequestMode, fmt.Sprintf("unknown mode %q", r.Mode))
	}

	return CheckInvariants(r)
}

func validateRequest(r record.Record) error {
	if strings.TrimSpace(r.Requester) == "" {
		return invalid(ColRequester, "is required")
	}

	if strings.TrimSpace(r.Project) == "" {
		return invalid(ColProject, "is required")
	}

	if r.RequestedAmount == 0 {
		return invalid(ColRequestedAmount, "must not be zero")
	}

	if !SignMatches(r.Type, r.RequestedAmount) {
		return invalid(ColRequestedAmount, signReason(r.Type))
	}

	return nil
}

func validateDirect(r record.Record) error {
	if strings.TrimSpace(r.Payment.Method) == "" {
		return invalid(ColPaymentMethod, "is required")
	}

	if r.Liquidation.Amount == nil || *r.Liquidation.Amount == 0 {
		return invalid(ColLiquidatedAmount, "must not be zero")
	}

	if !SignMatches(r.Type, *r.Liquidation.Amount) {
		return invalid(ColLiquidatedAmount, signReason(r.Type))
	}

	return nil
}

func signReason(t record.Type) string {
	if t == record.TypeExpense {
		return "must be negative for expenses"
	}

	return "must be positive for incomes"
}

// ValidateStored checks a record taken from an existing sheet: a well-formed id, a known type
// and the cross-axis invariants. Legacy rows are not held to the submission rules.
func ValidateStored(r record.Record) error {
	if _, ok := record.ParseID(r.ID); !ok {
		return invalid(ColID, fmt.Sprintf("%q is not of the form TRX-NNNN", r.ID))
	}

	if r.Type != record.TypeIncome && r.Type != record.TypeExpense {
		return invalid(ColType, fmt.Sprintf("must be %s or %s", record.TypeIncome, record.TypeExpense))
	}

	return CheckInvariants(r)
}

// SignMatches reports whether amount follows the sign convention of t: expenses negative,
// incomes positive. Zero matches neither.
func SignMatches(t record.Type, amount int64) bool {
	if t == record.TypeExpense {
		return amount < 0
	}

	return amount > 0
}

// CheckInvariants verifies the cross-axis rules every record at rest must satisfy:
// issued implies approved, any liquidation status implies issued, and a liquidated
// record carries its amount with returned = liquidated - requested.
func CheckInvariants(r record.Record) error {
	if r.Payment.Status == record.PaymentIssued && r.Approval.Status != record.ApprovalApproved {
		return invalid(ColPaymentStatus, "issued payment requires an approved record")
	}

	if r.Liquidation.Status != record.LiquidationNotApplicable && r.Payment.Status != record.PaymentIssued {
		return invalid(ColLiquidationStatus, "liquidation requires an issued payment")
	}

	if r.Liquidation.Status != record.LiquidationLiquidated {
		return nil
	}

	if r.Liquidation.Amount == nil {
		return invalid(ColLiquidatedAmount, "liquidated record has no amount")
	}

	if r.Mode == record.ModeDirect {
		return nil
	}

	want := *r.Liquidation.Amount - r.RequestedAmount
	if r.Liquidation.ReturnedAmount == nil || *r.Liquidation.ReturnedAmount != want {
		return invalid(ColReturnedAmount, fmt.Sprintf("must equal %d", want))
	}

	return nil
}
