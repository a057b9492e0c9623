package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/fundflow/internal/record"
)

// DateLayout is the timestamp format written to date cells.
const DateLayout = "2006-01-02 15:04:05"

var dateLayouts = []string{DateLayout, time.DateOnly, time.RFC3339Nano, "2006-01-02T15:04:05"}

// Codec converts between records and store rows. Dates are written in Location.
type Codec struct {
	Location *time.Location
}

func NewCodec(loc *time.Location) Codec {
	if loc == nil {
		loc = time.UTC
	}

	return Codec{Location: loc}
}

// Encode renders a record as a full row of Width cells.
func (c Codec) Encode(r record.Record) []string {
	cells := make([]string, Width)
	set := func(col Column, v string) { cells[col-1] = v }

	set(ColID, r.ID)
	set(ColType, string(r.Type))
	set(ColCategory, r.Category)
	set(ColRequestMode, string(r.Mode))
	set(ColRequester, r.Requester)
	set(ColProject, r.Project)
	set(ColBudgetLine, r.BudgetLine)
	set(ColPurpose, r.Purpose)
	set(ColDetail, r.Detail)
	set(ColRequestedAmount, FormatAmount(r.RequestedAmount))
	set(ColSubmissionDate, c.FormatDate(r.CreatedAt))
	set(ColApprovalStatus, string(r.Approval.Status))
	set(ColApprovalDate, c.formatOptionalDate(r.Approval.Date))
	set(ColPaymentStatus, string(r.Payment.Status))
	set(ColPaymentDate, c.formatOptionalDate(r.Payment.Date))
	set(ColPaymentMethod, r.Payment.Method)
	set(ColLiquidationStatus, string(r.Liquidation.Status))
	set(ColLiquidatedAmount, formatOptionalAmount(r.Liquidation.Amount))
	set(ColLiquidationDate, c.formatOptionalDate(r.Liquidation.Date))
	set(ColInvoiceRef, r.Liquidation.InvoiceRef)
	set(ColReturnedAmount, formatOptionalAmount(r.Liquidation.ReturnedAmount))
	set(ColRelatedRequestID, r.RelatedRequestID)
	set(ColSupplier, r.Supplier)
	set(ColContribution, r.Contribution)
	set(ColRemarks, r.Remarks)
	set(ColRowToken, r.Token)
	set(ColClaim, r.Claim)

	if r.Mode == record.ModeDirect && r.RequestedAmount == 0 {
		cells[ColRequestedAmount-1] = ""
	}

	return cells
}

// Decode parses a store row into a record. Rows shorter than Width are padded with empty
// cells; extra trailing cells are ignored. Status strings are matched case-insensitively.
func (c Codec) Decode(position int, cells []string) (record.Record, error) {
	get := func(col Column) string {
		if int(col) > len(cells) {
			return ""
		}

		return strings.TrimSpace(cells[col-1])
	}

	r := record.Record{
		ID:               get(ColID),
		Category:         get(ColCategory),
		Requester:        get(ColRequester),
		Project:          get(ColProject),
		BudgetLine:       get(ColBudgetLine),
		Purpose:          get(ColPurpose),
		Detail:           get(ColDetail),
		RelatedRequestID: get(ColRelatedRequestID),
		Supplier:         get(ColSupplier),
		Contribution:     get(ColContribution),
		Remarks:          get(ColRemarks),
		Row:              position,
		Token:            get(ColRowToken),
		Claim:            get(ColClaim),
	}

	var err error

	if r.Type, err = parseType(get(ColType)); err != nil {
		return record.Record{}, mismatch(position, ColType, err)
	}

	r.Mode = parseMode(get(ColRequestMode))

	if r.RequestedAmount, err = ParseAmount(get(ColRequestedAmount)); err != nil {
		return record.Record{}, mismatch(position, ColRequestedAmount, err)
	}

	if created, err := c.parseOptionalDate(get(ColSubmissionDate)); err != nil {
		return record.Record{}, mismatch(position, ColSubmissionDate, err)
	} else if created != nil {
		r.CreatedAt = *created
	}

	if r.Approval.Status, err = parseApproval(get(ColApprovalStatus)); err != nil {
		return record.Record{}, mismatch(position, ColApprovalStatus, err)
	}

	// Legacy direct entries leave the approval cell blank; they never went through review.
	if r.Mode == record.ModeDirect && get(ColApprovalStatus) == "" {
		r.Approval.Status = record.ApprovalApproved
	}

	if r.Approval.Date, err = c.parseOptionalDate(get(ColApprovalDate)); err != nil {
		return record.Record{}, mismatch(position, ColApprovalDate, err)
	}

	if r.Payment.Status, err = parsePayment(get(ColPaymentStatus)); err != nil {
		return record.Record{}, mismatch(position, ColPaymentStatus, err)
	}

	if r.Payment.Date, err = c.parseOptionalDate(get(ColPaymentDate)); err != nil {
		return record.Record{}, mismatch(position, ColPaymentDate, err)
	}

	r.Payment.Method = get(ColPaymentMethod)

	if r.Liquidation.Status, err = parseLiquidation(get(ColLiquidationStatus)); err != nil {
		return record.Record{}, mismatch(position, ColLiquidationStatus, err)
	}

	if r.Liquidation.Amount, err = parseOptionalAmount(get(ColLiquidatedAmount)); err != nil {
		return record.Record{}, mismatch(position, ColLiquidatedAmount, err)
	}

	if r.Liquidation.Date, err = c.parseOptionalDate(get(ColLiquidationDate)); err != nil {
		return record.Record{}, mismatch(position, ColLiquidationDate, err)
	}

	r.Liquidation.InvoiceRef = get(ColInvoiceRef)

	if r.Liquidation.ReturnedAmount, err = parseOptionalAmount(get(ColReturnedAmount)); err != nil {
		return record.Record{}, mismatch(position, ColReturnedAmount, err)
	}

	return r, nil
}

func mismatch(position int, col Column, err error) error {
	return fmt.Errorf("%w: row %d column %s: %v", ErrSchemaMismatch, position, col.Field(), err)
}

func (c Codec) FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.In(c.Location).Format(DateLayout)
}

func (c Codec) formatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}

	return c.FormatDate(*t)
}

func (c Codec) parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, c.Location); err == nil {
			return &t, nil
		}
	}

	return nil, fmt.Errorf("unrecognised date %q", s)
}

// FormatAmount renders a whole-unit amount the way it is written to the store.
func FormatAmount(n int64) string {
	return strconv.FormatInt(n, 10)
}

func formatOptionalAmount(n *int64) string {
	if n == nil {
		return ""
	}

	return FormatAmount(*n)
}

// ParseAmount parses amounts such as "-500000", "-500,000" or "1234.50" into whole units.
// Empty cells parse as zero.
func ParseAmount(s string) (int64, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if clean == "" {
		return 0, nil
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}

	return d.Round(0).IntPart(), nil
}

func parseOptionalAmount(s string) (*int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	n, err := ParseAmount(s)
	if err != nil {
		return nil, err
	}

	return &n, nil
}

func parseType(s string) (record.Type, error) {
	switch strings.ToLower(s) {
	case "income":
		return record.TypeIncome, nil
	case "expense":
		return record.TypeExpense, nil
	}

	return "", fmt.Errorf("unknown type %q", s)
}

func parseMode(s string) record.RequestMode {
	if strings.HasPrefix(strings.ToLower(s), "direct") {
		return record.ModeDirect
	}

	return record.ModeRequest
}

// ParseApproval maps a case-insensitive approval string to its canonical value.
func ParseApproval(s string) (record.ApprovalStatus, error) {
	return parseApproval(strings.TrimSpace(s))
}

func parseApproval(s string) (record.ApprovalStatus, error) {
	switch strings.ToLower(s) {
	case "", "pending":
		return record.ApprovalPending, nil
	case "approved":
		return record.ApprovalApproved, nil
	case "declined":
		return record.ApprovalDeclined, nil
	}

	return "", fmt.Errorf("unknown approval status %q", s)
}

func parsePayment(s string) (record.PaymentStatus, error) {
	switch strings.ToLower(s) {
	// Older sheet variants wrote "Pending" here once a request was approved.
	case "", "pending":
		return record.PaymentNotIssued, nil
	case "issued":
		return record.PaymentIssued, nil
	}

	return "", fmt.Errorf("unknown payment status %q", s)
}

func parseLiquidation(s string) (record.LiquidationStatus, error) {
	switch strings.ToLower(s) {
	case "":
		return record.LiquidationNotApplicable, nil
	case "to be liquidated":
		return record.LiquidationToBeLiquidated, nil
	case "liquidated":
		return record.LiquidationLiquidated, nil
	}

	return "", fmt.Errorf("unknown liquidation status %q", s)
}
