package schema

import (
	"errors"
	"strings"
)

// Column is a 1-based position in the store row.
type Column int

const (
	ColID Column = iota + 1
	ColType
	ColCategory
	ColRequestMode
	ColRequester
	ColProject
	ColBudgetLine
	ColPurpose
	ColDetail
	ColRequestedAmount
	ColSubmissionDate
	ColApprovalStatus
	ColApprovalDate
	ColPaymentStatus
	ColPaymentDate
	ColPaymentMethod
	ColLiquidationStatus
	ColLiquidatedAmount
	ColLiquidationDate
	ColInvoiceRef
	ColReturnedAmount
	ColRelatedRequestID
	ColSupplier
	ColContribution
	ColRemarks
	// Engine-owned columns follow the legacy layout so positions 1-25 never move.
	ColRowToken
	ColClaim
)

const (
	// LegacyWidth is the number of columns of the original sheet layout.
	LegacyWidth = int(ColRemarks)
	// Width is the number of cells in an encoded row.
	Width = int(ColClaim)
)

var ErrSchemaMismatch = errors.New("row does not match schema")

type column struct {
	field  string
	header string
}

// layout is indexed by Column-1.
var layout = [Width]column{
	{"id", "TRX ID"},
	{"type", "TRX type"},
	{"category", "TRX category"},
	{"requestMode", "Request/Direct"},
	{"requester", "Requester name"},
	{"project", "Project name"},
	{"budgetLine", "Budget line"},
	{"purpose", "Purpose"},
	{"detail", "Detail"},
	{"requestedAmount", "Requested Amount"},
	{"submissionDate", "Request submission date"},
	{"approvalStatus", "Approval Status"},
	{"approvalDate", "Approval date"},
	{"paymentStatus", "Payment status"},
	{"paymentDate", "Payment date"},
	{"paymentMethod", "Payment method"},
	{"liquidationStatus", "Liquidation status"},
	{"liquidatedAmount", "Liquidated amount"},
	{"liquidationDate", "Liquidation date"},
	{"invoiceRef", "Liquidated invoices"},
	{"returnedAmount", "Returned amount"},
	{"relatedRequestId", "Related request ID"},
	{"supplier", "Supplier/Donor"},
	{"contribution", "Contribution"},
	{"remarks", "Remarks"},
	{"rowToken", "Row token"},
	{"claim", "Claim"},
}

var (
	byField  = make(map[string]Column, Width)
	byHeader = make(map[string]Column, Width)
)

func init() {
	for i, c := range layout {
		byField[strings.ToLower(c.field)] = Column(i + 1)
		byHeader[normalizeHeader(c.header)] = Column(i + 1)
	}
}

// ColumnIndex returns the 1-based position of a logical field name, or 0 when unknown.
// Lookups are case-insensitive.
func ColumnIndex(field string) int {
	return int(byField[strings.ToLower(strings.TrimSpace(field))])
}

// ColumnForHeader maps a sheet header (e.g. "Approval Status") to its column.
// Header drift between sheet variants ("Payment Status" vs "Payment status") is tolerated.
func ColumnForHeader(header string) (Column, bool) {
	c, ok := byHeader[normalizeHeader(header)]
	return c, ok
}

// Headers returns the header row written by backends that keep one.
func Headers() []string {
	out := make([]string, Width)
	for i, c := range layout {
		out[i] = c.header
	}

	return out
}

func (c Column) Field() string {
	if c < 1 || int(c) > Width {
		return ""
	}

	return layout[c-1].field
}

// Valid reports whether c is a position in the layout.
func (c Column) Valid() bool {
	return c >= 1 && int(c) <= Width
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}
