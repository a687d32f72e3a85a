package domain

import "github.com/shopspring/decimal"

// ============================================================
// Statement parsing
// ============================================================

// Payment requirement types a statement line can advertise.
const (
	PaymentTypeNone    = "none"
	PaymentTypeFixed   = "fixed"
	PaymentTypeMonthly = "monthly"
)

// ParsedPurchase is one promotional-transaction line lifted from a statement.
// Total and Remaining are cents; MinimumPayment is the raw dollar figure as
// printed ("Fixed payment $45.00 required"), converted to cents by the
// service when PaymentType is "fixed".
type ParsedPurchase struct {
	Name               string          `json:"name"`
	Total              int             `json:"total"`
	Remaining          int             `json:"remaining"`
	StartDate          Timestamp       `json:"startDate"`
	ExpiryDate         Timestamp       `json:"expiryDate"`
	MinimumPayment     decimal.Decimal `json:"minimumPayment,omitempty"`
	InterestFreeMonths int             `json:"interestFreeMonths,omitempty"`
	PaymentType        string          `json:"paymentType,omitempty"`
}

// StatementParseResult is the structured outcome of parsing one statement.
// Parse failures are data, not errors: Success=false plus a human-readable
// reason, with ExtractedSections retained for diagnosis.
type StatementParseResult struct {
	Success           bool             `json:"success"`
	Error             string           `json:"error,omitempty"`
	ParsedPurchases   []ParsedPurchase `json:"parsedPurchases"`
	ExtractedSections []string         `json:"extractedSections"`
	DueDate           *Timestamp       `json:"dueDate,omitempty"`
	StatementDate     *Timestamp       `json:"statementDate,omitempty"`
	CurrentDueDate    *Timestamp       `json:"currentDueDate,omitempty"`
	UpsertSummary     *UpsertSummary   `json:"upsertSummary,omitempty"`
	InterimResult     *InterimResult   `json:"interimResult,omitempty"`
	Calculation       *Calculation     `json:"calculation,omitempty"`
}

// StatementRequest is the upload body for POST /v1/statement/parse.
type StatementRequest struct {
	FileName string `json:"fileName"`
	FileSize int    `json:"fileSize"`
	MimeType string `json:"mimeType"`
	FileData string `json:"fileData"` // base64-encoded PDF
}

// ============================================================
// Reconciliation output
// ============================================================

// NewPurchaseSummary describes a parsed purchase with no stored match.
type NewPurchaseSummary struct {
	Name               string    `json:"name"`
	Total              int       `json:"total"`
	Remaining          int       `json:"remaining"`
	StartDate          Timestamp `json:"startDate"`
	ExpiryDate         Timestamp `json:"expiryDate"`
	MinimumPayment     int       `json:"minimumPayment,omitempty"`
	InterestFreeMonths int       `json:"interestFreeMonths,omitempty"`
	PaymentType        string    `json:"paymentType"`
}

// UpdatedPurchaseSummary describes a balance change on a matched purchase.
type UpdatedPurchaseSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	OldRemaining int    `json:"oldRemaining"`
	NewRemaining int    `json:"newRemaining"`
}

// PaidOffPurchaseSummary describes a purchase the statement says is settled.
type PaidOffPurchaseSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Total     int    `json:"total"`
	Remaining int    `json:"remaining"` // balance before settling
}

// InterimResult is the non-destructive preview diff shown before applying a
// statement.
type InterimResult struct {
	NewPurchases     []NewPurchaseSummary     `json:"newPurchases"`
	UpdatedPurchases []UpdatedPurchaseSummary `json:"updatedPurchases"`
	PaidOffPurchases []PaidOffPurchaseSummary `json:"paidOffPurchases"`
}

// UpsertSummary reports what a statement application changed, for user-facing
// reporting only.
type UpsertSummary struct {
	Added              int                      `json:"added"`
	Updated            int                      `json:"updated"`
	PotentiallyPaidOff int                      `json:"potentiallyPaidOff"`
	AddedPurchases     []string                 `json:"addedPurchases"`
	UpdatedPurchases   []string                 `json:"updatedPurchases"`
	PaidOffPurchases   []PaidOffPurchaseSummary `json:"potentiallyPaidOffPurchases"`
}
