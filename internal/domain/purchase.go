// Package domain defines the core business entities for Gem Guru.
// These models are independent of transport and storage and represent the
// canonical data structures used throughout the service.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// ============================================================
// Timestamp
// ============================================================

// Timestamp is a UTC instant that tolerates the two wire formats the
// frontend and statement parser produce: full RFC3339 datetimes
// ("2024-01-15T00:00:00.000Z") and bare calendar dates ("2024-01-15").
// Bare dates are read as midnight UTC. It always marshals as RFC3339.
type Timestamp struct {
	time.Time
}

// NewTimestamp builds a day-precision Timestamp at midnight UTC.
func NewTimestamp(year int, month time.Month, day int) Timestamp {
	return Timestamp{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseTimestamp accepts RFC3339 (with or without fractional seconds) or a
// bare "2006-01-02" date.
func ParseTimestamp(s string) (Timestamp, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Timestamp{t.UTC()}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return Timestamp{t}, nil
	}
	return Timestamp{}, fmt.Errorf("unrecognized datetime %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + t.UTC().Format("2006-01-02T15:04:05.000Z07:00") + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed.Time
	return nil
}

// ============================================================
// Purchase
// ============================================================

// Purchase is a single interest-free installment plan. All amounts are
// integer cents. The balance must reach zero before ExpiryDate, or the bank
// starts charging interest on it.
type Purchase struct {
	ID                string    `json:"id,omitempty"`
	Name              string    `json:"name"`
	Total             int       `json:"total"`
	Remaining         int       `json:"remaining"`
	StartDate         Timestamp `json:"startDate"`
	ExpiryDate        Timestamp `json:"expiryDate"`
	HasMinimumPayment bool      `json:"hasMinimumPayment"`
	MinimumPayment    int       `json:"minimumPayment,omitempty"`
}

// ============================================================
// Profile settings
// ============================================================

// ProfileSettings holds the user's billing cycle anchors. PaymentDueDate is
// the next scheduled aggregate payment; StatementDate is the most recent
// statement close. PaymentDay is the legacy day-of-month schema, migrated on
// read (see plan.NormalizeSettings).
type ProfileSettings struct {
	PaymentDueDate Timestamp `json:"paymentDueDate"`
	StatementDate  Timestamp `json:"statementDate"`
	PaymentDay     int       `json:"paymentDay,omitempty"`
}

// UserData is the single per-user persistence record.
type UserData struct {
	Purchases []Purchase      `json:"purchases"`
	Settings  ProfileSettings `json:"profileSettings"`
}

// DefaultSettings is the first-access profile: due date on the first of the
// month after now, statement date three weeks before that.
func DefaultSettings(now time.Time) ProfileSettings {
	due := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return ProfileSettings{
		PaymentDueDate: Timestamp{due},
		StatementDate:  Timestamp{due.AddDate(0, 0, -21)},
	}
}

// ============================================================
// Calculation & projection (computed, never persisted)
// ============================================================

// CalculatedPurchase is a purchase annotated with its share of the current
// cycle's payment and its repayment progress.
type CalculatedPurchase struct {
	Purchase
	NextPayment   int `json:"nextPayment"`
	PaymentsTotal int `json:"paymentsTotal"`
	PaymentsDone  int `json:"paymentsDone"`
}

// Calculation is the full "what do I owe this cycle" report.
type Calculation struct {
	TotalRemaining   int                  `json:"totalRemaining"`
	TotalNextPayment int                  `json:"totalNextPayment"`
	NextPaymentDate  Timestamp            `json:"nextPaymentDate"`
	StatementDate    Timestamp            `json:"statementDate"`
	Purchases        []CalculatedPurchase `json:"purchases"`
}

// ProjectionMonth is one simulated future cycle.
type ProjectionMonth struct {
	Date        string `json:"date"` // "January 2024"
	AmountToPay int    `json:"amountToPay"`
}

// Projection is the 12-month forward amount-due forecast, earliest first.
type Projection struct {
	Months []ProjectionMonth `json:"months"`
}
