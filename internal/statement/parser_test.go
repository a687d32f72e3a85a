package statement_test

import (
	"strings"
	"testing"
	"time"

	"github.com/fyodorvi/gem-guru/internal/domain"
	"github.com/fyodorvi/gem-guru/internal/statement"
	"github.com/shopspring/decimal"
)

const sampleStatement = `Gem Visa
Statement period: 12/05/2025 to 11/06/2025
Due date: 25/06/2025

Unexpired Gem Visa promotional transactions
Statement dateTotal purchaseOutstanding balancePromotion ExpiryDescription
18/09/2023$908.00$465.4517/09/2025Apple Financial Services
06/05/2025$1,364.00$1,364.0021/11/2025Harvey Norman
6 months interest free Monthly payments required
11/01/2024$2,000.00$1,500.0011/01/2026Noel Leeming
Fixed payment $45.00 required

Other transactions
12/05/2025$59.00$59.0012/05/2026Some Cafe
`

func TestParse_ExtractsAllPurchases(t *testing.T) {
	result := statement.Parse(sampleStatement)

	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Error)
	}
	if len(result.ParsedPurchases) != 3 {
		t.Fatalf("expected 3 purchases, got %d", len(result.ParsedPurchases))
	}

	apple := result.ParsedPurchases[0]
	if apple.Name != "Apple Financial Services" {
		t.Errorf("expected name 'Apple Financial Services', got %q", apple.Name)
	}
	if apple.Total != 90800 {
		t.Errorf("expected total 90800 cents, got %d", apple.Total)
	}
	if apple.Remaining != 46545 {
		t.Errorf("expected remaining 46545 cents, got %d", apple.Remaining)
	}
	if !apple.StartDate.Equal(time.Date(2023, time.September, 18, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected start date 2023-09-18, got %v", apple.StartDate.Time)
	}
	if !apple.ExpiryDate.Equal(time.Date(2025, time.September, 17, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected expiry date 2025-09-17, got %v", apple.ExpiryDate.Time)
	}
	if apple.PaymentType != domain.PaymentTypeNone {
		t.Errorf("expected no payment terms, got %q", apple.PaymentType)
	}
}

func TestParse_ThousandsSeparatorHandled(t *testing.T) {
	result := statement.Parse(sampleStatement)

	harvey := result.ParsedPurchases[1]
	if harvey.Total != 136400 {
		t.Errorf("expected total 136400 cents, got %d", harvey.Total)
	}
	if harvey.Remaining != 136400 {
		t.Errorf("expected remaining 136400 cents, got %d", harvey.Remaining)
	}
}

func TestParse_MonthlyPaymentTerms(t *testing.T) {
	result := statement.Parse(sampleStatement)

	harvey := result.ParsedPurchases[1]
	if harvey.Name != "Harvey Norman" {
		t.Errorf("expected name 'Harvey Norman', got %q", harvey.Name)
	}
	if harvey.PaymentType != domain.PaymentTypeMonthly {
		t.Errorf("expected monthly payment type, got %q", harvey.PaymentType)
	}
	if harvey.InterestFreeMonths != 6 {
		t.Errorf("expected 6 interest free months, got %d", harvey.InterestFreeMonths)
	}
}

func TestParse_FixedPaymentTerms(t *testing.T) {
	result := statement.Parse(sampleStatement)

	noel := result.ParsedPurchases[2]
	if noel.Name != "Noel Leeming" {
		t.Errorf("expected name 'Noel Leeming', got %q", noel.Name)
	}
	if noel.PaymentType != domain.PaymentTypeFixed {
		t.Errorf("expected fixed payment type, got %q", noel.PaymentType)
	}
	if !noel.MinimumPayment.Equal(decimal.NewFromInt(45)) {
		t.Errorf("expected fixed payment of $45, got %s", noel.MinimumPayment)
	}
}

func TestParse_DueDateExtracted(t *testing.T) {
	result := statement.Parse(sampleStatement)

	if result.DueDate == nil {
		t.Fatal("expected due date extracted")
	}
	if !result.DueDate.Equal(time.Date(2025, time.June, 25, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected due date 2025-06-25, got %v", result.DueDate.Time)
	}
}

func TestParse_SectionEndsAtBlankLine(t *testing.T) {
	result := statement.Parse(sampleStatement)

	for _, p := range result.ParsedPurchases {
		if p.Name == "Some Cafe" {
			t.Error("expected lines after the section break to be ignored")
		}
	}
}

func TestParse_MissingSection(t *testing.T) {
	result := statement.Parse("Some other bank statement\nDue date: 25/06/2025\n")

	if result.Success {
		t.Error("expected failure without the promotional section")
	}
	if result.Error == "" {
		t.Error("expected an error message")
	}
	if result.DueDate == nil {
		t.Error("expected due date extracted even on failure")
	}
}

func TestParse_EmptySectionReportsError(t *testing.T) {
	text := "Unexpired Gem Visa promotional transactions\nStatement dateDescription\n\nrest of statement"
	result := statement.Parse(text)

	if result.Success {
		t.Error("expected failure with no parseable rows")
	}
	if len(result.ParsedPurchases) != 0 {
		t.Errorf("expected no purchases, got %d", len(result.ParsedPurchases))
	}
	// The section text is appended for diagnosis.
	if len(result.ExtractedSections) != 2 {
		t.Errorf("expected 2 extracted sections, got %d", len(result.ExtractedSections))
	}
}

func TestParse_InvalidAmountsSkipped(t *testing.T) {
	// Outstanding above total is not a valid promotional balance.
	text := strings.Join([]string{
		"Unexpired Gem Visa promotional transactions",
		"Statement dateTotal purchaseOutstanding balancePromotion ExpiryDescription",
		"18/09/2023$100.00$250.0017/09/2025Broken Line",
		"18/09/2023$908.00$465.4517/09/2025Apple Financial Services",
		"",
	}, "\n")

	result := statement.Parse(text)
	if len(result.ParsedPurchases) != 1 {
		t.Fatalf("expected 1 valid purchase, got %d", len(result.ParsedPurchases))
	}
	if result.ParsedPurchases[0].Name != "Apple Financial Services" {
		t.Errorf("expected only the valid row, got %q", result.ParsedPurchases[0].Name)
	}
}

func TestParse_GenericNameFallback(t *testing.T) {
	text := strings.Join([]string{
		"Unexpired Gem Visa promotional transactions",
		"Statement dateTotal purchaseOutstanding balancePromotion ExpiryDescription",
		"18/09/2023$908.00$465.4517/09/2025",
		"",
	}, "\n")

	result := statement.Parse(text)
	if len(result.ParsedPurchases) != 1 {
		t.Fatalf("expected 1 purchase, got %d", len(result.ParsedPurchases))
	}
	if result.ParsedPurchases[0].Name != "Purchase 18/09/2023" {
		t.Errorf("expected generic fallback name, got %q", result.ParsedPurchases[0].Name)
	}
}
