package plan_test

import (
	"testing"
	"time"

	"github.com/fyodorvi/gem-guru/internal/domain"
	"github.com/fyodorvi/gem-guru/internal/plan"
)

func amounts(p *domain.Projection) []int {
	out := make([]int, len(p.Months))
	for i, m := range p.Months {
		out[i] = m.AmountToPay
	}
	return out
}

func TestProject_TwelveMonths(t *testing.T) {
	proj := plan.Project(nil, settings(ts(2024, time.June, 1), ts(2024, time.May, 11)))
	if len(proj.Months) != 12 {
		t.Fatalf("expected 12 months, got %d", len(proj.Months))
	}
	if proj.Months[0].Date != "June 2024" {
		t.Errorf("expected first month 'June 2024', got %q", proj.Months[0].Date)
	}
	if proj.Months[11].Date != "May 2025" {
		t.Errorf("expected last month 'May 2025', got %q", proj.Months[11].Date)
	}
	for i, m := range proj.Months {
		if m.AmountToPay != 0 {
			t.Errorf("expected month %d empty with no purchases, got %d", i, m.AmountToPay)
		}
	}
}

func TestProject_SinglePurchasePaysDownToZero(t *testing.T) {
	purchases := []domain.Purchase{
		{
			ID:         "p1",
			Total:      1000,
			Remaining:  1000,
			StartDate:  ts(2024, time.April, 10),
			ExpiryDate: ts(2024, time.August, 2),
		},
	}
	proj := plan.Project(purchases, settings(ts(2024, time.June, 1), ts(2024, time.May, 11)))

	want := []int{334, 333, 333, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	got := amounts(proj)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("month %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestProject_FuturePurchaseJoinsAtStartMonth(t *testing.T) {
	purchases := []domain.Purchase{
		{
			ID:         "current",
			Total:      6000,
			Remaining:  6000,
			StartDate:  ts(2024, time.April, 10),
			ExpiryDate: ts(2024, time.September, 2),
		},
		{
			ID:         "upcoming",
			Total:      4000,
			Remaining:  4000,
			StartDate:  ts(2024, time.June, 15), // past the May 11 statement
			ExpiryDate: ts(2024, time.September, 2),
		},
	}
	proj := plan.Project(purchases, settings(ts(2024, time.June, 1), ts(2024, time.May, 11)))

	// June is the current purchase alone (6000 over 4). The upcoming
	// purchase joins in July and both amortize toward September.
	want := []int{1500, 2834, 2833, 2833, 0, 0, 0, 0, 0, 0, 0, 0}
	got := amounts(proj)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("month %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestProject_MinimumPaymentHonoredUntilSettled(t *testing.T) {
	purchases := []domain.Purchase{
		{
			ID:                "p1",
			Total:             1000,
			Remaining:         1000,
			StartDate:         ts(2024, time.April, 10),
			ExpiryDate:        ts(2024, time.August, 2),
			HasMinimumPayment: true,
			MinimumPayment:    450,
		},
	}
	proj := plan.Project(purchases, settings(ts(2024, time.June, 1), ts(2024, time.May, 11)))

	// 450 beats the 334 equal split, then 450 again, then the 100 tail.
	want := []int{450, 450, 100, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	got := amounts(proj)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("month %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestProject_DoesNotMutateInput(t *testing.T) {
	purchases := []domain.Purchase{
		{
			ID:         "p1",
			Remaining:  1000,
			StartDate:  ts(2024, time.April, 10),
			ExpiryDate: ts(2024, time.August, 2),
		},
	}
	plan.Project(purchases, settings(ts(2024, time.June, 1), ts(2024, time.May, 11)))
	if purchases[0].Remaining != 1000 {
		t.Errorf("expected caller's balance untouched, got %d", purchases[0].Remaining)
	}
}
