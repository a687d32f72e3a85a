package plan_test

import (
	"testing"
	"time"

	"github.com/fyodorvi/gem-guru/internal/domain"
	"github.com/fyodorvi/gem-guru/internal/plan"
)

func TestItemRepayment_EqualSplitRoundsUp(t *testing.T) {
	due := date(2024, time.June, 1)

	p := domain.Purchase{Remaining: 1000, ExpiryDate: ts(2024, time.August, 2)}
	if got := plan.ItemRepayment(p, due); got != 334 {
		t.Errorf("expected 334 over 3 payments, got %d", got)
	}

	p.ExpiryDate = ts(2024, time.July, 2)
	if got := plan.ItemRepayment(p, due); got != 500 {
		t.Errorf("expected 500 over 2 payments, got %d", got)
	}
}

func TestItemRepayment_PastExpiryDemandsFullBalance(t *testing.T) {
	p := domain.Purchase{Remaining: 750, ExpiryDate: ts(2024, time.March, 1)}
	if got := plan.ItemRepayment(p, date(2024, time.June, 1)); got != 750 {
		t.Errorf("expected full balance 750, got %d", got)
	}
}

func TestItemRepayment_MinimumRaisesEqualSplit(t *testing.T) {
	p := domain.Purchase{
		Remaining:         1000,
		ExpiryDate:        ts(2024, time.August, 2),
		HasMinimumPayment: true,
		MinimumPayment:    700,
	}
	if got := plan.ItemRepayment(p, date(2024, time.June, 1)); got != 700 {
		t.Errorf("expected minimum 700 to win over equal split, got %d", got)
	}
}

func TestItemRepayment_MinimumCappedAtRemaining(t *testing.T) {
	p := domain.Purchase{
		Remaining:         150,
		ExpiryDate:        ts(2024, time.August, 2),
		HasMinimumPayment: true,
		MinimumPayment:    300,
	}
	if got := plan.ItemRepayment(p, date(2024, time.June, 1)); got != 150 {
		t.Errorf("expected payment capped at remaining 150, got %d", got)
	}
}

func TestEqualSplitTotal_SkipsSettledPurchases(t *testing.T) {
	due := date(2024, time.June, 1)
	purchases := []domain.Purchase{
		{ID: "a", Remaining: 1000, ExpiryDate: ts(2024, time.July, 2)},
		{ID: "b", Remaining: 0, ExpiryDate: ts(2024, time.July, 2)},
	}
	if got := plan.EqualSplitTotal(purchases, due); got != 500 {
		t.Errorf("expected 500, got %d", got)
	}
}

func TestDistribute_MinimumsFirst(t *testing.T) {
	due := date(2024, time.June, 1)
	purchases := []domain.Purchase{
		{ID: "min", Remaining: 10000, ExpiryDate: ts(2025, time.June, 2), HasMinimumPayment: true, MinimumPayment: 4500},
		{ID: "flex", Remaining: 10000, ExpiryDate: ts(2024, time.August, 2)},
	}

	got := plan.Distribute(purchases, 5000, due)
	if got["min"] != 4500 {
		t.Errorf("expected contractual minimum 4500 first, got %d", got["min"])
	}
	if got["flex"] != 500 {
		t.Errorf("expected leftover 500 for flex purchase, got %d", got["flex"])
	}
}

func TestDistribute_FloorIsTwentyDollarsOrThreePercent(t *testing.T) {
	due := date(2024, time.June, 1)
	purchases := []domain.Purchase{
		{ID: "small", Remaining: 30000, ExpiryDate: ts(2026, time.June, 2)},
		{ID: "large", Remaining: 200000, ExpiryDate: ts(2026, time.July, 2)},
	}

	// Pool covers exactly both floors: $20 for the small balance, 3% of
	// $2000 for the large one.
	got := plan.Distribute(purchases, 8000, due)
	if got["small"] != 2000 {
		t.Errorf("expected $20 floor for small balance, got %d", got["small"])
	}
	if got["large"] != 6000 {
		t.Errorf("expected 3%% floor 6000 for large balance, got %d", got["large"])
	}
}

func TestDistribute_SurplusGoesToEarliestExpiry(t *testing.T) {
	due := date(2024, time.June, 1)
	purchases := []domain.Purchase{
		{ID: "later", Remaining: 5000, ExpiryDate: ts(2024, time.December, 2)},
		{ID: "sooner", Remaining: 5000, ExpiryDate: ts(2024, time.August, 2)},
	}

	got := plan.Distribute(purchases, 7000, due)
	if got["sooner"] != 5000 {
		t.Errorf("expected soonest expiry paid off with 5000, got %d", got["sooner"])
	}
	if got["later"] != 2000 {
		t.Errorf("expected later expiry held at floor 2000, got %d", got["later"])
	}
}

func TestDistribute_PoolExhaustionStopsAllocation(t *testing.T) {
	due := date(2024, time.June, 1)
	purchases := []domain.Purchase{
		{ID: "a", Remaining: 10000, ExpiryDate: ts(2024, time.August, 2)},
		{ID: "b", Remaining: 10000, ExpiryDate: ts(2024, time.September, 2)},
		{ID: "c", Remaining: 10000, ExpiryDate: ts(2024, time.October, 2)},
	}

	got := plan.Distribute(purchases, 3000, due)
	sum := got["a"] + got["b"] + got["c"]
	if sum != 3000 {
		t.Errorf("expected allocations to sum to the pool 3000, got %d", sum)
	}
	if got["a"] != 2000 {
		t.Errorf("expected first floor 2000, got %d", got["a"])
	}
	if got["b"] != 1000 {
		t.Errorf("expected partial floor 1000, got %d", got["b"])
	}
	if got["c"] != 0 {
		t.Errorf("expected 0 once pool ran dry, got %d", got["c"])
	}
}

func TestDistribute_NeverExceedsRemaining(t *testing.T) {
	due := date(2024, time.June, 1)
	purchases := []domain.Purchase{
		{ID: "a", Remaining: 500, ExpiryDate: ts(2024, time.August, 2)},
		{ID: "b", Remaining: 9000, ExpiryDate: ts(2024, time.September, 2)},
	}

	got := plan.Distribute(purchases, 9500, due)
	if got["a"] != 500 {
		t.Errorf("expected a capped at its balance 500, got %d", got["a"])
	}
	if got["b"] != 9000 {
		t.Errorf("expected b capped at its balance 9000, got %d", got["b"])
	}
}

func TestDistribute_InputNotMutated(t *testing.T) {
	due := date(2024, time.June, 1)
	purchases := []domain.Purchase{
		{ID: "a", Remaining: 5000, ExpiryDate: ts(2024, time.August, 2)},
	}

	plan.Distribute(purchases, 5000, due)
	if purchases[0].Remaining != 5000 {
		t.Errorf("expected caller's balance untouched, got %d", purchases[0].Remaining)
	}
}

func TestDistribute_SettledPurchasesIgnored(t *testing.T) {
	due := date(2024, time.June, 1)
	purchases := []domain.Purchase{
		{ID: "done", Remaining: 0, ExpiryDate: ts(2024, time.July, 2)},
		{ID: "open", Remaining: 3000, ExpiryDate: ts(2024, time.August, 2)},
	}

	got := plan.Distribute(purchases, 3000, due)
	if _, ok := got["done"]; ok {
		t.Error("expected settled purchase absent from distribution")
	}
	if got["open"] != 3000 {
		t.Errorf("expected open purchase to take the pool, got %d", got["open"])
	}
}
