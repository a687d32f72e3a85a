package plan

import (
	"sort"
	"time"

	"github.com/fyodorvi/gem-guru/internal/domain"
)

// Minimum cycle payment the bank collects from every open purchase that has
// no contractual minimum: $20 or 3% of the balance, whichever is greater.
const (
	floorPaymentCents   = 2000
	floorPaymentPercent = 3
)

// EqualSplitTotal is the aggregate payment needed this cycle if every open
// purchase were paid its own amortized amount independently.
func EqualSplitTotal(purchases []domain.Purchase, nextPaymentDate time.Time) int {
	total := 0
	for _, p := range purchases {
		if p.Remaining <= 0 {
			continue
		}
		total += ItemRepayment(p, nextPaymentDate)
	}
	return total
}

// Distribute allocates totalPayment across the open purchases the way the
// bank does, in three ordered passes over a working copy of the balances:
//
//  1. contractual minimum payments, for purchases that carry one;
//  2. the $20-or-3% floor for purchases without a minimum, stopping the
//     moment the pool runs dry;
//  3. whatever is left, steered to the soonest-expiring balances first.
//
// No purchase ever receives more than its remaining balance, and the sum of
// all allocations never exceeds totalPayment. Purchases with no balance are
// ignored. The input slice is never mutated.
func Distribute(purchases []domain.Purchase, totalPayment int, _ time.Time) map[string]int {
	distribution := make(map[string]int, len(purchases))
	pool := totalPayment

	working := make([]domain.Purchase, 0, len(purchases))
	for _, p := range purchases {
		if p.Remaining > 0 {
			working = append(working, p)
		}
	}

	// Pass 1: contractual minimums.
	for i := range working {
		p := &working[i]
		if p.HasMinimumPayment {
			pay := min(p.MinimumPayment, p.Remaining)
			distribution[p.ID] = pay
			p.Remaining -= pay
			pool -= pay
		} else {
			distribution[p.ID] = 0
		}
	}

	// Pass 2: baseline floor for everything without a minimum.
	for i := range working {
		if pool <= 0 {
			break
		}
		p := &working[i]
		if p.HasMinimumPayment || p.Remaining <= 0 {
			continue
		}
		required := max(floorPaymentCents, ceilDiv(p.Remaining*floorPaymentPercent, 100))
		pay := min(required, min(p.Remaining, pool))
		distribution[p.ID] += pay
		p.Remaining -= pay
		pool -= pay
	}

	// Pass 3: surplus to the balances closest to their interest-free deadline.
	if pool > 0 {
		open := make([]*domain.Purchase, 0, len(working))
		for i := range working {
			if working[i].Remaining > 0 {
				open = append(open, &working[i])
			}
		}
		sort.SliceStable(open, func(a, b int) bool {
			return open[a].ExpiryDate.Before(open[b].ExpiryDate.Time)
		})
		for _, p := range open {
			if pool <= 0 {
				break
			}
			pay := min(p.Remaining, pool)
			distribution[p.ID] += pay
			p.Remaining -= pay
			pool -= pay
		}
	}

	return distribution
}
