package plan

import (
	"time"

	"github.com/fyodorvi/gem-guru/internal/domain"
)

// ItemRepayment is the equal-split amortized amount one purchase needs at the
// given payment date to finish before its expiry. Rounds up so the plan never
// under-collects; the final payment absorbs the surplus because Remaining
// tracks actual payments, not a fixed schedule.
//
// A contractual minimum payment raises the amount to max(minimum, equal
// split); the result is always capped at the remaining balance.
func ItemRepayment(p domain.Purchase, nextPaymentDate time.Time) int {
	left := PaymentsLeft(nextPaymentDate, p.ExpiryDate.Time)

	equal := p.Remaining
	if left > 0 {
		equal = ceilDiv(p.Remaining, left)
	}

	if p.HasMinimumPayment {
		required := max(p.MinimumPayment, equal)
		return min(required, p.Remaining)
	}
	return equal
}

// ItemProgress reports (paymentsDone, paymentsTotal) for display. The expiry
// date is compared at day precision.
func ItemProgress(p domain.Purchase, firstPaymentDate, nextPaymentDate time.Time) (done, total int) {
	expiry := truncateToDay(p.ExpiryDate.Time)
	total = PaymentsLeft(firstPaymentDate, expiry)
	done = total - PaymentsLeft(nextPaymentDate, expiry)
	return done, total
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
