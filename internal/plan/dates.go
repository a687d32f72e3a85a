// Package plan implements the repayment allocation engine: date-cycle
// arithmetic, per-purchase amortization, multi-pass distribution of an
// aggregate payment, the per-cycle calculation report, the 12-month
// projection, and statement reconciliation.
//
// Everything in this package is a pure function of its inputs. There is no
// clock access; callers pass "now" where it matters. All instants are UTC.
package plan

import (
	"time"

	"github.com/fyodorvi/gem-guru/internal/domain"
)

// FirstPaymentDate is the first monthly payment date for a purchase: the
// purchase's start month with the day-of-month and time-of-day taken from the
// due date. If that instant is not strictly after the start date, it moves
// one month forward.
//
// When the due day does not exist in the start month (due day 31 in
// February), time.Date normalizes into the following month; that overflow
// policy is deliberate and covered by tests.
func FirstPaymentDate(p domain.Purchase, due time.Time) time.Time {
	start := p.StartDate.Time
	first := time.Date(start.Year(), start.Month(), due.Day(),
		due.Hour(), due.Minute(), due.Second(), 0, time.UTC)
	if !first.After(start) {
		first = first.AddDate(0, 1, 0)
	}
	return first
}

// PaymentsLeft counts monthly payment dates strictly before expiry, starting
// at from and stepping one calendar month at a time. Zero when from is at or
// past expiry. The strict-less-than boundary at the exact expiry instant is
// intentional.
func PaymentsLeft(from, expiry time.Time) int {
	n := 0
	for cursor := from; cursor.Before(expiry); cursor = cursor.AddDate(0, 1, 0) {
		n++
	}
	return n
}

// NormalizeSettings repairs incomplete or legacy profile settings. It
// migrates the legacy day-of-month schema into a full due/statement date
// pair, fills a missing due date with the first of the month after now, and
// fills a missing statement date with three weeks before the due date. The
// second return reports whether anything changed and should be persisted.
func NormalizeSettings(s domain.ProfileSettings, now time.Time) (domain.ProfileSettings, bool) {
	changed := false

	if s.PaymentDay != 0 && s.PaymentDueDate.IsZero() {
		due := time.Date(now.Year(), now.Month(), s.PaymentDay, 0, 0, 0, 0, time.UTC)
		if now.Day() > s.PaymentDay {
			due = due.AddDate(0, 1, 0)
		}
		s.PaymentDueDate = domain.Timestamp{Time: due}
		s.StatementDate = domain.Timestamp{Time: due.AddDate(0, 0, -21)}
		s.PaymentDay = 0
		changed = true
	}

	if s.PaymentDueDate.IsZero() {
		s = domain.DefaultSettings(now)
		changed = true
	}

	if s.StatementDate.IsZero() {
		due := s.PaymentDueDate.Time
		stmt := due.AddDate(0, 0, -21)
		s.StatementDate = domain.NewTimestamp(stmt.Year(), stmt.Month(), stmt.Day())
		changed = true
	}

	return s, changed
}

// statementCutoff treats the statement date as end-of-day: a purchase made
// any time on the statement date still belongs to the closed cycle.
func statementCutoff(statementDate time.Time) time.Time {
	return time.Date(statementDate.Year(), statementDate.Month(), statementDate.Day(),
		23, 59, 59, 0, time.UTC)
}

// truncateToDay drops the time-of-day component.
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
