package plan_test

import (
	"testing"
	"time"

	"github.com/fyodorvi/gem-guru/internal/domain"
	"github.com/fyodorvi/gem-guru/internal/plan"
)

func ts(year int, month time.Month, day int) domain.Timestamp {
	return domain.NewTimestamp(year, month, day)
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestPaymentsLeft_CountsMonthlySteps(t *testing.T) {
	got := plan.PaymentsLeft(date(2024, time.June, 1), date(2024, time.September, 2))
	if got != 4 {
		t.Errorf("expected 4 payments left, got %d", got)
	}
}

func TestPaymentsLeft_ExactExpiryExcluded(t *testing.T) {
	// A payment date landing exactly on the expiry instant does not count.
	got := plan.PaymentsLeft(date(2024, time.January, 1), date(2024, time.March, 1))
	if got != 2 {
		t.Errorf("expected 2 payments left, got %d", got)
	}
}

func TestPaymentsLeft_FromAtOrPastExpiry(t *testing.T) {
	if got := plan.PaymentsLeft(date(2024, time.March, 1), date(2024, time.March, 1)); got != 0 {
		t.Errorf("expected 0 at expiry, got %d", got)
	}
	if got := plan.PaymentsLeft(date(2024, time.June, 1), date(2024, time.March, 1)); got != 0 {
		t.Errorf("expected 0 past expiry, got %d", got)
	}
}

func TestFirstPaymentDate_DueDayAfterStart(t *testing.T) {
	p := domain.Purchase{StartDate: ts(2024, time.January, 15)}
	got := plan.FirstPaymentDate(p, date(2024, time.June, 20))
	want := date(2024, time.January, 20)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestFirstPaymentDate_DueDayBeforeStart(t *testing.T) {
	p := domain.Purchase{StartDate: ts(2024, time.January, 15)}
	got := plan.FirstPaymentDate(p, date(2024, time.June, 1))
	want := date(2024, time.February, 1)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestFirstPaymentDate_ShortMonthNormalizes(t *testing.T) {
	// Due day 31 in February rolls into early March rather than clamping.
	p := domain.Purchase{StartDate: ts(2024, time.February, 15)}
	got := plan.FirstPaymentDate(p, date(2024, time.May, 31))
	want := date(2024, time.March, 2)
	if !got.Equal(want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNormalizeSettings_MigratesLegacyPaymentDay(t *testing.T) {
	s := domain.ProfileSettings{PaymentDay: 15}
	now := date(2024, time.June, 20)

	got, changed := plan.NormalizeSettings(s, now)
	if !changed {
		t.Fatal("expected settings to be marked changed")
	}
	if !got.PaymentDueDate.Equal(date(2024, time.July, 15)) {
		t.Errorf("expected due date 2024-07-15, got %v", got.PaymentDueDate.Time)
	}
	if !got.StatementDate.Equal(date(2024, time.June, 24)) {
		t.Errorf("expected statement date 2024-06-24, got %v", got.StatementDate.Time)
	}
	if got.PaymentDay != 0 {
		t.Errorf("expected legacy payment day cleared, got %d", got.PaymentDay)
	}
}

func TestNormalizeSettings_LegacyDayNotYetPassed(t *testing.T) {
	s := domain.ProfileSettings{PaymentDay: 15}
	now := date(2024, time.June, 10)

	got, _ := plan.NormalizeSettings(s, now)
	if !got.PaymentDueDate.Equal(date(2024, time.June, 15)) {
		t.Errorf("expected due date 2024-06-15, got %v", got.PaymentDueDate.Time)
	}
}

func TestNormalizeSettings_EmptyGetsDefaults(t *testing.T) {
	got, changed := plan.NormalizeSettings(domain.ProfileSettings{}, date(2024, time.June, 20))
	if !changed {
		t.Fatal("expected settings to be marked changed")
	}
	if !got.PaymentDueDate.Equal(date(2024, time.July, 1)) {
		t.Errorf("expected due date 2024-07-01, got %v", got.PaymentDueDate.Time)
	}
	if !got.StatementDate.Equal(date(2024, time.June, 10)) {
		t.Errorf("expected statement date 2024-06-10, got %v", got.StatementDate.Time)
	}
}

func TestNormalizeSettings_FillsMissingStatementDate(t *testing.T) {
	s := domain.ProfileSettings{PaymentDueDate: ts(2024, time.July, 1)}
	got, changed := plan.NormalizeSettings(s, date(2024, time.June, 20))
	if !changed {
		t.Fatal("expected settings to be marked changed")
	}
	if !got.StatementDate.Equal(date(2024, time.June, 10)) {
		t.Errorf("expected statement date 2024-06-10, got %v", got.StatementDate.Time)
	}
}

func TestNormalizeSettings_CompleteSettingsUntouched(t *testing.T) {
	s := domain.ProfileSettings{
		PaymentDueDate: ts(2024, time.July, 1),
		StatementDate:  ts(2024, time.June, 10),
	}
	got, changed := plan.NormalizeSettings(s, date(2024, time.June, 20))
	if changed {
		t.Error("expected no change for complete settings")
	}
	if !got.PaymentDueDate.Equal(s.PaymentDueDate.Time) || !got.StatementDate.Equal(s.StatementDate.Time) {
		t.Error("expected settings to pass through unchanged")
	}
}
