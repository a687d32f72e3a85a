package plan

import (
	"math"
	"time"

	"github.com/fyodorvi/gem-guru/internal/domain"
)

// matchPurchase finds the stored purchase a freshly parsed one corresponds
// to. The key is (total, startDate, expiryDate); remaining is deliberately
// excluded, since the balance is exactly what changes between statements.
func matchPurchase(existing []domain.Purchase, candidate domain.Purchase) *domain.Purchase {
	for i := range existing {
		e := &existing[i]
		if e.Total == candidate.Total &&
			e.StartDate.Equal(candidate.StartDate.Time) &&
			e.ExpiryDate.Equal(candidate.ExpiryDate.Time) {
			return e
		}
	}
	return nil
}

// Reconcile merges freshly parsed statement purchases into the stored list.
//
// Matched purchases keep their identity and take the parsed remaining
// balance. Unmatched parsed purchases are added as-is (the caller assigns
// ids). A stored purchase with an open balance that should have appeared on
// the statement but didn't is presumed settled: its balance is forced to
// zero but the record is kept, so history stays visible. Stored purchases
// newer than the statement pass through untouched.
//
// statementDate is optional (nil when the parser could not extract one);
// without it every unmatched open purchase is presumed settled.
func Reconcile(existing, parsed []domain.Purchase, statementDate *time.Time) ([]domain.Purchase, *domain.UpsertSummary) {
	summary := &domain.UpsertSummary{
		AddedPurchases:   []string{},
		UpdatedPurchases: []string{},
		PaidOffPurchases: []domain.PaidOffPurchaseSummary{},
	}

	final := make([]domain.Purchase, 0, len(existing)+len(parsed))
	matched := make(map[string]bool, len(existing))

	for _, candidate := range parsed {
		match := matchPurchase(existing, candidate)
		if match == nil {
			final = append(final, candidate)
			summary.Added++
			summary.AddedPurchases = append(summary.AddedPurchases, candidate.Name)
			continue
		}

		updated := *match
		updated.Remaining = candidate.Remaining
		final = append(final, updated)
		matched[match.ID] = true

		if candidate.Remaining == 0 {
			summary.PotentiallyPaidOff++
			summary.PaidOffPurchases = append(summary.PaidOffPurchases, domain.PaidOffPurchaseSummary{
				ID:        match.ID,
				Name:      match.Name,
				Total:     match.Total,
				Remaining: match.Remaining,
			})
		} else {
			summary.Updated++
			summary.UpdatedPurchases = append(summary.UpdatedPurchases, match.Name)
		}
	}

	for _, p := range existing {
		if matched[p.ID] {
			continue
		}

		// Already settled: carry forward silently.
		if p.Remaining == 0 {
			final = append(final, p)
			continue
		}

		// Newer than the statement: the bank simply hasn't seen it yet.
		if statementDate != nil && p.StartDate.After(*statementDate) {
			final = append(final, p)
			continue
		}

		settled := p
		settled.Remaining = 0
		final = append(final, settled)
		summary.PotentiallyPaidOff++
		summary.PaidOffPurchases = append(summary.PaidOffPurchases, domain.PaidOffPurchaseSummary{
			ID:        p.ID,
			Name:      p.Name,
			Total:     p.Total,
			Remaining: p.Remaining,
		})
	}

	return final, summary
}

// Preview classifies what Reconcile would do, without producing a merged
// list. Used by the statement preview flow so the user can confirm before
// anything is persisted.
func Preview(existing, parsed []domain.Purchase, statementDate *time.Time) *domain.InterimResult {
	result := &domain.InterimResult{
		NewPurchases:     []domain.NewPurchaseSummary{},
		UpdatedPurchases: []domain.UpdatedPurchaseSummary{},
		PaidOffPurchases: []domain.PaidOffPurchaseSummary{},
	}

	matched := make(map[string]bool, len(existing))

	for _, candidate := range parsed {
		match := matchPurchase(existing, candidate)
		if match == nil {
			result.NewPurchases = append(result.NewPurchases, summarizeNew(candidate))
			continue
		}
		matched[match.ID] = true

		if candidate.Remaining == 0 {
			result.PaidOffPurchases = append(result.PaidOffPurchases, domain.PaidOffPurchaseSummary{
				ID:        match.ID,
				Name:      match.Name,
				Total:     match.Total,
				Remaining: match.Remaining,
			})
		} else {
			result.UpdatedPurchases = append(result.UpdatedPurchases, domain.UpdatedPurchaseSummary{
				ID:           match.ID,
				Name:         match.Name,
				OldRemaining: match.Remaining,
				NewRemaining: candidate.Remaining,
			})
		}
	}

	for _, p := range existing {
		if matched[p.ID] || p.Remaining == 0 {
			continue
		}
		if statementDate != nil && p.StartDate.After(*statementDate) {
			continue
		}
		result.PaidOffPurchases = append(result.PaidOffPurchases, domain.PaidOffPurchaseSummary{
			ID:        p.ID,
			Name:      p.Name,
			Total:     p.Total,
			Remaining: p.Remaining,
		})
	}

	return result
}

// summarizeNew back-derives the displayed payment terms for a purchase the
// statement introduced: a minimum that divides the total into 6..48 even
// installments reads as a monthly plan, anything else as a fixed payment.
func summarizeNew(p domain.Purchase) domain.NewPurchaseSummary {
	s := domain.NewPurchaseSummary{
		Name:        p.Name,
		Total:       p.Total,
		Remaining:   p.Remaining,
		StartDate:   p.StartDate,
		ExpiryDate:  p.ExpiryDate,
		PaymentType: domain.PaymentTypeNone,
	}
	if p.HasMinimumPayment && p.MinimumPayment > 0 {
		s.MinimumPayment = p.MinimumPayment
		months := int(math.Ceil(float64(p.Total) / float64(p.MinimumPayment)))
		if months >= 6 && months <= 48 {
			s.PaymentType = domain.PaymentTypeMonthly
			s.InterestFreeMonths = months
		} else {
			s.PaymentType = domain.PaymentTypeFixed
		}
	}
	return s
}
