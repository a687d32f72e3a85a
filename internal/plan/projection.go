package plan

import (
	"github.com/fyodorvi/gem-guru/internal/domain"
)

// projectionMonths is how far ahead the forecast looks.
const projectionMonths = 12

// Project simulates the next twelve billing cycles on a cloned copy of the
// balances and reports the aggregate amount due each month. The caller's
// slice is never touched.
//
// Month 0 applies the same statement-date cutoff as BuildCalculation, so its
// amount always equals a live calculation's TotalNextPayment for the same
// stored state. Purchases whose start date lies beyond both the due date and
// the simulated month are not yet active and sit out until their start month
// arrives.
func Project(purchases []domain.Purchase, settings domain.ProfileSettings) *domain.Projection {
	due := settings.PaymentDueDate.Time
	cutoff := statementCutoff(settings.StatementDate.Time)
	dueDay := truncateToDay(due)

	simulated := make([]domain.Purchase, len(purchases))
	copy(simulated, purchases)

	projection := &domain.Projection{
		Months: make([]domain.ProjectionMonth, 0, projectionMonths),
	}

	for i := 0; i < projectionMonths; i++ {
		next := due.AddDate(0, i, 0)

		active := make([]domain.Purchase, 0, len(simulated))
		for _, p := range simulated {
			if p.Remaining <= 0 {
				continue
			}
			if i == 0 && p.StartDate.After(cutoff) {
				continue
			}
			startDay := truncateToDay(p.StartDate.Time)
			if startDay.After(dueDay) && startDay.After(next) {
				continue
			}
			active = append(active, p)
		}

		total := 0
		if len(active) > 0 {
			total = EqualSplitTotal(active, next)
			distribution := Distribute(active, total, next)
			for idx := range simulated {
				if paid := distribution[simulated[idx].ID]; paid > 0 {
					simulated[idx].Remaining = max(0, simulated[idx].Remaining-paid)
				}
			}
		}

		projection.Months = append(projection.Months, domain.ProjectionMonth{
			Date:        next.Format("January 2006"),
			AmountToPay: max(total, 0),
		})
	}

	return projection
}
