package plan

import (
	"github.com/fyodorvi/gem-guru/internal/domain"
)

// BuildCalculation produces the full current-cycle report for a purchase set
// and normalized profile settings.
//
// Purchases started after the statement date are excluded from the payment
// obligation (they belong to the next statement) but still appear in the
// report and still count toward the total owed.
func BuildCalculation(purchases []domain.Purchase, settings domain.ProfileSettings) *domain.Calculation {
	nextPaymentDate := settings.PaymentDueDate.Time
	cutoff := statementCutoff(settings.StatementDate.Time)

	included := make([]domain.Purchase, 0, len(purchases))
	for _, p := range purchases {
		if !p.StartDate.After(cutoff) {
			included = append(included, p)
		}
	}

	totalPayment := EqualSplitTotal(included, nextPaymentDate)
	distribution := Distribute(included, totalPayment, nextPaymentDate)

	calc := &domain.Calculation{
		NextPaymentDate: settings.PaymentDueDate,
		StatementDate:   settings.StatementDate,
		Purchases:       make([]domain.CalculatedPurchase, 0, len(purchases)),
	}

	for _, p := range purchases {
		first := FirstPaymentDate(p, nextPaymentDate)
		done, total := ItemProgress(p, first, nextPaymentDate)
		nextPayment := distribution[p.ID]

		calc.Purchases = append(calc.Purchases, domain.CalculatedPurchase{
			Purchase:      p,
			NextPayment:   nextPayment,
			PaymentsTotal: total,
			PaymentsDone:  done,
		})
		calc.TotalRemaining += p.Remaining
		calc.TotalNextPayment += nextPayment
	}

	return calc
}
