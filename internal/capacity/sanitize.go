package capacity

import (
	"math"

	"github.com/Dan9191/finplan-service/internal/models"
)

// amounts beyond this are treated as garbage input
const maxAmount = 1e15

// Sanitize coerces a profile and terms into the model's domain: non-finite or
// absurdly large values become 0, amounts that cannot be negative are floored at 0 and the
// GST ratio is clamped to [0, 1]. Surpluses keep their sign.
func Sanitize(p models.CashflowProfile, t models.LoanTerms) (models.CashflowProfile, models.LoanTerms) {
	p.MonthlyRevenue = nonNegative(p.MonthlyRevenue)
	p.MonthlyFixedCosts = nonNegative(p.MonthlyFixedCosts)
	p.ExistingInstallment = nonNegative(p.ExistingInstallment)
	p.OtherCommitments = nonNegative(p.OtherCommitments)
	p.SurplusLow = finite(p.SurplusLow)
	p.SurplusMedian = finite(p.SurplusMedian)
	p.SurplusHigh = finite(p.SurplusHigh)

	p.Behaviour.GSTOnTimeRatio = clamp(finite(p.Behaviour.GSTOnTimeRatio), 0, 1)
	p.Behaviour.ChequeBounceCount = max(0, p.Behaviour.ChequeBounceCount)
	p.Behaviour.MonthsNegativeBalance = max(0, p.Behaviour.MonthsNegativeBalance)

	t.AnnualInterestRatePct = nonNegative(t.AnnualInterestRatePct)
	t.TenureMonths = max(0, t.TenureMonths)
	return p, t
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > maxAmount {
		return 0
	}
	return v
}

func nonNegative(v float64) float64 {
	return math.Max(0, finite(v))
}
