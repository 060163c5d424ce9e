// Package capacity estimates how large an installment and loan principal a
// business can carry given seasonal cashflow, loan terms and payment behaviour.
package capacity

import (
	"math"

	"github.com/Dan9191/finplan-service/internal/models"
)

const (
	// below this the buffered installment is not considered sustainable
	minViableInstallment = 1000

	revenueCapRate       = 0.025
	operatingCapMultiple = 1.2
	stretchCapMultiple   = 1.5
	maxVolatility        = 1.5
	workingCapitalShare  = 0.2
)

// Compute runs the capacity model. It never fails: invalid inputs count as zero.
func Compute(profile models.CashflowProfile, terms models.LoanTerms) models.CapacityResult {
	p, t := Sanitize(profile, terms)

	avgCash := (p.SurplusLow + p.SurplusMedian + p.SurplusHigh) / 3
	volatility := Volatility(p.SurplusLow, p.SurplusHigh, avgCash)
	// the raw ratio drives the discount; the reported Volatility is rounded for display only
	discount := DiscountFactor(volatility)

	cadsLow := cads(p.SurplusLow, p.OtherCommitments, discount)
	cadsMedian := cads(p.SurplusMedian, p.OtherCommitments, discount)
	cadsHigh := cads(p.SurplusHigh, p.OtherCommitments, discount)

	annualRevenue := p.MonthlyRevenue * 12
	dscr := DSCRTarget(annualRevenue)
	buffer := BufferPct(annualRevenue)
	revenueCap := annualRevenue * revenueCapRate / 12

	survival := bandInstallment(cadsLow, dscr, p.ExistingInstallment, revenueCap, buffer)
	operating := bandInstallment(cadsMedian, dscr, p.ExistingInstallment, revenueCap*operatingCapMultiple, buffer)
	stretch := bandInstallment(cadsHigh, dscr, p.ExistingInstallment, revenueCap*stretchCapMultiple, buffer)

	score := BehaviourScore(p.Behaviour)

	base, baseCads := operating, cadsMedian
	if operating <= 0 {
		base, baseCads = survival, cadsLow
	}

	need := p.MonthlyRevenue * workingCapitalShare

	return models.CapacityResult{
		Survival:              band(survival, t),
		Operating:             band(operating, t),
		Stretch:               band(stretch, t),
		BehaviourScore:        score,
		RiskBand:              Classify(base, baseCads, p.ExistingInstallment, p.MonthlyRevenue, score),
		AvgAdjustedNetCash:    math.Round((cadsLow + cadsMedian + cadsHigh) / 3),
		Volatility:            math.Round(volatility*100) / 100,
		WorkingCapitalNeed:    math.Round(need),
		WorkingCapitalDeficit: math.Round(math.Max(0, need-cadsMedian)),
		Assumptions: models.CapacityAssumptions{
			AnnualRevenue:  annualRevenue,
			DiscountFactor: discount,
			DSCRTarget:     dscr,
			BufferPct:      buffer,
			RevenueCap:     math.Round(revenueCap),
			CADSLow:        math.Round(cadsLow),
			CADSMedian:     math.Round(cadsMedian),
			CADSHigh:       math.Round(cadsHigh),
		},
	}
}

// Volatility is the low-to-high surplus swing relative to the average, in [0, 1.5].
func Volatility(low, high, avg float64) float64 {
	if avg == 0 {
		return 0
	}
	raw := (high - low) / math.Max(avg, 1)
	return clamp(raw, 0, maxVolatility)
}

// DiscountFactor haircuts surplus according to how volatile it is.
func DiscountFactor(volatility float64) float64 {
	switch {
	case volatility < 0.3:
		return 1.0
	case volatility <= 0.6:
		return 0.9
	default:
		return 0.75
	}
}

// DSCRTarget is the minimum coverage demanded at a given annual revenue.
// Smaller businesses must cover their installment by a wider margin.
func DSCRTarget(annualRevenue float64) float64 {
	switch {
	case annualRevenue < 1_500_000:
		return 1.5
	case annualRevenue < 5_000_000:
		return 1.4
	default:
		return 1.3
	}
}

// BufferPct is the safety buffer taken off every band
func BufferPct(annualRevenue float64) float64 {
	if annualRevenue < 1_500_000 {
		return 0.15
	}
	return 0.10
}

// BehaviourScore rates filing and banking discipline on a 0-100 scale.
func BehaviourScore(b models.Behaviour) int {
	gstScore := b.GSTOnTimeRatio * 30

	var chequeScore float64
	switch {
	case b.ChequeBounceCount == 0:
		chequeScore = 25
	case b.ChequeBounceCount <= 2:
		chequeScore = 20
	default:
		chequeScore = 10
	}

	var negBalScore float64
	switch {
	case b.MonthsNegativeBalance == 0:
		negBalScore = 20
	case b.MonthsNegativeBalance <= 3:
		negBalScore = 15
	default:
		negBalScore = 10
	}

	return int(math.Round(clamp(gstScore+chequeScore+negBalScore, 0, 100)))
}

// Classify assigns the global risk band from the base installment and its CADS.
func Classify(base, baseCads, existingInstallment, monthlyRevenue float64, score int) models.RiskBand {
	var dscrActual float64
	if base+existingInstallment != 0 {
		dscrActual = baseCads / (existingInstallment + base)
	}
	var surplusRatio float64
	if monthlyRevenue > 0 {
		surplusRatio = (baseCads - base) / monthlyRevenue
	}

	switch {
	case dscrActual >= 1.5 && surplusRatio >= 0.5 && score >= 70:
		return models.RiskGreen
	case dscrActual >= 1.2 && surplusRatio >= 0.2 && score >= 50:
		return models.RiskAmber
	default:
		return models.RiskRed
	}
}

func cads(surplus, otherCommitments, discount float64) float64 {
	return math.Max(0, (surplus-otherCommitments)*discount)
}

// bandInstallment turns CADS into a capped, buffered, rounded installment
func bandInstallment(cads, dscr, existingInstallment, ceiling, buffer float64) float64 {
	raw := math.Max(0, cads/dscr-existingInstallment)
	buffered := math.Min(raw, ceiling) * (1 - buffer)
	if buffered < minViableInstallment {
		return 0
	}
	return math.Round(buffered/100) * 100
}

func band(installment float64, t models.LoanTerms) models.CapacityBand {
	return models.CapacityBand{
		Installment:   installment,
		LoanPrincipal: LoanFromInstallment(installment, t.AnnualInterestRatePct, t.TenureMonths),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
