package strategy

import (
	"fmt"
	"math"

	"github.com/Dan9191/finplan-service/internal/models"
)

// DefaultHorizon is the number of months projected when none is given
const DefaultHorizon = 6

// monthly debits used while projecting
const (
	scheduledOCC        = 800
	scheduledOD         = 700
	scheduledWC         = 400
	snowballChunk       = 2000
	avalancheChunk      = 2500
	velocityChunk       = 1800
	velocityTransferOut = velocityChunk / 2
)

// Project simulates horizon months of interest accrual and repayment under
// kind and returns the total short-term balance after each month. The
// position is taken by value and never modified.
func Project(position models.DebtPosition, kind Kind, horizon int) []models.ProjectionPoint {
	if horizon <= 0 {
		horizon = DefaultHorizon
	}

	p := position
	points := make([]models.ProjectionPoint, 0, horizon)
	for m := 1; m <= horizon; m++ {
		p = accrue(p)
		p = monthlyDebit(p, kind)
		points = append(points, models.ProjectionPoint{
			Label:        fmt.Sprintf("%dM", m),
			TotalBalance: p.Total(),
		})
	}
	return points
}

// Compare projects every strategy from the same starting position
func Compare(position models.DebtPosition, horizon int) map[Kind][]models.ProjectionPoint {
	out := make(map[Kind][]models.ProjectionPoint, len(Kinds))
	for _, k := range Kinds {
		out[k] = Project(position, k, horizon)
	}
	return out
}

func accrue(p models.DebtPosition) models.DebtPosition {
	p.OCC.Balance = withInterest(p.OCC)
	p.OD.Balance = withInterest(p.OD)
	p.WC.Balance = withInterest(p.WC)
	return p
}

func withInterest(f models.FacilityBalance) float64 {
	return clamp0(f.Balance + math.Round(f.Balance*f.AnnualRatePct/100/12))
}

func monthlyDebit(p models.DebtPosition, kind Kind) models.DebtPosition {
	switch kind {
	case None:
		p = reduce(p, models.FacilityOCC, scheduledOCC)
		p = reduce(p, models.FacilityOD, scheduledOD)
		p = reduce(p, models.FacilityWC, scheduledWC)
	case Snowball:
		p = reduce(p, smallest(p), snowballChunk)
	case Avalanche:
		p = reduce(p, highestRateAssumed(p), avalancheChunk)
	case Velocity:
		if p.WC.Balance > 0 {
			p = reduce(p, models.FacilityWC, velocityChunk)
			p = reduce(p, largerOfOCCAndOD(p), velocityTransferOut)
		}
	}
	return p
}

func reduce(p models.DebtPosition, f models.Facility, amount float64) models.DebtPosition {
	return p.WithBalance(f, clamp0(p.Get(f).Balance-amount))
}

// smallest picks the facility with the lowest balance, occ then od then wc on ties
func smallest(p models.DebtPosition) models.Facility {
	low := math.Min(p.OCC.Balance, math.Min(p.OD.Balance, p.WC.Balance))
	switch low {
	case p.OCC.Balance:
		return models.FacilityOCC
	case p.OD.Balance:
		return models.FacilityOD
	default:
		return models.FacilityWC
	}
}

// highestRateAssumed treats od as the most expensive facility, then occ.
// Actual rates are not compared.
func highestRateAssumed(p models.DebtPosition) models.Facility {
	switch {
	case p.OD.Balance > 0:
		return models.FacilityOD
	case p.OCC.Balance > 0:
		return models.FacilityOCC
	default:
		return models.FacilityWC
	}
}

// largerOfOCCAndOD returns occ only when it is strictly larger
func largerOfOCCAndOD(p models.DebtPosition) models.Facility {
	if p.OCC.Balance > p.OD.Balance {
		return models.FacilityOCC
	}
	return models.FacilityOD
}

func clamp0(v float64) float64 {
	return math.Max(0, math.Round(v))
}
