package strategy

import (
	"fmt"
	"math"

	"github.com/Dan9191/finplan-service/internal/models"
)

// FlowProjection spreads the net outflow of a facility ledger evenly over
// months and returns the facility balance after each month, floored at 0.
func FlowProjection(balance float64, ledger models.FacilityLedger, months int) []models.ProjectionPoint {
	if months <= 0 {
		months = DefaultHorizon
	}
	net := sum(ledger.Debits) - sum(ledger.Credits)

	points := make([]models.ProjectionPoint, 0, months)
	for i := 1; i <= months; i++ {
		v := math.Max(0, math.Round(balance-(net/float64(months))*float64(i)))
		points = append(points, models.ProjectionPoint{
			Label:        fmt.Sprintf("%dM", i),
			TotalBalance: v,
		})
	}
	return points
}

func sum(items []models.FlowItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Amount
	}
	return total
}
