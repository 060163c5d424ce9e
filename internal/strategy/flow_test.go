package strategy

import (
	"testing"

	"github.com/Dan9191/finplan-service/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestFlowProjection(t *testing.T) {
	ledger := models.FacilityLedger{
		Credits: []models.FlowItem{{ID: 1, Label: "Returned deposits", Amount: 2000}},
		Debits:  []models.FlowItem{{ID: 1, Label: "Emergency drawdown", Amount: 9000}},
	}

	points := FlowProjection(15000, ledger, 6)

	assert.Len(t, points, 6)
	assert.Equal(t, "1M", points[0].Label)
	// 7000 net outflow spread over six months
	assert.Equal(t, 13833.0, points[0].TotalBalance)
	assert.Equal(t, 8000.0, points[5].TotalBalance)
}

func TestFlowProjection_NetInflowGrowsAndFloors(t *testing.T) {
	inflow := models.FacilityLedger{Credits: []models.FlowItem{{Amount: 600}}}
	assert.Equal(t, 1100.0, FlowProjection(1000, inflow, 6)[0].TotalBalance)

	outflow := models.FacilityLedger{Debits: []models.FlowItem{{Amount: 12000}}}
	points := FlowProjection(3000, outflow, 0)
	assert.Len(t, points, DefaultHorizon)
	assert.Equal(t, 1000.0, points[0].TotalBalance)
	assert.Zero(t, points[5].TotalBalance)
}
