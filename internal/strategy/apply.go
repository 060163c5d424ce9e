package strategy

import "github.com/Dan9191/finplan-service/internal/models"

// one-shot reductions
const (
	applySnowballChunk    = 2500
	applyAvalancheChunk   = 3000
	applyVelocityTransfer = 2000
)

// Apply returns the position after a single application of kind. A non-empty
// target receives the whole reduction; otherwise the strategy picks the
// facility. None leaves the position unchanged.
func Apply(position models.DebtPosition, kind Kind, target models.Facility) models.DebtPosition {
	p := normalize(position)
	switch kind {
	case None:
		return p
	case Snowball:
		if target.Valid() {
			return reduce(p, target, applySnowballChunk)
		}
		return reduce(p, smallest(p), applySnowballChunk)
	case Avalanche:
		if target.Valid() {
			return reduce(p, target, applyAvalancheChunk)
		}
		return reduce(p, highestRateAssumed(p), applyAvalancheChunk)
	case Velocity:
		if target.Valid() {
			return reduce(p, target, applyVelocityTransfer)
		}
		return velocityTransfer(p)
	}
	return p
}

// velocityTransfer drains wc into the larger of occ and od. When wc cannot
// fund a full transfer it is emptied and nothing moves.
func velocityTransfer(p models.DebtPosition) models.DebtPosition {
	if p.WC.Balance <= applyVelocityTransfer {
		return p.WithBalance(models.FacilityWC, 0)
	}
	dest := largerOfOCCAndOD(p)
	p = reduce(p, models.FacilityWC, applyVelocityTransfer)
	return reduce(p, dest, applyVelocityTransfer)
}

func normalize(p models.DebtPosition) models.DebtPosition {
	p.OCC.Balance = clamp0(p.OCC.Balance)
	p.OD.Balance = clamp0(p.OD.Balance)
	p.WC.Balance = clamp0(p.WC.Balance)
	return p
}
