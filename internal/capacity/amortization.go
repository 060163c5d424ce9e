package capacity

import "math"

// LoanFromInstallment returns the principal an installment amortizes over
// months at the given annual rate, rounded to the nearest unit.
// Zero for a non-positive installment, rate or term.
func LoanFromInstallment(installment, annualRatePct float64, months int) float64 {
	r := annualRatePct / 100 / 12
	if installment <= 0 || r <= 0 || months <= 0 {
		return 0
	}

	var principal float64
	growth := math.Pow(1+r, float64(months))
	switch {
	case math.IsInf(growth, 1):
		// perpetuity limit
		principal = installment / r
	case growth == 1:
		principal = installment * float64(months)
	default:
		principal = installment * (growth - 1) / (r * growth)
	}
	return finiteOrZero(math.Round(principal))
}

// InstallmentFromLoan is the standard EMI formula, unrounded.
func InstallmentFromLoan(principal, annualRatePct float64, months int) float64 {
	r := annualRatePct / 100 / 12
	if principal <= 0 || r <= 0 || months <= 0 {
		return 0
	}

	var installment float64
	growth := math.Pow(1+r, float64(months))
	switch {
	case math.IsInf(growth, 1):
		installment = principal * r
	case growth == 1:
		installment = principal / float64(months)
	default:
		installment = principal * r * growth / (growth - 1)
	}
	return finiteOrZero(installment)
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
