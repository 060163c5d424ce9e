package capacity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoanFromInstallment_Guards(t *testing.T) {
	assert.Zero(t, LoanFromInstallment(0, 12, 12))
	assert.Zero(t, LoanFromInstallment(-100, 12, 12))
	assert.Zero(t, LoanFromInstallment(5000, 0, 12))
	assert.Zero(t, LoanFromInstallment(5000, 12, 0))
}

func TestLoanFromInstallment_RoundTrip(t *testing.T) {
	cases := []struct {
		installment float64
		rate        float64
		months      int
	}{
		{2600, 16, 60},
		{1000, 9.5, 12},
		{13500, 14, 48},
		{45000, 24, 120},
		{1200, 0.5, 360},
	}
	for _, c := range cases {
		principal := LoanFromInstallment(c.installment, c.rate, c.months)
		back := InstallmentFromLoan(principal, c.rate, c.months)
		// principal is rounded to a unit, so the installment may drift by a fraction
		assert.InDelta(t, c.installment, back, 1, "%+v", c)
	}
}

func TestInstallmentFromLoan_KnownValue(t *testing.T) {
	// 100000 over 12 months at 12% p.a.
	assert.InDelta(t, 8884.88, InstallmentFromLoan(100000, 12, 12), 0.01)
}

func TestLoanFromInstallment_ExtremeTerms(t *testing.T) {
	// (1.01)^100000 overflows; the principal settles at installment / r
	assert.InDelta(t, 260000, LoanFromInstallment(2600, 12, 100000), 1)
	assert.InDelta(t, 260000, LoanFromInstallment(2600, 12, 5000), 1)
	assert.InDelta(t, 2600, InstallmentFromLoan(260000, 12, 100000), 0.01)

	// a rate too small to move 1+r amortizes without interest
	assert.Equal(t, 12000.0, LoanFromInstallment(1000, 1e-15, 12))
	assert.InDelta(t, 1000, InstallmentFromLoan(12000, 1e-15, 12), 1e-9)

	for _, c := range []struct {
		rate   float64
		months int
	}{
		{1e6, 100},
		{1e6, 360},
		{7.07e6, 100},
		{1e15, math.MaxInt32},
	} {
		principal := LoanFromInstallment(2600, c.rate, c.months)
		assert.False(t, math.IsNaN(principal) || math.IsInf(principal, 0), "%+v", c)
		assert.GreaterOrEqual(t, principal, 0.0, "%+v", c)

		installment := InstallmentFromLoan(100000, c.rate, c.months)
		assert.False(t, math.IsNaN(installment) || math.IsInf(installment, 0), "%+v", c)
		assert.GreaterOrEqual(t, installment, 0.0, "%+v", c)
	}
}
