package models

// Behaviour captures the borrower's payment discipline
type Behaviour struct {
	GSTOnTimeRatio        float64 `json:"gst_on_time_ratio"`
	ChequeBounceCount     int     `json:"cheque_bounce_count"`
	MonthsNegativeBalance int     `json:"months_negative_balance"`
}

// CashflowProfile is the input to the capacity calculator
type CashflowProfile struct {
	MonthlyRevenue      float64   `json:"monthly_revenue"`
	MonthlyFixedCosts   float64   `json:"monthly_fixed_costs"`
	ExistingInstallment float64   `json:"existing_installment"`
	OtherCommitments    float64   `json:"other_commitments"`
	SurplusLow          float64   `json:"surplus_low"`
	SurplusMedian       float64   `json:"surplus_median"`
	SurplusHigh         float64   `json:"surplus_high"`
	Behaviour           Behaviour `json:"behaviour"`
}

// LoanTerms describes the loan the business is asking for
type LoanTerms struct {
	AnnualInterestRatePct float64 `json:"annual_interest_rate_pct"`
	TenureMonths          int     `json:"tenure_months"`
}

// RiskBand is the traffic-light affordability classification
type RiskBand string

const (
	RiskGreen RiskBand = "GREEN"
	RiskAmber RiskBand = "AMBER"
	RiskRed   RiskBand = "RED"
)

// CapacityBand is one affordability tier
type CapacityBand struct {
	Installment   float64 `json:"installment"`
	LoanPrincipal float64 `json:"loan_principal"`
}

// CapacityAssumptions exposes the intermediate factors behind a verdict
type CapacityAssumptions struct {
	AnnualRevenue  float64 `json:"annual_revenue"`
	DiscountFactor float64 `json:"discount_factor"`
	DSCRTarget     float64 `json:"dscr_target"`
	BufferPct      float64 `json:"buffer_pct"`
	RevenueCap     float64 `json:"revenue_cap"`
	CADSLow        float64 `json:"cads_low"`
	CADSMedian     float64 `json:"cads_median"`
	CADSHigh       float64 `json:"cads_high"`
}

// CapacityResult is the output of the capacity calculator
type CapacityResult struct {
	Survival              CapacityBand        `json:"survival"`
	Operating             CapacityBand        `json:"operating"`
	Stretch               CapacityBand        `json:"stretch"`
	BehaviourScore        int                 `json:"behaviour_score"`
	RiskBand              RiskBand            `json:"risk_band"`
	AvgAdjustedNetCash    float64             `json:"avg_adjusted_net_cash"`
	Volatility            float64             `json:"volatility"`
	WorkingCapitalNeed    float64             `json:"working_capital_need"`
	WorkingCapitalDeficit float64             `json:"working_capital_deficit"`
	Assumptions           CapacityAssumptions `json:"assumptions"`
}

// BehaviourInput is the wire form of Behaviour
type BehaviourInput struct {
	GSTOnTimeRatio        Number `json:"gst_on_time_ratio"`
	ChequeBounceCount     Number `json:"cheque_bounce_count"`
	MonthsNegativeBalance Number `json:"months_negative_balance"`
}

// CashflowProfileInput is the wire form of CashflowProfile
type CashflowProfileInput struct {
	MonthlyRevenue      Number         `json:"monthly_revenue"`
	MonthlyFixedCosts   Number         `json:"monthly_fixed_costs"`
	ExistingInstallment Number         `json:"existing_installment"`
	OtherCommitments    Number         `json:"other_commitments"`
	SurplusLow          Number         `json:"surplus_low"`
	SurplusMedian       Number         `json:"surplus_median"`
	SurplusHigh         Number         `json:"surplus_high"`
	Behaviour           BehaviourInput `json:"behaviour"`
}

// LoanTermsInput is the wire form of LoanTerms
type LoanTermsInput struct {
	AnnualInterestRatePct Number `json:"annual_interest_rate_pct"`
	TenureMonths          Number `json:"tenure_months"`
}

// CapacityRequest is the body of a capacity calculation
type CapacityRequest struct {
	Profile          CashflowProfileInput `json:"profile"`
	Terms            LoanTermsInput       `json:"terms"`
	UseReferenceRate bool                 `json:"use_reference_rate"`
}

// CapacityReportRequest asks for a capacity result to be mailed out
type CapacityReportRequest struct {
	CapacityRequest
	Email string `json:"email"`
}

// Profile converts the wire form into a CashflowProfile
func (in CashflowProfileInput) Profile() CashflowProfile {
	return CashflowProfile{
		MonthlyRevenue:      in.MonthlyRevenue.Float(),
		MonthlyFixedCosts:   in.MonthlyFixedCosts.Float(),
		ExistingInstallment: in.ExistingInstallment.Float(),
		OtherCommitments:    in.OtherCommitments.Float(),
		SurplusLow:          in.SurplusLow.Float(),
		SurplusMedian:       in.SurplusMedian.Float(),
		SurplusHigh:         in.SurplusHigh.Float(),
		Behaviour: Behaviour{
			GSTOnTimeRatio:        in.Behaviour.GSTOnTimeRatio.Float(),
			ChequeBounceCount:     in.Behaviour.ChequeBounceCount.Int(),
			MonthsNegativeBalance: in.Behaviour.MonthsNegativeBalance.Int(),
		},
	}
}

// LoanTerms converts the wire form into LoanTerms
func (in LoanTermsInput) LoanTerms() LoanTerms {
	return LoanTerms{
		AnnualInterestRatePct: in.AnnualInterestRatePct.Float(),
		TenureMonths:          in.TenureMonths.Int(),
	}
}
