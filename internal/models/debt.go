package models

import "time"

// Facility identifies one of the three short-term credit facilities
type Facility string

const (
	FacilityOCC Facility = "occ"
	FacilityOD  Facility = "od"
	FacilityWC  Facility = "wc"
)

// Facilities lists the facilities in tie-break order
var Facilities = []Facility{FacilityOCC, FacilityOD, FacilityWC}

// Valid reports whether f names a known facility
func (f Facility) Valid() bool {
	switch f {
	case FacilityOCC, FacilityOD, FacilityWC:
		return true
	}
	return false
}

// FacilityBalance is the outstanding balance of a facility and its fixed rate
type FacilityBalance struct {
	Balance       float64 `json:"balance"`
	AnnualRatePct float64 `json:"annual_rate_pct"`
}

// DebtPosition is the state of the three short-term facilities
type DebtPosition struct {
	OCC FacilityBalance `json:"occ"`
	OD  FacilityBalance `json:"od"`
	WC  FacilityBalance `json:"wc"`
}

// DefaultDebtPosition returns the seed position of a new session
func DefaultDebtPosition() DebtPosition {
	return DebtPosition{
		OCC: FacilityBalance{Balance: 25000, AnnualRatePct: 12},
		OD:  FacilityBalance{Balance: 15000, AnnualRatePct: 18},
		WC:  FacilityBalance{Balance: 8000, AnnualRatePct: 10},
	}
}

// Get returns the balance record of a facility
func (p DebtPosition) Get(f Facility) FacilityBalance {
	switch f {
	case FacilityOD:
		return p.OD
	case FacilityWC:
		return p.WC
	default:
		return p.OCC
	}
}

// WithBalance returns a copy of p with the facility balance replaced
func (p DebtPosition) WithBalance(f Facility, balance float64) DebtPosition {
	switch f {
	case FacilityOCC:
		p.OCC.Balance = balance
	case FacilityOD:
		p.OD.Balance = balance
	case FacilityWC:
		p.WC.Balance = balance
	}
	return p
}

// Total returns the combined short-term balance
func (p DebtPosition) Total() float64 {
	return p.OCC.Balance + p.OD.Balance + p.WC.Balance
}

// ProjectionPoint is one simulated month
type ProjectionPoint struct {
	Label        string  `json:"label"`
	TotalBalance float64 `json:"total_balance"`
}

// Direction tells whether a ledger item feeds or drains a facility
type Direction string

const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

// Valid reports whether d is credit or debit
func (d Direction) Valid() bool {
	return d == DirectionCredit || d == DirectionDebit
}

// FlowItem is a recurring inflow or outflow on a facility
type FlowItem struct {
	ID     int64   `json:"id"`
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// FacilityLedger holds the inflows and outflows of one facility
type FacilityLedger struct {
	Credits []FlowItem `json:"credits"`
	Debits  []FlowItem `json:"debits"`
}

// FacilityView is a facility balance together with its ledger
type FacilityView struct {
	Facility Facility        `json:"facility"`
	Balance  FacilityBalance `json:"balance"`
	Ledger   FacilityLedger  `json:"ledger"`
}

// Session is one planning session owning a debt position
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	LastSeen  time.Time `json:"last_seen"`
}

// SessionRequest is the body of a session creation call
type SessionRequest struct {
	AccessCode string `json:"access_code"`
}

// SessionResponse carries the token bound to a new session
type SessionResponse struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ApplyStrategyRequest asks for a one-shot strategy application
type ApplyStrategyRequest struct {
	Strategy string `json:"strategy"`
	Target   string `json:"target,omitempty"`
}

// FlowItemRequest is the body of a ledger item create/update
type FlowItemRequest struct {
	Label  string `json:"label"`
	Amount Number `json:"amount"`
}

// ReferenceRate is the latest published key rate plus lending margin
type ReferenceRate struct {
	KeyRate     float64   `json:"key_rate"`
	LendingRate float64   `json:"lending_rate"`
	FetchedAt   time.Time `json:"fetched_at"`
}
