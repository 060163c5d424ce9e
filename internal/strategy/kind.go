// Package strategy simulates and applies short-term debt repayment strategies
// over the three facilities of a debt position.
package strategy

import (
	"fmt"
	"strings"
)

// Kind selects a repayment strategy
type Kind int

const (
	None Kind = iota
	Snowball
	Avalanche
	Velocity
)

// Kinds lists every strategy in display order
var Kinds = []Kind{None, Snowball, Avalanche, Velocity}

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case Snowball:
		return "snowball"
	case Avalanche:
		return "avalanche"
	case Velocity:
		return "velocity"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a strategy name to its Kind. An empty name means None.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return None, nil
	case "snowball":
		return Snowball, nil
	case "avalanche":
		return Avalanche, nil
	case "velocity":
		return Velocity, nil
	}
	return None, fmt.Errorf("unknown strategy %q", s)
}
