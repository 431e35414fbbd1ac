package quartile

import (
	"github.com/wonny/esgpulse/internal/contracts"
)

// Band lower bounds (inclusive)
const (
	Q1Min = 80.0
	Q2Min = 65.0
	Q3Min = 50.0
)

// Classify buckets an ESG total score. Each band includes its lower bound
// and excludes its upper bound; NaN lands in Q4.
func Classify(total float64) contracts.Quartile {
	switch {
	case total >= Q1Min:
		return contracts.Q1
	case total >= Q2Min:
		return contracts.Q2
	case total >= Q3Min:
		return contracts.Q3
	default:
		return contracts.Q4
	}
}
