package esg

import (
	"math"
	"math/big"
	"math/rand/v2"

	"github.com/shopspring/decimal"

	"github.com/wonny/esgpulse/internal/contracts"
	"github.com/wonny/esgpulse/internal/tickerhash"
)

// Synthetic score distribution
const (
	baseMin    = 40.0
	baseMax    = 95.0
	noiseSigma = 10.0
	clipMin    = 30.0
	clipMax    = 99.0

	// fractional digits that hold any float64 in the clip range exactly
	exactDigits = 60
)

// Synthesize builds a deterministic ESG bundle for a ticker with no usable
// reference entry. The generator is seeded from SHA-256(ticker), so the same
// ticker always yields bit-identical scores.
func Synthesize(ticker string) contracts.ESGScore {
	s1, s2 := tickerhash.Seeds(ticker)
	rng := rand.New(rand.NewPCG(s1, s2))

	base := baseMin + rng.Float64()*(baseMax-baseMin)
	env := clip(base + rng.NormFloat64()*noiseSigma)
	soc := clip(base + rng.NormFloat64()*noiseSigma)
	gov := clip(base + rng.NormFloat64()*noiseSigma)

	// total is re-derived so synthetic bundles are internally consistent
	total := (env + soc + gov) / 3

	return contracts.ESGScore{
		Total:         round1(total),
		Environmental: round1(env),
		Social:        round1(soc),
		Governance:    round1(gov),
	}
}

func clip(v float64) float64 {
	return math.Max(clipMin, math.Min(clipMax, v))
}

// round1 rounds the exact binary value of v half-to-even to one decimal.
// 42.15 is stored as 42.1499... and rounds down.
func round1(v float64) float64 {
	exact := new(big.Float).SetFloat64(v).Text('f', exactDigits)
	return decimal.RequireFromString(exact).RoundBank(1).InexactFloat64()
}
