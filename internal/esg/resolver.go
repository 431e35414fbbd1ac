package esg

import (
	"math"

	"github.com/wonny/esgpulse/internal/contracts"
)

// Source tells where a resolved bundle came from
type Source string

const (
	SourceReference Source = "reference"
	SourceSynthetic Source = "synthetic"
)

// Resolver returns the ESG bundle of a ticker
// ⭐ SSOT: reference entries are copied verbatim, everything else is synthesized
type Resolver struct {
	ref Reference
}

// NewResolver creates a resolver over ref. A nil ref means every ticker is synthesized.
func NewResolver(ref Reference) *Resolver {
	if ref == nil {
		ref = Reference{}
	}
	return &Resolver{ref: ref}
}

// Size returns the number of reference entries
func (r *Resolver) Size() int {
	return len(r.ref)
}

// Resolve looks the ticker up in the reference table. An entry with a finite
// total is returned as-is, without re-averaging the components; a missing
// component becomes 0. Otherwise the bundle is synthesized.
func (r *Resolver) Resolve(ticker string) (contracts.ESGScore, Source) {
	if entry, ok := r.ref[NormalizeTicker(ticker)]; ok && isFinite(entry.Total) {
		return contracts.ESGScore{
			Total:         entry.Total,
			Environmental: orZero(entry.Environmental),
			Social:        orZero(entry.Social),
			Governance:    orZero(entry.Governance),
		}, SourceReference
	}
	return Synthesize(ticker), SourceSynthetic
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func orZero(v float64) float64 {
	if !isFinite(v) {
		return 0
	}
	return v
}
