package sector

import (
	"github.com/wonny/esgpulse/internal/tickerhash"
)

// DefaultSectors is the reference label list. Order matters: the pick is
// SHA-256(ticker) mod len(list).
var DefaultSectors = []string{
	"Technology",
	"Financials",
	"Healthcare",
	"Energy",
	"Consumer Discretionary",
	"Industrials",
	"Utilities",
	"Real Estate",
}

// Assigner maps a ticker to one sector label deterministically
type Assigner struct {
	sectors []string
}

// NewAssigner creates an assigner over sectors. An empty list falls back to DefaultSectors.
func NewAssigner(sectors []string) *Assigner {
	if len(sectors) == 0 {
		sectors = DefaultSectors
	}
	list := make([]string, len(sectors))
	copy(list, sectors)
	return &Assigner{sectors: list}
}

// Assign returns the sector label for ticker
func (a *Assigner) Assign(ticker string) string {
	return a.sectors[tickerhash.Mod(ticker, len(a.sectors))]
}

// Sectors returns a copy of the label list
func (a *Assigner) Sectors() []string {
	out := make([]string, len(a.sectors))
	copy(out, a.sectors)
	return out
}
