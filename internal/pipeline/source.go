package pipeline

import (
	"context"

	"github.com/wonny/esgpulse/internal/esg"
	"github.com/wonny/esgpulse/internal/pricetable"
)

// PriceSource loads the price table of a run
type PriceSource interface {
	LoadPrices(ctx context.Context) (*pricetable.Table, error)
}

// ReferenceSource loads the ESG reference table of a run
type ReferenceSource interface {
	LoadReference(ctx context.Context) (esg.Reference, error)
}

// CSVPrices reads the price table from a CSV file
type CSVPrices struct {
	Path string
}

// LoadPrices implements PriceSource
func (s CSVPrices) LoadPrices(ctx context.Context) (*pricetable.Table, error) {
	return pricetable.ReadFile(s.Path)
}

// CSVReference reads the ESG reference table from a CSV file
type CSVReference struct {
	Path string
}

// LoadReference implements ReferenceSource
func (s CSVReference) LoadReference(ctx context.Context) (esg.Reference, error) {
	return esg.LoadReferenceFile(s.Path)
}

// TablePrices serves an already loaded price table
type TablePrices struct {
	Table *pricetable.Table
}

// LoadPrices implements PriceSource
func (s TablePrices) LoadPrices(ctx context.Context) (*pricetable.Table, error) {
	if s.Table == nil || len(s.Table.Tickers) == 0 {
		return nil, pricetable.ErrEmptyTable
	}
	return s.Table, nil
}
