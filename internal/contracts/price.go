package contracts

import "time"

// PricePoint is one daily close observation
type PricePoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// PriceSeries is the ordered close-price history of one ticker
// ⭐ SSOT: dates strictly increasing, prices > 0 (enforced by pricetable.Table.Series)
type PriceSeries struct {
	Ticker string       `json:"ticker"`
	Points []PricePoint `json:"points"`
}

// Len returns the number of observations
func (s PriceSeries) Len() int {
	return len(s.Points)
}

// Prices returns the close prices in date order
func (s PriceSeries) Prices() []float64 {
	prices := make([]float64, len(s.Points))
	for i, p := range s.Points {
		prices[i] = p.Price
	}
	return prices
}
