package pricetable

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/wonny/esgpulse/internal/contracts"
)

// Table is a date-indexed close price table, one column per ticker.
// Missing cells are NaN.
// ⭐ SSOT: rows are kept in ascending date order with unique dates
type Table struct {
	Dates   []time.Time
	Tickers []string    // column order, duplicates allowed
	Columns [][]float64 // Columns[i][row] belongs to Tickers[i]
}

// Row is one trading day with the non-missing prices of that day
type Row struct {
	Date   time.Time
	Prices map[string]float64
}

// New creates an empty table
func New() *Table {
	return &Table{}
}

// NumRows returns the number of trading days
func (t *Table) NumRows() int {
	return len(t.Dates)
}

// Series extracts the price series of column i. Missing, non-finite and
// non-positive prices are dropped.
func (t *Table) Series(i int) contracts.PriceSeries {
	col := t.Columns[i]
	points := make([]contracts.PricePoint, 0, len(col))
	for row, v := range col {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			continue
		}
		points = append(points, contracts.PricePoint{Date: t.Dates[row], Price: v})
	}
	return contracts.PriceSeries{Ticker: t.Tickers[i], Points: points}
}

// AllSeries returns the series of every column in column order
func (t *Table) AllSeries() []contracts.PriceSeries {
	out := make([]contracts.PriceSeries, len(t.Tickers))
	for i := range t.Tickers {
		out[i] = t.Series(i)
	}
	return out
}

// Rows returns one Row per date, skipping missing cells. When a ticker
// appears in several columns the last non-missing value wins.
func (t *Table) Rows() []Row {
	rows := make([]Row, len(t.Dates))
	for r, d := range t.Dates {
		prices := make(map[string]float64, len(t.Tickers))
		for i, ticker := range t.Tickers {
			v := t.Columns[i][r]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			prices[ticker] = v
		}
		rows[r] = Row{Date: d, Prices: prices}
	}
	return rows
}

// AddSeries appends a column for series, aligning its points on the date
// index. Dates not yet in the table are inserted, and other columns get NaN there.
func (t *Table) AddSeries(series contracts.PriceSeries) {
	index := make(map[time.Time]int, len(t.Dates))
	for r, d := range t.Dates {
		index[d] = r
	}

	for _, p := range series.Points {
		day := truncateDay(p.Date)
		if _, ok := index[day]; ok {
			continue
		}
		t.Dates = append(t.Dates, day)
		index[day] = len(t.Dates) - 1
		for i := range t.Columns {
			t.Columns[i] = append(t.Columns[i], math.NaN())
		}
	}

	col := make([]float64, len(t.Dates))
	for r := range col {
		col[r] = math.NaN()
	}
	for _, p := range series.Points {
		col[index[truncateDay(p.Date)]] = p.Price
	}

	t.Tickers = append(t.Tickers, series.Ticker)
	t.Columns = append(t.Columns, col)
	t.sortByDate()
}

// FromRows builds a table from per-date price maps. Column order is the
// order in which tickers are first seen, with each row's tickers sorted.
func FromRows(rows []Row) *Table {
	t := New()
	seen := make(map[string]int)

	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].Date.Before(sorted[b].Date) })

	for r, row := range sorted {
		t.Dates = append(t.Dates, truncateDay(row.Date))
		for i := range t.Columns {
			t.Columns[i] = append(t.Columns[i], math.NaN())
		}

		tickers := make([]string, 0, len(row.Prices))
		for ticker := range row.Prices {
			tickers = append(tickers, ticker)
		}
		sort.Strings(tickers)

		for _, ticker := range tickers {
			i, ok := seen[ticker]
			if !ok {
				col := make([]float64, r+1)
				for k := range col {
					col[k] = math.NaN()
				}
				t.Tickers = append(t.Tickers, ticker)
				t.Columns = append(t.Columns, col)
				i = len(t.Tickers) - 1
				seen[ticker] = i
			}
			t.Columns[i][r] = row.Prices[ticker]
		}
	}

	return t
}

// validate checks the structural invariants
func (t *Table) validate() error {
	if len(t.Columns) != len(t.Tickers) {
		return fmt.Errorf("table has %d tickers but %d columns", len(t.Tickers), len(t.Columns))
	}
	for i, col := range t.Columns {
		if len(col) != len(t.Dates) {
			return fmt.Errorf("column %s has %d rows, want %d", t.Tickers[i], len(col), len(t.Dates))
		}
	}
	for r := 1; r < len(t.Dates); r++ {
		if !t.Dates[r].After(t.Dates[r-1]) {
			return fmt.Errorf("duplicate or unordered date %s", t.Dates[r].Format(DateLayout))
		}
	}
	return nil
}

// sortByDate reorders rows so dates ascend
func (t *Table) sortByDate() {
	order := make([]int, len(t.Dates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return t.Dates[order[a]].Before(t.Dates[order[b]]) })

	dates := make([]time.Time, len(order))
	for k, r := range order {
		dates[k] = t.Dates[r]
	}
	t.Dates = dates

	for i, col := range t.Columns {
		sorted := make([]float64, len(order))
		for k, r := range order {
			sorted[k] = col[r]
		}
		t.Columns[i] = sorted
	}
}

func truncateDay(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
