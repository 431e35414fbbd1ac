package pricetable

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the date format written to CSV
const DateLayout = "2006-01-02"

// ErrEmptyTable is returned for a CSV without ticker columns
var ErrEmptyTable = errors.New("price table has no ticker columns")

// accepted date formats, most common first
var dateLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
}

// ReadFile loads a price table CSV
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open price table: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Read parses "Date,<T1>,<T2>,..." CSV. Empty, "NaN" and unparseable
// cells become missing values. Rows are sorted by date; a repeated date is an error.
func Read(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read price header: %w", err)
	}
	if len(header) < 2 {
		return nil, ErrEmptyTable
	}

	t := New()
	for _, name := range header[1:] {
		t.Tickers = append(t.Tickers, strings.TrimSpace(name))
		t.Columns = append(t.Columns, nil)
	}

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read price row %d: %w", line, err)
		}
		if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
			continue
		}

		date, err := parseDate(record[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		t.Dates = append(t.Dates, date)

		for i := range t.Tickers {
			v := math.NaN()
			if i+1 < len(record) {
				v = parsePrice(record[i+1])
			}
			t.Columns[i] = append(t.Columns[i], v)
		}
	}

	t.sortByDate()
	if err := t.validate(); err != nil {
		return nil, err
	}

	return t, nil
}

// WriteFile writes the table as CSV, creating the parent directory
func (t *Table) WriteFile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create price table: %w", err)
	}
	defer f.Close()

	if err := t.Write(f); err != nil {
		return err
	}
	return f.Close()
}

// Write encodes the table as CSV. Missing values are written as empty cells.
func (t *Table) Write(w io.Writer) error {
	writer := csv.NewWriter(w)

	header := append([]string{"Date"}, t.Tickers...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write price header: %w", err)
	}

	record := make([]string, len(t.Tickers)+1)
	for r, d := range t.Dates {
		record[0] = d.Format(DateLayout)
		for i := range t.Tickers {
			v := t.Columns[i][r]
			if math.IsNaN(v) {
				record[i+1] = ""
				continue
			}
			record[i+1] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write price row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return truncateDay(d), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

func parsePrice(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
