package esg

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// Reference table column names
const (
	ColTicker = "Ticker"
	ColTotal  = "TOTAL_ESG_SCORE"
	ColEnv    = "ENV_SCORE"
	ColSoc    = "SOC_SCORE"
	ColGov    = "GOV_SCORE"
)

var (
	ErrMissingColumn   = errors.New("missing column")
	ErrDuplicateTicker = errors.New("duplicate ticker")
)

// Entry is one row of the reference table. Unparseable or empty cells are NaN.
type Entry struct {
	Total         float64
	Environmental float64
	Social        float64
	Governance    float64
}

// Reference maps normalized tickers to their reference scores
type Reference map[string]Entry

// NormalizeTicker strips exchange suffixes: "AAPL US" -> "AAPL"
func NormalizeTicker(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// LoadReferenceFile reads the reference table from a CSV file
func LoadReferenceFile(path string) (Reference, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open esg reference: %w", err)
	}
	defer f.Close()

	return ParseReference(f)
}

// ParseReference reads a CSV with at least the Ticker, TOTAL_ESG_SCORE,
// ENV_SCORE, SOC_SCORE and GOV_SCORE columns. Extra columns are ignored.
// A ticker appearing twice after normalization is an error: the table is
// ambiguous and the caller falls back to synthetic scores.
func ParseReference(r io.Reader) (Reference, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read esg header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, col := range []string{ColTicker, ColTotal, ColEnv, ColSoc, ColGov} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	ref := make(Reference)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read esg row %d: %w", line, err)
		}

		ticker := NormalizeTicker(cell(record, idx[ColTicker]))
		if ticker == "" {
			continue
		}
		if _, exists := ref[ticker]; exists {
			return nil, fmt.Errorf("%w: %s (row %d)", ErrDuplicateTicker, ticker, line)
		}

		ref[ticker] = Entry{
			Total:         parseScore(cell(record, idx[ColTotal])),
			Environmental: parseScore(cell(record, idx[ColEnv])),
			Social:        parseScore(cell(record, idx[ColSoc])),
			Governance:    parseScore(cell(record, idx[ColGov])),
		}
	}

	return ref, nil
}

func cell(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseScore(s string) float64 {
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
