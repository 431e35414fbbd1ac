package store

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/esgpulse/internal/pricetable"
	"github.com/wonny/esgpulse/pkg/logger"
)

// SchemaSQL creates the price table: one row per trading day, all closes of
// that day in a JSONB map keyed by ticker
const SchemaSQL = `CREATE TABLE IF NOT EXISTS stock_prices (
    id SERIAL PRIMARY KEY,
    date DATE NOT NULL UNIQUE,
    prices JSONB NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_stock_prices_date ON stock_prices(date);
CREATE INDEX IF NOT EXISTS idx_stock_prices_prices ON stock_prices USING GIN (prices);`

// PolicySQL opens the table for anonymous reads on hosted Postgres with
// row level security. It is printed by `upload --sql-only`, never executed.
const PolicySQL = `ALTER TABLE stock_prices ENABLE ROW LEVEL SECURITY;

CREATE POLICY "Enable read access for all users" ON stock_prices
    FOR SELECT USING (true);`

const upsertSQL = `
	INSERT INTO stock_prices (date, prices)
	VALUES ($1, $2::jsonb)
	ON CONFLICT (date) DO UPDATE SET
		prices = EXCLUDED.prices`

// PriceRepository persists price table rows to stock_prices
// ⭐ SSOT: stock_prices is only read and written here
type PriceRepository struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(pool *pgxpool.Pool, log *logger.Logger) *PriceRepository {
	return &PriceRepository{
		pool:   pool,
		logger: log.WithField("module", "store"),
	}
}

// EnsureSchema creates the table and indexes when missing
func (r *PriceRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, SchemaSQL); err != nil {
		return fmt.Errorf("create stock_prices: %w", err)
	}
	return nil
}

// UploadResult counts rows written and rows lost to failed batches
type UploadResult struct {
	Uploaded int
	Errors   int
	Batches  int
}

// UpsertRows writes rows in batches of batchSize, replacing existing dates.
// A failed batch is logged and counted; the upload carries on with the next one.
func (r *PriceRepository) UpsertRows(ctx context.Context, rows []pricetable.Row, batchSize int) (UploadResult, error) {
	var result UploadResult

	for _, chunk := range Chunk(rows, batchSize) {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		result.Batches++
		if err := r.upsertBatch(ctx, chunk); err != nil {
			result.Errors += len(chunk)
			r.logger.WithError(err).WithFields(map[string]interface{}{
				"batch": result.Batches,
				"from":  chunk[0].Date.Format(pricetable.DateLayout),
				"to":    chunk[len(chunk)-1].Date.Format(pricetable.DateLayout),
			}).Error("Batch upload failed")
			continue
		}

		result.Uploaded += len(chunk)
		r.logger.WithFields(map[string]interface{}{
			"batch":    result.Batches,
			"uploaded": result.Uploaded,
			"total":    len(rows),
		}).Debug("Batch uploaded")
	}

	r.logger.WithFields(map[string]interface{}{
		"uploaded": result.Uploaded,
		"errors":   result.Errors,
	}).Info("Price upload completed")

	return result, nil
}

func (r *PriceRepository) upsertBatch(ctx context.Context, rows []pricetable.Row) error {
	batch := &pgx.Batch{}
	for _, row := range rows {
		data, err := EncodePrices(row.Prices)
		if err != nil {
			return err
		}
		batch.Queue(upsertSQL, row.Date, string(data))
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range rows {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}

	return nil
}

// LoadTable reads every stored day back into a price table
func (r *PriceRepository) LoadTable(ctx context.Context) (*pricetable.Table, error) {
	query := `
		SELECT date, prices
		FROM stock_prices
		ORDER BY date ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query stock_prices: %w", err)
	}
	defer rows.Close()

	var out []pricetable.Row
	for rows.Next() {
		var date time.Time
		var raw []byte
		if err := rows.Scan(&date, &raw); err != nil {
			return nil, fmt.Errorf("scan stock_prices: %w", err)
		}

		prices, err := DecodePrices(raw)
		if err != nil {
			return nil, fmt.Errorf("decode prices for %s: %w", date.Format(pricetable.DateLayout), err)
		}
		out = append(out, pricetable.Row{Date: date, Prices: prices})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, pricetable.ErrEmptyTable
	}

	return pricetable.FromRows(out), nil
}

// LoadPrices makes the repository usable as a pipeline price source
func (r *PriceRepository) LoadPrices(ctx context.Context) (*pricetable.Table, error) {
	return r.LoadTable(ctx)
}

// EncodePrices serializes one day's closes, dropping non-finite values
func EncodePrices(prices map[string]float64) ([]byte, error) {
	clean := make(map[string]float64, len(prices))
	for ticker, v := range prices {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		clean[ticker] = v
	}
	return json.Marshal(clean)
}

// DecodePrices parses a stored JSONB price map. Null entries are dropped.
func DecodePrices(raw []byte) (map[string]float64, error) {
	var decoded map[string]*float64
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, err
	}
	prices := make(map[string]float64, len(decoded))
	for ticker, v := range decoded {
		if v != nil {
			prices[ticker] = *v
		}
	}
	return prices, nil
}

// Chunk splits rows into consecutive batches of at most size rows
func Chunk(rows []pricetable.Row, size int) [][]pricetable.Row {
	if size <= 0 {
		size = len(rows)
	}
	var chunks [][]pricetable.Row
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		chunks = append(chunks, rows[start:end])
	}
	return chunks
}
