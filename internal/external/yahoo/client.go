package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/url"
	"sort"
	"time"

	"github.com/wonny/esgpulse/internal/contracts"
	"github.com/wonny/esgpulse/pkg/httputil"
	"github.com/wonny/esgpulse/pkg/logger"
)

// ErrNoData is returned when Yahoo has no usable closes for a symbol
var ErrNoData = errors.New("no price data")

// Client fetches daily close histories from the Yahoo Finance chart API
// ⭐ SSOT: Yahoo chart API calls only go through this client
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Yahoo Finance client
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    baseURL,
	}
}

// chartResponse is the subset of the v8 chart payload we read
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// FetchCloses returns the daily close history of symbol over rng (e.g. "5y").
// Dividend/split adjusted closes are preferred when Yahoo provides them.
func (c *Client) FetchCloses(ctx context.Context, symbol, rng string) (contracts.PriceSeries, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s&events=div%%2Csplit",
		c.baseURL, url.PathEscape(symbol), url.QueryEscape(rng))

	body, err := c.httpClient.GetBody(ctx, u)
	if err != nil {
		var statusErr *httputil.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == 404 {
			return contracts.PriceSeries{}, fmt.Errorf("%s: %w", symbol, ErrNoData)
		}
		return contracts.PriceSeries{}, fmt.Errorf("yahoo fetch %s: %w", symbol, err)
	}

	series, err := ParseChart(symbol, body)
	if err != nil {
		return contracts.PriceSeries{}, err
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"points": series.Len(),
	}).Debug("Fetched price history")

	return series, nil
}

// ParseChart decodes a chart payload into a date-ordered series, dropping null closes
func ParseChart(symbol string, body []byte) (contracts.PriceSeries, error) {
	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return contracts.PriceSeries{}, fmt.Errorf("yahoo decode %s: %w", symbol, err)
	}
	if chart.Chart.Error != nil {
		return contracts.PriceSeries{}, fmt.Errorf("yahoo api error for %s: %s: %w",
			symbol, chart.Chart.Error.Description, ErrNoData)
	}
	if len(chart.Chart.Result) == 0 {
		return contracts.PriceSeries{}, fmt.Errorf("%s: %w", symbol, ErrNoData)
	}

	result := chart.Chart.Result[0]

	var closes []*float64
	if len(result.Indicators.AdjClose) > 0 && len(result.Indicators.AdjClose[0].AdjClose) > 0 {
		closes = result.Indicators.AdjClose[0].AdjClose
	} else if len(result.Indicators.Quote) > 0 {
		closes = result.Indicators.Quote[0].Close
	}

	byDay := make(map[time.Time]float64, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue // holidays and halted sessions
		}
		price := *closes[i]
		if math.IsNaN(price) || price <= 0 {
			continue
		}
		t := time.Unix(ts, 0).UTC()
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		byDay[day] = price // last quote of the day wins
	}

	if len(byDay) == 0 {
		return contracts.PriceSeries{}, fmt.Errorf("%s: %w", symbol, ErrNoData)
	}

	points := make([]contracts.PricePoint, 0, len(byDay))
	for day, price := range byDay {
		points = append(points, contracts.PricePoint{Date: day, Price: price})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date.Before(points[j].Date) })

	return contracts.PriceSeries{Ticker: symbol, Points: points}, nil
}
