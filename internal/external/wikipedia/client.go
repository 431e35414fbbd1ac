package wikipedia

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/esgpulse/pkg/httputil"
	"github.com/wonny/esgpulse/pkg/logger"
)

// ErrNoSymbolColumn is returned when the constituents table has no Symbol header
var ErrNoSymbolColumn = errors.New("symbol column not found")

// Client fetches the S&P 500 constituent list from Wikipedia
// ⭐ SSOT: the ticker universe is only scraped here
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	pageURL    string
}

// NewClient creates a new Wikipedia client
func NewClient(httpClient *httputil.Client, log *logger.Logger, pageURL string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		pageURL:    pageURL,
	}
}

// FetchSP500Tickers returns the Symbol column of the first constituents table,
// in page order
func (c *Client) FetchSP500Tickers(ctx context.Context) ([]string, error) {
	body, err := c.httpClient.GetBody(ctx, c.pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch constituents page: %w", err)
	}

	tickers, err := ParseSymbols(string(body))
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"url":   c.pageURL,
		"count": len(tickers),
	}).Info("Fetched S&P 500 tickers")

	return tickers, nil
}

// ParseSymbols extracts the Symbol column from the first wikitable on the page
func ParseSymbols(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	table := doc.Find("table.wikitable").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("constituents table not found")
	}

	col := -1
	table.Find("tr").First().Find("th").EachWithBreak(func(i int, th *goquery.Selection) bool {
		if strings.EqualFold(strings.TrimSpace(th.Text()), "Symbol") {
			col = i
			return false
		}
		return true
	})
	if col < 0 {
		return nil, ErrNoSymbolColumn
	}

	var tickers []string
	table.Find("tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() <= col {
			return
		}
		symbol := strings.TrimSpace(cells.Eq(col).Text())
		if symbol != "" {
			tickers = append(tickers, symbol)
		}
	})

	return tickers, nil
}

// YahooSymbol converts a class-share ticker to the dashed form Yahoo expects (BRK.B → BRK-B)
func YahooSymbol(ticker string) string {
	return strings.ReplaceAll(ticker, ".", "-")
}
