// Package yahoo implements the secondary market-data provider client. It is
// the fallback when Alpha Vantage is throttled or does not know a symbol,
// and the only source for index quotes.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tnammu/dividash/internal/domain/stock"
)

// ProviderName identifies this client in fetch logs and quote rows.
const ProviderName = "YAHOO"

// Client handles Yahoo Finance chart API requests
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Yahoo Finance client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// chartResponse wraps the v8 chart API payload
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				Currency           string  `json:"currency"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"chartPreviousClose"`
				RegularMarketVolume int64  `json:"regularMarketVolume"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// GetQuote fetches the current quote for a symbol from chart metadata
func (c *Client) GetQuote(ctx context.Context, symbol string) (*stock.Quote, error) {
	resp, err := c.chart(ctx, symbol, "1d")
	if err != nil {
		return nil, err
	}

	meta := resp.Chart.Result[0].Meta
	if meta.RegularMarketPrice == 0 {
		return nil, stock.ErrSymbolUnknown
	}

	quote := &stock.Quote{
		Symbol:    symbol,
		Price:     decimal.NewFromFloat(meta.RegularMarketPrice),
		Source:    stock.SourceYahoo,
		FetchedTS: time.Now(),
	}

	if meta.PreviousClose > 0 {
		prev := decimal.NewFromFloat(meta.PreviousClose)
		quote.PrevClose = &prev
		change := quote.Price.Sub(prev)
		quote.Change = &change
		pct := change.Div(prev).InexactFloat64() * 100
		quote.ChangePct = &pct
	}
	if meta.RegularMarketVolume > 0 {
		vol := meta.RegularMarketVolume
		quote.Volume = &vol
	}

	return quote, nil
}

// GetDailyCloses fetches up to `days` daily closes, oldest first
func (c *Client) GetDailyCloses(ctx context.Context, symbol string, days int) ([]float64, error) {
	resp, err := c.chart(ctx, symbol, rangeForDays(days))
	if err != nil {
		return nil, err
	}

	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, stock.ErrSymbolUnknown
	}

	raw := result.Indicators.Quote[0].Close
	closes := make([]float64, 0, len(raw))
	for _, v := range raw {
		// Holiday gaps arrive as nulls
		if v != nil {
			closes = append(closes, *v)
		}
	}

	if len(closes) == 0 {
		return nil, stock.ErrSymbolUnknown
	}
	if len(closes) > days {
		closes = closes[len(closes)-days:]
	}

	return closes, nil
}

// chart performs a chart API request
func (c *Client) chart(ctx context.Context, symbol, dataRange string) (*chartResponse, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=1d", c.baseURL, symbol, dataRange)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "application/json")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %v: %w", err, stock.ErrProviderFailure)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %v: %w", err, stock.ErrProviderFailure)
	}

	if httpResp.StatusCode == http.StatusTooManyRequests {
		return nil, stock.ErrRateLimited
	}
	if httpResp.StatusCode == http.StatusNotFound {
		return nil, stock.ErrSymbolUnknown
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status=%d body=%s: %w", httpResp.StatusCode, string(body), stock.ErrProviderFailure)
	}

	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal chart: %w", err)
	}

	if resp.Chart.Error != nil {
		if resp.Chart.Error.Code == "Not Found" {
			return nil, stock.ErrSymbolUnknown
		}
		return nil, fmt.Errorf("yahoo: %s: %s: %w", resp.Chart.Error.Code, resp.Chart.Error.Description, stock.ErrProviderFailure)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, stock.ErrSymbolUnknown
	}

	return &resp, nil
}

// rangeForDays maps a day count onto the closest chart API range bucket
func rangeForDays(days int) string {
	switch {
	case days <= 5:
		return "5d"
	case days <= 21:
		return "1mo"
	case days <= 63:
		return "3mo"
	case days <= 126:
		return "6mo"
	case days <= 252:
		return "1y"
	case days <= 504:
		return "2y"
	default:
		return "5y"
	}
}
