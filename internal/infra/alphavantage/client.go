// Package alphavantage implements the primary market-data provider client.
// The free tier is heavily rate limited; throttle responses arrive both as
// HTTP 429 and as HTTP 200 bodies carrying a "Note"/"Information" field, and
// both are surfaced as stock.ErrRateLimited so callers can back off.
package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tnammu/dividash/internal/domain/dividend"
	"github.com/tnammu/dividash/internal/domain/etf"
	"github.com/tnammu/dividash/internal/domain/stock"
)

// ProviderName identifies this client in fetch logs and quote rows.
const ProviderName = "ALPHA_VANTAGE"

// Client handles Alpha Vantage API requests
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new Alpha Vantage client
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// globalQuoteResponse wraps the GLOBAL_QUOTE payload
type globalQuoteResponse struct {
	GlobalQuote struct {
		Symbol        string `json:"01. symbol"`
		Price         string `json:"05. price"`
		Volume        string `json:"06. volume"`
		PrevClose     string `json:"08. previous close"`
		Change        string `json:"09. change"`
		ChangePercent string `json:"10. change percent"`
	} `json:"Global Quote"`
}

// GetQuote fetches the current quote for a symbol
func (c *Client) GetQuote(ctx context.Context, symbol string) (*stock.Quote, error) {
	body, err := c.get(ctx, url.Values{
		"function": {"GLOBAL_QUOTE"},
		"symbol":   {symbol},
	})
	if err != nil {
		return nil, err
	}

	var resp globalQuoteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal global quote: %w", err)
	}

	// An unknown symbol comes back as an empty Global Quote object
	if resp.GlobalQuote.Symbol == "" || resp.GlobalQuote.Price == "" {
		return nil, stock.ErrSymbolUnknown
	}

	price, err := decimal.NewFromString(resp.GlobalQuote.Price)
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", resp.GlobalQuote.Price, err)
	}

	quote := &stock.Quote{
		Symbol:    symbol,
		Price:     price,
		Source:    stock.SourceAlphaVantage,
		FetchedTS: time.Now(),
	}

	if change, err := decimal.NewFromString(resp.GlobalQuote.Change); err == nil {
		quote.Change = &change
	}
	if prev, err := decimal.NewFromString(resp.GlobalQuote.PrevClose); err == nil {
		quote.PrevClose = &prev
	}
	if pctStr := strings.TrimSuffix(resp.GlobalQuote.ChangePercent, "%"); pctStr != "" {
		if pct, err := strconv.ParseFloat(pctStr, 64); err == nil {
			quote.ChangePct = &pct
		}
	}
	if vol, err := strconv.ParseInt(resp.GlobalQuote.Volume, 10, 64); err == nil {
		quote.Volume = &vol
	}

	return quote, nil
}

// dailySeriesResponse wraps TIME_SERIES_DAILY
type dailySeriesResponse struct {
	Series map[string]struct {
		Close string `json:"4. close"`
	} `json:"Time Series (Daily)"`
}

// GetDailyCloses fetches up to `days` daily closes, oldest first
func (c *Client) GetDailyCloses(ctx context.Context, symbol string, days int) ([]float64, error) {
	outputSize := "compact" // latest 100 points
	if days > 100 {
		outputSize = "full"
	}

	body, err := c.get(ctx, url.Values{
		"function":   {"TIME_SERIES_DAILY"},
		"symbol":     {symbol},
		"outputsize": {outputSize},
	})
	if err != nil {
		return nil, err
	}

	var resp dailySeriesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal daily series: %w", err)
	}

	if len(resp.Series) == 0 {
		return nil, stock.ErrSymbolUnknown
	}

	dates := make([]string, 0, len(resp.Series))
	for date := range resp.Series {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	if len(dates) > days {
		dates = dates[len(dates)-days:]
	}

	closes := make([]float64, 0, len(dates))
	for _, date := range dates {
		v, err := strconv.ParseFloat(resp.Series[date].Close, 64)
		if err != nil {
			return nil, fmt.Errorf("parse close for %s: %w", date, err)
		}
		closes = append(closes, v)
	}

	return closes, nil
}

// overviewResponse wraps the OVERVIEW payload. All values arrive as strings;
// missing values are "None" or "-".
type overviewResponse struct {
	Symbol        string `json:"Symbol"`
	Name          string `json:"Name"`
	Exchange      string `json:"Exchange"`
	Currency      string `json:"Currency"`
	Sector        string `json:"Sector"`
	Industry      string `json:"Industry"`
	MarketCap     string `json:"MarketCapitalization"`
	EPS           string `json:"EPS"`
	PERatio       string `json:"PERatio"`
	DividendYield string `json:"DividendYield"`
	Beta          string `json:"Beta"`
}

// GetOverview fetches company fundamentals for a symbol
func (c *Client) GetOverview(ctx context.Context, symbol string) (*stock.Stock, error) {
	body, err := c.get(ctx, url.Values{
		"function": {"OVERVIEW"},
		"symbol":   {symbol},
	})
	if err != nil {
		return nil, err
	}

	var resp overviewResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal overview: %w", err)
	}

	if resp.Symbol == "" {
		return nil, stock.ErrSymbolUnknown
	}

	now := time.Now()
	s := &stock.Stock{
		Symbol:     symbol,
		Name:       resp.Name,
		Currency:   resp.Currency,
		OverviewTS: &now,
	}
	if resp.Currency == "" {
		s.Currency = "USD"
	}
	if resp.Exchange != "" {
		s.Exchange = &resp.Exchange
	}
	if resp.Sector != "" && resp.Sector != "None" {
		s.Sector = &resp.Sector
	}
	if resp.Industry != "" && resp.Industry != "None" {
		s.Industry = &resp.Industry
	}
	if cap, err := strconv.ParseInt(resp.MarketCap, 10, 64); err == nil {
		s.MarketCap = &cap
	}
	if eps, ok := parseOptionalFloat(resp.EPS); ok {
		s.EPS = &eps
	}
	if pe, ok := parseOptionalFloat(resp.PERatio); ok {
		s.PERatio = &pe
	}
	if dy, ok := parseOptionalFloat(resp.DividendYield); ok {
		s.DividendYield = &dy
	}
	if beta, ok := parseOptionalFloat(resp.Beta); ok {
		s.Beta = &beta
	}

	return s, nil
}

// dividendsResponse wraps the DIVIDENDS payload
type dividendsResponse struct {
	Symbol string `json:"symbol"`
	Data   []struct {
		ExDividendDate string `json:"ex_dividend_date"`
		PaymentDate    string `json:"payment_date"`
		Amount         string `json:"amount"`
	} `json:"data"`
}

// GetDividends fetches the full dividend history for a symbol
func (c *Client) GetDividends(ctx context.Context, symbol string) ([]dividend.Dividend, error) {
	body, err := c.get(ctx, url.Values{
		"function": {"DIVIDENDS"},
		"symbol":   {symbol},
	})
	if err != nil {
		return nil, err
	}

	var resp dividendsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal dividends: %w", err)
	}

	dividends := make([]dividend.Dividend, 0, len(resp.Data))
	for _, d := range resp.Data {
		exDate, err := time.Parse("2006-01-02", d.ExDividendDate)
		if err != nil {
			continue
		}
		amount, err := decimal.NewFromString(d.Amount)
		if err != nil || amount.IsZero() {
			continue
		}

		div := dividend.Dividend{
			Symbol: symbol,
			ExDate: exDate,
			Amount: amount,
		}
		if payDate, err := time.Parse("2006-01-02", d.PaymentDate); err == nil {
			div.PayDate = &payDate
		}
		dividends = append(dividends, div)
	}

	return dividends, nil
}

// etfProfileResponse wraps the ETF_PROFILE payload
type etfProfileResponse struct {
	NetAssets       string `json:"net_assets"`
	NetExpenseRatio string `json:"net_expense_ratio"`
	DividendYield   string `json:"dividend_yield"`
	InceptionDate   string `json:"inception_date"`
	Holdings        []struct {
		Symbol      string `json:"symbol"`
		Description string `json:"description"`
		Weight      string `json:"weight"`
	} `json:"holdings"`
}

// GetETFProfile fetches the profile for an ETF symbol
func (c *Client) GetETFProfile(ctx context.Context, symbol string) (*etf.ETF, error) {
	body, err := c.get(ctx, url.Values{
		"function": {"ETF_PROFILE"},
		"symbol":   {symbol},
	})
	if err != nil {
		return nil, err
	}

	var resp etfProfileResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal etf profile: %w", err)
	}

	if resp.NetAssets == "" && len(resp.Holdings) == 0 {
		return nil, stock.ErrSymbolUnknown
	}

	e := &etf.ETF{Symbol: symbol}
	if assets, err := strconv.ParseInt(resp.NetAssets, 10, 64); err == nil {
		e.NetAssets = &assets
	}
	if ratio, ok := parseOptionalFloat(resp.NetExpenseRatio); ok {
		e.ExpenseRatio = &ratio
	}
	if dy, ok := parseOptionalFloat(resp.DividendYield); ok {
		e.DividendYield = &dy
	}
	if inception, err := time.Parse("2006-01-02", resp.InceptionDate); err == nil {
		e.InceptionDate = &inception
	}

	// Keep the ten largest constituents
	for i, h := range resp.Holdings {
		if i >= 10 {
			break
		}
		weight, _ := strconv.ParseFloat(h.Weight, 64)
		e.TopHoldings = append(e.TopHoldings, etf.Holding{
			Symbol: h.Symbol,
			Name:   h.Description,
			Weight: weight,
		})
	}

	return e, nil
}

// commodityResponse wraps the commodity endpoints (WTI, BRENT, ...)
type commodityResponse struct {
	Name string `json:"name"`
	Unit string `json:"unit"`
	Data []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"data"`
}

// CommodityValue is the latest observation for a commodity series
type CommodityValue struct {
	Name  string
	Unit  string
	Value decimal.Decimal
	Date  time.Time
}

// GetCommodity fetches the latest value of a commodity series. The function
// parameter is the Alpha Vantage series name (WTI, BRENT, NATURAL_GAS,
// COPPER, ALUMINUM, WHEAT, CORN, COFFEE, SUGAR).
func (c *Client) GetCommodity(ctx context.Context, function string) (*CommodityValue, error) {
	body, err := c.get(ctx, url.Values{
		"function": {function},
		"interval": {"daily"},
	})
	if err != nil {
		return nil, err
	}

	var resp commodityResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal commodity: %w", err)
	}

	// Entries are newest first; "." marks missing observations
	for _, d := range resp.Data {
		value, err := decimal.NewFromString(d.Value)
		if err != nil {
			continue
		}
		date, err := time.Parse("2006-01-02", d.Date)
		if err != nil {
			continue
		}
		return &CommodityValue{
			Name:  resp.Name,
			Unit:  resp.Unit,
			Value: value,
			Date:  date,
		}, nil
	}

	return nil, stock.ErrSymbolUnknown
}

// get performs a GET against the query endpoint and normalizes throttle
// responses into stock.ErrRateLimited.
func (c *Client) get(ctx context.Context, params url.Values) ([]byte, error) {
	params.Set("apikey", c.apiKey)

	reqURL := fmt.Sprintf("%s/query?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %v: %w", err, stock.ErrProviderFailure)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %v: %w", err, stock.ErrProviderFailure)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, stock.ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alphavantage: status=%d body=%s: %w", resp.StatusCode, string(body), stock.ErrProviderFailure)
	}

	// Throttle and error notices come back as 200 with a message field
	var notice struct {
		Note         string `json:"Note"`
		Information  string `json:"Information"`
		ErrorMessage string `json:"Error Message"`
	}
	if err := json.Unmarshal(body, &notice); err == nil {
		if notice.Note != "" || notice.Information != "" {
			return nil, stock.ErrRateLimited
		}
		if notice.ErrorMessage != "" {
			return nil, fmt.Errorf("alphavantage: %s: %w", notice.ErrorMessage, stock.ErrProviderFailure)
		}
	}

	return body, nil
}

// parseOptionalFloat parses Alpha Vantage's stringly-typed numeric fields,
// where "None", "-" and "" all mean absent.
func parseOptionalFloat(s string) (float64, bool) {
	if s == "" || s == "None" || s == "-" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
