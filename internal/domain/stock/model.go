package stock

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Source identifies which upstream provider produced a quote.
type Source string

const (
	SourceAlphaVantage Source = "ALPHA_VANTAGE"
	SourceYahoo        Source = "YAHOO"
)

// Stock represents a tracked equity.
// Maps to market.stocks table.
type Stock struct {
	Symbol        string     `json:"symbol" db:"symbol"`
	Name          string     `json:"name" db:"name"`
	Exchange      *string    `json:"exchange" db:"exchange"` // NYSE | NASDAQ | TSX | ...
	Currency      string     `json:"currency" db:"currency"`
	Sector        *string    `json:"sector" db:"sector"`
	Industry      *string    `json:"industry" db:"industry"`
	MarketCap     *int64     `json:"market_cap" db:"market_cap"`
	EPS           *float64   `json:"eps" db:"eps"` // trailing twelve months
	PERatio       *float64   `json:"pe_ratio" db:"pe_ratio"`
	DividendYield *float64   `json:"dividend_yield" db:"dividend_yield"` // fraction, e.g. 0.032
	Beta          *float64   `json:"beta" db:"beta"`
	OverviewTS    *time.Time `json:"overview_ts" db:"overview_ts"` // last fundamentals fetch
	CreatedTS     time.Time  `json:"created_ts" db:"created_ts"`
	UpdatedTS     time.Time  `json:"updated_ts" db:"updated_ts"`
}

// Quote represents a cached live quote for a symbol.
// Maps to market.quotes table (one row per symbol, upserted).
type Quote struct {
	Symbol    string           `json:"symbol" db:"symbol"`
	Price     decimal.Decimal  `json:"price" db:"price"`
	Change    *decimal.Decimal `json:"change" db:"change"`
	ChangePct *float64         `json:"change_pct" db:"change_pct"`
	Volume    *int64           `json:"volume" db:"volume"`
	PrevClose *decimal.Decimal `json:"prev_close" db:"prev_close"`
	Source    Source           `json:"source" db:"source"`
	FetchedTS time.Time        `json:"fetched_ts" db:"fetched_ts"`
}

// Age returns how long ago the quote was fetched.
func (q *Quote) Age() time.Duration {
	return time.Since(q.FetchedTS)
}

// ListFilter represents filter options for listing stocks
type ListFilter struct {
	Sector *string // exact sector match
	Search string  // symbol or name substring
	Sort   string  // symbol, name, market_cap, dividend_yield (default: symbol)
	Order  string  // asc, desc (default: asc)
	Page   int
	Limit  int // default 20, max 100
}

// ListResult represents paginated list result
type ListResult struct {
	Stocks     []Stock
	TotalCount int
	Page       int
	Limit      int
}

// ValidateSymbol validates symbol format: 1-10 uppercase letters/digits,
// optionally followed by an exchange suffix like ".TO" or ".V".
func ValidateSymbol(symbol string) error {
	base, suffix, hasSuffix := strings.Cut(symbol, ".")
	if hasSuffix && (len(suffix) < 1 || len(suffix) > 3) {
		return ErrInvalidSymbol
	}
	if len(base) < 1 || len(base) > 10 {
		return ErrInvalidSymbol
	}
	for _, c := range base {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') && c != '-' {
			return ErrInvalidSymbol
		}
	}
	return nil
}

// ValidateSort validates sort field
func ValidateSort(sort string) bool {
	switch sort {
	case "symbol", "name", "market_cap", "dividend_yield":
		return true
	}
	return false
}

// ValidateOrder validates order direction
func ValidateOrder(order string) bool {
	return order == "asc" || order == "desc"
}

// Normalize normalizes and validates ListFilter
func (f *ListFilter) Normalize() error {
	if f.Sort == "" {
		f.Sort = "symbol"
	}
	if !ValidateSort(f.Sort) {
		return ErrInvalidSort
	}

	if f.Order == "" {
		f.Order = "asc"
	}
	if !ValidateOrder(f.Order) {
		return ErrInvalidOrder
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}

	return nil
}
