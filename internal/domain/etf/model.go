package etf

import (
	"time"

	"github.com/shopspring/decimal"
)

// ETF represents a tracked exchange-traded fund.
// Maps to market.etfs table.
type ETF struct {
	Symbol        string           `json:"symbol" db:"symbol"`
	Name          string           `json:"name" db:"name"`
	ExpenseRatio  *float64         `json:"expense_ratio" db:"expense_ratio"` // fraction
	NetAssets     *int64           `json:"net_assets" db:"net_assets"`
	DividendYield *float64         `json:"dividend_yield" db:"dividend_yield"`
	InceptionDate *time.Time       `json:"inception_date" db:"inception_date"`
	Price         *decimal.Decimal `json:"price" db:"price"`
	PriceTS       *time.Time       `json:"price_ts" db:"price_ts"`
	TopHoldings   []Holding        `json:"top_holdings" db:"top_holdings"` // stored as jsonb
	CreatedTS     time.Time        `json:"created_ts" db:"created_ts"`
	UpdatedTS     time.Time        `json:"updated_ts" db:"updated_ts"`
}

// Holding is one constituent of an ETF.
type Holding struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name"`
	Weight float64 `json:"weight"` // fraction
}
