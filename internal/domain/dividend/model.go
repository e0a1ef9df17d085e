package dividend

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dividend represents a single dividend payment.
// Maps to market.dividends table (unique on symbol + ex_date).
type Dividend struct {
	Symbol    string          `json:"symbol" db:"symbol"`
	ExDate    time.Time       `json:"ex_date" db:"ex_date"`
	PayDate   *time.Time      `json:"pay_date" db:"pay_date"`
	Amount    decimal.Decimal `json:"amount" db:"amount"` // per share, declared currency
	CreatedTS time.Time       `json:"created_ts" db:"created_ts"`
}

// Analysis represents the derived dividend metrics for a symbol.
// Maps to market.dividend_analyses table (one row per symbol, upserted).
// Rows older than the analysis TTL are recomputed on read.
type Analysis struct {
	Symbol       string    `json:"symbol" db:"symbol"`
	Yield        *float64  `json:"yield" db:"yield"`               // fraction
	PayoutRatio  *float64  `json:"payout_ratio" db:"payout_ratio"` // percent
	Growth1Y     *float64  `json:"growth_1y" db:"growth_1y"`       // fraction per year
	Growth3Y     *float64  `json:"growth_3y" db:"growth_3y"`
	Growth5Y     *float64  `json:"growth_5y" db:"growth_5y"`
	StreakYears  int       `json:"streak_years" db:"streak_years"`
	AnnualAmount *float64  `json:"annual_amount" db:"annual_amount"` // trailing 12m per share
	SafetyScore  float64   `json:"safety_score" db:"safety_score"`   // 0..100
	ComputedTS   time.Time `json:"computed_ts" db:"computed_ts"`
}

// Age returns how long ago the analysis was computed.
func (a *Analysis) Age() time.Duration {
	return time.Since(a.ComputedTS)
}
