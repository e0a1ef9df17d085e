package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind distinguishes the two non-equity instrument types we track.
type Kind string

const (
	KindCommodity Kind = "COMMODITY"
	KindIndex     Kind = "INDEX"
)

// Instrument represents a tracked commodity or index with its latest value.
// Maps to market.instruments table. Values follow the 15 minute quote TTL.
type Instrument struct {
	Symbol    string          `json:"symbol" db:"symbol"` // e.g. WTI, XAUUSD, SPX, GSPTSE
	Name      string          `json:"name" db:"name"`
	Kind      Kind            `json:"kind" db:"kind"`
	Value     decimal.Decimal `json:"value" db:"value"`
	Unit      *string         `json:"unit" db:"unit"` // e.g. "USD/bbl"; nil for indexes
	ChangePct *float64        `json:"change_pct" db:"change_pct"`
	Source    string          `json:"source" db:"source"`
	FetchedTS time.Time       `json:"fetched_ts" db:"fetched_ts"`
}

// Age returns how long ago the value was fetched.
func (i *Instrument) Age() time.Duration {
	return time.Since(i.FetchedTS)
}
