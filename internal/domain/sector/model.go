package sector

import "time"

// Aggregate holds per-sector averages computed from stored stocks and
// analyses. Maps to market.sector_aggregates table. Aggregates carry no
// TTL; they change only when explicitly refreshed.
type Aggregate struct {
	Name           string    `json:"name" db:"name"`
	StockCount     int       `json:"stock_count" db:"stock_count"`
	AvgYield       *float64  `json:"avg_yield" db:"avg_yield"`
	AvgPayoutRatio *float64  `json:"avg_payout_ratio" db:"avg_payout_ratio"`
	AvgSafetyScore *float64  `json:"avg_safety_score" db:"avg_safety_score"`
	RefreshedTS    time.Time `json:"refreshed_ts" db:"refreshed_ts"`
}

// Comparison positions one stock against its sector averages.
type Comparison struct {
	Symbol         string   `json:"symbol"`
	Sector         string   `json:"sector"`
	Yield          *float64 `json:"yield"`
	SectorYield    *float64 `json:"sector_yield"`
	PayoutRatio    *float64 `json:"payout_ratio"`
	SectorPayout   *float64 `json:"sector_payout"`
	SafetyScore    *float64 `json:"safety_score"`
	SectorSafety   *float64 `json:"sector_safety"`
	YieldRank      int      `json:"yield_rank"` // 1 = highest yield in sector
	SectorSize     int      `json:"sector_size"`
}
