package strategy

import (
	"time"

	"github.com/google/uuid"
)

// Strategy is a stored dividend screening strategy.
// Maps to market.strategies table.
type Strategy struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Description    *string   `json:"description" db:"description"`
	MinYield       *float64  `json:"min_yield" db:"min_yield"`               // fraction
	MaxPayoutRatio *float64  `json:"max_payout_ratio" db:"max_payout_ratio"` // percent
	MinStreakYears *int      `json:"min_streak_years" db:"min_streak_years"`
	MaxBeta        *float64  `json:"max_beta" db:"max_beta"`
	CreatedTS      time.Time `json:"created_ts" db:"created_ts"`
}

// Match is one stock passing a strategy's filters.
type Match struct {
	Symbol      string   `json:"symbol"`
	Name        string   `json:"name"`
	Sector      *string  `json:"sector"`
	Yield       *float64 `json:"yield"`
	PayoutRatio *float64 `json:"payout_ratio"`
	StreakYears int      `json:"streak_years"`
	Beta        *float64 `json:"beta"`
	SafetyScore float64  `json:"safety_score"`
}

// Validate checks that at least one filter is set and bounds are sane.
func (s *Strategy) Validate() error {
	if s.Name == "" {
		return ErrMissingName
	}
	if s.MinYield == nil && s.MaxPayoutRatio == nil && s.MinStreakYears == nil && s.MaxBeta == nil {
		return ErrNoCriteria
	}
	if s.MinYield != nil && (*s.MinYield < 0 || *s.MinYield > 1) {
		return ErrInvalidCriteria
	}
	if s.MaxPayoutRatio != nil && *s.MaxPayoutRatio <= 0 {
		return ErrInvalidCriteria
	}
	if s.MinStreakYears != nil && *s.MinStreakYears < 0 {
		return ErrInvalidCriteria
	}
	if s.MaxBeta != nil && *s.MaxBeta <= 0 {
		return ErrInvalidCriteria
	}
	return nil
}
