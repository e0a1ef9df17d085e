// Package analytics implements the closed-form financial math used by the
// dividend and performance services: return series, risk measures against a
// benchmark, and the dividend safety score.
package analytics

import (
	"errors"
	"math"
)

var (
	ErrNotEnoughData  = errors.New("not enough data points")
	ErrLengthMismatch = errors.New("series must be the same length")
)

// TradingDaysPerYear is the annualization factor for daily return series.
const TradingDaysPerYear = 252

// DailyReturns converts a close-price series (oldest first) into simple
// daily returns. The result is one element shorter than the input.
func DailyReturns(closes []float64) ([]float64, error) {
	if len(closes) < 2 {
		return nil, ErrNotEnoughData
	}
	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, closes[i]/closes[i-1]-1)
	}
	return returns, nil
}

// CumulativeReturn returns the total fractional return over a close series.
func CumulativeReturn(closes []float64) (float64, error) {
	if len(closes) < 2 {
		return 0, ErrNotEnoughData
	}
	if closes[0] == 0 {
		return 0, ErrNotEnoughData
	}
	return closes[len(closes)-1]/closes[0] - 1, nil
}

// AnnualizedReturn converts a cumulative return over n trading days into a
// compound annual rate.
func AnnualizedReturn(cumulative float64, days int) float64 {
	if days <= 0 {
		return 0
	}
	years := float64(days) / TradingDaysPerYear
	return math.Pow(1+cumulative, 1/years) - 1
}

// CAGR returns the compound annual growth rate between two values.
func CAGR(first, last float64, years float64) (float64, error) {
	if years <= 0 || first <= 0 {
		return 0, ErrNotEnoughData
	}
	if last <= 0 {
		// Payments fell to zero; growth is a total loss, not a NaN.
		return -1, nil
	}
	return math.Pow(last/first, 1/years) - 1, nil
}
