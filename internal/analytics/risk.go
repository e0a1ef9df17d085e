package analytics

import (
	"math"

	"github.com/montanaflynn/stats"
)

// Beta is covariance(asset, benchmark) / variance(benchmark), computed over
// aligned daily return series.
func Beta(assetReturns, benchReturns []float64) (float64, error) {
	if len(assetReturns) != len(benchReturns) {
		return 0, ErrLengthMismatch
	}
	if len(assetReturns) < 2 {
		return 0, ErrNotEnoughData
	}

	cov, err := stats.Covariance(stats.Float64Data(assetReturns), stats.Float64Data(benchReturns))
	if err != nil {
		return 0, err
	}
	variance, err := stats.SampleVariance(stats.Float64Data(benchReturns))
	if err != nil {
		return 0, err
	}
	if variance == 0 {
		return 0, ErrNotEnoughData
	}
	return cov / variance, nil
}

// Alpha is the asset's annualized excess return over what beta predicts:
// alpha = Ra - rf - beta*(Rb - rf), with annualized returns.
func Alpha(assetAnnual, benchAnnual, beta, riskFree float64) float64 {
	return assetAnnual - riskFree - beta*(benchAnnual-riskFree)
}

// Correlation is the Pearson correlation of two aligned return series.
func Correlation(assetReturns, benchReturns []float64) (float64, error) {
	if len(assetReturns) != len(benchReturns) {
		return 0, ErrLengthMismatch
	}
	if len(assetReturns) < 2 {
		return 0, ErrNotEnoughData
	}
	return stats.Correlation(stats.Float64Data(assetReturns), stats.Float64Data(benchReturns))
}

// MaxDrawdown returns the largest peak-to-trough decline of a close series
// as a positive fraction (0.25 = a 25% drawdown).
func MaxDrawdown(closes []float64) (float64, error) {
	if len(closes) < 2 {
		return 0, ErrNotEnoughData
	}

	peak := closes[0]
	maxDD := 0.0
	for _, c := range closes[1:] {
		if c > peak {
			peak = c
			continue
		}
		if peak > 0 {
			dd := (peak - c) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD, nil
}

// SharpeRatio annualizes mean and stdev of a daily return series and
// returns (Ra - rf) / stdev.
func SharpeRatio(dailyReturns []float64, riskFree float64) (float64, error) {
	if len(dailyReturns) < 2 {
		return 0, ErrNotEnoughData
	}

	mean, err := stats.Mean(stats.Float64Data(dailyReturns))
	if err != nil {
		return 0, err
	}
	stdev, err := stats.StandardDeviationSample(stats.Float64Data(dailyReturns))
	if err != nil {
		return 0, err
	}
	if stdev == 0 {
		// A flat return series has no volatility to price
		return 0, nil
	}

	annualReturn := mean * TradingDaysPerYear
	annualStdev := stdev * math.Sqrt(TradingDaysPerYear)
	return (annualReturn - riskFree) / annualStdev, nil
}
