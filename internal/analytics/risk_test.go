package analytics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDailyReturns(t *testing.T) {
	t.Run("simple series", func(t *testing.T) {
		returns, err := DailyReturns([]float64{100, 110, 99})
		require.NoError(t, err)
		require.Len(t, returns, 2)
		require.InDelta(t, 0.10, returns[0], 1e-9)
		require.InDelta(t, -0.10, returns[1], 1e-9)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := DailyReturns([]float64{100})
		require.ErrorIs(t, err, ErrNotEnoughData)
	})

	t.Run("zero price does not divide by zero", func(t *testing.T) {
		returns, err := DailyReturns([]float64{0, 10})
		require.NoError(t, err)
		require.Equal(t, 0.0, returns[0])
	})
}

func TestBeta(t *testing.T) {
	t.Run("asset identical to benchmark has beta 1", func(t *testing.T) {
		bench := []float64{0.01, -0.02, 0.015, 0.005, -0.01}
		beta, err := Beta(bench, bench)
		require.NoError(t, err)
		require.InDelta(t, 1.0, beta, 1e-9)
	})

	t.Run("asset at double the benchmark has beta 2", func(t *testing.T) {
		bench := []float64{0.01, -0.02, 0.015, 0.005, -0.01}
		asset := make([]float64, len(bench))
		for i, r := range bench {
			asset[i] = 2 * r
		}
		beta, err := Beta(asset, bench)
		require.NoError(t, err)
		require.InDelta(t, 2.0, beta, 1e-9)
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, err := Beta([]float64{0.01}, []float64{0.01, 0.02})
		require.ErrorIs(t, err, ErrLengthMismatch)
	})

	t.Run("flat benchmark has no variance", func(t *testing.T) {
		_, err := Beta([]float64{0.01, 0.02, 0.03}, []float64{0.01, 0.01, 0.01})
		require.ErrorIs(t, err, ErrNotEnoughData)
	})
}

func TestAlpha(t *testing.T) {
	// Asset returned 12%, benchmark 8%, beta 1, rf 4%:
	// alpha = 0.12 - 0.04 - 1*(0.08 - 0.04) = 0.04
	alpha := Alpha(0.12, 0.08, 1.0, 0.04)
	require.InDelta(t, 0.04, alpha, 1e-9)
}

func TestCorrelation(t *testing.T) {
	t.Run("perfectly correlated", func(t *testing.T) {
		a := []float64{0.01, 0.02, -0.01, 0.03}
		b := []float64{0.02, 0.04, -0.02, 0.06}
		corr, err := Correlation(a, b)
		require.NoError(t, err)
		require.InDelta(t, 1.0, corr, 1e-9)
	})

	t.Run("perfectly anti-correlated", func(t *testing.T) {
		a := []float64{0.01, 0.02, -0.01, 0.03}
		b := []float64{-0.01, -0.02, 0.01, -0.03}
		corr, err := Correlation(a, b)
		require.NoError(t, err)
		require.InDelta(t, -1.0, corr, 1e-9)
	})
}

func TestMaxDrawdown(t *testing.T) {
	t.Run("single drawdown", func(t *testing.T) {
		// Peak 120, trough 90: drawdown 25%
		dd, err := MaxDrawdown([]float64{100, 120, 90, 110})
		require.NoError(t, err)
		require.InDelta(t, 0.25, dd, 1e-9)
	})

	t.Run("monotonic rise has zero drawdown", func(t *testing.T) {
		dd, err := MaxDrawdown([]float64{100, 101, 102, 103})
		require.NoError(t, err)
		require.Equal(t, 0.0, dd)
	})

	t.Run("drawdown measured from the highest peak", func(t *testing.T) {
		// First dip 100->95 (5%), later peak 140 -> 98 (30%)
		dd, err := MaxDrawdown([]float64{100, 95, 140, 98})
		require.NoError(t, err)
		require.InDelta(t, 0.30, dd, 1e-9)
	})
}

func TestSharpeRatio(t *testing.T) {
	t.Run("constant returns have zero sharpe", func(t *testing.T) {
		// Zero stdev makes the ratio undefined; report no edge.
		s, err := SharpeRatio([]float64{0.01, 0.01, 0.01}, 0.04)
		require.NoError(t, err)
		require.Zero(t, s)
	})

	t.Run("higher mean beats higher volatility", func(t *testing.T) {
		steady := []float64{0.004, 0.005, 0.004, 0.006, 0.005}
		choppy := []float64{0.05, -0.045, 0.05, -0.044, 0.012}
		s1, err := SharpeRatio(steady, 0.04)
		require.NoError(t, err)
		s2, err := SharpeRatio(choppy, 0.04)
		require.NoError(t, err)
		require.Greater(t, s1, s2)
	})
}

func TestCumulativeAndAnnualized(t *testing.T) {
	cum, err := CumulativeReturn([]float64{100, 150})
	require.NoError(t, err)
	require.InDelta(t, 0.50, cum, 1e-9)

	// 50% over exactly one year of trading days
	annual := AnnualizedReturn(cum, TradingDaysPerYear)
	require.InDelta(t, 0.50, annual, 1e-9)

	// 21% over two years annualizes to 10%
	annual = AnnualizedReturn(0.21, 2*TradingDaysPerYear)
	require.InDelta(t, 0.10, annual, 1e-9)
}
