package analytics

import "sort"

// PayoutRatio returns dividend per share over earnings per share as a
// percentage. Non-positive EPS means the ratio is undefined; callers treat
// that as worst case rather than an error.
func PayoutRatio(dividendPerShare, eps float64) (float64, bool) {
	if eps <= 0 {
		return 0, false
	}
	return dividendPerShare / eps * 100, true
}

// Yield returns annual dividend per share over price as a fraction.
func Yield(annualDividend, price float64) (float64, error) {
	if price <= 0 {
		return 0, ErrNotEnoughData
	}
	return annualDividend / price, nil
}

// AnnualDividend is the summed dividend per share for one calendar year.
type AnnualDividend struct {
	Year  int
	Total float64
}

// SortAnnual sorts annual totals oldest first.
func SortAnnual(annuals []AnnualDividend) {
	sort.Slice(annuals, func(i, j int) bool { return annuals[i].Year < annuals[j].Year })
}

// GrowthRate returns the CAGR of annual dividend totals over the trailing
// `years` complete years. The most recent (possibly partial) year is the
// last element; it is excluded from the base series.
func GrowthRate(annuals []AnnualDividend, years int) (float64, error) {
	if years < 1 || len(annuals) < years+1 {
		return 0, ErrNotEnoughData
	}
	SortAnnual(annuals)

	last := annuals[len(annuals)-1]
	first := annuals[len(annuals)-1-years]
	return CAGR(first.Total, last.Total, float64(years))
}

// PaymentStreak returns the number of consecutive years, ending at the most
// recent year in the series, in which the dividend was paid and not cut
// below the prior year's total.
func PaymentStreak(annuals []AnnualDividend) int {
	if len(annuals) == 0 {
		return 0
	}
	SortAnnual(annuals)

	streak := 0
	for i := len(annuals) - 1; i >= 0; i-- {
		if annuals[i].Total <= 0 {
			break
		}
		// Gap in years means the streak is broken.
		if i < len(annuals)-1 && annuals[i+1].Year-annuals[i].Year != 1 {
			break
		}
		// A cut breaks the streak at the year it happened.
		if i > 0 && annuals[i].Total < annuals[i-1].Total {
			streak++
			break
		}
		streak++
	}
	return streak
}

// SafetyInputs are the raw metrics feeding the safety score. Pointer fields
// are nil when the underlying data is unavailable.
type SafetyInputs struct {
	PayoutRatio *float64 // percent; nil when EPS <= 0 (scored worst case)
	Yield       *float64 // fraction
	GrowthRate  *float64 // fraction per year, best available horizon
	StreakYears int
	Beta        *float64
}

// Safety score component weights. They sum to 1.
const (
	weightPayout = 0.30
	weightGrowth = 0.20
	weightStreak = 0.20
	weightYield  = 0.15
	weightBeta   = 0.15
)

// SafetyScore is the weighted average of the normalized components,
// clamped to [0, 100].
func SafetyScore(in SafetyInputs) float64 {
	score := weightPayout*payoutScore(in.PayoutRatio) +
		weightGrowth*growthScore(in.GrowthRate) +
		weightStreak*streakScore(in.StreakYears) +
		weightYield*yieldScore(in.Yield) +
		weightBeta*betaScore(in.Beta)

	return clamp(score, 0, 100)
}

// payoutScore: below 35% is fully sustainable, above 100% (or negative
// earnings) earns nothing, linear in between.
func payoutScore(ratio *float64) float64 {
	if ratio == nil {
		return 0
	}
	r := *ratio
	switch {
	case r <= 0:
		return 0
	case r <= 35:
		return 100
	case r >= 100:
		return 0
	default:
		return 100 * (100 - r) / 65
	}
}

// yieldScore: 2-6% is the sweet spot. Very high yields usually signal a
// distressed price, so they score poorly.
func yieldScore(yield *float64) float64 {
	if yield == nil {
		return 0
	}
	y := *yield * 100 // percent
	switch {
	case y <= 0:
		return 0
	case y < 2:
		return 50 + 25*y
	case y <= 6:
		return 100
	case y <= 10:
		return 100 - 22.5*(y-6)
	default:
		return 10
	}
}

// growthScore: +10%/yr or better is full marks, flat is 50, -10%/yr or
// worse is zero.
func growthScore(growth *float64) float64 {
	if growth == nil {
		return 50 // unknown history, neutral
	}
	g := *growth * 100
	return clamp(50+5*g, 0, 100)
}

// streakScore: 25 uninterrupted years earns full marks.
func streakScore(years int) float64 {
	return clamp(float64(years)*4, 0, 100)
}

// betaScore: low-volatility payers score best; beta above 1.6 is penalized
// hard. Unknown beta is neutral.
func betaScore(beta *float64) float64 {
	if beta == nil {
		return 50
	}
	b := *beta
	switch {
	case b <= 0.8:
		return 100
	case b >= 1.6:
		return 10
	default:
		return 100 - 112.5*(b-0.8)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
