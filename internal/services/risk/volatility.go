package risk

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// MinObservations is the minimum number of closes required to estimate
// volatility. Shorter series are excluded from scoring, not treated as errors.
const MinObservations = 6

// tradingDaysPerYear annualizes daily return volatility
const tradingDaysPerYear = 252

// PeriodReturns converts a chronologically ordered close series into simple
// period-over-period returns. Pairs with a zero previous close are skipped.
func PeriodReturns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		returns = append(returns, (closes[i]-closes[i-1])/closes[i-1])
	}
	return returns
}

// AnnualizedVolatility computes the annualized return volatility of a close
// series as a percentage: sample standard deviation of simple returns scaled
// by sqrt(252). Returns ok=false when the series is too short to estimate;
// a degenerate (constant) series yields 0, ok=true.
func AnnualizedVolatility(closes []float64) (float64, bool) {
	if len(closes) < MinObservations {
		return 0, false
	}

	returns := PeriodReturns(closes)
	if len(returns) < 2 {
		return 0, false
	}

	sd := stat.StdDev(returns, nil)
	if math.IsNaN(sd) || math.IsInf(sd, 0) {
		return 0, true
	}

	return sd * math.Sqrt(tradingDaysPerYear) * 100, true
}
