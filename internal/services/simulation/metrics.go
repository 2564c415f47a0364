package simulation

import (
	"fmt"
	"math"

	"github.com/thrivehq/thrive/internal/models"
)

// riskChangeThreshold is the minimum absolute risk-score delta worth calling
// out as an insight
const riskChangeThreshold = 5.0

// concentrationWarnPercent is the top-holding share above which a
// concentration warning is emitted
const concentrationWarnPercent = 30.0

// computeMetrics builds the aggregate snapshot for one ledger
func computeMetrics(ledger models.Ledger) models.PortfolioMetrics {
	topSymbol, topPct := ledger.TopHolding()

	allocation := make(map[string]float64)
	for t, pct := range ledger.AllocationByType() {
		allocation[string(t)] = pct
	}

	score := ExposureScore(topPct, ledger.Count(), ledger.AssetTypeCount())

	return models.PortfolioMetrics{
		TotalValue:        ledger.TotalValue(),
		HoldingsCount:     ledger.Count(),
		AssetTypeCount:    ledger.AssetTypeCount(),
		TopHoldingPercent: topPct,
		TopHoldingSymbol:  topSymbol,
		RiskScore:         score,
		RiskLevel:         ExposureLevel(score),
		Allocation:        allocation,
	}
}

// ExposureScore is the simplified simulation risk score (0–100, higher =
// riskier). Deliberately cheaper than the full scorer — no volatility term —
// and kept as a separate policy:
//
//	clamp(50 + min(topPct,50) − min(count·3,30) − min(types·5,20), 0, 100)
func ExposureScore(topPct float64, holdingsCount, assetTypeCount int) float64 {
	score := 50 +
		math.Min(topPct, 50) -
		math.Min(float64(holdingsCount)*3, 30) -
		math.Min(float64(assetTypeCount)*5, 20)

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// ExposureLevel maps a simplified score to its band. This scale differs from
// the full assessment's bands on purpose.
func ExposureLevel(score float64) string {
	switch {
	case score <= 30:
		return "Low"
	case score <= 50:
		return "Medium"
	case score <= 70:
		return "High"
	default:
		return "Very High"
	}
}

// buildInsights generates the narrative insight list in fixed order:
// value change, risk change, holdings delta, concentration warning.
// Each entry is conditional and independently optional.
func buildInsights(current, simulated models.PortfolioMetrics, delta models.ChangeSummary) []string {
	insights := []string{}

	if delta.ValueChange > 0 {
		insights = append(insights, fmt.Sprintf("Portfolio value would increase by $%.2f", delta.ValueChange))
	} else if delta.ValueChange < 0 {
		insights = append(insights, fmt.Sprintf("Portfolio value would decrease by $%.2f", -delta.ValueChange))
	}

	if delta.RiskChange > riskChangeThreshold {
		insights = append(insights, fmt.Sprintf("Risk score would increase by %.0f points", delta.RiskChange))
	} else if delta.RiskChange < -riskChangeThreshold {
		insights = append(insights, fmt.Sprintf("Risk score would decrease by %.0f points", -delta.RiskChange))
	}

	if delta.HoldingsChange > 0 {
		insights = append(insights, fmt.Sprintf("%d holding(s) would be added to the portfolio", delta.HoldingsChange))
	} else if delta.HoldingsChange < 0 {
		insights = append(insights, fmt.Sprintf("%d holding(s) would be removed from the portfolio", -delta.HoldingsChange))
	}

	if simulated.TopHoldingPercent > concentrationWarnPercent {
		insights = append(insights, fmt.Sprintf(
			"Warning: %s would make up %.1f%% of your portfolio - consider diversifying",
			simulated.TopHoldingSymbol, simulated.TopHoldingPercent))
	}

	return insights
}
