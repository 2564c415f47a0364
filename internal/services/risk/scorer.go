package risk

import (
	"fmt"

	"github.com/thrivehq/thrive/internal/models"
)

// factorWeights are the composite blend weights, applied positionally to the
// factors in generation order: diversification, concentration, volatility,
// asset types. Missing trailing factors are padded with neutralScore so
// exactly four weighted terms are always summed.
var factorWeights = [4]float64{0.25, 0.30, 0.25, 0.20}

const neutralScore = 50.0

// Risk level bands for the full assessment score
const (
	levelLow      = "Low Risk"
	levelModerate = "Moderate Risk"
	levelElevated = "Elevated Risk"
	levelHigh     = "High Risk"
	levelUnknown  = "Unknown"
)

// Score computes the full risk assessment for a holdings list.
// volatilities maps symbol → annualized volatility percent; symbols absent
// from the map are excluded from the volatility factor. Pure: callers that
// need the engine to fetch volatilities use Service.AssessRisk.
func Score(holdings []models.Holding, volatilities map[string]float64) *models.RiskAssessment {
	ledger := models.NewLedger(holdings)

	if ledger.Count() == 0 {
		return &models.RiskAssessment{
			OverallScore: 0,
			RiskLevel:    levelUnknown,
			Factors:      []models.RiskFactor{},
		}
	}

	factors := []models.RiskFactor{diversificationFactor(ledger)}

	if f, ok := concentrationFactor(ledger); ok {
		factors = append(factors, f)
	}
	if f, ok := volatilityFactor(ledger, volatilities); ok {
		factors = append(factors, f)
	}
	factors = append(factors, assetTypeFactor(ledger))

	overall := compositeScore(factors)
	level, color := riskLevel(overall)

	return &models.RiskAssessment{
		OverallScore:     overall,
		RiskLevel:        level,
		Color:            color,
		Factors:          factors,
		HoldingsAnalyzed: ledger.Count(),
	}
}

// diversificationFactor scores by holding count across five tiers
func diversificationFactor(ledger models.Ledger) models.RiskFactor {
	count := ledger.Count()

	var score float64
	var status string
	switch {
	case count >= 15:
		score, status = 100, "Excellent"
	case count >= 10:
		score, status = 80, "Good"
	case count >= 5:
		score, status = 60, "Moderate"
	case count >= 3:
		score, status = 40, "Low"
	default:
		score, status = 20, "Poor"
	}

	return models.RiskFactor{
		Name:        "Diversification",
		Score:       score,
		Status:      status,
		Description: fmt.Sprintf("Portfolio holds %d distinct positions", count),
	}
}

// concentrationFactor scores by the Herfindahl-Hirschman Index over value
// weights in percentage points (HHI range 0–10000). Skipped when total
// portfolio value is 0.
func concentrationFactor(ledger models.Ledger) (models.RiskFactor, bool) {
	weights := ledger.Weights()
	if len(weights) == 0 {
		return models.RiskFactor{}, false
	}

	hhi := 0.0
	maxWeight := 0.0
	for _, w := range weights {
		hhi += w * w
		if w > maxWeight {
			maxWeight = w
		}
	}

	score := clamp(100-hhi/100, 0, 100)

	var status string
	switch {
	case maxWeight > 50:
		status = "High Risk"
		if score > 30 {
			score = 30
		}
	case maxWeight > 30:
		status = "Elevated"
		if score > 50 {
			score = 50
		}
	case maxWeight > 20:
		status = "Moderate"
	default:
		status = "Well Balanced"
	}

	return models.RiskFactor{
		Name:        "Concentration",
		Score:       score,
		Status:      status,
		Description: fmt.Sprintf("Largest holding is %.1f%% of portfolio value (HHI %.0f)", maxWeight, hhi),
	}, true
}

// volatilityFactor scores the value-weighted average of per-symbol annualized
// volatility, using only symbols for which a figure was obtainable. Omitted
// when no symbol yielded one.
func volatilityFactor(ledger models.Ledger, volatilities map[string]float64) (models.RiskFactor, bool) {
	total := ledger.TotalValue()
	if total <= 0 || len(volatilities) == 0 {
		return models.RiskFactor{}, false
	}

	weightedSum := 0.0
	weightSum := 0.0
	for sym, h := range ledger {
		vol, ok := volatilities[sym]
		if !ok {
			continue
		}
		w := h.Value() / total
		weightedSum += vol * w
		weightSum += w
	}
	if weightSum == 0 {
		return models.RiskFactor{}, false
	}

	avgVol := weightedSum / weightSum

	var score float64
	var status string
	switch {
	case avgVol < 15:
		score, status = 90, "Low"
	case avgVol < 25:
		score, status = 70, "Moderate"
	case avgVol < 40:
		score, status = 50, "Elevated"
	case avgVol < 60:
		score, status = 30, "High"
	default:
		score, status = 15, "Very High"
	}

	return models.RiskFactor{
		Name:        "Volatility",
		Score:       score,
		Status:      status,
		Description: fmt.Sprintf("Value-weighted annualized volatility is %.1f%%", avgVol),
	}, true
}

// assetTypeFactor scores by the number of distinct asset types held
func assetTypeFactor(ledger models.Ledger) models.RiskFactor {
	count := ledger.AssetTypeCount()

	var score float64
	var status string
	switch {
	case count >= 4:
		score, status = 100, "Excellent"
	case count >= 3:
		score, status = 75, "Good"
	case count >= 2:
		score, status = 50, "Limited"
	default:
		score, status = 25, "Single Type"
	}

	return models.RiskFactor{
		Name:        "Asset Type Diversity",
		Score:       score,
		Status:      status,
		Description: fmt.Sprintf("Portfolio spans %d asset type(s)", count),
	}
}

// compositeScore blends factor scores with the fixed positional weights,
// padding missing trailing factors with the neutral score.
func compositeScore(factors []models.RiskFactor) float64 {
	if len(factors) == 0 {
		return neutralScore
	}

	overall := 0.0
	for i, w := range factorWeights {
		score := neutralScore
		if i < len(factors) {
			score = factors[i].Score
		}
		overall += score * w
	}
	return overall
}

// riskLevel maps an overall score to its display band and color
func riskLevel(score float64) (string, string) {
	switch {
	case score >= 80:
		return levelLow, "green"
	case score >= 60:
		return levelModerate, "yellow"
	case score >= 40:
		return levelElevated, "orange"
	default:
		return levelHigh, "red"
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
