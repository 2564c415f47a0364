package server

import (
	"math"

	"github.com/thrivehq/thrive/internal/models"
)

// Responses round at the serialization boundary only: scores to the nearest
// integer, percentages to one decimal place, currency to two. The engine
// itself works in full precision throughout.

func roundScore(v float64) int {
	return int(math.Round(v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type riskFactorResponse struct {
	Name        string `json:"name"`
	Score       int    `json:"score"`
	Status      string `json:"status"`
	Description string `json:"description"`
}

type riskAssessmentResponse struct {
	OverallScore     int                  `json:"overallScore"`
	RiskLevel        string               `json:"riskLevel"`
	Color            string               `json:"color,omitempty"`
	Factors          []riskFactorResponse `json:"factors"`
	HoldingsAnalyzed int                  `json:"holdingsAnalyzed"`
}

type metricsResponse struct {
	TotalValue        float64            `json:"totalValue"`
	HoldingsCount     int                `json:"holdingsCount"`
	AssetTypeCount    int                `json:"assetTypeCount"`
	TopHoldingPercent float64            `json:"topHoldingPercent"`
	TopHoldingSymbol  string             `json:"topHoldingSymbol,omitempty"`
	RiskScore         int                `json:"riskScore"`
	RiskLevel         string             `json:"riskLevel"`
	Allocation        map[string]float64 `json:"allocation"`
}

type changeSummaryResponse struct {
	ValueChange    float64 `json:"valueChange"`
	RiskChange     int     `json:"riskChange"`
	HoldingsChange int     `json:"holdingsChange"`
}

type simulationResponse struct {
	Current   metricsResponse       `json:"current"`
	Simulated metricsResponse       `json:"simulated"`
	Changes   changeSummaryResponse `json:"changes"`
	Insights  []string              `json:"insights"`
}

func formatBars(bars []models.PriceBar) []models.PriceBar {
	out := make([]models.PriceBar, len(bars))
	for i, b := range bars {
		b.Open = round2(b.Open)
		b.High = round2(b.High)
		b.Low = round2(b.Low)
		b.Close = round2(b.Close)
		out[i] = b
	}
	return out
}

func formatAssessment(a *models.RiskAssessment) riskAssessmentResponse {
	factors := make([]riskFactorResponse, 0, len(a.Factors))
	for _, f := range a.Factors {
		factors = append(factors, riskFactorResponse{
			Name:        f.Name,
			Score:       roundScore(f.Score),
			Status:      f.Status,
			Description: f.Description,
		})
	}

	return riskAssessmentResponse{
		OverallScore:     roundScore(a.OverallScore),
		RiskLevel:        a.RiskLevel,
		Color:            a.Color,
		Factors:          factors,
		HoldingsAnalyzed: a.HoldingsAnalyzed,
	}
}

func formatMetrics(m models.PortfolioMetrics) metricsResponse {
	allocation := make(map[string]float64, len(m.Allocation))
	for t, pct := range m.Allocation {
		allocation[t] = round1(pct)
	}

	return metricsResponse{
		TotalValue:        round2(m.TotalValue),
		HoldingsCount:     m.HoldingsCount,
		AssetTypeCount:    m.AssetTypeCount,
		TopHoldingPercent: round1(m.TopHoldingPercent),
		TopHoldingSymbol:  m.TopHoldingSymbol,
		RiskScore:         roundScore(m.RiskScore),
		RiskLevel:         m.RiskLevel,
		Allocation:        allocation,
	}
}

func formatSimulation(result *models.SimulationResult) simulationResponse {
	return simulationResponse{
		Current:   formatMetrics(result.Current),
		Simulated: formatMetrics(result.Simulated),
		Changes: changeSummaryResponse{
			ValueChange:    round2(result.Changes.ValueChange),
			RiskChange:     roundScore(result.Changes.RiskChange),
			HoldingsChange: result.Changes.HoldingsChange,
		},
		Insights: result.Insights,
	}
}
