package models

import "time"

// RiskFactor is one scored dimension of portfolio risk.
// Scores run 0–100 where higher means lower risk.
type RiskFactor struct {
	Name        string  `json:"name"`
	Score       float64 `json:"score"`
	Status      string  `json:"status"`
	Description string  `json:"description"`
}

// RiskAssessment is the composite output of the full risk scorer
type RiskAssessment struct {
	OverallScore      float64      `json:"overallScore"`
	RiskLevel         string       `json:"riskLevel"`
	Color             string       `json:"color,omitempty"`
	Factors           []RiskFactor `json:"factors"`
	HoldingsAnalyzed  int          `json:"holdingsAnalyzed"`
}

// PortfolioMetrics is one ledger's aggregate snapshot used by the simulator
type PortfolioMetrics struct {
	TotalValue        float64            `json:"totalValue"`
	HoldingsCount     int                `json:"holdingsCount"`
	AssetTypeCount    int                `json:"assetTypeCount"`
	TopHoldingPercent float64            `json:"topHoldingPercent"`
	TopHoldingSymbol  string             `json:"topHoldingSymbol,omitempty"`
	RiskScore         float64            `json:"riskScore"`
	RiskLevel         string             `json:"riskLevel"`
	Allocation        map[string]float64 `json:"allocation"`
}

// ChangeSummary is the delta block between current and simulated metrics
type ChangeSummary struct {
	ValueChange    float64 `json:"valueChange"`
	RiskChange     float64 `json:"riskChange"`
	HoldingsChange int     `json:"holdingsChange"`
}

// SimulationResult is the outcome of applying simulated changes to a ledger
type SimulationResult struct {
	Current   PortfolioMetrics `json:"current"`
	Simulated PortfolioMetrics `json:"simulated"`
	Changes   ChangeSummary    `json:"changes"`
	Insights  []string         `json:"insights"`
}

// Quote is the latest traded price for a symbol
type Quote struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Currency  string    `json:"currency"`
	Timestamp time.Time `json:"timestamp"`
}

// PriceBar is one day of OHLCV history
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// SearchResult is one match from the symbol search proxy
type SearchResult struct {
	Symbol   string    `json:"symbol"`
	Name     string    `json:"name"`
	Type     AssetType `json:"type"`
	Exchange string    `json:"exchange,omitempty"`
}

// InsightRequest carries the portfolio context sent to the insight generator
type InsightRequest struct {
	Holdings   []Holding          `json:"holdings"`
	Assessment *RiskAssessment    `json:"assessment,omitempty"`
	Allocation map[string]float64 `json:"allocation,omitempty"`
}

// InsightResponse is the generated insight text
type InsightResponse struct {
	Insights    string    `json:"insights"`
	Model       string    `json:"model,omitempty"`
	GeneratedAt time.Time `json:"generatedAt"`
}
