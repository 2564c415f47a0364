// Package interfaces defines service contracts for Thrive
package interfaces

import (
	"context"

	"github.com/thrivehq/thrive/internal/models"
)

// RiskService scores portfolio risk
type RiskService interface {
	// AssessRisk computes the full risk assessment for a holdings list,
	// fetching per-symbol volatility for a bounded number of holdings.
	AssessRisk(ctx context.Context, holdings []models.Holding) (*models.RiskAssessment, error)
}

// SimulationService projects the effect of hypothetical trades
type SimulationService interface {
	// Simulate applies changes to a ledger built from currentHoldings and
	// compares risk metrics before and after. Returns ErrNoData when both
	// inputs are empty.
	Simulate(ctx context.Context, currentHoldings []models.Holding, changes []models.Change) (*models.SimulationResult, error)
}

// InsightService generates narrative portfolio insights
type InsightService interface {
	// GenerateInsights produces AI commentary for a portfolio snapshot
	GenerateInsights(ctx context.Context, req models.InsightRequest) (*models.InsightResponse, error)
}
