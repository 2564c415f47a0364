// Package simulation projects the effect of hypothetical trades on a portfolio
package simulation

import (
	"context"
	"errors"
	"strings"

	"github.com/thrivehq/thrive/internal/common"
	"github.com/thrivehq/thrive/internal/interfaces"
	"github.com/thrivehq/thrive/internal/models"
)

// ErrNoData indicates the request carried neither holdings nor changes
var ErrNoData = errors.New("no holdings or changes provided")

// Service implements the SimulationService interface
type Service struct {
	logger *common.Logger
}

// NewService creates a new simulation service
func NewService(logger *common.Logger) *Service {
	return &Service{logger: logger}
}

// Simulate builds a ledger from currentHoldings, applies the changes to a
// copy, and compares aggregate metrics before and after. The input ledger is
// never mutated.
func (s *Service) Simulate(ctx context.Context, currentHoldings []models.Holding, changes []models.Change) (*models.SimulationResult, error) {
	if len(currentHoldings) == 0 && len(changes) == 0 {
		return nil, ErrNoData
	}

	current := models.NewLedger(currentHoldings)
	simulated := ApplyChanges(current, changes)

	currentMetrics := computeMetrics(current)
	simulatedMetrics := computeMetrics(simulated)

	delta := models.ChangeSummary{
		ValueChange:    simulatedMetrics.TotalValue - currentMetrics.TotalValue,
		RiskChange:     simulatedMetrics.RiskScore - currentMetrics.RiskScore,
		HoldingsChange: simulatedMetrics.HoldingsCount - currentMetrics.HoldingsCount,
	}

	result := &models.SimulationResult{
		Current:   currentMetrics,
		Simulated: simulatedMetrics,
		Changes:   delta,
		Insights:  buildInsights(currentMetrics, simulatedMetrics, delta),
	}

	s.logger.Debug().
		Int("changes", len(changes)).
		Int("holdings_before", currentMetrics.HoldingsCount).
		Int("holdings_after", simulatedMetrics.HoldingsCount).
		Msg("Simulation complete")

	return result, nil
}

// ApplyChanges returns a new ledger with the changes applied in input order.
// The input ledger is left untouched. Invalid changes (missing symbol,
// quantity ≤ 0, SELL of an absent symbol) are ignored without error.
func ApplyChanges(ledger models.Ledger, changes []models.Change) models.Ledger {
	out := ledger.Clone()

	for _, change := range changes {
		symbol := strings.ToUpper(strings.TrimSpace(change.Symbol))
		if symbol == "" || change.Quantity <= 0 {
			continue
		}

		switch change.Action {
		case models.ActionBuy:
			applyBuy(out, symbol, change)
		case models.ActionSell:
			applySell(out, symbol, change)
		}
	}

	return out
}

// applyBuy adds to an existing position (quantity-weighted average buy price)
// or inserts a new one.
func applyBuy(ledger models.Ledger, symbol string, change models.Change) {
	if h, ok := ledger[symbol]; ok {
		newQty := h.Quantity + change.Quantity
		if newQty > 0 {
			h.BuyPrice = (h.Quantity*h.BuyPrice + change.Quantity*change.Price) / newQty
		} else {
			h.BuyPrice = change.Price
		}
		h.Quantity = newQty
		h.CurrentPrice = change.Price
		h.CurrentValue = newQty * change.Price
		ledger[symbol] = h
		return
	}

	assetType := change.AssetType
	if assetType == "" {
		assetType = models.AssetTypeStock
	}
	name := change.Name
	if name == "" {
		name = symbol
	}

	ledger[symbol] = models.Holding{
		Symbol:       symbol,
		Name:         name,
		Quantity:     change.Quantity,
		BuyPrice:     change.Price,
		CurrentPrice: change.Price,
		CurrentValue: change.Quantity * change.Price,
		AssetType:    assetType,
	}
}

// applySell reduces an existing position, deleting it when quantity drops to
// zero or below. The holding's current price is unchanged by a sell.
func applySell(ledger models.Ledger, symbol string, change models.Change) {
	h, ok := ledger[symbol]
	if !ok {
		return
	}

	newQty := h.Quantity - change.Quantity
	if newQty <= 0 {
		delete(ledger, symbol)
		return
	}

	h.Quantity = newQty
	h.CurrentValue = newQty * h.CurrentPrice
	ledger[symbol] = h
}

// Ensure Service implements SimulationService
var _ interfaces.SimulationService = (*Service)(nil)
