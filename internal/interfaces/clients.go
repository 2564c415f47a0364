// Package interfaces defines service contracts for Thrive
package interfaces

import (
	"context"

	"github.com/thrivehq/thrive/internal/models"
)

// MarketDataClient provides access to an external market data provider
type MarketDataClient interface {
	// GetQuote retrieves the latest close price for a symbol.
	// Returns ErrSymbolNotFound (via errors.Is) when the provider has no data.
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)

	// GetHistory retrieves a bounded, chronologically ordered OHLCV series.
	// period is a provider range string such as "1mo" or "3mo".
	GetHistory(ctx context.Context, symbol, period string) ([]models.PriceBar, error)

	// Search performs a free-text symbol search
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}

// InsightClient generates AI text from a prompt
type InsightClient interface {
	// GenerateContent generates AI content from a prompt
	GenerateContent(ctx context.Context, prompt string) (string, error)

	// Model reports the model name used for generation
	Model() string
}
