// Package risk scores portfolio risk from holdings and market history
package risk

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/thrivehq/thrive/internal/common"
	"github.com/thrivehq/thrive/internal/interfaces"
	"github.com/thrivehq/thrive/internal/models"
)

const (
	// DefaultMaxSymbols caps per-request volatility fetches to bound
	// external-call fan-out
	DefaultMaxSymbols = 10

	DefaultHistoryPeriod = "1mo"
	DefaultFetchTimeout  = 5 * time.Second
)

// Service implements the RiskService interface
type Service struct {
	market        interfaces.MarketDataClient
	logger        *common.Logger
	maxSymbols    int
	historyPeriod string
	fetchTimeout  time.Duration
}

// ServiceOption configures the service
type ServiceOption func(*Service)

// WithMaxSymbols caps the number of symbols fetched per assessment
func WithMaxSymbols(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.maxSymbols = n
		}
	}
}

// WithHistoryPeriod sets the history range requested per symbol
func WithHistoryPeriod(period string) ServiceOption {
	return func(s *Service) {
		if period != "" {
			s.historyPeriod = period
		}
	}
}

// WithFetchTimeout sets the per-symbol fetch timeout
func WithFetchTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// NewService creates a new risk service
func NewService(market interfaces.MarketDataClient, logger *common.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		market:        market,
		logger:        logger,
		maxSymbols:    DefaultMaxSymbols,
		historyPeriod: DefaultHistoryPeriod,
		fetchTimeout:  DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// volOutcome is the explicit result of one per-symbol volatility fetch.
// ok=false means the symbol is excluded from the weighted average — a fetch
// failure degrades to "volatility unknown", never failing the assessment.
type volOutcome struct {
	symbol string
	vol    float64
	ok     bool
}

// AssessRisk computes the full risk assessment for a holdings list,
// fetching per-symbol volatility for at most the first maxSymbols holdings.
func (s *Service) AssessRisk(ctx context.Context, holdings []models.Holding) (*models.RiskAssessment, error) {
	if len(holdings) == 0 {
		return Score(nil, nil), nil
	}

	vols := s.fetchVolatilities(ctx, holdings)
	return Score(holdings, vols), nil
}

// fetchVolatilities issues concurrent history fetches for the first
// maxSymbols distinct symbols and aggregates the present outcomes.
// The aggregation waits for every outstanding fetch (or its timeout).
func (s *Service) fetchVolatilities(ctx context.Context, holdings []models.Holding) map[string]float64 {
	if s.market == nil {
		return nil
	}

	symbols := make([]string, 0, s.maxSymbols)
	seen := make(map[string]bool)
	for _, h := range holdings {
		sym := strings.ToUpper(strings.TrimSpace(h.Symbol))
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		symbols = append(symbols, sym)
		if len(symbols) >= s.maxSymbols {
			break
		}
	}

	outcomes := make(chan volOutcome, len(symbols))
	var wg sync.WaitGroup

	for _, sym := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			outcomes <- s.fetchVolatility(ctx, symbol)
		}(sym)
	}

	wg.Wait()
	close(outcomes)

	vols := make(map[string]float64, len(symbols))
	for out := range outcomes {
		if out.ok {
			vols[out.symbol] = out.vol
		}
	}
	return vols
}

// fetchVolatility retrieves one symbol's history and estimates its
// annualized volatility under a per-fetch timeout.
func (s *Service) fetchVolatility(ctx context.Context, symbol string) volOutcome {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	bars, err := s.market.GetHistory(fetchCtx, symbol, s.historyPeriod)
	if err != nil {
		s.logger.Debug().Str("symbol", symbol).Err(err).Msg("Volatility fetch failed, excluding symbol")
		return volOutcome{symbol: symbol}
	}

	closes := make([]float64, 0, len(bars))
	for _, b := range bars {
		closes = append(closes, b.Close)
	}

	vol, ok := AnnualizedVolatility(closes)
	if !ok {
		s.logger.Debug().Str("symbol", symbol).Int("observations", len(closes)).Msg("History too short for volatility estimate")
		return volOutcome{symbol: symbol}
	}

	return volOutcome{symbol: symbol, vol: vol, ok: true}
}

// Ensure Service implements RiskService
var _ interfaces.RiskService = (*Service)(nil)
