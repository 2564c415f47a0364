// Package insight generates AI portfolio commentary via the Gemini client
package insight

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/thrivehq/thrive/internal/common"
	"github.com/thrivehq/thrive/internal/interfaces"
	"github.com/thrivehq/thrive/internal/models"
)

// ErrUnavailable indicates no insight client is configured
var ErrUnavailable = errors.New("insight generation unavailable")

// Service implements the InsightService interface
type Service struct {
	client interfaces.InsightClient
	logger *common.Logger
}

// NewService creates a new insight service. client may be nil when no API key
// is configured; GenerateInsights then returns ErrUnavailable.
func NewService(client interfaces.InsightClient, logger *common.Logger) *Service {
	return &Service{client: client, logger: logger}
}

// GenerateInsights produces AI commentary for a portfolio snapshot
func (s *Service) GenerateInsights(ctx context.Context, req models.InsightRequest) (*models.InsightResponse, error) {
	if s.client == nil {
		return nil, ErrUnavailable
	}
	if len(req.Holdings) == 0 {
		return nil, fmt.Errorf("no holdings to analyze")
	}

	prompt := buildPortfolioPrompt(req)

	text, err := s.client.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("insight generation failed: %w", err)
	}

	s.logger.Debug().Int("holdings", len(req.Holdings)).Msg("Generated portfolio insights")

	return &models.InsightResponse{
		Insights:    text,
		Model:       s.client.Model(),
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// buildPortfolioPrompt creates the analysis prompt from the portfolio snapshot
func buildPortfolioPrompt(req models.InsightRequest) string {
	ledger := models.NewLedger(req.Holdings)
	total := ledger.TotalValue()

	var sb strings.Builder
	sb.WriteString("Analyze the following investment portfolio and provide:\n")
	sb.WriteString("1. A brief summary of the portfolio's composition\n")
	sb.WriteString("2. Key strengths and weaknesses\n")
	sb.WriteString("3. Concentration or diversification concerns\n")
	sb.WriteString("4. Two or three actionable suggestions\n\n")

	sb.WriteString(fmt.Sprintf("Total value: $%.2f across %d holdings\n\n", total, ledger.Count()))

	sb.WriteString("Holdings:\n")
	holdings := ledger.Holdings()
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Value() > holdings[j].Value() })
	for _, h := range holdings {
		line := fmt.Sprintf("- %s (%s): %.2f units, value $%.2f", h.Symbol, h.Type(), h.Quantity, h.Value())
		if total > 0 {
			line += fmt.Sprintf(" (%.1f%% of portfolio)", h.Value()/total*100)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	if len(req.Allocation) > 0 {
		sb.WriteString("\nAllocation by asset type:\n")
		types := make([]string, 0, len(req.Allocation))
		for t := range req.Allocation {
			types = append(types, t)
		}
		sort.Strings(types)
		for _, t := range types {
			sb.WriteString(fmt.Sprintf("- %s: %.1f%%\n", t, req.Allocation[t]))
		}
	}

	if req.Assessment != nil {
		sb.WriteString(fmt.Sprintf("\nCurrent risk assessment: score %.0f (%s)\n", req.Assessment.OverallScore, req.Assessment.RiskLevel))
		for _, f := range req.Assessment.Factors {
			sb.WriteString(fmt.Sprintf("- %s: %.0f (%s)\n", f.Name, f.Score, f.Status))
		}
	}

	sb.WriteString("\nKeep the response concise and practical for a retail investor.")

	return sb.String()
}

// Ensure Service implements InsightService
var _ interfaces.InsightService = (*Service)(nil)
