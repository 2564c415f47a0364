package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/thrivehq/thrive/internal/clients/yahoo"
	"github.com/thrivehq/thrive/internal/models"
	"github.com/thrivehq/thrive/internal/services/insight"
	"github.com/thrivehq/thrive/internal/services/simulation"
)

// --- Market data handlers ---

// handleMarketPrice handles GET /api/market/price/{symbol}
func (s *Server) handleMarketPrice(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := PathParam(r, "/api/market/price/", "")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	quote, err := s.app.Market.GetQuote(r.Context(), symbol)
	if err != nil {
		s.writeMarketError(w, symbol, err)
		return
	}

	quote.Price = round2(quote.Price)
	WriteJSON(w, http.StatusOK, quote)
}

// handleMarketHistory handles GET /api/market/history/{symbol}?period=1mo
func (s *Server) handleMarketHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := PathParam(r, "/api/market/history/", "")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	period := r.URL.Query().Get("period")

	bars, err := s.app.Market.GetHistory(r.Context(), symbol, period)
	if err != nil {
		s.writeMarketError(w, symbol, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"symbol":  strings.ToUpper(symbol),
		"history": formatBars(bars),
	})
}

// handleMarketSearch handles GET /api/market/search?q=query
func (s *Server) handleMarketSearch(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		WriteError(w, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}

	results, err := s.app.Market.Search(r.Context(), query)
	if err != nil {
		s.logger.Warn().Str("query", query).Err(err).Msg("Symbol search failed")
		WriteError(w, http.StatusServiceUnavailable, "Market data service unavailable")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"results": results,
	})
}

// writeMarketError maps market data client failures onto the API taxonomy:
// unknown symbol is the caller's problem (404), everything else means the
// upstream is unreachable or misbehaving (503).
func (s *Server) writeMarketError(w http.ResponseWriter, symbol string, err error) {
	if errors.Is(err, yahoo.ErrSymbolNotFound) {
		WriteError(w, http.StatusNotFound, "Symbol not found: "+strings.ToUpper(symbol))
		return
	}
	s.logger.Warn().Str("symbol", symbol).Err(err).Msg("Market data fetch failed")
	WriteError(w, http.StatusServiceUnavailable, "Market data service unavailable")
}

// --- Portfolio analysis handlers ---

type riskRequest struct {
	Holdings []models.Holding `json:"holdings"`
}

// handleRiskAssess handles POST /api/portfolio/risk
func (s *Server) handleRiskAssess(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req riskRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	assessment, err := s.app.Risk.AssessRisk(r.Context(), req.Holdings)
	if err != nil {
		s.logger.Error().Err(err).Msg("Risk assessment failed")
		WriteError(w, http.StatusInternalServerError, "Risk assessment failed")
		return
	}

	WriteJSON(w, http.StatusOK, formatAssessment(assessment))
}

type simulateRequest struct {
	CurrentHoldings  []models.Holding `json:"currentHoldings"`
	SimulatedChanges []models.Change  `json:"simulatedChanges"`
}

// handleSimulate handles POST /api/portfolio/simulate
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req simulateRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	result, err := s.app.Simulation.Simulate(r.Context(), req.CurrentHoldings, req.SimulatedChanges)
	if err != nil {
		if errors.Is(err, simulation.ErrNoData) {
			WriteError(w, http.StatusBadRequest, "No holdings or changes provided")
			return
		}
		s.logger.Error().Err(err).Msg("Simulation failed")
		WriteError(w, http.StatusInternalServerError, "Simulation failed")
		return
	}

	WriteJSON(w, http.StatusOK, formatSimulation(result))
}

// handleInsights handles POST /api/portfolio/insights
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.InsightRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	if len(req.Holdings) == 0 {
		WriteError(w, http.StatusBadRequest, "Holdings are required")
		return
	}

	resp, err := s.app.Insight.GenerateInsights(r.Context(), req)
	if err != nil {
		if errors.Is(err, insight.ErrUnavailable) {
			WriteError(w, http.StatusServiceUnavailable, "Insight generation is not configured")
			return
		}
		s.logger.Warn().Err(err).Msg("Insight generation failed")
		WriteError(w, http.StatusServiceUnavailable, "Insight generation unavailable")
		return
	}

	WriteJSON(w, http.StatusOK, resp)
}
