package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thrivehq/thrive/internal/app"
	"github.com/thrivehq/thrive/internal/clients/yahoo"
	"github.com/thrivehq/thrive/internal/common"
	"github.com/thrivehq/thrive/internal/models"
	"github.com/thrivehq/thrive/internal/services/insight"
	"github.com/thrivehq/thrive/internal/services/risk"
	"github.com/thrivehq/thrive/internal/services/simulation"
)

// fakeMarket serves canned data and mimics the client's error taxonomy.
type fakeMarket struct {
	quotes      map[string]*models.Quote
	history     map[string][]models.PriceBar
	results     []models.SearchResult
	searchErr   error
	unavailable bool
}

func (f *fakeMarket) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if f.unavailable {
		return nil, &yahoo.APIError{StatusCode: 503, Message: "down"}
	}
	if q, ok := f.quotes[symbol]; ok {
		return q, nil
	}
	return nil, fmt.Errorf("%s: %w", symbol, yahoo.ErrSymbolNotFound)
}

func (f *fakeMarket) GetHistory(ctx context.Context, symbol, period string) ([]models.PriceBar, error) {
	if f.unavailable {
		return nil, &yahoo.APIError{StatusCode: 503, Message: "down"}
	}
	if bars, ok := f.history[symbol]; ok {
		return bars, nil
	}
	return nil, fmt.Errorf("%s: %w", symbol, yahoo.ErrSymbolNotFound)
}

func (f *fakeMarket) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results, nil
}

// fakeInsightClient returns a fixed completion.
type fakeInsightClient struct {
	text string
	err  error
}

func (f *fakeInsightClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return f.text, f.err
}

func (f *fakeInsightClient) Model() string { return "test-model" }

func newTestServer(t *testing.T, market *fakeMarket) *Server {
	t.Helper()

	logger := common.NewSilentLogger()
	a := &app.App{
		Config:     common.NewDefaultConfig(),
		Logger:     logger,
		Market:     market,
		Risk:       risk.NewService(market, logger),
		Simulation: simulation.NewService(logger),
		Insight:    insight.NewService(&fakeInsightClient{text: "Looks balanced."}, logger),
	}
	return NewServer(a)
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	require.NoError(t, json.NewEncoder(buf).Encode(v))
	return buf
}

// --- Market data handlers ---

func TestHandleMarketPrice(t *testing.T) {
	market := &fakeMarket{
		quotes: map[string]*models.Quote{
			"AAPL": {Symbol: "AAPL", Price: 187.5678, Currency: "USD", Timestamp: time.Now()},
		},
	}
	srv := newTestServer(t, market)

	req := httptest.NewRequest(http.MethodGet, "/api/market/price/AAPL", nil)
	rec := httptest.NewRecorder()
	srv.handleMarketPrice(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var quote models.Quote
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&quote))
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Equal(t, 187.57, quote.Price) // currency rounded to 2dp
}

func TestHandleMarketPrice_UnknownSymbolIs404(t *testing.T) {
	srv := newTestServer(t, &fakeMarket{})

	req := httptest.NewRequest(http.MethodGet, "/api/market/price/NOPE", nil)
	rec := httptest.NewRecorder()
	srv.handleMarketPrice(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp.Error, "Symbol not found")
}

func TestHandleMarketPrice_UpstreamFailureIs503(t *testing.T) {
	srv := newTestServer(t, &fakeMarket{unavailable: true})

	req := httptest.NewRequest(http.MethodGet, "/api/market/price/AAPL", nil)
	rec := httptest.NewRecorder()
	srv.handleMarketPrice(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleMarketPrice_MissingSymbol(t *testing.T) {
	srv := newTestServer(t, &fakeMarket{})

	req := httptest.NewRequest(http.MethodGet, "/api/market/price/", nil)
	rec := httptest.NewRecorder()
	srv.handleMarketPrice(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleMarketHistory(t *testing.T) {
	market := &fakeMarket{
		history: map[string][]models.PriceBar{
			"AAPL": {
				{Date: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), Close: 100},
				{Date: time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC), Close: 101},
			},
		},
	}
	srv := newTestServer(t, market)

	req := httptest.NewRequest(http.MethodGet, "/api/market/history/aapl?period=1mo", nil)
	rec := httptest.NewRecorder()
	srv.handleMarketHistory(rec, req)

	// The fake only knows the exact symbol; the handler passes it through
	req = httptest.NewRequest(http.MethodGet, "/api/market/history/AAPL?period=1mo", nil)
	rec = httptest.NewRecorder()
	srv.handleMarketHistory(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Symbol  string            `json:"symbol"`
		History []models.PriceBar `json:"history"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "AAPL", resp.Symbol)
	assert.Len(t, resp.History, 2)
}

func TestHandleMarketHistory_RoundsBarPrices(t *testing.T) {
	market := &fakeMarket{
		history: map[string][]models.PriceBar{
			"AAPL": {
				{Date: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), Open: 99.4567, High: 101.9999, Low: 98.1234, Close: 100.456},
			},
		},
	}
	srv := newTestServer(t, market)

	req := httptest.NewRequest(http.MethodGet, "/api/market/history/AAPL", nil)
	rec := httptest.NewRecorder()
	srv.handleMarketHistory(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		History []models.PriceBar `json:"history"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.History, 1)

	// Currency values rounded to 2dp at the boundary
	assert.Equal(t, 99.46, resp.History[0].Open)
	assert.Equal(t, 102.0, resp.History[0].High)
	assert.Equal(t, 98.12, resp.History[0].Low)
	assert.Equal(t, 100.46, resp.History[0].Close)
}

func TestHandleMarketSearch(t *testing.T) {
	market := &fakeMarket{
		results: []models.SearchResult{
			{Symbol: "AAPL", Name: "Apple Inc.", Type: models.AssetTypeStock},
		},
	}
	srv := newTestServer(t, market)

	req := httptest.NewRequest(http.MethodGet, "/api/market/search?q=apple", nil)
	rec := httptest.NewRecorder()
	srv.handleMarketSearch(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Query   string                `json:"query"`
		Results []models.SearchResult `json:"results"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "apple", resp.Query)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "AAPL", resp.Results[0].Symbol)
}

func TestHandleMarketSearch_MissingQuery(t *testing.T) {
	srv := newTestServer(t, &fakeMarket{})

	req := httptest.NewRequest(http.MethodGet, "/api/market/search", nil)
	rec := httptest.NewRecorder()
	srv.handleMarketSearch(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleMarketSearch_UpstreamFailureIs503(t *testing.T) {
	srv := newTestServer(t, &fakeMarket{searchErr: fmt.Errorf("boom")})

	req := httptest.NewRequest(http.MethodGet, "/api/market/search?q=apple", nil)
	rec := httptest.NewRecorder()
	srv.handleMarketSearch(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// --- Portfolio analysis handlers ---

func TestHandleRiskAssess(t *testing.T) {
	srv := newTestServer(t, &fakeMarket{})

	body := jsonBody(t, map[string]interface{}{
		"holdings": []models.Holding{
			{Symbol: "AAPL", CurrentValue: 500, AssetType: models.AssetTypeStock},
			{Symbol: "MSFT", CurrentValue: 300, AssetType: models.AssetTypeStock},
			{Symbol: "VTI", CurrentValue: 200, AssetType: models.AssetTypeETF},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/portfolio/risk", body)
	rec := httptest.NewRecorder()
	srv.handleRiskAssess(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp riskAssessmentResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.NotEmpty(t, resp.Factors)
	assert.Equal(t, 3, resp.HoldingsAnalyzed)
	assert.NotEmpty(t, resp.RiskLevel)
	assert.GreaterOrEqual(t, resp.OverallScore, 0)
	assert.LessOrEqual(t, resp.OverallScore, 100)
}

func TestHandleRiskAssess_EmptyHoldingsReturnsUnknown(t *testing.T) {
	srv := newTestServer(t, &fakeMarket{})

	req := httptest.NewRequest(http.MethodPost, "/api/portfolio/risk", jsonBody(t, map[string]interface{}{
		"holdings": []models.Holding{},
	}))
	rec := httptest.NewRecorder()
	srv.handleRiskAssess(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp riskAssessmentResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 0, resp.OverallScore)
	assert.Equal(t, "Unknown", resp.RiskLevel)
	assert.Empty(t, resp.Factors)
}

func TestHandleRiskAssess_InvalidJSON(t *testing.T) {
	srv := newTestServer(t, &fakeMarket{})

	req := httptest.NewRequest(http.MethodPost, "/api/portfolio/risk", bytes.NewBufferString("{nope"))
	rec := httptest.NewRecorder()
	srv.handleRiskAssess(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRiskAssess_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &fakeMarket{})

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio/risk", nil)
	rec := httptest.NewRecorder()
	srv.handleRiskAssess(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "POST", rec.Header().Get("Allow"))
}

func TestHandleSimulate(t *testing.T) {
	srv := newTestServer(t, &fakeMarket{})

	body := jsonBody(t, map[string]interface{}{
		"currentHoldings": []models.Holding{
			{Symbol: "AAPL", Quantity: 10, CurrentPrice: 100.456, AssetType: models.AssetTypeStock},
		},
		"simulatedChanges": []models.Change{
			{Symbol: "VTI", Action: models.ActionBuy, Quantity: 2, Price: 250},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/portfolio/simulate", body)
	rec := httptest.NewRecorder()
	srv.handleSimulate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp simulationResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.Equal(t, 1, resp.Current.HoldingsCount)
	assert.Equal(t, 2, resp.Simulated.HoldingsCount)
	assert.Equal(t, 1, resp.Changes.HoldingsChange)
	assert.Equal(t, 500.0, resp.Changes.ValueChange)
	assert.Equal(t, 1004.56, resp.Current.TotalValue) // currency rounded to 2dp
	assert.NotNil(t, resp.Insights)
}

func TestHandleSimulate_WireFieldNames(t *testing.T) {
	srv := newTestServer(t, &fakeMarket{})

	// Raw payload with the exact field names clients send; changes-only
	// input must not be mistaken for empty input.
	payload := `{"currentHoldings":[{"symbol":"AAPL","quantity":10,"currentPrice":100}],` +
		`"simulatedChanges":[{"symbol":"VTI","action":"BUY","quantity":2,"price":250}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/portfolio/simulate", bytes.NewBufferString(payload))
	rec := httptest.NewRecorder()
	srv.handleSimulate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp simulationResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Current.HoldingsCount)
	assert.Equal(t, 2, resp.Simulated.HoldingsCount)
	assert.Equal(t, 500.0, resp.Changes.ValueChange)
}

func TestHandleSimulate_NoDataIs400(t *testing.T) {
	srv := newTestServer(t, &fakeMarket{})

	req := httptest.NewRequest(http.MethodPost, "/api/portfolio/simulate", jsonBody(t, map[string]interface{}{}))
	rec := httptest.NewRecorder()
	srv.handleSimulate(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp.Error, "No holdings or changes")
}

func TestHandleInsights(t *testing.T) {
	srv := newTestServer(t, &fakeMarket{})

	body := jsonBody(t, models.InsightRequest{
		Holdings: []models.Holding{
			{Symbol: "AAPL", CurrentValue: 1000, AssetType: models.AssetTypeStock},
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/portfolio/insights", body)
	rec := httptest.NewRecorder()
	srv.handleInsights(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp models.InsightResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Looks balanced.", resp.Insights)
	assert.Equal(t, "test-model", resp.Model)
}

func TestHandleInsights_EmptyHoldingsIs400(t *testing.T) {
	srv := newTestServer(t, &fakeMarket{})

	req := httptest.NewRequest(http.MethodPost, "/api/portfolio/insights", jsonBody(t, models.InsightRequest{}))
	rec := httptest.NewRecorder()
	srv.handleInsights(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleInsights_UnconfiguredClientIs503(t *testing.T) {
	srv := newTestServer(t, &fakeMarket{})
	srv.app.Insight = insight.NewService(nil, common.NewSilentLogger())

	body := jsonBody(t, models.InsightRequest{
		Holdings: []models.Holding{{Symbol: "AAPL", CurrentValue: 1000}},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/portfolio/insights", body)
	rec := httptest.NewRecorder()
	srv.handleInsights(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleInsights_GenerationFailureIs503(t *testing.T) {
	srv := newTestServer(t, &fakeMarket{})
	srv.app.Insight = insight.NewService(&fakeInsightClient{err: fmt.Errorf("quota exceeded")}, common.NewSilentLogger())

	body := jsonBody(t, models.InsightRequest{
		Holdings: []models.Holding{{Symbol: "AAPL", CurrentValue: 1000}},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/portfolio/insights", body)
	rec := httptest.NewRecorder()
	srv.handleInsights(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

// --- System handlers ---

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, &fakeMarket{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.handleHealth(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestHandleVersion(t *testing.T) {
	srv := newTestServer(t, &fakeMarket{})

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rec := httptest.NewRecorder()
	srv.handleVersion(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEmpty(t, resp["version"])
}

// --- Full stack through the middleware chain ---

func TestServer_RoutesThroughMiddleware(t *testing.T) {
	srv := newTestServer(t, &fakeMarket{})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_CORSPreflight(t *testing.T) {
	srv := newTestServer(t, &fakeMarket{})

	req := httptest.NewRequest(http.MethodOptions, "/api/portfolio/risk", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}
