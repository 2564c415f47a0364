// Package yahoo provides a client for the Yahoo Finance chart and search APIs
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/thrivehq/thrive/internal/common"
	"github.com/thrivehq/thrive/internal/interfaces"
	"github.com/thrivehq/thrive/internal/models"
)

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// ErrSymbolNotFound indicates the provider has no data for the symbol.
// Callers map this to a structured "symbol not found" outcome, never a crash.
var ErrSymbolNotFound = errors.New("symbol not found")

// APIError represents an upstream API failure
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("yahoo API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Client implements the MarketDataClient interface
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Yahoo Finance client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
		breaker: newBreaker("yahoo"),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// newBreaker builds the upstream circuit breaker. Trips on 3 consecutive
// failures, or a >5% failure rate once 20 requests have been observed.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	st := gobreaker.Settings{Name: name}
	st.Interval = 60 * time.Second
	st.Timeout = 60 * time.Second
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		if counts.ConsecutiveFailures >= 3 {
			return true
		}
		if counts.Requests < 20 {
			return false
		}
		return float64(counts.TotalFailures)/float64(counts.Requests) > 0.05
	}
	return gobreaker.NewCircuitBreaker(st)
}

// apiResult captures the raw outcome of one upstream request. A 404 is a
// successful request from the breaker's point of view — only transport
// errors and 5xx responses count against the upstream.
type apiResult struct {
	status int
	body   []byte
}

// get performs a rate-limited, circuit-broken GET request
func (c *Client) get(ctx context.Context, path string, params url.Values) (*apiResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("Yahoo API request")

	res, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", "thrive-server/"+common.GetVersion())

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to execute request: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode >= 500 {
			return nil, &APIError{
				StatusCode: resp.StatusCode,
				Message:    string(body),
				Endpoint:   path,
			}
		}

		return &apiResult{status: resp.StatusCode, body: body}, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &APIError{
				StatusCode: http.StatusServiceUnavailable,
				Message:    "upstream circuit open",
				Endpoint:   path,
			}
		}
		return nil, err
	}

	return res.(*apiResult), nil
}

// chartResponse mirrors the Yahoo v8 chart API envelope
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				RegularMarketTime  int64   `json:"regularMarketTime"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// fetchChart retrieves and decodes a chart response for a symbol
func (c *Client) fetchChart(ctx context.Context, symbol, rng string) (*chartResponse, error) {
	params := url.Values{}
	params.Set("range", rng)
	params.Set("interval", "1d")

	path := fmt.Sprintf("/v8/finance/chart/%s", url.PathEscape(symbol))

	res, err := c.get(ctx, path, params)
	if err != nil {
		return nil, err
	}

	if res.status == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", symbol, ErrSymbolNotFound)
	}
	if res.status != http.StatusOK {
		return nil, &APIError{StatusCode: res.status, Message: string(res.body), Endpoint: path}
	}

	var chart chartResponse
	if err := json.Unmarshal(res.body, &chart); err != nil {
		return nil, fmt.Errorf("failed to decode chart response: %w", err)
	}

	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrSymbolNotFound)
	}

	return &chart, nil
}

// GetQuote retrieves the latest close price for a symbol
func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	chart, err := c.fetchChart(ctx, symbol, "1d")
	if err != nil {
		return nil, err
	}

	meta := chart.Chart.Result[0].Meta
	price := meta.RegularMarketPrice

	// Fall back to the last non-zero close when the meta price is absent
	if price == 0 {
		if q := chart.Chart.Result[0].Indicators.Quote; len(q) > 0 {
			for i := len(q[0].Close) - 1; i >= 0; i-- {
				if q[0].Close[i] > 0 {
					price = q[0].Close[i]
					break
				}
			}
		}
	}
	if price == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrSymbolNotFound)
	}

	currency := meta.Currency
	if currency == "" {
		currency = "USD"
	}

	ts := time.Now().UTC()
	if meta.RegularMarketTime > 0 {
		ts = time.Unix(meta.RegularMarketTime, 0).UTC()
	}

	return &models.Quote{
		Symbol:    meta.Symbol,
		Price:     price,
		Currency:  currency,
		Timestamp: ts,
	}, nil
}

// GetHistory retrieves a chronologically ordered OHLCV series for a symbol.
// Bars with a missing close are dropped.
func (c *Client) GetHistory(ctx context.Context, symbol, period string) ([]models.PriceBar, error) {
	if period == "" {
		period = "1mo"
	}

	chart, err := c.fetchChart(ctx, symbol, period)
	if err != nil {
		return nil, err
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrSymbolNotFound)
	}

	quote := result.Indicators.Quote[0]
	bars := make([]models.PriceBar, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		if i >= len(quote.Close) || quote.Close[i] == 0 {
			continue
		}
		bar := models.PriceBar{
			Date:  time.Unix(ts, 0).UTC(),
			Close: quote.Close[i],
		}
		if i < len(quote.Open) {
			bar.Open = quote.Open[i]
		}
		if i < len(quote.High) {
			bar.High = quote.High[i]
		}
		if i < len(quote.Low) {
			bar.Low = quote.Low[i]
		}
		if i < len(quote.Volume) {
			bar.Volume = quote.Volume[i]
		}
		bars = append(bars, bar)
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrSymbolNotFound)
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	return bars, nil
}

// searchResponse mirrors the Yahoo v1 search API envelope
type searchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		ShortName string `json:"shortname"`
		LongName  string `json:"longname"`
		QuoteType string `json:"quoteType"`
		Exchange  string `json:"exchange"`
	} `json:"quotes"`
}

// Search performs a free-text symbol search
func (c *Client) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("quotesCount", "10")
	params.Set("newsCount", "0")

	path := "/v1/finance/search"

	res, err := c.get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	if res.status != http.StatusOK {
		return nil, &APIError{StatusCode: res.status, Message: string(res.body), Endpoint: path}
	}

	var sr searchResponse
	if err := json.Unmarshal(res.body, &sr); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	results := make([]models.SearchResult, 0, len(sr.Quotes))
	for _, q := range sr.Quotes {
		if q.Symbol == "" {
			continue
		}
		name := q.ShortName
		if name == "" {
			name = q.LongName
		}
		results = append(results, models.SearchResult{
			Symbol:   q.Symbol,
			Name:     name,
			Type:     models.ParseAssetType(q.QuoteType),
			Exchange: q.Exchange,
		})
	}

	c.logger.Debug().Str("query", query).Int("results", len(results)).Msg("Yahoo search returned results")

	return results, nil
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)
