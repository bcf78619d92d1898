package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Alias1177/CreditRegime/internal/model"
	httpClient "github.com/Alias1177/CreditRegime/internal/platform/http"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	defaultBaseURL = "https://query1.finance.yahoo.com"
	userAgent      = "Mozilla/5.0 (compatible; credit-regime/1.0)"
)

// ErrNoData is returned when the chart payload carries no usable closes.
var ErrNoData = errors.New("no price data returned")

// Client is the Yahoo Finance chart API client
type Client struct {
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
	now        func() time.Time
}

// ClientOptions holds options for creating a new Yahoo client
type ClientOptions struct {
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new Yahoo Finance client
func NewClient(options ClientOptions) *Client {
	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		baseURL: baseURL,
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Name:            "yahoo",
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetries:      options.MaxRetries,
			MaxRetryTimeout: options.MaxRetryTimeout,
		}),
		logger: log.With().Str("component", "yahoo_client").Logger(),
		now:    time.Now,
	}
}

// GetDailyCloses fetches dividend-adjusted daily closes of symbol from start to today.
// Timestamps are normalized to UTC midnight of the trading day; days without a close are skipped.
func (c *Client) GetDailyCloses(ctx context.Context, symbol string, start time.Time) (model.Series, error) {
	params := url.Values{}
	params.Set("period1", fmt.Sprint(start.Unix()))
	params.Set("period2", fmt.Sprint(c.now().Unix()))
	params.Set("interval", "1d")
	params.Set("events", "div,split")
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	c.logger.Debug().Str("symbol", symbol).Msg("Fetching daily closes")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.Series{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return model.Series{}, fmt.Errorf("HTTP request failed for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Series{}, fmt.Errorf("reading response body: %w", err)
	}

	var data model.YahooChartResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Str("symbol", symbol).Msg("Error parsing JSON")
		return model.Series{}, fmt.Errorf("parsing JSON: %w", err)
	}
	if data.Chart.Error != nil {
		return model.Series{}, fmt.Errorf("Yahoo API error for %s: %s: %s", symbol, data.Chart.Error.Code, data.Chart.Error.Description)
	}
	if len(data.Chart.Result) == 0 {
		return model.Series{}, fmt.Errorf("%s: %w", symbol, ErrNoData)
	}

	result := data.Chart.Result[0]
	closes := pickCloses(result.Indicators.AdjClose, result.Indicators.Quote)

	series := model.Series{Name: symbol}
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		day := time.Unix(ts, 0).UTC().Truncate(24 * time.Hour)
		if n := len(series.Times); n > 0 && !day.After(series.Times[n-1]) {
			continue
		}
		series.Times = append(series.Times, day)
		series.Values = append(series.Values, *closes[i])
	}

	if series.Len() == 0 {
		return model.Series{}, fmt.Errorf("%s: %w", symbol, ErrNoData)
	}

	c.logger.Debug().Str("symbol", symbol).Int("count", series.Len()).Msg("Fetched daily closes")
	return series, nil
}

// pickCloses prefers adjusted closes and falls back to raw closes.
func pickCloses(adj []struct {
	AdjClose []*float64 `json:"adjclose"`
}, quote []struct {
	Close []*float64 `json:"close"`
}) []*float64 {
	if len(adj) > 0 && len(adj[0].AdjClose) > 0 {
		return adj[0].AdjClose
	}
	if len(quote) > 0 {
		return quote[0].Close
	}
	return nil
}
