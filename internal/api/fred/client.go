package fred

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/Alias1177/CreditRegime/internal/config"
	"github.com/Alias1177/CreditRegime/internal/model"
	httpClient "github.com/Alias1177/CreditRegime/internal/platform/http"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// FRED series identifiers used by the dataset.
const (
	SeriesHighYieldOAS = "BAMLH0A0HYM2"
	SeriesInvGradeOAS  = "BAMLC0A0CM"
	SeriesFedFunds     = "FEDFUNDS"
)

const (
	defaultBaseURL = "https://api.stlouisfed.org/fred"
	dateLayout     = "2006-01-02"
	missingValue   = "."
)

// ErrNoObservations is returned when a series has no data in the requested range.
var ErrNoObservations = errors.New("no observations returned")

// Client is the FRED API client
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new FRED client
type ClientOptions struct {
	APIKey          string
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new FRED API client. An empty key is rejected before any request.
func NewClient(options ClientOptions) (*Client, error) {
	if options.APIKey == "" {
		return nil, config.ErrMissingAPIKey
	}

	httpOpts := httpClient.ClientOptions{
		Name:            "fred",
		Timeout:         options.RequestTimeout,
		RequestsPerSec:  options.RequestsPerSec,
		MaxRetries:      options.MaxRetries,
		MaxRetryTimeout: options.MaxRetryTimeout,
	}

	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		apiKey:     options.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient.NewClient(httpOpts),
		logger:     log.With().Str("component", "fred_client").Logger(),
	}, nil
}

// GetSeries fetches the observations of a series from start onwards, sorted by date.
// Missing observations are kept as NaN.
func (c *Client) GetSeries(ctx context.Context, seriesID string, start time.Time) (model.Series, error) {
	params := url.Values{}
	params.Set("series_id", seriesID)
	params.Set("api_key", c.apiKey)
	params.Set("file_type", "json")
	if !start.IsZero() {
		params.Set("observation_start", start.Format(dateLayout))
	}
	endpoint := fmt.Sprintf("%s/series/observations?%s", c.baseURL, params.Encode())

	c.logger.Debug().Str("series", seriesID).Msg("Fetching observations")

	// Create a new request with context
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.Series{}, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		var statusErr *httpClient.HTTPStatusError
		if errors.As(err, &statusErr) {
			var apiErr model.FREDError
			if json.Unmarshal([]byte(statusErr.Body), &apiErr) == nil && apiErr.ErrorMessage != "" {
				return model.Series{}, fmt.Errorf("FRED API error for %s: %s: %w", seriesID, apiErr.ErrorMessage, err)
			}
		}
		return model.Series{}, fmt.Errorf("HTTP request failed for %s: %w", seriesID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Series{}, fmt.Errorf("reading response body: %w", err)
	}

	var data model.FREDResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Str("series", seriesID).Msg("Error parsing JSON")
		return model.Series{}, fmt.Errorf("parsing JSON: %w", err)
	}

	obs := make([]model.Observation, 0, len(data.Observations))
	missing := 0
	for _, o := range data.Observations {
		date, err := time.Parse(dateLayout, o.Date)
		if err != nil {
			c.logger.Warn().Str("series", seriesID).Str("date", o.Date).Msg("Skipping malformed date")
			continue
		}
		value := model.Missing()
		if o.Value != missingValue {
			if v, err := strconv.ParseFloat(o.Value, 64); err == nil {
				value = v
			}
		}
		if model.IsMissing(value) {
			missing++
		}
		obs = append(obs, model.Observation{Date: date, Value: value})
	}

	if len(obs) == 0 {
		return model.Series{}, fmt.Errorf("%s: %w", seriesID, ErrNoObservations)
	}

	// Sort observations by date (oldest first)
	sort.Slice(obs, func(i, j int) bool {
		return obs[i].Date.Before(obs[j].Date)
	})

	series := toSeries(seriesID, obs)

	if pct := float64(missing) / float64(len(obs)) * 100; pct > 10 {
		c.logger.Warn().Str("series", seriesID).Float64("missing_pct", pct).Msg("High share of missing values")
	}
	c.logger.Debug().Str("series", seriesID).Int("count", series.Len()).Msg("Fetched observations")
	return series, nil
}

// toSeries drops duplicate dates, keeping the last value.
func toSeries(name string, obs []model.Observation) model.Series {
	s := model.Series{Name: name}
	for _, o := range obs {
		if n := len(s.Times); n > 0 && s.Times[n-1].Equal(o.Date) {
			s.Values[n-1] = o.Value
			continue
		}
		s.Times = append(s.Times, o.Date)
		s.Values = append(s.Values, o.Value)
	}
	return s
}
