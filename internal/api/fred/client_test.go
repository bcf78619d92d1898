package fred

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Alias1177/CreditRegime/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(ClientOptions{
		APIKey:          "test-key",
		BaseURL:         srv.URL,
		RequestTimeout:  time.Second,
		RequestsPerSec:  100,
		MaxRetries:      1,
		MaxRetryTimeout: time.Second,
	})
	require.NoError(t, err)
	return c
}

func TestGetSeries(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/series/observations", r.URL.Path)
		assert.Equal(t, SeriesHighYieldOAS, r.URL.Query().Get("series_id"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "json", r.URL.Query().Get("file_type"))
		assert.Equal(t, "1993-01-01", r.URL.Query().Get("observation_start"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"observation_start": "1993-01-01",
			"count": 4,
			"observations": [
				{"date": "1993-01-05", "value": "5.10"},
				{"date": "1993-01-04", "value": "5.00"},
				{"date": "1993-01-06", "value": "."},
				{"date": "bogus", "value": "1"}
			]
		}`))
	})

	s, err := c.GetSeries(context.Background(), SeriesHighYieldOAS, time.Date(1993, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Equal(t, 3, s.Len())
	assert.NoError(t, s.Validate())
	assert.Equal(t, SeriesHighYieldOAS, s.Name)
	assert.Equal(t, 5.00, s.Values[0])
	assert.Equal(t, 5.10, s.Values[1])
	assert.True(t, math.IsNaN(s.Values[2]))
}

func TestGetSeriesEmpty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"observations": []}`))
	})

	_, err := c.GetSeries(context.Background(), SeriesFedFunds, time.Time{})
	assert.ErrorIs(t, err, ErrNoObservations)
}

func TestGetSeriesAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error_code": 400, "error_message": "Bad Request. The value for variable api_key is not registered."}`))
	})

	_, err := c.GetSeries(context.Background(), SeriesInvGradeOAS, time.Time{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api_key is not registered")
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient(ClientOptions{})
	assert.ErrorIs(t, err, config.ErrMissingAPIKey)
}
