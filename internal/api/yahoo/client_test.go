package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(ClientOptions{
		BaseURL:         srv.URL,
		RequestTimeout:  time.Second,
		RequestsPerSec:  100,
		MaxRetries:      1,
		MaxRetryTimeout: time.Second,
	})
	c.now = func() time.Time { return time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC) }
	return c
}

func TestGetDailyCloses(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/SPY", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))

		// 2024-01-02 14:30, 2024-01-03 14:30, 2024-01-04 14:30 UTC
		w.Write([]byte(`{"chart": {"result": [{
			"meta": {"symbol": "SPY", "currency": "USD"},
			"timestamp": [1704205800, 1704292200, 1704378600],
			"indicators": {
				"quote": [{"close": [472.65, null, 467.28]}],
				"adjclose": [{"adjclose": [470.10, null, 464.76]}]
			}
		}], "error": null}}`))
	})

	s, err := c.GetDailyCloses(context.Background(), "SPY", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Equal(t, 2, s.Len())
	assert.NoError(t, s.Validate())
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), s.Times[0])
	assert.Equal(t, time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC), s.Times[1])
	assert.Equal(t, 470.10, s.Values[0])
	assert.Equal(t, 464.76, s.Values[1])
}

func TestGetDailyClosesRawFallback(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart": {"result": [{
			"timestamp": [1704205800],
			"indicators": {"quote": [{"close": [472.65]}]}
		}]}}`))
	})

	s, err := c.GetDailyCloses(context.Background(), "SPY", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 472.65, s.Values[0])
}

func TestGetDailyClosesErrors(t *testing.T) {
	t.Run("api_error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"chart": {"result": null, "error": {"code": "Not Found", "description": "No data found, symbol may be delisted"}}}`))
		})
		_, err := c.GetDailyCloses(context.Background(), "XXXX", time.Time{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "delisted")
	})

	t.Run("no_closes", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"chart": {"result": [{"timestamp": [1704205800], "indicators": {"quote": [{"close": [null]}]}}]}}`))
		})
		_, err := c.GetDailyCloses(context.Background(), "SPY", time.Time{})
		assert.ErrorIs(t, err, ErrNoData)
	})
}
