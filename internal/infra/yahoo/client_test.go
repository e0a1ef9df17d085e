package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tnammu/dividash/internal/domain/stock"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func TestGetQuote(t *testing.T) {
	t.Run("parses chart meta", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/v8/finance/chart/RY.TO", r.URL.Path)
			require.Equal(t, "1d", r.URL.Query().Get("range"))

			w.Write([]byte(`{
				"chart": {
					"result": [{
						"meta": {
							"symbol": "RY.TO",
							"currency": "CAD",
							"regularMarketPrice": 144.8,
							"chartPreviousClose": 143.35,
							"regularMarketVolume": 2744100
						},
						"timestamp": [1704290400],
						"indicators": {"quote": [{"close": [144.8]}]}
					}],
					"error": null
				}
			}`))
		})

		quote, err := client.GetQuote(context.Background(), "RY.TO")
		require.NoError(t, err)
		require.Equal(t, "RY.TO", quote.Symbol)
		require.Equal(t, "144.8", quote.Price.String())
		require.Equal(t, stock.SourceYahoo, quote.Source)
		require.NotNil(t, quote.Change)
		require.Equal(t, "1.45", quote.Change.String())
		require.NotNil(t, quote.ChangePct)
		require.InDelta(t, 1.0115, *quote.ChangePct, 1e-3)
		require.NotNil(t, quote.Volume)
		require.Equal(t, int64(2744100), *quote.Volume)
	})

	t.Run("chart error means unknown symbol", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{
				"chart": {
					"result": null,
					"error": {"code": "Not Found", "description": "No data found, symbol may be delisted"}
				}
			}`))
		})

		_, err := client.GetQuote(context.Background(), "NOPE")
		require.ErrorIs(t, err, stock.ErrSymbolUnknown)
	})

	t.Run("http 429 maps to rate limited", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})

		_, err := client.GetQuote(context.Background(), "RY.TO")
		require.ErrorIs(t, err, stock.ErrRateLimited)
	})

	t.Run("http 500 maps to provider failure", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := client.GetQuote(context.Background(), "RY.TO")
		require.ErrorIs(t, err, stock.ErrProviderFailure)
	})
}

func TestGetDailyCloses(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "5d", r.URL.Query().Get("range"))
		w.Write([]byte(`{
			"chart": {
				"result": [{
					"meta": {"symbol": "RY.TO", "regularMarketPrice": 144.8},
					"timestamp": [1, 2, 3, 4, 5],
					"indicators": {"quote": [{"close": [143.0, null, 143.5, 144.1, 144.8]}]}
				}],
				"error": null
			}
		}`))
	})

	closes, err := client.GetDailyCloses(context.Background(), "RY.TO", 3)
	require.NoError(t, err)
	// Nulls are dropped, then the series is trimmed to the newest N
	require.Equal(t, []float64{143.5, 144.1, 144.8}, closes)
}

func TestRangeForDays(t *testing.T) {
	cases := []struct {
		days int
		want string
	}{
		{3, "5d"},
		{21, "1mo"},
		{63, "3mo"},
		{126, "6mo"},
		{252, "1y"},
		{504, "2y"},
		{1260, "5y"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, rangeForDays(tc.days))
	}
}
