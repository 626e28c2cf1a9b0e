package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fxquote/internal/currency"
)

func testRegistry(t *testing.T) *currency.Registry {
	t.Helper()
	r, err := currency.NewRegistry([]string{"USD", "EUR", "ILS"})
	require.NoError(t, err)
	return r
}

func TestOpenRatesSource_FetchRates(t *testing.T) {
	log := zap.NewNop().Sugar()
	registry := testRegistry(t)

	t.Run("parses and filters rates", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/latest", r.URL.Path)
			assert.Equal(t, "USD", r.URL.Query().Get("base"))
			assert.Equal(t, "EUR,ILS", r.URL.Query().Get("symbols"))
			w.Header().Set("Content-Type", "application/json")
			// GBP is outside the supported set and must be dropped silently.
			_, _ = w.Write([]byte(`{"base":"USD","date":"2026-08-28","rates":{"EUR":0.8389261745,"ILS":3.3077181208,"GBP":0.76}}`))
		}))
		defer srv.Close()

		src := NewOpenRatesSource(srv.URL, 5, registry, log)
		rates, err := src.FetchRates(context.Background(), "USD")

		require.NoError(t, err)
		assert.Len(t, rates, 2)
		assert.Equal(t, "0.8389261745", rates["EUR"].String())
		assert.Equal(t, "3.3077181208", rates["ILS"].String())
	})

	t.Run("drops invalid rate values", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"rates":{"EUR":-1,"ILS":3.32}}`))
		}))
		defer srv.Close()

		src := NewOpenRatesSource(srv.URL, 5, registry, log)
		rates, err := src.FetchRates(context.Background(), "USD")

		require.NoError(t, err)
		assert.Len(t, rates, 1)
		assert.Equal(t, "3.32", rates["ILS"].String())
	})

	t.Run("missing expected currency degrades gracefully", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"rates":{"EUR":0.84}}`))
		}))
		defer srv.Close()

		src := NewOpenRatesSource(srv.URL, 5, registry, log)
		rates, err := src.FetchRates(context.Background(), "USD")

		require.NoError(t, err)
		assert.Len(t, rates, 1)
	})

	t.Run("missing rates field is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"base":"USD"}`))
		}))
		defer srv.Close()

		src := NewOpenRatesSource(srv.URL, 5, registry, log)
		_, err := src.FetchRates(context.Background(), "USD")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no rates field")
	})

	t.Run("non-200 status is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "upstream exploded", http.StatusBadGateway)
		}))
		defer srv.Close()

		src := NewOpenRatesSource(srv.URL, 5, registry, log)
		_, err := src.FetchRates(context.Background(), "USD")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "status 502")
	})

	t.Run("unparseable body is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer srv.Close()

		src := NewOpenRatesSource(srv.URL, 5, registry, log)
		_, err := src.FetchRates(context.Background(), "USD")

		assert.Error(t, err)
	})
}

func TestExchangeRateAPISource_FetchRates(t *testing.T) {
	log := zap.NewNop().Sugar()
	registry := testRegistry(t)

	t.Run("base is a path segment", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v4/latest/USD", r.URL.Path)
			// Upstream reports many currencies; only the supported ones survive.
			_, _ = w.Write([]byte(`{"base":"USD","rates":{"EUR":"0.837996","ILS":"3.323482","GBP":"0.76","JPY":"147.2"}}`))
		}))
		defer srv.Close()

		src := NewExchangeRateAPISource(srv.URL, 5, registry, log)
		rates, err := src.FetchRates(context.Background(), "USD")

		require.NoError(t, err)
		assert.Len(t, rates, 2)
		assert.Equal(t, "0.837996", rates["EUR"].String())
		assert.Equal(t, "3.323482", rates["ILS"].String())
	})

	t.Run("transport failure is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // closed before use

		src := NewExchangeRateAPISource(srv.URL, 5, registry, log)
		_, err := src.FetchRates(context.Background(), "USD")

		assert.Error(t, err)
	})
}
