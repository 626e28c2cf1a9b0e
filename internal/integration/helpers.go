//go:build integration

package integration

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"fxquote/internal/currency"
)

var testRDB *redis.Client

// testCurrencies is the registry used across integration tests.
var testCurrencies = []string{"USD", "EUR", "ILS"}

// resetTestData flushes the current Redis database.
func resetTestData(t *testing.T) {
	t.Helper()

	if err := testRDB.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("failed to flush redis: %v", err)
	}
}

// testContext returns a context with a 30-second deadline tied to the test's cleanup.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func newTestRegistry(t *testing.T) *currency.Registry {
	t.Helper()
	reg, err := currency.NewRegistry(testCurrencies)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

// startOpenRatesStub serves an openrates-style response
// (rates under a query-parameter base) for the given rates.
func startOpenRatesStub(t *testing.T, rates map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		base := r.URL.Query().Get("base")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"base":%q,"date":"2024-01-15","rates":%s}`, base, ratesJSON(rates))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// startExchangeRateAPIStub serves an exchangerate-api-style response
// (base currency as the trailing path segment).
func startExchangeRateAPIStub(t *testing.T, rates map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		base := r.URL.Path[len("/v4/latest/"):]
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"base":%q,"date":"2024-01-15","rates":%s}`, base, ratesJSON(rates))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// startFailingStub serves a 502 for every request.
func startFailingStub(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func ratesJSON(rates map[string]string) string {
	out := "{"
	first := true
	for code, rate := range rates {
		if !first {
			out += ","
		}
		out += fmt.Sprintf("%q:%s", code, rate)
		first = false
	}
	return out + "}"
}
