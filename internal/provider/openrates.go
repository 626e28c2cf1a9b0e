package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"fxquote/internal/currency"
)

var _ RatesSource = (*OpenRatesSource)(nil)

// OpenRatesSource fetches rates from the openrates API. The base currency
// and the wanted symbols are passed as query parameters.
type OpenRatesSource struct {
	baseURL  string
	client   *http.Client
	registry *currency.Registry
	log      *zap.SugaredLogger
}

// NewOpenRatesSource creates a new OpenRatesSource.
func NewOpenRatesSource(baseURL string, timeoutSec int, registry *currency.Registry, log *zap.SugaredLogger) *OpenRatesSource {
	if baseURL == "" {
		baseURL = "http://api.openrates.io"
	}
	return &OpenRatesSource{
		baseURL:  baseURL,
		client:   &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		registry: registry,
		log:      log,
	}
}

// Name identifies this source in logs and metrics.
func (s *OpenRatesSource) Name() string { return "openrates" }

type openRatesResponse struct {
	Base  string               `json:"base"`
	Date  string               `json:"date"`
	Rates map[string]rateValue `json:"rates"`
}

// FetchRates requests the rates for every supported currency other than base
// and normalizes the response.
func (s *OpenRatesSource) FetchRates(ctx context.Context, base string) (RateMap, error) {
	expected := s.registry.AllExcept(base)
	reqURL := fmt.Sprintf("%s/latest?base=%s&symbols=%s", s.baseURL, base, strings.Join(expected, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("openrates request creation failed: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openrates request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("openrates returned status %d: %s", resp.StatusCode, string(body))
	}

	var result openRatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode openrates response: %w", err)
	}
	if result.Rates == nil {
		return nil, fmt.Errorf("openrates response for %s has no rates field", base)
	}

	return normalizeRates(s.log, s.Name(), result.Rates, expected), nil
}
