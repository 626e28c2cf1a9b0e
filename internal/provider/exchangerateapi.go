package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"fxquote/internal/currency"
)

var _ RatesSource = (*ExchangeRateAPISource)(nil)

// ExchangeRateAPISource fetches rates from the exchangerate-api endpoint.
// Unlike openrates, the base currency is a URL path segment and the response
// carries rates for every currency the upstream knows about; normalization
// trims it down to the supported set.
type ExchangeRateAPISource struct {
	baseURL  string
	client   *http.Client
	registry *currency.Registry
	log      *zap.SugaredLogger
}

// NewExchangeRateAPISource creates a new ExchangeRateAPISource.
func NewExchangeRateAPISource(baseURL string, timeoutSec int, registry *currency.Registry, log *zap.SugaredLogger) *ExchangeRateAPISource {
	if baseURL == "" {
		baseURL = "https://api.exchangerate-api.com"
	}
	return &ExchangeRateAPISource{
		baseURL:  baseURL,
		client:   &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		registry: registry,
		log:      log,
	}
}

// Name identifies this source in logs and metrics.
func (s *ExchangeRateAPISource) Name() string { return "exchangerate_api" }

type exchangeRateAPIResponse struct {
	Base  string               `json:"base"`
	Date  string               `json:"date"`
	Rates map[string]rateValue `json:"rates"`
}

// FetchRates requests the latest rates for the base currency and normalizes
// the response down to the supported targets.
func (s *ExchangeRateAPISource) FetchRates(ctx context.Context, base string) (RateMap, error) {
	reqURL := fmt.Sprintf("%s/v4/latest/%s", s.baseURL, base)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("exchangerate-api request creation failed: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exchangerate-api request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("exchangerate-api returned status %d: %s", resp.StatusCode, string(body))
	}

	var result exchangeRateAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode exchangerate-api response: %w", err)
	}
	if result.Rates == nil {
		return nil, fmt.Errorf("exchangerate-api response for %s has no rates field", base)
	}

	return normalizeRates(s.log, s.Name(), result.Rates, s.registry.AllExcept(base)), nil
}
