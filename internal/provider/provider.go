// Package provider implements the upstream rate sources and the reconciler
// that merges their results into a single trusted rate per target currency.
package provider

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fxquote/internal/currency"
)

// RateMap maps a target currency code to its rate: one unit of the base
// currency equals the mapped value in units of the target currency.
type RateMap map[string]decimal.Decimal

// RatesSource fetches rates for a base currency from one upstream endpoint.
type RatesSource interface {
	Name() string
	FetchRates(ctx context.Context, base string) (RateMap, error)
}

// rateValue accepts the two shapes upstream APIs use for rate values:
// JSON numbers and numeric strings. Validation happens in normalizeRates,
// not here, so a malformed value degrades a single entry instead of
// failing the whole decode.
type rateValue string

func (v *rateValue) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = rateValue(s)
		return nil
	}
	*v = rateValue(b)
	return nil
}

// normalizeRates filters a raw upstream rates mapping down to exactly the
// expected target currencies and drops entries that fail the positive-number
// check. Dropped or missing entries are logged, not fatal: a degraded source
// still contributes whatever valid rates it has.
func normalizeRates(log *zap.SugaredLogger, source string, raw map[string]rateValue, expected []string) RateMap {
	rates := make(RateMap, len(expected))
	for _, target := range expected {
		val, ok := raw[target]
		if !ok {
			log.Warnw("Rate missing from source response",
				"source", source, "currency", target,
				"problem", currency.MissingRate(target).Message)
			continue
		}
		d, problem := currency.CheckAmount(string(val))
		if problem != nil {
			log.Warnw("Invalid rate dropped from source response",
				"source", source, "currency", target, "value", string(val),
				"problem", problem.Message)
			continue
		}
		rates[target] = d
	}
	return rates
}
