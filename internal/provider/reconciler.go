package provider

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fxquote/internal/metrics"
)

// Reconciler drives every rate source concurrently for a base currency and
// merges their results into one trusted rate per target currency.
type Reconciler struct {
	sources []RatesSource
	log     *zap.SugaredLogger
}

// NewReconciler creates a Reconciler over the given sources.
func NewReconciler(log *zap.SugaredLogger, sources ...RatesSource) *Reconciler {
	return &Reconciler{
		sources: sources,
		log:     log,
	}
}

// MaxRates fetches rates from all sources concurrently and merges them by
// taking the maximum rate each target currency was reported at. A failing
// source contributes nothing; its failure never aborts the other fetches.
// The merge is commutative, so source ordering is irrelevant. Targets no
// source reported are absent from the result.
func (r *Reconciler) MaxRates(ctx context.Context, base string) RateMap {
	results := make([]RateMap, len(r.sources))

	var g errgroup.Group
	for i, src := range r.sources {
		g.Go(func() error {
			start := time.Now()
			rates, err := src.FetchRates(ctx, base)
			metrics.SourceFetchDuration.WithLabelValues(src.Name()).Observe(time.Since(start).Seconds())
			if err != nil {
				metrics.SourceFetchesTotal.WithLabelValues(src.Name(), "error").Inc()
				r.log.Warnw("Rate source failed, contributing nothing",
					"source", src.Name(), "base", base, "error", err)
				return nil
			}
			metrics.SourceFetchesTotal.WithLabelValues(src.Name(), "ok").Inc()
			results[i] = rates
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors; failures are per-source

	merged := make(RateMap)
	for _, rates := range results {
		for target, rate := range rates {
			if cur, ok := merged[target]; !ok || rate.GreaterThan(cur) {
				merged[target] = rate
			}
		}
	}
	return merged
}
