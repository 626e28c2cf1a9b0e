// Package worker implements the background cache-warming tasks. Warming is
// an optimization only: a cold cache is refreshed on demand by the first
// quote request, so observable behavior is identical either way.
package worker

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"fxquote/internal/cache"
)

// TaskTypeRefreshRates is the Asynq task type for rate refresh jobs.
const TaskTypeRefreshRates = "rates:refresh"

// RefreshRatesPayload is the payload structure for rate refresh Asynq tasks.
type RefreshRatesPayload struct {
	Base string `json:"base"`
}

// NewRefreshRatesTask creates an Asynq task that refreshes all cached pairs
// for the given base currency.
func NewRefreshRatesTask(base string) (*asynq.Task, error) {
	payload, err := json.Marshal(RefreshRatesPayload{Base: base})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeRefreshRates, payload), nil
}

// NewRefreshRatesHandler returns the handler for rate refresh tasks.
func NewRefreshRatesHandler(store cache.RateStore, logger *zap.SugaredLogger) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload RefreshRatesPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			logger.Errorw("Invalid task payload", "type", t.Type(), "error", err)
			return nil
		}

		if err := store.Refresh(ctx, payload.Base); err != nil {
			logger.Errorw("Scheduled refresh failed", "base", payload.Base, "error", err)
			return err
		}

		logger.Infow("Scheduled refresh completed", "base", payload.Base)
		return nil
	}
}
