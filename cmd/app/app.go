// Package main is the entry point for the currency exchange quote service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fxquote/internal/cache"
	"fxquote/internal/config"
	"fxquote/internal/currency"
	"fxquote/internal/provider"
	"fxquote/internal/service"
	"fxquote/internal/worker"
)

// App holds all application dependencies and manages their lifecycle.
type App struct {
	cfg            *config.Config
	logger         *zap.SugaredLogger
	rdbCache       *redis.Client
	rdbAsynq       *redis.Client
	asynqServer    *asynq.Server
	asynqMux       *asynq.ServeMux
	asynqScheduler *asynq.Scheduler
	httpServer     *http.Server
}

// NewApp initializes all dependencies and returns a ready-to-run App.
func NewApp(cfg *config.Config, logger *zap.SugaredLogger) (*App, error) {
	app := &App{
		cfg:    cfg,
		logger: logger,
	}

	if err := app.initStorage(); err != nil {
		_ = app.close()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.close()
		return nil, err
	}

	return app, nil
}

// close releases the Redis connections
func (app *App) close() error {
	var errs []error
	if app.rdbAsynq != nil {
		if err := app.rdbAsynq.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis asynq close: %w", err))
		}
	}
	if app.rdbCache != nil {
		if err := app.rdbCache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis cache close: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (app *App) initStorage() error {
	app.rdbCache = redis.NewClient(&redis.Options{
		Addr: app.cfg.Redis.CacheAddr,
	})
	if err := app.rdbCache.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("connect to Redis (cache, %s): %w", app.cfg.Redis.CacheAddr, err)
	}
	app.logger.Infow("Connected to Redis cache", "addr", app.cfg.Redis.CacheAddr)

	return nil
}

func (app *App) initServices() error {
	registry, err := currency.NewRegistry(app.cfg.Currencies)
	if err != nil {
		return fmt.Errorf("build currency registry: %w", err)
	}

	reconciler, err := newReconciler(app.cfg, registry, app.logger)
	if err != nil {
		return err
	}

	rateCache := cache.NewRedisRateCache(
		app.rdbCache,
		reconciler,
		time.Duration(app.cfg.Cache.RateTTLSec)*time.Second,
		app.logger,
	)
	validator := service.NewValidator(registry)
	quoteService := service.NewQuoteService(rateCache, validator, app.logger)

	if err := app.initWorker(registry, rateCache); err != nil {
		return err
	}

	app.initHTTP(quoteService)
	return nil
}

// newReconciler builds the reconciler over every configured rate source.
func newReconciler(cfg *config.Config, registry *currency.Registry, logger *zap.SugaredLogger) (*provider.Reconciler, error) {
	var sources []provider.RatesSource

	if cfg.OpenRates.BaseURL != "" {
		sources = append(sources,
			provider.NewOpenRatesSource(cfg.OpenRates.BaseURL, cfg.OpenRates.Timeout, registry, logger))
	}

	if cfg.ExchangeRateAPI.BaseURL != "" {
		sources = append(sources,
			provider.NewExchangeRateAPISource(cfg.ExchangeRateAPI.BaseURL, cfg.ExchangeRateAPI.Timeout, registry, logger))
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no rate sources are configured: openrates and exchangerate_api both require base_url")
	}

	return provider.NewReconciler(logger, sources...), nil
}

// initWorker configures the Asynq server and, when warming is enabled, a
// scheduler that periodically refreshes the cached rates for every supported
// base currency.
func (app *App) initWorker(registry *currency.Registry, rateCache cache.RateStore) error {
	redisOpt := asynq.RedisClientOpt{Addr: app.cfg.Redis.AsynqAddr}

	app.rdbAsynq = redis.NewClient(&redis.Options{Addr: app.cfg.Redis.AsynqAddr})
	app.asynqServer = asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: app.cfg.Worker.Concurrency,
		},
	)

	app.asynqMux = asynq.NewServeMux()
	app.asynqMux.HandleFunc(worker.TaskTypeRefreshRates, worker.NewRefreshRatesHandler(rateCache, app.logger))

	if app.cfg.Worker.RefreshIntervalSec <= 0 {
		app.logger.Infow("Cache warming disabled", "addr", app.cfg.Redis.AsynqAddr)
		return nil
	}

	app.asynqScheduler = asynq.NewScheduler(redisOpt, nil)
	spec := fmt.Sprintf("@every %ds", app.cfg.Worker.RefreshIntervalSec)
	for _, base := range registry.All() {
		task, err := worker.NewRefreshRatesTask(base)
		if err != nil {
			return fmt.Errorf("create refresh task for %s: %w", base, err)
		}
		if _, err := app.asynqScheduler.Register(spec, task,
			asynq.MaxRetry(app.cfg.Worker.MaxRetry),
			asynq.Timeout(time.Duration(app.cfg.Worker.TimeoutSec)*time.Second),
		); err != nil {
			return fmt.Errorf("schedule refresh for %s: %w", base, err)
		}
	}

	app.logger.Infow("Cache warming scheduled",
		"interval", spec, "bases", registry.All(), "addr", app.cfg.Redis.AsynqAddr)
	return nil
}

// Run starts the HTTP server and Asynq worker, blocking until the context is canceled.
func (app *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Infow("Starting Asynq worker server")
		if err := app.asynqServer.Start(app.asynqMux); err != nil {
			return fmt.Errorf("asynq worker failed to start: %w", err)
		}

		<-ctx.Done()
		return nil
	})

	if app.asynqScheduler != nil {
		g.Go(func() error {
			if err := app.asynqScheduler.Start(); err != nil {
				return fmt.Errorf("asynq scheduler failed to start: %w", err)
			}

			<-ctx.Done()
			return nil
		})
	}

	g.Go(func() error {
		app.logger.Infow("HTTP server listening", "port", app.cfg.Server.Port)
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown: triggered by context cancellation (signal or component failure).
	g.Go(func() error {
		<-ctx.Done()
		return app.shutdown()
	})

	return g.Wait()
}

// shutdown performs ordered teardown: HTTP server -> scheduler -> Asynq worker -> connections.
// This ensures in-flight refreshes finish before the Redis connections close.
func (app *App) shutdown() error {
	app.logger.Infow("Shutting down server...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 1. Stop accepting new HTTP requests, drain in-flight
	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		app.logger.Errorw("HTTP server shutdown error", "error", err)
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	// 2. Stop scheduling new refreshes, then drain in-flight tasks
	if app.asynqScheduler != nil {
		app.asynqScheduler.Shutdown()
	}
	app.asynqServer.Shutdown()

	// 3. Close Redis connections
	if err := app.close(); err != nil {
		app.logger.Errorw("Connection cleanup errors", "error", err)
		errs = append(errs, err)
	}

	app.logger.Infow("Shutdown complete")
	return errors.Join(errs...)
}
