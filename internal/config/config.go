// Package config provides application configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the complete application configuration.
type Config struct {
	Server          ServerConfig
	Redis           RedisConfig
	Cache           CacheConfig
	OpenRates       OpenRatesConfig       `mapstructure:"openrates"`
	ExchangeRateAPI ExchangeRateAPIConfig `mapstructure:"exchangerate_api"`
	Worker          WorkerConfig
	Currencies      []string `mapstructure:"currencies"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int  `mapstructure:"port"`
	ServeSwagger bool `mapstructure:"serve_swagger"`
}

// RedisConfig holds connection settings for both Redis instances.
type RedisConfig struct {
	CacheAddr string `mapstructure:"cache_addr"` // Redis instance for the rate cache (required).
	AsynqAddr string `mapstructure:"asynq_addr"` // Redis instance for the Asynq task queue (required).
}

// CacheConfig holds rate cache settings.
type CacheConfig struct {
	RateTTLSec int `mapstructure:"rate_ttl_sec"` // Lifetime of a cached rate entry.
}

// OpenRatesConfig holds settings for the openrates source.
type OpenRatesConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout_sec"`
}

// ExchangeRateAPIConfig holds settings for the exchangerate-api source.
type ExchangeRateAPIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout_sec"`
}

// WorkerConfig holds background worker and cache-warming settings.
type WorkerConfig struct {
	Concurrency        int `mapstructure:"concurrency"`
	MaxRetry           int `mapstructure:"max_retry"`
	TimeoutSec         int `mapstructure:"timeout_sec"`
	RefreshIntervalSec int `mapstructure:"refresh_interval_sec"`
}

// LoadConfig reads configuration from config files, environment variables, and defaults.
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Printf("No .env file found or error loading it: %v\n", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Config search paths
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("./internal/config")

	viper.SetEnvPrefix("FXQUOTE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// default values
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.serve_swagger", true)
	viper.SetDefault("redis.cache_addr", "redis_cache:6379")
	viper.SetDefault("redis.asynq_addr", "redis_asynq:6380")
	viper.SetDefault("cache.rate_ttl_sec", 10)
	viper.SetDefault("openrates.base_url", "http://api.openrates.io")
	viper.SetDefault("openrates.timeout_sec", 5)
	viper.SetDefault("exchangerate_api.base_url", "https://api.exchangerate-api.com")
	viper.SetDefault("exchangerate_api.timeout_sec", 5)
	viper.SetDefault("worker.concurrency", 1)
	viper.SetDefault("worker.max_retry", 3)
	viper.SetDefault("worker.timeout_sec", 30)
	viper.SetDefault("worker.refresh_interval_sec", 0) // 0 disables background warming
	viper.SetDefault("currencies", []string{"USD", "EUR", "ILS"})

	if err := viper.ReadInConfig(); err != nil {
		// It's okay if no config file, we have defaults and env
		fmt.Printf("Config file not found: %v\n", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Validate checks that all required configuration fields are set and valid.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be positive, got %d", c.Server.Port))
	}

	if c.Redis.CacheAddr == "" {
		errs = append(errs, fmt.Errorf("redis.cache_addr is required (set FXQUOTE_REDIS_CACHE_ADDR)"))
	}
	if c.Redis.AsynqAddr == "" {
		errs = append(errs, fmt.Errorf("redis.asynq_addr is required (set FXQUOTE_REDIS_ASYNQ_ADDR)"))
	}

	if c.Cache.RateTTLSec <= 0 {
		errs = append(errs, fmt.Errorf("cache.rate_ttl_sec must be positive, got %d", c.Cache.RateTTLSec))
	}

	if c.OpenRates.BaseURL == "" && c.ExchangeRateAPI.BaseURL == "" {
		errs = append(errs, fmt.Errorf("at least one rate source base_url is required"))
	}
	if c.OpenRates.BaseURL != "" && c.OpenRates.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("openrates.timeout_sec must be positive, got %d", c.OpenRates.Timeout))
	}
	if c.ExchangeRateAPI.BaseURL != "" && c.ExchangeRateAPI.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("exchangerate_api.timeout_sec must be positive, got %d", c.ExchangeRateAPI.Timeout))
	}

	if c.Worker.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("worker.concurrency must be positive, got %d", c.Worker.Concurrency))
	}
	if c.Worker.MaxRetry < 0 {
		errs = append(errs, fmt.Errorf("worker.max_retry must be non-negative, got %d", c.Worker.MaxRetry))
	}
	if c.Worker.TimeoutSec <= 0 {
		errs = append(errs, fmt.Errorf("worker.timeout_sec must be positive, got %d", c.Worker.TimeoutSec))
	}
	if c.Worker.RefreshIntervalSec < 0 {
		errs = append(errs, fmt.Errorf("worker.refresh_interval_sec must be non-negative, got %d", c.Worker.RefreshIntervalSec))
	}

	if len(c.Currencies) < 2 {
		errs = append(errs, fmt.Errorf("at least two supported currencies are required, got %d", len(c.Currencies)))
	}

	return errors.Join(errs...)
}
