package config

import "time"

// DefaultContractThreshold is the held fraction of cargo capacity above which a
// contract run delivers instead of mining
const DefaultContractThreshold = 0.7

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Type == "sqlite" && cfg.Database.Path == "" {
		cfg.Database.Path = "spacetraders.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "spacetraders"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "spacetraders"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// API defaults
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "https://api.spacetraders.io/v2"
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 30 * time.Second
	}
	if cfg.API.RateLimit.Requests == 0 {
		cfg.API.RateLimit.Requests = 2
	}
	if cfg.API.RateLimit.Burst == 0 {
		cfg.API.RateLimit.Burst = 2
	}
	if cfg.API.Retry.MaxAttempts == 0 {
		cfg.API.Retry.MaxAttempts = 3
	}
	if cfg.API.Retry.BackoffBase == 0 {
		cfg.API.Retry.BackoffBase = 1 * time.Second
	}
	if cfg.API.Cache.Size == 0 {
		cfg.API.Cache.Size = 512
	}
	if cfg.API.Cache.TTL == 0 {
		cfg.API.Cache.TTL = 10 * time.Minute
	}
	if cfg.API.CircuitBreaker.MaxFailures == 0 {
		cfg.API.CircuitBreaker.MaxFailures = 5
	}
	if cfg.API.CircuitBreaker.Timeout == 0 {
		cfg.API.CircuitBreaker.Timeout = 60 * time.Second
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	// Metrics defaults
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	// Automation defaults
	if cfg.Automation.ContractThreshold == 0 {
		cfg.Automation.ContractThreshold = DefaultContractThreshold
	}
	if cfg.Automation.ErrorPause == 0 {
		cfg.Automation.ErrorPause = 10 * time.Second
	}
	if cfg.Automation.IdlePause == 0 {
		cfg.Automation.IdlePause = 5 * time.Second
	}
	if cfg.Automation.PIDFile == "" {
		cfg.Automation.PIDFile = "/tmp/spacetraders-automation.pid"
	}
}

// Default returns a fully defaulted configuration
func Default() *Config {
	cfg := &Config{}
	cfg.Automation.UseSurveys = true
	SetDefaults(cfg)
	return cfg
}
