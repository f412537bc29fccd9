package config

import "time"

// APIConfig holds SpaceTraders API client configuration
type APIConfig struct {
	// Base URL for SpaceTraders API
	BaseURL string `mapstructure:"base_url" validate:"required,url"`

	// Agent bearer token, sent on every request
	Token string `mapstructure:"token"`

	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// Request timeout
	Timeout time.Duration `mapstructure:"timeout" validate:"required"`

	Retry RetryConfig `mapstructure:"retry"`

	Cache CacheConfig `mapstructure:"cache"`

	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// Maximum requests per second
	Requests int `mapstructure:"requests" validate:"min=1"`

	// Burst size for token bucket
	Burst int `mapstructure:"burst" validate:"min=1"`
}

// RetryConfig covers network failures and 5xx responses.
// Rate-limit responses are retried for as long as the context allows.
type RetryConfig struct {
	MaxAttempts int `mapstructure:"max_attempts" validate:"min=0"`

	// Fixed pause between attempts
	BackoffBase time.Duration `mapstructure:"backoff_base"`
}

// CacheConfig sizes the response cache for static-ish lookups
type CacheConfig struct {
	Disabled bool          `mapstructure:"disabled"`
	Size     int           `mapstructure:"size" validate:"min=1"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// CircuitBreakerConfig holds transport circuit breaker settings
type CircuitBreakerConfig struct {
	MaxFailures int           `mapstructure:"max_failures" validate:"min=1"`
	Timeout     time.Duration `mapstructure:"timeout"`
}
