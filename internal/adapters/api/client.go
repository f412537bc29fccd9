package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/andrescamacho/spacetraders-automation/internal/adapters/metrics"
	"github.com/andrescamacho/spacetraders-automation/internal/application/common"
	"github.com/andrescamacho/spacetraders-automation/internal/domain/shared"
	"github.com/andrescamacho/spacetraders-automation/internal/infrastructure/config"
)

const (
	defaultBaseURL     = "https://api.spacetraders.io/v2"
	defaultTimeout     = 30 * time.Second
	defaultBackoffBase = time.Second
	pageLimit          = 20
)

// ClientOptions configures a SpaceTradersClient
type ClientOptions struct {
	BaseURL            string
	Token              string
	Timeout            time.Duration
	RequestsPerSecond  float64
	Burst              int
	MaxRetries         int
	BackoffBase        time.Duration
	BreakerMaxFailures int
	BreakerTimeout     time.Duration

	// HTTPClient overrides the default client, mainly for tests
	HTTPClient *http.Client
}

// OptionsFromConfig maps the api section of the configuration onto client options
func OptionsFromConfig(cfg config.APIConfig) ClientOptions {
	return ClientOptions{
		BaseURL:            cfg.BaseURL,
		Token:              cfg.Token,
		Timeout:            cfg.Timeout,
		RequestsPerSecond:  float64(cfg.RateLimit.Requests),
		Burst:              cfg.RateLimit.Burst,
		MaxRetries:         cfg.Retry.MaxAttempts,
		BackoffBase:        cfg.Retry.BackoffBase,
		BreakerMaxFailures: cfg.CircuitBreaker.MaxFailures,
		BreakerTimeout:     cfg.CircuitBreaker.Timeout,
	}
}

// SpaceTradersClient implements ports.APIClient over HTTP.
//
// Every call waits on a token bucket, runs through the circuit breaker and
// retries in place: rate-limit responses for as long as the context lives,
// network failures and 5xx responses up to MaxRetries with a fixed pause.
type SpaceTradersClient struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	breaker     *CircuitBreaker
	baseURL     string
	token       string
	maxRetries  int
	backoffBase time.Duration
	clock       shared.Clock
}

// NewSpaceTradersClient creates a client; zero-valued options fall back to
// 2 req/s burst 2 and a one second backoff.
// If clock is nil, uses RealClock for production.
func NewSpaceTradersClient(opts ClientOptions, clock shared.Clock) *SpaceTradersClient {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 2
	}
	if opts.Burst <= 0 {
		opts.Burst = 2
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = defaultBackoffBase
	}
	if opts.BreakerMaxFailures <= 0 {
		opts.BreakerMaxFailures = 5
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = time.Minute
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	breaker := NewCircuitBreaker(opts.BreakerMaxFailures, opts.BreakerTimeout, clock)
	breaker.OnStateChange(func(state CircuitState) {
		metrics.RecordCircuitState(state.String())
	})

	return &SpaceTradersClient{
		httpClient:  httpClient,
		rateLimiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
		breaker:     breaker,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		token:       opts.Token,
		maxRetries:  opts.MaxRetries,
		backoffBase: opts.BackoffBase,
		clock:       clock,
	}
}

// Breaker exposes the circuit breaker for health reporting
func (c *SpaceTradersClient) Breaker() *CircuitBreaker {
	return c.breaker
}

// envelope is the {"data": ...} body of a successful call
type envelope[T any] struct {
	Data T        `json:"data"`
	Meta *metaDTO `json:"meta,omitempty"`
}

func (c *SpaceTradersClient) get(ctx context.Context, path string, result interface{}) error {
	return c.request(ctx, http.MethodGet, path, nil, result)
}

func (c *SpaceTradersClient) post(ctx context.Context, path string, body, result interface{}) error {
	return c.request(ctx, http.MethodPost, path, body, result)
}

func (c *SpaceTradersClient) patch(ctx context.Context, path string, body, result interface{}) error {
	return c.request(ctx, http.MethodPatch, path, body, result)
}

// request performs one logical call. Game errors come back as *shared.APIError.
func (c *SpaceTradersClient) request(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path
	endpoint := endpointLabel(path)
	logger := common.LoggerFromContext(ctx)

	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = data
	}

	failures := 0
	for {
		waitStart := time.Now()
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}
		metrics.RecordRateLimitWait(method, endpoint, time.Since(waitStart).Seconds())

		var respBody []byte
		err := c.breaker.Call(func() error {
			var callErr error
			respBody, callErr = c.do(ctx, method, url, endpoint, payload)
			return callErr
		})

		if err == nil {
			if result == nil {
				return nil
			}
			if err := json.Unmarshal(respBody, result); err != nil {
				return fmt.Errorf("failed to unmarshal response: %w", err)
			}
			return nil
		}

		if errors.Is(err, ErrCircuitOpen) {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}
		if ctx.Err() != nil {
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		}

		apiErr, isAPIErr := shared.AsAPIError(err)
		switch {
		case isAPIErr && apiErr.IsRateLimited():
			wait, ok := apiErr.RetryAfter()
			if !ok || wait <= 0 {
				wait = c.backoffBase
			}
			metrics.RecordAPIRetry(method, endpoint, "rate_limited")
			logger.Log("DEBUG", "Rate limited, waiting before retry", map[string]interface{}{
				"endpoint": endpoint,
				"wait":     wait.String(),
			})
			if err := c.clock.Sleep(ctx, wait); err != nil {
				return fmt.Errorf("context cancelled: %w", err)
			}

		case isAPIErr && apiErr.StatusCode < 500:
			return apiErr

		default:
			failures++
			if failures > c.maxRetries {
				return fmt.Errorf("max retries exceeded: %w", err)
			}
			metrics.RecordAPIRetry(method, endpoint, "transport")
			logger.Log("WARNING", "Transport failure, retrying", map[string]interface{}{
				"endpoint": endpoint,
				"attempt":  failures,
				"error":    err.Error(),
			})
			if err := c.clock.Sleep(ctx, c.backoffBase); err != nil {
				return fmt.Errorf("context cancelled: %w", err)
			}
		}
	}
}

// do issues a single HTTP round trip and returns the raw 2xx body
func (c *SpaceTradersClient) do(ctx context.Context, method, url, endpoint string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	metrics.RecordAPIRequest(method, endpoint, resp.StatusCode, time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return respBody, nil
	}
	return nil, parseAPIError(resp.StatusCode, resp.Header, respBody)
}

// parseAPIError turns a non-2xx response into an *shared.APIError.
// Bodies that are not an error envelope keep the raw text as the message.
func parseAPIError(status int, header http.Header, body []byte) *shared.APIError {
	apiErr := &shared.APIError{StatusCode: status, Code: status}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && (env.Error.Code != 0 || env.Error.Message != "") {
		apiErr.Message = env.Error.Message
		if env.Error.Code != 0 {
			apiErr.Code = env.Error.Code
		}
		apiErr.Data = env.Error.Data
	} else {
		apiErr.Message = strings.TrimSpace(string(body))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
	}

	if apiErr.Data == nil {
		apiErr.Data = map[string]interface{}{}
	}
	if _, ok := apiErr.RetryAfter(); !ok && status == http.StatusTooManyRequests {
		if seconds, err := strconv.ParseFloat(header.Get("Retry-After"), 64); err == nil {
			apiErr.Data["retryAfter"] = seconds
		}
	}
	return apiErr
}

// endpointLabel collapses symbols out of a path so metric labels stay bounded
func endpointLabel(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segments {
		if !knownSegments[seg] {
			segments[i] = ":symbol"
		}
	}
	return "/" + strings.Join(segments, "/")
}

var knownSegments = map[string]bool{
	"my": true, "ships": true, "agent": true, "contracts": true, "systems": true,
	"waypoints": true, "market": true, "jump-gate": true, "orbit": true, "dock": true,
	"navigate": true, "nav": true, "refuel": true, "jump": true, "extract": true,
	"survey": true, "sell": true, "chart": true, "cargo": true, "accept": true,
	"deliver": true, "fulfill": true,
}
