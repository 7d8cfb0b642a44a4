// Package steamapi provides a rate-limited, retrying HTTP client for the
// Steam Web API and the storefront API.
//
// One Client owns one token bucket shared by every request made through
// it, so all tools of a server draw from the same upstream allowance.
// Failures map onto a small taxonomy of sentinel errors (see errors.go);
// retryable categories feed exponential backoff, permanent ones abort
// after a single attempt.
package steamapi

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"github.com/felixgeelhaar/steam-mcp/domain/cache"
	"github.com/felixgeelhaar/steam-mcp/infrastructure/logging"
	"github.com/felixgeelhaar/steam-mcp/infrastructure/telemetry"
)

// Default endpoints and tuning values.
const (
	DefaultBaseURL      = "https://api.steampowered.com"
	DefaultStoreBaseURL = "https://store.steampowered.com/api"

	DefaultRequestsPerSecond = 10.0
	DefaultMaxAttempts       = 3
	DefaultInitialBackoff    = 1 * time.Second
	DefaultBackoffMultiplier = 2.0
	DefaultMaxBackoff        = 30 * time.Second
	DefaultTimeout           = 30 * time.Second
)

// Config configures the Steam API client.
type Config struct {
	// APIKey is the Steam Web API key. Required.
	APIKey string
	// BaseURL overrides the Web API endpoint (for tests).
	BaseURL string
	// StoreBaseURL overrides the storefront API endpoint (for tests).
	StoreBaseURL string
	// RequestsPerSecond is the sustained request rate of the shared bucket.
	RequestsPerSecond float64
	// Burst is the bucket capacity. Zero derives ceil(rate), minimum 1.
	Burst int
	// MaxAttempts is the total number of HTTP attempts per request,
	// the first try included.
	MaxAttempts int
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration
	// BackoffMultiplier grows the delay between consecutive retries.
	BackoffMultiplier float64
	// RetryJitter randomizes retry delays, range [0, 1). Zero keeps the
	// schedule deterministic.
	RetryJitter float64
	// MaxBackoff caps the delay between retries.
	MaxBackoff time.Duration
	// Timeout bounds a single HTTP attempt.
	Timeout time.Duration
	// HTTPClient overrides the HTTP client. Nil builds one from Timeout.
	HTTPClient *http.Client
	// Cache stores successful GET responses. Nil disables caching.
	Cache cache.Cache
	// Metrics records client metrics. Nil disables recording.
	Metrics telemetry.Metrics
}

// Client is a rate-limited, retrying Steam Web API client. All requests
// issued through one client pay the same token bucket, retries included.
type Client struct {
	apiKey       string
	baseURL      string
	storeBaseURL string
	httpClient   *http.Client
	limiter      *rate.Limiter

	maxAttempts    int
	initialBackoff time.Duration
	multiplier     float64
	jitter         float64
	maxBackoff     time.Duration

	cache   cache.Cache
	metrics telemetry.Metrics
}

// New creates a client from the configuration, applying defaults for
// zero values and validating the rest.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: api key is required", ErrInvalidConfig)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.StoreBaseURL == "" {
		cfg.StoreBaseURL = DefaultStoreBaseURL
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.RequestsPerSecond < 0 {
		return nil, fmt.Errorf("%w: requests per second must be positive", ErrInvalidConfig)
	}
	if cfg.Burst == 0 {
		cfg.Burst = int(math.Ceil(cfg.RequestsPerSecond))
		if cfg.Burst < 1 {
			cfg.Burst = 1
		}
	}
	if cfg.Burst < 1 {
		return nil, fmt.Errorf("%w: burst must be at least 1", ErrInvalidConfig)
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.MaxAttempts < 1 {
		return nil, fmt.Errorf("%w: at least one attempt is required", ErrInvalidConfig)
	}
	if cfg.RetryJitter < 0 || cfg.RetryJitter >= 1 {
		return nil, fmt.Errorf("%w: retry jitter must be in [0, 1)", ErrInvalidConfig)
	}
	if cfg.InitialBackoff == 0 {
		cfg.InitialBackoff = DefaultInitialBackoff
	}
	if cfg.BackoffMultiplier == 0 {
		cfg.BackoffMultiplier = DefaultBackoffMultiplier
	}
	if cfg.MaxBackoff == 0 {
		cfg.MaxBackoff = DefaultMaxBackoff
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = &telemetry.NoopMetricsProvider{}
	}

	return &Client{
		apiKey:         cfg.APIKey,
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		storeBaseURL:   strings.TrimRight(cfg.StoreBaseURL, "/"),
		httpClient:     httpClient,
		limiter:        rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
		multiplier:     cfg.BackoffMultiplier,
		jitter:         cfg.RetryJitter,
		maxBackoff:     cfg.MaxBackoff,
		cache:          cfg.Cache,
		metrics:        metrics,
	}, nil
}

// Request describes one Steam Web API call.
type Request struct {
	// Interface is the API interface, e.g. "ISteamUser".
	Interface string
	// Method is the API method, e.g. "GetPlayerSummaries".
	Method string
	// Version is the method version, rendered as "v1".
	Version int
	// Params are the call parameters, credential excluded.
	Params url.Values
	// RequiresAuth injects the api key into the request.
	RequiresAuth bool
	// HTTPMethod defaults to GET. POST sends Params as a form body.
	HTTPMethod string
	// CacheTTL enables response caching for this call when positive.
	// Only GET responses are ever cached.
	CacheTTL time.Duration
}

// execution is a fully prepared call: endpoint, final parameters, and
// the labels used for logging, metrics, and cache keying.
type execution struct {
	endpoint   string
	params     url.Values
	httpMethod string
	iface      string
	method     string
	cacheKey   string
	cacheTTL   time.Duration
}

// Do issues a Steam Web API request through the shared bucket with
// retries, returning the raw JSON body. It never returns a body
// alongside an error.
func (c *Client) Do(ctx context.Context, req Request) (json.RawMessage, error) {
	httpMethod := req.HTTPMethod
	if httpMethod == "" {
		httpMethod = http.MethodGet
	}

	// The cache key covers the request identity before the credential
	// and format parameters are injected.
	params := cloneValues(req.Params)
	cacheKey := hashKey(fmt.Sprintf("%s/%s/v%d?%s", req.Interface, req.Method, req.Version, params.Encode()))

	params.Set("format", "json")
	if req.RequiresAuth {
		params.Set("key", c.apiKey)
	}

	return c.execute(ctx, execution{
		endpoint:   fmt.Sprintf("%s/%s/%s/v%d/", c.baseURL, req.Interface, req.Method, req.Version),
		params:     params,
		httpMethod: httpMethod,
		iface:      req.Interface,
		method:     req.Method,
		cacheKey:   cacheKey,
		cacheTTL:   req.CacheTTL,
	})
}

// Get is authenticated GET sugar over Do, uncached.
func (c *Client) Get(ctx context.Context, iface, method string, version int, params url.Values) (json.RawMessage, error) {
	return c.Do(ctx, Request{
		Interface:    iface,
		Method:       method,
		Version:      version,
		Params:       params,
		RequiresAuth: true,
	})
}

// Post is authenticated POST sugar over Do. POST responses are never
// cached.
func (c *Client) Post(ctx context.Context, iface, method string, version int, form url.Values) (json.RawMessage, error) {
	return c.Do(ctx, Request{
		Interface:    iface,
		Method:       method,
		Version:      version,
		Params:       form,
		RequiresAuth: true,
		HTTPMethod:   http.MethodPost,
	})
}

// StoreGet issues a GET against the storefront API, which takes no
// credential. The call shares the bucket, retry schedule, and failure
// taxonomy with Web API requests.
func (c *Client) StoreGet(ctx context.Context, endpoint string, params url.Values, ttl time.Duration) (json.RawMessage, error) {
	params = cloneValues(params)

	return c.execute(ctx, execution{
		endpoint:   fmt.Sprintf("%s/%s/", c.storeBaseURL, endpoint),
		params:     params,
		httpMethod: http.MethodGet,
		iface:      "storefront",
		method:     endpoint,
		cacheKey:   hashKey(fmt.Sprintf("store/%s?%s", endpoint, params.Encode())),
		cacheTTL:   ttl,
	})
}

// Tokens reports the current token estimate of the shared bucket.
func (c *Client) Tokens() float64 {
	return c.limiter.Tokens()
}

func (c *Client) execute(ctx context.Context, exec execution) (json.RawMessage, error) {
	cacheable := c.cache != nil && exec.cacheTTL > 0 && exec.httpMethod == http.MethodGet

	if cacheable {
		if body, ok, err := c.cache.Get(ctx, exec.cacheKey); err == nil && ok {
			c.metrics.RecordCacheHit(ctx, exec.iface, exec.method)
			logging.Trace().
				Add(logging.SteamInterface(exec.iface)).
				Add(logging.SteamMethod(exec.method)).
				Add(logging.Cached(true)).
				Msg("steam api response served from cache")
			return body, nil
		}
		c.metrics.RecordCacheMiss(ctx, exec.iface, exec.method)
	}

	start := time.Now()
	attempt := 0

	op := func() (json.RawMessage, error) {
		attempt++
		body, err := c.attempt(ctx, exec)
		c.metrics.RecordAPIAttempt(ctx, outcomeLabel(err))
		return body, err
	}

	expo := &backoff.ExponentialBackOff{
		InitialInterval:     c.initialBackoff,
		RandomizationFactor: c.jitter,
		Multiplier:          c.multiplier,
		MaxInterval:         c.maxBackoff,
	}

	notify := func(err error, next time.Duration) {
		logging.Warn().
			Add(logging.SteamInterface(exec.iface)).
			Add(logging.SteamMethod(exec.method)).
			Add(logging.Attempt(attempt)).
			Add(logging.RetryIn(next)).
			Add(logging.ErrorField(err)).
			Msg("steam api attempt failed, retrying")
	}

	body, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(uint(c.maxAttempts)),
		backoff.WithNotify(notify),
	)
	duration := time.Since(start)

	if err != nil {
		err = unwrapPermanent(err)
		c.metrics.RecordAPIRequest(ctx, exec.iface, exec.method, outcomeLabel(err), duration)
		logging.Error().
			Add(logging.SteamInterface(exec.iface)).
			Add(logging.SteamMethod(exec.method)).
			Add(logging.Attempt(attempt)).
			Add(logging.Duration(duration)).
			Add(logging.ErrorField(err)).
			Msg("steam api request failed")
		return nil, err
	}

	c.metrics.RecordAPIRequest(ctx, exec.iface, exec.method, "success", duration)
	logging.Debug().
		Add(logging.SteamInterface(exec.iface)).
		Add(logging.SteamMethod(exec.method)).
		Add(logging.Attempt(attempt)).
		Add(logging.Duration(duration)).
		Msg("steam api request completed")

	if cacheable {
		if err := c.cache.Set(ctx, exec.cacheKey, body, cache.SetOptions{TTL: exec.cacheTTL}); err != nil {
			logging.Debug().
				Add(logging.SteamInterface(exec.iface)).
				Add(logging.SteamMethod(exec.method)).
				Add(logging.ErrorField(err)).
				Msg("steam api response not cached")
		}
	}

	return body, nil
}

// attempt performs a single HTTP round trip: bucket wait, request,
// classification. Permanent failures come back wrapped so the retry
// loop aborts immediately.
func (c *Client) attempt(ctx context.Context, exec execution) (json.RawMessage, error) {
	waitStart := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		// A cancelled wait returns its reservation to the bucket.
		return nil, backoff.Permanent(err)
	}
	c.metrics.RecordRateLimitWait(ctx, time.Since(waitStart))

	httpReq, err := c.buildHTTPRequest(ctx, exec)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, backoff.Permanent(ctxErr)
		}
		return nil, &TransportError{URL: exec.endpoint, Err: rootCause(err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: exec.endpoint, Err: err}
	}

	return c.classify(resp, body)
}

func (c *Client) buildHTTPRequest(ctx context.Context, exec execution) (*http.Request, error) {
	if exec.httpMethod == http.MethodPost {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, exec.endpoint, strings.NewReader(exec.params.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Accept", "application/json")
		return req, nil
	}

	target := exec.endpoint
	if encoded := exec.params.Encode(); encoded != "" {
		target += "?" + encoded
	}
	req, err := http.NewRequestWithContext(ctx, exec.httpMethod, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// classify maps an HTTP response onto the failure taxonomy. A 2xx body
// is sniffed: Steam serves HTML error pages with success statuses, so
// status alone is not trusted.
func (c *Client) classify(resp *http.Response, body []byte) (json.RawMessage, error) {
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, backoff.Permanent(&AuthError{StatusCode: resp.StatusCode})
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RateLimitError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	case resp.StatusCode >= 500:
		return nil, &ServerError{StatusCode: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, backoff.Permanent(&APIError{StatusCode: resp.StatusCode, Snippet: c.snippet(body)})
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "text/html") || !json.Valid(body) {
		return nil, backoff.Permanent(&MalformedResponseError{ContentType: contentType, Snippet: c.snippet(body)})
	}

	return body, nil
}

const snippetLimit = 200

// snippet trims a response body for error messages, scrubbing the
// credential in case the upstream echoed the request URL.
func (c *Client) snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > snippetLimit {
		s = s[:snippetLimit] + "..."
	}
	return strings.ReplaceAll(s, c.apiKey, "[redacted]")
}

// rootCause strips the URL-bearing wrapper from HTTP client errors so
// the credential never reaches error text.
func rootCause(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

func unwrapPermanent(err error) error {
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return permanent.Unwrap()
	}
	return err
}

// outcomeLabel names the taxonomy category of an error for metrics.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrAuthOrVisibility):
		return "auth"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	case errors.Is(err, ErrServer):
		return "server_error"
	case errors.Is(err, ErrAPI):
		return "api_error"
	case errors.Is(err, ErrTransport):
		return "transport_error"
	default:
		return "error"
	}
}

func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

func cloneValues(values url.Values) url.Values {
	cloned := make(url.Values, len(values))
	for key, vals := range values {
		cloned[key] = append([]string(nil), vals...)
	}
	return cloned
}

func hashKey(identity string) string {
	sum := sha256.Sum256([]byte(identity))
	return "steam:" + hex.EncodeToString(sum[:])
}
