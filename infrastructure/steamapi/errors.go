package steamapi

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for the failure outcome taxonomy. Every error returned
// by the client matches exactly one of these via errors.Is.
var (
	// ErrInvalidConfig indicates the client configuration is unusable.
	ErrInvalidConfig = errors.New("invalid steam client configuration")

	// ErrTransport indicates the request never produced an HTTP response
	// (DNS, connect, TLS, timeout) or its body could not be read. Retryable.
	ErrTransport = errors.New("steam api transport failure")

	// ErrRateLimited indicates the upstream rejected the request with
	// HTTP 429. Retryable.
	ErrRateLimited = errors.New("steam api rate limited")

	// ErrAuthOrVisibility indicates HTTP 401 or 403. Never retried.
	ErrAuthOrVisibility = errors.New("steam api authorization failure")

	// ErrMalformed indicates a 2xx response whose body is not valid JSON,
	// HTML error pages included. Never retried.
	ErrMalformed = errors.New("steam api returned a malformed response")

	// ErrServer indicates HTTP 5xx. Retryable.
	ErrServer = errors.New("steam api server error")

	// ErrAPI indicates any other non-success status, e.g. 400 or 404.
	// Never retried.
	ErrAPI = errors.New("steam api rejected the request")
)

// TransportError reports a failure below the HTTP layer. URL carries the
// endpoint path only, never query parameters.
type TransportError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

// Unwrap supports errors.Is against ErrTransport.
func (e *TransportError) Unwrap() error {
	return ErrTransport
}

// RateLimitError reports an upstream HTTP 429. RetryAfter is zero when
// the Retry-After header was absent or unparseable.
type RateLimitError struct {
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited by steam api (http 429), retry after %s", e.RetryAfter)
	}
	return "rate limited by steam api (http 429)"
}

// Unwrap supports errors.Is against ErrRateLimited.
func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

// AuthError reports HTTP 401 or 403. The two read differently: 401 means
// the api key is invalid or missing, 403 means the key is fine but the
// target data is private or out of scope.
type AuthError struct {
	StatusCode int
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.StatusCode == 401 {
		return "steam api key rejected (http 401): check STEAM_API_KEY"
	}
	return fmt.Sprintf("steam api access forbidden (http %d): the profile or data may be private", e.StatusCode)
}

// Unwrap supports errors.Is against ErrAuthOrVisibility.
func (e *AuthError) Unwrap() error {
	return ErrAuthOrVisibility
}

// MalformedResponseError reports a 2xx response that did not contain
// JSON. Steam serves HTML error pages with success statuses under load.
type MalformedResponseError struct {
	ContentType string
	Snippet     string
}

// Error implements the error interface.
func (e *MalformedResponseError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("steam api returned a non-JSON response (content-type %q)", e.ContentType)
	}
	return fmt.Sprintf("steam api returned a non-JSON response (content-type %q): %s", e.ContentType, e.Snippet)
}

// Unwrap supports errors.Is against ErrMalformed.
func (e *MalformedResponseError) Unwrap() error {
	return ErrMalformed
}

// ServerError reports an upstream HTTP 5xx.
type ServerError struct {
	StatusCode int
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	return fmt.Sprintf("steam api server error (http %d)", e.StatusCode)
}

// Unwrap supports errors.Is against ErrServer.
func (e *ServerError) Unwrap() error {
	return ErrServer
}

// APIError reports a non-success status outside the dedicated categories.
type APIError struct {
	StatusCode int
	Snippet    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Snippet == "" {
		return fmt.Sprintf("steam api rejected the request (http %d)", e.StatusCode)
	}
	return fmt.Sprintf("steam api rejected the request (http %d): %s", e.StatusCode, e.Snippet)
}

// Unwrap supports errors.Is against ErrAPI.
func (e *APIError) Unwrap() error {
	return ErrAPI
}
