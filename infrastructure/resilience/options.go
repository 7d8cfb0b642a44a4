package resilience

import (
	"time"

	"github.com/felixgeelhaar/steam-mcp/infrastructure/telemetry"
)

// Option configures the invoker.
type Option func(*InvokerConfig)

// WithMaxConcurrent sets the maximum concurrent invocations.
func WithMaxConcurrent(n int) Option {
	return func(c *InvokerConfig) {
		c.MaxConcurrent = n
	}
}

// WithInvocationTimeout sets the per-invocation deadline.
func WithInvocationTimeout(d time.Duration) Option {
	return func(c *InvokerConfig) {
		c.InvocationTimeout = d
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m telemetry.Metrics) Option {
	return func(c *InvokerConfig) {
		c.Metrics = m
	}
}

// NewInvokerWithOptions creates an invoker with the given options applied
// over the defaults.
func NewInvokerWithOptions(opts ...Option) *Invoker {
	config := DefaultInvokerConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return NewInvoker(config)
}
