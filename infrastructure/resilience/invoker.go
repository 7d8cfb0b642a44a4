// Package resilience guards tool invocations with concurrency and time
// limits using fortify.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/steam-mcp/infrastructure/logging"
	"github.com/felixgeelhaar/steam-mcp/infrastructure/telemetry"
)

// ErrBusy indicates every execution slot stayed occupied for the full
// invocation window and the call was never admitted.
var ErrBusy = errors.New("server is at capacity")

// Invoker bounds concurrent tool executions with a bulkhead and applies a
// per-invocation deadline. The deadline covers the wait for an execution
// slot as well as the execution itself, so a saturated server sheds load
// instead of queueing without bound.
type Invoker struct {
	bulkhead bulkhead.Bulkhead[string]
	timeout  time.Duration
	metrics  telemetry.Metrics
}

// InvokerConfig configures the invocation guard.
type InvokerConfig struct {
	// MaxConcurrent limits how many tool invocations may execute at once.
	MaxConcurrent int

	// InvocationTimeout bounds a single invocation, slot wait included.
	InvocationTimeout time.Duration

	// Metrics receives invocation counts and durations.
	Metrics telemetry.Metrics
}

// DefaultInvokerConfig returns a configuration with sensible defaults.
func DefaultInvokerConfig() InvokerConfig {
	return InvokerConfig{
		MaxConcurrent:     8,
		InvocationTimeout: 120 * time.Second,
	}
}

// NewInvoker creates a new invocation guard. Non-positive limits fall back
// to the defaults.
func NewInvoker(config InvokerConfig) *Invoker {
	maxConcurrent := config.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = DefaultInvokerConfig().MaxConcurrent
	}
	timeout := config.InvocationTimeout
	if timeout <= 0 {
		timeout = DefaultInvokerConfig().InvocationTimeout
	}
	metrics := config.Metrics
	if metrics == nil {
		metrics = &telemetry.NoopMetricsProvider{}
	}

	return &Invoker{
		bulkhead: bulkhead.New[string](bulkhead.Config{
			MaxConcurrent: maxConcurrent,
		}),
		timeout: timeout,
		metrics: metrics,
	}
}

// NewDefaultInvoker creates an invoker with default configuration.
func NewDefaultInvoker() *Invoker {
	return NewInvoker(DefaultInvokerConfig())
}

// Invoke runs fn under the concurrency and deadline guards and reports the
// outcome to logs and metrics. Handler errors pass through unchanged so
// callers can branch on the upstream failure taxonomy; a call that never
// reached its handler surfaces as ErrBusy.
func (inv *Invoker) Invoke(ctx context.Context, toolName string, fn func(context.Context) (string, error)) (string, error) {
	id := uuid.New().String()
	start := time.Now()

	logging.Debug().
		Add(logging.InvocationID(id)).
		Add(logging.ToolName(toolName)).
		Msg("tool invocation started")

	invCtx, cancel := context.WithTimeout(ctx, inv.timeout)
	defer cancel()

	// started distinguishes a handler failure from a bulkhead rejection:
	// only admitted calls ever set it.
	var started atomic.Bool
	output, err := inv.bulkhead.Execute(invCtx, func(ctx context.Context) (string, error) {
		started.Store(true)
		inv.metrics.IncrementInFlight(ctx)
		defer inv.metrics.DecrementInFlight(ctx)
		return fn(ctx)
	})

	if err != nil && !started.Load() && !errors.Is(err, context.Canceled) {
		err = fmt.Errorf("%w: %v", ErrBusy, err)
	}

	duration := time.Since(start)
	inv.metrics.RecordToolInvocation(ctx, toolName, err == nil, duration)

	if err != nil {
		logging.Warn().
			Add(logging.InvocationID(id)).
			Add(logging.ToolName(toolName)).
			Add(logging.Duration(duration)).
			Add(logging.ErrorField(err)).
			Msg("tool invocation failed")
		return "", err
	}

	logging.Info().
		Add(logging.InvocationID(id)).
		Add(logging.ToolName(toolName)).
		Add(logging.Duration(duration)).
		Msg("tool invocation completed")
	return output, nil
}

// Timeout returns the per-invocation deadline.
func (inv *Invoker) Timeout() time.Duration {
	return inv.timeout
}
