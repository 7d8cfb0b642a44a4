// Package telemetry provides observability infrastructure including
// OpenTelemetry metrics for the steam-mcp server.
package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsProvider provides access to metrics instruments.
type MetricsProvider struct {
	meter metric.Meter

	// Counters
	apiRequests     metric.Int64Counter
	apiAttempts     metric.Int64Counter
	cacheHits       metric.Int64Counter
	cacheMisses     metric.Int64Counter
	toolInvocations metric.Int64Counter

	// Histograms
	apiRequestDuration metric.Float64Histogram
	rateLimitWait      metric.Float64Histogram
	toolDuration       metric.Float64Histogram

	// Gauges (using UpDownCounter for OpenTelemetry)
	invocationsInFlight metric.Int64UpDownCounter

	initOnce sync.Once
	initErr  error
}

// MetricsConfig configures the metrics provider.
type MetricsConfig struct {
	// MeterName is the name of the meter (default: "github.com/felixgeelhaar/steam-mcp").
	MeterName string
	// MeterVersion is the version of the meter.
	MeterVersion string
	// Attributes are default attributes to attach to all metrics.
	Attributes []attribute.KeyValue
}

// DefaultMetricsConfig returns a default metrics configuration.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		MeterName:    "github.com/felixgeelhaar/steam-mcp",
		MeterVersion: "1.0.0",
	}
}

// NewMetricsProvider creates a new metrics provider.
func NewMetricsProvider(config MetricsConfig) *MetricsProvider {
	if config.MeterName == "" {
		config = DefaultMetricsConfig()
	}

	provider := otel.GetMeterProvider()
	meter := provider.Meter(
		config.MeterName,
		metric.WithInstrumentationVersion(config.MeterVersion),
	)

	mp := &MetricsProvider{
		meter: meter,
	}

	mp.initOnce.Do(func() {
		mp.initErr = mp.initInstruments()
	})

	return mp
}

// initInstruments initializes all metric instruments.
func (mp *MetricsProvider) initInstruments() error {
	var err error

	// Counters
	mp.apiRequests, err = mp.meter.Int64Counter(
		"steam.api.requests",
		metric.WithDescription("Number of Steam API requests by final outcome"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return err
	}

	mp.apiAttempts, err = mp.meter.Int64Counter(
		"steam.api.attempts",
		metric.WithDescription("Number of HTTP attempts including retries"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return err
	}

	mp.cacheHits, err = mp.meter.Int64Counter(
		"steam.cache.hits",
		metric.WithDescription("Number of response cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return err
	}

	mp.cacheMisses, err = mp.meter.Int64Counter(
		"steam.cache.misses",
		metric.WithDescription("Number of response cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return err
	}

	mp.toolInvocations, err = mp.meter.Int64Counter(
		"steam.tool.invocations",
		metric.WithDescription("Number of tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return err
	}

	// Histograms
	mp.apiRequestDuration, err = mp.meter.Float64Histogram(
		"steam.api.request.duration",
		metric.WithDescription("Duration of Steam API requests"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	mp.rateLimitWait, err = mp.meter.Float64Histogram(
		"steam.api.ratelimit.wait",
		metric.WithDescription("Time spent waiting for rate limit tokens"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	mp.toolDuration, err = mp.meter.Float64Histogram(
		"steam.tool.duration",
		metric.WithDescription("Duration of tool invocations"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	// Gauges (UpDownCounters)
	mp.invocationsInFlight, err = mp.meter.Int64UpDownCounter(
		"steam.tool.inflight",
		metric.WithDescription("Number of tool invocations in flight"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Error returns any initialization error.
func (mp *MetricsProvider) Error() error {
	return mp.initErr
}

// RecordAPIRequest records a completed Steam API request with its final
// outcome (success, transport_error, rate_limited, auth, malformed,
// server_error, api_error).
func (mp *MetricsProvider) RecordAPIRequest(ctx context.Context, iface, method, outcome string, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("api.interface", iface),
		attribute.String("api.method", method),
		attribute.String("outcome", outcome),
	}

	mp.apiRequests.Add(ctx, 1, metric.WithAttributes(attrs...))
	mp.apiRequestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(
		attribute.String("api.interface", iface),
		attribute.String("api.method", method),
	))
}

// RecordAPIAttempt records a single HTTP attempt.
func (mp *MetricsProvider) RecordAPIAttempt(ctx context.Context, outcome string) {
	mp.apiAttempts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}

// RecordRateLimitWait records time spent waiting for a bucket token.
func (mp *MetricsProvider) RecordRateLimitWait(ctx context.Context, wait time.Duration) {
	mp.rateLimitWait.Record(ctx, float64(wait.Milliseconds()))
}

// RecordCacheHit records a response cache hit.
func (mp *MetricsProvider) RecordCacheHit(ctx context.Context, iface, method string) {
	mp.cacheHits.Add(ctx, 1, metric.WithAttributes(
		attribute.String("api.interface", iface),
		attribute.String("api.method", method),
	))
}

// RecordCacheMiss records a response cache miss.
func (mp *MetricsProvider) RecordCacheMiss(ctx context.Context, iface, method string) {
	mp.cacheMisses.Add(ctx, 1, metric.WithAttributes(
		attribute.String("api.interface", iface),
		attribute.String("api.method", method),
	))
}

// RecordToolInvocation records a tool invocation.
func (mp *MetricsProvider) RecordToolInvocation(ctx context.Context, toolName string, success bool, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("tool.name", toolName),
		attribute.Bool("success", success),
	}

	mp.toolInvocations.Add(ctx, 1, metric.WithAttributes(attrs...))
	mp.toolDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(
		attribute.String("tool.name", toolName),
	))
}

// IncrementInFlight increments the in-flight invocation gauge.
func (mp *MetricsProvider) IncrementInFlight(ctx context.Context) {
	mp.invocationsInFlight.Add(ctx, 1)
}

// DecrementInFlight decrements the in-flight invocation gauge.
func (mp *MetricsProvider) DecrementInFlight(ctx context.Context) {
	mp.invocationsInFlight.Add(ctx, -1)
}

// NoopMetricsProvider is a no-op metrics provider for testing or when
// metrics are disabled.
type NoopMetricsProvider struct{}

// RecordAPIRequest is a no-op.
func (n *NoopMetricsProvider) RecordAPIRequest(ctx context.Context, iface, method, outcome string, duration time.Duration) {
}

// RecordAPIAttempt is a no-op.
func (n *NoopMetricsProvider) RecordAPIAttempt(ctx context.Context, outcome string) {}

// RecordRateLimitWait is a no-op.
func (n *NoopMetricsProvider) RecordRateLimitWait(ctx context.Context, wait time.Duration) {}

// RecordCacheHit is a no-op.
func (n *NoopMetricsProvider) RecordCacheHit(ctx context.Context, iface, method string) {}

// RecordCacheMiss is a no-op.
func (n *NoopMetricsProvider) RecordCacheMiss(ctx context.Context, iface, method string) {}

// RecordToolInvocation is a no-op.
func (n *NoopMetricsProvider) RecordToolInvocation(ctx context.Context, toolName string, success bool, duration time.Duration) {
}

// IncrementInFlight is a no-op.
func (n *NoopMetricsProvider) IncrementInFlight(ctx context.Context) {}

// DecrementInFlight is a no-op.
func (n *NoopMetricsProvider) DecrementInFlight(ctx context.Context) {}

// Metrics defines the interface for metrics recording.
type Metrics interface {
	RecordAPIRequest(ctx context.Context, iface, method, outcome string, duration time.Duration)
	RecordAPIAttempt(ctx context.Context, outcome string)
	RecordRateLimitWait(ctx context.Context, wait time.Duration)
	RecordCacheHit(ctx context.Context, iface, method string)
	RecordCacheMiss(ctx context.Context, iface, method string)
	RecordToolInvocation(ctx context.Context, toolName string, success bool, duration time.Duration)
	IncrementInFlight(ctx context.Context)
	DecrementInFlight(ctx context.Context)
}

// Ensure implementations satisfy the interface.
var (
	_ Metrics = (*MetricsProvider)(nil)
	_ Metrics = (*NoopMetricsProvider)(nil)
)
