// Package observe provides application-wide observability primitives for
// lingaserve: OpenTelemetry metrics, distributed tracing, structured logging,
// and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. [InitProvider]
// installs a Prometheus exporter bridge registered with the default Prometheus
// registerer; the gateway serves no /metrics endpoint for it. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all lingaserve metrics.
const meterName = "github.com/lingaserve/lingaserve"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms per pipeline stage ---

	// TranslateDuration tracks end-to-end /api/translate request latency.
	TranslateDuration metric.Float64Histogram

	// InferenceDuration tracks a single inference-adapter batch call latency.
	InferenceDuration metric.Float64Histogram

	// LangIDDuration tracks language-identification latency.
	LangIDDuration metric.Float64Histogram

	// ModelLoadDuration tracks the time to load a model artifact into a runner.
	ModelLoadDuration metric.Float64Histogram

	// --- Counters ---

	// TranslateRequests counts translate requests. Use with attributes:
	//   attribute.String("status", ...)
	TranslateRequests metric.Int64Counter

	// CacheHits counts per-model translation-cache hits/misses. Use with
	// attribute.String("result", "hit"|"miss").
	CacheHits metric.Int64Counter

	// ModelEvictions counts LRU evictions performed by the model manager.
	ModelEvictions metric.Int64Counter

	// BatchesRun counts inference batches executed by model runners. Use with
	// attribute.Int("batch_size", ...).
	BatchesRun metric.Int64Counter

	// --- Error counters ---

	// InferenceErrors counts inference adapter failures. Use with attributes:
	//   attribute.String("model_id", ...)
	InferenceErrors metric.Int64Counter

	// --- Gauges ---

	// LoadedModels tracks the number of currently loaded model runners.
	LoadedModels metric.Int64UpDownCounter

	// QueueDepth tracks the number of jobs queued across all runners.
	QueueDepth metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) optimised
// for synchronous translation request/response latencies.
var latencyBuckets = []float64{
	0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	// Histograms.
	if met.TranslateDuration, err = m.Float64Histogram("lingaserve.translate.duration",
		metric.WithDescription("Latency of end-to-end translate requests."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.InferenceDuration, err = m.Float64Histogram("lingaserve.inference.duration",
		metric.WithDescription("Latency of a single inference-adapter batch call."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.LangIDDuration, err = m.Float64Histogram("lingaserve.langid.duration",
		metric.WithDescription("Latency of language identification."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.ModelLoadDuration, err = m.Float64Histogram("lingaserve.model_load.duration",
		metric.WithDescription("Latency of loading a model artifact into a runner."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}

	// Counters.
	if met.TranslateRequests, err = m.Int64Counter("lingaserve.translate.requests",
		metric.WithDescription("Total translate requests by status."),
	); err != nil {
		return nil, err
	}
	if met.CacheHits, err = m.Int64Counter("lingaserve.cache.lookups",
		metric.WithDescription("Total translation-cache lookups by result (hit/miss)."),
	); err != nil {
		return nil, err
	}
	if met.ModelEvictions, err = m.Int64Counter("lingaserve.model.evictions",
		metric.WithDescription("Total LRU model evictions performed by the model manager."),
	); err != nil {
		return nil, err
	}
	if met.BatchesRun, err = m.Int64Counter("lingaserve.runner.batches",
		metric.WithDescription("Total inference batches executed by model runners."),
	); err != nil {
		return nil, err
	}

	// Error counters.
	if met.InferenceErrors, err = m.Int64Counter("lingaserve.inference.errors",
		metric.WithDescription("Total inference adapter failures by model ID."),
	); err != nil {
		return nil, err
	}

	// Gauges (UpDownCounters).
	if met.LoadedModels, err = m.Int64UpDownCounter("lingaserve.models.loaded",
		metric.WithDescription("Number of currently loaded model runners."),
	); err != nil {
		return nil, err
	}
	if met.QueueDepth, err = m.Int64UpDownCounter("lingaserve.queue.depth",
		metric.WithDescription("Number of translate jobs queued across all runners."),
	); err != nil {
		return nil, err
	}

	// HTTP middleware histogram.
	if met.HTTPRequestDuration, err = m.Float64Histogram("lingaserve.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordCacheLookup is a convenience method that records a translation-cache
// lookup counter increment.
func (m *Metrics) RecordCacheLookup(ctx context.Context, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// RecordEviction is a convenience method that records an LRU eviction.
func (m *Metrics) RecordEviction(ctx context.Context, modelID string) {
	m.ModelEvictions.Add(ctx, 1, metric.WithAttributes(attribute.String("model_id", modelID)))
}

// RecordBatch is a convenience method that records a runner batch execution.
func (m *Metrics) RecordBatch(ctx context.Context, modelID string, size int) {
	m.BatchesRun.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("model_id", modelID),
			attribute.Int("batch_size", size),
		),
	)
}

// RecordInferenceError is a convenience method that records an inference
// adapter failure.
func (m *Metrics) RecordInferenceError(ctx context.Context, modelID string) {
	m.InferenceErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("model_id", modelID)))
}
