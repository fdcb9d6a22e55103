package embeddings

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const embeddingsInstrumentationName = "github.com/fyrsmithlabs/ragd/internal/embeddings"

// Metrics holds embedding call metrics. Instrument creation failures degrade
// to unrecorded metrics, never to a failed call.
type Metrics struct {
	meter     metric.Meter
	logger    *zap.Logger
	duration  metric.Float64Histogram
	batchSize metric.Int64Histogram
	errors    metric.Int64Counter
}

// NewMetrics creates embedding metrics on the global meter provider.
func NewMetrics(logger *zap.Logger) *Metrics {
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Metrics{
		meter:  otel.Meter(embeddingsInstrumentationName),
		logger: logger,
	}
	m.init()
	return m
}

func (m *Metrics) init() {
	var err error

	m.duration, err = m.meter.Float64Histogram(
		"ragd.embedding.generation_duration_seconds",
		metric.WithDescription("Duration of embedding API calls in seconds, labeled by model and operation"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		m.logger.Warn("failed to create duration histogram", zap.Error(err))
	}

	m.batchSize, err = m.meter.Int64Histogram(
		"ragd.embedding.batch_size",
		metric.WithDescription("Number of texts per embedding batch request"),
		metric.WithUnit("{text}"),
		metric.WithExplicitBucketBoundaries(1, 2, 5, 10, 25, 50, 100, 250, 500),
	)
	if err != nil {
		m.logger.Warn("failed to create batch size histogram", zap.Error(err))
	}

	m.errors, err = m.meter.Int64Counter(
		"ragd.embedding.errors_total",
		metric.WithDescription("Total embedding API call failures by model and operation"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		m.logger.Warn("failed to create errors counter", zap.Error(err))
	}
}

// RecordGeneration records one embedding call.
func (m *Metrics) RecordGeneration(ctx context.Context, model, operation string, duration time.Duration, batchSize int, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("model", model),
		attribute.String("operation", operation),
	}

	if m.duration != nil {
		m.duration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	}
	if batchSize > 0 && m.batchSize != nil {
		m.batchSize.Record(ctx, int64(batchSize), metric.WithAttributes(attrs...))
	}
	if err != nil && m.errors != nil {
		m.errors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
