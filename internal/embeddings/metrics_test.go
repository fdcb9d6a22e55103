package embeddings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func TestMetricsRecordGeneration(t *testing.T) {
	reader := metric.NewManualReader()
	mp := metric.NewMeterProvider(metric.WithReader(reader))

	m := &Metrics{
		meter:  mp.Meter(embeddingsInstrumentationName),
		logger: zap.NewNop(),
	}
	m.init()

	ctx := context.Background()
	m.RecordGeneration(ctx, "text-embedding-ada-002", "batch_embed", 120*time.Millisecond, 5, nil)
	m.RecordGeneration(ctx, "text-embedding-ada-002", "embed", 40*time.Millisecond, 1, errors.New("rate limited"))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	var foundDuration, foundBatch, foundErrors bool
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			switch md.Name {
			case "ragd.embedding.generation_duration_seconds":
				foundDuration = true
				hist, ok := md.Data.(metricdata.Histogram[float64])
				require.True(t, ok)
				count := uint64(0)
				for _, dp := range hist.DataPoints {
					count += dp.Count
				}
				assert.Equal(t, uint64(2), count)
			case "ragd.embedding.batch_size":
				foundBatch = true
			case "ragd.embedding.errors_total":
				foundErrors = true
				sum, ok := md.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				total := int64(0)
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
				assert.Equal(t, int64(1), total)
			}
		}
	}

	assert.True(t, foundDuration, "duration histogram not recorded")
	assert.True(t, foundBatch, "batch size histogram not recorded")
	assert.True(t, foundErrors, "errors counter not recorded")
}
