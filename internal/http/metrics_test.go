package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func TestHTTPMetricsMiddleware(t *testing.T) {
	reader := metric.NewManualReader()
	mp := metric.NewMeterProvider(metric.WithReader(reader))

	m := &HTTPMetrics{
		meter:  mp.Meter(httpInstrumentationName),
		logger: zap.NewNop(),
	}
	m.init()

	e := echo.New()
	e.Use(m.MetricsMiddleware())
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.POST("/api/v1/questions", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"answer": "yes"})
	})

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/health", nil),
		httptest.NewRequest(http.MethodPost, "/api/v1/questions", nil),
		httptest.NewRequest(http.MethodPost, "/api/v1/questions", nil),
	} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var foundRequests, foundDuration, foundSize bool
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			switch md.Name {
			case "ragd.http.requests_total":
				foundRequests = true
				sum, ok := md.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				total := int64(0)
				for _, dp := range sum.DataPoints {
					total += dp.Value
				}
				assert.Equal(t, int64(3), total)
			case "ragd.http.request_duration_seconds":
				foundDuration = true
				hist, ok := md.Data.(metricdata.Histogram[float64])
				require.True(t, ok)
				count := uint64(0)
				for _, dp := range hist.DataPoints {
					count += dp.Count
				}
				assert.Equal(t, uint64(3), count)
			case "ragd.http.response_size_bytes":
				foundSize = true
			}
		}
	}

	assert.True(t, foundRequests, "requests counter not recorded")
	assert.True(t, foundDuration, "duration histogram not recorded")
	assert.True(t, foundSize, "response size histogram not recorded")
}
