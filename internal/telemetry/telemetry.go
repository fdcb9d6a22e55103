// Package telemetry installs the OpenTelemetry metrics pipeline.
//
// Metrics are exported through the Prometheus default registry and scraped
// at the HTTP server's /metrics endpoint. Telemetry failures degrade to
// unrecorded metrics, they never stop the daemon.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// Config controls metrics export.
type Config struct {
	// Enabled turns the Prometheus exporter on. When false the global
	// meter provider stays a no-op and /metrics serves only process
	// metrics.
	Enabled bool `koanf:"enabled"`
}

// Telemetry owns the installed meter provider.
type Telemetry struct {
	meterProvider *sdkmetric.MeterProvider
	logger        *zap.Logger
}

// Init installs a global meter provider backed by the Prometheus default
// registry. With Enabled false it returns a no-op instance.
func Init(cfg Config, logger *zap.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		return &Telemetry{logger: logger}, nil
	}

	exporter, err := otelprom.New()
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	logger.Info("metrics exporter installed", zap.String("endpoint", "/metrics"))

	return &Telemetry{meterProvider: mp, logger: logger}, nil
}

// Shutdown flushes and stops the meter provider.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t.meterProvider == nil {
		return nil
	}
	return t.meterProvider.Shutdown(ctx)
}
