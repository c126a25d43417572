// Package telemetry sets up the OpenTelemetry meter provider, exported in
// Prometheus format, and the service's own counters.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const instrumentationName = "github.com/showcase/service"

// ShutdownFn flushes and stops a provider.
type ShutdownFn func(context.Context) error

// InitMeterProvider installs a global meter provider whose readings are served
// by promhttp on /metrics.
func InitMeterProvider(ctx context.Context, serviceName string) (ShutdownFn, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}
	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("create telemetry resource: %w", err)
	}
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(provider)
	return provider.Shutdown, nil
}

// Metrics holds the service counters. A nil *Metrics records nothing.
type Metrics struct {
	uploads   metric.Int64Counter
	bytes     metric.Int64Counter
	downloads metric.Int64Counter
	favorites metric.Int64UpDownCounter
}

// NewMetrics creates the counters on the given provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter(instrumentationName)

	uploads, err := meter.Int64Counter("showcase.uploads",
		metric.WithDescription("Uploaded files, by whether the content was already stored"))
	if err != nil {
		return nil, err
	}
	bytes, err := meter.Int64Counter("showcase.upload.bytes",
		metric.WithUnit("By"),
		metric.WithDescription("Bytes written to blob storage"))
	if err != nil {
		return nil, err
	}
	downloads, err := meter.Int64Counter("showcase.downloads",
		metric.WithDescription("File downloads served"))
	if err != nil {
		return nil, err
	}
	favorites, err := meter.Int64UpDownCounter("showcase.favorites",
		metric.WithDescription("Net favorite changes"))
	if err != nil {
		return nil, err
	}
	return &Metrics{uploads: uploads, bytes: bytes, downloads: downloads, favorites: favorites}, nil
}

// Upload records one upload. Only new content counts toward stored bytes.
func (m *Metrics) Upload(ctx context.Context, duplicate bool, size int64) {
	if m == nil {
		return
	}
	m.uploads.Add(ctx, 1, metric.WithAttributes(attribute.Bool("duplicate", duplicate)))
	if !duplicate {
		m.bytes.Add(ctx, size)
	}
}

// Download records one served download.
func (m *Metrics) Download(ctx context.Context) {
	if m == nil {
		return
	}
	m.downloads.Add(ctx, 1)
}

// Favorite records a favorite (+1) or an unfavorite (-1).
func (m *Metrics) Favorite(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.favorites.Add(ctx, delta)
}
