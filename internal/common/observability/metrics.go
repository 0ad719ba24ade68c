package observability

import (
	"context"
	"time"

	"founders-circle/internal/common/logger"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability exposes OpenTelemetry instruments for notification dispatch.
// A zero value is valid and records nothing.
type Observability struct {
	meterProvider        *metric.MeterProvider
	meter                otelmetric.Meter
	notificationCounter  otelmetric.Int64Counter
	notificationDuration otelmetric.Float64Histogram
}

// New registers the exporter on the default Prometheus registry.
func New(serviceName string, log logger.Logger) *Observability {
	return NewWithRegisterer(serviceName, promclient.DefaultRegisterer, log)
}

func NewWithRegisterer(serviceName string, reg promclient.Registerer, log logger.Logger) *Observability {
	exporter, err := prometheus.New(prometheus.WithRegisterer(reg))
	if err != nil {
		log.Warn("failed to create prometheus exporter", map[string]interface{}{"error": err})
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	counter, err := meter.Int64Counter(
		"notifications.dispatched",
		otelmetric.WithDescription("Number of notification send attempts"),
	)
	if err != nil {
		log.Warn("failed to create notification counter", map[string]interface{}{"error": err})
	}

	duration, err := meter.Float64Histogram(
		"notifications.duration",
		otelmetric.WithDescription("Notification send duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		log.Warn("failed to create notification histogram", map[string]interface{}{"error": err})
	}

	return &Observability{
		meterProvider:        provider,
		meter:                meter,
		notificationCounter:  counter,
		notificationDuration: duration,
	}
}

func (o *Observability) RecordNotification(ctx context.Context, template, status string) {
	if o == nil || o.notificationCounter == nil {
		return
	}
	o.notificationCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("template", template),
		attribute.String("status", status),
	))
}

func (o *Observability) RecordNotificationDuration(ctx context.Context, duration time.Duration, template string) {
	if o == nil || o.notificationDuration == nil {
		return
	}
	o.notificationDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("template", template),
	))
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.meterProvider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return o.meterProvider.Shutdown(ctx)
}
