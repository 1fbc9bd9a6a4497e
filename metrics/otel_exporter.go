package metrics

import (
	"context"
	"fmt"
	"net/http"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// OTelExporter provides OpenTelemetry metrics export following OTel standards
type OTelExporter struct {
	meterProvider *sdkmetric.MeterProvider
	collector     Collector
	handler       http.Handler

	meter              metric.Meter
	requestStatusGauge metric.Int64ObservableGauge
	callbackGauge      metric.Int64ObservableGauge
}

/* NewOTelExporter creates an exporter serving Prometheus format
 * A nil registry uses the process-wide default registerer
 */
func NewOTelExporter(collector Collector, version string, registry *promclient.Registry) (*OTelExporter, error) {
	var (
		opts    []prometheus.Option
		handler = promhttp.Handler()
	)
	if registry != nil {
		opts = append(opts, prometheus.WithRegisterer(registry))
		handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}

	exporter, err := prometheus.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	if registry == nil {
		otel.SetMeterProvider(meterProvider)
	}

	meter := meterProvider.Meter(
		"wallet-connector",
		metric.WithInstrumentationVersion(version),
	)

	oe := &OTelExporter{
		meterProvider: meterProvider,
		collector:     collector,
		handler:       handler,
		meter:         meter,
	}

	if err := oe.registerInstruments(); err != nil {
		return nil, fmt.Errorf("registering instruments: %w", err)
	}

	return oe, nil
}

func (oe *OTelExporter) registerInstruments() error {
	var err error

	oe.requestStatusGauge, err = oe.meter.Int64ObservableGauge(
		"connector.requests.status",
		metric.WithDescription("Number of live requests by lifecycle status"),
		metric.WithUnit("{requests}"),
		metric.WithInt64Callback(oe.observeRequestCounts),
	)
	if err != nil {
		return fmt.Errorf("creating request status gauge: %w", err)
	}

	oe.callbackGauge, err = oe.meter.Int64ObservableGauge(
		"connector.callbacks.total",
		metric.WithDescription("Callback deliveries since start-up by outcome"),
		metric.WithUnit("{callbacks}"),
		metric.WithInt64Callback(oe.observeCallbacks),
	)
	if err != nil {
		return fmt.Errorf("creating callback gauge: %w", err)
	}

	return nil
}

func (oe *OTelExporter) observeRequestCounts(ctx context.Context, observer metric.Int64Observer) error {
	counts, err := oe.collector.GetRequestCounts(ctx)
	if err != nil {
		return err
	}

	for status, count := range counts {
		observer.Observe(count, metric.WithAttributes(
			attribute.String("request.status", status),
		))
	}

	return nil
}

func (oe *OTelExporter) observeCallbacks(ctx context.Context, observer metric.Int64Observer) error {
	callbacks, err := oe.collector.GetCallbackCounts(ctx)
	if err != nil {
		return err
	}

	for outcome, count := range callbacks.ByOutcome() {
		observer.Observe(count, metric.WithAttributes(
			attribute.String("callback.outcome", outcome),
		))
	}

	return nil
}

// ServeHTTP returns the handler serving Prometheus-formatted metrics
func (oe *OTelExporter) ServeHTTP() http.Handler {
	return oe.handler
}

// Shutdown gracefully shuts down the meter provider
func (oe *OTelExporter) Shutdown(ctx context.Context) error {
	if oe.meterProvider != nil {
		return oe.meterProvider.Shutdown(ctx)
	}
	return nil
}
