package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Exporter names accepted by [Config].
const (
	ExporterNone       = "none"
	ExporterStdout     = "stdout"
	ExporterOTLP       = "otlp"
	ExporterPrometheus = "prometheus"
)

var validMetricsExporters = map[string]bool{
	"":                 true,
	ExporterNone:       true,
	ExporterStdout:     true,
	ExporterOTLP:       true,
	ExporterPrometheus: true,
}

var validTracingExporters = map[string]bool{
	"":             true,
	ExporterNone:   true,
	ExporterStdout: true,
	ExporterOTLP:   true,
}

// Config selects the telemetry backends.
type Config struct {
	ServiceName     string
	Version         string
	MetricsExporter string // none|stdout|otlp|prometheus
	TracingExporter string // none|stdout|otlp

	// Writer receives stdout exporter output. Defaults to os.Stdout.
	Writer io.Writer
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if c.ServiceName == "" {
		return errors.New("service name is required")
	}
	if !validMetricsExporters[c.MetricsExporter] {
		return fmt.Errorf("unknown metrics exporter: %q", c.MetricsExporter)
	}
	if !validTracingExporters[c.TracingExporter] {
		return fmt.Errorf("unknown tracing exporter: %q", c.TracingExporter)
	}
	return nil
}

// Telemetry owns the installed providers.
type Telemetry struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	metricsHandler http.Handler
}

// Setup installs global tracer and meter providers for the configured
// exporters and registers [OTelHooks] for all hook categories. With both
// exporters disabled it installs nothing and hooks stay no-ops.
func Setup(ctx context.Context, cfg Config) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}

	t := &Telemetry{}
	if enabled(cfg.MetricsExporter) == "" && enabled(cfg.TracingExporter) == "" {
		return t, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if name := enabled(cfg.TracingExporter); name != "" {
		exp, err := newSpanExporter(ctx, name, cfg.Writer)
		if err != nil {
			return nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		t.tracerProvider = sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithBatcher(exp),
		)
		otel.SetTracerProvider(t.tracerProvider)
	}

	if name := enabled(cfg.MetricsExporter); name != "" {
		reader, handler, err := newMetricReader(ctx, name, cfg.Writer)
		if err != nil {
			_ = t.Shutdown(ctx)
			return nil, fmt.Errorf("failed to create metrics reader: %w", err)
		}
		t.metricsHandler = handler
		t.meterProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(reader),
		)
		otel.SetMeterProvider(t.meterProvider)

		hooks, err := NewOTelHooks(t.meterProvider.Meter(cfg.ServiceName))
		if err != nil {
			_ = t.Shutdown(ctx)
			return nil, fmt.Errorf("failed to create instruments: %w", err)
		}
		hooks.Register()
	}

	return t, nil
}

// MetricsHandler returns the Prometheus scrape handler, or nil when the
// prometheus exporter is not selected.
func (t *Telemetry) MetricsHandler() http.Handler {
	return t.metricsHandler
}

// Shutdown flushes and stops all providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.tracerProvider != nil {
		if err := t.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if t.meterProvider != nil {
		if err := t.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}

func enabled(name string) string {
	if name == ExporterNone {
		return ""
	}
	return name
}

func newSpanExporter(ctx context.Context, name string, w io.Writer) (sdktrace.SpanExporter, error) {
	switch name {
	case ExporterStdout:
		return stdouttrace.New(stdouttrace.WithWriter(w))
	case ExporterOTLP:
		if otlpEndpoint("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT") == "" {
			return nil, errors.New("OTLP endpoint not configured: set OTEL_EXPORTER_OTLP_ENDPOINT or OTEL_EXPORTER_OTLP_TRACES_ENDPOINT")
		}
		return otlptracegrpc.New(ctx)
	default:
		return nil, fmt.Errorf("unknown exporter: %q", name)
	}
}

func newMetricReader(ctx context.Context, name string, w io.Writer) (sdkmetric.Reader, http.Handler, error) {
	switch name {
	case ExporterStdout:
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
		if err != nil {
			return nil, nil, err
		}
		return sdkmetric.NewPeriodicReader(exp), nil, nil
	case ExporterOTLP:
		if otlpEndpoint("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT") == "" {
			return nil, nil, errors.New("OTLP metrics endpoint not configured: set OTEL_EXPORTER_OTLP_ENDPOINT or OTEL_EXPORTER_OTLP_METRICS_ENDPOINT")
		}
		exp, err := otlpmetricgrpc.New(ctx)
		if err != nil {
			return nil, nil, err
		}
		return sdkmetric.NewPeriodicReader(exp), nil, nil
	case ExporterPrometheus:
		// A private registry keeps repeated Setup calls from colliding on
		// the process-wide default registerer.
		reg := promclient.NewRegistry()
		exp, err := otelprom.New(otelprom.WithRegisterer(reg))
		if err != nil {
			return nil, nil, err
		}
		return exp, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil
	default:
		return nil, nil, fmt.Errorf("unknown metrics exporter: %q", name)
	}
}

func otlpEndpoint(specific string) string {
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		return v
	}
	return os.Getenv(specific)
}
