package observability

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestHooks(t *testing.T) (*OTelHooks, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	h, err := NewOTelHooks(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewOTelHooks: %v", err)
	}
	return h, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func sumWhere(t *testing.T, m *metricdata.Metrics, key, value string) int64 {
	t.Helper()
	if m == nil {
		t.Fatal("metric not found")
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64], got %T", m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.Emit() == value {
			total += dp.Value
		}
	}
	return total
}

func TestOTelHooksCacheLookups(t *testing.T) {
	h, reader := newTestHooks(t)
	ctx := context.Background()

	h.OnCacheHit(ctx, "still")
	h.OnCacheHit(ctx, "frame")
	h.OnCacheMiss(ctx, "frame")
	h.OnCoalesced(ctx, "frame")

	rm := collect(t, reader)
	lookups := findMetric(rm, "mandelzoom.cache.lookups")
	if got := sumWhere(t, lookups, "result", "hit"); got != 2 {
		t.Errorf("hits = %d, want 2", got)
	}
	if got := sumWhere(t, lookups, "result", "miss"); got != 1 {
		t.Errorf("misses = %d, want 1", got)
	}
	if got := sumWhere(t, findMetric(rm, "mandelzoom.cache.coalesced"), "key_type", "frame"); got != 1 {
		t.Errorf("coalesced = %d, want 1", got)
	}
}

func TestOTelHooksJobErrors(t *testing.T) {
	h, reader := newTestHooks(t)
	ctx := context.Background()

	h.OnJobComplete(ctx, "fast", "k1", false, 10, time.Second, nil)
	h.OnJobComplete(ctx, "fast", "k2", false, 10, time.Second, errors.New("render failed"))

	rm := collect(t, reader)
	if got := sumWhere(t, findMetric(rm, "mandelzoom.jobs"), "kind", "fast"); got != 2 {
		t.Errorf("jobs = %d, want 2", got)
	}
	if got := sumWhere(t, findMetric(rm, "mandelzoom.job.errors"), "kind", "fast"); got != 1 {
		t.Errorf("job errors = %d, want 1", got)
	}

	hist, ok := findMetric(rm, "mandelzoom.job.duration_ms").Data.(metricdata.Histogram[float64])
	if !ok || len(hist.DataPoints) == 0 {
		t.Fatal("expected job duration histogram data points")
	}
	if hist.DataPoints[0].Sum < 999 || hist.DataPoints[0].Sum > 1001 {
		t.Errorf("duration sum = %f, want ~1000ms", hist.DataPoints[0].Sum)
	}
}

func TestOTelHooksProcessExitCodes(t *testing.T) {
	h, reader := newTestHooks(t)
	ctx := context.Background()

	h.OnProcessExit(ctx, "mandelbrot", 0, time.Millisecond)
	h.OnProcessExit(ctx, "mandelbrot", 1, time.Millisecond)
	h.OnProcessExit(ctx, "ffmpeg", 0, time.Millisecond)

	rm := collect(t, reader)
	exits := findMetric(rm, "mandelzoom.process.exits")
	if got := sumWhere(t, exits, "executable", "mandelbrot"); got != 2 {
		t.Errorf("mandelbrot exits = %d, want 2", got)
	}
	if got := sumWhere(t, exits, "exit_code", "1"); got != 1 {
		t.Errorf("failed exits = %d, want 1", got)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{ServiceName: "mandelzoom"}, false},
		{"prometheus", Config{ServiceName: "mandelzoom", MetricsExporter: "prometheus"}, false},
		{"missing service", Config{}, true},
		{"bad metrics", Config{ServiceName: "mandelzoom", MetricsExporter: "statsd"}, true},
		{"prometheus tracing", Config{ServiceName: "mandelzoom", TracingExporter: "prometheus"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSetupDisabledInstallsNothing(t *testing.T) {
	Reset()
	tel, err := Setup(context.Background(), Config{ServiceName: "mandelzoom", MetricsExporter: "none"})
	if err != nil {
		t.Fatalf("Setup error: %v", err)
	}
	if tel.MetricsHandler() != nil {
		t.Error("no metrics handler expected without prometheus exporter")
	}
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("hooks should stay no-ops when telemetry is disabled")
	}
	if err := tel.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown error: %v", err)
	}
}

func TestSetupPrometheusServesMetrics(t *testing.T) {
	defer Reset()
	ctx := context.Background()

	tel, err := Setup(ctx, Config{ServiceName: "mandelzoom", MetricsExporter: "prometheus"})
	if err != nil {
		t.Fatalf("Setup error: %v", err)
	}
	defer tel.Shutdown(ctx)

	Process().OnProcessExit(ctx, "mandelbrot", 0, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	tel.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "mandelzoom_process_exits") {
		t.Errorf("scrape output missing process counter:\n%s", rec.Body.String())
	}
}

func TestSetupStdoutTracing(t *testing.T) {
	defer Reset()
	ctx := context.Background()
	var buf bytes.Buffer

	tel, err := Setup(ctx, Config{ServiceName: "mandelzoom", TracingExporter: "stdout", Writer: &buf})
	if err != nil {
		t.Fatalf("Setup error: %v", err)
	}

	_, span := StartSpan(ctx, "zoom.plan", attribute.Int("frames", 3))
	EndSpan(span, nil)

	if err := tel.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown error: %v", err)
	}
	if !strings.Contains(buf.String(), "zoom.plan") {
		t.Errorf("exported spans missing zoom.plan: %s", buf.String())
	}
}
