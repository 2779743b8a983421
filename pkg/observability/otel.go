package observability

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelHooks implements every hook interface on top of an OpenTelemetry meter.
// Durations are recorded in milliseconds.
type OTelHooks struct {
	jobs         metric.Int64Counter
	jobErrors    metric.Int64Counter
	jobDuration  metric.Float64Histogram
	frames       metric.Int64Counter
	frameTime    metric.Float64Histogram
	composites   metric.Int64Counter
	compositeDur metric.Float64Histogram
	cacheLookups metric.Int64Counter
	cacheBytes   metric.Int64Counter
	coalesced    metric.Int64Counter
	processes    metric.Int64Counter
	processDur   metric.Float64Histogram
	httpRequests metric.Int64Counter
	httpDuration metric.Float64Histogram
}

// NewOTelHooks creates the instruments on meter.
func NewOTelHooks(meter metric.Meter) (*OTelHooks, error) {
	h := &OTelHooks{}
	var err error

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&h.jobs, "mandelzoom.jobs", "Render jobs handled", "{job}"},
		{&h.jobErrors, "mandelzoom.job.errors", "Render jobs that failed", "{error}"},
		{&h.frames, "mandelzoom.frames", "Animation frames processed", "{frame}"},
		{&h.composites, "mandelzoom.composites", "Encoder runs", "{run}"},
		{&h.cacheLookups, "mandelzoom.cache.lookups", "Cache lookups by result", "{lookup}"},
		{&h.cacheBytes, "mandelzoom.cache.written", "Bytes committed to the cache", "By"},
		{&h.coalesced, "mandelzoom.cache.coalesced", "Callers that joined an in-flight render", "{call}"},
		{&h.processes, "mandelzoom.process.exits", "External processes by exit code", "{process}"},
		{&h.httpRequests, "mandelzoom.http.requests", "HTTP requests served", "{request}"},
	}
	for _, c := range counters {
		*c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return nil, err
		}
	}

	histograms := []struct {
		dst  *metric.Float64Histogram
		name string
		desc string
	}{
		{&h.jobDuration, "mandelzoom.job.duration_ms", "Render job duration in milliseconds"},
		{&h.frameTime, "mandelzoom.frame.duration_ms", "Frame render duration in milliseconds"},
		{&h.compositeDur, "mandelzoom.composite.duration_ms", "Encoder run duration in milliseconds"},
		{&h.processDur, "mandelzoom.process.duration_ms", "External process duration in milliseconds"},
		{&h.httpDuration, "mandelzoom.http.duration_ms", "HTTP request duration in milliseconds"},
	}
	for _, hg := range histograms {
		*hg.dst, err = meter.Float64Histogram(hg.name, metric.WithDescription(hg.desc), metric.WithUnit("ms"))
		if err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Register installs h as the pipeline, cache, process and HTTP hooks.
func (h *OTelHooks) Register() {
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetProcessHooks(h)
	SetHTTPHooks(h)
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func (h *OTelHooks) OnJobStart(context.Context, string, string) {}

func (h *OTelHooks) OnJobComplete(ctx context.Context, kind, _ string, cacheHit bool, _ int, duration time.Duration, err error) {
	opt := metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.Bool("cache_hit", cacheHit),
	)
	h.jobs.Add(ctx, 1, opt)
	if err != nil {
		h.jobErrors.Add(ctx, 1, opt)
	}
	h.jobDuration.Record(ctx, ms(duration), opt)
}

func (h *OTelHooks) OnFrame(ctx context.Context, cached bool, duration time.Duration, err error) {
	opt := metric.WithAttributes(
		attribute.Bool("cached", cached),
		attribute.Bool("error", err != nil),
	)
	h.frames.Add(ctx, 1, opt)
	if !cached {
		h.frameTime.Record(ctx, ms(duration), opt)
	}
}

func (h *OTelHooks) OnComposite(ctx context.Context, codec string, _ int, duration time.Duration, err error) {
	opt := metric.WithAttributes(
		attribute.String("codec", codec),
		attribute.Bool("error", err != nil),
	)
	h.composites.Add(ctx, 1, opt)
	h.compositeDur.Record(ctx, ms(duration), opt)
}

func (h *OTelHooks) OnCacheHit(ctx context.Context, keyType string) {
	h.cacheLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("key_type", keyType),
		attribute.String("result", "hit"),
	))
}

func (h *OTelHooks) OnCacheMiss(ctx context.Context, keyType string) {
	h.cacheLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("key_type", keyType),
		attribute.String("result", "miss"),
	))
}

func (h *OTelHooks) OnCacheSet(ctx context.Context, keyType string, size int64) {
	h.cacheBytes.Add(ctx, size, metric.WithAttributes(attribute.String("key_type", keyType)))
}

func (h *OTelHooks) OnCoalesced(ctx context.Context, keyType string) {
	h.coalesced.Add(ctx, 1, metric.WithAttributes(attribute.String("key_type", keyType)))
}

func (h *OTelHooks) OnProcessExit(ctx context.Context, executable string, exitCode int, duration time.Duration) {
	opt := metric.WithAttributes(
		attribute.String("executable", executable),
		attribute.String("exit_code", strconv.Itoa(exitCode)),
	)
	h.processes.Add(ctx, 1, opt)
	h.processDur.Record(ctx, ms(duration), opt)
}

func (h *OTelHooks) OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration) {
	opt := metric.WithAttributes(
		attribute.String("http.request.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.response.status_code", statusCode),
	)
	h.httpRequests.Add(ctx, 1, opt)
	h.httpDuration.Record(ctx, ms(duration), opt)
}

var (
	_ PipelineHooks = (*OTelHooks)(nil)
	_ CacheHooks    = (*OTelHooks)(nil)
	_ ProcessHooks  = (*OTelHooks)(nil)
	_ HTTPHooks     = (*OTelHooks)(nil)
)
