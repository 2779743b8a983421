package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/matzehuels/mandelzoom/pkg/cache"
	"github.com/matzehuels/mandelzoom/pkg/composite"
	"github.com/matzehuels/mandelzoom/pkg/errors"
	"github.com/matzehuels/mandelzoom/pkg/fractal"
	"github.com/matzehuels/mandelzoom/pkg/observability"
	"github.com/matzehuels/mandelzoom/pkg/procrun"
	"github.com/matzehuels/mandelzoom/pkg/zoom"
)

// Runner executes render jobs against a cache store.
// Both CLI and server use this to share caching and compositing logic.
//
// The Runner holds no per-job state. Multiple goroutines can safely use the
// same Runner; identical concurrent jobs are coalesced through Inflight.
type Runner struct {
	Store      cache.Store
	Keyer      cache.Keyer
	Renderer   *fractal.Renderer
	Compositor *composite.Compositor
	Inflight   *cache.Inflight
	Logger     *log.Logger

	// MaxIterations bounds Request.MaxIterations. Zero means unbounded.
	MaxIterations int
}

// NewRunner creates a runner that stores artifacts in store and runs the
// default renderer and encoders through exec. Fields may be replaced before
// first use.
func NewRunner(store cache.Store, exec procrun.Executor, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Store:         store,
		Keyer:         cache.NewDefaultKeyer(),
		Renderer:      fractal.NewRenderer("", exec),
		Compositor:    composite.New(exec),
		Inflight:      cache.NewInflight(true),
		Logger:        logger,
		MaxIterations: DefaultMaxIterations,
	}
}

// Execute runs job to completion and returns the produced artifact.
func (r *Runner) Execute(ctx context.Context, job Job) (*Result, error) {
	if err := job.ValidateAndSetDefaults(r.MaxIterations); err != nil {
		return nil, err
	}
	if !job.Variant.IsAnimation() {
		return r.Still(ctx, job.Request)
	}
	return r.Zoom(ctx, job.Request, ZoomOptions{
		Speed:    zoom.Speed(job.Variant),
		Codec:    job.Codec,
		Target:   job.Target,
		Progress: job.Progress,
	})
}

// Still produces the still image for req.
func (r *Runner) Still(ctx context.Context, req fractal.Request) (*Result, error) {
	if err := req.Validate(r.MaxIterations); err != nil {
		return nil, err
	}
	key := r.Keyer.StillKey(req)
	ctx, j := r.begin(ctx, string(fractal.VariantStill), key)

	hit, err := j.lookup(ctx)
	if err != nil || hit {
		return j.finish(err)
	}

	j.enter(StateFrameRendering)
	j.logger.Info("generating", "key", key)
	j.result.Shared, err = r.Inflight.Do(ctx, key, func() error {
		_, err := r.renderOnce(ctx, req, key)
		return err
	})
	return j.finish(err)
}

// Zoom produces the zoom animation onto req.
func (r *Runner) Zoom(ctx context.Context, req fractal.Request, opts ZoomOptions) (*Result, error) {
	if err := req.Validate(r.MaxIterations); err != nil {
		return nil, err
	}
	if _, err := zoom.ParseSpeed(string(opts.Speed)); err != nil {
		return nil, err
	}
	if opts.Codec == "" {
		opts.Codec = composite.GIF
	}
	if opts.Target == 0 {
		opts.Target = DefaultTarget
	}

	if err := errors.ValidatePositive("target", opts.Target); err != nil {
		return nil, err
	}

	key := r.Keyer.AnimationKey(req, cache.AnimationKeyOpts{
		Speed:    string(opts.Speed),
		Codec:    string(opts.Codec),
		Target:   opts.Target,
		Encoding: cache.EncodingDigest(r.Compositor.Settings(opts.Codec)),
		Ext:      opts.Codec.Ext(),
	})
	ctx, j := r.begin(ctx, string(opts.Speed), key)

	hit, err := j.lookup(ctx)
	if err != nil || hit {
		return j.finish(err)
	}

	j.logger.Info("generating", "key", key, "speed", opts.Speed, "codec", opts.Codec)
	j.result.Shared, err = r.Inflight.Do(ctx, key, func() error {
		return r.buildAnimation(ctx, j, req, opts)
	})
	return j.finish(err)
}

// buildAnimation plans, renders and composites one animation.
func (r *Runner) buildAnimation(ctx context.Context, j *job, req fractal.Request, opts ZoomOptions) error {
	// An identical job may have committed between lookup and entering the
	// in-flight registry.
	if ok, err := r.Store.Exists(ctx, j.result.Key); err != nil || ok {
		return err
	}

	j.enter(StatePlanning)
	_, span := observability.StartSpan(ctx, "zoom.plan")
	seq, err := zoom.Plan(req.Width, opts.Target, opts.Speed)
	span.SetAttributes(attribute.Int("frames", len(seq)))
	observability.EndSpan(span, err)
	if err != nil {
		return err
	}
	j.result.Frames = len(seq)
	j.logger.Debug("planned frames", "frames", len(seq), "from", opts.Target, "to", req.Width)

	j.enter(StateFrameRendering)
	paths, cached, err := r.renderFrames(ctx, req, seq, opts.Progress)
	j.result.FramesCached = cached
	if err != nil {
		return err
	}

	j.enter(StateCompositing)
	res, err := r.Store.Reserve(j.result.Key)
	if err != nil {
		return err
	}
	playback := make([]string, 0, 2*len(seq))
	for _, f := range seq.Boomerang() {
		playback = append(playback, paths[f.Width])
	}
	manifest := r.Store.Path(cache.ManifestKey(j.result.Key))
	if err := r.Compositor.Composite(ctx, playback, manifest, res.TempPath, opts.Codec); err != nil {
		res.Abort()
		return err
	}
	return res.Commit(ctx)
}

// renderOnce renders req under key unless the entry already exists.
// It reports whether the entry was found instead of rendered.
func (r *Runner) renderOnce(ctx context.Context, req fractal.Request, key string) (bool, error) {
	if ok, err := r.Store.Exists(ctx, key); err != nil || ok {
		return ok, err
	}
	res, err := r.Store.Reserve(key)
	if err != nil {
		return false, err
	}
	if err := r.Renderer.Render(ctx, req, res.TempPath); err != nil {
		res.Abort()
		return false, err
	}
	return false, res.Commit(ctx)
}

// =============================================================================
// Job bookkeeping
// =============================================================================

// job tracks the lifecycle of one Still or Zoom call.
type job struct {
	runner *Runner
	kind   string
	start  time.Time
	logger *log.Logger
	result *Result
	span   trace.Span
	ctx    context.Context
}

func (r *Runner) begin(ctx context.Context, kind, key string) (context.Context, *job) {
	observability.Pipeline().OnJobStart(ctx, kind, key)
	ctx, span := observability.StartSpan(ctx, "pipeline."+kind,
		attribute.String("key", key),
	)
	return ctx, &job{
		runner: r,
		kind:   kind,
		start:  time.Now(),
		logger: r.Logger.With("kind", kind),
		result: &Result{Key: key, Path: r.Store.Path(key)},
		span:   span,
		ctx:    ctx,
	}
}

func (j *job) enter(s State) {
	j.result.States = append(j.result.States, s)
	j.logger.Debug("state", "key", j.result.Key, "state", s)
}

// lookup checks the final artifact and records CacheHit or CacheMiss.
func (j *job) lookup(ctx context.Context) (bool, error) {
	ok, err := j.runner.Store.Exists(ctx, j.result.Key)
	if err != nil {
		return false, err
	}
	if ok {
		j.enter(StateCacheHit)
		j.result.CacheHit = true
		j.logger.Info("using existing cached", "key", j.result.Key)
		return true, nil
	}
	j.enter(StateCacheMiss)
	return false, nil
}

// finish records Done or Failed and reports the job to the hooks. On
// failure the result is returned alongside the error so callers can inspect
// the states reached.
func (j *job) finish(err error) (*Result, error) {
	j.result.Duration = time.Since(j.start)
	res := j.result
	observability.Pipeline().OnJobComplete(j.ctx, j.kind, res.Key, res.CacheHit, res.Frames, res.Duration, err)
	j.span.SetAttributes(attribute.Bool("cache_hit", res.CacheHit))
	observability.EndSpan(j.span, err)

	if err != nil {
		j.enter(StateFailed)
		j.logger.Error("failed", "key", res.Key, "code", errors.GetCode(err), "duration", res.Duration.Round(time.Millisecond))
		return res, err
	}
	j.enter(StateDone)
	if !res.CacheHit {
		j.logger.Info("generated", "key", res.Key, "frames", res.Frames, "cached", res.FramesCached,
			"shared", res.Shared, "duration", res.Duration.Round(time.Millisecond))
	}
	return res, nil
}
