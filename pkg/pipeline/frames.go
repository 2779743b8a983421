package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/mandelzoom/pkg/errors"
	"github.com/matzehuels/mandelzoom/pkg/fractal"
	"github.com/matzehuels/mandelzoom/pkg/observability"
	"github.com/matzehuels/mandelzoom/pkg/zoom"
)

// renderFrames makes sure every frame of seq exists in the cache, rendering
// missing ones strictly one after another in plan order. The first failure
// aborts the remaining frames. It returns the file path of every frame,
// keyed by width, and the number of frames this job did not render itself:
// those already cached and those rendered by a concurrent job it joined.
func (r *Runner) renderFrames(ctx context.Context, base fractal.Request, seq zoom.Sequence, progress ProgressFunc) (map[float64]string, int, error) {
	paths := make(map[float64]string, len(seq))
	cached := 0

	for i, f := range seq {
		req := base.WithWidth(f.Width)
		key := r.Keyer.FrameKey(req)

		start := time.Now()
		var hit, ran bool
		_, err := r.Inflight.Do(ctx, key, func() error {
			var err error
			ran = true
			hit, err = r.renderOnce(ctx, req, key)
			return err
		})
		if err == nil && !ran {
			// Another job produced the frame while this one waited.
			hit = true
		}
		observability.Pipeline().OnFrame(ctx, hit, time.Since(start), err)
		if err != nil {
			if errors.IsRenderFailure(err) {
				return paths, cached, errors.Wrap(errors.ErrCodeRenderFailed, err, "frame %d of %d", f.Index, len(seq))
			}
			return paths, cached, err
		}

		if hit {
			cached++
		}
		paths[f.Width] = r.Store.Path(key)
		r.Logger.Debug("frame ready", "frame", f.Index, "of", len(seq), "width", fractal.FormatFloat(f.Width), "cached", hit)
		if progress != nil {
			progress(Progress{Done: i + 1, Total: len(seq), Frame: f, Key: key, Cached: hit})
		}
	}
	return paths, cached, nil
}
