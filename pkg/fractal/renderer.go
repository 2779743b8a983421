package fractal

import (
	"context"
	"strconv"

	"github.com/matzehuels/mandelzoom/pkg/errors"
	"github.com/matzehuels/mandelzoom/pkg/procrun"
)

// DefaultExecutable is the renderer binary looked up relative to the working
// directory, as the original server did.
const DefaultExecutable = "./mandelbrot"

// Renderer invokes the external renderer binary:
//
//	<exe> -o <out> -x <cx> -y <cy> -w <width> -i <iter> -W <px> -H <px>
//
// The binary exits 0 after writing the PNG to <out>.
type Renderer struct {
	Executable string
	Exec       procrun.Executor
}

// NewRenderer creates a Renderer. An empty executable selects DefaultExecutable.
func NewRenderer(executable string, exec procrun.Executor) *Renderer {
	if executable == "" {
		executable = DefaultExecutable
	}
	return &Renderer{Executable: executable, Exec: exec}
}

// Args returns the argument list for rendering req into out.
func Args(req Request, out string) []string {
	return []string{
		"-o", out,
		"-x", FormatFloat(req.CenterX),
		"-y", FormatFloat(req.CenterY),
		"-w", FormatFloat(req.Width),
		"-i", strconv.Itoa(req.MaxIterations),
		"-W", strconv.Itoa(req.Resolution.Width),
		"-H", strconv.Itoa(req.Resolution.Height),
	}
}

// Invocation returns the process invocation for rendering req into out.
func (r *Renderer) Invocation(req Request, out string) procrun.Invocation {
	return procrun.Invocation{Executable: r.Executable, Args: Args(req, out)}
}

// Render renders req into out. A non-zero exit is reported as RENDER_FAILED.
func (r *Renderer) Render(ctx context.Context, req Request, out string) error {
	if err := r.Exec.Run(ctx, r.Invocation(req, out)); err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "render %s", req)
	}
	return nil
}
