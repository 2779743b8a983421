package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/matzehuels/mandelzoom/pkg/fractal"
)

// viewOpts holds the flags that select a view.
type viewOpts struct {
	x, y, w    float64
	iterations int
	view       string // browser hash form x_y_w_i
	resolution string
	click      string // pixel "X,Y" to zoom into
	mag        int
}

// register adds the view flags to fs. defaultRes is the resolution used
// when --res is not given.
func (o *viewOpts) register(fs *pflag.FlagSet, defaultRes fractal.Resolution) {
	o.x, o.y, o.w = fractal.DefaultCenterX, fractal.DefaultCenterY, fractal.DefaultWidth
	o.iterations = fractal.DefaultMaxIterations
	o.resolution = defaultRes.String()
	o.mag = 1

	fs.Float64VarP(&o.x, "x", "x", o.x, "real part of the view center")
	fs.Float64VarP(&o.y, "y", "y", o.y, "imaginary part of the view center")
	fs.Float64VarP(&o.w, "w", "w", o.w, "view width (smaller is deeper)")
	fs.IntVarP(&o.iterations, "i", "i", o.iterations, "max iterations")
	fs.StringVar(&o.view, "view", "", "view as x_y_w_i (overrides -x, -y, -w, -i)")
	fs.StringVar(&o.resolution, "res", o.resolution, "output resolution WxH")
	fs.StringVar(&o.click, "click", "", "zoom into pixel X,Y of the selected view")
	fs.IntVar(&o.mag, "mag", o.mag, "zoom factor for --click as a power of two")
}

// request builds the render request selected by the flags.
func (o *viewOpts) request() (fractal.Request, error) {
	res, err := fractal.ParseResolution(o.resolution)
	if err != nil {
		return fractal.Request{}, err
	}

	req := fractal.Request{
		CenterX:       o.x,
		CenterY:       o.y,
		Width:         o.w,
		MaxIterations: o.iterations,
		Resolution:    res,
	}
	if o.view != "" {
		if req, err = fractal.ParseHash(o.view, res); err != nil {
			return fractal.Request{}, err
		}
	}

	if o.click != "" {
		px, py, err := parsePoint(o.click)
		if err != nil {
			return fractal.Request{}, err
		}
		if req, err = req.ZoomAt(px, py, o.mag); err != nil {
			return fractal.Request{}, err
		}
	}
	return req, nil
}

// parsePoint parses "X,Y".
func parsePoint(s string) (float64, float64, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("invalid point %q (want X,Y)", s)
	}
	x, err1 := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	y, err2 := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err1 != nil || err2 != nil {
		return 0, 0, fmt.Errorf("invalid point %q (want X,Y)", s)
	}
	return x, y, nil
}
