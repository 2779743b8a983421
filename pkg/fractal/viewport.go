package fractal

import "github.com/matzehuels/mandelzoom/pkg/errors"

// MaxMagnification bounds a single click-zoom step (2^8 = 256x).
const MaxMagnification = 8

// ZoomAt returns the request for a click at pixel (offsetX, offsetY) of the
// image rendered for r, zooming in by 2^magnification around that point.
// Pixel rows grow downwards while the imaginary axis grows upwards.
func (r Request) ZoomAt(offsetX, offsetY float64, magnification int) (Request, error) {
	if err := errors.ValidateRange("magnification", magnification, 0, MaxMagnification); err != nil {
		return Request{}, err
	}
	if r.Resolution.Width <= 0 || r.Resolution.Height <= 0 {
		return Request{}, r.Resolution.Validate()
	}

	scale := r.Width / float64(r.Resolution.Width)
	height := scale * float64(r.Resolution.Height)
	left := r.CenterX - r.Width/2
	top := r.CenterY - height/2

	next := r
	next.CenterX = left + offsetX*scale
	next.CenterY = top + (float64(r.Resolution.Height)-offsetY)*scale
	next.Width = r.Width / float64(int(1)<<magnification)
	return next, nil
}

// Height returns the vertical span of the viewport implied by the aspect
// ratio of the resolution.
func (r Request) Height() float64 {
	if r.Resolution.Width == 0 {
		return 0
	}
	return r.Width * float64(r.Resolution.Height) / float64(r.Resolution.Width)
}
