// Package fractal defines the parameter model for Mandelbrot render requests
// and the argument contract of the external renderer.
//
// A [Request] fully determines the pixels of one rendered image: center,
// viewport width, iteration limit and output resolution. Two requests with
// identical fields always resolve to the same cache entry, so every field
// has exactly one canonical textual form ([FormatFloat]).
//
// # Variants
//
// A request is served as one of three [Variant]s: a still image, or a zoom
// animation at fast or slow speed. The variant is attached by the endpoint
// that received the request, not by the client.
package fractal

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/mandelzoom/pkg/errors"
)

// Variant selects the artifact kind a request is served as.
type Variant string

// Request variants.
const (
	VariantStill Variant = "still"
	VariantFast  Variant = "fast"
	VariantSlow  Variant = "slow"
)

// ValidVariants is the set of supported variants.
var ValidVariants = map[Variant]bool{
	VariantStill: true,
	VariantFast:  true,
	VariantSlow:  true,
}

// IsAnimation reports whether v produces a zoom animation.
func (v Variant) IsAnimation() bool {
	return v == VariantFast || v == VariantSlow
}

// ParseVariant parses a variant name.
func ParseVariant(s string) (Variant, error) {
	v := Variant(strings.ToLower(strings.TrimSpace(s)))
	if !ValidVariants[v] {
		return "", errors.New(errors.ErrCodeInvalidInput, "invalid variant: %q (must be one of: still, fast, slow)", s)
	}
	return v, nil
}

// Defaults taken from the browser client's initial view (#0_0_8_1000).
const (
	DefaultCenterX       = 0.0
	DefaultCenterY       = 0.0
	DefaultWidth         = 8.0
	DefaultMaxIterations = 1000
)

// Request is an immutable set of render parameters.
type Request struct {
	CenterX       float64
	CenterY       float64
	Width         float64 // horizontal span of the viewport; smaller is more zoomed in
	MaxIterations int
	Resolution    Resolution
}

// DefaultRequest returns the full-set view at the given resolution.
func DefaultRequest(res Resolution) Request {
	return Request{
		CenterX:       DefaultCenterX,
		CenterY:       DefaultCenterY,
		Width:         DefaultWidth,
		MaxIterations: DefaultMaxIterations,
		Resolution:    res,
	}
}

// Validate checks that every field is usable for key derivation and rendering.
// maxIterations bounds the iteration count; 0 means unbounded.
func (r Request) Validate(maxIterations int) error {
	if err := errors.ValidateFinite("x", r.CenterX); err != nil {
		return err
	}
	if err := errors.ValidateFinite("y", r.CenterY); err != nil {
		return err
	}
	if err := errors.ValidatePositive("w", r.Width); err != nil {
		return err
	}
	if err := errors.ValidateRange("i", r.MaxIterations, 1, maxIterations); err != nil {
		return err
	}
	return r.Resolution.Validate()
}

// WithWidth returns a copy of r with a different viewport width.
func (r Request) WithWidth(w float64) Request {
	r.Width = w
	return r
}

// WithResolution returns a copy of r rendered at a different resolution.
func (r Request) WithResolution(res Resolution) Request {
	r.Resolution = res
	return r
}

// Hash returns the browser hash form "x_y_w_i" used by the client UI.
func (r Request) Hash() string {
	return strings.Join([]string{
		FormatFloat(r.CenterX),
		FormatFloat(r.CenterY),
		FormatFloat(r.Width),
		strconv.Itoa(r.MaxIterations),
	}, "_")
}

// ParseHash parses the "x_y_w_i" form produced by [Request.Hash]. A leading
// '#' is ignored. The resolution is taken from res.
func ParseHash(s string, res Resolution) (Request, error) {
	parts := strings.Split(strings.TrimPrefix(s, "#"), "_")
	if len(parts) != 4 {
		return Request{}, errors.New(errors.ErrCodeInvalidInput, "invalid view %q (want x_y_w_i)", s)
	}
	return ParseParams(parts[0], parts[1], parts[2], parts[3], res)
}

// ParseParams parses the raw query values x, y, w and i.
func ParseParams(x, y, w, i string, res Resolution) (Request, error) {
	req := Request{Resolution: res}
	var err error
	if req.CenterX, err = parseFloat("x", x); err != nil {
		return Request{}, err
	}
	if req.CenterY, err = parseFloat("y", y); err != nil {
		return Request{}, err
	}
	if req.Width, err = parseFloat("w", w); err != nil {
		return Request{}, err
	}
	it, err := strconv.Atoi(strings.TrimSpace(i))
	if err != nil {
		return Request{}, errors.New(errors.ErrCodeInvalidParameter, "i must be an integer, got %q", i)
	}
	req.MaxIterations = it
	return req, nil
}

func parseFloat(name, s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New(errors.ErrCodeInvalidParameter, "%s is required", name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidParameter, "%s must be a number, got %q", name, s)
	}
	return v, nil
}

// FormatFloat returns the canonical text form of v: the shortest decimal
// that parses back to exactly v. Negative zero is folded into zero since
// both describe the same viewport.
func FormatFloat(v float64) string {
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// String implements fmt.Stringer.
func (r Request) String() string {
	return fmt.Sprintf("x=%s y=%s w=%s i=%d %s",
		FormatFloat(r.CenterX), FormatFloat(r.CenterY), FormatFloat(r.Width),
		r.MaxIterations, r.Resolution)
}

// Zoom returns log2(DefaultWidth / w): the number of doublings between the
// full view and r.
func (r Request) Zoom() float64 {
	return math.Log2(DefaultWidth / r.Width)
}
