package server

import (
	"fmt"
	"strings"

	"github.com/matzehuels/mandelzoom/pkg/composite"
	"github.com/matzehuels/mandelzoom/pkg/errors"
	"github.com/matzehuels/mandelzoom/pkg/fractal"
)

// Endpoint registers one render route. It decodes from a TOML [[endpoint]]
// table.
type Endpoint struct {
	Route      string             `toml:"route"`
	Variant    fractal.Variant    `toml:"variant"`
	Resolution fractal.Resolution `toml:"resolution"`
	Codec      composite.Codec    `toml:"codec"` // animations only
}

// DefaultEndpoints returns the stock route table.
func DefaultEndpoints() []Endpoint {
	return []Endpoint{
		{Route: "/image", Variant: fractal.VariantStill, Resolution: fractal.Resolution1080},
		{Route: "/image/hd", Variant: fractal.VariantStill, Resolution: fractal.Resolution4K},
		{Route: "/zoom/fast.gif", Variant: fractal.VariantFast, Resolution: fractal.ResolutionGIF, Codec: composite.GIF},
		{Route: "/zoom/slow.gif", Variant: fractal.VariantSlow, Resolution: fractal.ResolutionGIF, Codec: composite.GIF},
		{Route: "/zoom/fast.mp4", Variant: fractal.VariantFast, Resolution: fractal.Resolution720, Codec: composite.Video},
		{Route: "/zoom/slow.mp4", Variant: fractal.VariantSlow, Resolution: fractal.Resolution720, Codec: composite.Video},
		{Route: "/zoom/slow/hd.mp4", Variant: fractal.VariantSlow, Resolution: fractal.Resolution1080, Codec: composite.Video},
	}
}

// ValidateAndSetDefaults checks the endpoint and fills in the codec of
// animation endpoints.
func (e *Endpoint) ValidateAndSetDefaults() error {
	if !strings.HasPrefix(e.Route, "/") {
		return errors.New(errors.ErrCodeInvalidInput, "endpoint route must start with '/': %q", e.Route)
	}
	if isReserved(e.Route) {
		return errors.New(errors.ErrCodeInvalidInput, "endpoint route %q is reserved", e.Route)
	}
	if e.Variant == "" {
		e.Variant = fractal.VariantStill
	}
	if !fractal.ValidVariants[e.Variant] {
		return errors.New(errors.ErrCodeInvalidInput, "endpoint %s: invalid variant %q", e.Route, e.Variant)
	}
	if err := e.Resolution.Validate(); err != nil {
		return fmt.Errorf("endpoint %s: %w", e.Route, err)
	}
	if !e.Variant.IsAnimation() {
		if e.Codec != "" {
			return errors.New(errors.ErrCodeInvalidInput, "endpoint %s: codec is only valid for animations", e.Route)
		}
		return nil
	}
	if e.Codec == "" {
		e.Codec = composite.GIF
	}
	codec, err := composite.ParseCodec(string(e.Codec))
	if err != nil {
		return fmt.Errorf("endpoint %s: %w", e.Route, err)
	}
	e.Codec = codec
	return nil
}

// ValidateEndpoints validates every endpoint in place and rejects duplicate
// routes.
func ValidateEndpoints(eps []Endpoint) error {
	if len(eps) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no endpoints configured")
	}
	seen := make(map[string]bool, len(eps))
	for i := range eps {
		if err := eps[i].ValidateAndSetDefaults(); err != nil {
			return err
		}
		if seen[eps[i].Route] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate endpoint route %q", eps[i].Route)
		}
		seen[eps[i].Route] = true
	}
	return nil
}

func isReserved(route string) bool {
	return route == HealthRoute || route == MetricsRoute ||
		strings.HasPrefix(route+"/", ArtifactsPrefix)
}

// String implements fmt.Stringer.
func (e Endpoint) String() string {
	if e.Variant.IsAnimation() {
		return fmt.Sprintf("%s (%s %s %s)", e.Route, e.Variant, e.Codec, e.Resolution)
	}
	return fmt.Sprintf("%s (%s %s)", e.Route, e.Variant, e.Resolution)
}
