// Package zoom plans the frame sequence of a zoom animation.
//
// A plan starts at the requested viewport width and grows it geometrically
// until it reaches the target width (the full view). The resulting widths
// are played back in reverse, so the animation zooms in from the full view
// onto the requested one:
//
//	seq, err := zoom.Plan(0.001, zoom.DefaultTarget, zoom.Slow)
//	for _, f := range seq.Boomerang() {
//	    // render f.Width, in order
//	}
//
// Two growth laws exist. [Slow] multiplies the width by the twelfth root of
// two on every step, one octave of zoom per twelve frames. [Fast] starts with
// a 3% step that itself grows by 0.5% per frame, so the zoom accelerates as
// it moves out.
package zoom

import (
	"math"
	"strings"

	"github.com/matzehuels/mandelzoom/pkg/errors"
)

// DefaultTarget is the width of the full view every animation starts from.
const DefaultTarget = 8.0

// MaxFrames bounds the length of a single plan.
const MaxFrames = 10000

// Speed selects the growth law.
type Speed string

// Growth laws.
const (
	Fast Speed = "fast"
	Slow Speed = "slow"
)

// Growth constants.
const (
	fastInitialStep = 0.03
	fastStepGrowth  = 1.005
)

var slowStep = math.Pow(2, 1.0/12) - 1

// ParseSpeed parses a speed name.
func ParseSpeed(s string) (Speed, error) {
	switch sp := Speed(strings.ToLower(strings.TrimSpace(s))); sp {
	case Fast, Slow:
		return sp, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidInput, "invalid speed: %q (must be fast or slow)", s)
	}
}

// Frame is one planned frame. Index is 1-based in playback order.
type Frame struct {
	Index int
	Width float64
}

// Sequence is an ordered list of frames.
type Sequence []Frame

// Widths returns the frame widths in order.
func (s Sequence) Widths() []float64 {
	out := make([]float64, len(s))
	for i, f := range s {
		out[i] = f.Width
	}
	return out
}

// Boomerang returns s followed by s reversed, re-indexed 1..2N. Frame k and
// frame 2N+1-k share the same width and therefore the same source image.
func (s Sequence) Boomerang() Sequence {
	n := len(s)
	out := make(Sequence, 2*n)
	for i, f := range s {
		out[i] = Frame{Index: i + 1, Width: f.Width}
		out[2*n-1-i] = Frame{Index: 2*n - i, Width: f.Width}
	}
	return out
}

// Grow returns the widths visited from start up to target under speed:
// start itself, every intermediate width, and the first width >= target.
// The result is strictly increasing. It is empty when start >= target.
func Grow(start, target float64, speed Speed) ([]float64, error) {
	if err := errors.ValidatePositive("start width", start); err != nil {
		return nil, err
	}
	if err := errors.ValidatePositive("target width", target); err != nil {
		return nil, err
	}

	var step, growth float64
	switch speed {
	case Fast:
		step, growth = fastInitialStep, fastStepGrowth
	case Slow:
		step, growth = slowStep, 1
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid speed: %q", speed)
	}

	var widths []float64
	if start >= target {
		return widths, nil
	}
	for v := start; ; {
		widths = append(widths, v)
		if v >= target {
			return widths, nil
		}
		if len(widths) >= MaxFrames {
			return nil, errors.New(errors.ErrCodeInvalidParameter,
				"zoom range %g..%g needs more than %d frames", start, target, MaxFrames)
		}
		v *= 1 + step
		step *= growth
	}
}

// Plan returns the playback sequence zooming in from target to start,
// indexed 1..N. Zooming out is not supported: start >= target is an
// EMPTY_RANGE request error.
func Plan(start, target float64, speed Speed) (Sequence, error) {
	widths, err := Grow(start, target, speed)
	if err != nil {
		return nil, err
	}
	if len(widths) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyRange,
			"nothing to animate: width %g is already at or beyond the target %g", start, target)
	}

	seq := make(Sequence, len(widths))
	for i := range widths {
		seq[i] = Frame{Index: i + 1, Width: widths[len(widths)-1-i]}
	}
	return seq, nil
}
