package fractal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/mandelzoom/pkg/errors"
)

// MaxDimension bounds either side of a resolution.
const MaxDimension = 16384

// Resolution is an output image size in pixels.
type Resolution struct {
	Width  int
	Height int
}

// Common resolution classes.
var (
	ResolutionGIF  = Resolution{Width: 480, Height: 270}
	Resolution720  = Resolution{Width: 1280, Height: 720}
	Resolution1080 = Resolution{Width: 1920, Height: 1080}
	Resolution4K   = Resolution{Width: 3840, Height: 2160}
)

// Validate checks both dimensions are within [1, MaxDimension].
func (r Resolution) Validate() error {
	if r.Width < 1 || r.Height < 1 || r.Width > MaxDimension || r.Height > MaxDimension {
		return errors.New(errors.ErrCodeInvalidResolution,
			"resolution %dx%d out of range (1..%d per side)", r.Width, r.Height, MaxDimension)
	}
	return nil
}

// String returns the "WxH" form, which is also the resolution class embedded
// in cache keys.
func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// ParseResolution parses "WxH" (e.g. "1920x1080").
func ParseResolution(s string) (Resolution, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return Resolution{}, errors.New(errors.ErrCodeInvalidResolution, "invalid resolution %q (want WxH)", s)
	}
	width, err1 := strconv.Atoi(w)
	height, err2 := strconv.Atoi(h)
	if err1 != nil || err2 != nil {
		return Resolution{}, errors.New(errors.ErrCodeInvalidResolution, "invalid resolution %q (want WxH)", s)
	}
	r := Resolution{Width: width, Height: height}
	if err := r.Validate(); err != nil {
		return Resolution{}, err
	}
	return r, nil
}

// MarshalText implements encoding.TextMarshaler so resolutions read naturally
// in TOML config files.
func (r Resolution) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Resolution) UnmarshalText(b []byte) error {
	parsed, err := ParseResolution(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
