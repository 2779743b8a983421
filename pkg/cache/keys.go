package cache

import (
	"path"
	"strings"

	"github.com/matzehuels/mandelzoom/pkg/fractal"
)

const (
	stillPrefix     = "mandelbrot_"
	framePrefix     = "frame_"
	animationPrefix = "zoom_"
	framesDir       = "frames"
	manifestExt     = ".txt"
)

// Keyer derives cache keys from render requests. Implementations must be
// pure: the same inputs yield the same key across processes and restarts,
// and distinct inputs never share a key.
type Keyer interface {
	// StillKey identifies a still image served to clients.
	StillKey(req fractal.Request) string

	// FrameKey identifies one animation frame. Frames are shared by every
	// animation at the same resolution that passes through the same width.
	FrameKey(req fractal.Request) string

	// AnimationKey identifies a composited animation.
	AnimationKey(req fractal.Request, opts AnimationKeyOpts) string
}

// AnimationKeyOpts holds the animation-specific key components.
type AnimationKeyOpts struct {
	Speed  string  // "fast" or "slow"
	Codec  string  // "gif" or "video"
	Target float64 // width the zoom starts from

	// Encoding identifies the encoder settings, typically a short digest
	// from EncodingDigest. Empty omits the component.
	Encoding string

	Ext string // file extension including the dot
}

// EncodingDigest returns a short, stable digest of an encoder settings
// description for use as AnimationKeyOpts.Encoding.
func EncodingDigest(settings string) string {
	return Hash([]byte(settings))[:8]
}

// DefaultKeyer produces the flat cache layout:
//
//	mandelbrot_<x>_<y>_<w>_<i>_<W>x<H>.png
//	frames/<W>x<H>/frame_<x>_<y>_<w>_<i>.png
//	zoom_<speed>_<codec>_t<target>[_e<encoding>]_<x>_<y>_<w>_<i>_<W>x<H>.<ext>
//
// The encoding component starts with a letter while view components are
// numbers, so keys with and without it never collide.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// StillKey implements Keyer.
func (DefaultKeyer) StillKey(req fractal.Request) string {
	return stillPrefix + req.Hash() + "_" + req.Resolution.String() + ".png"
}

// FrameKey implements Keyer.
func (DefaultKeyer) FrameKey(req fractal.Request) string {
	return path.Join(framesDir, req.Resolution.String(), framePrefix+req.Hash()+".png")
}

// AnimationKey implements Keyer.
func (DefaultKeyer) AnimationKey(req fractal.Request, opts AnimationKeyOpts) string {
	var b strings.Builder
	b.WriteString(animationPrefix)
	b.WriteString(opts.Speed + "_" + opts.Codec)
	b.WriteString("_t" + fractal.FormatFloat(opts.Target))
	if opts.Encoding != "" {
		b.WriteString("_e" + opts.Encoding)
	}
	b.WriteString("_" + req.Hash() + "_" + req.Resolution.String() + opts.Ext)
	return b.String()
}

// ManifestKey returns the key of the frame list written next to an
// animation: the animation key with its extension replaced by .txt.
func ManifestKey(animationKey string) string {
	return strings.TrimSuffix(animationKey, path.Ext(animationKey)) + manifestExt
}
