// Package composite encodes an ordered list of frame images into a single
// animation by invoking an external encoder.
//
// The frame list is first written to a manifest file, one entry per frame
// in playback order, and the encoder reads the frames from there:
//
//	convert -delay 4 -loop 0 -colors 256 @frames.txt out.gif
//	ffmpeg -y -f concat -safe 0 -i frames.txt -r 30 -c:v libx264 ... out.mp4
//
// The package never decodes or encodes pixels itself.
package composite

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/mandelzoom/pkg/errors"
	"github.com/matzehuels/mandelzoom/pkg/observability"
	"github.com/matzehuels/mandelzoom/pkg/procrun"
)

// Codec selects the animation container.
type Codec string

// Supported codecs.
const (
	GIF   Codec = "gif"
	Video Codec = "video"
)

// Ext returns the file extension of the codec's output, including the dot.
func (c Codec) Ext() string {
	if c == Video {
		return ".mp4"
	}
	return ".gif"
}

// ParseCodec parses a codec name. "mp4" is accepted for video.
func ParseCodec(s string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "gif":
		return GIF, nil
	case "video", "mp4":
		return Video, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidInput, "invalid codec: %q (must be gif or video)", s)
	}
}

// Default encoder settings.
const (
	DefaultGIFEncoder   = "convert"
	DefaultVideoEncoder = "ffmpeg"
	DefaultGIFDelay     = 4 // hundredths of a second
	DefaultGIFColors    = 256
	DefaultVideoFPS     = 30
	DefaultVideoPreset  = "slow"
	DefaultVideoCRF     = 18
)

// GIFOptions tunes the GIF encoder.
type GIFOptions struct {
	Delay  int // frame delay in hundredths of a second
	Colors int // palette size
}

// VideoOptions tunes the video encoder.
type VideoOptions struct {
	FPS    int
	Preset string // libx264 preset
	CRF    int    // libx264 constant rate factor
}

// Compositor runs the external encoders.
type Compositor struct {
	GIFEncoder   string
	VideoEncoder string
	GIF          GIFOptions
	Video        VideoOptions
	Exec         procrun.Executor
}

// New creates a Compositor with default encoders and settings.
func New(exec procrun.Executor) *Compositor {
	return &Compositor{
		GIFEncoder:   DefaultGIFEncoder,
		VideoEncoder: DefaultVideoEncoder,
		GIF:          GIFOptions{Delay: DefaultGIFDelay, Colors: DefaultGIFColors},
		Video:        VideoOptions{FPS: DefaultVideoFPS, Preset: DefaultVideoPreset, CRF: DefaultVideoCRF},
		Exec:         exec,
	}
}

// Composite writes the manifest for frames to manifest and encodes the
// frames, in order, into output. A non-zero encoder exit is reported as
// COMPOSITE_FAILED; output may then hold a partial file that the caller
// must discard.
func (c *Compositor) Composite(ctx context.Context, frames []string, manifest, output string, codec Codec) error {
	if len(frames) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no frames to composite")
	}

	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "composite.encode")
	err := c.composite(ctx, frames, manifest, output, codec)
	observability.EndSpan(span, err)
	observability.Pipeline().OnComposite(ctx, string(codec), len(frames), time.Since(start), err)
	return err
}

func (c *Compositor) composite(ctx context.Context, frames []string, manifest, output string, codec Codec) error {
	inv, err := c.Invocation(manifest, output, codec)
	if err != nil {
		return err
	}
	if err := WriteManifest(manifest, frames, codec, c.fps()); err != nil {
		return err
	}
	if err := c.Exec.Run(ctx, inv); err != nil {
		return errors.Wrap(errors.ErrCodeCompositeFailed, err, "encode %d frames as %s", len(frames), codec)
	}
	return nil
}

// Invocation returns the encoder call reading manifest and writing output.
func (c *Compositor) Invocation(manifest, output string, codec Codec) (procrun.Invocation, error) {
	switch codec {
	case GIF:
		return procrun.Invocation{
			Executable: orDefault(c.GIFEncoder, DefaultGIFEncoder),
			Args: []string{
				"-delay", strconv.Itoa(orDefaultInt(c.GIF.Delay, DefaultGIFDelay)),
				"-loop", "0",
				"-colors", strconv.Itoa(orDefaultInt(c.GIF.Colors, DefaultGIFColors)),
				"@" + manifest,
				output,
			},
		}, nil
	case Video:
		return procrun.Invocation{
			Executable: orDefault(c.VideoEncoder, DefaultVideoEncoder),
			Args: []string{
				"-y", "-hide_banner",
				"-f", "concat", "-safe", "0",
				"-i", manifest,
				"-r", strconv.Itoa(c.fps()),
				"-c:v", "libx264",
				"-preset", orDefault(c.Video.Preset, DefaultVideoPreset),
				"-pix_fmt", "yuv420p",
				"-crf", strconv.Itoa(orDefaultInt(c.Video.CRF, DefaultVideoCRF)),
				"-an",
				output,
			},
		}, nil
	default:
		return procrun.Invocation{}, errors.New(errors.ErrCodeInvalidInput, "invalid codec: %q", codec)
	}
}

// Settings describes the encoder settings that shape the output of codec,
// in a fixed order. Two compositors with equal settings produce the same
// animation from the same frames.
func (c *Compositor) Settings(codec Codec) string {
	if codec == Video {
		return fmt.Sprintf("video:fps=%d,preset=%s,crf=%d",
			c.fps(), orDefault(c.Video.Preset, DefaultVideoPreset), orDefaultInt(c.Video.CRF, DefaultVideoCRF))
	}
	return fmt.Sprintf("gif:delay=%d,colors=%d",
		orDefaultInt(c.GIF.Delay, DefaultGIFDelay), orDefaultInt(c.GIF.Colors, DefaultGIFColors))
}

func (c *Compositor) fps() int {
	return orDefaultInt(c.Video.FPS, DefaultVideoFPS)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func orDefaultInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
