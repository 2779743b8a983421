package composite

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matzehuels/mandelzoom/pkg/errors"
)

// ManifestContent renders the frame list in the format the codec's encoder
// reads.
//
// GIF manifests hold one double-quoted path per line, since ImageMagick
// splits @file lists on whitespace. Video manifests use the ffmpeg concat
// demuxer syntax with a per-frame duration of 1/fps:
//
//	file '/cache/frames/1280x720/frame_0_0_8_1000.png'
//	duration 0.03333333333333333
//
// Paths must pass CheckManifestPaths first.
func ManifestContent(frames []string, codec Codec, fps int) []byte {
	var buf bytes.Buffer
	for _, f := range frames {
		switch codec {
		case Video:
			fmt.Fprintf(&buf, "file '%s'\n", strings.ReplaceAll(f, "'", `'\''`))
			fmt.Fprintf(&buf, "duration %s\n", strconv.FormatFloat(1/float64(fps), 'g', -1, 64))
		default:
			fmt.Fprintf(&buf, "\"%s\"\n", f)
		}
	}
	return buf.Bytes()
}

// CheckManifestPaths rejects frame paths the codec's manifest cannot
// represent: line breaks for both codecs and double quotes for GIF.
func CheckManifestPaths(frames []string, codec Codec) error {
	bad := "\r\n"
	if codec != Video {
		bad += `"`
	}
	for _, f := range frames {
		if strings.ContainsAny(f, bad) {
			return errors.New(errors.ErrCodeInvalidPath, "frame path %q cannot be listed in a %s manifest", f, codec)
		}
	}
	return nil
}

// WriteManifest writes the manifest for frames to path. The content is a
// pure function of its inputs, and the file is replaced atomically, so
// concurrent writers of the same manifest cannot interleave.
func WriteManifest(path string, frames []string, codec Codec, fps int) error {
	dir := filepath.Dir(path)
	if err := CheckManifestPaths(frames, codec); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create manifest dir")
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create manifest")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(ManifestContent(frames, codec, fps)); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeInternal, err, "write manifest")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write manifest")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "commit manifest")
	}
	return nil
}
