package cache

import (
	"path"

	"github.com/matzehuels/mandelzoom/pkg/errors"
	"github.com/matzehuels/mandelzoom/pkg/fractal"
)

// ScopedKeyer wraps a Keyer with a namespace directory. This is useful when
// several renderer builds share one cache root and must not reuse each
// other's pixels.
//
// Example usage:
//
//	// Keys for an experimental renderer build
//	keyer, err := NewScopedKeyer(NewDefaultKeyer(), "renderer-v2")
//	keyer.StillKey(req) // "renderer-v2/mandelbrot_0_0_8_1000_1920x1080.png"
type ScopedKeyer struct {
	inner     Keyer
	namespace string
}

// NewScopedKeyer creates a keyer rooted at namespace, which must be a
// relative path that stays inside the cache root.
func NewScopedKeyer(inner Keyer, namespace string) (Keyer, error) {
	if err := errors.ValidateRelativePath(namespace); err != nil {
		return nil, err
	}
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:     inner,
		namespace: path.Clean(namespace),
	}, nil
}

// StillKey generates a namespaced still key.
func (k *ScopedKeyer) StillKey(req fractal.Request) string {
	return path.Join(k.namespace, k.inner.StillKey(req))
}

// FrameKey generates a namespaced frame key.
func (k *ScopedKeyer) FrameKey(req fractal.Request) string {
	return path.Join(k.namespace, k.inner.FrameKey(req))
}

// AnimationKey generates a namespaced animation key.
func (k *ScopedKeyer) AnimationKey(req fractal.Request, opts AnimationKeyOpts) string {
	return path.Join(k.namespace, k.inner.AnimationKey(req, opts))
}
