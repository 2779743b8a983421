package cache

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/mandelzoom/pkg/observability"
)

// Inflight coalesces concurrent work on the same key: while fn runs for a
// key, further callers for that key wait for its result instead of starting
// their own run. A disabled Inflight runs every call.
type Inflight struct {
	enabled bool
	group   singleflight.Group
}

// NewInflight creates a registry. With enabled false, Do calls fn directly.
func NewInflight(enabled bool) *Inflight {
	return &Inflight{enabled: enabled}
}

// Do runs fn once per key among concurrent callers. shared reports whether
// the result was delivered to more than one caller. A waiting caller whose ctx is
// cancelled returns ctx.Err() and leaves the run in progress.
func (f *Inflight) Do(ctx context.Context, key string, fn func() error) (shared bool, err error) {
	if f == nil || !f.enabled {
		return false, fn()
	}

	ch := f.group.DoChan(key, func() (any, error) {
		return nil, fn()
	})
	select {
	case res := <-ch:
		if res.Shared {
			observability.Cache().OnCoalesced(ctx, KeyType(key))
		}
		return res.Shared, res.Err
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
