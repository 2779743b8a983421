// Package cache stores rendered artifacts on the local filesystem, keyed by
// the parameters that produced them.
//
// Keys are relative slash-separated file names derived by a [Keyer]. An
// entry exists exactly when the file at [Store.Path] exists: entries are
// created by renaming a fully written temporary file into place, so a
// partially written artifact is never visible under its final key.
//
//	store, _ := cache.NewFileStore(dir)
//	key := cache.NewDefaultKeyer().StillKey(req)
//	if ok, _ := store.Exists(ctx, key); !ok {
//	    res, _ := store.Reserve(key)
//	    // ... write res.TempPath ...
//	    res.Commit(ctx)
//	}
//
// Nothing in this package deletes entries on its own. Eviction is a manual
// operation ([FileStore.Clear], [FileStore.Prune]).
package cache

import (
	"context"
	"path"
	"strings"
)

// Store is the read side of the artifact cache plus atomic reservation of
// new entries.
type Store interface {
	// Exists reports whether a committed entry exists for key.
	Exists(ctx context.Context, key string) (bool, error)

	// Path returns the absolute file path of key, whether or not it exists.
	Path(key string) string

	// Reserve prepares a temporary file for key. The caller writes the
	// temporary file and then commits or aborts the reservation.
	Reserve(key string) (*Reservation, error)
}

// Key types reported to cache hooks and in cache statistics.
const (
	KeyTypeStill     = "still"
	KeyTypeFrame     = "frame"
	KeyTypeAnimation = "animation"
	KeyTypeManifest  = "manifest"
	KeyTypeOther     = "other"
)

// KeyType classifies key by its file name.
func KeyType(key string) string {
	base := path.Base(key)
	switch {
	case strings.HasPrefix(base, stillPrefix):
		return KeyTypeStill
	case strings.HasPrefix(base, framePrefix):
		return KeyTypeFrame
	case strings.HasPrefix(base, animationPrefix) && path.Ext(base) == manifestExt:
		return KeyTypeManifest
	case strings.HasPrefix(base, animationPrefix):
		return KeyTypeAnimation
	default:
		return KeyTypeOther
	}
}
