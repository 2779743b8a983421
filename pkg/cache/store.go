package cache

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/mandelzoom/pkg/errors"
	"github.com/matzehuels/mandelzoom/pkg/observability"
)

// tempMarker separates the entry name from the random suffix of a reserved
// temporary file: frame_0_0_8_1000.tmp-<uuid>.png.
const tempMarker = ".tmp-"

// FileStore stores entries as plain files under a root directory.
type FileStore struct {
	root string
}

// NewFileStore creates a file store rooted at dir.
// The directory will be created if it doesn't exist.
func NewFileStore(dir string) (*FileStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "resolve cache dir %s", dir)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create cache dir %s", abs)
	}
	return &FileStore{root: abs}, nil
}

// Root returns the cache root directory.
func (s *FileStore) Root() string {
	return s.root
}

// Path implements Store.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

// Exists implements Store. Only regular files count as entries.
func (s *FileStore) Exists(ctx context.Context, key string) (bool, error) {
	info, err := os.Stat(s.Path(key))
	switch {
	case err == nil && info.Mode().IsRegular():
		observability.Cache().OnCacheHit(ctx, KeyType(key))
		return true, nil
	case err == nil, os.IsNotExist(err):
		observability.Cache().OnCacheMiss(ctx, KeyType(key))
		return false, nil
	default:
		return false, errors.Wrap(errors.ErrCodeInternal, err, "stat cache entry %s", key)
	}
}

// Reserve implements Store. The temporary file lives in the destination
// directory and keeps the entry's extension, so external tools that infer
// the format from the name write the right thing and the final rename never
// crosses a filesystem.
func (s *FileStore) Reserve(key string) (*Reservation, error) {
	final := s.Path(key)
	if err := os.MkdirAll(filepath.Dir(final), 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create cache dir for %s", key)
	}
	ext := filepath.Ext(final)
	tmp := strings.TrimSuffix(final, ext) + tempMarker + uuid.NewString() + ext
	return &Reservation{Key: key, TempPath: tmp, final: final}, nil
}

// Reservation is a pending cache entry.
type Reservation struct {
	Key      string
	TempPath string
	final    string
}

// Commit atomically publishes the temporary file under its key.
// It fails if nothing was written to TempPath.
func (r *Reservation) Commit(ctx context.Context) error {
	info, err := os.Stat(r.TempPath)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "no output written for %s", r.Key)
	}
	if err := os.Rename(r.TempPath, r.final); err != nil {
		_ = os.Remove(r.TempPath)
		return errors.Wrap(errors.ErrCodeInternal, err, "commit cache entry %s", r.Key)
	}
	observability.Cache().OnCacheSet(ctx, KeyType(r.Key), info.Size())
	return nil
}

// Abort discards the temporary file, if any.
func (r *Reservation) Abort() {
	_ = os.Remove(r.TempPath)
}

// Entry describes one file under the cache root.
type Entry struct {
	Key     string
	Type    string
	Size    int64
	ModTime time.Time
	Temp    bool // leftover of an interrupted write
}

// Walk calls fn for every file under the cache root in lexical order.
func (s *FileStore) Walk(fn func(Entry) error) error {
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		return fn(Entry{
			Key:     key,
			Type:    KeyType(key),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Temp:    strings.Contains(path.Base(key), tempMarker),
		})
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "walk cache %s", s.root)
	}
	return nil
}

// TypeStats aggregates entries of one key type.
type TypeStats struct {
	Count int
	Bytes int64
}

// Stats summarizes the cache contents.
type Stats struct {
	Root    string
	Entries int
	Bytes   int64
	Temp    int
	ByType  map[string]TypeStats
	Oldest  time.Time
	Newest  time.Time
}

// Stats walks the cache and summarizes its contents.
func (s *FileStore) Stats() (Stats, error) {
	st := Stats{Root: s.root, ByType: make(map[string]TypeStats)}
	err := s.Walk(func(e Entry) error {
		if e.Temp {
			st.Temp++
			return nil
		}
		st.Entries++
		st.Bytes += e.Size
		ts := st.ByType[e.Type]
		ts.Count++
		ts.Bytes += e.Size
		st.ByType[e.Type] = ts
		if st.Oldest.IsZero() || e.ModTime.Before(st.Oldest) {
			st.Oldest = e.ModTime
		}
		if e.ModTime.After(st.Newest) {
			st.Newest = e.ModTime
		}
		return nil
	})
	return st, err
}

// Clear removes every entry and leaves an empty root directory.
func (s *FileStore) Clear() error {
	items, err := os.ReadDir(s.root)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "read cache %s", s.root)
	}
	for _, item := range items {
		if err := os.RemoveAll(filepath.Join(s.root, item.Name())); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "clear cache %s", s.root)
		}
	}
	return nil
}

// PruneResult reports what Prune removed.
type PruneResult struct {
	Removed int
	Bytes   int64
}

// Prune removes entries, and leftover temporary files, last modified
// before cutoff.
func (s *FileStore) Prune(cutoff time.Time) (PruneResult, error) {
	var res PruneResult
	err := s.Walk(func(e Entry) error {
		if !e.ModTime.Before(cutoff) {
			return nil
		}
		if err := os.Remove(s.Path(e.Key)); err != nil && !os.IsNotExist(err) {
			return err
		}
		res.Removed++
		res.Bytes += e.Size
		return nil
	})
	return res, err
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)
