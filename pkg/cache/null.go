package cache

import "context"

// NullStore wraps a Store and reports every entry as missing, so every
// request is rendered again and overwrites the stored entry. Used by
// --force.
type NullStore struct {
	Store
}

// NewNullStore creates a null store over inner.
func NewNullStore(inner Store) Store {
	return &NullStore{Store: inner}
}

// Exists always returns a cache miss.
func (s *NullStore) Exists(ctx context.Context, key string) (bool, error) {
	return false, nil
}

// Ensure NullStore implements Store.
var _ Store = (*NullStore)(nil)
