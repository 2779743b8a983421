package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ETag returns a strong entity tag for key. Entries are immutable once
// committed, so the key alone identifies the content.
func ETag(key string) string {
	return `"` + Hash([]byte(key))[:32] + `"`
}
