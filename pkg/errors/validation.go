package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateFinite rejects NaN and ±Inf. Keys are derived from the decimal
// form of every parameter, so a non-finite value can never be encoded.
func ValidateFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidParameter, "%s must be a finite number, got %v", name, v)
	}
	return nil
}

// ValidatePositive rejects non-finite, zero and negative values.
func ValidatePositive(name string, v float64) error {
	if err := ValidateFinite(name, v); err != nil {
		return err
	}
	if v <= 0 {
		return New(ErrCodeInvalidParameter, "%s must be positive, got %g", name, v)
	}
	return nil
}

// ValidateRange rejects integers outside [lo, hi]. hi <= 0 means no upper bound.
func ValidateRange(name string, v, lo, hi int) error {
	if v < lo {
		return New(ErrCodeInvalidParameter, "%s must be at least %d, got %d", name, lo, v)
	}
	if hi > 0 && v > hi {
		return New(ErrCodeInvalidParameter, "%s must be at most %d, got %d", name, hi, v)
	}
	return nil
}

// ValidateRelativePath validates a cache-relative path segment such as a key
// namespace. It rejects anything that could escape the cache root.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No absolute paths or path traversal sequences (.., //, etc.)
//   - Maximum length of 256 characters
func ValidateRelativePath(p string) error {
	if p == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	if len(p) > 256 {
		return New(ErrCodeInvalidPath, "path too long (max 256 characters)")
	}

	for _, r := range p {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid control characters")
		}
	}

	if strings.HasPrefix(p, "/") {
		return New(ErrCodeInvalidPath, "path must be relative: %q", p)
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
		":",    // Drive letters / schemes
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(p, pattern) {
			return New(ErrCodeInvalidPath, "path contains invalid characters: %q", pattern)
		}
	}

	return nil
}
