package errors

import (
	"math"
	"testing"
)

func TestValidateFinite(t *testing.T) {
	tests := []struct {
		name    string
		input   float64
		wantErr bool
	}{
		{"zero", 0, false},
		{"negative", -1.25, false},
		{"tiny", 1e-300, false},
		{"NaN", math.NaN(), true},
		{"+Inf", math.Inf(1), true},
		{"-Inf", math.Inf(-1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFinite("x", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFinite(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidParameter) {
				t.Errorf("expected INVALID_PARAMETER, got %v", GetCode(err))
			}
		})
	}
}

func TestValidatePositive(t *testing.T) {
	tests := []struct {
		input   float64
		wantErr bool
	}{
		{8, false},
		{1e-12, false},
		{0, true},
		{-8, true},
		{math.Inf(1), true},
	}

	for _, tt := range tests {
		err := ValidatePositive("w", tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePositive(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateRange(t *testing.T) {
	tests := []struct {
		name    string
		v       int
		lo, hi  int
		wantErr bool
	}{
		{"in range", 1000, 1, 100000, false},
		{"lower bound", 1, 1, 100000, false},
		{"below", 0, 1, 100000, true},
		{"above", 100001, 1, 100000, true},
		{"no upper bound", 1 << 30, 1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRange("i", tt.v, tt.lo, tt.hi)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRange(%d, %d, %d) error = %v, wantErr %v", tt.v, tt.lo, tt.hi, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRelativePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "v2", false},
		{"nested", "renderer/v2", false},
		{"with dash", "fixed-point", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"absolute", "/etc", true},
		{"path traversal ..", "foo/../bar", true},
		{"path traversal //", "foo//bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"drive letter", "C:foo", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRelativePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRelativePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
