package zoom

import (
	"math"
	"testing"

	"github.com/matzehuels/mandelzoom/pkg/errors"
)

func TestGrowFastLaw(t *testing.T) {
	widths, err := Grow(0.8, DefaultTarget, Fast)
	if err != nil {
		t.Fatalf("Grow error: %v", err)
	}
	if len(widths) != 68 {
		t.Errorf("len = %d, want 68", len(widths))
	}
	if widths[0] != 0.8 {
		t.Errorf("first width = %v, want 0.8", widths[0])
	}
	last := widths[len(widths)-1]
	if last < DefaultTarget {
		t.Errorf("last width %v should reach the target", last)
	}
	if prev := widths[len(widths)-2]; prev >= DefaultTarget {
		t.Errorf("second to last width %v already reached the target", prev)
	}
	for i := 1; i < len(widths); i++ {
		if widths[i] <= widths[i-1] {
			t.Fatalf("widths not strictly increasing at %d: %v <= %v", i, widths[i], widths[i-1])
		}
	}

	// The step itself grows, so ratios accelerate.
	r0 := widths[1] / widths[0]
	r1 := widths[len(widths)-1] / widths[len(widths)-2]
	if r1 <= r0 {
		t.Errorf("fast zoom should accelerate: first ratio %v, last ratio %v", r0, r1)
	}
}

func TestGrowSlowOctaveEveryTwelveFrames(t *testing.T) {
	tests := []struct {
		start float64
		want  int
	}{
		{1, 36},
		{0.001, 157},
	}
	for _, tt := range tests {
		target := 7.5
		if tt.start < 1 {
			target = DefaultTarget
		}
		widths, err := Grow(tt.start, target, Slow)
		if err != nil {
			t.Fatalf("Grow(%v) error: %v", tt.start, err)
		}
		if len(widths) != tt.want {
			t.Errorf("Grow(%v) len = %d, want %d", tt.start, len(widths), tt.want)
		}
		for i := 12; i < len(widths); i++ {
			if ratio := widths[i] / widths[i-12]; math.Abs(ratio-2) > 1e-9 {
				t.Fatalf("ratio over 12 frames at %d = %v, want 2", i, ratio)
			}
		}
	}
}

func TestPlanPlaybackOrder(t *testing.T) {
	seq, err := Plan(0.8, DefaultTarget, Fast)
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	if seq[len(seq)-1].Width != 0.8 {
		t.Errorf("playback should end at the requested width, got %v", seq[len(seq)-1].Width)
	}
	if seq[0].Width < DefaultTarget {
		t.Errorf("playback should start at the full view, got %v", seq[0].Width)
	}
	for i, f := range seq {
		if f.Index != i+1 {
			t.Fatalf("frame %d has index %d", i, f.Index)
		}
		if i > 0 && f.Width >= seq[i-1].Width {
			t.Fatalf("playback widths should decrease: %v then %v", seq[i-1].Width, f.Width)
		}
	}
}

func TestBoomerangPalindrome(t *testing.T) {
	seq, err := Plan(0.5, DefaultTarget, Slow)
	if err != nil {
		t.Fatal(err)
	}
	b := seq.Boomerang()
	n := len(seq)
	if len(b) != 2*n {
		t.Fatalf("len = %d, want %d", len(b), 2*n)
	}
	for k := 1; k <= 2*n; k++ {
		f := b[k-1]
		if f.Index != k {
			t.Errorf("frame %d has index %d", k, f.Index)
		}
		if mirror := b[2*n-k]; mirror.Width != f.Width {
			t.Errorf("frame %d (%v) and frame %d (%v) should share a width", k, f.Width, 2*n+1-k, mirror.Width)
		}
	}
	for i := range seq {
		if b[i].Width != seq[i].Width {
			t.Errorf("first half should equal the plan at %d", i)
		}
	}

	if got := Sequence(nil).Boomerang(); len(got) != 0 {
		t.Errorf("empty boomerang has %d frames", len(got))
	}
}

func TestPlanEmptyRange(t *testing.T) {
	for _, start := range []float64{DefaultTarget, 9, 100} {
		for _, speed := range []Speed{Fast, Slow} {
			_, err := Plan(start, DefaultTarget, speed)
			if !errors.Is(err, errors.ErrCodeEmptyRange) {
				t.Errorf("Plan(%v, %s) error = %v, want EMPTY_RANGE", start, speed, err)
			}
			if !errors.IsRequestError(err) {
				t.Errorf("empty range should be a request error")
			}
		}
	}
}

func TestPlanRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		start  float64
		target float64
		speed  Speed
	}{
		{"zero start", 0, 8, Slow},
		{"negative start", -1, 8, Fast},
		{"NaN start", math.NaN(), 8, Fast},
		{"infinite target", 1, math.Inf(1), Slow},
		{"unknown speed", 1, 8, Speed("warp")},
		{"too many frames", 1e-300, 8, Slow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Plan(tt.start, tt.target, tt.speed)
			if !errors.IsRequestError(err) {
				t.Errorf("expected request error, got %v", err)
			}
		})
	}
}

func TestParseSpeed(t *testing.T) {
	if s, err := ParseSpeed(" FAST "); err != nil || s != Fast {
		t.Errorf("ParseSpeed = %v, %v", s, err)
	}
	if _, err := ParseSpeed("medium"); err == nil {
		t.Error("ParseSpeed should reject unknown speeds")
	}
}

func TestPlanDeterministic(t *testing.T) {
	a, _ := Plan(1e-6, DefaultTarget, Fast)
	b, _ := Plan(1e-6, DefaultTarget, Fast)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("frame %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}
