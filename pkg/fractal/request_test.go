package fractal

import (
	"context"
	"math"
	"reflect"
	"testing"

	"github.com/matzehuels/mandelzoom/pkg/errors"
	"github.com/matzehuels/mandelzoom/pkg/procrun"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{8, "8"},
		{0.8, "0.8"},
		{-0.5671, "-0.5671"},
		{1e-10, "1e-10"},
		{0.1 + 0.2, "0.30000000000000004"},
	}

	for _, tt := range tests {
		if got := FormatFloat(tt.in); got != tt.want {
			t.Errorf("FormatFloat(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatFloatDistinctValuesStayDistinct(t *testing.T) {
	a := 0.3
	b := math.Nextafter(a, 1)
	if FormatFloat(a) == FormatFloat(b) {
		t.Errorf("adjacent floats collapsed onto %q", FormatFloat(a))
	}
}

func TestParseParams(t *testing.T) {
	req, err := ParseParams("0", "-0.25", "8", "1000", Resolution1080)
	if err != nil {
		t.Fatalf("ParseParams error: %v", err)
	}
	want := Request{CenterX: 0, CenterY: -0.25, Width: 8, MaxIterations: 1000, Resolution: Resolution1080}
	if req != want {
		t.Errorf("ParseParams = %+v, want %+v", req, want)
	}

	bad := []struct {
		name       string
		x, y, w, i string
	}{
		{"missing x", "", "0", "8", "1000"},
		{"non-numeric y", "0", "abc", "8", "1000"},
		{"non-integer i", "0", "0", "8", "10.5"},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseParams(tt.x, tt.y, tt.w, tt.i, Resolution1080)
			if !errors.IsRequestError(err) {
				t.Errorf("expected request error, got %v", err)
			}
		})
	}
}

func TestRequestValidate(t *testing.T) {
	base := DefaultRequest(Resolution1080)
	tests := []struct {
		name    string
		mutate  func(*Request)
		wantErr bool
	}{
		{"default", func(*Request) {}, false},
		{"NaN x", func(r *Request) { r.CenterX = math.NaN() }, true},
		{"Inf y", func(r *Request) { r.CenterY = math.Inf(-1) }, true},
		{"zero width", func(r *Request) { r.Width = 0 }, true},
		{"negative width", func(r *Request) { r.Width = -1 }, true},
		{"zero iterations", func(r *Request) { r.MaxIterations = 0 }, true},
		{"too many iterations", func(r *Request) { r.MaxIterations = 2_000_000 }, true},
		{"zero resolution", func(r *Request) { r.Resolution = Resolution{} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			err := req.Validate(1_000_000)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.IsRequestError(err) {
				t.Errorf("Validate() should return a request error, got %v", err)
			}
		})
	}
}

func TestHashRoundTrip(t *testing.T) {
	req := Request{CenterX: -0.5671, CenterY: -0.56698, Width: 0.2, MaxIterations: 10000, Resolution: Resolution1080}
	hash := req.Hash()
	if hash != "-0.5671_-0.56698_0.2_10000" {
		t.Errorf("Hash() = %q", hash)
	}

	parsed, err := ParseHash("#"+hash, Resolution1080)
	if err != nil {
		t.Fatalf("ParseHash error: %v", err)
	}
	if parsed != req {
		t.Errorf("ParseHash = %+v, want %+v", parsed, req)
	}

	if _, err := ParseHash("0_0_8", Resolution1080); err == nil {
		t.Error("ParseHash should reject three fields")
	}
}

func TestParseResolution(t *testing.T) {
	tests := []struct {
		in      string
		want    Resolution
		wantErr bool
	}{
		{"1920x1080", Resolution1080, false},
		{" 480X270 ", ResolutionGIF, false},
		{"1920", Resolution{}, true},
		{"0x10", Resolution{}, true},
		{"axb", Resolution{}, true},
		{"99999x10", Resolution{}, true},
	}

	for _, tt := range tests {
		got, err := ParseResolution(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseResolution(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseResolution(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseVariant(t *testing.T) {
	for _, s := range []string{"still", "fast", "SLOW"} {
		if _, err := ParseVariant(s); err != nil {
			t.Errorf("ParseVariant(%q) error: %v", s, err)
		}
	}
	if _, err := ParseVariant("medium"); err == nil {
		t.Error("ParseVariant should reject unknown variants")
	}
	if VariantStill.IsAnimation() || !VariantFast.IsAnimation() || !VariantSlow.IsAnimation() {
		t.Error("IsAnimation mismatch")
	}
}

func TestZoomAt(t *testing.T) {
	req := DefaultRequest(Resolution1080)

	tests := []struct {
		name      string
		ox, oy    float64
		mag       int
		wantX     float64
		wantY     float64
		wantWidth float64
	}{
		{"center", 960, 540, 1, 0, 0, 4},
		{"bottom left", 0, 1080, 0, -4, -2.25, 8},
		{"top left", 0, 0, 3, -4, 2.25, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := req.ZoomAt(tt.ox, tt.oy, tt.mag)
			if err != nil {
				t.Fatalf("ZoomAt error: %v", err)
			}
			if math.Abs(got.CenterX-tt.wantX) > 1e-12 || math.Abs(got.CenterY-tt.wantY) > 1e-12 {
				t.Errorf("center = (%v, %v), want (%v, %v)", got.CenterX, got.CenterY, tt.wantX, tt.wantY)
			}
			if got.Width != tt.wantWidth {
				t.Errorf("width = %v, want %v", got.Width, tt.wantWidth)
			}
			if got.MaxIterations != req.MaxIterations || got.Resolution != req.Resolution {
				t.Error("ZoomAt should keep iterations and resolution")
			}
		})
	}

	if _, err := req.ZoomAt(0, 0, MaxMagnification+1); err == nil {
		t.Error("ZoomAt should reject oversized magnification")
	}
}

func TestZoomLevel(t *testing.T) {
	tests := []struct {
		width float64
		want  float64
	}{
		{DefaultWidth, 0},
		{4, 1},
		{1, 3},
		{DefaultWidth / 1024, 10},
	}
	for _, tt := range tests {
		if got := DefaultRequest(Resolution1080).WithWidth(tt.width).Zoom(); got != tt.want {
			t.Errorf("Zoom() at width %v = %v, want %v", tt.width, got, tt.want)
		}
	}
}

func TestHeight(t *testing.T) {
	if h := DefaultRequest(Resolution1080).Height(); h != 4.5 {
		t.Errorf("Height() = %v, want 4.5", h)
	}
}

func TestArgs(t *testing.T) {
	req := DefaultRequest(Resolution1080)
	got := Args(req, "/cache/out.png")
	want := []string{"-o", "/cache/out.png", "-x", "0", "-y", "0", "-w", "8", "-i", "1000", "-W", "1920", "-H", "1080"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Args() = %q, want %q", got, want)
	}
}

type recordingExec struct {
	calls []procrun.Invocation
	err   error
}

func (r *recordingExec) Run(_ context.Context, inv procrun.Invocation) error {
	r.calls = append(r.calls, inv)
	return r.err
}

func TestRendererRender(t *testing.T) {
	exec := &recordingExec{}
	r := NewRenderer("", exec)
	if r.Executable != DefaultExecutable {
		t.Errorf("Executable = %q, want %q", r.Executable, DefaultExecutable)
	}

	if err := r.Render(context.Background(), DefaultRequest(Resolution1080), "out.png"); err != nil {
		t.Fatalf("Render error: %v", err)
	}
	if len(exec.calls) != 1 || exec.calls[0].Executable != DefaultExecutable {
		t.Fatalf("unexpected calls: %+v", exec.calls)
	}

	exec.err = &procrun.ProcessFailure{ExitCode: 2}
	err := r.Render(context.Background(), DefaultRequest(Resolution1080), "out.png")
	if !errors.IsRenderFailure(err) {
		t.Errorf("expected RENDER_FAILED, got %v", err)
	}
	if code, ok := procrun.ExitCode(err); !ok || code != 2 {
		t.Errorf("exit code should survive wrapping, got %d, %v", code, ok)
	}
}
