package cli

import (
	"testing"

	"github.com/spf13/pflag"

	"github.com/matzehuels/mandelzoom/pkg/fractal"
)

func parseView(t *testing.T, defaultRes fractal.Resolution, args ...string) (fractal.Request, error) {
	t.Helper()
	var o viewOpts
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.register(fs, defaultRes)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse(%v): %v", args, err)
	}
	return o.request()
}

func TestViewRequest(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want fractal.Request
	}{
		{
			name: "defaults",
			want: fractal.DefaultRequest(fractal.Resolution1080),
		},
		{
			name: "flags",
			args: []string{"-x", "-0.5", "-y", "0.25", "-w", "0.01", "-i", "5000", "--res", "640x360"},
			want: fractal.Request{CenterX: -0.5, CenterY: 0.25, Width: 0.01, MaxIterations: 5000,
				Resolution: fractal.Resolution{Width: 640, Height: 360}},
		},
		{
			name: "view overrides flags",
			args: []string{"-x", "1", "--view", "-0.743643_0.131825_0.0001_2000"},
			want: fractal.Request{CenterX: -0.743643, CenterY: 0.131825, Width: 0.0001, MaxIterations: 2000,
				Resolution: fractal.Resolution1080},
		},
		{
			name: "click center",
			args: []string{"--click", "960,540", "--mag", "1"},
			want: fractal.Request{Width: 4, MaxIterations: 1000, Resolution: fractal.Resolution1080},
		},
		{
			name: "click top left",
			args: []string{"--click", "0, 0", "--mag", "0"},
			want: fractal.Request{CenterX: -4, CenterY: 2.25, Width: 8, MaxIterations: 1000,
				Resolution: fractal.Resolution1080},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseView(t, fractal.Resolution1080, tt.args...)
			if err != nil {
				t.Fatalf("request() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("request() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestViewRequestDefaultResolution(t *testing.T) {
	got, err := parseView(t, fractal.ResolutionGIF)
	if err != nil {
		t.Fatal(err)
	}
	if got.Resolution != fractal.ResolutionGIF {
		t.Errorf("Resolution = %v, want %v", got.Resolution, fractal.ResolutionGIF)
	}
}

func TestViewRequestErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad resolution", []string{"--res", "big"}},
		{"zero resolution", []string{"--res", "0x100"}},
		{"bad view", []string{"--view", "1_2_3"}},
		{"bad click", []string{"--click", "10"}},
		{"click not numeric", []string{"--click", "a,b"}},
		{"magnification too large", []string{"--click", "1,1", "--mag", "99"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseView(t, fractal.Resolution1080, tt.args...); err == nil {
				t.Errorf("request(%v) expected error", tt.args)
			}
		})
	}
}

func TestParsePoint(t *testing.T) {
	x, y, err := parsePoint(" 12.5 , 7 ")
	if err != nil {
		t.Fatal(err)
	}
	if x != 12.5 || y != 7 {
		t.Errorf("parsePoint() = %v, %v", x, y)
	}
}
