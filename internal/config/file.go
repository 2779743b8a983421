package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/mandelzoom/pkg/server"
)

// Flag names. File and environment values for a setting are ignored when its
// flag was set on the command line.
const (
	FlagCacheDir        = "cache-dir"
	FlagNamespace       = "namespace"
	FlagRenderer        = "renderer"
	FlagGIFEncoder      = "gif-encoder"
	FlagVideoEncoder    = "video-encoder"
	FlagListen          = "listen"
	FlagCoalesce        = "coalesce"
	FlagMaxProcesses    = "max-processes"
	FlagProcessTimeout  = "process-timeout"
	FlagMaxIterations   = "max-iterations"
	FlagTarget          = "target"
	FlagGIFDelay        = "gif-delay"
	FlagGIFColors       = "gif-colors"
	FlagVideoFPS        = "fps"
	FlagVideoPreset     = "preset"
	FlagVideoCRF        = "crf"
	FlagMetricsExporter = "metrics"
	FlagTracingExporter = "tracing"
)

// FileConfig mirrors Config in TOML form. Durations are strings and
// optional numbers are pointers so an explicit zero can be told from an
// absent key.
type FileConfig struct {
	CacheDir        string            `toml:"cache_dir"`
	Namespace       string            `toml:"namespace"`
	Renderer        string            `toml:"renderer"`
	GIFEncoder      string            `toml:"gif_encoder"`
	VideoEncoder    string            `toml:"video_encoder"`
	Listen          string            `toml:"listen"`
	Coalesce        *bool             `toml:"coalesce"`
	MaxProcesses    *int              `toml:"max_processes"`
	ProcessTimeout  string            `toml:"process_timeout"`
	MaxIterations   *int              `toml:"max_iterations"`
	TargetWidth     float64           `toml:"target_width"`
	GIFDelay        *int              `toml:"gif_delay"`
	GIFColors       *int              `toml:"gif_colors"`
	VideoFPS        *int              `toml:"video_fps"`
	VideoPreset     string            `toml:"video_preset"`
	VideoCRF        *int              `toml:"video_crf"`
	MetricsExporter string            `toml:"metrics_exporter"`
	TracingExporter string            `toml:"tracing_exporter"`
	Endpoints       []server.Endpoint `toml:"endpoint"`
}

// LoadFileConfig reads and parses a TOML config file. Unknown keys are an
// error so that typos do not silently fall back to defaults.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	meta, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return fc, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return fc, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return fc, nil
}

// ApplyFileConfig applies fc to cfg, skipping settings whose flag changed.
// Endpoint tables replace the default route table as a whole.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString(FlagCacheDir, fc.CacheDir, &cfg.CacheDir)
	s.setString(FlagNamespace, fc.Namespace, &cfg.Namespace)
	s.setString(FlagRenderer, fc.Renderer, &cfg.Renderer)
	s.setString(FlagGIFEncoder, fc.GIFEncoder, &cfg.GIFEncoder)
	s.setString(FlagVideoEncoder, fc.VideoEncoder, &cfg.VideoEncoder)
	s.setString(FlagListen, fc.Listen, &cfg.Listen)
	s.setString(FlagVideoPreset, fc.VideoPreset, &cfg.VideoPreset)
	s.setString(FlagMetricsExporter, fc.MetricsExporter, &cfg.MetricsExporter)
	s.setString(FlagTracingExporter, fc.TracingExporter, &cfg.TracingExporter)

	s.setBool(FlagCoalesce, fc.Coalesce, &cfg.Coalesce)

	s.setInt(FlagMaxProcesses, fc.MaxProcesses, &cfg.MaxProcesses)
	s.setInt(FlagMaxIterations, fc.MaxIterations, &cfg.MaxIterations)
	s.setInt(FlagGIFDelay, fc.GIFDelay, &cfg.GIFDelay)
	s.setInt(FlagGIFColors, fc.GIFColors, &cfg.GIFColors)
	s.setInt(FlagVideoFPS, fc.VideoFPS, &cfg.VideoFPS)
	s.setInt(FlagVideoCRF, fc.VideoCRF, &cfg.VideoCRF)

	s.setFloat(FlagTarget, fc.TargetWidth, &cfg.TargetWidth)

	if err := s.setDuration(FlagProcessTimeout, fc.ProcessTimeout, &cfg.ProcessTimeout); err != nil {
		return err
	}

	if len(fc.Endpoints) > 0 {
		cfg.Endpoints = fc.Endpoints
	}
	return nil
}

// FileExists reports whether a file exists at p.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
