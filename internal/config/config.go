// Package config resolves mandelzoom settings from defaults, a TOML file,
// MANDELZOOM_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/matzehuels/mandelzoom/pkg/composite"
	"github.com/matzehuels/mandelzoom/pkg/errors"
	"github.com/matzehuels/mandelzoom/pkg/fractal"
	"github.com/matzehuels/mandelzoom/pkg/observability"
	"github.com/matzehuels/mandelzoom/pkg/pipeline"
	"github.com/matzehuels/mandelzoom/pkg/server"
)

// AppName names the config and cache directories.
const AppName = "mandelzoom"

// DefaultListen is the default HTTP listen address.
const DefaultListen = "127.0.0.1:8080"

// Config holds all resolved settings.
type Config struct {
	CacheDir     string
	Namespace    string
	Renderer     string
	GIFEncoder   string
	VideoEncoder string
	Listen       string

	Coalesce       bool
	MaxProcesses   int
	ProcessTimeout time.Duration
	MaxIterations  int
	TargetWidth    float64

	GIFDelay    int
	GIFColors   int
	VideoFPS    int
	VideoPreset string
	VideoCRF    int

	MetricsExporter string
	TracingExporter string

	Endpoints []server.Endpoint
}

// DefaultConfig returns a Config with default values. CacheDir is left empty
// and derived during Validate.
func DefaultConfig() Config {
	return Config{
		Renderer:        fractal.DefaultExecutable,
		GIFEncoder:      composite.DefaultGIFEncoder,
		VideoEncoder:    composite.DefaultVideoEncoder,
		Listen:          DefaultListen,
		Coalesce:        true,
		MaxIterations:   pipeline.DefaultMaxIterations,
		TargetWidth:     pipeline.DefaultTarget,
		GIFDelay:        composite.DefaultGIFDelay,
		GIFColors:       composite.DefaultGIFColors,
		VideoFPS:        composite.DefaultVideoFPS,
		VideoPreset:     composite.DefaultVideoPreset,
		VideoCRF:        composite.DefaultVideoCRF,
		MetricsExporter: observability.ExporterNone,
		TracingExporter: observability.ExporterNone,
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.CacheDir == "" {
		dir, err := DefaultCacheDir()
		if err != nil {
			return fmt.Errorf("cache dir: %w", err)
		}
		c.CacheDir = dir
	}
	if c.Namespace != "" {
		if err := errors.ValidateRelativePath(c.Namespace); err != nil {
			return fmt.Errorf("namespace: %w", err)
		}
	}
	if c.Renderer == "" {
		return fmt.Errorf("renderer is required")
	}
	if c.GIFEncoder == "" || c.VideoEncoder == "" {
		return fmt.Errorf("gif and video encoders are required")
	}
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.MaxProcesses < 0 {
		return fmt.Errorf("max processes must not be negative")
	}
	if c.ProcessTimeout < 0 {
		return fmt.Errorf("process timeout must not be negative")
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("max iterations must not be negative")
	}
	if c.TargetWidth <= 0 {
		return fmt.Errorf("target width must be positive")
	}
	if c.GIFDelay <= 0 {
		return fmt.Errorf("gif delay must be positive")
	}
	if c.GIFColors < 2 || c.GIFColors > 256 {
		return fmt.Errorf("gif colors must be between 2 and 256, got %d", c.GIFColors)
	}
	if c.VideoFPS <= 0 {
		return fmt.Errorf("video fps must be positive")
	}
	if c.VideoCRF < 0 || c.VideoCRF > 51 {
		return fmt.Errorf("video crf must be between 0 and 51, got %d", c.VideoCRF)
	}
	if err := c.Telemetry().Validate(); err != nil {
		return err
	}
	if len(c.Endpoints) == 0 {
		c.Endpoints = server.DefaultEndpoints()
	}
	return server.ValidateEndpoints(c.Endpoints)
}

// Telemetry returns the observability settings.
func (c *Config) Telemetry() observability.Config {
	return observability.Config{
		ServiceName:     AppName,
		MetricsExporter: c.MetricsExporter,
		TracingExporter: c.TracingExporter,
	}
}

// Tools lists the external executables the configuration refers to.
func (c *Config) Tools() []string {
	return []string{c.Renderer, c.GIFEncoder, c.VideoEncoder}
}

// DefaultCacheDir returns the cache directory using the XDG standard
// (~/.cache/mandelzoom/).
func DefaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// DefaultConfigPath returns the default config file location
// (~/.config/mandelzoom/config.toml), or "" if no home directory is known.
func DefaultConfigPath() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, AppName, "config.toml")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", AppName, "config.toml")
	}
	return ""
}

// Resolve layers the config file at path and the environment onto cfg,
// skipping every setting whose flag appears in changed, then validates the
// result. An empty path selects DefaultConfigPath, which may be absent; an
// explicit path must exist.
func Resolve(cfg *Config, path string, changed map[string]bool) error {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}
	if path != "" && (explicit || FileExists(path)) {
		fc, err := LoadFileConfig(path)
		if err != nil {
			return fmt.Errorf("load config %s: %w", path, err)
		}
		if err := ApplyFileConfig(cfg, fc, changed); err != nil {
			return fmt.Errorf("config %s: %w", path, err)
		}
	}
	if err := ApplyEnvConfig(cfg, changed); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	return cfg.Validate()
}

// configSetter applies values while respecting flag precedence: a value is
// only applied if the corresponding flag was not set explicitly.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setInt(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

func (s *configSetter) setFloat(flag string, value float64, dst *float64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = f
	return nil
}

func (s *configSetter) setBoolFromString(flag, value string, dst *bool) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = b
	return nil
}
