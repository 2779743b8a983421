package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mandelzoom/internal/config"
	"github.com/matzehuels/mandelzoom/pkg/buildinfo"
	"github.com/matzehuels/mandelzoom/pkg/cache"
	"github.com/matzehuels/mandelzoom/pkg/observability"
	"github.com/matzehuels/mandelzoom/pkg/pipeline"
	"github.com/matzehuels/mandelzoom/pkg/procrun"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// cfg receives flag values and is completed from the config file and
	// environment before any command runs.
	cfg        config.Config
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Runner Factory
// =============================================================================

// app bundles the components built from the resolved configuration.
type app struct {
	store     *cache.FileStore
	runner    *pipeline.Runner
	telemetry *observability.Telemetry
}

// newApp builds the cache store, process runner and orchestrator. With force
// set, cached entries are ignored and every artifact is produced again.
func (c *CLI) newApp(ctx context.Context, force bool) (*app, error) {
	logger := loggerFromContext(ctx)

	store, err := cache.NewFileStore(c.cfg.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	tcfg := c.cfg.Telemetry()
	tcfg.Version = buildinfo.Version
	tel, err := observability.Setup(ctx, tcfg)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	exec := procrun.New(procrun.Options{
		Logger:       logger,
		Timeout:      c.cfg.ProcessTimeout,
		MaxProcesses: int64(c.cfg.MaxProcesses),
	})

	var s cache.Store = store
	if force {
		s = cache.NewNullStore(store)
	}
	keyer, err := c.keyer()
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(s, exec, logger)
	runner.Keyer = keyer
	runner.Renderer.Executable = c.cfg.Renderer
	runner.Inflight = cache.NewInflight(c.cfg.Coalesce)
	runner.MaxIterations = c.cfg.MaxIterations

	comp := runner.Compositor
	comp.GIFEncoder = c.cfg.GIFEncoder
	comp.VideoEncoder = c.cfg.VideoEncoder
	comp.GIF.Delay = c.cfg.GIFDelay
	comp.GIF.Colors = c.cfg.GIFColors
	comp.Video.FPS = c.cfg.VideoFPS
	comp.Video.Preset = c.cfg.VideoPreset
	comp.Video.CRF = c.cfg.VideoCRF

	return &app{store: store, runner: runner, telemetry: tel}, nil
}

// keyer returns the cache keyer, scoped to the configured namespace if any.
func (c *CLI) keyer() (cache.Keyer, error) {
	if c.cfg.Namespace == "" {
		return cache.NewDefaultKeyer(), nil
	}
	k, err := cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.cfg.Namespace)
	if err != nil {
		return nil, fmt.Errorf("namespace: %w", err)
	}
	return k, nil
}

// close flushes telemetry.
func (a *app) close(ctx context.Context) {
	if err := a.telemetry.Shutdown(context.WithoutCancel(ctx)); err != nil {
		loggerFromContext(ctx).Warn("telemetry shutdown", "err", err)
	}
}
