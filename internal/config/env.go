package config

import "os"

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "MANDELZOOM_"

// ApplyEnvConfig applies MANDELZOOM_* environment variables to cfg, skipping
// settings whose flag changed.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString(FlagCacheDir, env("CACHE_DIR"), &cfg.CacheDir)
	s.setString(FlagNamespace, env("NAMESPACE"), &cfg.Namespace)
	s.setString(FlagRenderer, env("RENDERER"), &cfg.Renderer)
	s.setString(FlagGIFEncoder, env("GIF_ENCODER"), &cfg.GIFEncoder)
	s.setString(FlagVideoEncoder, env("VIDEO_ENCODER"), &cfg.VideoEncoder)
	s.setString(FlagListen, env("LISTEN"), &cfg.Listen)
	s.setString(FlagVideoPreset, env("VIDEO_PRESET"), &cfg.VideoPreset)
	s.setString(FlagMetricsExporter, env("METRICS_EXPORTER"), &cfg.MetricsExporter)
	s.setString(FlagTracingExporter, env("TRACING_EXPORTER"), &cfg.TracingExporter)

	if err := s.setBoolFromString(FlagCoalesce, env("COALESCE"), &cfg.Coalesce); err != nil {
		return err
	}
	if err := s.setDuration(FlagProcessTimeout, env("PROCESS_TIMEOUT"), &cfg.ProcessTimeout); err != nil {
		return err
	}
	if err := s.setFloatFromString(FlagTarget, env("TARGET_WIDTH"), &cfg.TargetWidth); err != nil {
		return err
	}

	ints := []struct {
		flag, name string
		dst        *int
	}{
		{FlagMaxProcesses, "MAX_PROCESSES", &cfg.MaxProcesses},
		{FlagMaxIterations, "MAX_ITERATIONS", &cfg.MaxIterations},
		{FlagGIFDelay, "GIF_DELAY", &cfg.GIFDelay},
		{FlagGIFColors, "GIF_COLORS", &cfg.GIFColors},
		{FlagVideoFPS, "VIDEO_FPS", &cfg.VideoFPS},
		{FlagVideoCRF, "VIDEO_CRF", &cfg.VideoCRF},
	}
	for _, v := range ints {
		if err := s.setIntFromString(v.flag, env(v.name), v.dst); err != nil {
			return err
		}
	}
	return nil
}

func env(name string) string {
	return os.Getenv(EnvPrefix + name)
}
