// Package pkg provides the libraries behind mandelzoom, a render cache and
// zoom-animation pipeline in front of an external Mandelbrot renderer.
//
// # Overview
//
// Mandelzoom never computes a pixel itself. Stills and animation frames are
// produced by running a renderer executable; animations are assembled by an
// external encoder (ImageMagick convert for GIF, ffmpeg for MP4). What the
// packages add is the bookkeeping around those processes: deterministic cache
// keys, atomic cache writes, frame planning, coalescing of identical work and
// a uniform error taxonomy.
//
// # Architecture
//
// The data flow for one request:
//
//	query / flags
//	     ↓
//	[fractal] Request (x, y, w, i, WxH)
//	     ↓
//	[pipeline] Runner ── [cache] lookup ── hit → done
//	     ↓ miss
//	[zoom] Plan (animations only)
//	     ↓
//	[fractal] Renderer per frame via [procrun]
//	     ↓
//	[composite] manifest + encoder via [procrun]
//	     ↓
//	[cache] commit → artifact path
//
// # Main Packages
//
// [fractal] - Render parameters, resolutions, the browser hash form and the
// renderer invocation.
//
// [cache] - Cache keys, the file store with reserve/commit/abort writes,
// single-flight coalescing, statistics and pruning.
//
// [zoom] - Frame-width planning for fast and slow zooms, and the boomerang
// playback order.
//
// [composite] - Frame manifests and encoder invocations for GIF and MP4.
//
// [procrun] - External process execution with line-wise log streaming,
// timeouts and a process concurrency limit.
//
// [pipeline] - The orchestrator tying the above together, with state
// tracking and per-frame progress.
//
// [server] - The HTTP surface: render endpoints, artifact serving, health
// and metrics.
//
// [observability] - Hook interfaces and the OpenTelemetry metrics and
// tracing setup.
//
// [errors] - Error codes shared by every package and their HTTP mapping.
//
// # Quick Start
//
//	store, _ := cache.NewFileStore(dir)
//	runner := pipeline.NewRunner(store, procrun.New(procrun.Options{}), logger)
//	res, err := runner.Execute(ctx, pipeline.Job{
//	    Request: fractal.DefaultRequest(fractal.ResolutionGIF).WithWidth(0.01),
//	    Variant: fractal.VariantFast,
//	    Codec:   composite.GIF,
//	})
//	// res.Path is the cached GIF
//
// # Testing
//
// Every package tests against fake executors; no renderer or encoder needs
// to be installed:
//
//	go test ./...
//
// [fractal]: https://pkg.go.dev/github.com/matzehuels/mandelzoom/pkg/fractal
// [cache]: https://pkg.go.dev/github.com/matzehuels/mandelzoom/pkg/cache
// [zoom]: https://pkg.go.dev/github.com/matzehuels/mandelzoom/pkg/zoom
// [composite]: https://pkg.go.dev/github.com/matzehuels/mandelzoom/pkg/composite
// [procrun]: https://pkg.go.dev/github.com/matzehuels/mandelzoom/pkg/procrun
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/mandelzoom/pkg/pipeline
// [server]: https://pkg.go.dev/github.com/matzehuels/mandelzoom/pkg/server
// [observability]: https://pkg.go.dev/github.com/matzehuels/mandelzoom/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/mandelzoom/pkg/errors
package pkg
