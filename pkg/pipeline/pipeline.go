// Package pipeline provides the render orchestrator for mandelzoom.
//
// This package ties cache lookup, frame planning, frame rendering and
// compositing into one request lifecycle that is shared by the CLI and the
// HTTP server. By centralizing this logic, every entry point produces the
// same artifacts under the same keys.
//
// # Lifecycle
//
// Every job starts with a cache lookup of its final artifact:
//
//	CacheHit  → Done
//	CacheMiss → Planning → FrameRendering → Compositing → Done
//
// Still images skip Planning and Compositing. Failed is reachable from
// FrameRendering and Compositing; a failed job never leaves a partial
// artifact under its key, but frames rendered before the failure stay
// cached and are reused by the next attempt.
//
// # Usage
//
//	runner := pipeline.NewRunner(store, procrun.New(procrun.Options{}), logger)
//	result, err := runner.Execute(ctx, pipeline.Job{
//	    Request: fractal.DefaultRequest(fractal.ResolutionGIF),
//	    Variant: fractal.VariantSlow,
//	    Codec:   composite.GIF,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Path)
package pipeline

import (
	"time"

	"github.com/matzehuels/mandelzoom/pkg/composite"
	"github.com/matzehuels/mandelzoom/pkg/errors"
	"github.com/matzehuels/mandelzoom/pkg/fractal"
	"github.com/matzehuels/mandelzoom/pkg/zoom"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultMaxIterations bounds the iteration count a request may ask for.
	DefaultMaxIterations = 1_000_000

	// DefaultTarget is the width every zoom animation starts from.
	DefaultTarget = zoom.DefaultTarget
)

// State is a step of the job lifecycle.
type State string

// Lifecycle states.
const (
	StateCacheHit       State = "cache_hit"
	StateCacheMiss      State = "cache_miss"
	StatePlanning       State = "planning"
	StateFrameRendering State = "frame_rendering"
	StateCompositing    State = "compositing"
	StateDone           State = "done"
	StateFailed         State = "failed"
)

// =============================================================================
// Job - Orchestrator Input
// =============================================================================

// Job is one request for an artifact: the render parameters plus the
// variant chosen by the endpoint that received them.
type Job struct {
	Request fractal.Request
	Variant fractal.Variant
	Codec   composite.Codec // animations only; defaults to GIF

	// Target is the full-view width animations start from. Zero means
	// DefaultTarget.
	Target float64

	// Progress receives one call per animation frame. Optional.
	Progress ProgressFunc
}

// ValidateAndSetDefaults checks the job and applies defaults.
// maxIterations bounds Request.MaxIterations; 0 means unbounded.
func (j *Job) ValidateAndSetDefaults(maxIterations int) error {
	if j.Variant == "" {
		j.Variant = fractal.VariantStill
	}
	if !fractal.ValidVariants[j.Variant] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid variant: %q", j.Variant)
	}
	if err := j.Request.Validate(maxIterations); err != nil {
		return err
	}
	if !j.Variant.IsAnimation() {
		return nil
	}
	if j.Codec == "" {
		j.Codec = composite.GIF
	}
	if _, err := composite.ParseCodec(string(j.Codec)); err != nil {
		return err
	}
	if j.Target == 0 {
		j.Target = DefaultTarget
	}
	return errors.ValidatePositive("target", j.Target)
}

// ZoomOptions configures an animation job.
type ZoomOptions struct {
	Speed    zoom.Speed
	Codec    composite.Codec
	Target   float64
	Progress ProgressFunc
}

// Progress describes one processed animation frame.
type Progress struct {
	Done   int // frames processed so far, including this one
	Total  int // unique frames in the plan
	Frame  zoom.Frame
	Key    string
	Cached bool // not rendered by this job
}

// ProgressFunc receives frame progress. Calls are sequential.
type ProgressFunc func(Progress)

// =============================================================================
// Result - Orchestrator Output
// =============================================================================

// Result describes a produced artifact.
type Result struct {
	// Key is the cache key of the artifact.
	Key string

	// Path is the absolute file path of the artifact.
	Path string

	// CacheHit reports that the artifact existed before the job started.
	CacheHit bool

	// Shared reports that the artifact was produced by a concurrent
	// identical job this one waited for.
	Shared bool

	// Frames is the number of unique frames in the plan; zero for stills.
	Frames int

	// FramesCached counts frames this job did not render: found in the
	// cache or rendered by a concurrent job sharing them.
	FramesCached int

	// States lists the lifecycle states in the order they were entered.
	States []State

	// Duration is the wall time of the job.
	Duration time.Duration
}
