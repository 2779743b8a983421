// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without threading a metrics
// backend through every component. Consumers register hooks at startup to
// receive events about render jobs, cache lookups, external processes and
// inbound HTTP requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main (see [Setup]), never by libraries, so the
// cache, pipeline and process packages only ever call the interfaces.
//
// # Usage
//
// Register hooks at application startup:
//
//	tel, err := observability.Setup(ctx, observability.Config{ServiceName: "mandelzoom"})
//	defer tel.Shutdown(ctx)
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnJobStart(ctx, "still", key)
//	// ... render ...
//	observability.Pipeline().OnJobComplete(ctx, "still", key, false, 0, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the render orchestrator.
type PipelineHooks interface {
	// Job events. kind is "still", "fast" or "slow".
	OnJobStart(ctx context.Context, kind, key string)
	OnJobComplete(ctx context.Context, kind, key string, cacheHit bool, frames int, duration time.Duration, err error)

	// OnFrame records one animation frame, rendered or reused from cache.
	OnFrame(ctx context.Context, cached bool, duration time.Duration, err error)

	// OnComposite records one encoder run.
	OnComposite(ctx context.Context, codec string, frames int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a committed cache entry.
	OnCacheSet(ctx context.Context, keyType string, size int64)

	// OnCoalesced records a caller that joined an in-flight render.
	OnCoalesced(ctx context.Context, keyType string)
}

// =============================================================================
// Process Hooks
// =============================================================================

// ProcessHooks receives events from external process invocations.
type ProcessHooks interface {
	// OnProcessExit records a finished process. exitCode is -1 when the
	// process could not be started or was killed.
	OnProcessExit(ctx context.Context, executable string, exitCode int, duration time.Duration)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP server.
type HTTPHooks interface {
	// OnResponse records a served request.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnJobStart(context.Context, string, string) {}
func (NoopPipelineHooks) OnJobComplete(context.Context, string, string, bool, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnFrame(context.Context, bool, time.Duration, error)             {}
func (NoopPipelineHooks) OnComposite(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)        {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)       {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int64) {}
func (NoopCacheHooks) OnCoalesced(context.Context, string)       {}

// NoopProcessHooks is a no-op implementation of ProcessHooks.
type NoopProcessHooks struct{}

func (NoopProcessHooks) OnProcessExit(context.Context, string, int, time.Duration) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	processHooks  ProcessHooks  = NoopProcessHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any render.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetProcessHooks registers custom process hooks.
func SetProcessHooks(h ProcessHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		processHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before serving.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Process returns the registered process hooks.
func Process() ProcessHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return processHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	processHooks = NoopProcessHooks{}
	httpHooks = NoopHTTPHooks{}
}
