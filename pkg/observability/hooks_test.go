package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnJobStart(ctx, "still", "mandelbrot_0_0_8_1000_1920x1080.png")
	p.OnJobComplete(ctx, "still", "mandelbrot_0_0_8_1000_1920x1080.png", true, 0, time.Second, nil)
	p.OnFrame(ctx, false, time.Second, nil)
	p.OnComposite(ctx, "gif", 120, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "still")
	c.OnCacheMiss(ctx, "frame")
	c.OnCacheSet(ctx, "animation", 1024)
	c.OnCoalesced(ctx, "frame")

	// Process hooks
	NoopProcessHooks{}.OnProcessExit(ctx, "mandelbrot", 0, time.Second)

	// HTTP hooks
	NoopHTTPHooks{}.OnResponse(ctx, "GET", "/image", 302, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Process().(NoopProcessHooks); !ok {
		t.Error("Process() should return NoopProcessHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customProcess := &testProcessHooks{}
	SetProcessHooks(customProcess)
	if Process() != customProcess {
		t.Error("SetProcessHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
	if _, ok := Process().(NoopProcessHooks); !ok {
		t.Error("Reset() should restore NoopProcessHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)

	// Setting nil should be ignored
	SetPipelineHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testProcessHooks struct{ NoopProcessHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
