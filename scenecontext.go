package retroview

import "sync/atomic"

// SceneContext carries the render-trigger state of a scene, passed explicitly to anything that needs to request a
// redraw. It's safe to invalidate from any goroutine.
type SceneContext struct {
	invalidated atomic.Bool
	frames      atomic.Uint64
	requests    atomic.Uint64
}

// NewSceneContext returns a SceneContext that starts invalidated, so the first frame is always drawn.
func NewSceneContext() *SceneContext {
	ctx := &SceneContext{}
	ctx.invalidated.Store(true)
	return ctx
}

// Invalidate requests a redraw on the next frame. Several invalidations before a frame result in a single redraw.
func (ctx *SceneContext) Invalidate() {
	ctx.requests.Add(1)
	ctx.invalidated.Store(true)
}

// Invalidated returns true if a redraw has been requested and not yet consumed.
func (ctx *SceneContext) Invalidated() bool {
	return ctx.invalidated.Load()
}

// ConsumeFrame reports whether a frame should be drawn now, clearing the request if so.
// always forces a frame regardless of invalidation.
func (ctx *SceneContext) ConsumeFrame(always bool) bool {
	if ctx.invalidated.Swap(false) || always {
		ctx.frames.Add(1)
		return true
	}
	return false
}

// Frames returns how many frames have been drawn.
func (ctx *SceneContext) Frames() uint64 {
	return ctx.frames.Load()
}

// Requests returns how many times Invalidate() has been called.
func (ctx *SceneContext) Requests() uint64 {
	return ctx.requests.Load()
}
