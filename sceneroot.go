package retroview

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// SceneRoot owns everything about the viewer that doesn't depend on a rendering engine: the load state of the model,
// the orbit controls, the staging of the loaded content, the Loading Indicator, and the render trigger.
// An engine adapter drives it by calling Update() once per tick and applying the results whenever Revision() changes.
type SceneRoot struct {
	Config    Config
	Context   *SceneContext
	Cache     *AssetCache
	Load      *LoadState
	Orbit     *OrbitControls
	Indicator *LoadingIndicator

	logger *slog.Logger

	mountCtx context.Context
	cancel   context.CancelFunc
	preload  sync.WaitGroup

	reloadMu sync.Mutex
	reloads  []string

	observed    uint64
	snapshot    LoadSnapshot
	composition *Composition
	staging     Staging
	revision    uint64

	width, height int
}

// NewSceneRoot creates a SceneRoot that loads assets through the Loader given. A nil logger uses slog.Default().
func NewSceneRoot(config Config, loader Loader, logger *slog.Logger) *SceneRoot {

	if logger == nil {
		logger = slog.Default()
	}

	cache := NewAssetCache(loader, logger)

	return &SceneRoot{
		Config:    config,
		Context:   NewSceneContext(),
		Cache:     cache,
		Load:      NewLoadState(cache, time.Duration(config.Model.LoadTimeout), logger),
		Orbit:     NewOrbitControls(config.Controls, config.Camera.Position, Vector{}),
		Indicator: NewLoadingIndicator(),
		logger:    logger,
	}

}

// Mount starts loading the model and, if configured, warms every registered asset in the background.
// Mount does nothing if the SceneRoot is already mounted.
func (root *SceneRoot) Mount(ctx context.Context) {

	if root.cancel != nil {
		return
	}

	root.mountCtx, root.cancel = context.WithCancel(ctx)

	root.Load.SetOnChange(func(LoadSnapshot) { root.Context.Invalidate() })
	root.Load.Start(root.mountCtx, root.Config.Model.Path)

	if root.Config.Preload.All {

		paths := root.Config.AssetPaths()

		root.preload.Add(1)
		go func() {
			defer root.preload.Done()
			if err := root.Cache.Preload(root.mountCtx, paths...); err != nil {
				root.logger.Warn("preloading assets failed", "error", err)
				return
			}
			root.logger.Debug("preloaded assets", "count", len(paths))
		}()

	}

}

// Unmount cancels any load in flight and waits for background preloading to stop.
func (root *SceneRoot) Unmount() {
	if root.cancel == nil {
		return
	}
	root.Load.Stop()
	root.cancel()
	root.preload.Wait()
	root.cancel = nil
}

// Mounted returns true between Mount() and Unmount().
func (root *SceneRoot) Mounted() bool {
	return root.cancel != nil
}

// Retry restarts the model load after a failure, including a loaded model that couldn't be composed. It returns false if
// the SceneRoot isn't mounted or nothing has failed.
func (root *SceneRoot) Retry() bool {
	if root.cancel == nil || (root.snapshot.Status != LoadFailed && root.Load.Status() != LoadFailed) {
		return false
	}
	root.logger.Info("retrying model load", "path", root.Config.Model.Path)
	root.Load.Start(root.mountCtx, root.Config.Model.Path)
	return true
}

// Reload drops the cached asset at the path given and, if it's the displayed model, loads it again.
func (root *SceneRoot) Reload(assetPath string) {

	root.Cache.Invalidate(assetPath)

	if root.cancel == nil || CleanAssetPath(assetPath) != CleanAssetPath(root.Config.Model.Path) {
		return
	}

	root.Load.Start(root.mountCtx, root.Config.Model.Path)

}

// RequestReload queues a Reload() of the asset path given for the next Update(). Unlike Reload(), it's safe to call
// from any goroutine.
func (root *SceneRoot) RequestReload(assetPath string) {
	root.reloadMu.Lock()
	root.reloads = append(root.reloads, assetPath)
	root.reloadMu.Unlock()
	root.Context.Invalidate()
}

// Resize records the render surface's size, invalidating the scene if it changed. The staging and zoom limits follow
// the new aspect ratio, but the camera is only moved if it falls outside the new limits.
func (root *SceneRoot) Resize(width, height int) bool {

	if width == root.width && height == root.height {
		return false
	}

	root.width, root.height = width, height

	if root.composition != nil {
		root.restage()
		if root.staging.Distance > 0 {
			root.Orbit.SetZoomLimits(root.staging.Distance, root.Config.Controls.MinZoom, root.Config.Controls.MaxZoom)
		}
	}

	root.Context.Invalidate()
	return true

}

// Size returns the render surface's size, as last passed to Resize().
func (root *SceneRoot) Size() (int, int) {
	return root.width, root.height
}

// Aspect returns the render surface's aspect ratio (width / height), or 1 if no size is known yet.
func (root *SceneRoot) Aspect() float64 {
	if root.width <= 0 || root.height <= 0 {
		return 1
	}
	return float64(root.width) / float64(root.height)
}

// Update advances the SceneRoot by dt seconds: it picks up load status changes (composing and staging the model once it's
// ready), animates the Loading Indicator, and applies orbit damping. It returns true if the scene was invalidated.
func (root *SceneRoot) Update(dt float64) bool {

	before := root.Context.Requests()

	root.reloadMu.Lock()
	reloads := root.reloads
	root.reloads = nil
	root.reloadMu.Unlock()

	for _, assetPath := range reloads {
		root.Reload(assetPath)
	}

	snap := root.Load.Snapshot()

	if snap.Generation != root.observed {
		root.observed = snap.Generation
		root.apply(snap)
	}

	if root.Overlay() == OverlayLoading && root.Indicator.Update(float32(dt)) {
		root.Context.Invalidate()
	}

	if root.Orbit.Update() {
		root.Context.Invalidate()
	}

	return root.Context.Requests() != before

}

func (root *SceneRoot) apply(snap LoadSnapshot) {

	root.snapshot = snap

	switch snap.Status {

	case LoadReady:

		comp, err := Compose(root.Config.Model, root.Config.Lighting, snap.Asset)
		if err != nil {
			root.logger.Error("composing model failed", "error", err)
			root.snapshot.Status = LoadFailed
			root.snapshot.Err = err
			root.composition = nil
			break
		}

		root.composition = &comp
		root.restage()
		root.frameCamera()

	default:

		if snap.Status == LoadLoading {
			root.Indicator.Reset()
		}
		root.composition = nil
		root.staging = Staging{}

	}

	root.revision++
	root.Context.Invalidate()

}

func (root *SceneRoot) restage() {
	root.staging = Stage(root.Config.Stage, root.Config.Canvas.Shadows, root.composition.Primitive.PlacedBounds(), root.Config.Camera.FOV, root.Aspect())
	root.revision++
}

// frameCamera moves the camera along its configured direction to the staged framing distance.
func (root *SceneRoot) frameCamera() {

	if root.staging.Distance <= 0 {
		return
	}

	dir := root.Config.Camera.Position.Unit()
	if dir.IsZero() {
		dir = VecZ
	}

	root.Orbit.Stop()
	root.Orbit.MinDistance, root.Orbit.MaxDistance = 0, root.staging.Distance*root.Config.Controls.MaxZoom
	root.Orbit.SetPosition(dir.Scale(root.staging.Distance))
	root.Orbit.Frame(root.staging.Distance, root.Config.Controls.MinZoom, root.Config.Controls.MaxZoom)

}

// Status returns the load status as last observed by Update().
func (root *SceneRoot) Status() LoadStatus {
	return root.snapshot.Status
}

// Err returns the load error as last observed by Update(), if the load failed.
func (root *SceneRoot) Err() error {
	return root.snapshot.Err
}

// Overlay returns which overlay should cover the canvas, according to the load status last observed by Update().
func (root *SceneRoot) Overlay() OverlayKind {
	return SelectOverlay(root.snapshot.Status)
}

// Composition returns the Model View's composition once the model is ready.
func (root *SceneRoot) Composition() (Composition, bool) {
	if root.composition == nil {
		return Composition{}, false
	}
	return *root.composition, true
}

// Staging returns how the composed content is centered, framed and grounded.
func (root *SceneRoot) Staging() Staging {
	return root.staging
}

// Revision is incremented every time the composition or its staging changes, so adapters know when to rebuild.
func (root *SceneRoot) Revision() uint64 {
	return root.revision
}

// ShouldDraw reports whether a frame should be drawn now, consuming the pending invalidation.
func (root *SceneRoot) ShouldDraw() bool {
	return root.Context.ConsumeFrame(root.Config.Canvas.FrameLoop == FrameLoopAlways)
}
