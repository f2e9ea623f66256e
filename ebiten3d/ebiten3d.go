// Package ebiten3d hosts a retroview.SceneRoot on Ebitengine, rendering its composition with tetra3d. It's the only
// package that knows about the engine; everything it draws is decided by the SceneRoot.
package ebiten3d

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/solarlune/retroview"
	"github.com/solarlune/tetra3d"
)

// ErrQuit is returned from Update() to end the game loop when the user asks to quit.
var ErrQuit = errors.New("quit")

// Viewer is the Scene Root's render surface: an ebiten.Game that owns the tetra3d camera and scene, feeds input into
// the orbit controls, and redraws only when the SceneRoot's SceneContext has been invalidated.
type Viewer struct {
	Root     *retroview.SceneRoot
	Overlays []Overlay
	// ScreenshotDir is where F12 screenshots are written.
	ScreenshotDir string
	// AllowQuit lets Escape end the game loop; it should be off when running inside a web page.
	AllowQuit bool

	logger *slog.Logger

	rig        *cameraRig
	scene      *tetra3d.Scene
	stage      *tetra3d.Node
	builtAsset *retroview.Asset
	revision   uint64
	shadow     *shadowPainter
	input      pointerInput

	width, height int
	pixelRatio    float64
	sizeApplied   bool

	screenshot bool
	quit       atomic.Bool
}

// NewViewer creates a Viewer for the SceneRoot given. A nil logger uses slog.Default().
func NewViewer(root *retroview.SceneRoot, logger *slog.Logger, overlays ...Overlay) *Viewer {

	if logger == nil {
		logger = slog.Default()
	}

	return &Viewer{
		Root:       root,
		Overlays:   overlays,
		AllowQuit:  true,
		logger:     logger,
		rig:        newCameraRig(root.Config.Camera, 0, 0),
		shadow:     newShadowPainter(),
		pixelRatio: 1,
	}

}

// Run mounts the SceneRoot, configures the window according to the Config, and runs the game loop until the window is
// closed, the user quits, or ctx is done. The SceneRoot is unmounted before Run returns.
func (viewer *Viewer) Run(ctx context.Context) error {

	config := viewer.Root.Config

	ebiten.SetWindowTitle(config.Window.Title)
	if config.Window.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}

	if mw, mh := ebiten.Monitor().Size(); mw > 0 && mh > 0 {
		ebiten.SetWindowSize(int(float64(mw)*config.Window.WidthFraction), int(float64(mh)*config.Window.HeightFraction))
	}

	// With a preserved drawing buffer, a skipped frame leaves the previous one on screen.
	ebiten.SetScreenClearedEveryFrame(!config.Canvas.PreserveDrawingBuffer)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	viewer.Root.Mount(runCtx)
	defer viewer.Root.Unmount()

	go func() {
		<-runCtx.Done()
		viewer.quit.Store(true)
	}()

	err := ebiten.RunGame(viewer)
	if errors.Is(err, ErrQuit) {
		return nil
	}
	return err

}

func (viewer *Viewer) Update() error {

	if viewer.quit.Load() || (viewer.AllowQuit && inpututil.IsKeyJustPressed(ebiten.KeyEscape)) {
		return ErrQuit
	}

	root := viewer.Root

	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		viewer.screenshot = true
		root.Context.Invalidate()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		root.Retry()
	}

	if root.Overlay() == retroview.OverlayNone {
		_, h := root.Size()
		viewer.input.update(root.Orbit, h)
	}

	root.Update(1 / float64(ebiten.TPS()))

	if root.Revision() != viewer.revision {
		viewer.revision = root.Revision()
		viewer.rebuild()
	}

	viewer.rig.sync(root.Orbit)

	return nil

}

// rebuild commits the SceneRoot's current composition into a new tetra3d scene, or drops the scene if there's none.
// If only the staging changed, the existing scene's stage is moved instead.
func (viewer *Viewer) rebuild() {

	comp, ok := viewer.Root.Composition()
	if !ok {
		viewer.scene, viewer.stage, viewer.builtAsset = nil, nil, nil
		return
	}

	staging := viewer.Root.Staging()

	if viewer.scene != nil && viewer.builtAsset == comp.Primitive.Asset {
		placeStage(viewer.stage, staging)
		return
	}

	scene, stage, err := buildScene(comp, staging)
	if err != nil {
		viewer.logger.Error("building scene failed", "error", err)
		viewer.scene, viewer.stage, viewer.builtAsset = nil, nil, nil
		return
	}

	viewer.scene, viewer.stage, viewer.builtAsset = scene, stage, comp.Primitive.Asset
	viewer.logger.Debug("scene committed", "lights", len(comp.Lights), "offset", comp.Primitive.Offset.String())

}

func (viewer *Viewer) Draw(screen *ebiten.Image) {

	root := viewer.Root
	config := root.Config

	if !viewer.sizeApplied {
		viewer.rig.resize(viewer.width, viewer.height)
		viewer.sizeApplied = true
	}

	if !root.ShouldDraw() && config.Canvas.PreserveDrawingBuffer {
		viewer.takeScreenshot(screen)
		return
	}

	screen.Fill(config.Window.Background.ToNRGBA())

	switch root.Overlay() {

	case retroview.OverlayNone:
		if viewer.scene != nil {
			viewer.shadow.draw(screen, viewer.rig, root.Staging().Shadow)
			viewer.rig.Camera.Clear()
			viewer.rig.Camera.RenderScene(viewer.scene)
			screen.DrawImage(viewer.rig.Camera.ColorTexture(), nil)
		}

	case retroview.OverlayLoading:
		drawLoadingIndicator(screen, root.Indicator, viewer.pixelRatio)

	case retroview.OverlayError:
		drawErrorView(screen, root.Err(), viewer.pixelRatio)

	}

	for _, overlay := range viewer.Overlays {
		overlay.Draw(screen, viewer.pixelRatio)
	}

	viewer.takeScreenshot(screen)

}

func (viewer *Viewer) takeScreenshot(screen *ebiten.Image) {

	if !viewer.screenshot {
		return
	}

	viewer.screenshot = false

	img := captureScreen(screen)

	go func() {
		path, err := saveScreenshot(img, viewer.ScreenshotDir)
		if err != nil {
			viewer.logger.Error("saving screenshot failed", "error", err)
			return
		}
		viewer.logger.Info("screenshot saved", "path", path)
	}()

}

// LayoutF sizes the render surface at the outside size multiplied by the device scale factor, clamped to the
// configured pixel ratio range. A size change invalidates the scene.
func (viewer *Viewer) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {

	viewer.pixelRatio = viewer.Root.Config.Canvas.ClampDPR(ebiten.Monitor().DeviceScaleFactor())

	w := int(math.Ceil(outsideWidth * viewer.pixelRatio))
	h := int(math.Ceil(outsideHeight * viewer.pixelRatio))

	if viewer.Root.Resize(w, h) {
		viewer.width, viewer.height = w, h
		viewer.sizeApplied = false
	}

	return float64(w), float64(h)

}

func (viewer *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := viewer.LayoutF(float64(outsideWidth), float64(outsideHeight))
	return int(w), int(h)
}
