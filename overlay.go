package retroview

import (
	"context"
	"errors"
	"io/fs"
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// OverlayKind is the screen-space view drawn over the canvas for a given load status.
type OverlayKind int

const (
	OverlayNone    OverlayKind = iota // The scene is ready; nothing covers it
	OverlayLoading                    // The Loading Indicator
	OverlayError                      // The error view
)

func (kind OverlayKind) String() string {
	switch kind {
	case OverlayNone:
		return "none"
	case OverlayLoading:
		return "loading"
	case OverlayError:
		return "error"
	}
	return "unknown"
}

// SelectOverlay returns the overlay to show for the load status given. The Loading Indicator is shown exactly as long
// as the load hasn't resolved.
func SelectOverlay(status LoadStatus) OverlayKind {
	switch status {
	case LoadReady:
		return OverlayNone
	case LoadFailed:
		return OverlayError
	default:
		return OverlayLoading
	}
}

// LoadingIndicator holds the animation state of the loading spinner. It has no inputs or outputs of its own; the Scene
// Root updates and draws it while the asset is loading.
type LoadingIndicator struct {
	Caption  string
	Segments int // Number of dots around the spinner

	spin  *gween.Tween
	pulse *gween.Tween
	angle float32
	glow  float32
}

// NewLoadingIndicator returns a LoadingIndicator with a full turn of the spinner taking one second.
func NewLoadingIndicator() *LoadingIndicator {
	indicator := &LoadingIndicator{
		Caption:  "Loading",
		Segments: 8,
	}
	indicator.Reset()
	return indicator
}

// Reset restarts the animation from the beginning.
func (indicator *LoadingIndicator) Reset() {
	indicator.spin = gween.New(0, 2*math.Pi, 1, ease.InOutSine)
	indicator.pulse = gween.New(0.4, 1, 0.75, ease.InOutQuad)
	indicator.angle = 0
	indicator.glow = 0.4
}

// Update advances the animation by dt seconds. Animations loop, so the indicator always needs redrawing afterwards;
// the return value reports whether anything changed.
func (indicator *LoadingIndicator) Update(dt float32) bool {

	if dt <= 0 {
		return false
	}

	angle, spun := indicator.spin.Update(dt)
	glow, pulsed := indicator.pulse.Update(dt)

	if spun {
		indicator.spin.Reset()
	}

	if pulsed {
		// Ping-pong the glow between dim and bright.
		indicator.pulse = gween.New(glow, 1.4-glow, 0.75, ease.InOutQuad)
	}

	changed := angle != indicator.angle || glow != indicator.glow
	indicator.angle = angle
	indicator.glow = glow
	return changed

}

// Angle returns the spinner's current rotation, in radians.
func (indicator *LoadingIndicator) Angle() float32 {
	return indicator.angle
}

// Glow returns the caption's current brightness, from 0.4 to 1.
func (indicator *LoadingIndicator) Glow() float32 {
	return indicator.glow
}

// Dot returns the position (relative to the spinner's center, for a spinner of radius 1) and alpha of the dot at index i.
// Dots trail behind the leading one, fading out.
func (indicator *LoadingIndicator) Dot(i int) (x, y, alpha float32) {
	n := indicator.Segments
	if n <= 0 {
		n = 1
	}
	a := float64(indicator.angle) - float64(i)*2*math.Pi/float64(n)
	return float32(math.Cos(a)), float32(math.Sin(a)), 1 - float32(i)/float32(n)
}

// ErrorMessage returns a short title and a detail line describing why an asset failed to load, for the error view.
func ErrorMessage(err error) (title, detail string) {

	if err == nil {
		return "", ""
	}

	switch {
	case errors.Is(err, fs.ErrNotExist):
		title = "The model couldn't be found"
	case errors.Is(err, context.DeadlineExceeded):
		title = "The model took too long to load"
	case errors.Is(err, ErrNoScene):
		title = "The model file doesn't contain a scene"
	default:
		title = "The model couldn't be loaded"
	}

	detail = err.Error()
	if runes := []rune(detail); len(runes) > 160 {
		detail = string(runes[:157]) + "..."
	}

	return title, detail

}
