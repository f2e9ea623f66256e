package ebiten3d

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/solarlune/retroview"
)

// keyRotateStep is how far, in radians, one tick of an arrow key rotates the view.
const keyRotateStep = 0.03

// pointerInput turns mouse, touch, wheel and arrow-key input into orbit control requests.
type pointerInput struct {
	dragging   bool
	touchID    ebiten.TouchID
	touching   bool
	prevX      int
	prevY      int
	touchIDBuf []ebiten.TouchID
}

// update feeds this tick's input into the orbit controls, returning true if any request was accepted.
func (input *pointerInput) update(orbit *retroview.OrbitControls, viewportHeight int) bool {

	moved := false

	// Mouse drag

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		input.dragging = true
		input.prevX, input.prevY = ebiten.CursorPosition()
	}

	if input.dragging {
		if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
			input.dragging = false
		} else {
			x, y := ebiten.CursorPosition()
			if x != input.prevX || y != input.prevY {
				moved = orbit.Drag(float64(x-input.prevX), float64(y-input.prevY), viewportHeight) || moved
			}
			input.prevX, input.prevY = x, y
		}
	}

	// Touch drag, following the first finger down

	input.touchIDBuf = inpututil.AppendJustPressedTouchIDs(input.touchIDBuf[:0])
	if !input.touching && len(input.touchIDBuf) > 0 {
		input.touching = true
		input.touchID = input.touchIDBuf[0]
		input.prevX, input.prevY = ebiten.TouchPosition(input.touchID)
	}

	if input.touching {
		if inpututil.IsTouchJustReleased(input.touchID) {
			input.touching = false
		} else {
			x, y := ebiten.TouchPosition(input.touchID)
			if x != input.prevX || y != input.prevY {
				moved = orbit.Drag(float64(x-input.prevX), float64(y-input.prevY), viewportHeight) || moved
			}
			input.prevX, input.prevY = x, y
		}
	}

	// Wheel zoom

	if _, wy := ebiten.Wheel(); wy != 0 {
		moved = orbit.Zoom(wy) || moved
	}

	// Keyboard

	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		moved = orbit.Rotate(keyRotateStep, 0) || moved
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		moved = orbit.Rotate(-keyRotateStep, 0) || moved
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		moved = orbit.Rotate(0, keyRotateStep) || moved
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		moved = orbit.Rotate(0, -keyRotateStep) || moved
	}
	if ebiten.IsKeyPressed(ebiten.KeyEqual) || ebiten.IsKeyPressed(ebiten.KeyNumpadAdd) {
		moved = orbit.Zoom(0.25) || moved
	}
	if ebiten.IsKeyPressed(ebiten.KeyMinus) || ebiten.IsKeyPressed(ebiten.KeyNumpadSubtract) {
		moved = orbit.Zoom(-0.25) || moved
	}

	return moved

}
