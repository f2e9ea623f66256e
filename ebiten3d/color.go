package ebiten3d

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/solarlune/retroview"
)

// colorScale returns an ebiten.ColorScale that tints drawn images by the color given.
func colorScale(c retroview.Color) ebiten.ColorScale {
	scale := ebiten.ColorScale{}
	scale.ScaleWithColor(c.ToNRGBA())
	return scale
}
