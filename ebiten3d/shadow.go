package ebiten3d

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/solarlune/retroview"
	"github.com/solarlune/retroview/colors"
)

// shadowPainter draws a staged ContactShadow underneath the rendered scene.
type shadowPainter struct {
	texture    *ebiten.Image
	resolution int
	opacity    float64
	blur       float64
	vertices   []ebiten.Vertex
	indices    []uint16
}

func newShadowPainter() *shadowPainter {
	return &shadowPainter{
		vertices: make([]ebiten.Vertex, 4),
		indices:  []uint16{0, 1, 2, 1, 3, 2},
	}
}

// prepare (re)builds the falloff texture if the shadow's appearance changed.
func (painter *shadowPainter) prepare(shadow retroview.ContactShadow) {

	if painter.texture != nil && painter.resolution == shadow.Resolution && painter.opacity == shadow.Opacity && painter.blur == shadow.Blur {
		return
	}

	if painter.texture != nil {
		painter.texture.Deallocate()
	}

	painter.texture = ebiten.NewImageFromImage(shadow.Falloff())
	painter.resolution = shadow.Resolution
	painter.opacity = shadow.Opacity
	painter.blur = shadow.Blur

}

// draw projects the shadow's footprint through the camera and draws the falloff texture into it, tinted black.
func (painter *shadowPainter) draw(screen *ebiten.Image, rig *cameraRig, shadow retroview.ContactShadow) {

	if !shadow.Enabled || shadow.Radius <= 0 {
		return
	}

	painter.prepare(shadow)

	tint := colors.Black()
	res := float32(painter.texture.Bounds().Dx())
	src := [4][2]float32{{0, 0}, {res, 0}, {0, res}, {res, res}}

	for i, corner := range shadow.Corners() {
		x, y := rig.project(corner)
		painter.vertices[i] = ebiten.Vertex{
			DstX:   x,
			DstY:   y,
			SrcX:   src[i][0],
			SrcY:   src[i][1],
			ColorR: tint.R,
			ColorG: tint.G,
			ColorB: tint.B,
			ColorA: tint.A,
		}
	}

	screen.DrawTriangles(painter.vertices, painter.indices, painter.texture, &ebiten.DrawTrianglesOptions{Filter: ebiten.FilterLinear})

}
