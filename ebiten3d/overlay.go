package ebiten3d

import (
	"bytes"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/solarlune/retroview"
	"github.com/solarlune/retroview/colors"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Overlay is a screen-space layer drawn over the canvas, independent of the 3D scene. scale is the render surface's
// pixel ratio, so overlays can size text and margins consistently.
type Overlay interface {
	Draw(screen *ebiten.Image, scale float64)
}

var (
	fontOnce    sync.Once
	regularFont *text.GoTextFaceSource
	boldFont    *text.GoTextFaceSource
)

func fonts() (*text.GoTextFaceSource, *text.GoTextFaceSource) {
	fontOnce.Do(func() {
		var err error
		if regularFont, err = text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF)); err != nil {
			panic(err)
		}
		if boldFont, err = text.NewGoTextFaceSource(bytes.NewReader(gobold.TTF)); err != nil {
			panic(err)
		}
	})
	return regularFont, boldFont
}

// drawText draws a line of text centered horizontally on x, with its top at y.
func drawText(screen *ebiten.Image, str string, source *text.GoTextFaceSource, size, x, y float64, c retroview.Color) {
	face := &text.GoTextFace{Source: source, Size: size}
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale = colorScale(c)
	op.PrimaryAlign = text.AlignCenter
	text.Draw(screen, str, face, op)
}

// drawLoadingIndicator draws the spinner and caption centered on the screen.
func drawLoadingIndicator(screen *ebiten.Image, indicator *retroview.LoadingIndicator, scale float64) {

	bounds := screen.Bounds()
	cx := float32(bounds.Dx()) / 2
	cy := float32(bounds.Dy()) / 2
	radius := float32(18 * scale)
	dotRadius := float32(3.5 * scale)

	phosphor := colors.Phosphor()

	for i := 0; i < indicator.Segments; i++ {
		x, y, alpha := indicator.Dot(i)
		c := phosphor
		c.A = alpha
		vector.DrawFilledCircle(screen, cx+x*radius, cy+y*radius, dotRadius, c.ToNRGBA(), true)
	}

	regular, _ := fonts()
	caption := phosphor
	caption.A = indicator.Glow()
	drawText(screen, indicator.Caption, regular, 14*scale, float64(cx), float64(cy+radius)+12*scale, caption)

}

// drawErrorView draws why the model couldn't be loaded, and how to retry.
func drawErrorView(screen *ebiten.Image, err error, scale float64) {

	title, detail := retroview.ErrorMessage(err)

	bounds := screen.Bounds()
	w := float32(bounds.Dx())
	cx := float64(w) / 2
	cy := float64(bounds.Dy()) / 2

	vector.DrawFilledRect(screen, 0, float32(cy-60*scale), w, float32(120*scale), colors.Scrim().ToNRGBA(), false)

	regular, bold := fonts()
	drawText(screen, title, bold, 20*scale, cx, cy-44*scale, colors.PaleRed())
	drawText(screen, detail, regular, 12*scale, cx, cy-8*scale, colors.LightGray())
	drawText(screen, "Press R to try again", regular, 12*scale, cx, cy+24*scale, colors.White())

}

// TitleOverlay is a simple Overlay showing a title and subtitle in the top-left corner of the canvas.
type TitleOverlay struct {
	Title    string
	Subtitle string
}

func (overlay TitleOverlay) Draw(screen *ebiten.Image, scale float64) {

	regular, bold := fonts()

	margin := 24 * scale

	face := &text.GoTextFace{Source: bold, Size: 28 * scale}
	op := &text.DrawOptions{}
	op.GeoM.Translate(margin, margin)
	op.ColorScale = colorScale(colors.White())
	text.Draw(screen, overlay.Title, face, op)

	if overlay.Subtitle != "" {
		face = &text.GoTextFace{Source: regular, Size: 14 * scale}
		op = &text.DrawOptions{}
		op.GeoM.Translate(margin, margin+38*scale)
		op.ColorScale = colorScale(colors.LightGray())
		text.Draw(screen, overlay.Subtitle, face, op)
	}

}
