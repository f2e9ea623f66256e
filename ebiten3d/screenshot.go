package ebiten3d

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// captureScreen copies the screen's current pixels. Because the drawing buffer is preserved between frames, this is the
// last frame drawn even when the current frame was skipped.
func captureScreen(screen *ebiten.Image) *image.RGBA {
	img := image.NewRGBA(screen.Bounds())
	screen.ReadPixels(img.Pix)
	return img
}

// saveScreenshot writes the image as a timestamped PNG into dir, returning the file's path.
func saveScreenshot(img image.Image, dir string) (string, error) {

	if dir == "" {
		dir = "."
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, "screenshot "+time.Now().Format("2006-01-02 15-04-05")+".png")

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}

	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("encoding screenshot: %w", err)
	}

	return path, f.Close()

}
