package testsupport

import (
	"image"
	"image/color"
	"image/draw"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

// WritePersonImage renders a dark upright figure centered on a light
// background and encodes it at path (format inferred from the extension,
// .jpg or .png). The silhouette is tall enough to read as a person to the
// pose estimator.
func WritePersonImage(t testing.TB, path string, width, height int) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.NRGBA{R: 235, G: 235, B: 235, A: 255}), image.Point{}, draw.Src)

	figure := color.NRGBA{R: 40, G: 40, B: 60, A: 255}
	torsoW := width / 5
	torsoH := height * 6 / 10
	torsoX := (width - torsoW) / 2
	torsoY := height * 2 / 10
	draw.Draw(img, image.Rect(torsoX, torsoY, torsoX+torsoW, torsoY+torsoH), image.NewUniform(figure), image.Point{}, draw.Src)

	headR := width / 12
	headCX := width / 2
	headCY := torsoY - headR
	for y := headCY - headR; y <= headCY+headR; y++ {
		for x := headCX - headR; x <= headCX+headR; x++ {
			dx, dy := x-headCX, y-headCY
			if dx*dx+dy*dy <= headR*headR {
				img.Set(x, y, figure)
			}
		}
	}

	saveImage(t, img, path)
}

// WriteBlankImage encodes a uniform light image at path.
func WriteBlankImage(t testing.TB, path string, width, height int) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.NRGBA{R: 240, G: 240, B: 240, A: 255}), image.Point{}, draw.Src)
	saveImage(t, img, path)
}

func saveImage(t testing.TB, img image.Image, path string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("save image %s: %v", path, err)
	}
}
