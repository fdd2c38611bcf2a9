package analysis

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/tiff"
)

var (
	tissueGray = color.RGBA{150, 150, 150, 255}
	stain      = color.RGBA{160, 40, 200, 255}
)

// createTile returns a tissue-gray image with stained discs of radius 8 at centers.
func createTile(width, height int, centers ...image.Point) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, tissueGray)
		}
	}
	for _, c := range centers {
		for y := c.Y - 8; y <= c.Y+8; y++ {
			for x := c.X - 8; x <= c.X+8; x++ {
				dx, dy := x-c.X, y-c.Y
				if dx*dx+dy*dy <= 64 {
					img.Set(x, y, stain)
				}
			}
		}
	}
	return img
}

// gridCenters returns n disc centers on a 36 pixel grid starting at (20, 20).
func gridCenters(n, width int) []image.Point {
	out := make([]image.Point, 0, n)
	for y := 20; len(out) < n; y += 36 {
		for x := 20; x < width-10 && len(out) < n; x += 36 {
			out = append(out, image.Point{X: x, Y: y})
		}
	}
	return out
}

// writeTIFF encodes img into dir/name and returns the path.
func writeTIFF(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := tiff.Encode(f, img, nil); err != nil {
		t.Fatalf("failed to encode %s: %v", path, err)
	}
	return path
}

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
