package imaging

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ErrWindowOutsideImage is returned when a window cannot overlap the image at all.
var ErrWindowOutsideImage = errors.New("window outside image")

// Window is a square subsample anchored at its top-left pixel.
type Window struct {
	X    int `json:"x"`
	Y    int `json:"y"`
	Size int `json:"size"`
}

// Rect returns the window as an image rectangle (exclusive bottom-right).
func (w Window) Rect() image.Rectangle {
	return image.Rect(w.X, w.Y, w.X+w.Size, w.Y+w.Size)
}

func (w Window) String() string {
	return fmt.Sprintf("(%d,%d)+%d", w.X, w.Y, w.Size)
}

// WindowsAt builds one window of the given size per anchor.
func WindowsAt(anchors []image.Point, size int) []Window {
	windows := make([]Window, 0, len(anchors))
	for _, a := range anchors {
		windows = append(windows, Window{X: a.X, Y: a.Y, Size: size})
	}
	return windows
}

// CropResult holds an extracted window.
type CropResult struct {
	// Image is the extracted region, re-based so its origin is (0,0).
	Image *image.NRGBA

	// Rect is the part of the source image that was copied, in source coordinates.
	Rect image.Rectangle

	// Clipped is true when the window extended past the image edge and was truncated.
	Clipped bool
}

// CropWindow extracts w from img.
//
// A window that extends past the right or bottom edge is truncated to the
// image, never padded. A window with a negative anchor, a non-positive size,
// or an anchor outside the image returns an error wrapping ErrWindowOutsideImage.
func CropWindow(img image.Image, w Window) (*CropResult, error) {
	if w.Size <= 0 {
		return nil, fmt.Errorf("invalid window %s: size must be positive", w)
	}

	bounds := img.Bounds()
	if w.X < 0 || w.Y < 0 {
		return nil, fmt.Errorf("%w: window %s has a negative anchor", ErrWindowOutsideImage, w)
	}

	want := w.Rect().Add(bounds.Min)
	got := want.Intersect(bounds)
	if got.Empty() {
		return nil, fmt.Errorf("%w: window %s, image %dx%d",
			ErrWindowOutsideImage, w, bounds.Dx(), bounds.Dy())
	}

	return &CropResult{
		Image:   imaging.Crop(img, got),
		Rect:    got.Sub(bounds.Min),
		Clipped: got != want,
	}, nil
}
