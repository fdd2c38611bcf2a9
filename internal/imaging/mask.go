package imaging

import (
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/effect"
)

// Mask is a binary single-channel image.
//
// Pix holds one byte per pixel in row-major order, each exactly 0 (clear) or
// 255 (set). The mask origin is always (0,0).
type Mask struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewMask returns an all-clear mask of the given size.
func NewMask(width, height int) *Mask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Mask{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// On reports whether (x, y) is set. Coordinates outside the mask are clear.
func (m *Mask) On(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Pix[y*m.Width+x] != 0
}

// Set marks (x, y) as set or clear. Coordinates outside the mask are ignored.
func (m *Mask) Set(x, y int, on bool) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	if on {
		m.Pix[y*m.Width+x] = 255
	} else {
		m.Pix[y*m.Width+x] = 0
	}
}

// Clone returns a deep copy of m.
func (m *Mask) Clone() *Mask {
	c := NewMask(m.Width, m.Height)
	copy(c.Pix, m.Pix)
	return c
}

// CountNonZero returns the number of set pixels.
func (m *Mask) CountNonZero() int {
	n := 0
	for _, v := range m.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// SameSize reports whether m covers exactly the pixel grid of bounds.
func (m *Mask) SameSize(bounds image.Rectangle) bool {
	return m.Width == bounds.Dx() && m.Height == bounds.Dy()
}

// Gray returns m as an *image.Gray for encoding.
func (m *Mask) Gray() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	copy(g.Pix, m.Pix)
	return g
}

// ITU-R BT.601 luma weights, as used by OpenCV's BGR to gray conversion.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// ThresholdBelow marks every pixel whose intensity is strictly below level.
//
// This is an inverted binary threshold: dark content on a light background
// becomes set. Intensity is the BT.601 luma rounded to the nearest integer.
// Fully transparent pixels are never set.
func ThresholdBelow(img image.Image, level uint8) *Mask {
	gray := effect.GrayscaleWithWeights(img, lumaR, lumaG, lumaB)
	gb := gray.Bounds()
	m := NewMask(gb.Dx(), gb.Dy())
	for y := 0; y < gb.Dy(); y++ {
		for x := 0; x < gb.Dx(); x++ {
			pos := y*gray.Stride + x*4
			if gray.Pix[pos+3] == 0 {
				continue
			}
			if gray.Pix[pos] < level {
				m.Pix[y*m.Width+x] = 255
			}
		}
	}
	return m
}

// ApplyMask returns a copy of img in which every pixel outside m is black.
//
// This is the pixel-wise AND of an image with a binary mask. img and m must
// have the same dimensions.
func ApplyMask(img image.Image, m *Mask) (*image.NRGBA, error) {
	bounds := img.Bounds()
	if !m.SameSize(bounds) {
		return nil, fmt.Errorf("mask %dx%d does not match image %dx%d",
			m.Width, m.Height, bounds.Dx(), bounds.Dy())
	}

	out := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	black := color.NRGBA{0, 0, 0, 255}
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			if m.Pix[y*m.Width+x] == 0 {
				out.SetNRGBA(x, y, black)
				continue
			}
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			out.SetNRGBA(x, y, color.NRGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), 255})
		}
	}
	return out, nil
}

// Kernel is a rectangular all-ones structuring element anchored at its center.
type Kernel struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// RectKernel returns a width x height all-ones structuring element.
func RectKernel(width, height int) Kernel {
	return Kernel{Width: width, Height: height}
}

// span returns how far the kernel reaches before and after its anchor along
// one axis. For even sizes the anchor sits at size/2, so the reach is uneven.
func span(size int) (before, after int) {
	if size < 1 {
		return 0, 0
	}
	before = size / 2
	after = size - 1 - before
	return before, after
}

// Erode clears every pixel whose kernel neighbourhood is not entirely set,
// repeated iterations times.
func (m *Mask) Erode(k Kernel, iterations int) *Mask {
	out := m.Clone()
	for i := 0; i < iterations; i++ {
		out = out.morph(k, true)
	}
	return out
}

// Dilate sets every pixel whose kernel neighbourhood contains a set pixel,
// repeated iterations times.
func (m *Mask) Dilate(k Kernel, iterations int) *Mask {
	out := m.Clone()
	for i := 0; i < iterations; i++ {
		out = out.morph(k, false)
	}
	return out
}

// Open erodes iterations times and then dilates iterations times, removing
// specks smaller than the kernel.
func (m *Mask) Open(k Kernel, iterations int) *Mask {
	return m.Erode(k, iterations).Dilate(k, iterations)
}

// Close dilates iterations times and then erodes iterations times, filling
// gaps smaller than the kernel.
func (m *Mask) Close(k Kernel, iterations int) *Mask {
	return m.Dilate(k, iterations).Erode(k, iterations)
}

// morph runs one separable erosion (erode=true) or dilation pass.
//
// A rectangular element decomposes into a horizontal pass followed by a
// vertical pass; each pass counts set pixels in the clipped window with a
// running sum, so the cost does not depend on the kernel size.
func (m *Mask) morph(k Kernel, erode bool) *Mask {
	w, h := m.Width, m.Height
	if w == 0 || h == 0 {
		return m.Clone()
	}

	tmp := NewMask(w, h)
	bx, ax := span(k.Width)
	for y := 0; y < h; y++ {
		row := m.Pix[y*w : (y+1)*w]
		prefix := make([]int, w+1)
		for x := 0; x < w; x++ {
			prefix[x+1] = prefix[x]
			if row[x] != 0 {
				prefix[x+1]++
			}
		}
		for x := 0; x < w; x++ {
			lo := clamp(x-bx, 0, w-1)
			hi := clamp(x+ax, 0, w-1)
			if decide(prefix[hi+1]-prefix[lo], hi-lo+1, erode) {
				tmp.Pix[y*w+x] = 255
			}
		}
	}

	out := NewMask(w, h)
	by, ay := span(k.Height)
	prefix := make([]int, h+1)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			prefix[y+1] = prefix[y]
			if tmp.Pix[y*w+x] != 0 {
				prefix[y+1]++
			}
		}
		for y := 0; y < h; y++ {
			lo := clamp(y-by, 0, h-1)
			hi := clamp(y+ay, 0, h-1)
			if decide(prefix[hi+1]-prefix[lo], hi-lo+1, erode) {
				out.Pix[y*w+x] = 255
			}
		}
	}
	return out
}

func decide(set, window int, erode bool) bool {
	if erode {
		return set == window
	}
	return set > 0
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
