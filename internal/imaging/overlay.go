package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// OverlayResult contains a window overlay encoded as base64 PNG.
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Windows     int    `json:"windows"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// WindowOverlay draws the outline of every window on a copy of img, labelled
// with its index, so window placement can be checked against the tissue.
//
// Windows that extend past the image are drawn clipped. An unparsable color
// falls back to opaque yellow.
func WindowOverlay(img image.Image, windows []Window, outlineHex string) *image.RGBA {
	bounds := img.Bounds()

	outline, err := ParseHexColor(outlineHex)
	if err != nil {
		outline = color.RGBA{255, 255, 0, 255}
	}

	result := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(result, result.Bounds(), img, bounds.Min, draw.Src)

	labelColor := color.RGBA{255, 255, 255, 255}
	bgColor := color.RGBA{0, 0, 0, 180}

	for i, w := range windows {
		r := w.Rect().Intersect(result.Bounds())
		if r.Empty() {
			continue
		}
		drawRect(result, r, outline, 2)
		drawLabel(result, r.Min.X+3, r.Min.Y+3, strconv.Itoa(i), labelColor, bgColor)
	}

	return result
}

// EncodeWindowOverlay renders WindowOverlay and encodes it as base64 PNG.
func EncodeWindowOverlay(img image.Image, windows []Window, outlineHex string) (*OverlayResult, error) {
	overlay := WindowOverlay(img, windows, outlineHex)

	var buf bytes.Buffer
	if err := png.Encode(&buf, overlay); err != nil {
		return nil, fmt.Errorf("failed to encode overlay: %w", err)
	}

	return &OverlayResult{
		Width:       overlay.Bounds().Dx(),
		Height:      overlay.Bounds().Dy(),
		Windows:     len(windows),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// drawRect strokes the inside edge of r with the given thickness.
func drawRect(img *image.RGBA, r image.Rectangle, c color.RGBA, thickness int) {
	for t := 0; t < thickness; t++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, r.Min.Y+t, c)
			img.SetRGBA(x, r.Max.Y-1-t, c)
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			img.SetRGBA(r.Min.X+t, y, c)
			img.SetRGBA(r.Max.X-1-t, y, c)
		}
	}
}

// drawLabel draws text on a filled background box with its top-left at (x, y).
// Pixels falling outside img are dropped.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	if text == "" {
		return
	}

	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: face,
	}

	width := d.MeasureString(text).Ceil()
	height := face.Height
	box := image.Rect(x-1, y-1, x+width+1, y+height+1).Intersect(img.Bounds())
	draw.Draw(img, box, image.NewUniform(bg), image.Point{}, draw.Over)

	d.Dot = fixed.Point26_6{
		X: fixed.I(x),
		Y: fixed.I(y + face.Ascent),
	}
	d.DrawString(text)
}
