package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// HSV represents a color on the 8-bit hue/saturation/value scale.
//
// The scale matches OpenCV's 8-bit HSV images:
//   - H: 0-179, the hue angle in degrees divided by two
//   - S: 0-255 (0 = gray, 255 = fully saturated)
//   - V: 0-255 (0 = black, 255 = full brightness)
type HSV struct {
	H uint8 `yaml:"h" json:"h"`
	S uint8 `yaml:"s" json:"s"`
	V uint8 `yaml:"v" json:"v"`
}

// HSVRange is an inclusive box in HSV space.
type HSVRange struct {
	Lower HSV `yaml:"lower" json:"lower"`
	Upper HSV `yaml:"upper" json:"upper"`
}

// Contains reports whether c lies inside the range on all three channels.
func (r HSVRange) Contains(c HSV) bool {
	return c.H >= r.Lower.H && c.H <= r.Upper.H &&
		c.S >= r.Lower.S && c.S <= r.Upper.S &&
		c.V >= r.Lower.V && c.V <= r.Upper.V
}

// Validate checks that every lower bound is at most its upper bound and that
// hue stays on the 0-179 scale.
func (r HSVRange) Validate() error {
	if r.Lower.H > r.Upper.H || r.Lower.S > r.Upper.S || r.Lower.V > r.Upper.V {
		return fmt.Errorf("invalid HSV range: lower %+v exceeds upper %+v", r.Lower, r.Upper)
	}
	if r.Upper.H > 179 {
		return fmt.Errorf("invalid HSV range: hue %d above 179", r.Upper.H)
	}
	return nil
}

// ToHSV converts 8-bit RGB components to the 8-bit HSV scale.
//
// The conversion runs through go-colorful (hue in degrees, saturation and
// value in 0-1) and is then rescaled with rounding.
func ToHSV(r, g, b uint8) HSV {
	h, s, v := colorful.Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
	}.Hsv()

	hh := int(math.Round(h / 2))
	if hh >= 180 {
		hh -= 180
	}
	return HSV{
		H: uint8(hh),
		S: uint8(math.Round(s * 255)),
		V: uint8(math.Round(v * 255)),
	}
}

// InRange marks every pixel of img whose HSV value lies inside rng.
func InRange(img image.Image, rng HSVRange) *Mask {
	bounds := img.Bounds()
	m := NewMask(bounds.Dx(), bounds.Dy())
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			if rng.Contains(ToHSV(uint8(r>>8), uint8(g>>8), uint8(b>>8))) {
				m.Pix[y*m.Width+x] = 255
			}
		}
	}
	return m
}

// ParseHexColor parses a hex color string like "#FF0000" or "#FF000080".
// The leading '#' is optional.
func ParseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length")
	}

	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}
