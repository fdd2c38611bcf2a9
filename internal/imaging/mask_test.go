package imaging

import (
	"image"
	"image/color"
	"testing"
)

// maskFromRows builds a mask from strings where '#' is set.
func maskFromRows(rows ...string) *Mask {
	m := NewMask(len(rows[0]), len(rows))
	for y, row := range rows {
		for x, ch := range row {
			m.Set(x, y, ch == '#')
		}
	}
	return m
}

func filledMask(w, h int) *Mask {
	m := NewMask(w, h)
	for i := range m.Pix {
		m.Pix[i] = 255
	}
	return m
}

func TestMask_SetAndOn(t *testing.T) {
	m := NewMask(4, 3)
	m.Set(1, 2, true)

	if !m.On(1, 2) {
		t.Error("(1,2) should be set")
	}
	if m.Pix[2*4+1] != 255 {
		t.Errorf("set value: got %d, want 255", m.Pix[2*4+1])
	}
	if m.On(-1, 0) || m.On(4, 0) || m.On(0, 3) {
		t.Error("out-of-range coordinates should read as clear")
	}

	// Out of range writes are ignored.
	m.Set(10, 10, true)
	if m.CountNonZero() != 1 {
		t.Errorf("CountNonZero: got %d, want 1", m.CountNonZero())
	}
}

func TestMask_Clone(t *testing.T) {
	m := maskFromRows("#.", ".#")
	c := m.Clone()
	c.Set(0, 0, false)

	if !m.On(0, 0) {
		t.Error("modifying the clone changed the original")
	}
}

func TestMask_Gray(t *testing.T) {
	m := maskFromRows("#.", ".#")
	g := m.Gray()

	if g.GrayAt(0, 0).Y != 255 || g.GrayAt(1, 0).Y != 0 {
		t.Error("Gray should carry mask values unchanged")
	}
}

func TestThresholdBelow(t *testing.T) {
	tests := []struct {
		name string
		c    color.Color
		want int
	}{
		{"white background", color.RGBA{255, 255, 255, 255}, 0},
		{"light gray above threshold", color.RGBA{230, 230, 230, 255}, 0},
		{"dark tissue", color.RGBA{100, 100, 100, 255}, 100},
		{"black", color.RGBA{0, 0, 0, 255}, 100},
		{"luma exactly at threshold", color.RGBA{200, 200, 200, 255}, 0},
		{"luma one below threshold", color.RGBA{199, 199, 199, 255}, 100},
		{"bt601 luma rounds to threshold", color.RGBA{200, 190, 255, 255}, 0},
		{"stain is dark", color.RGBA{160, 40, 200, 255}, 100},
		{"transparent", color.RGBA{0, 0, 0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ThresholdBelow(createInMemoryImage(10, 10, tt.c), 200)
			if got := m.CountNonZero(); got != tt.want {
				t.Errorf("CountNonZero: got %d, want %d", got, tt.want)
			}
			for _, v := range m.Pix {
				if v != 0 && v != 255 {
					t.Fatalf("mask value %d is not binary", v)
				}
			}
		})
	}
}

func TestApplyMask(t *testing.T) {
	img := createInMemoryImage(4, 4, color.RGBA{160, 40, 200, 255})
	m := NewMask(4, 4)
	m.Set(1, 1, true)

	out, err := ApplyMask(img, m)
	if err != nil {
		t.Fatalf("ApplyMask failed: %v", err)
	}

	if c := out.NRGBAAt(1, 1); c.R != 160 || c.G != 40 || c.B != 200 {
		t.Errorf("masked-in pixel: got %v", c)
	}
	if c := out.NRGBAAt(0, 0); c.R != 0 || c.G != 0 || c.B != 0 {
		t.Errorf("masked-out pixel: got %v, want black", c)
	}

	// Source is untouched.
	r, _, _, _ := img.At(0, 0).RGBA()
	if r>>8 != 160 {
		t.Error("ApplyMask modified its input")
	}
}

func TestApplyMask_SizeMismatch(t *testing.T) {
	img := createInMemoryImage(4, 4, color.White)
	if _, err := ApplyMask(img, NewMask(3, 4)); err == nil {
		t.Error("ApplyMask should reject a mask of a different size")
	}
}

func TestErode_RemovesSpeck(t *testing.T) {
	m := maskFromRows(
		".....",
		"..#..",
		".....",
	)
	if got := m.Erode(RectKernel(3, 3), 1).CountNonZero(); got != 0 {
		t.Errorf("single pixel after erosion: got %d set, want 0", got)
	}
}

func TestErode_IgnoresOutsidePixels(t *testing.T) {
	m := filledMask(6, 6)
	out := m.Erode(RectKernel(5, 5), 2)
	if got := out.CountNonZero(); got != 36 {
		t.Errorf("full mask after erosion: got %d set, want 36", got)
	}
}

func TestErode_Square(t *testing.T) {
	m := NewMask(9, 9)
	for y := 2; y <= 6; y++ {
		for x := 2; x <= 6; x++ {
			m.Set(x, y, true)
		}
	}

	out := m.Erode(RectKernel(3, 3), 1)
	if got := out.CountNonZero(); got != 9 {
		t.Errorf("5x5 square eroded by 3x3: got %d set, want 9", got)
	}
	if !out.On(4, 4) || out.On(2, 2) {
		t.Error("erosion should keep the 3x3 core")
	}
}

func TestDilate_Square(t *testing.T) {
	m := NewMask(9, 9)
	m.Set(4, 4, true)

	if got := m.Dilate(RectKernel(3, 3), 1).CountNonZero(); got != 9 {
		t.Errorf("one iteration: got %d set, want 9", got)
	}
	if got := m.Dilate(RectKernel(3, 3), 2).CountNonZero(); got != 25 {
		t.Errorf("two iterations: got %d set, want 25", got)
	}
	if got := m.Dilate(RectKernel(5, 5), 1).CountNonZero(); got != 25 {
		t.Errorf("5x5 kernel: got %d set, want 25", got)
	}
}

func TestDilate_ClipsAtBorder(t *testing.T) {
	m := NewMask(3, 3)
	m.Set(0, 0, true)

	if got := m.Dilate(RectKernel(3, 3), 1).CountNonZero(); got != 4 {
		t.Errorf("corner dilation: got %d set, want 4", got)
	}
}

func TestOpen_RemovesNoiseKeepsBlob(t *testing.T) {
	m := NewMask(30, 30)
	for y := 5; y < 20; y++ {
		for x := 5; x < 20; x++ {
			m.Set(x, y, true)
		}
	}
	m.Set(25, 25, true)

	out := m.Open(RectKernel(3, 3), 2)
	if out.On(25, 25) {
		t.Error("opening should remove the isolated pixel")
	}
	if out.CountNonZero() != 15*15 {
		t.Errorf("opening a square: got %d set, want %d", out.CountNonZero(), 15*15)
	}
}

func TestClose_FillsGap(t *testing.T) {
	m := maskFromRows(
		"..........",
		".###.####.",
		".###.####.",
		".###.####.",
		"..........",
	)

	out := m.Close(RectKernel(3, 3), 1)
	if !out.On(4, 2) {
		t.Error("closing should bridge a one-pixel gap")
	}
}

func TestMorph_DoesNotModifyInput(t *testing.T) {
	m := maskFromRows(".#.", "###", ".#.")
	before := m.CountNonZero()

	m.Erode(RectKernel(3, 3), 1)
	m.Dilate(RectKernel(3, 3), 1)

	if m.CountNonZero() != before {
		t.Error("morphology modified its input")
	}
}

func TestSpan(t *testing.T) {
	tests := []struct {
		size          int
		before, after int
	}{
		{1, 0, 0},
		{3, 1, 1},
		{5, 2, 2},
		{4, 2, 1},
		{0, 0, 0},
	}
	for _, tt := range tests {
		b, a := span(tt.size)
		if b != tt.before || a != tt.after {
			t.Errorf("span(%d) = (%d,%d), want (%d,%d)", tt.size, b, a, tt.before, tt.after)
		}
	}
}

func TestMask_SameSize(t *testing.T) {
	m := NewMask(10, 5)
	if !m.SameSize(image.Rect(3, 3, 13, 8)) {
		t.Error("SameSize should ignore the rectangle origin")
	}
	if m.SameSize(image.Rect(0, 0, 5, 10)) {
		t.Error("SameSize should compare width and height")
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, min, max, want int
	}{
		{5, 0, 10, 5},
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
		{0, 0, 10, 0},
		{10, 0, 10, 10},
	}
	for _, tt := range tests {
		if got := clamp(tt.val, tt.min, tt.max); got != tt.want {
			t.Errorf("clamp(%d, %d, %d) = %d, want %d", tt.val, tt.min, tt.max, got, tt.want)
		}
	}
}
