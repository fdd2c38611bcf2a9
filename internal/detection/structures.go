package detection

import (
	"fmt"
	"image"

	"github.com/ironsheep/alveoli-tools/internal/imaging"
)

// StructureParams controls structure detection inside tissue.
type StructureParams struct {
	// Range is the HSV band of the stain, on the 8-bit scale.
	Range imaging.HSVRange `yaml:"hsv" json:"hsv"`

	// Kernel is the structuring element for the closing and the opening.
	Kernel imaging.Kernel `yaml:"kernel" json:"kernel"`

	CloseIterations int `yaml:"closeIterations" json:"close_iterations"`
	OpenIterations  int `yaml:"openIterations" json:"open_iterations"`

	// MinArea is exclusive: a contour counts only if its area is greater.
	MinArea float64 `yaml:"minArea" json:"min_area"`
}

// DefaultStructureParams returns the purple band H 125-160, S and V 50-255,
// a 3x3 element with two iterations each and a minimum area of 50.
func DefaultStructureParams() StructureParams {
	return StructureParams{
		Range: imaging.HSVRange{
			Lower: imaging.HSV{H: 125, S: 50, V: 50},
			Upper: imaging.HSV{H: 160, S: 255, V: 255},
		},
		Kernel:          imaging.RectKernel(3, 3),
		CloseIterations: 2,
		OpenIterations:  2,
		MinArea:         50,
	}
}

// Validate checks the HSV band, kernel, iterations and area.
func (p StructureParams) Validate() error {
	if err := p.Range.Validate(); err != nil {
		return fmt.Errorf("structure hsv range: %w", err)
	}
	if p.Kernel.Width < 1 || p.Kernel.Height < 1 {
		return fmt.Errorf("structure kernel must be at least 1x1, got %dx%d", p.Kernel.Width, p.Kernel.Height)
	}
	if p.OpenIterations < 0 || p.CloseIterations < 0 {
		return fmt.Errorf("structure iterations must not be negative (open=%d, close=%d)",
			p.OpenIterations, p.CloseIterations)
	}
	if p.MinArea < 0 {
		return fmt.Errorf("min area must not be negative, got %g", p.MinArea)
	}
	return nil
}

// StructureResult is the outcome of DetectStructures for one region.
type StructureResult struct {
	// Count is the number of contours with area greater than MinArea.
	Count int `json:"count"`

	// Mask is the cleaned in-range mask the contours were traced from.
	Mask *imaging.Mask `json:"-"`

	// Contours holds the counted contours only.
	Contours []Contour `json:"contours,omitempty"`

	// Rejected is the number of traced contours at or below MinArea.
	Rejected int `json:"rejected"`
}

// DetectStructures counts stained structures inside the tissue of region.
//
// tissue must have the same dimensions as region. Pixels outside the tissue
// are blacked out before color conversion, so they can never fall in the
// band (V=0 is below any sensible lower bound).
func DetectStructures(region image.Image, tissue *imaging.Mask, p StructureParams) (*StructureResult, error) {
	masked, err := imaging.ApplyMask(region, tissue)
	if err != nil {
		return nil, fmt.Errorf("apply tissue mask: %w", err)
	}

	inBand := imaging.InRange(masked, p.Range)
	cleaned := inBand.Close(p.Kernel, p.CloseIterations).Open(p.Kernel, p.OpenIterations)

	return countContours(cleaned, p.MinArea), nil
}

// countContours traces m and keeps contours strictly larger than minArea.
func countContours(m *imaging.Mask, minArea float64) *StructureResult {
	kept, rejected := filterContours(FindContours(m), minArea)
	return &StructureResult{
		Count:    len(kept),
		Mask:     m,
		Contours: kept,
		Rejected: rejected,
	}
}

// filterContours keeps the contours strictly larger than minArea and
// rewrites each hole's Parent to the index of its outer contour in kept,
// or -1 when that contour was rejected.
func filterContours(all []Contour, minArea float64) (kept []Contour, rejected int) {
	kept = make([]Contour, 0, len(all))
	index := make(map[int]int, len(all))
	for i, c := range all {
		if c.Area <= minArea {
			rejected++
			continue
		}
		index[i] = len(kept)
		kept = append(kept, c)
	}

	for i := range kept {
		if kept[i].Parent < 0 {
			continue
		}
		if j, ok := index[kept[i].Parent]; ok {
			kept[i].Parent = j
		} else {
			kept[i].Parent = -1
		}
	}
	return kept, rejected
}
