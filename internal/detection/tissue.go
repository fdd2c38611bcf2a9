package detection

import (
	"fmt"
	"image"

	"github.com/ironsheep/alveoli-tools/internal/imaging"
)

// TissueParams controls tissue segmentation.
type TissueParams struct {
	// Threshold is the intensity below which a pixel counts as tissue.
	Threshold uint8 `yaml:"threshold" json:"threshold"`

	// Kernel is the structuring element for both the opening and the closing.
	Kernel imaging.Kernel `yaml:"kernel" json:"kernel"`

	// OpenIterations is the erosion (then dilation) repeat count of the opening.
	OpenIterations int `yaml:"openIterations" json:"open_iterations"`

	// CloseIterations is the dilation (then erosion) repeat count of the closing.
	CloseIterations int `yaml:"closeIterations" json:"close_iterations"`
}

// DefaultTissueParams returns threshold 200 with a 5x5 element, two
// iterations each.
func DefaultTissueParams() TissueParams {
	return TissueParams{
		Threshold:       200,
		Kernel:          imaging.RectKernel(5, 5),
		OpenIterations:  2,
		CloseIterations: 2,
	}
}

// Validate checks that the kernel and iteration counts are usable.
func (p TissueParams) Validate() error {
	if p.Kernel.Width < 1 || p.Kernel.Height < 1 {
		return fmt.Errorf("tissue kernel must be at least 1x1, got %dx%d", p.Kernel.Width, p.Kernel.Height)
	}
	if p.OpenIterations < 0 || p.CloseIterations < 0 {
		return fmt.Errorf("tissue iterations must not be negative (open=%d, close=%d)",
			p.OpenIterations, p.CloseIterations)
	}
	return nil
}

// SegmentTissue returns a mask of the tissue in region.
//
// The mask has the region's dimensions and every value is 0 or 255. A region
// with no pixel darker than the threshold yields an all-clear mask.
func SegmentTissue(region image.Image, p TissueParams) *imaging.Mask {
	m := imaging.ThresholdBelow(region, p.Threshold)
	m = m.Open(p.Kernel, p.OpenIterations)
	return m.Close(p.Kernel, p.CloseIterations)
}
