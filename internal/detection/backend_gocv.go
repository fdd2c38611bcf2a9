//go:build gocv

package detection

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/ironsheep/alveoli-tools/internal/imaging"
)

const opencvAvailable = true

// opencvBackend runs the region pipeline through OpenCV.
type opencvBackend struct {
	params Params
}

func newOpenCVBackend(p Params) (RegionCounter, error) {
	return &opencvBackend{params: p}, nil
}

func (b *opencvBackend) Name() string { return "opencv" }

func (b *opencvBackend) CountRegion(region image.Image) (*RegionResult, error) {
	bgr, err := gocv.ImageToMatRGB(region)
	if err != nil {
		return nil, fmt.Errorf("convert region to mat: %w", err)
	}
	defer bgr.Close()

	tissue := b.segmentTissue(bgr)
	defer tissue.Close()

	masked := gocv.NewMat()
	defer masked.Close()
	gocv.BitwiseAndWithMask(bgr, bgr, &masked, tissue)

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(masked, &hsv, gocv.ColorBGRToHSV)

	sp := b.params.Structures
	inBand := gocv.NewMat()
	defer inBand.Close()
	lower := gocv.NewScalar(float64(sp.Range.Lower.H), float64(sp.Range.Lower.S), float64(sp.Range.Lower.V), 0)
	upper := gocv.NewScalar(float64(sp.Range.Upper.H), float64(sp.Range.Upper.S), float64(sp.Range.Upper.V), 0)
	gocv.InRangeWithScalar(hsv, lower, upper, &inBand)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: sp.Kernel.Width, Y: sp.Kernel.Height})
	defer kernel.Close()
	morphRepeat(inBand, kernel, sp.CloseIterations, dilate)
	morphRepeat(inBand, kernel, sp.CloseIterations, erode)
	morphRepeat(inBand, kernel, sp.OpenIterations, erode)
	morphRepeat(inBand, kernel, sp.OpenIterations, dilate)

	structures := matToMask(inBand)

	hierarchy := gocv.NewMat()
	defer hierarchy.Close()
	contours := gocv.FindContoursWithParams(inBand, &hierarchy, gocv.RetrievalCComp, gocv.ChainApproxSimple)
	defer contours.Close()

	all := make([]Contour, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		pv := contours.At(i)
		parent := int(hierarchy.GetVeciAt(0, i)[3])
		c := Contour{Area: gocv.ContourArea(pv), Hole: parent >= 0, Parent: parent}
		for _, p := range pv.ToPoints() {
			c.Points = append(c.Points, Point{X: p.X, Y: p.Y})
		}
		all = append(all, c)
	}

	kept, rejected := filterContours(all, sp.MinArea)
	return &RegionResult{
		Count:        len(kept),
		Contours:     kept,
		Rejected:     rejected,
		Tissue:       matToMask(tissue),
		Structures:   structures,
		TissuePixels: gocv.CountNonZero(tissue),
	}, nil
}

// segmentTissue mirrors SegmentTissue on a BGR mat.
func (b *opencvBackend) segmentTissue(bgr gocv.Mat) gocv.Mat {
	tp := b.params.Tissue

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(bgr, &gray, gocv.ColorBGRToGray)

	tissue := gocv.NewMat()
	gocv.Threshold(gray, &tissue, float32(tp.Threshold), 255, gocv.ThresholdBinaryInv)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: tp.Kernel.Width, Y: tp.Kernel.Height})
	defer kernel.Close()
	morphRepeat(tissue, kernel, tp.OpenIterations, erode)
	morphRepeat(tissue, kernel, tp.OpenIterations, dilate)
	morphRepeat(tissue, kernel, tp.CloseIterations, dilate)
	morphRepeat(tissue, kernel, tp.CloseIterations, erode)

	return tissue
}

type morphOp int

const (
	erode morphOp = iota
	dilate
)

// morphRepeat applies op in place n times.
func morphRepeat(m gocv.Mat, kernel gocv.Mat, n int, op morphOp) {
	for i := 0; i < n; i++ {
		if op == erode {
			gocv.Erode(m, &m, kernel)
		} else {
			gocv.Dilate(m, &m, kernel)
		}
	}
}

func matToMask(m gocv.Mat) *imaging.Mask {
	out := imaging.NewMask(m.Cols(), m.Rows())
	for y := 0; y < m.Rows(); y++ {
		for x := 0; x < m.Cols(); x++ {
			if m.GetUCharAt(y, x) != 0 {
				out.Pix[y*out.Width+x] = 255
			}
		}
	}
	return out
}
