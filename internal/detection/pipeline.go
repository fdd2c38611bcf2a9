package detection

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/alveoli-tools/internal/imaging"
)

// ErrBackendUnavailable is returned by NewBackend for a backend that was not
// compiled into this binary.
var ErrBackendUnavailable = errors.New("detection backend unavailable")

// Params groups both stages of the per-region pipeline.
type Params struct {
	Tissue     TissueParams    `yaml:"tissue" json:"tissue"`
	Structures StructureParams `yaml:"structures" json:"structures"`
}

// DefaultParams returns DefaultTissueParams and DefaultStructureParams.
func DefaultParams() Params {
	return Params{
		Tissue:     DefaultTissueParams(),
		Structures: DefaultStructureParams(),
	}
}

// Validate checks both stages.
func (p Params) Validate() error {
	if err := p.Tissue.Validate(); err != nil {
		return err
	}
	return p.Structures.Validate()
}

// RegionResult is everything one region produced on its way to a count.
type RegionResult struct {
	// Count is the number of structures detected.
	Count int `json:"count"`

	// Rejected is the number of contours at or below the minimum area.
	Rejected int `json:"rejected"`

	// TissuePixels is the number of set pixels in the tissue mask.
	TissuePixels int `json:"tissue_pixels"`

	// Contours are the counted contours.
	Contours []Contour `json:"contours,omitempty"`

	Tissue     *imaging.Mask `json:"-"`
	Structures *imaging.Mask `json:"-"`
}

// RegionCounter counts structures in a single region.
//
// Implementations must be safe for concurrent use.
type RegionCounter interface {
	CountRegion(region image.Image) (*RegionResult, error)
	Name() string
}

// Pipeline is the pure Go RegionCounter.
type Pipeline struct {
	params Params
}

// NewPipeline returns a Pipeline using p.
func NewPipeline(p Params) *Pipeline {
	return &Pipeline{params: p}
}

// Name identifies the backend in logs and tool output.
func (p *Pipeline) Name() string { return "go" }

// Params returns the parameters the pipeline was built with.
func (p *Pipeline) Params() Params { return p.params }

// CountRegion segments tissue in region and counts the structures inside it.
// An empty region counts zero.
func (p *Pipeline) CountRegion(region image.Image) (*RegionResult, error) {
	tissue := SegmentTissue(region, p.params.Tissue)

	structures, err := DetectStructures(region, tissue, p.params.Structures)
	if err != nil {
		return nil, fmt.Errorf("detect structures: %w", err)
	}

	return &RegionResult{
		Count:        structures.Count,
		Rejected:     structures.Rejected,
		TissuePixels: tissue.CountNonZero(),
		Contours:     structures.Contours,
		Tissue:       tissue,
		Structures:   structures.Mask,
	}, nil
}

// Backends lists the backend names NewBackend accepts in this build.
func Backends() []string {
	if opencvAvailable {
		return []string{"go", "opencv"}
	}
	return []string{"go"}
}

// NewBackend returns the RegionCounter registered under name.
//
// "go" (or "") is always available; "opencv" needs the gocv build tag and
// returns ErrBackendUnavailable otherwise.
func NewBackend(name string, p Params) (RegionCounter, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	switch name {
	case "", "go":
		return NewPipeline(p), nil
	case "opencv":
		return newOpenCVBackend(p)
	default:
		return nil, fmt.Errorf("unknown detection backend %q (available: %v)", name, Backends())
	}
}
