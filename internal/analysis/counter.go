package analysis

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/alveoli-tools/internal/detection"
	"github.com/ironsheep/alveoli-tools/internal/imaging"
	"github.com/ironsheep/alveoli-tools/internal/logger"
)

const component = "analysis"

// WindowCount is the count of one subsample window.
type WindowCount struct {
	Index        int            `json:"index"`
	Window       imaging.Window `json:"window"`
	Clipped      bool           `json:"clipped"`
	Count        int            `json:"count"`
	Rejected     int            `json:"rejected"`
	TissuePixels int            `json:"tissue_pixels"`
}

// ImageCount is the per-window breakdown of one image.
type ImageCount struct {
	Sample  string        `json:"sample"`
	Path    string        `json:"path,omitempty"`
	Total   int           `json:"total"`
	Windows []WindowCount `json:"windows"`
}

// ImageCounter produces the total count of one image file.
type ImageCounter interface {
	CountImage(ctx context.Context, path string) (int, error)
}

// Counter sums structure counts over a fixed set of windows.
//
// A Counter is safe for concurrent use when its RegionCounter is.
type Counter struct {
	backend  detection.RegionCounter
	windows  []imaging.Window
	log      logger.Logger
	debugDir string
	outline  string
}

// CounterOption configures a Counter.
type CounterOption func(*Counter)

// WithLogger sets the logger; the default discards everything.
func WithLogger(l logger.Logger) CounterOption {
	return func(c *Counter) { c.log = l }
}

// WithDebugDir saves per-window masks and a window overlay for every image
// into dir.
func WithDebugDir(dir string) CounterOption {
	return func(c *Counter) { c.debugDir = dir }
}

// NewCounter returns a Counter over windows using backend.
func NewCounter(backend detection.RegionCounter, windows []imaging.Window, opts ...CounterOption) *Counter {
	c := &Counter{
		backend: backend,
		windows: windows,
		log:     logger.Nop{},
		outline: "#FFFF00",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Windows returns the windows the counter sums over.
func (c *Counter) Windows() []imaging.Window { return c.windows }

// SampleName is the file name of path without its extension.
func SampleName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// CountImage loads path and returns the sum of its window counts.
// Load failures wrap imaging.ErrImageLoad.
func (c *Counter) CountImage(ctx context.Context, path string) (int, error) {
	result, err := c.CountFile(ctx, path)
	if err != nil {
		return 0, err
	}
	return result.Total, nil
}

// CountFile loads path and returns the per-window breakdown.
func (c *Counter) CountFile(ctx context.Context, path string) (*ImageCount, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, err
	}
	result, err := c.CountLoaded(ctx, SampleName(path), img)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	result.Path = path
	return result, nil
}

// CountLoaded counts an image that is already in memory.
//
// Each window is cropped, segmented and counted on its own. A window that
// runs past the image edge is clipped and logged; a window whose anchor lies
// outside the image fails the whole image.
func (c *Counter) CountLoaded(ctx context.Context, sample string, img image.Image) (*ImageCount, error) {
	result := &ImageCount{
		Sample:  sample,
		Windows: make([]WindowCount, 0, len(c.windows)),
	}

	if c.debugDir != "" {
		if err := os.MkdirAll(c.debugDir, 0755); err != nil {
			return nil, fmt.Errorf("debug directory: %w", err)
		}
	}

	for i, w := range c.windows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		crop, err := imaging.CropWindow(img, w)
		if err != nil {
			return nil, fmt.Errorf("window %d: %w", i, err)
		}
		if crop.Clipped {
			c.log.Warning(component, "window clipped at image edge", map[string]interface{}{
				"sample":  sample,
				"window":  i,
				"anchor":  fmt.Sprintf("%d,%d", w.X, w.Y),
				"clipped": crop.Rect.String(),
			})
		}

		region, err := c.backend.CountRegion(crop.Image)
		if err != nil {
			return nil, fmt.Errorf("window %d: %w", i, err)
		}

		result.Windows = append(result.Windows, WindowCount{
			Index:        i,
			Window:       w,
			Clipped:      crop.Clipped,
			Count:        region.Count,
			Rejected:     region.Rejected,
			TissuePixels: region.TissuePixels,
		})
		result.Total += region.Count

		if c.debugDir != "" {
			c.saveWindowMasks(sample, i, region)
		}

		c.log.Debug(component, "window counted", map[string]interface{}{
			"sample":   sample,
			"window":   i,
			"count":    region.Count,
			"rejected": region.Rejected,
		})
	}

	if c.debugDir != "" {
		c.saveOverlay(sample, img)
	}

	return result, nil
}

// saveWindowMasks writes <sample>_w<i>_tissue.png and _structures.png.
// Failures are logged and do not affect the count.
func (c *Counter) saveWindowMasks(sample string, i int, region *detection.RegionResult) {
	masks := map[string]*imaging.Mask{
		"tissue":     region.Tissue,
		"structures": region.Structures,
	}
	for kind, m := range masks {
		if m == nil {
			continue
		}
		path := filepath.Join(c.debugDir, fmt.Sprintf("%s_w%d_%s.png", sample, i, kind))
		if err := imaging.SaveMask(m, path); err != nil {
			c.log.Warning(component, "failed to save debug mask", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
		}
	}
}

func (c *Counter) saveOverlay(sample string, img image.Image) {
	path := filepath.Join(c.debugDir, sample+"_windows.png")
	overlay := imaging.WindowOverlay(img, c.windows, c.outline)
	if err := imaging.Save(overlay, path); err != nil {
		c.log.Warning(component, "failed to save window overlay", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
	}
}
