package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/alveoli-tools/internal/imaging"
	"github.com/ironsheep/alveoli-tools/internal/logger"
)

// Sample is the count of one image. Name is the file name of Path.
type Sample struct {
	Name      string `json:"sample"`
	Path      string `json:"path"`
	Condition string `json:"condition"`
	Count     int    `json:"count"`
}

// Summary is the mean and standard error of a cohort's counts.
type Summary struct {
	Condition string  `json:"condition"`
	N         int     `json:"n"`
	Mean      float64 `json:"mean"`
	StdDev    float64 `json:"std_dev"`
	StdErr    float64 `json:"std_err"`
}

// Cohort is the analyzed set of images of one condition.
type Cohort struct {
	Condition string `json:"condition"`

	// Samples are the images that entered the statistics, in input order.
	Samples []Sample `json:"samples"`

	// Zero are the images that counted zero and were excluded.
	Zero []Sample `json:"zero,omitempty"`

	// Unreadable are the paths that could not be loaded.
	Unreadable []string `json:"unreadable,omitempty"`

	Summary Summary `json:"summary"`
}

// Counts returns the sample counts as float64 in sample order.
func (c *Cohort) Counts() []float64 {
	out := make([]float64, len(c.Samples))
	for i, s := range c.Samples {
		out[i] = float64(s.Count)
	}
	return out
}

// Analyzer runs an ImageCounter over the images of a condition.
type Analyzer struct {
	counter ImageCounter
	workers int
	log     logger.Logger
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithWorkers bounds how many images are counted at once. Values below one
// mean sequential.
func WithWorkers(n int) AnalyzerOption {
	return func(a *Analyzer) { a.workers = n }
}

// WithAnalyzerLogger sets the logger; the default discards everything.
func WithAnalyzerLogger(l logger.Logger) AnalyzerOption {
	return func(a *Analyzer) { a.log = l }
}

// NewAnalyzer returns an Analyzer counting with counter.
func NewAnalyzer(counter ImageCounter, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{counter: counter, workers: 1, log: logger.Nop{}}
	for _, opt := range opts {
		opt(a)
	}
	if a.workers < 1 {
		a.workers = 1
	}
	return a
}

// AnalyzeCohort counts every path, excludes unreadable images and zero
// counts, and summarizes what remains.
//
// Samples keep the order of paths regardless of the worker count. Errors
// other than an unreadable image abort the cohort. ErrEmptyCohort and
// ErrInsufficientSamples are returned when fewer than two samples remain.
func (a *Analyzer) AnalyzeCohort(ctx context.Context, condition string, paths []string) (*Cohort, error) {
	type outcome struct {
		count int
		err   error
	}
	results := make([]outcome, len(paths))

	sem := make(chan struct{}, a.workers)
	var wg sync.WaitGroup
	for i, path := range paths {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()
			n, err := a.counter.CountImage(ctx, path)
			results[i] = outcome{count: n, err: err}
		}(i, path)
	}
	wg.Wait()

	cohort := &Cohort{Condition: condition}
	all := make([]Sample, 0, len(paths))
	for i, path := range paths {
		r := results[i]
		if r.err != nil {
			if errors.Is(r.err, imaging.ErrImageLoad) {
				a.log.Warning(component, "skipping unreadable image", map[string]interface{}{
					"condition": condition,
					"path":      path,
					"error":     r.err.Error(),
				})
				cohort.Unreadable = append(cohort.Unreadable, path)
				continue
			}
			return nil, fmt.Errorf("cohort %q: %w", condition, r.err)
		}
		all = append(all, Sample{
			Name:      filepath.Base(path),
			Path:      path,
			Condition: condition,
			Count:     r.count,
		})
	}

	cohort.Samples, cohort.Zero = ExcludeZeroCounts(all)
	for _, s := range cohort.Zero {
		a.log.Info(component, "excluding zero-count sample", map[string]interface{}{
			"condition": condition,
			"sample":    s.Name,
		})
	}

	summary, err := Summarize(condition, cohort.Counts())
	if err != nil {
		return nil, fmt.Errorf("cohort %q: %w", condition, err)
	}
	cohort.Summary = summary

	a.log.Info(component, "cohort analyzed", map[string]interface{}{
		"condition":  condition,
		"samples":    len(cohort.Samples),
		"zero":       len(cohort.Zero),
		"unreadable": len(cohort.Unreadable),
		"mean":       summary.Mean,
	})

	return cohort, nil
}

// ExcludeZeroCounts splits samples into those with a positive count and those
// that counted zero, preserving order in both.
func ExcludeZeroCounts(samples []Sample) (kept, zero []Sample) {
	kept = make([]Sample, 0, len(samples))
	for _, s := range samples {
		if s.Count == 0 {
			zero = append(zero, s)
			continue
		}
		kept = append(kept, s)
	}
	return kept, zero
}

// Summarize returns the mean and the standard error (sample standard
// deviation over sqrt(n)) of counts.
func Summarize(condition string, counts []float64) (Summary, error) {
	switch len(counts) {
	case 0:
		return Summary{}, ErrEmptyCohort
	case 1:
		return Summary{}, fmt.Errorf("%w: got 1", ErrInsufficientSamples)
	}

	mean, variance := stat.MeanVariance(counts, nil)
	sd := math.Sqrt(variance)
	return Summary{
		Condition: condition,
		N:         len(counts),
		Mean:      mean,
		StdDev:    sd,
		StdErr:    stat.StdErr(sd, float64(len(counts))),
	}, nil
}
