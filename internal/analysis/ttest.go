package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// TTestResult is the outcome of a two-sample Student's t-test.
type TTestResult struct {
	Statistic float64 `json:"statistic"`
	DF        float64 `json:"df"`
	PValue    float64 `json:"p_value"`
}

// Compare runs an independent two-sample t-test with pooled variance and
// returns the two-tailed p-value.
//
// The statistic is positive when a has the larger mean. Each sample needs at
// least two values, and the pooled variance must be positive; otherwise
// ErrDegenerateSample is returned.
func Compare(a, b []float64) (*TTestResult, error) {
	na, nb := len(a), len(b)
	if na < 2 || nb < 2 {
		return nil, fmt.Errorf("%w: sizes %d and %d, need at least 2 each", ErrDegenerateSample, na, nb)
	}

	meanA, varA := stat.MeanVariance(a, nil)
	meanB, varB := stat.MeanVariance(b, nil)

	df := float64(na + nb - 2)
	pooled := (float64(na-1)*varA + float64(nb-1)*varB) / df
	if pooled == 0 || math.IsNaN(pooled) {
		return nil, fmt.Errorf("%w: zero pooled variance", ErrDegenerateSample)
	}

	se := math.Sqrt(pooled * (1/float64(na) + 1/float64(nb)))
	t := (meanA - meanB) / se

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.CDF(-math.Abs(t))

	return &TTestResult{Statistic: t, DF: df, PValue: p}, nil
}
