package analysis

import "errors"

var (
	// ErrEmptyCohort means no sample of a condition remained to summarize.
	ErrEmptyCohort = errors.New("cohort has no usable samples")

	// ErrInsufficientSamples means a single sample remained, so the standard
	// error is undefined.
	ErrInsufficientSamples = errors.New("cohort needs at least two samples")

	// ErrDegenerateSample means a t-test input has fewer than two values or
	// both inputs have zero variance.
	ErrDegenerateSample = errors.New("degenerate sample for t-test")
)
