// Package analysis turns microscopy tiles into per-condition counts and a
// two-sample comparison.
//
// A Counter sums structure counts over fixed subsample windows of one image.
// An Analyzer runs a Counter over every image of a condition, drops images
// that could not be loaded or that counted zero, and summarizes the rest.
// Compare runs a pooled-variance Student's t-test between two cohorts.
//
// Overlapping windows are counted independently, so a structure inside two
// windows is counted twice.
package analysis
