// Package report writes the results of a two-condition analysis: the
// per-sample counts CSV, the summary statistics CSV, a box plot with the
// individual samples overlaid, and a plain-text summary.
package report
