// Package crossfile combines per-file cycle-time workbooks into engineering
// reference values.
//
// Summarizer reads the per-file workbooks into a Comparison (one row per
// frame and speed, one column per file). GroupedAverager trims each row,
// joins the package reference and averages again across frames that share
// the same physical package configuration.
package crossfile
