// Package stats holds the small set of descriptive statistics shared by the
// cycle-time, cross-file and UPH pipelines.
//
// Percentiles use linear interpolation between closest ranks. All functions
// treat their input as read-only and never reorder the caller's slice.
package stats
