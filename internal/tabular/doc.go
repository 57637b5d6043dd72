// Package tabular provides the in-memory table shared by every transformation
// and the reader that loads one from a spreadsheet or CSV file.
//
// Cells hold nil (missing), string, float64, int, bool or time.Time. Readers
// infer numbers, so a column that looks numeric in the file comes back as
// float64 values.
package tabular
