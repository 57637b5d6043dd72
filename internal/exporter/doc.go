// Package exporter writes transformation results to disk.
//
// WorkbookWriter saves one or more tables as sheets of an .xlsx workbook and
// falls back to CSV when the spreadsheet engine cannot save the file.
// CSVWriter is the plain CSV path, with an optional UTF-8 BOM so Excel opens
// Thai and other non-ASCII text correctly.
//
// Example usage:
//
//	w := exporter.NewWorkbookWriter(logger)
//	path, err := w.WriteWorkbook(ctx, "out/line3_20240301_101500.xlsx", detail, summary)
package exporter
