package exporter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"logview/internal/tabular"
)

// WorkbookWriter saves tables as workbook sheets.
type WorkbookWriter struct {
	logger *slog.Logger
	csv    *CSVWriter
}

// NewWorkbookWriter creates a writer. A nil logger falls back to slog.Default().
func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{
		logger: logger.With(slog.String("component", "workbook_writer")),
		csv:    NewCSVWriter("", logger),
	}
}

// WriteWorkbook saves sheets (in order) to path and returns the path actually
// written. If the workbook cannot be saved, every sheet is written as CSV
// next to it instead and the first CSV path is returned.
func (w *WorkbookWriter) WriteWorkbook(ctx context.Context, path string, sheets ...*tabular.Table) (string, error) {
	if len(sheets) == 0 {
		return "", errors.New("workbook needs at least one sheet")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	err := w.saveXLSX(path, sheets)
	if err == nil {
		w.logger.InfoContext(ctx, "workbook saved",
			slog.String("file", path),
			slog.Int("sheets", len(sheets)))
		return path, nil
	}

	w.logger.WarnContext(ctx, "workbook save failed, falling back to CSV",
		slog.String("file", path),
		slog.String("error", err.Error()))
	return w.saveCSVFallback(path, sheets)
}

func (w *WorkbookWriter) saveXLSX(path string, sheets []*tabular.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	used := make(map[string]bool, len(sheets))
	for i, t := range sheets {
		name := sheetName(t.Name, i)
		for used[strings.ToLower(name)] {
			name = sheetName(fmt.Sprintf("%s_%d", name, i+1), i)
		}
		used[strings.ToLower(name)] = true

		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return fmt.Errorf("failed to name sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %q: %w", name, err)
		}

		if err := writeSheet(f, name, t); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func writeSheet(f *excelize.File, name string, t *tabular.Table) error {
	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return fmt.Errorf("failed to open sheet %q: %w", name, err)
	}

	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header of %q: %w", name, err)
	}

	for r, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		copy(values, row)
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", r+1, name, err)
		}
	}
	return sw.Flush()
}

func (w *WorkbookWriter) saveCSVFallback(path string, sheets []*tabular.Table) (string, error) {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	var first string
	for i, t := range sheets {
		target := base + ".csv"
		if i > 0 {
			target = fmt.Sprintf("%s_%s.csv", base, sheetName(t.Name, i))
		}
		written, err := w.csv.WriteTable(target, t)
		if err != nil {
			return "", fmt.Errorf("failed to write CSV fallback: %w", err)
		}
		if i == 0 {
			first = written
		}
	}
	return first, nil
}
