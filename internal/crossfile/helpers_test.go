package crossfile

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"logview/internal/exporter"
	"logview/internal/tabular"
)

func ptr(v float64) *float64 { return &v }

// detailSheet builds a minimal per-file detail sheet: frame, speed, sec/strip.
func detailSheet(name string, rows ...[]any) *tabular.Table {
	t := tabular.New(name, "date", "frame", "speed", "sec/strip")
	for _, r := range rows {
		t.Append(append([]any{"2024/03/01"}, r...)...)
	}
	return t
}

func writeWorkbook(t *testing.T, dir, name string, sheets ...*tabular.Table) string {
	t.Helper()
	path, err := exporter.NewWorkbookWriter(nil).WriteWorkbook(context.Background(), filepath.Join(dir, name), sheets...)
	require.NoError(t, err)
	return path
}

// referenceTable mirrors the production reference headers, trailing spaces included.
func referenceTable(rows ...[]any) *tabular.Table {
	t := tabular.New("Sheet1", "FRAME_STOCK", "PACKAGE_CODE", "Package size ", "Package group",
		"Lead frame type by frame stock ", "Unit/strip")
	for _, r := range rows {
		t.Append(r...)
	}
	return t
}
