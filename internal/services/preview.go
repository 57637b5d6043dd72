package services

import (
	"context"
	"path/filepath"

	"logview/internal/tabular"
)

// DefaultPreviewRows caps the rows rendered on the result page.
const DefaultPreviewRows = 1000

// Preview is the tabular form of an output file, ready for an HTML table.
type Preview struct {
	File      string     `json:"file"`
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
	TotalRows int        `json:"total_rows"`
	Truncated bool       `json:"truncated"`
}

// LoadPreview reads path through the tabular reader and renders at most
// maxRows rows as text. A non-positive maxRows means no cap.
func LoadPreview(ctx context.Context, reader *tabular.Reader, path string, maxRows int) (*Preview, error) {
	table, err := reader.ReadFile(ctx, path, tabular.ReadOptions{})
	if err != nil {
		return nil, err
	}
	return NewPreview(filepath.Base(path), table, maxRows), nil
}

// NewPreview renders table as text rows.
func NewPreview(file string, table *tabular.Table, maxRows int) *Preview {
	p := &Preview{
		File:      file,
		Columns:   append([]string{}, table.Columns...),
		TotalRows: table.Len(),
	}
	shown := table
	if maxRows > 0 && table.Len() > maxRows {
		shown = table.Head(maxRows)
		p.Truncated = true
	}
	p.Rows = make([][]string, 0, shown.Len())
	for i := 0; i < shown.Len(); i++ {
		row := make([]string, len(p.Columns))
		for j := range row {
			row[j] = shown.String(i, j)
		}
		p.Rows = append(p.Rows, row)
	}
	return p
}
