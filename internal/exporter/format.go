package exporter

import (
	"regexp"
	"strings"

	"logview/internal/tabular"
)

// Records renders every row of t as CSV text.
func Records(t *tabular.Table) [][]string {
	out := make([][]string, 0, t.Len())
	for _, row := range t.Rows {
		rec := make([]string, len(t.Columns))
		for i := range rec {
			if i < len(row) {
				rec[i] = tabular.FormatCell(row[i])
			}
		}
		out = append(out, rec)
	}
	return out
}

var invalidSheetChars = regexp.MustCompile(`[\[\]:*?/\\]`)

// sheetName makes name acceptable to Excel: no reserved characters and at
// most 31 characters.
func sheetName(name string, index int) string {
	name = strings.TrimSpace(invalidSheetChars.ReplaceAllString(name, "_"))
	if name == "" {
		name = "Sheet" + string(rune('1'+index%9))
	}
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	return name
}
