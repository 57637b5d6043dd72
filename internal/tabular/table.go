package tabular

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Table is a named, column-ordered set of rows.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// New creates an empty table with the given header.
func New(name string, columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Name: name, Columns: cols}
}

// Append adds a row. Short rows are padded with nil and long rows truncated so
// the table stays rectangular.
func (t *Table) Append(values ...any) {
	row := make([]any, len(t.Columns))
	copy(row, values)
	t.Rows = append(t.Rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Index returns the position of the column whose trimmed name equals name, or -1.
func (t *Table) Index(name string) int {
	name = strings.TrimSpace(name)
	for i, c := range t.Columns {
		if strings.TrimSpace(c) == name {
			return i
		}
	}
	return -1
}

// IndexFold returns the first column matching any candidate case-insensitively.
func (t *Table) IndexFold(candidates ...string) int {
	for _, cand := range candidates {
		cand = strings.TrimSpace(cand)
		for i, c := range t.Columns {
			if strings.EqualFold(strings.TrimSpace(c), cand) {
				return i
			}
		}
	}
	return -1
}

// HasColumns reports whether every name resolves through Index.
func (t *Table) HasColumns(names ...string) bool {
	for _, n := range names {
		if t.Index(n) < 0 {
			return false
		}
	}
	return true
}

// Value returns the raw cell, or nil when out of range.
func (t *Table) Value(row, col int) any {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return nil
	}
	return t.Rows[row][col]
}

// String renders a cell as text; nil renders as "".
func (t *Table) String(row, col int) string {
	return FormatCell(t.Value(row, col))
}

// Float coerces a cell to a number. Text is parsed; anything else that is
// not numeric reports false.
func (t *Table) Float(row, col int) (float64, bool) {
	return ToFloat(t.Value(row, col))
}

// Head returns a table holding at most n rows.
func (t *Table) Head(n int) *Table {
	out := New(t.Name, t.Columns...)
	if n > len(t.Rows) || n < 0 {
		n = len(t.Rows)
	}
	out.Rows = append(out.Rows, t.Rows[:n]...)
	return out
}

// ToFloat coerces a cell value to float64.
func ToFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		if math.IsNaN(x) {
			return 0, false
		}
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// FormatCell renders a value for text outputs (CSV, HTML).
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format("2006-01-02 15:04:05")
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// InferCell turns raw text into a typed cell: "" becomes nil, numbers become
// float64 and everything else stays a string.
func InferCell(s string) any {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f
	}
	return s
}
