package uph

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"logview/internal/tabular"
)

// DayLayout is the normalized date format; it sorts lexically.
const DayLayout = "2006/01/02"

// DateColumn is appended to the cleaned sheet with the normalized day.
const DateColumn = "date_time_start"

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04",
	"2006-01-02",
	"2006/01/02",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"01-02-06 15:04",
	"01-02-06",
	"2-Jan-2006",
	"02 Jan 2006",
}

// Range is an inclusive day range. Empty bounds are open.
type Range struct {
	From string
	To   string
}

// ParseRange validates both bounds.
func ParseRange(from, to string) (Range, error) {
	r := Range{From: strings.TrimSpace(from), To: strings.TrimSpace(to)}
	for _, d := range []string{r.From, r.To} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(DayLayout, d); err != nil {
			return Range{}, fmt.Errorf("%w: %q", ErrInvalidDate, d)
		}
	}
	return r, nil
}

// Contains reports whether day (DayLayout) lies in the range.
func (r Range) Contains(day string) bool {
	if r.From != "" && day < r.From {
		return false
	}
	if r.To != "" && day > r.To {
		return false
	}
	return true
}

// Label renders the range for output file names, e.g. "20240101_to_20240131".
// A fully open range renders as "all".
func (r Range) Label() string {
	if r.From == "" && r.To == "" {
		return "all"
	}
	strip := func(s string) string { return strings.ReplaceAll(s, "/", "") }
	return strip(r.From) + "_to_" + strip(r.To)
}

// findDateColumn returns the first column whose name mentions a date or time.
func findDateColumn(t *tabular.Table) int {
	for i, c := range t.Columns {
		name := strings.ToLower(c)
		for _, kw := range []string{"date", "time", "วัน", "เวลา"} {
			if strings.Contains(name, kw) {
				return i
			}
		}
	}
	return -1
}

// parseDay turns a date cell into DayLayout. Numeric cells are Excel serial dates.
func parseDay(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case time.Time:
		return x.Format(DayLayout), !x.IsZero()
	case float64:
		t, err := excelize.ExcelDateToTime(x, false)
		if err != nil {
			return "", false
		}
		return t.Format(DayLayout), true
	}
	s := strings.TrimSpace(tabular.FormatCell(v))
	if s == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DayLayout), true
		}
	}
	return "", false
}
