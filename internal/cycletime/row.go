package cycletime

import (
	"fmt"
	"time"

	"logview/internal/logparse"
)

// Row is one line of the processed detail sheet. Blank rows are separators
// and carry no data.
type Row struct {
	Blank bool

	Date      string
	Time      string
	Timestamp time.Time
	Code      string
	Frame     string
	Strip     *float64
	Value1    *float64
	Speed     *float64
	Fault     bool

	// Elapsed is the number of seconds until the next row. It is nil for the
	// last row and for rows next to a blank separator.
	Elapsed  *float64
	Duration string

	Subgroup        int // 0 when the row belongs to no subgroup
	OutlierSubgroup bool
	Outlier         bool
}

func blankRow() Row {
	return Row{Blank: true}
}

// stripIs reports whether the row carries strip index n.
func (r Row) stripIs(n float64) bool {
	return r.Strip != nil && *r.Strip == n
}

func rowFromCycle(c logparse.Cycle) Row {
	r := Row{
		Date:      c.Event.Date,
		Time:      c.Event.Time,
		Timestamp: c.Event.Timestamp,
		Code:      c.Event.Code,
		Frame:     c.Event.Frame,
		Speed:     c.Speed,
		Fault:     c.Fault,
	}
	if v, ok := c.Event.StripIndex(); ok {
		r.Strip = &v
	}
	if v, ok := c.Event.NumericValue(1); ok {
		r.Value1 = &v
	}
	return r
}

// formatDuration renders d the way the detail sheet has always shown it:
// HH:MM:SS below a day and "N days HH:MM:SS" from a day on.
func formatDuration(d time.Duration) string {
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second

	clock := fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	if micros := d / time.Microsecond; micros > 0 {
		clock += fmt.Sprintf(".%06d", micros)
	}
	if days > 0 {
		return fmt.Sprintf("%d days %s", days, clock)
	}
	return clock
}
