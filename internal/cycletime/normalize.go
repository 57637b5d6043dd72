package cycletime

import (
	"logview/internal/logparse"
)

// DefaultMaxElapsedSeconds drops deltas beyond one day, which only appear when
// a midnight rollover was parsed wrongly upstream.
const DefaultMaxElapsedSeconds = 86400

// Normalize converts cycles into detail rows, inserts a blank separator after
// every strip-1 row and computes each row's time until the next row.
//
// Rows whose delta falls outside [0, maxElapsed] seconds are dropped; rows
// without a delta (last row, or followed by a separator) are kept.
func Normalize(cycles []logparse.Cycle, maxElapsed float64) []Row {
	if len(cycles) == 0 {
		return nil
	}
	if maxElapsed <= 0 {
		maxElapsed = DefaultMaxElapsedSeconds
	}

	rows := make([]Row, 0, len(cycles)+len(cycles)/4)
	for _, c := range cycles {
		r := rowFromCycle(c)
		rows = append(rows, r)
		if r.stripIs(1) {
			rows = append(rows, blankRow())
		}
	}

	kept := make([]Row, 0, len(rows))
	for i := range rows {
		r := rows[i]
		if !r.Blank && i+1 < len(rows) && !rows[i+1].Blank {
			d := r.Timestamp.Sub(rows[i+1].Timestamp)
			secs := d.Seconds()
			if secs < 0 || secs > maxElapsed {
				continue
			}
			r.Elapsed = &secs
			r.Duration = formatDuration(d)
		}
		kept = append(kept, r)
	}
	return kept
}
