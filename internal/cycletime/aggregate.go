package cycletime

import (
	"sort"

	"logview/internal/stats"
)

// DefaultMinSamples is the minimum number of qualifying rows per frame.
const DefaultMinSamples = 5

// FrameSummary is the cycle-time result for one frame.
type FrameSummary struct {
	Frame    string
	FirstRow int      // index of the frame's first detail row
	Speed    *float64 // speed of the first row

	// Sufficient is false when fewer than the minimum qualifying rows exist;
	// the remaining fields are then unset.
	Sufficient    bool
	AvgSeconds    float64
	CountUsed     int
	CountExcluded int
}

// Summaries holds the per-frame results keyed by frame, plus first-seen order.
type Summaries struct {
	Order   []string
	ByFrame map[string]FrameSummary
}

// Get returns the summary for frame.
func (s Summaries) Get(frame string) (FrameSummary, bool) {
	fs, ok := s.ByFrame[frame]
	return fs, ok
}

// SufficientCount returns how many frames produced an average.
func (s Summaries) SufficientCount() int {
	n := 0
	for _, fs := range s.ByFrame {
		if fs.Sufficient {
			n++
		}
	}
	return n
}

// Aggregate averages the elapsed time of every frame over rows that are not
// excluded by caps. Frames with fewer than minSamples qualifying rows get a
// summary with Sufficient=false.
func Aggregate(rows []Row, caps Capabilities, minSamples int) Summaries {
	if minSamples <= 0 {
		minSamples = DefaultMinSamples
	}
	out := Summaries{ByFrame: make(map[string]FrameSummary)}

	type acc struct {
		first      int
		speed      *float64
		good       []float64
		withValues int
	}
	accs := make(map[string]*acc)
	for i, r := range rows {
		if r.Blank || r.Frame == "" {
			continue
		}
		a, ok := accs[r.Frame]
		if !ok {
			a = &acc{first: i, speed: r.Speed}
			accs[r.Frame] = a
			out.Order = append(out.Order, r.Frame)
		}
		if r.Elapsed == nil {
			continue
		}
		a.withValues++
		if !caps.Excluded(r) {
			a.good = append(a.good, *r.Elapsed)
		}
	}

	for _, frame := range out.Order {
		a := accs[frame]
		fs := FrameSummary{Frame: frame, FirstRow: a.first, Speed: a.speed}
		if len(a.good) >= minSamples {
			fs.Sufficient = true
			fs.AvgSeconds = stats.Round(stats.Mean(a.good), 2)
			fs.CountUsed = len(a.good)
			fs.CountExcluded = a.withValues - len(a.good)
		}
		out.ByFrame[frame] = fs
	}
	return out
}

// SummaryRow is one line of the per-file Summary sheet.
type SummaryRow struct {
	Frame       string
	Speed       float64
	SecPerStrip *float64
}

// BuildSummaryRows produces one row per (frame, speed) pair, sorted by frame
// then speed. The value is the frame average when the pair contains the
// frame's first row, which is where the detail sheet records it.
func BuildSummaryRows(rows []Row, sums Summaries) []SummaryRow {
	type key struct {
		frame string
		speed float64
	}
	seen := make(map[key]int)
	var out []SummaryRow
	for i, r := range rows {
		if r.Blank || r.Frame == "" || r.Speed == nil {
			continue
		}
		k := key{frame: r.Frame, speed: *r.Speed}
		pos, ok := seen[k]
		if !ok {
			pos = len(out)
			seen[k] = pos
			out = append(out, SummaryRow{Frame: r.Frame, Speed: *r.Speed})
		}
		if out[pos].SecPerStrip != nil {
			continue
		}
		if fs, ok := sums.Get(r.Frame); ok && fs.Sufficient && fs.FirstRow == i {
			v := fs.AvgSeconds
			out[pos].SecPerStrip = &v
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Frame != out[j].Frame {
			return out[i].Frame < out[j].Frame
		}
		return out[i].Speed < out[j].Speed
	})
	return out
}
