package cycletime

// Segment assigns strip subgroups and lays the rows out for the detail sheet.
//
// Strip indices count down within a strip, so a subgroup starts on the first
// row after a gap or whenever the index rises above the previous one. Rows
// without a strip index (including blank separators) break continuity and are
// not emitted. Inside each subgroup a blank row separates frame changes and
// one trailing blank row closes the subgroup. Subgroups that never reach
// strip 1 have every row marked OutlierSubgroup.
func Segment(rows []Row) []Row {
	var (
		out     []Row
		current []Row
		id      int
		prev    *float64
	)

	flush := func() {
		if len(current) == 0 {
			return
		}
		complete := false
		for _, r := range current {
			if r.stripIs(1) {
				complete = true
				break
			}
		}
		for i, r := range current {
			r.OutlierSubgroup = !complete
			if i > 0 && current[i-1].Frame != r.Frame {
				out = append(out, blankRow())
			}
			out = append(out, r)
		}
		out = append(out, blankRow())
		current = current[:0]
	}

	for _, r := range rows {
		if r.Strip == nil {
			prev = nil
			continue
		}
		if prev == nil || *r.Strip > *prev {
			flush()
			id++
		}
		r.Subgroup = id
		current = append(current, r)
		v := *r.Strip
		prev = &v
	}
	flush()
	return out
}

// SubgroupCount returns the number of distinct subgroups in rows.
func SubgroupCount(rows []Row) int {
	seen := make(map[int]struct{})
	for _, r := range rows {
		if r.Subgroup > 0 {
			seen[r.Subgroup] = struct{}{}
		}
	}
	return len(seen)
}
