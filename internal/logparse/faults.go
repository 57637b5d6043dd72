package logparse

import "strings"

// DefaultFaultCodes are the machine error markers that invalidate a cycle.
var DefaultFaultCodes = []string{"ERRSET", "ERRRCV", "ERRCLR", "DMC", "DMW"}

// CodeSet is a set of event codes.
type CodeSet map[string]struct{}

// NewCodeSet builds a set from codes, ignoring blanks.
func NewCodeSet(codes ...string) CodeSet {
	set := make(CodeSet, len(codes))
	for _, c := range codes {
		if c = strings.TrimSpace(c); c != "" {
			set[c] = struct{}{}
		}
	}
	return set
}

// Has reports whether code is in the set.
func (s CodeSet) Has(code string) bool {
	_, ok := s[code]
	return ok
}

// AnnotateFaults sets Fault on every cycle whose window up to and including
// the next cycle-start event contains a fault code. The final cycle has no
// closing event and is never flagged. It returns the number of faulted cycles.
func AnnotateFaults(table *EventTable, cycles []Cycle, faults CodeSet) int {
	if table.Len() == 0 || len(cycles) < 2 || len(faults) == 0 {
		return 0
	}

	// seen[i] counts fault events in Events[:i].
	seen := make([]int, len(table.Events)+1)
	for i, ev := range table.Events {
		seen[i+1] = seen[i]
		if faults.Has(ev.Code) {
			seen[i+1]++
		}
	}

	flagged := 0
	for i := 1; i < len(cycles); i++ {
		start, end := cycles[i-1].Position, cycles[i].Position
		if start > end {
			start, end = end, start
		}
		if seen[end+1]-seen[start] > 0 {
			cycles[i-1].Fault = true
			flagged++
		}
	}
	return flagged
}
