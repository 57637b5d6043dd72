package logparse

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Payload slots that precede the numbered values.
const (
	slotFrame = iota
	slotG
	slotStrip
	valueOffset // value_1 lives at payload[valueOffset]
)

// RawEvent is one accepted line of an equipment log.
type RawEvent struct {
	Line      int       // 1-based line number in the source file
	Date      string    // date as written in the log
	Time      string    // time of day with the AM/PM marker removed
	Timestamp time.Time // Date+Time parsed with the configured layouts
	Code      string    // event code, e.g. PRO, CUC, ERRSET
	Frame     string    // frame identifier extracted from the frame token, "" when unmatched
	Payload   []string  // comma separated values, padded to EventTable.Width
}

// StripIndex returns the numeric strip index, if the slot holds a number.
func (e RawEvent) StripIndex() (float64, bool) {
	return parseNumber(e.slot(slotStrip))
}

// Value returns the raw text of value_n (1-based). Missing slots are "".
func (e RawEvent) Value(n int) string {
	if n < 1 {
		return ""
	}
	return e.slot(valueOffset + n - 1)
}

// NumericValue parses value_n as a number.
func (e RawEvent) NumericValue(n int) (float64, bool) {
	return parseNumber(e.Value(n))
}

func (e RawEvent) slot(i int) string {
	if i < 0 || i >= len(e.Payload) {
		return ""
	}
	return e.Payload[i]
}

// EventTable is the parsed form of one log file.
type EventTable struct {
	Source string
	Width  int // number of payload slots on every event
	Events []RawEvent
}

// Len returns the number of events.
func (t *EventTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Events)
}

// ValueColumns is the number of numbered value slots (value_1..value_N).
func (t *EventTable) ValueColumns() int {
	if t == nil || t.Width <= valueOffset {
		return 0
	}
	return t.Width - valueOffset
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
