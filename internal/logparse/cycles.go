package logparse

import (
	"math"

	"logview/internal/stats"
)

// CycleConfig names the event codes and payload slot used to rebuild cycles.
type CycleConfig struct {
	CycleCode    string  // event code that starts a production cycle
	SpeedCode    string  // event code that carries the cutter speed readout
	SpeedSlot    int     // value_n slot holding the raw speed
	SpeedDivisor float64 // raw units per inch-per-second
}

// DefaultCycleConfig returns PRO/CUC pairing with value_5 converted by /10/25.4.
func DefaultCycleConfig() CycleConfig {
	return CycleConfig{
		CycleCode:    "PRO",
		SpeedCode:    "CUC",
		SpeedSlot:    5,
		SpeedDivisor: 254,
	}
}

// Cycle is one production cycle derived from a cycle-start event.
type Cycle struct {
	Event    RawEvent
	Position int      // index of Event inside the source EventTable
	Speed    *float64 // inches per second, nil when no readout follows
	Fault    bool
}

// ExtractCycles returns one Cycle per cycle-start event, each paired with the
// first speed readout that follows it.
//
// Pending cycles are queued until the next readout resolves all of them, so
// the table is walked exactly once.
func ExtractCycles(table *EventTable, cfg CycleConfig) []Cycle {
	if table.Len() == 0 {
		return nil
	}
	if cfg.SpeedDivisor == 0 {
		cfg.SpeedDivisor = DefaultCycleConfig().SpeedDivisor
	}

	var (
		cycles  []Cycle
		pending []int // indexes into cycles waiting for a readout
	)
	for pos, ev := range table.Events {
		switch ev.Code {
		case cfg.CycleCode:
			cycles = append(cycles, Cycle{Event: ev, Position: pos})
			pending = append(pending, len(cycles)-1)
		case cfg.SpeedCode:
			if len(pending) == 0 {
				continue
			}
			speed := convertSpeed(ev, cfg)
			for _, i := range pending {
				if speed != nil {
					v := *speed
					cycles[i].Speed = &v
				}
			}
			pending = pending[:0]
		}
	}
	return cycles
}

// convertSpeed turns the raw readout into inches per second. Whole results
// are kept integral, everything else is rounded to two places.
func convertSpeed(ev RawEvent, cfg CycleConfig) *float64 {
	raw, ok := ev.NumericValue(cfg.SpeedSlot)
	if !ok {
		return nil
	}
	ips := NormalizeSpeed(raw / cfg.SpeedDivisor)
	return &ips
}

// NormalizeSpeed keeps whole speeds as-is and rounds the rest to 2 decimals.
func NormalizeSpeed(ips float64) float64 {
	if ips == math.Trunc(ips) {
		return ips
	}
	return stats.Round(ips, 2)
}
