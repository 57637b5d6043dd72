// Package logparse turns raw tab-delimited equipment logs into typed events and
// reconstructs production cycles from them.
//
// A log line looks like
//
//	2024/03/01 10:15:02AM<TAB>PRO<TAB>FRAB1234,17,3,....
//
// The third field is a comma separated payload whose first three slots are the
// frame token, the G counter and the strip index; the remaining slots are the
// numbered values (value_1, value_2, ...).
//
// The package is split in three stages:
//   - Parser reads a file into an EventTable (rectangular payloads)
//   - ExtractCycles pairs every cycle-start event with the next speed readout
//   - AnnotateFaults marks cycles whose window contains a fault code
package logparse
