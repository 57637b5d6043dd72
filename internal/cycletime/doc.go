// Package cycletime turns the cycles of one equipment log into per-frame
// cycle-time summaries.
//
// The stages run in order:
//
//	Normalize      blank sentinel after strip 1, time-to-next-row, range filter
//	Segment        strip subgroups, frame-change separators, invalid subgroups
//	DetectOutliers per-frame IQR + z-score test with an absolute floor
//	Aggregate      per-frame mean over qualifying rows (minimum sample gate)
//
// Analyzer chains them for a single file and Runner fans out over a batch of
// files, writing one workbook per file.
package cycletime
