package cycletime

import (
	"math"

	"logview/internal/stats"
)

// OutlierConfig holds the thresholds of the combined outlier test.
type OutlierConfig struct {
	IQRFactor           float64 // upper fence = Q3 + IQRFactor*IQR
	ZThreshold          float64
	MinDeviationSeconds float64 // absolute floor both tests must clear
}

// DefaultOutlierConfig returns the thresholds the cycle-time reports were tuned with.
func DefaultOutlierConfig() OutlierConfig {
	return OutlierConfig{IQRFactor: 1, ZThreshold: 2, MinDeviationSeconds: 90}
}

type frameStats struct {
	median, upper float64
	mean, std     float64
}

// DetectOutliers flags cycle times per frame and returns how many were flagged.
//
// A value is an outlier when it is above the IQR fence and more than the floor
// away from the median, or when its z-score is above the threshold and it is
// more than the floor away from the mean. The strip-2 row that directly
// precedes a strip-1 row is left out of the frame statistics and is not tested.
func DetectOutliers(rows []Row, cfg OutlierConfig) int {
	groups := make(map[string][]int)
	for i, r := range rows {
		rows[i].Outlier = false
		if r.Blank || r.Frame == "" {
			continue
		}
		if r.stripIs(2) && i+1 < len(rows) && rows[i+1].stripIs(1) {
			continue
		}
		groups[r.Frame] = append(groups[r.Frame], i)
	}

	flagged := 0
	for _, idx := range groups {
		st, ok := computeFrameStats(rows, idx, cfg.IQRFactor)
		if !ok {
			continue
		}
		for _, i := range idx {
			if rows[i].Elapsed == nil {
				continue
			}
			if isOutlier(*rows[i].Elapsed, st, cfg) {
				rows[i].Outlier = true
				flagged++
			}
		}
	}
	return flagged
}

func computeFrameStats(rows []Row, idx []int, iqrFactor float64) (frameStats, bool) {
	values := make([]float64, 0, len(idx))
	for _, i := range idx {
		if rows[i].Elapsed != nil {
			values = append(values, *rows[i].Elapsed)
		}
	}
	if len(values) == 0 {
		return frameStats{}, false
	}
	q1, median, q3 := stats.Quartiles(values)
	return frameStats{
		median: median,
		upper:  q3 + iqrFactor*(q3-q1),
		mean:   stats.Mean(values),
		std:    stats.PopulationStdDev(values),
	}, true
}

func isOutlier(v float64, st frameStats, cfg OutlierConfig) bool {
	if v > st.upper && math.Abs(v-st.median) > cfg.MinDeviationSeconds {
		return true
	}
	if st.std > 0 {
		z := (v - st.mean) / st.std
		if z > cfg.ZThreshold && math.Abs(v-st.mean) > cfg.MinDeviationSeconds {
			return true
		}
	}
	return false
}
