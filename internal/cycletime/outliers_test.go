package cycletime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectOutliersFlagsSpike(t *testing.T) {
	var rows []Row
	for _, v := range []float64{10, 10, 10, 10, 10, 200} {
		rows = append(rows, dataRow("FRAB12", 5, ptr(v)))
	}

	n := DetectOutliers(rows, DefaultOutlierConfig())
	assert.Equal(t, 1, n)
	for i, r := range rows[:5] {
		assert.False(t, r.Outlier, "row %d", i)
	}
	assert.True(t, rows[5].Outlier)
}

func TestDetectOutliersFloorProtectsTightGroups(t *testing.T) {
	var rows []Row
	for _, v := range []float64{10, 10, 10, 10, 10, 60} {
		rows = append(rows, dataRow("FRAB12", 5, ptr(v)))
	}
	assert.Equal(t, 0, DetectOutliers(rows, DefaultOutlierConfig()))
}

func TestDetectOutliersGroupsByFrame(t *testing.T) {
	rows := []Row{
		dataRow("A", 5, ptr(200)),
		dataRow("A", 5, ptr(200)),
		dataRow("A", 5, ptr(210)),
		dataRow("B", 5, ptr(10)),
		dataRow("B", 5, ptr(10)),
		dataRow("B", 5, ptr(10)),
		dataRow("B", 5, ptr(10)),
		dataRow("B", 5, ptr(10)),
		dataRow("B", 5, ptr(205)),
	}
	assert.Equal(t, 1, DetectOutliers(rows, DefaultOutlierConfig()))
	assert.True(t, rows[8].Outlier)
	assert.False(t, rows[0].Outlier)
}

func TestDetectOutliersSkipsStripTwoBeforeStripOne(t *testing.T) {
	rows := []Row{
		dataRow("A", 5, ptr(10)),
		dataRow("A", 4, ptr(10)),
		dataRow("A", 3, ptr(10)),
		dataRow("A", 5, ptr(10)),
		dataRow("A", 4, ptr(10)),
		dataRow("A", 2, ptr(500)),
		dataRow("A", 1, nil),
	}
	assert.Equal(t, 0, DetectOutliers(rows, DefaultOutlierConfig()))
	assert.False(t, rows[5].Outlier, "excluded row is never tested")

	// Without the following strip-1 row the same value is an outlier.
	rows[6] = dataRow("A", 3, nil)
	assert.Equal(t, 1, DetectOutliers(rows, DefaultOutlierConfig()))
	assert.True(t, rows[5].Outlier)
}

func TestDetectOutliersIgnoresBlankAndUnnamedFrames(t *testing.T) {
	rows := []Row{
		blankRow(),
		dataRow("", 5, ptr(10)),
		dataRow("", 5, ptr(900)),
	}
	assert.Equal(t, 0, DetectOutliers(rows, DefaultOutlierConfig()))
}

func TestDetectOutliersZScoreBranch(t *testing.T) {
	// Q3 fence is wide enough that only the z-score test can fire.
	cfg := OutlierConfig{IQRFactor: 100, ZThreshold: 2, MinDeviationSeconds: 90}
	var rows []Row
	for _, v := range []float64{10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 400} {
		rows = append(rows, dataRow("A", 5, ptr(v)))
	}
	assert.Equal(t, 1, DetectOutliers(rows, cfg))
	assert.True(t, rows[10].Outlier)
}
