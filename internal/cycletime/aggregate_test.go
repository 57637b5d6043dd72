package cycletime

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateMinimumSampleGate(t *testing.T) {
	tests := []struct {
		name      string
		values    []float64
		wantOK    bool
		wantAvg   float64
		wantCount int
	}{
		{name: "four rows are not enough", values: []float64{30, 30, 30, 30}},
		{name: "five identical rows", values: []float64{30, 30, 30, 30, 30}, wantOK: true, wantAvg: 30, wantCount: 5},
		{name: "rounded to two places", values: []float64{10, 10, 10, 10, 11, 11}, wantOK: true, wantAvg: 10.33, wantCount: 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rows []Row
			for _, v := range tt.values {
				rows = append(rows, dataRow("FRAB12", 5, ptr(v)))
			}
			sums := Aggregate(rows, AllCapabilities(), DefaultMinSamples)
			fs, ok := sums.Get("FRAB12")
			require.True(t, ok, "frame summary exists even when insufficient")
			assert.Equal(t, tt.wantOK, fs.Sufficient)
			if tt.wantOK {
				assert.Equal(t, tt.wantAvg, fs.AvgSeconds)
				assert.Equal(t, tt.wantCount, fs.CountUsed)
			}
		})
	}
}

func TestAggregateExcludesFlaggedRows(t *testing.T) {
	rows := []Row{
		dataRow("A", 5, ptr(30)),
		dataRow("A", 5, ptr(30)),
		dataRow("A", 5, ptr(30)),
		dataRow("A", 5, ptr(30)),
		dataRow("A", 5, ptr(30)),
		dataRow("A", 5, ptr(500)),
		dataRow("A", 5, ptr(400)),
		dataRow("A", 5, ptr(300)),
		dataRow("A", 5, nil),
	}
	rows[5].Outlier = true
	rows[6].OutlierSubgroup = true
	rows[7].Fault = true

	sums := Aggregate(rows, AllCapabilities(), DefaultMinSamples)
	fs, _ := sums.Get("A")
	require.True(t, fs.Sufficient)
	assert.Equal(t, 30.0, fs.AvgSeconds)
	assert.Equal(t, 5, fs.CountUsed)
	assert.Equal(t, 3, fs.CountExcluded)
	assert.Equal(t, 0, fs.FirstRow)

	// Without fault markers the faulted row counts again.
	caps := AllCapabilities()
	caps.FaultMarkers = false
	fs, _ = Aggregate(rows, caps, DefaultMinSamples).Get("A")
	assert.Equal(t, 6, fs.CountUsed)
	assert.Equal(t, 75.0, fs.AvgSeconds)
}

func TestCapabilitiesErrorLabel(t *testing.T) {
	caps := AllCapabilities()
	assert.Equal(t, "", caps.ErrorLabel(dataRow("A", 1, nil)))
	assert.Equal(t, "MC ERROR", caps.ErrorLabel(Row{Frame: "A", Fault: true}))
	assert.Equal(t, "MC ERROR", caps.ErrorLabel(Row{Frame: "A", Outlier: true}))
	assert.Equal(t, "", caps.ErrorLabel(blankRow()))

	caps.OutlierFlags = false
	assert.Equal(t, "", caps.ErrorLabel(Row{Frame: "A", Outlier: true}))
}

func TestBuildSummaryRows(t *testing.T) {
	rows := []Row{
		dataRow("B", 3, ptr(30)),
		dataRow("A", 3, ptr(20)),
		{Frame: "A", Strip: ptr(2), Speed: ptr(3.94), Elapsed: ptr(20)},
		{Frame: "A", Strip: ptr(1), Speed: nil},
		blankRow(),
	}
	sums := Summaries{
		Order: []string{"B", "A"},
		ByFrame: map[string]FrameSummary{
			"A": {Frame: "A", FirstRow: 1, Sufficient: true, AvgSeconds: 20},
			"B": {Frame: "B", FirstRow: 0},
		},
	}

	got := BuildSummaryRows(rows, sums)
	want := []SummaryRow{
		{Frame: "A", Speed: 3.94},
		{Frame: "A", Speed: 5, SecPerStrip: ptr(20)},
		{Frame: "B", Speed: 5},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("summary rows mismatch (-want +got):\n%s", diff)
	}
}

func TestUnmatchedFrameRowsGetNoAverage(t *testing.T) {
	var rows []Row
	for i := 0; i < 6; i++ {
		rows = append(rows, dataRow("", 5, ptr(30)))
	}
	rows = append(rows, dataRow("", 5, ptr(900)))
	for i := 0; i < 5; i++ {
		rows = append(rows, dataRow("FRAB12", 5, ptr(30)))
	}

	assert.Equal(t, 0, DetectOutliers(rows, DefaultOutlierConfig()))
	for _, r := range rows[:7] {
		assert.False(t, r.Outlier)
	}

	sums := Aggregate(rows, AllCapabilities(), DefaultMinSamples)
	_, ok := sums.Get("")
	assert.False(t, ok)
	fs, ok := sums.Get("FRAB12")
	require.True(t, ok)
	assert.Equal(t, 7, fs.FirstRow)

	res := &FileResult{Rows: rows, Summaries: sums, Caps: AllCapabilities()}
	detail := res.DetailTable()
	col := detail.Index(ColSecPerStrip)
	for i := 0; i < 7; i++ {
		assert.Nil(t, detail.Value(i, col), "row %d", i)
	}
	assert.Equal(t, 30.0, detail.Value(7, col))
}
