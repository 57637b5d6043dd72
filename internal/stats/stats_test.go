package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		p      float64
		want   float64
	}{
		{name: "single value", values: []float64{7}, p: 25, want: 7},
		{name: "median of even count", values: []float64{4, 1, 3, 2}, p: 50, want: 2.5},
		{name: "first quartile interpolates", values: []float64{1, 2, 3, 4}, p: 25, want: 1.75},
		{name: "third quartile interpolates", values: []float64{1, 2, 3, 4}, p: 75, want: 3.25},
		{name: "lower clamp", values: []float64{5, 9}, p: 0, want: 5},
		{name: "upper clamp", values: []float64{5, 9}, p: 100, want: 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Percentile(tt.values, tt.p), 1e-9)
		})
	}
}

func TestPercentileEmpty(t *testing.T) {
	assert.True(t, math.IsNaN(Percentile(nil, 50)))
	assert.True(t, math.IsNaN(Mean(nil)))
}

func TestPercentileDoesNotReorderInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Percentile(values, 50)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestStdDev(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	assert.InDelta(t, 2.0, PopulationStdDev(values), 1e-9)
	assert.InDelta(t, 2.138089935, SampleStdDev(values), 1e-9)
	assert.True(t, math.IsNaN(SampleStdDev([]float64{1})))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 3.94, Round(3.9370078, 2))
	assert.Equal(t, 2.5, Round(2.4999999999, 2))
	assert.Equal(t, -1.24, Round(-1.236, 2))
}
