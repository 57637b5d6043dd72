package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIQRTrim(t *testing.T) {
	values := []float64{10, 11, 12, 13, 100}
	kept := IQRTrim(values, 1.5)
	assert.Equal(t, []float64{10, 11, 12, 13}, kept)
	assert.True(t, HasIQROutliers(values, 1.5))
	assert.False(t, HasIQROutliers(kept, 1.5))
}

func TestTrimmedMean(t *testing.T) {
	tests := []struct {
		name       string
		values     []float64
		wantValid  bool
		wantMean   float64
		wantBefore int
		wantAfter  int
	}{
		{
			name:       "clean list keeps every value",
			values:     []float64{30, 31, 29, 30},
			wantValid:  true,
			wantMean:   30,
			wantBefore: 4,
			wantAfter:  4,
		},
		{
			name:       "spike removed",
			values:     []float64{10, 11, 12, 13, 100},
			wantValid:  true,
			wantMean:   11.5,
			wantBefore: 5,
			wantAfter:  4,
		},
		{
			name:       "single value passes through",
			values:     []float64{42},
			wantValid:  false,
			wantBefore: 1,
			wantAfter:  0,
		},
		{
			name:       "empty",
			values:     nil,
			wantValid:  false,
			wantBefore: 0,
			wantAfter:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimmedMean(tt.values, 1.5, 2)
			require.Equal(t, tt.wantValid, got.Valid)
			assert.Equal(t, tt.wantBefore, got.Before)
			assert.Equal(t, tt.wantAfter, got.After)
			if tt.wantValid {
				assert.InDelta(t, tt.wantMean, got.Mean, 1e-9)
			}
		})
	}
}

func TestTrimmedMeanIsIdempotentOnCleanData(t *testing.T) {
	clean := []float64{20, 21, 22, 23, 24}
	first := TrimmedMean(clean, 1.5, 2)
	require.True(t, first.Valid)
	assert.Equal(t, first.Before, first.After)
	assert.InDelta(t, Mean(clean), first.Mean, 1e-9)
}
