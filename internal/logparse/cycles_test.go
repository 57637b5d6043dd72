package logparse

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseLines(t *testing.T, lines ...string) *EventTable {
	t.Helper()
	table, err := newTestParser(t).Parse(context.Background(), "t.txt", strings.NewReader(strings.Join(lines, "\n")))
	require.NoError(t, err)
	return table
}

func TestExtractCyclesPairsNextReadout(t *testing.T) {
	table := parseLines(t,
		"2024/03/01 10:00:00\tPRO\tFRAB1234,1,3",
		"2024/03/01 10:00:01\tXYZ\tFRAB1234,1,3",
		"2024/03/01 10:00:02\tCUC\tx,1,3,0,0,0,0,1270",
		"2024/03/01 10:00:03\tPRO\tFRAB1234,1,2",
		"2024/03/01 10:00:04\tPRO\tFRAB1234,1,1",
		"2024/03/01 10:00:05\tCUC\tx,1,3,0,0,0,0,1000",
		"2024/03/01 10:00:06\tPRO\tFRAB1234,1,1",
	)

	cycles := ExtractCycles(table, DefaultCycleConfig())
	require.Len(t, cycles, 4)

	require.NotNil(t, cycles[0].Speed)
	assert.Equal(t, 5.0, *cycles[0].Speed)
	assert.Equal(t, 0, cycles[0].Position)

	require.NotNil(t, cycles[1].Speed)
	require.NotNil(t, cycles[2].Speed)
	assert.Equal(t, 3.94, *cycles[1].Speed)
	assert.Equal(t, 3.94, *cycles[2].Speed)

	assert.Nil(t, cycles[3].Speed, "no readout after the last cycle")
}

func TestNormalizeSpeed(t *testing.T) {
	tests := []struct {
		raw  float64
		want float64
	}{
		{raw: 1270, want: 5},
		{raw: 1016, want: 4},
		{raw: 1000, want: 3.94},
		{raw: 127, want: 0.5},
		{raw: 1, want: 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeSpeed(tt.raw/254), "raw=%v", tt.raw)
	}
}

func TestExtractCyclesNonNumericReadout(t *testing.T) {
	table := parseLines(t,
		"2024/03/01 10:00:00\tPRO\tFRAB1234,1,3",
		"2024/03/01 10:00:01\tCUC\tx,1,3,0,0,0,0,fast",
		"2024/03/01 10:00:02\tCUC\tx,1,3,0,0,0,0,1270",
	)
	cycles := ExtractCycles(table, DefaultCycleConfig())
	require.Len(t, cycles, 1)
	assert.Nil(t, cycles[0].Speed, "the first readout wins even when it is not numeric")
}

func TestExtractCyclesNoCycles(t *testing.T) {
	table := parseLines(t, "2024/03/01 10:00:01\tCUC\tx,1,3,0,0,0,0,1270")
	assert.Empty(t, ExtractCycles(table, DefaultCycleConfig()))
	assert.Empty(t, ExtractCycles(nil, DefaultCycleConfig()))
}
