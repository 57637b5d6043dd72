package logparse

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	p, err := NewParser(DefaultParserConfig(), nil)
	require.NoError(t, err)
	return p
}

func TestParseRectangularPayload(t *testing.T) {
	log := strings.Join([]string{
		"2024/03/01 10:00:00AM\tPRO\tFRAB1234,1,3",
		"2024/03/01 10:00:05AM\tCUC\tx,1,3,0,0,0,0,1270",
		"2024/03/01 10:00:09AM\tPRO\tFRAB1234,1,2,9",
	}, "\n")

	table, err := newTestParser(t).Parse(context.Background(), "a.txt", strings.NewReader(log))
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())

	assert.Equal(t, 8, table.Width)
	assert.Equal(t, 5, table.ValueColumns())
	for _, ev := range table.Events {
		assert.Len(t, ev.Payload, table.Width)
	}
	assert.Equal(t, "", table.Events[0].Value(1))
	assert.Equal(t, "9", table.Events[2].Value(1))
}

func TestParseLineRules(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		wantOK   bool
		wantTime string
		wantCode string
	}{
		{name: "AM marker stripped", line: "2024/03/01 10:00:00AM\tPRO\tFRAB1234,1,3", wantOK: true, wantTime: "10:00:00", wantCode: "PRO"},
		{name: "PM marker stripped without hour shift", line: "2024/03/01 01:00:00PM\tPRO\tFRAB1234,1,3", wantOK: true, wantTime: "01:00:00", wantCode: "PRO"},
		{name: "too few fields", line: "2024/03/01 10:00:00\tPRO", wantOK: false},
		{name: "timestamp without time part", line: "2024/03/01\tPRO\tFRAB1234,1,3", wantOK: false},
		{name: "timestamp with extra part", line: "2024/03/01 10:00:00 AM\tPRO\tFRAB1234,1,3", wantOK: false},
		{name: "unparsable date", line: "someday 10:00:00\tPRO\tFRAB1234,1,3", wantOK: false},
		{name: "surrounding whitespace trimmed", line: "  2024/03/01 10:00:00\tCUC\t1,2,3  \n", wantOK: true, wantTime: "10:00:00", wantCode: "CUC"},
	}

	p := newTestParser(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := p.parseLine(tt.line)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantTime, ev.Time)
			assert.Equal(t, tt.wantCode, ev.Code)
		})
	}
}

func TestParseAMAndPMCollide(t *testing.T) {
	p := newTestParser(t)
	am, ok := p.parseLine("2024/03/01 01:00:00AM\tPRO\tx,1,1")
	require.True(t, ok)
	pm, ok := p.parseLine("2024/03/01 01:00:00PM\tPRO\tx,1,1")
	require.True(t, ok)
	assert.True(t, am.Timestamp.Equal(pm.Timestamp))
	assert.Equal(t, time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC), am.Timestamp)
}

func TestParseLatin1(t *testing.T) {
	// 0xE9 is "é" in ISO-8859-1 and invalid on its own as UTF-8.
	raw := []byte("2024/03/01 10:00:00\tPRO\tFRAB1234,1,1,caf\xe9\n")
	table, err := newTestParser(t).Parse(context.Background(), "l.txt", strings.NewReader(string(raw)))
	require.NoError(t, err)
	assert.Equal(t, "café", table.Events[0].Value(1))
}

func TestParseFileErrors(t *testing.T) {
	p := newTestParser(t)
	dir := t.TempDir()

	_, err := p.ParseFile(context.Background(), filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, ErrUnreadable)

	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte("garbage\nmore garbage\n"), 0o644))
	_, err = p.ParseFile(context.Background(), empty)
	assert.ErrorIs(t, err, ErrEmptyLog)
}

func TestFrameMatcher(t *testing.T) {
	m, err := NewFrameMatcher(DefaultFramePrefixes, 4)
	require.NoError(t, err)

	tests := []struct {
		token string
		want  string
	}{
		{token: "FRAB1234", want: "FRAB12"},
		{token: "LOT-FU9X7Y-22", want: "FU9X7Y"},
		{token: "F3_abc", want: "F3_abc"},
		{token: "ZZ1234", want: ""},
		{token: "FU12", want: ""},
		{token: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Extract(tt.token))
		})
	}

	_, err = NewFrameMatcher(nil, 4)
	assert.Error(t, err)
	_, err = NewFrameMatcher([]string{"FU"}, 0)
	assert.Error(t, err)
}

func TestFrameMatcherCustomPrefixes(t *testing.T) {
	m, err := NewFrameMatcher([]string{"QX"}, 2)
	require.NoError(t, err)
	assert.Equal(t, "QX12", m.Extract("aQX123"))
	assert.Equal(t, "", m.Extract("FRAB1234"))
}
