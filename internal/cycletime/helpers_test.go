package cycletime

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"logview/internal/logparse"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func ptr(v float64) *float64 { return &v }

// cycleAt builds a cycle whose timestamp is offset seconds after base.
func cycleAt(offset int, frame string, strip int) logparse.Cycle {
	ts := base.Add(time.Duration(offset) * time.Second)
	return logparse.Cycle{
		Event: logparse.RawEvent{
			Date:      ts.Format("2006/01/02"),
			Time:      ts.Format("15:04:05"),
			Timestamp: ts,
			Code:      "PRO",
			Frame:     frame,
			Payload:   []string{frame, "0", fmt.Sprint(strip), "7"},
		},
		Speed: ptr(5),
	}
}

func dataRow(frame string, strip float64, elapsed *float64) Row {
	return Row{Frame: frame, Strip: ptr(strip), Elapsed: elapsed, Speed: ptr(5)}
}

// logBuilder writes equipment logs newest-first, the order the controllers
// export them in.
type logBuilder struct {
	lines []string
	clock time.Time
}

func newLogBuilder() *logBuilder {
	return &logBuilder{clock: base}
}

func (b *logBuilder) stamp() string {
	s := b.clock.Format("2006/01/02 03:04:05PM")
	return s
}

// strip emits one PRO+CUC pair per strip index, going back step seconds each time.
func (b *logBuilder) strip(token string, rawSpeed int, step time.Duration, strips ...int) *logBuilder {
	for _, s := range strips {
		b.lines = append(b.lines,
			fmt.Sprintf("%s\tPRO\t%s,0,%d,1", b.stamp(), token, s),
			fmt.Sprintf("%s\tCUC\tx,0,0,0,0,0,0,%d", b.stamp(), rawSpeed),
		)
		b.clock = b.clock.Add(-step)
	}
	return b
}

func (b *logBuilder) raw(line string) *logBuilder {
	b.lines = append(b.lines, line)
	return b
}

func (b *logBuilder) write(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(b.lines, "\r\n")+"\r\n"), 0o644))
	return path
}

// steadyLog has six complete strips (3,2,1) of one frame, 30 seconds apart.
func steadyLog() *logBuilder {
	b := newLogBuilder()
	for i := 0; i < 6; i++ {
		b.strip("FRAB1234", 1270, 30*time.Second, 3, 2, 1)
	}
	return b
}
