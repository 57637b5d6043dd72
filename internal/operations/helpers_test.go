package operations_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"logview/internal/config"
	"logview/internal/crossfile"
	"logview/internal/exporter"
	"logview/internal/operations"
	"logview/internal/tabular"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

// writeLog writes a newest-first equipment log with six strip runs (3,2,1)
// of frame stock FRAB12, 30 seconds apart, at raw speed 1270 (5 IPS).
func writeLog(t *testing.T, dir, name string) string {
	t.Helper()
	clock := fixedClock()
	var lines []string
	for run := 0; run < 6; run++ {
		for _, strip := range []int{3, 2, 1} {
			stamp := clock.Format("2006/01/02 03:04:05PM")
			lines = append(lines,
				fmt.Sprintf("%s\tPRO\tFRAB1234,0,%d,1", stamp, strip),
				fmt.Sprintf("%s\tCUC\tx,0,0,0,0,0,0,1270", stamp),
			)
			clock = clock.Add(-30 * time.Second)
		}
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\r\n")+"\r\n"), 0o644))
	return path
}

func writeTable(t *testing.T, dir, name string, table *tabular.Table) string {
	t.Helper()
	path, err := exporter.NewWorkbookWriter(nil).WriteWorkbook(context.Background(), filepath.Join(dir, name), table)
	require.NoError(t, err)
	return path
}

func writeReference(t *testing.T, dir string) string {
	t.Helper()
	ref := tabular.New("Sheet1", "FRAME_STOCK", "PACKAGE_CODE", "Package size ", "Package group",
		"Lead frame type by frame stock ", "Unit/strip")
	ref.Append("FRAB12", "P-100", "5x5", "QFN", "", 64)
	return writeTable(t, dir, "package.xlsx", ref)
}

func newLogview(t *testing.T, referencePath string) *operations.LogviewFunction {
	t.Helper()
	fn, err := operations.NewLogviewFromConfig(operations.Defaults{
		Pipeline:  config.DefaultPipeline(),
		Reference: crossfile.NewReferenceStore(referencePath, nil, nil),
		Now:       fixedClock,
	})
	require.NoError(t, err)
	return fn
}

func readOutput(t *testing.T, path string) *tabular.Table {
	t.Helper()
	table, err := tabular.NewReader(nil).ReadFile(context.Background(), path, tabular.ReadOptions{})
	require.NoError(t, err)
	return table
}

func stepIDs(res *operations.Result) []string {
	ids := make([]string, len(res.Steps))
	for i, s := range res.Steps {
		ids[i] = s.ID
	}
	return ids
}

// stubFunction is a Function that returns a fixed result.
type stubFunction struct {
	id  string
	res *operations.Result
	err error
}

func (s *stubFunction) ID() string          { return s.id }
func (s *stubFunction) Name() string        { return strings.ToUpper(s.id) }
func (s *stubFunction) Description() string { return "stub " + s.id }

func (s *stubFunction) Run(ctx context.Context, req operations.Request) (*operations.Result, error) {
	return s.res, s.err
}
