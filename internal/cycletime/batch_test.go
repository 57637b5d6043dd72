package cycletime

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"logview/internal/exporter"
	"logview/internal/logparse"
	"logview/internal/tabular"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func newTestRunner(t *testing.T, workers int) *Runner {
	t.Helper()
	return NewRunner(newTestAnalyzer(t), exporter.NewWorkbookWriter(nil), nil,
		WithWorkers(workers), WithClock(fixedClock))
}

func TestRunnerIsolatesBadFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	for _, workers := range []int{1, 3} {
		t.Run("workers="+string(rune('0'+workers)), func(t *testing.T) {
			in := t.TempDir()
			out := filepath.Join(t.TempDir(), "output_LOGVIEW")

			first := steadyLog().write(t, in, "first.txt")
			corrupt := filepath.Join(in, "second.txt")
			require.NoError(t, os.WriteFile(corrupt, []byte{0x00, 0xff, 0x10, 0x00}, 0o644))
			third := steadyLog().write(t, in, "third.TXT")

			res, err := newTestRunner(t, workers).Run(context.Background(), []string{first, corrupt, third}, out)
			require.NoError(t, err)
			require.Len(t, res.Outcomes, 3)

			assert.NoError(t, res.Outcomes[0].Err)
			assert.ErrorIs(t, res.Outcomes[1].Err, logparse.ErrEmptyLog)
			assert.NoError(t, res.Outcomes[2].Err)
			assert.Equal(t, 2, res.Succeeded())
			require.Len(t, res.Skipped(), 1)
			assert.Equal(t, corrupt, res.Skipped()[0].Input)

			assert.Equal(t, []string{
				filepath.Join(out, "first_20240301_120000.xlsx"),
				filepath.Join(out, "third_20240301_120000.xlsx"),
			}, res.Outputs())
			for _, p := range res.Outputs() {
				assert.FileExists(t, p)
			}

			summary, err := tabular.NewReader(nil).ReadFile(context.Background(), res.Outputs()[0],
				tabular.ReadOptions{Sheets: []string{SheetSummary}})
			require.NoError(t, err)
			require.Equal(t, 1, summary.Len())
			assert.Equal(t, "FRAB12", summary.Value(0, 0))
			assert.Equal(t, 30.0, summary.Value(0, 2))
		})
	}
}

func TestRunnerSeparatesSameNamedInputs(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	out := filepath.Join(t.TempDir(), "output_LOGVIEW")
	var inputs []string
	for _, line := range []string{"lineA", "lineB"} {
		dir := filepath.Join(root, line)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		inputs = append(inputs, steadyLog().write(t, dir, "shift.txt"))
	}

	res, err := newTestRunner(t, 2).Run(context.Background(), inputs, out)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Succeeded())
	assert.Equal(t, []string{
		filepath.Join(out, "shift_20240301_120000.xlsx"),
		filepath.Join(out, "shift_2_20240301_120000.xlsx"),
	}, res.Outputs())
	for _, p := range res.Outputs() {
		assert.FileExists(t, p)
	}
	assert.Equal(t, "shift", res.Outcomes[0].Result.Stem)
	assert.Equal(t, "shift_2", res.Outcomes[1].Result.Stem)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRunnerFatalCases(t *testing.T) {
	defer goleak.VerifyNone(t)
	r := newTestRunner(t, 2)
	dir := t.TempDir()

	_, err := r.Run(context.Background(), nil, dir)
	assert.ErrorIs(t, err, ErrNoInputFiles)

	res, err := r.Run(context.Background(), []string{filepath.Join(dir, "missing.txt")}, dir)
	assert.ErrorIs(t, err, ErrNoUsableFiles)
	require.NotNil(t, res)
	assert.ErrorIs(t, res.Outcomes[0].Err, logparse.ErrUnreadable)
}

func TestRunnerCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := steadyLog().write(t, t.TempDir(), "a.txt")
	_, err := newTestRunner(t, 1).Run(ctx, []string{path}, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}
