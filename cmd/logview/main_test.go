package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logview/internal/cycletime"
	"logview/internal/exporter"
	"logview/internal/tabular"
	"logview/internal/uph"
)

type harness struct {
	dir        string
	configFile string
	reference  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	h := &harness{
		dir:        dir,
		configFile: filepath.Join(dir, "logview.yaml"),
		reference:  filepath.Join(dir, "reference.xlsx"),
	}
	cfg := fmt.Sprintf(`paths:
  base_dir: %q
logging:
  level: error
  output: console
telemetry:
  metrics_enabled: false
`, dir)
	require.NoError(t, os.WriteFile(h.configFile, []byte(cfg), 0o644))

	ref := tabular.New("Sheet1", "FRAME_STOCK", "PACKAGE_CODE", "Package size ", "Package group",
		"Lead frame type by frame stock ", "Unit/strip")
	ref.Append("FRAB12", "P-100", "5x5", "QFN", "", 64)
	_, err := exporter.NewWorkbookWriter(nil).WriteWorkbook(context.Background(), h.reference, ref)
	require.NoError(t, err)
	return h
}

func (h *harness) run(args ...string) (stdout, stderr string, err error) {
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", h.configFile}, args...))
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// writeLog writes a newest-first equipment log of six strip runs of frame
// stock FRAB12 into dir.
func writeLog(t *testing.T, dir, name string) string {
	t.Helper()
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
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

func outputLines(stdout string) []string {
	return strings.Fields(strings.TrimSpace(stdout))
}

func TestProcessCommand(t *testing.T) {
	h := newHarness(t)
	logs := filepath.Join(h.dir, "logs")
	require.NoError(t, os.MkdirAll(logs, 0o755))
	writeLog(t, logs, "line1.txt")
	writeLog(t, logs, "line2.TXT")
	require.NoError(t, os.WriteFile(filepath.Join(logs, "notes.md"), []byte("x"), 0o644))
	out := filepath.Join(h.dir, "out")

	stdout, stderr, err := h.run("process", logs, "--reference", h.reference, "--out", out, "--workers", "2")
	require.NoError(t, err, stderr)

	produced := outputLines(stdout)
	require.Len(t, produced, 4)
	for _, p := range produced {
		assert.FileExists(t, p)
		assert.Equal(t, out, filepath.Dir(p))
	}
	assert.True(t, strings.HasPrefix(filepath.Base(produced[2]), "Summary_Comparison_"))
	assert.True(t, strings.HasPrefix(filepath.Base(produced[3]), "Summary_"))
	assert.Contains(t, stderr, "2 of 2 log files processed")
}

func TestProcessCommandFailures(t *testing.T) {
	h := newHarness(t)
	empty := t.TempDir()

	_, _, err := h.run("process", empty, "--reference", h.reference)
	assert.ErrorIs(t, err, cycletime.ErrNoInputFiles)

	_, _, err = h.run("process", filepath.Join(h.dir, "no-such-dir"), "--reference", h.reference)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, _, err = h.run("process")
	assert.Error(t, err)
}

func TestProcessCommandSameNamedLogs(t *testing.T) {
	h := newHarness(t)
	logs := filepath.Join(h.dir, "logs")
	for _, line := range []string{"lineA", "lineB"} {
		dir := filepath.Join(logs, line)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		writeLog(t, dir, "shift.txt")
	}
	out := filepath.Join(h.dir, "out")

	stdout, stderr, err := h.run("process", filepath.Join(logs, "*", "shift.txt"),
		"--reference", h.reference, "--out", out, "--workers", "2")
	require.NoError(t, err, stderr)

	produced := outputLines(stdout)
	require.Len(t, produced, 4)
	assert.NotEqual(t, produced[0], produced[1])
	assert.True(t, strings.HasPrefix(filepath.Base(produced[0]), "shift_"))
	assert.True(t, strings.HasPrefix(filepath.Base(produced[1]), "shift_2_"))
	for _, p := range produced {
		assert.FileExists(t, p)
	}

	cmp, err := tabular.NewReader(nil).ReadFile(context.Background(), produced[2], tabular.ReadOptions{})
	require.NoError(t, err)
	assert.Len(t, cmp.Columns, 3, "one comparison column per input log")
}

func TestSummarizeCommand(t *testing.T) {
	h := newHarness(t)
	logs := t.TempDir()
	writeLog(t, logs, "line1.txt")
	first := filepath.Join(h.dir, "first")
	stdout, _, err := h.run("process", filepath.Join(logs, "*.txt"), "--reference", h.reference, "--out", first)
	require.NoError(t, err)
	workbook := outputLines(stdout)[0]

	_, _, err = h.run("summarize", workbook)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reference")

	again := filepath.Join(h.dir, "again")
	stdout, stderr, err := h.run("summarize", workbook, "--reference", h.reference, "--out", again)
	require.NoError(t, err, stderr)
	produced := outputLines(stdout)
	require.Len(t, produced, 2)
	assert.True(t, strings.HasPrefix(filepath.Base(produced[0]), "Summary_Comparison_"))
	assert.Contains(t, stderr, "1 workbooks summarized")

	fromDir := filepath.Join(h.dir, "from_dir")
	stdout, stderr, err = h.run("summarize", first, "--reference", h.reference, "--out", fromDir)
	require.NoError(t, err, stderr)
	assert.Len(t, outputLines(stdout), 2)
	assert.Contains(t, stderr, "1 workbooks summarized")
	assert.NotContains(t, stderr, "skipped")
}

func writeUPHExport(t *testing.T, dir string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("Date Start,BOM_NO,Machine Model,UPH\n")
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&b, "2024-01-%02d 08:00:00,B1,M1,%d\n", 10+i, 100+i%5)
	}
	path := filepath.Join(dir, "uph.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func TestUPHCommand(t *testing.T) {
	h := newHarness(t)
	input := writeUPHExport(t, h.dir)

	tests := []struct {
		name      string
		args      []string
		wantErr   error
		wantFiles []string
	}{
		{
			name:      "date range",
			args:      []string{"--from", "2024/01/12", "--to", "2024/01/20"},
			wantFiles: []string{"cleaned_data_20240112_to_20240120_", "group_average_20240112_to_20240120_"},
		},
		{
			name:      "other line",
			args:      []string{"--line", "pnp_auto_uph"},
			wantFiles: []string{"cleaned_data_", "group_average_"},
		},
		{
			name:    "malformed date",
			args:    []string{"--from", "2024-01-12"},
			wantErr: uph.ErrInvalidDate,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := t.TempDir()
			stdout, stderr, err := h.run(append([]string{"uph", input, "--out", out}, tt.args...)...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err, stderr)
			produced := outputLines(stdout)
			require.Len(t, produced, len(tt.wantFiles))
			for i, prefix := range tt.wantFiles {
				assert.True(t, strings.HasPrefix(filepath.Base(produced[i]), prefix), produced[i])
			}
		})
	}
}

func TestUPHCommandRejectsLogviewLine(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.run("uph", writeUPHExport(t, h.dir), "--line", "logview")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a UPH line")

	_, _, err = h.run("uph", writeUPHExport(t, h.dir), "--line", "nope")
	assert.Error(t, err)
}
