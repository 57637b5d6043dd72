package exporter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logview/internal/tabular"
)

func TestCSVWriterWriteTable(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir, nil)

	tbl := tabular.New("Summary", "FRAME_STOCK", "SPEED (IPS)", "TIME/STRIP")
	tbl.Append("FRAB12", 5.0, 30.25)
	tbl.Append("FUXX01", 3.94, nil)

	path, err := w.WriteTable("Summary_test.csv", tbl)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Summary_test.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\xEF\xBB\xBFFRAME_STOCK,SPEED (IPS),TIME/STRIP\nFRAB12,5,30.25\nFUXX01,3.94,\n", string(data))
}

func TestCSVWriterAppend(t *testing.T) {
	dir := t.TempDir()
	w := NewCSVWriter(dir, nil)

	_, err := w.WriteCSV("a.csv", WriteOptions{Headers: []string{"x"}, Records: [][]string{{"1"}}})
	require.NoError(t, err)
	_, err = w.WriteCSV("a.csv", WriteOptions{Headers: []string{"x"}, Records: [][]string{{"2"}}, Append: true})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "a.csv"))
	require.NoError(t, err)
	assert.Equal(t, "x\n1\n2\n", string(data))
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Processed_Data", sheetName("Processed_Data", 0))
	assert.Equal(t, "a_b_c", sheetName("a/b:c", 0))
	assert.Equal(t, "Sheet2", sheetName("", 1))
	assert.Len(t, []rune(sheetName("abcdefghijklmnopqrstuvwxyz0123456789", 0)), 31)
}
