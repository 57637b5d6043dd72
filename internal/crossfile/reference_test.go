package crossfile

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logview/internal/tabular"
)

func TestNewReferenceMatchesTrimmedHeaders(t *testing.T) {
	ref, err := NewReference(referenceTable(
		[]any{"FRAB12", "PKG-1", "3x3", " qfn ", "AG", 4.0},
		[]any{"FRAB12", "PKG-2", "5x5", "BGA", "NI", 8.0},
		[]any{"FN0001", "PKG-3", "2x2", "SLP", "CU", 12.0},
		[]any{nil, "orphan", "", "", "", nil},
	))
	require.NoError(t, err)

	assert.Equal(t, 2, ref.Len())
	assert.Equal(t, []string{RefPackageCode, RefPackageSize, RefGroup, RefLeadFrame, RefUnitPerStrip}, ref.Columns())

	info, ok := ref.Lookup("FRAB12")
	require.True(t, ok)
	assert.Equal(t, PackageInfo{
		PackageCode:  "PKG-1",
		Size:         "3x3",
		Group:        "qfn",
		LeadFrame:    "AG",
		UnitPerStrip: "4",
	}, info)

	_, ok = ref.Lookup("FZ0000")
	assert.False(t, ok)
}

func TestNewReferencePartialColumns(t *testing.T) {
	tbl := tabular.New("Sheet1", "FRAME_STOCK", "PACKAGE_CODE")
	tbl.Append("FRAB12", "PKG-1")

	ref, err := NewReference(tbl)
	require.NoError(t, err)
	assert.Equal(t, []string{RefPackageCode}, ref.Columns())
	assert.False(t, ref.Has(RefGroup))
}

func TestNewReferenceLeadFrameHeaders(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    string
	}{
		{
			name:    "short header",
			headers: []string{"FRAME_STOCK", "Package group", "Lead frame", "Unit/strip", "Strip/lot"},
			want:    "AG",
		},
		{
			name:    "long header wins over short",
			headers: []string{"FRAME_STOCK", "Package group", "Lead frame", "Lead frame type by frame stock "},
			want:    "NI",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := tabular.New("Sheet1", tt.headers...)
			tbl.Append("FRAB12", "QFN", "AG", "NI", "10")

			ref, err := NewReference(tbl)
			require.NoError(t, err)
			assert.True(t, ref.Has(RefLeadFrame))
			assert.Contains(t, ref.Columns(), RefLeadFrame)
			info, ok := ref.Lookup("FRAB12")
			require.True(t, ok)
			assert.Equal(t, tt.want, info.LeadFrame)
		})
	}
}

func TestNewReferenceRequiresFrameStock(t *testing.T) {
	_, err := NewReference(tabular.New("Sheet1", "PACKAGE_CODE"))
	assert.ErrorIs(t, err, ErrReferenceInvalid)
}

func TestLoadReference(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadReference(context.Background(), tabular.NewReader(nil), filepath.Join(dir, "absent.xlsx"))
	assert.ErrorIs(t, err, ErrReferenceMissing)

	path := writeWorkbook(t, dir, "reference.xlsx", referenceTable(
		[]any{"FRAB12", "PKG-1", "3x3", "QFN", "AG", 4.0},
	))
	ref, err := LoadReference(context.Background(), tabular.NewReader(nil), path)
	require.NoError(t, err)
	assert.Equal(t, path, ref.Path)

	info, ok := ref.Lookup("FRAB12")
	require.True(t, ok)
	assert.Equal(t, "AG", info.LeadFrame)
}

func TestNilReference(t *testing.T) {
	var ref *Reference
	_, ok := ref.Lookup("FRAB12")
	assert.False(t, ok)
	assert.Empty(t, ref.Columns())
	assert.Zero(t, ref.Len())
}
