package crossfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"logview/internal/tabular"
)

// Canonical reference column names, already trimmed. The workbook ships some
// of them with trailing spaces; lookups go through tabular.Table.Index which
// trims both sides.
const (
	RefFrameStock   = "FRAME_STOCK"
	RefPackageCode  = "PACKAGE_CODE"
	RefPackageSize  = "Package size"
	RefGroup        = "Package group"
	RefLeadFrame    = "Lead frame type by frame stock"
	RefUnitPerStrip = "Unit/strip"
)

// referenceColumns is the output order of the joined reference columns.
var referenceColumns = []string{
	RefPackageCode, RefPackageSize, RefGroup, RefLeadFrame, RefUnitPerStrip,
}

// referenceAliases are older headers accepted for a canonical column.
var referenceAliases = map[string][]string{
	RefLeadFrame: {"Lead frame"},
}

// PackageInfo is the reference data of one frame stock. Fields are raw cell
// text; an absent column leaves its field empty.
type PackageInfo struct {
	PackageCode  string
	Size         string
	Group        string
	LeadFrame    string
	UnitPerStrip string
}

func (p PackageInfo) field(col string) string {
	switch col {
	case RefPackageCode:
		return p.PackageCode
	case RefPackageSize:
		return p.Size
	case RefGroup:
		return p.Group
	case RefLeadFrame:
		return p.LeadFrame
	case RefUnitPerStrip:
		return p.UnitPerStrip
	}
	return ""
}

// Reference is the loaded package reference table.
type Reference struct {
	Path    string
	columns map[string]bool
	byFrame map[string]PackageInfo
}

// NewReference builds a reference from an already loaded table. The table
// must carry a FRAME_STOCK column; every other column is optional. A
// "Lead frame" header stands for the lead frame column. When a frame stock
// appears more than once the first row wins.
func NewReference(t *tabular.Table) (*Reference, error) {
	frameCol := t.Index(RefFrameStock)
	if frameCol < 0 {
		return nil, fmt.Errorf("%w: no %s column", ErrReferenceInvalid, RefFrameStock)
	}

	ref := &Reference{
		Path:    t.Name,
		columns: make(map[string]bool, len(referenceColumns)),
		byFrame: make(map[string]PackageInfo, t.Len()),
	}
	idx := make(map[string]int, len(referenceColumns))
	for _, c := range referenceColumns {
		i := t.Index(c)
		for _, alias := range referenceAliases[c] {
			if i >= 0 {
				break
			}
			i = t.Index(alias)
		}
		idx[c] = i
		ref.columns[c] = i >= 0
	}
	cell := func(row int, col string) string {
		if idx[col] < 0 {
			return ""
		}
		return strings.TrimSpace(t.String(row, idx[col]))
	}

	for i := range t.Rows {
		frame := strings.TrimSpace(t.String(i, frameCol))
		if frame == "" {
			continue
		}
		if _, dup := ref.byFrame[frame]; dup {
			continue
		}
		ref.byFrame[frame] = PackageInfo{
			PackageCode:  cell(i, RefPackageCode),
			Size:         cell(i, RefPackageSize),
			Group:        cell(i, RefGroup),
			LeadFrame:    cell(i, RefLeadFrame),
			UnitPerStrip: cell(i, RefUnitPerStrip),
		}
	}
	return ref, nil
}

// LoadReference reads the reference workbook at path.
func LoadReference(ctx context.Context, reader *tabular.Reader, path string) (*Reference, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrReferenceMissing, path)
		}
		return nil, fmt.Errorf("stat reference: %w", err)
	}
	t, err := reader.ReadFile(ctx, path, tabular.ReadOptions{})
	if err != nil {
		return nil, fmt.Errorf("read reference %s: %w", path, err)
	}
	ref, err := NewReference(t)
	if err != nil {
		return nil, err
	}
	ref.Path = path
	return ref, nil
}

// Lookup returns the reference row for frame.
func (r *Reference) Lookup(frame string) (PackageInfo, bool) {
	if r == nil {
		return PackageInfo{}, false
	}
	info, ok := r.byFrame[strings.TrimSpace(frame)]
	return info, ok
}

// Has reports whether the workbook carried the named column.
func (r *Reference) Has(col string) bool {
	return r != nil && r.columns[col]
}

// Columns returns the reference columns present in the workbook, in output order.
func (r *Reference) Columns() []string {
	var out []string
	for _, c := range referenceColumns {
		if r.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Len returns the number of distinct frame stocks.
func (r *Reference) Len() int {
	if r == nil {
		return 0
	}
	return len(r.byFrame)
}
