package crossfile

import (
	"context"
	"log/slog"
	"strings"

	"logview/internal/stats"
	"logview/internal/tabular"
)

// Output column names of the grouped report.
const (
	ColFrameStock      = "FRAME_STOCK"
	ColSpeedIPS        = "SPEED (IPS)"
	ColTimePerStrip    = "TIME/STRIP"
	ColProcess         = "Process"
	ColBeforeOutlier   = "Before_Outlier"
	ColAfterOutlier    = "After_Outlier"
	ColFileCountBefore = "File_Count_Before"
	ColFileCountAfter  = "File_Count_After"
)

// GroupOptions configures a GroupedAverager.
type GroupOptions struct {
	RowIQRFactor       float64
	GroupIQRFactor     float64
	MinValues          int
	LeadFrameOverrides []LeadFrameOverride
	ProcessRules       []ProcessRule
}

// DefaultGroupOptions returns the production settings.
func DefaultGroupOptions() GroupOptions {
	return GroupOptions{
		RowIQRFactor:       1.5,
		GroupIQRFactor:     1.5,
		MinValues:          2,
		LeadFrameOverrides: DefaultLeadFrameOverrides(),
		ProcessRules:       DefaultProcessRules(),
	}
}

// ReferenceRow is one line of the final report.
type ReferenceRow struct {
	Frame        string
	Speed        float64
	TimePerStrip *float64
	Package      PackageInfo
	Matched      bool
	Process      string

	// FilesBefore/FilesAfter count the per-file values of the row before
	// and after the row-level trim.
	FilesBefore int
	FilesAfter  int
	// GroupBefore/GroupAfter count the frames of the physical group before
	// and after the group-level trim. Both stay zero for ungrouped rows.
	GroupBefore int
	GroupAfter  int
}

// Report is the grouped-average result.
type Report struct {
	Rows           []ReferenceRow
	RefColumns     []string
	HasGroup       bool
	Groups         int
	GroupsAveraged int
}

// GroupedAverager turns a Comparison into the engineering reference report.
type GroupedAverager struct {
	opts   GroupOptions
	logger *slog.Logger
}

// NewGroupedAverager creates an averager. Zero factors and counts fall back
// to the defaults.
func NewGroupedAverager(opts GroupOptions, logger *slog.Logger) *GroupedAverager {
	def := DefaultGroupOptions()
	if opts.RowIQRFactor <= 0 {
		opts.RowIQRFactor = def.RowIQRFactor
	}
	if opts.GroupIQRFactor <= 0 {
		opts.GroupIQRFactor = def.GroupIQRFactor
	}
	if opts.MinValues <= 0 {
		opts.MinValues = def.MinValues
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GroupedAverager{opts: opts, logger: logger.With(slog.String("component", "grouped_average"))}
}

// Build runs the row trim, the reference join and the group trim.
func (g *GroupedAverager) Build(ctx context.Context, cmp *Comparison, ref *Reference) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{
		RefColumns: ref.Columns(),
		HasGroup:   ref.Has(RefGroup),
		Rows:       make([]ReferenceRow, 0, cmp.Len()),
	}
	for _, k := range cmp.Keys {
		report.Rows = append(report.Rows, g.buildRow(k, cmp.RowValues(k), ref, report.HasGroup))
	}
	g.averageGroups(report, ref)

	matched := 0
	for _, r := range report.Rows {
		if r.Matched {
			matched++
		}
	}
	g.logger.InfoContext(ctx, "grouped average built",
		slog.Int("rows", len(report.Rows)),
		slog.Int("matched", matched),
		slog.Int("groups", report.Groups),
		slog.Int("groups_averaged", report.GroupsAveraged))
	return report, nil
}

func (g *GroupedAverager) buildRow(k Key, values []float64, ref *Reference, hasGroup bool) ReferenceRow {
	row := ReferenceRow{Frame: k.Frame, Speed: k.Speed}

	res := stats.TrimmedMean(values, g.opts.RowIQRFactor, g.opts.MinValues)
	row.FilesBefore, row.FilesAfter = res.Before, res.After
	switch {
	case res.Valid:
		v := stats.Round(res.Mean, 2)
		row.TimePerStrip = &v
	case len(values) > 0 && len(values) < g.opts.MinValues:
		v := stats.Round(values[0], 2)
		row.TimePerStrip = &v
	}

	row.Package, row.Matched = ref.Lookup(k.Frame)
	if row.Matched {
		row.Package.LeadFrame = applyLeadFrame(g.opts.LeadFrameOverrides,
			row.Package.Group, k.Speed, row.Package.LeadFrame)
	}
	if hasGroup {
		row.Package.Group = normalizeGroup(row.Package.Group)
		row.Process = applyProcess(g.opts.ProcessRules, row.Package.Group, k.Speed)
	}
	return row
}

type groupKey struct {
	size, group, lead, unit string
	speed                   float64
}

func (g *GroupedAverager) groupKeyOf(r ReferenceRow, ref *Reference) (groupKey, bool) {
	k := groupKey{speed: r.Speed}
	fields := []struct {
		col string
		val string
		dst *string
	}{
		{RefPackageSize, r.Package.Size, &k.size},
		{RefGroup, r.Package.Group, &k.group},
		{RefLeadFrame, r.Package.LeadFrame, &k.lead},
		{RefUnitPerStrip, r.Package.UnitPerStrip, &k.unit},
	}
	used := 0
	for _, f := range fields {
		if !ref.Has(f.col) {
			continue
		}
		if strings.TrimSpace(f.val) == "" {
			return groupKey{}, false
		}
		*f.dst = f.val
		used++
	}
	return k, used > 0
}

// averageGroups pools the first row of every frame stock into its physical
// group, trims the pool and writes the group mean back to all rows of the
// group, including the duplicates that were left out of the pool.
func (g *GroupedAverager) averageGroups(report *Report, ref *Reference) {
	pools := make(map[groupKey][]float64)
	var order []groupKey
	seenFrame := make(map[string]bool)

	for _, r := range report.Rows {
		if seenFrame[r.Frame] {
			continue
		}
		seenFrame[r.Frame] = true
		k, ok := g.groupKeyOf(r, ref)
		if !ok {
			continue
		}
		if _, exists := pools[k]; !exists {
			order = append(order, k)
			pools[k] = nil
		}
		if r.TimePerStrip != nil {
			pools[k] = append(pools[k], *r.TimePerStrip)
		}
	}
	report.Groups = len(order)

	results := make(map[groupKey]stats.TrimResult, len(order))
	for _, k := range order {
		res := stats.TrimmedMean(pools[k], g.opts.GroupIQRFactor, g.opts.MinValues)
		if res.Valid {
			res.Mean = stats.Round(res.Mean, 2)
			report.GroupsAveraged++
		}
		results[k] = res
	}

	for i := range report.Rows {
		k, ok := g.groupKeyOf(report.Rows[i], ref)
		if !ok {
			continue
		}
		res, ok := results[k]
		if !ok {
			continue
		}
		report.Rows[i].GroupBefore, report.Rows[i].GroupAfter = res.Before, res.After
		if res.Valid {
			v := res.Mean
			report.Rows[i].TimePerStrip = &v
		}
	}
}

// Table renders the report in output column order.
func (r *Report) Table() *tabular.Table {
	cols := []string{ColFrameStock, ColSpeedIPS, ColTimePerStrip}
	cols = append(cols, r.RefColumns...)
	if r.HasGroup {
		cols = append(cols, ColProcess)
	}
	cols = append(cols, ColBeforeOutlier, ColAfterOutlier, ColFileCountBefore, ColFileCountAfter)

	t := tabular.New("Summary", cols...)
	for _, row := range r.Rows {
		vals := []any{row.Frame, FormatSpeed(row.Speed), optional(row.TimePerStrip)}
		for _, c := range r.RefColumns {
			vals = append(vals, row.Package.field(c))
		}
		if r.HasGroup {
			vals = append(vals, row.Process)
		}
		vals = append(vals, row.GroupBefore, row.GroupAfter, row.FilesBefore, row.FilesAfter)
		t.Append(vals...)
	}
	return t
}

func optional(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
