package uph

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"logview/internal/stats"
	"logview/internal/tabular"
)

// MethodColumn records which cut produced each kept row.
const MethodColumn = "Outlier_Method"

// MethodNotEnoughData marks groups too small to trim.
const MethodNotEnoughData = "Not enough data"

// Config tunes the iterative cut.
type Config struct {
	MinRows       int
	MaxIterations int
	ZThreshold    float64
	IQRFactor     float64
}

// DefaultConfig returns the production settings.
func DefaultConfig() Config {
	return Config{MinRows: 15, MaxIterations: 20, ZThreshold: 3, IQRFactor: 1.5}
}

// Result is the cleaned data and its per-group averages.
type Result struct {
	Range    Range
	Cleaned  *tabular.Table
	Averages *tabular.Table
	Groups   []GroupResult
	RowsIn   int
}

// GroupResult summarizes one (BOM, machine model) group.
type GroupResult struct {
	BOM     string
	Model   string
	Before  int
	After   int
	Method  string
	MeanUPH float64
}

// Cleaner runs the UPH cleaning. It is stateless apart from configuration.
type Cleaner struct {
	cfg    Config
	logger *slog.Logger
}

// NewCleaner creates a cleaner. Zero fields fall back to DefaultConfig.
func NewCleaner(cfg Config, logger *slog.Logger) *Cleaner {
	def := DefaultConfig()
	if cfg.MinRows <= 0 {
		cfg.MinRows = def.MinRows
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = def.MaxIterations
	}
	if cfg.ZThreshold <= 0 {
		cfg.ZThreshold = def.ZThreshold
	}
	if cfg.IQRFactor <= 0 {
		cfg.IQRFactor = def.IQRFactor
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{cfg: cfg, logger: logger.With(slog.String("component", "uph"))}
}

type columns struct {
	bom, model, uph, date int
}

func resolveColumns(t *tabular.Table) (columns, error) {
	c := columns{
		bom:   t.IndexFold("bom_no", "bom no"),
		model: t.IndexFold("machine model", "machine_model"),
		uph:   t.IndexFold("uph"),
		date:  findDateColumn(t),
	}
	switch {
	case c.uph < 0:
		return c, fmt.Errorf("%w: UPH", ErrMissingColumn)
	case c.bom < 0:
		return c, fmt.Errorf("%w: bom_no", ErrMissingColumn)
	case c.model < 0:
		return c, fmt.Errorf("%w: Machine Model", ErrMissingColumn)
	}
	return c, nil
}

type groupKey struct{ bom, model string }

type sample struct {
	row []any
	uph float64
}

// Clean filters by date, trims every (BOM, machine model) group and averages
// what is left. Groups come out sorted by BOM then model. An empty range is
// widened to the first and last day present in the data.
func (c *Cleaner) Clean(ctx context.Context, t *tabular.Table, r Range) (*Result, error) {
	cols, err := resolveColumns(t)
	if err != nil {
		return nil, err
	}

	outCols := append(append([]string{}, t.Columns...), DateColumn, MethodColumn)
	res := &Result{RowsIn: t.Len(), Range: r}

	rows, bounds := c.filterDates(t, cols, r)
	if r.From == "" {
		res.Range.From = bounds.From
	}
	if r.To == "" {
		res.Range.To = bounds.To
	}
	if len(rows) == 0 {
		return nil, ErrNoRowsInRange
	}

	groups := make(map[groupKey][]sample)
	for _, row := range rows {
		bom := tabular.FormatCell(row[cols.bom])
		model := tabular.FormatCell(row[cols.model])
		if bom == "" || model == "" {
			continue
		}
		v, ok := tabular.ToFloat(row[cols.uph])
		if !ok {
			continue
		}
		row[cols.uph] = v
		k := groupKey{bom: bom, model: model}
		groups[k] = append(groups[k], sample{row: row, uph: v})
	}

	keys := make([]groupKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].bom != keys[j].bom {
			return keys[i].bom < keys[j].bom
		}
		return keys[i].model < keys[j].model
	})

	res.Cleaned = tabular.New("Cleaned", outCols...)
	res.Averages = tabular.New("Average", t.Columns[cols.bom], t.Columns[cols.model], t.Columns[cols.uph])
	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		samples := groups[k]
		kept, method := c.cleanGroup(samples)

		values := make([]float64, len(kept))
		for i, s := range kept {
			values[i] = s.uph
			res.Cleaned.Append(append(s.row, method)...)
		}
		g := GroupResult{
			BOM: k.bom, Model: k.model,
			Before: len(samples), After: len(kept),
			Method: method, MeanUPH: stats.Mean(values),
		}
		res.Groups = append(res.Groups, g)
		if len(values) > 0 {
			res.Averages.Append(k.bom, k.model, g.MeanUPH)
		}
		c.logger.DebugContext(ctx, "uph group cleaned",
			slog.String("bom", k.bom),
			slog.String("model", k.model),
			slog.Int("before", g.Before),
			slog.Int("after", g.After),
			slog.String("method", method))
	}

	c.logger.InfoContext(ctx, "uph data cleaned",
		slog.Int("rows_in", res.RowsIn),
		slog.Int("rows_out", res.Cleaned.Len()),
		slog.Int("groups", len(res.Groups)),
		slog.String("range", res.Range.Label()))
	return res, nil
}

// filterDates normalizes the date column, drops unparsable dates and keeps
// rows inside r. Returned rows carry the normalized day as an extra cell.
// Without a date column every row is kept and the day is left empty.
func (c *Cleaner) filterDates(t *tabular.Table, cols columns, r Range) ([][]any, Range) {
	var out [][]any
	var seen Range
	for _, src := range t.Rows {
		row := make([]any, len(t.Columns), len(t.Columns)+2)
		copy(row, src)
		if cols.date < 0 {
			out = append(out, append(row, nil))
			continue
		}
		day, ok := parseDay(row[cols.date])
		if !ok {
			continue
		}
		if seen.From == "" || day < seen.From {
			seen.From = day
		}
		if day > seen.To {
			seen.To = day
		}
		if r.Contains(day) {
			out = append(out, append(row, day))
		}
	}
	return out, seen
}

// cleanGroup alternates z-score and IQR cuts until no IQR outlier remains.
func (c *Cleaner) cleanGroup(samples []sample) ([]sample, string) {
	if len(samples) < c.cfg.MinRows {
		return samples, MethodNotEnoughData
	}

	current := samples
	for i := 1; i <= c.cfg.MaxIterations; i++ {
		z := c.zscoreCut(current)
		if !stats.HasIQROutliers(uphValues(z), c.cfg.IQRFactor) {
			return z, fmt.Sprintf("Z-Score Loop ×%d", i)
		}
		iqr := c.iqrCut(z)
		if !stats.HasIQROutliers(uphValues(iqr), c.cfg.IQRFactor) {
			return iqr, fmt.Sprintf("IQR Loop ×%d", i)
		}
		current = iqr
	}
	return current, fmt.Sprintf("IQR-Z-Score Loop ×%d+", c.cfg.MaxIterations)
}

func (c *Cleaner) zscoreCut(samples []sample) []sample {
	values := uphValues(samples)
	std := stats.SampleStdDev(values)
	if std == 0 || math.IsNaN(std) {
		return samples
	}
	mean := stats.Mean(values)
	kept := make([]sample, 0, len(samples))
	for _, s := range samples {
		if math.Abs((s.uph-mean)/std) <= c.cfg.ZThreshold {
			kept = append(kept, s)
		}
	}
	return kept
}

func (c *Cleaner) iqrCut(samples []sample) []sample {
	if len(samples) == 0 {
		return samples
	}
	b := stats.IQRBounds(uphValues(samples), c.cfg.IQRFactor)
	kept := make([]sample, 0, len(samples))
	for _, s := range samples {
		if b.Contains(s.uph) {
			kept = append(kept, s)
		}
	}
	return kept
}

func uphValues(samples []sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.uph
	}
	return out
}
