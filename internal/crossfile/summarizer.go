package crossfile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"logview/internal/cycletime"
	"logview/internal/stats"
	"logview/internal/tabular"
)

// IndexColumn names the key column of the comparison sheet.
const IndexColumn = "FRAME_STOCK"

// SheetComparison is the sheet name of the saved comparison workbook.
const SheetComparison = "Comparison"

// Comparison is the wide cross-file table: one row per Key, one column per
// source file.
type Comparison struct {
	Files  []string
	Keys   []Key
	values map[Key]map[string]float64
}

// NewComparison creates an empty comparison.
func NewComparison() *Comparison {
	return &Comparison{values: make(map[Key]map[string]float64)}
}

// Set records the value of key for file, adding the file column if needed.
func (c *Comparison) Set(file string, key Key, v float64) {
	if !c.hasFile(file) {
		c.Files = append(c.Files, file)
	}
	row, ok := c.values[key]
	if !ok {
		row = make(map[string]float64)
		c.values[key] = row
		c.Keys = append(c.Keys, key)
	}
	row[file] = v
}

// Value returns the cell for key and file.
func (c *Comparison) Value(key Key, file string) (float64, bool) {
	v, ok := c.values[key][file]
	return v, ok
}

// RowValues returns the non-empty cells of a row in file order.
func (c *Comparison) RowValues(key Key) []float64 {
	var out []float64
	for _, f := range c.Files {
		if v, ok := c.values[key][f]; ok {
			out = append(out, v)
		}
	}
	return out
}

// Len returns the number of rows.
func (c *Comparison) Len() int {
	return len(c.Keys)
}

// Sort orders rows by label.
func (c *Comparison) Sort() {
	sort.SliceStable(c.Keys, func(i, j int) bool {
		return c.Keys[i].Label() < c.Keys[j].Label()
	})
}

// Table renders the comparison with the FRAME_STOCK index column first.
func (c *Comparison) Table() *tabular.Table {
	t := tabular.New(SheetComparison, append([]string{IndexColumn}, c.Files...)...)
	for _, k := range c.Keys {
		row := make([]any, 0, len(c.Files)+1)
		row = append(row, k.Label())
		for _, f := range c.Files {
			if v, ok := c.values[k][f]; ok {
				row = append(row, v)
			} else {
				row = append(row, nil)
			}
		}
		t.Append(row...)
	}
	return t
}

func (c *Comparison) hasFile(file string) bool {
	for _, f := range c.Files {
		if f == file {
			return true
		}
	}
	return false
}

// SkippedFile records a workbook left out of the comparison.
type SkippedFile struct {
	Path string
	Err  error
}

// Summarizer builds comparisons from per-file workbooks.
type Summarizer struct {
	reader *tabular.Reader
	logger *slog.Logger
}

// NewSummarizer creates a summarizer. A nil logger falls back to slog.Default().
func NewSummarizer(reader *tabular.Reader, logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	if reader == nil {
		reader = tabular.NewReader(logger)
	}
	return &Summarizer{reader: reader, logger: logger.With(slog.String("component", "crossfile"))}
}

// Summarize averages sec/strip per (frame, speed) in every workbook. Files that
// cannot be loaded are skipped with a warning and reported back; only a
// cancelled context is an error. Columns are named after the workbooks, with
// _2, _3 appended when two workbooks share a name.
func (s *Summarizer) Summarize(ctx context.Context, paths []string) (*Comparison, []SkippedFile, error) {
	cmp := NewComparison()
	var skipped []SkippedFile

	labels := cycletime.UniqueStems(paths)
	for i, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		means, err := s.loadFile(ctx, p)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping workbook",
				slog.String("file", p),
				slog.String("reason", err.Error()))
			skipped = append(skipped, SkippedFile{Path: p, Err: err})
			continue
		}
		for _, m := range means {
			cmp.Set(labels[i], m.key, m.mean)
		}
	}
	cmp.Sort()

	s.logger.InfoContext(ctx, "comparison built",
		slog.Int("files", len(cmp.Files)),
		slog.Int("keys", cmp.Len()),
		slog.Int("skipped", len(skipped)))
	return cmp, skipped, nil
}

type keyMean struct {
	key  Key
	mean float64
}

func (s *Summarizer) loadFile(ctx context.Context, path string) ([]keyMean, error) {
	table, err := s.reader.ReadFile(ctx, path, tabular.ReadOptions{
		Sheets: []string{cycletime.SheetDetail, "Sheet1"},
	})
	if err != nil {
		if errors.Is(err, tabular.ErrSheetNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrMissingSheet, err)
		}
		return nil, err
	}

	frameCol := table.Index(cycletime.ColFrame)
	speedCol := table.Index(cycletime.ColSpeed)
	valueCol := table.Index(cycletime.ColSecPerStrip)
	if frameCol < 0 || speedCol < 0 || valueCol < 0 {
		return nil, fmt.Errorf("%w: need %s, %s and %s", ErrMissingColumns,
			cycletime.ColFrame, cycletime.ColSpeed, cycletime.ColSecPerStrip)
	}

	groups := make(map[Key][]float64)
	var order []Key
	for i := range table.Rows {
		speed, ok := table.Float(i, speedCol)
		if !ok {
			continue
		}
		v, ok := table.Float(i, valueCol)
		if !ok {
			continue
		}
		frame := strings.TrimSpace(table.String(i, frameCol))
		if frame == "" {
			continue
		}
		k := Key{Frame: frame, Speed: speed}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], v)
	}

	out := make([]keyMean, 0, len(order))
	for _, k := range order {
		out = append(out, keyMean{key: k, mean: stats.Mean(groups[k])})
	}
	return out, nil
}
