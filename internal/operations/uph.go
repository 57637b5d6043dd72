package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"logview/internal/cycletime"
	"logview/internal/exporter"
	"logview/internal/files"
	"logview/internal/tabular"
	"logview/internal/uph"
)

// Step ids of a UPH run.
const (
	StepLoad  = "load"
	StepClean = "clean"
	StepWrite = "write"
)

// UPHLine names one production line that gets its own UPH transformation.
type UPHLine struct {
	ID    string
	Name  string
	Label string
}

// DefaultUPHLines are the wire bond, die attach and pick-and-place lines.
func DefaultUPHLines() []UPHLine {
	return []UPHLine{
		{ID: "wb_auto_uph", Name: "WB auto UPH", Label: "wire bond"},
		{ID: "die_attach_auto_uph", Name: "Die attach auto UPH", Label: "die attach"},
		{ID: "pnp_auto_uph", Name: "PnP auto UPH", Label: "pick-and-place"},
	}
}

// UPHDeps are the collaborators of UPHFunction. Tracer and Now may be nil.
type UPHDeps struct {
	Reader    *tabular.Reader
	Cleaner   *uph.Cleaner
	Workbooks *exporter.WorkbookWriter
	Tracer    *Tracer
	Now       func() time.Time
}

// UPHFunction cleans a machine UPH export per (BOM, machine model) group and
// writes the cleaned rows and the group averages.
type UPHFunction struct {
	line   UPHLine
	deps   UPHDeps
	logger *slog.Logger
}

// NewUPHFunction builds the transformation for one line.
func NewUPHFunction(line UPHLine, deps UPHDeps, logger *slog.Logger) (*UPHFunction, error) {
	if line.ID == "" {
		return nil, errors.New("UPH line needs an id")
	}
	if deps.Reader == nil || deps.Cleaner == nil || deps.Workbooks == nil {
		return nil, errors.New("UPH needs a reader, a cleaner and a workbook writer")
	}
	if deps.Tracer == nil {
		deps.Tracer = NewTracer(nil, nil)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UPHFunction{
		line:   line,
		deps:   deps,
		logger: logger.With(slog.String("component", "uph"), slog.String("function_id", line.ID)),
	}, nil
}

func (f *UPHFunction) ID() string   { return f.line.ID }
func (f *UPHFunction) Name() string { return f.line.Name }

func (f *UPHFunction) Description() string {
	return fmt.Sprintf("Outlier-cleaned UPH per BOM and machine model for the %s line, "+
		"with an optional YYYY/MM/DD date range.", f.line.Label)
}

// Run cleans the first spreadsheet among req.Inputs.
func (f *UPHFunction) Run(ctx context.Context, req Request) (res *Result, err error) {
	started := time.Now()
	ctx, end := f.deps.Tracer.TraceRun(ctx, f.line.ID, req)
	res = &Result{FunctionID: f.line.ID, RunID: req.RunID}
	defer func() {
		res.Duration = time.Since(started)
		end(res, err)
	}()

	rng, err := uph.ParseRange(req.From, req.To)
	if err != nil {
		return res, NewValidationError(f.line.ID, "invalid date range", err)
	}
	if rng.From != "" && rng.To != "" && rng.From > rng.To {
		return res, NewValidationError(f.line.ID, "start date is after end date", uph.ErrInvalidDate)
	}

	input := ""
	for _, in := range req.Inputs {
		switch {
		case !files.HasExtension(in, files.SpreadsheetExtensions):
			res.Skipped = append(res.Skipped, SkippedFile{Path: in, Reason: "not a spreadsheet"})
		case input == "":
			input = in
		default:
			res.Skipped = append(res.Skipped, SkippedFile{Path: in, Reason: "only the first spreadsheet is used"})
		}
	}
	if input == "" {
		return res, NewValidationError(f.line.ID, "no spreadsheet among the inputs", ErrNoSpreadsheet)
	}
	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		return res, fmt.Errorf("failed to create output directory: %w", err)
	}

	table, err := f.load(ctx, res, input)
	if err != nil {
		return res, err
	}
	cleaned, err := f.clean(ctx, res, table, rng)
	if err != nil {
		return res, err
	}
	if err := f.write(ctx, res, cleaned, req.OutputDir); err != nil {
		return res, err
	}
	f.deps.Tracer.RecordFiles(ctx, f.line.ID, 1, len(res.Skipped))

	res.Message = fmt.Sprintf("%d of %d rows kept in %d groups (%s)",
		cleaned.Cleaned.Len(), cleaned.RowsIn, len(cleaned.Groups), cleaned.Range.Label())
	f.logger.InfoContext(ctx, "uph run completed",
		slog.String("run_id", req.RunID),
		slog.String("range", cleaned.Range.Label()),
		slog.Int("groups", len(cleaned.Groups)))
	return res, nil
}

func (f *UPHFunction) load(ctx context.Context, res *Result, input string) (table *tabular.Table, err error) {
	step := NewStepState(StepLoad)
	res.Steps = append(res.Steps, step)
	ctx, end := f.deps.Tracer.TraceStep(ctx, f.line.ID, step)
	defer func() { end(err) }()

	table, err = f.deps.Reader.ReadFile(ctx, input, tabular.ReadOptions{})
	if err != nil {
		return nil, NewStepError(f.line.ID, StepLoad, err)
	}
	step.Complete(table.Len(), filepath.Base(input))
	return table, nil
}

func (f *UPHFunction) clean(ctx context.Context, res *Result, table *tabular.Table, rng uph.Range) (out *uph.Result, err error) {
	step := NewStepState(StepClean)
	res.Steps = append(res.Steps, step)
	ctx, end := f.deps.Tracer.TraceStep(ctx, f.line.ID, step)
	defer func() { end(err) }()

	out, err = f.deps.Cleaner.Clean(ctx, table, rng)
	if err != nil {
		return nil, NewStepError(f.line.ID, StepClean, err)
	}
	step.Complete(out.Cleaned.Len(), fmt.Sprintf("%d groups", len(out.Groups)))
	return out, nil
}

func (f *UPHFunction) write(ctx context.Context, res *Result, cleaned *uph.Result, outDir string) (err error) {
	step := NewStepState(StepWrite)
	res.Steps = append(res.Steps, step)
	ctx, end := f.deps.Tracer.TraceStep(ctx, f.line.ID, step)
	defer func() { end(err) }()

	ts := f.deps.Now().Format(cycletime.OutputTimeLayout)
	label := cleaned.Range.Label()

	cleanedPath := filepath.Join(outDir, fmt.Sprintf("cleaned_data_%s_%s.xlsx", label, ts))
	written, err := f.deps.Workbooks.WriteWorkbook(ctx, cleanedPath, cleaned.Cleaned)
	if err != nil {
		return NewStepError(f.line.ID, StepWrite, err)
	}
	res.Outputs = append(res.Outputs, written)

	averagePath := filepath.Join(outDir, fmt.Sprintf("group_average_%s_%s.xlsx", label, ts))
	written, err = f.deps.Workbooks.WriteWorkbook(ctx, averagePath, cleaned.Averages)
	if err != nil {
		return NewStepError(f.line.ID, StepWrite, err)
	}
	res.Outputs = append(res.Outputs, written)
	res.Preview = written

	step.Complete(len(res.Outputs), "")
	return nil
}
