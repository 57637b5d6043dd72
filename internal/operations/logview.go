package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"logview/internal/crossfile"
	"logview/internal/cycletime"
	"logview/internal/exporter"
	"logview/internal/files"
)

// LogviewFunctionID is the id of the cycle-time transformation.
const LogviewFunctionID = "logview"

// SummaryPrefix starts the names of the comparison workbook and the grouped
// summary CSV, which are never inputs of a later comparison.
const SummaryPrefix = "Summary_"

// Step ids of a logview run.
const (
	StepAnalyze   = "analyze"
	StepSummarize = "summarize"
	StepGroup     = "group"
)

// LogviewDeps are the collaborators of LogviewFunction. Tracer and Now may be
// left nil.
type LogviewDeps struct {
	Runner     *cycletime.Runner
	Summarizer *crossfile.Summarizer
	Averager   *crossfile.GroupedAverager
	Reference  *crossfile.ReferenceStore
	Workbooks  *exporter.WorkbookWriter
	CSV        *exporter.CSVWriter
	Tracer     *Tracer
	Now        func() time.Time
}

// LogviewFunction turns machine event logs into per-file cycle-time
// workbooks, a cross-file comparison and the grouped reference summary.
type LogviewFunction struct {
	deps   LogviewDeps
	logger *slog.Logger
}

// NewLogviewFunction checks deps and builds the transformation.
func NewLogviewFunction(deps LogviewDeps, logger *slog.Logger) (*LogviewFunction, error) {
	if deps.Runner == nil || deps.Summarizer == nil || deps.Averager == nil {
		return nil, errors.New("logview needs a runner, a summarizer and an averager")
	}
	if deps.Workbooks == nil || deps.CSV == nil {
		return nil, errors.New("logview needs workbook and CSV writers")
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
	return &LogviewFunction{
		deps:   deps,
		logger: logger.With(slog.String("component", "logview"), slog.String("function_id", LogviewFunctionID)),
	}, nil
}

func (f *LogviewFunction) ID() string   { return LogviewFunctionID }
func (f *LogviewFunction) Name() string { return "LOGVIEW cycle time" }

func (f *LogviewFunction) Description() string {
	return "Per-strip cycle time per frame and speed from machine event logs (.txt), " +
		"with a cross-file comparison and an outlier-trimmed summary joined to the package reference."
}

// Run processes every log file among req.Inputs. Other inputs are reported
// as skipped.
func (f *LogviewFunction) Run(ctx context.Context, req Request) (res *Result, err error) {
	started := time.Now()
	ctx, end := f.deps.Tracer.TraceRun(ctx, LogviewFunctionID, req)
	res = &Result{FunctionID: LogviewFunctionID, RunID: req.RunID}
	defer func() {
		res.Duration = time.Since(started)
		end(res, err)
	}()

	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		return res, fmt.Errorf("failed to create output directory: %w", err)
	}

	var logs []string
	for _, in := range req.Inputs {
		if files.HasExtension(in, files.LogExtensions) {
			logs = append(logs, in)
			continue
		}
		res.Skipped = append(res.Skipped, SkippedFile{Path: in, Reason: "not a log file"})
	}

	batch, err := f.analyze(ctx, res, logs, req.OutputDir)
	if err != nil {
		skipSteps(res, "no workbooks to compare", StepSummarize, StepGroup)
		return res, err
	}

	ts := f.deps.Now().Format(cycletime.OutputTimeLayout)
	if err := f.summarize(ctx, res, batch.Outputs(), req.OutputDir, ts); err != nil {
		return res, err
	}

	res.Message = fmt.Sprintf("%d of %d log files processed", batch.Succeeded(), len(logs))
	f.logger.InfoContext(ctx, "logview run completed",
		slog.String("run_id", req.RunID),
		slog.Int("outputs", len(res.Outputs)),
		slog.Int("skipped", len(res.Skipped)))
	return res, nil
}

// SummarizeWorkbooks runs only the cross-file stages over per-file workbooks
// produced earlier.
func (f *LogviewFunction) SummarizeWorkbooks(ctx context.Context, req Request) (res *Result, err error) {
	started := time.Now()
	ctx, end := f.deps.Tracer.TraceRun(ctx, LogviewFunctionID+".summarize", req)
	res = &Result{FunctionID: LogviewFunctionID, RunID: req.RunID}
	defer func() {
		res.Duration = time.Since(started)
		end(res, err)
	}()

	if len(req.Inputs) == 0 {
		return res, cycletime.ErrNoInputFiles
	}
	if err := os.MkdirAll(req.OutputDir, 0755); err != nil {
		return res, fmt.Errorf("failed to create output directory: %w", err)
	}

	ts := f.deps.Now().Format(cycletime.OutputTimeLayout)
	if err := f.summarize(ctx, res, req.Inputs, req.OutputDir, ts); err != nil {
		return res, err
	}
	res.Message = fmt.Sprintf("%d workbooks summarized", len(req.Inputs)-len(res.Skipped))
	return res, nil
}

func (f *LogviewFunction) analyze(ctx context.Context, res *Result, logs []string, outDir string) (batch *cycletime.BatchResult, err error) {
	step := NewStepState(StepAnalyze)
	res.Steps = append(res.Steps, step)
	ctx, end := f.deps.Tracer.TraceStep(ctx, LogviewFunctionID, step)
	defer func() { end(err) }()

	batch, err = f.deps.Runner.Run(ctx, logs, outDir)
	if batch != nil {
		for _, o := range batch.Outcomes {
			if o.Err != nil {
				res.Skipped = append(res.Skipped, SkippedFile{Path: o.Input, Reason: o.Err.Error()})
				continue
			}
			res.Outputs = append(res.Outputs, o.Output)
			if o.Result != nil {
				f.deps.Tracer.RecordCycles(ctx, o.Input, o.Result.Stats.Cycles, o.Result.Stats.Outliers)
			}
		}
		f.deps.Tracer.RecordFiles(ctx, LogviewFunctionID, batch.Succeeded(), len(batch.Skipped()))
	}
	if err != nil {
		return nil, NewStepError(LogviewFunctionID, StepAnalyze, err)
	}
	step.Complete(batch.Succeeded(), fmt.Sprintf("%d workbooks written", batch.Succeeded()))
	return batch, nil
}

// summarize runs stages 8 and 9 and appends their files to res. The
// comparison workbook is written before the reference is loaded, so a missing
// reference still leaves it behind.
func (f *LogviewFunction) summarize(ctx context.Context, res *Result, workbooks []string, outDir, ts string) error {
	cmp, err := f.compare(ctx, res, workbooks, outDir, ts)
	if err != nil {
		skipSteps(res, "no comparison to group", StepGroup)
		return err
	}
	return f.group(ctx, res, cmp, outDir, ts)
}

func (f *LogviewFunction) compare(ctx context.Context, res *Result, workbooks []string, outDir, ts string) (cmp *crossfile.Comparison, err error) {
	step := NewStepState(StepSummarize)
	res.Steps = append(res.Steps, step)
	ctx, end := f.deps.Tracer.TraceStep(ctx, LogviewFunctionID, step)
	defer func() { end(err) }()

	cmp, skipped, err := f.deps.Summarizer.Summarize(ctx, workbooks)
	if err != nil {
		return nil, NewStepError(LogviewFunctionID, StepSummarize, err)
	}
	for _, s := range skipped {
		res.Skipped = append(res.Skipped, SkippedFile{Path: s.Path, Reason: s.Err.Error()})
	}
	if cmp.Len() == 0 {
		return nil, NewStepError(LogviewFunctionID, StepSummarize, cycletime.ErrNoUsableFiles)
	}

	path := filepath.Join(outDir, fmt.Sprintf("%sComparison_%s.xlsx", SummaryPrefix, ts))
	written, err := f.deps.Workbooks.WriteWorkbook(ctx, path, cmp.Table())
	if err != nil {
		return nil, NewStepError(LogviewFunctionID, StepSummarize, err)
	}
	res.Outputs = append(res.Outputs, written)
	step.Complete(cmp.Len(), fmt.Sprintf("%d keys across %d files", cmp.Len(), len(cmp.Files)))
	return cmp, nil
}

func (f *LogviewFunction) group(ctx context.Context, res *Result, cmp *crossfile.Comparison, outDir, ts string) (err error) {
	step := NewStepState(StepGroup)
	res.Steps = append(res.Steps, step)
	ctx, end := f.deps.Tracer.TraceStep(ctx, LogviewFunctionID, step)
	defer func() { end(err) }()

	if f.deps.Reference == nil {
		return NewStepError(LogviewFunctionID, StepGroup, crossfile.ErrReferenceMissing)
	}
	ref, err := f.deps.Reference.Get(ctx)
	if err != nil {
		return NewStepError(LogviewFunctionID, StepGroup, err)
	}
	report, err := f.deps.Averager.Build(ctx, cmp, ref)
	if err != nil {
		return NewStepError(LogviewFunctionID, StepGroup, err)
	}

	path := filepath.Join(outDir, fmt.Sprintf("%s%s.csv", SummaryPrefix, ts))
	written, err := f.deps.CSV.WriteTable(path, report.Table())
	if err != nil {
		return NewStepError(LogviewFunctionID, StepGroup, err)
	}
	res.Outputs = append(res.Outputs, written)
	res.Preview = written
	step.Complete(len(report.Rows), fmt.Sprintf("%d groups averaged", report.GroupsAveraged))
	return nil
}

// skipSteps records steps that never ran because an earlier one failed.
func skipSteps(res *Result, reason string, ids ...string) {
	for _, id := range ids {
		step := NewStepState(id)
		step.Skip(reason)
		res.Steps = append(res.Steps, step)
	}
}
