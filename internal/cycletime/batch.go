package cycletime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"logview/internal/tabular"
)

// OutputTimeLayout stamps generated file names.
const OutputTimeLayout = "20060102_150405"

// WorkbookWriter persists the per-file sheets.
type WorkbookWriter interface {
	WriteWorkbook(ctx context.Context, path string, sheets ...*tabular.Table) (string, error)
}

// FileOutcome is the result of one batch member.
type FileOutcome struct {
	Input  string
	Output string
	Result *FileResult
	Err    error // non-nil when the file was skipped
}

// BatchResult holds outcomes in input order.
type BatchResult struct {
	Outcomes []FileOutcome
}

// Outputs lists the workbooks that were written.
func (b *BatchResult) Outputs() []string {
	var out []string
	for _, o := range b.Outcomes {
		if o.Err == nil {
			out = append(out, o.Output)
		}
	}
	return out
}

// Succeeded counts files that produced a workbook.
func (b *BatchResult) Succeeded() int {
	return len(b.Outputs())
}

// Skipped returns the outcomes of files that were skipped.
func (b *BatchResult) Skipped() []FileOutcome {
	var out []FileOutcome
	for _, o := range b.Outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

// RunnerOption customises a Runner.
type RunnerOption func(*Runner)

// WithWorkers sets how many files are processed at once. Values below 2 keep
// the batch strictly sequential.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithClock replaces time.Now for output file names.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// Runner processes a batch of log files, one workbook per file.
type Runner struct {
	analyzer *Analyzer
	writer   WorkbookWriter
	workers  int
	now      func() time.Time
	logger   *slog.Logger
}

// NewRunner creates a batch runner.
func NewRunner(analyzer *Analyzer, writer WorkbookWriter, logger *slog.Logger, opts ...RunnerOption) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{
		analyzer: analyzer,
		writer:   writer,
		workers:  1,
		now:      time.Now,
		logger:   logger.With(slog.String("component", "batch")),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run analyzes every input and writes its workbook into outDir. A file that
// fails is logged and skipped; the batch only fails when there are no inputs,
// when every file was skipped, or when ctx is cancelled. Run returns after all
// files have finished.
func (r *Runner) Run(ctx context.Context, inputs []string, outDir string) (*BatchResult, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInputFiles
	}

	r.logger.InfoContext(ctx, "batch started",
		slog.Int("files", len(inputs)),
		slog.Int("workers", r.workers),
		slog.String("output_dir", outDir))
	started := time.Now()

	labels := UniqueStems(inputs)
	res := &BatchResult{Outcomes: make([]FileOutcome, len(inputs))}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, input := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res.Outcomes[i] = r.processOne(gctx, i+1, len(inputs), input, labels[i], outDir)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	succeeded := res.Succeeded()
	r.logger.InfoContext(ctx, "batch finished",
		slog.Int("succeeded", succeeded),
		slog.Int("skipped", len(inputs)-succeeded),
		slog.Duration("duration", time.Since(started)))

	if succeeded == 0 {
		return res, ErrNoUsableFiles
	}
	return res, nil
}

// processOne writes the workbook as {label}_{timestamp}.xlsx. Labels are unique
// within the batch, so inputs sharing a file name never share a target.
func (r *Runner) processOne(ctx context.Context, n, total int, input, label, outDir string) FileOutcome {
	out := FileOutcome{Input: input}

	result, err := r.analyzer.AnalyzeFile(ctx, input)
	if err != nil {
		out.Err = err
		r.logSkip(ctx, n, total, input, err)
		return out
	}
	result.Stem = label
	out.Result = result

	target := filepath.Join(outDir, fmt.Sprintf("%s_%s.xlsx", label, r.now().Format(OutputTimeLayout)))
	written, err := r.writer.WriteWorkbook(ctx, target, result.DetailTable(), result.SummaryTable())
	if err != nil {
		out.Err = fmt.Errorf("failed to write workbook for %s: %w", filepath.Base(input), err)
		r.logSkip(ctx, n, total, input, out.Err)
		return out
	}
	out.Output = written

	r.logger.InfoContext(ctx, "file processed",
		slog.Int("index", n),
		slog.Int("total", total),
		slog.String("file", input),
		slog.String("output", written))
	return out
}

func (r *Runner) logSkip(ctx context.Context, n, total int, input string, err error) {
	level := slog.LevelWarn
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		level = slog.LevelInfo
	}
	r.logger.Log(ctx, level, "file skipped",
		slog.Int("index", n),
		slog.Int("total", total),
		slog.String("file", input),
		slog.String("reason", err.Error()))
}
