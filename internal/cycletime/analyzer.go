package cycletime

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"logview/internal/logparse"
	"logview/internal/tabular"
)

// Sheet and column names of the per-file workbook. The cross-file stage
// reads them back, so they are part of the file format.
const (
	SheetDetail  = "Processed_Data"
	SheetSummary = "Summary"

	ColFrame       = "frame"
	ColSpeed       = "speed"
	ColSecPerStrip = "sec/strip"
)

var detailColumns = []string{
	"date", "time", "step", ColFrame, "No_strip", "value_1", ColSpeed,
	"minute", "seconds", "count_avg", "count_outliers", "Error", ColSecPerStrip,
}

// Options configures an Analyzer.
type Options struct {
	Parser            logparse.ParserConfig
	Cycles            logparse.CycleConfig
	FaultCodes        []string
	MaxElapsedSeconds float64
	Outliers          OutlierConfig
	MinSamples        int
}

// DefaultOptions returns the production settings.
func DefaultOptions() Options {
	return Options{
		Parser:            logparse.DefaultParserConfig(),
		Cycles:            logparse.DefaultCycleConfig(),
		FaultCodes:        logparse.DefaultFaultCodes,
		MaxElapsedSeconds: DefaultMaxElapsedSeconds,
		Outliers:          DefaultOutlierConfig(),
		MinSamples:        DefaultMinSamples,
	}
}

// FileStats counts what happened to one file on its way through the stages.
type FileStats struct {
	Events              int
	Cycles              int
	Faulted             int
	Rows                int
	Subgroups           int
	InvalidSubgroupRows int
	Outliers            int
	Frames              int
	FramesWithAverage   int
}

// FileResult is the analysis of a single log file.
type FileResult struct {
	Source      string
	Stem        string
	Rows        []Row
	Summaries   Summaries
	SummaryRows []SummaryRow
	Caps        Capabilities
	Stats       FileStats
}

// Analyzer runs the single-file stages. It holds only read-only configuration
// and is safe for concurrent use.
type Analyzer struct {
	parser *logparse.Parser
	opts   Options
	faults logparse.CodeSet
	caps   Capabilities
	logger *slog.Logger
}

// NewAnalyzer validates opts and builds an Analyzer.
func NewAnalyzer(opts Options, logger *slog.Logger) (*Analyzer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Cycles.CycleCode == "" || opts.Cycles.SpeedCode == "" {
		return nil, fmt.Errorf("cycle and speed event codes are required")
	}
	if opts.Cycles.SpeedSlot < 1 {
		return nil, fmt.Errorf("speed slot must be at least 1, got %d", opts.Cycles.SpeedSlot)
	}

	parser, err := logparse.NewParser(opts.Parser, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create log parser: %w", err)
	}

	faults := logparse.NewCodeSet(opts.FaultCodes...)
	caps := AllCapabilities()
	caps.FaultMarkers = len(faults) > 0

	return &Analyzer{
		parser: parser,
		opts:   opts,
		faults: faults,
		caps:   caps,
		logger: logger.With(slog.String("component", "cycletime")),
	}, nil
}

// Capabilities returns the annotation descriptor shared by every result.
func (a *Analyzer) Capabilities() Capabilities {
	return a.caps
}

// AnalyzeFile parses and analyzes one log file. Errors wrapping
// logparse.ErrUnreadable, logparse.ErrEmptyLog, ErrNoCycles or ErrNoFrameData
// mean the file should be skipped.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*FileResult, error) {
	table, err := a.parser.ParseFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return a.Analyze(ctx, table)
}

// Analyze runs the cycle stages over an already parsed table.
func (a *Analyzer) Analyze(ctx context.Context, table *logparse.EventTable) (*FileResult, error) {
	res := &FileResult{
		Source: table.Source,
		Stem:   stem(table.Source),
		Caps:   a.caps,
	}
	res.Stats.Events = table.Len()

	cycles := logparse.ExtractCycles(table, a.opts.Cycles)
	if len(cycles) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoCycles, filepath.Base(table.Source))
	}
	res.Stats.Cycles = len(cycles)
	if a.caps.FaultMarkers {
		res.Stats.Faulted = logparse.AnnotateFaults(table, cycles, a.faults)
	}

	normalized := Normalize(cycles, a.opts.MaxElapsedSeconds)
	if !hasFrame(normalized) {
		return nil, fmt.Errorf("%w in %s", ErrNoFrameData, filepath.Base(table.Source))
	}

	rows := Segment(normalized)
	res.Stats.Outliers = DetectOutliers(rows, a.opts.Outliers)
	res.Summaries = Aggregate(rows, a.caps, a.opts.MinSamples)
	res.SummaryRows = BuildSummaryRows(rows, res.Summaries)
	res.Rows = rows

	for _, r := range rows {
		if r.Blank {
			continue
		}
		res.Stats.Rows++
		if r.OutlierSubgroup {
			res.Stats.InvalidSubgroupRows++
		}
	}
	res.Stats.Subgroups = SubgroupCount(rows)
	res.Stats.Frames = len(res.Summaries.Order)
	res.Stats.FramesWithAverage = res.Summaries.SufficientCount()

	a.logger.InfoContext(ctx, "analyzed log file",
		slog.String("file", table.Source),
		slog.Int("events", res.Stats.Events),
		slog.Int("cycles", res.Stats.Cycles),
		slog.Int("faulted", res.Stats.Faulted),
		slog.Int("subgroups", res.Stats.Subgroups),
		slog.Int("outliers", res.Stats.Outliers),
		slog.Int("frames", res.Stats.Frames),
		slog.Int("frames_with_average", res.Stats.FramesWithAverage))

	return res, nil
}

// DetailTable renders the Processed_Data sheet. Frame summaries are written
// only on the first row of each frame. Rows whose frame token matched no
// known prefix have an empty frame and never get sec/strip.
func (r *FileResult) DetailTable() *tabular.Table {
	t := tabular.New(SheetDetail, detailColumns...)
	firstOf := make(map[int]FrameSummary, len(r.Summaries.ByFrame))
	for _, fs := range r.Summaries.ByFrame {
		if fs.Sufficient {
			firstOf[fs.FirstRow] = fs
		}
	}

	for i, row := range r.Rows {
		if row.Blank {
			t.Append(nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil, "", nil)
			continue
		}
		var avg, used, excluded any
		if fs, ok := firstOf[i]; ok {
			avg, used, excluded = fs.AvgSeconds, fs.CountUsed, fs.CountExcluded
		}
		t.Append(
			row.Date,
			row.Time,
			row.Code,
			row.Frame,
			optional(row.Strip),
			optional(row.Value1),
			optional(row.Speed),
			row.Duration,
			optional(row.Elapsed),
			used,
			excluded,
			r.Caps.ErrorLabel(row),
			avg,
		)
	}
	return t
}

// SummaryTable renders the Summary sheet.
func (r *FileResult) SummaryTable() *tabular.Table {
	t := tabular.New(SheetSummary, ColFrame, ColSpeed, ColSecPerStrip)
	for _, s := range r.SummaryRows {
		t.Append(s.Frame, s.Speed, optional(s.SecPerStrip))
	}
	return t
}

func optional(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func hasFrame(rows []Row) bool {
	for _, r := range rows {
		if !r.Blank && strings.TrimSpace(r.Frame) != "" {
			return true
		}
	}
	return false
}
