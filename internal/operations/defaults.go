package operations

import (
	"fmt"
	"log/slog"
	"time"

	"logview/internal/config"
	"logview/internal/crossfile"
	"logview/internal/cycletime"
	"logview/internal/exporter"
	"logview/internal/tabular"
	"logview/internal/uph"
)

// Defaults carries what the built-in transformations are assembled from.
type Defaults struct {
	Pipeline  config.PipelineConfig
	Reference *crossfile.ReferenceStore
	Tracer    *Tracer
	Logger    *slog.Logger
	Now       func() time.Time
}

// NewLogviewFromConfig assembles the logview transformation from pipeline
// settings.
func NewLogviewFromConfig(d Defaults) (*LogviewFunction, error) {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	analyzer, err := cycletime.NewAnalyzer(d.Pipeline.AnalyzerOptions(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create analyzer: %w", err)
	}

	workbooks := exporter.NewWorkbookWriter(logger)
	reader := tabular.NewReader(logger)
	runnerOpts := []cycletime.RunnerOption{cycletime.WithWorkers(d.Pipeline.Workers)}
	if d.Now != nil {
		runnerOpts = append(runnerOpts, cycletime.WithClock(d.Now))
	}

	return NewLogviewFunction(LogviewDeps{
		Runner:     cycletime.NewRunner(analyzer, workbooks, logger, runnerOpts...),
		Summarizer: crossfile.NewSummarizer(reader, logger),
		Averager:   crossfile.NewGroupedAverager(d.Pipeline.GroupOptions(), logger),
		Reference:  d.Reference,
		Workbooks:  workbooks,
		CSV:        exporter.NewCSVWriter("", logger),
		Tracer:     d.Tracer,
		Now:        d.Now,
	}, logger)
}

// RegisterDefaults registers logview followed by the UPH transformation of
// every default line.
func RegisterDefaults(reg *Registry, d Defaults) error {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	lv, err := NewLogviewFromConfig(d)
	if err != nil {
		return err
	}
	if err := reg.Register(lv); err != nil {
		return err
	}

	deps := UPHDeps{
		Reader:    tabular.NewReader(logger),
		Cleaner:   uph.NewCleaner(d.Pipeline.UPHCleaner(), logger),
		Workbooks: exporter.NewWorkbookWriter(logger),
		Tracer:    d.Tracer,
		Now:       d.Now,
	}
	for _, line := range DefaultUPHLines() {
		fn, err := NewUPHFunction(line, deps, logger)
		if err != nil {
			return err
		}
		if err := reg.Register(fn); err != nil {
			return err
		}
	}

	logger.Debug("transformations registered", slog.Any("ids", reg.ListIDs()))
	return nil
}
