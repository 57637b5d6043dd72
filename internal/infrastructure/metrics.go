package infrastructure

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
)

// PipelineMetrics holds the application metrics. A nil *PipelineMetrics is
// valid and records nothing.
type PipelineMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram

	// Transformation runs
	RunsTotal   metric.Int64Counter
	RunDuration metric.Float64Histogram
	ActiveRuns  metric.Int64UpDownCounter

	// Pipeline volume
	FilesProcessed  metric.Int64Counter
	FilesSkipped    metric.Int64Counter
	CyclesExtracted metric.Int64Counter
	OutliersFlagged metric.Int64Counter
}

// NewPipelineMetrics creates the instruments on meter. A nil meter yields
// no-op instruments.
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	if meter == nil {
		meter = metricnoop.NewMeterProvider().Meter(MeterName)
	}

	m := &PipelineMetrics{}
	var err error

	if m.HTTPRequestsTotal, err = meter.Int64Counter("logview_http_requests_total",
		metric.WithDescription("Total number of HTTP requests")); err != nil {
		return nil, fmt.Errorf("http requests counter: %w", err)
	}
	if m.HTTPRequestDuration, err = meter.Float64Histogram("logview_http_request_duration_seconds",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("http duration histogram: %w", err)
	}
	if m.RunsTotal, err = meter.Int64Counter("logview_runs_total",
		metric.WithDescription("Transformation runs by function and status")); err != nil {
		return nil, fmt.Errorf("runs counter: %w", err)
	}
	if m.RunDuration, err = meter.Float64Histogram("logview_run_duration_seconds",
		metric.WithDescription("Transformation run duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.5, 1, 5, 15, 30, 60, 300, 900, 1800)); err != nil {
		return nil, fmt.Errorf("run duration histogram: %w", err)
	}
	if m.ActiveRuns, err = meter.Int64UpDownCounter("logview_active_runs",
		metric.WithDescription("Transformation runs in progress")); err != nil {
		return nil, fmt.Errorf("active runs counter: %w", err)
	}
	if m.FilesProcessed, err = meter.Int64Counter("logview_files_processed_total",
		metric.WithDescription("Input files that produced output")); err != nil {
		return nil, fmt.Errorf("files processed counter: %w", err)
	}
	if m.FilesSkipped, err = meter.Int64Counter("logview_files_skipped_total",
		metric.WithDescription("Input files skipped by a per-file error")); err != nil {
		return nil, fmt.Errorf("files skipped counter: %w", err)
	}
	if m.CyclesExtracted, err = meter.Int64Counter("logview_cycles_extracted_total",
		metric.WithDescription("Production cycles extracted from logs")); err != nil {
		return nil, fmt.Errorf("cycles counter: %w", err)
	}
	if m.OutliersFlagged, err = meter.Int64Counter("logview_outliers_flagged_total",
		metric.WithDescription("Rows flagged as cycle-time outliers")); err != nil {
		return nil, fmt.Errorf("outliers counter: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records one served request.
func (m *PipelineMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RunStarted marks a transformation run as active and returns the func that
// records its outcome.
func (m *PipelineMetrics) RunStarted(ctx context.Context, functionID string) func(err error) {
	if m == nil {
		return func(error) {}
	}
	fn := attribute.String("function.id", functionID)
	start := time.Now()
	m.ActiveRuns.Add(ctx, 1, metric.WithAttributes(fn))

	return func(err error) {
		status := attribute.String("status", "success")
		if err != nil {
			status = attribute.String("status", "failure")
		}
		m.ActiveRuns.Add(ctx, -1, metric.WithAttributes(fn))
		m.RunsTotal.Add(ctx, 1, metric.WithAttributes(fn, status))
		m.RunDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(fn, status))
	}
}

// RecordFiles records the per-file outcome of a batch.
func (m *PipelineMetrics) RecordFiles(ctx context.Context, functionID string, processed, skipped int) {
	if m == nil {
		return
	}
	fn := metric.WithAttributes(attribute.String("function.id", functionID))
	m.FilesProcessed.Add(ctx, int64(processed), fn)
	m.FilesSkipped.Add(ctx, int64(skipped), fn)
}

// RecordCycles records cycle and outlier counts of one analyzed file.
func (m *PipelineMetrics) RecordCycles(ctx context.Context, cycles, outliers int) {
	if m == nil {
		return
	}
	m.CyclesExtracted.Add(ctx, int64(cycles))
	m.OutliersFlagged.Add(ctx, int64(outliers))
}
