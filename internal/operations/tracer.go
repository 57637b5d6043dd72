package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"logview/internal/infrastructure"
)

// TracerName is the instrumentation scope of run and step spans.
const TracerName = "logview.operations"

// Tracer provides OpenTelemetry instrumentation for transformation runs.
// Both fields may be nil: a nil tracer falls back to the global provider and
// nil metrics record nothing.
type Tracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewTracer creates a run tracer.
func NewTracer(tracer trace.Tracer, metrics *infrastructure.PipelineMetrics) *Tracer {
	if tracer == nil {
		tracer = otel.Tracer(TracerName)
	}
	return &Tracer{tracer: tracer, metrics: metrics}
}

// TraceRun opens the span of a whole run. The returned func closes it and
// records the run metrics; res may be nil when the run failed early.
func (t *Tracer) TraceRun(ctx context.Context, functionID string, req Request) (context.Context, func(res *Result, err error)) {
	ctx, span := t.tracer.Start(ctx, fmt.Sprintf("operation.run.%s", functionID),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("function.id", functionID),
			attribute.String("run.id", req.RunID),
			attribute.Int("run.inputs", len(req.Inputs)),
			attribute.String("run.from_date", req.From),
			attribute.String("run.to_date", req.To),
		),
	)
	done := t.metrics.RunStarted(ctx, functionID)
	start := time.Now()

	return ctx, func(res *Result, err error) {
		defer span.End()
		done(err)

		status := "success"
		if err != nil {
			status = "failure"
		}
		span.SetAttributes(
			attribute.String("run.status", status),
			attribute.Float64("run.duration_seconds", time.Since(start).Seconds()),
		)
		if res != nil {
			span.SetAttributes(
				attribute.Int("run.outputs", len(res.Outputs)),
				attribute.Int("run.skipped", len(res.Skipped)),
			)
		}

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return
		}
		span.SetStatus(codes.Ok, "run completed")
	}
}

// TraceStep opens a child span for step and marks it running. The returned
// func closes the span; the caller completes or fails the step before that.
func (t *Tracer) TraceStep(ctx context.Context, functionID string, step *StepState) (context.Context, func(err error)) {
	ctx, span := t.tracer.Start(ctx, fmt.Sprintf("operation.step.%s", step.ID),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("function.id", functionID),
			attribute.String("step.id", step.ID),
		),
	)
	step.Start()

	return ctx, func(err error) {
		defer span.End()
		if err != nil {
			step.Fail(err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "step failed")
			return
		}
		span.SetAttributes(
			attribute.String("step.status", string(step.Status)),
			attribute.Int("step.items", step.Items),
		)
		span.SetStatus(codes.Ok, "")
	}
}

// RecordFiles records the processed and skipped file counts of a run.
func (t *Tracer) RecordFiles(ctx context.Context, functionID string, processed, skipped int) {
	t.metrics.RecordFiles(ctx, functionID, processed, skipped)
	infrastructure.AddSpanEvent(ctx, "files.counted",
		attribute.Int("files.processed", processed),
		attribute.Int("files.skipped", skipped),
	)
}

// RecordCycles records the cycle and outlier counts of one analyzed file.
func (t *Tracer) RecordCycles(ctx context.Context, source string, cycles, outliers int) {
	t.metrics.RecordCycles(ctx, cycles, outliers)
	infrastructure.AddSpanEvent(ctx, "file.analyzed",
		attribute.String("file", source),
		attribute.Int("cycles", cycles),
		attribute.Int("outliers", outliers),
	)
}
