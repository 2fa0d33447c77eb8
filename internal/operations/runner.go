package operations

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	apperrors "tidycli/internal/errors"
	"tidycli/internal/exporter"
	"tidycli/internal/infrastructure"
	"tidycli/internal/validation"
)

// Runner executes the read, reshape and write stages of one run in order.
// A Runner is not safe for concurrent use.
type Runner struct {
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *Metrics
	now     func() time.Time
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithLogger sets the logger; the global logger is used otherwise
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// WithTracer sets the tracer for per-stage spans
func WithTracer(tracer trace.Tracer) RunnerOption {
	return func(r *Runner) { r.tracer = tracer }
}

// WithMetrics replaces the runner's metrics
func WithMetrics(metrics *Metrics) RunnerOption {
	return func(r *Runner) { r.metrics = metrics }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

// NewRunner creates a runner
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		now: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = infrastructure.GetLogger()
	}
	if r.tracer == nil {
		r.tracer = noop.NewTracerProvider().Tracer(infrastructure.TracerName)
	}
	if r.metrics == nil {
		r.metrics = NewMetrics()
	}
	r.logger = infrastructure.WithComponent(r.logger, "runner")
	return r
}

// Metrics returns the runner's metrics
func (r *Runner) Metrics() *Metrics {
	return r.metrics
}

// Run reshapes opts.InputPath into opts.OutputPath. Cells dropped with a
// parse error are reported in the RunReport and never fail the run. A
// fatal error carries the stage it surfaced in; the partial report is
// still returned.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (*RunReport, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	runID := infrastructure.GetTraceID(ctx)
	start := r.now()

	logger := r.logger.With(slog.String("run_id", runID))
	state := NewRunState(runID, opts)
	report := &RunReport{
		RunID:      runID,
		InputPath:  opts.InputPath,
		OutputPath: opts.OutputPath,
	}

	ctx, span := r.tracer.Start(ctx, "tidycsv.run",
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("run.input", opts.InputPath),
			attribute.String("run.output", opts.OutputPath),
			attribute.Bool("run.strict", opts.Strict),
		))
	defer span.End()

	logger.InfoContext(ctx, "run started",
		slog.String("input", opts.InputPath),
		slog.String("output", opts.OutputPath),
		slog.Int("skip_header_rows", opts.SkipHeaderRows),
		slog.Bool("strict", opts.Strict))

	err := r.validate(opts)
	validated := err == nil
	if validated {
		err = r.execute(ctx, logger, state, r.steps(logger))
	}

	report.fill(state, opts.DiagnosticsSample)
	report.Duration = r.now().Sub(start)
	if err == nil {
		r.metrics.ObserveResult(state.Result)
	}
	r.metrics.ObserveRun(err, float64(r.now().Unix()))
	// rejected options may point the metrics path at the input or output
	if validated {
		r.writeMetrics(ctx, logger, opts.MetricsPath)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		infrastructure.WithError(logger, err).ErrorContext(ctx, "run failed",
			slog.String("stage", apperrors.StageOf(err)))
		return report, err
	}

	span.SetAttributes(
		attribute.Int("run.output_rows", report.OutputRows),
		attribute.Int("run.parse_errors", report.ParseErrors))
	logger.InfoContext(ctx, "run completed",
		slog.Int("output_rows", report.OutputRows),
		slog.Int("parse_errors", report.ParseErrors),
		slog.Duration("duration", report.Duration))
	return report, nil
}

func (r *Runner) validate(opts RunOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	return validation.NewFileValidator(r.logger).ValidateDistinct(
		validation.RunPath{Role: "input", Path: opts.InputPath},
		validation.RunPath{Role: "output", Path: opts.OutputPath},
		validation.RunPath{Role: "diagnostics", Path: opts.DiagnosticsPath},
		validation.RunPath{Role: "metrics", Path: opts.MetricsPath},
	)
}

func (r *Runner) steps(logger *slog.Logger) []Step {
	validator := validation.NewFileValidator(logger)
	return []Step{
		NewReadStep(validator, logger),
		NewReshapeStep(logger),
		NewWriteStep(validator, exporter.NewTidyExporter("", logger), logger),
	}
}

// execute runs steps in order and stops at the first failure
func (r *Runner) execute(ctx context.Context, logger *slog.Logger, state *RunState, steps []Step) error {
	for _, step := range steps {
		state.Steps = append(state.Steps, NewStepState(step.ID(), step.Name()))
	}

	for i, step := range steps {
		stepState := state.Steps[i]

		stepCtx, span := r.tracer.Start(ctx, "tidycsv."+step.ID(),
			trace.WithAttributes(attribute.String("stage.name", step.Name())))

		stepState.Start(r.now())
		logger.DebugContext(stepCtx, "stage started", slog.String("stage", step.ID()))
		err := step.Execute(stepCtx, state)
		if err != nil {
			err = attachStage(err, step.ID())
			stepState.Fail(r.now(), err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			stepState.Complete(r.now())
		}
		span.End()
		r.metrics.ObserveStage(stepState)

		if err != nil {
			return err
		}
		logger.DebugContext(stepCtx, "stage completed",
			slog.String("stage", step.ID()),
			slog.Duration("duration", stepState.Duration()))
	}
	return nil
}

// writeMetrics writes the textfile when requested. A failure here is logged
// and does not change the outcome of the run.
func (r *Runner) writeMetrics(ctx context.Context, logger *slog.Logger, path string) {
	if path == "" {
		return
	}
	if err := r.metrics.WriteTextfile(path); err != nil {
		infrastructure.WithError(logger, err).WarnContext(ctx, "metrics not written",
			slog.String("path", path))
	}
}

// attachStage records stage on the error when it does not already carry one
func attachStage(err error, stage string) error {
	if apperrors.StageOf(err) != "" {
		return err
	}
	if appErr, ok := err.(*apperrors.AppError); ok {
		return appErr.WithStage(stage)
	}
	return apperrors.NewParsingError("stage failed", err).WithStage(stage)
}
