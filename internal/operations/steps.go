package operations

import (
	"context"
	"log/slog"

	"tidycli/internal/dataprocessing"
	apperrors "tidycli/internal/errors"
	"tidycli/internal/exporter"
	"tidycli/internal/validation"
)

// Step is a single stage of a run
type Step interface {
	// ID names the stage in logs, spans, metrics and errors
	ID() string
	// Name is the human-readable stage name
	Name() string
	// Execute runs the stage against the shared run state
	Execute(ctx context.Context, state *RunState) error
}

// ReadStep validates the input file and parses it into a wide table
type ReadStep struct {
	validator *validation.FileValidator
	logger    *slog.Logger
}

// NewReadStep creates the read stage
func NewReadStep(validator *validation.FileValidator, logger *slog.Logger) *ReadStep {
	return &ReadStep{validator: validator, logger: logger.With(slog.String("stage", apperrors.StageRead))}
}

func (s *ReadStep) ID() string   { return apperrors.StageRead }
func (s *ReadStep) Name() string { return "Read wide table" }

func (s *ReadStep) Execute(ctx context.Context, state *RunState) error {
	opts := state.Options
	if err := s.validator.ValidateInputFile(opts.InputPath); err != nil {
		return err
	}

	table, err := dataprocessing.ParseFile(opts.InputPath, dataprocessing.ParseOptions{
		SkipHeaderRows: opts.SkipHeaderRows,
		Sheet:          opts.Sheet,
	})
	if err != nil {
		return err
	}
	state.Table = table

	s.logger.InfoContext(ctx, "input parsed",
		slog.String("input", opts.InputPath),
		slog.Int("columns", len(table.Columns)),
		slog.Int("rows", len(table.Rows)))
	return nil
}

// ReshapeStep melts the wide table into tidy observations
type ReshapeStep struct {
	logger *slog.Logger
}

// NewReshapeStep creates the reshape stage
func NewReshapeStep(logger *slog.Logger) *ReshapeStep {
	return &ReshapeStep{logger: logger.With(slog.String("stage", apperrors.StageReshape))}
}

func (s *ReshapeStep) ID() string   { return apperrors.StageReshape }
func (s *ReshapeStep) Name() string { return "Reshape to long format" }

func (s *ReshapeStep) Execute(ctx context.Context, state *RunState) error {
	reshaper := dataprocessing.NewReshaper(dataprocessing.ReshapeOptions{
		Strict: state.Options.Strict,
	})
	result, err := reshaper.Reshape(state.Table)
	if err != nil {
		return err
	}
	state.Result = result

	for _, col := range result.MalformedColumns {
		s.logger.WarnContext(ctx, "malformed column",
			slog.String("key", col.Key),
			slog.String("reason", string(col.Reason)),
			slog.String("detail", col.Detail))
	}
	for _, d := range result.Diagnostics {
		s.logger.WarnContext(ctx, "row dropped",
			slog.Int("line", d.Line),
			slog.String("category", d.Category),
			slog.String("key", d.Key),
			slog.String("value", d.Value),
			slog.String("reason", string(d.Reason)))
	}
	s.logger.InfoContext(ctx, "table reshaped",
		slog.Int("categories", result.Categories),
		slog.Int("value_columns", result.ValueColumns),
		slog.Int("output_rows", len(result.Rows)),
		slog.Int("blank_skipped", result.SkippedBlank),
		slog.Int("parse_errors", len(result.Diagnostics)),
		slog.Int("malformed_columns", len(result.MalformedColumns)))
	return nil
}

// WriteStep writes the tidy table and, when requested, the diagnostics CSV
type WriteStep struct {
	validator *validation.FileValidator
	exporter  *exporter.TidyExporter
	logger    *slog.Logger
}

// NewWriteStep creates the write stage
func NewWriteStep(validator *validation.FileValidator, exp *exporter.TidyExporter, logger *slog.Logger) *WriteStep {
	return &WriteStep{validator: validator, exporter: exp, logger: logger.With(slog.String("stage", apperrors.StageWrite))}
}

func (s *WriteStep) ID() string   { return apperrors.StageWrite }
func (s *WriteStep) Name() string { return "Write tidy table" }

func (s *WriteStep) Execute(ctx context.Context, state *RunState) error {
	opts := state.Options
	if err := s.validator.ValidateOutputPath(opts.OutputPath); err != nil {
		return err
	}
	if err := s.exporter.ExportLongRows(state.Result.Rows, opts.OutputPath); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "output written",
		slog.String("output", opts.OutputPath),
		slog.Int("rows", len(state.Result.Rows)))

	if opts.DiagnosticsPath == "" {
		return nil
	}
	if err := s.validator.ValidateOutputPath(opts.DiagnosticsPath); err != nil {
		return err
	}
	if err := s.exporter.ExportDiagnostics(state.Result.Diagnostics, opts.DiagnosticsPath); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "diagnostics written",
		slog.String("path", opts.DiagnosticsPath),
		slog.Int("rows", len(state.Result.Diagnostics)))
	return nil
}
