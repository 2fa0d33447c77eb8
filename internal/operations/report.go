package operations

import (
	"time"

	"tidycli/internal/dataprocessing"
	apperrors "tidycli/internal/errors"
	"tidycli/internal/exporter"
)

// RunReport summarizes a run. Counts are zero for stages that did not run,
// and OutputRows stays zero unless the tidy table was written.
type RunReport struct {
	RunID      string
	InputPath  string
	OutputPath string

	// InputRows is the number of non-blank data rows in the wide table
	InputRows    int
	Categories   int
	ValueColumns int
	OutputRows   int
	SkippedBlank int
	ParseErrors  int

	// MalformedColumns names the header keys rejected in lenient mode
	MalformedColumns []string
	// Sample holds the first dropped rows, capped by DiagnosticsSample
	Sample []dataprocessing.ParseError
	Steps  []*StepState

	Duration time.Duration
}

func (r *RunReport) fill(state *RunState, sampleSize int) {
	r.Steps = state.Steps
	if state.Table != nil {
		r.InputRows = len(state.Table.Rows)
	}
	if state.Result == nil {
		return
	}
	res := state.Result
	r.Categories = res.Categories
	r.ValueColumns = res.ValueColumns
	if st := state.Step(apperrors.StageWrite); st != nil && st.Status == StepStatusCompleted {
		r.OutputRows = len(res.Rows)
	}
	r.SkippedBlank = res.SkippedBlank
	r.ParseErrors = len(res.Diagnostics)
	for _, col := range res.MalformedColumns {
		r.MalformedColumns = append(r.MalformedColumns, col.Key)
	}

	n := min(sampleSize, len(res.Diagnostics))
	if n > 0 {
		r.Sample = append([]dataprocessing.ParseError(nil), res.Diagnostics[:n]...)
	}
}

// HasParseErrors reports whether any cell was dropped
func (r *RunReport) HasParseErrors() bool {
	return r.ParseErrors > 0
}

// Summary converts the report for rendering
func (r *RunReport) Summary() exporter.RunSummary {
	return exporter.RunSummary{
		RunID:        r.RunID,
		InputPath:    r.InputPath,
		OutputPath:   r.OutputPath,
		Categories:   r.Categories,
		ValueColumns: r.ValueColumns,
		OutputRows:   r.OutputRows,
		SkippedBlank: r.SkippedBlank,
		ParseErrors:  r.ParseErrors,
		Malformed:    r.MalformedColumns,
		Sample:       r.Sample,
		Duration:     r.Duration,
	}
}
