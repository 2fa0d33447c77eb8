package exporter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"tidycli/internal/dataprocessing"
)

// RunSummary is the human-facing outcome of a reshape run
type RunSummary struct {
	RunID        string
	InputPath    string
	OutputPath   string
	Categories   int
	ValueColumns int
	OutputRows   int
	SkippedBlank int
	ParseErrors  int
	// Malformed lists header keys that matched no column grammar
	Malformed []string
	Sample    []dataprocessing.ParseError
	Duration  time.Duration
}

// SampleKeys returns the distinct offending column keys of the sample, in order
func (s RunSummary) SampleKeys() []string {
	seen := make(map[string]bool, len(s.Sample))
	var keys []string
	for _, d := range s.Sample {
		if seen[d.Key] {
			continue
		}
		seen[d.Key] = true
		keys = append(keys, d.Key)
	}
	return keys
}

// OffendingKeys returns the malformed header keys followed by the sample
// keys, without repeats
func (s RunSummary) OffendingKeys() []string {
	seen := make(map[string]bool, len(s.Malformed)+len(s.Sample))
	var keys []string
	for _, k := range append(append([]string(nil), s.Malformed...), s.SampleKeys()...) {
		if seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}

// RenderSummary writes the run summary as a two-column table followed, when
// rows were dropped, by a table of sample diagnostics
func RenderSummary(w io.Writer, s RunSummary) error {
	table := tablewriter.NewWriter(w)
	table.Header("Field", "Value")

	rows := [][]string{
		{"Run ID", s.RunID},
		{"Input", s.InputPath},
		{"Output", s.OutputPath},
		{"Categories", formatInt(s.Categories)},
		{"Value columns", formatInt(s.ValueColumns)},
		{"Rows written", formatInt(s.OutputRows)},
		{"Blank cells skipped", formatInt(s.SkippedBlank)},
		{"Rows dropped", formatInt(s.ParseErrors)},
		{"Duration", s.Duration.Round(time.Millisecond).String()},
	}
	if keys := s.OffendingKeys(); len(keys) > 0 {
		rows = append(rows, []string{"Offending keys", strings.Join(keys, ", ")})
	}
	for _, row := range rows {
		if err := table.Append(row[0], row[1]); err != nil {
			return fmt.Errorf("failed to append summary row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}

	if len(s.Sample) == 0 {
		return nil
	}

	fmt.Fprintf(w, "\nDropped rows (showing %d of %d):\n", len(s.Sample), s.ParseErrors)
	diag := tablewriter.NewWriter(w)
	diag.Header("Line", "Category", "Key", "Value", "Reason")
	for _, d := range s.Sample {
		if err := diag.Append(formatInt(d.Line), d.Category, d.Key, d.Value, string(d.Reason)); err != nil {
			return fmt.Errorf("failed to append diagnostic row: %w", err)
		}
	}
	if err := diag.Render(); err != nil {
		return fmt.Errorf("failed to render diagnostics: %w", err)
	}
	return nil
}
