package exporter

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tidycli/internal/dataprocessing"
)

func TestRunSummary_SampleKeys(t *testing.T) {
	s := RunSummary{Sample: []dataprocessing.ParseError{
		{Key: "Disability_Sept2025"},
		{Key: "Disability_Aug2025"},
		{Key: "Disability_Sept2025"},
	}}

	assert.Equal(t, []string{"Disability_Sept2025", "Disability_Aug2025"}, s.SampleKeys())
	assert.Nil(t, RunSummary{}.SampleKeys())
}

func TestRunSummary_OffendingKeys(t *testing.T) {
	s := RunSummary{
		Malformed: []string{"Disability_Sept2025"},
		Sample: []dataprocessing.ParseError{
			{Key: "Disability_Sept2025"},
			{Key: "NoDisability_Aug2025"},
		},
	}

	assert.Equal(t, []string{"Disability_Sept2025", "NoDisability_Aug2025"}, s.OffendingKeys())
	assert.Nil(t, RunSummary{}.OffendingKeys())
}

func TestRenderSummary(t *testing.T) {
	tests := []struct {
		name        string
		summary     RunSummary
		contains    []string
		notContains []string
	}{
		{
			name: "clean run",
			summary: RunSummary{
				RunID:        "run-1",
				InputPath:    "in.csv",
				OutputPath:   "out.csv",
				Categories:   5,
				ValueColumns: 4,
				OutputRows:   18,
				SkippedBlank: 2,
				Duration:     1500 * time.Microsecond,
			},
			contains:    []string{"run-1", "in.csv", "out.csv", "18", "2ms"},
			notContains: []string{"Dropped rows", "Offending keys"},
		},
		{
			name: "run with dropped rows",
			summary: RunSummary{
				RunID:       "run-2",
				OutputRows:  3,
				ParseErrors: 4,
				Sample: []dataprocessing.ParseError{
					{Line: 3, Category: "Employed", Key: "Disability_Aug2025", Value: "N/A", Reason: dataprocessing.ReasonValue},
				},
			},
			contains: []string{"Dropped rows (showing 1 of 4)", "Disability_Aug2025", "N/A", "value"},
		},
		{
			name: "malformed column with no values",
			summary: RunSummary{
				RunID:      "run-3",
				OutputRows: 1,
				Malformed:  []string{"Disability_Sept2025"},
			},
			contains:    []string{"Offending keys", "Disability_Sept2025"},
			notContains: []string{"Dropped rows"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, RenderSummary(&buf, tt.summary))

			out := buf.String()
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, out, s)
			}
		})
	}
}
