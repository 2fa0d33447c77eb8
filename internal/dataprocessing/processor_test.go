package dataprocessing

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tidycli/internal/errors"
	"tidycli/pkg/contracts/domain"
)

// employmentCSV mirrors the shape of the published table: a title row, the
// header, then one row per metric
const employmentCSV = `Table A-6. Employment status of the civilian population by disability status
Category,Disability_Aug2024,NoDisability_Aug2024,Disability_Aug2025,NoDisability_Aug2025
Civilian noninstitutional population,"31,152","237,017","32,497","238,166"
Participation rate,24.2,68.4,25.1,67.9
Employed,60.5,75.0,"7,624","153,322"
Unemployed,"1,032","6,247",,"6,835"
Unemployment rate,12.1,3.9,,4.3
`

func mustParse(t *testing.T, content string) *domain.WideTable {
	t.Helper()
	table, err := ParseCSV(strings.NewReader(content), DefaultParseOptions())
	require.NoError(t, err)
	return table
}

func TestReshape_Scenario_TwoStatusesOneDate(t *testing.T) {
	table := mustParse(t, "title\nCategory,Disability_Aug2024,NoDisability_Aug2024\nEmployed,60.5,75.0\n")

	result, err := Reshape(table, DefaultOptions())
	require.NoError(t, err)

	want := []domain.LongRow{
		{Category: "Employed", DisabilityStatus: domain.StatusWithDisability, Year: "2024", Month: "Aug", Value: 60.5},
		{Category: "Employed", DisabilityStatus: domain.StatusNoDisability, Year: "2024", Month: "Aug", Value: 75.0},
	}
	if diff := cmp.Diff(want, result.Rows); diff != "" {
		t.Errorf("Reshape() rows mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, result.Diagnostics)
}

func TestReshape_Scenario_BlankCellEmitsNothing(t *testing.T) {
	result, err := Reshape(mustParse(t, employmentCSV), DefaultOptions())
	require.NoError(t, err)

	for _, row := range result.Rows {
		if row.Category == "Unemployed" && row.DisabilityStatus == domain.StatusWithDisability && row.Year == "2025" {
			t.Fatalf("unexpected row for blank cell: %+v", row)
		}
	}
	assert.Equal(t, 2, result.SkippedBlank)
	assert.Empty(t, result.Diagnostics)
}

func TestReshape_Scenario_FourLetterMonth(t *testing.T) {
	content := "title\nCategory,Disability_Sept2025,NoDisability_Aug2025\nEmployed,21.7,65.2\nUnemployed,,4.1\n"

	t.Run("strict aborts with schema error", func(t *testing.T) {
		_, err := Reshape(mustParse(t, content), ReshapeOptions{Strict: true})
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))
		assert.Equal(t, apperrors.StageReshape, apperrors.StageOf(err))
		assert.Contains(t, err.Error(), "Sept")
	})

	t.Run("lenient reports every non-blank cell", func(t *testing.T) {
		result, err := Reshape(mustParse(t, content), ReshapeOptions{Strict: false})
		require.NoError(t, err)

		require.Len(t, result.Diagnostics, 1)
		d := result.Diagnostics[0]
		assert.Equal(t, "Employed", d.Category)
		assert.Equal(t, "Disability_Sept2025", d.Key)
		assert.Equal(t, ReasonMonth, d.Reason)
		assert.Equal(t, 3, d.Line)

		for _, row := range result.Rows {
			assert.NotEqual(t, "Sep", row.Month, "Sept must never be coerced to Sep")
		}
		assert.Len(t, result.Rows, 2)

		require.Len(t, result.MalformedColumns, 1)
		assert.Equal(t, "Disability_Sept2025", result.MalformedColumns[0].Key)
	})
}

func TestReshape_LenientMalformedColumnWithoutValues(t *testing.T) {
	content := "title\nCategory,Disability_Sept2025,NoDisability_Aug2025\nEmployed,,65.2\n"

	result, err := Reshape(mustParse(t, content), ReshapeOptions{Strict: false})
	require.NoError(t, err)

	assert.Empty(t, result.Diagnostics)
	assert.Len(t, result.Rows, 1)
	assert.Equal(t, 1, result.SkippedBlank)

	want := []KeyError{{
		Key:    "Disability_Sept2025",
		Reason: ReasonMonth,
		Detail: `"Sept" is not a three-letter month abbreviation`,
	}}
	if diff := cmp.Diff(want, result.MalformedColumns); diff != "" {
		t.Errorf("malformed columns mismatch (-want +got):\n%s", diff)
	}
}

func TestReshape_Scenario_NonNumericCell(t *testing.T) {
	content := "title\nCategory,Disability_Aug2025,NoDisability_Aug2025\nEmployed,N/A,65.2\nUnemployed,2.1,4.1\n"

	result, err := Reshape(mustParse(t, content), DefaultOptions())
	require.NoError(t, err)

	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, ReasonValue, result.Diagnostics[0].Reason)
	assert.Equal(t, "N/A", result.Diagnostics[0].Value)
	assert.Equal(t, "Disability_Aug2025", result.Diagnostics[0].Key)
	assert.Len(t, result.Rows, 3)
}

func TestReshape_Scenario_ParticipationRate(t *testing.T) {
	result, err := Reshape(mustParse(t, employmentCSV), DefaultOptions())
	require.NoError(t, err)

	assert.Contains(t, result.Rows, domain.LongRow{
		Category: "Participation rate", DisabilityStatus: domain.StatusWithDisability, Year: "2025", Month: "Aug", Value: 25.1,
	})
	assert.Contains(t, result.Rows, domain.LongRow{
		Category: "Participation rate", DisabilityStatus: domain.StatusNoDisability, Year: "2025", Month: "Aug", Value: 67.9,
	})
}

func TestReshape_Properties(t *testing.T) {
	table := mustParse(t, employmentCSV)
	result, err := Reshape(table, DefaultOptions())
	require.NoError(t, err)

	t.Run("row count equals non-blank numeric cells", func(t *testing.T) {
		expected := 0
		for _, row := range table.Rows {
			for i := 1; i < len(table.Columns); i++ {
				if _, ok, err := ParseValue(row.Cell(i)); ok && err == nil {
					expected++
				}
			}
		}
		assert.Equal(t, expected, len(result.Rows))
		assert.Equal(t, 18, len(result.Rows))
	})

	t.Run("categories preserved", func(t *testing.T) {
		in := map[string]bool{}
		for _, row := range table.Rows {
			in[row.Cell(0)] = true
		}
		out := map[string]bool{}
		for _, row := range result.Rows {
			out[row.Category] = true
		}
		assert.Equal(t, in, out)
	})

	t.Run("status is total", func(t *testing.T) {
		for _, row := range result.Rows {
			assert.True(t, row.DisabilityStatus.Valid(), "unexpected status %q", row.DisabilityStatus)
		}
	})

	t.Run("observation keys are unique", func(t *testing.T) {
		seen := map[domain.ObservationKey]bool{}
		for _, row := range result.Rows {
			assert.False(t, seen[row.Key()], "duplicate observation %+v", row.Key())
			seen[row.Key()] = true
		}
	})

	t.Run("category varies slowest", func(t *testing.T) {
		require.NotEmpty(t, result.Rows)
		assert.Equal(t, "Civilian noninstitutional population", result.Rows[0].Category)
		assert.Equal(t, "Disability_Aug2024", "Disability_"+result.Rows[0].Month+result.Rows[0].Year)
		assert.Equal(t, domain.StatusNoDisability, result.Rows[1].DisabilityStatus)
		assert.Equal(t, "Unemployment rate", result.Rows[len(result.Rows)-1].Category)
	})

	t.Run("deterministic", func(t *testing.T) {
		again, err := Reshape(mustParse(t, employmentCSV), DefaultOptions())
		require.NoError(t, err)
		if diff := cmp.Diff(result, again); diff != "" {
			t.Errorf("second run differs (-first +second):\n%s", diff)
		}
	})
}

func TestReshape_SchemaErrors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		contains string
	}{
		{
			name:     "missing category column",
			content:  "title\nMetric,Disability_Aug2025\nEmployed,1\n",
			contains: "is not a <status>_<month><year> key",
		},
		{
			name:     "category column absent with only keys",
			content:  "title\nDisability_Aug2025,NoDisability_Aug2025\n1,2\n",
			contains: "missing Category column",
		},
		{
			name:     "column without separator",
			content:  "title\nCategory,DisabilityAug2025\nEmployed,1\n",
			contains: "DisabilityAug2025",
		},
		{
			name:     "duplicate category",
			content:  "title\nCategory,Disability_Aug2025\nEmployed,1\nEmployed,2\n",
			contains: "duplicate category",
		},
		{
			name:     "duplicate column",
			content:  "title\nCategory,Disability_Aug2025,Disability_Aug2025\nEmployed,1,2\n",
			contains: "duplicate column",
		},
		{
			name:     "columns normalizing to the same observation",
			content:  "title\nCategory,Disability_Aug2025,Disability_Aug.2025\nEmployed,1,2\n",
			contains: "same observation",
		},
		{
			name:     "values without category",
			content:  "title\nCategory,Disability_Aug2025\n,1\n",
			contains: "no Category",
		},
		{
			name:     "cells beyond header",
			content:  "title\nCategory,Disability_Aug2025\nEmployed,1,2\n",
			contains: "has 3 cells",
		},
		{
			name:     "three part key in strict mode",
			content:  "title\nCategory,Disability_Aug_2025\nEmployed,1\n",
			contains: "malformed value column",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reshape(mustParse(t, tt.content), DefaultOptions())
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema), "got %v", err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestReshape_LenientThreePartKey(t *testing.T) {
	content := "title\nCategory,Disability_Aug_2025,NoDisability_Aug2025\nEmployed,1,2\n"

	result, err := Reshape(mustParse(t, content), ReshapeOptions{Strict: false})
	require.NoError(t, err)

	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, ReasonSplit, result.Diagnostics[0].Reason)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, domain.StatusNoDisability, result.Rows[0].DisabilityStatus)
}

func TestReshape_ShortRowsAndBlankCategories(t *testing.T) {
	content := "title\nCategory,Disability_Aug2025,NoDisability_Aug2025\nEmployed,1\n,,\nUnemployed,,\n"

	result, err := Reshape(mustParse(t, content), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Categories)
	assert.Len(t, result.Rows, 1)
	assert.Equal(t, 3, result.SkippedBlank)
}

func TestReshape_NilTable(t *testing.T) {
	_, err := NewReshaper(DefaultOptions()).Reshape(nil)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))
}

func TestReshaper_ImplementsProcessor(t *testing.T) {
	var p Processor = NewReshaper(DefaultOptions())
	assert.NotNil(t, p)
}
