package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wideCSV = `Table A-6. Employment status of the civilian population by disability status
Category,Disability_Aug2024,NoDisability_Aug2024,Disability_Aug2025,NoDisability_Aug2025
Employed,60.5,75.0,61.0,75.5
Unemployed,"1,032","6,247",,"6,835"
`

const droppedCSV = `title
Category,Disability_Aug2025,NoDisability_Aug2025
Employed,N/A,75.0
Unemployed,abc,4.1
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func execute(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Success(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "wide.csv", wideCSV)
	output := filepath.Join(dir, "tidy.csv")

	code, stdout, _ := execute(input, output)
	require.Equal(t, exitOK, code)

	assert.Contains(t, stdout, "Rows written")

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
	assert.Len(t, lines, 8)
	assert.Equal(t, "Category,Disability_Status,Year,Month,Value", lines[0])
	assert.Equal(t, "Unemployed,With Disability,2024,Aug,1032", lines[5])
}

func TestRun_Quiet(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "wide.csv", wideCSV)

	code, stdout, stderr := execute("--quiet", input, filepath.Join(dir, "tidy.csv"))
	require.Equal(t, exitOK, code)
	assert.Empty(t, stdout)
	assert.Empty(t, stderr)
}

func TestRun_ParseErrors(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "wide.csv", droppedCSV)
	diagnostics := filepath.Join(dir, "dropped.csv")

	t.Run("reported but not fatal by default", func(t *testing.T) {
		code, stdout, stderr := execute("--diagnostics", diagnostics, input, filepath.Join(dir, "a.csv"))
		require.Equal(t, exitOK, code)
		assert.Contains(t, stdout, "Dropped rows (showing 2 of 2)")
		assert.Contains(t, stderr, "row dropped")

		content, err := os.ReadFile(diagnostics)
		require.NoError(t, err)
		assert.Equal(t, 3, strings.Count(string(content), "\n"))
	})

	t.Run("fail on parse errors", func(t *testing.T) {
		code, _, stderr := execute("--fail-on-parse-errors", "--sample", "1", input, filepath.Join(dir, "b.csv"))
		assert.Equal(t, exitParseErrors, code)
		assert.Contains(t, stderr, "2 cell(s) dropped with parse errors")

		// the tidy table is still written
		_, err := os.Stat(filepath.Join(dir, "b.csv"))
		assert.NoError(t, err)
	})
}

func TestRun_Strictness(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "wide.csv", "title\nCategory,Disability_Sept2025,NoDisability_Aug2025\nEmployed,61.0,75.0\n")

	code, _, stderr := execute(input, filepath.Join(dir, "strict.csv"))
	assert.Equal(t, exitFatal, code)
	assert.Contains(t, stderr, "Error: [SCHEMA] reshape stage")

	code, stdout, _ := execute("--strict=false", input, filepath.Join(dir, "lenient.csv"))
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "Disability_Sept2025")
}

func TestRun_SkipHeaderRows(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "wide.csv", "Category,Disability_Aug2025\nEmployed,61.0\n")
	output := filepath.Join(dir, "tidy.csv")

	code, _, _ := execute("--skip-header-rows", "0", input, output)
	require.Equal(t, exitOK, code)

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "Category,Disability_Status,Year,Month,Value\nEmployed,With Disability,2025,Aug,61\n", string(content))
}

func TestRun_FatalErrors(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "wide.csv", wideCSV)

	tests := []struct {
		name     string
		args     []string
		contains string
	}{
		{name: "missing input", args: []string{filepath.Join(dir, "absent.csv"), filepath.Join(dir, "out.csv")}, contains: "INPUT_NOT_FOUND"},
		{name: "one argument", args: []string{input}, contains: "accepts 2 arg(s)"},
		{name: "bad log level", args: []string{"--log-level", "loud", input, filepath.Join(dir, "out.csv")}, contains: "Logging.Level"},
		{name: "negative skip", args: []string{"--skip-header-rows", "-1", input, filepath.Join(dir, "out.csv")}, contains: "CONFIG"},
		{name: "missing config file", args: []string{"--config", filepath.Join(dir, "absent.yaml"), input, filepath.Join(dir, "out.csv")}, contains: "failed to read config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := execute(tt.args...)
			assert.Equal(t, exitFatal, code)
			assert.Contains(t, stderr, tt.contains)
		})
	}
}

func TestRun_PathCollisions(t *testing.T) {
	tests := []struct {
		name     string
		args     func(input, output string) []string
		contains string
	}{
		{
			name:     "diagnostics over output",
			args:     func(in, out string) []string { return []string{"--diagnostics", out, in, out} },
			contains: "diagnostics path must differ from output path",
		},
		{
			name:     "metrics over input",
			args:     func(in, out string) []string { return []string{"--metrics", in, in, out} },
			contains: "metrics path must differ from input path",
		},
		{
			name:     "trace file over input",
			args:     func(in, out string) []string { return []string{"--trace-file", in, in, out} },
			contains: "trace path must differ from input path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			input := writeFile(t, dir, "wide.csv", droppedCSV)
			output := filepath.Join(dir, "tidy.csv")

			code, _, stderr := execute(tt.args(input, output)...)
			assert.Equal(t, exitFatal, code)
			assert.Contains(t, stderr, tt.contains)

			content, err := os.ReadFile(input)
			require.NoError(t, err)
			assert.Equal(t, droppedCSV, string(content))
			_, statErr := os.Stat(output)
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestRun_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "wide.csv", "Category,Disability_Aug2025\nEmployed,61.0\n")
	cfgFile := writeFile(t, dir, "tidycsv.yaml", "reshape:\n  skip_header_rows: 0\n")

	code, _, _ := execute("--config", cfgFile, input, filepath.Join(dir, "tidy.csv"))
	assert.Equal(t, exitOK, code)
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := execute("--version")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "tidycsv v")
}
