// Package exporter writes the tidy employment table and run reports.
//
// This package contains three main components:
//
// CSVWriter: Core CSV writing with optional UTF-8 BOM. Every failure is
// reported as an OUTPUT_WRITE error carrying the attempted path.
//
// TidyExporter: Writes reshaped rows under the fixed header
// Category,Disability_Status,Year,Month,Value and writes the diagnostics CSV
// of dropped cells.
//
// RenderSummary: Renders a run summary and a sample of dropped rows as text
// tables for the terminal.
//
// Example usage:
//
//	exp := exporter.NewTidyExporter("", logger)
//	if err := exp.ExportLongRows(result.Rows, "tidy.csv"); err != nil {
//	    return err
//	}
//	_ = exporter.RenderSummary(os.Stdout, summary)
package exporter
