package exporter

import (
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"tidycli/internal/dataprocessing"
	apperrors "tidycli/internal/errors"
	"tidycli/pkg/contracts/domain"
)

var rowValidator = validator.New()

// TidyExporter writes reshaped observations and their diagnostics
type TidyExporter struct {
	csvWriter *CSVWriter
	bom       bool
}

// NewTidyExporter creates a new tidy table exporter
func NewTidyExporter(baseDir string, logger *slog.Logger) *TidyExporter {
	return &TidyExporter{
		csvWriter: NewCSVWriter(baseDir, logger),
	}
}

// WithBOM makes the exporter prefix files with a UTF-8 BOM
func (e *TidyExporter) WithBOM(enabled bool) *TidyExporter {
	e.bom = enabled
	return e
}

// ExportLongRows writes rows under the fixed tidy header. The header never
// depends on the data, so an empty result still yields a valid file. Every
// row is checked against the LongRow field rules before anything is written.
func (e *TidyExporter) ExportLongRows(rows []domain.LongRow, outputPath string) error {
	records := make([][]string, 0, len(rows))
	for i, row := range rows {
		if err := rowValidator.Struct(row); err != nil {
			return apperrors.NewSchemaError(fmt.Sprintf("row %d is not a valid observation", i+1), err).
				WithStage(apperrors.StageWrite).
				WithContext("category", row.Category)
		}
		records = append(records, longRowToCSV(row))
	}
	return e.csvWriter.WriteCSV(outputPath, WriteOptions{
		Headers:   domain.LongHeader,
		Records:   records,
		BOMPrefix: e.bom,
	})
}

// DiagnosticsHeader is the header of the diagnostics CSV
var DiagnosticsHeader = []string{"Line", "Category", "Key", "Value", "Reason", "Detail"}

// ExportDiagnostics writes one row per dropped cell
func (e *TidyExporter) ExportDiagnostics(diags []dataprocessing.ParseError, outputPath string) error {
	records := make([][]string, 0, len(diags))
	for _, d := range diags {
		records = append(records, []string{
			formatInt(d.Line),
			d.Category,
			d.Key,
			d.Value,
			string(d.Reason),
			d.Detail,
		})
	}
	return e.csvWriter.WriteCSV(outputPath, WriteOptions{
		Headers:   DiagnosticsHeader,
		Records:   records,
		BOMPrefix: e.bom,
	})
}

func longRowToCSV(row domain.LongRow) []string {
	return []string{
		row.Category,
		string(row.DisabilityStatus),
		row.Year,
		row.Month,
		formatValue(row.Value),
	}
}
