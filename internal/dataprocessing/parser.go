package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "tidycli/internal/errors"
	"tidycli/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseFile reads a wide employment table from a .csv or .xlsx file.
func ParseFile(filePath string, opts ParseOptions) (*domain.WideTable, error) {
	if opts.SkipHeaderRows < 0 {
		return nil, apperrors.NewConfigError(fmt.Sprintf("skip_header_rows must be >= 0, got %d", opts.SkipHeaderRows), nil)
	}

	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".xlsx", ".xlsm":
		records, err = readWorkbook(filePath, opts.Sheet)
	default:
		records, err = readCSVFile(filePath)
	}
	if err != nil {
		return nil, err
	}

	table, err := ParseRecords(records, opts)
	if err != nil {
		return nil, err
	}
	table.Source = filePath

	slog.Debug("Parsed wide table",
		slog.String("file_path", filePath),
		slog.Int("columns", len(table.Columns)),
		slog.Int("rows", len(table.Rows)))

	return table, nil
}

// ParseCSV reads a wide table from CSV content
func ParseCSV(r io.Reader, opts ParseOptions) (*domain.WideTable, error) {
	records, err := decodeCSV(r)
	if err != nil {
		return nil, err
	}
	return ParseRecords(records, opts)
}

// ParseRecords turns raw rows into a wide table: SkipHeaderRows rows are
// discarded, the next row is the header, and fully blank rows are dropped.
// Line numbers are 1-based positions in records.
func ParseRecords(records [][]string, opts ParseOptions) (*domain.WideTable, error) {
	if len(records) <= opts.SkipHeaderRows {
		return nil, apperrors.NewSchemaError(
			fmt.Sprintf("input has %d rows, no header row after skipping %d", len(records), opts.SkipHeaderRows), nil).
			WithStage(apperrors.StageRead)
	}

	header := trimHeader(records[opts.SkipHeaderRows])
	if len(header) == 0 {
		return nil, apperrors.NewSchemaError(fmt.Sprintf("header row %d is empty", opts.SkipHeaderRows+1), nil).
			WithStage(apperrors.StageRead)
	}

	table := &domain.WideTable{Columns: header}
	for i := opts.SkipHeaderRows + 1; i < len(records); i++ {
		row := domain.WideRow{Line: i + 1, Cells: records[i]}
		if rowIsBlank(row) {
			continue
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// trimHeader strips whitespace and a leading BOM from header cells and drops
// trailing empty cells left by spreadsheet exports
func trimHeader(row []string) []string {
	header := make([]string, len(row))
	for i, cell := range row {
		cell = strings.TrimPrefix(cell, string(utf8BOM))
		header[i] = strings.TrimSpace(cell)
	}
	for len(header) > 0 && header[len(header)-1] == "" {
		header = header[:len(header)-1]
	}
	return header
}

func readCSVFile(filePath string) ([][]string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, apperrors.NewInputNotFoundError(filePath, err)
	}
	return decodeCSV(bytes.NewReader(data))
}

func decodeCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewInputNotFoundError("<reader>", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewSchemaError("malformed CSV", err).WithStage(apperrors.StageRead)
	}
	return records, nil
}

// readWorkbook returns the rows of the named sheet, or of the first sheet
// when sheet is empty
func readWorkbook(filePath, sheet string) ([][]string, error) {
	if _, err := os.Stat(filePath); err != nil {
		return nil, apperrors.NewInputNotFoundError(filePath, err)
	}

	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, apperrors.NewInputNotFoundError(filePath, fmt.Errorf("failed to open workbook: %w", err))
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, apperrors.NewSchemaError("workbook has no sheets", nil).WithStage(apperrors.StageRead)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewSchemaError(fmt.Sprintf("cannot read sheet %q", sheet), err).
			WithStage(apperrors.StageRead).
			WithContext("sheet", sheet)
	}
	if err := scalePercentCells(f, sheet, rows); err != nil {
		return nil, apperrors.NewSchemaError(fmt.Sprintf("cannot read cell styles of sheet %q", sheet), err).
			WithStage(apperrors.StageRead).
			WithContext("sheet", sheet)
	}

	slog.Debug("Read workbook sheet",
		slog.String("file_path", filePath),
		slog.String("sheet_name", sheet),
		slog.Int("total_rows", len(rows)))

	return rows, nil
}

// scalePercentCells rewrites numeric cells shown with a percent format from
// their stored fraction (0.251) to percentage points (25.1), matching what
// the sheet displays and what a CSV export of it carries
func scalePercentCells(f *excelize.File, sheet string, rows [][]string) error {
	percentStyle := make(map[int]bool)
	for r, row := range rows {
		for c, raw := range row {
			if _, err := strconv.ParseFloat(raw, 64); err != nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			styleID, err := f.GetCellStyle(sheet, cell)
			if err != nil {
				return err
			}
			if styleID == 0 {
				continue
			}
			isPercent, seen := percentStyle[styleID]
			if !seen {
				style, err := f.GetStyle(styleID)
				if err != nil {
					return err
				}
				isPercent = isPercentFormat(style)
				percentStyle[styleID] = isPercent
			}
			if isPercent {
				row[c] = toPercentagePoints(raw)
			}
		}
	}
	return nil
}

// isPercentFormat reports whether style displays numbers as percentages:
// built-in formats 9 (0%) and 10 (0.00%), or a custom format with a % sign
func isPercentFormat(style *excelize.Style) bool {
	if style == nil {
		return false
	}
	if style.NumFmt == 9 || style.NumFmt == 10 {
		return true
	}
	return style.CustomNumFmt != nil && strings.Contains(*style.CustomNumFmt, "%")
}

// toPercentagePoints multiplies a stored fraction by 100 by shifting the
// decimal exponent, so 0.251 becomes 25.1 rather than 25.099999999999998
func toPercentagePoints(raw string) string {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	mantissa, exp, ok := strings.Cut(strconv.FormatFloat(v, 'e', -1, 64), "e")
	if !ok {
		return raw
	}
	n, err := strconv.Atoi(exp)
	if err != nil {
		return raw
	}
	scaled, err := strconv.ParseFloat(fmt.Sprintf("%se%d", mantissa, n+2), 64)
	if err != nil {
		return raw
	}
	return strconv.FormatFloat(scaled, 'f', -1, 64)
}
