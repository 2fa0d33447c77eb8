package dataprocessing

import (
	"fmt"
	"strings"

	apperrors "tidycli/internal/errors"
	"tidycli/pkg/contracts/domain"
)

// ParseError is a per-row failure. The offending observation is dropped and
// the error collected; the run continues.
type ParseError struct {
	Line     int    `json:"line"`
	Category string `json:"category"`
	Key      string `json:"key"`
	Value    string `json:"value"`
	Reason   Reason `json:"reason"`
	Detail   string `json:"detail"`
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, category %q, column %q: %s: %s", e.Line, e.Category, e.Key, e.Reason, e.Detail)
}

// valueColumn is a header cell resolved against the composite-key grammar
type valueColumn struct {
	index  int
	key    CompositeKey
	keyErr *KeyError
}

// Reshaper melts wide employment tables into tidy observations
type Reshaper struct {
	opts ReshapeOptions
}

// NewReshaper creates a new reshaper
func NewReshaper(opts ReshapeOptions) *Reshaper {
	return &Reshaper{opts: opts}
}

// Reshape is a convenience wrapper around NewReshaper(opts).Reshape(table)
func Reshape(table *domain.WideTable, opts ReshapeOptions) (*ReshapeResult, error) {
	return NewReshaper(opts).Reshape(table)
}

// Reshape melts table into one LongRow per non-blank, numeric cell.
// Schema violations abort with an *errors.AppError of type SCHEMA; per-cell
// failures are collected into ReshapeResult.Diagnostics.
func (r *Reshaper) Reshape(table *domain.WideTable) (*ReshapeResult, error) {
	if table == nil {
		return nil, apperrors.NewSchemaError("no input table", nil).WithStage(apperrors.StageReshape)
	}

	categoryIdx, columns, err := r.resolveHeader(table.Columns)
	if err != nil {
		return nil, err
	}

	result := &ReshapeResult{
		Rows:         make([]domain.LongRow, 0, len(table.Rows)*len(columns)),
		ValueColumns: len(columns),
	}
	for _, col := range columns {
		if col.keyErr != nil {
			result.MalformedColumns = append(result.MalformedColumns, *col.keyErr)
		}
	}
	seenCategories := make(map[string]int, len(table.Rows))

	for _, row := range table.Rows {
		category := strings.TrimSpace(row.Cell(categoryIdx))

		if err := checkRowWidth(row, len(table.Columns)); err != nil {
			return nil, err
		}

		if category == "" {
			if rowIsBlank(row) {
				continue
			}
			return nil, apperrors.NewSchemaError(fmt.Sprintf("line %d has values but no %s", row.Line, domain.CategoryColumn), nil).
				WithStage(apperrors.StageReshape).
				WithContext("line", row.Line)
		}
		if firstLine, dup := seenCategories[category]; dup {
			return nil, apperrors.NewSchemaError(fmt.Sprintf("duplicate category %q on lines %d and %d", category, firstLine, row.Line), nil).
				WithStage(apperrors.StageReshape).
				WithContext("category", category)
		}
		seenCategories[category] = row.Line
		result.Categories++

		for _, col := range columns {
			raw := row.Cell(col.index)
			if strings.TrimSpace(raw) == "" {
				result.SkippedBlank++
				continue
			}

			if col.keyErr != nil {
				result.Diagnostics = append(result.Diagnostics, ParseError{
					Line:     row.Line,
					Category: category,
					Key:      col.keyErr.Key,
					Value:    raw,
					Reason:   col.keyErr.Reason,
					Detail:   col.keyErr.Detail,
				})
				continue
			}

			value, _, err := ParseValue(raw)
			if err != nil {
				result.Diagnostics = append(result.Diagnostics, ParseError{
					Line:     row.Line,
					Category: category,
					Key:      col.key.Raw,
					Value:    raw,
					Reason:   ReasonValue,
					Detail:   err.Error(),
				})
				continue
			}

			result.Rows = append(result.Rows, domain.LongRow{
				Category:         category,
				DisabilityStatus: col.key.Status,
				Year:             col.key.Year,
				Month:            col.key.Month,
				Value:            value,
			})
		}
	}

	return result, nil
}

// resolveHeader locates the Category column and parses every other header
// cell as a composite key
func (r *Reshaper) resolveHeader(header []string) (int, []valueColumn, error) {
	categoryIdx := -1
	seenNames := make(map[string]bool, len(header))
	seenKeys := make(map[domain.ObservationKey]string, len(header))
	var columns []valueColumn

	for i, name := range header {
		name = strings.TrimSpace(name)
		if seenNames[name] {
			return -1, nil, r.schemaError(fmt.Sprintf("duplicate column %q", name), name)
		}
		seenNames[name] = true

		if name == domain.CategoryColumn {
			categoryIdx = i
			continue
		}
		if !HasSeparator(name) {
			return -1, nil, r.schemaError(fmt.Sprintf("column %q is not a <status>%s<month><year> key", name, KeySeparator), name)
		}

		key, err := ParseCompositeKey(name)
		if err != nil {
			keyErr := err.(*KeyError)
			if r.opts.Strict {
				return -1, nil, apperrors.NewSchemaError("malformed value column", keyErr).
					WithStage(apperrors.StageReshape).
					WithContext("column", name).
					WithContext("reason", string(keyErr.Reason))
			}
			columns = append(columns, valueColumn{index: i, keyErr: keyErr})
			continue
		}

		obs := domain.ObservationKey{DisabilityStatus: key.Status, Year: key.Year, Month: key.Month}
		if prev, dup := seenKeys[obs]; dup {
			return -1, nil, r.schemaError(fmt.Sprintf("columns %q and %q describe the same observation", prev, name), name)
		}
		seenKeys[obs] = name
		columns = append(columns, valueColumn{index: i, key: key})
	}

	if categoryIdx < 0 {
		return -1, nil, apperrors.NewSchemaError(fmt.Sprintf("missing %s column", domain.CategoryColumn), nil).
			WithStage(apperrors.StageReshape)
	}
	return categoryIdx, columns, nil
}

func (r *Reshaper) schemaError(message, column string) *apperrors.AppError {
	return apperrors.NewSchemaError(message, nil).
		WithStage(apperrors.StageReshape).
		WithContext("column", column)
}

// checkRowWidth rejects rows carrying data beyond the last header column
func checkRowWidth(row domain.WideRow, width int) error {
	for i := width; i < len(row.Cells); i++ {
		if strings.TrimSpace(row.Cells[i]) != "" {
			return apperrors.NewSchemaError(fmt.Sprintf("line %d has %d cells but the header has %d", row.Line, len(row.Cells), width), nil).
				WithStage(apperrors.StageReshape).
				WithContext("line", row.Line)
		}
	}
	return nil
}

func rowIsBlank(row domain.WideRow) bool {
	for _, c := range row.Cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
