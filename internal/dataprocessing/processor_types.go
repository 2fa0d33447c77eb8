package dataprocessing

import (
	"tidycli/pkg/contracts/domain"
)

// Processor defines the interface for the wide-to-long transform
type Processor interface {
	// Reshape melts a wide table into tidy observations
	Reshape(table *domain.WideTable) (*ReshapeResult, error)
}

// ReshapeOptions configures reshaping behavior
type ReshapeOptions struct {
	// Strict turns a malformed composite column name into a fatal schema
	// error. When false, every non-blank cell under such a column is
	// reported as a ParseError and dropped.
	Strict bool
}

// DefaultOptions returns default reshape options
func DefaultOptions() ReshapeOptions {
	return ReshapeOptions{
		Strict: true,
	}
}

// ReshapeResult is the outcome of a reshape. Rows are in input order:
// category varies slowest, composite key fastest.
type ReshapeResult struct {
	Rows        []domain.LongRow
	Diagnostics []ParseError
	// MalformedColumns lists the header keys rejected in lenient mode, in
	// header order, whether or not any cell under them held a value
	MalformedColumns []KeyError

	// Categories is the number of non-empty input rows
	Categories int
	// ValueColumns is the number of composite key columns in the header
	ValueColumns int
	// SkippedBlank counts blank cells dropped during the melt
	SkippedBlank int
}

// ParseOptions configures how an input file is read into a wide table
type ParseOptions struct {
	// SkipHeaderRows is the number of leading rows discarded before the
	// header row
	SkipHeaderRows int
	// Sheet selects the worksheet of an .xlsx input; empty means the first
	Sheet string
}

// DefaultParseOptions returns default parse options
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		SkipHeaderRows: 1,
	}
}
