// Package dataprocessing turns the wide disability employment table into a
// tidy long table.
//
// # Architecture
//
// The package is organized into three parts:
//
// 1. Parser: reads a .csv or .xlsx file into a domain.WideTable
// 2. Composite keys: parses column names such as Disability_Aug2025
// 3. Reshaper: melts the wide table into domain.LongRow observations
//
// The Reshaper is a pure function of its input table. It performs no I/O and
// keeps no state between calls, so re-running it on the same table yields the
// same rows in the same order.
//
// # Usage
//
//	table, err := dataprocessing.ParseFile("employment.csv", dataprocessing.DefaultParseOptions())
//	if err != nil {
//	    return err
//	}
//	result, err := dataprocessing.Reshape(table, dataprocessing.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	for _, d := range result.Diagnostics {
//	    logger.Warn("row dropped", slog.String("key", d.Key), slog.String("reason", string(d.Reason)))
//	}
//
// # Composite keys
//
// A value column is named <status>_<Mon><YYYY>, where status is Disability or
// NoDisability and Mon is a three-letter month optionally followed by a
// period:
//
//	Disability_Aug2025     With Disability, Aug, 2025
//	NoDisability_Aug.2024  No Disability, Aug, 2024
//	Disability_Sept2025    rejected: four-letter month
//	Disability_Aug_2025    rejected: three parts
//
// # Error Handling
//
// Schema problems (missing Category column, duplicate categories, malformed
// column names in strict mode) abort with a SCHEMA *errors.AppError. Cells that
// cannot be parsed are dropped and reported as ParseError values in
// ReshapeResult.Diagnostics.
package dataprocessing
