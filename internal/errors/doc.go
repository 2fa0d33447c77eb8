// Package errors defines the typed errors surfaced by a reshape run.
//
// Fatal errors are *AppError values carrying an ErrorType and the pipeline
// stage they surfaced in:
//
//	INPUT_NOT_FOUND  input file missing or unreadable (read stage)
//	SCHEMA           input shape does not match the fixed wide layout
//	OUTPUT_WRITE     destination not writable (write stage)
//	CONFIG           invalid configuration or run options
//
// Per-row parse failures are not fatal and are never returned as the run
// error; see dataprocessing.ParseError.
//
// Use IsType and StageOf to inspect a wrapped error chain:
//
//	if errors.IsType(err, errors.ErrTypeSchema) {
//	    logger.Error("input shape rejected", slog.String("stage", errors.StageOf(err)))
//	}
package errors
