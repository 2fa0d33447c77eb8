// Package operations runs a reshape from input file to tidy output.
//
// A Runner executes three steps in order against a shared RunState:
//
//	read     validate the input file and parse it into a wide table
//	reshape  melt the table into one row per observation
//	write    write the tidy CSV and the optional diagnostics CSV
//
// Each step gets a tracing span and a stage attribute on its log records.
// A fatal error stops the run and carries the stage it surfaced in. Cells
// dropped with a parse error never fail a run; they are counted in the
// RunReport, logged at warn level and exported as Prometheus counters.
package operations
