package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"tidycli/internal/config"
	"tidycli/internal/exporter"
	"tidycli/internal/infrastructure"
	"tidycli/internal/operations"
	"tidycli/internal/validation"
	"tidycli/pkg/contracts"
)

type rootFlags struct {
	cfgFile           string
	envFile           string
	skipHeaderRows    int
	strict            bool
	sheet             string
	diagnostics       string
	sample            int
	metrics           string
	logLevel          string
	quiet             bool
	failOnParseErrors bool
	traceFile         string
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "tidycsv <input> <output>",
		Short: "Reshape a wide disability employment table into tidy CSV",
		Long: `tidycsv reads a wide table whose columns are named like Disability_Aug2024
and writes one row per (Category, Disability_Status, Year, Month) with its
Value under the header Category,Disability_Status,Year,Month,Value.

Input may be CSV or an .xlsx workbook. Cells that cannot be parsed are
dropped and reported; blank cells produce no row.`,
		Args:          cobra.ExactArgs(2),
		Version:       contracts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReshape(cmd, f, args[0], args[1])
		},
	}
	cmd.SetVersionTemplate(contracts.GetFullVersionString() + "\n")

	flags := cmd.Flags()
	flags.StringVar(&f.cfgFile, "config", "", "config file (default tidycsv.yaml or configs/tidycsv.yaml if present)")
	flags.StringVar(&f.envFile, "env-file", "", "dotenv file with TIDY_* variables to load before the config")
	flags.IntVar(&f.skipHeaderRows, "skip-header-rows", 1, "rows to discard before the header row")
	flags.BoolVar(&f.strict, "strict", true, "fail on malformed value column names instead of dropping their cells")
	flags.StringVar(&f.sheet, "sheet", "", "worksheet to read from an .xlsx input (default first sheet)")
	flags.StringVar(&f.diagnostics, "diagnostics", "", "write dropped cells to this CSV file")
	flags.IntVar(&f.sample, "sample", 5, "dropped rows to show in the summary")
	flags.StringVar(&f.metrics, "metrics", "", "write Prometheus textfile metrics to this path")
	flags.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.BoolVarP(&f.quiet, "quiet", "q", false, "suppress the summary table and non-error logs")
	flags.BoolVar(&f.failOnParseErrors, "fail-on-parse-errors", false, "exit with status 2 when any cell was dropped")
	flags.StringVar(&f.traceFile, "trace-file", "", "enable tracing and write spans to this file")

	return cmd
}

// loadConfig applies flags the user set on top of the loaded configuration
func loadConfig(cmd *cobra.Command, f *rootFlags) (*config.Config, error) {
	if err := config.LoadEnvFile(f.envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(f.cfgFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("skip-header-rows") {
		cfg.Reshape.SkipHeaderRows = f.skipHeaderRows
	}
	if flags.Changed("strict") {
		cfg.Reshape.Strict = f.strict
	}
	if flags.Changed("sheet") {
		cfg.Reshape.Sheet = f.sheet
	}
	if flags.Changed("sample") {
		cfg.Reshape.DiagnosticsSample = f.sample
	}
	if flags.Changed("fail-on-parse-errors") {
		cfg.Reshape.FailOnParseErrors = f.failOnParseErrors
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if f.quiet {
		cfg.Logging.Level = "error"
	}
	if flags.Changed("trace-file") {
		cfg.Telemetry.Enabled = true
		cfg.Telemetry.TraceFile = f.traceFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg config.LoggingConfig, stdout, stderr io.Writer) (*slog.Logger, error) {
	switch cfg.Output {
	case "file", "both":
		return infrastructure.InitializeLogger(cfg)
	case "stdout":
		return infrastructure.NewLogger(stdout, cfg.Level), nil
	default:
		return infrastructure.NewLogger(stderr, cfg.Level), nil
	}
}

// runPaths lists every file a run reads or writes
func runPaths(cfg *config.Config, f *rootFlags, input, output string) []validation.RunPath {
	paths := []validation.RunPath{
		{Role: "input", Path: input},
		{Role: "output", Path: output},
		{Role: "diagnostics", Path: f.diagnostics},
		{Role: "metrics", Path: f.metrics},
	}
	if cfg.Logging.Output == "file" || cfg.Logging.Output == "both" {
		paths = append(paths, validation.RunPath{Role: "log", Path: cfg.Logging.FilePath})
	}
	if cfg.Telemetry.Enabled {
		paths = append(paths, validation.RunPath{Role: "trace", Path: cfg.Telemetry.TraceFile})
	}
	return paths
}

func runReshape(cmd *cobra.Command, f *rootFlags, input, output string) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	// the log and trace files are opened before the runner checks its own paths
	if err := validation.NewFileValidator(nil).ValidateDistinct(runPaths(cfg, f, input, output)...); err != nil {
		return err
	}

	logger, err := newLogger(cfg.Logging, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()

	tracing, err := infrastructure.InitializeTracing(cfg.Telemetry, contracts.Version)
	if err != nil {
		return err
	}
	defer func() {
		if err := tracing.Shutdown(context.Background()); err != nil {
			logger.Warn("failed to flush spans", slog.String("error", err.Error()))
		}
	}()

	opts := operations.OptionsFromConfig(cfg.Reshape, input, output)
	opts.DiagnosticsPath = f.diagnostics
	opts.MetricsPath = f.metrics

	runner := operations.NewRunner(
		operations.WithLogger(logger),
		operations.WithTracer(tracing.Tracer),
	)
	report, err := runner.Run(cmd.Context(), opts)
	if err != nil {
		return err
	}

	if !f.quiet {
		if err := exporter.RenderSummary(cmd.OutOrStdout(), report.Summary()); err != nil {
			return fmt.Errorf("failed to render summary: %w", err)
		}
	}

	if cfg.Reshape.FailOnParseErrors && report.HasParseErrors() {
		return &exitError{
			code: exitParseErrors,
			msg:  fmt.Sprintf("%d cell(s) dropped with parse errors", report.ParseErrors),
		}
	}
	return nil
}
