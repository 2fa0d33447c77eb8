package operations

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"tidycli/internal/config"
	apperrors "tidycli/internal/errors"
)

// RunOptions describes one reshape run
type RunOptions struct {
	InputPath  string `validate:"required"`
	OutputPath string `validate:"required"`

	// SkipHeaderRows is the number of rows discarded before the header row
	SkipHeaderRows int `validate:"gte=0"`
	Strict         bool
	Sheet          string

	// DiagnosticsPath receives one CSV row per dropped cell when set
	DiagnosticsPath string
	// DiagnosticsSample caps the dropped rows carried in the report
	DiagnosticsSample int `validate:"gte=0"`
	// MetricsPath receives a Prometheus textfile when set
	MetricsPath string
}

// DefaultRunOptions returns options with the standard layout of the table:
// one title row above the header and strict column names
func DefaultRunOptions(inputPath, outputPath string) RunOptions {
	return RunOptions{
		InputPath:         inputPath,
		OutputPath:        outputPath,
		SkipHeaderRows:    1,
		Strict:            true,
		DiagnosticsSample: 5,
	}
}

// OptionsFromConfig builds run options from the reshape section of the config
func OptionsFromConfig(cfg config.ReshapeConfig, inputPath, outputPath string) RunOptions {
	return RunOptions{
		InputPath:         inputPath,
		OutputPath:        outputPath,
		SkipHeaderRows:    cfg.SkipHeaderRows,
		Strict:            cfg.Strict,
		Sheet:             cfg.Sheet,
		DiagnosticsSample: cfg.DiagnosticsSample,
	}
}

var optionsValidator = validator.New()

// Validate checks the options before any file is touched
func (o RunOptions) Validate() error {
	if err := optionsValidator.Struct(o); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			fe := verrs[0]
			return apperrors.NewConfigError(fmt.Sprintf("invalid run option %s (%s)", fe.Field(), fe.Tag()), err)
		}
		return apperrors.NewConfigError("invalid run options", err)
	}
	return nil
}
