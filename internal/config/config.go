package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "tidycli/internal/errors"
)

// EnvPrefix namespaces every environment variable read by Load
const EnvPrefix = "TIDY"

// Config represents the complete application configuration
type Config struct {
	Reshape   ReshapeConfig   `yaml:"reshape" envconfig:"RESHAPE"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ReshapeConfig controls how the wide table is read and reshaped
type ReshapeConfig struct {
	SkipHeaderRows    int    `yaml:"skip_header_rows" envconfig:"SKIP_HEADER_ROWS" validate:"gte=0"`
	Strict            bool   `yaml:"strict" envconfig:"STRICT"`
	Sheet             string `yaml:"sheet" envconfig:"SHEET"`
	DiagnosticsSample int    `yaml:"diagnostics_sample" envconfig:"DIAGNOSTICS_SAMPLE" validate:"gte=0"`
	FailOnParseErrors bool   `yaml:"fail_on_parse_errors" envconfig:"FAIL_ON_PARSE_ERRORS"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=stderr stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_if=Output file"`
}

// TelemetryConfig controls span export for a run
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled" envconfig:"ENABLED"`
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	// TraceFile receives exported spans; empty means stderr
	TraceFile string `yaml:"trace_file" envconfig:"TRACE_FILE"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Reshape: ReshapeConfig{
			SkipHeaderRows:    1,
			Strict:            true,
			DiagnosticsSample: 5,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "stderr",
			FilePath: "logs/tidycsv.log",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "tidycsv",
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (if any), then TIDY_* environment variables. An empty path falls back to
// the first config file found in the usual locations.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, err
		}
	}

	// Fields carry no default tags, so only variables that are set override
	// what the file provided.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFile exports the KEY=value pairs of a dotenv file into the process
// environment so Load sees them. Variables already set are left unchanged.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return apperrors.NewConfigError("failed to load env file", err).
			WithContext("path", path)
	}
	return nil
}

// loadFromFile overlays YAML from filePath onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return apperrors.NewConfigError("failed to read config file", err).
			WithContext("path", filePath)
	}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return apperrors.NewConfigError("failed to parse config file", err).
			WithContext("path", filePath)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and normalizes the log level
func (c *Config) Validate() error {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Output = strings.ToLower(c.Logging.Output)

	if err := validate.Struct(c); err != nil {
		return apperrors.NewConfigError(describeValidation(err), err)
	}
	return nil
}

func describeValidation(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return "invalid configuration"
	}
	fe := verrs[0]
	if fe.Param() != "" {
		return fmt.Sprintf("invalid %s: %q fails %s=%s", fe.Namespace(), fmt.Sprint(fe.Value()), fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("invalid %s: %q fails %s", fe.Namespace(), fmt.Sprint(fe.Value()), fe.Tag())
}

// findConfigFile returns the first config file found in common locations
func findConfigFile() string {
	locations := []string{
		"tidycsv.yaml",
		"configs/tidycsv.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}
