// Package config loads tidycsv settings.
//
// # Configuration Sources
//
// Configuration is resolved in the following order, later sources winning:
//
//  1. Default values
//  2. A YAML file (--config, or tidycsv.yaml / configs/tidycsv.yaml)
//  3. Environment variables prefixed with TIDY_
//
// # Environment Variables
//
//	TIDY_RESHAPE_SKIP_HEADER_ROWS=1
//	TIDY_RESHAPE_STRICT=false
//	TIDY_RESHAPE_SHEET=Sheet1
//	TIDY_LOGGING_LEVEL=debug
//	TIDY_TELEMETRY_ENABLED=true
//
// Command line flags are applied on top of the loaded configuration by the
// CLI and are not handled here.
//
// All configuration is validated at load time and failures are reported as
// CONFIG errors.
package config
