package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "tidycli/internal/errors"
)

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	baseDir string
	logger  *slog.Logger
}

// NewCSVWriter creates a new CSV writer. Relative paths are resolved against
// baseDir; an empty baseDir leaves them relative to the working directory.
func NewCSVWriter(baseDir string, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{baseDir: baseDir, logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes data to a CSV file with the given options. The file is
// written to a temporary sibling and renamed over filePath on success, so a
// failed write leaves any existing file untouched. Every failure is an
// OUTPUT_WRITE error naming the path.
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	fullPath := w.resolvePath(filePath)

	w.logger.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewOutputWriteError(fullPath, fmt.Errorf("failed to create directory: %w", err))
	}

	file, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".*.tmp")
	if err != nil {
		return apperrors.NewOutputWriteError(fullPath, fmt.Errorf("failed to create temporary file: %w", err))
	}
	tmpPath := file.Name()

	if err := writeRecords(file, options); err != nil {
		file.Close()
		w.discard(tmpPath)
		return apperrors.NewOutputWriteError(fullPath, err)
	}
	if err := file.Chmod(0644); err != nil {
		file.Close()
		w.discard(tmpPath)
		return apperrors.NewOutputWriteError(fullPath, fmt.Errorf("failed to set file mode: %w", err))
	}
	if err := file.Close(); err != nil {
		w.discard(tmpPath)
		return apperrors.NewOutputWriteError(fullPath, fmt.Errorf("failed to close file: %w", err))
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		w.discard(tmpPath)
		return apperrors.NewOutputWriteError(fullPath, fmt.Errorf("failed to replace file: %w", err))
	}
	return nil
}

// discard removes a temporary file left by a failed write
func (w *CSVWriter) discard(tmpPath string) {
	if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
		w.logger.Warn("Failed to remove temporary file",
			slog.String("path", tmpPath),
			slog.String("error", err.Error()))
	}
}

func writeRecords(file *os.File, options WriteOptions) error {
	// BOM helps Excel recognize UTF-8
	if options.BOMPrefix {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// resolvePath resolves a relative path against the writer's base directory
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.baseDir == "" {
		return filePath
	}
	return filepath.Join(w.baseDir, filePath)
}
