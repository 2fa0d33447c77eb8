package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "tidycli/internal/errors"
)

// FileValidator checks run paths before any reading or writing happens
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateInputFile checks that path names a readable regular file in a
// format the parser understands
func (v *FileValidator) ValidateInputFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return apperrors.NewConfigError("input path is required", nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		v.logger.Error("Input file not found",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewInputNotFoundError(path, err)
	}
	if info.IsDir() {
		v.logger.Error("Input path is a directory",
			slog.String("path", path))
		return apperrors.NewInputNotFoundError(path, fmt.Errorf("%s is a directory, not a file", path))
	}

	if strings.HasPrefix(filepath.Base(path), "~$") {
		return apperrors.NewSchemaError("input is a temporary Excel lock file", nil).
			WithStage(apperrors.StageRead).
			WithContext("path", path)
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".xls" {
		return apperrors.NewSchemaError("legacy .xls workbooks are not supported, save as .xlsx or .csv", nil).
			WithStage(apperrors.StageRead).
			WithContext("path", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("Input file is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return apperrors.NewInputNotFoundError(path, err)
	}
	file.Close()

	v.logger.Debug("Input file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputPath ensures the output's directory exists or can be created
// and that path does not name a directory
func (v *FileValidator) ValidateOutputPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return apperrors.NewConfigError("output path is required", nil)
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return apperrors.NewOutputWriteError(path, fmt.Errorf("%s is a directory", path))
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewOutputWriteError(path, err)
	}
	return nil
}

// RunPath names one file a run reads or writes
type RunPath struct {
	Role string
	Path string
}

// ValidateDistinct rejects any two paths that resolve to the same file.
// Empty paths are optional outputs that were not requested and are ignored.
func (v *FileValidator) ValidateDistinct(paths ...RunPath) error {
	seen := make(map[string]string, len(paths))
	for _, p := range paths {
		if strings.TrimSpace(p.Path) == "" {
			continue
		}
		resolved, err := resolvePath(p.Path)
		if err != nil {
			return apperrors.NewConfigError(fmt.Sprintf("cannot resolve %s path", p.Role), err).
				WithContext("path", p.Path)
		}
		if other, dup := seen[resolved]; dup {
			v.logger.Error("Run paths collide",
				slog.String("path", p.Path),
				slog.String("role", p.Role),
				slog.String("other_role", other))
			return apperrors.NewConfigError(fmt.Sprintf("%s path must differ from %s path", p.Role, other), nil).
				WithContext("path", p.Path)
		}
		seen[resolved] = p.Role
	}
	return nil
}

// resolvePath returns the absolute path with the directory's symlinks
// resolved when the directory exists
func resolvePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	dir, base := filepath.Split(abs)
	if resolvedDir, err := filepath.EvalSymlinks(dir); err == nil {
		return filepath.Join(resolvedDir, base), nil
	}
	return abs, nil
}
