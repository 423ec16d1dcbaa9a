package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Upload validation errors
var (
	ErrMissingFileName      = errors.New("file name is required")
	ErrUnsupportedExtension = errors.New("only .xlsx and .xls workbooks are accepted")
	ErrTemporaryFile        = errors.New("file is a temporary Excel lock file")
	ErrFileTooLarge         = errors.New("file exceeds the maximum upload size")
	ErrNotDirectory         = errors.New("output path is not a directory")
)

// AllowedExtensions lists the workbook extensions accepted for upload.
// Legacy .xls passes here so the loader can report the precise reason it
// cannot be read.
var AllowedExtensions = []string{".xlsx", ".xls"}

// FileValidator provides file checks shared by the HTTP service and the CLI
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

// ValidateUpload checks an uploaded workbook's name and size before it is
// read. maxSize <= 0 disables the size check.
func (v *FileValidator) ValidateUpload(name string, size, maxSize int64) error {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if strings.TrimSpace(name) == "" || base == "." || base == "/" {
		return ErrMissingFileName
	}

	if err := v.checkWorkbookName(base); err != nil {
		return err
	}

	if maxSize > 0 && size > maxSize {
		v.logger.Warn("Upload rejected: too large",
			slog.String("file", base),
			slog.Int64("size", size),
			slog.Int64("max_size", maxSize))
		return fmt.Errorf("%w: %d bytes, limit is %d bytes", ErrFileTooLarge, size, maxSize)
	}

	return nil
}

// ValidateOutputDirectory makes sure a report can be saved into dir,
// creating it when it does not exist yet.
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if dir == "" {
		dir = "."
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Warn("Cannot create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	f, err := os.CreateTemp(dir, ".coursereport-*")
	if err != nil {
		v.logger.Warn("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return nil
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateExcelFile checks that path is a readable workbook on disk
func (v *FileValidator) ValidateExcelFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}
	return v.checkWorkbookName(filepath.Base(path))
}

func (v *FileValidator) checkWorkbookName(base string) error {
	ext := strings.ToLower(filepath.Ext(base))
	allowed := false
	for _, a := range AllowedExtensions {
		if ext == a {
			allowed = true
			break
		}
	}
	if !allowed {
		v.logger.Warn("File is not an Excel workbook",
			slog.String("file", base),
			slog.String("extension", ext))
		return fmt.Errorf("%w: got %q", ErrUnsupportedExtension, ext)
	}

	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Rejecting temporary Excel file",
			slog.String("file", base))
		return ErrTemporaryFile
	}

	return nil
}
