package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"logview/internal/config"
	"logview/internal/files"
)

var (
	// ErrUnsupportedExtension rejects uploads outside the allowed list.
	ErrUnsupportedExtension = errors.New("file type is not allowed")
	// ErrUploadTooLarge rejects uploads above the size limit.
	ErrUploadTooLarge = errors.New("file exceeds the maximum upload size")
	// ErrTemporaryFile rejects spreadsheet lock files such as "~$book.xlsx".
	ErrTemporaryFile = errors.New("file is a temporary office file")
	// ErrDuplicateUpload rejects a request carrying two files of the same name.
	ErrDuplicateUpload = errors.New("file name is used by another upload")
)

// FileValidator checks paths and uploads before a transformation runs.
type FileValidator struct {
	upload config.UploadConfig
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(upload config.UploadConfig, logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	if upload.MaxBytes <= 0 {
		upload.MaxBytes = config.DefaultMaxUploadBytes
	}
	if len(upload.AllowedExtensions) == 0 {
		upload.AllowedExtensions = config.DefaultAllowedExtensions
	}
	return &FileValidator{
		upload: upload,
		logger: logger.With(slog.String("component", "file_validator")),
	}
}

// MaxBytes is the per-file upload limit.
func (v *FileValidator) MaxBytes() int64 {
	return v.upload.MaxBytes
}

// ValidateUpload checks the client-supplied name and size of one upload.
// A negative size means unknown and only the name is checked.
func (v *FileValidator) ValidateUpload(name string, size int64) error {
	base := uploadBase(name)
	ext := strings.ToLower(filepath.Ext(base))

	if !v.allowed(ext) {
		v.logger.Warn("Upload rejected",
			slog.String("file", base),
			slog.String("extension", ext),
			slog.String("reason", "extension"))
		return fmt.Errorf("%s: %w", base, ErrUnsupportedExtension)
	}
	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Upload rejected",
			slog.String("file", base),
			slog.String("reason", "temporary file"))
		return fmt.Errorf("%s: %w", base, ErrTemporaryFile)
	}
	if size > v.upload.MaxBytes {
		v.logger.Warn("Upload rejected",
			slog.String("file", base),
			slog.Int64("size", size),
			slog.Int64("max_bytes", v.upload.MaxBytes),
			slog.String("reason", "size"))
		return fmt.Errorf("%s: %w", base, ErrUploadTooLarge)
	}
	return nil
}

// ValidateUploadNames rejects names that would land on the same workspace
// file. Names compare by base name, ignoring case.
func (v *FileValidator) ValidateUploadNames(names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		base := uploadBase(name)
		key := strings.ToLower(base)
		if _, dup := seen[key]; dup {
			v.logger.Warn("Upload rejected",
				slog.String("file", base),
				slog.String("reason", "duplicate name"))
			return fmt.Errorf("%s: %w", base, ErrDuplicateUpload)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func uploadBase(name string) string {
	return filepath.Base(strings.ReplaceAll(name, "\\", "/"))
}

func (v *FileValidator) allowed(ext string) bool {
	for _, a := range v.upload.AllowedExtensions {
		if ext == a {
			return true
		}
	}
	return false
}

// ValidateInputDirectory checks that dir is an existing directory and reports
// how many files in it carry one of exts. No matches is not an error.
func (v *FileValidator) ValidateInputDirectory(dir string, exts []string) (int, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		v.logger.Error("Input directory does not exist",
			slog.String("directory", dir))
		return 0, fmt.Errorf("input directory %s does not exist: %w", dir, os.ErrNotExist)
	}
	if err != nil {
		v.logger.Error("Failed to stat input directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return 0, fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		v.logger.Error("Input path is not a directory",
			slog.String("path", dir))
		return 0, fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	count := 0
	for _, e := range entries {
		if !e.IsDir() && files.HasExtension(e.Name(), exts) {
			count++
		}
	}
	if count == 0 {
		v.logger.Warn("No matching files found",
			slog.String("directory", dir),
			slog.Any("extensions", exts))
	}
	return count, nil
}

// ValidateOutputDirectory ensures output directory exists and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())
	return nil
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return fmt.Errorf("file %s does not exist: %w", path, os.ErrNotExist)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
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

// ValidateSpreadsheet checks that path is a readable workbook or CSV file.
func (v *FileValidator) ValidateSpreadsheet(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".xlsx", ".xls", ".csv":
	default:
		return fmt.Errorf("file %s is not a spreadsheet (extension: %s): %w", path, ext, ErrUnsupportedExtension)
	}
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return fmt.Errorf("file %s: %w", path, ErrTemporaryFile)
	}
	return nil
}
