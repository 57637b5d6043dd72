package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Paths contains all the application paths, already made absolute.
type Paths struct {
	BaseDir       string
	DataDir       string
	UploadsDir    string
	OutputDir     string
	ScratchDir    string
	LogsDir       string
	ReferenceFile string

	watchReference bool
}

// NewPaths resolves cfg. An empty BaseDir means the executable directory;
// relative entries are joined to BaseDir, empty entries get the defaults.
func NewPaths(cfg PathsConfig) (*Paths, error) {
	base := cfg.BaseDir
	if base == "" {
		exeDir, err := executableDir()
		if err != nil {
			return nil, err
		}
		base = exeDir
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	resolve := func(p, def string) string {
		if strings.TrimSpace(p) == "" {
			p = def
		}
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(base, p)
	}

	return &Paths{
		BaseDir:        base,
		DataDir:        resolve(cfg.DataDir, DefaultDataDir),
		UploadsDir:     resolve(cfg.UploadsDir, DefaultUploadsDir),
		OutputDir:      resolve(cfg.OutputDir, DefaultOutputDir),
		ScratchDir:     resolve(cfg.ScratchDir, DefaultScratchDir),
		LogsDir:        resolve(cfg.LogsDir, DefaultLogsDir),
		ReferenceFile:  resolve(cfg.ReferenceFile, DefaultReferenceFile),
		watchReference: cfg.WatchReference,
	}, nil
}

// executableDir returns the directory of the running binary with symlinks resolved.
func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}
	return filepath.Dir(exe), nil
}

// Config returns the resolved paths as a PathsConfig.
func (p *Paths) Config() PathsConfig {
	return PathsConfig{
		BaseDir:        p.BaseDir,
		DataDir:        p.DataDir,
		UploadsDir:     p.UploadsDir,
		OutputDir:      p.OutputDir,
		ScratchDir:     p.ScratchDir,
		LogsDir:        p.LogsDir,
		ReferenceFile:  p.ReferenceFile,
		WatchReference: p.watchReference,
	}
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.UploadsDir,
		p.OutputDir,
		p.ScratchDir,
		p.LogsDir,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// OutputDirFor returns the output directory of a transformation, e.g.
// output/output_logview.
func (p *Paths) OutputDirFor(functionID string) string {
	return filepath.Join(p.OutputDir, "output_"+functionID)
}

// Contains reports whether target lies inside dir after cleaning. It guards
// download handlers against path traversal.
func Contains(dir, target string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(target))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LogPathResolution logs all resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("Path resolution",
		slog.String("base_dir", p.BaseDir),
		slog.String("data_dir", p.DataDir),
		slog.String("uploads_dir", p.UploadsDir),
		slog.String("output_dir", p.OutputDir),
		slog.String("scratch_dir", p.ScratchDir),
		slog.String("logs_dir", p.LogsDir),
		slog.Group("reference",
			slog.String("path", p.ReferenceFile),
			slog.Bool("exists", FileExists(p.ReferenceFile)),
			slog.Bool("watch", p.watchReference),
		),
	)
}
