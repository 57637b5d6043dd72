package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"logview/internal/config"
	"logview/internal/files"
	"logview/internal/operations"
	"logview/internal/tabular"
	"logview/internal/validation"
)

// previewExtensions are the output types the result page can render.
var previewExtensions = []string{".xlsx", ".csv"}

// UploadedFile is one file of a run request. Size may be -1 when unknown.
type UploadedFile struct {
	Name   string
	Size   int64
	Reader io.Reader
}

// RunRequest asks for one transformation over uploaded files.
type RunRequest struct {
	FunctionID string
	Files      []UploadedFile
	From       string
	To         string
}

// RunOutcome is what the result page and the JSON API report back.
type RunOutcome struct {
	Result    *operations.Result `json:"result"`
	OutputDir string             `json:"-"`
	Output    string             `json:"output,omitempty"`
	Preview   *Preview           `json:"preview,omitempty"`
}

// RunService runs registered transformations over uploaded files. Every run
// gets its own scratch workspace, which is removed when the run ends.
type RunService struct {
	registry    *operations.Registry
	files       *files.Manager
	discovery   *files.Discovery
	validator   *validation.FileValidator
	reader      *tabular.Reader
	paths       *config.Paths
	previewRows int
	logger      *slog.Logger
}

// RunServiceOption customises a RunService.
type RunServiceOption func(*RunService)

// WithPreviewRows caps the preview size.
func WithPreviewRows(n int) RunServiceOption {
	return func(s *RunService) {
		s.previewRows = n
	}
}

// NewRunService creates a run service.
func NewRunService(registry *operations.Registry, paths *config.Paths, validator *validation.FileValidator, logger *slog.Logger, opts ...RunServiceOption) *RunService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &RunService{
		registry:    registry,
		files:       files.NewManager(paths, logger),
		discovery:   files.NewDiscovery(paths.OutputDir),
		validator:   validator,
		reader:      tabular.NewReader(logger),
		paths:       paths,
		previewRows: DefaultPreviewRows,
		logger:      logger.With(slog.String("service", "run")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Functions lists the registered transformations.
func (s *RunService) Functions() []operations.Info {
	return s.registry.Infos()
}

// Function looks up one transformation.
func (s *RunService) Function(id string) (operations.Info, error) {
	fn, err := s.registry.Get(id)
	if err != nil {
		return operations.Info{}, err
	}
	return operations.Describe(fn), nil
}

// Run validates and stores the uploads, runs the transformation into its
// output directory and previews the output. A run error is returned together
// with the partial outcome.
func (s *RunService) Run(ctx context.Context, req RunRequest) (*RunOutcome, error) {
	fn, err := s.registry.Get(req.FunctionID)
	if err != nil {
		return nil, err
	}
	if len(req.Files) == 0 {
		return nil, ErrNoFilesUploaded
	}
	names := make([]string, 0, len(req.Files))
	for _, f := range req.Files {
		if err := s.validator.ValidateUpload(f.Name, f.Size); err != nil {
			return nil, err
		}
		names = append(names, f.Name)
	}
	if err := s.validator.ValidateUploadNames(names); err != nil {
		return nil, err
	}

	ws, err := s.files.NewWorkspace(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = ws.Remove() }()

	inputs := make([]string, 0, len(req.Files))
	for _, f := range req.Files {
		path, err := ws.Save(f.Name, f.Reader, s.validator.MaxBytes())
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, path)
	}

	outDir := s.paths.OutputDirFor(fn.ID())
	started := time.Now()
	s.logger.InfoContext(ctx, "run started",
		slog.String("function_id", fn.ID()),
		slog.String("run_id", ws.ID),
		slog.Int("files", len(inputs)))

	res, err := fn.Run(ctx, operations.Request{
		RunID:     ws.ID,
		Inputs:    inputs,
		OutputDir: outDir,
		From:      req.From,
		To:        req.To,
	})
	out := &RunOutcome{Result: res, OutputDir: outDir}
	if err != nil {
		s.logger.ErrorContext(ctx, "run failed",
			slog.String("function_id", fn.ID()),
			slog.String("run_id", ws.ID),
			slog.Duration("duration", time.Since(started)),
			slog.String("error", err.Error()))
		return out, err
	}

	out.Output = s.pickOutput(res, outDir)
	if out.Output != "" {
		preview, err := LoadPreview(ctx, s.reader, out.Output, s.previewRows)
		if err != nil {
			s.logger.WarnContext(ctx, "output preview failed",
				slog.String("file", out.Output),
				slog.String("error", err.Error()))
		}
		out.Preview = preview
	}

	s.logger.InfoContext(ctx, "run completed",
		slog.String("function_id", fn.ID()),
		slog.String("run_id", ws.ID),
		slog.Int("outputs", len(res.Outputs)),
		slog.Int("skipped", len(res.Skipped)),
		slog.Duration("duration", time.Since(started)))
	return out, nil
}

// pickOutput prefers the file the transformation marked for preview and
// otherwise falls back to the newest spreadsheet in outDir.
func (s *RunService) pickOutput(res *operations.Result, outDir string) string {
	if res != nil && res.Preview != "" && files.HasExtension(res.Preview, previewExtensions) {
		return res.Preview
	}
	latest, ok, err := s.discovery.LatestOutput(outDir, previewExtensions...)
	if err != nil || !ok {
		return ""
	}
	return latest.Path
}

// LatestPreview renders the newest output of a transformation.
func (s *RunService) LatestPreview(ctx context.Context, functionID string) (*Preview, error) {
	if !s.registry.Has(functionID) {
		return nil, fmt.Errorf("function %s: %w", functionID, operations.ErrFunctionNotFound)
	}
	latest, ok, err := s.discovery.LatestOutput(s.paths.OutputDirFor(functionID), previewExtensions...)
	if err != nil || !ok {
		return nil, ErrNoOutput
	}
	return LoadPreview(ctx, s.reader, latest.Path, s.previewRows)
}

// ResolveDownload maps a download request onto a file in the output
// directory of functionID. Names escaping that directory are rejected.
func (s *RunService) ResolveDownload(functionID, name string) (string, error) {
	if !s.registry.Has(functionID) {
		return "", fmt.Errorf("function %s: %w", functionID, operations.ErrFunctionNotFound)
	}
	path, err := files.ResolveOutput(s.paths.OutputDirFor(functionID), name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrOutputNotFound, err)
	}
	if !config.FileExists(path) {
		return "", fmt.Errorf("%s: %w", filepath.Base(path), ErrOutputNotFound)
	}
	return path, nil
}

// IsUploadRejected reports whether err came from upload validation.
func IsUploadRejected(err error) bool {
	return errors.Is(err, validation.ErrUnsupportedExtension) ||
		errors.Is(err, validation.ErrTemporaryFile) ||
		errors.Is(err, validation.ErrDuplicateUpload) ||
		errors.Is(err, validation.ErrUploadTooLarge) ||
		errors.Is(err, files.ErrFileTooLarge)
}
