package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"logview/internal/config"
)

// ErrFileTooLarge is returned when an upload exceeds the per-file limit.
var ErrFileTooLarge = errors.New("file exceeds the maximum upload size")

// Manager hands out scratch workspaces under the configured scratch directory.
type Manager struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(paths *config.Paths, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		paths:  paths,
		logger: logger.With(slog.String("component", "files")),
	}
}

// Workspace is a per-request directory for uploaded inputs.
type Workspace struct {
	ID     string
	Dir    string
	logger *slog.Logger
}

// NewWorkspace creates an empty scratch directory named after a fresh id.
func (m *Manager) NewWorkspace(ctx context.Context) (*Workspace, error) {
	id := uuid.NewString()
	dir := filepath.Join(m.paths.ScratchDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	m.logger.DebugContext(ctx, "workspace created",
		slog.String("workspace_id", id),
		slog.String("dir", dir))
	return &Workspace{ID: id, Dir: dir, logger: m.logger}, nil
}

// Save copies r into the workspace under the base name of name. At most
// limit bytes are accepted when limit is positive.
func (w *Workspace) Save(name string, r io.Reader, limit int64) (string, error) {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	target := filepath.Join(w.Dir, base)

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", base, err)
	}
	defer f.Close()

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	n, err := io.Copy(f, src)
	if err != nil {
		return "", fmt.Errorf("failed to write %s: %w", base, err)
	}
	if limit > 0 && n > limit {
		_ = os.Remove(target)
		return "", fmt.Errorf("%s: %w", base, ErrFileTooLarge)
	}
	if err := f.Sync(); err != nil {
		return "", err
	}
	return target, nil
}

// Remove deletes the workspace and everything in it.
func (w *Workspace) Remove() error {
	if err := os.RemoveAll(w.Dir); err != nil {
		w.logger.Warn("failed to remove workspace",
			slog.String("workspace_id", w.ID),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}

// ResolveOutput joins name onto dir and rejects anything that escapes dir.
func ResolveOutput(dir, name string) (string, error) {
	target := filepath.Join(dir, name)
	if target == filepath.Clean(dir) || !config.Contains(dir, target) {
		return "", fmt.Errorf("path %q escapes %s", name, dir)
	}
	return target, nil
}
