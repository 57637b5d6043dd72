package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Extensions recognised by discovery.
var (
	LogExtensions         = []string{".txt"}
	SpreadsheetExtensions = []string{".xlsx", ".xls", ".csv"}
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery resolves input arguments into file lists. Relative paths are
// taken from basePath.
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

func (d *Discovery) resolve(p string) string {
	if filepath.IsAbs(p) || d.basePath == "" {
		return p
	}
	return filepath.Join(d.basePath, p)
}

// FindLogFiles turns a directory or a glob pattern into a sorted list of
// absolute paths. A directory yields every .txt file in it, any case of the
// extension, each path once. An empty result is not an error; the batch
// runner decides what no input means.
func (d *Discovery) FindLogFiles(arg string) ([]string, error) {
	target := d.resolve(arg)

	if info, err := os.Stat(target); err == nil && info.IsDir() {
		found, err := d.listByExtension(target, LogExtensions)
		if err != nil {
			return nil, err
		}
		return paths(found), nil
	}

	matches, err := filepath.Glob(target)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %s: %w", arg, err)
	}
	return absUnique(matches), nil
}

// FindSpreadsheets lists workbook and CSV files in dir, oldest first.
func (d *Discovery) FindSpreadsheets(dir string) ([]FileInfo, error) {
	found, err := d.listByExtension(d.resolve(dir), SpreadsheetExtensions)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(found, func(i, j int) bool {
		return found[i].ModTime.Before(found[j].ModTime)
	})
	return found, nil
}

// LatestOutput returns the newest file in dir whose extension is one of exts.
func (d *Discovery) LatestOutput(dir string, exts ...string) (FileInfo, bool, error) {
	found, err := d.listByExtension(d.resolve(dir), exts)
	if err != nil {
		return FileInfo{}, false, err
	}
	latest, ok := GetLatestFile(found)
	return latest, ok, nil
}

func (d *Discovery) listByExtension(dir string, exts []string) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	var out []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !HasExtension(entry.Name(), exts) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		out = append(out, fileInfo(filepath.Join(abs, entry.Name()), info))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// HasExtension reports whether name ends in one of exts, ignoring case.
func HasExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// GetLatestFile returns the most recently modified file from a list
func GetLatestFile(files []FileInfo) (FileInfo, bool) {
	if len(files) == 0 {
		return FileInfo{}, false
	}

	latest := files[0]
	for _, file := range files[1:] {
		if file.ModTime.After(latest.ModTime) {
			latest = file
		}
	}
	return latest, true
}

func fileInfo(path string, info os.FileInfo) FileInfo {
	return FileInfo{
		Path:    path,
		Name:    filepath.Base(path),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}
}

func paths(found []FileInfo) []string {
	out := make([]string, len(found))
	for i, f := range found {
		out[i] = f.Path
	}
	return out
}

func absUnique(matches []string) []string {
	seen := make(map[string]struct{}, len(matches))
	var out []string
	for _, m := range matches {
		if info, err := os.Stat(m); err != nil || info.IsDir() {
			continue
		}
		abs, err := filepath.Abs(m)
		if err != nil {
			continue
		}
		if _, dup := seen[abs]; dup {
			continue
		}
		seen[abs] = struct{}{}
		out = append(out, abs)
	}
	sort.Strings(out)
	return out
}
