package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrNoWorkbooks is returned when a directory holds no workbook to analyze
var ErrNoWorkbooks = errors.New("no .xlsx or .xls workbook found")

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// Discovery finds workbooks relative to a base path
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// FindWorkbooks lists the workbooks in dir, oldest first. Excel lock files
// (~$name.xlsx) are skipped.
func (d *Discovery) FindWorkbooks(dir string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !isWorkbook(name) || strings.HasPrefix(name, "~$") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].ModTime.Before(files[j].ModTime)
	})

	return files, nil
}

// FindFilesByPattern lists the regular files in dir matching a glob pattern
func (d *Discovery) FindFilesByPattern(dir string, pattern string) ([]FileInfo, error) {
	searchPattern := filepath.Join(d.resolve(dir), pattern)

	matches, err := filepath.Glob(searchPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}

	var files []FileInfo
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, FileInfo{
			Path:    match,
			Name:    filepath.Base(match),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	return files, nil
}

// ResolveWorkbook returns path itself when it names a file, the most
// recently modified workbook inside it when it names a directory, and the
// newest matching workbook when it is a glob pattern such as
// "exports/report_*.xlsx".
func (d *Discovery) ResolveWorkbook(path string) (string, error) {
	fullPath := d.resolve(path)

	if isPattern(fullPath) {
		matches, err := d.FindFilesByPattern(filepath.Dir(fullPath), filepath.Base(fullPath))
		if err != nil {
			return "", err
		}
		return newestWorkbook(matches, fullPath)
	}

	info, err := os.Stat(fullPath)
	if err != nil || !info.IsDir() {
		// file validation reports missing or unreadable paths
		return fullPath, nil
	}

	workbooks, err := d.FindWorkbooks(fullPath)
	if err != nil {
		return "", err
	}
	return newestWorkbook(workbooks, fullPath)
}

func newestWorkbook(candidates []FileInfo, where string) (string, error) {
	var workbooks []FileInfo
	for _, f := range candidates {
		if isWorkbook(f.Name) && !strings.HasPrefix(f.Name, "~$") {
			workbooks = append(workbooks, f)
		}
	}
	latest, ok := GetLatestFile(workbooks)
	if !ok {
		return "", fmt.Errorf("%w in %s", ErrNoWorkbooks, where)
	}
	return latest.Path, nil
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

func (d *Discovery) resolve(path string) string {
	if filepath.IsAbs(path) || d.basePath == "" {
		return path
	}
	return filepath.Join(d.basePath, path)
}

func isPattern(path string) bool {
	return strings.ContainsAny(filepath.Base(path), "*?[")
}

func isWorkbook(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".xlsx" || ext == ".xls"
}
