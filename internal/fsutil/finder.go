// Package fsutil provides file system utility functions.
package fsutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultSourcePatterns selects C and assembly sources at any depth.
var DefaultSourcePatterns = []string{"**/*.{c,S}"}

// FindFiles recursively searches rootPath for regular files matching any of
// the doublestar patterns. It returns slash-separated paths relative to
// rootPath, sorted and without duplicates.
func FindFiles(rootPath string, patterns ...string) ([]string, error) {
	if len(patterns) == 0 {
		panic("at least one pattern is required")
	}

	fsys := os.DirFS(rootPath)
	seen := make(map[string]struct{})
	var files []string
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid pattern %q", pattern)
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly(), doublestar.WithFailOnIOErrors())
		if err != nil {
			return nil, fmt.Errorf("failed to search %s: %w", rootPath, err)
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

// FindDirs returns every directory below rootPath, relative and
// slash-separated, parents before children. rootPath itself is not included.
func FindDirs(rootPath string) ([]string, error) {
	var dirs []string
	err := doublestar.GlobWalk(os.DirFS(rootPath), "**", func(path string, d fs.DirEntry) error {
		if d.IsDir() && path != "." {
			dirs = append(dirs, path)
		}
		return nil
	}, doublestar.WithFailOnIOErrors())
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", rootPath, err)
	}
	sort.Strings(dirs)
	return dirs, nil
}

// Rel joins a slash-separated relative path onto root.
func Rel(root, rel string) string {
	return filepath.Join(root, filepath.FromSlash(rel))
}
