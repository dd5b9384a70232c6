// Package scanner discovers circuit and diagram files under a directory
// tree. It respects .qzxignore files with gitignore-style patterns so
// batch commands can be pointed at a whole workspace.
package scanner

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileInfo describes a discovered input file.
type FileInfo struct {
	Path     string // relative path from root
	FullPath string // absolute path
	Kind     Kind
	Size     int64
}

// Options configures the scanner.
type Options struct {
	SkipHidden      bool     // skip dotfiles and dot-directories
	DefaultExcludes []string // directory names that are never entered
	IgnoreFileName  string   // name of the ignore file (default: .qzxignore)
}

// DefaultOptions returns scanner options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		SkipHidden:     true,
		IgnoreFileName: ".qzxignore",
		DefaultExcludes: []string{
			"node_modules",
			"vendor",
			"dist",
			"build",
			"target",
		},
	}
}

// Scanner walks directory trees collecting circuit and diagram files.
type Scanner struct {
	opts Options
}

// New creates a Scanner with the given options.
func New(opts Options) *Scanner {
	if opts.IgnoreFileName == "" {
		opts.IgnoreFileName = ".qzxignore"
	}
	return &Scanner{opts: opts}
}

// Scan walks root and returns every circuit (.yaml, .yml) and diagram
// (.qzxd) file found, sorted by relative path. Files matched by ignore
// patterns or inside excluded directories are dropped.
func (s *Scanner) Scan(root string) ([]FileInfo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}

	patterns, err := s.loadIgnorePatterns(absRoot)
	if err != nil {
		return nil, fmt.Errorf("loading ignore patterns: %w", err)
	}

	var files []FileInfo
	err = filepath.Walk(absRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		relPath, err := filepath.Rel(absRoot, path)
		if err != nil || relPath == "." {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if s.opts.SkipHidden && strings.HasPrefix(info.Name(), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if info.IsDir() {
			if s.isDefaultExcluded(info.Name()) {
				return filepath.SkipDir
			}
			nested, err := s.loadIgnorePatterns(path)
			if err == nil && len(nested) > 0 {
				patterns = append(patterns, nested...)
			}
			return nil
		}

		kind := KindOf(path)
		if kind == KindUnknown {
			return nil
		}
		if matchesIgnorePatterns(relPath, patterns) {
			return nil
		}

		files = append(files, FileInfo{
			Path:     relPath,
			FullPath: path,
			Kind:     kind,
			Size:     info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func (s *Scanner) isDefaultExcluded(name string) bool {
	for _, exclude := range s.opts.DefaultExcludes {
		if strings.EqualFold(name, exclude) {
			return true
		}
	}
	return false
}

func (s *Scanner) loadIgnorePatterns(dir string) ([]IgnorePattern, error) {
	f, err := os.Open(filepath.Join(dir, s.opts.IgnoreFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var patterns []IgnorePattern
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, ParseIgnorePattern(line))
	}
	return patterns, sc.Err()
}

// matchesIgnorePatterns applies patterns in order; a later negation
// pattern can re-include a path matched by an earlier one.
func matchesIgnorePatterns(relPath string, patterns []IgnorePattern) bool {
	ignored := false
	for _, p := range patterns {
		if p.Match(relPath) {
			ignored = !p.IsNegation()
		}
	}
	return ignored
}

// Scan walks root with default options.
func Scan(root string) ([]FileInfo, error) {
	return New(DefaultOptions()).Scan(root)
}
