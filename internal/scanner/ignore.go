package scanner

import (
	"path/filepath"
	"strings"
)

// IgnorePattern is a single gitignore-style pattern from a .qzxignore
// file. Supported syntax: glob segments (via filepath.Match), "**" for
// any number of directories, a trailing "/" for directory patterns, a
// leading "/" to anchor at the scan root, and a leading "!" to negate.
type IgnorePattern struct {
	pattern  string
	negation bool
	dirOnly  bool
	anchored bool
	segments []string
}

// ParseIgnorePattern parses a pattern line.
func ParseIgnorePattern(pattern string) IgnorePattern {
	p := IgnorePattern{pattern: pattern}
	if strings.HasPrefix(pattern, "!") {
		p.negation = true
		pattern = pattern[1:]
	}
	if strings.HasSuffix(pattern, "/") {
		p.dirOnly = true
		pattern = strings.TrimSuffix(pattern, "/")
	}
	if strings.HasPrefix(pattern, "/") {
		p.anchored = true
		pattern = pattern[1:]
	}
	p.segments = strings.Split(pattern, "/")
	return p
}

// IsNegation reports whether the pattern re-includes matched paths.
func (p IgnorePattern) IsNegation() bool {
	return p.negation
}

// Match reports whether the relative path matches the pattern.
// Matching is case-sensitive.
func (p IgnorePattern) Match(path string) bool {
	segs := strings.Split(filepath.ToSlash(path), "/")
	if p.anchored {
		return matchSegments(p.segments, segs, p.dirOnly)
	}
	for i := range segs {
		if matchSegments(p.segments, segs[i:], p.dirOnly) {
			return true
		}
	}
	return false
}

// matchSegments matches pattern segments against path segments. A
// directory pattern may leave path segments unconsumed (the path lies
// inside the matched directory); a file pattern must consume them all.
func matchSegments(pat, segs []string, dirOnly bool) bool {
	if len(pat) == 0 {
		return dirOnly || len(segs) == 0
	}
	if pat[0] == "**" {
		for i := 0; i <= len(segs); i++ {
			if matchSegments(pat[1:], segs[i:], dirOnly) {
				return true
			}
		}
		return false
	}
	if len(segs) == 0 {
		return false
	}
	ok, err := filepath.Match(pat[0], segs[0])
	if err != nil || !ok {
		return false
	}
	return matchSegments(pat[1:], segs[1:], dirOnly)
}
