package scanner

import (
	"path/filepath"
	"strings"
)

// Kind classifies an input file by its extension.
type Kind int

const (
	KindUnknown Kind = iota
	KindCircuit      // YAML gate list
	KindDiagram      // stored diagram
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindCircuit:
		return "circuit"
	case KindDiagram:
		return "diagram"
	default:
		return "unknown"
	}
}

// KindOf classifies a path by extension. Unrecognized extensions
// return KindUnknown.
func KindOf(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return KindCircuit
	case ".qzxd":
		return KindDiagram
	default:
		return KindUnknown
	}
}
