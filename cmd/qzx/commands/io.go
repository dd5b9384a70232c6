package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/qzx-dev/go-qzx/internal/scanner"
	"github.com/qzx-dev/go-qzx/pkg/circuit"
	"github.com/qzx-dev/go-qzx/pkg/diagram"
	"github.com/qzx-dev/go-qzx/pkg/store"
)

// DiagramExt is the extension of stored diagram files.
const DiagramExt = ".qzxd"

func isCircuitFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// loadCircuit reads a YAML circuit description, falling back to the
// configured default dimension when the file does not declare one.
func loadCircuit(path string, defaultDim int) (*circuit.Circuit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening circuit file: %w", err)
	}
	defer f.Close()
	c, err := circuit.DecodeWithDimension(f, defaultDim)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if c.Name == "" {
		c.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return c, nil
}

// loadDiagram reads a diagram: YAML circuit descriptions are compiled,
// anything else is treated as a stored diagram.
func loadDiagram(path string, defaultDim int) (*diagram.Diagram, error) {
	if isCircuitFile(path) {
		c, err := loadCircuit(path, defaultDim)
		if err != nil {
			return nil, err
		}
		g, err := c.ToDiagram()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return g, nil
	}
	return store.LoadFile(path)
}

func writeCircuit(path string, c *circuit.Circuit) error {
	if path == "" || path == "-" {
		return c.Encode(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating circuit file: %w", err)
	}
	defer f.Close()
	return c.Encode(f)
}

// expandPaths replaces directory arguments with the circuit and diagram
// files found inside them, honoring .qzxignore rules. File arguments
// pass through unchanged.
func expandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		found, err := scanner.Scan(arg)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", arg, err)
		}
		for _, f := range found {
			paths = append(paths, f.FullPath)
		}
	}
	return paths, nil
}

// replaceExt swaps the extension of path, appending a marker before the
// new extension so batch runs never clobber their inputs.
func replaceExt(path, marker, ext string) string {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	return base + marker + ext
}
