// Package store persists diagrams to disk in msgpack form. Vertex IDs are
// compacted on load; the loaded diagram is isomorphic to the saved one but
// not guaranteed to reuse the same IDs.
package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/qzx-dev/go-qzx/pkg/diagram"
	"github.com/qzx-dev/go-qzx/pkg/phase"
)

const formatVersion = 1

type vertexRecord struct {
	ID     int `msgpack:"id"`
	Type   int `msgpack:"type"`
	PhaseX int `msgpack:"phase_x"`
	PhaseY int `msgpack:"phase_y"`
	Qudit  int `msgpack:"qudit"`
	Row    int `msgpack:"row"`
}

type edgeRecord struct {
	V1     int `msgpack:"v1"`
	V2     int `msgpack:"v2"`
	Had    int `msgpack:"had"`
	Simple int `msgpack:"simple"`
}

type scalarRecord struct {
	PowerDim  int     `msgpack:"power_dim"`
	PhaseNum  int     `msgpack:"phase_num"`
	PhaseDen  int     `msgpack:"phase_den"`
	FloatRe   float64 `msgpack:"float_re"`
	FloatIm   float64 `msgpack:"float_im"`
	IsZero    bool    `msgpack:"is_zero"`
	IsUnknown bool    `msgpack:"is_unknown"`
}

type diagramRecord struct {
	Version  int            `msgpack:"version"`
	Dim      int            `msgpack:"dim"`
	Vertices []vertexRecord `msgpack:"vertices"`
	Edges    []edgeRecord   `msgpack:"edges"`
	Inputs   []int          `msgpack:"inputs"`
	Outputs  []int          `msgpack:"outputs"`
	Scalar   scalarRecord   `msgpack:"scalar"`
}

// Save encodes the diagram onto the writer.
func Save(w io.Writer, g *diagram.Diagram) error {
	rec := diagramRecord{
		Version: formatVersion,
		Dim:     g.Dim,
		Inputs:  append([]int(nil), g.Inputs()...),
		Outputs: append([]int(nil), g.Outputs()...),
		Scalar: scalarRecord{
			PowerDim:  g.Scalar.PowerDim,
			PhaseNum:  g.Scalar.Phase.Num,
			PhaseDen:  g.Scalar.Phase.Den,
			FloatRe:   real(g.Scalar.FloatFactor),
			FloatIm:   imag(g.Scalar.FloatFactor),
			IsZero:    g.Scalar.IsZero,
			IsUnknown: g.Scalar.IsUnknown,
		},
	}
	for _, v := range g.Vertices() {
		p := g.Phase(v)
		rec.Vertices = append(rec.Vertices, vertexRecord{
			ID:     v,
			Type:   int(g.Type(v)),
			PhaseX: p.X,
			PhaseY: p.Y,
			Qudit:  g.Qudit(v),
			Row:    g.Row(v),
		})
		for _, u := range g.Neighbors(v) {
			if u <= v {
				continue
			}
			e := g.EdgeBetween(v, u)
			rec.Edges = append(rec.Edges, edgeRecord{V1: v, V2: u, Had: e.Had, Simple: e.Simple})
		}
	}

	if err := msgpack.NewEncoder(w).Encode(rec); err != nil {
		return fmt.Errorf("failed to encode diagram: %w", err)
	}
	return nil
}

// Load decodes a diagram from the reader.
func Load(r io.Reader) (*diagram.Diagram, error) {
	var rec diagramRecord
	if err := msgpack.NewDecoder(r).Decode(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode diagram: %w", err)
	}
	if rec.Version != formatVersion {
		return nil, fmt.Errorf("unsupported diagram format version %d", rec.Version)
	}

	g, err := diagram.New(rec.Dim)
	if err != nil {
		return nil, err
	}

	sort.Slice(rec.Vertices, func(i, j int) bool { return rec.Vertices[i].ID < rec.Vertices[j].ID })
	ids := make(map[int]int, len(rec.Vertices))
	for _, vr := range rec.Vertices {
		if _, dup := ids[vr.ID]; dup {
			return nil, fmt.Errorf("duplicate vertex %d in diagram record", vr.ID)
		}
		v := g.AddVertex(diagram.VertexType(vr.Type), phase.New(rec.Dim, vr.PhaseX, vr.PhaseY))
		if vr.Qudit >= 0 {
			g.SetQudit(v, vr.Qudit)
		}
		if vr.Row >= 0 {
			g.SetRow(v, vr.Row)
		}
		ids[vr.ID] = v
	}

	for _, er := range rec.Edges {
		v1, ok1 := ids[er.V1]
		v2, ok2 := ids[er.V2]
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("edge %d-%d references a missing vertex", er.V1, er.V2)
		}
		// Saved edges are already normalized; bypass AddEdge so fused
		// spiders are not re-fused.
		g.SetEdge(v1, v2, diagram.NewEdge(rec.Dim, er.Had, er.Simple))
	}

	inputs, err := remap(ids, rec.Inputs)
	if err != nil {
		return nil, err
	}
	outputs, err := remap(ids, rec.Outputs)
	if err != nil {
		return nil, err
	}
	g.SetInputs(inputs...)
	g.SetOutputs(outputs...)

	g.Scalar.PowerDim = rec.Scalar.PowerDim
	g.Scalar.Phase = diagram.NewFraction(rec.Scalar.PhaseNum, rec.Scalar.PhaseDen)
	g.Scalar.FloatFactor = complex(rec.Scalar.FloatRe, rec.Scalar.FloatIm)
	g.Scalar.IsZero = rec.Scalar.IsZero
	g.Scalar.IsUnknown = rec.Scalar.IsUnknown
	return g, nil
}

func remap(ids map[int]int, vs []int) ([]int, error) {
	out := make([]int, len(vs))
	for i, v := range vs {
		nv, ok := ids[v]
		if !ok {
			return nil, fmt.Errorf("boundary vertex %d missing from diagram record", v)
		}
		out[i] = nv
	}
	return out, nil
}

// SaveFile writes the diagram to path, creating parent directories.
func SaveFile(path string, g *diagram.Diagram) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create diagram file: %w", err)
	}
	defer f.Close()
	return Save(f, g)
}

// LoadFile reads a diagram from path.
func LoadFile(path string) (*diagram.Diagram, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open diagram file: %w", err)
	}
	defer f.Close()
	return Load(f)
}
