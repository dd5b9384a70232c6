package circuit

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/qzx-dev/go-qzx/pkg/phase"
)

// circuitDoc is the on-disk YAML form of a circuit.
type circuitDoc struct {
	Name   string    `yaml:"name,omitempty"`
	Dim    int       `yaml:"dim"`
	Qudits int       `yaml:"qudits"`
	Gates  []gateDoc `yaml:"gates"`
}

type gateDoc struct {
	Gate    string `yaml:"gate"`
	Target  int    `yaml:"target"`
	Control *int   `yaml:"control,omitempty"`
	Reps    int    `yaml:"reps,omitempty"`
	Value   int    `yaml:"value,omitempty"`
	X       int    `yaml:"x,omitempty"`
	Y       int    `yaml:"y,omitempty"`
}

// Decode reads a circuit from its YAML description.
func Decode(r io.Reader) (*Circuit, error) {
	return DecodeWithDimension(r, 0)
}

// DecodeWithDimension reads a circuit from its YAML description, falling
// back to defaultDim when the document does not declare a dimension.
func DecodeWithDimension(r io.Reader, defaultDim int) (*Circuit, error) {
	var doc circuitDoc
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding circuit: %w", err)
	}
	if doc.Dim == 0 {
		doc.Dim = defaultDim
	}
	c, err := New(doc.Qudits, doc.Dim)
	if err != nil {
		return nil, err
	}
	c.Name = doc.Name
	for i, gd := range doc.Gates {
		g, err := gateFromDoc(c, gd)
		if err != nil {
			return nil, fmt.Errorf("gate %d: %w", i, err)
		}
		if err := c.Add(g); err != nil {
			return nil, fmt.Errorf("gate %d: %w", i, err)
		}
	}
	return c, nil
}

func gateFromDoc(c *Circuit, gd gateDoc) (Gate, error) {
	reps := gd.Reps
	if reps == 0 {
		reps = 1
	}
	name := strings.ToLower(gd.Gate)
	switch name {
	case "zphase":
		return ZPhaseGate(gd.Target, phase.New(c.Dim, gd.X, gd.Y)), nil
	case "xphase":
		return XPhaseGate(gd.Target, phase.New(c.Dim, gd.X, gd.Y)), nil
	case "mul":
		return c.ByName(name, gd.Value, gd.Target)
	}
	wires := []int{gd.Target}
	if gd.Control != nil {
		wires = []int{*gd.Control, gd.Target}
	}
	return c.ByName(name, reps, wires...)
}

// Encode writes the circuit as YAML.
func (c *Circuit) Encode(w io.Writer) error {
	doc := circuitDoc{Name: c.Name, Dim: c.Dim, Qudits: c.Qudits}
	for _, g := range c.Gates {
		gd := gateDoc{Gate: strings.ToLower(g.Kind.String()), Target: g.Target, Reps: g.Reps}
		if g.Kind.TwoQudit() {
			ctrl := g.Control
			gd.Control = &ctrl
		}
		switch g.Kind {
		case KindMUL:
			gd.Value = g.Value
			gd.Reps = 0
		case KindZPhase, KindXPhase:
			gd.X, gd.Y = g.Phase.X, g.Phase.Y
			gd.Reps = 0
		}
		doc.Gates = append(doc.Gates, gd)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(doc)
}
