// Package circuit implements qudit Clifford circuits over the gate set
// Z, S, X, NEG, H, CX, CZ, SWAP, MUL and the generic Z/X phase gates, with
// compilation into ZX-diagrams.
package circuit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/qzx-dev/go-qzx/pkg/phase"
)

// ErrUnsupportedGate is returned for gate names outside the closed set and
// for exponents or values a gate cannot carry, e.g. a MUL value with no
// inverse mod d.
var ErrUnsupportedGate = errors.New("unsupported gate")

// ErrBadWire is returned when a gate addresses a qudit outside the
// circuit or a two-qudit gate addresses the same wire twice.
var ErrBadWire = errors.New("gate wires out of range")

// Kind enumerates the closed gate set.
type Kind int

const (
	KindZ Kind = iota
	KindS
	KindX
	KindNEG
	KindH
	KindZPhase
	KindXPhase
	KindCX
	KindCZ
	KindSWAP
	KindMUL
)

var kindNames = map[Kind]string{
	KindZ:      "Z",
	KindS:      "S",
	KindX:      "X",
	KindNEG:    "NEG",
	KindH:      "H",
	KindZPhase: "ZPhase",
	KindXPhase: "XPhase",
	KindCX:     "CX",
	KindCZ:     "CZ",
	KindSWAP:   "SWAP",
	KindMUL:    "MUL",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// TwoQudit reports whether the kind addresses a control wire.
func (k Kind) TwoQudit() bool {
	return k == KindCX || k == KindCZ || k == KindSWAP
}

// Gate is one circuit element. Reps counts repetitions and may be
// negative for adjoints; MUL carries its multiplier in Value instead.
type Gate struct {
	Kind    Kind
	Target  int
	Control int // -1 for single-qudit gates
	Reps    int
	Phase   phase.Clifford // ZPhase and XPhase only
	Value   int            // MUL only
}

// Order returns the natural order of the gate for dimension d: Reps is
// only meaningful mod this value.
func (g Gate) Order(d int) int {
	switch g.Kind {
	case KindH:
		return 4
	case KindSWAP, KindNEG:
		return 2
	default:
		return d
	}
}

// Adjoint returns the inverse gate.
func (g Gate) Adjoint(d int) Gate {
	a := g
	a.Reps = -g.Reps
	if g.Kind == KindZPhase {
		a.Phase = g.Phase.Neg()
		a.Reps = g.Reps
	}
	if g.Kind == KindXPhase {
		// The X rotation is the Fourier conjugate H;Z^x;S^y;H, and H^4 = 1
		// rather than H^2, so its dagger is H;Z^x;S^{-y};H: only the
		// quadratic part flips.
		a.Phase = phase.New(g.Phase.Dim, g.Phase.X, -g.Phase.Y)
		a.Reps = g.Reps
	}
	if g.Kind == KindMUL {
		a.Reps = g.Reps
		if inv, err := phase.Inverse(g.Value, d); err == nil {
			a.Value = inv
		}
	}
	return a
}

func (g Gate) String() string {
	var b strings.Builder
	b.WriteString(g.Kind.String())
	if g.Reps != 1 {
		fmt.Fprintf(&b, "^%d", g.Reps)
	}
	b.WriteByte('(')
	if g.Kind.TwoQudit() {
		fmt.Fprintf(&b, "%d,", g.Control)
	}
	fmt.Fprintf(&b, "%d", g.Target)
	if g.Kind == KindZPhase || g.Kind == KindXPhase {
		fmt.Fprintf(&b, ",phase=%s", g.Phase)
	}
	if g.Kind == KindMUL {
		fmt.Fprintf(&b, ",value=%d", g.Value)
	}
	b.WriteByte(')')
	return b.String()
}

// Circuit is an ordered gate list over a fixed number of qudits of odd
// prime dimension.
type Circuit struct {
	Qudits int
	Dim    int
	Name   string
	Gates  []Gate
}

// New returns an empty circuit, validating the dimension.
func New(qudits, dim int) (*Circuit, error) {
	if err := phase.ValidateDimension(dim); err != nil {
		return nil, err
	}
	if qudits < 1 {
		return nil, fmt.Errorf("%w: %d qudits", ErrBadWire, qudits)
	}
	return &Circuit{Qudits: qudits, Dim: dim}, nil
}

// Add appends a gate after validating its wires.
func (c *Circuit) Add(g Gate) error {
	if err := c.checkWires(g); err != nil {
		return err
	}
	c.Gates = append(c.Gates, g)
	return nil
}

func (c *Circuit) checkWires(g Gate) error {
	if g.Target < 0 || g.Target >= c.Qudits {
		return fmt.Errorf("%w: target %d of %s", ErrBadWire, g.Target, g.Kind)
	}
	if g.Kind.TwoQudit() {
		if g.Control < 0 || g.Control >= c.Qudits {
			return fmt.Errorf("%w: control %d of %s", ErrBadWire, g.Control, g.Kind)
		}
		if g.Control == g.Target {
			return fmt.Errorf("%w: %s with control == target %d", ErrBadWire, g.Kind, g.Target)
		}
	}
	return nil
}

// AddByName appends a gate built from its lowercase name ("z", "sdg",
// "cx", ...) with the given exponent. Two-qudit gates read wires as
// (control, target); single-qudit gates take one wire.
func (c *Circuit) AddByName(name string, reps int, wires ...int) error {
	g, err := c.ByName(name, reps, wires...)
	if err != nil {
		return err
	}
	return c.Add(g)
}

// ByName builds a gate from its name without appending it.
func (c *Circuit) ByName(name string, reps int, wires ...int) (Gate, error) {
	base := strings.ToLower(name)
	adjoint := false
	if strings.HasSuffix(base, "dg") && base != "neg" {
		base = strings.TrimSuffix(base, "dg")
		adjoint = true
	}
	kind, ok := map[string]Kind{
		"z":    KindZ,
		"s":    KindS,
		"x":    KindX,
		"neg":  KindNEG,
		"h":    KindH,
		"cx":   KindCX,
		"cnot": KindCX,
		"cz":   KindCZ,
		"swap": KindSWAP,
		"mul":  KindMUL,
	}[base]
	if !ok {
		return Gate{}, fmt.Errorf("%w: name %q", ErrUnsupportedGate, name)
	}
	g := Gate{Kind: kind, Reps: reps, Control: -1}
	if adjoint {
		g.Reps = -reps
	}
	switch {
	case kind.TwoQudit():
		if len(wires) != 2 {
			return Gate{}, fmt.Errorf("%w: %s needs control and target", ErrUnsupportedGate, name)
		}
		g.Control, g.Target = wires[0], wires[1]
	case kind == KindMUL:
		if len(wires) != 1 {
			return Gate{}, fmt.Errorf("%w: mul needs one wire", ErrUnsupportedGate)
		}
		g.Target = wires[0]
		g.Reps = 1
		inv, err := phase.Inverse(reps, c.Dim)
		if err != nil {
			return Gate{}, fmt.Errorf("%w: mul value %d mod %d", ErrUnsupportedGate, reps, c.Dim)
		}
		g.Value = phase.Mod(reps, c.Dim)
		if adjoint {
			g.Value = inv
		}
	default:
		if len(wires) != 1 {
			return Gate{}, fmt.Errorf("%w: %s needs one wire", ErrUnsupportedGate, name)
		}
		g.Target = wires[0]
	}
	return g, nil
}

// Copy returns a deep copy of the circuit.
func (c *Circuit) Copy() *Circuit {
	n := &Circuit{Qudits: c.Qudits, Dim: c.Dim, Name: c.Name}
	n.Gates = append([]Gate(nil), c.Gates...)
	return n
}

// Adjoint returns the inverse circuit: gates reversed and inverted.
func (c *Circuit) Adjoint() *Circuit {
	n := &Circuit{Qudits: c.Qudits, Dim: c.Dim, Name: c.Name}
	for i := len(c.Gates) - 1; i >= 0; i-- {
		n.Gates = append(n.Gates, c.Gates[i].Adjoint(c.Dim))
	}
	return n
}

// Append adds all gates of other to the end of c.
func (c *Circuit) Append(other *Circuit) error {
	if other.Dim != c.Dim {
		return fmt.Errorf("%w: dimensions %d and %d", ErrBadWire, c.Dim, other.Dim)
	}
	if other.Qudits > c.Qudits {
		return fmt.Errorf("%w: %d qudits into %d", ErrBadWire, other.Qudits, c.Qudits)
	}
	for _, g := range other.Gates {
		if err := c.Add(g); err != nil {
			return err
		}
	}
	return nil
}

func (c *Circuit) String() string {
	return fmt.Sprintf("Circuit(%d qudits, dim %d, %d gates)", c.Qudits, c.Dim, len(c.Gates))
}
