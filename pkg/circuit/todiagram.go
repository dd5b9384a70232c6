package circuit

import (
	"fmt"

	"github.com/qzx-dev/go-qzx/pkg/diagram"
	"github.com/qzx-dev/go-qzx/pkg/phase"
)

// ZGate returns Z^reps on target.
func ZGate(target, reps int) Gate {
	return Gate{Kind: KindZ, Target: target, Control: -1, Reps: reps}
}

// SGate returns S^reps on target.
func SGate(target, reps int) Gate {
	return Gate{Kind: KindS, Target: target, Control: -1, Reps: reps}
}

// XGate returns X^reps on target.
func XGate(target, reps int) Gate {
	return Gate{Kind: KindX, Target: target, Control: -1, Reps: reps}
}

// NEGGate returns the antipode on target.
func NEGGate(target int) Gate {
	return Gate{Kind: KindNEG, Target: target, Control: -1, Reps: 1}
}

// HGate returns H^reps on target.
func HGate(target, reps int) Gate {
	return Gate{Kind: KindH, Target: target, Control: -1, Reps: reps}
}

// ZPhaseGate returns a generic Z rotation with the given phase.
func ZPhaseGate(target int, p phase.Clifford) Gate {
	return Gate{Kind: KindZPhase, Target: target, Control: -1, Reps: 1, Phase: p}
}

// XPhaseGate returns a generic X rotation with the given phase.
func XPhaseGate(target int, p phase.Clifford) Gate {
	return Gate{Kind: KindXPhase, Target: target, Control: -1, Reps: 1, Phase: p}
}

// CXGate returns CX^reps with the given control and target.
func CXGate(control, target, reps int) Gate {
	return Gate{Kind: KindCX, Control: control, Target: target, Reps: reps}
}

// CZGate returns CZ^reps between the two wires.
func CZGate(control, target, reps int) Gate {
	return Gate{Kind: KindCZ, Control: control, Target: target, Reps: reps}
}

// SWAPGate returns a SWAP of the two wires.
func SWAPGate(control, target int) Gate {
	return Gate{Kind: KindSWAP, Control: control, Target: target, Reps: 1}
}

// MULGate returns the multiplier gate |k> -> |value*k> on target.
func MULGate(target, value int) Gate {
	return Gate{Kind: KindMUL, Target: target, Control: -1, Reps: 1, Value: value}
}

// wireState threads each qudit wire through the growing diagram during
// compilation: the most recent vertex on the wire and the next free row.
type wireState struct {
	prev    []int
	nextRow []int
}

func (w *wireState) maxRow(a, b int) int {
	r := w.nextRow[a]
	if w.nextRow[b] > r {
		r = w.nextRow[b]
	}
	return r
}

// ToDiagram compiles the circuit into a ZX-diagram with boundary
// vertices on every wire and layout rows recorded for extraction. The
// compile is all-or-nothing: gates are validated up front and the
// returned diagram is complete or nil.
func (c *Circuit) ToDiagram() (*diagram.Diagram, error) {
	for _, gate := range c.Gates {
		if err := c.checkWires(gate); err != nil {
			return nil, err
		}
		if gate.Kind == KindMUL {
			if _, err := phase.Inverse(gate.Value, c.Dim); err != nil {
				return nil, fmt.Errorf("%w: mul value %d mod %d", ErrUnsupportedGate, gate.Value, c.Dim)
			}
		}
	}

	g, err := diagram.New(c.Dim)
	if err != nil {
		return nil, err
	}
	w := &wireState{prev: make([]int, c.Qudits), nextRow: make([]int, c.Qudits)}
	inputs := make([]int, c.Qudits)
	for q := 0; q < c.Qudits; q++ {
		v := g.AddVertexAt(diagram.Boundary, phase.Zero(c.Dim), q, 0)
		inputs[q] = v
		w.prev[q] = v
		w.nextRow[q] = 1
	}

	for _, gate := range c.Gates {
		if err := compileGate(g, w, gate, c.Dim); err != nil {
			return nil, err
		}
	}

	maxRow := 0
	for q := 0; q < c.Qudits; q++ {
		if w.nextRow[q] > maxRow {
			maxRow = w.nextRow[q]
		}
	}
	outputs := make([]int, c.Qudits)
	for q := 0; q < c.Qudits; q++ {
		v := g.AddVertexAt(diagram.Boundary, phase.Zero(c.Dim), q, maxRow)
		outputs[q] = v
		if err := g.AddEdge(w.prev[q], v, diagram.Plain(c.Dim, 1)); err != nil {
			return nil, err
		}
	}
	g.SetInputs(inputs...)
	g.SetOutputs(outputs...)
	return g, nil
}

// addWireNode appends a spider on the wire of qudit q, joined to the
// previous vertex by the given edge.
func addWireNode(g *diagram.Diagram, w *wireState, t diagram.VertexType, p phase.Clifford, q int, e diagram.Edge) (int, error) {
	v := g.AddVertexAt(t, p, q, w.nextRow[q])
	if err := g.AddEdge(w.prev[q], v, e); err != nil {
		return 0, err
	}
	w.prev[q] = v
	w.nextRow[q]++
	return v, nil
}

// compileBareCX adds the Z-X spider pair of a controlled shift joined by
// a plain bundle of multiplicity reps. On its own the fragment is the
// controlled shift composed with the antipode on the target wire.
func compileBareCX(g *diagram.Diagram, w *wireState, gate Gate, d int) error {
	plain := diagram.Plain(d, 1)
	reps := phase.Mod(gate.Reps, d)
	r := w.maxRow(gate.Control, gate.Target)
	w.nextRow[gate.Control], w.nextRow[gate.Target] = r, r
	cv, err := addWireNode(g, w, diagram.ZSpider, phase.Zero(d), gate.Control, plain)
	if err != nil {
		return err
	}
	tv, err := addWireNode(g, w, diagram.XSpider, phase.Zero(d), gate.Target, plain)
	if err != nil {
		return err
	}
	if err := g.AddEdge(tv, cv, diagram.Plain(d, reps)); err != nil {
		return err
	}
	g.Scalar.AddPower(1)
	return nil
}

func compileGate(g *diagram.Diagram, w *wireState, gate Gate, d int) error {
	plain := diagram.Plain(d, 1)
	switch gate.Kind {
	case KindZ:
		if phase.Mod(gate.Reps, d) == 0 {
			return nil
		}
		_, err := addWireNode(g, w, diagram.ZSpider, phase.New(d, gate.Reps, 0), gate.Target, plain)
		return err
	case KindS:
		if phase.Mod(gate.Reps, d) == 0 {
			return nil
		}
		_, err := addWireNode(g, w, diagram.ZSpider, phase.New(d, 0, gate.Reps), gate.Target, plain)
		return err
	case KindZPhase:
		p := gate.Phase.Scale(gate.Reps)
		if p.IsZero() {
			return nil
		}
		_, err := addWireNode(g, w, diagram.ZSpider, p, gate.Target, plain)
		return err
	case KindX:
		if phase.Mod(gate.Reps, d) == 0 {
			return nil
		}
		// A lone X spider carries the antipode; the leading zero X spider
		// cancels it, leaving the pure shift.
		if _, err := addWireNode(g, w, diagram.XSpider, phase.Zero(d), gate.Target, plain); err != nil {
			return err
		}
		_, err := addWireNode(g, w, diagram.XSpider, phase.New(d, gate.Reps, 0), gate.Target, plain)
		return err
	case KindNEG:
		if phase.Mod(gate.Reps, 2) == 0 {
			return nil
		}
		_, err := addWireNode(g, w, diagram.XSpider, phase.Zero(d), gate.Target, plain)
		return err
	case KindXPhase:
		// The zero X rotation is the antipode, not the identity.
		p := gate.Phase.Scale(gate.Reps)
		_, err := addWireNode(g, w, diagram.XSpider, p, gate.Target, plain)
		return err
	case KindH:
		reps := phase.Mod(gate.Reps, 4)
		for i := 0; i < reps; i++ {
			if _, err := addWireNode(g, w, diagram.ZSpider, phase.Zero(d), gate.Target, diagram.Hadamard(d, 1)); err != nil {
				return err
			}
		}
		return nil
	case KindCX:
		if phase.Mod(gate.Reps, d) == 0 {
			return nil
		}
		if err := compileBareCX(g, w, gate, d); err != nil {
			return err
		}
		// The bare fragment applies the antipode to the target along with
		// the controlled shift; a zero X spider cancels it.
		_, err := addWireNode(g, w, diagram.XSpider, phase.Zero(d), gate.Target, plain)
		return err
	case KindCZ:
		reps := phase.Mod(gate.Reps, d)
		if reps == 0 {
			return nil
		}
		r := w.maxRow(gate.Control, gate.Target)
		w.nextRow[gate.Control], w.nextRow[gate.Target] = r, r
		tv, err := addWireNode(g, w, diagram.ZSpider, phase.Zero(d), gate.Target, plain)
		if err != nil {
			return err
		}
		cv, err := addWireNode(g, w, diagram.ZSpider, phase.Zero(d), gate.Control, plain)
		if err != nil {
			return err
		}
		if err := g.AddEdge(tv, cv, diagram.Hadamard(d, reps)); err != nil {
			return err
		}
		g.Scalar.AddPower(1)
		return nil
	case KindSWAP:
		if phase.Mod(gate.Reps, 2) == 0 {
			return nil
		}
		// Three bare fragments compose to an exact wire exchange: the
		// antipodes of the individual fragments cancel pairwise.
		for _, cx := range []Gate{
			CXGate(gate.Control, gate.Target, 1),
			CXGate(gate.Target, gate.Control, 1),
			CXGate(gate.Control, gate.Target, 1),
		} {
			if err := compileBareCX(g, w, cx, d); err != nil {
				return err
			}
		}
		return nil
	case KindMUL:
		// M_x is two weighted H-wires in series: H_e2 H_e1 = M_{-e2^-1 e1},
		// so weights 1 and -x^-1 realize |k> -> |x*k> exactly.
		xInv, err := phase.Inverse(gate.Value, d)
		if err != nil {
			return fmt.Errorf("%w: mul value %d mod %d", ErrUnsupportedGate, gate.Value, d)
		}
		if _, err := addWireNode(g, w, diagram.ZSpider, phase.Zero(d), gate.Target, diagram.Hadamard(d, 1)); err != nil {
			return err
		}
		_, err = addWireNode(g, w, diagram.ZSpider, phase.Zero(d), gate.Target, diagram.Hadamard(d, -xInv))
		return err
	default:
		return fmt.Errorf("%w: kind %v", ErrUnsupportedGate, gate.Kind)
	}
}
