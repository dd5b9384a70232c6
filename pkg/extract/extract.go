// Package extract reads a circuit back out of a diagram that is still in
// the compiler's wire layout. It is the inverse of circuit.ToDiagram for
// diagrams whose vertices carry qudit/row positions; diagrams reshaped by
// simplification generally are not extractable.
package extract

import (
	"errors"
	"fmt"

	"github.com/qzx-dev/go-qzx/pkg/circuit"
	"github.com/qzx-dev/go-qzx/pkg/diagram"
	"github.com/qzx-dev/go-qzx/pkg/phase"
)

// ErrNotCircuitLike is returned when the diagram does not have the shape
// of a compiled circuit: missing layout positions, compound or crossing
// edges, or wires that cannot be threaded from input to output.
var ErrNotCircuitLike = errors.New("diagram is not in circuit layout")

// Circuit walks the diagram wire by wire in row order and rebuilds a gate
// list: phase spiders become Z/S/ZPhase gates, weighted H-wires become
// MUL+H pairs, Z-X simple cross edges CX, Z-Z H cross edges CZ. The
// result acts identically to the diagram; it is not guaranteed to be the
// syntactic gate list the diagram was compiled from (a SWAP, for example,
// comes back as its three controlled-shift fragments).
func Circuit(g *diagram.Diagram) (*circuit.Circuit, error) {
	inputs, outputs := g.Inputs(), g.Outputs()
	if len(inputs) == 0 || len(outputs) != len(inputs) {
		return nil, fmt.Errorf("%w: %d inputs, %d outputs", ErrNotCircuitLike, len(inputs), len(outputs))
	}
	for _, v := range g.Vertices() {
		if g.Qudit(v) < 0 || g.Row(v) < 0 {
			return nil, fmt.Errorf("%w: vertex %d has no layout position", ErrNotCircuitLike, v)
		}
	}

	c, err := circuit.New(len(inputs), g.Dim)
	if err != nil {
		return nil, err
	}
	w := &walker{
		g:        g,
		c:        c,
		done:     make(map[int]bool, g.NumVertices()),
		prev:     make([]int, len(inputs)),
		finished: make([]bool, len(inputs)),
	}
	for q, v := range inputs {
		if g.Qudit(v) != q {
			return nil, fmt.Errorf("%w: input %d laid out on qudit %d", ErrNotCircuitLike, q, g.Qudit(v))
		}
		w.prev[q] = v
		w.done[v] = true
	}
	if err := w.run(); err != nil {
		return nil, err
	}
	return c, nil
}

type walker struct {
	g        *diagram.Diagram
	c        *circuit.Circuit
	done     map[int]bool
	prev     []int
	finished []bool
}

// emit appends a gate, cancelling antipode pairs on the same wire and
// folding an antipode into a following linear X rotation. The compiler
// inserts antipode-cancelling spiders around its X and CX fragments;
// these two peepholes make those fragments round-trip to single gates.
func (w *walker) emit(g circuit.Gate) error {
	gates := w.c.Gates
	if n := len(gates); n > 0 {
		last := gates[n-1]
		if g.Kind == circuit.KindNEG && last.Kind == circuit.KindNEG && last.Target == g.Target {
			w.c.Gates = gates[:n-1]
			return nil
		}
		if g.Kind == circuit.KindXPhase && g.Phase.Y == 0 &&
			last.Kind == circuit.KindNEG && last.Target == g.Target {
			w.c.Gates = gates[:n-1]
			if phase.Mod(g.Phase.X, w.g.Dim) == 0 {
				return nil
			}
			return w.c.Add(circuit.XGate(g.Target, g.Phase.X))
		}
	}
	return w.c.Add(g)
}

// next returns the sole unconsumed vertex ahead of the wire front of q.
func (w *walker) next(q int) (int, error) {
	found, n := -1, 0
	for _, u := range w.g.Neighbors(w.prev[q]) {
		if !w.done[u] && w.g.Qudit(u) == q {
			found = u
			n++
		}
	}
	if n != 1 {
		return 0, fmt.Errorf("%w: wire %d has %d continuations", ErrNotCircuitLike, q, n)
	}
	return found, nil
}

// emitStep translates the wire edge from the front of q to v: a single
// plain wire is silent, an H-wire of weight h is MUL_h followed by H.
func (w *walker) emitStep(q, v int) error {
	e := w.g.EdgeBetween(w.prev[q], v)
	switch {
	case e.Had != 0 && e.Simple != 0:
		return fmt.Errorf("%w: compound wire on qudit %d", ErrNotCircuitLike, q)
	case e.Simple != 0:
		if e.Simple != 1 {
			return fmt.Errorf("%w: simple wire of multiplicity %d", ErrNotCircuitLike, e.Simple)
		}
		return nil
	case e.Had != 0:
		if e.Had != 1 {
			if err := w.emit(circuit.MULGate(q, e.Had)); err != nil {
				return err
			}
		}
		return w.emit(circuit.HGate(q, 1))
	default:
		return fmt.Errorf("%w: wire %d broken before vertex %d", ErrNotCircuitLike, q, v)
	}
}

// advanceTo consumes the cross partner u on wire q, translating its
// incoming wire edge first.
func (w *walker) advanceTo(q, u int) error {
	v, err := w.next(q)
	if err != nil {
		return err
	}
	if v != u {
		return fmt.Errorf("%w: cross partner %d is not at the front of wire %d", ErrNotCircuitLike, u, q)
	}
	if err := w.emitStep(q, u); err != nil {
		return err
	}
	w.done[u] = true
	w.prev[q] = u
	return nil
}

func (w *walker) run() error {
	g := w.g
	for {
		// Pick the wire whose next vertex sits lowest in the layout.
		q, v := -1, 0
		for wq := range w.prev {
			if w.finished[wq] {
				continue
			}
			u, err := w.next(wq)
			if err != nil {
				return err
			}
			if q < 0 || g.Row(u) < g.Row(v) || (g.Row(u) == g.Row(v) && g.Qudit(u) < g.Qudit(v)) {
				q, v = wq, u
			}
		}
		if q < 0 {
			return nil
		}

		if g.Type(v) == diagram.Boundary {
			if v != g.Outputs()[q] {
				return fmt.Errorf("%w: boundary %d inside wire %d", ErrNotCircuitLike, v, q)
			}
			if err := w.emitStep(q, v); err != nil {
				return err
			}
			w.done[v] = true
			w.prev[q] = v
			w.finished[q] = true
			continue
		}

		if err := w.emitStep(q, v); err != nil {
			return err
		}
		w.done[v] = true
		w.prev[q] = v

		cross := -1
		for _, u := range g.Neighbors(v) {
			if g.Qudit(u) != q {
				if cross >= 0 {
					return fmt.Errorf("%w: vertex %d crosses wires twice", ErrNotCircuitLike, v)
				}
				cross = u
			}
		}
		if cross >= 0 {
			if err := w.crossGate(q, v, cross); err != nil {
				return err
			}
			continue
		}

		if err := w.spiderGate(q, v); err != nil {
			return err
		}
	}
}

// crossGate translates a two-qudit fragment rooted at v with partner u.
func (w *walker) crossGate(q, v, u int) error {
	g := w.g
	if w.done[u] {
		return fmt.Errorf("%w: cross partner %d already consumed", ErrNotCircuitLike, u)
	}
	qu := g.Qudit(u)
	e := g.EdgeBetween(v, u)
	if e.Had != 0 && e.Simple != 0 {
		return fmt.Errorf("%w: compound cross edge %d-%d", ErrNotCircuitLike, v, u)
	}
	tv, tu := g.Type(v), g.Type(u)
	// The compiler's controlled fragments keep their X spiders phase-free;
	// a phase there has no trailing-rotation translation on this wire, so
	// the shape is rejected rather than extracted wrongly.
	if tv == diagram.XSpider && !g.Phase(v).IsZero() {
		return fmt.Errorf("%w: phased X spider %d in a cross fragment", ErrNotCircuitLike, v)
	}
	if tu == diagram.XSpider && !g.Phase(u).IsZero() {
		return fmt.Errorf("%w: phased X spider %d in a cross fragment", ErrNotCircuitLike, u)
	}
	switch {
	case tv == diagram.ZSpider && tu == diagram.ZSpider && e.IsHadamard():
		if err := w.advanceTo(qu, u); err != nil {
			return err
		}
		if err := w.emit(circuit.CZGate(q, qu, e.Had)); err != nil {
			return err
		}
	case tv == diagram.ZSpider && tu == diagram.XSpider && e.IsSimple():
		// Controlled shift: Z on the control wire, X on the target wire.
		// The bare fragment carries an antipode on the target.
		if err := w.advanceTo(qu, u); err != nil {
			return err
		}
		if err := w.emit(circuit.CXGate(q, qu, e.Simple)); err != nil {
			return err
		}
		if err := w.emit(circuit.NEGGate(qu)); err != nil {
			return err
		}
	case tv == diagram.XSpider && tu == diagram.ZSpider && e.IsSimple():
		if err := w.advanceTo(qu, u); err != nil {
			return err
		}
		if err := w.emit(circuit.CXGate(qu, q, e.Simple)); err != nil {
			return err
		}
		if err := w.emit(circuit.NEGGate(q)); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: cross edge %d-%d of types %v/%v", ErrNotCircuitLike, v, u, tv, tu)
	}
	// Phases riding on the fragment's Z spiders commute with the control
	// leg and come out as trailing rotations.
	if tv == diagram.ZSpider && !g.Phase(v).IsZero() {
		if err := w.emit(circuit.ZPhaseGate(q, g.Phase(v))); err != nil {
			return err
		}
	}
	if tu == diagram.ZSpider && !g.Phase(u).IsZero() {
		if err := w.emit(circuit.ZPhaseGate(qu, g.Phase(u))); err != nil {
			return err
		}
	}
	return nil
}

// spiderGate translates a single-wire spider into its rotation gate.
func (w *walker) spiderGate(q, v int) error {
	p := w.g.Phase(v)
	switch w.g.Type(v) {
	case diagram.ZSpider:
		switch {
		case p.IsZero():
			return nil
		case p.Y == 0:
			return w.emit(circuit.ZGate(q, p.X))
		case p.X == 0:
			return w.emit(circuit.SGate(q, p.Y))
		default:
			return w.emit(circuit.ZPhaseGate(q, p))
		}
	case diagram.XSpider:
		if p.IsZero() {
			return w.emit(circuit.NEGGate(q))
		}
		return w.emit(circuit.XPhaseGate(q, p))
	default:
		return fmt.Errorf("%w: vertex %d of type %v on wire %d", ErrNotCircuitLike, v, w.g.Type(v), q)
	}
}
