// Package optimizer rewrites qudit Clifford circuits at the gate level,
// normalising them by moving gates toward the end of the circuit: gates
// are combined and removed when trivial, Paulis are pushed through
// Cliffords, double Hadamards and SWAPs are pushed right, S gates are
// commuted past controlled gates, and Euler decompositions trade H;S;H
// chains for shorter ones. Every rewrite is an exact gate identity, so
// the circuit's action on Pauli operators is preserved step by step.
package optimizer

import (
	"errors"
	"fmt"

	"github.com/qzx-dev/go-qzx/internal/log"
	"github.com/qzx-dev/go-qzx/pkg/circuit"
	"github.com/qzx-dev/go-qzx/pkg/phase"
)

// ErrNonTerminating is returned when the rewrite loop exceeds its
// iteration bound, which indicates a bug in a rewrite rule rather than a
// property of the input.
var ErrNonTerminating = errors.New("gate optimization exceeded its iteration bound")

// DefaultMaxIterations bounds the outer rewrite loops.
const DefaultMaxIterations = 100000

// Report collects what an optimization run did.
type Report struct {
	Applied map[string]int
	// Steps records the rewrites in application order.
	Steps []string
}

func newReport() *Report {
	return &Report{Applied: make(map[string]int)}
}

// Total returns the total number of rewrite applications.
func (r *Report) Total() int {
	n := 0
	for _, c := range r.Applied {
		n += c
	}
	return n
}

// Engine runs gate-level optimization strategies over a circuit. The
// zero value is not usable; construct with NewEngine.
type Engine struct {
	MaxIterations int
	logger        log.Logger
}

// NewEngine returns an engine with the default iteration bound.
func NewEngine() *Engine {
	return &Engine{MaxIterations: DefaultMaxIterations, logger: log.Default()}
}

// SetLogger replaces the engine's logger.
func (e *Engine) SetLogger(l log.Logger) {
	e.logger = l
}

// Simple runs the basic strategy in place: combining, identity removal
// and the push-right rules for Paulis, double Hadamards, SWAPs, S gates
// and CZ-past-CX.
func (e *Engine) Simple(c *circuit.Circuit) (*Report, error) {
	return e.run(c, e.simpleLoop)
}

// SingleQudit runs Simple interleaved with the two Euler decompositions,
// which shorten chains of single-qudit gates.
func (e *Engine) SingleQudit(c *circuit.Circuit) (*Report, error) {
	return e.run(c, e.singleQuditLoop)
}

// Full runs SingleQudit extended with the Hadamard CZ/CX exchange and
// the two CX-pair transformations.
func (e *Engine) Full(c *circuit.Circuit) (*Report, error) {
	return e.run(c, e.fullLoop)
}

func (e *Engine) run(c *circuit.Circuit, strategy func(*rewriter) error) (*Report, error) {
	gates, err := lowerGates(c)
	if err != nil {
		return nil, err
	}
	r := &rewriter{dim: c.Dim, gates: gates, rep: newReport()}
	if err := strategy(r); err != nil {
		return r.rep, err
	}
	c.Gates = r.gates
	e.logger.Debug("optimization finished", "applied", r.rep.Total(), "gates", len(c.Gates))
	return r.rep, nil
}

func (e *Engine) simpleLoop(r *rewriter) error {
	for iter := 0; ; iter++ {
		if iter > e.MaxIterations {
			return fmt.Errorf("%w: basic strategy after %d steps", ErrNonTerminating, iter)
		}
		if r.combineGates() {
			continue
		}
		if r.removeIdentity() {
			continue
		}
		if r.pushPauli() {
			continue
		}
		if r.pushDoubleHadamard() {
			continue
		}
		if r.pushSWAP() {
			continue
		}
		if r.pushSGate() {
			continue
		}
		if r.pushSPastCX() {
			continue
		}
		if r.pushCZPastCX() {
			continue
		}
		if r.pushMUL() {
			continue
		}
		return nil
	}
}

func (e *Engine) singleQuditLoop(r *rewriter) error {
	for iter := 0; ; iter++ {
		if iter > e.MaxIterations {
			return fmt.Errorf("%w: single-qudit strategy after %d steps", ErrNonTerminating, iter)
		}
		if err := e.simpleLoop(r); err != nil {
			return err
		}
		if r.eulerDecomp() {
			continue
		}
		if r.eulerDecomp2() {
			continue
		}
		return nil
	}
}

func (e *Engine) fullLoop(r *rewriter) error {
	for iter := 0; ; iter++ {
		if iter > e.MaxIterations {
			return fmt.Errorf("%w: full strategy after %d steps", ErrNonTerminating, iter)
		}
		if err := e.singleQuditLoop(r); err != nil {
			return err
		}
		if r.pushHGate() {
			continue
		}
		if r.transformCXToSwap() {
			continue
		}
		if r.togglePairOfCX() {
			continue
		}
		return nil
	}
}

// lowerGates maps the input onto the closed rewrite gate set
// {Z, S, X, H, CX, CZ, SWAP, MUL}: NEG becomes H^2, a Z rotation splits
// into its Z and S components, and an X rotation is the Fourier
// conjugate H;Z^x;S^y;H of the Z rotation with the same phase.
func lowerGates(c *circuit.Circuit) ([]circuit.Gate, error) {
	out := make([]circuit.Gate, 0, len(c.Gates))
	for _, g := range c.Gates {
		switch g.Kind {
		case circuit.KindNEG:
			if phase.Mod(g.Reps, 2) == 1 {
				out = append(out, circuit.HGate(g.Target, 2))
			}
		case circuit.KindZPhase, circuit.KindXPhase:
			p := g.Phase.Scale(g.Reps)
			x := g.Kind == circuit.KindXPhase
			if x {
				out = append(out, circuit.HGate(g.Target, 1))
			}
			if v := phase.Mod(p.X, c.Dim); v != 0 {
				out = append(out, circuit.ZGate(g.Target, v))
			}
			if v := phase.Mod(p.Y, c.Dim); v != 0 {
				out = append(out, circuit.SGate(g.Target, v))
			}
			if x {
				out = append(out, circuit.HGate(g.Target, 1))
			}
		case circuit.KindMUL:
			if _, err := phase.Inverse(g.Value, c.Dim); err != nil {
				return nil, fmt.Errorf("%w: mul value %d mod %d", circuit.ErrUnsupportedGate, g.Value, c.Dim)
			}
			out = append(out, g)
		default:
			out = append(out, g)
		}
	}
	return out, nil
}

// rewriter holds the working gate list. All rules rewrite it in place
// and return whether they changed anything; each applies at most one
// rewrite per call so every step is a small atomic identity.
type rewriter struct {
	dim   int
	gates []circuit.Gate
	rep   *Report
}

func (r *rewriter) step(name string) {
	r.rep.Applied[name]++
	r.rep.Steps = append(r.rep.Steps, name)
}

func (r *rewriter) removeAt(i int) {
	r.gates = append(r.gates[:i], r.gates[i+1:]...)
}

func (r *rewriter) insertAt(i int, gs ...circuit.Gate) {
	tail := append([]circuit.Gate{}, r.gates[i:]...)
	r.gates = append(append(r.gates[:i], gs...), tail...)
}

func touches(g circuit.Gate, q int) bool {
	return g.Target == q || (g.Kind.TwoQudit() && g.Control == q)
}

// otherWire returns the wire of a two-qudit gate that is not q.
func otherWire(g circuit.Gate, q int) int {
	if g.Control == q {
		return g.Target
	}
	return g.Control
}

// nextOn returns the first gate after i acting on any of the wires, or
// -1 if the wires are free to the end of the circuit.
func (r *rewriter) nextOn(i int, qs ...int) int {
	for j := i + 1; j < len(r.gates); j++ {
		for _, q := range qs {
			if touches(r.gates[j], q) {
				return j
			}
		}
	}
	return -1
}

// prevOn returns the last gate before i acting on the wire, or -1.
func (r *rewriter) prevOn(i, q int) int {
	for j := i - 1; j >= 0; j-- {
		if touches(r.gates[j], q) {
			return j
		}
	}
	return -1
}

// soleChild returns the successor of gate i if the next gate is the same
// on every wire of i that has one, and -1 when i has no successor or
// distinct successors per wire.
func (r *rewriter) soleChild(i int) int {
	g := r.gates[i]
	jt := r.nextOn(i, g.Target)
	if !g.Kind.TwoQudit() {
		return jt
	}
	jc := r.nextOn(i, g.Control)
	switch {
	case jt < 0:
		return jc
	case jc < 0:
		return jt
	case jt == jc:
		return jt
	default:
		return -1
	}
}

// combineGates repeatedly merges adjacent gates of the same kind on the
// same wires. CZ merges regardless of orientation; CX and SWAP only
// with matching control and target.
func (r *rewriter) combineGates() bool {
	success := false
	for r.combineOnce() {
		success = true
	}
	if success {
		r.step("combine-gates")
	}
	return success
}

func (r *rewriter) combineOnce() bool {
	for i := range r.gates {
		j := r.soleChild(i)
		if j < 0 {
			continue
		}
		a, b := r.gates[i], r.gates[j]
		if a.Kind != b.Kind {
			continue
		}
		switch {
		case !a.Kind.TwoQudit():
			if a.Target != b.Target {
				continue
			}
		case a.Kind == circuit.KindCZ:
			if !sameWirePair(a, b) {
				continue
			}
		default:
			if a.Target != b.Target || a.Control != b.Control {
				continue
			}
		}
		if a.Kind == circuit.KindMUL {
			r.gates[i].Value = phase.Mod(a.Value*b.Value, r.dim)
		} else {
			r.gates[i].Reps = a.Reps + b.Reps
		}
		r.removeAt(j)
		return true
	}
	return false
}

func sameWirePair(a, b circuit.Gate) bool {
	return (a.Target == b.Target && a.Control == b.Control) ||
		(a.Target == b.Control && a.Control == b.Target)
}

// removeIdentity removes one gate whose exponent makes it trivial.
func (r *rewriter) removeIdentity() bool {
	for i, g := range r.gates {
		if !r.isIdentity(g) {
			continue
		}
		r.removeAt(i)
		r.step("remove-identity")
		return true
	}
	return false
}

func (r *rewriter) isIdentity(g circuit.Gate) bool {
	switch g.Kind {
	case circuit.KindZ, circuit.KindX, circuit.KindS, circuit.KindCZ, circuit.KindCX:
		return phase.Mod(g.Reps, r.dim) == 0
	case circuit.KindH:
		return phase.Mod(g.Reps, 4) == 0
	case circuit.KindSWAP:
		return phase.Mod(g.Reps, 2) == 0
	case circuit.KindMUL:
		return phase.Mod(g.Value, r.dim) == 1
	}
	return false
}

// pushPauli pushes one Pauli gate a step to the right. Z before X is the
// normal order; through H the Pauli changes color, through S an X emits
// a Z, and through controlled gates the commutation relations of the
// exponentiated gate apply: Z^a past the target of CX^b emits Z^{-ab} on
// the control, X^a past the control of CX^b emits X^{ab} on the target,
// and X^a past CZ^k emits Z^{-ak} on the far wire.
func (r *rewriter) pushPauli() bool {
	for i, g := range r.gates {
		if g.Kind != circuit.KindZ && g.Kind != circuit.KindX {
			continue
		}
		j := r.nextOn(i, g.Target)
		if j < 0 {
			continue
		}
		c := r.gates[j]
		switch c.Kind {
		case circuit.KindZ, circuit.KindX:
			if g.Kind == circuit.KindX && c.Kind == circuit.KindZ {
				r.gates[i], r.gates[j] = c, g
				r.step("push-pauli")
				return true
			}
		case circuit.KindH:
			h := phase.Mod(c.Reps, 4)
			if h == 0 {
				continue
			}
			c.Reps = h
			p := g
			switch {
			case h == 2:
				p.Reps = -p.Reps
			case g.Kind == circuit.KindZ:
				p = circuit.XGate(g.Target, g.Reps)
				if h == 3 {
					p.Reps = -g.Reps
				}
			default:
				p = circuit.ZGate(g.Target, -g.Reps)
				if h == 3 {
					p.Reps = g.Reps
				}
			}
			r.gates[i], r.gates[j] = c, p
			r.step("push-pauli")
			return true
		case circuit.KindS:
			if g.Kind == circuit.KindZ {
				r.gates[i], r.gates[j] = c, g
			} else {
				// X^a;S^s = S^s;Z^{-as};X^a
				r.gates[i], r.gates[j] = c, g
				r.insertAt(j, circuit.ZGate(g.Target, -g.Reps*c.Reps))
			}
			r.step("push-pauli")
			return true
		case circuit.KindCZ:
			r.removeAt(i)
			if g.Kind == circuit.KindZ {
				r.insertAt(j, g)
			} else {
				r.insertAt(j, g, circuit.ZGate(otherWire(c, g.Target), -g.Reps*c.Reps))
			}
			r.step("push-pauli")
			return true
		case circuit.KindCX:
			onControl := c.Control == g.Target
			r.removeAt(i)
			switch {
			case (onControl && g.Kind == circuit.KindZ) || (!onControl && g.Kind == circuit.KindX):
				r.insertAt(j, g)
			case g.Kind == circuit.KindZ:
				r.insertAt(j, g, circuit.ZGate(c.Control, -g.Reps*c.Reps))
			default:
				r.insertAt(j, g, circuit.XGate(c.Target, g.Reps*c.Reps))
			}
			r.step("push-pauli")
			return true
		case circuit.KindSWAP:
			r.removeAt(i)
			g.Target = otherWire(c, g.Target)
			r.insertAt(j, g)
			r.step("push-pauli")
			return true
		case circuit.KindMUL:
			// Z^a;MUL_v = MUL_v;Z^{a/v} and X^a;MUL_v = MUL_v;X^{av}.
			vInv, err := phase.Inverse(c.Value, r.dim)
			if err != nil {
				continue
			}
			if g.Kind == circuit.KindZ {
				g.Reps = phase.Mod(g.Reps*vInv, r.dim)
			} else {
				g.Reps = phase.Mod(g.Reps*c.Value, r.dim)
			}
			r.gates[i], r.gates[j] = c, g
			r.step("push-pauli")
			return true
		}
	}
	return false
}

// pushDoubleHadamard pushes one H^2 a step to the right. It stops at
// Paulis and multipliers so the full strategy terminates; through CX and
// CZ it turns them into their adjoint, through SWAP it changes wire, and
// it commutes with S since the S phase is an even function of the basis
// label.
func (r *rewriter) pushDoubleHadamard() bool {
	for i, g := range r.gates {
		if g.Kind != circuit.KindH || phase.Mod(g.Reps, 4) != 2 {
			continue
		}
		j := r.nextOn(i, g.Target)
		if j < 0 {
			continue
		}
		c := r.gates[j]
		switch c.Kind {
		case circuit.KindH:
			r.gates[i].Reps = phase.Mod(g.Reps+c.Reps, 4)
			r.removeAt(j)
			r.step("push-double-hadamard")
			return true
		case circuit.KindCZ, circuit.KindCX:
			r.gates[j].Reps = -c.Reps
			r.removeAt(i)
			r.insertAt(j, g)
			r.step("push-double-hadamard")
			return true
		case circuit.KindSWAP:
			r.removeAt(i)
			g.Target = otherWire(c, g.Target)
			r.insertAt(j, g)
			r.step("push-double-hadamard")
			return true
		case circuit.KindS:
			r.gates[i], r.gates[j] = c, g
			r.step("push-double-hadamard")
			return true
		}
	}
	return false
}

// eulerDecomp applies the Euler decomposition
// H;S^s;H = S^{-1/s};H;S^{-s};MUL_{-s}, which removes one Hadamard per
// application.
func (r *rewriter) eulerDecomp() bool {
	for i, g := range r.gates {
		if g.Kind != circuit.KindH || phase.Mod(g.Reps, 4) != 1 {
			continue
		}
		j := r.nextOn(i, g.Target)
		if j < 0 || r.gates[j].Kind != circuit.KindS {
			continue
		}
		s := phase.Mod(r.gates[j].Reps, r.dim)
		if s == 0 {
			continue
		}
		k := r.nextOn(j, g.Target)
		if k < 0 || r.gates[k].Kind != circuit.KindH || phase.Mod(r.gates[k].Reps, 4) != 1 {
			continue
		}
		sInv, err := phase.Inverse(s, r.dim)
		if err != nil {
			continue
		}
		t := g.Target
		r.gates[i] = circuit.SGate(t, phase.Mod(-sInv, r.dim))
		r.gates[j] = circuit.HGate(t, 1)
		r.gates[k] = circuit.SGate(t, phase.Mod(-s, r.dim))
		r.insertAt(k+1, circuit.MULGate(t, phase.Mod(-s, r.dim)))
		r.step("euler-decomp")
		return true
	}
	return false
}

// eulerDecomp2 applies the inverse decomposition
// S^a;H;S^b = H;S^{-b};H;MUL_{1/b} for ab = 1, but only when an odd H
// precedes the pattern: the leading H then cancels into an H^2 that the
// basic strategy pushes away, so the pair of rules cannot loop.
func (r *rewriter) eulerDecomp2() bool {
	for i, g := range r.gates {
		if g.Kind != circuit.KindS {
			continue
		}
		p := r.prevOn(i, g.Target)
		if p < 0 || r.gates[p].Kind != circuit.KindH || phase.Mod(r.gates[p].Reps, 2) != 1 {
			continue
		}
		j := r.nextOn(i, g.Target)
		if j < 0 || r.gates[j].Kind != circuit.KindH || phase.Mod(r.gates[j].Reps, 4) != 1 {
			continue
		}
		k := r.nextOn(j, g.Target)
		if k < 0 || r.gates[k].Kind != circuit.KindS {
			continue
		}
		b := phase.Mod(r.gates[k].Reps, r.dim)
		if b == 0 || phase.Mod(g.Reps*b, r.dim) != 1 {
			continue
		}
		bInv, err := phase.Inverse(b, r.dim)
		if err != nil {
			continue
		}
		t := g.Target
		r.gates[i] = circuit.HGate(t, 1)
		r.gates[j] = circuit.SGate(t, phase.Mod(-b, r.dim))
		r.gates[k] = circuit.HGate(t, 1)
		r.insertAt(k+1, circuit.MULGate(t, bInv))
		r.step("euler-decomp2")
		return true
	}
	return false
}

// pushSGate commutes one S past a CZ or past the control of a CX.
func (r *rewriter) pushSGate() bool {
	for i, g := range r.gates {
		if g.Kind != circuit.KindS {
			continue
		}
		j := r.nextOn(i, g.Target)
		if j < 0 {
			continue
		}
		c := r.gates[j]
		if c.Kind != circuit.KindCZ && !(c.Kind == circuit.KindCX && c.Control == g.Target) {
			continue
		}
		r.removeAt(i)
		r.insertAt(j, g)
		r.step("commute-s")
		return true
	}
	return false
}

// pushSPastCX applies
// S^a(t);CX^b(c,t) = CX^b;S^a(t);S^{ab^2}(c);CZ^{-ab}
// once. The emitted gates are all diagonal, so their mutual order is
// free.
func (r *rewriter) pushSPastCX() bool {
	for i, g := range r.gates {
		if g.Kind != circuit.KindS {
			continue
		}
		j := r.nextOn(i, g.Target)
		if j < 0 {
			continue
		}
		c := r.gates[j]
		if c.Kind != circuit.KindCX || c.Target != g.Target {
			continue
		}
		a, b := g.Reps, c.Reps
		r.removeAt(i)
		r.insertAt(j,
			circuit.SGate(c.Target, a),
			circuit.SGate(c.Control, a*b*b),
			circuit.CZGate(c.Control, c.Target, -a*b))
		r.step("push-s-past-cx")
		return true
	}
	return false
}

// pushCZPastCX applies
// CZ^a;CX^b(c,t) = CX^b;CZ^a;S^{-2ab}(c)
// for a CZ directly followed by a CX on the same wire pair.
func (r *rewriter) pushCZPastCX() bool {
	for i, g := range r.gates {
		if g.Kind != circuit.KindCZ {
			continue
		}
		j := r.soleChild(i)
		if j < 0 {
			continue
		}
		c := r.gates[j]
		if c.Kind != circuit.KindCX || !sameWirePair(g, c) {
			continue
		}
		r.gates[i], r.gates[j] = c, g
		r.insertAt(j+1, circuit.SGate(c.Control, -2*g.Reps*c.Reps))
		r.step("push-cz-past-cx")
		return true
	}
	return false
}

// pushHGate exchanges an odd H with a following controlled gate:
// H(t);CX^a(c,t) = CZ^{-a};H(t), H^3(t);CX^a = CZ^a;H^3(t),
// H(t);CZ^a = CX^a;H(t), H^3(t);CZ^a = CX^{-a};H^3(t).
func (r *rewriter) pushHGate() bool {
	for i, g := range r.gates {
		if g.Kind != circuit.KindH || phase.Mod(g.Reps, 2) != 1 {
			continue
		}
		j := r.nextOn(i, g.Target)
		if j < 0 {
			continue
		}
		c := r.gates[j]
		if !(c.Kind == circuit.KindCZ || (c.Kind == circuit.KindCX && c.Target == g.Target)) {
			continue
		}
		control := otherWire(c, g.Target)
		single := phase.Mod(g.Reps, 4) == 1
		var ng circuit.Gate
		if c.Kind == circuit.KindCZ {
			reps := c.Reps
			if !single {
				reps = -reps
			}
			ng = circuit.CXGate(control, g.Target, reps)
		} else {
			reps := -c.Reps
			if !single {
				reps = c.Reps
			}
			ng = circuit.CZGate(control, g.Target, reps)
		}
		r.removeAt(i)
		r.gates[j-1] = ng
		r.insertAt(j, g)
		r.step("push-h")
		return true
	}
	return false
}

// transformCXToSwap rewrites a pair CX^a(c,t);CX^b(t,c) with ab = -1
// into CX^{-b}(t,c);SWAP;MUL_a(t);MUL_{-a^-1}(c), where the multipliers
// degenerate to a single H^2 when a = 1 or a = -1.
func (r *rewriter) transformCXToSwap() bool {
	for i, g := range r.gates {
		if g.Kind != circuit.KindCX {
			continue
		}
		j := r.soleChild(i)
		if j < 0 {
			continue
		}
		c := r.gates[j]
		if c.Kind != circuit.KindCX || c.Target != g.Control || c.Control != g.Target {
			continue
		}
		if phase.Mod(g.Reps*c.Reps+1, r.dim) != 0 {
			continue
		}
		a := g.Reps
		aInv, err := phase.Inverse(a, r.dim)
		if err != nil {
			continue
		}
		r.gates[i] = circuit.CXGate(c.Control, c.Target, -c.Reps)
		r.gates[j] = circuit.SWAPGate(g.Control, g.Target)
		switch {
		case phase.Mod(a, r.dim) == 1:
			r.insertAt(j+1, circuit.HGate(g.Control, 2))
		case phase.Mod(a+1, r.dim) == 0:
			r.insertAt(j+1, circuit.HGate(g.Target, 2))
		default:
			r.insertAt(j+1,
				circuit.MULGate(g.Target, phase.Mod(a, r.dim)),
				circuit.MULGate(g.Control, phase.Mod(-aInv, r.dim)))
		}
		r.step("cx-pair-to-swap")
		return true
	}
	return false
}

// togglePairOfCX reverses a pair CX^a(c,t);CX^b(t,c) with c := ab+1
// invertible:
// CX^a(c,t);CX^b(t,c) = CX^{bc^-1}(t,c);CX^{ac}(c,t);MUL_{c^-1}(t);MUL_c(c)
// with both multipliers degenerating to H^2 when c = -1. Only applied
// when another CX follows the pair, which prevents a loop with gate
// combining.
func (r *rewriter) togglePairOfCX() bool {
	for i, g := range r.gates {
		if g.Kind != circuit.KindCX {
			continue
		}
		j := r.soleChild(i)
		if j < 0 {
			continue
		}
		c := r.gates[j]
		if c.Kind != circuit.KindCX || c.Target != g.Control || c.Control != g.Target {
			continue
		}
		cc := phase.Mod(g.Reps*c.Reps+1, r.dim)
		if cc == 0 {
			continue
		}
		k := r.soleChild(j)
		if k < 0 || r.gates[k].Kind != circuit.KindCX {
			continue
		}
		ccInv, err := phase.Inverse(cc, r.dim)
		if err != nil {
			continue
		}
		r.gates[i] = circuit.CXGate(c.Control, c.Target, phase.Mod(c.Reps*ccInv, r.dim))
		r.gates[j] = circuit.CXGate(g.Control, g.Target, phase.Mod(g.Reps*cc, r.dim))
		if phase.Mod(cc+1, r.dim) == 0 {
			r.insertAt(j+1, circuit.HGate(g.Target, 2), circuit.HGate(g.Control, 2))
		} else {
			r.insertAt(j+1,
				circuit.MULGate(g.Target, ccInv),
				circuit.MULGate(g.Control, cc))
		}
		r.step("toggle-cx-pair")
		return true
	}
	return false
}

// pushMUL pushes one multiplier a step to the right, rescaling what it
// passes: MUL_v;S^s = S^{sv^2};MUL_v, an odd H inverts the value, the
// exponent of a controlled gate rescales by v or 1/v depending on the
// wire, and a SWAP retargets. It stops at Paulis, which pushPauli moves
// past the multiplier from the other side.
func (r *rewriter) pushMUL() bool {
	for i, g := range r.gates {
		if g.Kind != circuit.KindMUL {
			continue
		}
		v := phase.Mod(g.Value, r.dim)
		vInv, err := phase.Inverse(v, r.dim)
		if err != nil {
			continue
		}
		j := r.nextOn(i, g.Target)
		if j < 0 {
			continue
		}
		c := r.gates[j]
		switch c.Kind {
		case circuit.KindS:
			c.Reps = phase.Mod(c.Reps*v*v, r.dim)
			r.gates[i], r.gates[j] = c, g
			r.step("push-mul")
			return true
		case circuit.KindH:
			if phase.Mod(c.Reps, 2) == 1 {
				g.Value = vInv
			}
			r.gates[i], r.gates[j] = c, g
			r.step("push-mul")
			return true
		case circuit.KindCZ:
			r.removeAt(i)
			r.gates[j-1].Reps = phase.Mod(c.Reps*v, r.dim)
			r.insertAt(j, g)
			r.step("push-mul")
			return true
		case circuit.KindCX:
			r.removeAt(i)
			if c.Target == g.Target {
				r.gates[j-1].Reps = phase.Mod(c.Reps*vInv, r.dim)
			} else {
				r.gates[j-1].Reps = phase.Mod(c.Reps*v, r.dim)
			}
			r.insertAt(j, g)
			r.step("push-mul")
			return true
		case circuit.KindSWAP:
			r.removeAt(i)
			g.Target = otherWire(c, g.Target)
			r.insertAt(j, g)
			r.step("push-mul")
			return true
		}
	}
	return false
}

// pushSWAP pushes one SWAP a step to the right: through a controlled
// gate on its wire pair by conjugation, and past a following S or odd H
// by retargeting the single-qudit gate and moving it before the SWAP.
// Paulis are left in place to avoid looping with pushPauli.
func (r *rewriter) pushSWAP() bool {
	for i, g := range r.gates {
		if g.Kind != circuit.KindSWAP {
			continue
		}
		jt := r.nextOn(i, g.Target)
		jc := r.nextOn(i, g.Control)
		if jt == jc && jt >= 0 {
			c := r.gates[jt]
			switch c.Kind {
			case circuit.KindCZ:
				r.gates[i], r.gates[jt] = c, g
				r.step("push-swap")
				return true
			case circuit.KindCX:
				r.gates[i] = circuit.CXGate(c.Target, c.Control, c.Reps)
				r.gates[jt] = g
				r.step("push-swap")
				return true
			}
			continue
		}
		for _, j := range []int{jt, jc} {
			if j < 0 {
				continue
			}
			c := r.gates[j]
			if c.Kind != circuit.KindS && !(c.Kind == circuit.KindH && phase.Mod(c.Reps, 2) == 1) {
				continue
			}
			if c.Target == g.Target {
				c.Target = g.Control
			} else {
				c.Target = g.Target
			}
			r.removeAt(j)
			r.insertAt(i, c)
			r.step("push-swap")
			return true
		}
	}
	return false
}
