// Package rules implements the rewrite rule catalogue for qudit
// ZX-diagrams. Every rule is a Check/Apply pair over a diagram: Check is
// side-effect free, Apply performs the rewrite and reports
// ErrRuleMatchInconsistency when the matched structure changed between the
// two calls.
package rules

import (
	"errors"
	"fmt"

	"github.com/qzx-dev/go-qzx/pkg/diagram"
	"github.com/qzx-dev/go-qzx/pkg/phase"
)

// ErrRuleMatchInconsistency is returned by an Apply whose match no longer
// holds. The simplification engine treats it as a skipped match, not a
// failure.
var ErrRuleMatchInconsistency = errors.New("rule match no longer holds")

// CheckZFuse reports whether v1 and v2 are Z spiders joined by a plain
// wire, the precondition for spider fusion.
func CheckZFuse(g *diagram.Diagram, v1, v2 int) bool {
	return g.Connected(v1, v2) &&
		g.Type(v1) == diagram.ZSpider && g.Type(v2) == diagram.ZSpider &&
		g.EdgeBetween(v1, v2).IsSimple()
}

// ZFuse fuses v2 into v1 along their plain wire: the phase of v2 is added
// to v1, every other edge of v2 is merged onto v1, and v2 is removed.
func ZFuse(g *diagram.Diagram, v1, v2 int) error {
	if !CheckZFuse(g, v1, v2) {
		return fmt.Errorf("%w: z-fuse %d,%d", ErrRuleMatchInconsistency, v1, v2)
	}
	g.AddToPhase(v1, g.Phase(v2))
	for _, v3 := range g.Neighbors(v2) {
		if v3 == v1 {
			continue
		}
		if err := g.AddEdge(v1, v3, g.EdgeBetween(v2, v3)); err != nil {
			return err
		}
	}
	g.RemoveVertex(v2)
	return nil
}

// CheckZElim reports whether v is a removable identity: a phase-zero Z
// spider of degree two whose incident edges are one of the four
// eliminable combinations.
func CheckZElim(g *diagram.Diagram, v int) bool {
	_, ok := zElimCase(g, v)
	return ok
}

type elimCase int

const (
	elimNone elimCase = iota
	elimHadSimple
	elimSimpleHad
	elimHadHad
	elimSimpleSimple
)

func zElimCase(g *diagram.Diagram, v int) (elimCase, bool) {
	if g.Type(v) != diagram.ZSpider || g.Degree(v) != 2 || !g.Phase(v).IsZero() {
		return elimNone, false
	}
	ns := g.Neighbors(v)
	v1, v2 := ns[0], ns[1]
	e1, e2 := g.EdgeBetween(v1, v), g.EdgeBetween(v, v2)
	switch {
	case e1.IsHadamard() && e2.IsSimple():
		return elimHadSimple, true
	case e1.IsSimple() && e2.IsHadamard():
		return elimSimpleHad, true
	case e1.IsHadamard() && e2.IsHadamard():
		// Opposite weights compose to the identity wire.
		if phase.Mod(e1.Had+e2.Had, g.Dim) == 0 {
			return elimHadHad, true
		}
	case e1.IsSimple() && e2.IsSimple():
		// Between X spiders, inverse simple multiplicities cancel.
		if g.Type(v1) != diagram.XSpider || g.Type(v2) != diagram.XSpider {
			return elimNone, false
		}
		inv, err := phase.Inverse(e2.Simple, g.Dim)
		if err == nil && phase.Mod(e1.Simple, g.Dim) == inv {
			return elimSimpleSimple, true
		}
	}
	return elimNone, false
}

// ZElim removes an identity Z spider of degree two, joining its two
// neighbors with the composed edge.
func ZElim(g *diagram.Diagram, v int) error {
	c, ok := zElimCase(g, v)
	if !ok {
		return fmt.Errorf("%w: z-elim %d", ErrRuleMatchInconsistency, v)
	}
	ns := g.Neighbors(v)
	v1, v2 := ns[0], ns[1]
	e1, e2 := g.EdgeBetween(v1, v), g.EdgeBetween(v, v2)

	var joined diagram.Edge
	switch c {
	case elimHadSimple:
		joined = diagram.Hadamard(g.Dim, e1.Had*e2.Simple)
	case elimSimpleHad:
		joined = diagram.Hadamard(g.Dim, e1.Simple*e2.Had)
	case elimHadHad, elimSimpleSimple:
		joined = diagram.Plain(g.Dim, 1)
	}
	g.RemoveVertex(v)
	return g.AddEdge(v1, v2, joined)
}

// CheckXColorChange reports whether v is an X spider.
func CheckXColorChange(g *diagram.Diagram, v int) bool {
	return g.Type(v) == diagram.XSpider
}

// XColorChange recolors the X spider v into a Z spider, pushing the color
// change onto its incident edges: plain wires of multiplicity s become
// H-wires of weight s, H-wires to another X spider become plain wires of
// multiplicity -h, and H-wires to a Z spider or boundary get an identity Z
// spider inserted between two unit H-wires.
func XColorChange(g *diagram.Diagram, v int) error {
	if !CheckXColorChange(g, v) {
		return fmt.Errorf("%w: color-change %d", ErrRuleMatchInconsistency, v)
	}
	g.SetType(v, diagram.ZSpider)
	for _, n := range g.Neighbors(v) {
		e := g.EdgeBetween(v, n)
		if !e.IsReduced() {
			return fmt.Errorf("%w: compound edge at %d-%d", ErrRuleMatchInconsistency, v, n)
		}
		nt := g.Type(n)
		switch {
		case e.IsHadamard() && (nt == diagram.ZSpider || nt == diagram.Boundary):
			g.RemoveEdge(v, n)
			mid := g.AddVertex(diagram.ZSpider, phase.Zero(g.Dim))
			if err := g.AddEdge(v, mid, diagram.Hadamard(g.Dim, 1)); err != nil {
				return err
			}
			if err := g.AddEdge(mid, n, diagram.Hadamard(g.Dim, 1)); err != nil {
				return err
			}
		case e.IsHadamard():
			g.SetEdge(v, n, diagram.Plain(g.Dim, -e.Had))
		case e.IsSimple():
			g.SetEdge(v, n, diagram.Hadamard(g.Dim, e.Simple))
		}
	}
	return nil
}

// CheckLocalComp reports whether local complementation applies about v: a
// Z spider with a strictly Clifford phase whose neighbors are all Z
// spiders. The diagram is assumed graph-like.
func CheckLocalComp(g *diagram.Diagram, v int) bool {
	if g.Type(v) != diagram.ZSpider || !g.Phase(v).IsStrictlyClifford() {
		return false
	}
	for _, n := range g.Neighbors(v) {
		if g.Type(n) != diagram.ZSpider {
			return false
		}
	}
	return true
}

// LocalComp performs local complementation about v and removes it. With
// phase (a, z) on v, z invertible, and H-weight e_n on each neighbor wire:
// neighbor n gains phase (-z^-1*a*e_n, -z^-1*e_n^2), and every neighbor
// pair n,m gains H-weight -z^-1*e_n*e_m.
func LocalComp(g *diagram.Diagram, v int) error {
	if !CheckLocalComp(g, v) {
		return fmt.Errorf("%w: local-comp %d", ErrRuleMatchInconsistency, v)
	}
	p := g.Phase(v)
	a, z := p.X, p.Y
	zInv, err := phase.Inverse(z, g.Dim)
	if err != nil {
		return fmt.Errorf("%w: local-comp %d: %v", ErrRuleMatchInconsistency, v, err)
	}
	ns := g.Neighbors(v)

	for _, n := range ns {
		e := g.EdgeBetween(v, n).Had
		g.AddToPhase(n, phase.New(g.Dim, -zInv*a*e, -zInv*e*e))
	}
	for i, n := range ns {
		for _, m := range ns[i+1:] {
			en := g.EdgeBetween(v, n).Had
			em := g.EdgeBetween(v, m).Had
			if err := g.AddEdge(n, m, diagram.Hadamard(g.Dim, -zInv*en*em)); err != nil {
				return err
			}
		}
	}
	g.RemoveVertex(v)
	return nil
}

// CheckPivot reports whether the pivot elimination applies to the pair
// u, v: two Pauli Z spiders joined by an H-wire of invertible weight,
// with all their other neighbors Z spiders.
func CheckPivot(g *diagram.Diagram, u, v int) bool {
	if g.Type(u) != diagram.ZSpider || g.Type(v) != diagram.ZSpider {
		return false
	}
	if !g.Phase(u).IsPauli() || !g.Phase(v).IsPauli() {
		return false
	}
	e := g.EdgeBetween(u, v)
	if !e.IsHadamard() || phase.Mod(e.Had, g.Dim) == 0 {
		return false
	}
	for _, n := range g.Neighbors(u) {
		if n != v && g.Type(n) != diagram.ZSpider {
			return false
		}
	}
	for _, n := range g.Neighbors(v) {
		if n != u && g.Type(n) != diagram.ZSpider {
			return false
		}
	}
	return true
}

// Pivot eliminates the adjacent Pauli pair u, v joined by an H-wire of
// invertible weight eps. Writing (a, 0) and (b, 0) for the phases, e_n for
// the H-weights on the remaining wires of u and f_m for those of v:
// every pair n in N(u), m in N(v) gains H-weight -eps^-1*e_n*f_m (summed
// over both roles for common neighbors), common neighbors additionally
// gain the quadratic phase (0, -2*eps^-1*e_w*f_w), the neighbors of u gain
// the linear phase (-eps^-1*b*e_n, 0), those of v gain (-eps^-1*a*f_m, 0),
// and both spiders are removed.
func Pivot(g *diagram.Diagram, u, v int) error {
	if !CheckPivot(g, u, v) {
		return fmt.Errorf("%w: pivot %d,%d", ErrRuleMatchInconsistency, u, v)
	}
	eps := g.EdgeBetween(u, v).Had
	epsInv, err := phase.Inverse(eps, g.Dim)
	if err != nil {
		return fmt.Errorf("%w: pivot %d,%d: %v", ErrRuleMatchInconsistency, u, v, err)
	}
	a, b := g.Phase(u).X, g.Phase(v).X

	uN := make(map[int]int) // neighbor -> H-weight
	for _, n := range g.Neighbors(u) {
		if n != v {
			uN[n] = g.EdgeBetween(u, n).Had
		}
	}
	vN := make(map[int]int)
	for _, m := range g.Neighbors(v) {
		if m != u {
			vN[m] = g.EdgeBetween(v, m).Had
		}
	}

	for n, en := range uN {
		g.AddToPhase(n, phase.New(g.Dim, -epsInv*b*en, 0))
	}
	for m, fm := range vN {
		g.AddToPhase(m, phase.New(g.Dim, -epsInv*a*fm, 0))
	}
	for w, ew := range uN {
		if fw, ok := vN[w]; ok {
			g.AddToPhase(w, phase.New(g.Dim, 0, -2*epsInv*ew*fw))
		}
	}

	// Connect the two neighborhoods. For an unordered pair {p, q} the new
	// H-weight is -eps^-1*(e_p*f_q + e_q*f_p), with absent weights zero;
	// self pairs (p == q) contribute nothing beyond the quadratic phase
	// already added.
	done := make(map[[2]int]bool)
	for n, en := range uN {
		for m, fm := range vN {
			if n == m {
				continue
			}
			key := [2]int{n, m}
			if m < n {
				key = [2]int{m, n}
			}
			if done[key] {
				continue
			}
			done[key] = true
			w := en * fm
			if eq, ok := uN[m]; ok {
				if fn, ok2 := vN[n]; ok2 {
					w += eq * fn
				}
			}
			if err := g.AddEdge(n, m, diagram.Hadamard(g.Dim, -epsInv*w)); err != nil {
				return err
			}
		}
	}
	g.RemoveVertex(u)
	g.RemoveVertex(v)
	return nil
}
