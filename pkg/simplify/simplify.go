// Package simplify drives the rewrite rules to bring a qudit ZX-diagram
// into graph-like form and further into the affine-with-phases normal
// form, eliminating every internal spider the Clifford rules can reach.
package simplify

import (
	"errors"
	"fmt"

	"github.com/qzx-dev/go-qzx/internal/log"
	"github.com/qzx-dev/go-qzx/pkg/diagram"
	"github.com/qzx-dev/go-qzx/pkg/phase"
	"github.com/qzx-dev/go-qzx/pkg/rules"
)

// ErrNonTerminating is returned when the rewrite loop exceeds its
// iteration bound, which indicates a bug in a rewrite rule rather than a
// property of the input.
var ErrNonTerminating = errors.New("simplification exceeded its iteration bound")

// DefaultMaxIterations bounds the outer rewrite loop. A Clifford diagram
// loses at least one spider per reduction round, so the bound is generous.
const DefaultMaxIterations = 100000

// Report collects what a simplification run did.
type Report struct {
	Applied     map[string]int
	Iterations  int
	Diagnostics []string
}

func newReport() *Report {
	return &Report{Applied: make(map[string]int)}
}

func (r *Report) count(rule string) {
	r.Applied[rule]++
}

func (r *Report) diagnose(format string, args ...interface{}) {
	r.Diagnostics = append(r.Diagnostics, fmt.Sprintf(format, args...))
}

// Total returns the total number of rule applications.
func (r *Report) Total() int {
	n := 0
	for _, c := range r.Applied {
		n += c
	}
	return n
}

// Engine runs the simplification passes over a diagram. The zero value is
// not usable; construct with NewEngine.
type Engine struct {
	MaxIterations int
	// ReverseScan makes every pass visit vertices highest ID first. The
	// normal form must not depend on it.
	ReverseScan bool
	logger      log.Logger
}

// NewEngine returns an engine with the default iteration bound.
func NewEngine() *Engine {
	return &Engine{MaxIterations: DefaultMaxIterations, logger: log.Default()}
}

// SetLogger replaces the engine's logger.
func (e *Engine) SetLogger(l log.Logger) {
	e.logger = l
}

// scan returns the vertex visiting order of a pass.
func (e *Engine) scan(vs []int) []int {
	if !e.ReverseScan {
		return vs
	}
	rev := make([]int, len(vs))
	for i, v := range vs {
		rev[len(vs)-1-i] = v
	}
	return rev
}

// IsGraphLike reports whether the diagram is in graph-like form: only Z
// spiders and boundaries, spiders joined exclusively by H-wires, no
// self-loops, every boundary wired to exactly one spider, and every
// spider wired to at most one boundary.
func IsGraphLike(g *diagram.Diagram) bool {
	for _, v := range g.Vertices() {
		t := g.Type(v)
		if t != diagram.ZSpider && t != diagram.Boundary {
			return false
		}
		if g.Connected(v, v) {
			return false
		}
	}
	for _, v := range g.Vertices() {
		if g.Type(v) != diagram.ZSpider {
			continue
		}
		boundaries := 0
		for _, n := range g.Neighbors(v) {
			switch g.Type(n) {
			case diagram.ZSpider:
				if g.EdgeBetween(v, n).IsSimple() {
					return false
				}
			case diagram.Boundary:
				boundaries++
			}
		}
		if boundaries > 1 {
			return false
		}
	}
	for _, v := range g.Vertices() {
		if g.Type(v) != diagram.Boundary {
			continue
		}
		if g.Degree(v) != 1 || g.Type(g.Neighbors(v)[0]) != diagram.ZSpider {
			return false
		}
	}
	return true
}

// ToGraphLike rewrites the diagram into graph-like form: every X spider
// is recolored, plain wires between spiders are fused away, removable
// identity spiders are eliminated, and the boundary conditions are
// restored with identity spiders where needed.
func (e *Engine) ToGraphLike(g *diagram.Diagram) (*Report, error) {
	rep := newReport()
	if err := e.toGraphLike(g, rep); err != nil {
		return rep, err
	}
	return rep, nil
}

func (e *Engine) toGraphLike(g *diagram.Diagram, rep *Report) error {
	for _, v := range g.Vertices() {
		if g.Type(v) != diagram.XSpider {
			continue
		}
		if err := rules.XColorChange(g, v); err != nil {
			if errors.Is(err, rules.ErrRuleMatchInconsistency) {
				rep.diagnose("color-change skipped at %d: %v", v, err)
				e.logger.Debug("rule skipped", "rule", "color-change", "vertex", v)
				continue
			}
			return err
		}
		rep.count("color-change")
	}

	for iter := 0; ; iter++ {
		if iter > e.MaxIterations {
			return fmt.Errorf("%w: graph-like pass after %d iterations", ErrNonTerminating, iter)
		}
		rep.Iterations++
		if e.fuseStep(g, rep) || e.elimStep(g, rep) {
			continue
		}
		break
	}
	// The boundary pass runs after the fuse/elim fixpoint: the identity
	// spiders it inserts are protective and must not be eliminated again.
	for iter := 0; e.boundaryStep(g, rep); iter++ {
		if iter > e.MaxIterations {
			return fmt.Errorf("%w: boundary pass after %d iterations", ErrNonTerminating, iter)
		}
		rep.Iterations++
	}
	return nil
}

// fuseStep applies one spider fusion in scan order.
func (e *Engine) fuseStep(g *diagram.Diagram, rep *Report) bool {
	for _, v1 := range e.scan(g.Vertices()) {
		for _, v2 := range e.scan(g.Neighbors(v1)) {
			if v2 == v1 || !rules.CheckZFuse(g, v1, v2) {
				continue
			}
			if err := rules.ZFuse(g, v1, v2); err != nil {
				rep.diagnose("z-fuse skipped at %d,%d: %v", v1, v2, err)
				e.logger.Debug("rule skipped", "rule", "z-fuse", "v1", v1, "v2", v2)
				continue
			}
			rep.count("z-fuse")
			return true
		}
	}
	return false
}

// elimStep applies one identity removal in scan order. Spiders adjacent
// to a boundary are kept so boundary wires stay attached to a spider,
// and so are spiders between two boundary-carrying spiders: removing one
// merges its neighbors' wires, and the fusion that follows would rebuild
// a spider wired to two boundaries for boundaryStep to split again.
func (e *Engine) elimStep(g *diagram.Diagram, rep *Report) bool {
	for _, v := range e.scan(g.Vertices()) {
		if !rules.CheckZElim(g, v) || e.touchesBoundary(g, v) || e.guardsBoundaries(g, v) {
			continue
		}
		if err := rules.ZElim(g, v); err != nil {
			rep.diagnose("z-elim skipped at %d: %v", v, err)
			e.logger.Debug("rule skipped", "rule", "z-elim", "vertex", v)
			continue
		}
		rep.count("z-elim")
		return true
	}
	return false
}

func (e *Engine) touchesBoundary(g *diagram.Diagram, v int) bool {
	for _, n := range g.Neighbors(v) {
		if g.Type(n) == diagram.Boundary {
			return true
		}
	}
	return false
}

// guardsBoundaries reports whether every neighbor of v carries a
// boundary of its own. Such a spider separates two boundary wires; the
// pairs boundaryStep inserts have this shape.
func (e *Engine) guardsBoundaries(g *diagram.Diagram, v int) bool {
	ns := g.Neighbors(v)
	if len(ns) == 0 {
		return false
	}
	for _, n := range ns {
		if !e.touchesBoundary(g, n) {
			return false
		}
	}
	return true
}

// boundaryStep restores one violated boundary condition: a bare
// boundary-to-boundary wire gets an identity spider, and a spider wired
// to more than one boundary sheds all but one of them onto inserted
// identity pairs joined by cancelling H-wires.
func (e *Engine) boundaryStep(g *diagram.Diagram, rep *Report) bool {
	for _, v := range g.Vertices() {
		if g.Type(v) != diagram.Boundary {
			continue
		}
		for _, n := range g.Neighbors(v) {
			if g.Type(n) != diagram.Boundary {
				continue
			}
			eo := g.EdgeBetween(v, n)
			g.RemoveEdge(v, n)
			z := g.AddVertex(diagram.ZSpider, phase.Zero(g.Dim))
			g.SetEdge(v, z, eo)
			g.SetEdge(z, n, diagram.Plain(g.Dim, 1))
			rep.count("boundary-spider")
			return true
		}
	}
	for _, v := range g.Vertices() {
		if g.Type(v) != diagram.ZSpider {
			continue
		}
		var bs []int
		for _, n := range g.Neighbors(v) {
			if g.Type(n) == diagram.Boundary {
				bs = append(bs, n)
			}
		}
		if len(bs) <= 1 {
			continue
		}
		// Detach every boundary except the last onto a pair of identity
		// spiders joined by H-wires of weights 1 and -1, which compose to
		// a plain wire.
		for _, b := range bs[:len(bs)-1] {
			eo := g.EdgeBetween(v, b)
			g.RemoveEdge(v, b)
			z1 := g.AddVertex(diagram.ZSpider, phase.Zero(g.Dim))
			z2 := g.AddVertex(diagram.ZSpider, phase.Zero(g.Dim))
			g.SetEdge(b, z1, eo)
			g.SetEdge(z1, z2, diagram.Hadamard(g.Dim, 1))
			g.SetEdge(z2, v, diagram.Hadamard(g.Dim, -1))
			rep.count("boundary-split")
		}
		return true
	}
	return false
}

// FullReduce brings the diagram to normal form: after the graph-like
// pass, every internal spider reachable by the Clifford rules is
// eliminated, preferring the pivot on adjacent Pauli pairs and falling
// back to local complementation on strictly Clifford spiders, with
// graph-like cleanup interleaved between eliminations.
func (e *Engine) FullReduce(g *diagram.Diagram) (*Report, error) {
	rep := newReport()
	if err := e.toGraphLike(g, rep); err != nil {
		return rep, err
	}
	for iter := 0; ; iter++ {
		if iter > e.MaxIterations {
			return rep, fmt.Errorf("%w: reduction after %d iterations", ErrNonTerminating, iter)
		}
		rep.Iterations++
		g.RemoveIsolated()
		if e.pivotStep(g, rep) || e.localCompStep(g, rep) {
			if err := e.toGraphLike(g, rep); err != nil {
				return rep, err
			}
			continue
		}
		e.logger.Debug("reduction finished",
			"iterations", rep.Iterations, "applied", rep.Total(), "vertices", g.NumVertices())
		return rep, nil
	}
}

// pivotStep applies one pivot on the first eligible internal Pauli pair
// in scan order.
func (e *Engine) pivotStep(g *diagram.Diagram, rep *Report) bool {
	for _, u := range e.scan(g.Vertices()) {
		if e.touchesBoundary(g, u) {
			continue
		}
		for _, v := range e.scan(g.Neighbors(u)) {
			if v == u || e.touchesBoundary(g, v) || !rules.CheckPivot(g, u, v) {
				continue
			}
			if err := rules.Pivot(g, u, v); err != nil {
				rep.diagnose("pivot skipped at %d,%d: %v", u, v, err)
				e.logger.Debug("rule skipped", "rule", "pivot", "u", u, "v", v)
				continue
			}
			rep.count("pivot")
			return true
		}
	}
	return false
}

// localCompStep applies one local complementation on the first eligible
// internal strictly Clifford spider in scan order.
func (e *Engine) localCompStep(g *diagram.Diagram, rep *Report) bool {
	for _, v := range e.scan(g.Vertices()) {
		if e.touchesBoundary(g, v) || !rules.CheckLocalComp(g, v) {
			continue
		}
		if err := rules.LocalComp(g, v); err != nil {
			rep.diagnose("local-comp skipped at %d: %v", v, err)
			e.logger.Debug("rule skipped", "rule", "local-comp", "vertex", v)
			continue
		}
		rep.count("local-comp")
		return true
	}
	return false
}
