package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qzx-dev/go-qzx/pkg/diagram"
	"github.com/qzx-dev/go-qzx/pkg/phase"
)

func newDiagram(t *testing.T, d int) *diagram.Diagram {
	t.Helper()
	g, err := diagram.New(d)
	require.NoError(t, err)
	return g
}

func TestZFusePhasesAdd(t *testing.T) {
	g := newDiagram(t, 5)
	b1 := g.AddVertex(diagram.Boundary, phase.Zero(5))
	v1 := g.AddVertex(diagram.ZSpider, phase.New(5, 1, 2))
	v2 := g.AddVertex(diagram.ZSpider, phase.New(5, 3, 4))
	b2 := g.AddVertex(diagram.Boundary, phase.Zero(5))
	require.NoError(t, g.AddEdge(b1, v1, diagram.Plain(5, 1)))
	require.NoError(t, g.AddEdge(v1, v2, diagram.Plain(5, 1)))
	require.NoError(t, g.AddEdge(v2, b2, diagram.Plain(5, 1)))

	require.True(t, CheckZFuse(g, v1, v2))
	require.NoError(t, ZFuse(g, v1, v2))

	assert.False(t, g.Contains(v2))
	assert.True(t, g.Phase(v1).Equal(phase.New(5, 4, 1)), "phases add mod d")
	assert.True(t, g.Connected(v1, b2), "fused spider inherits the wire to b2")
}

func TestZFuseMergesNeighborEdges(t *testing.T) {
	g := newDiagram(t, 3)
	v1 := g.AddVertex(diagram.ZSpider, phase.Zero(3))
	v2 := g.AddVertex(diagram.ZSpider, phase.Zero(3))
	w := g.AddVertex(diagram.ZSpider, phase.Zero(3))
	require.NoError(t, g.AddEdge(v1, v2, diagram.Plain(3, 1)))
	require.NoError(t, g.AddEdge(v1, w, diagram.Hadamard(3, 1)))
	require.NoError(t, g.AddEdge(v2, w, diagram.Hadamard(3, 2)))

	require.NoError(t, ZFuse(g, v1, v2))

	// The two H-wires onto w pool to weight 0 and vanish.
	assert.False(t, g.Connected(v1, w))
}

func TestZFuseInconsistency(t *testing.T) {
	g := newDiagram(t, 3)
	v1 := g.AddVertex(diagram.ZSpider, phase.Zero(3))
	v2 := g.AddVertex(diagram.ZSpider, phase.Zero(3))
	require.NoError(t, g.AddEdge(v1, v2, diagram.Hadamard(3, 1)))

	assert.False(t, CheckZFuse(g, v1, v2))
	assert.ErrorIs(t, ZFuse(g, v1, v2), ErrRuleMatchInconsistency)
}

func TestZElimHadSimple(t *testing.T) {
	g := newDiagram(t, 5)
	v1 := g.AddVertex(diagram.ZSpider, phase.New(5, 1, 0))
	v := g.AddVertex(diagram.ZSpider, phase.Zero(5))
	v2 := g.AddVertex(diagram.XSpider, phase.Zero(5))
	require.NoError(t, g.AddEdge(v1, v, diagram.Hadamard(5, 2)))
	require.NoError(t, g.AddEdge(v, v2, diagram.Plain(5, 3)))

	require.True(t, CheckZElim(g, v))
	require.NoError(t, ZElim(g, v))

	assert.False(t, g.Contains(v))
	// Composed weight 2*3 = 6 = 1 mod 5; Z-X H-edges collapse to weight 1.
	assert.Equal(t, diagram.Hadamard(5, 1), g.EdgeBetween(v1, v2))
}

func TestZElimCancellingHadPair(t *testing.T) {
	g := newDiagram(t, 5)
	v1 := g.AddVertex(diagram.ZSpider, phase.New(5, 2, 0))
	v := g.AddVertex(diagram.ZSpider, phase.Zero(5))
	v2 := g.AddVertex(diagram.ZSpider, phase.New(5, 3, 0))
	require.NoError(t, g.AddEdge(v1, v, diagram.Hadamard(5, 2)))
	require.NoError(t, g.AddEdge(v, v2, diagram.Hadamard(5, 3)))

	require.True(t, CheckZElim(g, v))
	require.NoError(t, ZElim(g, v))
	// v1 and v2 fuse-collapse onto a plain wire.
	assert.Equal(t, diagram.Plain(5, 1), g.EdgeBetween(v1, v2))
}

func TestZElimRejectsNonCancellingHadPair(t *testing.T) {
	g := newDiagram(t, 5)
	v1 := g.AddVertex(diagram.ZSpider, phase.Zero(5))
	v := g.AddVertex(diagram.ZSpider, phase.Zero(5))
	v2 := g.AddVertex(diagram.ZSpider, phase.Zero(5))
	require.NoError(t, g.AddEdge(v1, v, diagram.Hadamard(5, 2)))
	require.NoError(t, g.AddEdge(v, v2, diagram.Hadamard(5, 2)))

	assert.False(t, CheckZElim(g, v))
}

func TestZElimInverseSimplePairBetweenX(t *testing.T) {
	g := newDiagram(t, 5)
	x1 := g.AddVertex(diagram.XSpider, phase.Zero(5))
	v := g.AddVertex(diagram.ZSpider, phase.Zero(5))
	x2 := g.AddVertex(diagram.XSpider, phase.Zero(5))
	require.NoError(t, g.AddEdge(x1, v, diagram.Plain(5, 2)))
	require.NoError(t, g.AddEdge(v, x2, diagram.Plain(5, 3)))

	require.True(t, CheckZElim(g, v), "2*3 = 1 mod 5")
	require.NoError(t, ZElim(g, v))
	assert.Equal(t, diagram.Plain(5, 1), g.EdgeBetween(x1, x2))
}

func TestZElimRejectsPhasedSpider(t *testing.T) {
	g := newDiagram(t, 3)
	v1 := g.AddVertex(diagram.ZSpider, phase.Zero(3))
	v := g.AddVertex(diagram.ZSpider, phase.New(3, 1, 0))
	v2 := g.AddVertex(diagram.XSpider, phase.Zero(3))
	require.NoError(t, g.AddEdge(v1, v, diagram.Hadamard(3, 1)))
	require.NoError(t, g.AddEdge(v, v2, diagram.Plain(3, 1)))

	assert.False(t, CheckZElim(g, v))
	assert.ErrorIs(t, ZElim(g, v), ErrRuleMatchInconsistency)
}

func TestXColorChangeSimpleEdges(t *testing.T) {
	g := newDiagram(t, 5)
	x := g.AddVertex(diagram.XSpider, phase.New(5, 1, 0))
	z := g.AddVertex(diagram.ZSpider, phase.Zero(5))
	require.NoError(t, g.AddEdge(x, z, diagram.Plain(5, 3)))

	require.NoError(t, XColorChange(g, x))

	assert.Equal(t, diagram.ZSpider, g.Type(x))
	assert.Equal(t, diagram.Hadamard(5, 3), g.EdgeBetween(x, z))
}

func TestXColorChangeHadEdgeToX(t *testing.T) {
	g := newDiagram(t, 5)
	x1 := g.AddVertex(diagram.XSpider, phase.Zero(5))
	x2 := g.AddVertex(diagram.XSpider, phase.Zero(5))
	require.NoError(t, g.AddEdge(x1, x2, diagram.Hadamard(5, 2)))

	require.NoError(t, XColorChange(g, x1))
	assert.Equal(t, diagram.Plain(5, 3), g.EdgeBetween(x1, x2), "H-weight 2 becomes simple -2 = 3 mod 5")
}

func TestXColorChangeHadEdgeToZInsertsSpider(t *testing.T) {
	g := newDiagram(t, 3)
	x := g.AddVertex(diagram.XSpider, phase.Zero(3))
	z := g.AddVertex(diagram.ZSpider, phase.Zero(3))
	require.NoError(t, g.AddEdge(x, z, diagram.Hadamard(3, 1)))

	require.NoError(t, XColorChange(g, x))

	assert.False(t, g.Connected(x, z))
	require.Equal(t, 3, g.NumVertices())
	mid := g.Neighbors(x)[0]
	assert.Equal(t, diagram.ZSpider, g.Type(mid))
	assert.True(t, g.Phase(mid).IsZero())
	assert.Equal(t, diagram.Hadamard(3, 1), g.EdgeBetween(x, mid))
	assert.Equal(t, diagram.Hadamard(3, 1), g.EdgeBetween(mid, z))
}

// localCompFixture builds a strictly-Clifford Z spider v with phase (a, z)
// connected by H-wires to three phased Z spiders.
func localCompFixture(t *testing.T, d, a, z int, weights [3]int) (*diagram.Diagram, int, [3]int) {
	g := newDiagram(t, d)
	v := g.AddVertex(diagram.ZSpider, phase.New(d, a, z))
	var ns [3]int
	for i, w := range weights {
		ns[i] = g.AddVertex(diagram.ZSpider, phase.New(d, i, 0))
		require.NoError(t, g.AddEdge(v, ns[i], diagram.Hadamard(d, w)))
	}
	return g, v, ns
}

func TestLocalComp(t *testing.T) {
	g, v, ns := localCompFixture(t, 5, 2, 1, [3]int{1, 2, 3})

	require.True(t, CheckLocalComp(g, v))
	require.NoError(t, LocalComp(g, v))
	assert.False(t, g.Contains(v))

	// z = 1 so z^-1 = 1. Neighbor i had phase (i, 0) and wire weight e:
	// it gains (-2e, -e^2).
	assert.True(t, g.Phase(ns[0]).Equal(phase.New(5, 0-2*1, -1)))
	assert.True(t, g.Phase(ns[1]).Equal(phase.New(5, 1-2*2, -4)))
	assert.True(t, g.Phase(ns[2]).Equal(phase.New(5, 2-2*3, -9)))

	// Pair {n_i, n_j} gains H-weight -e_i*e_j.
	assert.Equal(t, diagram.Hadamard(5, -1*2), g.EdgeBetween(ns[0], ns[1]))
	assert.Equal(t, diagram.Hadamard(5, -1*3), g.EdgeBetween(ns[0], ns[2]))
	assert.Equal(t, diagram.Hadamard(5, -2*3), g.EdgeBetween(ns[1], ns[2]))
}

func TestLocalCompRejectsPauli(t *testing.T) {
	g, v, _ := localCompFixture(t, 5, 2, 0, [3]int{1, 1, 1})
	assert.False(t, CheckLocalComp(g, v))
	assert.ErrorIs(t, LocalComp(g, v), ErrRuleMatchInconsistency)
}

func TestLocalCompRejectsXNeighbor(t *testing.T) {
	g := newDiagram(t, 5)
	v := g.AddVertex(diagram.ZSpider, phase.New(5, 0, 1))
	x := g.AddVertex(diagram.XSpider, phase.Zero(5))
	require.NoError(t, g.AddEdge(v, x, diagram.Hadamard(5, 1)))
	assert.False(t, CheckLocalComp(g, v))
}

func TestPivot(t *testing.T) {
	g := newDiagram(t, 5)
	u := g.AddVertex(diagram.ZSpider, phase.New(5, 1, 0))
	v := g.AddVertex(diagram.ZSpider, phase.New(5, 2, 0))
	n := g.AddVertex(diagram.ZSpider, phase.Zero(5)) // neighbor of u only
	m := g.AddVertex(diagram.ZSpider, phase.Zero(5)) // neighbor of v only
	w := g.AddVertex(diagram.ZSpider, phase.Zero(5)) // common neighbor
	require.NoError(t, g.AddEdge(u, v, diagram.Hadamard(5, 1)))
	require.NoError(t, g.AddEdge(u, n, diagram.Hadamard(5, 2)))
	require.NoError(t, g.AddEdge(u, w, diagram.Hadamard(5, 3)))
	require.NoError(t, g.AddEdge(v, m, diagram.Hadamard(5, 4)))
	require.NoError(t, g.AddEdge(v, w, diagram.Hadamard(5, 1)))

	require.True(t, CheckPivot(g, u, v))
	require.NoError(t, Pivot(g, u, v))

	assert.False(t, g.Contains(u))
	assert.False(t, g.Contains(v))

	// eps = 1. N(u) gains (-b*e_n, 0), N(v) gains (-a*f_m, 0), the common
	// neighbor both plus the quadratic term (0, -2*e_w*f_w).
	assert.True(t, g.Phase(n).Equal(phase.New(5, -2*2, 0)))
	assert.True(t, g.Phase(m).Equal(phase.New(5, -1*4, 0)))
	assert.True(t, g.Phase(w).Equal(phase.New(5, -2*3-1*1, -2*3*1)))

	// Cross wires: {n,m} gains -e_n*f_m, {n,w} gains -e_n*f_w, {w,m}
	// gains -e_w*f_m.
	assert.Equal(t, diagram.Hadamard(5, -2*4), g.EdgeBetween(n, m))
	assert.Equal(t, diagram.Hadamard(5, -2*1), g.EdgeBetween(n, w))
	assert.Equal(t, diagram.Hadamard(5, -3*4), g.EdgeBetween(w, m))
}

func TestPivotRequiresPauliPair(t *testing.T) {
	g := newDiagram(t, 5)
	u := g.AddVertex(diagram.ZSpider, phase.New(5, 1, 1))
	v := g.AddVertex(diagram.ZSpider, phase.New(5, 2, 0))
	require.NoError(t, g.AddEdge(u, v, diagram.Hadamard(5, 1)))
	assert.False(t, CheckPivot(g, u, v))
	assert.ErrorIs(t, Pivot(g, u, v), ErrRuleMatchInconsistency)
}

func TestPivotRequiresHadamardWire(t *testing.T) {
	g := newDiagram(t, 5)
	u := g.AddVertex(diagram.ZSpider, phase.New(5, 1, 0))
	v := g.AddVertex(diagram.ZSpider, phase.New(5, 2, 0))
	require.NoError(t, g.AddEdge(u, v, diagram.Plain(5, 1)))
	assert.False(t, CheckPivot(g, u, v))
}
