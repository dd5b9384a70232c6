package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qzx-dev/go-qzx/pkg/circuit"
	"github.com/qzx-dev/go-qzx/pkg/diagram"
	"github.com/qzx-dev/go-qzx/pkg/phase"
	"github.com/qzx-dev/go-qzx/pkg/symplectic"
)

func circuitOf(t *testing.T, qudits, dim int, gs ...circuit.Gate) *circuit.Circuit {
	t.Helper()
	c, err := circuit.New(qudits, dim)
	require.NoError(t, err)
	for _, g := range gs {
		require.NoError(t, c.Add(g))
	}
	return c
}

func extracted(t *testing.T, c *circuit.Circuit) *circuit.Circuit {
	t.Helper()
	g, err := c.ToDiagram()
	require.NoError(t, err)
	out, err := Circuit(g)
	require.NoError(t, err)
	require.Equal(t, c.Qudits, out.Qudits)
	require.Equal(t, c.Dim, out.Dim)
	return out
}

func expectGates(t *testing.T, c *circuit.Circuit, want ...circuit.Gate) {
	t.Helper()
	require.Len(t, c.Gates, len(want))
	for i, w := range want {
		g := c.Gates[i]
		assert.Equal(t, w.Kind, g.Kind, "gate %d kind", i)
		assert.Equal(t, w.Target, g.Target, "gate %d target", i)
		if w.Kind.TwoQudit() {
			assert.Equal(t, w.Control, g.Control, "gate %d control", i)
		}
		if w.Kind == circuit.KindMUL {
			assert.Equal(t, phase.Mod(w.Value, c.Dim), phase.Mod(g.Value, c.Dim), "gate %d value", i)
			continue
		}
		assert.Equal(t, phase.Mod(w.Reps, w.Order(c.Dim)), phase.Mod(g.Reps, g.Order(c.Dim)), "gate %d reps", i)
	}
}

func TestPhaseSpiders(t *testing.T) {
	c := circuitOf(t, 1, 3, circuit.ZGate(0, 2), circuit.SGate(0, 1))
	expectGates(t, extracted(t, c), circuit.ZGate(0, 2), circuit.SGate(0, 1))

	c = circuitOf(t, 1, 5, circuit.ZPhaseGate(0, phase.New(5, 2, 3)))
	out := extracted(t, c)
	require.Len(t, out.Gates, 1)
	assert.Equal(t, circuit.KindZPhase, out.Gates[0].Kind)
	assert.Equal(t, phase.New(5, 2, 3), out.Gates[0].Phase)

	c = circuitOf(t, 1, 5, circuit.XPhaseGate(0, phase.New(5, 2, 3)))
	out = extracted(t, c)
	require.Len(t, out.Gates, 1)
	assert.Equal(t, circuit.KindXPhase, out.Gates[0].Kind)
	assert.Equal(t, phase.New(5, 2, 3), out.Gates[0].Phase)
}

func TestHadamardWires(t *testing.T) {
	c := circuitOf(t, 1, 3, circuit.HGate(0, 1))
	expectGates(t, extracted(t, c), circuit.HGate(0, 1))

	// H^2 compiles to two unit H-wires and comes back as two H gates.
	c = circuitOf(t, 1, 3, circuit.HGate(0, 2))
	expectGates(t, extracted(t, c), circuit.HGate(0, 1), circuit.HGate(0, 1))

	// A multiplier is two weighted H-wires; the weighted one surfaces as
	// MUL followed by H.
	c = circuitOf(t, 1, 5, circuit.MULGate(0, 2))
	expectGates(t, extracted(t, c),
		circuit.HGate(0, 1), circuit.MULGate(0, 2), circuit.HGate(0, 1))
}

func TestAntipodeFolding(t *testing.T) {
	// The X fragment's leading antipode spider folds back into a plain
	// shift, and a lone zero X spider is the antipode itself.
	c := circuitOf(t, 1, 3, circuit.XGate(0, 2))
	expectGates(t, extracted(t, c), circuit.XGate(0, 2))

	c = circuitOf(t, 1, 3, circuit.NEGGate(0))
	expectGates(t, extracted(t, c), circuit.NEGGate(0))
}

func TestTwoQuditGates(t *testing.T) {
	c := circuitOf(t, 2, 3, circuit.CXGate(0, 1, 2))
	expectGates(t, extracted(t, c), circuit.CXGate(0, 1, 2))

	c = circuitOf(t, 2, 3, circuit.CZGate(0, 1, 2))
	expectGates(t, extracted(t, c), circuit.CZGate(0, 1, 2))

	// A SWAP comes back as its three controlled-shift fragments, each
	// with its antipode; the list still acts as the wire exchange.
	c = circuitOf(t, 2, 3, circuit.SWAPGate(0, 1))
	out := extracted(t, c)
	expectGates(t, out,
		circuit.CXGate(0, 1, 1), circuit.NEGGate(1),
		circuit.CXGate(1, 0, 1), circuit.NEGGate(0),
		circuit.CXGate(0, 1, 1), circuit.NEGGate(1))
	ok, err := symplectic.Equivalent(c, out)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMixedCircuit(t *testing.T) {
	c := circuitOf(t, 2, 3,
		circuit.SGate(0, 1),
		circuit.CXGate(0, 1, 1),
		circuit.HGate(1, 1),
		circuit.CZGate(1, 0, 2),
		circuit.XGate(0, 1),
	)
	out := extracted(t, c)
	expectGates(t, out,
		circuit.SGate(0, 1),
		circuit.CXGate(0, 1, 1),
		circuit.HGate(1, 1),
		circuit.CZGate(0, 1, 2),
		circuit.XGate(0, 1),
	)
	ok, err := symplectic.Equivalent(c, out)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRoundTripPreservesAction(t *testing.T) {
	c := circuitOf(t, 3, 5,
		circuit.HGate(0, 1),
		circuit.CXGate(0, 1, 3),
		circuit.SGate(1, 2),
		circuit.SWAPGate(1, 2),
		circuit.MULGate(2, 3),
		circuit.CZGate(2, 0, 4),
		circuit.XGate(1, 2),
		circuit.NEGGate(0),
	)
	out := extracted(t, c)
	ok, err := symplectic.Equivalent(c, out)
	require.NoError(t, err)
	assert.True(t, ok, "extraction changed the circuit action")
}

func TestPhasedCrossSpiderRejected(t *testing.T) {
	// A controlled-shift fragment whose X spider carries a phase has no
	// faithful gate translation; extraction must refuse it rather than
	// return a circuit that drops the phase.
	g, err := diagram.New(3)
	require.NoError(t, err)
	in0 := g.AddVertexAt(diagram.Boundary, phase.Zero(3), 0, 0)
	in1 := g.AddVertexAt(diagram.Boundary, phase.Zero(3), 1, 0)
	cv := g.AddVertexAt(diagram.ZSpider, phase.Zero(3), 0, 1)
	xv := g.AddVertexAt(diagram.XSpider, phase.New(3, 1, 0), 1, 1)
	out0 := g.AddVertexAt(diagram.Boundary, phase.Zero(3), 0, 2)
	out1 := g.AddVertexAt(diagram.Boundary, phase.Zero(3), 1, 2)
	require.NoError(t, g.AddEdge(in0, cv, diagram.Plain(3, 1)))
	require.NoError(t, g.AddEdge(in1, xv, diagram.Plain(3, 1)))
	require.NoError(t, g.AddEdge(cv, xv, diagram.Plain(3, 1)))
	require.NoError(t, g.AddEdge(cv, out0, diagram.Plain(3, 1)))
	require.NoError(t, g.AddEdge(xv, out1, diagram.Plain(3, 1)))
	g.SetInputs(in0, in1)
	g.SetOutputs(out0, out1)

	_, err = Circuit(g)
	assert.ErrorIs(t, err, ErrNotCircuitLike)
}

func TestNotCircuitLike(t *testing.T) {
	// No boundaries at all.
	g, err := diagram.New(3)
	require.NoError(t, err)
	_, err = Circuit(g)
	assert.ErrorIs(t, err, ErrNotCircuitLike)

	// A vertex without a layout position.
	g, err = diagram.New(3)
	require.NoError(t, err)
	in := g.AddVertexAt(diagram.Boundary, phase.Zero(3), 0, 0)
	mid := g.AddVertex(diagram.ZSpider, phase.New(3, 1, 0))
	out := g.AddVertexAt(diagram.Boundary, phase.Zero(3), 0, 2)
	require.NoError(t, g.AddEdge(in, mid, diagram.Plain(3, 1)))
	require.NoError(t, g.AddEdge(mid, out, diagram.Plain(3, 1)))
	g.SetInputs(in)
	g.SetOutputs(out)
	_, err = Circuit(g)
	assert.ErrorIs(t, err, ErrNotCircuitLike)

	// A broken wire: input connected to nothing.
	g, err = diagram.New(3)
	require.NoError(t, err)
	in = g.AddVertexAt(diagram.Boundary, phase.Zero(3), 0, 0)
	out = g.AddVertexAt(diagram.Boundary, phase.Zero(3), 0, 1)
	g.SetInputs(in)
	g.SetOutputs(out)
	_, err = Circuit(g)
	assert.ErrorIs(t, err, ErrNotCircuitLike)
}
