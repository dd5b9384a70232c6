package circuit

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qzx-dev/go-qzx/pkg/diagram"
	"github.com/qzx-dev/go-qzx/pkg/phase"
)

func newCircuit(t *testing.T, qudits, dim int) *Circuit {
	t.Helper()
	c, err := New(qudits, dim)
	require.NoError(t, err)
	return c
}

func TestNewValidatesDimension(t *testing.T) {
	_, err := New(2, 4)
	assert.ErrorIs(t, err, phase.ErrInvalidDimension)
	_, err = New(0, 3)
	assert.ErrorIs(t, err, ErrBadWire)
}

func TestByName(t *testing.T) {
	c := newCircuit(t, 2, 5)

	g, err := c.ByName("cz", 2, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, CZGate(0, 1, 2), g)

	g, err = c.ByName("hdg", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, HGate(0, -1), g)

	g, err = c.ByName("sdg", 2, 1)
	require.NoError(t, err)
	assert.Equal(t, SGate(1, -2), g)

	g, err = c.ByName("mul", 3, 0)
	require.NoError(t, err)
	assert.Equal(t, MULGate(0, 3), g)

	g, err = c.ByName("muldg", 3, 0)
	require.NoError(t, err)
	assert.Equal(t, MULGate(0, 2), g, "adjoint of M_3 is M_{3^-1} = M_2 mod 5")

	_, err = c.ByName("toffoli", 1, 0)
	assert.ErrorIs(t, err, ErrUnsupportedGate)

	_, err = c.ByName("mul", 0, 0)
	assert.ErrorIs(t, err, ErrUnsupportedGate, "mul value 0 has no inverse")

	_, err = c.ByName("cx", 1, 0)
	assert.ErrorIs(t, err, ErrUnsupportedGate, "cx needs two wires")
}

func TestAddRejectsBadWires(t *testing.T) {
	c := newCircuit(t, 2, 3)
	assert.ErrorIs(t, c.Add(ZGate(2, 1)), ErrBadWire)
	assert.ErrorIs(t, c.Add(CXGate(0, 0, 1)), ErrBadWire)
	assert.ErrorIs(t, c.Add(CXGate(-1, 1, 1)), ErrBadWire)
	assert.NoError(t, c.Add(CXGate(0, 1, 1)))
}

func TestGateAdjoint(t *testing.T) {
	assert.Equal(t, ZGate(0, -2), ZGate(0, 2).Adjoint(5))
	assert.Equal(t, HGate(0, -1), HGate(0, 1).Adjoint(5))
	assert.Equal(t, MULGate(0, 3), MULGate(0, 2).Adjoint(5), "inverse of 2 mod 5")

	p := phase.New(5, 1, 2)
	assert.True(t, ZPhaseGate(0, p).Adjoint(5).Phase.Equal(p.Neg()))
}

func TestCircuitAdjointReversesGates(t *testing.T) {
	c := newCircuit(t, 2, 3)
	require.NoError(t, c.Add(HGate(0, 1)))
	require.NoError(t, c.Add(CXGate(0, 1, 1)))

	a := c.Adjoint()
	require.Len(t, a.Gates, 2)
	assert.Equal(t, CXGate(0, 1, -1), a.Gates[0])
	assert.Equal(t, HGate(0, -1), a.Gates[1])
}

func TestToDiagramSingleWire(t *testing.T) {
	c := newCircuit(t, 1, 3)
	require.NoError(t, c.Add(ZGate(0, 1)))
	require.NoError(t, c.Add(SGate(0, 2)))

	g, err := c.ToDiagram()
	require.NoError(t, err)

	// boundary + Z(1,0) + Z(0,2) + boundary
	assert.Equal(t, 4, g.NumVertices())
	require.Len(t, g.Inputs(), 1)
	require.Len(t, g.Outputs(), 1)

	z1 := g.Neighbors(g.Inputs()[0])[0]
	assert.Equal(t, diagram.ZSpider, g.Type(z1))
	assert.True(t, g.Phase(z1).Equal(phase.New(3, 1, 0)))
}

func TestToDiagramHadamard(t *testing.T) {
	c := newCircuit(t, 1, 3)
	require.NoError(t, c.Add(HGate(0, 1)))

	g, err := c.ToDiagram()
	require.NoError(t, err)

	v := g.Neighbors(g.Inputs()[0])[0]
	assert.Equal(t, diagram.Hadamard(3, 1), g.EdgeBetween(g.Inputs()[0], v))
}

func TestToDiagramCX(t *testing.T) {
	c := newCircuit(t, 2, 5)
	require.NoError(t, c.Add(CXGate(0, 1, 2)))

	g, err := c.ToDiagram()
	require.NoError(t, err)

	// Two boundaries per wire plus the Z/X pair and the zero X spider
	// that cancels the fragment's antipode.
	assert.Equal(t, 7, g.NumVertices())
	assert.Equal(t, 1, g.Scalar.PowerDim)

	cv := g.Neighbors(g.Inputs()[0])[0]
	tv := g.Neighbors(g.Inputs()[1])[0]
	assert.Equal(t, diagram.ZSpider, g.Type(cv))
	assert.Equal(t, diagram.XSpider, g.Type(tv))
	assert.Equal(t, diagram.Plain(5, 2), g.EdgeBetween(cv, tv))
}

func TestToDiagramCZ(t *testing.T) {
	c := newCircuit(t, 2, 5)
	require.NoError(t, c.Add(CZGate(0, 1, 3)))

	g, err := c.ToDiagram()
	require.NoError(t, err)
	assert.Equal(t, 1, g.Scalar.PowerDim)

	cv := g.Neighbors(g.Inputs()[0])[0]
	tv := g.Neighbors(g.Inputs()[1])[0]
	assert.Equal(t, diagram.ZSpider, g.Type(cv))
	assert.Equal(t, diagram.ZSpider, g.Type(tv))
	assert.Equal(t, diagram.Hadamard(5, 3), g.EdgeBetween(cv, tv))
}

func TestToDiagramIdentityExponentsCompileAway(t *testing.T) {
	c := newCircuit(t, 2, 3)
	require.NoError(t, c.Add(ZGate(0, 3)))
	require.NoError(t, c.Add(HGate(0, 4)))
	require.NoError(t, c.Add(CXGate(0, 1, 3)))
	require.NoError(t, c.Add(SWAPGate(0, 1)))
	require.NoError(t, c.Add(SWAPGate(0, 1)))

	g, err := c.ToDiagram()
	require.NoError(t, err)
	// Z^3, H^4 and CX^3 compile to nothing; each SWAP compiles to three
	// CXs, so two SWAPs leave six Z/X pairs plus the four boundaries.
	assert.Equal(t, 4+12, g.NumVertices())
	assert.Equal(t, 6, g.Scalar.PowerDim)
}

func TestToDiagramScalarPowersCountTwoQuditGates(t *testing.T) {
	c := newCircuit(t, 2, 3)
	require.NoError(t, c.Add(CXGate(0, 1, 1)))
	require.NoError(t, c.Add(CZGate(0, 1, 2)))
	require.NoError(t, c.Add(CXGate(1, 0, 2)))

	g, err := c.ToDiagram()
	require.NoError(t, err)
	assert.Equal(t, 3, g.Scalar.PowerDim)
}

func TestToDiagramAllOrNothing(t *testing.T) {
	c := newCircuit(t, 2, 3)
	require.NoError(t, c.Add(CXGate(0, 1, 1)))
	c.Gates = append(c.Gates, MULGate(0, 3)) // 3 = 0 mod 3: not invertible

	g, err := c.ToDiagram()
	assert.ErrorIs(t, err, ErrUnsupportedGate)
	assert.Nil(t, g)
}

func TestYAMLRoundTrip(t *testing.T) {
	c := newCircuit(t, 2, 5)
	require.NoError(t, c.Add(HGate(0, 1)))
	require.NoError(t, c.Add(CZGate(0, 1, 2)))
	require.NoError(t, c.Add(MULGate(1, 3)))
	require.NoError(t, c.Add(ZPhaseGate(0, phase.New(5, 1, 2))))
	c.Name = "roundtrip"

	var buf bytes.Buffer
	require.NoError(t, c.Encode(&buf))

	got, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, c.Name, got.Name)
	assert.Equal(t, c.Dim, got.Dim)
	assert.Equal(t, c.Qudits, got.Qudits)
	require.Len(t, got.Gates, len(c.Gates))
	assert.Equal(t, c.Gates[1], got.Gates[1])
	assert.Equal(t, c.Gates[2], got.Gates[2])
	assert.True(t, got.Gates[3].Phase.Equal(c.Gates[3].Phase))
}

func TestDecodeValidates(t *testing.T) {
	_, err := Decode(strings.NewReader("dim: 4\nqudits: 1\ngates: []\n"))
	assert.ErrorIs(t, err, phase.ErrInvalidDimension)

	_, err = Decode(strings.NewReader("dim: 3\nqudits: 1\ngates:\n  - gate: warp\n    target: 0\n"))
	assert.ErrorIs(t, err, ErrUnsupportedGate)

	_, err = Decode(strings.NewReader("dim: 3\nqudits: 1\ngates:\n  - gate: z\n    target: 5\n"))
	assert.ErrorIs(t, err, ErrBadWire)
}

func TestDecodeWithDimensionDefault(t *testing.T) {
	c, err := DecodeWithDimension(strings.NewReader("qudits: 1\ngates:\n  - gate: z\n    target: 0\n"), 5)
	require.NoError(t, err)
	assert.Equal(t, 5, c.Dim)

	// Without a fallback an undeclared dimension is invalid.
	_, err = Decode(strings.NewReader("qudits: 1\ngates: []\n"))
	assert.ErrorIs(t, err, phase.ErrInvalidDimension)
}
