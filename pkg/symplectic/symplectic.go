// Package symplectic represents the action of qudit Clifford circuits on
// Pauli operators as matrices over Z_d. A circuit on n qudits becomes a
// 2n x 2n matrix acting on Pauli exponent vectors ordered
// (x0, z0, x1, z1, ...); Pauli phases are not tracked, so two circuits
// with equal matrices agree up to Paulis. This is the cheap semantic
// check used to validate gate-level rewrites.
package symplectic

import (
	"fmt"
	"strings"

	"github.com/qzx-dev/go-qzx/pkg/circuit"
	"github.com/qzx-dev/go-qzx/pkg/phase"
)

// Matrix is a 2n x 2n matrix over Z_d acting on Pauli exponent vectors
// by left multiplication.
type Matrix struct {
	Qudits int
	Dim    int
	a      []int // row-major
}

// Identity returns the identity matrix for n qudits.
func Identity(qudits, dim int) *Matrix {
	m := &Matrix{Qudits: qudits, Dim: dim, a: make([]int, 4*qudits*qudits)}
	for i := 0; i < 2*qudits; i++ {
		m.set(i, i, 1)
	}
	return m
}

func (m *Matrix) size() int { return 2 * m.Qudits }

// At returns the entry at row i, column j, reduced mod d.
func (m *Matrix) At(i, j int) int {
	return m.a[i*m.size()+j]
}

func (m *Matrix) set(i, j, v int) {
	m.a[i*m.size()+j] = phase.Mod(v, m.Dim)
}

// Mul returns the product m * o.
func (m *Matrix) Mul(o *Matrix) *Matrix {
	n := m.size()
	out := &Matrix{Qudits: m.Qudits, Dim: m.Dim, a: make([]int, n*n)}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			s := 0
			for k := 0; k < n; k++ {
				s += m.At(i, k) * o.At(k, j)
			}
			out.set(i, j, s)
		}
	}
	return out
}

// Equal reports whether the two matrices agree entry-wise mod d.
func (m *Matrix) Equal(o *Matrix) bool {
	if m.Qudits != o.Qudits || m.Dim != o.Dim {
		return false
	}
	for i := range m.a {
		if m.a[i] != o.a[i] {
			return false
		}
	}
	return true
}

// IsIdentity reports whether m is the identity matrix.
func (m *Matrix) IsIdentity() bool {
	return m.Equal(Identity(m.Qudits, m.Dim))
}

func (m *Matrix) String() string {
	var b strings.Builder
	n := m.size()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			fmt.Fprintf(&b, "%3d", m.At(i, j))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// x and z index the Pauli exponent slots of qudit q.
func x(q int) int { return 2 * q }
func z(q int) int { return 2*q + 1 }

// FromCircuit builds the matrix of the whole circuit, with gate i applied
// before gate i+1. Returns an error for a MUL gate whose value has no
// inverse mod d.
func FromCircuit(c *circuit.Circuit) (*Matrix, error) {
	m := Identity(c.Qudits, c.Dim)
	for _, g := range c.Gates {
		gm, err := GateMatrix(g, c.Qudits, c.Dim)
		if err != nil {
			return nil, err
		}
		m = gm.Mul(m)
	}
	return m, nil
}

// GateMatrix returns the matrix of a single gate embedded into n qudits.
//
// The blocks follow from conjugating the Pauli generators: S^a maps
// (x,z) to (x, z-a*x), H maps (x,z) -> (z,-x), CX^b adds b*xc to xt and
// subtracts b*zt from zc, CZ^k subtracts k*xt from zc and k*xc from zt,
// and MUL_v scales (x,z) by (v, v^-1). Z, X and Z-phase gates act
// trivially up to phase.
func GateMatrix(g circuit.Gate, qudits, dim int) (*Matrix, error) {
	m := Identity(qudits, dim)
	t := g.Target
	switch g.Kind {
	case circuit.KindZ, circuit.KindX, circuit.KindZPhase:
		// Identity up to a Pauli.
	case circuit.KindNEG:
		if phase.Mod(g.Reps, 2) == 1 {
			m.set(x(t), x(t), -1)
			m.set(z(t), z(t), -1)
		}
	case circuit.KindXPhase:
		// The antipodal X rotation is H;ZPhase;H, so its action is the
		// Hadamard conjugate of the S block times the antipode.
		y := phase.Mod(g.Phase.Scale(g.Reps).Y, dim)
		m.set(x(t), x(t), -1)
		m.set(z(t), z(t), -1)
		m.set(x(t), z(t), -y)
	case circuit.KindH:
		switch phase.Mod(g.Reps, 4) {
		case 1:
			m.set(x(t), x(t), 0)
			m.set(z(t), z(t), 0)
			m.set(x(t), z(t), 1)
			m.set(z(t), x(t), -1)
		case 2:
			m.set(x(t), x(t), -1)
			m.set(z(t), z(t), -1)
		case 3:
			m.set(x(t), x(t), 0)
			m.set(z(t), z(t), 0)
			m.set(x(t), z(t), -1)
			m.set(z(t), x(t), 1)
		}
	case circuit.KindS:
		m.set(z(t), x(t), -g.Reps)
	case circuit.KindMUL:
		inv, err := phase.Inverse(g.Value, dim)
		if err != nil {
			return nil, fmt.Errorf("%w: mul value %d mod %d", circuit.ErrUnsupportedGate, g.Value, dim)
		}
		m.set(x(t), x(t), g.Value)
		m.set(z(t), z(t), inv)
	case circuit.KindCX:
		cq := g.Control
		m.set(x(t), x(cq), g.Reps)
		m.set(z(cq), z(t), -g.Reps)
	case circuit.KindCZ:
		cq := g.Control
		m.set(z(cq), x(t), -g.Reps)
		m.set(z(t), x(cq), -g.Reps)
	case circuit.KindSWAP:
		if phase.Mod(g.Reps, 2) == 1 {
			cq := g.Control
			m.set(x(t), x(t), 0)
			m.set(z(t), z(t), 0)
			m.set(x(cq), x(cq), 0)
			m.set(z(cq), z(cq), 0)
			m.set(x(t), x(cq), 1)
			m.set(z(t), z(cq), 1)
			m.set(x(cq), x(t), 1)
			m.set(z(cq), z(t), 1)
		}
	default:
		return nil, fmt.Errorf("%w: kind %v", circuit.ErrUnsupportedGate, g.Kind)
	}
	return m, nil
}

// Equivalent reports whether two circuits have the same action on Pauli
// operators up to phase.
func Equivalent(a, b *circuit.Circuit) (bool, error) {
	if a.Qudits != b.Qudits || a.Dim != b.Dim {
		return false, nil
	}
	ma, err := FromCircuit(a)
	if err != nil {
		return false, err
	}
	mb, err := FromCircuit(b)
	if err != nil {
		return false, err
	}
	return ma.Equal(mb), nil
}
