package diagram

import (
	"fmt"

	"github.com/qzx-dev/go-qzx/pkg/phase"
)

// EdgeKind classifies a normalized edge.
type EdgeKind int

const (
	// NoEdge means the edge object is empty.
	NoEdge EdgeKind = iota
	// SimpleEdge is a plain wire (possibly with multiplicity).
	SimpleEdge
	// HadamardEdge is a wire conjugated by the generalized Fourier
	// transform, with a weight mod d.
	HadamardEdge
	// CompoundEdge carries both kinds at once; it only exists transiently
	// while AddEdge normalizes.
	CompoundEdge
)

// Edge holds the multiplicities of parallel wires between two spiders:
// Had counts Hadamard-like wires and Simple plain wires, both mod d.
type Edge struct {
	Dim    int `msgpack:"dim"`
	Had    int `msgpack:"had"`
	Simple int `msgpack:"simple"`
}

// NewEdge returns an edge with the given multiplicities reduced mod d.
func NewEdge(d, had, simple int) Edge {
	return Edge{Dim: d, Had: phase.Mod(had, d), Simple: phase.Mod(simple, d)}
}

// Hadamard returns a pure H-edge of the given weight.
func Hadamard(d, weight int) Edge {
	return NewEdge(d, weight, 0)
}

// Plain returns a pure simple edge of the given multiplicity.
func Plain(d, mult int) Edge {
	return NewEdge(d, 0, mult)
}

// Present reports whether the edge object carries any wire at all.
func (e Edge) Present() bool {
	return e.Had != 0 || e.Simple != 0
}

// IsHadamard reports whether the edge consists only of H-wires.
func (e Edge) IsHadamard() bool {
	return e.Present() && e.Simple == 0
}

// IsSimple reports whether the edge consists only of plain wires.
func (e Edge) IsSimple() bool {
	return e.Present() && e.Had == 0
}

// IsSingle reports whether the edge is exactly one wire of one kind, the
// only shape allowed next to a boundary vertex.
func (e Edge) IsSingle() bool {
	return (e.Had == 1 && e.Simple == 0) || (e.Had == 0 && e.Simple == 1)
}

// IsReduced reports whether the edge carries at most one kind of wire.
func (e Edge) IsReduced() bool {
	return e.Had == 0 || e.Simple == 0
}

// Kind returns the normalized classification of the edge.
func (e Edge) Kind() EdgeKind {
	switch {
	case !e.Present():
		return NoEdge
	case e.Had == 0:
		return SimpleEdge
	case e.Simple == 0:
		return HadamardEdge
	default:
		return CompoundEdge
	}
}

// Merge returns the componentwise sum of two edge objects.
func (e Edge) Merge(o Edge) Edge {
	return NewEdge(e.Dim, e.Had+o.Had, e.Simple+o.Simple)
}

func (e Edge) String() string {
	return fmt.Sprintf("Edge(h=%d,s=%d)", e.Had, e.Simple)
}
