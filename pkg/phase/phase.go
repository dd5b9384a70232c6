// Package phase implements the phase algebra for qudit ZX-diagrams of odd
// prime dimension. A Clifford phase is a pair (X, Y) of residues mod d,
// standing for the spider amplitude omega^((X*k + Y*k^2)/2) on basis state k.
package phase

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

// ErrInvalidDimension is returned when a qudit dimension is not an odd prime.
var ErrInvalidDimension = errors.New("dimension must be an odd prime")

// ErrNotInvertible is returned when a residue has no inverse mod d.
var ErrNotInvertible = errors.New("residue is not invertible")

// ValidateDimension checks that d is an odd prime. It is called once at
// diagram or circuit construction, not per operation.
func ValidateDimension(d int) error {
	if d < 3 || d%2 == 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidDimension, d)
	}
	for p := 3; p*p <= d; p += 2 {
		if d%p == 0 {
			return fmt.Errorf("%w: got %d", ErrInvalidDimension, d)
		}
	}
	return nil
}

// Mod reduces v into the canonical residue range [0, d).
func Mod(v, d int) int {
	v %= d
	if v < 0 {
		v += d
	}
	return v
}

// Inverse returns the multiplicative inverse of v mod d. Defined only for
// residues nonzero mod d; d prime guarantees existence for those.
func Inverse(v, d int) (int, error) {
	v = Mod(v, d)
	if v == 0 {
		return 0, fmt.Errorf("%w: 0 mod %d", ErrNotInvertible, d)
	}
	// Extended Euclid on (v, d).
	r0, r1 := v, d
	s0, s1 := 1, 0
	for r1 != 0 {
		q := r0 / r1
		r0, r1 = r1, r0-q*r1
		s0, s1 = s1, s0-q*s1
	}
	if r0 != 1 {
		return 0, fmt.Errorf("%w: %d mod %d", ErrNotInvertible, v, d)
	}
	return Mod(s0, d), nil
}

// Clifford is a stabilizer phase over residues mod Dim: a linear Pauli
// exponent X and a quadratic correction Y.
type Clifford struct {
	Dim int
	X   int
	Y   int
}

// New returns the Clifford phase (x, y) reduced mod d.
func New(d, x, y int) Clifford {
	return Clifford{Dim: d, X: Mod(x, d), Y: Mod(y, d)}
}

// Zero returns the zero phase for dimension d.
func Zero(d int) Clifford {
	return Clifford{Dim: d}
}

// Add returns the componentwise sum of two phases, the combination rule
// used when two same-color spiders fuse.
func (p Clifford) Add(q Clifford) Clifford {
	return New(p.Dim, p.X+q.X, p.Y+q.Y)
}

// Sub returns the componentwise difference of two phases.
func (p Clifford) Sub(q Clifford) Clifford {
	return New(p.Dim, p.X-q.X, p.Y-q.Y)
}

// Neg returns the adjoint phase (-X, -Y).
func (p Clifford) Neg() Clifford {
	return New(p.Dim, -p.X, -p.Y)
}

// Scale returns the phase multiplied by the residue c.
func (p Clifford) Scale(c int) Clifford {
	return New(p.Dim, c*p.X, c*p.Y)
}

// Equal reports whether two phases agree after reduction mod Dim.
func (p Clifford) Equal(q Clifford) bool {
	return p.Dim == q.Dim && Mod(p.X, p.Dim) == Mod(q.X, q.Dim) && Mod(p.Y, p.Dim) == Mod(q.Y, q.Dim)
}

// IsZero reports whether both components vanish mod Dim.
func (p Clifford) IsZero() bool {
	return Mod(p.X, p.Dim) == 0 && Mod(p.Y, p.Dim) == 0
}

// IsPauli reports whether the quadratic part vanishes.
func (p Clifford) IsPauli() bool {
	return Mod(p.Y, p.Dim) == 0
}

// IsPureClifford reports whether the linear part vanishes.
func (p Clifford) IsPureClifford() bool {
	return Mod(p.X, p.Dim) == 0
}

// IsStrictlyClifford reports whether the quadratic part is invertible mod
// Dim, the eligibility condition for local complementation.
func (p Clifford) IsStrictlyClifford() bool {
	return Mod(p.Y, p.Dim) != 0
}

// Amplitude evaluates the scalar sum_k omega^((X*k + Y*k^2)/2), the value a
// solitary spider with this phase contributes to the global scalar. The
// halving is modular: the even representatives of X and Y are used so the
// exponent is an integer and the value is well defined mod Dim.
func (p Clifford) Amplitude() complex128 {
	x, y := Mod(p.X, p.Dim), Mod(p.Y, p.Dim)
	if x%2 != 0 {
		x += p.Dim
	}
	if y%2 != 0 {
		y += p.Dim
	}
	omega := cmplx.Exp(complex(0, 2*math.Pi/float64(p.Dim)))
	var ret complex128
	for k := 0; k < p.Dim; k++ {
		e := Mod((x*k+y*k*k)/2, p.Dim)
		ret += cmplx.Pow(omega, complex(float64(e), 0))
	}
	return ret
}

func (p Clifford) String() string {
	return fmt.Sprintf("(%d,%d)", Mod(p.X, p.Dim), Mod(p.Y, p.Dim))
}
