package diagram

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/qzx-dev/go-qzx/pkg/phase"
)

// Scalar accumulates the global scalar of a diagram as rewrites fire:
// an integer power of sqrt(d), an exact complex phase exp(i*pi*Phase)
// with Phase a rational mod 2, a floating factor for contributions that
// have no exact form, and zero/unknown flags.
type Scalar struct {
	Dim         int        `msgpack:"dim"`
	PowerDim    int        `msgpack:"power_dim"`
	Phase       Fraction   `msgpack:"phase"`
	FloatFactor complex128 `msgpack:"-"`
	IsZero      bool       `msgpack:"is_zero"`
	IsUnknown   bool       `msgpack:"is_unknown"`
}

// Fraction is an exact rational, kept reduced with a positive denominator.
// Scalar phases live in the half-open interval [0, 2).
type Fraction struct {
	Num int `msgpack:"num"`
	Den int `msgpack:"den"`
}

// NewFraction returns num/den reduced to lowest terms.
func NewFraction(num, den int) Fraction {
	if den == 0 {
		panic("diagram: fraction with zero denominator")
	}
	if den < 0 {
		num, den = -num, -den
	}
	g := gcd(abs(num), den)
	if g > 1 {
		num /= g
		den /= g
	}
	return Fraction{Num: num, Den: den}
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// AddMod2 returns the sum of two fractions reduced into [0, 2).
func (f Fraction) AddMod2(o Fraction) Fraction {
	num := f.Num*o.Den + o.Num*f.Den
	den := f.Den * o.Den
	num %= 2 * den
	if num < 0 {
		num += 2 * den
	}
	return NewFraction(num, den)
}

// IsZero reports whether the fraction is 0.
func (f Fraction) IsZero() bool {
	return f.Num == 0
}

// Float returns the fraction as a float64.
func (f Fraction) Float() float64 {
	return float64(f.Num) / float64(f.Den)
}

// NewScalar returns the unit scalar for dimension d.
func NewScalar(d int) *Scalar {
	return &Scalar{Dim: d, Phase: NewFraction(0, 1), FloatFactor: 1}
}

// Copy returns an independent copy of the scalar.
func (s *Scalar) Copy() *Scalar {
	c := *s
	return &c
}

// AddPower multiplies the scalar by sqrt(d)^n.
func (s *Scalar) AddPower(n int) {
	s.PowerDim += n
}

// AddPhase multiplies the scalar by exp(i*pi*f).
func (s *Scalar) AddPhase(f Fraction) {
	s.Phase = s.Phase.AddMod2(f)
}

// AddFloat multiplies the scalar by an inexact complex factor.
func (s *Scalar) AddFloat(f complex128) {
	s.FloatFactor *= f
	if s.FloatFactor == 0 {
		s.IsZero = true
	}
}

// AddNode folds a solitary spider with the given phase into the scalar.
func (s *Scalar) AddNode(p phase.Clifford) {
	s.AddFloat(p.Amplitude())
}

// SetUnknown marks the scalar as no longer tracked exactly.
func (s *Scalar) SetUnknown() {
	s.IsUnknown = true
}

// MulWith multiplies another scalar into this one.
func (s *Scalar) MulWith(other *Scalar) {
	s.PowerDim += other.PowerDim
	s.Phase = s.Phase.AddMod2(other.Phase)
	s.FloatFactor *= other.FloatFactor
	if other.IsZero {
		s.IsZero = true
	}
	if other.IsUnknown {
		s.IsUnknown = true
	}
}

// AddCliffordSpiderPair folds a connected pair of spiders (p1)-H-(p2) into
// the scalar, where p1 must be Pauli. The closed form is the Gaussian sum
// sqrt(d) * omega^(x1*x2/4 + x1^2*y2/8) with the inverse powers of two
// taken mod d.
func (s *Scalar) AddCliffordSpiderPair(p1, p2 phase.Clifford) error {
	if !p1.IsPauli() {
		return fmt.Errorf("%w: spider pair with non-Pauli first phase %s", ErrScalarForm, p1)
	}
	s.AddPower(1)
	inv4, err := phase.Inverse(4, s.Dim)
	if err != nil {
		return err
	}
	inv8, err := phase.Inverse(8, s.Dim)
	if err != nil {
		return err
	}
	omegaPow := inv4*p1.X*p2.X + inv8*phase.Mod(p1.X*p1.X, s.Dim)*p2.Y
	s.AddPhase(NewFraction(2*phase.Mod(omegaPow, s.Dim), s.Dim))
	return nil
}

// Complex evaluates the scalar numerically.
func (s *Scalar) Complex() complex128 {
	if s.IsZero {
		return 0
	}
	val := cmplx.Exp(complex(0, math.Pi*s.Phase.Float()))
	val *= complex(math.Pow(math.Sqrt(float64(s.Dim)), float64(s.PowerDim)), 0)
	return val * s.FloatFactor
}

func (s *Scalar) String() string {
	if s.IsUnknown {
		return "UNKNOWN"
	}
	out := fmt.Sprintf("%.2f%+.2fi = ", real(s.Complex()), imag(s.Complex()))
	if s.FloatFactor != 1 {
		out += fmt.Sprintf("%.2f%+.2fi", real(s.FloatFactor), imag(s.FloatFactor))
	}
	if !s.Phase.IsZero() {
		out += fmt.Sprintf("exp(%d/%d ipi)", s.Phase.Num, s.Phase.Den)
	}
	out += fmt.Sprintf("sqrt(%d)^%d", s.Dim, s.PowerDim)
	return out
}
