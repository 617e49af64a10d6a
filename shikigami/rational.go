package shikigami

import (
	"math/big"
	"strings"
)

// Rational is an exact fraction. The denominator is always positive.
//
// A Rational either reduces on construction and renders as a plain number,
// or keeps the numerator and denominator it was built from (raw form) so that
// "3/4" or "4/8" render back exactly as written. Raw form is contagious: an
// arithmetic result is raw when either operand is.
//
// The zero value is 0.
type Rational struct {
	num *big.Int
	den *big.Int
	raw bool
}

var bigOne = big.NewInt(1)

// NewRational builds num/den. It fails with ErrDivisionByZero when den is 0.
func NewRational(num, den int64, preserve bool) (Rational, error) {
	return newRationalBig(big.NewInt(num), big.NewInt(den), preserve)
}

// IntRational returns n as a reduced Rational.
func IntRational(n int64) Rational {
	return Rational{num: big.NewInt(n), den: big.NewInt(1)}
}

// NewRationalFromDecimals builds num/den from decimal strings such as "1.5".
// Both parts are scaled by ten to the largest number of decimal places so the
// fraction is formed from integers before normalization.
//
// Known limitation: only plain decimal notation is accepted. Exponent forms
// ("1e-7") are rejected rather than expanded.
func NewRationalFromDecimals(num, den string, preserve bool) (Rational, error) {
	places := max(decimalPlaces(num), decimalPlaces(den))
	n, ok := scaleDecimal(num, places)
	if !ok {
		return Rational{}, newError(ErrUnexpectedToken, Position{}, "invalid number %q", num)
	}
	d, ok := scaleDecimal(den, places)
	if !ok {
		return Rational{}, newError(ErrUnexpectedToken, Position{}, "invalid number %q", den)
	}
	return newRationalBig(n, d, preserve)
}

// ParseRational converts a numeric literal. Fraction literals ("3/4") keep
// their raw form; integers and decimals reduce.
func ParseRational(literal string) (Rational, error) {
	if num, den, ok := strings.Cut(literal, "/"); ok {
		return NewRationalFromDecimals(num, den, true)
	}
	return NewRationalFromDecimals(literal, "1", false)
}

func decimalPlaces(s string) int {
	_, frac, ok := strings.Cut(s, ".")
	if !ok {
		return 0
	}
	return len(frac)
}

func scaleDecimal(s string, places int) (*big.Int, bool) {
	whole, frac, _ := strings.Cut(s, ".")
	digits := whole + frac + strings.Repeat("0", places-len(frac))
	n, ok := new(big.Int).SetString(digits, 10)
	return n, ok
}

func newRationalBig(num, den *big.Int, preserve bool) (Rational, error) {
	if den.Sign() == 0 {
		return Rational{}, newError(ErrDivisionByZero, Position{}, "division by zero")
	}
	n := new(big.Int).Set(num)
	d := new(big.Int).Set(den)
	if d.Sign() < 0 {
		n.Neg(n)
		d.Neg(d)
	}
	r := Rational{num: n, den: d, raw: preserve}
	if !preserve {
		r.reduce()
	}
	return r, nil
}

// gcd(0, n) is n, so 0/n reduces to 0/1.
func (r *Rational) reduce() {
	g := new(big.Int).GCD(nil, nil, new(big.Int).Abs(r.num), r.den)
	if g.Sign() == 0 || g.Cmp(bigOne) == 0 {
		return
	}
	r.num.Quo(r.num, g)
	r.den.Quo(r.den, g)
}

func (r Rational) parts() (*big.Int, *big.Int) {
	if r.num == nil || r.den == nil {
		return new(big.Int), big.NewInt(1)
	}
	return r.num, r.den
}

// Num returns a copy of the numerator.
func (r Rational) Num() *big.Int {
	n, _ := r.parts()
	return new(big.Int).Set(n)
}

// Denom returns a copy of the (positive) denominator.
func (r Rational) Denom() *big.Int {
	_, d := r.parts()
	return new(big.Int).Set(d)
}

// IsRaw reports whether r keeps its unreduced form.
func (r Rational) IsRaw() bool { return r.raw }

// Sign returns -1, 0 or +1.
func (r Rational) Sign() int {
	n, _ := r.parts()
	return n.Sign()
}

// Reduced returns r in lowest terms with the raw flag cleared.
func (r Rational) Reduced() Rational {
	n, d := r.parts()
	out, _ := newRationalBig(n, d, false)
	return out
}

func (r Rational) Add(other Rational, preserve bool) Rational {
	an, ad := r.parts()
	bn, bd := other.parts()
	num := new(big.Int).Add(new(big.Int).Mul(an, bd), new(big.Int).Mul(bn, ad))
	den := new(big.Int).Mul(ad, bd)
	out, _ := newRationalBig(num, den, preserve || r.raw || other.raw)
	return out
}

func (r Rational) Sub(other Rational, preserve bool) Rational {
	an, ad := r.parts()
	bn, bd := other.parts()
	num := new(big.Int).Sub(new(big.Int).Mul(an, bd), new(big.Int).Mul(bn, ad))
	den := new(big.Int).Mul(ad, bd)
	out, _ := newRationalBig(num, den, preserve || r.raw || other.raw)
	return out
}

func (r Rational) Mul(other Rational, preserve bool) Rational {
	an, ad := r.parts()
	bn, bd := other.parts()
	num := new(big.Int).Mul(an, bn)
	den := new(big.Int).Mul(ad, bd)
	out, _ := newRationalBig(num, den, preserve || r.raw || other.raw)
	return out
}

// Div fails with ErrDivisionByZero when other is zero. Callers normally pass
// preserve=true so quotients keep their fractional form.
func (r Rational) Div(other Rational, preserve bool) (Rational, error) {
	an, ad := r.parts()
	bn, bd := other.parts()
	if bn.Sign() == 0 {
		return Rational{}, newError(ErrDivisionByZero, Position{}, "division by zero")
	}
	num := new(big.Int).Mul(an, bd)
	den := new(big.Int).Mul(ad, bn)
	return newRationalBig(num, den, preserve || r.raw || other.raw)
}

// Cmp compares by cross-multiplication and returns -1, 0 or +1.
func (r Rational) Cmp(other Rational) int {
	an, ad := r.parts()
	bn, bd := other.parts()
	left := new(big.Int).Mul(an, bd)
	right := new(big.Int).Mul(bn, ad)
	return left.Cmp(right)
}

func (r Rational) Equal(other Rational) bool          { return r.Cmp(other) == 0 }
func (r Rational) Greater(other Rational) bool        { return r.Cmp(other) > 0 }
func (r Rational) GreaterOrEqual(other Rational) bool { return r.Cmp(other) >= 0 }

// String renders "num/den" for raw fractions and a plain number otherwise.
// Plain non-integers print as an exact decimal rounded to 16 places with
// trailing zeros trimmed, e.g. 1/3 renders as 0.3333333333333333. Values too
// small or too large for that form, or that would round to a whole number,
// fall back to "num/den".
func (r Rational) String() string {
	n, d := r.parts()
	if d.Cmp(bigOne) == 0 {
		return n.String()
	}
	fraction := n.String() + "/" + d.String()
	if r.raw {
		return fraction
	}
	q, m := new(big.Int).QuoRem(n, d, new(big.Int))
	if m.Sign() == 0 {
		return q.String()
	}
	v := new(big.Rat).SetFrac(n, d)
	mag := new(big.Rat).Abs(v)
	if mag.Cmp(decimalDisplayMin) < 0 || mag.Cmp(decimalDisplayMax) >= 0 {
		return fraction
	}
	s := strings.TrimRight(v.FloatString(decimalDisplayPlaces), "0")
	if strings.HasSuffix(s, ".") {
		return fraction
	}
	return s
}

const decimalDisplayPlaces = 16

var (
	decimalDisplayMin = big.NewRat(1, 1_000_000)
	decimalDisplayMax = big.NewRat(1_000_000_000_000_000, 1)
)
