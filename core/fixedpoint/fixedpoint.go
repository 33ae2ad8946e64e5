// Package fixedpoint implements the deterministic 64.64 fixed-point
// arithmetic (F64, and the sign-magnitude Signed built on it) that every
// consensus-critical path in the engine is required to use instead of
// floating point. There is no 128.128 type. Values are backed by
// github.com/holiman/uint256, the same fixed-width integer type the teacher
// corpus (and go-ethereum underneath it) uses for deterministic arithmetic,
// rather than unbounded math/big.
package fixedpoint

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
)

var (
	// ErrMathOverflow is returned by any checked operation whose result does
	// not fit in the fixed-width representation.
	ErrMathOverflow = errors.New("fixedpoint: overflow")
	// ErrDivisionByZero is returned by Div/Quo when the divisor is zero.
	ErrDivisionByZero = errors.New("fixedpoint: division by zero")
	// ErrDomain is returned when an input falls outside a function's valid
	// domain (e.g. Ln of a non-positive number).
	ErrDomain = errors.New("fixedpoint: domain error")
)

const fracBits64 = 64

// one64 is 1.0 represented in 64.64 raw form (2^64).
var one64 = new(uint256.Int).Lsh(uint256.NewInt(1), fracBits64)

// F64 is an unsigned 64.64 fixed-point number: the represented value is
// raw / 2^64. All monetary quantities, prices, and ratios in the engine use
// F64 unless explicitly stated otherwise (spec §4.A).
type F64 struct {
	raw uint256.Int
}

// Zero is the additive identity.
var Zero64 = F64{}

// One is the multiplicative identity (value 1.0).
var One64 = F64{raw: *one64}

// NewF64FromUint64 builds an integer-valued F64 (fractional part zero).
func NewF64FromUint64(v uint64) F64 {
	var raw uint256.Int
	raw.Lsh(uint256.NewInt(v), fracBits64)
	return F64{raw: raw}
}

// F64FromRaw wraps a raw 64.64 representation directly. Used by codecs and
// by components (e.g. the oracle) that store prices pre-scaled.
func F64FromRaw(raw *uint256.Int) F64 {
	if raw == nil {
		return F64{}
	}
	return F64{raw: *raw}
}

// Raw returns a defensive copy of the underlying fixed-point representation.
func (a F64) Raw() *uint256.Int {
	return new(uint256.Int).Set(&a.raw)
}

// IsZero reports whether the value is exactly zero.
func (a F64) IsZero() bool { return a.raw.IsZero() }

// Float64 converts the fixed-point value to a float64, losing precision.
// Consensus-critical paths must never call this; it exists solely for
// non-deterministic observability sinks (metrics gauges, log fields).
func (a F64) Float64() float64 {
	f := new(big.Float).SetInt(a.raw.ToBig())
	f.Quo(f, new(big.Float).SetInt(one64.ToBig()))
	out, _ := f.Float64()
	return out
}

// Cmp compares two F64 values the way uint256.Int.Cmp does.
func (a F64) Cmp(b F64) int { return a.raw.Cmp(&b.raw) }

// Add returns a+b, failing with ErrMathOverflow if the sum does not fit.
func (a F64) Add(b F64) (F64, error) {
	var z uint256.Int
	_, overflow := z.AddOverflow(&a.raw, &b.raw)
	if overflow {
		return F64{}, ErrMathOverflow
	}
	return F64{raw: z}, nil
}

// Sub returns a-b, failing with ErrMathOverflow on underflow (F64 is
// unsigned; negative intermediate results belong in a signed wrapper).
func (a F64) Sub(b F64) (F64, error) {
	var z uint256.Int
	_, overflow := z.SubOverflow(&a.raw, &b.raw)
	if overflow {
		return F64{}, ErrMathOverflow
	}
	return F64{raw: z}, nil
}

// Mul returns a*b, rescaling the 128-bit-wide raw product back down to the
// 64.64 representation. Fails with ErrMathOverflow if the unscaled product
// does not fit in 256 bits.
func (a F64) Mul(b F64) (F64, error) {
	var product uint256.Int
	_, overflow := product.MulOverflow(&a.raw, &b.raw)
	if overflow {
		return F64{}, ErrMathOverflow
	}
	var z uint256.Int
	z.Rsh(&product, fracBits64)
	return F64{raw: z}, nil
}

// Div returns a/b computed at full 64.64 precision.
func (a F64) Div(b F64) (F64, error) {
	if b.raw.IsZero() {
		return F64{}, ErrDivisionByZero
	}
	var scaled uint256.Int
	_, overflow := scaled.MulOverflow(&a.raw, one64)
	if overflow {
		return F64{}, ErrMathOverflow
	}
	var z uint256.Int
	z.Div(&scaled, &b.raw)
	return F64{raw: z}, nil
}

// Sqrt computes the integer square root of a fixed-point value using
// Newton-Raphson (Babylonian) iteration over the fixed-width integer domain,
// matching the deterministic contract in spec §4.A: no floating point is
// used anywhere in the computation.
func (a F64) Sqrt() (F64, error) {
	if a.raw.IsZero() {
		return F64{}, nil
	}
	// sqrt(raw/2^64) = sqrt(raw*2^64) / 2^64, so scale before taking the
	// integer square root to preserve fixed-point precision.
	var scaled uint256.Int
	_, overflow := scaled.MulOverflow(&a.raw, one64)
	if overflow {
		return F64{}, ErrMathOverflow
	}
	return F64{raw: *isqrt(&scaled)}, nil
}

// isqrt computes the integer square root via Newton-Raphson iteration.
func isqrt(n *uint256.Int) *uint256.Int {
	if n.IsZero() {
		return new(uint256.Int)
	}
	x := new(uint256.Int).Set(n)
	y := new(uint256.Int).Add(x, uint256.NewInt(1))
	y.Rsh(y, 1)
	for y.Lt(x) {
		x.Set(y)
		t := new(uint256.Int).Div(n, x)
		t.Add(t, x)
		y.Rsh(t, 1)
	}
	return x
}

// Signed is a sign-and-magnitude wrapper around F64, needed wherever the
// domain is genuinely signed: LMSR quantities (a user can hold a negative
// net position in an outcome), unrealized PnL, and the clamp delta computed
// during oracle ingestion.
type Signed struct {
	Neg bool
	Mag F64
}

// SignedFromInt64 builds a Signed value from a plain integer.
func SignedFromInt64(v int64) Signed {
	if v < 0 {
		return Signed{Neg: true, Mag: NewF64FromUint64(uint64(-v))}
	}
	return Signed{Neg: false, Mag: NewF64FromUint64(uint64(v))}
}

func normalizeZero(s Signed) Signed {
	if s.Mag.IsZero() {
		s.Neg = false
	}
	return s
}

// Add performs signed addition.
func (a Signed) Add(b Signed) (Signed, error) {
	if a.Neg == b.Neg {
		mag, err := a.Mag.Add(b.Mag)
		if err != nil {
			return Signed{}, err
		}
		return normalizeZero(Signed{Neg: a.Neg, Mag: mag}), nil
	}
	if a.Mag.Cmp(b.Mag) >= 0 {
		mag, err := a.Mag.Sub(b.Mag)
		if err != nil {
			return Signed{}, err
		}
		return normalizeZero(Signed{Neg: a.Neg, Mag: mag}), nil
	}
	mag, err := b.Mag.Sub(a.Mag)
	if err != nil {
		return Signed{}, err
	}
	return normalizeZero(Signed{Neg: b.Neg, Mag: mag}), nil
}

// Sub performs signed subtraction.
func (a Signed) Sub(b Signed) (Signed, error) {
	return a.Add(Signed{Neg: !b.Neg, Mag: b.Mag})
}

// Mul performs signed multiplication.
func (a Signed) Mul(b Signed) (Signed, error) {
	mag, err := a.Mag.Mul(b.Mag)
	if err != nil {
		return Signed{}, err
	}
	return normalizeZero(Signed{Neg: a.Neg != b.Neg, Mag: mag}), nil
}

// Div performs signed division.
func (a Signed) Div(b Signed) (Signed, error) {
	mag, err := a.Mag.Div(b.Mag)
	if err != nil {
		return Signed{}, err
	}
	return normalizeZero(Signed{Neg: a.Neg != b.Neg, Mag: mag}), nil
}

// Cmp compares two signed values.
func (a Signed) Cmp(b Signed) int {
	an, bn := normalizeZero(a), normalizeZero(b)
	if an.Neg != bn.Neg {
		if an.Neg {
			return -1
		}
		return 1
	}
	c := an.Mag.Cmp(bn.Mag)
	if an.Neg {
		return -c
	}
	return c
}
