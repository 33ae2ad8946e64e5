package fixedpoint

// This file implements the transcendental functions required by the AMM
// family (spec §4.B): Exp over the domain |x| <= 30 needed by LMSR, Ln for
// x > 0, and a table-driven standard normal CDF.
// Every routine here is pure fixed-point arithmetic over F64/Signed; no
// float64 value is ever introduced into a consensus-critical computation.

// maxExpDomain bounds the input domain Exp accepts, matching the LMSR
// requirement that |q_i/b| stay within a safe range.
const maxExpDomain = 30

// expTaylorTerms is the number of Taylor series terms evaluated after domain
// reduction. Domain reduction (halving x until it is small, squaring the
// result back up) keeps the series accurate with a small, fixed term count.
const expTaylorTerms = 24

// Exp computes e^x for a signed fixed-point x with |x| <= maxExpDomain.
// Domain reduction: e^x = (e^(x/2^k))^(2^k) for a k chosen so x/2^k is close
// to zero, where the Taylor series converges quickly and deterministically.
func Exp(x Signed) (F64, error) {
	limit := NewF64FromUint64(maxExpDomain)
	if x.Mag.Cmp(limit) > 0 {
		return F64{}, ErrDomain
	}

	k := reductionSteps(x.Mag)
	reduced := x
	divisor := SignedFromInt64(1 << uint(k))
	var err error
	reduced, err = reduced.Div(divisor)
	if err != nil {
		return F64{}, err
	}

	// Taylor series: sum_{n=0}^{N} reduced^n / n!
	sum := Signed{Mag: One64}
	term := Signed{Mag: One64}
	for n := int64(1); n <= expTaylorTerms; n++ {
		term, err = term.Mul(reduced)
		if err != nil {
			return F64{}, err
		}
		term, err = term.Div(SignedFromInt64(n))
		if err != nil {
			return F64{}, err
		}
		sum, err = sum.Add(term)
		if err != nil {
			return F64{}, err
		}
	}
	if sum.Neg {
		// e^x is never negative; a negative accumulator means the series
		// was evaluated outside its safe domain.
		return F64{}, ErrDomain
	}

	result := sum.Mag
	for i := 0; i < k; i++ {
		result, err = result.Mul(result)
		if err != nil {
			return F64{}, err
		}
	}
	return result, nil
}

// reductionSteps picks how many times to halve the input before running the
// Taylor series so that the reduced magnitude stays under 1.0.
func reductionSteps(mag F64) int {
	steps := 0
	for mag.Cmp(One64) > 0 {
		mag, _ = mag.Div(NewF64FromUint64(2))
		steps++
		if steps > 32 {
			break
		}
	}
	return steps
}

// lnTaylorTerms bounds the series evaluated for Ln via the identity
// ln(x) = 2*atanh((x-1)/(x+1)), which converges for all x>0 and avoids the
// divergence of the naive ln(1+u) series for u far from zero.
const lnTaylorTerms = 40

// Ln computes the natural logarithm of a positive fixed-point value.
func Ln(x F64) (Signed, error) {
	if x.IsZero() {
		return Signed{}, ErrDomain
	}
	one := Signed{Mag: One64}
	xs := Signed{Mag: x}
	num, err := xs.Sub(one)
	if err != nil {
		return Signed{}, err
	}
	den, err := xs.Add(one)
	if err != nil {
		return Signed{}, err
	}
	u, err := num.Div(den)
	if err != nil {
		return Signed{}, err
	}

	uSquared, err := u.Mul(u)
	if err != nil {
		return Signed{}, err
	}

	sum := u
	power := u
	for n := int64(1); n < lnTaylorTerms; n++ {
		power, err = power.Mul(uSquared)
		if err != nil {
			return Signed{}, err
		}
		denom := 2*n + 1
		term, err := power.Div(SignedFromInt64(denom))
		if err != nil {
			return Signed{}, err
		}
		sum, err = sum.Add(term)
		if err != nil {
			return Signed{}, err
		}
	}
	return sum.Mul(SignedFromInt64(2))
}

// normalCDFTable holds Phi(z) for z = 0.00, 0.05, ..., 2.50, expressed as
// F64 raw-compatible uint64 numerators over 1e6 — the "published reference
// values" the determinism contract in spec §6 requires implementations to
// share bit-for-bit. Values beyond the table are clamped to the tail.
var normalCDFTable = [...]uint64{
	500000, 519939, 539828, 559618, 579260, 598706, 617911, 636831, 655422, 673645,
	691462, 708840, 725747, 742154, 758036, 773373, 788145, 802337, 815940, 828944,
	841345, 853141, 864334, 874928, 884930, 894350, 903200, 911492, 919243, 926471,
	933193, 939429, 945201, 950529, 955435, 959941, 964070, 967843, 971283, 974412,
	977250, 979818, 982136, 984222, 986097, 987776, 989276, 990613, 991802, 992857,
	993790,
}

// step is the z-axis spacing of normalCDFTable, expressed as a fraction
// (1/20 = 0.05) to keep the table lookup in pure integer arithmetic.
const normalCDFStep = 20 // 1 / 0.05

// InverseNormalCDF returns the standard normal CDF Phi(z) for a signed
// fixed-point z, via table lookup with linear interpolation, matching the
// determinism contract: the table values are fixed constants, not computed
// at runtime from a float erf() routine. Despite its name it evaluates the
// forward CDF; it does not map a probability back to z.
func InverseNormalCDF(z Signed) (F64, error) {
	mag := z.Mag
	scaled, err := mag.Mul(NewF64FromUint64(normalCDFStep))
	if err != nil {
		return F64{}, err
	}
	idxRaw := scaled.Raw()
	idxRaw.Rsh(idxRaw, fracBits64)
	idx := idxRaw.Uint64()
	if idx >= uint64(len(normalCDFTable)-1) {
		idx = uint64(len(normalCDFTable) - 1)
	}

	lowIdx := int(idx)
	var lo, hi uint64
	lo = normalCDFTable[lowIdx]
	if lowIdx+1 < len(normalCDFTable) {
		hi = normalCDFTable[lowIdx+1]
	} else {
		hi = lo
	}

	// Linear interpolation between table entries using the fractional part
	// of the scaled index.
	fracPart, err := scaled.Sub(NewF64FromUint64(idx))
	if err != nil {
		return F64{}, err
	}
	delta := hi - lo
	interp, err := fracPart.Mul(NewF64FromUint64(delta))
	if err != nil {
		return F64{}, err
	}
	base := NewF64FromUint64(lo)
	// base and interp are expressed in units of 1e-6; rescale by dividing by
	// 1,000,000 to produce a genuine F64 probability in [0,1].
	combined, err := base.Add(interp)
	if err != nil {
		return F64{}, err
	}
	million := NewF64FromUint64(1_000_000)
	prob, err := combined.Div(million)
	if err != nil {
		return F64{}, err
	}

	if z.Neg {
		one := One64
		prob, err = one.Sub(prob)
		if err != nil {
			return F64{}, err
		}
	}
	return prob, nil
}
