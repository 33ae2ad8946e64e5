package amm

import (
	"predmarket/engine/core/errors"
	"predmarket/engine/core/fixedpoint"
)

// pmammNewtonTolerance and pmammNewtonMaxIter bound the scalar Newton-Raphson
// solve used by Trade (spec §4.B: "a numerical solver... tolerance 1e-8, at
// most 10 iterations").
var pmammNewtonTolerance = fixedpoint.NewF64FromUint64(0) // placeholder, replaced in init
const pmammNewtonMaxIter = 10
const pmammDampingNumerator = 8
const pmammDampingDenominator = 10

func init() {
	// 1e-8 expressed as a fixed-point value: 1 / 100_000_000.
	tol, err := fixedpoint.One64.Div(fixedpoint.NewF64FromUint64(100_000_000))
	if err != nil {
		panic(err)
	}
	pmammNewtonTolerance = tol
}

// pmammAlpha is the power-invariant exponent (spec §4.B default: 2), chosen
// so the invariant sum(q_i^alpha) = K is strictly convex and requires a
// genuine root-find to redistribute quantities after a trade, rather than
// admitting a closed-form parimutuel pool-ratio shortcut.
var pmammAlpha = fixedpoint.NewF64FromUint64(2)

// PMAMM implements the parimutuel-style AMM for 2-64 discrete outcomes. The
// state is a vector of non-negative quantities q_i subject to the invariant
// sum(q_i^alpha) = K. A trade of size Delta into outcome k first adds Delta
// to q_k, then finds the scalar redistribution factor s solving
//
//	f(s) = (q_k+Delta)^alpha + sum_{i!=k} (s*q_i)^alpha - K = 0
//
// via damped Newton-Raphson, and rescales every other outcome's quantity by
// s. Marginal price of outcome i is then proportional to q_i^(alpha-1),
// normalized across all outcomes.
type PMAMM struct {
	clampGuard

	alpha fixedpoint.F64
	q     []fixedpoint.F64
	k     fixedpoint.F64 // the invariant sum(q_i^alpha)
}

// NewPMAMM constructs a parimutuel AMM seeded with equal quantities across n
// outcomes (2 <= n <= 64), matching a uniform prior.
func NewPMAMM(n int, seed fixedpoint.F64) (*PMAMM, error) {
	if n < 2 || n > 64 {
		return nil, errors.ErrUnknownOutcome
	}
	m := &PMAMM{alpha: pmammAlpha, q: make([]fixedpoint.F64, n), clampGuard: newClampGuard(n)}
	for i := range m.q {
		m.q[i] = seed
	}
	k, err := m.invariantSum(m.q)
	if err != nil {
		return nil, err
	}
	m.k = k
	for i := range m.q {
		p, err := m.Price(i)
		if err != nil {
			return nil, err
		}
		m.slotStartPrices[i] = p
	}
	return m, nil
}

func (m *PMAMM) Kind() Kind     { return KindPMAMM }
func (m *PMAMM) Outcomes() int { return len(m.q) }

// pow raises a non-negative F64 base to the alpha power via exp(alpha*ln(x)),
// the standard fixed-point technique for a non-integer exponent.
func pow(base, exponent fixedpoint.F64) (fixedpoint.F64, error) {
	if base.IsZero() {
		return fixedpoint.F64{}, nil
	}
	ln, err := fixedpoint.Ln(base)
	if err != nil {
		return fixedpoint.F64{}, err
	}
	scaled, err := ln.Mul(fixedpoint.Signed{Mag: exponent})
	if err != nil {
		return fixedpoint.F64{}, err
	}
	return fixedpoint.Exp(scaled)
}

func (m *PMAMM) invariantSum(q []fixedpoint.F64) (fixedpoint.F64, error) {
	sum := fixedpoint.Zero64
	for _, qi := range q {
		p, err := pow(qi, m.alpha)
		if err != nil {
			return fixedpoint.F64{}, err
		}
		sum, err = sum.Add(p)
		if err != nil {
			return fixedpoint.F64{}, err
		}
	}
	return sum, nil
}

// Price returns p_i = q_i^(alpha-1) / sum_j q_j^(alpha-1).
func (m *PMAMM) Price(outcome int) (fixedpoint.F64, error) {
	if outcome < 0 || outcome >= len(m.q) {
		return fixedpoint.F64{}, errors.ErrUnknownOutcome
	}
	alphaMinus1, err := m.alpha.Sub(fixedpoint.One64)
	if err != nil {
		return fixedpoint.F64{}, err
	}
	weights := make([]fixedpoint.F64, len(m.q))
	sum := fixedpoint.Zero64
	for i, qi := range m.q {
		w, err := pow(qi, alphaMinus1)
		if err != nil {
			return fixedpoint.F64{}, err
		}
		weights[i] = w
		sum, err = sum.Add(w)
		if err != nil {
			return fixedpoint.F64{}, err
		}
	}
	if sum.IsZero() {
		return fixedpoint.F64{}, errors.ErrOutsideSafeDomain
	}
	return weights[outcome].Div(sum)
}

// solveRedistribution finds s such that
// (qk+delta)^alpha + sum_{i!=k} (s*q_i)^alpha = K, via damped Newton-Raphson
// started from s0=1 (no redistribution).
func (m *PMAMM) solveRedistribution(k int, qkNew fixedpoint.F64) (fixedpoint.F64, error) {
	s := fixedpoint.One64
	qkTerm, err := pow(qkNew, m.alpha)
	if err != nil {
		return fixedpoint.F64{}, err
	}

	// f returns a Signed value: for s<1 the redistributed sum can fall below
	// the invariant K, so the residual must support a negative result.
	f := func(s fixedpoint.F64) (fixedpoint.Signed, error) {
		sum := qkTerm
		for i, qi := range m.q {
			if i == k {
				continue
			}
			scaled, err := s.Mul(qi)
			if err != nil {
				return fixedpoint.Signed{}, err
			}
			term, err := pow(scaled, m.alpha)
			if err != nil {
				return fixedpoint.Signed{}, err
			}
			sum, err = sum.Add(term)
			if err != nil {
				return fixedpoint.Signed{}, err
			}
		}
		return fixedpoint.Signed{Mag: sum}.Sub(fixedpoint.Signed{Mag: m.k})
	}

	// derivative f'(s) = alpha * sum_{i!=k} q_i * (s*q_i)^(alpha-1)
	alphaMinus1, err := m.alpha.Sub(fixedpoint.One64)
	if err != nil {
		return fixedpoint.F64{}, err
	}
	fPrime := func(s fixedpoint.F64) (fixedpoint.F64, error) {
		sum := fixedpoint.Zero64
		for i, qi := range m.q {
			if i == k {
				continue
			}
			scaled, err := s.Mul(qi)
			if err != nil {
				return fixedpoint.F64{}, err
			}
			p, err := pow(scaled, alphaMinus1)
			if err != nil {
				return fixedpoint.F64{}, err
			}
			term, err := qi.Mul(p)
			if err != nil {
				return fixedpoint.F64{}, err
			}
			sum, err = sum.Add(term)
			if err != nil {
				return fixedpoint.F64{}, err
			}
		}
		return sum.Mul(m.alpha)
	}

	damping := fixedpoint.NewF64FromUint64(pmammDampingNumerator)
	var dampErr error
	damping, dampErr = damping.Div(fixedpoint.NewF64FromUint64(pmammDampingDenominator))
	if dampErr != nil {
		return fixedpoint.F64{}, dampErr
	}

	prevSign := 0
	for iter := 0; iter < pmammNewtonMaxIter; iter++ {
		fv, err := f(s)
		if err != nil {
			return fixedpoint.F64{}, err
		}
		if fv.Mag.Cmp(pmammNewtonTolerance) <= 0 {
			return s, nil
		}
		fp, err := fPrime(s)
		if err != nil {
			return fixedpoint.F64{}, err
		}
		if fp.IsZero() {
			return fixedpoint.F64{}, errors.ErrSolverDidNotConverge
		}
		step, err := fv.Div(fixedpoint.Signed{Mag: fp})
		if err != nil {
			return fixedpoint.F64{}, err
		}

		sign := 1
		if step.Neg {
			sign = -1
		}
		if prevSign != 0 && sign != prevSign {
			// Oscillation detected: apply damping to the step.
			step, err = step.Mul(fixedpoint.Signed{Mag: damping})
			if err != nil {
				return fixedpoint.F64{}, err
			}
		}
		prevSign = sign

		sSigned := fixedpoint.Signed{Mag: s}
		next, err := sSigned.Sub(step)
		if err != nil {
			return fixedpoint.F64{}, err
		}
		if next.Neg {
			// s must stay positive; halve the previous value instead of
			// crossing zero.
			s, err = s.Div(fixedpoint.NewF64FromUint64(2))
			if err != nil {
				return fixedpoint.F64{}, err
			}
			continue
		}
		s = next.Mag
	}
	return fixedpoint.F64{}, errors.ErrSolverDidNotConverge
}

// Cost evaluates the cost of trading the given delta vector without
// mutating state. Only single-outcome delta vectors (exactly one non-zero
// entry) are supported, matching how Trade drives the solver.
func (m *PMAMM) Cost(delta []fixedpoint.Signed) (fixedpoint.Signed, error) {
	if len(delta) != len(m.q) {
		return fixedpoint.Signed{}, errors.ErrUnknownOutcome
	}
	k := -1
	for i, d := range delta {
		if !d.Mag.IsZero() {
			if k != -1 {
				return fixedpoint.Signed{}, errors.ErrOutsideSafeDomain
			}
			k = i
		}
	}
	if k == -1 {
		return fixedpoint.Signed{}, nil
	}
	qkNew, err := fixedpoint.Signed{Mag: m.q[k]}.Add(delta[k])
	if err != nil {
		return fixedpoint.Signed{}, err
	}
	if qkNew.Neg {
		return fixedpoint.Signed{}, errors.ErrOutsideSafeDomain
	}
	if _, err := m.solveRedistribution(k, qkNew.Mag); err != nil {
		return fixedpoint.Signed{}, err
	}
	// Cost is valued at the pre-trade marginal price of the traded outcome
	// (price-weighted quantity delta), unlike LMSR's cost-function
	// difference; the solve above only needs to confirm the redistribution
	// converges.
	preTradePrice, err := m.Price(k)
	if err != nil {
		return fixedpoint.Signed{}, err
	}
	return delta[k].Mul(fixedpoint.Signed{Mag: preTradePrice})
}

// Trade buys/sells `size` units of `outcome`, solving for the redistribution
// factor and applying it to every other outcome's quantity.
func (m *PMAMM) Trade(outcome int, size fixedpoint.Signed, maxSlippageBp uint32) (Fill, error) {
	if outcome < 0 || outcome >= len(m.q) {
		return Fill{}, errors.ErrUnknownOutcome
	}
	preTradePrice, err := m.Price(outcome)
	if err != nil {
		return Fill{}, err
	}

	qkNew, err := fixedpoint.Signed{Mag: m.q[outcome]}.Add(size)
	if err != nil {
		return Fill{}, err
	}
	if qkNew.Neg {
		return Fill{}, errors.ErrOutsideSafeDomain
	}

	s, err := m.solveRedistribution(outcome, qkNew.Mag)
	if err != nil {
		return Fill{}, err
	}

	saved := make([]fixedpoint.F64, len(m.q))
	copy(saved, m.q)

	for i := range m.q {
		if i == outcome {
			m.q[i] = qkNew.Mag
			continue
		}
		scaled, err := s.Mul(m.q[i])
		if err != nil {
			m.q = saved
			return Fill{}, err
		}
		m.q[i] = scaled
	}

	newPrice, err := m.Price(outcome)
	if err != nil {
		m.q = saved
		return Fill{}, err
	}
	if err := m.validate(outcome, newPrice); err != nil {
		m.q = saved
		return Fill{}, err
	}
	if err := checkSlippage(preTradePrice, newPrice, maxSlippageBp); err != nil {
		m.q = saved
		return Fill{}, err
	}

	cost, err := size.Mul(fixedpoint.Signed{Mag: preTradePrice})
	if err != nil {
		m.q = saved
		return Fill{}, err
	}

	quantities := make([]fixedpoint.Signed, len(m.q))
	for i, qi := range m.q {
		quantities[i] = fixedpoint.Signed{Mag: qi}
	}
	return Fill{Outcome: outcome, Price: newPrice, Cost: cost, NewQuantities: quantities}, nil
}

func (m *PMAMM) ValidateClamp(outcome int, newPrice fixedpoint.F64) error {
	return m.validate(outcome, newPrice)
}

func (m *PMAMM) BeginSlot() {
	m.beginSlot(func(i int) fixedpoint.F64 {
		p, _ := m.Price(i)
		return p
	}, len(m.q))
}
