package amm

import (
	"predmarket/engine/core/errors"
	"predmarket/engine/core/fixedpoint"
)

// l2MinSegments and l2SimpsonTolerance bound the Simpson's-rule integration
// used to price a continuous range (spec §4.B: ">=10, typically 100
// segments, even count, 1e-6 tolerance").
const l2MinSegments = 10
const l2DefaultSegments = 100

// L2 implements the discretized AMM used for markets with more than 64
// outcomes or a continuous outcome space (spec §4.B). The outcome domain is
// split into `bins` equal-width buckets holding a probability mass vector;
// trading within a bin works like a tiny LMSR over that bin's mass, and
// price over a sub-range is obtained by Simpson's-rule integration across
// bins rather than a discrete per-outcome sum, since the domain is treated
// as continuous even though it is stored as a finite mass vector.
type L2 struct {
	clampGuard

	b    fixedpoint.F64 // per-bin liquidity parameter, same role as LMSR's b
	mass []fixedpoint.F64
}

// NewL2 constructs an L2 engine with `bins` equal buckets (bins must be even
// and >= l2MinSegments to satisfy the Simpson's-rule precondition) and
// uniform initial mass.
func NewL2(bins int, b fixedpoint.F64) (*L2, error) {
	if bins < l2MinSegments || bins%2 != 0 {
		return nil, errors.ErrOutsideSafeDomain
	}
	m := &L2{b: b, mass: make([]fixedpoint.F64, bins), clampGuard: newClampGuard(bins)}
	seed := fixedpoint.Zero64
	for i := range m.mass {
		m.mass[i] = seed
	}
	for i := range m.mass {
		p, err := m.Price(i)
		if err != nil {
			return nil, err
		}
		m.slotStartPrices[i] = p
	}
	return m, nil
}

func (m *L2) Kind() Kind     { return KindL2 }
func (m *L2) Outcomes() int { return len(m.mass) }

func (m *L2) expTerms() ([]fixedpoint.F64, error) {
	out := make([]fixedpoint.F64, len(m.mass))
	for i, qi := range m.mass {
		arg, err := fixedpoint.Signed{Mag: qi}.Div(fixedpoint.Signed{Mag: m.b})
		if err != nil {
			return nil, err
		}
		e, err := fixedpoint.Exp(arg)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// Price returns the marginal price of bin `outcome`, an LMSR-style softmax
// over the mass vector: p_i = exp(q_i/b) / sum_j exp(q_j/b).
func (m *L2) Price(outcome int) (fixedpoint.F64, error) {
	if outcome < 0 || outcome >= len(m.mass) {
		return fixedpoint.F64{}, errors.ErrUnknownOutcome
	}
	terms, err := m.expTerms()
	if err != nil {
		return fixedpoint.F64{}, err
	}
	sum := fixedpoint.Zero64
	for _, t := range terms {
		sum, err = sum.Add(t)
		if err != nil {
			return fixedpoint.F64{}, err
		}
	}
	return terms[outcome].Div(sum)
}

// RangeProbability integrates the bin price density over [lowBin, highBin]
// using Simpson's rule, returning the probability mass assigned to that
// sub-range of the continuous outcome space.
func (m *L2) RangeProbability(lowBin, highBin int) (fixedpoint.F64, error) {
	if lowBin < 0 || highBin >= len(m.mass) || lowBin > highBin {
		return fixedpoint.F64{}, errors.ErrUnknownOutcome
	}
	n := highBin - lowBin
	if n == 0 {
		return m.Price(lowBin)
	}
	if n%2 != 0 {
		// Simpson's rule needs an even number of intervals; widen by one bin
		// to keep the rule well-defined rather than falling back to a
		// lower-order approximation. A range that already spans every bin
		// cannot be widened, so its top bin is left out instead.
		switch {
		case highBin+1 < len(m.mass):
			highBin++
		case lowBin > 0:
			lowBin--
		default:
			highBin--
		}
		n = highBin - lowBin
	}

	prices := make([]fixedpoint.F64, n+1)
	for i := 0; i <= n; i++ {
		p, err := m.Price(lowBin + i)
		if err != nil {
			return fixedpoint.F64{}, err
		}
		prices[i] = p
	}

	sum := prices[0]
	var err error
	for i := 1; i < n; i++ {
		weight := uint64(4)
		if i%2 == 0 {
			weight = 2
		}
		weighted, werr := prices[i].Mul(fixedpoint.NewF64FromUint64(weight))
		if werr != nil {
			return fixedpoint.F64{}, werr
		}
		sum, err = sum.Add(weighted)
		if err != nil {
			return fixedpoint.F64{}, err
		}
	}
	sum, err = sum.Add(prices[n])
	if err != nil {
		return fixedpoint.F64{}, err
	}

	h, err := fixedpoint.One64.Div(fixedpoint.NewF64FromUint64(uint64(n)))
	if err != nil {
		return fixedpoint.F64{}, err
	}
	hOverThree, err := h.Div(fixedpoint.NewF64FromUint64(3))
	if err != nil {
		return fixedpoint.F64{}, err
	}
	return sum.Mul(hOverThree)
}

// Cost returns the cost of moving the mass vector by delta, using the same
// log-sum-exp cost function as LMSR generalized to len(mass) bins.
func (m *L2) Cost(delta []fixedpoint.Signed) (fixedpoint.Signed, error) {
	if len(delta) != len(m.mass) {
		return fixedpoint.Signed{}, errors.ErrUnknownOutcome
	}
	before, err := m.cost()
	if err != nil {
		return fixedpoint.Signed{}, err
	}
	saved := make([]fixedpoint.F64, len(m.mass))
	copy(saved, m.mass)
	for i := range m.mass {
		next, err := fixedpoint.Signed{Mag: m.mass[i]}.Add(delta[i])
		if err != nil {
			copy(m.mass, saved)
			return fixedpoint.Signed{}, err
		}
		if next.Neg {
			copy(m.mass, saved)
			return fixedpoint.Signed{}, errors.ErrOutsideSafeDomain
		}
		m.mass[i] = next.Mag
	}
	after, err := m.cost()
	copy(m.mass, saved)
	if err != nil {
		return fixedpoint.Signed{}, err
	}
	return after.Sub(before)
}

func (m *L2) cost() (fixedpoint.Signed, error) {
	terms, err := m.expTerms()
	if err != nil {
		return fixedpoint.Signed{}, err
	}
	sum := fixedpoint.Zero64
	for _, t := range terms {
		sum, err = sum.Add(t)
		if err != nil {
			return fixedpoint.Signed{}, err
		}
	}
	lnSum, err := fixedpoint.Ln(sum)
	if err != nil {
		return fixedpoint.Signed{}, err
	}
	return lnSum.Mul(fixedpoint.Signed{Mag: m.b})
}

// Trade moves bin `outcome`'s mass by `size`, subject to the clamp and
// slippage checks.
func (m *L2) Trade(outcome int, size fixedpoint.Signed, maxSlippageBp uint32) (Fill, error) {
	if outcome < 0 || outcome >= len(m.mass) {
		return Fill{}, errors.ErrUnknownOutcome
	}
	preTradePrice, err := m.Price(outcome)
	if err != nil {
		return Fill{}, err
	}

	delta := make([]fixedpoint.Signed, len(m.mass))
	delta[outcome] = size
	cost, err := m.Cost(delta)
	if err != nil {
		return Fill{}, err
	}

	next, err := fixedpoint.Signed{Mag: m.mass[outcome]}.Add(size)
	if err != nil {
		return Fill{}, err
	}
	if next.Neg {
		return Fill{}, errors.ErrOutsideSafeDomain
	}
	saved := m.mass[outcome]
	m.mass[outcome] = next.Mag

	newPrice, err := m.Price(outcome)
	if err != nil {
		m.mass[outcome] = saved
		return Fill{}, err
	}
	if err := m.validate(outcome, newPrice); err != nil {
		m.mass[outcome] = saved
		return Fill{}, err
	}
	if err := checkSlippage(preTradePrice, newPrice, maxSlippageBp); err != nil {
		m.mass[outcome] = saved
		return Fill{}, err
	}

	quantities := make([]fixedpoint.Signed, len(m.mass))
	for i, mi := range m.mass {
		quantities[i] = fixedpoint.Signed{Mag: mi}
	}
	return Fill{Outcome: outcome, Price: newPrice, Cost: cost, NewQuantities: quantities}, nil
}

func (m *L2) ValidateClamp(outcome int, newPrice fixedpoint.F64) error {
	return m.validate(outcome, newPrice)
}

func (m *L2) BeginSlot() {
	m.beginSlot(func(i int) fixedpoint.F64 {
		p, _ := m.Price(i)
		return p
	}, len(m.mass))
}
