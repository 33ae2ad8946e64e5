package amm

import (
	"predmarket/engine/core/errors"
	"predmarket/engine/core/fixedpoint"
)

// LMSR implements Hanson's logarithmic market scoring rule for a binary
// (yes/no) market: C(q) = b * ln(exp(q_yes/b) + exp(q_no/b)). The cost
// function's convexity is what bounds a market maker's worst-case loss to
// b*ln(2) (spec §4.B), which is why LMSR is reserved for the two-outcome
// case rather than generalized to N outcomes here.
type LMSR struct {
	clampGuard

	b fixedpoint.F64
	// q holds the signed net quantity sold for each outcome (index 0 = yes,
	// 1 = no).
	q [2]fixedpoint.Signed
}

// NewLMSR constructs a fresh LMSR market with liquidity parameter b and zero
// quantities sold (spec scenario 1: b=1000, q=(0,0) -> price(yes)=0.5).
func NewLMSR(b fixedpoint.F64) *LMSR {
	m := &LMSR{b: b, clampGuard: newClampGuard(2)}
	price, _ := m.Price(0)
	m.slotStartPrices[0] = price
	price, _ = m.Price(1)
	m.slotStartPrices[1] = price
	return m
}

func (m *LMSR) Kind() Kind     { return KindLMSR }
func (m *LMSR) Outcomes() int { return 2 }

// expTerms returns exp(q_i/b) for both outcomes.
func (m *LMSR) expTerms() ([2]fixedpoint.F64, error) {
	var out [2]fixedpoint.F64
	for i, qi := range m.q {
		arg, err := qi.Div(fixedpoint.Signed{Mag: m.b})
		if err != nil {
			return out, err
		}
		e, err := fixedpoint.Exp(arg)
		if err != nil {
			return out, err
		}
		out[i] = e
	}
	return out, nil
}

// Price returns p_i = exp(q_i/b) / sum_j exp(q_j/b).
func (m *LMSR) Price(outcome int) (fixedpoint.F64, error) {
	if outcome < 0 || outcome > 1 {
		return fixedpoint.F64{}, errors.ErrUnknownOutcome
	}
	terms, err := m.expTerms()
	if err != nil {
		return fixedpoint.F64{}, err
	}
	sum, err := terms[0].Add(terms[1])
	if err != nil {
		return fixedpoint.F64{}, err
	}
	return terms[outcome].Div(sum)
}

// cost evaluates C(q) = b * ln(sum_j exp(q_j/b)) for the current quantities.
func (m *LMSR) cost() (fixedpoint.Signed, error) {
	terms, err := m.expTerms()
	if err != nil {
		return fixedpoint.Signed{}, err
	}
	sum, err := terms[0].Add(terms[1])
	if err != nil {
		return fixedpoint.Signed{}, err
	}
	lnSum, err := fixedpoint.Ln(sum)
	if err != nil {
		return fixedpoint.Signed{}, err
	}
	return lnSum.Mul(fixedpoint.Signed{Mag: m.b})
}

// Cost returns the cost of moving the quantity vector by delta without
// mutating state.
func (m *LMSR) Cost(delta []fixedpoint.Signed) (fixedpoint.Signed, error) {
	if len(delta) != 2 {
		return fixedpoint.Signed{}, errors.ErrUnknownOutcome
	}
	before, err := m.cost()
	if err != nil {
		return fixedpoint.Signed{}, err
	}
	saved := m.q
	defer func() { m.q = saved }()
	for i := range m.q {
		m.q[i], err = m.q[i].Add(delta[i])
		if err != nil {
			return fixedpoint.Signed{}, err
		}
	}
	after, err := m.cost()
	if err != nil {
		return fixedpoint.Signed{}, err
	}
	return after.Sub(before)
}

// Trade buys/sells `size` shares of `outcome`, applying the clamp and
// slippage checks before committing the new quantities.
func (m *LMSR) Trade(outcome int, size fixedpoint.Signed, maxSlippageBp uint32) (Fill, error) {
	if outcome < 0 || outcome > 1 {
		return Fill{}, errors.ErrUnknownOutcome
	}
	preTradePrice, err := m.Price(outcome)
	if err != nil {
		return Fill{}, err
	}

	delta := [2]fixedpoint.Signed{}
	delta[outcome] = size

	cost, err := m.Cost(delta[:])
	if err != nil {
		return Fill{}, err
	}

	saved := m.q
	for i := range m.q {
		m.q[i], err = m.q[i].Add(delta[i])
		if err != nil {
			m.q = saved
			return Fill{}, err
		}
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

	return Fill{
		Outcome:       outcome,
		Price:         newPrice,
		Cost:          cost,
		NewQuantities: []fixedpoint.Signed{m.q[0], m.q[1]},
	}, nil
}

func (m *LMSR) ValidateClamp(outcome int, newPrice fixedpoint.F64) error {
	return m.validate(outcome, newPrice)
}

func (m *LMSR) BeginSlot() {
	m.beginSlot(func(i int) fixedpoint.F64 {
		p, _ := m.Price(i)
		return p
	}, 2)
}
