// Package amm implements the three-member AMM family (spec §4.B): LMSR for
// binary markets, a parimutuel-style AMM for 2-64 outcomes, and an
// L2-norm-preserving discretized engine for >64 outcomes / continuous
// distributions. All three share one capability-set contract rather than a
// duck-typed enum dispatch (spec §9 design notes): callers hold a Contract
// and never branch on a type tag themselves.
package amm

import (
	"predmarket/engine/core/errors"
	"predmarket/engine/core/fixedpoint"
)

// Kind identifies which of the three compile-time-known AMM variants backs a
// Contract. There is no dynamic registration of additional kinds.
type Kind int

const (
	KindLMSR Kind = iota
	KindPMAMM
	KindL2
)

func (k Kind) String() string {
	switch k {
	case KindLMSR:
		return "lmsr"
	case KindPMAMM:
		return "pmamm"
	case KindL2:
		return "l2"
	default:
		return "unknown"
	}
}

// KindFor selects the AMM variant deterministically from the outcome count
// and continuity flag, matching spec §4.B's immutability rule: the choice is
// a pure function of (N, continuous), never a user-facing override.
func KindFor(outcomes int, continuous bool) Kind {
	switch {
	case continuous || outcomes > 64:
		return KindL2
	case outcomes <= 1:
		return KindLMSR
	default:
		return KindPMAMM
	}
}

// Fill describes the outcome of an accepted trade.
type Fill struct {
	Outcome       int
	Price         fixedpoint.F64
	Cost          fixedpoint.Signed
	NewQuantities []fixedpoint.Signed
}

// Contract is the capability set every AMM variant implements: price
// discovery, cost evaluation, trade execution, and per-slot clamp
// validation. This is the polymorphic surface spec §9 calls for in place of
// duck-typed dispatch.
type Contract interface {
	Kind() Kind
	Outcomes() int

	// Price returns the marginal price of the given outcome index.
	Price(outcome int) (fixedpoint.F64, error)

	// Cost returns the signed cost to move the quantity vector by delta
	// (positive = user pays, negative = user receives). len(delta) must
	// equal Outcomes().
	Cost(delta []fixedpoint.Signed) (fixedpoint.Signed, error)

	// Trade executes a trade of `size` (signed quantity delta) against the
	// given outcome, subject to the per-slot price clamp and the caller's
	// slippage tolerance. On success it mutates internal state and returns
	// the resulting Fill; on failure state is left untouched.
	Trade(outcome int, size fixedpoint.Signed, maxSlippageBp uint32) (Fill, error)

	// ValidateClamp reports whether moving `outcome`'s price to `newPrice`
	// is within the 200bp-per-slot clamp measured against the price cached
	// at slot start (spec §4.B: "measured against the price at slot start,
	// not per-trade").
	ValidateClamp(outcome int, newPrice fixedpoint.F64) error

	// BeginSlot snapshots the current prices as the slot-start reference for
	// ValidateClamp and should be called once per slot by the scheduler.
	BeginSlot()
}

// clampBasisPoints is the 200bp (2%) per-slot price clamp shared by every
// AMM variant (spec §4.B).
const clampBasisPoints = 200

// basisPointsDenominator represents 100% in basis points.
const basisPointsDenominator = 10_000

// clampGuard holds the slot-start price snapshot used by ValidateClamp. It
// is embedded by each concrete AMM so the clamp rule is implemented exactly
// once.
type clampGuard struct {
	slotStartPrices []fixedpoint.F64
}

func newClampGuard(n int) clampGuard {
	return clampGuard{slotStartPrices: make([]fixedpoint.F64, n)}
}

func (g *clampGuard) beginSlot(current func(int) fixedpoint.F64, n int) {
	for i := 0; i < n; i++ {
		g.slotStartPrices[i] = current(i)
	}
}

func (g *clampGuard) validate(outcome int, newPrice fixedpoint.F64) error {
	if outcome < 0 || outcome >= len(g.slotStartPrices) {
		return errors.ErrUnknownOutcome
	}
	start := g.slotStartPrices[outcome]
	if start.IsZero() {
		return nil
	}
	var diff fixedpoint.F64
	var err error
	if newPrice.Cmp(start) >= 0 {
		diff, err = newPrice.Sub(start)
	} else {
		diff, err = start.Sub(newPrice)
	}
	if err != nil {
		return err
	}
	movedBp, err := diff.Mul(fixedpoint.NewF64FromUint64(basisPointsDenominator))
	if err != nil {
		return err
	}
	movedBp, err = movedBp.Div(start)
	if err != nil {
		return err
	}
	limit := fixedpoint.NewF64FromUint64(clampBasisPoints)
	if movedBp.Cmp(limit) > 0 {
		return errors.ErrPriceClampExceeded
	}
	return nil
}

// checkSlippage validates that the realized average fill price does not
// deviate from the pre-trade marginal price by more than maxSlippageBp.
func checkSlippage(preTradePrice, fillPrice fixedpoint.F64, maxSlippageBp uint32) error {
	if maxSlippageBp == 0 {
		return nil
	}
	var diff fixedpoint.F64
	var err error
	if fillPrice.Cmp(preTradePrice) >= 0 {
		diff, err = fillPrice.Sub(preTradePrice)
	} else {
		diff, err = preTradePrice.Sub(fillPrice)
	}
	if err != nil {
		return err
	}
	if preTradePrice.IsZero() {
		return nil
	}
	movedBp, err := diff.Mul(fixedpoint.NewF64FromUint64(basisPointsDenominator))
	if err != nil {
		return err
	}
	movedBp, err = movedBp.Div(preTradePrice)
	if err != nil {
		return err
	}
	limit := fixedpoint.NewF64FromUint64(uint64(maxSlippageBp))
	if movedBp.Cmp(limit) > 0 {
		return errors.ErrSlippageExceeded
	}
	return nil
}
