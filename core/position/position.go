// Package position implements the position and margin engine (spec §4.E):
// initial margin sizing, leverage tier/coverage/depth caps, mark-driven
// recomputation of unrealized PnL and liquidation price, and the close path.
package position

import (
	"predmarket/engine/core/errors"
	"predmarket/engine/core/fixedpoint"
	"predmarket/engine/core/types"
)

// Side identifies whether a position is long or short the outcome/bin it
// was opened against.
type Side int

const (
	Long Side = iota
	Short
)

// sign returns +1 for Long, -1 for Short, matching the spec's
// "(mark-entry)*size*sign" PnL formula.
func (s Side) sign() fixedpoint.Signed {
	if s == Short {
		return fixedpoint.SignedFromInt64(-1)
	}
	return fixedpoint.SignedFromInt64(1)
}

// Position tracks one open exposure (spec §3's Position record).
type Position struct {
	ID      types.PositionID
	Side    Side
	Outcome int // which outcome index or bin the position is long/short against
	Size    fixedpoint.F64 // notional
	Collateral fixedpoint.F64
	Leverage   uint32 // chosen at open, in whole multiples (1x..500x)

	EntryPrice fixedpoint.F64
	MarkPrice  fixedpoint.F64

	InitialMargin fixedpoint.F64 // MR at open

	UnrealizedPnL fixedpoint.Signed
	EffectiveLeverage fixedpoint.F64
	LiquidationPrice  fixedpoint.F64

	ChainMember        bool
	PartiallyLiquidated bool
	Closed              bool
}

// globalLeverageCap is the absolute ceiling regardless of tier, coverage, or
// chain depth (spec §4.E).
const globalLeverageCap = 500

// tierCapFor returns tier_cap(N), the outcome-count-indexed leverage
// ceiling (spec §4.E's table).
func tierCapFor(outcomes int) uint32 {
	switch {
	case outcomes <= 1:
		return 100
	case outcomes == 2:
		return 70
	case outcomes <= 4:
		return 25
	case outcomes <= 8:
		return 15
	case outcomes <= 16:
		return 12
	case outcomes <= 64:
		return 10
	default:
		return 5
	}
}

// MaxLeverage computes min(tier_cap(N), coverageCap, 100*(1+0.1*depth)),
// further clamped by the global 500x ceiling (spec §4.E).
func MaxLeverage(outcomes int, coverageCap uint32, chainDepth int) uint32 {
	cap := tierCapFor(outcomes)
	if coverageCap < cap {
		cap = coverageCap
	}
	// 100*(1+0.1*depth) = 100 + 10*depth, which stays exact in plain integer
	// arithmetic since depth is always a small whole number (chain depth is
	// capped at 3 by core/fees' flash-loan rule).
	depthCap := uint32(100 + 10*chainDepth)
	if depthCap < cap {
		cap = depthCap
	}
	if cap > globalLeverageCap {
		cap = globalLeverageCap
	}
	return cap
}

// fVolatilityAdjustment computes f(N) = 1 + 0.1*(N-1) (spec §4.E).
func fVolatilityAdjustment(outcomes int) (fixedpoint.F64, error) {
	n := outcomes - 1
	if n < 0 {
		n = 0
	}
	term, err := fixedpoint.NewF64FromUint64(uint64(n)).Div(fixedpoint.NewF64FromUint64(10))
	if err != nil {
		return fixedpoint.F64{}, err
	}
	return fixedpoint.One64.Add(term)
}

// InitialMargin computes MR = 1/lev + sigma*sqrt(lev)*f(N) (spec §4.E).
func InitialMargin(leverage uint32, sigma fixedpoint.F64, outcomes int) (fixedpoint.F64, error) {
	if leverage == 0 {
		return fixedpoint.F64{}, errors.ErrInvalidLeg
	}
	levF := fixedpoint.NewF64FromUint64(uint64(leverage))
	invLev, err := fixedpoint.One64.Div(levF)
	if err != nil {
		return fixedpoint.F64{}, err
	}
	sqrtLev, err := levF.Sqrt()
	if err != nil {
		return fixedpoint.F64{}, err
	}
	fN, err := fVolatilityAdjustment(outcomes)
	if err != nil {
		return fixedpoint.F64{}, err
	}
	volTerm, err := sigma.Mul(sqrtLev)
	if err != nil {
		return fixedpoint.F64{}, err
	}
	volTerm, err = volTerm.Mul(fN)
	if err != nil {
		return fixedpoint.F64{}, err
	}
	return invLev.Add(volTerm)
}

// Open constructs a new position, locking collateral = size*MR and
// rejecting a leverage choice above the supplied cap.
func Open(id types.PositionID, side Side, size fixedpoint.F64, leverage uint32, maxLeverage uint32, sigma fixedpoint.F64, outcomes int, entryPrice fixedpoint.F64) (*Position, error) {
	if leverage > maxLeverage {
		return nil, errors.ErrLeverageTooHigh
	}
	mr, err := InitialMargin(leverage, sigma, outcomes)
	if err != nil {
		return nil, err
	}
	collateral, err := size.Mul(mr)
	if err != nil {
		return nil, err
	}
	p := &Position{
		ID:            id,
		Side:          side,
		Size:          size,
		Collateral:    collateral,
		Leverage:      leverage,
		EntryPrice:    entryPrice,
		MarkPrice:     entryPrice,
		InitialMargin: mr,
		EffectiveLeverage: fixedpoint.NewF64FromUint64(uint64(leverage)),
	}
	if err := p.Remark(entryPrice); err != nil {
		return nil, err
	}
	return p, nil
}

// effectiveLeverageFloorNumerator/Denominator give the 10% floor spec §4.E applies to
// effective_leverage relative to the position's original leverage.
const effectiveLeverageFloorNumerator = 1
const effectiveLeverageFloorDenominator = 10

// Remark recomputes unrealized PnL, effective leverage, and liquidation
// price against a new mark price (spec §4.E, run on every price update).
func (p *Position) Remark(mark fixedpoint.F64) error {
	if p.Closed {
		return errors.ErrPositionClosed
	}
	p.MarkPrice = mark

	var diff fixedpoint.Signed
	if mark.Cmp(p.EntryPrice) >= 0 {
		d, derr := mark.Sub(p.EntryPrice)
		if derr != nil {
			return derr
		}
		diff = fixedpoint.Signed{Mag: d}
	} else {
		d, derr := p.EntryPrice.Sub(mark)
		if derr != nil {
			return derr
		}
		diff = fixedpoint.Signed{Neg: true, Mag: d}
	}

	pnl, err := diff.Mul(fixedpoint.Signed{Mag: p.Size})
	if err != nil {
		return err
	}
	pnl, err = pnl.Mul(p.Side.sign())
	if err != nil {
		return err
	}
	p.UnrealizedPnL = pnl

	if p.Collateral.IsZero() {
		return errors.ErrInternal
	}
	pnlPct, err := pnl.Div(fixedpoint.Signed{Mag: p.Collateral})
	if err != nil {
		return err
	}

	one := fixedpoint.Signed{Mag: fixedpoint.One64}
	factor, err := one.Sub(pnlPct)
	if err != nil {
		return err
	}
	levF := fixedpoint.Signed{Mag: fixedpoint.NewF64FromUint64(uint64(p.Leverage))}
	effLev, err := levF.Mul(factor)
	if err != nil {
		return err
	}

	floor, err := levF.Mul(fixedpoint.Signed{Mag: func() fixedpoint.F64 {
		v, _ := fixedpoint.NewF64FromUint64(effectiveLeverageFloorNumerator).Div(fixedpoint.NewF64FromUint64(effectiveLeverageFloorDenominator))
		return v
	}()})
	if err != nil {
		return err
	}
	if effLev.Cmp(floor) < 0 {
		effLev = floor
	}
	if effLev.Cmp(one) < 0 {
		effLev = one
	}
	p.EffectiveLeverage = effLev.Mag

	mrOverEffLev, err := p.InitialMargin.Div(p.EffectiveLeverage)
	if err != nil {
		return err
	}
	if p.Side == Long {
		factor, err := fixedpoint.One64.Sub(mrOverEffLev)
		if err != nil {
			return err
		}
		liq, err := p.EntryPrice.Mul(factor)
		if err != nil {
			return err
		}
		p.LiquidationPrice = liq
	} else {
		factor, err := fixedpoint.One64.Add(mrOverEffLev)
		if err != nil {
			return err
		}
		liq, err := p.EntryPrice.Mul(factor)
		if err != nil {
			return err
		}
		p.LiquidationPrice = liq
	}
	return nil
}

// Close realizes PnL (returned for the caller to route into vault/owner) and
// marks the position closed. Collateral release is the caller's
// responsibility once the realized PnL has been applied.
func (p *Position) Close() (fixedpoint.Signed, error) {
	if p.Closed {
		return fixedpoint.Signed{}, errors.ErrPositionClosed
	}
	p.Closed = true
	return p.UnrealizedPnL, nil
}

// Health returns collateral-remaining-after-unrealized-PnL divided by
// original collateral, the ratio the liquidation engine compares against its
// threshold (spec §4.F).
func (p *Position) Health() (fixedpoint.Signed, error) {
	remaining, err := fixedpoint.Signed{Mag: p.Collateral}.Add(p.UnrealizedPnL)
	if err != nil {
		return fixedpoint.Signed{}, err
	}
	return remaining.Div(fixedpoint.Signed{Mag: p.Collateral})
}
