// Package liquidation implements the margin liquidation engine (spec §4.F):
// the liquidatability check, graduated partial-close sizing, the per-slot
// per-market notional cap, the bounded priority queue, chain-unwind
// ordering, and keeper reward routing.
package liquidation

import (
	"predmarket/engine/core/fixedpoint"
	"predmarket/engine/core/position"
)

// defaultHealthThreshold is the health ratio below which a position becomes
// liquidatable (spec §4.F: "threshold (default 0)").
var defaultHealthThreshold = fixedpoint.Signed{}

// partialCloseNumerator/Denominator is the normal-mode partial-close
// fraction (spec §4.F: "50% * position.size").
const partialCloseNumerator = 1
const partialCloseDenominator = 2

// emergencyCloseNumerator/Denominator is the emergency-mode partial-close
// fraction (spec §4.F: "up to 90%").
const emergencyCloseNumerator = 9
const emergencyCloseDenominator = 10

// keeperRewardBp is the share of liquidated notional credited to the
// submitting keeper (spec §4.F: "5 bp of liquidated notional"); the
// remainder of seized collateral goes to vault.
const keeperRewardBp = 5
const basisPointsDenominator = 10_000

// crossedAdverseSide reports whether mark has crossed liquidation_price in
// the direction that hurts the position holder (spec §4.F): for a long,
// adverse means mark has fallen to or through the liquidation price; for a
// short, adverse means mark has risen to or through it.
func crossedAdverseSide(p *position.Position) bool {
	if p.Side == position.Long {
		return p.MarkPrice.Cmp(p.LiquidationPrice) <= 0
	}
	return p.MarkPrice.Cmp(p.LiquidationPrice) >= 0
}

// IsLiquidatable reports whether a position may be liquidated right now:
// mark has crossed liquidation_price adversely AND health has fallen below
// threshold (spec §4.F).
func IsLiquidatable(p *position.Position, threshold fixedpoint.Signed) (bool, error) {
	if p.Closed {
		return false, nil
	}
	if !crossedAdverseSide(p) {
		return false, nil
	}
	health, err := p.Health()
	if err != nil {
		return false, err
	}
	return health.Cmp(threshold) < 0, nil
}

// CloseSize computes the notional to close in a single liquidation action:
// min(position.size, cap_remaining_this_slot, fraction*position.size), with
// the fraction widened to 90% in emergency mode (spec §4.F).
func CloseSize(p *position.Position, capRemaining fixedpoint.F64, emergency bool) (fixedpoint.F64, error) {
	num, den := partialCloseNumerator, partialCloseDenominator
	if emergency {
		num, den = emergencyCloseNumerator, emergencyCloseDenominator
	}
	fraction, err := fixedpoint.NewF64FromUint64(uint64(num)).Div(fixedpoint.NewF64FromUint64(uint64(den)))
	if err != nil {
		return fixedpoint.F64{}, err
	}
	fractional, err := p.Size.Mul(fraction)
	if err != nil {
		return fixedpoint.F64{}, err
	}

	size := p.Size
	if fractional.Cmp(size) < 0 {
		size = fractional
	}
	if capRemaining.Cmp(size) < 0 {
		size = capRemaining
	}
	return size, nil
}

// KeeperReward splits liquidated notional into the keeper's fixed 5bp
// reward and the vault's remainder (spec §4.F), following the same
// explicit-named-destination-shares shape as core/fees.Split.
type KeeperReward struct {
	Keeper fixedpoint.F64
	Vault  fixedpoint.F64
}

// SplitKeeperReward computes KeeperReward for a given liquidated notional.
func SplitKeeperReward(liquidatedNotional fixedpoint.F64) (KeeperReward, error) {
	keeper, err := liquidatedNotional.Mul(fixedpoint.NewF64FromUint64(keeperRewardBp))
	if err != nil {
		return KeeperReward{}, err
	}
	keeper, err = keeper.Div(fixedpoint.NewF64FromUint64(basisPointsDenominator))
	if err != nil {
		return KeeperReward{}, err
	}
	vault, err := liquidatedNotional.Sub(keeper)
	if err != nil {
		return KeeperReward{}, err
	}
	return KeeperReward{Keeper: keeper, Vault: vault}, nil
}

// UnwindChain liquidates every currently liquidatable leg of a chain, in the
// fixed Stake->Liquidate->Borrow order (spec §4.F, using
// core/position.Chain.UnwindOrder for the ordering itself), stopping each
// leg's close at capRemaining and returning the total notional closed plus
// the chain's updated closed state. Each leg close also obeys CloseSize's
// 50%/90% fraction; the caller (the scheduler) is responsible for
// decrementing capRemaining across ticks.
func UnwindChain(arena *position.Arena, chain *position.Chain, threshold fixedpoint.Signed, capRemaining fixedpoint.F64, emergency bool) (fixedpoint.F64, error) {
	if chain.Closed {
		return fixedpoint.Zero64, nil
	}
	order, err := chain.UnwindOrder(arena)
	if err != nil {
		return fixedpoint.F64{}, err
	}

	total := fixedpoint.Zero64
	remaining := capRemaining
	for _, idx := range order {
		leg, err := arena.Leg(idx)
		if err != nil {
			return fixedpoint.F64{}, err
		}
		p := leg.Position
		if p == nil || p.Closed {
			continue
		}
		liquidatable, err := IsLiquidatable(p, threshold)
		if err != nil {
			return fixedpoint.F64{}, err
		}
		if !liquidatable {
			continue
		}
		if remaining.IsZero() {
			break
		}
		closeSize, err := CloseSize(p, remaining, emergency)
		if err != nil {
			return fixedpoint.F64{}, err
		}
		if closeSize.IsZero() {
			continue
		}
		total, err = total.Add(closeSize)
		if err != nil {
			return fixedpoint.F64{}, err
		}
		remaining, err = remaining.Sub(closeSize)
		if err != nil {
			return fixedpoint.F64{}, err
		}
		if closeSize.Cmp(p.Size) == 0 {
			if _, err := p.Close(); err != nil {
				return fixedpoint.F64{}, err
			}
		} else {
			p.PartiallyLiquidated = true
			p.Size, err = p.Size.Sub(closeSize)
			if err != nil {
				return fixedpoint.F64{}, err
			}
		}
	}

	allClosed, err := chain.AllClosed(arena)
	if err != nil {
		return fixedpoint.F64{}, err
	}
	if allClosed {
		chain.Closed = true
	}
	return total, nil
}

// DefaultThreshold exposes the spec's default liquidation health threshold
// for callers that don't override it.
func DefaultThreshold() fixedpoint.Signed { return defaultHealthThreshold }
