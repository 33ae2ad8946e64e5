package liquidation

import (
	"predmarket/engine/core/errors"
	"predmarket/engine/core/fixedpoint"
	"predmarket/engine/core/types"
)

// SlotCap tracks the per-market, per-slot liquidation notional accumulator
// (spec §4.F: "A per-market accumulator resets each slot"), following the
// same epoch-keyed reset-on-rollover shape as the teacher's
// native/common.CheckQuota, with the epoch being the current slot instead of
// a wall-clock epoch id.
type SlotCap struct {
	slot        types.Slot
	accumulated fixedpoint.F64
}

// capBasisPointsFloor, capBasisPointsCeil bound liq_cap_bp (spec §4.F:
// "clamp(200, 150*sigma_bp, 800)").
const capBasisPointsFloor = 200
const capBasisPointsCeil = 800

// CapBp returns liq_cap_bp = clamp(200, 150*sigmaBp, 800) for the given
// market volatility estimate (expressed in basis points).
func CapBp(sigmaBp uint32) uint32 {
	v := 150 * sigmaBp
	if v < capBasisPointsFloor {
		return capBasisPointsFloor
	}
	if v > capBasisPointsCeil {
		return capBasisPointsCeil
	}
	return v
}

// checkAndAdd verifies that adding `notional` to the slot's accumulated
// liquidated notional stays within capBp*marketOI, rolling the accumulator
// over to zero if `now` is a new slot (spec §4.F's per-slot reset).
func (c *SlotCap) checkAndAdd(now types.Slot, capBp uint32, marketOI, notional fixedpoint.F64, emergency bool) error {
	if c.slot != now {
		c.slot = now
		c.accumulated = fixedpoint.Zero64
	}

	next, err := c.accumulated.Add(notional)
	if err != nil {
		return err
	}

	if !emergency {
		limit, err := marketOI.Mul(fixedpoint.NewF64FromUint64(uint64(capBp)))
		if err != nil {
			return err
		}
		limit, err = limit.Div(fixedpoint.NewF64FromUint64(10_000))
		if err != nil {
			return err
		}
		if next.Cmp(limit) > 0 {
			return errors.ErrLiquidationCapExceeded
		}
	}

	c.accumulated = next
	return nil
}

// Add records notional closed against the slot's accumulator, rolling over
// on a new slot exactly as checkAndAdd does. Exported so a caller that has
// already sized a close via Remaining/CloseSize (the scheduler/engine,
// across many ticks) can book it without re-deriving the cap check.
func (c *SlotCap) Add(now types.Slot, notional fixedpoint.F64) error {
	if c.slot != now {
		c.slot = now
		c.accumulated = fixedpoint.Zero64
	}
	next, err := c.accumulated.Add(notional)
	if err != nil {
		return err
	}
	c.accumulated = next
	return nil
}

// Remaining returns how much notional is still available under the cap for
// this slot (zero once the cap is reached); used by callers sizing a
// partial close before booking it with Add.
func (c *SlotCap) Remaining(now types.Slot, capBp uint32, marketOI fixedpoint.F64) (fixedpoint.F64, error) {
	if c.slot != now {
		return capAmount(capBp, marketOI)
	}
	limit, err := capAmount(capBp, marketOI)
	if err != nil {
		return fixedpoint.F64{}, err
	}
	if c.accumulated.Cmp(limit) >= 0 {
		return fixedpoint.Zero64, nil
	}
	return limit.Sub(c.accumulated)
}

func capAmount(capBp uint32, marketOI fixedpoint.F64) (fixedpoint.F64, error) {
	limit, err := marketOI.Mul(fixedpoint.NewF64FromUint64(uint64(capBp)))
	if err != nil {
		return fixedpoint.F64{}, err
	}
	return limit.Div(fixedpoint.NewF64FromUint64(10_000))
}
