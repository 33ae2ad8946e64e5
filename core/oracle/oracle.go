// Package oracle implements single-source price ingestion (spec §4.G): the
// per-slot clamp, the spread/stale/cumulative-move halt conditions, and the
// post-halt cool-down. Unlike the teacher's wall-clock `pricing.PriceFeed`,
// every freshness and cadence rule here is expressed in slots, matching the
// engine's deterministic logical clock (spec §3).
package oracle

import (
	"predmarket/engine/core/errors"
	"predmarket/engine/core/fixedpoint"
	"predmarket/engine/core/types"
)

// Slot-denominated cadence/halt constants (spec §4.G).
const (
	minUpdateIntervalSlots  = 1
	clampBasisPoints        = 200
	spreadHaltBasisPoints   = 1000
	spreadHaltConsecutive   = 2
	staleAfterSlots         = 750
	cumulativeWindowSlots   = 4
	cumulativeHaltBasisPoints = 500
	haltDurationSlots       = 150
	resumeCooldownSlots     = 150
	basisPointsDenominator  = 10_000
)

// HaltReason tags why a market's oracle feed is currently halted.
type HaltReason int

const (
	HaltNone HaltReason = iota
	HaltSpread
	HaltStale
	HaltCumulative
)

// Feed is the per-market oracle ingestion state (spec §3's Oracle state).
type Feed struct {
	lastPrice       fixedpoint.F64
	previousPrice   fixedpoint.F64
	lastUpdateSlot  types.Slot
	haveUpdate      bool

	consecutiveSpreadBreaches int

	haltReason     HaltReason
	haltUntilSlot  types.Slot
	cooldownUntil  types.Slot

	window [cumulativeWindowSlots]fixedpoint.F64
	windowLen int
	windowPos int
}

// New constructs an oracle feed with no observations yet.
func New() *Feed {
	return &Feed{}
}

// LastPrice returns the last accepted, clamped price.
func (f *Feed) LastPrice() fixedpoint.F64 { return f.lastPrice }

// Halted reports whether the feed is currently halted and, if so, why.
// HaltStale has no fixed duration (spec §4.G: "until a fresh update") so it
// stays halted regardless of haltUntilSlot; every other reason clears once
// now reaches haltUntilSlot.
func (f *Feed) Halted(now types.Slot) (bool, HaltReason) {
	if f.haltReason == HaltNone {
		return false, HaltNone
	}
	if f.haltReason == HaltStale {
		return true, HaltStale
	}
	if now >= f.haltUntilSlot {
		return false, HaltNone
	}
	return true, f.haltReason
}

// clampMove restricts `proposed` to within 200bp of `last` (spec §4.G step
// 1).
func clampMove(last, proposed fixedpoint.F64) (fixedpoint.F64, error) {
	if last.IsZero() {
		return proposed, nil
	}
	limit, err := last.Mul(fixedpoint.NewF64FromUint64(clampBasisPoints))
	if err != nil {
		return fixedpoint.F64{}, err
	}
	limit, err = limit.Div(fixedpoint.NewF64FromUint64(basisPointsDenominator))
	if err != nil {
		return fixedpoint.F64{}, err
	}
	upper, err := last.Add(limit)
	if err != nil {
		return fixedpoint.F64{}, err
	}
	if proposed.Cmp(upper) > 0 {
		return upper, nil
	}
	var lower fixedpoint.F64
	if last.Cmp(limit) >= 0 {
		lower, err = last.Sub(limit)
		if err != nil {
			return fixedpoint.F64{}, err
		}
	} else {
		lower = fixedpoint.Zero64
	}
	if proposed.Cmp(lower) < 0 {
		return lower, nil
	}
	return proposed, nil
}

func moveBp(last, clamped fixedpoint.F64) (fixedpoint.F64, error) {
	if last.IsZero() {
		return fixedpoint.Zero64, nil
	}
	var diff fixedpoint.F64
	var err error
	if clamped.Cmp(last) >= 0 {
		diff, err = clamped.Sub(last)
	} else {
		diff, err = last.Sub(clamped)
	}
	if err != nil {
		return fixedpoint.F64{}, err
	}
	moved, err := diff.Mul(fixedpoint.NewF64FromUint64(basisPointsDenominator))
	if err != nil {
		return fixedpoint.F64{}, err
	}
	return moved.Div(last)
}

func (f *Feed) pushWindow(bp fixedpoint.F64) {
	f.window[f.windowPos] = bp
	f.windowPos = (f.windowPos + 1) % cumulativeWindowSlots
	if f.windowLen < cumulativeWindowSlots {
		f.windowLen++
	}
}

func (f *Feed) cumulativeMove() (fixedpoint.F64, error) {
	sum := fixedpoint.Zero64
	for i := 0; i < f.windowLen; i++ {
		s, err := sum.Add(f.window[i])
		if err != nil {
			return fixedpoint.F64{}, err
		}
		sum = s
	}
	return sum, nil
}

// Ingest processes one oracle observation for the current slot (spec
// §4.G). externalYes/externalNo are the two sides of the outside-source
// spread check and may both be zero for a market with no dual-sided quote
// (in which case the spread check is skipped).
func (f *Feed) Ingest(now types.Slot, proposed fixedpoint.F64, externalYes, externalNo fixedpoint.F64) error {
	// Stale has no fixed duration (spec §4.G step 3: "until a fresh
	// update"), so a successful Ingest is precisely what clears it; every
	// other halt reason is duration-bound and only ResumeCheck clears it.
	if f.haltReason != HaltNone && f.haltReason != HaltStale {
		if halted, _ := f.Halted(now); halted {
			return errors.ErrOracleStale
		}
	}
	if f.haveUpdate && now.Sub(f.lastUpdateSlot) < minUpdateIntervalSlots {
		return errors.ErrOracleStale
	}

	clamped, err := clampMove(f.lastPrice, proposed)
	if err != nil {
		return err
	}

	if !externalYes.IsZero() || !externalNo.IsZero() {
		sum, err := externalYes.Add(externalNo)
		if err != nil {
			return err
		}
		var spreadDiff fixedpoint.F64
		if sum.Cmp(fixedpoint.One64) >= 0 {
			spreadDiff, err = sum.Sub(fixedpoint.One64)
		} else {
			spreadDiff, err = fixedpoint.One64.Sub(sum)
		}
		if err != nil {
			return err
		}
		spreadBp, err := spreadDiff.Mul(fixedpoint.NewF64FromUint64(basisPointsDenominator))
		if err != nil {
			return err
		}
		if spreadBp.Cmp(fixedpoint.NewF64FromUint64(spreadHaltBasisPoints)) > 0 {
			f.consecutiveSpreadBreaches++
		} else {
			f.consecutiveSpreadBreaches = 0
		}
		if f.consecutiveSpreadBreaches >= spreadHaltConsecutive {
			f.haltReason = HaltSpread
			f.haltUntilSlot = now.Add(haltDurationSlots)
			f.consecutiveSpreadBreaches = 0
			return errors.ErrOracleSpreadHalted
		}
	}

	bp, err := moveBp(f.lastPrice, clamped)
	if err != nil {
		return err
	}
	f.pushWindow(bp)
	cumulative, err := f.cumulativeMove()
	if err != nil {
		return err
	}
	if cumulative.Cmp(fixedpoint.NewF64FromUint64(cumulativeHaltBasisPoints)) > 0 {
		f.haltReason = HaltCumulative
		f.haltUntilSlot = now.Add(haltDurationSlots)
		return errors.ErrOracleStale
	}

	f.previousPrice = f.lastPrice
	f.lastPrice = clamped
	f.lastUpdateSlot = now
	f.haveUpdate = true
	if f.haltReason == HaltStale {
		f.haltReason = HaltNone
	}
	return nil
}

// CheckStale transitions the feed to Halted{Stale} if no update has arrived
// within staleAfterSlots, and should be called once per slot by the
// scheduler (spec §4.G step 3).
func (f *Feed) CheckStale(now types.Slot) {
	if !f.haveUpdate {
		return
	}
	if f.haltReason != HaltNone {
		return
	}
	if now.Sub(f.lastUpdateSlot) > staleAfterSlots {
		// No haltUntilSlot is set: Stale clears only when Ingest next
		// succeeds, never by slot count alone.
		f.haltReason = HaltStale
	}
}

// ResumeCheck clears a halt once its duration has elapsed and the
// resumeCooldownSlots cool-down has also passed, returning true if the feed
// just resumed (spec §4.G: "Post-halt resume requires a cool-down of 150
// slots after the halt condition clears").
func (f *Feed) ResumeCheck(now types.Slot) bool {
	if f.haltReason == HaltNone {
		return false
	}
	if now < f.haltUntilSlot {
		return false
	}
	if f.cooldownUntil == 0 {
		f.cooldownUntil = f.haltUntilSlot.Add(resumeCooldownSlots)
	}
	if now < f.cooldownUntil {
		return false
	}
	f.haltReason = HaltNone
	f.cooldownUntil = 0
	return true
}
