// Package market implements the market lifecycle (spec §4.H): creation,
// the Active/Halted/Settling/Resolved/Refunded state machine, and the verse
// grouping tree. Verse ids scope verse-level breaker halts; liquidation
// queues are kept per market, not per verse.
package market

import (
	"predmarket/engine/core/amm"
	"predmarket/engine/core/errors"
	"predmarket/engine/core/fixedpoint"
	"predmarket/engine/core/types"
)

// Status is one of the five market lifecycle states (spec §3, §4.H).
type Status int

const (
	StatusActive Status = iota
	StatusHalted
	StatusSettling
	StatusResolved
	StatusRefunded
)

// Valid reports whether the status value is one of the five defined states.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusHalted, StatusSettling, StatusResolved, StatusRefunded:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusHalted:
		return "halted"
	case StatusSettling:
		return "settling"
	case StatusResolved:
		return "resolved"
	case StatusRefunded:
		return "refunded"
	default:
		return "unknown"
	}
}

// HaltReason tags why a market is currently Halted (spec §4.G, §4.I).
type HaltReason int

const (
	HaltReasonNone HaltReason = iota
	HaltReasonSpread
	HaltReasonStale
	HaltReasonCumulative
	HaltReasonCoverage
	HaltReasonPrice
	HaltReasonVolume
	HaltReasonCascade
	HaltReasonCongestion
	HaltReasonInternal
	HaltReasonAdmin
)

// freezesPositionMutation reports whether the reason freezes all position
// mutation except admin emergency unwind (spec §4.H: "for Coverage and
// Cascade, all position mutations are frozen except admin emergency
// unwind"); every other reason still allows withdrawals and closes at last
// mark.
func (r HaltReason) freezesPositionMutation() bool {
	switch r {
	case HaltReasonCoverage, HaltReasonCascade:
		return true
	default:
		return false
	}
}

// noWinner is the sentinel Winner value for a market that has not resolved.
const noWinner = -1

// Market is one prediction market (spec's "proposal"): its outcome space,
// backing AMM contract, lifecycle status, and oracle/liquidation bookkeeping.
type Market struct {
	ID         types.MarketID
	Verse      types.VerseID
	Outcomes   int
	Continuous bool
	AMM        amm.Contract

	Status        Status
	HaltReason    HaltReason
	HaltUntilSlot types.Slot

	CreationSlot   types.Slot
	SettleSlot     types.Slot
	Winner         int
	LastOracleSlot types.Slot
	LastMarkPrice  fixedpoint.F64

	liquidatedSlot types.Slot
	liquidatedSize fixedpoint.F64

	EscrowBalance fixedpoint.F64 // funds held for claims/refunds once Settling
}

// pmammUniformSeed seeds every outcome's quantity equally so a freshly
// created parimutuel market starts equiprobable (spec §4.B).
var pmammUniformSeed = fixedpoint.NewF64FromUint64(100)

// New constructs a market with its AMM variant selected deterministically
// from (outcomes, continuous) (spec §4.B's immutability rule), and never
// reassigned afterward.
func New(id types.MarketID, verse types.VerseID, outcomes int, continuous bool, lmsrB fixedpoint.F64, l2Bins int, creationSlot, settleSlot types.Slot) (*Market, error) {
	kind := amm.KindFor(outcomes, continuous)
	var contract amm.Contract
	var err error
	switch kind {
	case amm.KindLMSR:
		contract = amm.NewLMSR(lmsrB)
	case amm.KindPMAMM:
		// A uniform seed across every outcome (an all-zero pool has no
		// well-defined marginal price to seed Price()'s per-outcome weights
		// with, since every weight is zero and their sum can't be
		// normalized against).
		contract, err = amm.NewPMAMM(outcomes, pmammUniformSeed)
	default:
		contract, err = amm.NewL2(l2Bins, lmsrB)
	}
	if err != nil {
		return nil, err
	}
	return &Market{
		ID:           id,
		Verse:        verse,
		Outcomes:     outcomes,
		Continuous:   continuous,
		AMM:          contract,
		Status:       StatusActive,
		CreationSlot: creationSlot,
		SettleSlot:   settleSlot,
		Winner:       noWinner,
	}, nil
}

// CanTrade reports whether new trades are accepted (spec §4.H: only Active).
func (m *Market) CanTrade() bool {
	return m.Status == StatusActive
}

// CanMutatePosition reports whether withdrawals and closes-at-last-mark are
// accepted: true when Active, or Halted for a reason that doesn't freeze
// position mutation (spec §4.H).
func (m *Market) CanMutatePosition() bool {
	if m.Status == StatusActive {
		return true
	}
	if m.Status == StatusHalted {
		return !m.HaltReason.freezesPositionMutation()
	}
	return false
}

// Halt transitions an Active market into Halted{reason} (spec §4.H, §4.I).
// Only Active markets may be halted directly; a market already Halted must
// Resume before it can be halted again for a different reason.
func (m *Market) Halt(reason HaltReason, now types.Slot, durationSlots uint64) error {
	if m.Status != StatusActive {
		return errors.ErrInvalidTransition
	}
	m.Status = StatusHalted
	m.HaltReason = reason
	m.HaltUntilSlot = now.Add(durationSlots)
	return nil
}

// Resume clears a halt and returns the market to Active once now has
// reached HaltUntilSlot (spec §4.G: "Post-halt resume requires a cool-down";
// the cool-down itself is computed by the caller, e.g. core/oracle.Feed, and
// passed through as part of durationSlots at Halt time).
func (m *Market) Resume(now types.Slot) error {
	if m.Status != StatusHalted {
		return errors.ErrInvalidTransition
	}
	if now < m.HaltUntilSlot {
		return errors.ErrInvalidTransition
	}
	m.Status = StatusActive
	m.HaltReason = HaltReasonNone
	m.HaltUntilSlot = 0
	return nil
}

// EnterSettling transitions an Active market to Settling once now has
// reached SettleSlot (spec §4.H, §4.K step 5).
func (m *Market) EnterSettling(now types.Slot) error {
	if m.Status != StatusActive {
		return errors.ErrInvalidTransition
	}
	if now < m.SettleSlot {
		return errors.ErrInvalidTransition
	}
	m.Status = StatusSettling
	return nil
}

// Resolve records the winning outcome and transitions Settling to Resolved
// (spec §4.H).
func (m *Market) Resolve(winner int) error {
	if m.Status != StatusSettling {
		return errors.ErrInvalidTransition
	}
	if winner < 0 || winner >= m.Outcomes {
		return errors.ErrUnknownOutcome
	}
	m.Winner = winner
	m.Status = StatusResolved
	return nil
}

// Refund transitions an invalid market to the terminal Refunded state (spec
// §4.H). Refund is permitted from any pre-Resolved state; a Resolved market
// has already paid out and cannot be refunded.
func (m *Market) Refund() error {
	if m.Status == StatusResolved || m.Status == StatusRefunded {
		return errors.ErrInvalidTransition
	}
	m.Status = StatusRefunded
	return nil
}

// RecordLiquidation adds notional to the market's per-slot accumulated
// liquidated size (spec §3's "accumulated liquidation size this slot"),
// resetting the accumulator if now is a new slot, and returns the updated
// total for the caller to compare against core/liquidation's per-market cap.
func (m *Market) RecordLiquidation(now types.Slot, notional fixedpoint.F64) (fixedpoint.F64, error) {
	if m.liquidatedSlot != now {
		m.liquidatedSlot = now
		m.liquidatedSize = fixedpoint.Zero64
	}
	total, err := m.liquidatedSize.Add(notional)
	if err != nil {
		return fixedpoint.F64{}, err
	}
	m.liquidatedSize = total
	return total, nil
}

// AccumulatedLiquidatedThisSlot returns the running liquidated-notional
// accumulator for the given slot (zero if now is not the tracked slot).
func (m *Market) AccumulatedLiquidatedThisSlot(now types.Slot) fixedpoint.F64 {
	if m.liquidatedSlot != now {
		return fixedpoint.Zero64
	}
	return m.liquidatedSize
}
