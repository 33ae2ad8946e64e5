// Package eventlog implements the engine's append-only structured log
// (spec §4.J): every accepted transition appends one or more (slot, seq,
// tag, payload) records, seq monotonic within a slot. External observers
// rebuild all non-essential state by replaying the log from genesis; the
// core itself need not store anything it can derive.
package eventlog

import "predmarket/engine/core/types"

// Event is a tagged payload appended to the log. It mirrors the teacher's
// core/types.Event (Type string + Attributes), generalized to a typed
// payload per tag instead of a flat string map so replay code gets
// compile-time field access instead of map lookups.
type Event interface {
	Tag() string
}

// MarketCreated is emitted by the CreateMarket intent.
type MarketCreated struct {
	Market     types.MarketID
	Verse      types.VerseID
	Outcomes   int
	Continuous bool
	SettleSlot types.Slot
}

func (MarketCreated) Tag() string { return "MarketCreated" }

// Trade is emitted by OpenPosition and ClosePosition. SizeRaw is
// fixedpoint.F64.Raw().String(), kept as a plain string so the event log
// package has no dependency on core/fixedpoint.
type Trade struct {
	Market   types.MarketID
	Position types.PositionID
	Outcome  int
	SizeRaw  string
	Opening  bool
}

func (Trade) Tag() string { return "Trade" }

// Deposit is emitted by the Deposit intent.
type Deposit struct {
	Owner     [20]byte
	AmountRaw string
}

func (Deposit) Tag() string { return "Deposit" }

// Withdraw is emitted by the Withdraw intent.
type Withdraw struct {
	Owner     [20]byte
	AmountRaw string
}

func (Withdraw) Tag() string { return "Withdraw" }

// LiquidationPartial is emitted once per liquidated leg during a
// LiquidationTick.
type LiquidationPartial struct {
	Market        types.MarketID
	Position      types.PositionID
	Keeper        [20]byte
	ClosedSizeRaw string
	KeeperFeeRaw  string
	Emergency     bool
}

func (LiquidationPartial) Tag() string { return "LiquidationPartial" }

// Halted is emitted when a market or breaker transitions to halted.
type Halted struct {
	Market        types.MarketID
	Reason        string
	HaltUntilSlot types.Slot
}

func (Halted) Tag() string { return "Halted" }

// Resumed is emitted when a market or breaker clears its halt.
type Resumed struct {
	Market types.MarketID
}

func (Resumed) Tag() string { return "Resumed" }

// Settled is emitted when a market resolves to a winning outcome.
type Settled struct {
	Market types.MarketID
	Winner int
}

func (Settled) Tag() string { return "Settled" }

// Refunded records a market's transition to Refunded. No code path in the
// engine appends it; market.Market.Refund changes the status without
// logging.
type Refunded struct {
	Market types.MarketID
}

func (Refunded) Tag() string { return "Refunded" }

// CoverageChanged records a global coverage ratio. No code path in the
// engine appends it; the recomputed ratio is published through the
// observability coverage gauge.
type CoverageChanged struct {
	RatioRaw string
}

func (CoverageChanged) Tag() string { return "CoverageChanged" }

// OracleUpdated is emitted by the scheduler's Tick when an observation
// queued by the OracleUpdate intent is applied to its feed without error.
// PriceRaw is left empty.
type OracleUpdated struct {
	Market   types.MarketID
	PriceRaw string
}

func (OracleUpdated) Tag() string { return "OracleUpdated" }
