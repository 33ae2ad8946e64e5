package engine

import (
	"predmarket/engine/core/fixedpoint"
	"predmarket/engine/core/market"
	"predmarket/engine/core/position"
	"predmarket/engine/core/types"
)

// CreateMarketIntent constructs a new market (spec §6).
type CreateMarketIntent struct {
	MarketID   types.MarketID
	Verse      types.VerseID
	Outcomes   int
	Continuous bool
	LMSRB      fixedpoint.F64
	L2Bins     int
	SettleSlot types.Slot
}

// DepositIntent credits an owner's vault balance.
type DepositIntent struct {
	Owner  [20]byte
	Amount fixedpoint.F64
}

// WithdrawIntent debits an owner's vault balance, subject to coverage
// preservation.
type WithdrawIntent struct {
	Owner  [20]byte
	Amount fixedpoint.F64
}

// OpenPositionIntent opens a new position against a market (spec §6).
type OpenPositionIntent struct {
	Owner         [20]byte
	Market        types.MarketID
	Outcome       int
	Side          position.Side
	Size          fixedpoint.F64
	Leverage      uint32
	MaxSlippageBp uint32
	Sigma         fixedpoint.F64
	ChainID       types.ChainID // zero value means "not part of a chain"
}

// ClosePositionIntent partially or fully closes an existing position. A
// zero Size means close in full.
type ClosePositionIntent struct {
	Owner    [20]byte
	Position types.PositionID
	Size     fixedpoint.F64
}

// OracleUpdateIntent is one observation for a market's price feed (spec
// §4.G, §6).
type OracleUpdateIntent struct {
	Market      types.MarketID
	Price       fixedpoint.F64
	ExternalYes fixedpoint.F64
	ExternalNo  fixedpoint.F64
	SourceSlot  types.Slot
}

// LiquidationTickIntent asks the engine to scan a market's open positions
// for newly-liquidatable ones, then process up to MaxActions queue
// entries (spec §6).
type LiquidationTickIntent struct {
	Market     types.MarketID
	MaxActions int
	Keeper     [20]byte
}

// ClaimSettlementIntent pays out a resolved position's escrow share (spec
// §6).
type ClaimSettlementIntent struct {
	Owner    [20]byte
	Position types.PositionID
}

// AdminHaltIntent halts a market under an explicit authority-gated
// duration (spec §6). Reason is usually market.HaltReasonAdmin, but the
// field is left open so an admin can also force e.g. a Coverage halt
// ahead of the scheduler's own detection.
type AdminHaltIntent struct {
	Caller        [20]byte
	Market        types.MarketID
	Reason        market.HaltReason
	DurationSlots uint64
}

// AdminResumeIntent force-resumes a halted market once its duration has
// elapsed (spec §6).
type AdminResumeIntent struct {
	Caller [20]byte
	Market types.MarketID
}
