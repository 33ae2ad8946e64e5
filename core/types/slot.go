package types

import "github.com/google/uuid"

// Slot is the engine's monotonically increasing logical clock. One slot is
// approximately one scheduling tick; every rate, halt duration, and cap in
// the engine is expressed in slots rather than wall-clock time (spec §3).
type Slot uint64

// Add returns the slot advanced by delta ticks.
func (s Slot) Add(delta uint64) Slot { return s + Slot(delta) }

// Sub returns how many slots have elapsed since `other`, saturating at zero
// if `other` is in the future.
func (s Slot) Sub(other Slot) uint64 {
	if other > s {
		return 0
	}
	return uint64(s - other)
}

// MarketID is the 128-bit identifier of a market (spec §3: "identified by a
// 128-bit id"), backed by a UUID so the corpus's id-generation dependency
// (google/uuid) gives the spec's bit width directly instead of inventing one.
type MarketID [16]byte

func (m MarketID) IsZero() bool { return m == MarketID{} }

// NewMarketID mints a fresh random market id.
func NewMarketID() MarketID { return MarketID(uuid.New()) }

// VerseID identifies a verse node in the hierarchical grouping tree.
type VerseID [16]byte

func (v VerseID) IsZero() bool { return v == VerseID{} }

// NewVerseID mints a fresh random verse id.
func NewVerseID() VerseID { return VerseID(uuid.New()) }

// PositionID identifies a single position by (owner, market, leg index); the
// triple is folded into one comparable value for map keys and queue entries.
type PositionID struct {
	Owner  [20]byte
	Market MarketID
	Leg    uint32
}

// ChainID identifies an ordered chain position (2-8 legs across markets).
type ChainID [16]byte

func (c ChainID) IsZero() bool { return c == ChainID{} }
