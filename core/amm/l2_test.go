package amm

import (
	"testing"

	"predmarket/engine/core/fixedpoint"
)

func TestL2UniformMassIsFlat(t *testing.T) {
	m, err := NewL2(20, fixedpoint.NewF64FromUint64(1000))
	if err != nil {
		t.Fatalf("NewL2: %v", err)
	}
	p0, err := m.Price(0)
	if err != nil {
		t.Fatalf("Price(0): %v", err)
	}
	p10, err := m.Price(10)
	if err != nil {
		t.Fatalf("Price(10): %v", err)
	}
	approxEqual(t, p0, 1, 20, 1000)
	approxEqual(t, p10, 1, 20, 1000)
}

func TestL2RejectsOddOrTooFewBins(t *testing.T) {
	if _, err := NewL2(9, fixedpoint.NewF64FromUint64(1)); err == nil {
		t.Fatalf("expected odd bin count to be rejected")
	}
	if _, err := NewL2(8, fixedpoint.NewF64FromUint64(1)); err == nil {
		t.Fatalf("expected bin count below the Simpson's-rule minimum to be rejected")
	}
}

func TestL2RangeProbabilityOverWholeRangeIsNonzero(t *testing.T) {
	m, err := NewL2(20, fixedpoint.NewF64FromUint64(1000))
	if err != nil {
		t.Fatalf("NewL2: %v", err)
	}
	whole, err := m.RangeProbability(0, 19)
	if err != nil {
		t.Fatalf("RangeProbability: %v", err)
	}
	if whole.IsZero() {
		t.Fatalf("expected a nonzero integrated probability over the full range")
	}
}

func TestL2TradeMovesBinPrice(t *testing.T) {
	m, err := NewL2(20, fixedpoint.NewF64FromUint64(1000))
	if err != nil {
		t.Fatalf("NewL2: %v", err)
	}
	m.BeginSlot()
	before, err := m.Price(5)
	if err != nil {
		t.Fatalf("Price before: %v", err)
	}
	// 10 units move bin 5's price by ~95bp, inside the 200bp per-slot clamp.
	fill, err := m.Trade(5, fixedpoint.SignedFromInt64(10), 0)
	if err != nil {
		t.Fatalf("Trade: %v", err)
	}
	if fill.Price.Cmp(before) <= 0 {
		t.Fatalf("expected buying into bin 5 to raise its price")
	}
}
