package amm

import (
	"testing"

	"predmarket/engine/core/fixedpoint"
)

func approxEqual(t *testing.T, got fixedpoint.F64, wantNumerator, wantDenominator uint64, tolerance uint64) {
	t.Helper()
	want, err := fixedpoint.NewF64FromUint64(wantNumerator).Div(fixedpoint.NewF64FromUint64(wantDenominator))
	if err != nil {
		t.Fatalf("building expected value: %v", err)
	}
	diff, err := got.Sub(want)
	if err != nil {
		diff, err = want.Sub(got)
	}
	if err != nil {
		t.Fatalf("computing diff: %v", err)
	}
	tol, _ := fixedpoint.One64.Div(fixedpoint.NewF64FromUint64(tolerance))
	if diff.Cmp(tol) > 0 {
		t.Fatalf("got %v, want ~%d/%d within 1/%d", got, wantNumerator, wantDenominator, tolerance)
	}
}

func TestLMSRInitialPriceIsOneHalf(t *testing.T) {
	m := NewLMSR(fixedpoint.NewF64FromUint64(1000))
	price, err := m.Price(0)
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	approxEqual(t, price, 1, 2, 100000)
}

func TestLMSRBuyMovesPriceAndCharges(t *testing.T) {
	m := NewLMSR(fixedpoint.NewF64FromUint64(1000))

	// A single 100-share buy moves price(yes) by ~500bp and would fail the
	// 200bp per-slot clamp, so it is made as five 20-share buys in
	// successive slots. LMSR cost is path-independent, so the summed cost
	// still equals C(q+100) - C(q).
	var fill Fill
	total := fixedpoint.Signed{}
	for i := 0; i < 5; i++ {
		m.BeginSlot()
		f, err := m.Trade(0, fixedpoint.SignedFromInt64(20), 0)
		if err != nil {
			t.Fatalf("Trade %d: %v", i, err)
		}
		total, err = total.Add(f.Cost)
		if err != nil {
			t.Fatalf("summing cost: %v", err)
		}
		fill = f
	}

	// Reference values from the classic LMSR formula: after buying 100
	// shares of yes with b=1000, price(yes) = e^0.1/(1+e^0.1) ~= 0.524979,
	// cost = 1000*ln((1+e^0.1)/2) ~= 51.2495.
	approxEqual(t, fill.Price, 524979, 1000000, 10000)

	costMag := total.Mag
	if total.Neg {
		t.Fatalf("expected buying shares to cost a positive amount, got negative %v", costMag)
	}
	approxEqual(t, costMag, 512495, 10000, 1000)
}

func TestLMSRSellReturnsCredit(t *testing.T) {
	m := NewLMSR(fixedpoint.NewF64FromUint64(1000))
	m.BeginSlot()
	// Both trades stay inside the 200bp per-slot clamp (~100bp and ~50bp).
	if _, err := m.Trade(0, fixedpoint.SignedFromInt64(20), 0); err != nil {
		t.Fatalf("buy: %v", err)
	}
	m.BeginSlot()
	fill, err := m.Trade(0, fixedpoint.SignedFromInt64(-10), 0)
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if !fill.Cost.Neg {
		t.Fatalf("expected selling shares to return a credit (negative cost), got %v", fill.Cost)
	}
}

func TestLMSRClampRejectsLargeSingleSlotMove(t *testing.T) {
	m := NewLMSR(fixedpoint.NewF64FromUint64(10))
	m.BeginSlot()
	// A large buy against a small-liquidity market should blow through the
	// 200bp per-slot clamp.
	_, err := m.Trade(0, fixedpoint.SignedFromInt64(1000), 0)
	if err == nil {
		t.Fatalf("expected clamp to reject an oversized single-slot move")
	}
}

func TestLMSRUnknownOutcomeRejected(t *testing.T) {
	m := NewLMSR(fixedpoint.NewF64FromUint64(1000))
	if _, err := m.Price(5); err == nil {
		t.Fatalf("expected unknown outcome error")
	}
}
