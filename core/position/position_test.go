package position

import (
	"testing"

	"predmarket/engine/core/fixedpoint"
	"predmarket/engine/core/types"
)

func sigma() fixedpoint.F64 {
	v, _ := fixedpoint.One64.Div(fixedpoint.NewF64FromUint64(10)) // 0.1
	return v
}

func TestTierCapTable(t *testing.T) {
	cases := []struct {
		outcomes int
		want     uint32
	}{
		{1, 100}, {2, 70}, {3, 25}, {4, 25}, {5, 15}, {8, 15},
		{9, 12}, {16, 12}, {17, 10}, {64, 10}, {65, 5},
	}
	for _, c := range cases {
		if got := tierCapFor(c.outcomes); got != c.want {
			t.Errorf("tierCapFor(%d) = %d, want %d", c.outcomes, got, c.want)
		}
	}
}

func TestMaxLeverageTakesTightestCap(t *testing.T) {
	got := MaxLeverage(1, 50, 0) // tier cap 100, coverage cap 50 -> 50
	if got != 50 {
		t.Fatalf("expected coverage cap to bind, got %d", got)
	}
	got = MaxLeverage(1, 1000, 3) // tier cap 100 should bind under huge coverage cap
	if got != 100 {
		t.Fatalf("expected tier cap to bind, got %d", got)
	}
}

func TestGlobalLeverageCeilingEnforced(t *testing.T) {
	// Coverage and depth caps far above 500x leave the N=1 tier cap of 100
	// binding, so the result stays under the 500x global ceiling.
	got := MaxLeverage(1, 100000, 1000)
	if got != tierCapFor(1) {
		t.Fatalf("expected tier cap %d (under the %d global ceiling), got %d", tierCapFor(1), globalLeverageCap, got)
	}
}

func TestOpenLocksCollateralByInitialMargin(t *testing.T) {
	p, err := Open(types.PositionID{}, Long, fixedpoint.NewF64FromUint64(100), 10, 100, sigma(), 1, fixedpoint.NewF64FromUint64(1))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if p.Collateral.IsZero() {
		t.Fatalf("expected nonzero collateral lock")
	}
}

func TestOpenRejectsLeverageAboveCap(t *testing.T) {
	_, err := Open(types.PositionID{}, Long, fixedpoint.NewF64FromUint64(100), 200, 100, sigma(), 1, fixedpoint.NewF64FromUint64(1))
	if err == nil {
		t.Fatalf("expected leverage above cap to be rejected")
	}
}

func TestRemarkLongGainOnPriceIncrease(t *testing.T) {
	p, err := Open(types.PositionID{}, Long, fixedpoint.NewF64FromUint64(100), 5, 100, sigma(), 1, fixedpoint.NewF64FromUint64(1))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	higher, err := fixedpoint.NewF64FromUint64(11).Div(fixedpoint.NewF64FromUint64(10)) // 1.1
	if err != nil {
		t.Fatalf("building mark: %v", err)
	}
	if err := p.Remark(higher); err != nil {
		t.Fatalf("Remark: %v", err)
	}
	if p.UnrealizedPnL.Neg {
		t.Fatalf("expected a long position to show positive PnL on a price increase, got %v", p.UnrealizedPnL)
	}
}

func TestRemarkShortLossOnPriceIncrease(t *testing.T) {
	p, err := Open(types.PositionID{}, Short, fixedpoint.NewF64FromUint64(100), 5, 100, sigma(), 1, fixedpoint.NewF64FromUint64(1))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	higher, err := fixedpoint.NewF64FromUint64(11).Div(fixedpoint.NewF64FromUint64(10))
	if err != nil {
		t.Fatalf("building mark: %v", err)
	}
	if err := p.Remark(higher); err != nil {
		t.Fatalf("Remark: %v", err)
	}
	if !p.UnrealizedPnL.Neg {
		t.Fatalf("expected a short position to show negative PnL on a price increase, got %v", p.UnrealizedPnL)
	}
}

func TestCloseRejectsDoubleClose(t *testing.T) {
	p, err := Open(types.PositionID{}, Long, fixedpoint.NewF64FromUint64(100), 5, 100, sigma(), 1, fixedpoint.NewF64FromUint64(1))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := p.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if _, err := p.Close(); err == nil {
		t.Fatalf("expected second Close to be rejected")
	}
}

func TestChainRejectsOutOfRangeLegCount(t *testing.T) {
	if _, err := NewChain([]int{0}); err == nil {
		t.Fatalf("expected a 1-leg chain to be rejected")
	}
	nine := make([]int, 9)
	if _, err := NewChain(nine); err == nil {
		t.Fatalf("expected a 9-leg chain to be rejected")
	}
}

func TestChainUnwindOrderIsStakeLiquidateBorrow(t *testing.T) {
	arena := NewArena()
	borrowIdx := arena.AddLeg(StepBorrow, nil)
	stakeIdx := arena.AddLeg(StepStake, nil)
	liquidateIdx := arena.AddLeg(StepLiquidate, nil)

	chain, err := NewChain([]int{borrowIdx, stakeIdx, liquidateIdx})
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}
	order, err := chain.UnwindOrder(arena)
	if err != nil {
		t.Fatalf("UnwindOrder: %v", err)
	}
	if len(order) != 3 || order[0] != stakeIdx || order[1] != liquidateIdx || order[2] != borrowIdx {
		t.Fatalf("expected unwind order [stake, liquidate, borrow], got %v", order)
	}
}
