package coverage

import (
	"testing"

	"predmarket/engine/core/fixedpoint"
)

func TestZeroOIReportsMaxCoverage(t *testing.T) {
	a := New()
	if err := a.Deposit(fixedpoint.NewF64FromUint64(1000)); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	cov, err := a.Coverage()
	if err != nil {
		t.Fatalf("Coverage: %v", err)
	}
	if cov.Neg {
		t.Fatalf("expected non-negative coverage with zero OI, got %v", cov)
	}
}

func TestCoverageHalvesWhenOIDoubles(t *testing.T) {
	a := New()
	if err := a.Deposit(fixedpoint.NewF64FromUint64(1000)); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	a.SetTotalOI(fixedpoint.NewF64FromUint64(1000))
	cov1, err := a.Coverage()
	if err != nil {
		t.Fatalf("Coverage: %v", err)
	}
	a.SetTotalOI(fixedpoint.NewF64FromUint64(2000))
	cov2, err := a.Coverage()
	if err != nil {
		t.Fatalf("Coverage: %v", err)
	}
	doubled, err := cov2.Mul(fixedpoint.SignedFromInt64(2))
	if err != nil {
		t.Fatalf("Mul: %v", err)
	}
	if doubled.Cmp(cov1) != 0 {
		t.Fatalf("expected coverage to halve when OI doubles: cov1=%v cov2=%v", cov1, cov2)
	}
}

func TestMaxLeverageByCoverageTiers(t *testing.T) {
	a := New()
	if err := a.Deposit(fixedpoint.NewF64FromUint64(2000)); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	a.SetTotalOI(fixedpoint.NewF64FromUint64(1000)) // vault/tailLoss*OI = 2000/(0.5*1000) = 4 -> top tier
	lev, err := a.MaxLeverageByCoverage()
	if err != nil {
		t.Fatalf("MaxLeverageByCoverage: %v", err)
	}
	if lev != 100 {
		t.Fatalf("expected top tier 100x leverage at coverage 4.0, got %dx", lev)
	}

	a2 := New()
	if err := a2.Deposit(fixedpoint.NewF64FromUint64(200)); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	a2.SetTotalOI(fixedpoint.NewF64FromUint64(1000)) // coverage = 200/(0.5*1000) = 0.4 -> below lowest tier
	lev2, err := a2.MaxLeverageByCoverage()
	if err != nil {
		t.Fatalf("MaxLeverageByCoverage: %v", err)
	}
	if lev2 != 0 {
		t.Fatalf("expected leverage suspended below 0.5 coverage, got %dx", lev2)
	}
}

func TestElasticFeeBpStaysWithinBounds(t *testing.T) {
	a := New()
	if err := a.Deposit(fixedpoint.NewF64FromUint64(1)); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	a.SetTotalOI(fixedpoint.NewF64FromUint64(1000000)) // deliberately tiny coverage
	fee, err := a.ElasticFeeBp()
	if err != nil {
		t.Fatalf("ElasticFeeBp: %v", err)
	}
	if fee < elasticFeeFloorBp || fee > elasticFeeCeilBp {
		t.Fatalf("expected fee in [%d,%d], got %d", elasticFeeFloorBp, elasticFeeCeilBp, fee)
	}

	b := New()
	if err := b.Deposit(fixedpoint.NewF64FromUint64(1_000_000)); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	b.SetTotalOI(fixedpoint.NewF64FromUint64(1)) // huge coverage
	feeHigh, err := b.ElasticFeeBp()
	if err != nil {
		t.Fatalf("ElasticFeeBp: %v", err)
	}
	if feeHigh != elasticFeeFloorBp {
		t.Fatalf("expected fee to saturate at the floor under high coverage, got %d", feeHigh)
	}
}

func TestCorrelationLowersTailLossAsNIncreases(t *testing.T) {
	a := New()
	if err := a.Deposit(fixedpoint.NewF64FromUint64(1000)); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	a.SetTotalOI(fixedpoint.NewF64FromUint64(1000))
	base, err := a.Coverage()
	if err != nil {
		t.Fatalf("Coverage: %v", err)
	}

	if err := a.SetCorrelation(fixedpoint.SignedFromInt64(0), 4); err != nil {
		t.Fatalf("SetCorrelation: %v", err)
	}
	adjusted, err := a.Coverage()
	if err != nil {
		t.Fatalf("Coverage: %v", err)
	}
	if adjusted.Cmp(base) <= 0 {
		t.Fatalf("expected lower tail_loss (more markets, zero correlation) to raise coverage: base=%v adjusted=%v", base, adjusted)
	}
}
