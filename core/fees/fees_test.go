package fees

import (
	"testing"

	"predmarket/engine/core/fixedpoint"
)

func TestTakerFeeSplitsToMakerAndVault(t *testing.T) {
	s, err := NewSchedule(2_000) // 20% of the taker fee rebated to maker
	if err != nil {
		t.Fatalf("NewSchedule: %v", err)
	}
	split, err := s.TakerFee(fixedpoint.NewF64FromUint64(1000), 10) // 10bp on 1000 notional = 1.0
	if err != nil {
		t.Fatalf("TakerFee: %v", err)
	}
	total, err := split.Vault.Add(split.Maker)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	want := fixedpoint.One64
	if total.Cmp(want) != 0 {
		t.Fatalf("expected vault+maker to equal the total fee of 1.0, got %v", total)
	}
	if split.Maker.IsZero() {
		t.Fatalf("expected a nonzero maker rebate")
	}
}

func TestZeroRebateGivesAllFeeToVault(t *testing.T) {
	s, err := NewSchedule(0)
	if err != nil {
		t.Fatalf("NewSchedule: %v", err)
	}
	split, err := s.TakerFee(fixedpoint.NewF64FromUint64(1000), 10)
	if err != nil {
		t.Fatalf("TakerFee: %v", err)
	}
	if !split.Maker.IsZero() {
		t.Fatalf("expected zero maker rebate, got %v", split.Maker)
	}
}

func TestInvalidRebateRejected(t *testing.T) {
	if _, err := NewSchedule(10_001); err == nil {
		t.Fatalf("expected rebate above 100%% of the taker fee to be rejected")
	}
}

func TestFlashLoanFeeFixedRate(t *testing.T) {
	fee, err := FlashLoanFee(fixedpoint.NewF64FromUint64(1000), 1)
	if err != nil {
		t.Fatalf("FlashLoanFee: %v", err)
	}
	want, err := fixedpoint.NewF64FromUint64(20).Div(fixedpoint.One64) // 200bp of 1000 = 20
	if err != nil {
		t.Fatalf("building expected value: %v", err)
	}
	if fee.Cmp(want) != 0 {
		t.Fatalf("expected flash loan fee of 20, got %v", fee)
	}
}

func TestFlashLoanDepthCapEnforced(t *testing.T) {
	if _, err := FlashLoanFee(fixedpoint.NewF64FromUint64(1000), 4); err == nil {
		t.Fatalf("expected chain depth exceeding 3 to be rejected")
	}
}
