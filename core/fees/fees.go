// Package fees implements the fee engine (spec §4.D): the elastic taker fee
// sourced from coverage, the maker rebate split, and the fixed flash-loan
// fee for chained intra-slot borrow+trade operations.
package fees

import (
	"predmarket/engine/core/errors"
	"predmarket/engine/core/fixedpoint"
)

// flashLoanFeeBp and flashLoanMaxDepth are fixed, not coverage-derived (spec
// §4.D: "a fixed 200 bp fee... chain CPI-like operation depth is hard-capped
// at 3").
const flashLoanFeeBp = 200
const flashLoanMaxDepth = 3

// Split describes how a fee of `total` is distributed between the vault and
// the maker's rebate, mirroring the teacher's CollateralRouting pattern of
// naming every destination share explicitly rather than computing one as an
// implicit remainder.
type Split struct {
	Vault fixedpoint.F64
	Maker fixedpoint.F64
}

// Schedule computes fees against a coverage-derived elastic taker rate and a
// configured maker-rebate fraction.
type Schedule struct {
	// MakerRebateBp is the fraction of the taker fee credited back to the
	// maker, expressed in basis points of the taker fee itself (not of
	// notional).
	MakerRebateBp uint32
}

// NewSchedule constructs a fee schedule with the given maker rebate
// fraction (0-10000 bp of the taker fee).
func NewSchedule(makerRebateBp uint32) (*Schedule, error) {
	if makerRebateBp > 10_000 {
		return nil, errors.ErrInternal
	}
	return &Schedule{MakerRebateBp: makerRebateBp}, nil
}

// TakerFee computes the fee charged on a fill of the given notional at the
// supplied elastic fee rate (basis points), and how it splits between the
// vault and the maker rebate.
func (s *Schedule) TakerFee(notional fixedpoint.F64, elasticFeeBp uint32) (Split, error) {
	feeBpF := fixedpoint.NewF64FromUint64(uint64(elasticFeeBp))
	bpDenom := fixedpoint.NewF64FromUint64(10_000)
	total, err := notional.Mul(feeBpF)
	if err != nil {
		return Split{}, err
	}
	total, err = total.Div(bpDenom)
	if err != nil {
		return Split{}, err
	}

	rebateRate, err := fixedpoint.NewF64FromUint64(uint64(s.MakerRebateBp)).Div(bpDenom)
	if err != nil {
		return Split{}, err
	}
	makerShare, err := total.Mul(rebateRate)
	if err != nil {
		return Split{}, err
	}
	vaultShare, err := total.Sub(makerShare)
	if err != nil {
		return Split{}, err
	}
	return Split{Vault: vaultShare, Maker: makerShare}, nil
}

// FlashLoanFee computes the fixed 200bp fee on a flash-loan-style chained
// borrow+trade, rejecting any chain whose depth exceeds the hard cap.
func FlashLoanFee(borrowed fixedpoint.F64, depth int) (fixedpoint.F64, error) {
	if depth > flashLoanMaxDepth {
		return fixedpoint.F64{}, errors.ErrChainDepthExceeded
	}
	fee, err := borrowed.Mul(fixedpoint.NewF64FromUint64(flashLoanFeeBp))
	if err != nil {
		return fixedpoint.F64{}, err
	}
	return fee.Div(fixedpoint.NewF64FromUint64(10_000))
}
