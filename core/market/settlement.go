package market

import (
	"predmarket/engine/core/errors"
	"predmarket/engine/core/fixedpoint"
	"predmarket/engine/core/position"
)

// Claim pays out a resolved position's escrow share: size if the position's
// outcome matches the winning outcome, zero otherwise (spec §4.H:
// "Resolved{winner} — claims enabled, payouts drawn from the market's
// escrow"). It closes the position as a side effect so a position can never
// be claimed twice.
func (m *Market) Claim(p *position.Position) (fixedpoint.F64, error) {
	if m.Status != StatusResolved {
		return fixedpoint.F64{}, errors.ErrMarketNotResolved
	}
	if p.Closed {
		return fixedpoint.F64{}, errors.ErrAlreadyClaimed
	}
	payout := fixedpoint.Zero64
	if p.Outcome == m.Winner {
		payout = p.Size
	}
	if _, err := p.Close(); err != nil {
		return fixedpoint.F64{}, err
	}
	return payout, nil
}

// ReconcileEscrow settles the difference between totalClaims actually paid
// out and the market's escrow balance against the global vault: a shortfall
// (claims exceeded escrow) is a loss absorbed by vault, a surplus (escrow
// exceeded claims) returns to vault (spec §4.H: "over-/under-collateralization
// against total claims is reconciled against the vault"). It returns the
// signed adjustment to apply to vault (positive = vault gains, negative =
// vault absorbs a loss).
func (m *Market) ReconcileEscrow(totalClaims fixedpoint.F64) (fixedpoint.Signed, error) {
	if m.Status != StatusResolved {
		return fixedpoint.Signed{}, errors.ErrMarketNotResolved
	}
	if m.EscrowBalance.Cmp(totalClaims) >= 0 {
		surplus, err := m.EscrowBalance.Sub(totalClaims)
		if err != nil {
			return fixedpoint.Signed{}, err
		}
		return fixedpoint.Signed{Mag: surplus}, nil
	}
	shortfall, err := totalClaims.Sub(m.EscrowBalance)
	if err != nil {
		return fixedpoint.Signed{}, err
	}
	return fixedpoint.Signed{Neg: true, Mag: shortfall}, nil
}

// RefundShare computes a position's pro-rata refund from the market's
// escrow once it has transitioned to Refunded (spec §4.H: "pro-rata refunds
// from market escrow"), proportional to the position's share of totalSize
// across every position still open when the refund was triggered.
func (m *Market) RefundShare(p *position.Position, totalSize fixedpoint.F64) (fixedpoint.F64, error) {
	if m.Status != StatusRefunded {
		return fixedpoint.F64{}, errors.ErrInvalidTransition
	}
	if p.Closed {
		return fixedpoint.F64{}, errors.ErrAlreadyClaimed
	}
	if totalSize.IsZero() {
		return fixedpoint.Zero64, nil
	}
	share, err := p.Size.Mul(m.EscrowBalance)
	if err != nil {
		return fixedpoint.F64{}, err
	}
	share, err = share.Div(totalSize)
	if err != nil {
		return fixedpoint.F64{}, err
	}
	if _, err := p.Close(); err != nil {
		return fixedpoint.F64{}, err
	}
	return share, nil
}
