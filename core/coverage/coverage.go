// Package coverage implements the global solvency accountant (spec §4.C):
// the vault/total-OI ratio that gates leverage tiers and the elastic fee
// across the whole engine. Every deposit, withdraw, trade, liquidation, and
// settlement recomputes it.
package coverage

import (
	"predmarket/engine/core/fixedpoint"
)

// defaultTailLoss is the baseline loss-given-tail-event assumption before any
// correlation adjustment is applied.
var defaultTailLoss = fixedpoint.Signed{Mag: func() fixedpoint.F64 {
	v, err := fixedpoint.One64.Div(fixedpoint.NewF64FromUint64(2))
	if err != nil {
		panic(err)
	}
	return v
}()}

// Accountant tracks the vault balance and aggregate open interest and
// derives coverage, the leverage-tier cap, and the elastic fee from them.
type Accountant struct {
	vault    fixedpoint.Signed
	totalOI  fixedpoint.F64
	tailLoss fixedpoint.Signed
}

// New constructs an Accountant with zero vault/OI and the default tail-loss
// assumption.
func New() *Accountant {
	return &Accountant{tailLoss: defaultTailLoss}
}

// Deposit increases the vault by amount (a user locking fresh collateral).
func (a *Accountant) Deposit(amount fixedpoint.F64) error {
	next, err := a.vault.Add(fixedpoint.Signed{Mag: amount})
	if err != nil {
		return err
	}
	a.vault = next
	return nil
}

// Withdraw decreases the vault by amount.
func (a *Accountant) Withdraw(amount fixedpoint.F64) error {
	next, err := a.vault.Sub(fixedpoint.Signed{Mag: amount})
	if err != nil {
		return err
	}
	a.vault = next
	return nil
}

// RealizeToHouse moves a signed PnL amount into the vault: positive when the
// house gains (fees, liquidation penalties, expired OTM positions), negative
// when the house pays out (closes, settlements).
func (a *Accountant) RealizeToHouse(signedAmount fixedpoint.Signed) error {
	next, err := a.vault.Add(signedAmount)
	if err != nil {
		return err
	}
	a.vault = next
	return nil
}

// SetTotalOI replaces the cached aggregate open interest, recomputed by the
// caller as sum(position.size) across all open positions.
func (a *Accountant) SetTotalOI(oi fixedpoint.F64) {
	a.totalOI = oi
}

// TotalOI returns the cached aggregate open interest.
func (a *Accountant) TotalOI() fixedpoint.F64 { return a.totalOI }

// Vault returns the current vault balance (may be conceptually negative if
// realized losses exceed deposits, though that should never survive the
// engine's solvency checks in practice).
func (a *Accountant) Vault() fixedpoint.Signed { return a.vault }

// SetCorrelation applies the pairwise-correlation adjustment to tail_loss:
// tail_loss = 1 - (1/N)*(1-rhoBar), where rhoBar is the mean pairwise
// Pearson correlation (clamped to [-1,1]) across the N markets holding
// material open interest (spec §4.C).
func (a *Accountant) SetCorrelation(rhoBar fixedpoint.Signed, n int) error {
	if n <= 0 {
		a.tailLoss = defaultTailLoss
		return nil
	}
	one := fixedpoint.Signed{Mag: fixedpoint.One64}
	clamped := clampSigned(rhoBar, one)
	oneMinusRho, err := one.Sub(clamped)
	if err != nil {
		return err
	}
	invN, err := one.Div(fixedpoint.SignedFromInt64(int64(n)))
	if err != nil {
		return err
	}
	adjustment, err := invN.Mul(oneMinusRho)
	if err != nil {
		return err
	}
	tailLoss, err := one.Sub(adjustment)
	if err != nil {
		return err
	}
	a.tailLoss = tailLoss
	return nil
}

// clampSigned restricts v to [-bound, bound].
func clampSigned(v, bound fixedpoint.Signed) fixedpoint.Signed {
	negBound := fixedpoint.Signed{Neg: !bound.Neg, Mag: bound.Mag}
	if v.Cmp(bound) > 0 {
		return bound
	}
	if v.Cmp(negBound) < 0 {
		return negBound
	}
	return v
}

// Coverage returns vault / (tail_loss * total_oi). A zero-OI market (no open
// exposure) reports coverage as the maximum tier boundary, since there is
// nothing at risk to be under-covered against.
func (a *Accountant) Coverage() (fixedpoint.Signed, error) {
	if a.totalOI.IsZero() {
		return fixedpoint.SignedFromInt64(2), nil
	}
	denom, err := a.tailLoss.Mul(fixedpoint.Signed{Mag: a.totalOI})
	if err != nil {
		return fixedpoint.Signed{}, err
	}
	if denom.Mag.IsZero() {
		return fixedpoint.SignedFromInt64(2), nil
	}
	return a.vault.Div(denom)
}

// leverageTier is one row of the coverage -> max-leverage piecewise table
// (spec §4.C), evaluated highest-threshold-first.
type leverageTier struct {
	minCoverageNumerator   int64
	minCoverageDenominator int64
	maxLeverage            uint32
}

var leverageTiers = []leverageTier{
	{20, 10, 100},
	{15, 10, 50},
	{12, 10, 20},
	{10, 10, 10},
	{8, 10, 5},
	{5, 10, 2},
}

// MaxLeverageByCoverage returns the leverage ceiling implied by the current
// coverage ratio (spec §4.C's piecewise table; below the lowest tier,
// leverage is fully suspended).
func (a *Accountant) MaxLeverageByCoverage() (uint32, error) {
	cov, err := a.Coverage()
	if err != nil {
		return 0, err
	}
	for _, tier := range leverageTiers {
		threshold, err := fixedpoint.NewF64FromUint64(uint64(tier.minCoverageNumerator)).Div(fixedpoint.NewF64FromUint64(uint64(tier.minCoverageDenominator)))
		if err != nil {
			return 0, err
		}
		if cov.Cmp(fixedpoint.Signed{Mag: threshold}) >= 0 {
			return tier.maxLeverage, nil
		}
	}
	return 0, nil
}

// elasticFeeFloorBp and elasticFeeCeilBp bound elastic_fee_bp (spec §4.C).
const elasticFeeFloorBp = 3
const elasticFeeCeilBp = 28
const elasticFeeSpreadBp = 25
const elasticFeeDecayRate = 3

// shortExpTerms is deliberately small (unlike core/fixedpoint.Exp's 24-term
// series): spec §4.C calls out that elastic_fee_bp uses "a short Taylor
// expansion, not the full exp routine" — this is a cheaper, lower-precision
// approximation reserved for this one non-critical fee computation.
const shortExpTerms = 6

// shortExpCutoff is the magnitude beyond which e^-|x| is taken as zero.
const shortExpCutoff = 30

// shortExp approximates e^x via a truncated Taylor series, distinct from
// (and cheaper than) fixedpoint.Exp. For negative x the series is summed at
// |x| and inverted, so the result stays in (0, 1] for any coverage; below
// -shortExpCutoff it returns zero.
func shortExp(x fixedpoint.Signed) (fixedpoint.F64, error) {
	if x.Neg && x.Mag.Cmp(fixedpoint.NewF64FromUint64(shortExpCutoff)) > 0 {
		return fixedpoint.Zero64, nil
	}
	abs := fixedpoint.Signed{Mag: x.Mag}
	sum := fixedpoint.Signed{Mag: fixedpoint.One64}
	term := fixedpoint.Signed{Mag: fixedpoint.One64}
	var err error
	for n := int64(1); n <= shortExpTerms; n++ {
		term, err = term.Mul(abs)
		if err != nil {
			return fixedpoint.F64{}, err
		}
		term, err = term.Div(fixedpoint.SignedFromInt64(n))
		if err != nil {
			return fixedpoint.F64{}, err
		}
		sum, err = sum.Add(term)
		if err != nil {
			return fixedpoint.F64{}, err
		}
	}
	if x.Neg {
		return fixedpoint.One64.Div(sum.Mag)
	}
	return sum.Mag, nil
}

// ElasticFeeBp computes elastic_fee_bp = 3 + 25*exp(-3*coverage), clamped to
// [3, 28] (spec §4.C).
func (a *Accountant) ElasticFeeBp() (uint32, error) {
	cov, err := a.Coverage()
	if err != nil {
		return 0, err
	}
	exponent, err := fixedpoint.SignedFromInt64(-elasticFeeDecayRate).Mul(cov)
	if err != nil {
		return 0, err
	}
	expVal, err := shortExp(exponent)
	if err != nil {
		return 0, err
	}
	scaled, err := expVal.Mul(fixedpoint.NewF64FromUint64(elasticFeeSpreadBp))
	if err != nil {
		return 0, err
	}
	total, err := scaled.Add(fixedpoint.NewF64FromUint64(elasticFeeFloorBp))
	if err != nil {
		return 0, err
	}
	raw := total.Raw()
	raw.Rsh(raw, 64)
	bpRaw := raw.Uint64()
	if bpRaw < elasticFeeFloorBp {
		return elasticFeeFloorBp, nil
	}
	if bpRaw > elasticFeeCeilBp {
		return elasticFeeCeilBp, nil
	}
	return uint32(bpRaw), nil
}
