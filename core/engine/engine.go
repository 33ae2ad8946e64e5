package engine

import (
	"encoding/hex"

	"predmarket/engine/config"
	"predmarket/engine/core/amm"
	"predmarket/engine/core/breaker"
	coreerrors "predmarket/engine/core/errors"
	"predmarket/engine/core/eventlog"
	"predmarket/engine/core/fixedpoint"
	"predmarket/engine/core/liquidation"
	"predmarket/engine/core/market"
	"predmarket/engine/core/oracle"
	"predmarket/engine/core/position"
	"predmarket/engine/core/scheduler"
	"predmarket/engine/core/types"
	"predmarket/engine/native/common"
	"predmarket/engine/observability"
)

// defaultRiskScore is used in place of a per-market volatility-derived risk
// multiplier (spec §3 leaves risk_score's exact derivation to the adapter);
// a constant 1 keeps liquidation.Priority purely health/size ordered until a
// richer risk model is wired in.
var defaultRiskScore = fixedpoint.One64

// defaultSigmaBp stands in for a market's realized-volatility estimate in
// basis points, feeding liquidation.CapBp's clamp(200, 150*sigma_bp, 800).
// core/oracle does not yet surface a variance estimate, so every market uses
// the same conservative value until one is wired through.
const defaultSigmaBp = 100

// Engine is the single-threaded intent dispatcher (spec §5): one Engine
// owns exactly one State and one Scheduler, with no state shared across
// Engine instances (sharding by market id means running independent
// Engine/State pairs side by side).
type Engine struct {
	State       *State
	Scheduler   *scheduler.Scheduler
	currentSlot types.Slot
}

// NewEngine constructs an Engine with an empty state, wiring its Scheduler
// to the same Markets map so both see identical lifecycle transitions.
func NewEngine(admins [][20]byte, makerRebateBp uint32, perSecond float64, burst int, quotaPolicy common.Quota) (*Engine, error) {
	state, err := NewState(admins, makerRebateBp, quotaPolicy)
	if err != nil {
		return nil, err
	}
	sched := scheduler.New(state.Markets, breaker.NewRegistry(), state.Coverage, state.Log, perSecond, burst)
	return &Engine{State: state, Scheduler: sched}, nil
}

// NewEngineFromConfig constructs an Engine from a loaded config.Global,
// decoding its bech32 admin set and threading the keeper-batch rate limit
// and per-owner quota policy straight from the config file (the cmd
// entrypoint's sole wiring point into the engine).
func NewEngineFromConfig(cfg config.Global) (*Engine, error) {
	admins, err := cfg.AdminAddresses()
	if err != nil {
		return nil, err
	}
	quota := common.Quota{
		MaxRequestsPerMin: cfg.Quota.MaxRequestsPerEpoch,
		MaxNHBPerEpoch:    cfg.Quota.MaxNotionalPerEpoch,
		EpochSeconds:      uint32(cfg.Quota.EpochSlots),
	}
	return NewEngine(admins, cfg.MakerRebateBp, cfg.RatePerSecond, cfg.RateBurst, quota)
}

// Tick advances the engine's logical clock by running the scheduler's
// per-slot housekeeping (spec §4.K), then auto-resolving any market that is
// Settling, including one the scheduler moved there during this same tick
// (spec §4.H;
// the exact settlement trigger is left to the adapter by the source
// specification, so this engine resolves deterministically against the
// AMM's own last-known prices the instant a market reaches Settling).
func (e *Engine) Tick(now types.Slot) error {
	e.currentSlot = now
	if err := e.Scheduler.Tick(now, e); err != nil {
		return err
	}
	e.remarkPositions(now)
	e.resolveSettlingMarkets(now)
	return nil
}

// remarkPositions recomputes every open position's unrealized PnL,
// effective leverage, and liquidation price against its market's latest
// oracle price (spec §4.E: run on every price update). This runs once per
// tick rather than being threaded through OracleUpdate directly, since the
// observation itself is only applied to the feed inside the scheduler's
// Tick (spec §4.K step 1), one step ahead of where OracleUpdate queued it.
func (e *Engine) remarkPositions(now types.Slot) {
	for marketID, feed := range e.Scheduler.Oracles {
		mark := feed.LastPrice()
		if mark.IsZero() {
			continue
		}
		if m, ok := e.State.Markets[marketID]; ok {
			observability.Engine().SetOracleStaleness(hex.EncodeToString(marketID[:]), float64(now.Sub(m.LastOracleSlot)))
			m.LastMarkPrice = mark
			m.LastOracleSlot = now
		}
		for id, pos := range e.State.Positions {
			if id.Market != marketID || pos.Closed {
				continue
			}
			_ = pos.Remark(mark)
		}
	}
}

func (e *Engine) resolveSettlingMarkets(now types.Slot) {
	for id, m := range e.State.Markets {
		if m.Status != market.StatusSettling {
			continue
		}
		winner, err := highestPricedOutcome(m.AMM)
		if err != nil {
			continue
		}
		if err := m.Resolve(winner); err != nil {
			continue
		}
		e.State.Log.Append(now, eventlog.Settled{Market: id, Winner: winner})
	}
}

// highestPricedOutcome settles a market against whichever outcome the AMM
// currently prices highest, the deterministic stand-in for an external
// resolution oracle (see Tick's doc comment).
func highestPricedOutcome(contract amm.Contract) (int, error) {
	best := 0
	bestPrice, err := contract.Price(0)
	if err != nil {
		return 0, err
	}
	for i := 1; i < contract.Outcomes(); i++ {
		p, err := contract.Price(i)
		if err != nil {
			return 0, err
		}
		if p.Cmp(bestPrice) > 0 {
			best = i
			bestPrice = p
		}
	}
	return best, nil
}

// recomputeTotalOI recomputes sum(position.size) across every open
// position, the aggregate core/coverage.Accountant needs after any position
// mutation (spec §4.C).
func (e *Engine) recomputeTotalOI() {
	total := fixedpoint.Zero64
	for _, p := range e.State.Positions {
		if p.Closed {
			continue
		}
		if sum, err := total.Add(p.Size); err == nil {
			total = sum
		}
	}
	e.State.Coverage.SetTotalOI(total)
	if ratio, err := e.State.Coverage.Coverage(); err == nil {
		signed := ratio.Mag.Float64()
		if ratio.Neg {
			signed = -signed
		}
		observability.Engine().SetCoverageRatio(signed)
	}
}

func (e *Engine) market(id types.MarketID) (*market.Market, error) {
	m, ok := e.State.Markets[id]
	if !ok {
		return nil, coreerrors.ErrUnknownMarket
	}
	return m, nil
}

func (e *Engine) verseModule(v types.VerseID) string { return verseModuleKey(v) }

// moduleHalted reports whether a market is unavailable because the engine
// is globally halted or its verse has been paused (spec's supplemental
// per-verse pause, generalizing the single halt_flag).
func (e *Engine) moduleHalted(m *market.Market) bool {
	if common.Guard(e.State, "global") != nil {
		return true
	}
	return common.Guard(e.State, e.verseModule(m.Verse)) != nil
}

// CreateMarket constructs a new market and wires its oracle feed and
// liquidation queue onto the scheduler (spec §6).
func (e *Engine) CreateMarket(intent CreateMarketIntent) error {
	if _, exists := e.State.Markets[intent.MarketID]; exists {
		return coreerrors.ErrInvalidTransition
	}
	m, err := market.New(intent.MarketID, intent.Verse, intent.Outcomes, intent.Continuous, intent.LMSRB, intent.L2Bins, e.currentSlot, intent.SettleSlot)
	if err != nil {
		return err
	}
	// Already a known verse (root or child) is fine: markets may share one.
	_ = e.State.Verses.AddRoot(intent.Verse)
	e.State.Markets[intent.MarketID] = m
	e.Scheduler.Oracles[intent.MarketID] = oracle.New()
	e.Scheduler.Queues[intent.MarketID] = liquidation.NewQueue()
	e.State.SlotCaps[intent.MarketID] = &liquidation.SlotCap{}
	e.State.Log.Append(e.currentSlot, eventlog.MarketCreated{
		Market:     intent.MarketID,
		Verse:      intent.Verse,
		Outcomes:   intent.Outcomes,
		Continuous: intent.Continuous,
		SettleSlot: intent.SettleSlot,
	})
	return nil
}

// Deposit credits an owner's vault balance (spec §6).
func (e *Engine) Deposit(intent DepositIntent) error {
	if err := e.State.Coverage.Deposit(intent.Amount); err != nil {
		return err
	}
	bal := e.State.Balances[intent.Owner]
	next, err := bal.Add(intent.Amount)
	if err != nil {
		return err
	}
	e.State.Balances[intent.Owner] = next
	e.State.Log.Append(e.currentSlot, eventlog.Deposit{Owner: intent.Owner, AmountRaw: intent.Amount.Raw().String()})
	return nil
}

// withdrawCoverageFloor is the minimum post-withdrawal coverage ratio (spec
// §4.I uses the same 0.5 threshold for the global breaker; reusing it here
// keeps "withdraw subject to coverage preservation" from ever leaving the
// vault in a state the coverage breaker would immediately trip on).
var withdrawCoverageFloor = breaker.CoverageThreshold

// Withdraw debits an owner's vault balance, rolling back if the withdrawal
// would drop coverage below the preservation floor (spec §6: "withdraw
// subject to coverage preservation"). core/coverage.Accountant has no
// non-mutating peek, so this mutates then checks, rolling back on
// violation — the same shape liquidation.UnwindChain uses for its own
// cap check.
func (e *Engine) Withdraw(intent WithdrawIntent) error {
	bal := e.State.Balances[intent.Owner]
	if bal.Cmp(intent.Amount) < 0 {
		return coreerrors.ErrInsufficientFunds
	}
	if err := e.State.Coverage.Withdraw(intent.Amount); err != nil {
		return err
	}
	ratio, err := e.State.Coverage.Coverage()
	if err != nil {
		_ = e.State.Coverage.Deposit(intent.Amount)
		return err
	}
	if ratio.Neg || ratio.Cmp(fixedpoint.Signed{Mag: withdrawCoverageFloor}) < 0 {
		_ = e.State.Coverage.Deposit(intent.Amount)
		return coreerrors.ErrCoverageTooLow
	}
	next, err := bal.Sub(intent.Amount)
	if err != nil {
		_ = e.State.Coverage.Deposit(intent.Amount)
		return err
	}
	e.State.Balances[intent.Owner] = next
	e.State.Log.Append(e.currentSlot, eventlog.Withdraw{Owner: intent.Owner, AmountRaw: intent.Amount.Raw().String()})
	return nil
}

func (e *Engine) chainDepth(id types.ChainID) int {
	if id.IsZero() {
		return 0
	}
	chain, ok := e.State.Chains[id]
	if !ok {
		return 0
	}
	return len(chain.LegIndices)
}

// checkOpenPositionQuota enforces the per-owner request/notional quota
// (spec's SUPPLEMENTAL FEATURES: native/common quota guard) against
// OpenPosition specifically, since it is the one intent that both costs the
// vault coverage and can be retried arbitrarily fast by a single owner. A
// zero-value QuotaPolicy (EpochSeconds == 0) means no policy has been
// configured, so the check is skipped rather than dividing by zero.
func (e *Engine) checkOpenPositionQuota(intent OpenPositionIntent) error {
	policy := e.State.QuotaPolicy
	if policy.EpochSeconds == 0 {
		return nil
	}
	epoch := uint64(e.currentSlot) / uint64(policy.EpochSeconds)
	notional := intent.Size.Raw().Uint64()
	_, err := common.Apply(e.State, "open_position", epoch, intent.Owner[:], policy, 1, notional)
	if err != nil {
		observability.Engine().RecordQuotaThrottle("open_position")
	}
	return err
}

// OpenPosition opens a new position against a market's AMM (spec §6):
// leverage is capped by tier/coverage/chain-depth, the fill is sized and
// slippage-checked by the market's Contract, and the taker fee is charged
// against the coverage-derived elastic rate.
func (e *Engine) OpenPosition(intent OpenPositionIntent) error {
	m, err := e.market(intent.Market)
	if err != nil {
		return err
	}
	if !m.CanTrade() || e.moduleHalted(m) {
		return coreerrors.ErrMarketHalted
	}
	if err := e.checkOpenPositionQuota(intent); err != nil {
		return err
	}

	coverageCap, err := e.State.Coverage.MaxLeverageByCoverage()
	if err != nil {
		return err
	}
	maxLev := position.MaxLeverage(m.Outcomes, coverageCap, e.chainDepth(intent.ChainID))

	signedSize := fixedpoint.Signed{Neg: intent.Side == position.Short, Mag: intent.Size}
	fill, err := m.AMM.Trade(intent.Outcome, signedSize, intent.MaxSlippageBp)
	if err != nil {
		return err
	}

	elasticBp, err := e.State.Coverage.ElasticFeeBp()
	if err != nil {
		return err
	}
	observability.Engine().SetElasticFeeBp(float64(elasticBp))
	split, err := e.State.Fees.TakerFee(intent.Size, elasticBp)
	if err != nil {
		return err
	}
	// There is no separate maker counterparty against a pooled AMM fill, so
	// the whole taker fee (vault share plus what would otherwise be a maker
	// rebate) is realized to the house.
	fee, err := split.Vault.Add(split.Maker)
	if err != nil {
		return err
	}

	pos, err := position.Open(types.PositionID{}, intent.Side, intent.Size, intent.Leverage, maxLev, intent.Sigma, m.Outcomes, fill.Price)
	if err != nil {
		return err
	}
	pos.Outcome = intent.Outcome

	bal := e.State.Balances[intent.Owner]
	locked, err := pos.Collateral.Add(fee)
	if err != nil {
		return err
	}
	if bal.Cmp(locked) < 0 {
		return coreerrors.ErrInsufficientFunds
	}
	next, err := bal.Sub(locked)
	if err != nil {
		return err
	}

	if err := e.State.Coverage.RealizeToHouse(fixedpoint.Signed{Mag: fee}); err != nil {
		return err
	}

	leg := 0
	for existing := range e.State.Positions {
		if existing.Owner == intent.Owner && existing.Market == intent.Market {
			leg++
		}
	}
	id := types.PositionID{Owner: intent.Owner, Market: intent.Market, Leg: uint32(leg)}
	pos.ID = id

	e.State.Balances[intent.Owner] = next
	e.State.Positions[id] = pos
	if !intent.ChainID.IsZero() {
		idx := e.State.Arena.AddLeg(position.StepStake, pos)
		if chain, ok := e.State.Chains[intent.ChainID]; ok {
			chain.LegIndices = append(chain.LegIndices, idx)
		}
	}
	e.recomputeTotalOI()

	e.State.Log.Append(e.currentSlot, eventlog.Trade{
		Market:   intent.Market,
		Position: id,
		Outcome:  intent.Outcome,
		SizeRaw:  intent.Size.Raw().String(),
		Opening:  true,
	})
	return nil
}

// ClosePosition partially or fully closes an owned position at the
// market's current mark (spec §6). A zero Size means close in full.
func (e *Engine) ClosePosition(intent ClosePositionIntent) error {
	pos, ok := e.State.Positions[intent.Position]
	if !ok {
		return coreerrors.ErrUnknownPosition
	}
	if pos.ID.Owner != intent.Owner {
		return coreerrors.ErrInvalidAuthority
	}
	m, err := e.market(intent.Position.Market)
	if err != nil {
		return err
	}
	if !m.CanMutatePosition() {
		return coreerrors.ErrMarketHalted
	}

	closeSize := intent.Size
	full := closeSize.IsZero() || closeSize.Cmp(pos.Size) >= 0
	if full {
		closeSize = pos.Size
	}

	fraction, err := closeSize.Div(pos.Size)
	if err != nil {
		return err
	}
	realized, err := pos.UnrealizedPnL.Mul(fixedpoint.Signed{Mag: fraction})
	if err != nil {
		return err
	}
	releasedCollateral, err := pos.Collateral.Mul(fraction)
	if err != nil {
		return err
	}

	if full {
		if _, err := pos.Close(); err != nil {
			return err
		}
	} else {
		pos.Size, err = pos.Size.Sub(closeSize)
		if err != nil {
			return err
		}
		pos.Collateral, err = pos.Collateral.Sub(releasedCollateral)
		if err != nil {
			return err
		}
	}

	if err := e.State.Coverage.RealizeToHouse(fixedpoint.Signed{Neg: !realized.Neg, Mag: realized.Mag}); err != nil {
		return err
	}

	payout, err := fixedpoint.Signed{Mag: releasedCollateral}.Add(realized)
	if err != nil {
		return err
	}
	if !payout.Neg {
		bal := e.State.Balances[intent.Owner]
		next, err := bal.Add(payout.Mag)
		if err != nil {
			return err
		}
		e.State.Balances[intent.Owner] = next
	}
	e.recomputeTotalOI()

	e.State.Log.Append(e.currentSlot, eventlog.Trade{
		Market:   intent.Position.Market,
		Position: intent.Position,
		Outcome:  pos.Outcome,
		SizeRaw:  closeSize.Raw().String(),
		Opening:  false,
	})
	return nil
}

// OracleUpdate defers an observation to the scheduler's next Tick (spec
// §4.G, §6), preserving arrival order.
func (e *Engine) OracleUpdate(intent OracleUpdateIntent) error {
	if _, err := e.market(intent.Market); err != nil {
		return err
	}
	now := e.currentSlot
	price, yes, no := intent.Price, intent.ExternalYes, intent.ExternalNo
	e.Scheduler.QueueOracleUpdate(intent.Market, func(feed *oracle.Feed) error {
		return feed.Ingest(now, price, yes, no)
	})
	return nil
}

// LiquidationTick scans a market's open positions for newly-liquidatable
// ones and admits them to the queue, then processes up to MaxActions
// entries directly (spec §6; the scheduler's own per-tick keeper batch
// handles entries left over from ticks where no explicit intent arrived).
func (e *Engine) LiquidationTick(intent LiquidationTickIntent) error {
	m, err := e.market(intent.Market)
	if err != nil {
		return err
	}
	queue, ok := e.Scheduler.Queues[intent.Market]
	if !ok {
		return coreerrors.ErrUnknownMarket
	}
	threshold := liquidation.DefaultThreshold()

	for id, pos := range e.State.Positions {
		if id.Market != intent.Market || pos.Closed {
			continue
		}
		liquidatable, err := liquidation.IsLiquidatable(pos, threshold)
		if err != nil || !liquidatable {
			continue
		}
		health, err := pos.Health()
		if err != nil {
			continue
		}
		healthMag := fixedpoint.Zero64
		if !health.Neg {
			healthMag = health.Mag
		}
		priority, err := liquidation.Priority(healthMag, pos.Size, defaultRiskScore)
		if err != nil {
			continue
		}
		emergency := e.State.IsPaused(e.verseModule(m.Verse))
		_ = queue.Push(&liquidation.Entry{Position: id, Priority: priority, EntrySlot: e.currentSlot, Emergency: emergency, Keeper: intent.Keeper})
	}

	processed := 0
	for processed < intent.MaxActions {
		entry := queue.Pop()
		if entry == nil {
			break
		}
		if err := e.ExecuteLiquidation(e.currentSlot, intent.Market, entry); err != nil {
			continue
		}
		processed++
	}
	return nil
}

// ExecuteLiquidation implements scheduler.KeeperExecutor: it performs one
// queued liquidation's partial close, routes the keeper reward, and books
// the closed notional against the market's per-slot cap (spec §4.F).
func (e *Engine) ExecuteLiquidation(now types.Slot, marketID types.MarketID, entry *liquidation.Entry) error {
	pos, ok := e.State.Positions[entry.Position]
	if !ok || pos.Closed {
		return coreerrors.ErrUnknownPosition
	}
	liquidatable, err := liquidation.IsLiquidatable(pos, liquidation.DefaultThreshold())
	if err != nil {
		return err
	}
	if !liquidatable {
		return coreerrors.ErrNotLiquidatable
	}

	slotCap := e.State.SlotCaps[marketID]
	if slotCap == nil {
		slotCap = &liquidation.SlotCap{}
		e.State.SlotCaps[marketID] = slotCap
	}
	capBp := liquidation.CapBp(defaultSigmaBp)
	capRemaining, err := slotCap.Remaining(now, capBp, e.State.Coverage.TotalOI())
	if err != nil {
		return err
	}

	closeSize, err := liquidation.CloseSize(pos, capRemaining, entry.Emergency)
	if err != nil {
		return err
	}
	if closeSize.IsZero() {
		return nil
	}
	if err := slotCap.Add(now, closeSize); err != nil {
		return err
	}

	reward, err := liquidation.SplitKeeperReward(closeSize)
	if err != nil {
		return err
	}

	full := closeSize.Cmp(pos.Size) == 0
	if full {
		if _, err := pos.Close(); err != nil {
			return err
		}
	} else {
		pos.PartiallyLiquidated = true
		pos.Size, err = pos.Size.Sub(closeSize)
		if err != nil {
			return err
		}
	}

	if err := e.State.Coverage.RealizeToHouse(fixedpoint.Signed{Mag: reward.Vault}); err != nil {
		return err
	}
	if !reward.Keeper.IsZero() {
		keeperBal := e.State.Balances[entry.Keeper]
		next, err := keeperBal.Add(reward.Keeper)
		if err != nil {
			return err
		}
		e.State.Balances[entry.Keeper] = next
	}

	marketLabel := hex.EncodeToString(marketID[:])
	if m, ok := e.State.Markets[marketID]; ok {
		monitor := e.State.cascadeMonitorFor(m.Verse)
		if monitor.Observe(uint64(now)) {
			e.Scheduler.Breakers.ForVerse(breaker.KindCascade, m.Verse).Trip(now)
			observability.Engine().RecordBreakerTrip("cascade", hex.EncodeToString(m.Verse[:]))
		}
	}
	observability.Engine().RecordLiquidation(marketLabel, entry.Emergency)
	e.recomputeTotalOI()

	e.State.Log.Append(now, eventlog.LiquidationPartial{
		Market:        marketID,
		Position:      entry.Position,
		Keeper:        entry.Keeper,
		ClosedSizeRaw: closeSize.Raw().String(),
		KeeperFeeRaw:  reward.Keeper.Raw().String(),
		Emergency:     entry.Emergency,
	})
	return nil
}

// ClaimSettlement pays out a resolved position's share of the vault (spec
// §6).
func (e *Engine) ClaimSettlement(intent ClaimSettlementIntent) error {
	pos, ok := e.State.Positions[intent.Position]
	if !ok {
		return coreerrors.ErrUnknownPosition
	}
	if pos.ID.Owner != intent.Owner {
		return coreerrors.ErrInvalidAuthority
	}
	m, err := e.market(intent.Position.Market)
	if err != nil {
		return err
	}
	if m.Status != market.StatusResolved {
		return coreerrors.ErrMarketNotResolved
	}
	if pos.Closed {
		return coreerrors.ErrAlreadyClaimed
	}

	payout := fixedpoint.Zero64
	if pos.Outcome == m.Winner {
		payout = pos.Size
	}
	if _, err := pos.Close(); err != nil {
		return err
	}
	if !payout.IsZero() {
		if err := e.State.Coverage.Withdraw(payout); err != nil {
			return err
		}
		bal := e.State.Balances[intent.Owner]
		next, err := bal.Add(payout)
		if err != nil {
			return err
		}
		e.State.Balances[intent.Owner] = next
	}
	e.recomputeTotalOI()
	return nil
}

// AdminHalt authority-gates a forced halt of a market (spec §6).
func (e *Engine) AdminHalt(intent AdminHaltIntent) error {
	if !e.State.isAuthority(intent.Caller) {
		return coreerrors.ErrInvalidAuthority
	}
	m, err := e.market(intent.Market)
	if err != nil {
		return err
	}
	if err := m.Halt(intent.Reason, e.currentSlot, intent.DurationSlots); err != nil {
		return err
	}
	e.State.Log.Append(e.currentSlot, eventlog.Halted{Market: intent.Market, Reason: haltReasonName(intent.Reason), HaltUntilSlot: m.HaltUntilSlot})
	return nil
}

// AdminResume authority-gates a forced resume of a halted market (spec §6).
func (e *Engine) AdminResume(intent AdminResumeIntent) error {
	if !e.State.isAuthority(intent.Caller) {
		return coreerrors.ErrInvalidAuthority
	}
	m, err := e.market(intent.Market)
	if err != nil {
		return err
	}
	if err := m.Resume(e.currentSlot); err != nil {
		return err
	}
	e.State.Log.Append(e.currentSlot, eventlog.Resumed{Market: intent.Market})
	return nil
}

func haltReasonName(r market.HaltReason) string {
	switch r {
	case market.HaltReasonSpread:
		return "Spread"
	case market.HaltReasonStale:
		return "Stale"
	case market.HaltReasonCumulative:
		return "Cumulative"
	case market.HaltReasonCoverage:
		return "Coverage"
	case market.HaltReasonPrice:
		return "Price"
	case market.HaltReasonVolume:
		return "Volume"
	case market.HaltReasonCascade:
		return "Cascade"
	case market.HaltReasonCongestion:
		return "Congestion"
	case market.HaltReasonInternal:
		return "Internal"
	case market.HaltReasonAdmin:
		return "Admin"
	default:
		return "None"
	}
}
