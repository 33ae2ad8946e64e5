// Package scheduler drives the engine's per-slot tick sequence (spec
// §4.K): apply pending oracle updates, recompute coverage/breaker state,
// admit a keeper batch, evict stale queue entries, transition settling
// markets, and run resume checks. User intents are interleaved between
// ticks by the caller (core/engine); this package only owns the
// once-per-slot housekeeping.
package scheduler

import (
	"time"

	"golang.org/x/time/rate"

	"predmarket/engine/core/breaker"
	"predmarket/engine/core/coverage"
	"predmarket/engine/core/eventlog"
	"predmarket/engine/core/fixedpoint"
	"predmarket/engine/core/liquidation"
	"predmarket/engine/core/market"
	"predmarket/engine/core/oracle"
	"predmarket/engine/core/types"
)

// maxKeeperBatch bounds a single slot's keeper dispatch (spec §5: "a
// keeper batch is bounded by K (<=10 in practice)").
const maxKeeperBatch = 10

// slotEpoch is an arbitrary fixed reference instant used only to turn a
// slot number into the time.Time that golang.org/x/time/rate.Limiter
// requires; no wall clock is ever read; the mapping is a pure function of
// the slot number so two schedulers fed the same slot sequence admit
// identical batches (spec §5: "a single transition produces a unique
// resulting state").
var slotEpoch = time.Unix(0, 0)

func slotToTime(now types.Slot) time.Time {
	return slotEpoch.Add(time.Duration(now) * time.Second)
}

// KeeperExecutor is implemented by the engine to actually execute a
// popped liquidation queue entry; the scheduler only decides which
// entries are admitted this tick, never how to close them (spec §5: a
// keeper batch "processes" entries — the processing itself is
// intent-dispatch logic that belongs to core/engine).
type KeeperExecutor interface {
	ExecuteLiquidation(now types.Slot, market types.MarketID, entry *liquidation.Entry) error
}

// MarketSet is the engine's live market table, keyed by id, handed to the
// scheduler so it can drive settle-slot transitions and halt resumes
// without the scheduler owning market storage itself.
type MarketSet map[types.MarketID]*market.Market

// Scheduler owns the per-market oracle feeds, liquidation queues, and
// breaker registry, and drives one slot's housekeeping via Tick.
type Scheduler struct {
	Markets    MarketSet
	Oracles    map[types.MarketID]*oracle.Feed
	Queues     map[types.MarketID]*liquidation.Queue
	Breakers   *breaker.Registry
	Coverage   *coverage.Accountant
	Log        *eventlog.Log
	limiter    *rate.Limiter
	pendingOps []pendingOracleUpdate
}

type pendingOracleUpdate struct {
	market types.MarketID
	apply  func(*oracle.Feed) error
}

// New constructs a scheduler. burst/perSecond configure the keeper-batch
// smoothing rate limiter (spec's congestion breaker draws its
// failure-rate signal from intents this limiter rejects).
func New(markets MarketSet, breakers *breaker.Registry, acct *coverage.Accountant, log *eventlog.Log, perSecond float64, burst int) *Scheduler {
	if perSecond <= 0 {
		perSecond = maxKeeperBatch
	}
	if burst <= 0 {
		burst = maxKeeperBatch
	}
	return &Scheduler{
		Markets:  markets,
		Oracles:  make(map[types.MarketID]*oracle.Feed),
		Queues:   make(map[types.MarketID]*liquidation.Queue),
		Breakers: breakers,
		Coverage: acct,
		Log:      log,
		limiter:  rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// QueueOracleUpdate defers an oracle observation to the next Tick,
// preserving arrival order (spec §4.K step 1).
func (s *Scheduler) QueueOracleUpdate(m types.MarketID, apply func(*oracle.Feed) error) {
	s.pendingOps = append(s.pendingOps, pendingOracleUpdate{market: m, apply: apply})
}

// Tick runs one slot's housekeeping sequence in the exact order spec
// §4.K lists: pending oracle updates, coverage/breaker recompute, keeper
// batch, stale eviction, settle-slot transitions, then resume checks.
func (s *Scheduler) Tick(now types.Slot, keeper KeeperExecutor) error {
	s.applyPendingOracleUpdates(now)
	s.recomputeCoverageAndBreakers(now)
	if err := s.runKeeperBatch(now, keeper); err != nil {
		return err
	}
	s.evictStaleQueueEntries(now)
	s.transitionSettlingMarkets(now)
	s.runResumeChecks(now)
	return nil
}

func (s *Scheduler) applyPendingOracleUpdates(now types.Slot) {
	ops := s.pendingOps
	s.pendingOps = nil
	for _, op := range ops {
		feed, ok := s.Oracles[op.market]
		if !ok {
			continue
		}
		if err := op.apply(feed); err != nil {
			continue
		}
		if s.Log != nil {
			s.Log.Append(now, eventlog.OracleUpdated{Market: op.market})
		}
	}
}

func (s *Scheduler) recomputeCoverageAndBreakers(now types.Slot) {
	if s.Coverage == nil || s.Breakers == nil {
		return
	}
	ratio, err := s.Coverage.Coverage()
	if err != nil {
		return
	}
	threshold := fixedpoint.Signed{Mag: breaker.CoverageThreshold}
	if ratio.Neg || ratio.Cmp(threshold) < 0 {
		cb := s.Breakers.Global(breaker.KindCoverage)
		cb.Trip(now)
	}
}

func (s *Scheduler) runKeeperBatch(now types.Slot, keeper KeeperExecutor) error {
	if keeper == nil {
		return nil
	}
	for marketID, queue := range s.Queues {
		admitted := maxKeeperBatch
		if s.limiter != nil {
			reservation := s.limiter.ReserveN(slotToTime(now), maxKeeperBatch)
			if !reservation.OK() {
				admitted = 0
			} else if reservation.Delay() > 0 {
				reservation.Cancel()
				admitted = 0
			}
		}
		if admitted == 0 {
			continue
		}
		batch := queue.PopBatch(admitted)
		for _, entry := range batch {
			if err := keeper.ExecuteLiquidation(now, marketID, entry); err != nil {
				continue
			}
		}
	}
	return nil
}

func (s *Scheduler) evictStaleQueueEntries(now types.Slot) {
	for _, queue := range s.Queues {
		queue.EvictStale(now)
	}
}

// transitionSettlingMarkets moves any Active market whose settle_slot has
// arrived into Settling (spec §4.K step 5). EnterSettling itself has no
// dedicated event tag; the Settled event is emitted by core/engine's Tick,
// which resolves every Settling market right after this scheduler pass.
func (s *Scheduler) transitionSettlingMarkets(now types.Slot) {
	for _, m := range s.Markets {
		if m.Status != market.StatusActive {
			continue
		}
		_ = m.EnterSettling(now)
	}
}

// breakerKindFor maps a market's HaltReason back to the breaker kind that
// caused it, so resume can be gated by that breaker's own Resume (which
// enforces the 150-slot global cooldown), not just the market's bare
// HaltUntilSlot. Spread/Stale/Cumulative are oracle-owned, not
// breaker-owned, and Admin halts never auto-resume.
func breakerKindFor(reason market.HaltReason) (breaker.Kind, bool) {
	switch reason {
	case market.HaltReasonCoverage:
		return breaker.KindCoverage, true
	case market.HaltReasonPrice:
		return breaker.KindPrice, true
	case market.HaltReasonVolume:
		return breaker.KindVolume, true
	case market.HaltReasonCascade:
		return breaker.KindCascade, true
	case market.HaltReasonCongestion:
		return breaker.KindCongestion, true
	default:
		return 0, false
	}
}

func (s *Scheduler) runResumeChecks(now types.Slot) {
	for id, feed := range s.Oracles {
		feed.CheckStale(now)
		if feed.ResumeCheck(now) {
			if m, ok := s.Markets[id]; ok {
				if err := m.Resume(now); err == nil && s.Log != nil {
					s.Log.Append(now, eventlog.Resumed{Market: id})
				}
			}
		}
	}

	for id, m := range s.Markets {
		if m.Status != market.StatusHalted {
			continue
		}
		kind, owned := breakerKindFor(m.HaltReason)
		if !owned || s.Breakers == nil {
			continue
		}
		var b *breaker.Breaker
		switch kind.Scope() {
		case breaker.ScopeGlobal:
			b = s.Breakers.Global(kind)
		case breaker.ScopeMarket:
			b = s.Breakers.ForMarket(kind, id)
		case breaker.ScopeVerse:
			b = s.Breakers.ForVerse(kind, m.Verse)
		}
		if b == nil || !b.Resume(now) {
			continue
		}
		if err := m.Resume(now); err == nil && s.Log != nil {
			s.Log.Append(now, eventlog.Resumed{Market: id})
		}
	}
}
