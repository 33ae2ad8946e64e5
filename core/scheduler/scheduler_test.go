package scheduler

import (
	"testing"

	"predmarket/engine/core/breaker"
	"predmarket/engine/core/coverage"
	"predmarket/engine/core/eventlog"
	"predmarket/engine/core/fixedpoint"
	"predmarket/engine/core/liquidation"
	"predmarket/engine/core/market"
	"predmarket/engine/core/types"
)

func newTestMarket(t *testing.T, settleSlot types.Slot) *market.Market {
	t.Helper()
	m, err := market.New(types.MarketID{1}, types.VerseID{1}, 1, false, fixedpoint.NewF64FromUint64(1000), 0, types.Slot(0), settleSlot)
	if err != nil {
		t.Fatalf("market.New: %v", err)
	}
	return m
}

func newTestScheduler(t *testing.T, markets MarketSet) *Scheduler {
	t.Helper()
	return New(markets, breaker.NewRegistry(), coverage.New(), eventlog.New(), 0, 0)
}

func TestTickTransitionsMarketToSettlingAtSettleSlot(t *testing.T) {
	m := newTestMarket(t, types.Slot(10))
	s := newTestScheduler(t, MarketSet{m.ID: m})

	if err := s.Tick(types.Slot(5), nil); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if m.Status != market.StatusActive {
		t.Fatalf("expected market to remain Active before settle_slot, got %v", m.Status)
	}
	if err := s.Tick(types.Slot(10), nil); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if m.Status != market.StatusSettling {
		t.Fatalf("expected market to enter Settling at settle_slot, got %v", m.Status)
	}
}

func TestTickTripsCoverageBreakerWhenRatioBelowHalf(t *testing.T) {
	m := newTestMarket(t, types.Slot(1000))
	acct := coverage.New()
	acct.SetTotalOI(fixedpoint.NewF64FromUint64(1000))
	// vault far below tail_loss*OI so coverage < 0.5.
	if err := acct.Deposit(fixedpoint.NewF64FromUint64(10)); err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	reg := breaker.NewRegistry()
	s := New(MarketSet{m.ID: m}, reg, acct, eventlog.New(), 0, 0)

	if err := s.Tick(types.Slot(1), nil); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if !reg.Global(breaker.KindCoverage).Active(types.Slot(1)) {
		t.Fatalf("expected the coverage breaker to have tripped")
	}
}

func TestTickEvictsStaleQueueEntries(t *testing.T) {
	m := newTestMarket(t, types.Slot(1000))
	s := newTestScheduler(t, MarketSet{m.ID: m})
	q := liquidation.NewQueue()
	s.Queues[m.ID] = q

	priority, err := liquidation.Priority(fixedpoint.One64, fixedpoint.One64, fixedpoint.One64)
	if err != nil {
		t.Fatalf("Priority: %v", err)
	}
	entry := &liquidation.Entry{Position: types.PositionID{Leg: 1}, Priority: priority, EntrySlot: types.Slot(0)}
	if err := q.Push(entry); err != nil {
		t.Fatalf("Push: %v", err)
	}

	// staleAfterSlots in core/liquidation is 50; advance well beyond it.
	if err := s.Tick(types.Slot(200), nil); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if q.Len() != 0 {
		t.Fatalf("expected the stale entry to have been evicted, queue len=%d", q.Len())
	}
}

type stubKeeper struct {
	executed []types.PositionID
}

func (k *stubKeeper) ExecuteLiquidation(now types.Slot, marketID types.MarketID, entry *liquidation.Entry) error {
	k.executed = append(k.executed, entry.Position)
	return nil
}

func TestTickRunsKeeperBatchUpToCap(t *testing.T) {
	m := newTestMarket(t, types.Slot(1000))
	s := newTestScheduler(t, MarketSet{m.ID: m})
	q := liquidation.NewQueue()
	s.Queues[m.ID] = q

	for i := uint32(0); i < 3; i++ {
		priority, err := liquidation.Priority(fixedpoint.One64, fixedpoint.One64, fixedpoint.One64)
		if err != nil {
			t.Fatalf("Priority: %v", err)
		}
		entry := &liquidation.Entry{Position: types.PositionID{Leg: i}, Priority: priority, EntrySlot: types.Slot(0)}
		if err := q.Push(entry); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}

	keeper := &stubKeeper{}
	if err := s.Tick(types.Slot(1), keeper); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if len(keeper.executed) != 3 {
		t.Fatalf("expected all 3 queued entries to be admitted within the K=10 cap, got %d", len(keeper.executed))
	}
}

func TestResumeRequiresBreakerCooldownNotJustMarketDuration(t *testing.T) {
	m := newTestMarket(t, types.Slot(1000))
	reg := breaker.NewRegistry()
	s := New(MarketSet{m.ID: m}, reg, coverage.New(), eventlog.New(), 0, 0)

	if err := m.Halt(market.HaltReasonPrice, types.Slot(0), 300); err != nil {
		t.Fatalf("Halt: %v", err)
	}
	reg.ForMarket(breaker.KindPrice, m.ID).Trip(types.Slot(0))

	// At slot 300 the market's own HaltUntilSlot has elapsed, but the
	// breaker's 150-slot cooldown has not, so it must stay halted.
	if err := s.Tick(types.Slot(300), nil); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if m.Status != market.StatusHalted {
		t.Fatalf("expected market to remain halted during the breaker cooldown, got %v", m.Status)
	}

	if err := s.Tick(types.Slot(450), nil); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if m.Status != market.StatusActive {
		t.Fatalf("expected market to resume once duration+cooldown elapsed, got %v", m.Status)
	}
}
