package liquidation

import (
	"testing"

	"predmarket/engine/core/fixedpoint"
	"predmarket/engine/core/types"
)

func positionID(leg uint32) types.PositionID {
	return types.PositionID{Leg: leg}
}

func TestQueuePopsHighestPriorityFirst(t *testing.T) {
	q := NewQueue()
	low, err := Priority(fixedpoint.NewF64FromUint64(2), fixedpoint.One64, fixedpoint.One64)
	if err != nil {
		t.Fatalf("Priority: %v", err)
	}
	high, err := Priority(fixedpoint.NewF64FromUint64(1), fixedpoint.NewF64FromUint64(10), fixedpoint.One64)
	if err != nil {
		t.Fatalf("Priority: %v", err)
	}
	if err := q.Push(&Entry{Position: positionID(1), Priority: low, EntrySlot: types.Slot(1)}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := q.Push(&Entry{Position: positionID(2), Priority: high, EntrySlot: types.Slot(2)}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	first := q.Pop()
	if first == nil || first.Position.Leg != 2 {
		t.Fatalf("expected the higher-priority entry to pop first, got %+v", first)
	}
}

func TestQueueTieBreaksByEntrySlot(t *testing.T) {
	q := NewQueue()
	p, _ := Priority(fixedpoint.One64, fixedpoint.One64, fixedpoint.One64)
	if err := q.Push(&Entry{Position: positionID(1), Priority: p, EntrySlot: types.Slot(5)}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := q.Push(&Entry{Position: positionID(2), Priority: p, EntrySlot: types.Slot(2)}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	first := q.Pop()
	if first == nil || first.Position.Leg != 2 {
		t.Fatalf("expected the earlier EntrySlot to win the tie, got %+v", first)
	}
}

func TestQueueRejectsPushBeyondCapacity(t *testing.T) {
	q := NewQueue()
	p, _ := Priority(fixedpoint.One64, fixedpoint.One64, fixedpoint.One64)
	for i := 0; i < queueCapacity; i++ {
		if err := q.Push(&Entry{Position: positionID(uint32(i)), Priority: p, EntrySlot: types.Slot(uint64(i))}); err != nil {
			t.Fatalf("Push %d: %v", i, err)
		}
	}
	if err := q.Push(&Entry{Position: positionID(999), Priority: p, EntrySlot: types.Slot(999)}); err == nil {
		t.Fatalf("expected the queue to reject a push past capacity")
	}
}

func TestQueueEmergencySentinelOutranksNormalEntries(t *testing.T) {
	q := NewQueue()
	normal, _ := Priority(fixedpoint.NewF64FromUint64(1), fixedpoint.NewF64FromUint64(1_000_000), fixedpoint.NewF64FromUint64(1_000_000))
	if err := q.Push(&Entry{Position: positionID(1), Priority: normal, EntrySlot: types.Slot(1)}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := q.Push(&Entry{Position: positionID(2), Priority: entrySentinelPriority, EntrySlot: types.Slot(2), Emergency: true}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	first := q.Pop()
	if first == nil || !first.Emergency {
		t.Fatalf("expected the emergency entry to pop first, got %+v", first)
	}
}

func TestQueueEvictStaleRemovesOnlyOldEntries(t *testing.T) {
	q := NewQueue()
	p, _ := Priority(fixedpoint.One64, fixedpoint.One64, fixedpoint.One64)
	if err := q.Push(&Entry{Position: positionID(1), Priority: p, EntrySlot: types.Slot(1)}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if err := q.Push(&Entry{Position: positionID(2), Priority: p, EntrySlot: types.Slot(100)}); err != nil {
		t.Fatalf("Push: %v", err)
	}
	evicted := q.EvictStale(types.Slot(100))
	if len(evicted) != 1 || evicted[0].Position.Leg != 1 {
		t.Fatalf("expected only the slot-1 entry to be evicted, got %+v", evicted)
	}
	if q.Len() != 1 {
		t.Fatalf("expected one surviving entry, got %d", q.Len())
	}
}

func TestPopBatchRespectsLimitAndEmptyQueue(t *testing.T) {
	q := NewQueue()
	p, _ := Priority(fixedpoint.One64, fixedpoint.One64, fixedpoint.One64)
	for i := 0; i < 3; i++ {
		if err := q.Push(&Entry{Position: positionID(uint32(i)), Priority: p, EntrySlot: types.Slot(uint64(i))}); err != nil {
			t.Fatalf("Push %d: %v", i, err)
		}
	}
	batch := q.PopBatch(2)
	if len(batch) != 2 {
		t.Fatalf("expected a batch of 2, got %d", len(batch))
	}
	rest := q.PopBatch(10)
	if len(rest) != 1 {
		t.Fatalf("expected the final single entry, got %d", len(rest))
	}
	if len(q.PopBatch(5)) != 0 {
		t.Fatalf("expected PopBatch on an empty queue to return nothing")
	}
}
