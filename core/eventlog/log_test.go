package eventlog

import (
	"errors"
	"testing"

	"predmarket/engine/core/types"
)

var errStop = errors.New("stop")

func TestAppendAssignsMonotonicSeqWithinSlot(t *testing.T) {
	l := New()
	r0 := l.Append(types.Slot(5), MarketCreated{Market: types.MarketID{1}})
	r1 := l.Append(types.Slot(5), Trade{Market: types.MarketID{1}})
	r2 := l.Append(types.Slot(6), Trade{Market: types.MarketID{1}})

	if r0.Seq != 0 || r1.Seq != 1 {
		t.Fatalf("expected seq 0 then 1 within slot 5, got %d then %d", r0.Seq, r1.Seq)
	}
	if r2.Seq != 0 {
		t.Fatalf("expected seq to reset to 0 on a new slot, got %d", r2.Seq)
	}
}

func TestRecordsReturnsACopy(t *testing.T) {
	l := New()
	l.Append(types.Slot(1), MarketCreated{Market: types.MarketID{1}})
	recs := l.Records()
	recs[0].Seq = 99
	if l.records[0].Seq == 99 {
		t.Fatalf("expected Records() to return a defensive copy")
	}
}

func TestSinceFiltersByStartingSlot(t *testing.T) {
	l := New()
	l.Append(types.Slot(1), MarketCreated{})
	l.Append(types.Slot(2), Trade{})
	l.Append(types.Slot(3), Trade{})

	since := l.Since(types.Slot(2))
	if len(since) != 2 {
		t.Fatalf("expected 2 records from slot 2 onward, got %d", len(since))
	}
	if since[0].Slot != 2 || since[1].Slot != 3 {
		t.Fatalf("expected slots [2,3], got [%d,%d]", since[0].Slot, since[1].Slot)
	}
}

func TestReplayAppliesInOrderAndStopsOnError(t *testing.T) {
	l := New()
	l.Append(types.Slot(1), MarketCreated{Market: types.MarketID{1}})
	l.Append(types.Slot(1), Trade{Market: types.MarketID{1}})
	l.Append(types.Slot(2), Settled{Market: types.MarketID{1}, Winner: 0})

	var seenTags []string
	err := Replay(l.Records(), func(rec Record) error {
		seenTags = append(seenTags, rec.Tag)
		return nil
	})
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	want := []string{"MarketCreated", "Trade", "Settled"}
	if len(seenTags) != len(want) {
		t.Fatalf("expected %d tags, got %d", len(want), len(seenTags))
	}
	for i, tag := range want {
		if seenTags[i] != tag {
			t.Fatalf("at index %d: expected %s, got %s", i, tag, seenTags[i])
		}
	}

	callCount := 0
	errBoom := Replay(l.Records(), func(rec Record) error {
		callCount++
		if callCount == 2 {
			return errStop
		}
		return nil
	})
	if errBoom != errStop {
		t.Fatalf("expected Replay to surface the apply error, got %v", errBoom)
	}
	if callCount != 2 {
		t.Fatalf("expected Replay to stop at the first error, got %d calls", callCount)
	}
}
