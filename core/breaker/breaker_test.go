package breaker

import (
	"testing"

	"predmarket/engine/core/types"
)

func TestKindScopeMatchesSpecTable(t *testing.T) {
	cases := map[Kind]Scope{
		KindCoverage:   ScopeGlobal,
		KindPrice:      ScopeMarket,
		KindVolume:     ScopeMarket,
		KindCascade:    ScopeVerse,
		KindCongestion: ScopeGlobal,
		KindOracle:     ScopeMarket,
	}
	for kind, want := range cases {
		if got := kind.Scope(); got != want {
			t.Fatalf("%v: expected scope %v, got %v", kind, want, got)
		}
	}
}

func TestTripSetsHaltUntilAndIsIdempotent(t *testing.T) {
	b := New(KindPrice)
	b.Trip(types.Slot(10))
	if !b.Active(types.Slot(10)) {
		t.Fatalf("expected breaker to be active immediately after trip")
	}
	if !b.Active(types.Slot(309)) {
		t.Fatalf("expected breaker active through its 300-slot duration")
	}
	if b.Active(types.Slot(310)) {
		t.Fatalf("expected breaker inactive once duration has elapsed")
	}

	// Tripping again while already tripped must not extend the original
	// expiry.
	b.Trip(types.Slot(50))
	if b.Active(types.Slot(310)) {
		t.Fatalf("re-tripping an active breaker must not extend its expiry")
	}
}

func TestResumeRequiresDurationThenCooldown(t *testing.T) {
	b := New(KindPrice)
	b.Trip(types.Slot(0))
	if b.Resume(types.Slot(299)) {
		t.Fatalf("expected Resume to fail before the 300-slot duration elapses")
	}
	if b.Resume(types.Slot(300)) {
		t.Fatalf("expected Resume to fail immediately at duration expiry, before the 150-slot cooldown")
	}
	if b.Resume(types.Slot(449)) {
		t.Fatalf("expected Resume to fail before the cooldown elapses")
	}
	if !b.Resume(types.Slot(450)) {
		t.Fatalf("expected Resume to succeed once duration+cooldown have both elapsed")
	}
	if b.Active(types.Slot(450)) {
		t.Fatalf("expected breaker inactive after Resume clears it")
	}
}

func TestRegistryScopesBreakersIndependently(t *testing.T) {
	r := NewRegistry()
	marketA := types.MarketID{1}
	marketB := types.MarketID{2}

	priceA := r.ForMarket(KindPrice, marketA)
	priceA.Trip(types.Slot(1))

	priceB := r.ForMarket(KindPrice, marketB)
	if priceB.Active(types.Slot(1)) {
		t.Fatalf("expected market B's price breaker to be unaffected by market A's trip")
	}

	sameA := r.ForMarket(KindPrice, marketA)
	if !sameA.Active(types.Slot(1)) {
		t.Fatalf("expected a second lookup for the same kind+market to return the same breaker")
	}

	coverage := r.Global(KindCoverage)
	coverage.Trip(types.Slot(1))
	if !r.Global(KindCoverage).Active(types.Slot(1)) {
		t.Fatalf("expected the global registry lookup to be stable across calls")
	}
}
