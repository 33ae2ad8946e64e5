package breaker

import (
	"testing"

	"predmarket/engine/core/fixedpoint"
)

func TestPriceMonitorTripsOnSustainedClamp(t *testing.T) {
	var m PriceMonitor
	if m.Observe(true) {
		t.Fatalf("expected a single clamp hit not to trip")
	}
	if m.Observe(true) {
		t.Fatalf("expected two consecutive clamp hits not to trip")
	}
	if !m.Observe(true) {
		t.Fatalf("expected a third consecutive clamp hit to trip")
	}
}

func TestPriceMonitorResetsOnCleanSlot(t *testing.T) {
	var m PriceMonitor
	m.Observe(true)
	m.Observe(true)
	if m.Observe(false) {
		t.Fatalf("a clean slot must never trip")
	}
	if m.Observe(true) {
		t.Fatalf("expected the streak to have reset after the clean slot")
	}
}

func TestVolumeMonitorTripsAboveThreeTimesAverage(t *testing.T) {
	var m VolumeMonitor
	for i := 0; i < 5; i++ {
		tripped, err := m.Observe(fixedpoint.NewF64FromUint64(100))
		if err != nil {
			t.Fatalf("Observe: %v", err)
		}
		if tripped {
			t.Fatalf("steady volume must never trip")
		}
	}
	tripped, err := m.Observe(fixedpoint.NewF64FromUint64(301))
	if err != nil {
		t.Fatalf("Observe: %v", err)
	}
	if !tripped {
		t.Fatalf("expected a spike above 3x the trailing average to trip")
	}
}

func TestCascadeMonitorTripsAtTenWithinWindow(t *testing.T) {
	var m CascadeMonitor
	for i := uint64(0); i < 9; i++ {
		if m.Observe(i) {
			t.Fatalf("expected fewer than 10 events not to trip, at i=%d", i)
		}
	}
	if !m.Observe(9) {
		t.Fatalf("expected the 10th event within the window to trip")
	}
}

func TestCascadeMonitorPrunesOldEvents(t *testing.T) {
	var m CascadeMonitor
	for i := uint64(0); i < 9; i++ {
		m.Observe(i)
	}
	// Jump far enough ahead that every prior event falls outside the
	// 10-slot window; the streak must not carry over.
	if m.Observe(1000) {
		t.Fatalf("expected stale events to be pruned, not counted toward the threshold")
	}
}

func TestCongestionMonitorTripsAboveTwentyPercentFailureRate(t *testing.T) {
	var m CongestionMonitor
	if !m.Observe(30, 100) {
		t.Fatalf("expected a 30%% failure rate to exceed the 20%% threshold")
	}
}

func TestCongestionMonitorStaysBelowThreshold(t *testing.T) {
	var m CongestionMonitor
	if m.Observe(10, 100) {
		t.Fatalf("expected a 10%% failure rate not to trip")
	}
}

func TestCongestionMonitorIgnoresEmptySlots(t *testing.T) {
	var m CongestionMonitor
	if m.Observe(0, 0) {
		t.Fatalf("a slot with no intents must never trip")
	}
}
