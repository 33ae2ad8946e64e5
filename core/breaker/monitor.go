package breaker

import "predmarket/engine/core/fixedpoint"

// CoverageThreshold is the ratio below which the coverage breaker trips
// (spec §4.I: "Coverage < 0.5 -> 900 slots global").
var CoverageThreshold fixedpoint.F64

func init() {
	half, err := fixedpoint.One64.Div(fixedpoint.NewF64FromUint64(2))
	if err != nil {
		panic(err)
	}
	CoverageThreshold = half
}

// priceSustainedSlots is how many consecutive clamp-hit slots trip the
// price breaker (spec §4.I: "Price: clamp-hit sustained >= 3 slots").
const priceSustainedSlots = 3

// PriceMonitor counts consecutive slots in which the oracle's clamp was
// hit, tripping once the streak reaches priceSustainedSlots.
type PriceMonitor struct {
	consecutive int
}

// Observe records whether this slot's oracle update hit the clamp, and
// reports whether the sustained-clamp condition has just been reached.
func (m *PriceMonitor) Observe(clampHit bool) bool {
	if !clampHit {
		m.consecutive = 0
		return false
	}
	m.consecutive++
	return m.consecutive >= priceSustainedSlots
}

// volumeWindowSlots is the trailing window the volume breaker compares the
// current slot's volume against (spec §4.I: "Volume: slot volume > 3x
// 30-slot moving average").
const volumeWindowSlots = 30

// volumeMultiplier is the multiple of the moving average that trips the
// breaker.
const volumeMultiplier = 3

// VolumeMonitor is a fixed-size ring buffer of recent slot volumes,
// mirroring core/oracle.Feed's cumulativeWindowSlots ring.
type VolumeMonitor struct {
	window [volumeWindowSlots]fixedpoint.F64
	len    int
	pos    int
}

// Observe records this slot's traded volume and reports whether it
// exceeds volumeMultiplier times the trailing moving average. The check
// uses the average BEFORE this slot's volume is folded in, then folds it
// in regardless of outcome so the window always reflects the most recent
// volumeWindowSlots slots.
func (m *VolumeMonitor) Observe(volume fixedpoint.F64) (bool, error) {
	var tripped bool
	if m.len > 0 {
		sum := fixedpoint.Zero64
		for i := 0; i < m.len; i++ {
			s, err := sum.Add(m.window[i])
			if err != nil {
				return false, err
			}
			sum = s
		}
		avg, err := sum.Div(fixedpoint.NewF64FromUint64(uint64(m.len)))
		if err != nil {
			return false, err
		}
		threshold, err := avg.Mul(fixedpoint.NewF64FromUint64(volumeMultiplier))
		if err != nil {
			return false, err
		}
		tripped = volume.Cmp(threshold) > 0
	}
	m.window[m.pos] = volume
	m.pos = (m.pos + 1) % volumeWindowSlots
	if m.len < volumeWindowSlots {
		m.len++
	}
	return tripped, nil
}

// cascadeWindowSlots and cascadeThreshold implement the liquidation
// cascade breaker (spec §4.I: ">= 10 liquidations in 10 slots in one
// verse").
const (
	cascadeWindowSlots = 10
	cascadeThreshold   = 10
)

// CascadeMonitor tracks recent liquidation-event slots for one verse as a
// pruned slice, dropping entries older than cascadeWindowSlots each time a
// new event arrives.
type CascadeMonitor struct {
	recent []uint64
}

// Observe records a liquidation event at slot `now` (as a raw slot number)
// and reports whether the cascade threshold has just been reached.
func (m *CascadeMonitor) Observe(now uint64) bool {
	m.recent = append(m.recent, now)
	pruned := m.recent[:0]
	for _, slot := range m.recent {
		if now-slot < cascadeWindowSlots {
			pruned = append(pruned, slot)
		}
	}
	m.recent = pruned
	return len(m.recent) >= cascadeThreshold
}

// congestionWindowSlots and congestionFailureBp implement the congestion
// breaker (spec §4.I: "intent failure rate > 20% over 50-slot window").
const (
	congestionWindowSlots = 50
	congestionFailureBp   = 2000
	basisPointsDenominator = 10_000
)

// CongestionMonitor is a fixed-size ring of per-slot (failed, total)
// intent counts.
type CongestionMonitor struct {
	failed [congestionWindowSlots]uint64
	total  [congestionWindowSlots]uint64
	len    int
	pos    int
}

// Observe records one slot's intent outcome counts and reports whether the
// trailing failure rate exceeds congestionFailureBp.
func (m *CongestionMonitor) Observe(failed, total uint64) bool {
	m.failed[m.pos] = failed
	m.total[m.pos] = total
	m.pos = (m.pos + 1) % congestionWindowSlots
	if m.len < congestionWindowSlots {
		m.len++
	}

	var failedSum, totalSum uint64
	for i := 0; i < m.len; i++ {
		failedSum += m.failed[i]
		totalSum += m.total[i]
	}
	if totalSum == 0 {
		return false
	}
	return failedSum*basisPointsDenominator > totalSum*congestionFailureBp
}
