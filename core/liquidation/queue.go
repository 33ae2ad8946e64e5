package liquidation

import (
	"container/heap"

	"predmarket/engine/core/errors"
	"predmarket/engine/core/fixedpoint"
	"predmarket/engine/core/types"
)

// queueCapacity is the bounded heap's fixed capacity (spec §3: "bounded
// priority heap (capacity 100)").
const queueCapacity = 100

// staleAfterSlots is how long an unprocessed queue entry may sit before the
// scheduler evicts it (spec §4.F).
const staleAfterSlots = 50

// entrySentinelPriority is the priority assigned to emergency entries so
// they always sort ahead of every normal entry (spec §3: "emergency entries
// have sentinel max priority").
var entrySentinelPriority = fixedpoint.F64{}

func init() {
	// A value no ordinary (1/health)*size*risk_score product can reach in
	// practice; chosen as a large integer rather than an overflow-prone
	// maximum so normal priority arithmetic never collides with it.
	entrySentinelPriority = fixedpoint.NewF64FromUint64(1 << 40)
}

// Entry is one position queued for potential liquidation.
type Entry struct {
	Position  types.PositionID
	Priority  fixedpoint.F64 // (1/health)*size*risk_score, or the sentinel if Emergency
	EntrySlot types.Slot
	Emergency bool

	// Keeper identifies who admitted this entry, stamped at push time so the
	// reward split at execution time has somewhere to go regardless of
	// whether the entry is drained by an explicit LiquidationTick intent or
	// later by the scheduler's own per-tick keeper batch.
	Keeper [20]byte

	index int // heap bookkeeping, maintained by container/heap callbacks
}

// Priority computes (1/health)*size*risk_score (spec §3), the deterministic
// integer-fixed-point priority that replaces the source's floating risk
// score (spec §9 design notes).
func Priority(health, size, riskScore fixedpoint.F64) (fixedpoint.F64, error) {
	if health.IsZero() {
		return entrySentinelPriority, nil
	}
	invHealth, err := fixedpoint.One64.Div(health)
	if err != nil {
		return fixedpoint.F64{}, err
	}
	p, err := invHealth.Mul(size)
	if err != nil {
		return fixedpoint.F64{}, err
	}
	return p.Mul(riskScore)
}

// entryHeap implements container/heap.Interface: highest priority first,
// ties broken by earliest EntrySlot (FIFO), per spec §3.
type entryHeap []*Entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	c := h[i].Priority.Cmp(h[j].Priority)
	if c != 0 {
		return c > 0 // higher priority sorts first
	}
	return h[i].EntrySlot < h[j].EntrySlot
}

func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *entryHeap) Push(x interface{}) {
	e := x.(*Entry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// Queue is a bounded liquidation priority queue. The engine keeps one per
// market (Scheduler.Queues is keyed by market id); queues are not grouped
// by verse.
type Queue struct {
	h entryHeap
}

// NewQueue constructs an empty queue.
func NewQueue() *Queue {
	q := &Queue{}
	heap.Init(&q.h)
	return q
}

// Len reports the number of queued entries.
func (q *Queue) Len() int { return q.h.Len() }

// Push admits a new entry, rejecting it if the queue is at capacity.
func (q *Queue) Push(e *Entry) error {
	if q.h.Len() >= queueCapacity {
		return errors.ErrQueueFull
	}
	heap.Push(&q.h, e)
	return nil
}

// Pop removes and returns the highest-priority entry, or nil if the queue is
// empty.
func (q *Queue) Pop() *Entry {
	if q.h.Len() == 0 {
		return nil
	}
	return heap.Pop(&q.h).(*Entry)
}

// PopBatch removes and returns up to k entries in priority order (spec
// §4.F/§4.K: "keepers may batch up to K positions per tick").
func (q *Queue) PopBatch(k int) []*Entry {
	out := make([]*Entry, 0, k)
	for i := 0; i < k; i++ {
		e := q.Pop()
		if e == nil {
			break
		}
		out = append(out, e)
	}
	return out
}

// EvictStale removes and returns every entry older than staleAfterSlots
// relative to `now` (spec §4.F). Surviving entries are rebuilt into a fresh
// heap in their original relative order.
func (q *Queue) EvictStale(now types.Slot) []*Entry {
	var evicted []*Entry
	var kept entryHeap
	for _, e := range q.h {
		if now.Sub(e.EntrySlot) > staleAfterSlots {
			evicted = append(evicted, e)
			continue
		}
		kept = append(kept, e)
	}
	q.h = kept
	heap.Init(&q.h)
	return evicted
}
