package eventlog

import "predmarket/engine/core/types"

// Record is one (slot, seq, tag, payload) entry (spec §4.J).
type Record struct {
	Slot    types.Slot
	Seq     uint64
	Tag     string
	Payload Event
}

// Log is the engine's append-only event log. Records are never mutated or
// removed once appended; the only growth operation is Append, and the only
// read operations are Records/Since/Replay (spec §5: "the priority queue
// and the event log are the only growable structures").
type Log struct {
	records []Record
	curSlot types.Slot
	curSeq  uint64
	started bool
}

// New constructs an empty log.
func New() *Log {
	return &Log{}
}

// Append records one event at slot `now`, assigning it the next
// within-slot sequence number. Seq resets to zero whenever now advances
// past the previously recorded slot (spec §4.J: "Seq is monotonic within a
// slot").
func (l *Log) Append(now types.Slot, payload Event) Record {
	if !l.started || now != l.curSlot {
		l.curSlot = now
		l.curSeq = 0
		l.started = true
	} else {
		l.curSeq++
	}
	rec := Record{Slot: now, Seq: l.curSeq, Tag: payload.Tag(), Payload: payload}
	l.records = append(l.records, rec)
	return rec
}

// Len returns the number of records appended so far.
func (l *Log) Len() int { return len(l.records) }

// Records returns every record in append order. The returned slice is a
// copy so callers cannot mutate log history.
func (l *Log) Records() []Record {
	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Since returns every record at or after the given slot, in append order,
// for incremental replay by an external observer that has already
// consumed everything before fromSlot.
func (l *Log) Since(fromSlot types.Slot) []Record {
	var out []Record
	for _, rec := range l.records {
		if rec.Slot >= fromSlot {
			out = append(out, rec)
		}
	}
	return out
}

// Replay calls apply once per record in append order, stopping at the
// first error. It is the mechanism by which an external observer rebuilds
// derived state (positions, balances, stats) from genesis (spec §4.J).
func Replay(records []Record, apply func(Record) error) error {
	for _, rec := range records {
		if err := apply(rec); err != nil {
			return err
		}
	}
	return nil
}
