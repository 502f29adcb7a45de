// Package ring implements the fixed-capacity, single-producer/
// single-consumer event FIFO each client handle owns. Unlike a generic
// circular log buffer, it never evicts: a write past capacity is refused,
// not silently overwritten, because every write here corresponds to either
// a pre-reserved reply slot (which must never be refused) or an
// unsolicited event (which the caller drops, after checking Available,
// when no un-reserved room is left).
//
// The ring itself does no locking: reservation accounting and the write
// it guards must be composed atomically under the owning client handle's
// lock, so EventRing assumes its caller already holds that lock.
package ring

import "github.com/tejashwikalptaru/mpcore/domain"

// EventRing is a fixed-capacity FIFO of domain.EventRecord values.
type EventRing struct {
	entries  []domain.EventRecord
	head     int // next read position
	count    int // number of buffered records
	capacity int
}

// New creates an EventRing that can hold up to capacity records.
func New(capacity int) *EventRing {
	if capacity <= 0 {
		capacity = domain.MaxEvents
	}
	return &EventRing{
		entries:  make([]domain.EventRecord, capacity),
		capacity: capacity,
	}
}

// Capacity returns the ring's fixed record capacity.
func (r *EventRing) Capacity() int {
	return r.capacity
}

// Buffered returns the number of records currently queued.
func (r *EventRing) Buffered() int {
	return r.count
}

// Available returns the number of additional whole records that can be
// written before the ring is full.
func (r *EventRing) Available() int {
	return r.capacity - r.count
}

// Write appends rec to the ring. It returns false, writing nothing, if the
// ring is already at capacity. Callers are expected to check Available
// first; client.Handle does, and treats a false return after that check
// as a fatal invariant violation for both replies and unsolicited events.
func (r *EventRing) Write(rec domain.EventRecord) bool {
	if r.count == r.capacity {
		return false
	}
	tail := (r.head + r.count) % r.capacity
	r.entries[tail] = rec
	r.count++
	return true
}

// Read pops the oldest record. ok is false if the ring is empty.
func (r *EventRing) Read() (rec domain.EventRecord, ok bool) {
	if r.count == 0 {
		return domain.EventRecord{}, false
	}
	rec = r.entries[r.head]
	r.entries[r.head] = domain.EventRecord{}
	r.head = (r.head + 1) % r.capacity
	r.count--
	return rec, true
}

// Drain pops every buffered record in FIFO order, emptying the ring. It is
// used during client teardown so buffered payloads can be released.
func (r *EventRing) Drain() []domain.EventRecord {
	out := make([]domain.EventRecord, 0, r.count)
	for {
		rec, ok := r.Read()
		if !ok {
			break
		}
		out = append(out, rec)
	}
	return out
}
