package ringbuf

import (
	"sync"

	"modes1090/stats"
)

// Ring is a fixed-depth producer/consumer queue of *MagnitudeBuffer
// slots. A single reader goroutine fills slots and a single demodulator
// goroutine drains them; both block on the same mutex with distinct
// condition variables rather than on channels, mirroring this receiver's prior
// preference for explicit locking in its decoder/aircraft table
// (mode_s/aircraft.go's sync.Mutex-guarded Sky) over channel-based
// pipelines.
type Ring struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond

	slots   []*MagnitudeBuffer
	head    int // next slot to fill
	tail    int // next slot to drain
	count   int
	closed  bool
	dropped int

	stats *stats.Counters
}

// SetStats attaches the shared counters RecordDrop should feed in
// addition to its own local count; a nil stats (the default) leaves
// RecordDrop only updating Dropped().
func (r *Ring) SetStats(s *stats.Counters) {
	r.mu.Lock()
	r.stats = s
	r.mu.Unlock()
}

// New allocates a Ring with depth slots, each pre-sized to hold
// OverlapSamples+sampleCapacity samples.
func New(depth, sampleCapacity int) *Ring {
	r := &Ring{slots: make([]*MagnitudeBuffer, depth)}
	for i := range r.slots {
		r.slots[i] = &MagnitudeBuffer{Samples: make([]uint16, OverlapSamples+sampleCapacity)}
	}
	r.notEmpty = sync.NewCond(&r.mu)
	r.notFull = sync.NewCond(&r.mu)
	return r
}

// Acquire returns the next free slot for the producer to fill, blocking
// until one is available or the ring is closed. Acquire copies nothing:
// the caller copies the previous slot's trailing samples into the
// returned buffer's leading OverlapSamples before filling the rest.
func (r *Ring) Acquire() (*MagnitudeBuffer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for r.count == len(r.slots) && !r.closed {
		r.notFull.Wait()
	}
	if r.closed {
		return nil, false
	}
	idx := (r.tail + r.count) % len(r.slots)
	return r.slots[idx], true
}

// Publish marks the most recently Acquire()d slot as ready for the
// consumer and wakes it.
func (r *Ring) Publish() {
	r.mu.Lock()
	r.count++
	r.mu.Unlock()
	r.notEmpty.Signal()
}

// Next blocks until a filled slot is available, then returns it. The
// caller must call Release when done so the slot can be reused by the
// producer.
func (r *Ring) Next() (*MagnitudeBuffer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for r.count == 0 && !r.closed {
		r.notEmpty.Wait()
	}
	if r.count == 0 && r.closed {
		return nil, false
	}
	buf := r.slots[r.tail]
	return buf, true
}

// Release returns the slot most recently handed out by Next back to the
// producer's free pool.
func (r *Ring) Release() {
	r.mu.Lock()
	r.tail = (r.tail + 1) % len(r.slots)
	r.count--
	r.mu.Unlock()
	r.notFull.Signal()
}

// Close unblocks any goroutine waiting in Acquire or Next.
func (r *Ring) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.notEmpty.Broadcast()
	r.notFull.Broadcast()
}

// RecordDrop increments the dropped-sample counter the producer reports
// when it cannot keep up with the SDR's sample rate (the data model: back-
// pressure accounting).
func (r *Ring) RecordDrop(n int) {
	r.mu.Lock()
	r.dropped += n
	s := r.stats
	r.mu.Unlock()
	if s != nil {
		s.DroppedSamples.Add(int64(n))
	}
}

// Dropped returns the cumulative count of samples lost to back-pressure.
func (r *Ring) Dropped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}
