// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package faaq

import "code.hybscloud.com/spin"

// DefaultFlatCapacity is the array length used by [Builder.Flat] callers
// that have no better estimate.
const DefaultFlatCapacity = 1024

// Flat runs the same FAA/CAS protocol as [Segmented] over one pre-allocated
// array standing in for the infinite one.
//
// The array is never grown and positions are never reused, so a Flat queue
// accepts at most Cap enqueue claims over its lifetime, including claims
// wasted on poisoned slots. It exists for bounded scenarios such as model
// checking and stress harnesses, which call Validate once the run is over.
//
// Memory: capacity slots, allocated up front
type Flat[T any] struct {
	idx   indices
	stats counters
	slots []slot[T]
}

// NewFlat creates a flat queue with exactly capacity slots.
func NewFlat[T any](capacity int) *Flat[T] {
	if capacity < 1 {
		panic("faaq: capacity must be >= 1")
	}
	return &Flat[T]{slots: make([]slot[T], capacity)}
}

// Enqueue adds an element to the queue.
// Panics with [ErrCapacityExhausted] once every slot has been claimed.
func (q *Flat[T]) Enqueue(elem *T) {
	sw := spin.Wait{}
	for {
		i := q.idx.claimEnqueue()
		if i >= uint64(len(q.slots)) {
			panic(ErrCapacityExhausted)
		}
		if q.slots[i].put(elem) {
			return
		}
		q.stats.enqueueRetries.AddAcqRel(1)
		sw.Once()
	}
}

// Dequeue removes and returns the oldest element.
// Returns (zero-value, ErrWouldBlock) if the queue is empty.
func (q *Flat[T]) Dequeue() (T, error) {
	sw := spin.Wait{}
	for {
		if !q.idx.shouldTryDequeue() {
			q.stats.emptyReads.AddAcqRel(1)
			var zero T
			return zero, ErrWouldBlock
		}

		i := q.idx.claimDequeue()
		if i >= uint64(len(q.slots)) {
			// No enqueuer can ever fill a position past the array.
			q.stats.poisonedSlots.AddAcqRel(1)
			sw.Once()
			continue
		}

		s := &q.slots[i]
		if !s.poison() {
			return s.take(), nil
		}
		q.stats.poisonedSlots.AddAcqRel(1)
		sw.Once()
	}
}

// Validate checks the post-execution invariants of the slot array.
//
// Call only after all concurrent activity has stopped. For every index below
// min(enqIdx, deqIdx) the slot must be empty or poisoned: each element stored
// there has been consumed. For every index from max(enqIdx, deqIdx) up to Cap
// the slot must be empty or poisoned: nothing was written past the claimed
// positions. Returns a [*ValidationError] for the first violation.
func (q *Flat[T]) Validate() error {
	enq, deq := q.idx.snapshot()
	n := uint64(len(q.slots))
	lo, hi := min(enq, deq, n), min(max(enq, deq), n)

	for i := uint64(0); i < lo; i++ {
		if q.slots[i].occupied() {
			return &ValidationError{Index: i, EnqIdx: enq, DeqIdx: deq, Region: BelowMin}
		}
	}
	for i := hi; i < n; i++ {
		if q.slots[i].occupied() {
			return &ValidationError{Index: i, EnqIdx: enq, DeqIdx: deq, Region: AboveMax}
		}
	}
	return nil
}

// Stats returns a snapshot of the queue counters.
func (q *Flat[T]) Stats() Stats {
	return q.stats.stats(&q.idx)
}

// Cap returns the number of slots in the array.
func (q *Flat[T]) Cap() int {
	return len(q.slots)
}
