// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package faaq

import (
	"math/bits"
	"sync/atomic"

	"code.hybscloud.com/spin"
)

// DefaultSegmentSize is the number of slots per segment used by [New].
const DefaultSegmentSize = 32

// Segmented is an unbounded FAA-based multi-producer multi-consumer queue.
//
// Enqueuers and dequeuers each claim a position with Fetch-And-Add on their
// own counter, then race over the slot at that position with a single CAS.
// A dequeuer that reaches a slot before its enqueuer poisons it and moves on;
// the enqueuer then claims a later position. No element is lost, it is only
// re-sequenced behind the dequeuers.
//
// The slot array is a linked list of fixed-size segments grown on demand.
// head and tail only shorten the walk to a segment and may be stale.
// Segments are never recycled: one becomes garbage once no hint and no
// in-flight operation refers to it, so a stalled operation pins every later
// segment in memory.
//
// Memory: one segment of size slots per size claimed positions
type Segmented[T any] struct {
	idx   indices
	_     pad
	head  atomic.Pointer[segment[T]] // Dequeue walk hint
	_     pad
	tail  atomic.Pointer[segment[T]] // Enqueue walk hint
	_     pad
	stats counters
	size  uint64 // Slots per segment (power of 2)
	shift uint   // log2(size)
	mask  uint64 // size - 1
}

// NewSegmented creates an empty segmented queue.
// segmentSize rounds up to the next power of 2.
func NewSegmented[T any](segmentSize int) *Segmented[T] {
	if segmentSize < 1 {
		panic("faaq: segment size must be >= 1")
	}

	n := uint64(roundToPow2(segmentSize))
	q := &Segmented[T]{
		size:  n,
		shift: uint(bits.TrailingZeros64(n)),
		mask:  n - 1,
	}

	first := newSegment[T](0, n)
	q.head.Store(first)
	q.tail.Store(first)
	q.stats.segmentsAllocated.StoreRelaxed(1)

	return q
}

// Enqueue adds an element to the queue. It never fails.
func (q *Segmented[T]) Enqueue(elem *T) {
	sw := spin.Wait{}
	for {
		hint := q.tail.Load()
		i := q.idx.claimEnqueue()
		seg := q.findSegment(hint, i>>q.shift)
		q.tail.Store(seg)

		if seg.cells[i&q.mask].put(elem) {
			return
		}
		q.stats.enqueueRetries.AddAcqRel(1)
		sw.Once()
	}
}

// Dequeue removes and returns the oldest element.
// Returns (zero-value, ErrWouldBlock) if the queue is empty.
func (q *Segmented[T]) Dequeue() (T, error) {
	sw := spin.Wait{}
	for {
		if !q.idx.shouldTryDequeue() {
			q.stats.emptyReads.AddAcqRel(1)
			var zero T
			return zero, ErrWouldBlock
		}

		hint := q.head.Load()
		i := q.idx.claimDequeue()
		seg := q.findSegment(hint, i>>q.shift)
		q.head.Store(seg)

		s := &seg.cells[i&q.mask]
		if !s.poison() {
			return s.take(), nil
		}
		q.stats.poisonedSlots.AddAcqRel(1)
		sw.Once()
	}
}

// Validate checks the slots still reachable from the dequeue hint.
//
// Slots in segments before the head hint's segment are not checked: they
// may already be garbage, and after a full drain only the segments from
// the last dequeue onward are walked.
//
// Call only after all concurrent activity has stopped. Every walked slot
// below min(enqIdx, deqIdx) and every slot at or above max(enqIdx, deqIdx)
// must be empty or poisoned. Returns a [*ValidationError] for the first
// violation.
func (q *Segmented[T]) Validate() error {
	enq, deq := q.idx.snapshot()
	lo, hi := min(enq, deq), max(enq, deq)
	for seg := q.head.Load(); seg != nil; seg = seg.next.Load() {
		base := seg.id << q.shift
		for off := range seg.cells {
			i := base + uint64(off)
			if !seg.cells[off].occupied() {
				continue
			}
			switch {
			case i < lo:
				return &ValidationError{Index: i, EnqIdx: enq, DeqIdx: deq, Region: BelowMin}
			case i >= hi:
				return &ValidationError{Index: i, EnqIdx: enq, DeqIdx: deq, Region: AboveMax}
			}
		}
	}
	return nil
}

// Stats returns a snapshot of the queue counters.
func (q *Segmented[T]) Stats() Stats {
	return q.stats.stats(&q.idx)
}

// SegmentSize returns the number of slots per segment.
func (q *Segmented[T]) SegmentSize() int {
	return int(q.size)
}
