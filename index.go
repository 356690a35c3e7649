// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package faaq

import (
	"code.hybscloud.com/atomix"
	"golang.org/x/sys/cpu"
)

// pad is cache line padding to prevent false sharing.
type pad = cpu.CacheLinePad

// indices holds the two FAA counters shared by both queue variants.
//
// Each counter is only ever incremented. The value returned by a claim is
// the pre-increment value, so every enqueue and every dequeue owns a
// distinct position in its own total order.
type indices struct {
	_      pad
	enqIdx atomix.Uint64 // Next enqueue position (FAA)
	_      pad
	deqIdx atomix.Uint64 // Next dequeue position (FAA)
	_      pad
}

func (x *indices) claimEnqueue() uint64 {
	return x.enqIdx.AddAcqRel(1) - 1
}

func (x *indices) claimDequeue() uint64 {
	return x.deqIdx.AddAcqRel(1) - 1
}

// shouldTryDequeue reports whether a dequeue attempt may find an element.
//
// deqIdx is read on both sides of the enqIdx read and the comparison is
// trusted only when both reads agree. This is a cheap consistency read,
// not a linearizable snapshot of both counters.
func (x *indices) shouldTryDequeue() bool {
	for {
		deq := x.deqIdx.LoadAcquire()
		enq := x.enqIdx.LoadAcquire()
		if deq == x.deqIdx.LoadAcquire() {
			return deq < enq
		}
	}
}

// snapshot returns both counters. Only exact when quiesced.
func (x *indices) snapshot() (enq, deq uint64) {
	return x.enqIdx.LoadAcquire(), x.deqIdx.LoadAcquire()
}

// Stats is a point-in-time view of a queue's counters.
//
// The retry and allocation counters are updated on slow paths only, so
// reading them never slows down uncontended operations.
type Stats struct {
	EnqueueIndex      uint64 // Indices claimed by enqueuers
	DequeueIndex      uint64 // Indices claimed by dequeuers
	EnqueueRetries    uint64 // Enqueues that found their slot poisoned
	PoisonedSlots     uint64 // Slots poisoned by dequeuers that ran ahead
	EmptyReads        uint64 // Dequeues that returned ErrWouldBlock
	SegmentsAllocated uint64 // Segments linked into the chain (Segmented only)
	SegmentLinkRaces  uint64 // Segment allocations discarded after a lost CAS
}

// Pending returns how many claimed enqueue positions have not been matched
// by a dequeue position. Exact only when quiesced.
func (s Stats) Pending() uint64 {
	if s.EnqueueIndex <= s.DequeueIndex {
		return 0
	}
	return s.EnqueueIndex - s.DequeueIndex
}

type counters struct {
	_                 pad
	enqueueRetries    atomix.Uint64
	poisonedSlots     atomix.Uint64
	emptyReads        atomix.Uint64
	segmentsAllocated atomix.Uint64
	segmentLinkRaces  atomix.Uint64
}

func (c *counters) stats(x *indices) Stats {
	enq, deq := x.snapshot()
	return Stats{
		EnqueueIndex:      enq,
		DequeueIndex:      deq,
		EnqueueRetries:    c.enqueueRetries.LoadRelaxed(),
		PoisonedSlots:     c.poisonedSlots.LoadRelaxed(),
		EmptyReads:        c.emptyReads.LoadRelaxed(),
		SegmentsAllocated: c.segmentsAllocated.LoadRelaxed(),
		SegmentLinkRaces:  c.segmentLinkRaces.LoadRelaxed(),
	}
}
