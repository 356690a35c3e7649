// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package faaq provides unbounded lock-free FIFO queues built from
// Fetch-And-Add and Compare-And-Swap only.
//
// Two variants share one protocol:
//
//   - Segmented: unbounded, slots live in a chain of fixed-size segments
//   - Flat: one pre-allocated array, for bounded test scenarios
//
// # Quick Start
//
//	q := faaq.NewSegmented[Event](faaq.DefaultSegmentSize)
//	q := faaq.NewFlat[*Request](1024)
//
// Builder API:
//
//	q := faaq.Build[Event](faaq.New())                  // → Segmented
//	q := faaq.Build[Event](faaq.New().SegmentSize(2))   // → Segmented, 2 slots per segment
//	q := faaq.Build[Event](faaq.New().Flat(1024))       // → Flat
//
// # Basic Usage
//
//	q := faaq.NewSegmented[int](faaq.DefaultSegmentSize)
//
//	// Enqueue (never fails, never blocks)
//	value := 42
//	q.Enqueue(&value)
//
//	// Dequeue (non-blocking)
//	elem, err := q.Dequeue()
//	if faaq.IsWouldBlock(err) {
//	    // Queue is empty - try again later
//	}
//
// # Algorithm
//
// The queue is a conceptually infinite array of slots. Every slot starts
// empty and leaves that state exactly once, by CAS, to either occupied or
// poisoned.
//
// Enqueue claims the next position with Fetch-And-Add on the enqueue
// counter and tries to move its slot from empty to occupied. If a dequeuer
// already poisoned the slot, the enqueuer claims a fresh position and tries
// again.
//
// Dequeue first checks that the dequeue counter is behind the enqueue
// counter, returning [ErrWouldBlock] otherwise. It claims the next position
// on the dequeue counter and tries to move its slot from empty to poisoned.
// Winning that CAS means it arrived before the enqueuer; the position is
// abandoned and the dequeuer tries again. Losing means an element is
// present, which it takes, resetting the slot to empty.
//
// Positions are never reused. Elements come out in the order of the
// positions their enqueuers finally won, so an element whose first
// position was poisoned is moved behind the dequeuers, never lost.
//
// # Emptiness Check
//
// Dequeue reads the dequeue counter, then the enqueue counter, then the
// dequeue counter again, and trusts the comparison only when both dequeue
// reads agree. It is a lightweight consistency read, not a linearizable
// snapshot of both counters.
//
// # Progress
//
// Operations are lock-free but not wait-free. A losing CAS retries with a
// CPU pause from [code.hybscloud.com/spin]; no goroutine ever waits on
// another one. Dequeue on an empty queue returns immediately.
//
// # Memory
//
// [Segmented] links a new segment whenever a claimed position falls past
// the end of the chain. Concurrent walkers race to link the same
// successor; the first CAS wins and the others drop their allocation.
// Segments are never recycled. A segment becomes garbage once no walk hint
// and no in-flight operation refers to it.
//
// [Flat] allocates its array once and never grows it. Enqueue panics with
// [ErrCapacityExhausted] when it claims a position past the end.
//
// # Validation
//
// Both variants implement [Validator]. After a scenario has finished:
//
//	if err := q.Validate(); err != nil {
//	    var ve *faaq.ValidationError
//	    errors.As(err, &ve) // ve.Index, ve.EnqIdx, ve.DeqIdx, ve.Region
//	}
//
// A slot caught in a state the protocol forbids during an operation is a
// bug; the queue panics with an error wrapping [ErrInvariant].
//
// # Race Detection
//
// Slot payloads are plain fields published by CAS on the slot state. Go's
// race detector cannot observe that happens-before edge through atomix
// operations and may report false positives. Concurrent tests for these
// queues are excluded when [RaceEnabled] is true.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for atomic primitives with explicit
// memory ordering, [code.hybscloud.com/spin] for CPU pause instructions,
// and [golang.org/x/sys/cpu] for cache line padding.
package faaq
