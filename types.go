// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package faaq

// Queue is the combined producer-consumer interface for a FIFO queue.
//
// Enqueue always succeeds. Dequeue never waits: it returns ErrWouldBlock
// when it observes the queue empty.
//
// The interface intentionally excludes length because accurate counts in
// lock-free algorithms require expensive cross-core synchronization.
// [Stats.Pending] gives an estimate when one is needed.
//
// Example:
//
//	q := faaq.NewSegmented[int](faaq.DefaultSegmentSize)
//
//	val := 42
//	q.Enqueue(&val)
//
//	elem, err := q.Dequeue()
//	if err == nil {
//	    fmt.Println(elem)
//	}
type Queue[T any] interface {
	Producer[T]
	Consumer[T]
}

// Producer is the interface for enqueueing elements.
//
// The element is passed by pointer to avoid copying large structs. The
// queue stores a copy of the pointed-to value, so the original can be
// modified after Enqueue returns.
type Producer[T any] interface {
	// Enqueue adds an element to the queue. Safe for any number of
	// concurrent producers. Never blocks and never fails.
	Enqueue(elem *T)
}

// Consumer is the interface for dequeueing elements.
//
// The element is returned by value. The slot it came from is cleared to
// allow garbage collection of referenced objects.
type Consumer[T any] interface {
	// Dequeue removes and returns the oldest element. Safe for any number
	// of concurrent consumers.
	// Returns (zero-value, ErrWouldBlock) if the queue is observed empty.
	Dequeue() (T, error)
}

// Validator checks post-execution invariants of a quiesced queue.
//
// Both [Segmented] and [Flat] implement Validator. Calling Validate while
// other goroutines still operate on the queue gives meaningless results.
type Validator interface {
	// Validate returns nil, or a [*ValidationError] naming the first slot
	// whose contents disagree with the counters.
	Validate() error
}

// StatsReporter exposes queue counters.
type StatsReporter interface {
	Stats() Stats
}
