// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package faaq_test

import (
	"errors"
	"testing"

	"code.hybscloud.com/faaq"
)

// =============================================================================
// Sequential FIFO
// =============================================================================

// queueCase names a queue constructor for table-driven tests.
type queueCase struct {
	name string
	make func() faaq.Queue[int]
}

func allQueues() []queueCase {
	return []queueCase{
		{"Segmented/1", func() faaq.Queue[int] { return faaq.NewSegmented[int](1) }},
		{"Segmented/2", func() faaq.Queue[int] { return faaq.NewSegmented[int](2) }},
		{"Segmented/default", func() faaq.Queue[int] { return faaq.NewSegmented[int](faaq.DefaultSegmentSize) }},
		{"Flat/1024", func() faaq.Queue[int] { return faaq.NewFlat[int](faaq.DefaultFlatCapacity) }},
	}
}

// TestSequentialFIFO enqueues distinct values and expects them back in order,
// followed by ErrWouldBlock.
func TestSequentialFIFO(t *testing.T) {
	for _, tc := range allQueues() {
		t.Run(tc.name, func(t *testing.T) {
			q := tc.make()

			for i := 1; i <= 3; i++ {
				v := i
				q.Enqueue(&v)
			}

			for i := 1; i <= 3; i++ {
				val, err := q.Dequeue()
				if err != nil {
					t.Fatalf("Dequeue(%d): %v", i, err)
				}
				if val != i {
					t.Fatalf("Dequeue(%d): got %d, want %d", i, val, i)
				}
			}

			if _, err := q.Dequeue(); !errors.Is(err, faaq.ErrWouldBlock) {
				t.Fatalf("Dequeue on empty: got %v, want ErrWouldBlock", err)
			}
		})
	}
}

// TestSequentialFIFOLong crosses many segment boundaries.
func TestSequentialFIFOLong(t *testing.T) {
	const n = 500
	for _, tc := range allQueues() {
		t.Run(tc.name, func(t *testing.T) {
			q := tc.make()
			for i := range n {
				q.Enqueue(&i)
			}
			for i := range n {
				val, err := q.Dequeue()
				if err != nil {
					t.Fatalf("Dequeue(%d): %v", i, err)
				}
				if val != i {
					t.Fatalf("Dequeue(%d): got %d, want %d", i, val, i)
				}
			}
			if _, err := q.Dequeue(); !faaq.IsWouldBlock(err) {
				t.Fatalf("Dequeue on empty: got %v, want ErrWouldBlock", err)
			}
		})
	}
}

// TestInterleaved alternates enqueue and dequeue bursts.
func TestInterleaved(t *testing.T) {
	for _, tc := range allQueues() {
		t.Run(tc.name, func(t *testing.T) {
			q := tc.make()
			next, want := 0, 0
			for round := range 20 {
				for range round%4 + 1 {
					v := next
					q.Enqueue(&v)
					next++
				}
				for range round % 3 {
					val, err := q.Dequeue()
					if errors.Is(err, faaq.ErrWouldBlock) {
						if want != next {
							t.Fatalf("round %d: empty with %d pending", round, next-want)
						}
						break
					}
					if val != want {
						t.Fatalf("round %d: got %d, want %d", round, val, want)
					}
					want++
				}
			}
			for want < next {
				val, err := q.Dequeue()
				if err != nil {
					t.Fatalf("drain: %v", err)
				}
				if val != want {
					t.Fatalf("drain: got %d, want %d", val, want)
				}
				want++
			}
		})
	}
}

// TestEmptyDequeueDoesNotPoison verifies an empty Dequeue returns without
// claiming a position, so the next element is still delivered.
func TestEmptyDequeueDoesNotPoison(t *testing.T) {
	q := faaq.NewSegmented[int](2)
	for range 10 {
		if _, err := q.Dequeue(); !errors.Is(err, faaq.ErrWouldBlock) {
			t.Fatalf("Dequeue on empty: got %v, want ErrWouldBlock", err)
		}
	}

	st := q.Stats()
	if st.DequeueIndex != 0 || st.PoisonedSlots != 0 {
		t.Fatalf("empty dequeues claimed positions: %+v", st)
	}
	if st.EmptyReads != 10 {
		t.Fatalf("EmptyReads: got %d, want 10", st.EmptyReads)
	}

	v := 7
	q.Enqueue(&v)
	got, err := q.Dequeue()
	if err != nil || got != 7 {
		t.Fatalf("Dequeue: got (%d, %v), want (7, nil)", got, err)
	}
}

// TestEmptinessIdempotent repeats the emptiness observation with no
// intervening operations and expects the same answer each time.
func TestEmptinessIdempotent(t *testing.T) {
	q := faaq.NewFlat[int](16)

	for range 5 {
		if _, err := q.Dequeue(); !faaq.IsWouldBlock(err) {
			t.Fatalf("empty queue: got %v, want ErrWouldBlock", err)
		}
	}

	v := 1
	q.Enqueue(&v)
	st1 := q.Stats()
	st2 := q.Stats()
	if st1.Pending() != 1 || st2.Pending() != 1 {
		t.Fatalf("Pending: got %d then %d, want 1", st1.Pending(), st2.Pending())
	}
}

// TestEnqueueCopiesValue verifies the queue stores a copy of *elem.
func TestEnqueueCopiesValue(t *testing.T) {
	type payload struct {
		ID   int
		Name string
	}
	q := faaq.NewSegmented[payload](4)

	p := payload{ID: 1, Name: "first"}
	q.Enqueue(&p)
	p.ID, p.Name = 2, "mutated"

	got, err := q.Dequeue()
	if err != nil {
		t.Fatalf("Dequeue: %v", err)
	}
	if got.ID != 1 || got.Name != "first" {
		t.Fatalf("Dequeue: got %+v, want {1 first}", got)
	}
}

// TestPointerElements verifies pointer payloads survive the hand-off.
func TestPointerElements(t *testing.T) {
	q := faaq.NewSegmented[*int](2)
	vals := []int{10, 20, 30}
	for i := range vals {
		p := &vals[i]
		q.Enqueue(&p)
	}
	for i := range vals {
		p, err := q.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue(%d): %v", i, err)
		}
		if p != &vals[i] {
			t.Fatalf("Dequeue(%d): got %p, want %p", i, p, &vals[i])
		}
	}
}

// TestSequentialStats verifies a single goroutine never poisons a slot.
func TestSequentialStats(t *testing.T) {
	q := faaq.NewSegmented[int](2)
	for i := range 5 {
		q.Enqueue(&i)
	}
	for range 5 {
		if _, err := q.Dequeue(); err != nil {
			t.Fatalf("Dequeue: %v", err)
		}
	}

	st := q.Stats()
	want := faaq.Stats{
		EnqueueIndex:      5,
		DequeueIndex:      5,
		SegmentsAllocated: 3,
	}
	if st != want {
		t.Fatalf("Stats: got %+v, want %+v", st, want)
	}
	if st.Pending() != 0 {
		t.Fatalf("Pending: got %d, want 0", st.Pending())
	}
}

// =============================================================================
// Errors
// =============================================================================

func TestErrorPredicates(t *testing.T) {
	if !faaq.IsWouldBlock(faaq.ErrWouldBlock) {
		t.Fatal("IsWouldBlock(ErrWouldBlock) = false")
	}
	if !faaq.IsSemantic(faaq.ErrWouldBlock) {
		t.Fatal("IsSemantic(ErrWouldBlock) = false")
	}
	if !faaq.IsNonFailure(nil) || !faaq.IsNonFailure(faaq.ErrWouldBlock) {
		t.Fatal("IsNonFailure: want true for nil and ErrWouldBlock")
	}
	if faaq.IsInvariant(faaq.ErrWouldBlock) {
		t.Fatal("IsInvariant(ErrWouldBlock) = true")
	}

	ve := &faaq.ValidationError{Index: 3, EnqIdx: 4, DeqIdx: 4, Region: faaq.BelowMin}
	if !faaq.IsInvariant(ve) {
		t.Fatal("IsInvariant(*ValidationError) = false")
	}
	want := "faaq: slot 3 is occupied below min(enqIdx, deqIdx) (enqIdx=4, deqIdx=4)"
	if ve.Error() != want {
		t.Fatalf("Error: got %q, want %q", ve.Error(), want)
	}
	if faaq.AboveMax.String() != "at or above max(enqIdx, deqIdx)" {
		t.Fatalf("AboveMax.String: got %q", faaq.AboveMax.String())
	}
}
