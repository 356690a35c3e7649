// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package faaq

import "code.hybscloud.com/atomix"

// Slot states. A slot leaves slotEmpty through exactly one CAS.
const (
	slotEmpty uint64 = iota
	slotOccupied
	slotPoisoned
)

// slot is one cell of the conceptually infinite array.
//
// The payload lives beside the state word. Only the enqueuer that claimed
// the slot's index writes data, and it does so before publishing
// slotOccupied, so a dequeuer that sees slotOccupied reads a complete value.
type slot[T any] struct {
	state atomix.Uint64
	data  T
}

// put plants elem. Returns false if a dequeuer poisoned the slot first.
func (s *slot[T]) put(elem *T) bool {
	s.data = *elem
	if s.state.CompareAndSwapAcqRel(slotEmpty, slotOccupied) {
		return true
	}
	var zero T
	s.data = zero
	return false
}

// poison marks an empty slot unusable. Returns false if an element is
// already present.
func (s *slot[T]) poison() bool {
	return s.state.CompareAndSwapAcqRel(slotEmpty, slotPoisoned)
}

// take removes the element after poison lost to an enqueuer.
func (s *slot[T]) take() T {
	if st := s.state.LoadAcquire(); st != slotOccupied {
		panic(invariantf("dequeuer lost the poison race but slot state is %s", stateName(st)))
	}
	elem := s.data
	var zero T
	s.data = zero
	s.state.StoreRelease(slotEmpty)
	return elem
}

// occupied reports whether the slot holds an unconsumed element.
// Only meaningful once concurrent activity has quiesced.
func (s *slot[T]) occupied() bool {
	return s.state.LoadAcquire() == slotOccupied
}

func stateName(st uint64) string {
	switch st {
	case slotEmpty:
		return "empty"
	case slotOccupied:
		return "occupied"
	case slotPoisoned:
		return "poisoned"
	default:
		return "unknown"
	}
}
