// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package faaq

import (
	"sync/atomic"

	"code.hybscloud.com/spin"
)

// segment is a fixed-size chunk of the conceptually infinite slot array.
//
// Segment ids form the chain 0, 1, 2, ... and next is set at most once.
type segment[T any] struct {
	id    uint64
	next  atomic.Pointer[segment[T]]
	cells []slot[T]
}

func newSegment[T any](id uint64, size uint64) *segment[T] {
	return &segment[T]{
		id:    id,
		cells: make([]slot[T], size),
	}
}

// findSegment walks forward from start to the segment with the given id,
// linking new segments where the chain ends.
//
// Concurrent walkers may allocate a successor for the same segment; the
// first CAS on next wins and the others adopt the winner, so each id maps
// to exactly one segment.
func (q *Segmented[T]) findSegment(start *segment[T], id uint64) *segment[T] {
	if start.id > id {
		panic(invariantf("segment hint %d is ahead of claimed segment %d", start.id, id))
	}
	sw := spin.Wait{}
	cur := start
	for cur.id < id {
		next := cur.next.Load()
		if next == nil {
			fresh := newSegment[T](cur.id+1, q.size)
			if cur.next.CompareAndSwap(nil, fresh) {
				q.stats.segmentsAllocated.AddAcqRel(1)
				next = fresh
			} else {
				q.stats.segmentLinkRaces.AddAcqRel(1)
				next = cur.next.Load()
				sw.Once()
			}
		}
		cur = next
	}
	return cur
}
