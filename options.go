// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package faaq

// Options configures queue creation and variant selection.
type Options struct {
	// Segmented variant
	segmentSize int // Rounds up to next power of 2

	// Flat variant
	flat     bool
	capacity int // Exact array length
}

// Builder creates queues with fluent configuration.
//
// Example:
//
//	// Segmented queue (default, unbounded)
//	q := faaq.Build[Event](faaq.New())
//
//	// Segmented queue with small segments
//	q := faaq.BuildSegmented[Event](faaq.New().SegmentSize(2))
//
//	// Flat queue for a bounded test scenario
//	q := faaq.BuildFlat[Event](faaq.New().Flat(1024))
type Builder struct {
	opts Options
}

// New creates a queue builder with default options: a segmented queue
// with [DefaultSegmentSize] slots per segment.
func New() *Builder {
	return &Builder{opts: Options{segmentSize: DefaultSegmentSize}}
}

// SegmentSize sets the number of slots per segment.
// Rounds up to the next power of 2. Panics if n < 1.
//
// Small segments allocate more often; large segments waste more memory
// at the tail of the chain.
func (b *Builder) SegmentSize(n int) *Builder {
	if n < 1 {
		panic("faaq: segment size must be >= 1")
	}
	b.opts.segmentSize = n
	return b
}

// Flat selects the flat-array variant with exactly capacity slots.
// Panics if capacity < 1.
//
// The capacity bounds every enqueue claim ever made, including claims
// wasted on poisoned slots. See [Flat].
func (b *Builder) Flat(capacity int) *Builder {
	if capacity < 1 {
		panic("faaq: capacity must be >= 1")
	}
	b.opts.flat = true
	b.opts.capacity = capacity
	return b
}

// Build creates a Queue[T] of the configured variant.
//
//	Flat(n) set → Flat (fixed array of n slots)
//	otherwise   → Segmented (unbounded)
//
// For concrete return types, use:
//   - BuildSegmented[T](b) → *Segmented[T]
//   - BuildFlat[T](b) → *Flat[T]
func Build[T any](b *Builder) Queue[T] {
	if b.opts.flat {
		return NewFlat[T](b.opts.capacity)
	}
	return NewSegmented[T](b.opts.segmentSize)
}

// BuildSegmented creates a segmented queue with compile-time type safety.
// Panics if the builder was configured with Flat().
func BuildSegmented[T any](b *Builder) *Segmented[T] {
	if b.opts.flat {
		panic("faaq: BuildSegmented requires a builder without Flat()")
	}
	return NewSegmented[T](b.opts.segmentSize)
}

// BuildFlat creates a flat queue with compile-time type safety.
// Panics if the builder was not configured with Flat().
func BuildFlat[T any](b *Builder) *Flat[T] {
	if !b.opts.flat {
		panic("faaq: BuildFlat requires Flat()")
	}
	return NewFlat[T](b.opts.capacity)
}

// roundToPow2 rounds n up to the next power of 2.
func roundToPow2(n int) int {
	if n <= 1 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
