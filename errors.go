// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package faaq

import (
	"errors"
	"fmt"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates Dequeue observed an empty queue.
//
// It is a control flow signal, not a failure. Enqueue never returns it
// because both queues accept every element.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
//
// Example:
//
//	backoff := iox.Backoff{}
//	for {
//	    v, err := q.Dequeue()
//	    if err == nil {
//	        backoff.Reset()
//	        handle(v)
//	        continue
//	    }
//	    if faaq.IsWouldBlock(err) {
//	        backoff.Wait()
//	        continue
//	    }
//	    return err
//	}
var ErrWouldBlock = iox.ErrWouldBlock

// ErrInvariant marks a slot observed in a state the protocol forbids.
//
// The queues panic with an error wrapping ErrInvariant when it happens
// during an operation. Validate returns a [*ValidationError] wrapping it.
var ErrInvariant = errors.New("faaq: invariant violation")

// ErrCapacityExhausted is the panic value raised when an Enqueue on a
// [Flat] queue claims an index past the end of its array.
var ErrCapacityExhausted = errors.New("faaq: flat queue capacity exhausted")

// IsWouldBlock reports whether err indicates the queue was empty.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Returns true for nil, ErrWouldBlock, or ErrMore.
// Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}

// IsInvariant reports whether err is an invariant violation.
func IsInvariant(err error) bool {
	return errors.Is(err, ErrInvariant)
}

// Region names the index range a [ValidationError] was found in.
type Region int

const (
	// BelowMin covers indices under min(enqIdx, deqIdx). Every element
	// stored there must already have been consumed.
	BelowMin Region = iota
	// AboveMax covers indices from max(enqIdx, deqIdx) up to the end of
	// the allocated slots. Nothing was ever claimed there.
	AboveMax
)

func (r Region) String() string {
	switch r {
	case BelowMin:
		return "below min(enqIdx, deqIdx)"
	case AboveMax:
		return "at or above max(enqIdx, deqIdx)"
	default:
		return fmt.Sprintf("Region(%d)", int(r))
	}
}

// ValidationError reports the first slot Validate found holding an element
// where the counters say none may remain.
type ValidationError struct {
	Index  uint64
	EnqIdx uint64
	DeqIdx uint64
	Region Region
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("faaq: slot %d is occupied %s (enqIdx=%d, deqIdx=%d)",
		e.Index, e.Region, e.EnqIdx, e.DeqIdx)
}

// Unwrap returns ErrInvariant.
func (e *ValidationError) Unwrap() error {
	return ErrInvariant
}

func invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvariant}, args...)...)
}
