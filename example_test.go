// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package faaq_test

import (
	"errors"
	"fmt"
	"sync"

	"code.hybscloud.com/faaq"
)

// ExampleNewSegmented demonstrates FIFO order and the empty signal.
func ExampleNewSegmented() {
	q := faaq.NewSegmented[int](2)

	for i := 1; i <= 3; i++ {
		q.Enqueue(&i)
	}

	for {
		v, err := q.Dequeue()
		if faaq.IsWouldBlock(err) {
			fmt.Println("empty")
			break
		}
		fmt.Println(v)
	}

	// Output:
	// 1
	// 2
	// 3
	// empty
}

// ExampleNewFlat demonstrates a bounded scenario followed by validation.
func ExampleNewFlat() {
	q := faaq.NewFlat[string](1024)

	var wg sync.WaitGroup
	for p := range 3 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			msg := fmt.Sprintf("msg from producer %d", id)
			q.Enqueue(&msg)
		}(p)
	}
	wg.Wait()

	for {
		msg, err := q.Dequeue()
		if err != nil {
			break
		}
		fmt.Println(msg)
	}

	fmt.Println("valid:", q.Validate() == nil)

	// Unordered output:
	// msg from producer 0
	// msg from producer 1
	// msg from producer 2
	// valid: true
}

// ExampleBuild demonstrates variant selection through the builder.
func ExampleBuild() {
	seg := faaq.Build[int](faaq.New().SegmentSize(4))
	flat := faaq.Build[int](faaq.New().Flat(64))

	fmt.Printf("%T\n", seg)
	fmt.Printf("%T\n", flat)

	// Output:
	// *faaq.Segmented[int]
	// *faaq.Flat[int]
}

// ExampleValidationError demonstrates inspecting a validation failure.
func ExampleValidationError() {
	err := error(&faaq.ValidationError{Index: 7, EnqIdx: 4, DeqIdx: 5, Region: faaq.AboveMax})

	var ve *faaq.ValidationError
	if errors.As(err, &ve) {
		fmt.Println(ve.Index, ve.Region)
	}
	fmt.Println(faaq.IsInvariant(err))

	// Output:
	// 7 at or above max(enqIdx, deqIdx)
	// true
}
